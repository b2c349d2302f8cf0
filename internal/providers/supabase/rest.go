package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Query describes a PostgREST read on one table.
type Query struct {
	table  string
	params url.Values
}

// From starts a query on table selecting all columns.
func From(table string) *Query {
	return &Query{table: table, params: url.Values{"select": {"*"}}}
}

// Select restricts the returned columns.
func (q *Query) Select(columns string) *Query {
	q.params.Set("select", columns)
	return q
}

// Eq adds an equality filter.
func (q *Query) Eq(column, value string) *Query {
	q.params.Add(column, "eq."+value)
	return q
}

// Order sorts by column.
func (q *Query) Order(column string, ascending bool) *Query {
	dir := "desc"
	if ascending {
		dir = "asc"
	}
	q.params.Set("order", column+"."+dir)
	return q
}

// Limit caps the number of rows.
func (q *Query) Limit(n int) *Query {
	q.params.Set("limit", strconv.Itoa(n))
	return q
}

// Table returns the table name.
func (q *Query) Table() string {
	return q.table
}

// Encode renders the query string.
func (q *Query) Encode() string {
	return q.params.Encode()
}

// SelectRows runs q and decodes the JSON array into dest.
func (c *Client) SelectRows(ctx context.Context, accessToken string, q *Query, dest any) error {
	if q == nil || strings.TrimSpace(q.table) == "" {
		return fmt.Errorf("supabase: query table is required")
	}
	return c.do(ctx, request{
		method:      http.MethodGet,
		path:        "/rest/v1/" + q.table,
		query:       q.params,
		accessToken: accessToken,
	}, dest)
}

// InsertRow inserts row into table and decodes the created representation
// (a one element array) into dest when dest is non-nil.
func (c *Client) InsertRow(ctx context.Context, accessToken, table string, row any, dest any) error {
	if strings.TrimSpace(table) == "" {
		return fmt.Errorf("supabase: table is required")
	}
	prefer := "return=minimal"
	if dest != nil {
		prefer = "return=representation"
	}
	return c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/rest/v1/" + table,
		accessToken: accessToken,
		body:        row,
		headers:     map[string]string{"Prefer": prefer},
	}, dest)
}
