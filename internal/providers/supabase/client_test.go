package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/slemppa/storized/internal/domain"
)

func newTestClient(t *testing.T, transport *captureTransport) *Client {
	t.Helper()
	client, err := NewClient(Options{
		URL:        "https://project.supabase.co/",
		AnonKey:    "anon-key",
		HTTPClient: &http.Client{Transport: transport},
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNewClientValidatesOptions(t *testing.T) {
	if _, err := NewClient(Options{AnonKey: "k"}); !errors.Is(err, ErrMissingURL) {
		t.Fatalf("err = %v, want ErrMissingURL", err)
	}
	if _, err := NewClient(Options{URL: "https://x.supabase.co"}); !errors.Is(err, ErrMissingAnonKey) {
		t.Fatalf("err = %v, want ErrMissingAnonKey", err)
	}
	c, err := NewClient(Options{URL: "https://x.supabase.co/", AnonKey: "k"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.BaseURL() != "https://x.supabase.co" {
		t.Fatalf("BaseURL() = %q", c.BaseURL())
	}
}

func TestSignInPayloadAndSession(t *testing.T) {
	transport := newCaptureTransport()
	transport.setJSON("/auth/v1/token", http.StatusOK, map[string]any{
		"access_token":  "access-1",
		"refresh_token": "refresh-1",
		"expires_at":    1900000000,
		"user": map[string]any{
			"id":            "auth-1",
			"email":         "aino@example.com",
			"user_metadata": map[string]any{"full_name": "Aino"},
		},
	})
	client := newTestClient(t, transport)

	sess, err := client.SignIn(context.Background(), " aino@example.com ", "secret1")
	if err != nil {
		t.Fatalf("SignIn() error: %v", err)
	}
	if sess.AccessToken != "access-1" || sess.RefreshToken != "refresh-1" {
		t.Fatalf("unexpected tokens %+v", sess)
	}
	if sess.ExpiresAt.Unix() != 1900000000 {
		t.Fatalf("ExpiresAt = %v", sess.ExpiresAt)
	}
	if sess.User.ID != "auth-1" || sess.User.FullName() != "Aino" {
		t.Fatalf("unexpected identity %+v", sess.User)
	}

	last := transport.last
	if last.URL.Query().Get("grant_type") != "password" {
		t.Fatalf("grant_type = %q", last.URL.Query().Get("grant_type"))
	}
	if last.Header.Get("apikey") != "anon-key" || last.Header.Get("Authorization") != "Bearer anon-key" {
		t.Fatalf("unexpected auth headers %v", last.Header)
	}
	var payload map[string]string
	if err := json.Unmarshal(transport.lastBody, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload["email"] != "aino@example.com" || payload["password"] != "secret1" {
		t.Fatalf("unexpected payload %v", payload)
	}
}

func TestSignInInvalidCredentials(t *testing.T) {
	transport := newCaptureTransport()
	transport.setJSON("/auth/v1/token", http.StatusBadRequest, map[string]any{
		"code":       400,
		"error_code": "invalid_credentials",
		"msg":        "Invalid login credentials",
	})
	client := newTestClient(t, transport)

	_, err := client.SignIn(context.Background(), "a@example.com", "wrongpw")
	if err == nil {
		t.Fatalf("expected error")
	}
	if err.Error() != "Invalid login credentials" {
		t.Fatalf("message = %q", err.Error())
	}
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "invalid_credentials" || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("unexpected api error %#v", apiErr)
	}
}

func TestSignUpWithConfirmationPending(t *testing.T) {
	transport := newCaptureTransport()
	transport.setJSON("/auth/v1/signup", http.StatusOK, map[string]any{
		"id":            "auth-2",
		"email":         "new@example.com",
		"user_metadata": map[string]any{"full_name": "Uusi"},
	})
	client := newTestClient(t, transport)

	sess, err := client.SignUp(context.Background(), "new@example.com", "secret1", map[string]any{"full_name": "Uusi"})
	if err != nil {
		t.Fatalf("SignUp() error: %v", err)
	}
	if sess.Active() {
		t.Fatalf("expected inactive session while confirmation is pending")
	}
	if sess.User.ID != "auth-2" || sess.User.Email != "new@example.com" {
		t.Fatalf("unexpected identity %+v", sess.User)
	}
	var payload struct {
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(transport.lastBody, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Data["full_name"] != "Uusi" {
		t.Fatalf("metadata not forwarded: %v", payload.Data)
	}
}

func TestSignUpLegacyErrorEnvelope(t *testing.T) {
	transport := newCaptureTransport()
	transport.setJSON("/auth/v1/signup", http.StatusUnprocessableEntity, map[string]any{
		"error":             "weak_password",
		"error_description": "Password should be at least 6 characters",
	})
	client := newTestClient(t, transport)

	_, err := client.SignUp(context.Background(), "a@example.com", "123", nil)
	if err == nil || err.Error() != "Password should be at least 6 characters" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestGetUserUsesAccessToken(t *testing.T) {
	transport := newCaptureTransport()
	transport.setJSON("/auth/v1/user", http.StatusOK, map[string]any{"id": "auth-1", "email": "a@example.com"})
	client := newTestClient(t, transport)

	identity, err := client.GetUser(context.Background(), "access-1")
	if err != nil {
		t.Fatalf("GetUser() error: %v", err)
	}
	if identity.ID != "auth-1" {
		t.Fatalf("identity = %+v", identity)
	}
	if got := transport.last.Header.Get("Authorization"); got != "Bearer access-1" {
		t.Fatalf("Authorization = %q", got)
	}
	if _, err := client.GetUser(context.Background(), ""); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for empty token, got %v", err)
	}
}

func TestGetUserRejectedToken(t *testing.T) {
	transport := newCaptureTransport()
	transport.setJSON("/auth/v1/user", http.StatusForbidden, map[string]any{"code": 403, "error_code": "bad_jwt", "msg": "invalid JWT"})
	client := newTestClient(t, transport)

	if _, err := client.GetUser(context.Background(), "stale"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestSignOutSkipsEmptyToken(t *testing.T) {
	transport := newCaptureTransport()
	client := newTestClient(t, transport)
	if err := client.SignOut(context.Background(), ""); err != nil {
		t.Fatalf("SignOut() error: %v", err)
	}
	if transport.last != nil {
		t.Fatalf("expected no request for empty token")
	}

	transport.setStatus("/auth/v1/logout", http.StatusNoContent)
	if err := client.SignOut(context.Background(), "access-1"); err != nil {
		t.Fatalf("SignOut() error: %v", err)
	}
	if transport.last.Method != http.MethodPost {
		t.Fatalf("method = %s", transport.last.Method)
	}
}

func TestRefreshRequiresToken(t *testing.T) {
	client := newTestClient(t, newCaptureTransport())
	if _, err := client.Refresh(context.Background(), " "); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

func TestSelectRowsBuildsPostgRESTQuery(t *testing.T) {
	transport := newCaptureTransport()
	transport.setJSON("/rest/v1/content", http.StatusOK, []map[string]any{
		{"id": "c-1", "idea": "Uusi leipä", "platform": "Blog", "status": "Draft", "media_urls": nil},
	})
	client := newTestClient(t, transport)

	var rows []domain.ContentItem
	q := From("content").Eq("user_id", "user-1").Order("created_at", false)
	if err := client.SelectRows(context.Background(), "access-1", q, &rows); err != nil {
		t.Fatalf("SelectRows() error: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != "c-1" || rows[0].Platform != "Blog" {
		t.Fatalf("unexpected rows %+v", rows)
	}
	query := transport.last.URL.Query()
	if query.Get("user_id") != "eq.user-1" || query.Get("order") != "created_at.desc" || query.Get("select") != "*" {
		t.Fatalf("unexpected query %v", query)
	}
}

func TestInsertRowRequestsRepresentation(t *testing.T) {
	transport := newCaptureTransport()
	transport.setJSON("/rest/v1/users", http.StatusCreated, []map[string]any{{"id": "user-1", "auth_user_id": "auth-1"}})
	client := newTestClient(t, transport)

	var created []domain.User
	if err := client.InsertRow(context.Background(), "access-1", "users", map[string]any{"auth_user_id": "auth-1"}, &created); err != nil {
		t.Fatalf("InsertRow() error: %v", err)
	}
	if got := transport.last.Header.Get("Prefer"); got != "return=representation" {
		t.Fatalf("Prefer = %q", got)
	}
	if len(created) != 1 || created[0].ID != "user-1" {
		t.Fatalf("unexpected created rows %+v", created)
	}
}

func TestPostgRESTErrorMapsToDomain(t *testing.T) {
	transport := newCaptureTransport()
	transport.setJSON("/rest/v1/users", http.StatusUnauthorized, map[string]any{"code": "PGRST301", "message": "JWT expired"})
	client := newTestClient(t, transport)

	var rows []domain.User
	err := client.SelectRows(context.Background(), "expired", From("users"), &rows)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "PGRST301" || apiErr.Message != "JWT expired" {
		t.Fatalf("unexpected api error %#v", apiErr)
	}
}

func TestPlainTextErrorBody(t *testing.T) {
	transport := newCaptureTransport()
	transport.responses["/rest/v1/content"] = responseStub{status: http.StatusBadGateway, body: []byte("upstream down")}
	client := newTestClient(t, transport)

	err := client.SelectRows(context.Background(), "", From("content"), &[]domain.ContentItem{})
	if !errors.Is(err, domain.ErrBackend) {
		t.Fatalf("expected ErrBackend, got %v", err)
	}
	if !strings.Contains(err.Error(), "upstream down") {
		t.Fatalf("message = %q", err.Error())
	}
}

type captureTransport struct {
	responses map[string]responseStub
	last      *http.Request
	lastBody  []byte
}

type responseStub struct {
	status int
	header http.Header
	body   []byte
}

func newCaptureTransport() *captureTransport {
	return &captureTransport{responses: map[string]responseStub{}}
}

func (c *captureTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.last = req
	c.lastBody = nil
	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		req.Body.Close()
		c.lastBody = body
	}
	if stub, ok := c.responses[req.URL.Path]; ok {
		return stub.toResponse(), nil
	}
	return &http.Response{
		StatusCode: http.StatusNotFound,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader("not found")),
	}, nil
}

func (c *captureTransport) setJSON(path string, status int, payload any) {
	body, _ := json.Marshal(payload)
	c.responses[path] = responseStub{
		status: status,
		header: http.Header{"Content-Type": []string{"application/json"}},
		body:   body,
	}
}

func (c *captureTransport) setStatus(path string, status int) {
	c.responses[path] = responseStub{status: status}
}

func (s responseStub) toResponse() *http.Response {
	header := http.Header{}
	for k, values := range s.header {
		header[k] = append([]string(nil), values...)
	}
	return &http.Response{
		StatusCode: s.status,
		Header:     header,
		Body:       io.NopCloser(bytes.NewReader(s.body)),
	}
}
