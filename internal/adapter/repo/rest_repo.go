package repo

import (
	"context"
	"fmt"

	"github.com/slemppa/storized/internal/domain"
	"github.com/slemppa/storized/internal/providers/supabase"
)

const (
	usersTable   = "users"
	contentTable = "content"
)

// RowClient is the PostgREST surface the REST repositories need.
type RowClient interface {
	SelectRows(ctx context.Context, accessToken string, q *supabase.Query, dest any) error
	InsertRow(ctx context.Context, accessToken, table string, row any, dest any) error
}

// UserRepositoryREST reads and writes profile rows through PostgREST using the
// access token found in the request context.
type UserRepositoryREST struct {
	client RowClient
}

func NewUserRepositoryREST(client RowClient) *UserRepositoryREST {
	return &UserRepositoryREST{client: client}
}

func (r *UserRepositoryREST) GetByAuthUserID(ctx context.Context, authUserID string) (*domain.User, error) {
	var rows []domain.User
	q := supabase.From(usersTable).Eq("auth_user_id", authUserID).Limit(1)
	if err := r.client.SelectRows(ctx, domain.AccessTokenFromContext(ctx), q, &rows); err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	return &rows[0], nil
}

type userInsert struct {
	AuthUserID          string `json:"auth_user_id"`
	Email               string `json:"email"`
	FullName            string `json:"full_name"`
	SubscriptionStatus  string `json:"subscription_status"`
	OnboardingCompleted bool   `json:"onboarding_completed"`
}

func (r *UserRepositoryREST) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, fmt.Errorf("create user: %w", domain.ErrInvalidRequest)
	}
	row := userInsert{
		AuthUserID:          user.AuthUserID,
		Email:               user.Email,
		FullName:            user.FullName,
		SubscriptionStatus:  string(user.Tier()),
		OnboardingCompleted: user.OnboardingCompleted,
	}
	var created []domain.User
	if err := r.client.InsertRow(ctx, domain.AccessTokenFromContext(ctx), usersTable, row, &created); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if len(created) == 0 {
		out := *user
		return &out, nil
	}
	return &created[0], nil
}

// ContentRepositoryREST lists content rows through PostgREST.
type ContentRepositoryREST struct {
	client RowClient
}

func NewContentRepositoryREST(client RowClient) *ContentRepositoryREST {
	return &ContentRepositoryREST{client: client}
}

func (r *ContentRepositoryREST) ListByUser(ctx context.Context, userID string) ([]domain.ContentItem, error) {
	items := []domain.ContentItem{}
	q := supabase.From(contentTable).Eq("user_id", userID).Order("created_at", false)
	if err := r.client.SelectRows(ctx, domain.AccessTokenFromContext(ctx), q, &items); err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	return items, nil
}

var (
	_ domain.UserRepository    = (*UserRepositoryREST)(nil)
	_ domain.ContentRepository = (*ContentRepositoryREST)(nil)
)
