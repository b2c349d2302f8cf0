package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/slemppa/storized/internal/domain"
)

type passwordGrant struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshGrant struct {
	RefreshToken string `json:"refresh_token"`
}

type signUpRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data,omitempty"`
}

// tokenResponse is returned by the token endpoint and by sign-up when email
// confirmation is disabled. With confirmation enabled, sign-up returns the
// bare user object instead, which lands in the embedded identity fields.
type tokenResponse struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	ExpiresIn    int64            `json:"expires_in"`
	ExpiresAt    int64            `json:"expires_at"`
	User         *domain.Identity `json:"user"`

	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

func (t tokenResponse) session(now time.Time) *domain.AuthSession {
	sess := &domain.AuthSession{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
	}
	switch {
	case t.ExpiresAt > 0:
		sess.ExpiresAt = time.Unix(t.ExpiresAt, 0).UTC()
	case t.ExpiresIn > 0:
		sess.ExpiresAt = now.Add(time.Duration(t.ExpiresIn) * time.Second).UTC()
	}
	if t.User != nil {
		sess.User = *t.User
	} else if t.ID != "" {
		sess.User = domain.Identity{ID: t.ID, Email: t.Email, UserMetadata: t.UserMetadata}
	}
	return sess
}

// SignIn exchanges email and password for a session.
func (c *Client) SignIn(ctx context.Context, email, password string) (*domain.AuthSession, error) {
	var resp tokenResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  url.Values{"grant_type": {"password"}},
		body:   passwordGrant{Email: strings.TrimSpace(email), Password: password},
	}, &resp)
	if err != nil {
		return nil, authError(err)
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("supabase: sign in returned no session: %w", domain.ErrBackend)
	}
	return resp.session(time.Now()), nil
}

// SignUp registers a new account. The returned session has no access token
// when the project requires email confirmation.
func (c *Client) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*domain.AuthSession, error) {
	var resp tokenResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/signup",
		body:   signUpRequest{Email: strings.TrimSpace(email), Password: password, Data: metadata},
	}, &resp)
	if err != nil {
		return nil, authError(err)
	}
	return resp.session(time.Now()), nil
}

// Refresh exchanges a refresh token for a new session.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*domain.AuthSession, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, fmt.Errorf("supabase: refresh token is required: %w", domain.ErrSessionExpired)
	}
	var resp tokenResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  url.Values{"grant_type": {"refresh_token"}},
		body:   refreshGrant{RefreshToken: refreshToken},
	}, &resp)
	if err != nil {
		return nil, authError(err)
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("supabase: refresh returned no session: %w", domain.ErrSessionExpired)
	}
	return resp.session(time.Now()), nil
}

// GetUser returns the identity behind accessToken.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*domain.Identity, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, fmt.Errorf("supabase: access token is required: %w", domain.ErrUnauthorized)
	}
	var identity domain.Identity
	err := c.do(ctx, request{
		method:      http.MethodGet,
		path:        "/auth/v1/user",
		accessToken: accessToken,
	}, &identity)
	if err != nil {
		return nil, err
	}
	if identity.ID == "" {
		return nil, fmt.Errorf("supabase: user response without id: %w", domain.ErrBackend)
	}
	return &identity, nil
}

// SignOut revokes the session behind accessToken.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	if strings.TrimSpace(accessToken) == "" {
		return nil
	}
	return c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/auth/v1/logout",
		accessToken: accessToken,
	}, nil)
}

// authError maps credential rejections on the auth endpoints to ErrUnauthorized
// while keeping the backend message.
func authError(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && errors.Is(apiErr.kind, domain.ErrInvalidRequest) {
		apiErr.kind = domain.ErrUnauthorized
	}
	return err
}

var _ domain.AuthService = (*Client)(nil)
