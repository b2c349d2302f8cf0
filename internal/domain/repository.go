package domain

import "context"

// UserRepository defines access methods for profile rows.
type UserRepository interface {
	GetByAuthUserID(ctx context.Context, authUserID string) (*User, error)
	Create(ctx context.Context, user *User) (*User, error)
}

// ContentRepository reads content rows owned by a profile.
type ContentRepository interface {
	// ListByUser returns the user's items ordered newest first.
	ListByUser(ctx context.Context, userID string) ([]ContentItem, error)
}

// AuthService is the subset of the hosted auth API used by the client.
type AuthService interface {
	GetUser(ctx context.Context, accessToken string) (*Identity, error)
	SignIn(ctx context.Context, email, password string) (*AuthSession, error)
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (*AuthSession, error)
	SignOut(ctx context.Context, accessToken string) error
	Refresh(ctx context.Context, refreshToken string) (*AuthSession, error)
}
