package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/slemppa/storized/internal/domain"
	"github.com/slemppa/storized/internal/infra"
	"github.com/slemppa/storized/internal/sqlinline"
)

// UserRepositoryPG implements domain.UserRepository backed by PostgreSQL.
type UserRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewUserRepository creates a new UserRepositoryPG.
func NewUserRepository(sql infra.SQLExecutor) *UserRepositoryPG {
	return &UserRepositoryPG{sql: sql}
}

// GetByAuthUserID fetches the profile linked to an auth identity.
func (r *UserRepositoryPG) GetByAuthUserID(ctx context.Context, authUserID string) (*domain.User, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectUserByAuthID, authUserID)
	return scanUser(row)
}

// Create inserts a profile row and returns it with server defaults applied.
func (r *UserRepositoryPG) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, fmt.Errorf("create user: %w", domain.ErrInvalidRequest)
	}
	row := r.sql.QueryRow(ctx, sqlinline.QInsertUser,
		user.AuthUserID,
		user.Email,
		user.FullName,
		string(user.Tier()),
		user.OnboardingCompleted,
	)
	created, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var tier string
	if err := row.Scan(&u.ID, &u.AuthUserID, &u.Email, &u.FullName, &tier, &u.OnboardingCompleted, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	u.SubscriptionStatus = domain.SubscriptionTier(tier)
	return &u, nil
}

var _ domain.UserRepository = (*UserRepositoryPG)(nil)
