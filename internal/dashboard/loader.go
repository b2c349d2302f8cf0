package dashboard

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/slemppa/storized/internal/domain"
)

// Cache keeps the fetched list per web session so that filtering and the
// modal never go back to the backend.
type Cache interface {
	GetContent(ctx context.Context, sessionID, userID string) ([]domain.ContentItem, bool, error)
	PutContent(ctx context.Context, sessionID, userID string, items []domain.ContentItem) error
	DeleteContent(ctx context.Context, sessionID string) error
}

// Loader fetches a user's content and keeps the cached copy current.
type Loader struct {
	content domain.ContentRepository
	cache   Cache
	logger  zerolog.Logger
}

// NewLoader returns a Loader. cache may be nil, in which case every mount
// fetches.
func NewLoader(content domain.ContentRepository, cache Cache, logger zerolog.Logger) *Loader {
	return &Loader{content: content, cache: cache, logger: logger}
}

// Mount returns the cached list for the session, fetching it on a miss.
func (l *Loader) Mount(ctx context.Context, sessionID string, user domain.User) []domain.ContentItem {
	if l.cache != nil && sessionID != "" {
		items, ok, err := l.cache.GetContent(ctx, sessionID, user.ID)
		if err != nil {
			l.logger.Error().Err(err).Str("session_id", sessionID).Msg("read content cache")
		} else if ok {
			return items
		}
	}
	return l.fetch(ctx, sessionID, user)
}

// Refresh drops the cached copy and fetches again.
func (l *Loader) Refresh(ctx context.Context, sessionID string, user domain.User) []domain.ContentItem {
	if l.cache != nil && sessionID != "" {
		if err := l.cache.DeleteContent(ctx, sessionID); err != nil {
			l.logger.Error().Err(err).Str("session_id", sessionID).Msg("drop content cache")
		}
	}
	return l.fetch(ctx, sessionID, user)
}

// fetch loads the list from the backend. A failure is logged and yields an
// empty list that is not cached, so the next mount tries again.
func (l *Loader) fetch(ctx context.Context, sessionID string, user domain.User) []domain.ContentItem {
	items, err := l.content.ListByUser(ctx, user.ID)
	if err != nil {
		l.logger.Error().Err(err).Str("user_id", user.ID).Msg("fetch content")
		return []domain.ContentItem{}
	}
	if items == nil {
		items = []domain.ContentItem{}
	}
	if l.cache != nil && sessionID != "" {
		if err := l.cache.PutContent(ctx, sessionID, user.ID, items); err != nil {
			l.logger.Error().Err(err).Str("session_id", sessionID).Msg("write content cache")
		}
	}
	return items
}
