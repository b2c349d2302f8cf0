// Package session resolves the signed-in user for a request.
//
// A browser holds only an opaque session id. The backend tokens live in the
// local store and are refreshed here when they expire.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/slemppa/storized/internal/domain"
	"github.com/slemppa/storized/internal/storage/sqlite"
)

// State is the resolved session for one request. User is nil while no
// profile could be resolved, and Err then says why.
type State struct {
	User        *domain.User
	Identity    *domain.Identity
	Loading     bool
	SessionID   string
	AccessToken string
	Err         error
}

// Initial is the state before bootstrap has run.
func Initial() State {
	return State{Loading: true}
}

// Authenticated reports whether a profile was resolved.
func (s State) Authenticated() bool {
	return s.User != nil
}

// Revoked reports whether the session can never resolve again: it is gone
// locally or the backend rejected its tokens. Transient failures are not
// revocations.
func (s State) Revoked() bool {
	return errors.Is(s.Err, domain.ErrSessionExpired) || errors.Is(s.Err, domain.ErrUnauthorized)
}

// Context returns ctx carrying the session's access token for repository calls.
func (s State) Context(ctx context.Context) context.Context {
	return domain.ContextWithAccessToken(ctx, s.AccessToken)
}

// Store persists session records.
type Store interface {
	SaveSession(ctx context.Context, sess sqlite.Session) error
	GetSession(ctx context.Context, id string) (sqlite.Session, bool, error)
	DeleteSession(ctx context.Context, id string) error
}

// TokenInspector decides whether an access token must be refreshed.
type TokenInspector interface {
	NeedsRefresh(token string, now time.Time) bool
}

// Options configures a Manager.
type Options struct {
	Auth   domain.AuthService
	Users  domain.UserRepository
	Store  Store
	Tokens TokenInspector
	TTL    time.Duration
	Logger zerolog.Logger
}

// Manager creates, resolves and ends web sessions.
type Manager struct {
	auth   domain.AuthService
	users  domain.UserRepository
	store  Store
	tokens TokenInspector
	ttl    time.Duration
	logger zerolog.Logger
	now    func() time.Time
}

// NewManager validates dependencies and returns a Manager.
func NewManager(opts Options) (*Manager, error) {
	if opts.Auth == nil {
		return nil, errors.New("session: auth service is required")
	}
	if opts.Users == nil {
		return nil, errors.New("session: user repository is required")
	}
	if opts.Store == nil {
		return nil, errors.New("session: store is required")
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Manager{
		auth:   opts.Auth,
		users:  opts.Users,
		store:  opts.Store,
		tokens: opts.Tokens,
		ttl:    ttl,
		logger: opts.Logger,
		now:    time.Now,
	}, nil
}

// TTL is the lifetime of new sessions.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Begin stores an authenticated backend session and returns its opaque id.
func (m *Manager) Begin(ctx context.Context, authSession *domain.AuthSession) (string, error) {
	if authSession == nil || !authSession.Active() {
		return "", fmt.Errorf("begin session: %w", domain.ErrUnauthorized)
	}
	now := m.now().UTC()
	sess := sqlite.Session{
		ID:             uuid.NewString(),
		AuthUserID:     authSession.User.ID,
		AccessToken:    authSession.AccessToken,
		RefreshToken:   authSession.RefreshToken,
		TokenExpiresAt: authSession.ExpiresAt,
		CreatedAt:      now,
		ExpiresAt:      now.Add(m.ttl),
	}
	if err := m.store.SaveSession(ctx, sess); err != nil {
		return "", fmt.Errorf("begin session: %w", err)
	}
	return sess.ID, nil
}

// Load runs the full bootstrap for sessionID: identity first, then the
// profile row. Every failure is logged and yields a state without a user.
// One attempt is made per call. A resolved profile is kept on the session
// row for Resume.
func (m *Manager) Load(ctx context.Context, sessionID string) State {
	state, sess, ok := m.open(ctx, sessionID)
	if !ok {
		return state
	}
	log := m.logger.With().Str("session_id", state.SessionID).Logger()

	identity, err := m.auth.GetUser(ctx, sess.AccessToken)
	if err != nil {
		log.Error().Err(err).Msg("fetch current user")
		state.Err = err
		return state
	}
	state.Identity = identity

	profile, err := m.users.GetByAuthUserID(state.Context(ctx), identity.ID)
	if err != nil {
		log.Error().Err(err).Str("auth_user_id", identity.ID).Msg("fetch profile")
		state.Err = err
		return state
	}
	state.User = profile

	sess.Profile = profile
	if err := m.store.SaveSession(ctx, sess); err != nil {
		log.Warn().Err(err).Msg("keep profile on session")
	}
	return state
}

// Resume resolves sessionID from the local record alone, using the profile
// kept by the last Load. The backend is only called when the access token
// needs a refresh. Sessions without a kept profile fall back to Load.
func (m *Manager) Resume(ctx context.Context, sessionID string) State {
	state, sess, ok := m.open(ctx, sessionID)
	if !ok {
		return state
	}
	if sess.Profile == nil {
		return m.Load(ctx, sessionID)
	}
	state.User = sess.Profile
	return state
}

// open reads the local session and refreshes its tokens when needed.
func (m *Manager) open(ctx context.Context, sessionID string) (State, sqlite.Session, bool) {
	state := State{SessionID: strings.TrimSpace(sessionID)}
	if state.SessionID == "" {
		state.Err = domain.ErrSessionExpired
		return state, sqlite.Session{}, false
	}
	log := m.logger.With().Str("session_id", state.SessionID).Logger()

	sess, ok, err := m.store.GetSession(ctx, state.SessionID)
	if err != nil {
		log.Error().Err(err).Msg("load session")
		state.Err = err
		return state, sqlite.Session{}, false
	}
	if !ok {
		state.Err = domain.ErrSessionExpired
		return state, sqlite.Session{}, false
	}

	if m.needsRefresh(sess) {
		refreshed, err := m.refresh(ctx, sess)
		if err != nil {
			log.Error().Err(err).Msg("refresh session")
			if errors.Is(err, domain.ErrUnauthorized) {
				err = fmt.Errorf("%w: %w", domain.ErrSessionExpired, err)
			}
			state.Err = err
			return state, sqlite.Session{}, false
		}
		sess = refreshed
	}
	state.AccessToken = sess.AccessToken
	return state, sess, true
}

// End signs the session out of the backend and deletes the local record.
// Backend sign-out failures are logged; the local session is removed anyway.
func (m *Manager) End(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil
	}
	sess, ok, err := m.store.GetSession(ctx, sessionID)
	if err != nil {
		m.logger.Error().Err(err).Str("session_id", sessionID).Msg("load session for sign out")
	}
	if ok {
		if err := m.auth.SignOut(ctx, sess.AccessToken); err != nil {
			m.logger.Error().Err(err).Str("session_id", sessionID).Msg("backend sign out")
		}
	}
	if err := m.store.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

func (m *Manager) needsRefresh(sess sqlite.Session) bool {
	if m.tokens != nil {
		return m.tokens.NeedsRefresh(sess.AccessToken, m.now())
	}
	return !sess.TokenExpiresAt.IsZero() && !m.now().Before(sess.TokenExpiresAt)
}

func (m *Manager) refresh(ctx context.Context, sess sqlite.Session) (sqlite.Session, error) {
	if sess.RefreshToken == "" {
		return sqlite.Session{}, domain.ErrSessionExpired
	}
	authSession, err := m.auth.Refresh(ctx, sess.RefreshToken)
	if err != nil {
		return sqlite.Session{}, err
	}
	sess.AccessToken = authSession.AccessToken
	if authSession.RefreshToken != "" {
		sess.RefreshToken = authSession.RefreshToken
	}
	sess.TokenExpiresAt = authSession.ExpiresAt
	if err := m.store.SaveSession(ctx, sess); err != nil {
		return sqlite.Session{}, err
	}
	return sess, nil
}
