// Package sqlite stores web sessions and the per-session content cache.
//
// Everything here is derived state: a lost database only signs users out and
// forces one content re-fetch.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/slemppa/storized/internal/domain"
	"github.com/slemppa/storized/internal/storage/sqlite/migrations"
)

// Session is a server-side record of one signed-in browser.
type Session struct {
	ID             string
	AuthUserID     string
	AccessToken    string
	RefreshToken   string
	TokenExpiresAt time.Time
	CreatedAt      time.Time
	ExpiresAt      time.Time
	// Profile is the users row resolved by the last full bootstrap. Nil until
	// one has succeeded.
	Profile *domain.User
}

// Store provides SQLite-backed persistence for sessions and cached content.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens and migrates the store at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB, now: time.Now}
	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

// SaveSession upserts a session by id.
func (s *Store) SaveSession(ctx context.Context, sess Session) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	sess.ID = strings.TrimSpace(sess.ID)
	if sess.ID == "" {
		return fmt.Errorf("session id is required")
	}
	if sess.AccessToken == "" {
		return fmt.Errorf("access token is required")
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = s.now().UTC()
	}

	var profile []byte
	if sess.Profile != nil {
		encoded, err := json.Marshal(sess.Profile)
		if err != nil {
			return fmt.Errorf("encode session profile: %w", err)
		}
		profile = encoded
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO web_sessions (id, auth_user_id, access_token, refresh_token, token_expires_at, created_at, expires_at, profile_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		    auth_user_id = excluded.auth_user_id,
		    access_token = excluded.access_token,
		    refresh_token = excluded.refresh_token,
		    token_expires_at = excluded.token_expires_at,
		    expires_at = excluded.expires_at,
		    profile_json = excluded.profile_json`,
		sess.ID,
		sess.AuthUserID,
		sess.AccessToken,
		sess.RefreshToken,
		timeToUnixMillis(sess.TokenExpiresAt),
		timeToUnixMillis(sess.CreatedAt),
		timeToUnixMillis(sess.ExpiresAt),
		profile,
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// GetSession loads an unexpired session by id.
func (s *Store) GetSession(ctx context.Context, id string) (Session, bool, error) {
	if s == nil || s.sqlDB == nil {
		return Session{}, false, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Session{}, false, nil
	}

	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, auth_user_id, access_token, refresh_token, token_expires_at, created_at, expires_at, profile_json
		 FROM web_sessions
		 WHERE id = ? AND expires_at > ?`,
		id, timeToUnixMillis(s.now()),
	)
	var sess Session
	var tokenExpiresAt, createdAt, expiresAt int64
	var profile []byte
	if err := row.Scan(&sess.ID, &sess.AuthUserID, &sess.AccessToken, &sess.RefreshToken, &tokenExpiresAt, &createdAt, &expiresAt, &profile); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, false, nil
		}
		return Session{}, false, fmt.Errorf("get session: %w", err)
	}
	sess.TokenExpiresAt = unixMillisToTime(tokenExpiresAt)
	sess.CreatedAt = unixMillisToTime(createdAt)
	sess.ExpiresAt = unixMillisToTime(expiresAt)
	if len(profile) > 0 {
		var user domain.User
		if err := json.Unmarshal(profile, &user); err != nil {
			return Session{}, false, fmt.Errorf("decode session profile: %w", err)
		}
		sess.Profile = &user
	}
	return sess, true, nil
}

// DeleteSession removes a session and, through the foreign key, its cached content.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM web_sessions WHERE id = ?`, strings.TrimSpace(id)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PurgeExpired deletes sessions whose expiry is before now.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM web_sessions WHERE expires_at <= ?`, timeToUnixMillis(s.now()))
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// PutContent replaces the cached content list for a session.
func (s *Store) PutContent(ctx context.Context, sessionID, userID string, items []domain.ContentItem) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if items == nil {
		items = []domain.ContentItem{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode content: %w", err)
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO content_cache (session_id, user_id, payload_json, fetched_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET
		    user_id = excluded.user_id,
		    payload_json = excluded.payload_json,
		    fetched_at = excluded.fetched_at`,
		sessionID, userID, payload, timeToUnixMillis(s.now()),
	)
	if err != nil {
		return fmt.Errorf("put content: %w", err)
	}
	return nil
}

// GetContent returns the cached list for a session when it belongs to userID.
func (s *Store) GetContent(ctx context.Context, sessionID, userID string) ([]domain.ContentItem, bool, error) {
	if s == nil || s.sqlDB == nil {
		return nil, false, fmt.Errorf("storage is not configured")
	}
	var payload []byte
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT payload_json FROM content_cache WHERE session_id = ? AND user_id = ?`,
		sessionID, userID,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get content: %w", err)
	}
	var items []domain.ContentItem
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, false, fmt.Errorf("decode content: %w", err)
	}
	return items, true, nil
}

// DeleteContent drops the cached list for a session.
func (s *Store) DeleteContent(ctx context.Context, sessionID string) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM content_cache WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	return nil
}

// applyMigrations executes embedded *.sql files at most once each.
func applyMigrations(sqlDB *sql.DB, migrationFS fs.FS) error {
	entries, err := fs.ReadDir(migrationFS, ".")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	if _, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (name TEXT PRIMARY KEY, applied_at INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}
	for _, file := range files {
		var applied int
		if err := sqlDB.QueryRow(`SELECT COUNT(1) FROM schema_migrations WHERE name = ?`, file).Scan(&applied); err != nil {
			return fmt.Errorf("check migration %s: %w", file, err)
		}
		if applied > 0 {
			continue
		}
		body, err := fs.ReadFile(migrationFS, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		if _, err := sqlDB.Exec(string(body)); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
		if _, err := sqlDB.Exec(`INSERT INTO schema_migrations (name, applied_at) VALUES (?, ?)`, file, time.Now().UnixMilli()); err != nil {
			return fmt.Errorf("record migration %s: %w", file, err)
		}
	}
	return nil
}

func timeToUnixMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UTC().UnixMilli()
}

func unixMillisToTime(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
