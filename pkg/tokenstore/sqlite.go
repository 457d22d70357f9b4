package tokenstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/madfam-org/janua-go/pkg/tokenstore/migrations"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the durable store variant. It survives process restarts,
// which makes it the right choice for CLI tools and long-lived daemons that
// should not force a fresh sign-in on every start.
type SQLiteStore struct {
	db     *sql.DB
	prefix string
	now    func() time.Time
}

// NewSQLiteStore opens (creating if needed) the database at dsn and applies
// any pending schema migrations. An unusable path or file is a configuration
// error, not a retryable condition.
func NewSQLiteStore(dsn, prefix string) (*SQLiteStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("tokenstore: sqlite dsn is required")
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("tokenstore: open %s: %w", dsn, err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("tokenstore: open %s: %w", dsn, err)
	}

	s := &SQLiteStore{db: db, prefix: prefix, now: time.Now}
	if err := s.applyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("tokenstore: migrate %s: %w", dsn, err)
	}

	return s, nil
}

// applyMigrations applies the embedded migration files. Uses the same
// iofs-backed flow as any other migrate-managed schema.
func (s *SQLiteStore) applyMigrations() error {
	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return err
	}

	src, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return err
	}

	instance, err := migrate.NewWithInstance("iofs", src, "", driver)
	if err != nil {
		return err
	}

	if err := instance.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, error) {
	k := s.prefix + key

	var value string
	var expiresAt sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM entries WHERE key = ?`, k,
	).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("tokenstore: get %s: %w", key, err)
	}

	if expiresAt.Valid && s.now().After(expiresAt.Time) {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM entries WHERE key = ?`, k)
		return "", ErrNotFound
	}
	return value, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string, expiresAt time.Time) error {
	var exp sql.NullTime
	if !expiresAt.IsZero() {
		exp = sql.NullTime{Time: expiresAt.UTC(), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (key, value, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		s.prefix+key, value, exp,
	)
	if err != nil {
		return fmt.Errorf("tokenstore: set %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE key = ?`, s.prefix+key); err != nil {
		return fmt.Errorf("tokenstore: remove %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	// Escape LIKE wildcards so a prefix containing % or _ only matches
	// itself.
	pattern := likeEscape(s.prefix) + "%"
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM entries WHERE key LIKE ? ESCAPE '\'`, pattern,
	); err != nil {
		return fmt.Errorf("tokenstore: clear: %w", err)
	}
	return nil
}

func likeEscape(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
