package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/igorobed/hw3-api/internal/core/shorturl"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// =============================================================================
// PostgresStore
// =============================================================================

// PostgresStore implements Store using PostgreSQL.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a new Postgres store and runs migrations.
// The DSN is a standard postgres URL, e.g.
// postgres://user:pass@db:5432/app_db?sslmode=disable
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, NewStoreError("NewPostgresStore", "", "failed to open database", ErrConnectionFailed)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, NewStoreError("NewPostgresStore", "", "failed to ping database", ErrConnectionFailed)
	}

	if err := runMigrations(db.DB); err != nil {
		db.Close()
		return nil, NewStoreError("NewPostgresStore", "", err.Error(), ErrMigrationFailed)
	}

	return &PostgresStore{db: db}, nil
}

// runMigrations runs database migrations using embedded SQL files.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// =============================================================================
// Link Operations
// =============================================================================

// CreateLink inserts a new link.
func (s *PostgresStore) CreateLink(ctx context.Context, link *shorturl.Link) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO urls_db (short, original, registered_at, get_num, last_time)
		VALUES (:short, :original, :registered_at, :get_num, :last_time)`,
		link,
	)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value") {
			return NewStoreError("CreateLink", link.Code, "short code already exists", ErrDuplicateCode)
		}
		return NewStoreError("CreateLink", link.Code, err.Error(), err)
	}
	return nil
}

// GetLink returns the link for a short code.
func (s *PostgresStore) GetLink(ctx context.Context, code string) (*shorturl.Link, error) {
	var link shorturl.Link
	err := s.db.GetContext(ctx, &link, `
		SELECT short, original, registered_at, get_num, last_time
		FROM urls_db
		WHERE short = $1`,
		code,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetLink", code, "link not found", ErrNotFound)
		}
		return nil, NewStoreError("GetLink", code, err.Error(), err)
	}
	return &link, nil
}

// FindByOriginal returns all links registered for an original URL.
func (s *PostgresStore) FindByOriginal(ctx context.Context, original string) ([]shorturl.Link, error) {
	var links []shorturl.Link
	err := s.db.SelectContext(ctx, &links, `
		SELECT short, original, registered_at, get_num, last_time
		FROM urls_db
		WHERE original = $1
		ORDER BY registered_at`,
		original,
	)
	if err != nil {
		return nil, NewStoreError("FindByOriginal", "", err.Error(), err)
	}
	return links, nil
}

// UpdateOriginal replaces the original URL of a link.
func (s *PostgresStore) UpdateOriginal(ctx context.Context, code, original string) (*shorturl.Link, error) {
	var link shorturl.Link
	err := s.db.GetContext(ctx, &link, `
		UPDATE urls_db
		SET original = $1
		WHERE short = $2
		RETURNING short, original, registered_at, get_num, last_time`,
		original, code,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("UpdateOriginal", code, "link not found", ErrNotFound)
		}
		return nil, NewStoreError("UpdateOriginal", code, err.Error(), err)
	}
	return &link, nil
}

// DeleteLink removes a link.
func (s *PostgresStore) DeleteLink(ctx context.Context, code string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM urls_db WHERE short = $1`, code)
	if err != nil {
		return NewStoreError("DeleteLink", code, err.Error(), err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return NewStoreError("DeleteLink", code, err.Error(), err)
	}
	if affected == 0 {
		return NewStoreError("DeleteLink", code, "link not found", ErrNotFound)
	}
	return nil
}

// RecordHit increments the lookup counter and stamps the access time.
// The increment runs in the database, so concurrent lookups never lose hits.
func (s *PostgresStore) RecordHit(ctx context.Context, code string, at time.Time) (*shorturl.Link, error) {
	var link shorturl.Link
	err := s.db.GetContext(ctx, &link, `
		UPDATE urls_db
		SET get_num = get_num + 1, last_time = $1
		WHERE short = $2
		RETURNING short, original, registered_at, get_num, last_time`,
		at, code,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("RecordHit", code, "link not found", ErrNotFound)
		}
		return nil, NewStoreError("RecordHit", code, err.Error(), err)
	}
	return &link, nil
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return NewStoreError("Ping", "", err.Error(), ErrConnectionFailed)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
