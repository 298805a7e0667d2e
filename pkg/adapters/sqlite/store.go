// Package sqlite keeps fallback attempts in a local SQLite database, so rejected
// submissions survive restarts of the client.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
	_ "modernc.org/sqlite"
)

// Store implements ports.FallbackStore on SQLite.
type Store struct {
	db *sql.DB
}

var _ ports.FallbackStore = (*Store)(nil)

// Open opens the database at path and applies migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append implements ports.FallbackStore.
func (s *Store) Append(ctx context.Context, attempt domain.Attempt) error {
	if strings.TrimSpace(attempt.ID) == "" {
		return fmt.Errorf("attempt id is required")
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now().UTC()
	}
	payload := attempt.Payload
	if payload == nil {
		payload = []byte{}
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO fallback_attempts (id, kind, target_id, payload, reason, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`,
		attempt.ID,
		string(attempt.Kind),
		attempt.TargetID,
		payload,
		attempt.Reason,
		attempt.CreatedAt.UTC().UnixMilli(),
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return fmt.Errorf("append attempt %s: %w", attempt.ID, domain.ErrDuplicateID)
		}
		return fmt.Errorf("append attempt %s: %w", attempt.ID, err)
	}
	return nil
}

const selectAttempt = `SELECT id, kind, target_id, payload, reason, created_at FROM fallback_attempts`

// Latest implements ports.FallbackStore.
func (s *Store) Latest(ctx context.Context, kind domain.AttemptKind) (domain.Attempt, error) {
	row := s.db.QueryRowContext(ctx, selectAttempt+` WHERE kind = ? ORDER BY seq DESC LIMIT 1`, string(kind))
	a, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("latest attempt: %w", err)
	}
	return a, nil
}

// List implements ports.FallbackStore.
func (s *Store) List(ctx context.Context, kind domain.AttemptKind) ([]domain.Attempt, error) {
	rows, err := s.db.QueryContext(ctx, selectAttempt+` WHERE kind = ? ORDER BY seq ASC`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var out []domain.Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return out, nil
}

// Delete implements ports.FallbackStore.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM fallback_attempts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete attempt %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete attempt %s: %w", id, err)
	}
	if n == 0 {
		return domain.ErrAttemptNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row scanner) (domain.Attempt, error) {
	var (
		a         domain.Attempt
		kind      string
		createdAt int64
	)
	if err := row.Scan(&a.ID, &kind, &a.TargetID, &a.Payload, &a.Reason, &createdAt); err != nil {
		return domain.Attempt{}, err
	}
	a.Kind = domain.AttemptKind(kind)
	a.CreatedAt = time.UnixMilli(createdAt).UTC()
	return a, nil
}
