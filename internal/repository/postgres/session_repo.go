package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/NordCoder/homelab/internal/domain/session"
)

var _ session.Repo = (*SessionRepo)(nil)

type SessionRepo struct{ db *DB }

func NewSessionRepo(db *DB) *SessionRepo { return &SessionRepo{db: db} }

const (
	qSessionCreate = `
INSERT INTO sessions (user_id, token_hash, issued_at, expires_at, revoked)
VALUES ($1, $2, $3, $4, FALSE)
RETURNING id;`

	qSessionFindValid = `
SELECT s.id, s.user_id, u.username, s.token_hash, s.issued_at, s.expires_at
FROM sessions s
JOIN users u ON u.id = s.user_id
WHERE s.token_hash = $1 AND s.revoked = FALSE AND s.expires_at > NOW()
LIMIT 1;`

	qSessionRevoke = `
UPDATE sessions SET revoked = TRUE WHERE token_hash = $1;`
)

func (r *SessionRepo) Create(ctx context.Context, s *session.Session) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	err := r.db.Pool.QueryRow(ctx, qSessionCreate, s.UserID, s.TokenHash, s.IssuedAt, s.ExpiresAt).Scan(&s.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("session create: %w", err)
	}
	return nil
}

func (r *SessionRepo) FindValid(ctx context.Context, tokenHash string) (*session.Session, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var s session.Session
	if err := r.db.Pool.QueryRow(ctx, qSessionFindValid, tokenHash).
		Scan(&s.ID, &s.UserID, &s.Username, &s.TokenHash, &s.IssuedAt, &s.ExpiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("session find valid: %w", err)
	}
	return &s, nil
}

func (r *SessionRepo) Revoke(ctx context.Context, tokenHash string) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.Pool.Exec(ctx, qSessionRevoke, tokenHash); err != nil {
		return fmt.Errorf("session revoke: %w", err)
	}
	return nil
}
