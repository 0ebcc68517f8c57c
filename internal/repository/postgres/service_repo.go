package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/NordCoder/homelab/internal/domain/service"
)

var _ service.Repo = (*ServiceRepo)(nil)

type ServiceRepo struct{ db *DB }

func NewServiceRepo(db *DB) *ServiceRepo { return &ServiceRepo{db: db} }

const (
	qServiceInsert = `
INSERT INTO services (user_id, name, url, status)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at, updated_at;`

	qServiceListByOwner = `
SELECT id, user_id, name, url, status, created_at, updated_at
FROM services
WHERE user_id = $1
ORDER BY id;`

	qServiceUpdateStatus = `
UPDATE services
SET status = $2, updated_at = NOW()
WHERE id = $1;`

	qServiceDeleteOwned = `
DELETE FROM services
WHERE id = $1 AND user_id = $2;`
)

func (r *ServiceRepo) Create(ctx context.Context, s *service.Service) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	s.Status = service.StatusUnknown
	err := r.db.Pool.QueryRow(ctx, qServiceInsert, s.OwnerID, s.Name, s.URL, s.Status).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("service insert: %w", err)
	}
	return nil
}

func (r *ServiceRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*service.Service, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qServiceListByOwner, ownerID)
	if err != nil {
		return nil, fmt.Errorf("service list: %w", err)
	}
	defer rows.Close()

	var out []*service.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateStatus joins the transaction carried by ctx, if any.
func (r *ServiceRepo) UpdateStatus(ctx context.Context, id int64, status service.Status) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.execQueryer(ctx).Exec(ctx, qServiceUpdateStatus, id, string(status))
	if err != nil {
		return fmt.Errorf("service update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ServiceRepo) DeleteOwned(ctx context.Context, id, ownerID int64) (bool, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Pool.Exec(ctx, qServiceDeleteOwned, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("service delete: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanService(row pgx.Row) (*service.Service, error) {
	var (
		s      service.Service
		status string
	)
	if err := row.Scan(&s.ID, &s.OwnerID, &s.Name, &s.URL, &status, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan service: %w", err)
	}
	s.Status = service.Status(status)
	return &s, nil
}
