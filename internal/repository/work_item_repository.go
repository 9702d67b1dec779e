package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/history-importer/internal/domain"
)

// WorkItemRepository reads and back-dates target stories, tasks, issues and epics.
type WorkItemRepository interface {
	Get(ctx context.Context, kind domain.EntityKind, id int64) (*domain.Entity, error)
	Backdate(ctx context.Context, entity domain.Entity, at time.Time) error
}

type workItemRepository struct {
	pool *pgxpool.Pool
}

// NewWorkItemRepository returns a Postgres-backed implementation.
func NewWorkItemRepository(pool *pgxpool.Pool) WorkItemRepository {
	return &workItemRepository{pool: pool}
}

func (r *workItemRepository) Get(ctx context.Context, kind domain.EntityKind, id int64) (*domain.Entity, error) {
	const query = `
        SELECT id, project_id, kind, external_id, created_date
        FROM work_items WHERE kind=$1 AND id=$2`
	var entity domain.Entity
	if err := r.pool.QueryRow(ctx, query, string(kind), id).Scan(
		&entity.ID,
		&entity.ProjectID,
		&entity.Kind,
		&entity.ExternalID,
		&entity.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &entity, nil
}

// Backdate moves the creation date back to at. Later dates are left alone.
func (r *workItemRepository) Backdate(ctx context.Context, entity domain.Entity, at time.Time) error {
	const query = `
        UPDATE work_items SET created_date=$1
        WHERE kind=$2 AND id=$3 AND created_date > $1`
	_, err := r.pool.Exec(ctx, query, at, string(entity.Kind), entity.ID)
	return err
}
