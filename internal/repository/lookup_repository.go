package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/history-importer/internal/domain"
	"github.com/spec-kit/history-importer/internal/history"
)

// LookupRepository resolves vendor names against project vocabularies.
type LookupRepository interface {
	history.Lookups
	ListStatuses(ctx context.Context, projectID int64, kind domain.EntityKind) ([]domain.Status, error)
}

type lookupRepository struct {
	pool *pgxpool.Pool
}

// NewLookupRepository returns a Postgres-backed implementation.
func NewLookupRepository(pool *pgxpool.Pool) LookupRepository {
	return &lookupRepository{pool: pool}
}

func (r *lookupRepository) Status(ctx context.Context, projectID int64, kind domain.EntityKind, name string) (history.Ref, error) {
	const query = `SELECT id FROM statuses WHERE project_id=$1 AND entity_kind=$2 AND name=$3`
	return r.ref(ctx, query, projectID, string(kind), name)
}

func (r *lookupRepository) Milestone(ctx context.Context, projectID int64, name string) (history.Ref, error) {
	const query = `SELECT id FROM milestones WHERE project_id=$1 AND name=$2`
	return r.ref(ctx, query, projectID, name)
}

func (r *lookupRepository) CustomAttribute(ctx context.Context, projectID int64, kind domain.EntityKind, name string) (history.Ref, error) {
	const query = `SELECT id FROM custom_attributes WHERE project_id=$1 AND entity_kind=$2 AND name=$3`
	return r.ref(ctx, query, projectID, string(kind), name)
}

func (r *lookupRepository) MainRole(ctx context.Context, projectID int64) (history.Ref, error) {
	const query = `SELECT id FROM roles WHERE project_id=$1 AND slug=$2`
	return r.ref(ctx, query, projectID, domain.MainRoleSlug)
}

// Points returns the points record for value, inserting it when missing.
// The no-op update makes RETURNING yield the existing row on conflict.
func (r *lookupRepository) Points(ctx context.Context, projectID int64, value float64) (int64, error) {
	const query = `
        INSERT INTO points (project_id, name, value, sort_order)
        VALUES ($1,$2,$3,$3)
        ON CONFLICT (project_id, value) DO UPDATE SET value=EXCLUDED.value
        RETURNING id`
	var id int64
	err := r.pool.QueryRow(ctx, query, projectID, PointsName(value), value).Scan(&id)
	return id, err
}

func (r *lookupRepository) ListStatuses(ctx context.Context, projectID int64, kind domain.EntityKind) ([]domain.Status, error) {
	const query = `
        SELECT id, project_id, entity_kind, name, slug, is_closed
        FROM statuses WHERE project_id=$1 AND entity_kind=$2 ORDER BY id`
	rows, err := r.pool.Query(ctx, query, projectID, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Status
	for rows.Next() {
		var status domain.Status
		if err := rows.Scan(
			&status.ID,
			&status.ProjectID,
			&status.EntityKind,
			&status.Name,
			&status.Slug,
			&status.IsClosed,
		); err != nil {
			return nil, err
		}
		result = append(result, status)
	}
	return result, rows.Err()
}

func (r *lookupRepository) ref(ctx context.Context, query string, args ...any) (history.Ref, error) {
	var id int64
	err := r.pool.QueryRow(ctx, query, args...).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return history.Ref{}, nil
	}
	if err != nil {
		return history.Ref{}, err
	}
	return history.Resolved(id), nil
}

// PointsName formats a points value for display: integers without a
// fractional part, everything else in shortest form.
func PointsName(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
