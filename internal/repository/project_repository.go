package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProjectRepository updates project-level settings touched by imports.
type ProjectRepository interface {
	MergeTagColors(ctx context.Context, projectID int64, colors map[string]string) error
}

type projectRepository struct {
	pool *pgxpool.Pool
}

// NewProjectRepository returns a Postgres-backed implementation.
func NewProjectRepository(pool *pgxpool.Pool) ProjectRepository {
	return &projectRepository{pool: pool}
}

// MergeTagColors adds colors to the project's tag palette, overwriting
// existing entries with the same tag.
func (r *projectRepository) MergeTagColors(ctx context.Context, projectID int64, colors map[string]string) error {
	if len(colors) == 0 {
		return nil
	}
	const query = `UPDATE projects SET tags_colors = tags_colors || $1::jsonb WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, colors, projectID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
