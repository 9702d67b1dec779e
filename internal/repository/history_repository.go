package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/history-importer/internal/domain"
)

// HistoryRepository stores audit entries.
type HistoryRepository interface {
	Create(ctx context.Context, entry *domain.HistoryEntry) error
	CorrectTimestamp(ctx context.Context, id int64, at time.Time) error
	ListByKey(ctx context.Context, projectID int64, key string) ([]domain.HistoryEntry, error)
}

type historyRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository builds repository.
func NewHistoryRepository(pool *pgxpool.Pool) HistoryRepository {
	return &historyRepository{pool: pool}
}

func (r *historyRepository) Create(ctx context.Context, entry *domain.HistoryEntry) error {
	const query = `
        INSERT INTO history_entries (project_id, key, type, user_id, user_name, diff, diff_values, comment, comment_html, is_hidden, is_snapshot)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.ProjectID,
		entry.Key,
		entry.Type,
		entry.Actor.ID,
		entry.Actor.Name,
		entry.Diff,
		entry.Values,
		entry.Comment,
		entry.CommentHTML,
		entry.IsHidden,
		entry.IsSnapshot,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *historyRepository) CorrectTimestamp(ctx context.Context, id int64, at time.Time) error {
	const query = `UPDATE history_entries SET created_at=$1 WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, at, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *historyRepository) ListByKey(ctx context.Context, projectID int64, key string) ([]domain.HistoryEntry, error) {
	const query = `
        SELECT id, project_id, key, type, user_id, user_name, diff, diff_values, comment, comment_html, is_hidden, is_snapshot, created_at
        FROM history_entries WHERE project_id=$1 AND key=$2 ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, projectID, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.HistoryEntry
	for rows.Next() {
		var entry domain.HistoryEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.ProjectID,
			&entry.Key,
			&entry.Type,
			&entry.Actor.ID,
			&entry.Actor.Name,
			&entry.Diff,
			&entry.Values,
			&entry.Comment,
			&entry.CommentHTML,
			&entry.IsHidden,
			&entry.IsSnapshot,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
