package activity

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/milletflow/milletflow/internal/platform/db"
)

type Repository interface {
	Insert(ctx context.Context, source, description string) error
	RecentForLocation(ctx context.Context, location string, limit int) ([]Entry, error)
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db db.DBTX
}

func NewRepository(dbtx db.DBTX) Repository {
	return &repository{db: dbtx}
}

func (r *repository) Insert(ctx context.Context, source, description string) error {
	query := `
		INSERT INTO activity_log (source, description)
		VALUES ($1, $2)
	`
	_, err := r.db.Exec(ctx, query, source, description)
	return err
}

// RecentForLocation matches entries whose source starts with "<location> (",
// so every actor acting at that location is included.
func (r *repository) RecentForLocation(ctx context.Context, location string, limit int) ([]Entry, error) {
	query := `
		SELECT id, source, description, timestamp
		FROM activity_log
		WHERE source LIKE $1
		ORDER BY timestamp DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, location+" (%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (r *repository) Recent(ctx context.Context, limit int) ([]Entry, error) {
	query := `
		SELECT id, source, description, timestamp
		FROM activity_log
		ORDER BY timestamp DESC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM activity_log`).Scan(&total)
	return total, err
}

func scanEntries(rows pgx.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Source, &e.Description, &e.Timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
