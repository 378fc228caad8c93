package warehouses

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/milletflow/milletflow/internal/platform/db"
	"github.com/milletflow/milletflow/internal/shared"
)

type Repository interface {
	List(ctx context.Context) ([]Warehouse, error)
	Get(ctx context.Context, id int64) (Warehouse, error)
	Create(ctx context.Context, warehouse Warehouse) (Warehouse, error)
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db db.DBTX
}

func NewRepository(dbtx db.DBTX) Repository {
	return &repository{db: dbtx}
}

func (r *repository) List(ctx context.Context) ([]Warehouse, error) {
	query := `
		SELECT id, name, location, email, created_at
		FROM warehouses
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Warehouse
	for rows.Next() {
		var w Warehouse
		if err := rows.Scan(&w.ID, &w.Name, &w.Location, &w.Email, &w.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, w)
	}
	return list, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Warehouse, error) {
	query := `
		SELECT id, name, location, email, created_at
		FROM warehouses
		WHERE id = $1
	`
	var w Warehouse
	err := r.db.QueryRow(ctx, query, id).Scan(&w.ID, &w.Name, &w.Location, &w.Email, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Warehouse{}, shared.ErrNotFound
		}
		return Warehouse{}, err
	}
	return w, nil
}

func (r *repository) Create(ctx context.Context, warehouse Warehouse) (Warehouse, error) {
	query := `
		INSERT INTO warehouses (name, location, email)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, warehouse.Name, warehouse.Location, warehouse.Email).
		Scan(&warehouse.ID, &warehouse.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Warehouse{}, shared.Invalid("warehouse email already exists")
		}
		return Warehouse{}, err
	}
	return warehouse, nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM warehouses`).Scan(&total)
	return total, err
}
