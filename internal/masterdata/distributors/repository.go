package distributors

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/milletflow/milletflow/internal/platform/db"
	"github.com/milletflow/milletflow/internal/shared"
)

type Repository interface {
	List(ctx context.Context) ([]Distributor, error)
	ListByWarehouse(ctx context.Context, warehouseID int64) ([]Distributor, error)
	Get(ctx context.Context, id int64) (Distributor, error)
	Create(ctx context.Context, distributor Distributor) (Distributor, error)
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db db.DBTX
}

func NewRepository(dbtx db.DBTX) Repository {
	return &repository{db: dbtx}
}

func (r *repository) List(ctx context.Context) ([]Distributor, error) {
	query := `
		SELECT id, name, city, email, warehouse_id, created_at
		FROM distributors
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDistributors(rows)
}

func (r *repository) ListByWarehouse(ctx context.Context, warehouseID int64) ([]Distributor, error) {
	query := `
		SELECT id, name, city, email, warehouse_id, created_at
		FROM distributors
		WHERE warehouse_id = $1
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query, warehouseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDistributors(rows)
}

func (r *repository) Get(ctx context.Context, id int64) (Distributor, error) {
	query := `
		SELECT id, name, city, email, warehouse_id, created_at
		FROM distributors
		WHERE id = $1
	`
	var d Distributor
	err := r.db.QueryRow(ctx, query, id).Scan(&d.ID, &d.Name, &d.City, &d.Email, &d.WarehouseID, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Distributor{}, shared.ErrNotFound
		}
		return Distributor{}, err
	}
	return d, nil
}

func (r *repository) Create(ctx context.Context, distributor Distributor) (Distributor, error) {
	query := `
		INSERT INTO distributors (name, city, email, warehouse_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, distributor.Name, distributor.City, distributor.Email, distributor.WarehouseID).
		Scan(&distributor.ID, &distributor.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return Distributor{}, shared.Invalid("distributor email already exists")
			case "23503":
				return Distributor{}, shared.ErrNotFound
			}
		}
		return Distributor{}, err
	}
	return distributor, nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM distributors`).Scan(&total)
	return total, err
}

func scanDistributors(rows pgx.Rows) ([]Distributor, error) {
	var list []Distributor
	for rows.Next() {
		var d Distributor
		if err := rows.Scan(&d.ID, &d.Name, &d.City, &d.Email, &d.WarehouseID, &d.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}
