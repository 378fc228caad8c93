package products

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/milletflow/milletflow/internal/platform/db"
	"github.com/milletflow/milletflow/internal/shared"
)

type Repository interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id int64) (Product, error)
	GetBySKU(ctx context.Context, sku string) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db db.DBTX
}

func NewRepository(dbtx db.DBTX) Repository {
	return &repository{db: dbtx}
}

func (r *repository) List(ctx context.Context) ([]Product, error) {
	query := `
		SELECT id, name, sku, ean, unit, mrp, created_at
		FROM products
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.EAN, &p.Unit, &p.MRP, &p.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	query := `
		SELECT id, name, sku, ean, unit, mrp, created_at
		FROM products
		WHERE id = $1
	`
	var p Product
	err := r.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.SKU, &p.EAN, &p.Unit, &p.MRP, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, shared.ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *repository) GetBySKU(ctx context.Context, sku string) (Product, error) {
	query := `
		SELECT id, name, sku, ean, unit, mrp, created_at
		FROM products
		WHERE sku = $1
	`
	var p Product
	err := r.db.QueryRow(ctx, query, sku).Scan(&p.ID, &p.Name, &p.SKU, &p.EAN, &p.Unit, &p.MRP, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, shared.ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	query := `
		INSERT INTO products (name, sku, ean, unit, mrp)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, product.Name, product.SKU, product.EAN, product.Unit, product.MRP).
		Scan(&product.ID, &product.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Product{}, shared.Invalid("sku already exists")
		}
		return Product{}, err
	}
	return product, nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&total)
	return total, err
}
