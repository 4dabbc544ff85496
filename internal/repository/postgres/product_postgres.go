package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"catalogapi/internal/model"
	"catalogapi/internal/repository"
)

// ProductPostgres is a PostgreSQL implementation of repository.ProductRepository.
// Image keys are stored in a TEXT[] column in upload order.
type ProductPostgres struct {
	db *sql.DB
}

// NewProductPostgres creates a new ProductPostgres repository.
func NewProductPostgres(db *sql.DB) *ProductPostgres {
	return &ProductPostgres{db: db}
}

var _ repository.ProductRepository = (*ProductPostgres)(nil)

// Create inserts a new product row and returns the stored record.
func (r *ProductPostgres) Create(ctx context.Context, p *model.Product) (*model.Product, error) {
	const q = `
		INSERT INTO products (id, name, description, price, image_names)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + productColumns
	return scanProduct(r.db.QueryRowContext(ctx, q,
		p.ID,
		p.Name,
		p.Description,
		p.Price,
		pq.Array(nonNil(p.ImageNames)),
	))
}

// FindByID fetches a single product by its ID.
func (r *ProductPostgres) FindByID(ctx context.Context, id string) (*model.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return scanProduct(r.db.QueryRowContext(ctx, q, id))
}

// FindByIDs fetches every product whose ID is in ids.
func (r *ProductPostgres) FindByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1::uuid[]) ORDER BY created_at DESC, id DESC`
	return r.query(ctx, q, pq.Array(ids))
}

// List returns all products.
func (r *ProductPostgres) List(ctx context.Context) ([]model.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC, id DESC`
	return r.query(ctx, q)
}

// Update replaces the scalar fields and appends u.AppendImages after the existing keys.
// The cap is checked in the same statement, so concurrent appends cannot overshoot it.
func (r *ProductPostgres) Update(ctx context.Context, id string, u repository.ProductUpdate) (*model.Product, error) {
	const q = `
		UPDATE products
		SET name = $2, description = $3, price = $4,
		    image_names = image_names || $5::text[], updated_at = now()
		WHERE id = $1
		  AND ($6::int <= 0 OR cardinality(image_names) + cardinality($5::text[]) <= $6::int)
		RETURNING ` + productColumns
	p, err := scanProduct(r.db.QueryRowContext(ctx, q,
		id,
		u.Name,
		u.Description,
		u.Price,
		pq.Array(nonNil(u.AppendImages)),
		u.MaxImages,
	))
	if !errors.Is(err, sql.ErrNoRows) {
		return p, err
	}

	// No row came back: either the product is gone or the cap held it back.
	var exists bool
	const existsQ = `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`
	if err := r.db.QueryRowContext(ctx, existsQ, id).Scan(&exists); err != nil {
		return nil, err
	}
	if exists {
		return nil, repository.ErrImageLimit
	}
	return nil, sql.ErrNoRows
}

// Delete removes a product by ID. It does not return an error if the row does not exist.
func (r *ProductPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM products WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

// DeleteByIDs removes every product whose ID is in ids.
func (r *ProductPostgres) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	const q = `DELETE FROM products WHERE id = ANY($1::uuid[])`
	res, err := r.db.ExecContext(ctx, q, pq.Array(ids))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *ProductPostgres) query(ctx context.Context, q string, args ...any) ([]model.Product, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// nonNil keeps a nil slice from binding as SQL NULL.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
