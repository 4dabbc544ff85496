package repository

import (
	"context"

	"catalogapi/internal/model"
)

// ProductUpdate replaces a product's scalar fields and appends AppendImages to the
// end of its image list in the same statement. Existing keys are never reordered.
type ProductUpdate struct {
	Name         string
	Description  string
	Price        float64
	AppendImages []string
	// MaxImages caps the stored list after the append. Zero means no cap.
	MaxImages int
}

// ProductRepository defines data access for products.
type ProductRepository interface {
	// Create inserts a new product. The caller provides the ID.
	Create(ctx context.Context, p *model.Product) (*model.Product, error)

	// FindByID returns a product by its ID.
	FindByID(ctx context.Context, id string) (*model.Product, error)

	// FindByIDs returns the products whose IDs are in ids. Unknown IDs are skipped.
	FindByIDs(ctx context.Context, ids []string) ([]model.Product, error)

	// List returns every product, newest first.
	List(ctx context.Context) ([]model.Product, error)

	// Update applies u and returns the stored product.
	Update(ctx context.Context, id string, u ProductUpdate) (*model.Product, error)

	// Delete removes a product by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error

	// DeleteByIDs removes every product in ids and reports how many rows went away.
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
}
