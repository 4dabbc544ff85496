package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"catalogapi/internal/model"
	"catalogapi/internal/repository"
	"catalogapi/internal/storage"
	"catalogapi/internal/upload"
	"catalogapi/internal/validation"
)

const productNamespace = "products"

// ProductInput carries the product fields exactly as they arrived in the form.
// Price is parsed as part of validation.
type ProductInput struct {
	Name        string
	Description string
	Price       string
}

type productFields struct {
	Name        string   `json:"name" validate:"required,min=5,max=50"`
	Description string   `json:"description" validate:"required,min=10,max=2000"`
	Price       *float64 `json:"price" validate:"required,min=0,max=9999999"`
}

// parse validates in and returns its typed fields. Rules are checked in field order,
// so a bad name is reported before a bad price.
func (in ProductInput) parse() (productFields, error) {
	f := productFields{Name: in.Name, Description: in.Description}

	var notNumber error
	if raw := strings.TrimSpace(in.Price); raw != "" {
		p, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(p) || math.IsInf(p, 0) {
			notNumber = &validation.FieldError{Field: "price", Message: `"price" must be a number`}
			p = 0
		}
		f.Price = &p
	}

	if err := validation.Struct(f); err != nil {
		return f, err
	}
	return f, notNumber
}

// ProductService defines the use cases for products. Every returned product carries
// one presigned URL per stored image, in image order.
type ProductService interface {
	// List returns all products.
	List(ctx context.Context) ([]model.Product, error)

	// Get returns a single product by its ID.
	Get(ctx context.Context, id string) (*model.Product, error)

	// Create uploads images concurrently, then stores the product referencing them.
	Create(ctx context.Context, in ProductInput, images []upload.File) (*model.Product, error)

	// Update replaces the scalar fields and appends images after the existing ones.
	Update(ctx context.Context, id string, in ProductInput, images []upload.File) (*model.Product, error)

	// Delete removes every image object in one batch, then the product.
	Delete(ctx context.Context, id string) (*model.Product, error)

	// DeleteMany removes the products among ids that exist, with one batch delete for
	// all of their images. IDs that match nothing are ignored.
	DeleteMany(ctx context.Context, ids []string) error
}

type productService struct {
	store storage.Storage
	repo  repository.ProductRepository
	log   *zap.Logger
	opts  Options
}

// NewProductService constructs a new ProductService.
func NewProductService(store storage.Storage, repo repository.ProductRepository, log *zap.Logger, opts Options) ProductService {
	return &productService{store: store, repo: repo, log: log.Named("products"), opts: opts}
}

func (s *productService) List(ctx context.Context) ([]model.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, persistenceErr("list products", err)
	}
	for i := range products {
		if err := s.sign(ctx, &products[i], s.opts.ListURLTTL); err != nil {
			return nil, err
		}
	}
	return products, nil
}

func (s *productService) Get(ctx context.Context, id string) (*model.Product, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.sign(ctx, product, s.opts.DetailURLTTL); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) Create(ctx context.Context, in ProductInput, images []upload.File) (*model.Product, error) {
	if len(images) == 0 {
		return nil, ErrImagesRequired
	}
	f, err := in.parse()
	if err != nil {
		return nil, err
	}
	if s.opts.MaxImages > 0 && len(images) > s.opts.MaxImages {
		return nil, ErrFilesLimit
	}

	keys, err := s.upload(ctx, images)
	if err != nil {
		return nil, err
	}

	product, err := s.repo.Create(ctx, &model.Product{
		ID:          uuid.NewString(),
		Name:        f.Name,
		Description: f.Description,
		Price:       *f.Price,
		ImageNames:  keys,
	})
	if err != nil {
		discard(ctx, s.store, s.log, "product create failed", keys)
		return nil, persistenceErr("create product", err)
	}

	if err := s.sign(ctx, product, s.opts.DetailURLTTL); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) Update(ctx context.Context, id string, in ProductInput, images []upload.File) (*model.Product, error) {
	if err := validation.ValidateID(id); err != nil {
		return nil, err
	}
	f, err := in.parse()
	if err != nil {
		return nil, err
	}
	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.opts.MaxImages > 0 && len(existing.ImageNames)+len(images) > s.opts.MaxImages {
		return nil, ErrFilesLimit
	}

	keys, err := s.upload(ctx, images)
	if err != nil {
		return nil, err
	}

	product, err := s.repo.Update(ctx, id, repository.ProductUpdate{
		Name:         f.Name,
		Description:  f.Description,
		Price:        *f.Price,
		AppendImages: keys,
		MaxImages:    s.opts.MaxImages,
	})
	if err != nil {
		discard(ctx, s.store, s.log, "product update failed", keys)
		if errors.Is(err, repository.ErrImageLimit) {
			return nil, ErrFilesLimit
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("product")
		}
		return nil, persistenceErr("update product", err)
	}

	if err := s.sign(ctx, product, s.opts.DetailURLTTL); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) Delete(ctx context.Context, id string) (*model.Product, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(product.ImageNames) > 0 {
		if err := s.store.DeleteBatch(ctx, product.ImageNames); err != nil {
			return nil, storageErr("delete images", err)
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		reportOrphans(ctx, s.log, "product row kept after image delete", product.ImageNames, err)
		return nil, persistenceErr("delete product", err)
	}
	return product, nil
}

func (s *productService) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return validation.ErrIDsEmpty
	}
	for _, id := range ids {
		if err := validation.ValidateID(id); err != nil {
			return validation.ErrIDsInvalid
		}
	}

	products, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return persistenceErr("find products", err)
	}
	if len(products) == 0 {
		return notFound("products")
	}

	matched := make([]string, 0, len(products))
	var keys []string
	for _, p := range products {
		matched = append(matched, p.ID)
		keys = append(keys, p.ImageNames...)
	}

	if len(keys) > 0 {
		if err := s.store.DeleteBatch(ctx, keys); err != nil {
			return storageErr("delete images", err)
		}
	}
	n, err := s.repo.DeleteByIDs(ctx, matched)
	if err != nil {
		reportOrphans(ctx, s.log, "product rows kept after image delete", keys, err)
		return persistenceErr("delete products", err)
	}
	s.log.Info("products deleted", zap.Int("requested", len(ids)), zap.Int64("deleted", n))
	return nil
}

func (s *productService) find(ctx context.Context, id string) (*model.Product, error) {
	if err := validation.ValidateID(id); err != nil {
		return nil, err
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("product")
		}
		return nil, persistenceErr("find product", err)
	}
	return product, nil
}

func (s *productService) upload(ctx context.Context, images []upload.File) ([]string, error) {
	if len(images) == 0 {
		return nil, nil
	}
	objs := make([]storage.Object, 0, len(images))
	for _, img := range images {
		objs = append(objs, storage.Object{
			Key:         storage.NewKey(productNamespace, img.Name),
			ContentType: img.ContentType,
			Body:        img.Data,
		})
	}
	keys, err := storage.PutAll(ctx, s.store, objs, s.log)
	if err != nil {
		return nil, storageErr("upload images", err)
	}
	return keys, nil
}

func (s *productService) sign(ctx context.Context, p *model.Product, ttl time.Duration) error {
	urls := make([]string, len(p.ImageNames))
	for i, key := range p.ImageNames {
		u, err := s.store.PresignGet(ctx, key, ttl)
		if err != nil {
			return storageErr("presign image", err)
		}
		urls[i] = u
	}
	p.ImageURLs = urls
	return nil
}
