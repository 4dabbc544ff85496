package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"catalogapi/internal/model"
	"catalogapi/internal/repository"
	repoMocks "catalogapi/internal/repository/mocks"
	"catalogapi/internal/storage"
	storeMocks "catalogapi/internal/storage/mocks"
	"catalogapi/internal/upload"
	"catalogapi/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const productID = "9a8b7c6d-5e4f-4a3b-9c2d-1e0f9a8b7c6d"

func validProduct() ProductInput {
	return ProductInput{Name: "Teapot", Description: "A short and stout teapot", Price: "19.99"}
}

func images(names ...string) []upload.File {
	files := make([]upload.File, 0, len(names))
	for _, n := range names {
		files = append(files, *pngFile(n))
	}
	return files
}

func TestProductInput_Parse(t *testing.T) {
	tests := []struct {
		name      string
		in        ProductInput
		wantField string
		wantMsg   string
		wantPrice float64
	}{
		{name: "valid", in: validProduct(), wantPrice: 19.99},
		{name: "zero price", in: ProductInput{Name: "Teapot", Description: "A short and stout teapot", Price: "0"}, wantPrice: 0},
		{
			name:      "price missing",
			in:        ProductInput{Name: "Teapot", Description: "A short and stout teapot"},
			wantField: "price",
			wantMsg:   `"price" is required`,
		},
		{
			name:      "price not a number",
			in:        ProductInput{Name: "Teapot", Description: "A short and stout teapot", Price: "cheap"},
			wantField: "price",
			wantMsg:   `"price" must be a number`,
		},
		{
			name:      "price negative",
			in:        ProductInput{Name: "Teapot", Description: "A short and stout teapot", Price: "-1"},
			wantField: "price",
			wantMsg:   `"price" must be greater than or equal to 0`,
		},
		{
			name:      "name reported before bad price",
			in:        ProductInput{Name: "Tea", Description: "A short and stout teapot", Price: "cheap"},
			wantField: "name",
			wantMsg:   `"name" length must be at least 5 characters long`,
		},
		{
			name:      "description too short",
			in:        ProductInput{Name: "Teapot", Description: "Short", Price: "1"},
			wantField: "description",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := tt.in.parse()

			if tt.wantField == "" {
				require.NoError(t, err)
				require.NotNil(t, f.Price)
				assert.Equal(t, tt.wantPrice, *f.Price)
				return
			}
			var fe *validation.FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.wantField, fe.Field)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, fe.Message)
			}
		})
	}
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		in         ProductInput
		images     []upload.File
		setupMocks func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockProductRepository)
		wantErr    error
	}{
		{
			name:   "happy path keeps image order",
			in:     validProduct(),
			images: images("a.png", "b.png"),
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockProductRepository) {
				mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, nil).Twice()
				mRepo.On("Create", ctx, mock.MatchedBy(func(p *model.Product) bool {
					return len(p.ImageNames) == 2 &&
						strings.HasPrefix(p.ImageNames[0], "products/") && strings.HasSuffix(p.ImageNames[0], "a.png") &&
						strings.HasSuffix(p.ImageNames[1], "b.png") &&
						p.Price == 19.99
				})).Return(&model.Product{ID: productID, ImageNames: []string{"products/a.png", "products/b.png"}}, nil)
				mStore.On("PresignGet", ctx, "products/a.png", detailTTL).Return("https://signed/a", nil)
				mStore.On("PresignGet", ctx, "products/b.png", detailTTL).Return("https://signed/b", nil)
			},
		},
		{
			name:       "no images",
			in:         validProduct(),
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockProductRepository) {},
			wantErr:    ErrImagesRequired,
		},
		{
			name:       "more images than allowed",
			in:         validProduct(),
			images:     images("1.png", "2.png", "3.png", "4.png", "5.png"),
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockProductRepository) {},
			wantErr:    ErrFilesLimit,
		},
		{
			name:   "repository failure removes uploads",
			in:     validProduct(),
			images: images("a.png", "b.png"),
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockProductRepository) {
				mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, nil).Twice()
				mRepo.On("Create", ctx, mock.Anything).Return(nil, errors.New("db fail"))
				mStore.On("DeleteBatch", mock.Anything, mock.MatchedBy(func(keys []string) bool {
					return len(keys) == 2
				})).Return(nil).Once()
			},
			wantErr: ErrPersistence,
		},
		{
			name:   "upload failure",
			in:     validProduct(),
			images: images("a.png"),
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockProductRepository) {
				mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, storage.ErrUnavailable)
			},
			wantErr: storage.ErrUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			mRepo := new(repoMocks.MockProductRepository)
			svc := NewProductService(mStore, mRepo, zap.NewNop(), testOpts)

			tt.setupMocks(mStore, mRepo)

			product, err := svc.Create(ctx, tt.in, tt.images)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, product)
			} else {
				require.NoError(t, err)
				assert.Equal(t, []string{"https://signed/a", "https://signed/b"}, product.ImageURLs)
			}
			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestProductService_Update(t *testing.T) {
	ctx := context.Background()
	threeImages := &model.Product{ID: productID, ImageNames: []string{"products/1", "products/2", "products/3"}}

	t.Run("existing plus incoming over the limit uploads nothing", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockProductRepository)
		svc := NewProductService(mStore, mRepo, zap.NewNop(), testOpts)

		mRepo.On("FindByID", ctx, productID).Return(threeImages, nil)

		product, err := svc.Update(ctx, productID, validProduct(), images("4.png", "5.png"))

		assert.ErrorIs(t, err, ErrFilesLimit)
		assert.Nil(t, product)
		mStore.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		mRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("new image is appended last", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockProductRepository)
		svc := NewProductService(mStore, mRepo, zap.NewNop(), testOpts)

		mRepo.On("FindByID", ctx, productID).Return(threeImages, nil)
		mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, nil).Once()
		mRepo.On("Update", ctx, productID, mock.MatchedBy(func(u repository.ProductUpdate) bool {
			return len(u.AppendImages) == 1 && strings.HasSuffix(u.AppendImages[0], "4.png") && u.Name == "Teapot"
		})).Return(&model.Product{
			ID:         productID,
			ImageNames: []string{"products/1", "products/2", "products/3", "products/4"},
		}, nil)
		for _, k := range []string{"products/1", "products/2", "products/3", "products/4"} {
			mStore.On("PresignGet", ctx, k, detailTTL).Return("https://signed/"+strings.TrimPrefix(k, "products/"), nil)
		}

		product, err := svc.Update(ctx, productID, validProduct(), images("4.png"))

		require.NoError(t, err)
		assert.Equal(t, []string{"products/1", "products/2", "products/3", "products/4"}, product.ImageNames)
		assert.Equal(t, []string{"https://signed/1", "https://signed/2", "https://signed/3", "https://signed/4"}, product.ImageURLs)
		mRepo.AssertExpectations(t)
	})

	t.Run("cap enforced by the store removes the new upload", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockProductRepository)
		svc := NewProductService(mStore, mRepo, zap.NewNop(), testOpts)

		// Another request filled the last slot between the read and the write.
		mRepo.On("FindByID", ctx, productID).Return(threeImages, nil)
		mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, nil).Once()
		mRepo.On("Update", ctx, productID, mock.MatchedBy(func(u repository.ProductUpdate) bool {
			return u.MaxImages == 4 && len(u.AppendImages) == 1
		})).Return(nil, repository.ErrImageLimit)
		mStore.On("DeleteBatch", mock.Anything, mock.MatchedBy(func(keys []string) bool {
			return len(keys) == 1 && strings.HasSuffix(keys[0], "4.png")
		})).Return(nil).Once()

		product, err := svc.Update(ctx, productID, validProduct(), images("4.png"))

		assert.ErrorIs(t, err, ErrFilesLimit)
		assert.Nil(t, product)
		mStore.AssertExpectations(t)
	})

	t.Run("text only update skips storage", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockProductRepository)
		svc := NewProductService(mStore, mRepo, zap.NewNop(), testOpts)

		mRepo.On("FindByID", ctx, productID).Return(&model.Product{ID: productID}, nil)
		mRepo.On("Update", ctx, productID, repository.ProductUpdate{
			Name: "Teapot", Description: "A short and stout teapot", Price: 19.99, MaxImages: 4,
		}).Return(&model.Product{ID: productID}, nil)

		product, err := svc.Update(ctx, productID, validProduct(), nil)

		require.NoError(t, err)
		assert.Empty(t, product.ImageURLs)
		mStore.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		mRepo.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockProductRepository)
		svc := NewProductService(mStore, mRepo, zap.NewNop(), testOpts)

		mRepo.On("FindByID", ctx, productID).Return(nil, sql.ErrNoRows)

		_, err := svc.Update(ctx, productID, validProduct(), images("a.png"))

		assert.ErrorIs(t, err, ErrNotFound)
		mStore.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("malformed id", func(t *testing.T) {
		svc := NewProductService(new(storeMocks.MockStorage), new(repoMocks.MockProductRepository), zap.NewNop(), testOpts)

		_, err := svc.Update(ctx, "abc", validProduct(), nil)

		assert.ErrorIs(t, err, validation.ErrInvalidID)
	})
}

func TestProductService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes all images in one batch", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockProductRepository)
		svc := NewProductService(mStore, mRepo, zap.NewNop(), testOpts)

		mRepo.On("FindByID", ctx, productID).Return(&model.Product{ID: productID, ImageNames: []string{"products/a", "products/b"}}, nil)
		mStore.On("DeleteBatch", ctx, []string{"products/a", "products/b"}).Return(nil).Once()
		mRepo.On("Delete", ctx, productID).Return(nil)

		product, err := svc.Delete(ctx, productID)

		require.NoError(t, err)
		assert.Equal(t, productID, product.ID)
		mStore.AssertNumberOfCalls(t, "DeleteBatch", 1)
		mStore.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		mRepo.AssertExpectations(t)
	})

	t.Run("storage failure keeps row", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockProductRepository)
		svc := NewProductService(mStore, mRepo, zap.NewNop(), testOpts)

		mRepo.On("FindByID", ctx, productID).Return(&model.Product{ID: productID, ImageNames: []string{"products/a"}}, nil)
		mStore.On("DeleteBatch", ctx, []string{"products/a"}).Return(errors.New("storage fail"))

		_, err := svc.Delete(ctx, productID)

		assert.ErrorIs(t, err, ErrStorage)
		mRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		mRepo := new(repoMocks.MockProductRepository)
		svc := NewProductService(new(storeMocks.MockStorage), mRepo, zap.NewNop(), testOpts)

		mRepo.On("FindByID", ctx, productID).Return(nil, sql.ErrNoRows)

		_, err := svc.Delete(ctx, productID)

		assert.ErrorIs(t, err, ErrNotFound)
		assert.EqualError(t, err, "product not found")
	})
}

func TestProductService_DeleteMany(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		ids        []string
		setupMocks func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockProductRepository)
		wantErr    error
	}{
		{
			name: "partial match deletes only what exists",
			ids:  []string{productID, otherID},
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockProductRepository) {
				mRepo.On("FindByIDs", ctx, []string{productID, otherID}).
					Return([]model.Product{{ID: productID, ImageNames: []string{"products/a", "products/b"}}}, nil)
				mStore.On("DeleteBatch", ctx, []string{"products/a", "products/b"}).Return(nil).Once()
				mRepo.On("DeleteByIDs", ctx, []string{productID}).Return(int64(1), nil)
			},
		},
		{
			name: "images of every match go in one batch",
			ids:  []string{productID, otherID},
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockProductRepository) {
				mRepo.On("FindByIDs", ctx, []string{productID, otherID}).Return([]model.Product{
					{ID: productID, ImageNames: []string{"products/a"}},
					{ID: otherID, ImageNames: []string{"products/b", "products/c"}},
				}, nil)
				mStore.On("DeleteBatch", ctx, []string{"products/a", "products/b", "products/c"}).Return(nil).Once()
				mRepo.On("DeleteByIDs", ctx, []string{productID, otherID}).Return(int64(2), nil)
			},
		},
		{
			name: "nothing matches",
			ids:  []string{productID},
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockProductRepository) {
				mRepo.On("FindByIDs", ctx, []string{productID}).Return([]model.Product{}, nil)
			},
			wantErr: ErrNotFound,
		},
		{
			name:       "invalid id",
			ids:        []string{productID, "nope"},
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockProductRepository) {},
			wantErr:    validation.ErrIDsInvalid,
		},
		{
			name:       "empty",
			ids:        []string{},
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockProductRepository) {},
			wantErr:    validation.ErrIDsEmpty,
		},
		{
			name: "storage failure keeps rows",
			ids:  []string{productID},
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockProductRepository) {
				mRepo.On("FindByIDs", ctx, []string{productID}).
					Return([]model.Product{{ID: productID, ImageNames: []string{"products/a"}}}, nil)
				mStore.On("DeleteBatch", ctx, []string{"products/a"}).Return(storage.ErrUnavailable)
			},
			wantErr: storage.ErrUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			mRepo := new(repoMocks.MockProductRepository)
			svc := NewProductService(mStore, mRepo, zap.NewNop(), testOpts)

			tt.setupMocks(mStore, mRepo)

			err := svc.DeleteMany(ctx, tt.ids)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				mRepo.AssertNotCalled(t, "DeleteByIDs", mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
			}
			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}
