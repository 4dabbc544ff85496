package mocks

import (
	"context"

	"catalogapi/internal/model"
	"catalogapi/internal/service"
	"catalogapi/internal/upload"

	"github.com/stretchr/testify/mock"
)

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) List(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) Get(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, in service.ProductInput, images []upload.File) (*model.Product, error) {
	args := m.Called(ctx, in, images)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, id string, in service.ProductInput, images []upload.File) (*model.Product, error) {
	args := m.Called(ctx, id, in, images)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) DeleteMany(ctx context.Context, ids []string) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}
