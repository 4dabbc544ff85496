package mocks

import (
	"context"

	"catalogapi/internal/model"
	"catalogapi/internal/service"
	"catalogapi/internal/upload"

	"github.com/stretchr/testify/mock"
)

type MockPostService struct {
	mock.Mock
}

func (m *MockPostService) List(ctx context.Context) ([]model.Post, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Post), args.Error(1)
}

func (m *MockPostService) Get(ctx context.Context, id string) (*model.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockPostService) Create(ctx context.Context, in service.PostInput, image *upload.File) (*model.Post, error) {
	args := m.Called(ctx, in, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockPostService) Update(ctx context.Context, id string, in service.PostInput, image *upload.File) (*model.Post, error) {
	args := m.Called(ctx, id, in, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockPostService) Delete(ctx context.Context, id string) (*model.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}
