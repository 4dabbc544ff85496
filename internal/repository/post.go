package repository

import (
	"context"

	"catalogapi/internal/model"
)

// PostUpdate replaces a post's scalar fields. ImageName, when non-nil, replaces the image key.
type PostUpdate struct {
	Title     string
	Content   string
	ImageName *string
}

// PostRepository defines data access for posts.
type PostRepository interface {
	// Create inserts a new post. The caller provides the ID.
	Create(ctx context.Context, p *model.Post) (*model.Post, error)

	// FindByID returns a post by its ID.
	FindByID(ctx context.Context, id string) (*model.Post, error)

	// List returns every post, newest first.
	List(ctx context.Context) ([]model.Post, error)

	// Update applies u and returns the stored post.
	Update(ctx context.Context, id string, u PostUpdate) (*model.Post, error)

	// Delete removes a post by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}
