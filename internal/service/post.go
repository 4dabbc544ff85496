package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"catalogapi/internal/model"
	"catalogapi/internal/repository"
	"catalogapi/internal/storage"
	"catalogapi/internal/upload"
	"catalogapi/internal/validation"
)

const postNamespace = "posts"

// PostInput is the client-editable part of a post.
type PostInput struct {
	Title   string `json:"title" validate:"required,min=5,max=50"`
	Content string `json:"content" validate:"required,min=20,max=5000"`
}

// PostService defines the use cases for posts. Every returned post that still has
// an image carries a freshly presigned ImageURL.
type PostService interface {
	// List returns all posts.
	List(ctx context.Context) ([]model.Post, error)

	// Get returns a single post by its ID.
	Get(ctx context.Context, id string) (*model.Post, error)

	// Create uploads image, then stores the post referencing it.
	Create(ctx context.Context, in PostInput, image *upload.File) (*model.Post, error)

	// Update replaces title and content. A non-nil image replaces the stored image:
	// the old object is deleted first, then the new one uploaded.
	Update(ctx context.Context, id string, in PostInput, image *upload.File) (*model.Post, error)

	// Delete removes the image object, then the post, and returns what was deleted.
	Delete(ctx context.Context, id string) (*model.Post, error)
}

type postService struct {
	store storage.Storage
	repo  repository.PostRepository
	log   *zap.Logger
	opts  Options
}

// NewPostService constructs a new PostService.
func NewPostService(store storage.Storage, repo repository.PostRepository, log *zap.Logger, opts Options) PostService {
	return &postService{store: store, repo: repo, log: log.Named("posts"), opts: opts}
}

func (s *postService) List(ctx context.Context) ([]model.Post, error) {
	posts, err := s.repo.List(ctx)
	if err != nil {
		return nil, persistenceErr("list posts", err)
	}
	for i := range posts {
		if err := s.sign(ctx, &posts[i], s.opts.ListURLTTL); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

func (s *postService) Get(ctx context.Context, id string) (*model.Post, error) {
	post, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.sign(ctx, post, s.opts.DetailURLTTL); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) Create(ctx context.Context, in PostInput, image *upload.File) (*model.Post, error) {
	if image == nil {
		return nil, ErrImageRequired
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	key, err := s.upload(ctx, image)
	if err != nil {
		return nil, err
	}

	post, err := s.repo.Create(ctx, &model.Post{
		ID:        uuid.NewString(),
		Title:     in.Title,
		Content:   in.Content,
		ImageName: key,
	})
	if err != nil {
		discard(ctx, s.store, s.log, "post create failed", []string{key})
		return nil, persistenceErr("create post", err)
	}

	if err := s.sign(ctx, post, s.opts.DetailURLTTL); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) Update(ctx context.Context, id string, in PostInput, image *upload.File) (*model.Post, error) {
	if err := validation.ValidateID(id); err != nil {
		return nil, err
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	u := repository.PostUpdate{Title: in.Title, Content: in.Content}
	if image != nil {
		if err := s.store.Delete(ctx, existing.ImageName); err != nil {
			return nil, storageErr("delete replaced image", err)
		}
		key, err := s.upload(ctx, image)
		if err != nil {
			reportOrphans(ctx, s.log, "post references deleted image", []string{existing.ImageName}, err)
			return nil, err
		}
		u.ImageName = &key
	}

	post, err := s.repo.Update(ctx, id, u)
	if err != nil {
		if u.ImageName != nil {
			discard(ctx, s.store, s.log, "post update failed", []string{*u.ImageName})
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("post")
		}
		return nil, persistenceErr("update post", err)
	}

	if err := s.sign(ctx, post, s.opts.DetailURLTTL); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) Delete(ctx context.Context, id string) (*model.Post, error) {
	post, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	// Delete from storage first; if this fails, keep the row so the key is not lost.
	if err := s.store.Delete(ctx, post.ImageName); err != nil {
		return nil, storageErr("delete image", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		reportOrphans(ctx, s.log, "post row kept after image delete", []string{post.ImageName}, err)
		return nil, persistenceErr("delete post", err)
	}
	return post, nil
}

func (s *postService) find(ctx context.Context, id string) (*model.Post, error) {
	if err := validation.ValidateID(id); err != nil {
		return nil, err
	}
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("post")
		}
		return nil, persistenceErr("find post", err)
	}
	return post, nil
}

func (s *postService) upload(ctx context.Context, image *upload.File) (string, error) {
	key := storage.NewKey(postNamespace, image.Name)
	if _, err := s.store.Put(ctx, key, image.Reader(), storage.PutObjectOptions{
		Size:        image.Size(),
		ContentType: image.ContentType,
	}); err != nil {
		return "", storageErr("upload image", err)
	}
	return key, nil
}

func (s *postService) sign(ctx context.Context, p *model.Post, ttl time.Duration) error {
	u, err := s.store.PresignGet(ctx, p.ImageName, ttl)
	if err != nil {
		return storageErr("presign image", err)
	}
	p.ImageURL = u
	return nil
}
