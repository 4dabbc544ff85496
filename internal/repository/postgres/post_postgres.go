package postgres

import (
	"context"
	"database/sql"

	"catalogapi/internal/model"
	"catalogapi/internal/repository"
)

// PostPostgres is a PostgreSQL implementation of repository.PostRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type PostPostgres struct {
	db *sql.DB
}

// NewPostPostgres creates a new PostPostgres repository.
func NewPostPostgres(db *sql.DB) *PostPostgres {
	return &PostPostgres{db: db}
}

var _ repository.PostRepository = (*PostPostgres)(nil)

// Create inserts a new post row and returns the stored record.
func (r *PostPostgres) Create(ctx context.Context, p *model.Post) (*model.Post, error) {
	const q = `
		INSERT INTO posts (id, title, content, image_name)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + postColumns
	return scanPost(r.db.QueryRowContext(ctx, q, p.ID, p.Title, p.Content, p.ImageName))
}

// FindByID fetches a single post by its ID.
func (r *PostPostgres) FindByID(ctx context.Context, id string) (*model.Post, error) {
	const q = `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	return scanPost(r.db.QueryRowContext(ctx, q, id))
}

// List returns all posts.
func (r *PostPostgres) List(ctx context.Context) ([]model.Post, error) {
	const q = `SELECT ` + postColumns + ` FROM posts ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
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

// Update replaces title and content, and the image key when one is given.
func (r *PostPostgres) Update(ctx context.Context, id string, u repository.PostUpdate) (*model.Post, error) {
	const q = `
		UPDATE posts
		SET title = $2, content = $3, image_name = COALESCE($4, image_name), updated_at = now()
		WHERE id = $1
		RETURNING ` + postColumns
	var image sql.NullString
	if u.ImageName != nil {
		image = sql.NullString{String: *u.ImageName, Valid: true}
	}
	return scanPost(r.db.QueryRowContext(ctx, q, id, u.Title, u.Content, image))
}

// Delete removes a post by ID. It does not return an error if the row does not exist.
func (r *PostPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM posts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
