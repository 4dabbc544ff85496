package postgres

import (
	"github.com/lib/pq"

	"catalogapi/internal/model"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

const postColumns = `id, title, content, image_name, created_at, updated_at`

func scanPost(s rowScanner) (*model.Post, error) {
	var p model.Post
	if err := s.Scan(
		&p.ID,
		&p.Title,
		&p.Content,
		&p.ImageName,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

const productColumns = `id, name, description, price, image_names, created_at, updated_at`

func scanProduct(s rowScanner) (*model.Product, error) {
	var p model.Product
	if err := s.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		pq.Array(&p.ImageNames),
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if p.ImageNames == nil {
		p.ImageNames = []string{}
	}
	return &p, nil
}
