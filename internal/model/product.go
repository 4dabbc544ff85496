package model

import "time"

// Product is a catalog item with an ordered list of image objects.
// ImageURLs, when populated, is parallel to ImageNames.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	ImageNames  []string  `json:"imageNames"`
	ImageURLs   []string  `json:"imageUrls,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
