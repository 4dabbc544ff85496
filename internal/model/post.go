package model

import "time"

// Post is a blog-style entry backed by exactly one image object.
// ImageURL is derived per request from ImageName and never persisted.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	ImageName string    `json:"imageName"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
