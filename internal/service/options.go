package service

import "time"

// Options carries the tunables shared by the resource services.
type Options struct {
	// ListURLTTL is the lifetime of presigned URLs attached to collection responses.
	ListURLTTL time.Duration
	// DetailURLTTL is the lifetime of presigned URLs attached to single-resource responses.
	DetailURLTTL time.Duration
	// MaxImages caps the number of images a product may reference.
	MaxImages int
}
