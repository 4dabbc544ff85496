package storage

import (
	"fmt"

	"catalogapi/internal/config"
)

// New builds the driver selected by cfg.Driver.
func New(cfg config.StorageConfig) (Storage, error) {
	switch cfg.Driver {
	case "", "minio", "s3":
		return NewMinIO(cfg)
	case "cos":
		return NewCOS(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}
