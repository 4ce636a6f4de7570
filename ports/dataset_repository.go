package ports

import (
	"context"

	"finsight/domain/dataset"
)

// DatasetRepository defines the interface for upload history storage
type DatasetRepository interface {
	Create(ctx context.Context, upload *dataset.Upload) error
	GetByID(ctx context.Context, id string) (*dataset.Upload, error)
	// List returns the most recent uploads first
	List(ctx context.Context, limit int) ([]*dataset.Upload, error)
	// Latest returns the most recent upload, NOT_FOUND when there is none
	Latest(ctx context.Context) (*dataset.Upload, error)
}
