package ports

import (
	"context"

	"github.com/infinityseifer/eda-auto/domain/core"
	"github.com/infinityseifer/eda-auto/domain/dataset"
)

// DatasetRepository persists upload metadata for the dataset registry
type DatasetRepository interface {
	Create(ctx context.Context, ds *dataset.Dataset) error
	GetByID(ctx context.Context, id core.DatasetID) (*dataset.Dataset, error)
	List(ctx context.Context) ([]*dataset.Dataset, error)
	Delete(ctx context.Context, id core.DatasetID) error
}
