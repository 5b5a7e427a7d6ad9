package ports

import (
	"context"

	"github.com/infinityseifer/eda-auto/domain/core"
	"github.com/infinityseifer/eda-auto/domain/dataset"
)

// ReportRepository persists rendered deck records
type ReportRepository interface {
	Upsert(ctx context.Context, r *dataset.Report) error
	List(ctx context.Context) ([]*dataset.Report, error)
	ListByDataset(ctx context.Context, id core.DatasetID) ([]*dataset.Report, error)
}
