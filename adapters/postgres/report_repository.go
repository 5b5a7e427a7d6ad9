package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/infinityseifer/eda-auto/domain/core"
	"github.com/infinityseifer/eda-auto/domain/dataset"
	apperrors "github.com/infinityseifer/eda-auto/internal/errors"
	"github.com/infinityseifer/eda-auto/ports"
)

// reportRepository implements the ReportRepository interface
type reportRepository struct {
	db *sqlx.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *sqlx.DB) ports.ReportRepository {
	return &reportRepository{db: db}
}

// Upsert records a rendered deck. Repeated runs on the same dataset
// and theme overwrite the prior row, matching the on-disk behavior.
func (r *reportRepository) Upsert(ctx context.Context, rep *dataset.Report) error {
	query := `INSERT INTO reports (filename, dataset_id, theme, size_bytes, created_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (filename) DO UPDATE SET size_bytes = EXCLUDED.size_bytes, created_at = EXCLUDED.created_at`

	_, err := r.db.ExecContext(ctx, query,
		rep.Filename, rep.DatasetID, rep.Theme, rep.SizeBytes, rep.CreatedAt,
	)
	if err != nil {
		return apperrors.DatabaseError("failed to upsert report", err)
	}
	return nil
}

// List returns all report records, newest first
func (r *reportRepository) List(ctx context.Context) ([]*dataset.Report, error) {
	query := `SELECT filename, dataset_id, theme, size_bytes, created_at
	FROM reports ORDER BY created_at DESC`

	var out []*dataset.Report
	if err := r.db.SelectContext(ctx, &out, query); err != nil {
		return nil, apperrors.DatabaseError("failed to list reports", err)
	}
	return out, nil
}

// ListByDataset returns the report records for one dataset
func (r *reportRepository) ListByDataset(ctx context.Context, id core.DatasetID) ([]*dataset.Report, error) {
	query := `SELECT filename, dataset_id, theme, size_bytes, created_at
	FROM reports WHERE dataset_id = $1 ORDER BY created_at DESC`

	var out []*dataset.Report
	if err := r.db.SelectContext(ctx, &out, query, id); err != nil {
		return nil, apperrors.DatabaseError("failed to list reports for dataset", err)
	}
	return out, nil
}
