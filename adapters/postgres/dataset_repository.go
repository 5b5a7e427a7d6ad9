package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/infinityseifer/eda-auto/domain/core"
	"github.com/infinityseifer/eda-auto/domain/dataset"
	apperrors "github.com/infinityseifer/eda-auto/internal/errors"
	"github.com/infinityseifer/eda-auto/ports"
)

// datasetRepository implements the DatasetRepository interface
type datasetRepository struct {
	db *sqlx.DB
}

// NewDatasetRepository creates a new dataset repository
func NewDatasetRepository(db *sqlx.DB) ports.DatasetRepository {
	return &datasetRepository{db: db}
}

// Create inserts a new dataset record
func (r *datasetRepository) Create(ctx context.Context, ds *dataset.Dataset) error {
	query := `INSERT INTO datasets (
		id, original_filename, stored_path, ext, size_bytes, row_count, col_count, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		ds.ID, ds.OriginalFilename, ds.StoredPath, ds.Ext, ds.SizeBytes,
		ds.RowCount, ds.ColCount, ds.CreatedAt,
	)
	if err != nil {
		return apperrors.DatabaseError("failed to create dataset", err)
	}
	return nil
}

// GetByID retrieves a dataset record by its ID
func (r *datasetRepository) GetByID(ctx context.Context, id core.DatasetID) (*dataset.Dataset, error) {
	query := `SELECT id, original_filename, stored_path, ext, size_bytes, row_count, col_count, created_at
	FROM datasets WHERE id = $1`

	var ds dataset.Dataset
	if err := r.db.GetContext(ctx, &ds, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.NewNotFoundError("dataset", id.String())
		}
		return nil, apperrors.DatabaseError("failed to get dataset", err)
	}
	return &ds, nil
}

// List returns all dataset records, newest first
func (r *datasetRepository) List(ctx context.Context) ([]*dataset.Dataset, error) {
	query := `SELECT id, original_filename, stored_path, ext, size_bytes, row_count, col_count, created_at
	FROM datasets ORDER BY created_at DESC`

	var out []*dataset.Dataset
	if err := r.db.SelectContext(ctx, &out, query); err != nil {
		return nil, apperrors.DatabaseError("failed to list datasets", err)
	}
	return out, nil
}

// Delete removes a dataset record (reports cascade)
func (r *datasetRepository) Delete(ctx context.Context, id core.DatasetID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM datasets WHERE id = $1`, id); err != nil {
		return apperrors.DatabaseError("failed to delete dataset", err)
	}
	return nil
}
