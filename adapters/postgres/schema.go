package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/infinityseifer/eda-auto/internal/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS datasets (
	id TEXT PRIMARY KEY,
	original_filename TEXT NOT NULL,
	stored_path TEXT NOT NULL,
	ext TEXT NOT NULL,
	size_bytes BIGINT NOT NULL DEFAULT 0,
	row_count INT NOT NULL DEFAULT 0,
	col_count INT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS reports (
	filename TEXT PRIMARY KEY,
	dataset_id TEXT NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
	theme TEXT NOT NULL,
	size_bytes BIGINT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// EnsureTables creates the registry tables if they do not exist
func EnsureTables(db *sqlx.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return errors.Wrap(err, "failed to create registry tables")
	}
	return nil
}
