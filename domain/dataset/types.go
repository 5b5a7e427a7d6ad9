package dataset

import (
	"time"

	"github.com/infinityseifer/eda-auto/domain/core"
)

// Dataset is the registry record for an uploaded source file
type Dataset struct {
	ID               core.DatasetID `json:"dataset_id" db:"id"`
	OriginalFilename string         `json:"filename" db:"original_filename"`
	StoredPath       string         `json:"stored_at" db:"stored_path"`
	Ext              string         `json:"ext" db:"ext"`
	SizeBytes        int64          `json:"size_bytes" db:"size_bytes"`
	RowCount         int            `json:"rows" db:"row_count"`
	ColCount         int            `json:"cols" db:"col_count"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
}

// Report is the registry record for a rendered deck
type Report struct {
	Filename  string         `json:"name" db:"filename"`
	DatasetID core.DatasetID `json:"dataset_id" db:"dataset_id"`
	Theme     string         `json:"theme" db:"theme"`
	SizeBytes int64          `json:"size_bytes" db:"size_bytes"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

// New creates a dataset record with a fresh identifier
func New(filename, storedPath, ext string, size int64) *Dataset {
	return &Dataset{
		ID:               core.DatasetID(core.NewID()),
		OriginalFilename: filename,
		StoredPath:       storedPath,
		Ext:              ext,
		SizeBytes:        size,
		CreatedAt:        time.Now(),
	}
}
