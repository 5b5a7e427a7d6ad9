package ports

import (
	"github.com/infinityseifer/eda-auto/domain/frame"
)

// FrameLoader materializes a tabular frame from a source file.
// Implementations must stop reading at rowCap so that the same file
// with the same cap always yields the same sample.
type FrameLoader interface {
	Load(path string, rowCap int) (*frame.Frame, error)
}
