package ports

import (
	"context"

	"github.com/infinityseifer/eda-auto/domain/core"
	"github.com/infinityseifer/eda-auto/domain/frame"
	"github.com/infinityseifer/eda-auto/domain/profile"
)

// Profiler computes the statistical profile of a frame and emits
// chart artifacts as a side effect
type Profiler interface {
	Profile(ctx context.Context, f *frame.Frame, datasetID core.DatasetID) (*profile.Profile, error)
}
