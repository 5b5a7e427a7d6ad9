package ports

import (
	"github.com/infinityseifer/eda-auto/domain/frame"
)

// FrameCoercer reclassifies column types in place after load and
// before profiling. Advisory/best-effort by contract.
type FrameCoercer interface {
	Coerce(f *frame.Frame)
}
