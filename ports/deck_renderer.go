package ports

import (
	"github.com/infinityseifer/eda-auto/domain/core"
	"github.com/infinityseifer/eda-auto/domain/narrative"
)

// DeckRenderer lays out the narrative and chart artifacts into an
// ordered slide deck and serializes it. The order slice fixes the
// chart slide sequence; titles missing from the charts map are
// skipped. Returns the output filename (not the absolute path) so
// download handlers stay consistent.
type DeckRenderer interface {
	Render(n narrative.Narrative, charts map[string]string, order []string, datasetID core.DatasetID, theme, accentColor string) (string, error)
}
