package tabular

import (
	"log"
	"time"

	"github.com/infinityseifer/eda-auto/domain/frame"
)

// CoercionConfig defines the temporal coercion thresholds and rules
type CoercionConfig struct {
	// ParseThreshold is the fraction of non-missing values that must
	// parse under a single layout before the column is rewritten.
	// The 0.9 default is a product decision, kept tunable.
	ParseThreshold float64
	Layouts        []string
	GenericLayouts []string
}

// DefaultCoercionConfig returns the standard layouts in their fixed
// trial order. The first layout clearing the threshold wins.
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		ParseThreshold: 0.9,
		Layouts: []string{
			"2006-01-02", // YYYY-MM-DD
			"01/02/2006", // MM/DD/YYYY
			"02-01-2006", // DD-MM-YYYY
			"2006/01/02", // YYYY/MM/DD
			"02/01/2006", // DD/MM/YYYY
		},
		GenericLayouts: []string{
			time.RFC3339,
			"2006-01-02 15:04:05",
			"2006-01-02T15:04:05",
			"Jan 2, 2006",
			"January 2, 2006",
			"2 Jan 2006",
			"02 Jan 2006",
		},
	}
}

// TemporalCoercer reclassifies date-like text columns in place.
// Best-effort by contract: a column that merely looks date-like (say
// a dashed identifier) will be reclassified too. Known limitation.
type TemporalCoercer struct {
	config CoercionConfig
}

// NewTemporalCoercer creates a coercer with the given config
func NewTemporalCoercer(config CoercionConfig) *TemporalCoercer {
	return &TemporalCoercer{config: config}
}

// Coerce attempts to rewrite each text column as temporal. Fixed
// layouts are tried in declared order; if none clears the threshold,
// a generic parse is tried and adopted only if it also clears it.
// Non-text columns are untouched.
func (c *TemporalCoercer) Coerce(f *frame.Frame) {
	for i, col := range f.Columns() {
		tc, ok := col.(*frame.TextColumn)
		if !ok {
			continue
		}

		coerced := c.coerceColumn(tc)
		if coerced == nil {
			continue
		}
		if err := f.ReplaceColumn(i, coerced); err != nil {
			log.Printf("[TemporalCoercer] replace failed for %s: %v", tc.Name(), err)
			continue
		}
		log.Printf("[TemporalCoercer] column %s reclassified as temporal", tc.Name())
	}
}

func (c *TemporalCoercer) coerceColumn(tc *frame.TextColumn) *frame.TemporalColumn {
	nonMissing := tc.Len() - tc.MissingCount()
	if nonMissing == 0 {
		return nil
	}

	for _, layout := range c.config.Layouts {
		if col := c.tryLayouts(tc, nonMissing, []string{layout}); col != nil {
			return col
		}
	}
	// Fallback to unconstrained generic parsing; adopt only if it is
	// just as consistent.
	return c.tryLayouts(tc, nonMissing, c.config.GenericLayouts)
}

// tryLayouts parses every non-missing cell under the given layouts
// and returns a temporal column when the success rate is strictly
// above the threshold. Unparseable cells become missing.
func (c *TemporalCoercer) tryLayouts(tc *frame.TextColumn, nonMissing int, layouts []string) *frame.TemporalColumn {
	values := make([]time.Time, tc.Len())
	missing := make([]bool, tc.Len())
	parsed := 0

	for i, raw := range tc.Values {
		if tc.IsMissing(i) {
			missing[i] = true
			continue
		}
		t, ok := parseAny(raw, layouts)
		if !ok {
			missing[i] = true
			continue
		}
		values[i] = t
		parsed++
	}

	if float64(parsed)/float64(nonMissing) <= c.config.ParseThreshold {
		return nil
	}
	return &frame.TemporalColumn{ColName: tc.Name(), Values: values, Missing: missing}
}

func parseAny(raw string, layouts []string) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
