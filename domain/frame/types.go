package frame

import (
	"time"

	"github.com/infinityseifer/eda-auto/domain/core"
)

// ColumnType tags the inferred type of a column
type ColumnType string

const (
	TypeNumeric  ColumnType = "numeric"
	TypeText     ColumnType = "text"
	TypeTemporal ColumnType = "temporal"
)

// Column is the tagged variant all downstream stages dispatch on.
// Exactly one of the concrete column types implements it per column;
// the tag is fixed at load/coercion time and never re-inspected.
type Column interface {
	Name() string
	Type() ColumnType
	Len() int
	// MissingCount returns the number of missing cells
	MissingCount() int
	// IsMissing reports whether the cell at row i is missing
	IsMissing(i int) bool
}

// NumericColumn holds float64 cells with a missing mask
type NumericColumn struct {
	ColName string
	Values  []float64
	Missing []bool
}

func (c *NumericColumn) Name() string     { return c.ColName }
func (c *NumericColumn) Type() ColumnType { return TypeNumeric }
func (c *NumericColumn) Len() int         { return len(c.Values) }

func (c *NumericColumn) MissingCount() int {
	n := 0
	for _, m := range c.Missing {
		if m {
			n++
		}
	}
	return n
}

func (c *NumericColumn) IsMissing(i int) bool { return c.Missing[i] }

// Present returns the non-missing values in row order
func (c *NumericColumn) Present() []float64 {
	out := make([]float64, 0, len(c.Values))
	for i, v := range c.Values {
		if !c.Missing[i] {
			out = append(out, v)
		}
	}
	return out
}

// TextColumn holds string cells; empty string is not itself missing,
// the mask is authoritative
type TextColumn struct {
	ColName string
	Values  []string
	Missing []bool
}

func (c *TextColumn) Name() string     { return c.ColName }
func (c *TextColumn) Type() ColumnType { return TypeText }
func (c *TextColumn) Len() int         { return len(c.Values) }

func (c *TextColumn) MissingCount() int {
	n := 0
	for _, m := range c.Missing {
		if m {
			n++
		}
	}
	return n
}

func (c *TextColumn) IsMissing(i int) bool { return c.Missing[i] }

// TemporalColumn holds parsed timestamps; cells that failed to parse
// during coercion are marked missing
type TemporalColumn struct {
	ColName string
	Values  []time.Time
	Missing []bool
}

func (c *TemporalColumn) Name() string     { return c.ColName }
func (c *TemporalColumn) Type() ColumnType { return TypeTemporal }
func (c *TemporalColumn) Len() int         { return len(c.Values) }

func (c *TemporalColumn) MissingCount() int {
	n := 0
	for _, m := range c.Missing {
		if m {
			n++
		}
	}
	return n
}

func (c *TemporalColumn) IsMissing(i int) bool { return c.Missing[i] }

// Frame is an in-memory table of equally sized columns. It is built
// once per pipeline run and treated as immutable after type coercion.
type Frame struct {
	columns []Column
}

// New constructs a frame, enforcing the equal-row-count invariant
func New(columns []Column) (*Frame, error) {
	if len(columns) > 0 {
		rows := columns[0].Len()
		for _, c := range columns[1:] {
			if c.Len() != rows {
				return nil, core.ErrColumnLengthSkew
			}
		}
	}
	return &Frame{columns: columns}, nil
}

// Rows returns the row count (zero for an empty frame)
func (f *Frame) Rows() int {
	if len(f.columns) == 0 {
		return 0
	}
	return f.columns[0].Len()
}

// Cols returns the column count
func (f *Frame) Cols() int { return len(f.columns) }

// Columns returns the columns in declaration order
func (f *Frame) Columns() []Column { return f.columns }

// Column returns the column with the given name, or nil
func (f *Frame) Column(name string) Column {
	for _, c := range f.columns {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// NumericColumns returns the numeric columns in declaration order
func (f *Frame) NumericColumns() []*NumericColumn {
	var out []*NumericColumn
	for _, c := range f.columns {
		if nc, ok := c.(*NumericColumn); ok {
			out = append(out, nc)
		}
	}
	return out
}

// TextColumns returns the text columns in declaration order
func (f *Frame) TextColumns() []*TextColumn {
	var out []*TextColumn
	for _, c := range f.columns {
		if tc, ok := c.(*TextColumn); ok {
			out = append(out, tc)
		}
	}
	return out
}

// ReplaceColumn swaps the column at index i. Only the coercer calls
// this, before the frame is handed to the profiler.
func (f *Frame) ReplaceColumn(i int, c Column) error {
	if i < 0 || i >= len(f.columns) {
		return core.NewValidationError("column_index", "out of range")
	}
	if c.Len() != f.Rows() {
		return core.ErrColumnLengthSkew
	}
	f.columns[i] = c
	return nil
}

// MissingCells returns the total number of missing cells in the frame
func (f *Frame) MissingCells() int {
	total := 0
	for _, c := range f.columns {
		total += c.MissingCount()
	}
	return total
}
