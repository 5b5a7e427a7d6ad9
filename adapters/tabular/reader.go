package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/infinityseifer/eda-auto/domain/core"
	"github.com/infinityseifer/eda-auto/domain/frame"
	"github.com/infinityseifer/eda-auto/ports"
)

// FrameReader loads CSV and XLSX files into tabular frames
type FrameReader struct{}

// NewFrameReader creates a reader handling both CSV and Excel files
func NewFrameReader() *FrameReader {
	return &FrameReader{}
}

var _ ports.FrameLoader = (*FrameReader)(nil)

// Load reads at most rowCap data rows from the file at path. The cap
// is a determinism contract: the same file with the same cap always
// yields the same sample.
func (r *FrameReader) Load(path string, rowCap int) (*frame.Frame, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("dataset file not found: %s", path)
	}

	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		rows, err = r.readExcelRows(path, rowCap)
	case ".csv":
		rows, err = r.readCSVRows(path, rowCap)
	default:
		// Try CSV as a last resort, as the upload layer already
		// filtered extensions.
		rows, err = r.readCSVRows(path, rowCap)
	}
	if err != nil {
		return nil, err
	}

	return r.buildFrame(rows)
}

func (r *FrameReader) readCSVRows(path string, rowCap int) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // ragged rows are padded against the header

	start := time.Now()
	var rows [][]string
	for len(rows) <= rowCap {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrUnparseableInput, err)
		}
		rows = append(rows, record)
	}
	log.Printf("[FrameReader] CSV file read in %.2fms (%d rows)",
		float64(time.Since(start).Nanoseconds())/1e6, len(rows))

	return rows, nil
}

func (r *FrameReader) readExcelRows(path string, rowCap int) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		// excelize rejects anything that is not a zip archive
		return nil, fmt.Errorf("%w: %v", core.ErrUnparseableInput, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", core.ErrUnparseableInput)
	}

	start := time.Now()
	all, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(all) > rowCap+1 {
		all = all[:rowCap+1]
	}
	log.Printf("[FrameReader] Excel sheet %s read in %.2fms (%d rows)",
		sheets[0], float64(time.Since(start).Nanoseconds())/1e6, len(all))

	return all, nil
}

// Missing-value tokens recognized in raw cells, compared after
// trimming and upper-casing
var missingTokens = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"NAN":  true,
	"NULL": true,
}

func isMissingCell(cell string) bool {
	return missingTokens[strings.ToUpper(strings.TrimSpace(cell))]
}

// buildFrame turns raw string rows into typed columns. A column is
// numeric when every non-missing cell parses as a float; everything
// else starts as text and may later be coerced to temporal.
func (r *FrameReader) buildFrame(rows [][]string) (*frame.Frame, error) {
	if len(rows) < 1 {
		return nil, fmt.Errorf("%w: file has no header row", core.ErrUnparseableInput)
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	nRows := len(rows) - 1
	cells := make([][]string, len(headers))
	for c := range cells {
		cells[c] = make([]string, nRows)
	}
	for i := 1; i < len(rows); i++ {
		for c := range headers {
			if c < len(rows[i]) {
				cells[c][i-1] = strings.TrimSpace(rows[i][c])
			}
		}
	}

	columns := make([]frame.Column, len(headers))
	for c, name := range headers {
		columns[c] = buildColumn(name, cells[c])
	}

	f, err := frame.New(columns)
	if err != nil {
		return nil, err
	}
	log.Printf("[FrameReader] frame built (%d columns, %d rows)", f.Cols(), f.Rows())
	return f, nil
}

func buildColumn(name string, raw []string) frame.Column {
	missing := make([]bool, len(raw))
	numeric := make([]float64, len(raw))
	allNumeric := true
	nonMissing := 0

	for i, cell := range raw {
		if isMissingCell(cell) {
			missing[i] = true
			continue
		}
		nonMissing++
		if allNumeric {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				allNumeric = false
			} else {
				numeric[i] = v
			}
		}
	}

	if allNumeric && nonMissing > 0 {
		return &frame.NumericColumn{ColName: name, Values: numeric, Missing: missing}
	}
	return &frame.TextColumn{ColName: name, Values: raw, Missing: missing}
}
