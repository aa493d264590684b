package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/phrazzld/vocabflow/internal/generation"
	"github.com/xuri/excelize/v2"
)

// Format is a supported input file format.
type Format string

// Supported formats
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned for files that are neither CSV nor xlsx.
var ErrUnsupportedFormat = errors.New("unsupported import format")

// Config defines where the fields live in the input.
type Config struct {
	WordColumn    string // Column with the word
	MeaningColumn string // Column with the meaning
	ExampleColumn string // Column with the example sentence, optional
	SheetName     string // Sheet to read; empty selects the first sheet
	StartRow      int    // First data row (1-based)
}

// DefaultConfig reads word, meaning and example from columns A to C and
// skips a header row.
func DefaultConfig() Config {
	return Config{
		WordColumn:    "A",
		MeaningColumn: "B",
		ExampleColumn: "C",
		StartRow:      2,
	}
}

// Result holds the parsed words and the rows that were not usable.
type Result struct {
	Words   []generation.ExtractedWord
	Rows    int
	Skipped int
	Errors  []string
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
}

// ParseFile opens path and parses it according to its extension.
func ParseFile(path string, cfg Config) (*Result, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Parse(f, format, cfg)
}

// Parse reads all rows from r. Rows without a word are counted as skipped;
// duplicate words within the file are removed.
func Parse(r io.Reader, format Format, cfg Config) (*Result, error) {
	var (
		rows [][]string
		err  error
	)
	switch format {
	case FormatCSV:
		rows, err = readCSV(r)
	case FormatXLSX:
		rows, err = readXLSX(r, cfg.SheetName)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	return collect(rows, cfg), nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV: %w", err)
	}
	return rows, nil
}

func readXLSX(r io.Reader, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("spreadsheet has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows from sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func collect(rows [][]string, cfg Config) *Result {
	start := cfg.StartRow
	if start < 1 {
		start = 1
	}
	res := &Result{Words: []generation.ExtractedWord{}, Errors: []string{}}
	var words []generation.ExtractedWord
	for i, row := range rows {
		if i < start-1 {
			continue
		}
		if isBlank(row) {
			continue
		}
		res.Rows++

		w := generation.ExtractedWord{
			Word:    cell(row, cfg.WordColumn),
			Meaning: cell(row, cfg.MeaningColumn),
			Example: cell(row, cfg.ExampleColumn),
		}
		if strings.TrimSpace(w.Word) == "" {
			res.Skipped++
			res.Errors = append(res.Errors, fmt.Sprintf("Row %d: word cannot be empty", i+1))
			continue
		}
		words = append(words, w)
	}
	res.Words = generation.NormalizeWords(words)
	res.Skipped += len(words) - len(res.Words)
	return res
}

func cell(row []string, column string) string {
	if column == "" {
		return ""
	}
	if idx := columnToIndex(column); idx >= 0 && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// columnToIndex converts a column letter such as "A" or "AB" to a 0-based index.
func columnToIndex(column string) int {
	column = strings.ToUpper(strings.TrimSpace(column))
	index := 0
	for i := 0; i < len(column); i++ {
		if column[i] < 'A' || column[i] > 'Z' {
			return -1
		}
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
