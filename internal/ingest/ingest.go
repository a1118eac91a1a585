package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/KaramelBytes/attrition-cli/internal/dataset"
	"github.com/xuri/excelize/v2"
)

// Parser turns uploaded bytes into a Dataset. The zero value is not usable;
// construct with NewParser.
type Parser struct {
	readSheet func(data []byte) ([][]string, error)
	logger    *slog.Logger
}

// NewParser returns a Parser that reads workbooks with excelize. A nil logger
// discards diagnostics.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Parser{
		readSheet: readFirstSheet,
		logger:    logger.With(slog.String("component", "ingest")),
	}
}

// Parse is a convenience wrapper around NewParser(nil).Parse.
func Parse(data []byte, filename string) (*dataset.Dataset, error) {
	return NewParser(nil).Parse(data, filename)
}

// ParseFile reads path and parses it with the file's base name as the hint.
func ParseFile(path string) (*dataset.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return Parse(data, filepath.Base(path))
}

// Parse reads data as a workbook first. A failed workbook read falls back to
// delimited text, and so does a workbook that yields a single column, which
// usually means a text file was opened as a spreadsheet.
func (p *Parser) Parse(data []byte, filename string) (*dataset.Dataset, error) {
	comma := delimiterFor(filename)

	rows, err := p.readSheet(data)
	switch {
	case err != nil:
		p.logger.Debug("workbook read failed, trying delimited text",
			slog.String("file", filename), slog.String("error", err.Error()))
	case headerWidth(rows) == 1:
		if d, terr := buildTable(readDelimited(data, comma)); terr == nil {
			p.logger.Debug("single-column workbook re-read as delimited text",
				slog.String("file", filename), slog.Int("columns", d.Width()))
			return d, nil
		}
		fallthrough
	default:
		d, berr := buildTable(widen(rows), nil)
		if berr != nil {
			return nil, &ParseError{Filename: filename, Err: berr}
		}
		p.logger.Debug("parsed workbook", slog.String("file", filename),
			slog.Int("rows", d.Rows()), slog.Int("columns", d.Width()))
		return d, nil
	}

	d, err := buildTable(readDelimited(data, comma))
	if err != nil {
		return nil, &ParseError{Filename: filename, Err: err}
	}
	p.logger.Debug("parsed delimited text", slog.String("file", filename),
		slog.Int("rows", d.Rows()), slog.Int("columns", d.Width()))
	return d, nil
}

func delimiterFor(filename string) rune {
	if strings.HasSuffix(strings.ToLower(filename), ".tsv") {
		return '\t'
	}
	return ','
}

// readFirstSheet returns the rows of the workbook's first sheet. Numeric cells
// keep their stored value instead of the number-formatted display text.
func readFirstSheet(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// readDelimited parses UTF-8 text records. Binary content is rejected up front
// so a workbook is never mistaken for a one-line CSV.
func readDelimited(data []byte, comma rune) ([][]string, error) {
	if !utf8.Valid(data) || bytes.IndexByte(data, 0) >= 0 {
		return nil, errNotText
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	recs, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read delimited text: %w", err)
	}
	return recs, nil
}

// buildTable splits the header row off, drops blank records and types the rest.
func buildTable(recs [][]string, err error) (*dataset.Dataset, error) {
	if err != nil {
		return nil, err
	}
	for len(recs) > 0 && blank(recs[0]) {
		recs = recs[1:]
	}
	if len(recs) == 0 || len(recs[0]) == 0 {
		return nil, errNoHeader
	}
	header := recs[0]
	body := make([][]string, 0, len(recs)-1)
	for _, rec := range recs[1:] {
		if !blank(rec) {
			body = append(body, rec)
		}
	}
	if len(body) == 0 {
		return nil, errNoRows
	}
	return dataset.FromRecords(header, body)
}

// widen pads the header to the widest row; excelize trims trailing empty cells,
// which can leave a header shorter than its data.
func widen(rows [][]string) [][]string {
	for len(rows) > 0 && blank(rows[0]) {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return rows
	}
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	if len(rows[0]) < width {
		header := make([]string, width)
		copy(header, rows[0])
		rows = append([][]string{header}, rows[1:]...)
	}
	return rows
}

func headerWidth(rows [][]string) int {
	for _, r := range rows {
		if !blank(r) {
			return len(r)
		}
	}
	return 0
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
