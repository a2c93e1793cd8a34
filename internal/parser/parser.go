// Package parser turns pasted or file-sourced rating tables into chiller
// records with per-row warnings.
package parser

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"chiller-selector/internal/models"
	"chiller-selector/internal/normalize"
	"chiller-selector/internal/observability"
)

const (
	WarnNoData       = "No data provided"
	WarnUnparsable   = "No data could be parsed from the input"
	UnknownFolder    = "Unknown"
	duplicateSepChar = "."
)

// BatchContext holds the rating point shared by every row of one paste.
type BatchContext struct {
	AmbientF *int     `json:"ambient_f"`
	EwtC     *float64 `json:"ewt_c"`
	LwtC     *float64 `json:"lwt_c"`
}

// FolderName labels the batch: "105°F 12°C/7°C" with all three values,
// "105°F" with only the ambient, "Unknown" otherwise.
func (bc BatchContext) FolderName() string {
	switch {
	case bc.AmbientF != nil && bc.EwtC != nil && bc.LwtC != nil:
		return fmt.Sprintf("%d°F %s°C/%s°C", *bc.AmbientF, formatNumber(*bc.EwtC), formatNumber(*bc.LwtC))
	case bc.AmbientF != nil:
		return fmt.Sprintf("%d°F", *bc.AmbientF)
	default:
		return UnknownFolder
	}
}

// Row is one parsed data row. Index is 1-based.
type Row struct {
	Index  int                  `json:"index"`
	Record models.ChillerRecord `json:"record"`
	Errors []string             `json:"errors,omitempty"`
}

// Valid reports whether the row carries every required field.
func (r Row) Valid() bool {
	return len(r.Record.MissingRequired()) == 0
}

// Result is the outcome of one Parse call.
type Result struct {
	Rows      []Row     `json:"rows"`
	Columns   []string  `json:"columns"`
	Warnings  []string  `json:"warnings"`
	Delimiter Delimiter `json:"delimiter,omitempty"`
}

// Records returns every parsed record in input order, valid or not.
func (r *Result) Records() []models.ChillerRecord {
	out := make([]models.ChillerRecord, 0, len(r.Rows))
	for _, row := range r.Rows {
		out = append(out, row.Record)
	}
	return out
}

// ValidCount is the number of rows that can be imported.
func (r *Result) ValidCount() int {
	n := 0
	for _, row := range r.Rows {
		if row.Valid() {
			n++
		}
	}
	return n
}

type Parser struct {
	logr *zap.Logger
}

func NewParser(logr *zap.Logger) *Parser {
	if logr == nil {
		logr = zap.NewNop()
	}
	return &Parser{logr: logr}
}

// Parse reads text as a table whose first row is the header. Input that is
// empty or yields no data rows produces a single warning and no rows; any
// other problem is reported per row and the row is still returned.
func (p *Parser) Parse(text string, bc BatchContext) *Result {
	if strings.TrimSpace(text) == "" {
		return &Result{Warnings: []string{WarnNoData}}
	}

	grid, delim, err := tokenize(text)
	if err != nil {
		p.logr.Debug("table tokenize failed", zap.String("delimiter", string(delim)), zap.Error(err))
		return &Result{Warnings: []string{WarnUnparsable}, Delimiter: delim}
	}
	if len(grid) < 2 {
		return &Result{Warnings: []string{WarnUnparsable}, Delimiter: delim}
	}

	headers := mapHeaders(grid[0])
	hasModel := contains(headers, normalize.FieldModel)
	folder := bc.FolderName()

	res := &Result{
		Rows:      make([]Row, 0, len(grid)-1),
		Columns:   outputColumns(headers, bc),
		Delimiter: delim,
	}

	for i, cells := range grid[1:] {
		index := i + 1
		raw := normalize.RawRow{}
		var rowWarnings []string

		for c, name := range headers {
			if c < len(cells) {
				raw[name] = cells[c]
			}
		}
		if extra := surplus(cells, len(headers)); extra > 0 {
			rowWarnings = append(rowWarnings, fmt.Sprintf("%d extra cell(s) dropped", extra))
		}

		if bc.AmbientF != nil {
			raw[normalize.FieldAmbient] = strconv.Itoa(*bc.AmbientF)
		}
		if bc.EwtC != nil {
			raw[normalize.FieldEWT] = formatNumber(*bc.EwtC)
		}
		if bc.LwtC != nil {
			raw[normalize.FieldLWT] = formatNumber(*bc.LwtC)
		}
		raw[normalize.FieldFolder] = folder

		if hasModel {
			delete(raw, normalize.FieldModelPrefix)
			if prefix := normalize.ExtractModelPrefix(raw[normalize.FieldModel]); prefix != nil {
				raw[normalize.FieldModelPrefix] = *prefix
			}
		}

		rec, problems := normalize.ValidateAndClean(raw)
		rowWarnings = append(problems, rowWarnings...)

		for _, msg := range rowWarnings {
			res.Warnings = append(res.Warnings, fmt.Sprintf("Row %d: %s", index, msg))
		}
		res.Rows = append(res.Rows, Row{Index: index, Record: rec, Errors: rowWarnings})
	}

	observability.RecordParseWarnings(len(res.Warnings))
	p.logr.Debug("table parsed",
		zap.String("delimiter", string(delim)),
		zap.Int("rows", len(res.Rows)),
		zap.Int("warnings", len(res.Warnings)),
	)
	return res
}

func tokenize(text string) ([][]string, Delimiter, error) {
	// markup only counts when the paste starts with it; a "<table" inside a
	// delimited cell is plain text
	if strings.HasPrefix(strings.TrimSpace(text), "<") && strings.Contains(strings.ToLower(text), "<table") {
		grid, err := readHTMLTable(text)
		return grid, DelimiterHTML, err
	}

	delim := DetectDelimiter(text)
	switch delim {
	case DelimiterSpaces:
		return splitSpaces(text), delim, nil
	case DelimiterComma:
		grid, err := readDelimited(text, ',')
		return grid, delim, err
	default:
		grid, err := readDelimited(text, '\t')
		return grid, delim, err
	}
}

func readDelimited(text string, comma rune) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = comma
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = comma != '\t'

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %q separated table: %w", comma, err)
	}
	return dropBlankRows(records), nil
}

func splitSpaces(text string) [][]string {
	var grid [][]string
	for _, line := range nonEmptyLines(text, 0) {
		grid = append(grid, spaceSplitRe.Split(strings.TrimSpace(line), -1))
	}
	return grid
}

func readHTMLTable(text string) ([][]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("read html table: %w", err)
	}

	var grid [][]string
	doc.Find("table").First().Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		grid = append(grid, cells)
	})
	return dropBlankRows(grid), nil
}

func dropBlankRows(grid [][]string) [][]string {
	out := grid[:0]
	for _, cells := range grid {
		for _, c := range cells {
			if strings.TrimSpace(c) != "" {
				out = append(out, cells)
				break
			}
		}
	}
	return out
}

// mapHeaders resolves header cells to field names. Recognised headers take
// their canonical name; others keep their text. Repeats get ".1", ".2", ...
func mapHeaders(cells []string) []string {
	seen := map[string]int{}
	out := make([]string, len(cells))
	for i, cell := range cells {
		cell = strings.TrimSpace(cell)
		name := normalize.NormalizeHeader(cell)
		if !normalize.IsCanonicalField(name) {
			name = cell
		}
		if name == "" {
			name = fmt.Sprintf("column %d", i+1)
		}

		base := name
		for seen[name] > 0 {
			name = base + duplicateSepChar + strconv.Itoa(seen[base])
			seen[base]++
		}
		seen[name]++
		out[i] = name
	}
	return out
}

// outputColumns lists record columns with model first. Composite inputs are
// replaced in place by the fields they decode into and batch fields follow
// the input columns.
func outputColumns(headers []string, bc BatchContext) []string {
	var cols []string
	add := func(names ...string) {
		for _, n := range names {
			if !contains(cols, n) {
				cols = append(cols, n)
			}
		}
	}

	for _, h := range headers {
		switch h {
		case normalize.FieldDimensions:
			add(normalize.FieldLength, normalize.FieldWidth, normalize.FieldHeight)
		case normalize.FieldPressureDrop:
			add(normalize.FieldPSI, normalize.FieldFtWG)
		case normalize.FieldEER:
			if contains(headers, normalize.FieldEfficiency) {
				add(h)
			} else {
				add(normalize.FieldEfficiency)
			}
		default:
			add(h)
		}
	}

	if bc.AmbientF != nil {
		add(normalize.FieldAmbient)
	}
	if bc.EwtC != nil {
		add(normalize.FieldEWT)
	}
	if bc.LwtC != nil {
		add(normalize.FieldLWT)
	}
	add(normalize.FieldFolder)
	if contains(headers, normalize.FieldModel) {
		add(normalize.FieldModelPrefix)
	}

	ordered := make([]string, 0, len(cols))
	if contains(cols, normalize.FieldModel) {
		ordered = append(ordered, normalize.FieldModel)
	}
	for _, c := range cols {
		if c != normalize.FieldModel {
			ordered = append(ordered, c)
		}
	}
	return ordered
}

func surplus(cells []string, width int) int {
	n := 0
	for _, c := range cells[min(width, len(cells)):] {
		if strings.TrimSpace(c) != "" {
			n++
		}
	}
	return n
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
