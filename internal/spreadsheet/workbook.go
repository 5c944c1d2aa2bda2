package spreadsheet

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// MaxSheetNameLength is the longest sheet name spreadsheet applications accept
const MaxSheetNameLength = 31

// ImportError is a problem found while parsing an uploaded workbook.
// Row is 1-based; Row 0 marks a structural error that aborted the whole import.
type ImportError struct {
	Sheet   string `json:"sheet,omitempty"`
	Row     int    `json:"row"`
	Message string `json:"message"`
}

func (e ImportError) Error() string {
	switch {
	case e.Row == 0 && e.Sheet == "":
		return e.Message
	case e.Row == 0:
		return fmt.Sprintf("sheet %q: %s", e.Sheet, e.Message)
	case e.Sheet == "":
		return fmt.Sprintf("row %d: %s", e.Row, e.Message)
	}
	return fmt.Sprintf("sheet %q, row %d: %s", e.Sheet, e.Row, e.Message)
}

// Structural reports whether the error aborted the import
func (e ImportError) Structural() bool {
	return e.Row == 0
}

func structuralError(sheet, format string, args ...interface{}) []ImportError {
	return []ImportError{{Sheet: sheet, Message: fmt.Sprintf(format, args...)}}
}

// table is one sheet read as a header row plus data rows
type table struct {
	sheet  string
	header map[string]int
	names  []string
	rows   [][]string
}

func (t *table) index(c column) int {
	for _, name := range c {
		if idx, ok := t.header[normalize(name)]; ok {
			return idx
		}
	}
	return -1
}

func (t *table) has(c column) bool {
	return t.index(c) >= 0
}

// get returns the trimmed cell value, or "" when the column is absent or the row is short
func (t *table) get(row []string, c column) string {
	idx := t.index(c)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// lookup is get that also reports whether the column exists
func (t *table) lookup(row []string, c column) (string, bool) {
	if !t.has(c) {
		return "", false
	}
	return t.get(row, c), true
}

// rowNumber converts a data row index to its 1-based sheet row number
func (t *table) rowNumber(i int) int {
	return i + 2
}

func (t *table) missing(required ...column) []string {
	var out []string
	for _, c := range required {
		if !t.has(c) {
			out = append(out, c.header())
		}
	}
	return out
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// openWorkbook never panics; a broken container becomes a structural error
func openWorkbook(data []byte) (f *excelize.File, errs []ImportError) {
	defer func() {
		if r := recover(); r != nil {
			f = nil
			errs = structuralError("", "unable to read workbook: %v", r)
		}
	}()

	if len(data) == 0 {
		return nil, structuralError("", "file is empty")
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, structuralError("", "unable to read workbook: %v", err)
	}
	return f, nil
}

// findSheet returns the first sheet whose name matches one of names, falling back to the first sheet
func findSheet(f *excelize.File, names ...string) string {
	if name, ok := sheetByName(f, names...); ok {
		return name
	}
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ""
	}
	return sheets[0]
}

func sheetByName(f *excelize.File, names ...string) (string, bool) {
	for _, want := range names {
		for _, sheet := range f.GetSheetList() {
			if normalize(sheet) == normalize(want) {
				return sheet, true
			}
		}
	}
	return "", false
}

// readTable loads a sheet using its first row as header. Empty sheets are structural errors.
func readTable(f *excelize.File, sheet string) (t *table, errs []ImportError) {
	defer func() {
		if r := recover(); r != nil {
			t = nil
			errs = structuralError(sheet, "unable to read sheet: %v", r)
		}
	}()

	if sheet == "" {
		return nil, structuralError("", "workbook has no sheets")
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, structuralError(sheet, "unable to read sheet: %v", err)
	}
	if len(rows) == 0 || isBlankRow(rows[0]) {
		return nil, structuralError(sheet, "sheet is empty")
	}

	t = &table{sheet: sheet, header: make(map[string]int), names: rows[0], rows: rows[1:]}
	for i, name := range rows[0] {
		key := normalize(name)
		if key == "" {
			continue
		}
		if _, dup := t.header[key]; !dup {
			t.header[key] = i
		}
	}
	return t, nil
}

// workbook builds an xlsx file sheet by sheet
type workbook struct {
	file        *excelize.File
	names       *sheetNamer
	sheets      int
	headerStyle int
}

func newWorkbook() (*workbook, error) {
	f := excelize.NewFile()
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	return &workbook{file: f, names: newSheetNamer(), headerStyle: style}, nil
}

// addSheet writes a header row and data rows; the name is sanitized and deduplicated.
// It returns the final sheet name.
func (w *workbook) addSheet(name string, header []string, rows [][]interface{}) (string, error) {
	sheet := w.names.next(name)

	if w.sheets == 0 {
		if err := w.file.SetSheetName(w.file.GetSheetName(0), sheet); err != nil {
			return "", fmt.Errorf("failed to rename sheet: %w", err)
		}
	} else if _, err := w.file.NewSheet(sheet); err != nil {
		return "", fmt.Errorf("failed to create sheet %q: %w", sheet, err)
	}
	w.sheets++

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := w.file.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}

	if len(header) > 0 {
		lastCol, err := excelize.ColumnNumberToName(len(header))
		if err != nil {
			return "", err
		}
		if err := w.file.SetCellStyle(sheet, "A1", lastCol+"1", w.headerStyle); err != nil {
			return "", fmt.Errorf("failed to style header: %w", err)
		}
		if err := w.file.SetColWidth(sheet, "A", lastCol, 20); err != nil {
			return "", fmt.Errorf("failed to size columns: %w", err)
		}
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", err
		}
		if err := w.file.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return "", fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	return sheet, nil
}

func (w *workbook) bytes() ([]byte, error) {
	defer w.file.Close()
	buf, err := w.file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetNamer hands out sanitized, unique sheet names
type sheetNamer struct {
	used map[string]bool
}

func newSheetNamer() *sheetNamer {
	return &sheetNamer{used: make(map[string]bool)}
}

func (n *sheetNamer) next(name string) string {
	base := SanitizeSheetName(name)
	candidate := base
	for i := 1; n.used[strings.ToLower(candidate)]; i++ {
		suffix := fmt.Sprintf("_%d", i)
		candidate = truncateRunes(base, MaxSheetNameLength-len(suffix)) + suffix
	}
	n.used[strings.ToLower(candidate)] = true
	return candidate
}

// UniqueSheetNames applies the sanitize, truncate and dedupe policy to a list of names
func UniqueSheetNames(names []string) []string {
	namer := newSheetNamer()
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = namer.next(name)
	}
	return out
}

var sheetNameReplacer = strings.NewReplacer(
	":", "_", `\`, "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_",
)

// SanitizeSheetName replaces characters spreadsheet applications forbid and truncates to 31 characters
func SanitizeSheetName(name string) string {
	s := strings.TrimSpace(sheetNameReplacer.Replace(name))
	s = strings.Trim(s, "'")
	if s == "" {
		s = "Sheet"
	}
	return truncateRunes(s, MaxSheetNameLength)
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

func sortStableBy[T any](items []T, less func(a, b T) bool) {
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}
