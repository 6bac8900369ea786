// Package dataset reads and writes the delimited review tables used by
// corpus preparation, training and batch classification.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrMissingColumn is returned when a required column is not in the header.
var ErrMissingColumn = errors.New("column not found")

// Table is an in-memory delimited file: a header and string cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Options controls how a table is read
type Options struct {
	Delimiter rune
	Encoding  string // "utf-8", "latin-1" or "auto"
}

// DefaultOptions reads comma separated UTF-8
func DefaultOptions() Options {
	return Options{Delimiter: ',', Encoding: "utf-8"}
}

const bom = "\ufeff"

// naMarkers are the cell values pandas reads as NaN by default.
var naMarkers = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// IsMissing reports whether a cell counts as a missing value.
func IsMissing(value string) bool {
	_, ok := naMarkers[value]
	return ok
}

// IsBlank reports whether a cell is missing or whitespace only.
func IsBlank(value string) bool {
	return IsMissing(value) || strings.TrimSpace(value) == ""
}

// NewTable creates an empty table with the given header
func NewTable(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// ReadFile reads a table from path
func ReadFile(path string, opts Options) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	table, err := Read(file, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return table, nil
}

// Read parses a delimited table. Rows shorter than the header are padded
// with missing cells; longer rows are an error.
func Read(r io.Reader, opts Options) (*Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	text, err := Decode(raw, opts.Encoding)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = opts.Delimiter
	if reader.Comma == 0 {
		reader.Comma = ','
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	table := &Table{Columns: dedupeColumns(header)}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse row: %w", err)
		}

		if len(record) > len(table.Columns) {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d: expected %d fields, saw %d", line, len(table.Columns), len(record))
		}
		for len(record) < len(table.Columns) {
			record = append(record, "")
		}
		table.Rows = append(table.Rows, record)
	}

	return table, nil
}

// Decode converts raw bytes to text. A leading UTF-8 byte order mark is removed.
func Decode(raw []byte, encoding string) (string, error) {
	switch encoding {
	case "", "utf-8":
		if !utf8.Valid(raw) {
			return "", fmt.Errorf("input is not valid UTF-8")
		}
		return strings.TrimPrefix(string(raw), bom), nil
	case "latin-1":
		return decodeLatin1(raw)
	case "auto":
		if utf8.Valid(raw) {
			return strings.TrimPrefix(string(raw), bom), nil
		}
		return decodeLatin1(raw)
	default:
		return "", fmt.Errorf("unsupported encoding: %s", encoding)
	}
}

// dedupeColumns renames repeated header names to name.1, name.2, ...
func dedupeColumns(header []string) []string {
	seen := make(map[string]int, len(header))
	columns := make([]string, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if n, ok := seen[name]; ok {
			seen[name] = n + 1
			columns[i] = name + "." + strconv.Itoa(n+1)
			continue
		}
		seen[name] = 0
		columns[i] = name
	}
	return columns
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of name in the header
func (t *Table) ColumnIndex(name string) (int, error) {
	for i, c := range t.Columns {
		if c == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q (have %s)", ErrMissingColumn, name, strings.Join(t.Columns, ", "))
}

// HasColumn reports whether name is in the header
func (t *Table) HasColumn(name string) bool {
	_, err := t.ColumnIndex(name)
	return err == nil
}

// Column returns a copy of every value in column name
func (t *Table) Column(name string) ([]string, error) {
	idx, err := t.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}
	return values, nil
}

// SetColumn assigns values to column name, appending the column if it
// does not exist yet.
func (t *Table) SetColumn(name string, values []string) error {
	if len(values) != len(t.Rows) {
		return fmt.Errorf("column %q has %d values, table has %d rows", name, len(values), len(t.Rows))
	}

	idx, err := t.ColumnIndex(name)
	if err != nil {
		t.Columns = append(t.Columns, name)
		for i := range t.Rows {
			t.Rows[i] = append(t.Rows[i], values[i])
		}
		return nil
	}

	for i := range t.Rows {
		t.Rows[i][idx] = values[i]
	}
	return nil
}

// Select returns a new table with only the named columns, in that order
func (t *Table) Select(names ...string) (*Table, error) {
	indexes := make([]int, len(names))
	for i, name := range names {
		idx, err := t.ColumnIndex(name)
		if err != nil {
			return nil, err
		}
		indexes[i] = idx
	}

	out := NewTable(names...)
	out.Rows = make([][]string, len(t.Rows))
	for r, row := range t.Rows {
		selected := make([]string, len(indexes))
		for i, idx := range indexes {
			selected[i] = row[idx]
		}
		out.Rows[r] = selected
	}
	return out, nil
}

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	out := NewTable(t.Columns...)
	out.Rows = make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		out.Rows[i] = append([]string(nil), row...)
	}
	return out
}

// SuggestTextColumn returns the first column holding free text: values that
// are not all numeric and whose mean length exceeds five characters. When
// no column qualifies the first column is returned.
func (t *Table) SuggestTextColumn() string {
	if len(t.Columns) == 0 {
		return ""
	}

	for idx, name := range t.Columns {
		var total, count int
		numeric := true
		for _, row := range t.Rows {
			v := row[idx]
			if IsMissing(v) {
				continue
			}
			if _, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
				numeric = false
			}
			total += utf8.RuneCountInString(v)
			count++
		}
		if count == 0 || numeric {
			continue
		}
		if float64(total)/float64(count) > 5 {
			return name
		}
	}

	return t.Columns[0]
}

// Write encodes the table with the given delimiter
func Write(w io.Writer, t *Table, delimiter rune) error {
	writer := csv.NewWriter(w)
	writer.Comma = delimiter

	if err := writer.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteFile writes the table to path through a temporary file in the same
// directory, so a failure never leaves a partial file behind. The parent
// directory is created when missing.
func WriteFile(path string, t *Table, delimiter rune) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err := Write(tmp, t, delimiter); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}

// ParseDelimiter returns the first rune of s, or ',' when s is empty.
func ParseDelimiter(s string) rune {
	for _, r := range s {
		return r
	}
	return ','
}
