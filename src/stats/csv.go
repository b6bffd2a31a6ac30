package stats

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidInputFormat is returned for inputs that are not .csv files.
var ErrInvalidInputFormat = errors.New("invalid input format")

// CheckPath validates the file extension only. It never touches the file system.
func CheckPath(path string) error {
	if !strings.HasSuffix(filepath.Base(path), ".csv") {
		return fmt.Errorf("%w: %s does not correspond to a .csv file", ErrInvalidInputFormat, path)
	}
	return nil
}

// Stem returns the input file name without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	if i := strings.LastIndex(base, "."); i > 0 {
		return base[:i]
	}
	return base
}

// LoadCSV reads a statistics file with a header row into a Table.
func LoadCSV(path string) (*Table, error) {
	if err := CheckPath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ReadCSV parses CSV content with a header row.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("missing header row")
	}
	header := records[0]
	body := records[1:]
	// The harness writes a trailing comma on every line; drop the empty trailing header.
	for len(header) > 0 && strings.TrimSpace(header[len(header)-1]) == "" {
		header = header[:len(header)-1]
	}
	t := NewTable(len(body))
	for ci, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", ci)
		}
		col := &Column{Name: name, Values: make([]float64, len(body)), Integer: true}
		raw := make([]string, len(body))
		numeric := true
		for ri, rec := range body {
			cell := ""
			if ci < len(rec) {
				cell = strings.TrimSpace(rec[ci])
			}
			raw[ri] = cell
			v, ok := parseCell(cell)
			if !ok {
				numeric = false
			}
			col.Values[ri] = v
			if !math.IsNaN(v) && v != math.Trunc(v) {
				col.Integer = false
			}
		}
		if !numeric {
			col.Raw = raw
			col.Integer = false
		}
		if err := t.addColumn(col); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// parseCell returns NaN for empty cells (ok=true) and for non-numeric text (ok=false).
func parseCell(s string) (float64, bool) {
	if s == "" {
		return math.NaN(), true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN(), false
	}
	return v, true
}

// ListCSV returns the .csv files of a directory, sorted by name.
func ListCSV(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}
