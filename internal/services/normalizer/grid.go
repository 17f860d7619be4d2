package normalizer

import "strings"

// Row is one spreadsheet line. It may be shorter than the widest column
// a layout refers to; missing cells read as empty.
type Row []string

func (r Row) Cell(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[i])
}

func (r Row) AllEmpty(cols ...int) bool {
	for _, c := range cols {
		if r.Cell(c) != "" {
			return false
		}
	}
	return true
}

func (r Row) Blank() bool {
	for i := range r {
		if r.Cell(i) != "" {
			return false
		}
	}
	return true
}

// SkipRows drops the first n header rows of a grid.
func SkipRows(grid [][]string, n int) [][]string {
	if n <= 0 {
		return grid
	}
	if n >= len(grid) {
		return nil
	}
	return grid[n:]
}

// Warning is a non-fatal problem with a single cell. Row is the index into
// the rows handed to the normalizer.
type Warning struct {
	Row    int
	Column int
	Field  string
	Value  string
	Reason string
}

// SheetRow converts Row to the 1-based line number in the original sheet.
func (w Warning) SheetRow(headerRows int) int {
	return w.Row + headerRows + 1
}

type collector struct {
	warnings []Warning
}

func (c *collector) add(row, col int, field string, err error) {
	if err == nil {
		return
	}
	w := Warning{Row: row, Column: col, Field: field, Reason: err.Error()}
	if ce, ok := err.(*CellError); ok {
		w.Value = ce.Value
	}
	c.warnings = append(c.warnings, w)
}
