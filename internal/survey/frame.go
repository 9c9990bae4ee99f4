package survey

import (
	"github.com/rotisserie/eris"
)

// Table holds a raw survey file as strings, one row per respondent.
type Table struct {
	Header []string
	Rows   [][]string
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int { return len(t.Rows) }

// ColumnIndex returns the position of the named header column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, h := range t.Header {
		if h == name {
			return i, true
		}
	}
	return 0, false
}

// Frame is a recoded, column-major numeric table. Column order follows
// the schema the frame was recoded with.
type Frame struct {
	Names []string
	Cols  [][]float64
}

// NewFrame allocates an empty frame with one column per name.
func NewFrame(names []string, rows int) *Frame {
	cols := make([][]float64, len(names))
	for i := range cols {
		cols[i] = make([]float64, rows)
	}
	return &Frame{Names: append([]string(nil), names...), Cols: cols}
}

// NumRows returns the number of rows in the frame.
func (f *Frame) NumRows() int {
	if len(f.Cols) == 0 {
		return 0
	}
	return len(f.Cols[0])
}

// NumCols returns the number of columns in the frame.
func (f *Frame) NumCols() int { return len(f.Cols) }

// Col returns the named column.
func (f *Frame) Col(name string) ([]float64, error) {
	for i, n := range f.Names {
		if n == name {
			return f.Cols[i], nil
		}
	}
	return nil, eris.Errorf("survey: no column %q in frame", name)
}

// Row materializes one row across all columns.
func (f *Frame) Row(i int) []float64 {
	row := make([]float64, len(f.Cols))
	for j, col := range f.Cols {
		row[j] = col[i]
	}
	return row
}

// Select returns a frame holding only the named columns, sharing the
// underlying column slices.
func (f *Frame) Select(names ...string) (*Frame, error) {
	out := &Frame{Names: make([]string, 0, len(names)), Cols: make([][]float64, 0, len(names))}
	for _, n := range names {
		col, err := f.Col(n)
		if err != nil {
			return nil, err
		}
		out.Names = append(out.Names, n)
		out.Cols = append(out.Cols, col)
	}
	return out, nil
}
