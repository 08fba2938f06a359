package models

import (
	"encoding/json"
	"fmt"
	"math"
)

// FinancialTable is a financial statement laid out as rows (metric names)
// by columns (period labels). Column order is provider-defined; Yahoo
// returns most-recent-first. Cells may be absent.
type FinancialTable struct {
	columns []string
	rows    []string
	cells   map[string]map[string]float64
}

// NewFinancialTable creates an empty table with the given column order.
func NewFinancialTable(columns ...string) *FinancialTable {
	t := &FinancialTable{cells: make(map[string]map[string]float64)}
	for _, c := range columns {
		t.AddColumn(c)
	}
	return t
}

// AddColumn appends a column if it is not already present.
func (t *FinancialTable) AddColumn(label string) {
	for _, c := range t.columns {
		if c == label {
			return
		}
	}
	t.columns = append(t.columns, label)
}

// AddRow declares a row with every cell absent.
func (t *FinancialTable) AddRow(name string) {
	if t.cells == nil {
		t.cells = make(map[string]map[string]float64)
	}
	if _, ok := t.cells[name]; ok {
		return
	}
	t.cells[name] = make(map[string]float64)
	t.rows = append(t.rows, name)
}

// Set stores a cell, declaring the row and column when needed.
// NaN is stored as an absent cell.
func (t *FinancialTable) Set(row, column string, v float64) {
	t.AddRow(row)
	t.AddColumn(column)
	if math.IsNaN(v) {
		delete(t.cells[row], column)
		return
	}
	t.cells[row][column] = v
}

// Columns returns the column labels in table order.
func (t *FinancialTable) Columns() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Rows returns the row names in insertion order.
func (t *FinancialTable) Rows() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.rows))
	copy(out, t.rows)
	return out
}

// HasRow reports whether name is a row key.
func (t *FinancialTable) HasRow(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.cells[name]
	return ok
}

// Cell returns the value at row/column; ok is false for absent cells.
func (t *FinancialTable) Cell(row, column string) (float64, bool) {
	if t == nil {
		return 0, false
	}
	r, ok := t.cells[row]
	if !ok {
		return 0, false
	}
	v, ok := r[column]
	return v, ok
}

// Empty reports whether the table has no rows or no columns.
func (t *FinancialTable) Empty() bool {
	return t == nil || len(t.rows) == 0 || len(t.columns) == 0
}

type tableJSON struct {
	Columns []string       `json:"columns"`
	Rows    []tableRowJSON `json:"rows"`
}

type tableRowJSON struct {
	Name   string     `json:"name"`
	Values []*float64 `json:"values"`
}

// MarshalJSON encodes the table column-aligned, absent cells as null.
func (t *FinancialTable) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("null"), nil
	}
	out := tableJSON{Columns: t.Columns(), Rows: make([]tableRowJSON, 0, len(t.rows))}
	for _, name := range t.rows {
		row := tableRowJSON{Name: name, Values: make([]*float64, len(t.columns))}
		for i, col := range t.columns {
			if v, ok := t.cells[name][col]; ok && !math.IsInf(v, 0) {
				v := v
				row.Values[i] = &v
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the MarshalJSON layout.
func (t *FinancialTable) UnmarshalJSON(data []byte) error {
	var in tableJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*t = *NewFinancialTable(in.Columns...)
	for _, row := range in.Rows {
		if len(row.Values) > len(in.Columns) {
			return fmt.Errorf("row %q has %d values for %d columns", row.Name, len(row.Values), len(in.Columns))
		}
		t.AddRow(row.Name)
		for i, v := range row.Values {
			if v != nil {
				t.Set(row.Name, in.Columns[i], *v)
			}
		}
	}
	return nil
}
