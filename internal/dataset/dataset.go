package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// Column is a named sequence of cells.
type Column struct {
	Name   string
	Values []Value
}

// Dataset is an immutable in-memory table. Every column has the same length.
type Dataset struct {
	cols  []Column
	index map[string]int
	rows  int
}

// New builds a Dataset from columns of equal length. Column names must be unique.
func New(cols ...Column) (*Dataset, error) {
	d := &Dataset{cols: cols, index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if _, dup := d.index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column %q", c.Name)
		}
		d.index[c.Name] = i
		if i == 0 {
			d.rows = len(c.Values)
			continue
		}
		if len(c.Values) != d.rows {
			return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name, len(c.Values), d.rows)
		}
	}
	return d, nil
}

// FromRecords types raw string records under a header row. Short records are
// padded with missing cells and cells past the header width are dropped.
func FromRecords(header []string, records [][]string) (*Dataset, error) {
	if len(header) == 0 {
		return nil, errors.New("no header columns")
	}
	names := normalizeHeader(header)
	cols := make([]Column, len(names))
	for j, name := range names {
		cols[j] = Column{Name: name, Values: make([]Value, len(records))}
	}
	for i, rec := range records {
		for j := range cols {
			if j < len(rec) {
				cols[j].Values[i] = ParseCell(rec[j])
			}
		}
	}
	return New(cols...)
}

// normalizeHeader trims names, names blank headers "Unnamed: <i>" and suffixes
// repeated names with ".1", ".2", ...
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if _, dup := seen[name]; dup {
			base := name
			for k := seen[base] + 1; ; k++ {
				cand := fmt.Sprintf("%s.%d", base, k)
				if _, taken := seen[cand]; !taken {
					seen[base] = k
					name = cand
					break
				}
			}
		}
		seen[name] = 0
		out[i] = name
	}
	return out
}

// Rows returns the row count.
func (d *Dataset) Rows() int { return d.rows }

// Width returns the column count.
func (d *Dataset) Width() int { return len(d.cols) }

// Columns returns the column names in order.
func (d *Dataset) Columns() []string {
	names := make([]string, len(d.cols))
	for i, c := range d.cols {
		names[i] = c.Name
	}
	return names
}

// Has reports whether a column named name exists.
func (d *Dataset) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Column returns the named column's cells. Callers must not modify the slice.
func (d *Dataset) Column(name string) ([]Value, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.cols[i].Values, true
}

// Value returns the cell at (row, column), or Missing for an unknown column.
func (d *Dataset) Value(row int, name string) Value {
	vals, ok := d.Column(name)
	if !ok || row < 0 || row >= len(vals) {
		return Missing()
	}
	return vals[row]
}

// Subset returns a new Dataset holding the given rows in the given order.
func (d *Dataset) Subset(rows []int) *Dataset {
	cols := make([]Column, len(d.cols))
	for j, c := range d.cols {
		vals := make([]Value, len(rows))
		for i, r := range rows {
			vals[i] = c.Values[r]
		}
		cols[j] = Column{Name: c.Name, Values: vals}
	}
	index := make(map[string]int, len(d.index))
	for k, v := range d.index {
		index[k] = v
	}
	return &Dataset{cols: cols, index: index, rows: len(rows)}
}

// Head returns the first n rows, or the whole dataset when it is shorter.
func (d *Dataset) Head(n int) *Dataset {
	if n < 0 || n >= d.rows {
		n = d.rows
	}
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return d.Subset(rows)
}

// Profile summarises one column's cell kinds.
type Profile struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"` // numeric|categorical|mixed|empty
	NonNull int    `json:"non_null"`
	Missing int    `json:"missing"`
}

// Profiles returns a per-column kind summary in column order.
func (d *Dataset) Profiles() []Profile {
	out := make([]Profile, 0, len(d.cols))
	for _, c := range d.cols {
		p := Profile{Name: c.Name}
		var nums, texts int
		for _, v := range c.Values {
			switch v.Kind {
			case KindNumber:
				nums++
			case KindText:
				texts++
			default:
				p.Missing++
			}
		}
		p.NonNull = nums + texts
		switch {
		case p.NonNull == 0:
			p.Kind = "empty"
		case texts == 0:
			p.Kind = "numeric"
		case nums == 0:
			p.Kind = "categorical"
		default:
			p.Kind = "mixed"
		}
		out = append(out, p)
	}
	return out
}
