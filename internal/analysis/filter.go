package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/attrition-cli/internal/dataset"
)

// Selection is the user's chosen subset per dimension. A dimension without an
// entry is unconstrained; an entry with no values selects nothing.
//
// On the wire a Selection is a flat object keyed by dimension name: categorical
// dimensions map to string arrays and range dimensions to [lo, hi].
type Selection struct {
	Values map[string][]string
	Ranges map[string]Range
}

// SetValues selects the given categorical values for dim.
func (s *Selection) SetValues(dim string, vals ...string) {
	if s.Values == nil {
		s.Values = make(map[string][]string)
	}
	s.Values[dim] = append(make([]string, 0, len(vals)), vals...)
}

// SetRange selects [lo, hi] for dim.
func (s *Selection) SetRange(dim string, lo, hi float64) {
	if s.Ranges == nil {
		s.Ranges = make(map[string]Range)
	}
	s.Ranges[dim] = Range{Lo: lo, Hi: hi}
}

// IsZero reports whether the selection constrains nothing.
func (s Selection) IsZero() bool { return len(s.Values) == 0 && len(s.Ranges) == 0 }

// Clone returns a deep copy.
func (s Selection) Clone() Selection {
	var c Selection
	for k, v := range s.Values {
		c.SetValues(k, v...)
	}
	for k, r := range s.Ranges {
		c.SetRange(k, r.Lo, r.Hi)
	}
	return c
}

// Keys returns the constrained dimension names, sorted.
func (s Selection) Keys() []string {
	keys := make([]string, 0, len(s.Values)+len(s.Ranges))
	for k := range s.Values {
		keys = append(keys, k)
	}
	for k := range s.Ranges {
		if _, dup := s.Values[k]; !dup {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func (s Selection) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(s.Values)+len(s.Ranges))
	for k, v := range s.Values {
		flat[k] = v
	}
	for k, r := range s.Ranges {
		flat[k] = r
	}
	return json.Marshal(flat)
}

// UnmarshalJSON decodes the flat wire form. Range keys are recognised by name;
// unknown keys are kept as categorical values when they decode as strings.
func (s *Selection) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("decode selection: %w", err)
	}
	*s = Selection{}
	for k, msg := range raw {
		if isRangeDimension(k) {
			var r Range
			if err := json.Unmarshal(msg, &r); err != nil {
				return fmt.Errorf("decode selection %q: %w", k, err)
			}
			s.SetRange(k, r.Lo, r.Hi)
			continue
		}
		var vals []string
		if err := json.Unmarshal(msg, &vals); err != nil {
			return fmt.Errorf("decode selection %q: expected an array of strings: %w", k, err)
		}
		s.SetValues(k, vals...)
	}
	return nil
}

func isRangeDimension(name string) bool {
	for _, spec := range dimensionSpecs {
		if spec.name == name {
			return spec.kind == RangeKind
		}
	}
	return false
}

// SelectionError reports a selection outside its dimension's domain.
type SelectionError struct {
	Dimension string
	Reason    string
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("invalid selection for %s: %s", e.Dimension, e.Reason)
}

// Validate checks that every entry for a derived dimension is a subset or
// sub-range of that dimension's domain. Entries for dimensions the dataset does
// not have are ignored.
func (s Selection) Validate(dims []Dimension) error {
	for _, name := range s.Keys() {
		dim, ok := FindDimension(dims, name)
		if !ok {
			continue
		}
		vals, hasVals := s.Values[name]
		r, hasRange := s.Ranges[name]
		switch dim.Kind {
		case Categorical:
			if hasRange {
				return &SelectionError{Dimension: name, Reason: "categorical dimension does not take a range"}
			}
			for _, v := range vals {
				if !dim.Contains(v) {
					return &SelectionError{Dimension: name, Reason: fmt.Sprintf("unknown value %q", v)}
				}
			}
		case RangeKind:
			if hasVals {
				return &SelectionError{Dimension: name, Reason: "range dimension takes [lo, hi], not values"}
			}
			if math.IsNaN(r.Lo) || math.IsNaN(r.Hi) || r.Lo > r.Hi {
				return &SelectionError{Dimension: name, Reason: fmt.Sprintf("range %s is empty or inverted", r)}
			}
			if r.Lo < dim.Bounds.Lo || r.Hi > dim.Bounds.Hi {
				return &SelectionError{Dimension: name, Reason: fmt.Sprintf("range %s is outside observed bounds %s", r, *dim.Bounds)}
			}
		}
	}
	return nil
}

type predicate func(row int) bool

// ApplyFilter returns the rows of d matching every constrained dimension. Rows
// whose value is missing in a constrained column never match, even under the
// identity selection. With nothing to constrain, d itself is returned.
func ApplyFilter(d *dataset.Dataset, sel Selection) *dataset.Dataset {
	var preds []predicate
	for _, dim := range DeriveDimensions(d) {
		vals, _ := d.Column(dim.Name)
		switch dim.Kind {
		case Categorical:
			chosen, ok := sel.Values[dim.Name]
			if !ok {
				continue
			}
			set := make(map[string]struct{}, len(chosen))
			for _, c := range chosen {
				set[c] = struct{}{}
			}
			preds = append(preds, func(row int) bool {
				v := vals[row]
				if v.IsMissing() {
					return false
				}
				_, in := set[v.String()]
				return in
			})
		case RangeKind:
			r, ok := sel.Ranges[dim.Name]
			if !ok {
				continue
			}
			preds = append(preds, func(row int) bool {
				x, isNum := vals[row].Float()
				return isNum && r.Contains(x)
			})
		}
	}
	if len(preds) == 0 {
		return d
	}
	keep := make([]int, 0, d.Rows())
rows:
	for i := 0; i < d.Rows(); i++ {
		for _, p := range preds {
			if !p(i) {
				continue rows
			}
		}
		keep = append(keep, i)
	}
	return d.Subset(keep)
}
