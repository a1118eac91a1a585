package analysis

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/KaramelBytes/attrition-cli/internal/dataset"
)

// DimensionKind distinguishes value-set filters from numeric range filters.
type DimensionKind string

const (
	Categorical DimensionKind = "categorical"
	RangeKind   DimensionKind = "range"
)

// dimensionSpecs is the fixed preference order of filter dimensions.
var dimensionSpecs = []struct {
	name string
	kind DimensionKind
}{
	{ColDepartment, Categorical},
	{ColJobRole, Categorical},
	{ColAge, RangeKind},
	{ColGender, Categorical},
}

// DimensionNames lists the recognised filter keys in preference order.
func DimensionNames() []string {
	out := make([]string, len(dimensionSpecs))
	for i, s := range dimensionSpecs {
		out[i] = s.name
	}
	return out
}

// Range is a closed numeric interval. It encodes as a two-element JSON array.
type Range struct {
	Lo float64
	Hi float64
}

// Contains reports lo <= x <= hi.
func (r Range) Contains(x float64) bool { return r.Lo <= x && x <= r.Hi }

func (r Range) String() string {
	return fmt.Sprintf("[%s, %s]", dataset.FormatNumber(r.Lo), dataset.FormatNumber(r.Hi))
}

func (r Range) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{r.Lo, r.Hi})
}

func (r *Range) UnmarshalJSON(b []byte) error {
	var pair []float64
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("range must be a [lo, hi] array: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("range must have exactly two elements, got %d", len(pair))
	}
	r.Lo, r.Hi = pair[0], pair[1]
	return nil
}

// Dimension is one user-adjustable filter axis derived from a column.
type Dimension struct {
	Name string        `json:"name"`
	Kind DimensionKind `json:"kind"`
	// Values holds the distinct categorical values in first-observed order.
	Values []string `json:"values,omitempty"`
	// Bounds holds the observed min/max of a range dimension.
	Bounds *Range `json:"bounds,omitempty"`
	// Integer is set when every observed range value is integral.
	Integer bool `json:"integer,omitempty"`
}

// Contains reports whether v is part of the categorical domain.
func (d Dimension) Contains(v string) bool {
	for _, x := range d.Values {
		if x == v {
			return true
		}
	}
	return false
}

// DeriveDimensions returns the filter dimensions the dataset supports, in the
// order Department, JobRole, Age, Gender. A dimension needs its column and at
// least one usable value.
func DeriveDimensions(d *dataset.Dataset) []Dimension {
	var out []Dimension
	for _, spec := range dimensionSpecs {
		vals, ok := d.Column(spec.name)
		if !ok {
			continue
		}
		switch spec.kind {
		case Categorical:
			groups := groupBy(vals)
			if len(groups) == 0 {
				continue
			}
			dim := Dimension{Name: spec.name, Kind: Categorical, Values: make([]string, len(groups))}
			for i, g := range groups {
				dim.Values[i] = g.key
			}
			out = append(out, dim)
		case RangeKind:
			xs := numbers(vals)
			lo, hi, ok := bounds(xs)
			if !ok {
				continue
			}
			integer := true
			for _, x := range xs {
				if x != math.Trunc(x) {
					integer = false
					break
				}
			}
			out = append(out, Dimension{Name: spec.name, Kind: RangeKind, Bounds: &Range{Lo: lo, Hi: hi}, Integer: integer})
		}
	}
	return out
}

// FindDimension looks a dimension up by name.
func FindDimension(dims []Dimension, name string) (Dimension, bool) {
	for _, d := range dims {
		if d.Name == name {
			return d, true
		}
	}
	return Dimension{}, false
}

// IdentitySelection selects every value and the full range of each dimension.
func IdentitySelection(dims []Dimension) Selection {
	var s Selection
	for _, d := range dims {
		switch d.Kind {
		case Categorical:
			s.SetValues(d.Name, d.Values...)
		case RangeKind:
			s.SetRange(d.Name, d.Bounds.Lo, d.Bounds.Hi)
		}
	}
	return s
}
