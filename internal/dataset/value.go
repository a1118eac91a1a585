package dataset

import (
	"math"
	"strconv"
	"strings"
)

// Kind classifies a single cell.
type Kind int

const (
	KindMissing Kind = iota
	KindNumber
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "numeric"
	case KindText:
		return "text"
	default:
		return "missing"
	}
}

// Value is one typed cell of a Dataset.
type Value struct {
	Kind Kind
	Num  float64
	Text string
}

// Missing returns the missing value.
func Missing() Value { return Value{} }

// Number wraps a numeric cell.
func Number(f float64) Value {
	if math.IsNaN(f) {
		return Missing()
	}
	return Value{Kind: KindNumber, Num: f}
}

// Text wraps a text cell. Empty text is missing.
func Text(s string) Value {
	if s == "" {
		return Missing()
	}
	return Value{Kind: KindText, Text: s}
}

func (v Value) IsMissing() bool { return v.Kind == KindMissing }

// Float returns the numeric payload and whether the cell is numeric.
func (v Value) Float() (float64, bool) {
	if v.Kind != KindNumber {
		return 0, false
	}
	return v.Num, true
}

// String renders the cell the way it is shown and matched by categorical filters.
// Integral numbers render without a fractional part.
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return FormatNumber(v.Num)
	case KindText:
		return v.Text
	default:
		return ""
	}
}

// Equal reports whether the cell is the literal text s.
func (v Value) Equal(s string) bool {
	return v.Kind == KindText && v.Text == s
}

// FormatNumber renders integral values as integers and everything else in the
// shortest round-tripping form.
func FormatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

var missingTokens = map[string]struct{}{
	"nan":  {},
	"na":   {},
	"n/a":  {},
	"null": {},
	"none": {},
	"#n/a": {},
}

// ParseCell types a raw cell: blank and NA markers are missing, anything that
// parses as a float is numeric, the rest is text.
func ParseCell(raw string) Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Missing()
	}
	if _, ok := missingTokens[strings.ToLower(s)]; ok {
		return Missing()
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) {
		return Number(f)
	}
	return Text(s)
}
