package analysis

import (
	"github.com/KaramelBytes/attrition-cli/internal/dataset"
	"github.com/montanaflynn/stats"
)

// numbers collects the numeric cells of vals, skipping missing and text cells.
func numbers(vals []dataset.Value) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if f, ok := v.Float(); ok {
			out = append(out, f)
		}
	}
	return out
}

// mean returns the arithmetic mean, or false for empty input.
func mean(xs []float64) (float64, bool) {
	m, err := stats.Mean(xs)
	if err != nil {
		return 0, false
	}
	return m, true
}

// bounds returns min and max, or false for empty input.
func bounds(xs []float64) (lo, hi float64, ok bool) {
	lo, err := stats.Min(xs)
	if err != nil {
		return 0, 0, false
	}
	hi, err = stats.Max(xs)
	if err != nil {
		return 0, 0, false
	}
	return lo, hi, true
}

// yesRate is the share of vals equal to AttritionYes. Missing cells count as "not
// Yes", matching a boolean mean over the whole group.
func yesRate(vals []dataset.Value) (float64, bool) {
	if len(vals) == 0 {
		return 0, false
	}
	flags := make([]float64, len(vals))
	for i, v := range vals {
		if v.Equal(AttritionYes) {
			flags[i] = 1
		}
	}
	return mean(flags)
}

// group is one categorical key with the row indices that carry it.
type group struct {
	key  string
	rows []int
}

// groupBy buckets row indices by categorical value in first-observed order.
// Rows with a missing key are not grouped.
func groupBy(keys []dataset.Value) []group {
	index := make(map[string]int)
	var out []group
	for i, v := range keys {
		if v.IsMissing() {
			continue
		}
		k := v.String()
		gi, ok := index[k]
		if !ok {
			gi = len(out)
			index[k] = gi
			out = append(out, group{key: k})
		}
		out[gi].rows = append(out[gi].rows, i)
	}
	return out
}

func pick(vals []dataset.Value, rows []int) []dataset.Value {
	out := make([]dataset.Value, len(rows))
	for i, r := range rows {
		out[i] = vals[r]
	}
	return out
}
