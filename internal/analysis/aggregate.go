package analysis

import (
	"encoding/json"
	"math"

	"github.com/KaramelBytes/attrition-cli/internal/dataset"
)

// ChartKind tags how an aggregate is meant to be drawn.
type ChartKind string

const (
	ChartBar       ChartKind = "bar"
	ChartHistogram ChartKind = "histogram"
	ChartScatter   ChartKind = "scatter"
)

// Aggregate identifiers.
const (
	AggAttritionByDepartment     = "attrition_by_department"
	AggSatisfactionByRole        = "satisfaction_by_role"
	AggAgeDistribution           = "age_distribution"
	AggPerformanceVsSatisfaction = "performance_vs_satisfaction"
)

// Bar is one category of a bar chart.
type Bar struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// Bin is one histogram bucket. Buckets are [Lo, Hi) except the last, which is closed.
type Bin struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Count int     `json:"count"`
}

// Point is one scatter observation colored by department.
type Point struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Color    string  `json:"color"`
	JobRole  string  `json:"job_role,omitempty"`
	Employee string  `json:"employee,omitempty"`
}

// Aggregate is a chart-ready table. Exactly one of Bars, Bins or Points is used,
// according to Kind.
type Aggregate struct {
	ID     string    `json:"id"`
	Kind   ChartKind `json:"kind"`
	Title  string    `json:"title"`
	XLabel string    `json:"x_label"`
	YLabel string    `json:"y_label"`
	Bars   []Bar     `json:"bars,omitempty"`
	Bins   []Bin     `json:"bins,omitempty"`
	Points []Point   `json:"points,omitempty"`
}

// MarshalJSON always writes the entries of the aggregate's own kind, as [] when
// the view is empty, and leaves out the other two.
func (a Aggregate) MarshalJSON() ([]byte, error) {
	type plain Aggregate
	out := struct {
		plain
		Bars   *[]Bar   `json:"bars,omitempty"`
		Bins   *[]Bin   `json:"bins,omitempty"`
		Points *[]Point `json:"points,omitempty"`
	}{plain: plain(a)}
	switch a.Kind {
	case ChartBar:
		bars := a.Bars
		if bars == nil {
			bars = []Bar{}
		}
		out.Bars = &bars
	case ChartHistogram:
		bins := a.Bins
		if bins == nil {
			bins = []Bin{}
		}
		out.Bins = &bins
	case ChartScatter:
		points := a.Points
		if points == nil {
			points = []Point{}
		}
		out.Points = &points
	}
	return json.Marshal(out)
}

// Len returns the number of entries regardless of kind.
func (a Aggregate) Len() int { return len(a.Bars) + len(a.Bins) + len(a.Points) }

// ComputeAggregates builds every aggregate whose columns are present. Each one is
// gated independently; on an empty dataset the gated aggregates exist with no
// entries.
func ComputeAggregates(d *dataset.Dataset, f Features, opt Options) []Aggregate {
	opt = opt.withDefaults()
	out := []Aggregate{}
	if f.Has(HasDepartment | HasAttrition) {
		out = append(out, attritionByDepartment(d))
	}
	if f.Has(HasJobRole | HasJobSatisfaction) {
		out = append(out, satisfactionByRole(d))
	}
	if f.Has(HasAge) {
		out = append(out, ageDistribution(d, opt.HistogramBins))
	}
	if f.Has(HasPerformanceRating | HasJobSatisfaction | HasDepartment) {
		out = append(out, performanceVsSatisfaction(d, f))
	}
	return out
}

func attritionByDepartment(d *dataset.Dataset) Aggregate {
	agg := Aggregate{
		ID: AggAttritionByDepartment, Kind: ChartBar,
		Title: "Attrition Rate by Department", XLabel: ColDepartment, YLabel: "Attrition Rate",
		Bars: []Bar{},
	}
	depts, _ := d.Column(ColDepartment)
	attr, _ := d.Column(ColAttrition)
	for _, g := range groupBy(depts) {
		rate, ok := yesRate(pick(attr, g.rows))
		if !ok {
			continue
		}
		agg.Bars = append(agg.Bars, Bar{Key: g.key, Value: rate, Count: len(g.rows)})
	}
	return agg
}

func satisfactionByRole(d *dataset.Dataset) Aggregate {
	agg := Aggregate{
		ID: AggSatisfactionByRole, Kind: ChartBar,
		Title: "Average Job Satisfaction by Job Role", XLabel: ColJobRole, YLabel: "Avg Job Satisfaction",
		Bars: []Bar{},
	}
	roles, _ := d.Column(ColJobRole)
	sat, _ := d.Column(ColJobSatisfaction)
	for _, g := range groupBy(roles) {
		xs := numbers(pick(sat, g.rows))
		m, ok := mean(xs)
		if !ok {
			continue
		}
		agg.Bars = append(agg.Bars, Bar{Key: g.key, Value: m, Count: len(xs)})
	}
	return agg
}

func ageDistribution(d *dataset.Dataset, bins int) Aggregate {
	agg := Aggregate{
		ID: AggAgeDistribution, Kind: ChartHistogram,
		Title: "Age Distribution", XLabel: ColAge, YLabel: "Count",
		Bins: []Bin{},
	}
	ages, _ := d.Column(ColAge)
	agg.Bins = histogram(numbers(ages), bins)
	return agg
}

// histogram splits [min, max] into n equal-width bins. A degenerate range
// collapses to a single bin holding every value.
func histogram(xs []float64, n int) []Bin {
	lo, hi, ok := bounds(xs)
	if !ok {
		return []Bin{}
	}
	if lo == hi {
		return []Bin{{Lo: lo, Hi: hi, Count: len(xs)}}
	}
	width := (hi - lo) / float64(n)
	out := make([]Bin, n)
	for i := range out {
		out[i].Lo = lo + float64(i)*width
		out[i].Hi = lo + float64(i+1)*width
	}
	out[n-1].Hi = hi
	for _, x := range xs {
		i := int(math.Floor((x - lo) / width))
		if i >= n {
			i = n - 1
		}
		if i < 0 {
			i = 0
		}
		out[i].Count++
	}
	return out
}

func performanceVsSatisfaction(d *dataset.Dataset, f Features) Aggregate {
	agg := Aggregate{
		ID: AggPerformanceVsSatisfaction, Kind: ChartScatter,
		Title: "Performance Rating vs Job Satisfaction", XLabel: ColPerformanceRating, YLabel: ColJobSatisfaction,
		Points: []Point{},
	}
	perf, _ := d.Column(ColPerformanceRating)
	sat, _ := d.Column(ColJobSatisfaction)
	dept, _ := d.Column(ColDepartment)
	var roles, ids []dataset.Value
	if f.Has(HasJobRole) {
		roles, _ = d.Column(ColJobRole)
	}
	if f.Has(HasEmployeeNumber) {
		ids, _ = d.Column(ColEmployeeNumber)
	}
	for i := 0; i < d.Rows(); i++ {
		x, okX := perf[i].Float()
		y, okY := sat[i].Float()
		if !okX || !okY {
			continue
		}
		p := Point{X: x, Y: y, Color: dept[i].String()}
		if roles != nil {
			p.JobRole = roles[i].String()
		}
		if ids != nil {
			p.Employee = ids[i].String()
		}
		agg.Points = append(agg.Points, p)
	}
	return agg
}

// previewColumns is the fixed projection of the employee sample.
var previewColumns = []string{
	ColEmployeeNumber, ColDepartment, ColJobRole,
	ColPerformanceRating, ColJobSatisfaction, ColAttrition,
}

// Preview is a small tabular sample of the view.
type Preview struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// BuildPreview projects the first n rows onto the preview columns present in d.
// It returns nil when none of those columns exist.
func BuildPreview(d *dataset.Dataset, n int) *Preview {
	var cols []string
	for _, c := range previewColumns {
		if d.Has(c) {
			cols = append(cols, c)
		}
	}
	if len(cols) == 0 {
		return nil
	}
	head := d.Head(n)
	p := &Preview{Columns: cols, Rows: make([][]string, head.Rows())}
	for i := range p.Rows {
		row := make([]string, len(cols))
		for j, c := range cols {
			row[j] = head.Value(i, c).String()
		}
		p.Rows[i] = row
	}
	return p
}
