package analysis

import (
	"github.com/KaramelBytes/attrition-cli/internal/dataset"
)

// Options tunes report assembly.
type Options struct {
	PreviewRows   int
	HistogramBins int
}

// DefaultOptions returns a 20-row preview and a 20-bin age histogram.
func DefaultOptions() Options {
	return Options{PreviewRows: 20, HistogramBins: 20}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.PreviewRows <= 0 {
		o.PreviewRows = def.PreviewRows
	}
	if o.HistogramBins <= 0 {
		o.HistogramBins = def.HistogramBins
	}
	return o
}

// NoteEmptyView is attached to reports whose filtered view has no rows.
const NoteEmptyView = "no rows match the current filters"

// Report is everything rendered for one (dataset, selection) pair.
type Report struct {
	Name       string            `json:"name"`
	TotalRows  int               `json:"total_rows"`
	Rows       int               `json:"rows"`
	Schema     []dataset.Profile `json:"schema"`
	Features   []string          `json:"features"`
	Dimensions []Dimension       `json:"dimensions"`
	Selection  Selection         `json:"selection"`
	KPIs       KPISet            `json:"kpis"`
	Aggregates []Aggregate       `json:"aggregates"`
	Preview    *Preview          `json:"preview,omitempty"`
	Notes      []string          `json:"notes,omitempty"`
}

// Summarize detects capabilities, derives dimensions, filters source by sel and
// computes KPIs, aggregates and the preview over the resulting view. The source
// dataset is never modified.
func Summarize(name string, source *dataset.Dataset, sel Selection, opt Options) *Report {
	opt = opt.withDefaults()
	features := DetectFeatures(source)
	view := ApplyFilter(source, sel)

	r := &Report{
		Name:       name,
		TotalRows:  source.Rows(),
		Rows:       view.Rows(),
		Schema:     source.Profiles(),
		Features:   features.Columns(),
		Dimensions: DeriveDimensions(source),
		Selection:  sel.Clone(),
		KPIs:       ComputeKPIs(view, features),
		Aggregates: ComputeAggregates(view, features, opt),
		Preview:    BuildPreview(view, opt.PreviewRows),
	}
	if r.Dimensions == nil {
		r.Dimensions = []Dimension{}
	}
	if r.Features == nil {
		r.Features = []string{}
	}
	if view.Rows() == 0 {
		r.Notes = append(r.Notes, NoteEmptyView)
	}
	if !features.Has(HasAttrition) {
		r.Notes = append(r.Notes, "Attrition column not found; attrition metrics are omitted")
	}
	return r
}

// Empty reports whether the filtered view has no rows.
func (r *Report) Empty() bool { return r.Rows == 0 }

// Aggregate returns the aggregate with the given id.
func (r *Report) Aggregate(id string) (Aggregate, bool) {
	for _, a := range r.Aggregates {
		if a.ID == id {
			return a, true
		}
	}
	return Aggregate{}, false
}
