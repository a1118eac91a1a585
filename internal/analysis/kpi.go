package analysis

import (
	"fmt"

	"github.com/KaramelBytes/attrition-cli/internal/dataset"
)

// KPI keys in display order.
const (
	KPITotalEmployees       = "TotalEmployees"
	KPIAttritionCount       = "AttritionCount"
	KPIAttritionRate        = "AttritionRate"
	KPIAvgJobSatisfaction   = "AvgJobSatisfaction"
	KPIAvgPerformanceRating = "AvgPerformanceRating"
)

// KPI is one headline metric. Text is the display form of Value.
type KPI struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Text  string  `json:"text"`
}

// KPISet is an ordered list of KPIs. Undefined metrics are simply not present.
type KPISet []KPI

// Get returns the KPI with the given key.
func (s KPISet) Get(key string) (KPI, bool) {
	for _, k := range s {
		if k.Key == key {
			return k, true
		}
	}
	return KPI{}, false
}

// Map returns key -> formatted text.
func (s KPISet) Map() map[string]string {
	out := make(map[string]string, len(s))
	for _, k := range s {
		out[k.Key] = k.Text
	}
	return out
}

// ComputeKPIs derives the headline metrics available for d.
func ComputeKPIs(d *dataset.Dataset, f Features) KPISet {
	set := KPISet{}

	if f.Has(HasEmployeeNumber) {
		ids, _ := d.Column(ColEmployeeNumber)
		n := float64(len(groupBy(ids)))
		set = append(set, KPI{Key: KPITotalEmployees, Label: "Total Employees", Value: n, Text: dataset.FormatNumber(n)})
	}

	if f.Has(HasAttrition) {
		vals, _ := d.Column(ColAttrition)
		count := 0
		for _, v := range vals {
			if v.Equal(AttritionYes) {
				count++
			}
		}
		set = append(set, KPI{Key: KPIAttritionCount, Label: "Attrition Count", Value: float64(count), Text: fmt.Sprintf("%d", count)})
		if d.Rows() > 0 {
			rate := float64(count) / float64(d.Rows()) * 100
			set = append(set, KPI{Key: KPIAttritionRate, Label: "Attrition Rate", Value: rate, Text: fmt.Sprintf("%.1f%%", rate)})
		}
	}

	set = appendAverage(set, d, f, HasJobSatisfaction, ColJobSatisfaction, KPIAvgJobSatisfaction, "Avg Job Satisfaction")
	set = appendAverage(set, d, f, HasPerformanceRating, ColPerformanceRating, KPIAvgPerformanceRating, "Avg Performance Rating")
	return set
}

func appendAverage(set KPISet, d *dataset.Dataset, f Features, flag Features, col, key, label string) KPISet {
	if !f.Has(flag) {
		return set
	}
	vals, _ := d.Column(col)
	m, ok := mean(numbers(vals))
	if !ok {
		return set
	}
	return append(set, KPI{Key: key, Label: label, Value: m, Text: fmt.Sprintf("%.2f", m)})
}
