package analysis

import "github.com/KaramelBytes/attrition-cli/internal/dataset"

// Column names recognised in uploaded HR datasets.
const (
	ColEmployeeNumber    = "EmployeeNumber"
	ColAttrition         = "Attrition"
	ColJobSatisfaction   = "JobSatisfaction"
	ColPerformanceRating = "PerformanceRating"
	ColDepartment        = "Department"
	ColJobRole           = "JobRole"
	ColAge               = "Age"
	ColGender            = "Gender"
)

// AttritionYes is the attrition value counted as a departure.
const AttritionYes = "Yes"

// Features is the set of recognised columns present in a dataset. It is computed
// once per dataset and every metric is gated on the flags it needs.
type Features uint16

const (
	HasEmployeeNumber Features = 1 << iota
	HasAttrition
	HasJobSatisfaction
	HasPerformanceRating
	HasDepartment
	HasJobRole
	HasAge
	HasGender
)

var featureColumns = []struct {
	flag Features
	col  string
}{
	{HasEmployeeNumber, ColEmployeeNumber},
	{HasAttrition, ColAttrition},
	{HasJobSatisfaction, ColJobSatisfaction},
	{HasPerformanceRating, ColPerformanceRating},
	{HasDepartment, ColDepartment},
	{HasJobRole, ColJobRole},
	{HasAge, ColAge},
	{HasGender, ColGender},
}

// DetectFeatures inspects the dataset's column names.
func DetectFeatures(d *dataset.Dataset) Features {
	var f Features
	for _, fc := range featureColumns {
		if d.Has(fc.col) {
			f |= fc.flag
		}
	}
	return f
}

// Has reports whether every flag in req is set.
func (f Features) Has(req Features) bool { return f&req == req }

// Columns lists the recognised columns that are present.
func (f Features) Columns() []string {
	var out []string
	for _, fc := range featureColumns {
		if f.Has(fc.flag) {
			out = append(out, fc.col)
		}
	}
	return out
}
