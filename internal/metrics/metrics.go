// Package metrics derives read-only health categorizations from raw vitals.
// Every function is pure; invalid or missing inputs yield an absent result,
// never an error.
package metrics

import (
	"math"

	"github.com/healthmate-ai/backend/pkg/model"
)

// BMI categories.
const (
	BMIUnderweight = "Underweight"
	BMINormal      = "Normal"
	BMIOverweight  = "Overweight"
	BMIObese       = "Obese"
)

// Blood pressure categories (AHA staging as used by the profile UI).
const (
	BPNormal     = "Normal"
	BPElevated   = "Elevated"
	BPHighStage1 = "High Stage 1"
	BPHighStage2 = "High Stage 2"
)

// Fasting blood sugar categories.
const (
	SugarNormal      = "Normal"
	SugarPrediabetes = "Prediabetes"
	SugarDiabetes    = "Diabetes"
)

// Total cholesterol categories.
const (
	CholesterolDesirable  = "Desirable"
	CholesterolBorderline = "Borderline High"
	CholesterolHigh       = "High"
)

// ComputeBMI returns weight_kg / (height_cm/100)^2 rounded to one decimal
// place. The second return value is false when either input is missing,
// zero, or negative.
func ComputeBMI(heightCm, weightKg float64) (float64, bool) {
	if heightCm <= 0 || weightKg <= 0 {
		return 0, false
	}

	heightM := heightCm / 100
	bmi := weightKg / (heightM * heightM)

	return math.Round(bmi*10) / 10, true
}

// BMICategory buckets a BMI value. Boundaries are inclusive-low: exactly
// 18.5 is Normal, exactly 25 is Overweight, exactly 30 is Obese.
func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return BMIUnderweight
	case bmi < 25:
		return BMINormal
	case bmi < 30:
		return BMIOverweight
	default:
		return BMIObese
	}
}

// BloodPressureCategory stages a reading. The Stage 1 test uses OR on
// purpose: the rule is inherited verbatim from the product's source rule
// set, so a reading like 200/70 stages as High Stage 1. Do not "fix" this
// without a product decision; the tests pin the literal behavior.
func BloodPressureCategory(systolic, diastolic int) string {
	switch {
	case systolic < 120 && diastolic < 80:
		return BPNormal
	case systolic < 130 && diastolic < 80:
		return BPElevated
	case systolic < 140 || diastolic < 90:
		return BPHighStage1
	default:
		return BPHighStage2
	}
}

// BloodSugarCategory buckets a fasting glucose value in mg/dL.
func BloodSugarCategory(sugar float64) string {
	switch {
	case sugar < 100:
		return SugarNormal
	case sugar < 126:
		return SugarPrediabetes
	default:
		return SugarDiabetes
	}
}

// CholesterolCategory buckets a total cholesterol value in mg/dL.
func CholesterolCategory(cholesterol float64) string {
	switch {
	case cholesterol < 200:
		return CholesterolDesirable
	case cholesterol < 240:
		return CholesterolBorderline
	default:
		return CholesterolHigh
	}
}

// HealthMetrics holds the categorized statuses for a profile. A field is
// empty when the vitals needed to derive it are absent.
type HealthMetrics struct {
	BMIStatus         string `json:"bmi_status,omitempty"`
	BPStatus          string `json:"bp_status,omitempty"`
	SugarStatus       string `json:"sugar_status,omitempty"`
	CholesterolStatus string `json:"cholesterol_status,omitempty"`
}

// Evaluate derives every status the profile has inputs for. The profile is
// not mutated.
func Evaluate(p *model.HealthProfile) HealthMetrics {
	var m HealthMetrics
	if p == nil {
		return m
	}

	if p.BMI != nil && *p.BMI > 0 {
		m.BMIStatus = BMICategory(*p.BMI)
	}
	if p.BloodPressureSystolic != nil && p.BloodPressureDiastolic != nil {
		m.BPStatus = BloodPressureCategory(*p.BloodPressureSystolic, *p.BloodPressureDiastolic)
	}
	if p.BloodSugar != nil && *p.BloodSugar > 0 {
		m.SugarStatus = BloodSugarCategory(*p.BloodSugar)
	}
	if p.Cholesterol != nil && *p.Cholesterol > 0 {
		m.CholesterolStatus = CholesterolCategory(*p.Cholesterol)
	}

	return m
}
