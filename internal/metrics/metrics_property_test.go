package metrics

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestProperty_ComputeBMIFormula(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("BMI equals weight/(height/100)^2 rounded to one decimal for positive inputs", prop.ForAll(
		func(heightCm, weightKg float64) bool {
			got, ok := ComputeBMI(heightCm, weightKg)
			if !ok {
				return false
			}
			heightM := heightCm / 100
			want := math.Round(weightKg/(heightM*heightM)*10) / 10
			return got == want
		},
		gen.Float64Range(50, 250),
		gen.Float64Range(2, 400),
	))

	properties.Property("non-positive height or weight yields absent BMI", prop.ForAll(
		func(heightCm, weightKg float64) bool {
			_, ok := ComputeBMI(heightCm, weightKg)
			if heightCm <= 0 || weightKg <= 0 {
				return !ok
			}
			return ok
		},
		gen.Float64Range(-250, 250),
		gen.Float64Range(-400, 400),
	))

	properties.TestingRun(t)
}

func TestProperty_CategoriesAreTotal(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	bmiCategories := map[string]bool{
		BMIUnderweight: true, BMINormal: true, BMIOverweight: true, BMIObese: true,
	}
	properties.Property("every BMI value maps to one of the four categories", prop.ForAll(
		func(bmi float64) bool {
			return bmiCategories[BMICategory(bmi)]
		},
		gen.Float64Range(0, 100),
	))

	bpCategories := map[string]bool{
		BPNormal: true, BPElevated: true, BPHighStage1: true, BPHighStage2: true,
	}
	properties.Property("every blood pressure reading maps to one of the four stages", prop.ForAll(
		func(systolic, diastolic int) bool {
			return bpCategories[BloodPressureCategory(systolic, diastolic)]
		},
		gen.IntRange(40, 300),
		gen.IntRange(20, 200),
	))

	properties.TestingRun(t)
}

func TestProperty_BloodPressureLiteralRule(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	// Pins the inherited staging rule exactly, including the OR in the
	// Stage 1 test.
	properties.Property("staging matches the literal rule set", prop.ForAll(
		func(systolic, diastolic int) bool {
			got := BloodPressureCategory(systolic, diastolic)
			switch {
			case systolic < 120 && diastolic < 80:
				return got == BPNormal
			case systolic < 130 && diastolic < 80:
				return got == BPElevated
			case systolic < 140 || diastolic < 90:
				return got == BPHighStage1
			default:
				return got == BPHighStage2
			}
		},
		gen.IntRange(40, 300),
		gen.IntRange(20, 200),
	))

	properties.Property("Stage 2 requires both systolic >= 140 and diastolic >= 90", prop.ForAll(
		func(systolic, diastolic int) bool {
			if BloodPressureCategory(systolic, diastolic) != BPHighStage2 {
				return true
			}
			return systolic >= 140 && diastolic >= 90
		},
		gen.IntRange(40, 300),
		gen.IntRange(20, 200),
	))

	properties.TestingRun(t)
}
