// Package handler exposes the HTTP API.
package handler

import "github.com/healthmate-ai/backend/pkg/model"

// ErrorResponse is the JSON error envelope every endpoint uses
type ErrorResponse struct {
	Code    string  `json:"code"`
	Message string  `json:"message"`
	Details *string `json:"details,omitempty"`
}

// ProfileRequest carries the editable profile fields. BMI is not
// accepted; the server derives it.
type ProfileRequest struct {
	FullName               *string  `json:"full_name"`
	Age                    *int     `json:"age" binding:"omitempty,gte=0,lte=150"`
	Gender                 *string  `json:"gender"`
	BloodGroup             *string  `json:"blood_group"`
	HeightCm               *float64 `json:"height_cm" binding:"omitempty,gte=0"`
	WeightKg               *float64 `json:"weight_kg" binding:"omitempty,gte=0"`
	ChronicDiseases        *string  `json:"chronic_diseases"`
	Allergies              *string  `json:"allergies"`
	CurrentMedications     *string  `json:"current_medications"`
	PastSurgeries          *string  `json:"past_surgeries"`
	FamilyHistory          *string  `json:"family_history"`
	BloodPressureSystolic  *int     `json:"blood_pressure_systolic" binding:"omitempty,gte=0"`
	BloodPressureDiastolic *int     `json:"blood_pressure_diastolic" binding:"omitempty,gte=0"`
	HeartRate              *int     `json:"heart_rate" binding:"omitempty,gte=0"`
	BloodSugar             *float64 `json:"blood_sugar" binding:"omitempty,gte=0"`
	Cholesterol            *float64 `json:"cholesterol" binding:"omitempty,gte=0"`
	OxygenLevel            *float64 `json:"oxygen_level" binding:"omitempty,gte=0,lte=100"`
	PrimaryGoal            *string  `json:"primary_goal"`
	TargetWeight           *float64 `json:"target_weight" binding:"omitempty,gte=0"`
	ActivityLevel          *string  `json:"activity_level"`
	DietaryPreferences     *string  `json:"dietary_preferences"`
	SleepHours             *float64 `json:"sleep_hours" binding:"omitempty,gte=0,lte=24"`
}

// ChatRequest is one user message to the assistant
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// InsightsResponse wraps the generated health insight text
type InsightsResponse struct {
	Insight string `json:"insight"`
}

// ClearChatResponse confirms a history wipe
type ClearChatResponse struct {
	Cleared bool `json:"cleared"`
}

// toProfile converts the request into the domain model for the given user
func (r *ProfileRequest) toProfile(authID string) *model.HealthProfile {
	return &model.HealthProfile{
		AuthID:                 authID,
		FullName:               r.FullName,
		Age:                    r.Age,
		Gender:                 r.Gender,
		BloodGroup:             r.BloodGroup,
		HeightCm:               r.HeightCm,
		WeightKg:               r.WeightKg,
		ChronicDiseases:        r.ChronicDiseases,
		Allergies:              r.Allergies,
		CurrentMedications:     r.CurrentMedications,
		PastSurgeries:          r.PastSurgeries,
		FamilyHistory:          r.FamilyHistory,
		BloodPressureSystolic:  r.BloodPressureSystolic,
		BloodPressureDiastolic: r.BloodPressureDiastolic,
		HeartRate:              r.HeartRate,
		BloodSugar:             r.BloodSugar,
		Cholesterol:            r.Cholesterol,
		OxygenLevel:            r.OxygenLevel,
		PrimaryGoal:            r.PrimaryGoal,
		TargetWeight:           r.TargetWeight,
		ActivityLevel:          r.ActivityLevel,
		DietaryPreferences:     r.DietaryPreferences,
		SleepHours:             r.SleepHours,
	}
}
