package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/healthmate-ai/backend/pkg/model"
)

func TestExtractTopic(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    model.Topic
	}{
		{"blood sugar in roman urdu sentence", "Meri blood sugar control kaise karein?", model.TopicDiabetes},
		{"insulin question", "How much insulin should I take?", model.TopicDiabetes},
		{"hypertension", "Is hypertension dangerous?", model.TopicBloodPressure},
		{"bp abbreviation", "My bp was high yesterday", model.TopicBloodPressure},
		{"chest pain", "I have chest pain after walking", model.TopicHeart},
		{"weight loss", "How do I lose weight fast?", model.TopicWeight},
		{"dawai", "Kya yeh dawai khane ke baad leni hai?", model.TopicMedication},
		{"fever", "I have had fever for two days", model.TopicSymptoms},
		{"khana", "Sehat ke liye kaunsa khana accha hai?", model.TopicNutrition},
		{"sleep", "I can't sleep well", model.TopicSleep},
		{"neend", "Mujhe neend nahi aati", model.TopicSleep},
		{"anxiety", "I feel anxiety all the time", model.TopicMentalHealth},
		{"no keywords", "hello", model.TopicGeneral},
		{"empty message", "", model.TopicGeneral},
		{"case insensitive", "DIABETES runs in my family", model.TopicDiabetes},
		// "sugar" is checked before "sleep", so mixed messages classify
		// by the earlier topic
		{"earlier topic wins", "My sugar spikes disturb my sleep", model.TopicDiabetes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTopic(tt.message))
		})
	}
}

func TestBuildSystemPrompt_NoProfile(t *testing.T) {
	prompt := BuildSystemPrompt(nil)

	assert.Contains(t, prompt, "You are HealthMate AI")
	assert.Contains(t, prompt, "User health profile not available")
	assert.NotContains(t, prompt, "USER'S HEALTH PROFILE")
}

func TestBuildSystemPrompt_WithProfile(t *testing.T) {
	name := "Ayesha Khan"
	age := 34
	gender := "female"
	bmi := 27.3
	systolic := 135
	diastolic := 88
	chronic := "Type 2 diabetes"
	goal := "Lose 5 kg"

	profile := &model.HealthProfile{
		FullName:               &name,
		Age:                    &age,
		Gender:                 &gender,
		BMI:                    &bmi,
		BloodPressureSystolic:  &systolic,
		BloodPressureDiastolic: &diastolic,
		ChronicDiseases:        &chronic,
		PrimaryGoal:            &goal,
	}

	prompt := BuildSystemPrompt(profile)

	assert.Contains(t, prompt, "👤 USER'S HEALTH PROFILE:")
	assert.Contains(t, prompt, "Name: Ayesha Khan")
	assert.Contains(t, prompt, "Age: 34 years")
	assert.Contains(t, prompt, "BMI: 27.3 (Overweight)")
	assert.Contains(t, prompt, "Blood Pressure: 135/88 mmHg")
	assert.Contains(t, prompt, "🏥 Chronic Diseases: Type 2 diabetes")
	assert.Contains(t, prompt, "🎯 Health Goal: Lose 5 kg")
	assert.Contains(t, prompt, "Use this context to personalize your responses")

	// Absent fields produce no line
	assert.NotContains(t, prompt, "Heart Rate:")
	assert.NotContains(t, prompt, "Allergies:")
	assert.NotContains(t, prompt, "Sleep Hours:")
	assert.NotContains(t, prompt, "profile not available")
}

func TestBuildSystemPrompt_PartialBloodPressureOmitted(t *testing.T) {
	systolic := 120
	profile := &model.HealthProfile{
		BloodPressureSystolic: &systolic,
	}

	prompt := BuildSystemPrompt(profile)

	// Both readings are needed for the blood pressure line
	assert.NotContains(t, prompt, "Blood Pressure:")
}

func TestBuildSystemPrompt_Deterministic(t *testing.T) {
	name := "Bilal"
	weight := 80.0
	height := 175.0
	profile := &model.HealthProfile{
		FullName: &name,
		WeightKg: &weight,
		HeightCm: &height,
	}

	first := BuildSystemPrompt(profile)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, BuildSystemPrompt(profile))
	}

	// Whole numbers render without decimal noise
	assert.Contains(t, first, "Weight: 80 kg")
	assert.Contains(t, first, "Height: 175 cm")

	// Profile lines come after the fixed header
	headerEnd := strings.Index(first, "👤 USER'S HEALTH PROFILE:")
	assert.Greater(t, headerEnd, 0)
	assert.Contains(t, first[:headerEnd], "RESPONSE FORMAT")
}
