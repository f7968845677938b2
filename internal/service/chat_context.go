package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/healthmate-ai/backend/internal/metrics"
	"github.com/healthmate-ai/backend/pkg/model"
)

const chatPromptHeader = `You are HealthMate AI, a compassionate and knowledgeable health assistant. You provide health advice in a bilingual format (English + Roman Urdu) to make healthcare accessible to everyone.

🏥 YOUR ROLE:
- Provide accurate, evidence-based health information
- Answer questions about medical reports, symptoms, and general health
- Give advice in both English and Roman Urdu (Roman Urdu mein jawab dein)
- Be empathetic and supportive
- Always include medical disclaimers

⚠️ IMPORTANT RULES:
1. Always add this disclaimer: "⚠️ Disclaimer: Yeh AI advice hai, medical treatment nahi. Apne doctor se zaroor consult karein."
2. Never diagnose serious conditions - always recommend seeing a doctor
3. For emergencies, immediately advise calling emergency services
4. Be culturally sensitive and use simple language
5. Provide actionable, practical advice

📋 RESPONSE FORMAT:
- Use emojis to make responses friendly
- Structure answers clearly with bullet points
- Include both English and Roman Urdu explanations
- Keep responses concise (under 500 words)

`

// BuildSystemPrompt assembles the chat system prompt from the user's
// health profile. The output is deterministic: the same profile always
// produces the same prompt, lines appear in a fixed order, and absent
// fields produce no line at all.
func BuildSystemPrompt(profile *model.HealthProfile) string {
	var b strings.Builder
	b.WriteString(chatPromptHeader)

	if profile == nil {
		b.WriteString("\n⚠️ Note: User health profile not available. Ask them to complete their profile for personalized advice.\n")
		return b.String()
	}

	b.WriteString("\n👤 USER'S HEALTH PROFILE:\n")

	if profile.FullName != nil && *profile.FullName != "" {
		fmt.Fprintf(&b, "Name: %s\n", *profile.FullName)
	}
	if profile.Age != nil {
		fmt.Fprintf(&b, "Age: %d years\n", *profile.Age)
	}
	if profile.Gender != nil && *profile.Gender != "" {
		fmt.Fprintf(&b, "Gender: %s\n", *profile.Gender)
	}
	if profile.BloodGroup != nil && *profile.BloodGroup != "" {
		fmt.Fprintf(&b, "Blood Group: %s\n", *profile.BloodGroup)
	}
	if profile.BMI != nil {
		fmt.Fprintf(&b, "BMI: %s (%s)\n", formatNumber(*profile.BMI), metrics.BMICategory(*profile.BMI))
	}
	if profile.WeightKg != nil {
		fmt.Fprintf(&b, "Weight: %s kg\n", formatNumber(*profile.WeightKg))
	}
	if profile.HeightCm != nil {
		fmt.Fprintf(&b, "Height: %s cm\n", formatNumber(*profile.HeightCm))
	}

	if profile.BloodPressureSystolic != nil && profile.BloodPressureDiastolic != nil {
		fmt.Fprintf(&b, "Blood Pressure: %d/%d mmHg\n", *profile.BloodPressureSystolic, *profile.BloodPressureDiastolic)
	}
	if profile.HeartRate != nil {
		fmt.Fprintf(&b, "Heart Rate: %d BPM\n", *profile.HeartRate)
	}
	if profile.BloodSugar != nil {
		fmt.Fprintf(&b, "Blood Sugar: %s mg/dL\n", formatNumber(*profile.BloodSugar))
	}
	if profile.Cholesterol != nil {
		fmt.Fprintf(&b, "Cholesterol: %s mg/dL\n", formatNumber(*profile.Cholesterol))
	}
	if profile.OxygenLevel != nil {
		fmt.Fprintf(&b, "Oxygen Level: %s%%\n", formatNumber(*profile.OxygenLevel))
	}

	if profile.ChronicDiseases != nil && *profile.ChronicDiseases != "" {
		fmt.Fprintf(&b, "\n🏥 Chronic Diseases: %s\n", *profile.ChronicDiseases)
	}
	if profile.Allergies != nil && *profile.Allergies != "" {
		fmt.Fprintf(&b, "⚠️ Allergies: %s\n", *profile.Allergies)
	}
	if profile.CurrentMedications != nil && *profile.CurrentMedications != "" {
		fmt.Fprintf(&b, "💊 Current Medications: %s\n", *profile.CurrentMedications)
	}
	if profile.PastSurgeries != nil && *profile.PastSurgeries != "" {
		fmt.Fprintf(&b, "🔪 Past Surgeries: %s\n", *profile.PastSurgeries)
	}
	if profile.FamilyHistory != nil && *profile.FamilyHistory != "" {
		fmt.Fprintf(&b, "👨‍👩‍👧‍👦 Family History: %s\n", *profile.FamilyHistory)
	}

	if profile.PrimaryGoal != nil && *profile.PrimaryGoal != "" {
		fmt.Fprintf(&b, "\n🎯 Health Goal: %s\n", *profile.PrimaryGoal)
	}
	if profile.TargetWeight != nil {
		fmt.Fprintf(&b, "Target Weight: %s kg\n", formatNumber(*profile.TargetWeight))
	}
	if profile.ActivityLevel != nil && *profile.ActivityLevel != "" {
		fmt.Fprintf(&b, "Activity Level: %s\n", *profile.ActivityLevel)
	}
	if profile.DietaryPreferences != nil && *profile.DietaryPreferences != "" {
		fmt.Fprintf(&b, "Dietary Preferences: %s\n", *profile.DietaryPreferences)
	}
	if profile.SleepHours != nil {
		fmt.Fprintf(&b, "Sleep Hours: %s hours\n", formatNumber(*profile.SleepHours))
	}

	b.WriteString("\nℹ️ Use this context to personalize your responses. If the user asks about their health, refer to this data.\n")

	return b.String()
}

// topicKeywords pairs each topic with its trigger words. Order matters:
// the first topic with any keyword contained in the message wins, so a
// message mentioning both sugar and sleep classifies as diabetes.
var topicKeywords = []struct {
	topic    model.Topic
	keywords []string
}{
	{model.TopicDiabetes, []string{"diabetes", "sugar", "blood sugar", "insulin", "glucose"}},
	{model.TopicBloodPressure, []string{"blood pressure", "bp", "hypertension", "high bp", "low bp"}},
	{model.TopicHeart, []string{"heart", "cardiac", "chest pain", "heart rate", "pulse"}},
	{model.TopicWeight, []string{"weight", "obesity", "diet", "exercise", "fitness"}},
	{model.TopicMedication, []string{"medicine", "medication", "pills", "dawai", "tablet"}},
	{model.TopicSymptoms, []string{"pain", "fever", "cough", "headache", "dizzy"}},
	{model.TopicNutrition, []string{"food", "diet", "nutrition", "khana", "vitamins"}},
	{model.TopicSleep, []string{"sleep", "insomnia", "neend", "rest"}},
	{model.TopicMentalHealth, []string{"stress", "anxiety", "depression", "mental", "mood"}},
}

// ExtractTopic classifies a free-text message into one of the fixed chat
// topics by case-insensitive substring matching. Messages matching no
// keyword set classify as general.
func ExtractTopic(message string) model.Topic {
	lower := strings.ToLower(message)

	for _, entry := range topicKeywords {
		for _, word := range entry.keywords {
			if strings.Contains(lower, word) {
				return entry.topic
			}
		}
	}

	return model.TopicGeneral
}

// formatNumber renders a float the way users entered it: whole numbers
// without a decimal point, everything else trimmed of trailing zeros.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
