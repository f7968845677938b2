package model

import "time"

// RiskLevel is the closed vocabulary attached to an analyzed report.
// Values are stored lowercase; the analyzer's risk normalization maps
// model synonyms onto these four tokens.
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelCritical RiskLevel = "critical"
)

// Topic classifies a chat exchange for later filtering.
type Topic string

const (
	TopicDiabetes      Topic = "diabetes"
	TopicBloodPressure Topic = "blood-pressure"
	TopicHeart         Topic = "heart"
	TopicWeight        Topic = "weight"
	TopicMedication    Topic = "medication"
	TopicSymptoms      Topic = "symptoms"
	TopicNutrition     Topic = "nutrition"
	TopicSleep         Topic = "sleep"
	TopicMentalHealth  Topic = "mental-health"
	TopicGeneral       Topic = "general"
)

// HealthProfile is one record per user, keyed by the opaque identity the
// auth provider assigns (AuthID). BMI is always recomputed from height and
// weight by the service layer; it is never taken from user input.
type HealthProfile struct {
	ID                     string    `json:"id"`
	AuthID                 string    `json:"auth_id"`
	FullName               *string   `json:"full_name,omitempty"`
	Age                    *int      `json:"age,omitempty"`
	Gender                 *string   `json:"gender,omitempty"`
	BloodGroup             *string   `json:"blood_group,omitempty"`
	HeightCm               *float64  `json:"height_cm,omitempty"`
	WeightKg               *float64  `json:"weight_kg,omitempty"`
	BMI                    *float64  `json:"bmi,omitempty"`
	ChronicDiseases        *string   `json:"chronic_diseases,omitempty"`
	Allergies              *string   `json:"allergies,omitempty"`
	CurrentMedications     *string   `json:"current_medications,omitempty"`
	PastSurgeries          *string   `json:"past_surgeries,omitempty"`
	FamilyHistory          *string   `json:"family_history,omitempty"`
	BloodPressureSystolic  *int      `json:"blood_pressure_systolic,omitempty"`
	BloodPressureDiastolic *int      `json:"blood_pressure_diastolic,omitempty"`
	HeartRate              *int      `json:"heart_rate,omitempty"`
	BloodSugar             *float64  `json:"blood_sugar,omitempty"`
	Cholesterol            *float64  `json:"cholesterol,omitempty"`
	OxygenLevel            *float64  `json:"oxygen_level,omitempty"`
	PrimaryGoal            *string   `json:"primary_goal,omitempty"`
	TargetWeight           *float64  `json:"target_weight,omitempty"`
	ActivityLevel          *string   `json:"activity_level,omitempty"`
	DietaryPreferences     *string   `json:"dietary_preferences,omitempty"`
	SleepHours             *float64  `json:"sleep_hours,omitempty"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// AIAnalysis is the strict record shape the normalizer produces from the
// model's loose JSON output. The JSON tags match the wire contract the
// analysis prompt asks the model for.
type AIAnalysis struct {
	SummaryEnglish  string    `json:"ai_summary_english"`
	SummaryUrdu     string    `json:"ai_summary_urdu"`
	AbnormalValues  []string  `json:"ai_abnormal_values"`
	DoctorQuestions []string  `json:"ai_doctor_questions"`
	FoodToAvoid     []string  `json:"ai_food_to_avoid"`
	BetterFoods     []string  `json:"ai_better_foods"`
	HomeRemedies    []string  `json:"ai_home_remedies"`
	RiskLevel       RiskLevel `json:"ai_risk_level"`
}

// MedicalReport is one record per uploaded file. Analyzed is true exactly
// when Analysis is fully populated; the repository enforces the one-shot
// unanalyzed-to-analyzed transition with a conditional update.
type MedicalReport struct {
	ID         string      `json:"id"`
	UserID     string      `json:"user_id"`
	FileURL    string      `json:"file_url"`
	FileName   string      `json:"file_name"`
	FileType   *string     `json:"file_type,omitempty"`
	ReportType *string     `json:"report_type,omitempty"`
	Notes      *string     `json:"notes,omitempty"`
	Analyzed   bool        `json:"ai_analyzed"`
	Analysis   *AIAnalysis `json:"analysis,omitempty"`
	AnalyzedAt *time.Time  `json:"ai_analyzed_at,omitempty"`
	UploadedAt time.Time   `json:"uploaded_at"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// ChatMessage stores one user/assistant exchange. Both sides are persisted
// together; there is no half-written exchange.
type ChatMessage struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	UserMessage string    `json:"user_message"`
	AIResponse  string    `json:"ai_response"`
	Topic       Topic     `json:"topic"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReportStats summarizes a user's reports for the dashboard.
type ReportStats struct {
	Total     int `json:"total"`
	Analyzed  int `json:"analyzed"`
	Pending   int `json:"pending"`
	HighRisk  int `json:"high_risk"`
	ThisMonth int `json:"this_month"`
}
