// Package service implements the application logic for profiles, report
// analysis, and the health chat assistant.
package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"go.uber.org/zap"

	"github.com/healthmate-ai/backend/internal/ai"
	"github.com/healthmate-ai/backend/pkg/model"
)

const analysisPromptTemplate = `
You are a medical AI assistant. Analyze this medical report and provide analysis in the following JSON format:

{
  "ai_summary_english": "Detailed summary in English",
  "ai_summary_urdu": "Detailed summary in Roman Urdu",
  "ai_abnormal_values": ["List abnormal findings"],
  "ai_doctor_questions": ["5 questions for doctor"],
  "ai_food_to_avoid": ["Foods to avoid"],
  "ai_better_foods": ["Recommended foods"],
  "ai_home_remedies": ["Lifestyle tips"],
  "ai_risk_level": "low"
}

CRITICAL: ai_risk_level MUST be exactly one of these values: "low", "medium", "high", "critical"
Do not use any other variations like "moderate", "severe", "minimal", etc.

Guidelines:
- Provide clear, accurate medical analysis
- Include Roman Urdu summary for Pakistani/Indian patients
- List any abnormal values with normal ranges
- Be conservative with risk assessment (use "low" when uncertain)
- Focus on actionable insights
- ai_risk_level must be exactly: "low", "medium", "high", or "critical"

Report Type: %s

Return only valid JSON without additional text or formatting.
`

// Analyzer turns raw model output into strict AIAnalysis records and
// drives the model call for uploaded report files.
type Analyzer struct {
	completer ai.Completer
	logger    *zap.Logger
}

// NewAnalyzer creates a new Analyzer
func NewAnalyzer(completer ai.Completer, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		completer: completer,
		logger:    logger,
	}
}

// AnalyzeReport sends a report file to the model and normalizes the
// response. It never returns a nil analysis: any failure, from the model
// call to parsing, degrades to the fallback analysis so the report still
// ends up in a usable analyzed state.
func (a *Analyzer) AnalyzeReport(ctx context.Context, fileData []byte, fileType, reportType string) *model.AIAnalysis {
	if reportType == "" {
		reportType = "general"
	}

	prompt := fmt.Sprintf(analysisPromptTemplate, reportType)

	dataURL := "data:" + fileType + ";base64," + base64.StdEncoding.EncodeToString(fileData)

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
			openai.TextContentPart(prompt),
			openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
				URL: dataURL,
			}),
		}),
	}

	raw, err := a.completer.Complete(ctx, messages)
	if err != nil {
		a.logger.Warn("report analysis model call failed, using fallback",
			zap.Error(err),
			zap.String("report_type", reportType),
		)
		return FallbackAnalysis()
	}

	analysis, err := a.ParseAnalysis(raw)
	if err != nil {
		a.logger.Warn("report analysis response unusable, using fallback",
			zap.Error(err),
			zap.String("report_type", reportType),
		)
		return FallbackAnalysis()
	}

	return analysis
}

// stringList tolerates model output where a list field is missing or not
// a JSON array. Anything that is not an array decodes to an empty list.
type stringList []string

func (s *stringList) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		*s = nil
		return nil
	}
	*s = items
	return nil
}

// rawAnalysis is the loosely-typed shape the model is asked to produce
type rawAnalysis struct {
	SummaryEnglish  string     `json:"ai_summary_english"`
	SummaryUrdu     string     `json:"ai_summary_urdu"`
	AbnormalValues  stringList `json:"ai_abnormal_values"`
	DoctorQuestions stringList `json:"ai_doctor_questions"`
	FoodToAvoid     stringList `json:"ai_food_to_avoid"`
	BetterFoods     stringList `json:"ai_better_foods"`
	HomeRemedies    stringList `json:"ai_home_remedies"`
	RiskLevel       string     `json:"ai_risk_level"`
}

// ParseAnalysis extracts and validates the JSON analysis from raw model
// output. The text may be wrapped in code fences or prose; everything
// outside the first '{' and last '}' is discarded. Both summaries are
// required; an analysis missing either is rejected whole.
func (a *Analyzer) ParseAnalysis(raw string) (*model.AIAnalysis, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON object found in model response")
	}

	var parsed rawAnalysis
	if err := json.Unmarshal([]byte(raw[start:end+1]), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse analysis JSON: %w", err)
	}

	if strings.TrimSpace(parsed.SummaryEnglish) == "" || strings.TrimSpace(parsed.SummaryUrdu) == "" {
		return nil, fmt.Errorf("analysis missing required summary fields")
	}

	analysis := &model.AIAnalysis{
		SummaryEnglish:  parsed.SummaryEnglish,
		SummaryUrdu:     parsed.SummaryUrdu,
		AbnormalValues:  emptyIfNil(parsed.AbnormalValues),
		DoctorQuestions: emptyIfNil(parsed.DoctorQuestions),
		FoodToAvoid:     emptyIfNil(parsed.FoodToAvoid),
		BetterFoods:     emptyIfNil(parsed.BetterFoods),
		HomeRemedies:    emptyIfNil(parsed.HomeRemedies),
		RiskLevel:       a.normalizeRiskLevel(parsed.RiskLevel),
	}

	return analysis, nil
}

// normalizeRiskLevel maps the model's risk token onto the four stored
// values. Known synonyms are folded in; anything unrecognized defaults
// to low with a warning rather than failing the whole analysis.
func (a *Analyzer) normalizeRiskLevel(raw string) model.RiskLevel {
	token := strings.ToLower(strings.TrimSpace(raw))

	switch token {
	case "low", "minimal", "safe":
		return model.RiskLevelLow
	case "medium", "moderate", "mild":
		return model.RiskLevelMedium
	case "high", "severe", "elevated":
		return model.RiskLevelHigh
	case "critical", "urgent", "emergency", "serious":
		return model.RiskLevelCritical
	default:
		a.logger.Warn("unrecognized risk level, defaulting to low",
			zap.String("raw_risk_level", raw),
		)
		return model.RiskLevelLow
	}
}

// FallbackAnalysis is stored when the model call or its output cannot be
// used. The content is fixed so users always see the same clearly-labeled
// placeholder, and re-parsing it yields the same record.
func FallbackAnalysis() *model.AIAnalysis {
	return &model.AIAnalysis{
		SummaryEnglish: "Your medical report has been uploaded successfully. The AI analysis encountered an issue, but your report is safely stored. Please consult your healthcare provider for professional interpretation of your results.",
		SummaryUrdu:    "Aapki medical report successfully upload ho gayi hai. AI analysis mein kuch issue aya, lekin aapki report safely store hai. Professional interpretation ke liye apne doctor se zaroor consult karein.",
		AbnormalValues: []string{"AI analysis incomplete - manual review recommended"},
		DoctorQuestions: []string{
			"Could you review my uploaded report and explain the key findings?",
			"Are there any values in my report that need attention?",
			"What follow-up tests or actions do you recommend?",
			"How do these results compare to my previous reports?",
			"What lifestyle changes should I consider based on these results?",
		},
		FoodToAvoid: []string{"Processed and packaged foods", "Excessive sugar and sweets", "High sodium foods"},
		BetterFoods: []string{"Fresh fruits and vegetables", "Lean proteins like chicken and fish", "Whole grains and nuts"},
		HomeRemedies: []string{
			"🌅 Maintain 7-8 hours of quality sleep daily",
			"💧 Stay hydrated with 8-10 glasses of water",
			"🚶 Engage in 30 minutes of light exercise daily",
			"🧘 Practice stress reduction through meditation or deep breathing",
			"📋 Follow a balanced, nutritious diet",
		},
		RiskLevel: model.RiskLevelLow,
	}
}

func emptyIfNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
