package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"go.uber.org/zap"

	"github.com/healthmate-ai/backend/internal/audit"
	"github.com/healthmate-ai/backend/internal/pdf"
	"github.com/healthmate-ai/backend/internal/repository"
	"github.com/healthmate-ai/backend/internal/storage"
	"github.com/healthmate-ai/backend/pkg/model"
)

const insightsPromptTemplate = `
Based on the following medical reports timeline, generate a comprehensive health insight for the patient:

%s

Please provide:
1. Overall health trend analysis
2. Improvements or concerning patterns
3. Key recommendations for maintaining/improving health
4. Important areas to monitor

Keep the response concise but informative, suitable for a patient dashboard. Write in a friendly, encouraging tone while being medically accurate.

Respond in both English and Roman Urdu format like this:
"English insight here. Roman Urdu insight yahan likhein."
`

// ReportStore persists medical report records
type ReportStore interface {
	Create(ctx context.Context, report *model.MedicalReport) (*model.MedicalReport, error)
	GetByID(ctx context.Context, userID, reportID string) (*model.MedicalReport, error)
	ListByUser(ctx context.Context, userID string) ([]model.MedicalReport, error)
	ApplyAnalysis(ctx context.Context, reportID string, analysis *model.AIAnalysis) error
	Delete(ctx context.Context, userID, reportID string) error
	Stats(ctx context.Context, userID string) (*model.ReportStats, error)
}

// ReportAuditor records report mutations
type ReportAuditor interface {
	LogCreate(ctx context.Context, userID string, resourceType audit.ResourceType, resourceID string) error
	LogDelete(ctx context.Context, userID string, resourceType audit.ResourceType, resourceID string) error
}

// UploadInput carries one uploaded report file with its metadata
type UploadInput struct {
	FileName   string
	FileType   string
	ReportType string
	Notes      string
	Data       []byte
}

// ReportService manages report upload, analysis, and retrieval
type ReportService struct {
	reports  ReportStore
	files    storage.ReportStore
	analyzer *Analyzer
	pdfGen   *pdf.ReportGenerator
	auditor  ReportAuditor
	logger   *zap.Logger
}

// NewReportService creates a new ReportService
func NewReportService(reports ReportStore, files storage.ReportStore, analyzer *Analyzer, pdfGen *pdf.ReportGenerator, auditor ReportAuditor, logger *zap.Logger) *ReportService {
	return &ReportService{
		reports:  reports,
		files:    files,
		analyzer: analyzer,
		pdfGen:   pdfGen,
		auditor:  auditor,
		logger:   logger,
	}
}

// Upload stores the report file, creates the record, runs analysis, and
// applies the result. The record always comes back analyzed: analysis
// failures store the fallback rather than leaving the report pending.
func (s *ReportService) Upload(ctx context.Context, userID string, input UploadInput) (*model.MedicalReport, error) {
	if userID == "" {
		return nil, fmt.Errorf("userID is required")
	}
	if input.FileName == "" || len(input.Data) == 0 {
		return nil, fmt.Errorf("file name and content are required")
	}

	blobName, err := s.files.UploadReport(ctx, userID, input.FileName, input.Data, input.FileType)
	if err != nil {
		return nil, fmt.Errorf("failed to store report file: %w", err)
	}

	report := &model.MedicalReport{
		UserID:     userID,
		FileURL:    blobName,
		FileName:   input.FileName,
		UploadedAt: time.Now(),
	}
	if input.FileType != "" {
		report.FileType = &input.FileType
	}
	if input.ReportType != "" {
		report.ReportType = &input.ReportType
	}
	if input.Notes != "" {
		report.Notes = &input.Notes
	}

	created, err := s.reports.Create(ctx, report)
	if err != nil {
		// The record is the source of truth; an orphaned blob is cleaned
		// up rather than left dangling.
		if delErr := s.files.DeleteReport(ctx, blobName); delErr != nil {
			s.logger.Warn("failed to clean up orphaned report file",
				zap.String("blob_name", blobName),
				zap.Error(delErr),
			)
		}
		return nil, err
	}

	if s.auditor != nil {
		if err := s.auditor.LogCreate(ctx, userID, audit.ResourceMedicalReport, created.ID); err != nil {
			s.logger.Warn("failed to audit report creation", zap.Error(err))
		}
	}

	return s.analyze(ctx, created, input.Data)
}

// Analyze re-runs analysis for a report still in the pending state, for
// example after a crash between record creation and analysis.
func (s *ReportService) Analyze(ctx context.Context, userID, reportID string) (*model.MedicalReport, error) {
	report, err := s.reports.GetByID(ctx, userID, reportID)
	if err != nil {
		return nil, err
	}
	if report.Analyzed {
		return report, nil
	}

	data, err := s.files.DownloadReport(ctx, report.FileURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch report file: %w", err)
	}

	return s.analyze(ctx, report, data)
}

// analyze runs the model and applies the analysis to the record. A lost
// race against a concurrent analysis is not an error; the stored result
// wins and is returned.
func (s *ReportService) analyze(ctx context.Context, report *model.MedicalReport, data []byte) (*model.MedicalReport, error) {
	fileType := "application/octet-stream"
	if report.FileType != nil && *report.FileType != "" {
		fileType = *report.FileType
	}
	reportType := ""
	if report.ReportType != nil {
		reportType = *report.ReportType
	}

	analysis := s.analyzer.AnalyzeReport(ctx, data, fileType, reportType)

	err := s.reports.ApplyAnalysis(ctx, report.ID, analysis)
	if err != nil && !errors.Is(err, repository.ErrAlreadyAnalyzed) {
		return nil, err
	}
	if errors.Is(err, repository.ErrAlreadyAnalyzed) {
		s.logger.Info("report analyzed concurrently, keeping stored analysis",
			zap.String("report_id", report.ID),
		)
	}

	return s.reports.GetByID(ctx, report.UserID, report.ID)
}

// Get returns one report owned by the user
func (s *ReportService) Get(ctx context.Context, userID, reportID string) (*model.MedicalReport, error) {
	return s.reports.GetByID(ctx, userID, reportID)
}

// List returns all of the user's reports, newest upload first
func (s *ReportService) List(ctx context.Context, userID string) ([]model.MedicalReport, error) {
	reports, err := s.reports.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if reports == nil {
		reports = []model.MedicalReport{}
	}
	return reports, nil
}

// Delete removes a report record and its stored file
func (s *ReportService) Delete(ctx context.Context, userID, reportID string) error {
	report, err := s.reports.GetByID(ctx, userID, reportID)
	if err != nil {
		return err
	}

	if err := s.reports.Delete(ctx, userID, reportID); err != nil {
		return err
	}

	if err := s.files.DeleteReport(ctx, report.FileURL); err != nil {
		s.logger.Warn("failed to delete report file, record already removed",
			zap.String("blob_name", report.FileURL),
			zap.Error(err),
		)
	}

	if s.auditor != nil {
		if err := s.auditor.LogDelete(ctx, userID, audit.ResourceMedicalReport, reportID); err != nil {
			s.logger.Warn("failed to audit report deletion", zap.Error(err))
		}
	}

	return nil
}

// Stats aggregates the user's report counts for the dashboard
func (s *ReportService) Stats(ctx context.Context, userID string) (*model.ReportStats, error) {
	return s.reports.Stats(ctx, userID)
}

// Insights generates a bilingual trend summary across the user's
// analyzed reports. Users with no analyzed reports get an empty string.
func (s *ReportService) Insights(ctx context.Context, userID string) (string, error) {
	reports, err := s.reports.ListByUser(ctx, userID)
	if err != nil {
		return "", err
	}

	type reportDatum struct {
		Date           time.Time `json:"date"`
		Summary        string    `json:"summary"`
		AbnormalValues []string  `json:"abnormalValues"`
		RiskLevel      string    `json:"riskLevel"`
	}

	var data []reportDatum
	for _, report := range reports {
		if report.Analysis == nil {
			continue
		}
		data = append(data, reportDatum{
			Date:           report.UploadedAt,
			Summary:        report.Analysis.SummaryEnglish,
			AbnormalValues: report.Analysis.AbnormalValues,
			RiskLevel:      string(report.Analysis.RiskLevel),
		})
	}

	if len(data) == 0 {
		return "", nil
	}

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report timeline: %w", err)
	}

	prompt := fmt.Sprintf(insightsPromptTemplate, string(encoded))

	insight, err := s.analyzer.completer.Complete(ctx, []openai.ChatCompletionMessageParamUnion{
		openai.UserMessage(prompt),
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate health insights: %w", err)
	}

	return insight, nil
}

// ExportPDF renders an analyzed report as a printable PDF
func (s *ReportService) ExportPDF(ctx context.Context, userID, reportID string) ([]byte, error) {
	report, err := s.reports.GetByID(ctx, userID, reportID)
	if err != nil {
		return nil, err
	}

	return s.pdfGen.Generate(report)
}
