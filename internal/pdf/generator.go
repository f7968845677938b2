// Package pdf renders analyzed medical reports as printable documents.
package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/healthmate-ai/backend/pkg/model"
	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"
)

// ReportGenerator generates printable summaries of analyzed medical reports
type ReportGenerator struct {
	logger *zap.Logger
}

// NewReportGenerator creates a new ReportGenerator
func NewReportGenerator(logger *zap.Logger) *ReportGenerator {
	return &ReportGenerator{
		logger: logger,
	}
}

// Generate creates a PDF summary of an analyzed medical report. The
// report must carry an analysis; callers should not export pending
// reports.
func (g *ReportGenerator) Generate(report *model.MedicalReport) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("report is required")
	}
	if report.Analysis == nil {
		return nil, fmt.Errorf("report %s has no analysis to export", report.ID)
	}

	g.logger.Info("generating PDF report summary",
		zap.String("report_id", report.ID),
		zap.String("file_name", report.FileName),
	)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	pdf.AddPage()

	g.addTitle(pdf, report)
	g.addSummaries(pdf, report.Analysis)
	g.addListSection(pdf, "Abnormal Values", report.Analysis.AbnormalValues, "No abnormal values flagged.")
	g.addListSection(pdf, "Questions for Your Doctor", report.Analysis.DoctorQuestions, "No questions suggested.")
	g.addListSection(pdf, "Foods to Avoid", report.Analysis.FoodToAvoid, "No dietary restrictions suggested.")
	g.addListSection(pdf, "Better Food Choices", report.Analysis.BetterFoods, "No dietary suggestions.")
	g.addListSection(pdf, "Home Remedies", report.Analysis.HomeRemedies, "No home remedies suggested.")
	g.addRiskLevel(pdf, report.Analysis.RiskLevel)

	var buf bytes.Buffer
	err := pdf.Output(&buf)
	if err != nil {
		g.logger.Error("failed to generate PDF", zap.Error(err))
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	g.logger.Info("PDF report summary generated successfully",
		zap.Int("size_bytes", buf.Len()),
	)

	return buf.Bytes(), nil
}

// addTitle adds the report title and header information
func (g *ReportGenerator) addTitle(pdf *gofpdf.Fpdf, report *model.MedicalReport) {
	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 10, "Medical Report Analysis", "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("File: %s", report.FileName), "", 1, "L", false, 0, "")
	if report.ReportType != nil && *report.ReportType != "" {
		pdf.CellFormat(0, 8, fmt.Sprintf("Report Type: %s", *report.ReportType), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 8, fmt.Sprintf("Uploaded: %s", report.UploadedAt.Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	if report.AnalyzedAt != nil {
		pdf.CellFormat(0, 8, fmt.Sprintf("Analyzed: %s", report.AnalyzedAt.Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 8, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(10)
}

// addSectionHeader adds a section header
func (g *ReportGenerator) addSectionHeader(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(0, 10, title, "", 1, "L", true, 0, "")
	pdf.Ln(3)
	pdf.SetFont("Arial", "", 10)
}

// addSummaries adds the bilingual summary sections
func (g *ReportGenerator) addSummaries(pdf *gofpdf.Fpdf, analysis *model.AIAnalysis) {
	g.addSectionHeader(pdf, "Summary (English)")
	pdf.MultiCell(0, 5, analysis.SummaryEnglish, "", "L", false)
	pdf.Ln(5)

	g.addSectionHeader(pdf, "Summary (Roman Urdu)")
	pdf.MultiCell(0, 5, analysis.SummaryUrdu, "", "L", false)
	pdf.Ln(5)
}

// addListSection adds a bulleted list section
func (g *ReportGenerator) addListSection(pdf *gofpdf.Fpdf, title string, items []string, emptyText string) {
	g.addSectionHeader(pdf, title)

	if len(items) == 0 {
		pdf.CellFormat(0, 8, emptyText, "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	for _, item := range items {
		pdf.MultiCell(0, 5, fmt.Sprintf("  - %s", item), "", "L", false)
	}
	pdf.Ln(5)
}

// addRiskLevel adds the risk level section
func (g *ReportGenerator) addRiskLevel(pdf *gofpdf.Fpdf, risk model.RiskLevel) {
	g.addSectionHeader(pdf, "Risk Level")
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, string(risk), "", 1, "L", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "I", 9)
	pdf.MultiCell(0, 5, "This analysis is AI generated and is not a medical diagnosis. Always consult your doctor.", "", "L", false)
}
