package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/healthmate-ai/backend/pkg/model"
)

// ErrAlreadyAnalyzed is returned when an analysis is applied to a report
// that has already been analyzed. The analyzed transition happens at most
// once per report.
var ErrAlreadyAnalyzed = errors.New("report already analyzed")

// ErrReportNotFound is returned when no report matches the given ID
var ErrReportNotFound = errors.New("report not found")

// ReportRepository manages medical report records
type ReportRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewReportRepository creates a new ReportRepository
func NewReportRepository(db *pgxpool.Pool, logger *zap.Logger) *ReportRepository {
	return &ReportRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new report record in the unanalyzed state
func (r *ReportRepository) Create(ctx context.Context, report *model.MedicalReport) (*model.MedicalReport, error) {
	if report.ID == "" {
		report.ID = uuid.New().String()
	}
	if report.UploadedAt.IsZero() {
		report.UploadedAt = time.Now()
	}

	query := `
		INSERT INTO medical_reports (
			id, user_id, file_url, file_name, file_type, report_type, notes,
			ai_analyzed, uploaded_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		report.ID,
		report.UserID,
		report.FileURL,
		report.FileName,
		report.FileType,
		report.ReportType,
		report.Notes,
		report.UploadedAt,
	).Scan(&report.CreatedAt, &report.UpdatedAt)

	if err != nil {
		r.logger.Error("failed to create medical report",
			zap.Error(err),
			zap.String("user_id", report.UserID),
		)
		return nil, fmt.Errorf("failed to create medical report: %w", err)
	}

	report.Analyzed = false
	return report, nil
}

// GetByID retrieves a single report owned by the given user
func (r *ReportRepository) GetByID(ctx context.Context, userID, reportID string) (*model.MedicalReport, error) {
	query := `
		SELECT
			id, user_id, file_url, file_name, file_type, report_type, notes,
			ai_analyzed,
			ai_summary_english, ai_summary_urdu, ai_abnormal_values,
			ai_doctor_questions, ai_food_to_avoid, ai_better_foods,
			ai_home_remedies, ai_risk_level, ai_analyzed_at,
			uploaded_at, created_at, updated_at
		FROM medical_reports
		WHERE id = $1 AND user_id = $2
	`

	report, err := r.scanReport(r.db.QueryRow(ctx, query, reportID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		r.logger.Error("failed to get medical report",
			zap.Error(err),
			zap.String("report_id", reportID),
		)
		return nil, fmt.Errorf("failed to get medical report: %w", err)
	}

	return report, nil
}

// ListByUser retrieves all reports for a user, newest upload first
func (r *ReportRepository) ListByUser(ctx context.Context, userID string) ([]model.MedicalReport, error) {
	query := `
		SELECT
			id, user_id, file_url, file_name, file_type, report_type, notes,
			ai_analyzed,
			ai_summary_english, ai_summary_urdu, ai_abnormal_values,
			ai_doctor_questions, ai_food_to_avoid, ai_better_foods,
			ai_home_remedies, ai_risk_level, ai_analyzed_at,
			uploaded_at, created_at, updated_at
		FROM medical_reports
		WHERE user_id = $1
		ORDER BY uploaded_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to list medical reports", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to list medical reports: %w", err)
	}
	defer rows.Close()

	var reports []model.MedicalReport
	for rows.Next() {
		report, err := r.scanReport(rows)
		if err != nil {
			r.logger.Error("failed to scan medical report", zap.Error(err))
			continue
		}
		reports = append(reports, *report)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating medical reports", zap.Error(err))
		return nil, fmt.Errorf("error iterating medical reports: %w", err)
	}

	return reports, nil
}

// ApplyAnalysis stores a complete analysis and flips the report to
// analyzed. The WHERE clause guards the transition: a report that is
// already analyzed is never overwritten, and concurrent analyses of the
// same report resolve to exactly one winner.
func (r *ReportRepository) ApplyAnalysis(ctx context.Context, reportID string, analysis *model.AIAnalysis) error {
	query := `
		UPDATE medical_reports
		SET ai_analyzed = TRUE,
		    ai_summary_english = $1,
		    ai_summary_urdu = $2,
		    ai_abnormal_values = $3,
		    ai_doctor_questions = $4,
		    ai_food_to_avoid = $5,
		    ai_better_foods = $6,
		    ai_home_remedies = $7,
		    ai_risk_level = $8,
		    ai_analyzed_at = NOW(),
		    updated_at = NOW()
		WHERE id = $9 AND ai_analyzed = FALSE
	`

	result, err := r.db.Exec(ctx, query,
		analysis.SummaryEnglish,
		analysis.SummaryUrdu,
		analysis.AbnormalValues,
		analysis.DoctorQuestions,
		analysis.FoodToAvoid,
		analysis.BetterFoods,
		analysis.HomeRemedies,
		analysis.RiskLevel,
		reportID,
	)

	if err != nil {
		r.logger.Error("failed to apply report analysis",
			zap.Error(err),
			zap.String("report_id", reportID),
		)
		return fmt.Errorf("failed to apply report analysis: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Either the report does not exist or it was already analyzed.
		// One extra lookup tells the two apart.
		var analyzed bool
		err := r.db.QueryRow(ctx, `SELECT ai_analyzed FROM medical_reports WHERE id = $1`, reportID).Scan(&analyzed)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrReportNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to check report state: %w", err)
		}
		if analyzed {
			return ErrAlreadyAnalyzed
		}
		return ErrReportNotFound
	}

	return nil
}

// Delete removes a report owned by the given user
func (r *ReportRepository) Delete(ctx context.Context, userID, reportID string) error {
	result, err := r.db.Exec(ctx,
		`DELETE FROM medical_reports WHERE id = $1 AND user_id = $2`,
		reportID, userID,
	)
	if err != nil {
		r.logger.Error("failed to delete medical report",
			zap.Error(err),
			zap.String("report_id", reportID),
		)
		return fmt.Errorf("failed to delete medical report: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrReportNotFound
	}

	return nil
}

// Stats aggregates a user's report counts for the dashboard
func (r *ReportRepository) Stats(ctx context.Context, userID string) (*model.ReportStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE ai_analyzed),
			COUNT(*) FILTER (WHERE NOT ai_analyzed),
			COUNT(*) FILTER (WHERE ai_risk_level IN ('high', 'critical')),
			COUNT(*) FILTER (WHERE uploaded_at >= date_trunc('month', NOW()))
		FROM medical_reports
		WHERE user_id = $1
	`

	var stats model.ReportStats
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&stats.Total,
		&stats.Analyzed,
		&stats.Pending,
		&stats.HighRisk,
		&stats.ThisMonth,
	)
	if err != nil {
		r.logger.Error("failed to get report stats", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to get report stats: %w", err)
	}

	return &stats, nil
}

// scanReport reads one report row including its optional analysis columns
func (r *ReportRepository) scanReport(row pgx.Row) (*model.MedicalReport, error) {
	var report model.MedicalReport
	var summaryEnglish, summaryUrdu *string
	var abnormalValues, doctorQuestions, foodToAvoid, betterFoods, homeRemedies []string
	var riskLevel *string

	err := row.Scan(
		&report.ID,
		&report.UserID,
		&report.FileURL,
		&report.FileName,
		&report.FileType,
		&report.ReportType,
		&report.Notes,
		&report.Analyzed,
		&summaryEnglish,
		&summaryUrdu,
		&abnormalValues,
		&doctorQuestions,
		&foodToAvoid,
		&betterFoods,
		&homeRemedies,
		&riskLevel,
		&report.AnalyzedAt,
		&report.UploadedAt,
		&report.CreatedAt,
		&report.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if report.Analyzed && summaryEnglish != nil && summaryUrdu != nil && riskLevel != nil {
		report.Analysis = &model.AIAnalysis{
			SummaryEnglish:  *summaryEnglish,
			SummaryUrdu:     *summaryUrdu,
			AbnormalValues:  abnormalValues,
			DoctorQuestions: doctorQuestions,
			FoodToAvoid:     foodToAvoid,
			BetterFoods:     betterFoods,
			HomeRemedies:    homeRemedies,
			RiskLevel:       model.RiskLevel(*riskLevel),
		}
	}

	return &report, nil
}
