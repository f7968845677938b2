package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/healthmate-ai/backend/internal/repository"
	"github.com/healthmate-ai/backend/internal/service"
)

// maxReportFileSize caps uploaded report files at 10 MB
const maxReportFileSize = 10 << 20

// ReportHandler implements medical report API endpoints
type ReportHandler struct {
	service *service.ReportService
	logger  *zap.Logger
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(service *service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger,
	}
}

// UploadReport accepts a multipart report upload and runs analysis
func (h *ReportHandler) UploadReport(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "A report file is required",
			Details: stringPtr(err.Error()),
		})
		return
	}

	if fileHeader.Size > maxReportFileSize {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("Report files are limited to %d MB", maxReportFileSize>>20),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Could not read uploaded file",
			Details: stringPtr(err.Error()),
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxReportFileSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Could not read uploaded file",
			Details: stringPtr(err.Error()),
		})
		return
	}

	input := service.UploadInput{
		FileName:   fileHeader.Filename,
		FileType:   fileHeader.Header.Get("Content-Type"),
		ReportType: c.PostForm("report_type"),
		Notes:      c.PostForm("notes"),
		Data:       data,
	}

	report, err := h.service.Upload(c.Request.Context(), userID, input)
	if err != nil {
		h.logger.Error("failed to upload medical report",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "Failed to upload medical report",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.JSON(http.StatusCreated, report)
}

// ListReports returns the caller's reports, newest first
func (h *ReportHandler) ListReports(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	reports, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list medical reports",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "Failed to list medical reports",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, reports)
}

// GetReport returns one of the caller's reports
func (h *ReportHandler) GetReport(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	report, err := h.service.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.respondReportError(c, userID, "Failed to get medical report", err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// AnalyzeReport re-runs analysis for a pending report
func (h *ReportHandler) AnalyzeReport(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	report, err := h.service.Analyze(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.respondReportError(c, userID, "Failed to analyze medical report", err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// DeleteReport removes a report and its stored file
func (h *ReportHandler) DeleteReport(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.respondReportError(c, userID, "Failed to delete medical report", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetStats returns the caller's report counts
func (h *ReportHandler) GetStats(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to get report stats",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "Failed to get report stats",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetInsights generates a bilingual trend summary across analyzed reports
func (h *ReportHandler) GetInsights(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	insight, err := h.service.Insights(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to generate health insights",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "Failed to generate health insights",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, InsightsResponse{Insight: insight})
}

// ExportReportPDF streams an analyzed report as a PDF download
func (h *ReportHandler) ExportReportPDF(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	reportID := c.Param("id")
	pdfBytes, err := h.service.ExportPDF(c.Request.Context(), userID, reportID)
	if err != nil {
		h.respondReportError(c, userID, "Failed to export report PDF", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="report-%s.pdf"`, reportID))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

// respondReportError maps repository errors onto HTTP statuses
func (h *ReportHandler) respondReportError(c *gin.Context, userID, message string, err error) {
	if errors.Is(err, repository.ErrReportNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    "NOT_FOUND",
			Message: "Medical report not found",
		})
		return
	}

	h.logger.Error(message,
		zap.Error(err),
		zap.String("user_id", userID),
	)
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Code:    "INTERNAL_ERROR",
		Message: message,
		Details: stringPtr(err.Error()),
	})
}
