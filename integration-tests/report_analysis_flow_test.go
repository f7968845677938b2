package integration_tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthmate-ai/backend/pkg/model"
)

const labReportAnalysisJSON = `{
	"ai_summary_english": "Your blood sugar is above the normal range. The rest of the report looks fine.",
	"ai_summary_urdu": "Aap ki blood sugar normal range se zyada hai. Baqi report theek lag rahi hai.",
	"ai_abnormal_values": ["Fasting glucose: 140 mg/dL (normal: 70-100)"],
	"ai_doctor_questions": ["Should I start medication for my blood sugar?"],
	"ai_food_to_avoid": ["Sugary drinks", "White bread"],
	"ai_better_foods": ["Leafy greens", "Whole grains"],
	"ai_home_remedies": ["Walk for 30 minutes daily"],
	"ai_risk_level": "medium"
}`

// TestReportAnalysisFlowIntegration exercises the full report lifecycle
// against a real database: upload, AI analysis, listing, stats, PDF export,
// and deletion.
func TestReportAnalysisFlowIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := setupTestEnvironment(t, labReportAnalysisJSON)
	defer env.cleanup()

	userID := "auth0|" + uuid.New().String()

	t.Run("Upload triggers analysis", func(t *testing.T) {
		t.Log("Step 1: Uploading a lab report")
		report := uploadReport(t, env.router, userID, "blood-test.pdf", "blood_test", "quarterly checkup")
		require.NotEmpty(t, report.ID)
		assert.True(t, report.Analyzed, "upload should analyze the report inline")
		require.NotNil(t, report.Analysis)
		assert.Equal(t, model.RiskLevelMedium, report.Analysis.RiskLevel)
		assert.Contains(t, report.Analysis.SummaryUrdu, "blood sugar")

		t.Log("Step 2: Verifying the file landed in blob storage")
		assert.Equal(t, 1, env.files.Count())

		t.Log("Step 3: Listing reports")
		reports := listReports(t, env.router, userID)
		require.Len(t, reports, 1)
		assert.Equal(t, report.ID, reports[0].ID)

		t.Log("Step 4: Checking stats")
		stats := getStats(t, env.router, userID)
		assert.Equal(t, 1, stats.Total)
		assert.Equal(t, 1, stats.Analyzed)
		assert.Equal(t, 0, stats.Pending)

		t.Log("Step 5: Exporting the analysis as PDF")
		w := doRequest(t, env.router, http.MethodGet, "/api/v1/reports/"+report.ID+"/pdf", userID, nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))

		t.Log("Step 6: Deleting the report")
		w = doRequest(t, env.router, http.MethodDelete, "/api/v1/reports/"+report.ID, userID, nil, "")
		require.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, 0, env.files.Count())

		reports = listReports(t, env.router, userID)
		assert.Empty(t, reports)
	})

	t.Run("Reports are scoped to their owner", func(t *testing.T) {
		report := uploadReport(t, env.router, userID, "xray.pdf", "xray", "")
		require.NotEmpty(t, report.ID)

		otherUser := "auth0|" + uuid.New().String()
		w := doRequest(t, env.router, http.MethodGet, "/api/v1/reports/"+report.ID, otherUser, nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = doRequest(t, env.router, http.MethodDelete, "/api/v1/reports/"+report.ID, otherUser, nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Requests without identity are rejected", func(t *testing.T) {
		w := doRequest(t, env.router, http.MethodGet, "/api/v1/reports", "", nil, "")
		require.Equal(t, http.StatusUnauthorized, w.Code)

		var errResp struct {
			Code string `json:"code"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
		assert.Equal(t, "UNAUTHORIZED", errResp.Code)
	})
}

func uploadReport(t *testing.T, router http.Handler, userID, fileName, reportType, notes string) *model.MedicalReport {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(fmt.Sprintf("fake scan content for %s", fileName)))
	require.NoError(t, err)

	require.NoError(t, writer.WriteField("report_type", reportType))
	if notes != "" {
		require.NoError(t, writer.WriteField("notes", notes))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-User-ID", userID)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, "upload failed: %s", w.Body.String())

	var report model.MedicalReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	return &report
}

func listReports(t *testing.T, router http.Handler, userID string) []model.MedicalReport {
	t.Helper()

	w := doRequest(t, router, http.MethodGet, "/api/v1/reports", userID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var reports []model.MedicalReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reports))
	return reports
}

func getStats(t *testing.T, router http.Handler, userID string) *model.ReportStats {
	t.Helper()

	w := doRequest(t, router, http.MethodGet, "/api/v1/reports/stats", userID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var stats model.ReportStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	return &stats
}
