package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/healthmate-ai/backend/internal/ai"
)

// Every error response must carry the standard envelope with a stable
// machine-readable code and a human-readable message.
func TestProperty_ErrorResponseStructure(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	router := newTestRouter(ai.NewMockCompleter())

	properties.Property("all error responses follow the standard envelope", prop.ForAll(
		func(errorScenario string) bool {
			var req *http.Request
			var expectedCode string
			var expectedStatus int

			switch errorScenario {
			case "invalid_json_profile":
				req = httptest.NewRequest("PUT", "/api/v1/profile", bytes.NewBufferString("{invalid json"))
				req.Header.Set("Content-Type", "application/json")
				req.Header.Set("X-User-ID", "user-1")
				expectedCode = "VALIDATION_ERROR"
				expectedStatus = http.StatusBadRequest

			case "malformed_json_array":
				req = httptest.NewRequest("PUT", "/api/v1/profile", bytes.NewBufferString(`[1,2,3`))
				req.Header.Set("Content-Type", "application/json")
				req.Header.Set("X-User-ID", "user-1")
				expectedCode = "VALIDATION_ERROR"
				expectedStatus = http.StatusBadRequest

			case "empty_chat_message":
				req = httptest.NewRequest("POST", "/api/v1/chat", bytes.NewBufferString(`{"message":""}`))
				req.Header.Set("Content-Type", "application/json")
				req.Header.Set("X-User-ID", "user-1")
				expectedCode = "VALIDATION_ERROR"
				expectedStatus = http.StatusBadRequest

			case "missing_identity":
				req = httptest.NewRequest("GET", "/api/v1/reports", nil)
				expectedCode = "UNAUTHORIZED"
				expectedStatus = http.StatusUnauthorized

			case "unknown_report":
				req = httptest.NewRequest("GET", "/api/v1/reports/no-such-report", nil)
				req.Header.Set("X-User-ID", "user-1")
				expectedCode = "NOT_FOUND"
				expectedStatus = http.StatusNotFound

			default:
				return true
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != expectedStatus {
				t.Logf("Scenario %s: expected status %d, got %d", errorScenario, expectedStatus, w.Code)
				return false
			}

			var errResp ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &errResp); err != nil {
				t.Logf("Scenario %s: failed to parse error response: %v, body: %s", errorScenario, err, w.Body.String())
				return false
			}

			if errResp.Code != expectedCode {
				t.Logf("Scenario %s: expected code %s, got %s", errorScenario, expectedCode, errResp.Code)
				return false
			}

			if errResp.Message == "" {
				t.Logf("Scenario %s: message must not be empty", errorScenario)
				return false
			}

			return true
		},
		gen.OneConstOf(
			"invalid_json_profile",
			"malformed_json_array",
			"empty_chat_message",
			"missing_identity",
			"unknown_report",
		),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
