package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/healthmate-ai/backend/internal/ai"
	"github.com/healthmate-ai/backend/internal/pdf"
	"github.com/healthmate-ai/backend/internal/repository"
	"github.com/healthmate-ai/backend/internal/storage"
	"github.com/healthmate-ai/backend/pkg/model"
)

// fakeReportStore is an in-memory ReportStore
type fakeReportStore struct {
	mu        sync.Mutex
	reports   map[string]*model.MedicalReport
	createErr error
	nextID    int
}

func newFakeReportStore() *fakeReportStore {
	return &fakeReportStore{reports: make(map[string]*model.MedicalReport)}
}

func (f *fakeReportStore) Create(_ context.Context, report *model.MedicalReport) (*model.MedicalReport, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	if report.ID == "" {
		report.ID = fmt.Sprintf("report-%d", f.nextID)
	}
	report.CreatedAt = time.Now()
	report.UpdatedAt = report.CreatedAt
	stored := *report
	f.reports[report.ID] = &stored
	return report, nil
}

func (f *fakeReportStore) GetByID(_ context.Context, userID, reportID string) (*model.MedicalReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	report, ok := f.reports[reportID]
	if !ok || report.UserID != userID {
		return nil, repository.ErrReportNotFound
	}
	copied := *report
	return &copied, nil
}

func (f *fakeReportStore) ListByUser(_ context.Context, userID string) ([]model.MedicalReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.MedicalReport
	for _, report := range f.reports {
		if report.UserID == userID {
			out = append(out, *report)
		}
	}
	return out, nil
}

func (f *fakeReportStore) ApplyAnalysis(_ context.Context, reportID string, analysis *model.AIAnalysis) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	report, ok := f.reports[reportID]
	if !ok {
		return repository.ErrReportNotFound
	}
	if report.Analyzed {
		return repository.ErrAlreadyAnalyzed
	}
	now := time.Now()
	report.Analyzed = true
	report.Analysis = analysis
	report.AnalyzedAt = &now
	return nil
}

func (f *fakeReportStore) Delete(_ context.Context, userID, reportID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	report, ok := f.reports[reportID]
	if !ok || report.UserID != userID {
		return repository.ErrReportNotFound
	}
	delete(f.reports, reportID)
	return nil
}

func (f *fakeReportStore) Stats(_ context.Context, userID string) (*model.ReportStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &model.ReportStats{}
	for _, report := range f.reports {
		if report.UserID != userID {
			continue
		}
		stats.Total++
		if report.Analyzed {
			stats.Analyzed++
		} else {
			stats.Pending++
		}
		if report.Analysis != nil &&
			(report.Analysis.RiskLevel == model.RiskLevelHigh || report.Analysis.RiskLevel == model.RiskLevelCritical) {
			stats.HighRisk++
		}
	}
	return stats, nil
}

func newTestReportService(completer ai.Completer) (*ReportService, *fakeReportStore, *storage.MockReportStore, *fakeAuditor) {
	logger := zap.NewNop()
	store := newFakeReportStore()
	files := storage.NewMockReportStore()
	auditor := &fakeAuditor{}
	svc := NewReportService(
		store,
		files,
		NewAnalyzer(completer, logger),
		pdf.NewReportGenerator(logger),
		auditor,
		logger,
	)
	return svc, store, files, auditor
}

func TestReportService_Upload(t *testing.T) {
	ctx := context.Background()

	input := UploadInput{
		FileName:   "cbc.pdf",
		FileType:   "application/pdf",
		ReportType: "blood-test",
		Notes:      "routine checkup",
		Data:       []byte("%PDF fake"),
	}

	t.Run("successful upload and analysis", func(t *testing.T) {
		completer := ai.NewMockCompleter(ai.MockResponse{Content: validAnalysisJSON})
		svc, _, files, auditor := newTestReportService(completer)

		report, err := svc.Upload(ctx, "user-1", input)
		require.NoError(t, err)

		assert.True(t, report.Analyzed)
		require.NotNil(t, report.Analysis)
		assert.Equal(t, model.RiskLevelMedium, report.Analysis.RiskLevel)
		assert.NotNil(t, report.AnalyzedAt)
		assert.Equal(t, 1, files.Count())
		assert.Len(t, auditor.creates, 1)
	})

	t.Run("model failure stores fallback, report still analyzed", func(t *testing.T) {
		completer := ai.NewMockCompleter(ai.MockResponse{Err: errors.New("model down")})
		svc, _, _, _ := newTestReportService(completer)

		report, err := svc.Upload(ctx, "user-1", input)
		require.NoError(t, err)

		assert.True(t, report.Analyzed)
		assert.Equal(t, FallbackAnalysis(), report.Analysis)
	})

	t.Run("blob failure aborts upload", func(t *testing.T) {
		completer := ai.NewMockCompleter(ai.MockResponse{Content: validAnalysisJSON})
		svc, store, files, _ := newTestReportService(completer)
		files.FailUpload = true

		_, err := svc.Upload(ctx, "user-1", input)
		assert.Error(t, err)
		assert.Empty(t, store.reports)
	})

	t.Run("record failure cleans up stored file", func(t *testing.T) {
		completer := ai.NewMockCompleter(ai.MockResponse{Content: validAnalysisJSON})
		svc, store, files, _ := newTestReportService(completer)
		store.createErr = errors.New("insert failed")

		_, err := svc.Upload(ctx, "user-1", input)
		assert.Error(t, err)
		assert.Equal(t, 0, files.Count())
	})

	t.Run("empty file rejected", func(t *testing.T) {
		svc, _, _, _ := newTestReportService(ai.NewMockCompleter())

		_, err := svc.Upload(ctx, "user-1", UploadInput{FileName: "empty.pdf"})
		assert.Error(t, err)
	})
}

func TestReportService_Analyze(t *testing.T) {
	ctx := context.Background()

	t.Run("pending report gets analyzed", func(t *testing.T) {
		completer := ai.NewMockCompleter(ai.MockResponse{Content: validAnalysisJSON})
		svc, store, files, _ := newTestReportService(completer)

		blobName, err := files.UploadReport(ctx, "user-1", "scan.jpg", []byte("img"), "image/jpeg")
		require.NoError(t, err)
		created, err := store.Create(ctx, &model.MedicalReport{
			UserID:   "user-1",
			FileURL:  blobName,
			FileName: "scan.jpg",
		})
		require.NoError(t, err)

		report, err := svc.Analyze(ctx, "user-1", created.ID)
		require.NoError(t, err)
		assert.True(t, report.Analyzed)
	})

	t.Run("already analyzed report returned unchanged", func(t *testing.T) {
		completer := ai.NewMockCompleter(ai.MockResponse{Content: validAnalysisJSON})
		svc, store, _, _ := newTestReportService(completer)

		created, err := store.Create(ctx, &model.MedicalReport{UserID: "user-1", FileName: "done.pdf"})
		require.NoError(t, err)
		require.NoError(t, store.ApplyAnalysis(ctx, created.ID, FallbackAnalysis()))

		report, err := svc.Analyze(ctx, "user-1", created.ID)
		require.NoError(t, err)
		assert.Equal(t, FallbackAnalysis(), report.Analysis)
		assert.Equal(t, 0, completer.CallCount())
	})

	t.Run("unknown report", func(t *testing.T) {
		svc, _, _, _ := newTestReportService(ai.NewMockCompleter())

		_, err := svc.Analyze(ctx, "user-1", "missing")
		assert.ErrorIs(t, err, repository.ErrReportNotFound)
	})
}

func TestReportService_Delete(t *testing.T) {
	ctx := context.Background()
	completer := ai.NewMockCompleter(ai.MockResponse{Content: validAnalysisJSON})
	svc, store, files, auditor := newTestReportService(completer)

	report, err := svc.Upload(ctx, "user-1", UploadInput{
		FileName: "cbc.pdf",
		FileType: "application/pdf",
		Data:     []byte("%PDF fake"),
	})
	require.NoError(t, err)

	t.Run("other users cannot delete", func(t *testing.T) {
		err := svc.Delete(ctx, "user-2", report.ID)
		assert.ErrorIs(t, err, repository.ErrReportNotFound)
	})

	t.Run("owner deletes record and file", func(t *testing.T) {
		err := svc.Delete(ctx, "user-1", report.ID)
		require.NoError(t, err)
		assert.Empty(t, store.reports)
		assert.Equal(t, 0, files.Count())
		assert.Len(t, auditor.deletes, 1)
	})
}

func TestReportService_Insights(t *testing.T) {
	ctx := context.Background()

	t.Run("no analyzed reports yields empty insight without model call", func(t *testing.T) {
		completer := ai.NewMockCompleter(ai.MockResponse{Content: "should not be used"})
		svc, store, _, _ := newTestReportService(completer)

		_, err := store.Create(ctx, &model.MedicalReport{UserID: "user-1", FileName: "pending.pdf"})
		require.NoError(t, err)

		insight, err := svc.Insights(ctx, "user-1")
		require.NoError(t, err)
		assert.Empty(t, insight)
		assert.Equal(t, 0, completer.CallCount())
	})

	t.Run("analyzed reports produce an insight", func(t *testing.T) {
		completer := ai.NewMockCompleter(ai.MockResponse{Content: "Trending well. Sab theek ja raha hai."})
		svc, store, _, _ := newTestReportService(completer)

		created, err := store.Create(ctx, &model.MedicalReport{UserID: "user-1", FileName: "cbc.pdf"})
		require.NoError(t, err)
		require.NoError(t, store.ApplyAnalysis(ctx, created.ID, FallbackAnalysis()))

		insight, err := svc.Insights(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "Trending well. Sab theek ja raha hai.", insight)
	})
}

func TestReportService_ExportPDF(t *testing.T) {
	ctx := context.Background()
	completer := ai.NewMockCompleter(ai.MockResponse{Content: validAnalysisJSON})
	svc, store, _, _ := newTestReportService(completer)

	created, err := store.Create(ctx, &model.MedicalReport{UserID: "user-1", FileName: "cbc.pdf"})
	require.NoError(t, err)

	t.Run("pending report cannot be exported", func(t *testing.T) {
		_, err := svc.ExportPDF(ctx, "user-1", created.ID)
		assert.Error(t, err)
	})

	t.Run("analyzed report exports", func(t *testing.T) {
		require.NoError(t, store.ApplyAnalysis(ctx, created.ID, FallbackAnalysis()))

		pdfBytes, err := svc.ExportPDF(ctx, "user-1", created.ID)
		require.NoError(t, err)
		assert.Equal(t, "%PDF", string(pdfBytes[:4]))
	})
}
