package storage

import (
	"context"
	"fmt"
	"path"
	"sync"
	"time"
)

// MockReportStore is an in-memory implementation of ReportStore for tests
// and local development without Azure credentials.
type MockReportStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte

	// FailUpload forces UploadReport to return an error when set
	FailUpload bool
}

// NewMockReportStore creates a new in-memory report store
func NewMockReportStore() *MockReportStore {
	return &MockReportStore{
		blobs: make(map[string][]byte),
	}
}

// UploadReport stores the file in memory and returns a generated blob name
func (m *MockReportStore) UploadReport(_ context.Context, userID, fileName string, data []byte, _ string) (string, error) {
	if m.FailUpload {
		return "", fmt.Errorf("mock upload failure")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ext := path.Ext(fileName)
	blobName := fmt.Sprintf("medical-reports/%s/%d%s", userID, time.Now().UnixNano(), ext)

	stored := make([]byte, len(data))
	copy(stored, data)
	m.blobs[blobName] = stored

	return blobName, nil
}

// DownloadReport returns a stored file by blob name
func (m *MockReportStore) DownloadReport(_ context.Context, blobName string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[blobName]
	if !ok {
		return nil, fmt.Errorf("blob not found: %s", blobName)
	}

	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// DeleteReport removes a stored file
func (m *MockReportStore) DeleteReport(_ context.Context, blobName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.blobs[blobName]; !ok {
		return fmt.Errorf("blob not found: %s", blobName)
	}
	delete(m.blobs, blobName)
	return nil
}

// Count returns the number of stored blobs
func (m *MockReportStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}

var _ ReportStore = (*MockReportStore)(nil)
