package storage

import "context"

// ReportStore defines the operations needed to persist report files.
// Both the Azure-backed BlobStore and the in-memory mock implement it.
type ReportStore interface {
	UploadReport(ctx context.Context, userID, fileName string, data []byte, contentType string) (string, error)
	DownloadReport(ctx context.Context, blobName string) ([]byte, error)
	DeleteReport(ctx context.Context, blobName string) error
}

// Ensure BlobStore implements the interface
var _ ReportStore = (*BlobStore)(nil)
