// Package storage persists uploaded medical report files in Azure Blob
// Storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"go.uber.org/zap"
)

// BlobStore wraps the Azure Blob Storage SDK for report file operations
type BlobStore struct {
	client        *azblob.Client
	containerName string
	logger        *zap.Logger
}

// NewBlobStore creates a new blob store for the given container
func NewBlobStore(accountName, accountKey, containerName string, logger *zap.Logger) (*BlobStore, error) {
	if accountName == "" || accountKey == "" || containerName == "" {
		return nil, fmt.Errorf("accountName, accountKey, and containerName are required")
	}

	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", accountName)

	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create shared key credential: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	return &BlobStore{
		client:        client,
		containerName: containerName,
		logger:        logger,
	}, nil
}

// UploadReport stores an uploaded report file under the owning user's
// prefix and returns the blob name. The timestamped name mirrors the
// upload path the web client used, so existing records stay addressable.
func (s *BlobStore) UploadReport(ctx context.Context, userID, fileName string, data []byte, contentType string) (string, error) {
	s.logger.Info("uploading report file to blob storage",
		zap.String("user_id", userID),
		zap.String("file_name", fileName),
		zap.Int("size_bytes", len(data)),
	)

	ext := path.Ext(fileName)
	blobName := fmt.Sprintf("medical-reports/%s/%d%s", userID, time.Now().UnixMilli(), ext)

	blobClient := s.client.ServiceClient().NewContainerClient(s.containerName).NewBlockBlobClient(blobName)

	_, err := blobClient.UploadBuffer(ctx, data, &azblob.UploadBufferOptions{
		Metadata: map[string]*string{
			"contenttype":      toPtr(contentType),
			"originalfilename": toPtr(fileName),
		},
	})
	if err != nil {
		s.logger.Error("failed to upload report file",
			zap.String("blob_name", blobName),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to upload report file: %w", err)
	}

	s.logger.Info("report file uploaded successfully",
		zap.String("blob_name", blobName),
	)

	return blobName, nil
}

// DownloadReport fetches a stored report file by blob name
func (s *BlobStore) DownloadReport(ctx context.Context, blobName string) ([]byte, error) {
	s.logger.Info("downloading report file from blob storage",
		zap.String("blob_name", blobName),
	)

	blobClient := s.client.ServiceClient().NewContainerClient(s.containerName).NewBlockBlobClient(blobName)

	downloadResponse, err := blobClient.DownloadStream(ctx, nil)
	if err != nil {
		s.logger.Error("failed to download report file",
			zap.String("blob_name", blobName),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to download report file: %w", err)
	}
	defer downloadResponse.Body.Close()

	data, err := io.ReadAll(downloadResponse.Body)
	if err != nil {
		s.logger.Error("failed to read report file data",
			zap.String("blob_name", blobName),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to read report file data: %w", err)
	}

	s.logger.Info("report file downloaded successfully",
		zap.String("blob_name", blobName),
		zap.Int("size_bytes", len(data)),
	)

	return data, nil
}

// DeleteReport removes a stored report file
func (s *BlobStore) DeleteReport(ctx context.Context, blobName string) error {
	s.logger.Info("deleting report file from blob storage",
		zap.String("blob_name", blobName),
	)

	blobClient := s.client.ServiceClient().NewContainerClient(s.containerName).NewBlockBlobClient(blobName)

	if _, err := blobClient.Delete(ctx, nil); err != nil {
		s.logger.Error("failed to delete report file",
			zap.String("blob_name", blobName),
			zap.Error(err),
		)
		return fmt.Errorf("failed to delete report file: %w", err)
	}

	return nil
}

// toPtr is a helper function to convert a value to a pointer
func toPtr(s string) *string {
	return &s
}
