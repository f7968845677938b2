package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openai/openai-go/v3"
	"go.uber.org/zap"

	"github.com/healthmate-ai/backend/internal/ai"
	"github.com/healthmate-ai/backend/internal/storage"
)

// Connectivity smoke test for the external services the backend depends
// on. Run it against a fresh environment before deploying:
//
//	DATABASE_URL=... AI_API_KEY=... STORAGE_ACCOUNT_NAME=... STORAGE_ACCOUNT_KEY=... go run ./cmd/test-clients
func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	databaseURL := os.Getenv("DATABASE_URL")
	aiKey := os.Getenv("AI_API_KEY")
	aiModel := os.Getenv("AI_MODEL")
	aiBaseURL := os.Getenv("AI_BASE_URL")
	storageAccountName := os.Getenv("STORAGE_ACCOUNT_NAME")
	storageAccountKey := os.Getenv("STORAGE_ACCOUNT_KEY")
	reportContainer := os.Getenv("STORAGE_REPORT_CONTAINER")

	if databaseURL == "" {
		logger.Fatal("Missing database credentials. Set DATABASE_URL")
	}
	if aiKey == "" {
		logger.Fatal("Missing AI credentials. Set AI_API_KEY (and optionally AI_MODEL, AI_BASE_URL)")
	}
	if aiModel == "" {
		aiModel = "gpt-4o-mini"
	}
	if storageAccountName == "" || storageAccountKey == "" {
		logger.Fatal("Missing storage credentials. Set STORAGE_ACCOUNT_NAME and STORAGE_ACCOUNT_KEY")
	}
	if reportContainer == "" {
		reportContainer = "medical-reports"
	}

	ctx := context.Background()

	logger.Info("=== Testing PostgreSQL connection ===")
	if err := testDatabase(ctx, databaseURL, logger); err != nil {
		logger.Error("Database test failed", zap.Error(err))
	} else {
		logger.Info("✅ Database test passed")
	}

	logger.Info("=== Testing AI completion client ===")
	if err := testAIClient(ctx, aiKey, aiModel, aiBaseURL, logger); err != nil {
		logger.Error("AI client test failed", zap.Error(err))
	} else {
		logger.Info("✅ AI client test passed")
	}

	logger.Info("=== Testing blob storage client ===")
	if err := testBlobStorage(ctx, storageAccountName, storageAccountKey, reportContainer, logger); err != nil {
		logger.Error("Blob storage test failed", zap.Error(err))
	} else {
		logger.Info("✅ Blob storage test passed")
	}

	logger.Info("=== All tests completed ===")
}

func testDatabase(ctx context.Context, databaseURL string, logger *zap.Logger) error {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	var tableCount int
	err = pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM information_schema.tables
		 WHERE table_name IN ('health_profiles', 'medical_reports', 'ai_chat_history', 'audit_logs')`,
	).Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("failed to check schema: %w", err)
	}

	logger.Info("Database reachable",
		zap.Int("expected_tables_present", tableCount),
	)

	if tableCount < 4 {
		logger.Warn("Schema incomplete, apply migrations/001_initial_schema.sql")
	}

	return nil
}

func testAIClient(ctx context.Context, apiKey, model, baseURL string, logger *zap.Logger) error {
	client, err := ai.NewClient(apiKey, model, baseURL, logger)
	if err != nil {
		return fmt.Errorf("failed to create AI client: %w", err)
	}

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage("You are a helpful assistant."),
		openai.UserMessage("Say 'Assalam o alaikum, HealthMate online hai!' in Roman Urdu."),
	}

	response, err := client.Complete(ctx, messages)
	if err != nil {
		return fmt.Errorf("chat completion failed: %w", err)
	}

	logger.Info("AI response received",
		zap.String("response", response),
		zap.Int("response_length", len(response)),
	)

	return nil
}

func testBlobStorage(ctx context.Context, accountName, accountKey, containerName string, logger *zap.Logger) error {
	store, err := storage.NewBlobStore(accountName, accountKey, containerName, logger)
	if err != nil {
		return fmt.Errorf("failed to create blob store: %w", err)
	}

	testData := []byte(fmt.Sprintf("connectivity check at %s", time.Now().Format(time.RFC3339)))

	blobName, err := store.UploadReport(ctx, "smoke-test", "connectivity-check.txt", testData, "text/plain")
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	logger.Info("Test blob uploaded", zap.String("blob_name", blobName))

	downloaded, err := store.DownloadReport(ctx, blobName)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	if !bytes.Equal(downloaded, testData) {
		return fmt.Errorf("downloaded content does not match: got %d bytes, want %d", len(downloaded), len(testData))
	}

	if err := store.DeleteReport(ctx, blobName); err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}

	logger.Info("Round-trip verified and test blob removed")

	return nil
}
