package ai

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestNewClient(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name    string
		apiKey  string
		model   string
		baseURL string
		wantErr bool
	}{
		{
			name:    "valid configuration",
			apiKey:  "test-key",
			model:   "gpt-4o-mini",
			wantErr: false,
		},
		{
			name:    "valid with base url",
			apiKey:  "test-key",
			model:   "gpt-4o-mini",
			baseURL: "https://gateway.example.com/v1",
			wantErr: false,
		},
		{
			name:    "missing api key",
			apiKey:  "",
			model:   "gpt-4o-mini",
			wantErr: true,
		},
		{
			name:    "missing model",
			apiKey:  "test-key",
			model:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.apiKey, tt.model, tt.baseURL, logger)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewClient() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr {
				if client == nil {
					t.Fatal("NewClient() returned nil client")
				}
				if client.model != tt.model {
					t.Errorf("model = %v, want %v", client.model, tt.model)
				}
				if client.maxRetries != 3 {
					t.Errorf("maxRetries = %v, want 3", client.maxRetries)
				}
				if client.baseDelay != time.Second {
					t.Errorf("baseDelay = %v, want 1s", client.baseDelay)
				}
			}
		})
	}
}

func TestClient_isRetryable(t *testing.T) {
	client := &Client{
		logger:     zap.NewNop(),
		maxRetries: 3,
		baseDelay:  time.Second,
	}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error", err: nil, want: false},
		{name: "authentication error", err: errors.New("authentication failed"), want: false},
		{name: "unauthorized error", err: errors.New("request unauthorized"), want: false},
		{name: "401 status", err: errors.New("status 401: key rejected"), want: false},
		{name: "invalid request", err: errors.New("invalid request body"), want: false},
		{name: "bad request", err: errors.New("bad request"), want: false},
		{name: "rate limit", err: errors.New("rate limit exceeded"), want: true},
		{name: "timeout", err: errors.New("request timeout"), want: true},
		{name: "network error", err: errors.New("connection refused"), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := client.isRetryable(tt.err); got != tt.want {
				t.Errorf("isRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
