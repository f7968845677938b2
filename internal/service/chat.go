package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/openai/openai-go/v3"
	"go.uber.org/zap"

	"github.com/healthmate-ai/backend/internal/ai"
	"github.com/healthmate-ai/backend/internal/audit"
	"github.com/healthmate-ai/backend/pkg/model"
)

// historyLimit caps how many stored exchanges feed back into the model
const historyLimit = 50

// ChatProfileReader provides the health profile used to personalize chat
type ChatProfileReader interface {
	GetByAuthID(ctx context.Context, authID string) (*model.HealthProfile, error)
}

// ChatHistoryStore persists chat exchanges
type ChatHistoryStore interface {
	SaveExchange(ctx context.Context, msg *model.ChatMessage) (*model.ChatMessage, error)
	History(ctx context.Context, userID string, limit int) ([]model.ChatMessage, error)
	Clear(ctx context.Context, userID string) (int64, error)
}

// AuditLogger records data access for compliance
type AuditLogger interface {
	LogDelete(ctx context.Context, userID string, resourceType audit.ResourceType, resourceID string) error
}

// ChatService runs the health chat assistant
type ChatService struct {
	completer ai.Completer
	profiles  ChatProfileReader
	history   ChatHistoryStore
	auditor   AuditLogger
	logger    *zap.Logger

	mu          sync.RWMutex
	subscribers map[string]map[chan model.ChatMessage]struct{}
}

// NewChatService creates a new ChatService
func NewChatService(completer ai.Completer, profiles ChatProfileReader, history ChatHistoryStore, auditor AuditLogger, logger *zap.Logger) *ChatService {
	return &ChatService{
		completer:   completer,
		profiles:    profiles,
		history:     history,
		auditor:     auditor,
		logger:      logger,
		subscribers: make(map[string]map[chan model.ChatMessage]struct{}),
	}
}

// SendMessage runs one chat turn: build the system prompt from the
// user's profile, replay recent history, call the model, persist the
// exchange, and notify subscribers. Collaborator failures propagate as
// errors; nothing is persisted for a failed turn.
func (s *ChatService) SendMessage(ctx context.Context, userID, message string) (*model.ChatMessage, error) {
	if message == "" {
		return nil, fmt.Errorf("message is required")
	}

	profile, err := s.profiles.GetByAuthID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load health profile: %w", err)
	}

	past, err := s.history.History(ctx, userID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2*len(past)+2)
	messages = append(messages, openai.SystemMessage(BuildSystemPrompt(profile)))
	for _, exchange := range past {
		messages = append(messages, openai.UserMessage(exchange.UserMessage))
		messages = append(messages, openai.AssistantMessage(exchange.AIResponse))
	}
	messages = append(messages, openai.UserMessage(message))

	response, err := s.completer.Complete(ctx, messages)
	if err != nil {
		s.logger.Error("chat completion failed",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return nil, fmt.Errorf("failed to generate chat response: %w", err)
	}

	exchange := &model.ChatMessage{
		UserID:      userID,
		UserMessage: message,
		AIResponse:  response,
		Topic:       ExtractTopic(message),
	}

	saved, err := s.history.SaveExchange(ctx, exchange)
	if err != nil {
		return nil, fmt.Errorf("failed to save chat exchange: %w", err)
	}

	s.logger.Info("chat exchange completed",
		zap.String("user_id", userID),
		zap.String("topic", string(saved.Topic)),
	)

	s.notify(userID, *saved)

	return saved, nil
}

// History returns the user's recent exchanges, oldest first
func (s *ChatService) History(ctx context.Context, userID string) ([]model.ChatMessage, error) {
	messages, err := s.history.History(ctx, userID, historyLimit)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []model.ChatMessage{}
	}
	return messages, nil
}

// Clear wipes the user's chat history and records the deletion
func (s *ChatService) Clear(ctx context.Context, userID string) error {
	deleted, err := s.history.Clear(ctx, userID)
	if err != nil {
		return err
	}

	s.logger.Info("chat history cleared",
		zap.String("user_id", userID),
		zap.Int64("deleted_exchanges", deleted),
	)

	if s.auditor != nil {
		if err := s.auditor.LogDelete(ctx, userID, audit.ResourceChatHistory, userID); err != nil {
			s.logger.Warn("failed to audit chat history deletion", zap.Error(err))
		}
	}

	return nil
}

// Subscribe registers a channel receiving the user's new exchanges as
// they complete. The returned function unsubscribes and closes the
// channel; callers must call it when done.
func (s *ChatService) Subscribe(userID string) (<-chan model.ChatMessage, func()) {
	ch := make(chan model.ChatMessage, 8)

	s.mu.Lock()
	if s.subscribers[userID] == nil {
		s.subscribers[userID] = make(map[chan model.ChatMessage]struct{})
	}
	s.subscribers[userID][ch] = struct{}{}
	s.mu.Unlock()

	unsubscribe := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if subs, ok := s.subscribers[userID]; ok {
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}
			if len(subs) == 0 {
				delete(s.subscribers, userID)
			}
		}
	}

	return ch, unsubscribe
}

// notify fans a completed exchange out to the user's subscribers.
// Slow subscribers are skipped rather than blocking the chat turn.
func (s *ChatService) notify(userID string, msg model.ChatMessage) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for ch := range s.subscribers[userID] {
		select {
		case ch <- msg:
		default:
			s.logger.Warn("dropping chat notification for slow subscriber",
				zap.String("user_id", userID),
			)
		}
	}
}
