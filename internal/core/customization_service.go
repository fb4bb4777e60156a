package core

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"

	"elevare.io/sitegen/internal/logger"
	"elevare.io/sitegen/internal/store"
	"elevare.io/sitegen/internal/upstream"
)

const customizationSystemInstruction = "You are a website customization assistant. The user owns a small business website " +
	"implemented as a single React component using Tailwind CSS classes and lucide-react icons. " +
	"Apply the user's requested change to the current source code. " +
	"Reply with a short, friendly explanation of what you changed, followed by the complete updated component " +
	"in a single ```tsx code block. Always return the full component, never a fragment or a diff. " +
	"If the request is unclear or impossible, explain why and return no code block."

const quotaExhaustedMessage = "Customization limit reached. Please upgrade your plan to continue customizing your website."

// Completer is the slice of the LLM client the services need.
type Completer interface {
	GetCompletion(ctx context.Context, systemInstruction string, history []*genai.Content, userPrompt string) (string, error)
}

// CustomizationService runs the conversational customization loop against
// the local store: quota gate, prompt construction with full history,
// reply parsing and source persistence.
type CustomizationService struct {
	dbStore      *store.SQLiteStore
	llm          Completer
	log          logger.Logger
	messageLimit int
}

func NewCustomizationService(db *store.SQLiteStore, llm Completer, log logger.Logger, messageLimit int) *CustomizationService {
	return &CustomizationService{
		dbStore:      db,
		llm:          llm,
		log:          log,
		messageLimit: messageLimit,
	}
}

func (s *CustomizationService) Customize(ctx context.Context, businessID, message string) (*upstream.CustomizeResult, error) {
	biz, err := s.dbStore.GetBusinessByID(businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to load business: %w", err)
	}
	if biz == nil {
		return nil, upstream.ErrNotFound
	}

	usage, err := s.dbStore.GetUsage(businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to load usage: %w", err)
	}
	remaining := s.messageLimit - usage.MessagesUsed
	if remaining <= 0 {
		return &upstream.CustomizeResult{
			Success:           false,
			AssistantMessage:  quotaExhaustedMessage,
			MessagesRemaining: 0,
		}, nil
	}

	history, err := s.buildHistory(businessID)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf("Current website source:\n```tsx\n%s\n```\n\nRequested change: %s", biz.GeneratedCode, message)
	raw, err := s.llm.GetCompletion(ctx, customizationSystemInstruction, history, prompt)
	if err != nil {
		s.log.Error("customization completion failed", map[string]interface{}{
			"business_id": businessID,
			"error":       err.Error(),
		})
		return &upstream.CustomizeResult{
			Success:           false,
			AssistantMessage:  "I'm sorry, I couldn't process that change. Please try again.",
			MessagesRemaining: remaining,
		}, nil
	}

	explanation, updated := parseAssistantReply(raw)
	if updated != "" {
		if err := s.dbStore.UpdateGeneratedCode(businessID, updated); err != nil {
			return nil, fmt.Errorf("failed to persist updated source: %w", err)
		}
	}

	// Record the exchange and consume one message from the quota. The raw
	// user message and the explanation (not the source) form the durable
	// conversation history.
	if _, err := s.dbStore.AppendCustomizationMessage(businessID, "user", message); err != nil {
		s.log.Warn("failed to record user message", map[string]interface{}{"business_id": businessID, "error": err.Error()})
	}
	if _, err := s.dbStore.AppendCustomizationMessage(businessID, "assistant", explanation); err != nil {
		s.log.Warn("failed to record assistant message", map[string]interface{}{"business_id": businessID, "error": err.Error()})
	}
	if err := s.dbStore.IncrementMessagesUsed(businessID); err != nil {
		return nil, fmt.Errorf("failed to record quota use: %w", err)
	}

	return &upstream.CustomizeResult{
		Success:           updated != "",
		AssistantMessage:  explanation,
		UpdatedSource:     updated,
		MessagesRemaining: remaining - 1,
	}, nil
}

func (s *CustomizationService) RemainingMessages(businessID string) (*upstream.QuotaStatus, error) {
	usage, err := s.dbStore.GetUsage(businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to load usage: %w", err)
	}
	remaining := s.messageLimit - usage.MessagesUsed
	if remaining < 0 {
		remaining = 0
	}
	return &upstream.QuotaStatus{
		Remaining:    remaining,
		CanCustomize: remaining > 0,
	}, nil
}

func (s *CustomizationService) buildHistory(businessID string) ([]*genai.Content, error) {
	messages, err := s.dbStore.GetCustomizationMessages(businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation history: %w", err)
	}
	history := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		role := "user"
		if m.Sender == "assistant" {
			role = "model"
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}
	return history, nil
}
