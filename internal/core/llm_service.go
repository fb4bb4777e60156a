package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"elevare.io/sitegen/internal/logger"
)

const defaultModelName = "gemini-1.5-flash-latest"

type LLMService struct {
	client *genai.Client
	log    logger.Logger
}

func NewLLMService(ctx context.Context, apiKey string, log logger.Logger) (*LLMService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &LLMService{client: client, log: log}, nil
}

func (s *LLMService) Close() {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			s.log.Warn("error closing GenAI client", map[string]interface{}{"error": err.Error()})
		}
	}
}

// GetCompletion sends the conversation history plus the final user prompt
// to the model and returns the concatenated text of the first candidate.
// History roles must be "user" or "model".
func (s *LLMService) GetCompletion(ctx context.Context, systemInstruction string, history []*genai.Content, userPrompt string) (string, error) {
	model := s.client.GenerativeModel(defaultModelName)

	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemInstruction)},
	}

	chatSession := model.StartChat()
	chatSession.History = history

	resp, err := chatSession.SendMessage(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", fmt.Errorf("gemini SendMessage failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		s.log.Warn("gemini response was empty or had no valid candidates", nil)
		return "", fmt.Errorf("no response generated")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		} else {
			s.log.Warn("gemini response part was not text", map[string]interface{}{"type": fmt.Sprintf("%T", part)})
		}
	}

	if responseText.Len() == 0 {
		return "", fmt.Errorf("response contained no text parts")
	}
	return responseText.String(), nil
}
