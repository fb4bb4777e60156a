package core

import (
	"context"
	"fmt"

	"elevare.io/sitegen/internal/logger"
	"elevare.io/sitegen/internal/store"
	"elevare.io/sitegen/internal/upstream"
)

const generationSystemInstruction = "You are a website generator for small businesses. Produce a complete, " +
	"self-contained React component named BusinessWebsite that renders a polished single-page website " +
	"using Tailwind CSS classes and lucide-react icons. " +
	"Reply with the full component source in a single ```tsx code block and nothing else."

const generationLimitMessage = "Website generation limit reached. Please upgrade your plan to continue."

// GenerationService produces a full website for a business, counting each
// successful generation against the plan's generation quota. Quota
// exhaustion is reported in the result, not as an error, so callers can
// surface the upgrade message verbatim.
type GenerationService struct {
	dbStore         *store.SQLiteStore
	llm             Completer
	log             logger.Logger
	generationLimit int
}

func NewGenerationService(db *store.SQLiteStore, llm Completer, log logger.Logger, generationLimit int) *GenerationService {
	return &GenerationService{
		dbStore:         db,
		llm:             llm,
		log:             log,
		generationLimit: generationLimit,
	}
}

func (s *GenerationService) GenerateWebsite(ctx context.Context, businessID string) (*upstream.GenerationResult, error) {
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
	if usage.GenerationsUsed >= s.generationLimit {
		return &upstream.GenerationResult{
			Success:      false,
			ErrorMessage: generationLimitMessage,
		}, nil
	}

	prompt := fmt.Sprintf("Generate a website for the business %q.", biz.Name)
	raw, err := s.llm.GetCompletion(ctx, generationSystemInstruction, nil, prompt)
	if err != nil {
		s.log.Error("website generation failed", map[string]interface{}{
			"business_id": businessID,
			"error":       err.Error(),
		})
		return &upstream.GenerationResult{
			Success:      false,
			ErrorMessage: "Website generation failed. Please try again.",
		}, nil
	}

	_, source := parseAssistantReply(raw)
	if source == "" {
		// Some replies skip the fence and are pure source.
		source = raw
	}

	if err := s.dbStore.UpdateGeneratedCode(businessID, source); err != nil {
		return nil, fmt.Errorf("failed to persist generated source: %w", err)
	}
	if err := s.dbStore.IncrementGenerationsUsed(businessID); err != nil {
		return nil, fmt.Errorf("failed to record quota use: %w", err)
	}

	return &upstream.GenerationResult{
		Success:         true,
		GeneratedSource: source,
	}, nil
}
