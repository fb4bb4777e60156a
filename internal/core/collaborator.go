package core

import (
	"context"
	"fmt"

	"elevare.io/sitegen/internal/store"
	"elevare.io/sitegen/internal/upstream"
)

// Collaborator is the in-process stand-in for the business platform,
// backed by the local store and the LLM. It exposes the same surface as
// the HTTP client so the rest of the service does not care which mode it
// runs in.
type Collaborator struct {
	dbStore       *store.SQLiteStore
	customization *CustomizationService
	generation    *GenerationService
}

func NewCollaborator(db *store.SQLiteStore, customization *CustomizationService, generation *GenerationService) *Collaborator {
	return &Collaborator{
		dbStore:       db,
		customization: customization,
		generation:    generation,
	}
}

func (c *Collaborator) GetBusiness(_ context.Context, businessID string) (*upstream.Business, error) {
	biz, err := c.dbStore.GetBusinessByID(businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to load business: %w", err)
	}
	if biz == nil {
		return nil, upstream.ErrNotFound
	}
	return &upstream.Business{
		ID:              biz.ID,
		Name:            biz.Name,
		GeneratedSource: biz.GeneratedCode,
	}, nil
}

func (c *Collaborator) GenerateWebsite(ctx context.Context, businessID string) (*upstream.GenerationResult, error) {
	return c.generation.GenerateWebsite(ctx, businessID)
}

func (c *Collaborator) Customize(ctx context.Context, businessID, message string) (*upstream.CustomizeResult, error) {
	return c.customization.Customize(ctx, businessID, message)
}

func (c *Collaborator) RemainingMessages(_ context.Context, businessID string) (*upstream.QuotaStatus, error) {
	return c.customization.RemainingMessages(businessID)
}
