package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"elevare.io/sitegen/internal/auth"
	"elevare.io/sitegen/internal/logger"
)

var (
	// ErrNotFound means the collaborator has no record for the business.
	ErrNotFound = errors.New("business not found")
	// ErrUnauthorized means the collaborator rejected our credentials.
	ErrUnauthorized = errors.New("unauthorized")
)

// Client talks to the collaborating business platform over HTTP. All
// methods honor context cancellation and map the collaborator's status
// codes onto the sentinel errors above.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  auth.TokenProvider
	log     logger.Logger
}

func NewClient(baseURL string, tokens auth.TokenProvider, log logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
		tokens:  tokens,
		log:     log,
	}
}

// GetBusiness fetches the business record, including its current
// generated website source.
func (c *Client) GetBusiness(ctx context.Context, businessID string) (*Business, error) {
	var out Business
	err := c.do(ctx, http.MethodGet, "/api/businesses/"+businessID, nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateWebsite asks the collaborator to generate a full website for
// the business. Quota exhaustion comes back as a failed result with an
// explanatory message, not as an error.
func (c *Client) GenerateWebsite(ctx context.Context, businessID string) (*GenerationResult, error) {
	var out GenerationResult
	err := c.do(ctx, http.MethodPost, "/api/businesses/"+businessID+"/generate-website", nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Customize sends one conversational customization message and returns
// the assistant's reply, the possibly-updated source and the remaining
// message count.
func (c *Client) Customize(ctx context.Context, businessID, message string) (*CustomizeResult, error) {
	body := map[string]string{"message": message}
	var out CustomizeResult
	err := c.do(ctx, http.MethodPost, "/api/businesses/"+businessID+"/customize", body, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RemainingMessages reports the business's customization quota.
func (c *Client) RemainingMessages(ctx context.Context, businessID string) (*QuotaStatus, error) {
	var out QuotaStatus
	err := c.do(ctx, http.MethodGet, "/api/businesses/"+businessID+"/customize/remaining", nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to get access token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode >= 400:
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.log.Warn("collaborator returned an error status", map[string]interface{}{
			"path":   path,
			"status": resp.StatusCode,
		})
		return fmt.Errorf("collaborator returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}
