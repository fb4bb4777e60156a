package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"elevare.io/sitegen/internal/logger"
	"elevare.io/sitegen/internal/metrics"
	"elevare.io/sitegen/internal/render"
	"elevare.io/sitegen/internal/session"
	"elevare.io/sitegen/internal/upstream"
)

// Collaborator is the business platform surface the handlers consume.
// Satisfied by both the HTTP client and the in-process implementation.
type Collaborator interface {
	GetBusiness(ctx context.Context, businessID string) (*upstream.Business, error)
	GenerateWebsite(ctx context.Context, businessID string) (*upstream.GenerationResult, error)
	Customize(ctx context.Context, businessID, message string) (*upstream.CustomizeResult, error)
	RemainingMessages(ctx context.Context, businessID string) (*upstream.QuotaStatus, error)
}

type APIHandler struct {
	collaborator Collaborator
	sessions     *session.Manager
	metrics      *metrics.Metrics
	log          logger.Logger
}

func NewAPIHandler(c Collaborator, sessions *session.Manager, m *metrics.Metrics, log logger.Logger) *APIHandler {
	return &APIHandler{
		collaborator: c,
		sessions:     sessions,
		metrics:      m,
		log:          log,
	}
}

// RenderHandler serves the self-contained preview document for a
// business's generated website. A business with no generated source is
// indistinguishable from a missing one: both are 404. Collaborator
// failures surface as a generic 500 with no internal detail.
func (h *APIHandler) RenderHandler(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "businessID")

	biz, err := h.collaborator.GetBusiness(r.Context(), businessID)
	if err != nil {
		if errors.Is(err, upstream.ErrNotFound) {
			h.metrics.PreviewsServed.WithLabelValues("not_found").Inc()
			http.Error(w, "Website not found", http.StatusNotFound)
			return
		}
		h.log.Error("failed to fetch business for preview", map[string]interface{}{
			"business_id": businessID,
			"error":       err.Error(),
		})
		h.metrics.PreviewsServed.WithLabelValues("error").Inc()
		http.Error(w, "Failed to load website", http.StatusInternalServerError)
		return
	}

	if biz.GeneratedSource == "" {
		h.metrics.PreviewsServed.WithLabelValues("not_found").Inc()
		http.Error(w, "Website not found", http.StatusNotFound)
		return
	}

	start := time.Now()
	doc, err := render.Assemble(render.Sanitize(biz.GeneratedSource), biz.Name)
	if err != nil {
		h.log.Error("failed to assemble preview", map[string]interface{}{
			"business_id": businessID,
			"error":       err.Error(),
		})
		h.metrics.PreviewsServed.WithLabelValues("error").Inc()
		http.Error(w, "Failed to load website", http.StatusInternalServerError)
		return
	}
	h.metrics.PreviewAssembly.Observe(time.Since(start).Seconds())
	h.metrics.PreviewsServed.WithLabelValues("ok").Inc()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(doc))
}

func (h *APIHandler) GenerateWebsiteHandler(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "businessID")

	res, err := h.collaborator.GenerateWebsite(r.Context(), businessID)
	if err != nil {
		h.respondCollaboratorError(w, businessID, err, "failed to generate website")
		return
	}

	if res.Success {
		h.metrics.Generations.WithLabelValues("ok").Inc()
	} else {
		h.metrics.Generations.WithLabelValues("rejected").Inc()
	}
	writeJSON(w, http.StatusOK, res)
}

type customizeRequest struct {
	Message string `json:"message"`
}

// CustomizeHandler runs a single customization exchange without session
// semantics: no reveal, no transcript. Used by callers that manage their
// own conversation state.
func (h *APIHandler) CustomizeHandler(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "businessID")

	var req customizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "Message is required", http.StatusBadRequest)
		return
	}

	res, err := h.collaborator.Customize(r.Context(), businessID, req.Message)
	if err != nil {
		h.respondCollaboratorError(w, businessID, err, "failed to customize website")
		return
	}

	if res.Success {
		h.metrics.CustomizeExchanges.WithLabelValues("ok").Inc()
	} else {
		h.metrics.CustomizeExchanges.WithLabelValues("rejected").Inc()
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *APIHandler) RemainingMessagesHandler(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "businessID")

	quota, err := h.collaborator.RemainingMessages(r.Context(), businessID)
	if err != nil {
		h.respondCollaboratorError(w, businessID, err, "failed to fetch quota")
		return
	}
	writeJSON(w, http.StatusOK, quota)
}

// GetSessionHandler returns the live customization session for a
// business, opening it on first access.
func (h *APIHandler) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "businessID")

	s, err := h.sessions.Open(r.Context(), businessID)
	if err != nil {
		h.respondCollaboratorError(w, businessID, err, "failed to open session")
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

// PostSessionMessageHandler sends one message through the session and
// returns the immediate snapshot; the reveal continues in the background
// and clients poll the session for progress.
func (h *APIHandler) PostSessionMessageHandler(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "businessID")

	var req customizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "Message is required", http.StatusBadRequest)
		return
	}

	s, err := h.sessions.Open(r.Context(), businessID)
	if err != nil {
		h.respondCollaboratorError(w, businessID, err, "failed to open session")
		return
	}

	if err := s.Send(r.Context(), req.Message); err != nil {
		if errors.Is(err, session.ErrBusy) {
			writeJSON(w, http.StatusConflict, map[string]string{
				"error": "A message is already being processed",
			})
			return
		}
		if errors.Is(err, session.ErrNotEligible) {
			writeJSON(w, http.StatusForbidden, map[string]interface{}{
				"error":        "Customization limit reached. Please upgrade your plan to continue customizing your website.",
				"needsUpgrade": true,
			})
			return
		}
		if errors.Is(err, upstream.ErrNotFound) {
			http.Error(w, "Business not found", http.StatusNotFound)
			return
		}
		// The session already recorded the failure in the transcript;
		// return the snapshot so the client can show it.
		h.metrics.CustomizeExchanges.WithLabelValues("error").Inc()
		writeJSON(w, http.StatusOK, s.Snapshot())
		return
	}

	h.metrics.CustomizeExchanges.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, s.Snapshot())
}

func (h *APIHandler) respondCollaboratorError(w http.ResponseWriter, businessID string, err error, msg string) {
	switch {
	case errors.Is(err, upstream.ErrNotFound):
		http.Error(w, "Business not found", http.StatusNotFound)
	case errors.Is(err, upstream.ErrUnauthorized):
		h.log.Error(msg, map[string]interface{}{"business_id": businessID, "error": err.Error()})
		http.Error(w, "Upstream rejected our credentials", http.StatusBadGateway)
	default:
		h.log.Error(msg, map[string]interface{}{"business_id": businessID, "error": err.Error()})
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
