// internal/api/handlers.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	stderrors "recipe-engine/internal/common/errors"
	"recipe-engine/internal/common/logger"
	"recipe-engine/internal/common/resilience"
	"recipe-engine/internal/common/validation"
	"recipe-engine/internal/models"
)

const maxRequestBody = 1 << 20 // 1 MiB

// QueryService is the handler's view of the query façade.
type QueryService interface {
	Query(ctx context.Context, req models.SearchRequest) (*models.QueryResult, error)
}

// IndexWriter is the handler's view of the index write path.
type IndexWriter interface {
	Index(ctx context.Context, recipe *models.Recipe) error
	Remove(ctx context.Context, recipeID string) error
}

// Invalidator drops cached results referencing a mutated recipe.
type Invalidator interface {
	InvalidateByRecipe(ctx context.Context, recipeID, reason string)
}

// Pinger reports liveness of one backing dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers wires HTTP endpoints to the façade and the index write path.
type Handlers struct {
	facade      QueryService
	indexer     IndexWriter
	invalidator Invalidator
	executor    *resilience.Executor
	health      map[string]Pinger
	logger      logger.Logger
}

func NewHandlers(
	facade QueryService,
	indexer IndexWriter,
	invalidator Invalidator,
	executor *resilience.Executor,
	health map[string]Pinger,
	log logger.Logger,
) *Handlers {
	return &Handlers{
		facade:      facade,
		indexer:     indexer,
		invalidator: invalidator,
		executor:    executor,
		health:      health,
		logger:      log.WithFields(map[string]interface{}{"component": "api"}),
	}
}

// Search handles POST /recipes/search. The body is schema-validated before it
// is decoded into the typed request so the caller gets field-level errors.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		h.writeError(w, r, stderrors.NewInvalidQueryError("unreadable request body"))
		return
	}

	var body map[string]interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		h.writeError(w, r, stderrors.NewInvalidQueryError("request body must be a JSON object"))
		return
	}
	if err := validation.ValidateSearchRequest(body); err != nil {
		h.writeError(w, r, stderrors.NewInvalidQueryError(err.Error()))
		return
	}

	var req models.SearchRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		h.writeError(w, r, stderrors.NewInvalidQueryError(err.Error()))
		return
	}

	result, err := h.facade.Query(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// IndexRecipe handles PUT /recipes/{id}/index. The write is idempotent:
// re-indexing the same recipe replaces its document.
func (h *Handlers) IndexRecipe(w http.ResponseWriter, r *http.Request) {
	recipeID := r.PathValue("id")
	if recipeID == "" {
		h.writeError(w, r, stderrors.NewInvalidQueryError("recipe id is required"))
		return
	}

	var recipe models.Recipe
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&recipe); err != nil {
		h.writeError(w, r, stderrors.NewInvalidQueryError("request body must be a recipe object"))
		return
	}
	if recipe.ID == "" {
		recipe.ID = recipeID
	}
	if recipe.ID != recipeID {
		h.writeError(w, r, stderrors.NewInvalidQueryError("recipe id in body does not match path"))
		return
	}

	err := h.executor.Execute(r.Context(), "index-recipe", func(ctx context.Context) error {
		return h.indexer.Index(ctx, &recipe)
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if h.invalidator != nil {
		h.invalidator.InvalidateByRecipe(r.Context(), recipeID, "recipe_indexed")
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "indexed", "recipeId": recipeID})
}

// RemoveRecipe handles DELETE /recipes/{id}/index. Removing an absent recipe
// succeeds; the operation is idempotent.
func (h *Handlers) RemoveRecipe(w http.ResponseWriter, r *http.Request) {
	recipeID := r.PathValue("id")
	if recipeID == "" {
		h.writeError(w, r, stderrors.NewInvalidQueryError("recipe id is required"))
		return
	}

	err := h.executor.Execute(r.Context(), "remove-recipe", func(ctx context.Context) error {
		return h.indexer.Remove(ctx, recipeID)
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if h.invalidator != nil {
		h.invalidator.InvalidateByRecipe(r.Context(), recipeID, "recipe_removed")
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "removed", "recipeId": recipeID})
}

// Health handles GET /healthz, pinging every registered dependency.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := http.StatusOK
	checks := make(map[string]string, len(h.health))

	for name, dep := range h.health {
		if err := dep.Ping(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			checks[name] = "ok"
		}
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "unhealthy"
	}
	h.writeJSON(w, status, map[string]interface{}{"status": state, "checks": checks})
}

type errorBody struct {
	Error errorPayload `json:"error"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	payload := errorPayload{Code: "INTERNAL", Message: "internal error"}
	status := http.StatusInternalServerError

	var stdErr *stderrors.StandardError
	if errors.As(err, &stdErr) {
		payload.Code = string(stdErr.Code)
		payload.Message = stdErr.Message
		payload.Details = stdErr.Details
		status = statusFor(stdErr.Code)
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
			"code":   payload.Code,
			"error":  err.Error(),
		})
	}

	h.writeJSON(w, status, errorBody{Error: payload})
}

func statusFor(code stderrors.ErrorCode) int {
	switch code {
	case stderrors.ErrCodeInvalidQuery:
		return http.StatusBadRequest
	case stderrors.ErrCodeNotFound:
		return http.StatusNotFound
	case stderrors.ErrCodeTimeout, stderrors.ErrCodeSearchTimeout:
		return http.StatusGatewayTimeout
	case stderrors.ErrCodeServiceDegraded:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Warn("response write failed", map[string]interface{}{"error": err.Error()})
	}
}
