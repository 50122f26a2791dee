// Package suggeststories proposes up to three new candidate stories that
// improve intent coverage, sanitizing each model candidate independently.
package suggeststories

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"epic-coverage/internal/common/errors"
	"epic-coverage/internal/common/logger"
	"epic-coverage/internal/common/metrics"
	"epic-coverage/internal/common/validation"
	"epic-coverage/internal/llm"
	"epic-coverage/internal/models"
	"epic-coverage/internal/prompt"
	"epic-coverage/internal/truncate"
	"epic-coverage/internal/validate"
)

const Operation = "suggest-stories"

// ModelClient is the slice of the llm client the handler needs.
type ModelClient interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}

type Handler struct {
	config   *Config
	client   ModelClient
	logger   logger.Logger
	errorOut *errors.ErrorHandler
}

func NewHandler(config *Config, client ModelClient, log logger.Logger) *Handler {
	opLogger := log.With(map[string]interface{}{"operation": Operation})
	return &Handler{
		config:   config,
		client:   client,
		logger:   opLogger,
		errorOut: errors.NewErrorHandler(opLogger),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			metrics.RequestsTotal.WithLabelValues(Operation, "error").Inc()
			h.errorOut.WriteError(w, errors.NewUnhandledError(fmt.Errorf("panic: %v", rec)))
		}
	}()

	input, ok := decodeRequest(w, r, h.errorOut)
	if !ok {
		metrics.RequestsTotal.WithLabelValues(Operation, "rejected").Inc()
		return
	}

	output, err := h.execute(r.Context(), input)
	if err != nil {
		metrics.RequestsTotal.WithLabelValues(Operation, "error").Inc()
		h.errorOut.WriteError(w, err)
		return
	}

	metrics.RequestsTotal.WithLabelValues(Operation, "ok").Inc()
	writeJSON(w, http.StatusOK, output)
}

func (h *Handler) execute(ctx context.Context, input *models.SuggestRequest) (*models.SuggestResponse, error) {
	stories := truncate.Items(input.ExistingStories, h.config.MaxStories)
	tickets := truncate.Items(input.Tickets, h.config.MaxTickets)

	system, user := prompt.Suggest(prompt.SuggestInput{
		Epic:            input.Epic,
		Intents:         input.Intents,
		ExistingStories: stories,
		Tickets:         tickets,
	})

	content, err := h.client.Complete(ctx, llm.Request{
		System:      system,
		User:        user,
		Temperature: h.config.Temperature,
		MaxTokens:   h.config.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	if parseErr := validate.CheckJSON(content); parseErr != nil {
		h.logger.WithError(errors.NewMalformedResponseError(parseErr)).
			Warn("model output is not parseable JSON, degrading to defaults", nil)
	}

	candidates := validate.SanitizeStories(content, input.Intents)
	if len(candidates) == 0 {
		metrics.FallbackActivations.WithLabelValues("stories").Inc()
		h.logger.Warn("model returned no usable stories", nil)
	}

	return &models.SuggestResponse{Stories: candidates}, nil
}

func decodeRequest(w http.ResponseWriter, r *http.Request, errorOut *errors.ErrorHandler) (*models.SuggestRequest, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		errorOut.WriteError(w, errors.NewUnhandledError(err))
		return nil, false
	}

	var generic map[string]interface{}
	if err := json.Unmarshal(body, &generic); err != nil {
		writeValidationFailure(w, &validation.ValidationResult{
			Errors: []validation.ValidationError{{Field: "(root)", Message: "body is not a JSON object"}},
		})
		return nil, false
	}

	result, err := validation.Validate(validation.SuggestRequestSchema, generic)
	if err != nil {
		errorOut.WriteError(w, errors.NewUnhandledError(err))
		return nil, false
	}
	if !result.Valid {
		writeValidationFailure(w, result)
		return nil, false
	}

	var input models.SuggestRequest
	if err := json.Unmarshal(body, &input); err != nil {
		errorOut.WriteError(w, errors.NewUnhandledError(err))
		return nil, false
	}
	return &input, true
}

func writeValidationFailure(w http.ResponseWriter, result *validation.ValidationResult) {
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error":  "Invalid request",
		"fields": result.Errors,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
