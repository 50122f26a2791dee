// Package analyzeepic scores how well an epic's stories cover the selected
// ticket intents: truncate input, build prompts, invoke the model, sanitize
// its output, and fall back to the deterministic scorer for absent numerics.
package analyzeepic

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
	"epic-coverage/internal/scoring"
	"epic-coverage/internal/truncate"
	"epic-coverage/internal/validate"
)

const Operation = "analyze-epic"

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

func (h *Handler) execute(ctx context.Context, input *models.AnalyzeRequest) (*models.AnalysisResult, error) {
	stories := truncate.Items(input.Stories, h.config.MaxStories)
	tickets := truncate.Items(input.Tickets, h.config.MaxTickets)

	system, user := prompt.Analyze(prompt.AnalyzeInput{
		Epic:              input.Epic,
		Stories:           stories,
		Tickets:           tickets,
		Intents:           input.Intents,
		IncludeLikelihood: h.config.IncludeLikelihood,
	})

	content, err := h.client.Complete(ctx, llm.Request{
		System:      system,
		User:        user,
		Temperature: h.config.Temperature,
	})
	if err != nil {
		return nil, err
	}

	if parseErr := validate.CheckJSON(content); parseErr != nil {
		h.logger.WithError(errors.NewMalformedResponseError(parseErr)).
			Warn("model output is not parseable JSON, degrading to defaults", nil)
	}

	sanitized := validate.SanitizeAnalysis(content)

	result := &models.AnalysisResult{
		Score:       sanitized.Score,
		Summary:     sanitized.Summary,
		Suggestions: sanitized.Suggestions,
	}

	// The fallback formulas use input data alone, independent of whatever
	// the model did return for the other field.
	if !sanitized.ScoreFromModel {
		metrics.FallbackActivations.WithLabelValues("score").Inc()
		result.Score = scoring.AlignmentScore(input.Stories, input.Tickets, input.Intents)
		h.logger.Info("fallback score applied", map[string]interface{}{"score": result.Score})
	}

	if h.config.IncludeLikelihood {
		likelihood := sanitized.LikelihoodPercent
		if !sanitized.LikelihoodFromModel {
			metrics.FallbackActivations.WithLabelValues("likelihoodPercent").Inc()
			fbScore := scoring.AlignmentScore(input.Stories, input.Tickets, input.Intents)
			coverage := scoring.IntentCoverage(input.Stories, input.Intents)
			likelihood = scoring.LikelihoodPercent(fbScore, coverage)
			h.logger.Info("fallback likelihood applied", map[string]interface{}{"likelihoodPercent": likelihood})
		}
		result.LikelihoodPercent = &likelihood
	}

	return result, nil
}

// decodeRequest reads the body, checks it against the operation schema, and
// unmarshals it. Returns false after writing the failure response.
func decodeRequest(w http.ResponseWriter, r *http.Request, errorOut *errors.ErrorHandler) (*models.AnalyzeRequest, bool) {
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

	result, err := validation.Validate(validation.AnalyzeRequestSchema, generic)
	if err != nil {
		errorOut.WriteError(w, errors.NewUnhandledError(err))
		return nil, false
	}
	if !result.Valid {
		writeValidationFailure(w, result)
		return nil, false
	}

	var input models.AnalyzeRequest
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
