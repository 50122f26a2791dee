package analyzeepic

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"epic-coverage/internal/common/logger"
	"epic-coverage/internal/llm"
	"epic-coverage/internal/models"
)

func chatContent(content string) string {
	body := map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]interface{}{"content": content}},
		},
	}
	data, _ := json.Marshal(body)
	return string(data)
}

func newHandler(t *testing.T, baseURL, apiKey string, includeLikelihood bool) *Handler {
	client := llm.NewClient(llm.Config{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Model:   "gpt-test",
		Policy:  llm.RetryPolicy{MaxAttempts: 2, Backoff: time.Millisecond},
	}, logger.NewTestLogger(t), nil)
	return NewHandler(DefaultConfig(includeLikelihood), client, logger.NewTestLogger(t))
}

func postAnalyze(h *Handler, body interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/analyze-epic", bytes.NewReader(data))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func coveredRequest() models.AnalyzeRequest {
	return models.AnalyzeRequest{
		Epic: models.Epic{Name: "Billing fixes", Description: "Reduce invoice complaints"},
		Stories: []models.Story{
			{Key: "B-1", Summary: "Show invoice history", Intent: "billing"},
		},
		Tickets: []models.Ticket{
			{Intent: "billing", Subject: "Wrong total", Description: "Charged twice"},
			{Intent: "billing", Subject: "Missing invoice", Description: "No PDF"},
		},
		Intents: []string{"billing"},
	}
}

func TestServeHTTP_Success(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatContent(`{"score": 0.85, "summary": "solid", "suggestions": ["a", "b", "c"], "likelihoodPercent": 64}`)))
	}))
	defer upstream.Close()

	h := newHandler(t, upstream.URL, "sk-test", true)
	rec := postAnalyze(h, coveredRequest())

	require.Equal(t, http.StatusOK, rec.Code)

	var result models.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.InDelta(t, 0.85, result.Score, 1e-9)
	assert.Equal(t, "solid", result.Summary)
	assert.Equal(t, []string{"a", "b", "c"}, result.Suggestions)
	require.NotNil(t, result.LikelihoodPercent)
	assert.Equal(t, 64, *result.LikelihoodPercent)
}

func TestServeHTTP_MissingCredential_NoUpstreamCall(t *testing.T) {
	var calls int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer upstream.Close()

	h := newHandler(t, upstream.URL, "", true)
	rec := postAnalyze(h, coveredRequest())

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Missing OPENAI_API_KEY")
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestServeHTTP_MalformedModelContentDegradesToFallback(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatContent("definitely not json")))
	}))
	defer upstream.Close()

	h := newHandler(t, upstream.URL, "sk-test", true)
	rec := postAnalyze(h, coveredRequest())

	require.Equal(t, http.StatusOK, rec.Code)

	var result models.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "LLM returned no summary.", result.Summary)
	assert.Len(t, result.Suggestions, 3)

	// all billing tickets covered by a billing story: score 1, coverage 1
	assert.InDelta(t, 1.0, result.Score, 1e-9)
	require.NotNil(t, result.LikelihoodPercent)
	assert.Equal(t, 100, *result.LikelihoodPercent)
}

func TestServeHTTP_FallbackWithNoIntentsOrStories(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatContent("{}")))
	}))
	defer upstream.Close()

	h := newHandler(t, upstream.URL, "sk-test", true)
	rec := postAnalyze(h, models.AnalyzeRequest{})

	require.Equal(t, http.StatusOK, rec.Code)

	var result models.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 0.0, result.Score)
	require.NotNil(t, result.LikelihoodPercent)
	assert.Equal(t, 0, *result.LikelihoodPercent)
}

func TestServeHTTP_UpstreamFailureAfterRetry(t *testing.T) {
	var calls int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("overloaded"))
	}))
	defer upstream.Close()

	h := newHandler(t, upstream.URL, "sk-test", true)
	rec := postAnalyze(h, coveredRequest())

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "OpenAI error")
	assert.Contains(t, rec.Body.String(), "overloaded")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestServeHTTP_RetryReflectsSecondAttempt(t *testing.T) {
	var calls int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(chatContent(`{"score": 0.4, "summary": "ok", "suggestions": ["x"], "likelihoodPercent": 40}`)))
	}))
	defer upstream.Close()

	h := newHandler(t, upstream.URL, "sk-test", true)
	rec := postAnalyze(h, coveredRequest())

	require.Equal(t, http.StatusOK, rec.Code)

	var result models.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.InDelta(t, 0.4, result.Score, 1e-9)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestServeHTTP_LikelihoodVariantDisabled(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatContent(`{"score": 0.5, "summary": "fine", "suggestions": ["a"]}`)))
	}))
	defer upstream.Close()

	h := newHandler(t, upstream.URL, "sk-test", false)
	rec := postAnalyze(h, coveredRequest())

	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	_, present := raw["likelihoodPercent"]
	assert.False(t, present)
}

func TestServeHTTP_InvalidRequestBodyRejected(t *testing.T) {
	h := newHandler(t, "http://unused", "sk-test", true)

	rec := postAnalyze(h, map[string]interface{}{"intents": "not-an-array"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid request")

	req := httptest.NewRequest(http.MethodPost, "/api/analyze-epic", bytes.NewReader([]byte("{broken")))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServeHTTP_TicketsTruncatedBeforePrompting(t *testing.T) {
	var promptLen int
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) == 2 {
			promptLen = len(req.Messages[1].Content)
		}
		w.Write([]byte(chatContent("{}")))
	}))
	defer upstream.Close()

	input := coveredRequest()
	input.Tickets = nil
	for i := 0; i < 500; i++ {
		input.Tickets = append(input.Tickets, models.Ticket{
			Intent: "billing", Subject: "s", Description: "d",
		})
	}

	h := newHandler(t, upstream.URL, "sk-test", true)
	rec := postAnalyze(h, input)

	require.Equal(t, http.StatusOK, rec.Code)
	// 50 tickets render well under 10KB; 500 would not
	assert.Less(t, promptLen, 10_000)
}
