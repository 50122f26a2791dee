package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"epic-coverage/internal/common/logger"
	"epic-coverage/internal/common/metrics"
	"epic-coverage/internal/common/observability"
)

// statusWriter captures the status code for logging and metrics.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// withMiddleware tags every request with an ID, records duration metrics,
// and logs the outcome.
func withMiddleware(next http.Handler, log logger.Logger, obs *observability.Observability) http.Handler {
	if obs == nil {
		obs = &observability.Observability{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		duration := time.Since(start)
		outcome := "ok"
		if sw.status >= 400 {
			outcome = "error"
		}

		metrics.RequestDuration.WithLabelValues(r.URL.Path).Observe(duration.Seconds())
		obs.RecordRequest(r.Context(), r.URL.Path, outcome)
		obs.RecordDuration(r.Context(), duration, r.URL.Path)

		log.Info("request handled", map[string]interface{}{
			"requestId": requestID,
			"method":    r.Method,
			"path":      r.URL.Path,
			"status":    sw.status,
			"durationMs": duration.Milliseconds(),
		})
	})
}
