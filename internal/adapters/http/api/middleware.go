package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/okian/courtrank/pkg/metrics"
)

// MetricsMiddleware records request counts and durations for endpoint. Error
// responses are also counted by their API error code, or by a status class
// when the handler did not write one.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		ms := float64(time.Since(start).Milliseconds())
		status := strconv.Itoa(rec.status)
		metrics.RecordHTTPRequest(endpoint, r.Method, status)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, status, ms)

		if rec.status < http.StatusBadRequest {
			return
		}
		kind := rec.code
		if kind == "" {
			kind = statusClass(rec.status)
		}
		metrics.RecordErrorByEndpoint(endpoint, r.Method, kind)
		metrics.RecordErrorByType(kind, severity(rec.status))
		metrics.RecordErrorLatency("http", kind, ms)
	}
}

func statusClass(status int) string {
	switch {
	case status == http.StatusNotFound:
		return "not_found"
	case status == http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case status >= http.StatusInternalServerError:
		return "server_error"
	default:
		return "client_error"
	}
}

// severity: server faults are high, backpressure medium, caller mistakes low.
func severity(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return "high"
	case status == http.StatusTooManyRequests:
		return "medium"
	default:
		return "low"
	}
}

// statusRecorder remembers the status and the API error code of a response.
type statusRecorder struct {
	http.ResponseWriter
	status int
	code   string
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) setErrorCode(code string) { r.code = code }

// Unwrap exposes the underlying writer to http.ResponseController.
func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }
