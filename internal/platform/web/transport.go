package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// RequestIDTransport stamps every outgoing request with a request id.
// An id already present in the request context is reused, otherwise a new one is generated.
func RequestIDTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		if r.Header.Get(RequestIDHeader) != "" {
			return next.RoundTrip(r)
		}
		reqID, ok := GetRequestID(r.Context())
		if !ok || reqID == "" {
			reqID = uuid.NewString()
		}
		// RoundTrippers must not modify the caller's request.
		r = r.Clone(WithRequestID(r.Context(), reqID))
		r.Header.Set(RequestIDHeader, reqID)
		return next.RoundTrip(r)
	})
}

// LoggingTransport logs each outgoing request with its outcome. The request id
// comes from the context via logger.ContextHandler.
func LoggingTransport(logger *slog.Logger, next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		start := time.Now()
		resp, err := next.RoundTrip(r)
		attrs := []any{
			"method", r.Method,
			"url", r.URL.Redacted(),
			"duration_ms", float64(time.Since(start).Nanoseconds()) / 1e6,
		}
		if err != nil {
			logger.WarnContext(r.Context(), "Request failed", append(attrs, "error", err)...)
			return nil, err
		}
		attrs = append(attrs, "status", resp.StatusCode)
		if resp.StatusCode >= http.StatusBadRequest {
			logger.WarnContext(r.Context(), "Request completed", attrs...)
		} else {
			logger.DebugContext(r.Context(), "Request completed", attrs...)
		}
		return resp, nil
	})
}
