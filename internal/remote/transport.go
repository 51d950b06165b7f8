package remote

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// LoggingTransport wraps next with structured request logging.
// Only metadata is logged, never bodies or headers.
func LoggingTransport(log *zap.Logger, next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	if log == nil {
		return next
	}
	return roundTripFunc(func(r *http.Request) (*http.Response, error) {
		start := time.Now()
		resp, err := next.RoundTrip(r)
		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("dur", time.Since(start)),
		}
		if err != nil {
			log.Warn("http", append(fields, zap.Error(err))...)
			return resp, err
		}
		log.Debug("http", append(fields, zap.Int("status", resp.StatusCode))...)
		return resp, nil
	})
}
