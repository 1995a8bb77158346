package middleware

import (
	"net/http"

	"code.cloudfoundry.org/clock"
	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries the id assigned to each request.
const RequestIDHeader = "X-Request-ID"

// RequestLogger tags every request with an id (reusing an inbound X-Request-ID) and logs
// one line when the handler returns.
func RequestLogger(logger *zap.SugaredLogger, clk clock.Clock) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := clk.Now()

			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = newRequestID()
			}
			w.Header().Set(RequestIDHeader, requestID)

			rw := NewResponseWriterWithStatusCode(w)
			next.ServeHTTP(rw, r)

			logger.Infow("request",
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"status", rw.StatusCode(),
				"duration", clk.Now().Sub(start),
			)
		})
	}
}

func newRequestID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return "unknown"
	}
	return id.String()
}
