package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/james-gibson/meetupDemystifyingWeatherAPI/internal/model"
	"go.uber.org/zap"
)

// Recover turns a panicking handler into a 500 with the usual error payload.
func Recover(logger *zap.SugaredLogger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := NewResponseWriterWithStatusCode(w)
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Errorw("panic serving request", "panic", rec, "method", r.Method, "path", r.URL.Path)
				if rw.WroteHeader() {
					return
				}
				rw.Header().Set("Content-Type", "application/json")
				rw.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(rw).Encode(model.NewErrorResponse(""))
			}()
			next.ServeHTTP(rw, r)
		})
	}
}
