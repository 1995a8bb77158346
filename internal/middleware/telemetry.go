package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/microsoft/ApplicationInsights-Go/appinsights"
)

// Tracker is the part of appinsights.TelemetryClient the middleware needs.
type Tracker interface {
	Track(telemetry appinsights.Telemetry)
}

// NewTelemetryClient returns nil when no instrumentation key is configured.
func NewTelemetryClient(instrumentationKey, role string) appinsights.TelemetryClient {
	if instrumentationKey == "" {
		return nil
	}
	telemetryConfig := appinsights.NewTelemetryConfiguration(instrumentationKey)
	// Configure how many items can be sent in one call to the data collector:
	telemetryConfig.MaxBatchSize = 8192
	// Configure the maximum delay before sending queued telemetry:
	telemetryConfig.MaxBatchInterval = 2 * time.Second

	client := appinsights.NewTelemetryClientFromConfig(telemetryConfig)
	client.Context().Tags.Cloud().SetRole(role)
	return client
}

// FlushTelemetry sends queued items, waiting at most timeout.
func FlushTelemetry(client appinsights.TelemetryClient, timeout time.Duration) {
	if client == nil {
		return
	}
	select {
	case <-client.Channel().Close(timeout):
	case <-time.After(timeout + time.Second):
	}
}

// Telemetry reports one request item per call under the given operation name.
// A nil tracker disables it.
func Telemetry(tracker Tracker, name string, clk clock.Clock) Middleware {
	return func(next http.Handler) http.Handler {
		if tracker == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := clk.Now()
			rw := NewResponseWriterWithStatusCode(w)
			next.ServeHTTP(rw, r)

			scheme := "https"
			if r.TLS == nil {
				scheme = "http"
			}
			telemetry := appinsights.NewRequestTelemetry(r.Method,
				fmt.Sprintf("%s://%s%s", scheme, r.Host, r.URL.Path),
				clk.Now().Sub(start),
				strconv.Itoa(rw.StatusCode()))
			telemetry.Name = name
			telemetry.Success = rw.StatusCode() < http.StatusBadRequest
			tracker.Track(telemetry)
		})
	}
}
