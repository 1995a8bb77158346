package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/james-gibson/meetupDemystifyingWeatherAPI/internal/config"
	"github.com/james-gibson/meetupDemystifyingWeatherAPI/internal/handler"
	"github.com/james-gibson/meetupDemystifyingWeatherAPI/internal/middleware"
	"go.uber.org/zap"
)

// Dependencies are the pieces the router is assembled from.
type Dependencies struct {
	ForecastHandler *handler.ForecastHandler
	// Static serves the page and client script; every unmatched path goes here.
	Static  http.Handler
	Logger  *zap.SugaredLogger
	Tracker middleware.Tracker
	Clock   clock.Clock
}

// NewRouter registers /forecast, /healthz and the static files.
func NewRouter(deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	clk := deps.Clock
	if clk == nil {
		clk = clock.NewClock()
	}

	mux := http.NewServeMux()
	mux.Handle("/forecast", middleware.Telemetry(deps.Tracker, "GET /forecast", clk)(
		http.HandlerFunc(deps.ForecastHandler.HandleForecast)))
	mux.HandleFunc("/healthz", handler.HandleHealth)
	if deps.Static != nil {
		mux.Handle("/", middleware.Telemetry(deps.Tracker, "static", clk)(deps.Static))
	}

	return middleware.Chain(mux,
		middleware.RequestLogger(logger, clk),
		middleware.Recover(logger),
	)
}

// NewHTTPServer applies the configured server timeouts.
func NewHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: config.GetServerTimeoutDuration("read_header_timeout", 15*time.Second),
		ReadTimeout:       config.GetServerTimeoutDuration("read_timeout", 15*time.Second),
		WriteTimeout:      config.GetServerTimeoutDuration("write_timeout", 10*time.Second),
		IdleTimeout:       config.GetServerTimeoutDuration("idle_timeout", 30*time.Second),
	}
}

// Serve runs srv on l until ctx is done, then shuts it down within shutdownTimeout.
func Serve(ctx context.Context, srv *http.Server, l net.Listener, shutdownTimeout time.Duration, logger *zap.SugaredLogger) error {
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Serve(l)
	}()

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Infow("shutting down", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-serverErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
