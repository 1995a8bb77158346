package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"code.cloudfoundry.org/clock"
	"github.com/james-gibson/meetupDemystifyingWeatherAPI/internal/config"
	"github.com/james-gibson/meetupDemystifyingWeatherAPI/internal/handler"
	"github.com/james-gibson/meetupDemystifyingWeatherAPI/internal/middleware"
	"github.com/james-gibson/meetupDemystifyingWeatherAPI/internal/repository"
	"github.com/james-gibson/meetupDemystifyingWeatherAPI/internal/server"
	"github.com/james-gibson/meetupDemystifyingWeatherAPI/internal/service"
	"github.com/james-gibson/meetupDemystifyingWeatherAPI/internal/web"
	"go.uber.org/zap"
)

func main() {
	logger := config.GetLogger()
	if err := run(logger); err != nil {
		logger.Errorw("server stopped", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("server stopped")
	_ = logger.Sync()
}

func run(logger *zap.SugaredLogger) error {
	if config.GetForecastAPIKey() == "" {
		logger.Warn("FORECAST_API_KEY is not set; forecast requests will fail")
	}

	forecastRepo := repository.NewForecastRepository(repository.OptionsFromConfig())
	forecastService := service.NewForecastService(forecastRepo)

	deps := server.Dependencies{
		ForecastHandler: handler.NewForecastHandler(forecastService),
		Static:          web.StaticHandler(config.GetPublicDir()),
		Logger:          logger,
		Clock:           clock.NewClock(),
	}
	telemetryClient := middleware.NewTelemetryClient(config.GetAppInsightsInstrumentationKey(), "personal-forecast")
	if telemetryClient != nil {
		deps.Tracker = telemetryClient
		defer middleware.FlushTelemetry(telemetryClient, config.GetShutdownTimeout())
	}

	port := config.GetServerPort()
	l, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := server.NewHTTPServer(":"+port, server.NewRouter(deps))
	logger.Infof("Personal forecast server listening on port %s", port)
	return server.Serve(ctx, srv, l, config.GetShutdownTimeout(), logger)
}
