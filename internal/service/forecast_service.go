package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/james-gibson/meetupDemystifyingWeatherAPI/internal/config"
	"github.com/james-gibson/meetupDemystifyingWeatherAPI/internal/model"
	"github.com/james-gibson/meetupDemystifyingWeatherAPI/internal/repository"
	"go.uber.org/zap"
)

var (
	ErrMissingCoordinates = errors.New("latitude and longitude are required")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// ForecastServiceInterface is what the HTTP layer depends on.
type ForecastServiceInterface interface {
	GetForecast(ctx context.Context, req model.ForecastRequest) (json.RawMessage, error)
}

type ForecastService struct {
	ForecastRepo repository.ForecastRepository
	Logger       *zap.SugaredLogger
}

// NewForecastService wires a service to the given repository, or to a provider client built
// from configuration when none is passed.
func NewForecastService(repo ...repository.ForecastRepository) *ForecastService {
	var forecastRepo repository.ForecastRepository
	if len(repo) > 0 && repo[0] != nil {
		forecastRepo = repo[0]
	} else {
		forecastRepo = repository.NewForecastRepository(repository.OptionsFromConfig())
	}
	return &ForecastService{
		ForecastRepo: forecastRepo,
		Logger:       config.GetLogger(),
	}
}

// GetForecast validates the request and performs at most one provider call.
func (s *ForecastService) GetForecast(ctx context.Context, req model.ForecastRequest) (json.RawMessage, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	lat, lon, err := normalize(req)
	if err != nil {
		return nil, err
	}

	forecast, err := s.ForecastRepo.GetForecast(ctx, lat, lon)
	if err != nil {
		s.logger().Warnw("forecast provider call failed", "latitude", lat, "longitude", lon, "error", err)
		return nil, err
	}
	return forecast, nil
}

// ValidateRequest checks that both coordinates are present and are decimal degrees in range.
func ValidateRequest(req model.ForecastRequest) error {
	_, _, err := normalize(req)
	return err
}

// normalize returns both coordinates as plain decimal strings, the form sent upstream.
func normalize(req model.ForecastRequest) (string, string, error) {
	lat := strings.TrimSpace(req.Latitude)
	lon := strings.TrimSpace(req.Longitude)
	if lat == "" || lon == "" {
		return "", "", ErrMissingCoordinates
	}
	lat, err := checkDegrees("latitude", lat, 90)
	if err != nil {
		return "", "", err
	}
	lon, err = checkDegrees("longitude", lon, 180)
	if err != nil {
		return "", "", err
	}
	return lat, lon, nil
}

func checkDegrees(name, value string, limit float64) (string, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(v) {
		return "", fmt.Errorf("%w: %s %q is not a number", ErrInvalidCoordinates, name, value)
	}
	if v < -limit || v > limit {
		return "", fmt.Errorf("%w: %s %s is outside [-%g, %g]", ErrInvalidCoordinates, name, value, limit, limit)
	}
	return strconv.FormatFloat(v, 'f', -1, 64), nil
}

func (s *ForecastService) logger() *zap.SugaredLogger {
	if s.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return s.Logger
}
