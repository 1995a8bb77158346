package client

import (
	"context"
	"errors"

	"github.com/james-gibson/meetupDemystifyingWeatherAPI/internal/model"
)

var (
	ErrPositionUnavailable = errors.New("position unavailable")
	ErrPermissionDenied    = errors.New("permission to read position denied")
)

// Locator yields the viewer's current position once.
type Locator interface {
	CurrentPosition(ctx context.Context) (model.Coordinates, error)
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func(ctx context.Context) (model.Coordinates, error)

func (f LocatorFunc) CurrentPosition(ctx context.Context) (model.Coordinates, error) {
	return f(ctx)
}

// StaticLocator always reports the same position.
type StaticLocator model.Coordinates

func (l StaticLocator) CurrentPosition(ctx context.Context) (model.Coordinates, error) {
	return model.Coordinates(l), nil
}
