package integrationtest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"time"

	"github.com/james-gibson/meetupDemystifyingWeatherAPI/internal/handler"
	"github.com/james-gibson/meetupDemystifyingWeatherAPI/internal/repository"
	"github.com/james-gibson/meetupDemystifyingWeatherAPI/internal/server"
	"github.com/james-gibson/meetupDemystifyingWeatherAPI/internal/service"
	"github.com/james-gibson/meetupDemystifyingWeatherAPI/internal/web"
	"go.uber.org/zap"
)

const (
	testAPIKey    = "test_api_key"
	slowLatitude  = "10"
	emptyLatitude = "20"
)

// Forecast returned by the mock provider for any known position.
const mockForecastBody = `{"latitude":37.8267,"longitude":-122.4233,"timezone":"America/Los_Angeles","offset":-8,"currently":{"time":1453402675,"summary":"Clear","icon":"clear-day","temperature":72,"apparentTemperature":72,"humidity":0.5,"pressure":1020.1},"daily":{"data":[]}}`

// mockProvider counts calls so tests can assert that invalid requests never reach it.
type mockProvider struct {
	*httptest.Server
	calls int32
}

func (p *mockProvider) Calls() int32 {
	return atomic.LoadInt32(&p.calls)
}

// newMockForecastApi mimics {api_url}/{key}/{lat},{lon}.
func newMockForecastApi() *mockProvider {
	p := &mockProvider{}
	p.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&p.calls, 1)

		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/forecast/"), "/")
		if len(parts) != 2 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if parts[0] != testAPIKey {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"code":403,"error":"permission denied"}`))
			return
		}
		latLon := strings.SplitN(parts[1], ",", 2)
		switch latLon[0] {
		case slowLatitude:
			select {
			case <-time.After(2 * time.Second):
			case <-r.Context().Done():
			}
			return
		case emptyLatitude:
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(mockForecastBody))
	}))
	return p
}

// runTestServer wires the real provider client, service, handler and router against provider.
func runTestServer(providerURL, apiKey string) *httptest.Server {
	forecastRepo := repository.NewForecastRepository(repository.Options{
		APIURL:  providerURL + "/forecast",
		APIKey:  apiKey,
		Timeout: 200 * time.Millisecond,
	})
	forecastService := service.NewForecastService(forecastRepo)
	forecastService.Logger = zap.NewNop().Sugar()

	forecastHandler := handler.NewForecastHandler(forecastService)
	forecastHandler.Logger = zap.NewNop().Sugar()

	return httptest.NewServer(server.NewRouter(server.Dependencies{
		ForecastHandler: forecastHandler,
		Static:          web.StaticHandler(""),
		Logger:          zap.NewNop().Sugar(),
	}))
}
