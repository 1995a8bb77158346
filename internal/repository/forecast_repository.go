package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/james-gibson/meetupDemystifyingWeatherAPI/internal/config"
)

// Custom error types
var (
	ErrAPIKeyMissing   = errors.New("API key missing")
	ErrExternalAPI     = errors.New("external API error")
	ErrUpstreamTimeout = errors.New("external API timeout")
	ErrInvalidPayload  = errors.New("external API returned invalid JSON")
)

// maxBodyBytes caps how much of a provider response is read.
const maxBodyBytes = 8 << 20

// ForecastRepository defines the interface for forecast provider access
type ForecastRepository interface {
	GetForecast(ctx context.Context, latitude, longitude string) (json.RawMessage, error)
}

// Options configures the provider client. Zero values are filled from config.
type Options struct {
	APIURL     string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// OptionsFromConfig reads the provider settings from the process configuration.
func OptionsFromConfig() Options {
	return Options{
		APIURL:  config.GetForecastApiUrl(),
		APIKey:  config.GetForecastAPIKey(),
		Timeout: config.GetForecastTimeout(),
	}
}

// forecastRepository implements ForecastRepository
type forecastRepository struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	timeout    time.Duration
}

// NewForecastRepository creates a provider client. It is built once at startup and shared
// by all requests; nothing in it is mutated afterwards.
func NewForecastRepository(opts Options) ForecastRepository {
	defaults := OptionsFromConfig()
	if opts.APIURL == "" {
		opts.APIURL = defaults.APIURL
	}
	if opts.APIKey == "" {
		opts.APIKey = defaults.APIKey
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &forecastRepository{
		httpClient: client,
		apiURL:     opts.APIURL,
		apiKey:     opts.APIKey,
		timeout:    opts.Timeout,
	}
}

// GetForecast makes exactly one provider call and returns its JSON body untouched.
func (r *forecastRepository) GetForecast(ctx context.Context, latitude, longitude string) (json.RawMessage, error) {
	if r.apiKey == "" {
		return nil, ErrAPIKeyMissing
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.forecastURL(latitude, longitude), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrExternalAPI, errorDetail(err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, r.classify(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, r.classify(err)
	}
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("%w: response too large (over %d bytes)", ErrExternalAPI, maxBodyBytes)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: provider returned status %d: %s", ErrExternalAPI, resp.StatusCode, snippet(body))
	}
	if !json.Valid(body) {
		return nil, ErrInvalidPayload
	}

	return json.RawMessage(body), nil
}

func (r *forecastRepository) forecastURL(latitude, longitude string) string {
	return fmt.Sprintf("%s/%s/%s,%s", r.apiURL,
		url.PathEscape(r.apiKey),
		url.PathEscape(latitude),
		url.PathEscape(longitude))
}

func (r *forecastRepository) classify(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: no response within %s", ErrUpstreamTimeout, r.timeout)
	}
	return fmt.Errorf("%w: %s", ErrExternalAPI, errorDetail(err))
}

// errorDetail drops the request URL from transport errors: it carries the API key.
func errorDetail(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err.Error()
	}
	return err.Error()
}

func snippet(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
