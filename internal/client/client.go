package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/james-gibson/meetupDemystifyingWeatherAPI/internal/model"
	"go.uber.org/zap"
)

var (
	ErrUnexpectedStatus = errors.New("unexpected status from forecast proxy")
	ErrMalformedPayload = errors.New("malformed forecast payload")
	ErrForecastError    = errors.New("forecast payload carries an error")
)

const (
	locateFailedText        = "Could not determine your location."
	forecastUnavailableText = "Forecast unavailable."
	defaultLocateTimeout    = 10 * time.Second
	defaultFetchTimeout     = 10 * time.Second
)

// ForecastClient locates the viewer, asks the proxy for a forecast and renders it.
// One Run is one request; nothing is retried.
type ForecastClient struct {
	BaseURL       string
	HTTPClient    *http.Client
	Elements      Elements
	LocateTimeout time.Duration
	Logger        *zap.SugaredLogger
}

func NewForecastClient(baseURL string, httpClient ...*http.Client) *ForecastClient {
	client := &http.Client{Timeout: defaultFetchTimeout}
	if len(httpClient) > 0 && httpClient[0] != nil {
		client = httpClient[0]
	}
	return &ForecastClient{
		BaseURL:       strings.TrimRight(baseURL, "/"),
		HTTPClient:    client,
		Elements:      DefaultElements(),
		LocateTimeout: defaultLocateTimeout,
		Logger:        zap.NewNop().Sugar(),
	}
}

// ForecastURL is the proxy URL for coords.
func (c *ForecastClient) ForecastURL(coords model.Coordinates) string {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	return c.BaseURL + "/forecast?" + q.Encode()
}

// Fetch issues one GET to the proxy. Anything but a 200 with a JSON object is an error.
func (c *ForecastClient) Fetch(ctx context.Context, coords model.Coordinates) (Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ForecastURL(coords), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var errResp model.ErrorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Message != "" {
			return nil, fmt.Errorf("%w: %d: %s", ErrUnexpectedStatus, resp.StatusCode, errResp.Message)
		}
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var payload Payload
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil || payload == nil {
		return nil, ErrMalformedPayload
	}
	return payload, nil
}

// Run performs one locate, fetch and render cycle. Locate and fetch failures leave a
// fallback message in the status element. An error payload leaves the forecast fields untouched
// and shows the same fallback.
func (c *ForecastClient) Run(ctx context.Context, locator Locator, page Page) error {
	coords, err := c.locate(ctx, locator)
	if err != nil {
		c.logger().Warnw("could not determine position", "error", err)
		page.SetText(c.Elements.Status, locateFailedText)
		return err
	}

	payload, err := c.Fetch(ctx, coords)
	if err != nil {
		c.logger().Warnw("forecast request failed", "error", err)
		page.SetText(c.Elements.Status, forecastUnavailableText)
		return err
	}

	if !Render(payload, page, c.Elements) {
		c.logger().Warnw("forecast returned an error", "message", payload.ErrorMessage())
		page.SetText(c.Elements.Status, forecastUnavailableText)
		return fmt.Errorf("%w: %s", ErrForecastError, payload.ErrorMessage())
	}
	page.SetText(c.Elements.Status, "")
	return nil
}

// locate waits for the locator at most LocateTimeout, even if it ignores ctx.
func (c *ForecastClient) locate(ctx context.Context, locator Locator) (model.Coordinates, error) {
	timeout := c.LocateTimeout
	if timeout <= 0 {
		timeout = defaultLocateTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		coords model.Coordinates
		err    error
	}
	done := make(chan result, 1)
	go func() {
		coords, err := locator.CurrentPosition(ctx)
		done <- result{coords, err}
	}()

	select {
	case res := <-done:
		return res.coords, res.err
	case <-ctx.Done():
		return model.Coordinates{}, fmt.Errorf("%w: %v", ErrPositionUnavailable, ctx.Err())
	}
}

func (c *ForecastClient) logger() *zap.SugaredLogger {
	if c.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return c.Logger
}
