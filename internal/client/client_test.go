package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/james-gibson/meetupDemystifyingWeatherAPI/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryPage records every write.
type memoryPage struct {
	text   map[string]string
	writes int
}

func newMemoryPage() *memoryPage {
	return &memoryPage{text: map[string]string{}}
}

func (p *memoryPage) SetText(id, text string) {
	p.text[id] = text
	p.writes++
}

func decode(t *testing.T, body string) Payload {
	t.Helper()
	var payload Payload
	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&payload))
	return payload
}

func TestRender(t *testing.T) {
	tests := []struct {
		name            string
		body            string
		wantRendered    bool
		wantTemperature string
		wantHumidity    string
		wantSummary     string
	}{
		{
			name:            "full payload",
			body:            `{"currently":{"temperature":72,"humidity":0.5,"summary":"Clear"}}`,
			wantRendered:    true,
			wantTemperature: "72",
			wantHumidity:    "0.5",
			wantSummary:     "Clear",
		},
		{
			name:            "missing summary",
			body:            `{"currently":{"temperature":-3.25,"humidity":1}}`,
			wantRendered:    true,
			wantTemperature: "-3.25",
			wantHumidity:    "1",
			wantSummary:     Placeholder,
		},
		{
			name:            "no currently block",
			body:            `{"hourly":{}}`,
			wantRendered:    true,
			wantTemperature: Placeholder,
			wantHumidity:    Placeholder,
			wantSummary:     Placeholder,
		},
		{
			name:            "currently is not an object",
			body:            `{"currently":"sunny"}`,
			wantRendered:    true,
			wantTemperature: Placeholder,
			wantHumidity:    Placeholder,
			wantSummary:     Placeholder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := newMemoryPage()
			el := DefaultElements()

			assert.Equal(t, tt.wantRendered, Render(decode(t, tt.body), page, el))
			assert.Equal(t, tt.wantTemperature, page.text[el.Temperature])
			assert.Equal(t, tt.wantHumidity, page.text[el.Humidity])
			assert.Equal(t, tt.wantSummary, page.text[el.Summary])
		})
	}
}

func TestRender_ErrorPayloadWritesNothing(t *testing.T) {
	for _, body := range []string{
		`{"error":"x","message":"y"}`,
		`{"error":"x","currently":{"temperature":72}}`,
	} {
		page := newMemoryPage()
		assert.NotPanics(t, func() {
			assert.False(t, Render(decode(t, body), page, DefaultElements()))
		})
		assert.Zero(t, page.writes, body)
	}

	page := newMemoryPage()
	assert.False(t, Render(nil, page, DefaultElements()))
	assert.Zero(t, page.writes)
}

func TestRender_ExplicitElements(t *testing.T) {
	page := newMemoryPage()
	el := Elements{Temperature: ".temperature.current", Humidity: ".humidity.current", Summary: ".colloquial.current"}

	Render(decode(t, `{"currently":{"temperature":72,"humidity":0.5,"summary":"Clear"}}`), page, el)
	assert.Equal(t, map[string]string{
		".temperature.current": "72",
		".humidity.current":    "0.5",
		".colloquial.current":  "Clear",
	}, page.text)
}

func TestPayload_ErrorAccessors(t *testing.T) {
	p := decode(t, `{"error":"x","message":"y"}`)
	assert.True(t, p.HasError())
	assert.Equal(t, "y", p.ErrorMessage())

	p = decode(t, `{"error":""}`)
	assert.False(t, p.HasError())
}

func TestForecastURL(t *testing.T) {
	c := NewForecastClient("http://localhost:8080/")
	got := c.ForecastURL(model.Coordinates{Latitude: 37.8267, Longitude: -122.4233})
	assert.Equal(t, "http://localhost:8080/forecast?latitude=37.8267&longitude=-122.4233", got)
}

func TestFetch(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{name: "ok", status: http.StatusOK, body: `{"currently":{"temperature":72}}`},
		{name: "proxy error", status: http.StatusBadGateway, body: `{"error":"Whoops","message":"provider down"}`, wantErr: ErrUnexpectedStatus, wantMsg: "provider down"},
		{name: "non-json error", status: http.StatusNotFound, body: `404 page not found`, wantErr: ErrUnexpectedStatus, wantMsg: "404"},
		{name: "malformed", status: http.StatusOK, body: `{"currently":`, wantErr: ErrMalformedPayload},
		{name: "not an object", status: http.StatusOK, body: `[1,2]`, wantErr: ErrMalformedPayload},
		{name: "null", status: http.StatusOK, body: `null`, wantErr: ErrMalformedPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer proxy.Close()

			payload, err := NewForecastClient(proxy.URL).Fetch(context.Background(), model.Coordinates{Latitude: 1, Longitude: 2})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Contains(t, err.Error(), tt.wantMsg)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, payload, "currently")
		})
	}
}

func TestRun_Success(t *testing.T) {
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast", r.URL.Path)
		assert.Equal(t, "37.8267", r.URL.Query().Get("latitude"))
		assert.Equal(t, "-122.4233", r.URL.Query().Get("longitude"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"currently":{"temperature":72,"humidity":0.5,"summary":"Clear"}}`))
	}))
	defer proxy.Close()

	page := newMemoryPage()
	err := NewForecastClient(proxy.URL).Run(context.Background(), StaticLocator{Latitude: 37.8267, Longitude: -122.4233}, page)

	require.NoError(t, err)
	assert.Equal(t, "72", page.text["temperature"])
	assert.Equal(t, "0.5", page.text["humidity"])
	assert.Equal(t, "Clear", page.text["summary"])
	assert.Equal(t, "", page.text["status"])
}

func TestRun_LocateDenied(t *testing.T) {
	var calls int32
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer proxy.Close()

	page := newMemoryPage()
	denied := LocatorFunc(func(ctx context.Context) (model.Coordinates, error) {
		return model.Coordinates{}, ErrPermissionDenied
	})
	err := NewForecastClient(proxy.URL).Run(context.Background(), denied, page)

	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Equal(t, locateFailedText, page.text["status"])
	assert.NotContains(t, page.text, "temperature")
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestRun_LocateNeverResolves(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	stuck := LocatorFunc(func(ctx context.Context) (model.Coordinates, error) {
		<-release
		return model.Coordinates{}, errors.New("too late")
	})

	c := NewForecastClient("http://127.0.0.1:0")
	c.LocateTimeout = 20 * time.Millisecond
	page := newMemoryPage()

	start := time.Now()
	err := c.Run(context.Background(), stuck, page)
	assert.ErrorIs(t, err, ErrPositionUnavailable)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, locateFailedText, page.text["status"])
}

func TestRun_ProxyFailureShowsFallback(t *testing.T) {
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusGatewayTimeout)
		_, _ = w.Write([]byte(`{"error":"Whoops, we seem to have run into an issue","message":"external API timeout"}`))
	}))
	defer proxy.Close()

	page := newMemoryPage()
	err := NewForecastClient(proxy.URL).Run(context.Background(), StaticLocator{Latitude: 1, Longitude: 2}, page)

	assert.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.Equal(t, forecastUnavailableText, page.text["status"])
	assert.Equal(t, 1, page.writes)
}

func TestRun_ErrorPayloadOn200(t *testing.T) {
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"x","message":"y"}`))
	}))
	defer proxy.Close()

	page := newMemoryPage()
	err := NewForecastClient(proxy.URL).Run(context.Background(), StaticLocator{Latitude: 1, Longitude: 2}, page)

	assert.ErrorIs(t, err, ErrForecastError)
	assert.Contains(t, err.Error(), "y")
	assert.Equal(t, map[string]string{"status": forecastUnavailableText}, page.text)
}

func TestNewForecastClient_DefaultTimeout(t *testing.T) {
	c := NewForecastClient("http://localhost:8080")
	require.NotNil(t, c.HTTPClient)
	assert.Equal(t, defaultFetchTimeout, c.HTTPClient.Timeout)
}

func TestRun_HungProxyShowsFallback(t *testing.T) {
	release := make(chan struct{})
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer proxy.Close()
	defer close(release)

	page := newMemoryPage()
	c := NewForecastClient(proxy.URL, &http.Client{Timeout: 50 * time.Millisecond})

	start := time.Now()
	err := c.Run(context.Background(), StaticLocator{Latitude: 1, Longitude: 2}, page)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, forecastUnavailableText, page.text["status"])
	assert.NotContains(t, page.text, "temperature")
}

func TestTextPage(t *testing.T) {
	var buf bytes.Buffer
	page := NewTextPage(&buf)
	Render(decode(t, `{"currently":{"temperature":72,"humidity":0.5,"summary":"Clear"}}`), page, DefaultElements())

	assert.Equal(t, "temperature: 72\nhumidity: 0.5\nsummary: Clear\n", buf.String())
}
