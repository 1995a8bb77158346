package model

import "net/url"

// ForecastRequest holds the coordinates of one inbound forecast call, as received.
type ForecastRequest struct {
	Latitude  string
	Longitude string
	// Time is accepted for compatibility with older callers and is not sent to the provider.
	Time string
}

// Coordinates is a position in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ForecastRequestFromQuery extracts a request from query parameters. For each field the
// first non-empty alias wins: lat/latitude, lon/longitude, time/date.
func ForecastRequestFromQuery(q url.Values) ForecastRequest {
	return ForecastRequest{
		Latitude:  firstNonEmpty(q, "lat", "latitude"),
		Longitude: firstNonEmpty(q, "lon", "longitude"),
		Time:      firstNonEmpty(q, "time", "date"),
	}
}

func firstNonEmpty(q url.Values, keys ...string) string {
	for _, k := range keys {
		if v := q.Get(k); v != "" {
			return v
		}
	}
	return ""
}
