package client

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Placeholder is shown for a field the payload does not carry.
const Placeholder = "--"

// Payload is a decoded forecast response. Numbers are kept as json.Number.
type Payload map[string]interface{}

// HasError reports whether the payload is an error response.
func (p Payload) HasError() bool {
	return truthy(p["error"])
}

// ErrorMessage returns the failure detail of an error payload.
func (p Payload) ErrorMessage() string {
	if msg, ok := p["message"].(string); ok {
		return msg
	}
	return ""
}

// Render writes currently.temperature, currently.humidity and currently.summary into page.
// A nil or error payload writes nothing and returns false.
func Render(payload Payload, page Page, el Elements) bool {
	if payload == nil || payload.HasError() {
		return false
	}
	current, _ := payload["currently"].(map[string]interface{})
	page.SetText(el.Temperature, display(current["temperature"]))
	page.SetText(el.Humidity, display(current["humidity"]))
	page.SetText(el.Summary, display(current["summary"]))
	return true
}

func display(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return Placeholder
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case map[string]interface{}, []interface{}:
		b, err := json.Marshal(v)
		if err != nil {
			return Placeholder
		}
		return string(b)
	default:
		return fmt.Sprint(v)
	}
}

func truthy(v interface{}) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case json.Number:
		f, err := v.Float64()
		return err != nil || f != 0
	default:
		return true
	}
}
