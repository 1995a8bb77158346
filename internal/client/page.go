package client

import (
	"fmt"
	"io"
)

// Page is the surface a forecast is rendered onto. id names one element.
type Page interface {
	SetText(id, text string)
}

// Elements names the page elements the client writes to.
type Elements struct {
	Temperature string
	Humidity    string
	Summary     string
	// Status receives fallback text when locating or fetching fails.
	Status string
}

// DefaultElements matches the ids used by the bundled index.html.
func DefaultElements() Elements {
	return Elements{
		Temperature: "temperature",
		Humidity:    "humidity",
		Summary:     "summary",
		Status:      "status",
	}
}

// TextPage renders elements as "id: text" lines.
type TextPage struct {
	w io.Writer
}

func NewTextPage(w io.Writer) *TextPage {
	return &TextPage{w: w}
}

func (p *TextPage) SetText(id, text string) {
	fmt.Fprintf(p.w, "%s: %s\n", id, text)
}
