package middleware

import "net/http"

// ResponseWriterWithStatusCode is a wrapper around http.ResponseWriter that captures the status code
type ResponseWriterWithStatusCode struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func NewResponseWriterWithStatusCode(w http.ResponseWriter) *ResponseWriterWithStatusCode {
	return &ResponseWriterWithStatusCode{ResponseWriter: w, statusCode: http.StatusOK}
}

func (w *ResponseWriterWithStatusCode) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.statusCode = statusCode
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *ResponseWriterWithStatusCode) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

func (w *ResponseWriterWithStatusCode) StatusCode() int {
	return w.statusCode
}

// WroteHeader reports whether the response has been started.
func (w *ResponseWriterWithStatusCode) WroteHeader() bool {
	return w.wroteHeader
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *ResponseWriterWithStatusCode) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
