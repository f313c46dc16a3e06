package router

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
)

const (
	ContentTypeText = "text/plain; charset=utf-8"
	ContentTypeJSON = "application/json; charset=utf-8"
)

// ErrorBody is the JSON shape of every fallback and error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// Context carries one request through the middleware chain and its handler.
// A Context is never shared between requests.
type Context struct {
	Request *http.Request
	Writer  *ResponseWriter

	// ID is set by the request id middleware; empty otherwise.
	ID string

	// Body is the parsed request body, nil when absent or unparseable.
	Body map[string]any
}

func NewContext(w http.ResponseWriter, r *http.Request) *Context {
	return &Context{
		Request: r,
		Writer:  &ResponseWriter{ResponseWriter: w, status: http.StatusOK},
	}
}

// Text writes a plain text response.
func (c *Context) Text(status int, body string) error {
	return c.Blob(status, ContentTypeText, []byte(body))
}

// JSON writes v as a compact JSON document.
func (c *Context) JSON(status int, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "encode json response")
	}
	return c.Blob(status, ContentTypeJSON, data)
}

// Blob writes the status line, headers and body in one go.
func (c *Context) Blob(status int, contentType string, data []byte) error {
	h := c.Writer.Header()
	h.Set("Content-Type", contentType)
	h.Set("Content-Length", strconv.Itoa(len(data)))
	c.Writer.WriteHeader(status)

	_, err := c.Writer.Write(data)
	return errors.Wrap(err, "write response")
}

/*
Response writer

Records the status and whether anything reached the client. The error
handler must not write a second response.
*/

type ResponseWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

func (w *ResponseWriter) WriteHeader(code int) {
	if w.written {
		return
	}
	w.status = code
	w.written = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *ResponseWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// Status reports the status sent, or 200 if nothing was sent yet.
func (w *ResponseWriter) Status() int { return w.status }

// Written reports whether the response has started.
func (w *ResponseWriter) Written() bool { return w.written }

// Unwrap exposes the underlying writer to http.ResponseController.
func (w *ResponseWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
