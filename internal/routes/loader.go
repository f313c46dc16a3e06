package routes

import (
	"bytes"
	"net/http"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"GreetingServer/internal/router"
)

/*
ROUTE TABLE

- Routes are static data: method, exact path, fixed response
- No templates, no wildcards, no expressions
- Validation happens BEFORE a table is accepted
- A table that fails validation never replaces the active one
*/

type Rule struct {
	Method      string `yaml:"method"`
	Path        string `yaml:"path"`
	Status      int    `yaml:"status,omitempty"`
	ContentType string `yaml:"content_type,omitempty"`
	Body        string `yaml:"body"`
}

type File struct {
	Routes []Rule `yaml:"routes"`
}

// Default is the built-in table served when no route file is configured.
func Default() []Rule {
	return []Rule{
		{Method: http.MethodGet, Path: "/", Status: http.StatusOK, ContentType: router.ContentTypeText, Body: "Hello world"},
		{Method: http.MethodGet, Path: "/evening", Status: http.StatusOK, ContentType: router.ContentTypeText, Body: "Good evening"},
	}
}

// LoadFile reads and validates a route table from disk.
func LoadFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read route file")
	}
	return Parse(data)
}

// Parse decodes a YAML route table, fills defaults and validates it.
// Unknown keys are rejected.
func Parse(data []byte) ([]Rule, error) {
	var f File

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, errors.Wrap(err, "invalid YAML")
	}

	for i := range f.Routes {
		if f.Routes[i].Status == 0 {
			f.Routes[i].Status = http.StatusOK
		}
		if f.Routes[i].ContentType == "" {
			f.Routes[i].ContentType = router.ContentTypeText
		}
	}

	if err := validateFile(f); err != nil {
		return nil, err
	}
	return f.Routes, nil
}

// Handlers turns rules into router routes that answer with the fixed response.
func Handlers(rules []Rule) []router.Route {
	out := make([]router.Route, 0, len(rules))
	for _, rule := range rules {
		status, contentType, body := rule.Status, rule.ContentType, []byte(rule.Body)
		out = append(out, router.Route{
			Method: rule.Method,
			Path:   rule.Path,
			Handler: func(c *router.Context) error {
				return c.Blob(status, contentType, body)
			},
		})
	}
	return out
}
