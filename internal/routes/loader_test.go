package routes

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"GreetingServer/internal/router"
)

func writeTemp(t *testing.T, data string) string {
	t.Helper()

	tmp, err := os.CreateTemp(t.TempDir(), "routes*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tmp.WriteString(data); err != nil {
		t.Fatal(err)
	}
	tmp.Close()
	return tmp.Name()
}

func TestValidRouteFileLoads(t *testing.T) {
	path := writeTemp(t, `
routes:
  - method: GET
    path: /
    body: Hello world
  - method: GET
    path: /evening
    body: Good evening
  - method: POST
    path: /echo
    status: 201
    content_type: application/json
    body: '{"ok":true}'
`)

	rules, err := LoadFile(path)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if len(rules) != 3 {
		t.Fatalf("expected 3 routes, got %d", len(rules))
	}
	if rules[0].Status != http.StatusOK || rules[0].ContentType != router.ContentTypeText {
		t.Fatalf("expected defaults to be filled, got %+v", rules[0])
	}
	if rules[2].Status != http.StatusCreated || rules[2].ContentType != "application/json" {
		t.Fatalf("expected explicit values kept, got %+v", rules[2])
	}
}

func TestMissingRouteFile(t *testing.T) {
	if _, err := LoadFile("/nonexistent/routes.yaml"); err == nil {
		t.Fatal("expected read error")
	}
}

func TestInvalidRouteFiles(t *testing.T) {
	cases := map[string]string{
		"empty":         ``,
		"no routes":     "routes: []\n",
		"bad yaml":      "routes: [\n",
		"unknown field": "routes:\n  - method: GET\n    path: /\n    roles: [admin]\n",
		"no method":     "routes:\n  - path: /\n",
		"relative path": "routes:\n  - method: GET\n    path: evening\n",
		"wildcard":      "routes:\n  - method: GET\n    path: /{name}\n",
		"bad status":    "routes:\n  - method: GET\n    path: /\n    status: 99\n",
		"204 with body": "routes:\n  - method: GET\n    path: /\n    status: 204\n    body: x\n",
		"bad type":      "routes:\n  - method: GET\n    path: /\n    content_type: '/'\n",
		"duplicate":     "routes:\n  - method: GET\n    path: /\n  - method: GET\n    path: /\n",
	}

	for name, data := range cases {
		if _, err := Parse([]byte(data)); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestDefaultTableIsValid(t *testing.T) {
	if err := validateFile(File{Routes: Default()}); err != nil {
		t.Fatalf("expected default table to validate, got %v", err)
	}
}

func TestHandlersServeFixedResponses(t *testing.T) {
	rules := append(Default(), Rule{
		Method:      "PUT",
		Path:        "/status",
		Status:      http.StatusAccepted,
		ContentType: "application/json",
		Body:        `{"queued":true}`,
	})

	r, err := router.New(Handlers(rules))
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		method, path string
		code         int
		body         string
		contentType  string
	}{
		{"GET", "/", http.StatusOK, "Hello world", router.ContentTypeText},
		{"GET", "/evening", http.StatusOK, "Good evening", router.ContentTypeText},
		{"PUT", "/status", http.StatusAccepted, `{"queued":true}`, "application/json"},
	}

	for _, tc := range cases {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, nil))

		if rr.Code != tc.code {
			t.Fatalf("%s %s: expected %d, got %d", tc.method, tc.path, tc.code, rr.Code)
		}
		if rr.Body.String() != tc.body {
			t.Fatalf("%s %s: expected %q, got %q", tc.method, tc.path, tc.body, rr.Body.String())
		}
		if ct := rr.Header().Get("Content-Type"); ct != tc.contentType {
			t.Fatalf("%s %s: expected content type %q, got %q", tc.method, tc.path, tc.contentType, ct)
		}
	}
}
