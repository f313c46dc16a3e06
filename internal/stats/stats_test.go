package stats

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"GreetingServer/internal/routes"
)

type staticRoutes []routes.Rule

func (s staticRoutes) Rules() []routes.Rule { return s }

func TestObserveByClass(t *testing.T) {
	s := NewCollector()

	for _, code := range []int{200, 201, 304, 404, 404, 400, 500, 503} {
		s.Observe(code)
	}

	snap := s.Snapshot()
	if snap.Total != 8 {
		t.Fatalf("expected 8 total, got %d", snap.Total)
	}
	if snap.Success != 3 || snap.NotFound != 2 || snap.ClientErrors != 1 || snap.ServerErrors != 2 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestMiddlewareSeesFinalStatus(t *testing.T) {
	s := NewCollector()

	handler := s.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			w.Write([]byte("Hello world"))
		case "/boom":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	for _, p := range []string{"/", "/", "/missing", "/boom"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", p, nil))
	}

	snap := s.Snapshot()
	if snap.Success != 2 || snap.NotFound != 1 || snap.ServerErrors != 1 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func newAdmin() (*Handlers, http.Handler) {
	h := &Handlers{
		Stats:  NewCollector(),
		Routes: staticRoutes(routes.Default()),
	}
	return h, h.Router()
}

func TestStatsEndpoint(t *testing.T) {
	h, router := newAdmin()
	h.Stats.Observe(http.StatusOK)
	h.Stats.Observe(http.StatusNotFound)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/api/stats", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var body map[string]int64
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["requests"] != 2 || body["success"] != 1 || body["not_found"] != 1 {
		t.Fatalf("unexpected stats %v", body)
	}
}

func TestRoutesEndpoint(t *testing.T) {
	_, router := newAdmin()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/api/routes", nil))

	var body struct {
		Routes []struct {
			Method string `json:"method"`
			Path   string `json:"path"`
		} `json:"routes"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(body.Routes) != 2 || body.Routes[1].Path != "/evening" {
		t.Fatalf("unexpected routes %+v", body.Routes)
	}
}

func TestAdminFallbacks(t *testing.T) {
	_, router := newAdmin()

	cases := []struct {
		method, path string
		code         int
	}{
		{"GET", "/health", http.StatusOK},
		{"POST", "/api/stats", http.StatusMethodNotAllowed},
		{"GET", "/api/unknown", http.StatusNotFound},
	}

	for _, tc := range cases {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, nil))
		if rr.Code != tc.code {
			t.Fatalf("%s %s: expected %d, got %d", tc.method, tc.path, tc.code, rr.Code)
		}
	}
}
