package stats

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"GreetingServer/internal/auth"
	"GreetingServer/internal/routes"
)

// RouteSource exposes the route table currently being served.
type RouteSource interface {
	Rules() []routes.Rule
}

// Handlers holds dependencies for the admin API endpoints.
type Handlers struct {
	Stats  *Collector
	Routes RouteSource
}

// Router mounts the admin API. Everything is read-only.
func (h *Handlers) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc(auth.HealthPath, h.serveHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/stats", h.serveStats).Methods(http.MethodGet)
	r.HandleFunc("/api/routes", h.serveRoutes).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not Found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method Not Allowed"})
	})

	return r
}

func (h *Handlers) serveHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

func (h *Handlers) serveStats(w http.ResponseWriter, _ *http.Request) {
	snap := h.Stats.Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"requests":       snap.Total,
		"success":        snap.Success,
		"not_found":      snap.NotFound,
		"client_errors":  snap.ClientErrors,
		"server_errors":  snap.ServerErrors,
		"uptime_seconds": int64(snap.Uptime.Seconds()),
	})
}

func (h *Handlers) serveRoutes(w http.ResponseWriter, _ *http.Request) {
	type routeDTO struct {
		Method      string `json:"method"`
		Path        string `json:"path"`
		Status      int    `json:"status"`
		ContentType string `json:"content_type"`
	}

	rules := h.Routes.Rules()
	dtos := make([]routeDTO, len(rules))
	for i, r := range rules {
		dtos[i] = routeDTO{Method: r.Method, Path: r.Path, Status: r.Status, ContentType: r.ContentType}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"routes": dtos})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
