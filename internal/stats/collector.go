package stats

import (
	"net/http"
	"sync/atomic"
	"time"
)

// Collector counts served responses by status class.
// 404s are counted apart from other 4xx.
type Collector struct {
	total        atomic.Int64
	success      atomic.Int64
	notFound     atomic.Int64
	clientErrors atomic.Int64
	serverErrors atomic.Int64
	startedAt    time.Time
}

type Snapshot struct {
	Total        int64
	Success      int64
	NotFound     int64
	ClientErrors int64
	ServerErrors int64
	Uptime       time.Duration
}

func NewCollector() *Collector {
	return &Collector{startedAt: time.Now()}
}

func (s *Collector) Observe(status int) {
	s.total.Add(1)

	switch {
	case status == http.StatusNotFound:
		s.notFound.Add(1)
	case status >= 500:
		s.serverErrors.Add(1)
	case status >= 400:
		s.clientErrors.Add(1)
	case status >= 200 && status < 400:
		s.success.Add(1)
	}
}

func (s *Collector) Snapshot() Snapshot {
	return Snapshot{
		Total:        s.total.Load(),
		Success:      s.success.Load(),
		NotFound:     s.notFound.Load(),
		ClientErrors: s.clientErrors.Load(),
		ServerErrors: s.serverErrors.Load(),
		Uptime:       time.Since(s.startedAt),
	}
}

// Middleware records the final status of every response served by next.
// It must wrap the whole chain so fallback and error responses are seen too.
func (s *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rr, r)

		s.Observe(rr.status)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }
