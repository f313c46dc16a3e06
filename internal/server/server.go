package server

import (
	"context"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync/atomic"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"GreetingServer/internal/auth"
	"GreetingServer/internal/config"
	"GreetingServer/internal/middleware"
	"GreetingServer/internal/router"
	"GreetingServer/internal/routes"
	"GreetingServer/internal/stats"
)

/*

REQUEST PIPELINE (TOP to BOTTOM):

1. Stats            :   counts the final status of every response
2. Recover          :   panics become ordinary errors
3. Request id       :   X-Request-ID on every response
4. Body parsing     :   JSON / form into Context.Body, silent on failure
5. Request log      :   "<METHOD> <PATH>" on stdout
6. Dispatch         :   exact method + exact path, else 404 JSON
7. Error handler    :   500 JSON unless the response already started

The route table is swapped atomically on reload. A request always runs
against exactly one table.
*/

type Server struct {
	cfg    config.Config
	logger hclog.Logger
	access *log.Logger
	stats  *stats.Collector
	extra  []router.Route

	active  atomic.Pointer[table]
	handler http.Handler
}

type table struct {
	rules  []routes.Rule
	router *router.Router
}

type Option func(*Server)

// WithLogger replaces the stderr error/lifecycle logger.
func WithLogger(l hclog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithAccessLog redirects the request and startup lines, stdout by default.
func WithAccessLog(w io.Writer) Option {
	return func(s *Server) { s.access = log.New(w, "", 0) }
}

// WithRoute serves an extra handler next to the configured table.
func WithRoute(rt router.Route) Option {
	return func(s *Server) { s.extra = append(s.extra, rt) }
}

func New(cfg config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		cfg: cfg,
		logger: hclog.New(&hclog.LoggerOptions{
			Name:   "greeting-server",
			Level:  cfg.LogLevel,
			Output: os.Stderr,
		}),
		access: log.New(os.Stdout, "", 0),
		stats:  stats.NewCollector(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.SetRoutes(cfg.Routes); err != nil {
		return nil, err
	}

	s.handler = s.stats.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.active.Load().router.ServeHTTP(w, r)
	}))
	return s, nil
}

// SetRoutes builds a router for rules and makes it the active one.
// On error the previous table keeps serving.
func (s *Server) SetRoutes(rules []routes.Rule) error {
	rt, err := router.New(
		append(routes.Handlers(rules), s.extra...),
		router.WithLogger(s.logger),
	)
	if err != nil {
		return errors.Wrap(err, "invalid route table")
	}

	rt.Use(
		middleware.Recover(),
		middleware.RequestID(),
		middleware.ParseBody(middleware.MaxRequestBodyBytes),
		middleware.RequestLog(s.access),
	)

	s.active.Store(&table{rules: rules, router: rt})
	return nil
}

// Rules returns the active route table.
func (s *Server) Rules() []routes.Rule {
	rules := s.active.Load().rules
	out := make([]routes.Rule, len(rules))
	copy(out, rules)
	return out
}

func (s *Server) Stats() *stats.Collector { return s.stats }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// AdminHandler serves the read-only admin API, behind RS256 bearer tokens
// when a public key is configured.
func (s *Server) AdminHandler() http.Handler {
	h := (&stats.Handlers{Stats: s.stats, Routes: s}).Router()
	if s.cfg.AdminAuth.PublicKey == nil {
		return h
	}
	return auth.JWTMiddleware(s.cfg.AdminAuth)(h)
}

// Run binds the configured ports and serves until ctx is done or a
// listener fails.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+strconv.Itoa(s.cfg.Port))
	if err != nil {
		return errors.Wrapf(err, "listen on port %d", s.cfg.Port)
	}

	var adminLn net.Listener
	if s.cfg.AdminEnabled {
		adminLn, err = net.Listen("tcp", ":"+strconv.Itoa(s.cfg.AdminPort))
		if err != nil {
			ln.Close()
			return errors.Wrapf(err, "listen on admin port %d", s.cfg.AdminPort)
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.Serve(ctx, ln)
	})

	if adminLn != nil {
		g.Go(func() error {
			return s.ServeAdmin(ctx, adminLn)
		})
	}

	if s.cfg.RoutesFile != "" && s.cfg.ReloadInterval > 0 {
		w := &routes.Watcher{
			Path:     s.cfg.RoutesFile,
			Interval: s.cfg.ReloadInterval,
			Apply:    s.SetRoutes,
			Logger:   s.logger.Named("routes"),
		}
		g.Go(func() error {
			w.Run(ctx)
			return nil
		})
	}

	return g.Wait()
}

// Serve answers public traffic on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.access.Printf("Server running on port %d", portOf(ln))
	return s.serve(ctx, s.newHTTPServer(s), ln)
}

// ServeAdmin answers admin traffic on ln until ctx is done.
func (s *Server) ServeAdmin(ctx context.Context, ln net.Listener) error {
	if s.cfg.AdminAuth.PublicKey == nil {
		s.logger.Warn("admin API has no public key configured, running unauthenticated")
	}
	s.logger.Info("admin API listening", "port", portOf(ln))
	return s.serve(ctx, s.newHTTPServer(s.AdminHandler()), ln)
}

func (s *Server) newHTTPServer(h http.Handler) *http.Server {
	return &http.Server{
		Handler:      h,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
		ErrorLog:     s.logger.StandardLogger(&hclog.StandardLoggerOptions{InferLevels: true}),
	}
}

func (s *Server) serve(ctx context.Context, srv *http.Server, ln net.Listener) error {
	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "serve")
	case <-ctx.Done():
	}

	s.logger.Debug("shutting down", "addr", ln.Addr().String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}

func portOf(ln net.Listener) int {
	if addr, ok := ln.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return 0
}
