package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
)

/*
ROUTER

Dispatch order for every request:

1. Middleware, in the order given to Use
2. Exact method + exact path route, or the not-found handler
3. Error handler, if anything above returned an error

Middleware continues the chain only by calling next. Returning without
calling it ends the request there.

gorilla/mux only does the matching. The router never hands it the
ResponseWriter, so mux's own 404/405 responses and path cleaning never run.
*/

// Next continues the middleware chain.
type Next func() error

// HandlerFunc serves a matched route or the not-found fallback.
type HandlerFunc func(c *Context) error

// Middleware wraps the rest of the chain.
type Middleware func(c *Context, next Next) error

// ErrorHandler turns an error returned by the chain into a response.
type ErrorHandler func(c *Context, err error)

// Route maps an exact method and path to a handler.
type Route struct {
	Method  string
	Path    string
	Handler HandlerFunc
}

type Router struct {
	matcher  *mux.Router
	routes   []Route
	handlers map[string]HandlerFunc

	chain    []Middleware
	notFound HandlerFunc
	onError  ErrorHandler
	logger   hclog.Logger
}

type Option func(*Router)

// WithNotFound replaces the default 404 JSON fallback.
func WithNotFound(h HandlerFunc) Option {
	return func(r *Router) { r.notFound = h }
}

// WithErrorHandler replaces the default 500 JSON error handler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(r *Router) { r.onError = h }
}

// WithLogger sets the logger the default error handler reports to.
func WithLogger(l hclog.Logger) Option {
	return func(r *Router) { r.logger = l }
}

// New builds a router over a fixed route table.
func New(routes []Route, opts ...Option) (*Router, error) {
	r := &Router{
		matcher:  mux.NewRouter(),
		handlers: make(map[string]HandlerFunc, len(routes)),
		notFound: NotFound,
		logger:   hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.onError == nil {
		r.onError = r.internalError
	}

	for i, rt := range routes {
		if err := r.add(rt); err != nil {
			return nil, errors.Wrapf(err, "route[%d]", i)
		}
	}
	return r, nil
}

// Use appends middleware to the chain.
func (r *Router) Use(mw ...Middleware) {
	r.chain = append(r.chain, mw...)
}

// Routes returns a copy of the registered table.
func (r *Router) Routes() []Route {
	out := make([]Route, len(r.routes))
	copy(out, r.routes)
	return out
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	c := NewContext(w, req)
	if err := r.run(c, 0); err != nil {
		r.onError(c, err)
	}
}

func (r *Router) run(c *Context, i int) error {
	if i == len(r.chain) {
		return r.dispatch(c)
	}
	return r.chain[i](c, func() error {
		return r.run(c, i+1)
	})
}

func (r *Router) dispatch(c *Context) error {
	var match mux.RouteMatch
	if !r.matcher.Match(c.Request, &match) || match.Route == nil {
		return r.notFound(c)
	}

	h, ok := r.handlers[match.Route.GetName()]
	if !ok {
		return r.notFound(c)
	}
	return h(c)
}

func (r *Router) add(rt Route) error {
	if err := ValidatePattern(rt.Method, rt.Path); err != nil {
		return err
	}
	if rt.Handler == nil {
		return errors.New("handler is required")
	}

	key := rt.Method + " " + rt.Path
	if _, dup := r.handlers[key]; dup {
		return errors.Errorf("duplicate route %q", key)
	}

	route := r.matcher.NewRoute().Name(key).Path(rt.Path).Methods(rt.Method)
	if err := route.GetError(); err != nil {
		return errors.Wrapf(err, "register %q", key)
	}

	r.handlers[key] = rt.Handler
	r.routes = append(r.routes, rt)
	return nil
}

// internalError logs the failure and answers 500 unless the response
// already started.
func (r *Router) internalError(c *Context, err error) {
	r.logger.Error("request failed",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"request_id", c.ID,
		"error", fmt.Sprintf("%+v", err),
	)

	if c.Writer.Written() {
		return
	}

	if werr := c.JSON(http.StatusInternalServerError, ErrorBody{Error: "Internal Server Error"}); werr != nil {
		r.logger.Warn("failed to write error response", "request_id", c.ID, "error", werr)
	}
}

// NotFound is the default fallback handler.
func NotFound(c *Context) error {
	return c.JSON(http.StatusNotFound, ErrorBody{Error: "Not Found"})
}

// ValidatePattern checks that a method/path pair names exactly one
// request line shape: an upper-case method token and a literal absolute path.
func ValidatePattern(method, path string) error {
	if method == "" {
		return errors.New("method is required")
	}
	for _, ch := range method {
		if (ch < 'A' || ch > 'Z') && ch != '-' && ch != '_' {
			return errors.Errorf("method %q must be an upper-case token", method)
		}
	}

	if !strings.HasPrefix(path, "/") {
		return errors.Errorf("path %q must start with '/'", path)
	}
	if strings.ContainsAny(path, "{}?# \t\r\n") {
		return errors.Errorf("path %q must be a literal path", path)
	}
	return nil
}
