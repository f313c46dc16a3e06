package middleware

import (
	"log"

	"GreetingServer/internal/router"
)

// RequestLog writes "<METHOD> <REQUEST-URI>" for every request before it
// is dispatched.
func RequestLog(out *log.Logger) router.Middleware {
	return func(c *router.Context, next router.Next) error {
		out.Printf("%s %s", c.Request.Method, c.Request.URL.RequestURI())
		return next()
	}
}
