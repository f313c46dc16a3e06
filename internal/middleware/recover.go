package middleware

import (
	"net/http"

	"github.com/pkg/errors"

	"GreetingServer/internal/router"
)

// Recover turns a panic anywhere further down the chain into an ordinary
// error, so it reaches the router's error handler like any other failure.
// http.ErrAbortHandler is re-panicked; net/http treats it as a deliberate abort.
func Recover() router.Middleware {
	return func(c *router.Context, next router.Next) (err error) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			if e, ok := rec.(error); ok {
				err = errors.WithStack(e)
				return
			}
			err = errors.Errorf("panic: %v", rec)
		}()

		return next()
	}
}
