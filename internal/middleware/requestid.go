package middleware

import (
	"github.com/google/uuid"

	"GreetingServer/internal/router"
)

const RequestIDHeader = "X-Request-ID"

// RequestID keeps a well formed incoming X-Request-ID, otherwise assigns a
// fresh UUID. The id is echoed on the response.
func RequestID() router.Middleware {
	return func(c *router.Context, next router.Next) error {
		id := c.Request.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		c.ID = id
		c.Writer.Header().Set(RequestIDHeader, id)
		return next()
	}
}
