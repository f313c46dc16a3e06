package routes

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/pkg/errors"

	"GreetingServer/internal/router"
)

/*
Validation rules are intentionally strict.
A route file that half-loads is worse than one that does not load.
*/

func validateFile(f File) error {
	if len(f.Routes) == 0 {
		return errors.New("route file contains no routes")
	}

	seen := make(map[string]int, len(f.Routes))
	for i, r := range f.Routes {
		if err := router.ValidatePattern(r.Method, r.Path); err != nil {
			return routeError(i, err.Error())
		}

		key := r.Method + " " + r.Path
		if first, dup := seen[key]; dup {
			return routeError(i, "duplicates route["+strconv.Itoa(first)+"]")
		}
		seen[key] = i

		if r.Status < 200 || r.Status > 599 {
			return routeError(i, "status must be between 200 and 599")
		}

		if r.Body != "" && (r.Status == http.StatusNoContent || r.Status == http.StatusNotModified) {
			return routeError(i, "status "+strconv.Itoa(r.Status)+" does not allow a body")
		}

		if _, _, err := mime.ParseMediaType(r.ContentType); err != nil {
			return routeError(i, "invalid content_type: "+err.Error())
		}
	}

	return nil
}

func routeError(index int, msg string) error {
	return errors.New("route[" + strconv.Itoa(index) + "]: " + msg)
}
