package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"GreetingServer/internal/router"
)

/*
REQUEST BODY PARSING

- JSON objects and URL-encoded forms become Context.Body
- Anything else leaves Body nil
- Failures are silent; routing never depends on the body
- The bytes read are put back on the request for downstream readers
*/

const (
	// Bodies larger than this are left unparsed.
	MaxRequestBodyBytes = 1 << 20 // 1 MiB
)

type bodyKind int

const (
	kindNone bodyKind = iota
	kindJSON
	kindForm
)

func ParseBody(limit int64) router.Middleware {
	return func(c *router.Context, next router.Next) error {
		c.Body = readBody(c.Request, limit)
		return next()
	}
}

func readBody(r *http.Request, limit int64) map[string]any {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}

	kind := kindOf(r.Header.Get("Content-Type"))
	if kind == kindNone {
		return nil
	}

	orig := r.Body
	raw, err := io.ReadAll(io.LimitReader(orig, limit+1))
	r.Body = readCloser{
		Reader: io.MultiReader(bytes.NewReader(raw), orig),
		Closer: orig,
	}

	if err != nil || len(raw) == 0 || int64(len(raw)) > limit {
		return nil
	}

	switch kind {
	case kindJSON:
		return decodeJSON(raw)
	case kindForm:
		return decodeForm(raw)
	}
	return nil
}

type readCloser struct {
	io.Reader
	io.Closer
}

func kindOf(contentType string) bodyKind {
	if contentType == "" {
		return kindNone
	}

	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return kindNone
	}

	switch {
	case mt == "application/json", strings.HasSuffix(mt, "+json"):
		return kindJSON
	case mt == "application/x-www-form-urlencoded":
		return kindForm
	}
	return kindNone
}

// decodeJSON accepts only objects; arrays and scalars are ignored.
func decodeJSON(raw []byte) map[string]any {
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

/*
Form decoding

Bracketed keys nest:
	a[b]=1        -> {"a": {"b": "1"}}
	a[]=1&a[]=2   -> {"a": ["1", "2"]}
Repeated plain keys become a list, single ones a string.
*/

func decodeForm(raw []byte) map[string]any {
	values, err := url.ParseQuery(string(raw))
	if err != nil {
		return nil
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]any, len(values))
	for _, k := range keys {
		assign(out, splitKey(k), values[k])
	}
	return out
}

// splitKey turns "a[b][]" into ["a", "b", ""].
func splitKey(key string) []string {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return []string{key}
	}

	parts := []string{key[:open]}
	rest := key[open:]
	for rest != "" {
		end := strings.IndexByte(rest, ']')
		if rest[0] != '[' || end < 0 {
			return []string{key}
		}
		parts = append(parts, rest[1:end])
		rest = rest[end+1:]
	}
	return parts
}

func assign(dst map[string]any, path []string, vals []string) {
	list := false
	if len(path) > 1 && path[len(path)-1] == "" {
		path = path[:len(path)-1]
		list = true
	}

	last := len(path) - 1
	for _, seg := range path[:last] {
		child, ok := dst[seg].(map[string]any)
		if !ok {
			child = make(map[string]any)
			dst[seg] = child
		}
		dst = child
	}

	switch {
	case list, len(vals) > 1:
		dst[path[last]] = append([]string(nil), vals...)
	case len(vals) == 1:
		dst[path[last]] = vals[0]
	}
}
