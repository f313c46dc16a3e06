package auth

import (
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

/*
ADMIN TOKEN CHECKS

- RS256 only, "alg=none" and HMAC tokens are refused
- Issuer, audience, expiry and subject are all required
- /health is the only path reachable without a token
*/

const HealthPath = "/health"

type JWTConfig struct {
	Issuer    string
	Audience  string
	PublicKey *rsa.PublicKey

	// RequiredRole, when set, must appear in the token's roles claim.
	RequiredRole string
}

// Claims is the token body the admin API accepts.
type Claims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

func JWTMiddleware(cfg JWTConfig) func(http.Handler) http.Handler {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithAudience(cfg.Audience),
		jwt.WithExpirationRequired(),
	)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			if r.URL.Path == HealthPath {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "missing Authorization header")
				return
			}

			scheme, tokenStr, ok := strings.Cut(authHeader, " ")
			if !ok || scheme != "Bearer" || tokenStr == "" {
				writeError(w, http.StatusUnauthorized, "invalid Authorization header format")
				return
			}

			var claims Claims
			token, err := parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
				return cfg.PublicKey, nil
			})
			if err != nil || !token.Valid {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			if claims.Subject == "" {
				writeError(w, http.StatusUnauthorized, "token subject missing")
				return
			}

			if cfg.RequiredRole != "" && !slices.Contains(claims.Roles, cfg.RequiredRole) {
				writeError(w, http.StatusForbidden, "access denied")
				return
			}

			id := &Identity{
				Subject: claims.Subject,
				Roles:   claims.Roles,
				Issuer:  claims.Issuer,
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
