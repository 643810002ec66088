package httpmw

import (
	"context"
	"net/http"
	"strings"

	"github.com/menezmethod/handoff/internal/apierror"
	"github.com/menezmethod/handoff/internal/auth"
)

const claimsContextKey contextKey = "session_claims"

// TokenParser verifies session tokens.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// Auth returns middleware that validates Bearer session tokens.
// Requests without a valid token receive a 401 response.
func Auth(tokens TokenParser) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := extractBearerToken(r)
			if !ok {
				apierror.Write(w, apierror.Unauthorized("Missing or malformed Authorization header. Expected: Bearer <token>"))
				return
			}

			claims, err := tokens.Parse(token)
			if err != nil {
				apierror.Write(w, apierror.Unauthorized("Invalid session token."))
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext retrieves the verified session claims from the request
// context.
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(claimsContextKey).(*auth.Claims)
	return c
}

// extractBearerToken parses the Authorization header for a Bearer token.
func extractBearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", false
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return "", false
	}

	token := strings.TrimSpace(h[len(prefix):])
	if token == "" {
		return "", false
	}

	return token, true
}
