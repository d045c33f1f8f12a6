package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/empresa-minera/monitor/internal/auth"
)

const (
	authHeader  = "Authorization"
	bearer      = "Bearer "
	tokenCookie = "token"
)

// Paths that never require a session. The weight-data endpoints are public in
// the deployed dashboard; see the gap note in DESIGN.md.
var publicPaths = []string{
	"/login",
	"/registro",
	"/datos",
	"/datos/ultimo",
	"/datos/stream",
	"/healthz",
	"/readyz",
	"/v1/info",
	"/metrics",
	"/",
}

// withAuth classifies each request: anonymous on a public path, authenticated
// when a valid token is presented, rejected otherwise. Valid identities are
// attached to the context for downstream handlers.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, err := extractToken(r)
		if err != nil {
			unauthenticated(w, r, err.Error())
			return
		}
		ident, err := a.auth.VerifyToken(token)
		if err != nil {
			unauthenticated(w, r, "token inválido")
			return
		}
		ctx := auth.ContextWithIdentity(r.Context(), ident)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRole gates a handler on an exact role match. There is no hierarchy:
// admin does not satisfy a supervisor requirement.
func (a *API) requireRole(role string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			unauthenticated(w, r, "token requerido")
			return
		}
		if ident.Role != role {
			w.Header().Set("WWW-Authenticate", `Bearer error="insufficient_role"`)
			writeError(w, r, http.StatusForbidden, "permisos insuficientes")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractToken prefers the session cookie, falling back to a bearer header
// for API clients.
func extractToken(r *http.Request) (string, error) {
	if c, err := r.Cookie(tokenCookie); err == nil && strings.TrimSpace(c.Value) != "" {
		return strings.TrimSpace(c.Value), nil
	}
	header := strings.TrimSpace(r.Header.Get(authHeader))
	if header == "" {
		return "", errors.New("token requerido")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("esquema de autorización inválido")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("token requerido")
	}
	return token, nil
}

func unauthenticated(w http.ResponseWriter, r *http.Request, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="monitor"`)
	writeError(w, r, http.StatusUnauthorized, msg)
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}
