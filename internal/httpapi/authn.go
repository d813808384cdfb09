package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"ouvidoria.app/internal/auth"
	"ouvidoria.app/internal/token"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

var publicPaths = []string{
	"/api/ping",
	"/api/signin",
	"/api/login",
	"/api/refresh",
	"/api/signoff",
	"/metrics",
	"/healthz",
	"/readyz",
	"/openapi.yaml",
	"/",
}

// SessionGateway turns a bearer access token into a principal. It trusts the
// token's embedded profile snapshot; staleness until the next refresh is
// accepted.
type SessionGateway struct {
	tokens *token.Service
}

func NewSessionGateway(tokens *token.Service) *SessionGateway {
	return &SessionGateway{tokens: tokens}
}

// Authenticate resolves the request's principal. The token comes from the
// Authorization header; the ?auth= query fallback applies only on the socket
// path, where browser WebSocket clients cannot set headers.
func (g *SessionGateway) Authenticate(r *http.Request) (auth.Principal, error) {
	raw, err := extractBearerToken(r.Header.Get(authHeader))
	if err != nil {
		if isSocketPath(r.URL.Path) {
			if q := strings.TrimSpace(r.URL.Query().Get("auth")); q != "" {
				raw, err = q, nil
			}
		}
		if err != nil {
			return nil, err
		}
	}

	claims, err := g.tokens.VerifyAccess(raw)
	if err != nil {
		return nil, err
	}
	return auth.PrincipalFromClaims(claims), nil
}

func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		if isPublicPath(r.URL.Path) || isSocketPath(r.URL.Path) {
			// Socket upgrades authenticate explicitly inside the handler so
			// failures can be reported as a close frame.
			next.ServeHTTP(w, r)
			return
		}

		principal, err := a.gateway.Authenticate(r)
		if err != nil {
			if errors.Is(err, token.ErrInvalidToken) {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
			} else {
				writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
			}
			return
		}

		ctx := auth.ContextWithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	raw := strings.TrimSpace(header[len(bearer):])
	if raw == "" {
		return "", errors.New("missing bearer token")
	}
	return raw, nil
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}

func isSocketPath(path string) bool {
	return strings.HasPrefix(path, "/api/reclamacao/") && strings.HasSuffix(path, "/ws")
}
