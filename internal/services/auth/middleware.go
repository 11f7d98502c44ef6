package auth

import (
	"context"
	"net/http"
	"strings"

	"water-delivery/internal/apperr"
	"water-delivery/internal/httpx"
	"water-delivery/internal/logger"
	"water-delivery/internal/models"
)

type principalKey struct{}

// WithPrincipal stores the resolved identity in ctx
func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the identity resolved for the current request
func PrincipalFromContext(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(models.Principal)
	return p, ok
}

// Authenticator resolves bearer tokens on every request
type Authenticator struct {
	service *Service
	logger  *logger.Logger
}

func NewAuthenticator(service *Service, log *logger.Logger) *Authenticator {
	return &Authenticator{service: service, logger: log}
}

// Require authenticates the request and, when roles are given, admits only
// users currently holding one of them.
func (a *Authenticator) Require(roles ...models.Role) httpx.Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				httpx.WriteError(w, r, a.logger, apperr.Authentication("missing bearer token"))
				return
			}

			principal, err := a.service.Resolve(r.Context(), token)
			if err != nil {
				httpx.WriteError(w, r, a.logger, err)
				return
			}

			if len(roles) > 0 && !hasRole(principal.Role, roles) {
				a.logger.Warn("access_denied", "Role not allowed for route", logger.RequestID(r.Context()), map[string]any{
					"user_id": principal.UserID,
					"role":    principal.Role,
					"path":    r.URL.Path,
				})
				httpx.WriteError(w, r, a.logger, apperr.Permission("role "+string(principal.Role)+" may not access this resource"))
				return
			}

			next(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		}
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	token = strings.TrimSpace(token)
	return token, ok && token != ""
}

func hasRole(role models.Role, roles []models.Role) bool {
	for _, allowed := range roles {
		if role == allowed {
			return true
		}
	}
	return false
}
