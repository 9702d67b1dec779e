package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/history-importer/pkg/util/errorutil"
)

// Scope grants access to a group of admin endpoints.
type Scope string

const (
	ScopeImport      Scope = "imports:write"
	ScopeHistoryRead Scope = "history:read"
	ScopeMetrics     Scope = "metrics:read"
)

// AllScopes lists every scope an operator token can carry.
func AllScopes() []Scope {
	return []Scope{ScopeImport, ScopeHistoryRead, ScopeMetrics}
}

// ParseScopes converts raw names, rejecting unknown ones.
func ParseScopes(names []string) ([]Scope, bool) {
	known := map[Scope]struct{}{}
	for _, s := range AllScopes() {
		known[s] = struct{}{}
	}
	scopes := make([]Scope, 0, len(names))
	for _, name := range names {
		scope := Scope(name)
		if _, ok := known[scope]; !ok {
			return nil, false
		}
		scopes = append(scopes, scope)
	}
	return scopes, true
}

// RequireScope ensures the operator token grants scope.
func RequireScope(scope Scope) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		for _, s := range principal.Scopes {
			if s == scope {
				return c.Next()
			}
		}
		return apperrors.NewForbidden("insufficient scope")
	}
}
