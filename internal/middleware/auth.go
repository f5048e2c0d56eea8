package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/Domenick1991/tripoffice/internal/apperror"
	"github.com/Domenick1991/tripoffice/internal/domain"
	"github.com/Domenick1991/tripoffice/internal/session"
	"github.com/gin-gonic/gin"
)

const (
	identityKey = "identity"
	tokenKey    = "token"
)

// TokenSource extracts a session token from somewhere other than the Authorization header.
type TokenSource func(r *http.Request) string

// IdentityCheck reloads the identity behind a live session. An error rejects the request.
type IdentityCheck func(ctx context.Context, identity domain.Identity) (domain.Identity, error)

// RequireAdmin resolves the bearer token through store and attaches the identity to the context.
// A non-nil check runs on every request, so the stored role and active flag win over the session copy.
func RequireAdmin(store session.Store, check IdentityCheck, fallbacks ...TokenSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		for _, src := range fallbacks {
			if token != "" {
				break
			}
			token = src(c.Request)
		}
		if token == "" {
			Fail(c, apperror.Unauthenticated("Unauthorized"))
			return
		}

		identity, ok, err := store.Lookup(c.Request.Context(), token)
		if err != nil {
			Fail(c, apperror.Wrap(err, "session lookup"))
			return
		}
		if !ok {
			Fail(c, apperror.Unauthenticated("Unauthorized"))
			return
		}
		if check != nil {
			identity, err = check(c.Request.Context(), identity)
			if err != nil {
				Fail(c, err)
				return
			}
		}

		c.Set(identityKey, identity)
		c.Set(tokenKey, token)
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func IdentityFrom(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return domain.Identity{}, false
	}
	identity, ok := v.(domain.Identity)
	return identity, ok
}

func TokenFrom(c *gin.Context) string {
	return c.GetString(tokenKey)
}

// Policy maps a route id to the roles permitted on it besides SUPER_ADMIN.
type Policy map[string][]domain.Role

var DefaultPolicy = Policy{
	"admins.list":   {},
	"admins.create": {},
	"admins.update": {},
	"admins.delete": {},

	"trips.create": {domain.RoleAdmin},
	"trips.update": {domain.RoleAdmin},
	"trips.delete": {domain.RoleAdmin},

	"bookings.list":   {domain.RoleAdmin, domain.RoleFinance, domain.RoleEmployee},
	"bookings.get":    {domain.RoleAdmin, domain.RoleFinance, domain.RoleEmployee, domain.RoleGate},
	"bookings.update": {domain.RoleAdmin, domain.RoleFinance, domain.RoleGate},
	"reports.trips":   {domain.RoleAdmin, domain.RoleFinance},
	"reports.totals":  {domain.RoleAdmin, domain.RoleFinance},

	"coupons.create": {domain.RoleAdmin},
	"coupons.list":   {domain.RoleAdmin},
	"coupons.get":    {domain.RoleAdmin},
	"coupons.update": {domain.RoleAdmin},
	"coupons.delete": {domain.RoleAdmin},
	"coupons.toggle": {domain.RoleAdmin},
}

// Allowed reports whether role may pass a gate with the permitted set.
// SUPER_ADMIN always passes; an empty set admits nobody else.
func Allowed(role domain.Role, permitted []domain.Role) bool {
	role, ok := domain.ParseRole(string(role))
	if !ok {
		return false
	}
	if role == domain.RoleSuperAdmin {
		return true
	}
	for _, p := range permitted {
		if p == role {
			return true
		}
	}
	return false
}

// Authorize gates a route by its id. It panics at wiring time on an id missing from policy.
func Authorize(policy Policy, routeID string) gin.HandlerFunc {
	permitted, ok := policy[routeID]
	if !ok {
		panic(fmt.Sprintf("middleware: no access policy for route %q", routeID))
	}

	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok {
			Fail(c, apperror.Unauthenticated("Unauthorized"))
			return
		}
		if !Allowed(identity.Role, permitted) {
			log.Printf("access denied: %s (%s) on %s", identity.Username, identity.Role, routeID)
			Fail(c, apperror.Forbidden("Access denied"))
			return
		}
		c.Next()
	}
}
