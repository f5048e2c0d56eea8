package api

import (
	"github.com/Domenick1991/tripoffice/internal/middleware"
	"github.com/Domenick1991/tripoffice/internal/session"
	"github.com/gin-gonic/gin"
)

// Gate bundles authentication with the per-route role policy.
type Gate struct {
	require gin.HandlerFunc
	policy  middleware.Policy
}

func NewGate(store session.Store, check middleware.IdentityCheck, policy middleware.Policy, fallbacks ...middleware.TokenSource) *Gate {
	return &Gate{
		require: middleware.RequireAdmin(store, check, fallbacks...),
		policy:  policy,
	}
}

func (g *Gate) Authenticated() gin.HandlerFunc {
	return g.require
}

func (g *Gate) Allow(routeID string) gin.HandlerFunc {
	return middleware.Authorize(g.policy, routeID)
}
