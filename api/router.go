package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/tripoffice/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Auth     *AuthHandler
	Trips    *TripHandler
	Bookings *BookingHandler
	Coupons  *CouponHandler
}

// NewRouter mounts every handler under /api. CORS is enabled only when origins is non-empty.
func NewRouter(gate *Gate, h Handlers, origins []string) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(), middleware.Recovery())
	if len(origins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type", "Accept", "Origin"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	router.NoRoute(middleware.NotFound())

	api := router.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h.Auth.Register(api.Group("/auth"), gate)
	h.Trips.Register(api.Group("/trips"), gate)
	h.Bookings.Register(api.Group("/bookings"), gate)
	h.Coupons.Register(api.Group("/coupons"), gate)

	return router
}
