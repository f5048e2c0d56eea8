package api

import (
	"fmt"
	"net/http"

	"github.com/Domenick1991/tripoffice/internal/apperror"
	"github.com/Domenick1991/tripoffice/internal/middleware"
	"github.com/Domenick1991/tripoffice/internal/service/trips"
	"github.com/gin-gonic/gin"
)

type TripHandler struct {
	service trips.TripUseCase
}

func NewTripHandler(service trips.TripUseCase) *TripHandler {
	return &TripHandler{service: service}
}

func (h *TripHandler) Register(router *gin.RouterGroup, gate *Gate) {
	router.GET("", h.list)
	router.GET("/:id", h.get)

	admin := router.Group("/admin", gate.Authenticated())
	admin.POST("", gate.Allow("trips.create"), h.create)
	admin.PUT("/:id", gate.Allow("trips.update"), h.update)
	admin.DELETE("/:id", gate.Allow("trips.delete"), h.delete)
}

func (h *TripHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (h *TripHandler) get(c *gin.Context) {
	trip, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": trip})
}

func (h *TripHandler) create(c *gin.Context) {
	var req trips.TripInput
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperror.Validation("Trip data is required"))
		return
	}

	trip, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Trip created", "trip": trip})
}

func (h *TripHandler) update(c *gin.Context) {
	var req trips.TripPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperror.Validation("Invalid request body"))
		return
	}

	id := c.Param("id")
	trip, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Trip %s updated", id), "trip": trip})
}

func (h *TripHandler) delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Trip %s deleted successfully", id)})
}
