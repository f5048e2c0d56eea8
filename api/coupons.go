package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/tripoffice/internal/apperror"
	"github.com/Domenick1991/tripoffice/internal/middleware"
	"github.com/Domenick1991/tripoffice/internal/service/coupons"
	"github.com/gin-gonic/gin"
)

type CouponHandler struct {
	service coupons.CouponUseCase
}

func NewCouponHandler(service coupons.CouponUseCase) *CouponHandler {
	return &CouponHandler{service: service}
}

func (h *CouponHandler) Register(router *gin.RouterGroup, gate *Gate) {
	router.GET("/validate/:code", h.validate)

	admin := router.Group("", gate.Authenticated())
	admin.POST("", gate.Allow("coupons.create"), h.create)
	admin.GET("", gate.Allow("coupons.list"), h.list)
	admin.GET("/:id", gate.Allow("coupons.get"), h.get)
	admin.PUT("/:id", gate.Allow("coupons.update"), h.update)
	admin.DELETE("/:id", gate.Allow("coupons.delete"), h.delete)
	admin.PATCH("/:id/toggle", gate.Allow("coupons.toggle"), h.toggle)
}

func success(data gin.H) gin.H {
	return gin.H{"status": "success", "data": data}
}

func (h *CouponHandler) create(c *gin.Context) {
	var req coupons.CouponInput
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperror.Validation("Invalid coupon payload"))
		return
	}

	coupon, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, success(gin.H{"coupon": coupon}))
}

func (h *CouponHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "results": len(list), "data": gin.H{"coupons": list}})
}

func (h *CouponHandler) get(c *gin.Context) {
	coupon, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, success(gin.H{"coupon": coupon}))
}

func (h *CouponHandler) update(c *gin.Context) {
	var req coupons.CouponPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperror.Validation("Invalid coupon payload"))
		return
	}

	coupon, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, success(gin.H{"coupon": coupon}))
}

func (h *CouponHandler) delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		middleware.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CouponHandler) toggle(c *gin.Context) {
	coupon, err := h.service.Toggle(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, success(gin.H{"coupon": coupon}))
}

// validate is public. With ?total= it also prices the total, in ?currency= for amount coupons.
func (h *CouponHandler) validate(c *gin.Context) {
	var apply *coupons.ApplyRequest
	if raw, ok := c.GetQuery("total"); ok {
		total, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			middleware.Fail(c, apperror.Validation("total must be a number"))
			return
		}
		apply = &coupons.ApplyRequest{Total: total, Currency: c.Query("currency")}
	}

	result, err := h.service.Validate(c.Request.Context(), c.Param("code"), apply)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	data := gin.H{"discount": result.Discount, "type": result.Type}
	if result.Application != nil {
		data["application"] = result.Application
	}
	c.JSON(http.StatusOK, success(data))
}
