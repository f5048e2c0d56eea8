package api

import (
	"log"
	"net/http"

	"github.com/Domenick1991/tripoffice/internal/apperror"
	"github.com/Domenick1991/tripoffice/internal/domain"
	"github.com/Domenick1991/tripoffice/internal/middleware"
	"github.com/Domenick1991/tripoffice/internal/service/auth"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service auth.AuthUseCase
	cookies *CookieSessions
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int64           `json:"expires_in"`
	User        domain.Identity `json:"user"`
}

func NewAuthHandler(service auth.AuthUseCase, cookies *CookieSessions) *AuthHandler {
	return &AuthHandler{service: service, cookies: cookies}
}

func (h *AuthHandler) Register(router *gin.RouterGroup, gate *Gate) {
	router.POST("/login", h.login)

	admin := router.Group("", gate.Authenticated())
	admin.POST("/logout", h.logout)
	admin.GET("/me", h.me)
	admin.GET("/users", gate.Allow("admins.list"), h.listAdmins)
	admin.POST("/register", gate.Allow("admins.create"), h.register)
	admin.PATCH("/users/:id", gate.Allow("admins.update"), h.updateAdmin)
	admin.DELETE("/users/:id", gate.Allow("admins.delete"), h.deleteAdmin)
}

func (h *AuthHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperror.Validation("Email and password are required"))
		return
	}

	result, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	if h.cookies != nil {
		if err := h.cookies.Save(c.Writer, c.Request, result.Token, result.ExpiresIn); err != nil {
			log.Printf("WARNING: failed to set session cookie: %v", err)
		}
	}

	c.JSON(http.StatusOK, loginResponse{
		AccessToken: result.Token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(result.ExpiresIn.Seconds()),
		User:        result.Identity,
	})
}

func (h *AuthHandler) logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), middleware.TokenFrom(c)); err != nil {
		middleware.Fail(c, err)
		return
	}
	if h.cookies != nil {
		if err := h.cookies.Clear(c.Writer, c.Request); err != nil {
			log.Printf("WARNING: failed to clear session cookie: %v", err)
		}
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) me(c *gin.Context) {
	identity, _ := middleware.IdentityFrom(c)
	c.JSON(http.StatusOK, identity)
}

func (h *AuthHandler) listAdmins(c *gin.Context) {
	admins, err := h.service.ListAdmins(c.Request.Context())
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": len(admins), "users": admins})
}

func (h *AuthHandler) register(c *gin.Context) {
	var req auth.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperror.Validation("Invalid request body"))
		return
	}

	admin, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Admin registered successfully", "user": admin})
}

func (h *AuthHandler) updateAdmin(c *gin.Context) {
	var req auth.UpdateAdminInput
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperror.Validation("Invalid request body"))
		return
	}

	admin, err := h.service.UpdateAdmin(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Admin updated", "user": admin})
}

func (h *AuthHandler) deleteAdmin(c *gin.Context) {
	if err := h.service.DeleteAdmin(c.Request.Context(), c.Param("id")); err != nil {
		middleware.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
