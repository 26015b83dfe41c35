// internal/handlers/auth/auth_handler.go
package auth

import (
	"net/http"
	"strconv"

	"checkout-service/internal/domain/admin"
	"checkout-service/internal/middleware"
	"checkout-service/internal/pkg/response"
	service "checkout-service/internal/service/auth"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *service.Service
}

func NewAuthHandler(authService *service.Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req admin.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, "login failed", err)
		return
	}

	response.Success(c, http.StatusOK, "login successful", result)
}

// Me returns the authenticated account's claims, used by the panel to
// restore a session.
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	response.Success(c, http.StatusOK, "session valid", gin.H{
		"admin_id": claims.AdminID,
		"email":    claims.Email,
		"role":     claims.Role,
	})
}

func (h *AuthHandler) CreateAccount(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req admin.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.authService.CreateAccount(c.Request.Context(), claims, &req)
	if err != nil {
		response.FromError(c, "failed to create account", err)
		return
	}

	response.Success(c, http.StatusCreated, "account created", result)
}

func (h *AuthHandler) ListAccounts(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	result, err := h.authService.ListAccounts(c.Request.Context(), claims)
	if err != nil {
		response.FromError(c, "failed to list accounts", err)
		return
	}

	response.Success(c, http.StatusOK, "accounts retrieved", result)
}

func (h *AuthHandler) DeactivateAccount(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid account ID", err)
		return
	}

	if err := h.authService.DeactivateAccount(c.Request.Context(), claims, id); err != nil {
		response.FromError(c, "failed to deactivate account", err)
		return
	}

	response.Success(c, http.StatusOK, "account deactivated", nil)
}
