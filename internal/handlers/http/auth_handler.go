package http

import (
	"errors"
	"net/http"

	"reelhub/internal/core/domain"
	"reelhub/internal/core/ports"
	"reelhub/internal/core/services"
	"reelhub/internal/infrastructure/middleware"
	apperrors "reelhub/pkg/errors"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService ports.AuthService
	gateway     *services.Gateway
}

func NewAuthHandler(authService ports.AuthService, gateway *services.Gateway) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		gateway:     gateway,
	}
}

func (h *AuthHandler) SetupRoutes(router gin.IRouter) {
	api := router.Group("/auth")
	{
		api.POST("/register", h.Register)
		api.POST("/login", h.Login)
		api.POST("/refresh", middleware.AuthMiddleware(h.gateway), h.Refresh)
	}
}

type RegisterRequest struct {
	Email       string `json:"email" binding:"required,max=254"`
	DisplayName string `json:"display_name" binding:"required"`
	Password    string `json:"password" binding:"required,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,max=254"`
	Password string `json:"password" binding:"required,max=128"`
}

type CredentialResponse struct {
	Account *domain.UserAccount `json:"account,omitempty"`
	*domain.Credential
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewInvalidInputError("invalid request format"))
		return
	}

	account, err := h.authService.Register(c.Request.Context(), req.Email, req.DisplayName, req.Password)
	if err != nil {
		_ = c.Error(authError(err))
		return
	}

	_, cred, err := h.authService.Login(c.Request.Context(), account.Email, req.Password)
	if err != nil {
		_ = c.Error(authError(err))
		return
	}

	c.JSON(http.StatusCreated, CredentialResponse{Account: account, Credential: cred})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewInvalidInputError("invalid request format"))
		return
	}

	account, cred, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		_ = c.Error(authError(err))
		return
	}

	c.JSON(http.StatusOK, CredentialResponse{Account: account, Credential: cred})
}

// Refresh issues a new credential for the holder of a still-valid one.
func (h *AuthHandler) Refresh(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		_ = c.Error(apperrors.NewUnauthenticatedError("invalid credential"))
		return
	}

	cred, err := h.authService.Refresh(c.Request.Context(), claims)
	if err != nil {
		_ = c.Error(authError(err))
		return
	}

	c.JSON(http.StatusOK, CredentialResponse{Credential: cred})
}

func authError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		return apperrors.NewUnauthenticatedError("invalid email or password")
	case errors.Is(err, domain.ErrEmailTaken):
		return apperrors.NewConflictError("email is already registered")
	case errors.Is(err, services.ErrInvalidSubmission):
		return apperrors.NewInvalidInputError(err.Error())
	default:
		return apperrors.NewUpstreamError(err)
	}
}
