package handler

import (
	"context"
	"log/slog"
	"net/http"

	"elibrary/internal/microservices/http-api/dto"
	"elibrary/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService service.AuthService
	logger      *slog.Logger
}

func NewAuthHandler(authService service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, guard gin.HandlerFunc) {
	rg.POST("/register", h.Register)
	rg.POST("/login", h.Login)
	rg.GET("/me", guard, h.Me)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	user, token, err := h.authService.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	h.logger.Info("user_registered", "user_id", user.ID)
	c.JSON(http.StatusCreated, dto.AuthResponse{
		Token:     token,
		ExpiresIn: int64(h.authService.TokenTTL().Seconds()),
		User:      dto.FromUserModel(*user),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	user, token, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{
		Token:     token,
		ExpiresIn: int64(h.authService.TokenTTL().Seconds()),
		User:      dto.FromUserModel(*user),
	})
}

// Me returns the user behind the session token.
func (h *AuthHandler) Me(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	user, err := h.authService.CurrentUser(ctx, requesterID(c))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromUserModel(*user))
}
