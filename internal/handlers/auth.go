package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/instasocial/social-api/internal/middleware"
	"github.com/instasocial/social-api/internal/models"
	"github.com/instasocial/social-api/internal/services"
	"github.com/instasocial/social-api/pkg/logger"
)

type AuthHandler struct {
	authService *services.AuthService
	jwtConfig   *middleware.JWTConfig
	logger      *logger.Logger
}

func NewAuthHandler(authService *services.AuthService, jwtConfig *middleware.JWTConfig, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtConfig:   jwtConfig,
		logger:      logger,
	}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req services.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.authService.Signup(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.respondWithToken(c, user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.respondWithToken(c, user)
}

func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CurrentUser(c))
}

func (h *AuthHandler) respondWithToken(c *gin.Context, user *models.User) {
	token, err := middleware.GenerateToken(h.jwtConfig, user.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  user,
		"token": token,
	})
}
