package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HappyTails-Pet-Care/service-boarding/internal/application"
	"github.com/HappyTails-Pet-Care/service-boarding/internal/platform/auth"
	"github.com/HappyTails-Pet-Care/service-boarding/internal/platform/middleware"
	"github.com/HappyTails-Pet-Care/service-boarding/internal/platform/response"
)

// ClientHandler handles registration, login and profile operations.
type ClientHandler struct {
	clients *application.ClientService
	loyalty *application.LoyaltyService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(clients *application.ClientService, loyalty *application.LoyaltyService) *ClientHandler {
	return &ClientHandler{clients: clients, loyalty: loyalty}
}

// RegisterRoutes registers auth and profile routes on the given router group.
func (h *ClientHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authGroup := r.Group("/api/v1/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}

	profile := r.Group("/api/v1/profile")
	profile.Use(middleware.AuthMiddleware(jwtManager))
	{
		profile.GET("", h.GetProfile)
		profile.PUT("", h.UpdateProfile)
		profile.GET("/loyalty", h.GetOwnLoyalty)
	}
}

// Register handles POST /api/v1/auth/register.
func (h *ClientHandler) Register(c *gin.Context) {
	var req application.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.clients.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// Login handles POST /api/v1/auth/login.
func (h *ClientHandler) Login(c *gin.Context) {
	var req application.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.clients.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetProfile handles GET /api/v1/profile.
func (h *ClientHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.clients.GetProfile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateProfile handles PUT /api/v1/profile.
func (h *ClientHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.clients.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetOwnLoyalty handles GET /api/v1/profile/loyalty.
func (h *ClientHandler) GetOwnLoyalty(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.loyalty.GetGrade(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
