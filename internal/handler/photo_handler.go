package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/HappyTails-Pet-Care/service-boarding/internal/application"
	"github.com/HappyTails-Pet-Care/service-boarding/internal/domain"
	"github.com/HappyTails-Pet-Care/service-boarding/internal/platform/auth"
	"github.com/HappyTails-Pet-Care/service-boarding/internal/platform/middleware"
	"github.com/HappyTails-Pet-Care/service-boarding/internal/platform/response"
)

// PhotoHandler handles HTTP requests for stay photos.
type PhotoHandler struct {
	service *application.PhotoService
}

// NewPhotoHandler creates a new PhotoHandler.
func NewPhotoHandler(service *application.PhotoService) *PhotoHandler {
	return &PhotoHandler{service: service}
}

// RegisterRoutes registers photo routes on the given router group.
func (h *PhotoHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	photos := r.Group("/api/v1/bookings/:id/photos")
	photos.Use(middleware.AuthMiddleware(jwtManager))
	{
		photos.POST("", middleware.RequireRole(domain.RoleStaff), h.AttachPhoto)
		photos.GET("", h.ListPhotos)
	}
}

// AttachPhoto handles POST /api/v1/bookings/:id/photos.
func (h *PhotoHandler) AttachPhoto(c *gin.Context) {
	staffID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	var req application.AttachPhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.AttachPhoto(c.Request.Context(), staffID, bookingID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListPhotos handles GET /api/v1/bookings/:id/photos.
func (h *PhotoHandler) ListPhotos(c *gin.Context) {
	userID, role, ok := actor(c)
	if !ok {
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.service.ListPhotos(c.Request.Context(), userID, role, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
