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

// PetHandler handles HTTP requests for pet profiles.
type PetHandler struct {
	service *application.PetService
}

// NewPetHandler creates a new PetHandler.
func NewPetHandler(service *application.PetService) *PetHandler {
	return &PetHandler{service: service}
}

// RegisterRoutes registers all pet routes on the given router group.
func (h *PetHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	pets := r.Group("/api/v1/pets")
	pets.Use(middleware.AuthMiddleware(jwtManager))
	{
		pets.POST("", middleware.RequireRole(domain.RoleClient), h.CreatePet)
		pets.GET("", h.ListPets)
		pets.GET("/:id", h.GetPet)
		pets.PUT("/:id", h.UpdatePet)
		pets.DELETE("/:id", h.DeletePet)
	}
}

// CreatePet handles POST /api/v1/pets.
func (h *PetHandler) CreatePet(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreatePetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreatePet(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListPets handles GET /api/v1/pets. Returns the caller's own pets.
func (h *PetHandler) ListPets(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.ListOwnPets(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetPet handles GET /api/v1/pets/:id.
func (h *PetHandler) GetPet(c *gin.Context) {
	userID, role, ok := actor(c)
	if !ok {
		return
	}

	petID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid pet ID")
		return
	}

	result, err := h.service.GetPet(c.Request.Context(), userID, role, petID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdatePet handles PUT /api/v1/pets/:id.
func (h *PetHandler) UpdatePet(c *gin.Context) {
	userID, role, ok := actor(c)
	if !ok {
		return
	}

	petID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid pet ID")
		return
	}

	var req application.UpdatePetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdatePet(c.Request.Context(), userID, role, petID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeletePet handles DELETE /api/v1/pets/:id.
func (h *PetHandler) DeletePet(c *gin.Context) {
	userID, role, ok := actor(c)
	if !ok {
		return
	}

	petID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid pet ID")
		return
	}

	if err := h.service.DeletePet(c.Request.Context(), userID, role, petID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
