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

// StaffHandler handles the staff back-office operations: rate settings,
// loyalty overrides, client administration and the audit trail.
type StaffHandler struct {
	settings *application.SettingsService
	loyalty  *application.LoyaltyService
	clients  *application.ClientService
	audits   *application.AuditService
}

// NewStaffHandler creates a new StaffHandler.
func NewStaffHandler(
	settings *application.SettingsService,
	loyalty *application.LoyaltyService,
	clients *application.ClientService,
	audits *application.AuditService,
) *StaffHandler {
	return &StaffHandler{settings: settings, loyalty: loyalty, clients: clients, audits: audits}
}

// RegisterRoutes registers staff routes on the given router group.
func (h *StaffHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	staff := r.Group("/api/v1/staff")
	staff.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(domain.RoleStaff))
	{
		staff.GET("/settings", h.GetSettings)
		staff.PUT("/settings", h.UpdateSettings)

		staff.GET("/clients", h.ListClients)
		staff.DELETE("/clients/:id", h.DeleteClient)
		staff.GET("/clients/:id/loyalty", h.GetLoyalty)
		staff.PUT("/clients/:id/loyalty", h.OverrideLoyalty)
		staff.DELETE("/clients/:id/loyalty", h.ResetLoyalty)

		staff.GET("/audit/:type/:id", h.AuditTrail)
	}
}

// GetSettings handles GET /api/v1/staff/settings.
func (h *StaffHandler) GetSettings(c *gin.Context) {
	result, err := h.settings.GetEffective(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateSettings handles PUT /api/v1/staff/settings. Unknown keys in the body
// are ignored.
func (h *StaffHandler) UpdateSettings(c *gin.Context) {
	var req map[string]int64
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.settings.Update(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListClients handles GET /api/v1/staff/clients.
func (h *StaffHandler) ListClients(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := h.clients.ListClients(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// DeleteClient handles DELETE /api/v1/staff/clients/:id. Removes the client
// and everything that belongs to them.
func (h *StaffHandler) DeleteClient(c *gin.Context) {
	staffID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid client ID")
		return
	}

	if err := h.clients.DeleteClient(c.Request.Context(), staffID, clientID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// GetLoyalty handles GET /api/v1/staff/clients/:id/loyalty.
func (h *StaffHandler) GetLoyalty(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid client ID")
		return
	}

	result, err := h.loyalty.GetGrade(c.Request.Context(), clientID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// OverrideLoyalty handles PUT /api/v1/staff/clients/:id/loyalty.
func (h *StaffHandler) OverrideLoyalty(c *gin.Context) {
	staffID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid client ID")
		return
	}

	var req application.OverrideGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.loyalty.OverrideGrade(c.Request.Context(), staffID, clientID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ResetLoyalty handles DELETE /api/v1/staff/clients/:id/loyalty. Clears a
// manual override and reapplies the earned tier.
func (h *StaffHandler) ResetLoyalty(c *gin.Context) {
	staffID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid client ID")
		return
	}

	result, err := h.loyalty.ResetGrade(c.Request.Context(), staffID, clientID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// AuditTrail handles GET /api/v1/staff/audit/:type/:id.
func (h *StaffHandler) AuditTrail(c *gin.Context) {
	entityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid entity ID")
		return
	}

	result, err := h.audits.Trail(c.Request.Context(), c.Param("type"), entityID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
