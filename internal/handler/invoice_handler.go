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

// InvoiceHandler handles HTTP requests for invoice operations.
type InvoiceHandler struct {
	service *application.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(service *application.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{service: service}
}

// RegisterRoutes registers all invoice routes on the given router group.
func (h *InvoiceHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	staffOnly := middleware.RequireRole(domain.RoleStaff)

	invoices := r.Group("/api/v1/invoices")
	invoices.Use(authMW)
	{
		invoices.GET("", h.ListInvoices)
		invoices.GET("/:id", h.GetInvoice)
		invoices.POST("", staffOnly, h.CreateInvoice)
		invoices.POST("/:id/pay", staffOnly, h.PayInvoice)
		invoices.POST("/:id/cancel", staffOnly, h.CancelInvoice)
	}

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(authMW, staffOnly)
	{
		bookings.POST("/:id/invoice", h.CreateFromBooking)
	}
}

// CreateInvoice handles POST /api/v1/invoices.
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	staffID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateInvoice(c.Request.Context(), staffID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// CreateFromBooking handles POST /api/v1/bookings/:id/invoice.
func (h *InvoiceHandler) CreateFromBooking(c *gin.Context) {
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

	var req struct {
		Notes string `json:"notes"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}

	result, err := h.service.CreateFromBooking(c.Request.Context(), staffID, bookingID, req.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// PayInvoice handles POST /api/v1/invoices/:id/pay.
func (h *InvoiceHandler) PayInvoice(c *gin.Context) {
	staffID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid invoice ID")
		return
	}

	var req application.PayInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.MarkPaid(c.Request.Context(), staffID, domain.RoleStaff, invoiceID, req.PaymentMethod)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CancelInvoice handles POST /api/v1/invoices/:id/cancel.
func (h *InvoiceHandler) CancelInvoice(c *gin.Context) {
	staffID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid invoice ID")
		return
	}

	result, err := h.service.CancelInvoice(c.Request.Context(), staffID, invoiceID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetInvoice handles GET /api/v1/invoices/:id.
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	userID, role, ok := actor(c)
	if !ok {
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid invoice ID")
		return
	}

	result, err := h.service.GetInvoice(c.Request.Context(), userID, role, invoiceID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListInvoices handles GET /api/v1/invoices. Clients see their own invoices;
// staff see everything.
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	userID, role, ok := actor(c)
	if !ok {
		return
	}

	page, limit := parsePagination(c)

	var (
		result *domain.PaginatedResult[application.InvoiceDTO]
		err    error
	)
	if role == domain.RoleStaff {
		result, err = h.service.ListAllInvoices(c.Request.Context(), page, limit)
	} else {
		result, err = h.service.ListClientInvoices(c.Request.Context(), userID, page, limit)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}
