package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HappyTails-Pet-Care/service-boarding/internal/domain"
)

type errorBody struct {
	Code    domain.ErrorCode `json:"code"`
	Message string           `json:"message"`
}

// Success writes a 200 response wrapping the payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// Created writes a 201 response wrapping the payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"data": data})
}

// NoContent writes a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Paginated writes a 200 response with paging metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, gin.H{
		"data": items,
		"meta": gin.H{"total": total, "page": page, "limit": limit},
	})
}

// BadRequest writes a 400 validation error response.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": errorBody{Code: domain.CodeValidation, Message: message},
	})
}

// Error maps a domain error to its HTTP status and writes it.
func Error(c *gin.Context, err error) {
	code, ok := domain.CodeOf(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": errorBody{Code: "INTERNAL_ERROR", Message: "internal server error"},
		})
		return
	}

	c.JSON(statusFor(code), gin.H{
		"error": errorBody{Code: code, Message: err.Error()},
	})
}

func statusFor(code domain.ErrorCode) int {
	switch code {
	case domain.CodeValidation:
		return http.StatusBadRequest
	case domain.CodeUnauthorized:
		return http.StatusUnauthorized
	case domain.CodeForbidden:
		return http.StatusForbidden
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeConflict:
		return http.StatusConflict
	case domain.CodeInvalidState:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
