package handlers

import (
	"errors"
	"net/http"

	"model-governance-service/internal/core/domain"

	"github.com/gin-gonic/gin"
)

func mapDomainError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	switch {
	// Commit and generation failures hide their cause, which may wrap any
	// other category.
	case errors.Is(err, domain.ErrGenerationFailed):
		c.JSON(http.StatusInternalServerError, gin.H{"error": domain.ErrGenerationFailed.Error()})
	case errors.Is(err, domain.ErrAuditWriteFailed):
		c.JSON(http.StatusInternalServerError, gin.H{"error": domain.ErrAuditWriteFailed.Error()})

	// Not found errors
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	// Bad request / validation errors
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": verr.Field})
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	// Conflict errors
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
