package handlers

import (
	"net/http"
	"strconv"

	"model-governance-service/internal/adapters/primary/http/dto"
	"model-governance-service/internal/core/domain"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) ListAuditLog(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(domain.DefaultAuditLimit)))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}

	filter := domain.AuditFilter{
		ModelID:    c.Query("model_id"),
		EntityType: c.Query("entity_type"),
		ActionType: c.Query("action_type"),
		Limit:      limit,
	}

	entries, err := h.auditSvc.List(c.Request.Context(), filter)
	if err != nil {
		log.WithError(err).Error("list audit log failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(entries))
}

func (h *Handler) VerifyAuditLog(c *gin.Context) {
	result, err := h.auditSvc.Verify(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("verify audit log failed")
		mapDomainError(c, err)
		return
	}

	status := http.StatusOK
	if !result.Valid {
		status = http.StatusConflict
	}
	c.JSON(status, result)
}
