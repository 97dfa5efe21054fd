package handlers

import (
	"net/http"

	"model-governance-service/internal/adapters/primary/http/dto"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) ListControls(c *gin.Context) {
	controls, err := h.controlSvc.List(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("list controls failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(controls))
}

func (h *Handler) GetControl(c *gin.Context) {
	control, err := h.controlSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, control)
}

func (h *Handler) CreateControl(c *gin.Context) {
	var req dto.CreateControlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	control, err := h.controlSvc.Create(c.Request.Context(), actor(c), req.ToDomain())
	if err != nil {
		log.WithError(err).WithField("control_id", req.ControlID).Error("create control failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, control)
}

func (h *Handler) UpdateControl(c *gin.Context) {
	var req dto.UpdateControlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	control, err := h.controlSvc.Update(c.Request.Context(), actor(c), c.Param("id"), req.ToControlUpdate())
	if err != nil {
		log.WithError(err).WithField("control_id", c.Param("id")).Error("update control failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, control)
}

func (h *Handler) DeleteControl(c *gin.Context) {
	if err := h.controlSvc.Delete(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		mapDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
