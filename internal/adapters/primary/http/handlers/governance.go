package handlers

import (
	"errors"
	"io"
	"net/http"

	"model-governance-service/internal/adapters/primary/http/dto"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) GetGovernanceSummary(c *gin.Context) {
	summary, err := h.summarySvc.Summarize(c.Request.Context(), c.Param("id"))
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *Handler) GetRiskScore(c *gin.Context) {
	score, err := h.riskSvc.Score(c.Request.Context(), c.Param("id"))
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, score)
}

func (h *Handler) ComputeRiskAssessment(c *gin.Context) {
	var req dto.ComputeRiskRequest
	// the body is optional
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	rec, err := h.riskSvc.ComputeAndRecord(c.Request.Context(), actor(c), c.Param("id"), req.MitigationPlan)
	if err != nil {
		log.WithError(err).WithField("model_id", c.Param("id")).Error("compute risk assessment failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, rec)
}
