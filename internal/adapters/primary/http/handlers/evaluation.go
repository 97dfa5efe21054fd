package handlers

import (
	"net/http"

	"model-governance-service/internal/adapters/primary/http/dto"
	"model-governance-service/internal/core/domain"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// AppendEvaluation returns the handler that appends one record of kind to
// the model named by the path.
func (h *Handler) AppendEvaluation(kind domain.EvaluationKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := domain.NewEvaluation(kind)
		if err != nil {
			mapDomainError(c, err)
			return
		}
		if err := c.ShouldBindJSON(rec); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		saved, err := h.evaluationSvc.Append(c.Request.Context(), actor(c), c.Param("id"), rec)
		if err != nil {
			log.WithError(err).WithFields(log.Fields{
				"model_id": c.Param("id"),
				"kind":     kind,
			}).Error("append evaluation failed")
			mapDomainError(c, err)
			return
		}

		c.JSON(http.StatusCreated, saved)
	}
}

// ListEvaluations returns the handler that lists the model's records of
// kind in append order.
func (h *Handler) ListEvaluations(kind domain.EvaluationKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := h.evaluationSvc.ListByModel(c.Request.Context(), kind, c.Param("id"))
		if err != nil {
			mapDomainError(c, err)
			return
		}

		c.JSON(http.StatusOK, dto.NewListResponse(records))
	}
}

func (h *Handler) AppendControlEvaluations(c *gin.Context) {
	var evals []*domain.ControlEvaluation
	if err := c.ShouldBindJSON(&evals); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	for _, e := range evals {
		if e == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "control evaluation must not be null"})
			return
		}
	}

	saved, err := h.evaluationSvc.AppendControlEvaluations(c.Request.Context(), actor(c), c.Param("id"), evals)
	if err != nil {
		log.WithError(err).WithField("model_id", c.Param("id")).Error("append control evaluations failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewListResponse(saved))
}
