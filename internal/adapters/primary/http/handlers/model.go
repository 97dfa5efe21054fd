package handlers

import (
	"net/http"

	"model-governance-service/internal/adapters/primary/http/dto"
	"model-governance-service/internal/core/domain"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) ListModels(c *gin.Context) {
	filter := domain.ModelFilter{
		BusinessDomain:   domain.BusinessDomain(c.Query("business_domain")),
		LineOfBusiness:   domain.LineOfBusiness(c.Query("line_of_business")),
		UseCaseCategory:  domain.UseCaseCategory(c.Query("use_case_category")),
		GovernanceStatus: domain.GovernanceStatus(c.Query("governance_status")),
		Jurisdiction:     c.Query("jurisdiction"),
	}

	models, err := h.modelSvc.List(c.Request.Context(), filter)
	if err != nil {
		log.WithError(err).Error("list models failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(models))
}

func (h *Handler) GetModel(c *gin.Context) {
	model, err := h.modelSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, model)
}

func (h *Handler) CreateModel(c *gin.Context) {
	var req dto.CreateModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	model, err := h.modelSvc.Register(c.Request.Context(), actor(c), req.ToDomain())
	if err != nil {
		log.WithError(err).Error("register model failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, model)
}

func (h *Handler) UpdateModel(c *gin.Context) {
	var req dto.UpdateModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	model, err := h.modelSvc.Update(c.Request.Context(), actor(c), c.Param("id"), req.ToModelUpdate())
	if err != nil {
		log.WithError(err).WithField("model_id", c.Param("id")).Error("update model failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, model)
}

func (h *Handler) ListLineage(c *gin.Context) {
	entries, err := h.lineageSvc.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(entries))
}

func (h *Handler) AddLineage(c *gin.Context) {
	var entry domain.LineageEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saved, err := h.lineageSvc.Append(c.Request.Context(), actor(c), c.Param("id"), &entry)
	if err != nil {
		log.WithError(err).WithField("model_id", c.Param("id")).Error("add lineage failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, saved)
}
