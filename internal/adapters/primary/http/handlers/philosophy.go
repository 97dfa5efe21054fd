package handlers

import (
	"net/http"
	"strconv"

	"model-governance-service/internal/adapters/primary/http/dto"
	"model-governance-service/internal/core/domain"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) ListPhilosophies(c *gin.Context) {
	scope := domain.PhilosophyScope(c.Query("scope"))

	docs, err := h.philosophySvc.List(c.Request.Context(), scope, c.Query("scope_ref"))
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(docs))
}

// UpsertPhilosophy creates or replaces the philosophy of the body's scope.
// use_llm_to_fill_gaps=true drafts empty sections first.
func (h *Handler) UpsertPhilosophy(c *gin.Context) {
	fill, ok := fillGapsParam(c)
	if !ok {
		return
	}

	var req dto.PhilosophyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.philosophySvc.Upsert(c.Request.Context(), actor(c), req.ToDomain(), fill)
	if err != nil {
		log.WithError(err).WithField("scope", req.Scope).Error("save philosophy failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

func (h *Handler) ReplacePhilosophy(c *gin.Context) {
	fill, ok := fillGapsParam(c)
	if !ok {
		return
	}

	var req dto.ReplacePhilosophyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.philosophySvc.Replace(c.Request.Context(), actor(c), req.ToDomain(c.Param("scope"), c.Param("ref")), fill)
	if err != nil {
		log.WithError(err).WithField("scope", c.Param("scope")).Error("replace philosophy failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

func (h *Handler) DeletePhilosophy(c *gin.Context) {
	key := domain.ScopeKey{Scope: domain.PhilosophyScope(c.Param("scope")), ScopeRef: c.Param("ref")}
	if err := h.philosophySvc.Delete(c.Request.Context(), actor(c), key); err != nil {
		mapDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) GetModelPhilosophy(c *gin.Context) {
	resolved, err := h.philosophySvc.ResolveForModel(c.Request.Context(), c.Param("id"))
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, resolved)
}

func fillGapsParam(c *gin.Context) (bool, bool) {
	raw := c.DefaultQuery("use_llm_to_fill_gaps", "false")
	fill, err := strconv.ParseBool(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "use_llm_to_fill_gaps must be a boolean"})
		return false, false
	}
	return fill, true
}
