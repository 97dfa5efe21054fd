package handlers

import (
	"model-governance-service/internal/core/domain"
	"model-governance-service/internal/core/services"

	"github.com/gin-gonic/gin"
)

// HeaderUserID carries the acting user. Requests without it are recorded as
// the configured default actor.
const HeaderUserID = "X-User-ID"

type Handler struct {
	modelSvc      *services.ModelService
	lineageSvc    *services.LineageService
	evaluationSvc *services.EvaluationService
	summarySvc    *services.SummaryService
	riskSvc       *services.RiskService
	controlSvc    *services.ControlService
	philosophySvc *services.PhilosophyService
	packSvc       *services.EvidencePackService
	auditSvc      *services.AuditService
	basePath      string
}

func New(
	modelSvc *services.ModelService,
	lineageSvc *services.LineageService,
	evaluationSvc *services.EvaluationService,
	summarySvc *services.SummaryService,
	riskSvc *services.RiskService,
	controlSvc *services.ControlService,
	philosophySvc *services.PhilosophyService,
	packSvc *services.EvidencePackService,
	auditSvc *services.AuditService,
) *Handler {
	return &Handler{
		modelSvc:      modelSvc,
		lineageSvc:    lineageSvc,
		evaluationSvc: evaluationSvc,
		summarySvc:    summarySvc,
		riskSvc:       riskSvc,
		controlSvc:    controlSvc,
		philosophySvc: philosophySvc,
		packSvc:       packSvc,
		auditSvc:      auditSvc,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	h.basePath = r.BasePath()

	// Models
	r.GET("/models", h.ListModels)
	r.GET("/models/:id", h.GetModel)
	r.POST("/models", h.CreateModel)
	r.PATCH("/models/:id", h.UpdateModel)

	// Lineage
	r.GET("/models/:id/lineage", h.ListLineage)
	r.POST("/models/:id/lineage", h.AddLineage)

	// Evaluations
	r.GET("/models/:id/bias", h.ListEvaluations(domain.KindBias))
	r.POST("/models/:id/bias", h.AppendEvaluation(domain.KindBias))
	r.GET("/models/:id/drift", h.ListEvaluations(domain.KindDrift))
	r.POST("/models/:id/drift", h.AppendEvaluation(domain.KindDrift))
	r.GET("/models/:id/explainability", h.ListEvaluations(domain.KindExplainability))
	r.POST("/models/:id/explainability", h.AppendEvaluation(domain.KindExplainability))
	r.GET("/models/:id/rag-evaluations", h.ListEvaluations(domain.KindRAG))
	r.POST("/models/:id/rag-evaluations", h.AppendEvaluation(domain.KindRAG))
	r.GET("/models/:id/risk-assessments", h.ListEvaluations(domain.KindRiskAssessment))
	r.POST("/models/:id/risk-assessments", h.AppendEvaluation(domain.KindRiskAssessment))
	r.POST("/models/:id/risk-assessments/compute", h.ComputeRiskAssessment)
	r.GET("/models/:id/controls/evaluations", h.ListEvaluations(domain.KindControl))
	r.POST("/models/:id/controls/evaluations", h.AppendControlEvaluations)

	// Derived views
	r.GET("/models/:id/governance-summary", h.GetGovernanceSummary)
	r.GET("/models/:id/risk-score", h.GetRiskScore)

	// Control Catalog
	r.GET("/controls", h.ListControls)
	r.GET("/controls/:id", h.GetControl)
	r.POST("/controls", h.CreateControl)
	r.PUT("/controls/:id", h.UpdateControl)
	r.DELETE("/controls/:id", h.DeleteControl)

	// Governance Philosophy
	r.GET("/governance/philosophy", h.ListPhilosophies)
	r.POST("/governance/philosophy", h.UpsertPhilosophy)
	r.PUT("/governance/philosophy/:scope/:ref", h.ReplacePhilosophy)
	r.DELETE("/governance/philosophy/:scope/:ref", h.DeletePhilosophy)
	r.GET("/models/:id/philosophy", h.GetModelPhilosophy)

	// Evidence Packs
	r.POST("/models/:id/evidence-packs", h.GenerateEvidencePack)
	r.GET("/evidence-packs", h.ListEvidencePacks)
	r.GET("/evidence-packs/:id", h.GetEvidencePack)
	r.GET("/evidence-packs/:id/download", h.DownloadEvidencePack)

	// Audit Log
	r.GET("/audit-log", h.ListAuditLog)
	r.GET("/audit-log/verify", h.VerifyAuditLog)
}

// actor returns the acting user of the request. An empty value lets the
// audit recorder apply its default.
func actor(c *gin.Context) string {
	return c.GetHeader(HeaderUserID)
}
