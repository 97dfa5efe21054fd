package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path"

	"model-governance-service/internal/adapters/primary/http/dto"
	"model-governance-service/internal/core/domain"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// GenerateEvidencePack builds a new pack for the model. The creator is the
// created_by query parameter, falling back to the X-User-ID header.
func (h *Handler) GenerateEvidencePack(c *gin.Context) {
	createdBy := c.DefaultQuery("created_by", actor(c))

	pack, err := h.packSvc.Generate(c.Request.Context(), createdBy, c.Param("id"))
	if err != nil {
		log.WithError(err).WithField("model_id", c.Param("id")).Error("generate evidence pack failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToEvidencePackResponse(pack, h.basePath))
}

func (h *Handler) ListEvidencePacks(c *gin.Context) {
	packs, err := h.packSvc.List(c.Request.Context(), c.Query("model_id"))
	if err != nil {
		log.WithError(err).Error("list evidence packs failed")
		mapDomainError(c, err)
		return
	}

	items := make([]dto.EvidencePackResponse, 0, len(packs))
	for _, p := range packs {
		items = append(items, dto.ToEvidencePackResponse(p, h.basePath))
	}

	c.JSON(http.StatusOK, dto.NewListResponse(items))
}

func (h *Handler) GetEvidencePack(c *gin.Context) {
	pack, err := h.packSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToEvidencePackResponse(pack, h.basePath))
}

// DownloadEvidencePack streams the pack archive, or a single document when
// the file query parameter names one.
func (h *Handler) DownloadEvidencePack(c *gin.Context) {
	packID := c.Param("id")
	name := c.DefaultQuery("file", domain.ArchiveFileName)
	if name != path.Base(name) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file name"})
		return
	}

	rc, err := h.packSvc.OpenArtifact(c.Request.Context(), packID, name)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		log.WithError(err).WithField("pack_id", packID).Error("read evidence pack artifact failed")
		mapDomainError(c, err)
		return
	}

	filename := name
	if name == domain.ArchiveFileName {
		filename = packID + ".zip"
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType(name), data)
}

func contentType(name string) string {
	switch path.Ext(name) {
	case ".zip":
		return "application/zip"
	case ".md":
		return "text/markdown; charset=utf-8"
	case ".yaml":
		return "application/yaml"
	}
	return "application/octet-stream"
}
