package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bbarathsrinivasan/ACMHack/internal/dto"
	"github.com/bbarathsrinivasan/ACMHack/internal/middleware"
	"github.com/bbarathsrinivasan/ACMHack/internal/service"
	appErrors "github.com/bbarathsrinivasan/ACMHack/pkg/errors"
	"github.com/bbarathsrinivasan/ACMHack/pkg/response"
)

type planBlockService interface {
	List(ctx context.Context) (*dto.PlanBlockList, error)
	Create(ctx context.Context, userID string, req dto.CreatePlanBlockRequest, expected string) (*dto.PlanBlockMutation, error)
	Update(ctx context.Context, userID, id string, req dto.UpdatePlanBlockRequest, expected string) (*dto.PlanBlockMutation, error)
	Delete(ctx context.Context, userID, id string, expected string) (*dto.PlanBlockMutation, error)
	Export(ctx context.Context, format dto.ExportFormat) (*dto.PlanExport, error)
}

// PlanBlockHandler exposes the versioned plan collection.
type PlanBlockHandler struct {
	service planBlockService
}

// NewPlanBlockHandler constructs the handler.
func NewPlanBlockHandler(svc *service.PlanBlockService) *PlanBlockHandler {
	return &PlanBlockHandler{service: svc}
}

// List godoc
// @Summary List plan blocks
// @Description Returns the collection with its version as ETag and meta.version. A matching If-None-Match yields 304.
// @Tags PlanBlocks
// @Produce json
// @Param If-None-Match header string false "Previously seen version"
// @Success 200 {object} response.Envelope
// @Success 304
// @Router /planblocks [get]
func (h *PlanBlockHandler) List(c *gin.Context) {
	result, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if seen := response.ParseETag(c.GetHeader("If-None-Match")); seen != "" && seen == result.Version {
		response.NotModified(c, result.Version)
		return
	}
	response.Versioned(c, http.StatusOK, result.Blocks, result.Version, middleware.ExtractMeta(c))
}

// Create godoc
// @Summary Create a plan block
// @Tags PlanBlocks
// @Accept json
// @Produce json
// @Param If-Match header string false "Expected collection version"
// @Param payload body dto.CreatePlanBlockRequest true "Plan block"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /planblocks [post]
func (h *PlanBlockHandler) Create(c *gin.Context) {
	var req dto.CreatePlanBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid plan block payload"))
		return
	}
	expected := expectedVersion(c)
	middleware.SetMeta(c, "conditional", expected != "")
	result, err := h.service.Create(c.Request.Context(), currentUserID(c), req, expected)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Versioned(c, http.StatusCreated, result, result.Version, middleware.ExtractMeta(c))
}

// Update godoc
// @Summary Update a plan block
// @Description Merges the payload onto the block. The id comes from the path, or from the body on the collection route.
// @Tags PlanBlocks
// @Accept json
// @Produce json
// @Param id path string false "Plan block ID"
// @Param If-Match header string false "Expected collection version"
// @Param payload body dto.UpdatePlanBlockRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /planblocks/{id} [patch]
func (h *PlanBlockHandler) Update(c *gin.Context) {
	var req dto.UpdatePlanBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid plan block payload"))
		return
	}
	id := c.Param("id")
	if id == "" {
		id = req.ID
	}
	expected := expectedVersion(c)
	middleware.SetMeta(c, "conditional", expected != "")
	result, err := h.service.Update(c.Request.Context(), currentUserID(c), id, req, expected)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Versioned(c, http.StatusOK, result, result.Version, middleware.ExtractMeta(c))
}

// Delete godoc
// @Summary Delete a plan block
// @Description The new collection version is returned in the ETag header.
// @Tags PlanBlocks
// @Param id path string false "Plan block ID"
// @Param If-Match header string false "Expected collection version"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /planblocks/{id} [delete]
func (h *PlanBlockHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		var req dto.DeletePlanBlockRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "plan block id is required"))
			return
		}
		id = req.ID
	}
	result, err := h.service.Delete(c.Request.Context(), currentUserID(c), id, expectedVersion(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c, result.Version)
}

// Export godoc
// @Summary Export the plan
// @Tags PlanBlocks
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Success 200 {file} file
// @Router /planblocks/export [get]
func (h *PlanBlockHandler) Export(c *gin.Context) {
	format := dto.ExportFormat(c.DefaultQuery("format", string(dto.ExportFormatCSV)))
	result, err := h.service.Export(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
