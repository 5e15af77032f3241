package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bbarathsrinivasan/ACMHack/internal/dto"
	"github.com/bbarathsrinivasan/ACMHack/internal/middleware"
	"github.com/bbarathsrinivasan/ACMHack/internal/service"
	appErrors "github.com/bbarathsrinivasan/ACMHack/pkg/errors"
	"github.com/bbarathsrinivasan/ACMHack/pkg/response"
)

type plannerService interface {
	Generate(ctx context.Context, userID string, req dto.GeneratePlanRequest) (*dto.GeneratePlanResponse, error)
	Apply(ctx context.Context, userID string, req dto.ApplyPlanRequest) (*dto.ApplyPlanResponse, error)
	Diff(ctx context.Context, userID string, req dto.DiffPlanRequest) (*dto.DiffPlanResponse, error)
}

// PlannerHandler exposes study plan generation.
type PlannerHandler struct {
	service plannerService
}

// NewPlannerHandler constructs the handler.
func NewPlannerHandler(svc *service.PlannerService) *PlannerHandler {
	return &PlannerHandler{service: svc}
}

// Generate godoc
// @Summary Propose study blocks for deliverables
// @Description Runs the allocator against the caller's availability and keeps the proposal for apply.
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.GeneratePlanRequest true "Deliverables and options"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /planner/generate [post]
func (h *PlannerHandler) Generate(c *gin.Context) {
	var req dto.GeneratePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	result, err := h.service.Generate(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "mode", "preview")
	response.JSON(c, http.StatusOK, result, middleware.ExtractMeta(c))
}

// Apply godoc
// @Summary Persist a proposal or explicit drafts
// @Description Blocks are created one at a time. If-Match or body version pins the starting collection version.
// @Tags Planner
// @Accept json
// @Produce json
// @Param If-Match header string false "Expected collection version"
// @Param payload body dto.ApplyPlanRequest true "Proposal id or drafts"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /planner/apply [post]
func (h *PlannerHandler) Apply(c *gin.Context) {
	var req dto.ApplyPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid apply payload"))
		return
	}
	if req.Version == "" {
		req.Version = expectedVersion(c)
	}
	result, err := h.service.Apply(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Versioned(c, http.StatusOK, result, result.Version, middleware.ExtractMeta(c))
}

// Diff godoc
// @Summary Explain differences between two plan snapshots
// @Description Omitting new compares old against the stored collection.
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.DiffPlanRequest true "Snapshots"
// @Success 200 {object} response.Envelope
// @Router /planner/diff [post]
func (h *PlannerHandler) Diff(c *gin.Context) {
	var req dto.DiffPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid diff payload"))
		return
	}
	result, err := h.service.Diff(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Versioned(c, http.StatusOK, result, result.Version, middleware.ExtractMeta(c))
}
