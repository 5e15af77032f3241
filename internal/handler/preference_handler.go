package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bbarathsrinivasan/ACMHack/internal/dto"
	"github.com/bbarathsrinivasan/ACMHack/internal/models"
	"github.com/bbarathsrinivasan/ACMHack/internal/service"
	appErrors "github.com/bbarathsrinivasan/ACMHack/pkg/errors"
	"github.com/bbarathsrinivasan/ACMHack/pkg/response"
)

type preferenceService interface {
	Get(ctx context.Context, userID string) (*dto.AvailabilityResponse, error)
	Upsert(ctx context.Context, userID string, profile models.AvailabilityProfile) (*dto.AvailabilityResponse, error)
}

// PreferenceHandler exposes the caller's availability profile.
type PreferenceHandler struct {
	service preferenceService
}

// NewPreferenceHandler constructs the handler.
func NewPreferenceHandler(svc *service.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{service: svc}
}

// Get godoc
// @Summary Get availability preferences
// @Tags Preferences
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /preferences/availability [get]
func (h *PreferenceHandler) Get(c *gin.Context) {
	result, err := h.service.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Upsert godoc
// @Summary Replace availability preferences
// @Tags Preferences
// @Accept json
// @Produce json
// @Param payload body models.AvailabilityProfile true "Availability profile"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /preferences/availability [put]
func (h *PreferenceHandler) Upsert(c *gin.Context) {
	var profile models.AvailabilityProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid availability payload"))
		return
	}
	result, err := h.service.Upsert(c.Request.Context(), currentUserID(c), profile)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
