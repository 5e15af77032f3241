package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/bbarathsrinivasan/ACMHack/internal/dto"
	"github.com/bbarathsrinivasan/ACMHack/internal/models"
	appErrors "github.com/bbarathsrinivasan/ACMHack/pkg/errors"
)

type preferenceRepository interface {
	GetByUser(ctx context.Context, userID string) (*models.UserPreference, error)
	Upsert(ctx context.Context, pref *models.UserPreference) error
}

// PreferenceService resolves user-scoped availability profiles. Without a repository every user
// gets the default profile and updates are refused.
type PreferenceService struct {
	repo      preferenceRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPreferenceService builds the service. repo may be nil.
func NewPreferenceService(repo preferenceRepository, validate *validator.Validate, logger *zap.Logger) *PreferenceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreferenceService{repo: repo, validator: validate, logger: logger}
}

// Get returns the stored profile or the defaults.
func (s *PreferenceService) Get(ctx context.Context, userID string) (*dto.AvailabilityResponse, error) {
	if s.repo == nil {
		return &dto.AvailabilityResponse{UserID: userID, Availability: models.DefaultAvailability(), Default: true}, nil
	}
	pref, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &dto.AvailabilityResponse{UserID: userID, Availability: models.DefaultAvailability(), Default: true}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}

	var profile models.AvailabilityProfile
	if err := json.Unmarshal(pref.Availability, &profile); err != nil {
		s.logger.Warn("stored availability unreadable, using defaults", zap.String("user_id", userID), zap.Error(err))
		return &dto.AvailabilityResponse{UserID: userID, Availability: models.DefaultAvailability(), Default: true}, nil
	}
	updatedAt := pref.UpdatedAt
	return &dto.AvailabilityResponse{UserID: userID, Availability: profile, UpdatedAt: &updatedAt}, nil
}

// Profile returns just the effective availability profile.
func (s *PreferenceService) Profile(ctx context.Context, userID string) (models.AvailabilityProfile, error) {
	resp, err := s.Get(ctx, userID)
	if err != nil {
		return models.AvailabilityProfile{}, err
	}
	return resp.Availability, nil
}

// Validate checks a profile without storing it.
func (s *PreferenceService) Validate(profile models.AvailabilityProfile) error {
	if err := s.validator.Struct(profile); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability profile")
	}
	known := make(map[models.DayKey]bool, len(models.DayKeys))
	for _, key := range models.DayKeys {
		known[key] = true
	}
	for key := range profile.ByDay {
		if !known[key] {
			return appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown day %q", key)), "day", string(key))
		}
	}
	return nil
}

// Upsert validates and stores the profile for userID.
func (s *PreferenceService) Upsert(ctx context.Context, userID string, profile models.AvailabilityProfile) (*dto.AvailabilityResponse, error) {
	if err := s.Validate(profile); err != nil {
		return nil, err
	}
	if s.repo == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "preference storage is not configured")
	}

	payload, err := json.Marshal(profile)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode availability")
	}
	pref := &models.UserPreference{UserID: userID, Availability: types.JSONText(payload)}
	if err := s.repo.Upsert(ctx, pref); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store availability")
	}
	s.logger.Info("availability updated", zap.String("user_id", userID))
	updatedAt := pref.UpdatedAt
	return &dto.AvailabilityResponse{UserID: userID, Availability: profile, UpdatedAt: &updatedAt}, nil
}
