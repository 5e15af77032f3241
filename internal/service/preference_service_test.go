package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbarathsrinivasan/ACMHack/internal/models"
	appErrors "github.com/bbarathsrinivasan/ACMHack/pkg/errors"
)

type preferenceRepoStub struct {
	stored  map[string]*models.UserPreference
	getErr  error
	upserts int
}

func newPreferenceRepoStub() *preferenceRepoStub {
	return &preferenceRepoStub{stored: map[string]*models.UserPreference{}}
}

func (s *preferenceRepoStub) GetByUser(_ context.Context, userID string) (*models.UserPreference, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	pref, ok := s.stored[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return pref, nil
}

func (s *preferenceRepoStub) Upsert(_ context.Context, pref *models.UserPreference) error {
	s.upserts++
	pref.UpdatedAt = time.Date(2024, 1, 8, 8, 0, 0, 0, time.UTC)
	s.stored[pref.UserID] = pref
	return nil
}

func TestPreferenceServiceDefaults(t *testing.T) {
	svc := NewPreferenceService(newPreferenceRepoStub(), nil, nil)

	resp, err := svc.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, resp.Default)
	assert.Equal(t, 240, resp.Availability.MaxMinutesPerDay)
	assert.False(t, resp.Availability.ByDay[models.DaySunday].Enabled)
	assert.Equal(t, "22:00", resp.Availability.ProtectedHours.Start)

	withoutRepo := NewPreferenceService(nil, nil, nil)
	profile, err := withoutRepo.Profile(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultAvailability(), profile)
}

func TestPreferenceServiceUpsertRoundTrip(t *testing.T) {
	repo := newPreferenceRepoStub()
	svc := NewPreferenceService(repo, nil, nil)
	profile := models.DefaultAvailability()
	profile.MaxMinutesPerDay = 120

	resp, err := svc.Upsert(context.Background(), "user-1", profile)
	require.NoError(t, err)
	require.NotNil(t, resp.UpdatedAt)
	assert.Equal(t, 1, repo.upserts)

	var stored models.AvailabilityProfile
	require.NoError(t, json.Unmarshal(repo.stored["user-1"].Availability, &stored))
	assert.Equal(t, 120, stored.MaxMinutesPerDay)

	got, err := svc.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.False(t, got.Default)
	assert.Equal(t, profile, got.Availability)
}

func TestPreferenceServiceRejectsInvalidProfiles(t *testing.T) {
	svc := NewPreferenceService(newPreferenceRepoStub(), nil, nil)

	badClock := models.DefaultAvailability()
	badClock.ByDay[models.DayMonday] = models.DayAvailability{Enabled: true, Start: "9am", End: "18:00"}
	_, err := svc.Upsert(context.Background(), "user-1", badClock)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)

	badCap := models.DefaultAvailability()
	badCap.MaxMinutesPerDay = 2000
	_, err = svc.Upsert(context.Background(), "user-1", badCap)
	assert.Error(t, err)

	badDay := models.DefaultAvailability()
	badDay.ByDay["someday"] = models.DayAvailability{Start: "09:00", End: "10:00"}
	_, err = svc.Upsert(context.Background(), "user-1", badDay)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "someday", appErr.Detail("day"))
}

func TestPreferenceServiceWithoutRepositoryRefusesUpsert(t *testing.T) {
	svc := NewPreferenceService(nil, nil, nil)

	_, err := svc.Upsert(context.Background(), "user-1", models.DefaultAvailability())
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
}

func TestPreferenceServiceSurfacesRepositoryErrors(t *testing.T) {
	repo := newPreferenceRepoStub()
	repo.getErr = errors.New("connection reset")
	svc := NewPreferenceService(repo, nil, nil)

	_, err := svc.Get(context.Background(), "user-1")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInternal.Code, appErr.Code)
}
