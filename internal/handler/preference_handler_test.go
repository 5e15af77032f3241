package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbarathsrinivasan/ACMHack/internal/dto"
	"github.com/bbarathsrinivasan/ACMHack/internal/middleware"
	"github.com/bbarathsrinivasan/ACMHack/internal/models"
)

type preferenceServiceMock struct {
	userID   string
	received models.AvailabilityProfile
}

func (m *preferenceServiceMock) Get(_ context.Context, userID string) (*dto.AvailabilityResponse, error) {
	m.userID = userID
	return &dto.AvailabilityResponse{UserID: userID, Availability: models.DefaultAvailability(), Default: true}, nil
}

func (m *preferenceServiceMock) Upsert(_ context.Context, userID string, profile models.AvailabilityProfile) (*dto.AvailabilityResponse, error) {
	m.userID = userID
	m.received = profile
	return &dto.AvailabilityResponse{UserID: userID, Availability: profile}, nil
}

func TestPreferenceHandlerScopesToCaller(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &preferenceServiceMock{}
	router := gin.New()
	Register(router, "/api/v1", middleware.Anonymous(), Handlers{Preferences: &PreferenceHandler{service: mock}})
	api := &testAPI{router: router}

	rec, env := api.do(t, http.MethodGet, "/api/v1/preferences/availability", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.AnonymousUserID, mock.userID)
	var got dto.AvailabilityResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.True(t, got.Default)

	body := `{"byDay":{"mon":{"enabled":true,"start":"08:00","end":"12:00"}},"maxMinutesPerDay":90,"protectedHours":{"start":"22:00","end":"07:00"}}`
	rec, _ = api.do(t, http.MethodPut, "/api/v1/preferences/availability", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 90, mock.received.MaxMinutesPerDay)
	assert.Equal(t, "08:00", mock.received.ByDay[models.DayMonday].Start)
}

func TestPreferenceHandlerRejectsBadJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	Register(router, "/api/v1", nil, Handlers{Preferences: &PreferenceHandler{service: &preferenceServiceMock{}}})
	api := &testAPI{router: router}

	rec, _ := api.do(t, http.MethodPut, "/api/v1/preferences/availability", `{"byDay":`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReadinessReportsFailingChecks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	Register(router, "/api/v1", nil, Handlers{Metrics: NewMetricsHandler(nil, map[string]ReadinessCheck{
		"store": func(context.Context) error { return nil },
		"redis": func(context.Context) error { return errors.New("connection refused") },
	})})
	api := &testAPI{router: router}

	rec, _ := api.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = api.do(t, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unavailable", body.Status)
	assert.Equal(t, "ok", body.Checks["store"])
	assert.Equal(t, "connection refused", body.Checks["redis"])

	rec, _ = api.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
