package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbarathsrinivasan/ACMHack/internal/middleware"
	"github.com/bbarathsrinivasan/ACMHack/internal/models"
	"github.com/bbarathsrinivasan/ACMHack/internal/repository"
	"github.com/bbarathsrinivasan/ACMHack/internal/service"
	"github.com/bbarathsrinivasan/ACMHack/pkg/storage"
)

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	} `json:"error"`
	Meta map[string]any `json:"meta"`
}

type testAPI struct {
	router *gin.Engine
	store  *repository.VersionedStore
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	store := repository.NewVersionedStore(repository.NewFileCollection(local, "planblocks.json"), nil, 3)
	metrics := service.NewMetricsService()
	prefs := service.NewPreferenceService(nil, nil, nil)
	auditor := service.NewChangeAuditor(metrics, nil)

	router := gin.New()
	router.Use(middleware.WithResponseMeta())
	Register(router, "/api/v1", middleware.Anonymous(), Handlers{
		PlanBlocks:  NewPlanBlockHandler(service.NewPlanBlockService(store, prefs, auditor, metrics, time.UTC, nil, nil)),
		Planner:     NewPlannerHandler(service.NewPlannerService(store, prefs, nil, auditor, metrics, service.PlannerServiceConfig{ApplyMaxRetries: 2}, nil, nil)),
		Preferences: NewPreferenceHandler(prefs),
		Metrics:     NewMetricsHandler(metrics, nil),
	})
	return &testAPI{router: router, store: store}
}

func (a *testAPI) do(t *testing.T, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

const essayJSON = `{"title":"Essay","start":"2024-01-09T09:00:00Z","end":"2024-01-09T10:00:00Z"}`

func TestPlanBlocksListAndConditionalGet(t *testing.T) {
	api := newTestAPI(t)

	rec, env := api.do(t, http.MethodGet, "/api/v1/planblocks", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(env.Data))
	assert.Equal(t, repository.EmptyVersion(), env.Meta["version"])
	etag := rec.Header().Get("ETag")
	assert.Equal(t, strconv.Quote(repository.EmptyVersion()), etag)

	rec, _ = api.do(t, http.MethodGet, "/api/v1/planblocks", "", map[string]string{"If-None-Match": etag})
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestPlanBlocksCreateUpdateDelete(t *testing.T) {
	api := newTestAPI(t)
	empty := strconv.Quote(repository.EmptyVersion())

	rec, env := api.do(t, http.MethodPost, "/api/v1/planblocks", essayJSON, map[string]string{"If-Match": empty})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Block   models.PlanBlock `json:"block"`
		Version string           `json:"version"`
		Changes []models.DayChanges
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.NotEmpty(t, created.Block.ID)
	assert.Equal(t, strconv.Quote(created.Version), rec.Header().Get("ETag"))
	assert.Equal(t, true, env.Meta["conditional"])

	rec, env = api.do(t, http.MethodPatch, "/api/v1/planblocks/"+created.Block.ID, `{"title":"Essay draft"}`, map[string]string{"If-Match": strconv.Quote(created.Version)})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated struct {
		Block   models.PlanBlock `json:"block"`
		Version string           `json:"version"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "Essay draft", updated.Block.Title)

	rec, _ = api.do(t, http.MethodPatch, "/api/v1/planblocks", `{"id":"`+created.Block.ID+`","notes":"outline first"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	current := etagOf(rec)

	rec, _ = api.do(t, http.MethodDelete, "/api/v1/planblocks/"+created.Block.ID, "", map[string]string{"If-Match": current})
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, strconv.Quote(repository.EmptyVersion()), rec.Header().Get("ETag"))

	rec, env = api.do(t, http.MethodDelete, "/api/v1/planblocks", `{"id":"`+created.Block.ID+`"}`, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

// etagOf returns the ETag stamped on rec.
func etagOf(rec *httptest.ResponseRecorder) string {
	return rec.Header().Get("ETag")
}

func TestPlanBlocksErrors(t *testing.T) {
	api := newTestAPI(t)

	rec, env := api.do(t, http.MethodPost, "/api/v1/planblocks", `{"title":"Backwards","start":"2024-01-09T10:00:00Z","end":"2024-01-09T09:00:00Z"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	rec, _ = api.do(t, http.MethodPost, "/api/v1/planblocks", `{"title":`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = api.do(t, http.MethodPost, "/api/v1/planblocks", essayJSON, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	current := rec.Header().Get("ETag")

	rec, env = api.do(t, http.MethodPost, "/api/v1/planblocks", essayJSON, map[string]string{"If-Match": strconv.Quote(repository.EmptyVersion())})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "VERSION_MISMATCH", env.Error.Code)
	assert.Equal(t, current, rec.Header().Get("ETag"))
	assert.Equal(t, etagOf(rec), strconv.Quote(env.Error.Details["version"].(string)))

	rec, env = api.do(t, http.MethodPatch, "/api/v1/planblocks/missing", `{"title":"x"}`, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	rec, _ = api.do(t, http.MethodDelete, "/api/v1/planblocks", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlanBlocksExport(t *testing.T) {
	api := newTestAPI(t)
	rec, _ := api.do(t, http.MethodPost, "/api/v1/planblocks", essayJSON, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = api.do(t, http.MethodGet, "/api/v1/planblocks/export?format=csv", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "study-plan-")
	assert.Contains(t, rec.Body.String(), "Essay")

	rec, _ = api.do(t, http.MethodGet, "/api/v1/planblocks/export?format=docx", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
