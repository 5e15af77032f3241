package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbarathsrinivasan/ACMHack/internal/dto"
	"github.com/bbarathsrinivasan/ACMHack/internal/repository"
)

const generateJSON = `{
	"now": "2024-01-08T08:00:00Z",
	"deliverables": [
		{"id": "hw1", "title": "hw1 title", "courseId": "cs101", "dueAt": "2024-01-10T23:59:00Z", "estimatedMinutes": 60}
	]
}`

func TestPlannerGenerateApplyDiff(t *testing.T) {
	api := newTestAPI(t)

	rec, env := api.do(t, http.MethodPost, "/api/v1/planner/generate", generateJSON, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "preview", env.Meta["mode"])
	var proposal dto.GeneratePlanResponse
	require.NoError(t, json.Unmarshal(env.Data, &proposal))
	require.Len(t, proposal.Blocks, 3)
	assert.Equal(t, "cs101", proposal.Blocks[0].CourseID)
	assert.Equal(t, "hw1", proposal.Blocks[0].RelatedAssignmentID)

	rec, env = api.do(t, http.MethodPost, "/api/v1/planner/apply", `{"proposalId":"`+proposal.ProposalID+`"}`,
		map[string]string{"If-Match": strconv.Quote(repository.EmptyVersion())})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var applied dto.ApplyPlanResponse
	require.NoError(t, json.Unmarshal(env.Data, &applied))
	assert.Len(t, applied.Created, 3)
	assert.Equal(t, strconv.Quote(applied.Version), rec.Header().Get("ETag"))

	rec, env = api.do(t, http.MethodPost, "/api/v1/planner/diff", `{"old":[]}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var diff dto.DiffPlanResponse
	require.NoError(t, json.Unmarshal(env.Data, &diff))
	assert.Equal(t, 3, diff.Summary.Added)
	assert.Equal(t, applied.Version, diff.Version)
}

func TestPlannerApplyStaleVersion(t *testing.T) {
	api := newTestAPI(t)
	rec, env := api.do(t, http.MethodPost, "/api/v1/planner/generate", generateJSON, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var proposal dto.GeneratePlanResponse
	require.NoError(t, json.Unmarshal(env.Data, &proposal))

	rec, env = api.do(t, http.MethodPost, "/api/v1/planner/apply", `{"proposalId":"`+proposal.ProposalID+`","version":"stale"}`, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "VERSION_MISMATCH", env.Error.Code)
	assert.Equal(t, strconv.Quote(repository.EmptyVersion()), rec.Header().Get("ETag"))
}

func TestPlannerValidation(t *testing.T) {
	api := newTestAPI(t)

	rec, env := api.do(t, http.MethodPost, "/api/v1/planner/generate", `{"deliverables":[]}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	rec, _ = api.do(t, http.MethodPost, "/api/v1/planner/apply", `{"proposalId":"unknown"}`, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = api.do(t, http.MethodPost, "/api/v1/planner/diff", `not json`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
