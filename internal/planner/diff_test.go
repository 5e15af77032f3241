package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbarathsrinivasan/ACMHack/internal/models"
)

func TestDiffIdenticalSnapshotsIsEmpty(t *testing.T) {
	blocks := []models.PlanBlock{
		block("a", "2024-01-09T09:00:00Z", "2024-01-09T10:00:00Z"),
		block("b", "2024-01-10T09:00:00Z", "2024-01-10T10:00:00Z"),
	}

	report := Diff(blocks, blocks, 240, time.UTC)

	assert.Empty(t, report)
	assert.Equal(t, models.ChangeSummary{}, Summarize(report))
}

func TestDiffClassifiesEveryIDOnce(t *testing.T) {
	prev := []models.PlanBlock{
		block("keep", "2024-01-09T09:00:00Z", "2024-01-09T10:00:00Z"),
		block("move", "2024-01-09T11:00:00Z", "2024-01-09T12:00:00Z"),
		block("gone", "2024-01-09T13:00:00Z", "2024-01-09T14:00:00Z"),
	}
	next := []models.PlanBlock{
		block("keep", "2024-01-09T09:00:00Z", "2024-01-09T10:00:00Z"),
		block("move", "2024-01-10T11:00:00Z", "2024-01-10T12:00:00Z"),
		block("new", "2024-01-09T15:00:00Z", "2024-01-09T15:30:00Z"),
	}

	report := Diff(prev, next, 0, time.UTC)

	require.Len(t, report, 2)
	assert.Equal(t, "2024-01-09", report[0].DayKey)
	assert.Equal(t, "2024-01-10", report[1].DayKey)

	seen := map[string]models.ChangeType{}
	for _, day := range report {
		for _, bucket := range [][]models.PlanChange{day.Added, day.Removed, day.Moved} {
			for _, change := range bucket {
				_, dup := seen[change.Block.ID]
				assert.False(t, dup, "block %s classified twice", change.Block.ID)
				seen[change.Block.ID] = change.Type
			}
		}
	}
	assert.Equal(t, map[string]models.ChangeType{
		"move": models.ChangeMoved,
		"gone": models.ChangeRemoved,
		"new":  models.ChangeAdded,
	}, seen)

	moved := report[1].Moved[0]
	require.NotNil(t, moved.From)
	assert.Equal(t, mustTime(t, "2024-01-09T11:00:00Z"), moved.From.Start)
	assert.Equal(t, "2024-01-10", moved.DayKey)
	assert.Empty(t, report[0].Removed[0].Reasons)
	assert.NotNil(t, report[0].Removed[0].Reasons)

	summary := Summarize(report)
	assert.Equal(t, models.ChangeSummary{Days: 2, Added: 1, Removed: 1, Moved: 1}, summary)
}

func TestDiffSameDayTimeShiftIsMoved(t *testing.T) {
	prev := []models.PlanBlock{block("a", "2024-01-09T09:00:00Z", "2024-01-09T10:00:00Z")}
	next := []models.PlanBlock{block("a", "2024-01-09T09:00:00Z", "2024-01-09T10:30:00Z")}

	report := Diff(prev, next, 0, time.UTC)

	require.Len(t, report, 1)
	require.Len(t, report[0].Moved, 1)
	assert.Empty(t, report[0].Added)
	assert.Empty(t, report[0].Removed)
}

func TestDiffOverlapReason(t *testing.T) {
	prev := []models.PlanBlock{
		block("x", "2024-01-09T09:00:00Z", "2024-01-09T10:00:00Z"),
		block("y", "2024-01-09T09:30:00Z", "2024-01-09T10:30:00Z"),
	}
	next := append([]models.PlanBlock{}, prev...)
	next = append(next, block("z", "2024-01-09T09:15:00Z", "2024-01-09T09:45:00Z"))

	report := Diff(prev, next, 0, time.UTC)

	require.Len(t, report, 1)
	require.Len(t, report[0].Added, 1)
	added := report[0].Added[0]
	assert.Equal(t, "z", added.Block.ID)
	assert.Equal(t, 2, added.Overlaps)
	assert.Equal(t, []string{"overlaps 2 blocks"}, added.Reasons)
	assert.Equal(t, 1, Summarize(report).Flagged)
}

func TestDiffAdjacentBlocksDoNotOverlap(t *testing.T) {
	next := []models.PlanBlock{
		block("a", "2024-01-09T09:00:00Z", "2024-01-09T10:00:00Z"),
		block("b", "2024-01-09T10:00:00Z", "2024-01-09T11:00:00Z"),
	}

	report := Diff(nil, next, 0, time.UTC)

	require.Len(t, report, 1)
	require.Len(t, report[0].Added, 2)
	for _, change := range report[0].Added {
		assert.Empty(t, change.Reasons)
		assert.Zero(t, change.Overlaps)
	}
}

func TestDiffCapReason(t *testing.T) {
	prev := []models.PlanBlock{block("a", "2024-01-09T09:00:00Z", "2024-01-09T11:00:00Z")}
	next := []models.PlanBlock{
		block("a", "2024-01-09T09:00:00Z", "2024-01-09T11:00:00Z"),
		block("b", "2024-01-09T13:00:00Z", "2024-01-09T14:30:00Z"),
	}

	report := Diff(prev, next, 180, time.UTC)

	require.Len(t, report, 1)
	added := report[0].Added[0]
	assert.Equal(t, 30, added.CapExceededBy)
	assert.Equal(t, []string{"cap exceeded by 30 min"}, added.Reasons)
}

func TestDiffDoesNotMutateInputs(t *testing.T) {
	prev := []models.PlanBlock{block("a", "2024-01-09T09:00:00Z", "2024-01-09T10:00:00Z")}
	next := []models.PlanBlock{block("a", "2024-01-10T09:00:00Z", "2024-01-10T10:00:00Z")}
	prevCopy := append([]models.PlanBlock{}, prev...)
	nextCopy := append([]models.PlanBlock{}, next...)

	Diff(prev, next, 60, time.UTC)

	assert.Equal(t, prevCopy, prev)
	assert.Equal(t, nextCopy, next)
}

func TestDiffUsesLocationForDayKey(t *testing.T) {
	loc := time.FixedZone("PST", -8*60*60)
	next := []models.PlanBlock{block("late", "2024-01-10T05:00:00Z", "2024-01-10T06:00:00Z")}

	report := Diff(nil, next, 0, loc)

	require.Len(t, report, 1)
	assert.Equal(t, "2024-01-09", report[0].DayKey)
}
