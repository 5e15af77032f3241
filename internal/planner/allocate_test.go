package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbarathsrinivasan/ACMHack/internal/models"
)

func TestAllocateTuesdayScenario(t *testing.T) {
	now := mustTime(t, "2024-01-08T08:00:00Z")
	profile := onlyDays(240, models.TimeWindow{Start: "22:00", End: "07:00"}, map[models.DayKey]models.DayAvailability{
		models.DayTuesday: {Enabled: true, Start: "09:00", End: "18:00"},
	})

	blocks := Allocate([]models.Deliverable{
		deliverable("hw1", "2024-01-10T23:59:00Z", 60),
	}, profile, now)

	require.Len(t, blocks, 3)
	assert.Equal(t, mustTime(t, "2024-01-09T16:30:00Z"), blocks[0].Start)
	assert.Equal(t, mustTime(t, "2024-01-09T17:00:00Z"), blocks[0].End)
	assert.Equal(t, mustTime(t, "2024-01-09T17:00:00Z"), blocks[1].Start)
	assert.Equal(t, mustTime(t, "2024-01-09T17:30:00Z"), blocks[2].Start)
	assert.Equal(t, mustTime(t, "2024-01-09T18:00:00Z"), blocks[2].End)
	for _, block := range blocks {
		assert.Equal(t, "Study: hw1 title", block.Title)
		assert.Equal(t, "hw1", block.RelatedAssignmentID)
		assert.Equal(t, "course-1", block.CourseID)
		assert.Empty(t, block.ID)
	}
}

func TestPlanReportsOutcomes(t *testing.T) {
	now := mustTime(t, "2024-01-08T08:00:00Z")
	profile := onlyDays(60, models.TimeWindow{}, map[models.DayKey]models.DayAvailability{
		models.DayTuesday: {Enabled: true, Start: "09:00", End: "18:00"},
	})
	zero := 0

	result := Plan([]models.Deliverable{
		deliverable("later", "2024-01-11T12:00:00Z", 30),
		deliverable("first", "2024-01-10T23:59:00Z", 60),
		{ID: "no-estimate", Title: "x", DueAt: mustTime(t, "2024-01-12T00:00:00Z")},
		{ID: "zero", Title: "x", DueAt: mustTime(t, "2024-01-12T00:00:00Z"), EstimatedMinutes: &zero},
		deliverable("overdue", "2024-01-09T07:00:00Z", 30),
	}, profile, now, nil)

	byID := map[string]Outcome{}
	for _, outcome := range result.Outcomes {
		byID[outcome.DeliverableID] = outcome
	}
	require.Len(t, byID, 5)
	assert.Equal(t, OutcomeSkipped, byID["no-estimate"].Status)
	assert.Equal(t, OutcomeSkipped, byID["zero"].Status)
	assert.Equal(t, OutcomeInfeasible, byID["overdue"].Status)
	assert.Equal(t, OutcomePartial, byID["first"].Status)
	assert.Equal(t, 69, byID["first"].BufferedMinutes)
	assert.Equal(t, 60, byID["first"].ScheduledMinutes)
	assert.Equal(t, OutcomeInfeasible, byID["later"].Status)
	assert.Len(t, result.Blocks, 2)
}

func TestAllocateTrimsToNowAndLatestEnd(t *testing.T) {
	now := mustTime(t, "2024-01-09T16:10:00Z")
	profile := onlyDays(240, models.TimeWindow{Start: "22:00", End: "07:00"}, map[models.DayKey]models.DayAvailability{
		models.DayTuesday:   {Enabled: true, Start: "09:00", End: "18:00"},
		models.DayWednesday: {Enabled: true, Start: "09:00", End: "18:00"},
	})

	blocks := Allocate([]models.Deliverable{
		deliverable("essay", "2024-01-11T10:00:00Z", 120),
	}, profile, now)

	require.Len(t, blocks, 5)
	starts := make([]string, 0, len(blocks))
	for _, block := range blocks {
		starts = append(starts, block.Start.Format(time.RFC3339))
	}
	assert.Equal(t, []string{
		"2024-01-09T16:30:00Z",
		"2024-01-09T17:00:00Z",
		"2024-01-09T17:30:00Z",
		"2024-01-10T09:00:00Z",
		"2024-01-10T09:30:00Z",
	}, starts)
}

func TestAllocateHonoursInvariants(t *testing.T) {
	now := mustTime(t, "2024-03-04T10:15:00Z")
	profile := models.DefaultAvailability()
	profile.ByDay[models.DaySunday] = models.DayAvailability{Enabled: true, Start: "06:00", End: "23:30"}
	deliverables := []models.Deliverable{
		deliverable("a", "2024-03-08T17:00:00Z", 300),
		deliverable("b", "2024-03-07T09:00:00Z", 200),
		deliverable("c", "2024-03-12T23:00:00Z", 600),
		deliverable("d", "2024-03-05T12:00:00Z", 45),
	}
	dues := map[string]time.Time{}
	for _, d := range deliverables {
		dues[d.ID] = d.DueAt
	}

	blocks := Allocate(deliverables, profile, now)
	require.NotEmpty(t, blocks)

	perDay := map[string]int{}
	for i, block := range blocks {
		assert.True(t, block.End.After(block.Start))
		minutes := int(block.End.Sub(block.Start) / time.Minute)
		assert.Zero(t, minutes%SlotMinutes)
		assert.False(t, block.End.After(dues[block.RelatedAssignmentID].Add(-SafetyBuffer)), "block %d ends after latest end", i)
		assert.True(t, block.End.After(now))
		perDay[DayKey(block.Start)] += minutes

		start, end := minuteOfDay(block.Start), minuteOfDay(block.End)
		if end == 0 {
			end = minutesPerDay
		}
		assert.GreaterOrEqual(t, start, 7*60, "block starts inside protected hours")
		assert.LessOrEqual(t, end, 22*60, "block ends inside protected hours")

		if i > 0 {
			assert.False(t, block.Start.Before(blocks[i-1].Start), "blocks must be sorted")
		}
	}
	for day, minutes := range perDay {
		assert.LessOrEqual(t, minutes, profile.MaxMinutesPerDay, "day %s over cap", day)
	}
}

func TestAllocateIsDeterministic(t *testing.T) {
	now := mustTime(t, "2024-03-04T10:15:00Z")
	deliverables := []models.Deliverable{
		deliverable("a", "2024-03-08T17:00:00Z", 300),
		deliverable("b", "2024-03-08T17:00:00Z", 90),
	}

	first := Allocate(deliverables, models.DefaultAvailability(), now)
	second := Allocate(deliverables, models.DefaultAvailability(), now)

	assert.Equal(t, first, second)
}

func TestPlanSeedsUsage(t *testing.T) {
	now := mustTime(t, "2024-01-08T08:00:00Z")
	profile := onlyDays(120, models.TimeWindow{}, map[models.DayKey]models.DayAvailability{
		models.DayTuesday: {Enabled: true, Start: "09:00", End: "18:00"},
	})

	result := Plan([]models.Deliverable{deliverable("hw", "2024-01-10T23:59:00Z", 120)}, profile, now, map[string]int{
		"2024-01-09": 90,
	})

	require.Len(t, result.Blocks, 1)
	assert.Equal(t, mustTime(t, "2024-01-09T17:30:00Z"), result.Blocks[0].Start)
	assert.Equal(t, OutcomePartial, result.Outcomes[0].Status)
}

func TestAllocateSkipsMalformedDay(t *testing.T) {
	now := mustTime(t, "2024-01-08T08:00:00Z")
	profile := onlyDays(0, models.TimeWindow{}, map[models.DayKey]models.DayAvailability{
		models.DayTuesday: {Enabled: true, Start: "nine", End: "18:00"},
	})

	blocks := Allocate([]models.Deliverable{deliverable("hw", "2024-01-10T23:59:00Z", 60)}, profile, now)

	assert.Empty(t, blocks)
}

func TestAllocateUsesNowLocation(t *testing.T) {
	loc := time.FixedZone("EST", -5*60*60)
	now := time.Date(2024, 1, 8, 8, 0, 0, 0, loc)
	profile := onlyDays(0, models.TimeWindow{}, map[models.DayKey]models.DayAvailability{
		models.DayTuesday: {Enabled: true, Start: "09:00", End: "10:00"},
	})

	blocks := Allocate([]models.Deliverable{deliverable("hw", "2024-01-11T04:59:00Z", 60)}, profile, now)

	require.Len(t, blocks, 2)
	assert.Equal(t, time.Date(2024, 1, 9, 9, 0, 0, 0, loc), blocks[0].Start)
	assert.Equal(t, loc, blocks[0].Start.Location())
}

func TestUsageByDay(t *testing.T) {
	usage := UsageByDay([]models.PlanBlock{
		block("a", "2024-01-09T09:00:00Z", "2024-01-09T10:00:00Z"),
		block("b", "2024-01-09T12:00:00Z", "2024-01-09T12:30:00Z"),
		block("c", "2024-01-10T12:00:00Z", "2024-01-10T12:30:00Z"),
	}, time.UTC)

	assert.Equal(t, map[string]int{"2024-01-09": 90, "2024-01-10": 30}, usage)
}

// --- Fixtures ---

func mustTime(t *testing.T, raw string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, raw)
	require.NoError(t, err)
	return ts
}

func deliverable(id, due string, minutes int) models.Deliverable {
	ts, err := time.Parse(time.RFC3339, due)
	if err != nil {
		panic(err)
	}
	est := minutes
	return models.Deliverable{
		ID:               id,
		CourseID:         "course-1",
		Title:            id + " title",
		DueAt:            ts,
		EstimatedMinutes: &est,
	}
}

func onlyDays(capMinutes int, protected models.TimeWindow, days map[models.DayKey]models.DayAvailability) models.AvailabilityProfile {
	return models.AvailabilityProfile{ByDay: days, MaxMinutesPerDay: capMinutes, ProtectedHours: protected}
}

func block(id, start, end string) models.PlanBlock {
	s, err := time.Parse(time.RFC3339, start)
	if err != nil {
		panic(err)
	}
	e, err := time.Parse(time.RFC3339, end)
	if err != nil {
		panic(err)
	}
	return models.PlanBlock{ID: id, Title: "Block " + id, Start: s, End: e}
}
