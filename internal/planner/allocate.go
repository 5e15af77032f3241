// Package planner turns deliverables and an availability profile into study sessions and explains
// differences between plan snapshots. Everything here is pure: no clocks, no I/O.
package planner

import (
	"math"
	"sort"
	"time"

	"github.com/bbarathsrinivasan/ACMHack/internal/models"
)

// SafetyBuffer is how long before the due time work must be finished.
const SafetyBuffer = 24 * time.Hour

// contingencyPercent inflates every estimate before allocation.
const contingencyPercent = 115

// OutcomeStatus describes how much of a deliverable's effort was placed.
type OutcomeStatus string

const (
	OutcomeScheduled  OutcomeStatus = "scheduled"
	OutcomePartial    OutcomeStatus = "partial"
	OutcomeInfeasible OutcomeStatus = "infeasible"
	OutcomeSkipped    OutcomeStatus = "skipped"
)

// Outcome reports allocation results for one deliverable.
type Outcome struct {
	DeliverableID    string        `json:"deliverableId"`
	Status           OutcomeStatus `json:"status"`
	RequestedMinutes int           `json:"requestedMinutes"`
	BufferedMinutes  int           `json:"bufferedMinutes"`
	ScheduledMinutes int           `json:"scheduledMinutes"`
	LatestEnd        *time.Time    `json:"latestEnd,omitempty"`
}

// Allocation is the full result of one allocator run.
type Allocation struct {
	Blocks   []models.PlanBlockDraft `json:"blocks"`
	Outcomes []Outcome               `json:"outcomes"`
}

// Allocate proposes study blocks for deliverables within the availability profile.
// Identical inputs always produce identical output.
func Allocate(deliverables []models.Deliverable, profile models.AvailabilityProfile, now time.Time) []models.PlanBlockDraft {
	return Plan(deliverables, profile, now, nil).Blocks
}

// Plan runs the allocator and reports per-deliverable outcomes. usage seeds the running per-day
// totals (minutes keyed by DayKey) and may be nil.
func Plan(deliverables []models.Deliverable, profile models.AvailabilityProfile, now time.Time, usage map[string]int) Allocation {
	loc := now.Location()
	dailyCap := math.MaxInt
	if profile.MaxMinutesPerDay > 0 {
		dailyCap = profile.MaxMinutesPerDay
	}

	perDayUsed := make(map[string]int, len(usage))
	for day, minutes := range usage {
		perDayUsed[day] = minutes
	}

	result := Allocation{Blocks: make([]models.PlanBlockDraft, 0), Outcomes: make([]Outcome, 0, len(deliverables))}
	today := startOfDay(now)

	for _, item := range sortByDue(deliverables, &result) {
		due := item.DueAt.In(loc)
		latestEnd := due.Add(-SafetyBuffer)
		requested := item.Effort()
		outcome := Outcome{
			DeliverableID:    item.ID,
			RequestedMinutes: requested,
			BufferedMinutes:  bufferedMinutes(requested),
		}
		if !latestEnd.After(now) {
			outcome.Status = OutcomeInfeasible
			result.Outcomes = append(result.Outcomes, outcome)
			continue
		}
		le := latestEnd
		outcome.LatestEnd = &le

		remaining := outcome.BufferedMinutes
		for day := startOfDay(latestEnd); remaining > 0 && !day.Before(today); day = day.AddDate(0, 0, -1) {
			avail := profile.Day(day.Weekday())
			if !avail.Enabled {
				continue
			}
			windows, err := AllowedWindows(avail, profile.ProtectedHours)
			if err != nil {
				continue
			}
			if sameDay(day, latestEnd) {
				windows = trimEnd(windows, minuteOfDay(latestEnd))
			}
			if sameDay(day, now) {
				windows = trimStart(windows, minuteOfDay(now))
			}

			slots := Slots(windows)
			key := DayKey(day)
			used := perDayUsed[key]
			for i := len(slots) - 1; i >= 0 && remaining > 0 && used < dailyCap; i-- {
				if used+SlotMinutes > dailyCap {
					break
				}
				start := atMinute(day, slots[i].Start)
				end := atMinute(day, slots[i].End)
				if !end.After(now) {
					continue
				}
				result.Blocks = append(result.Blocks, models.PlanBlockDraft{
					Title:               "Study: " + item.Title,
					CourseID:            item.CourseID,
					RelatedAssignmentID: item.ID,
					Start:               start,
					End:                 end,
				})
				remaining -= SlotMinutes
				used += SlotMinutes
				outcome.ScheduledMinutes += SlotMinutes
			}
			perDayUsed[key] = used
		}

		switch {
		case remaining <= 0:
			outcome.Status = OutcomeScheduled
		case outcome.ScheduledMinutes > 0:
			outcome.Status = OutcomePartial
		default:
			outcome.Status = OutcomeInfeasible
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	sort.SliceStable(result.Blocks, func(i, j int) bool {
		return result.Blocks[i].Start.Before(result.Blocks[j].Start)
	})
	return result
}

// UsageByDay sums the minutes of blocks per calendar day in loc.
func UsageByDay(blocks []models.PlanBlock, loc *time.Location) map[string]int {
	usage := make(map[string]int)
	for _, block := range blocks {
		usage[dayKeyIn(block.Start, loc)] += block.Minutes()
	}
	return usage
}

// sortByDue drops deliverables without positive effort (recording them as skipped) and orders the
// rest by due time.
func sortByDue(deliverables []models.Deliverable, result *Allocation) []models.Deliverable {
	sorted := make([]models.Deliverable, 0, len(deliverables))
	for _, item := range deliverables {
		if item.Effort() <= 0 {
			result.Outcomes = append(result.Outcomes, Outcome{DeliverableID: item.ID, Status: OutcomeSkipped})
			continue
		}
		sorted = append(sorted, item)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DueAt.Before(sorted[j].DueAt)
	})
	return sorted
}

func bufferedMinutes(minutes int) int {
	if minutes <= 0 {
		return 0
	}
	return (minutes*contingencyPercent + 99) / 100
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
