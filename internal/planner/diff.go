package planner

import (
	"fmt"
	"sort"
	"time"

	"github.com/bbarathsrinivasan/ACMHack/internal/models"
)

// Diff classifies blocks between two snapshots and annotates added or moved blocks with overlap
// and daily-cap reasons computed against next. Neither input is modified. When loc is nil each
// block's own offset decides its calendar day.
func Diff(prev, next []models.PlanBlock, capMinutesPerDay int, loc *time.Location) []models.DayChanges {
	prevByID := make(map[string]models.PlanBlock, len(prev))
	for _, block := range prev {
		prevByID[block.ID] = block
	}
	nextByID := make(map[string]struct{}, len(next))
	byDay := make(map[string][]models.PlanBlock)
	for _, block := range next {
		nextByID[block.ID] = struct{}{}
		day := dayKeyIn(block.Start, loc)
		byDay[day] = append(byDay[day], block)
	}

	groups := make(map[string]*models.DayChanges)
	group := func(day string) *models.DayChanges {
		if g, ok := groups[day]; ok {
			return g
		}
		g := &models.DayChanges{
			DayKey:  day,
			Added:   make([]models.PlanChange, 0),
			Removed: make([]models.PlanChange, 0),
			Moved:   make([]models.PlanChange, 0),
		}
		groups[day] = g
		return g
	}

	for _, block := range next {
		day := dayKeyIn(block.Start, loc)
		old, existed := prevByID[block.ID]
		if !existed {
			change := models.PlanChange{Type: models.ChangeAdded, DayKey: day, Block: block}
			annotate(&change, byDay[day], capMinutesPerDay)
			g := group(day)
			g.Added = append(g.Added, change)
			continue
		}
		movedDay := dayKeyIn(old.Start, loc) != day
		movedTime := !old.Start.Equal(block.Start) || !old.End.Equal(block.End)
		if !movedDay && !movedTime {
			continue
		}
		change := models.PlanChange{
			Type:   models.ChangeMoved,
			DayKey: day,
			Block:  block,
			From:   &models.BlockInterval{Start: old.Start, End: old.End},
		}
		annotate(&change, byDay[day], capMinutesPerDay)
		g := group(day)
		g.Moved = append(g.Moved, change)
	}

	for _, block := range prev {
		if _, ok := nextByID[block.ID]; ok {
			continue
		}
		day := dayKeyIn(block.Start, loc)
		g := group(day)
		g.Removed = append(g.Removed, models.PlanChange{
			Type:    models.ChangeRemoved,
			DayKey:  day,
			Block:   block,
			Reasons: make([]string, 0),
		})
	}

	days := make([]string, 0, len(groups))
	for day := range groups {
		days = append(days, day)
	}
	sort.Strings(days)

	report := make([]models.DayChanges, 0, len(days))
	for _, day := range days {
		report = append(report, *groups[day])
	}
	return report
}

// Summarize counts changes in a report. Flagged counts changes that carry at least one reason.
func Summarize(report []models.DayChanges) models.ChangeSummary {
	summary := models.ChangeSummary{Days: len(report)}
	for _, day := range report {
		summary.Added += len(day.Added)
		summary.Removed += len(day.Removed)
		summary.Moved += len(day.Moved)
		for _, change := range day.Added {
			if len(change.Reasons) > 0 {
				summary.Flagged++
			}
		}
		for _, change := range day.Moved {
			if len(change.Reasons) > 0 {
				summary.Flagged++
			}
		}
	}
	return summary
}

func annotate(change *models.PlanChange, dayBlocks []models.PlanBlock, capMinutesPerDay int) {
	change.Reasons = make([]string, 0, 2)

	overlaps := 0
	total := 0
	for _, other := range dayBlocks {
		total += other.Minutes()
		if other.ID != change.Block.ID && change.Block.Overlaps(other) {
			overlaps++
		}
	}
	if overlaps > 0 {
		change.Overlaps = overlaps
		noun := "block"
		if overlaps > 1 {
			noun = "blocks"
		}
		change.Reasons = append(change.Reasons, fmt.Sprintf("overlaps %d %s", overlaps, noun))
	}
	if capMinutesPerDay > 0 && total > capMinutesPerDay {
		change.CapExceededBy = total - capMinutesPerDay
		change.Reasons = append(change.Reasons, fmt.Sprintf("cap exceeded by %d min", change.CapExceededBy))
	}
}

func dayKeyIn(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return DayKey(t)
}
