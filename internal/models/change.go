package models

import "time"

// ChangeType classifies one block difference between two snapshots.
type ChangeType string

const (
	ChangeAdded   ChangeType = "added"
	ChangeRemoved ChangeType = "removed"
	ChangeMoved   ChangeType = "moved"
)

// BlockInterval records a prior placement of a moved block.
type BlockInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// PlanChange is one classified difference with advisory reasons.
type PlanChange struct {
	Type          ChangeType     `json:"type"`
	DayKey        string         `json:"dayKey"`
	Block         PlanBlock      `json:"block"`
	From          *BlockInterval `json:"from,omitempty"`
	Reasons       []string       `json:"reasons"`
	Overlaps      int            `json:"overlaps,omitempty"`
	CapExceededBy int            `json:"capExceededBy,omitempty"`
}

// DayChanges groups the changes that land on one calendar day.
type DayChanges struct {
	DayKey  string       `json:"dayKey"`
	Added   []PlanChange `json:"added"`
	Removed []PlanChange `json:"removed"`
	Moved   []PlanChange `json:"moved"`
}

// ChangeSummary counts changes across a report.
type ChangeSummary struct {
	Days    int `json:"days"`
	Added   int `json:"added"`
	Removed int `json:"removed"`
	Moved   int `json:"moved"`
	Flagged int `json:"flagged"`
}
