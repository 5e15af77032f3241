package dto

import (
	"time"

	"github.com/bbarathsrinivasan/ACMHack/internal/models"
	"github.com/bbarathsrinivasan/ACMHack/internal/planner"
)

// GeneratePlanRequest asks the allocator for study blocks.
type GeneratePlanRequest struct {
	Deliverables  []models.Deliverable        `json:"deliverables" validate:"required,min=1,dive"`
	Now           *time.Time                  `json:"now,omitempty"`
	Timezone      string                      `json:"timezone,omitempty" validate:"omitempty,timezone"`
	Availability  *models.AvailabilityProfile `json:"availability,omitempty"`
	CountExisting bool                        `json:"countExisting"`
}

// ProposalConflict captures demand the allocator could not place.
type ProposalConflict struct {
	Type    string         `json:"type"`
	Message string         `json:"message"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// GeneratePlanResponse returns a stored proposal.
type GeneratePlanResponse struct {
	ProposalID string                  `json:"proposalId"`
	Now        time.Time               `json:"now"`
	ExpiresAt  time.Time               `json:"expiresAt"`
	Blocks     []models.PlanBlockDraft `json:"blocks"`
	Outcomes   []planner.Outcome       `json:"outcomes"`
	Conflicts  []ProposalConflict      `json:"conflicts"`
}

// ApplyPlanRequest persists a proposal or an explicit list of drafts.
type ApplyPlanRequest struct {
	ProposalID string                  `json:"proposalId,omitempty"`
	Blocks     []models.PlanBlockDraft `json:"blocks,omitempty" validate:"omitempty,dive"`
	Version    string                  `json:"version,omitempty"`
	// Timezone groups the change report by day. It defaults to the proposal's timezone, then the server's.
	Timezone string `json:"timezone,omitempty" validate:"omitempty,timezone"`
}

// ApplyPlanResponse reports what the apply persisted.
type ApplyPlanResponse struct {
	Created []models.PlanBlock   `json:"created"`
	Version string               `json:"version"`
	Retries int                  `json:"retries"`
	Changes []models.DayChanges  `json:"changes"`
	Summary models.ChangeSummary `json:"summary"`
}

// DiffPlanRequest compares two snapshots. A nil New compares against the stored collection.
type DiffPlanRequest struct {
	Old              []models.PlanBlock `json:"old"`
	New              []models.PlanBlock `json:"new,omitempty"`
	CapMinutesPerDay *int               `json:"capMinutesPerDay,omitempty" validate:"omitempty,min=0"`
	Timezone         string             `json:"timezone,omitempty" validate:"omitempty,timezone"`
}

// DiffPlanResponse is the per-day change report.
type DiffPlanResponse struct {
	Days    []models.DayChanges  `json:"days"`
	Summary models.ChangeSummary `json:"summary"`
	Version string               `json:"version,omitempty"`
}
