package dto

import (
	"time"

	"github.com/bbarathsrinivasan/ACMHack/internal/models"
)

// CreatePlanBlockRequest is the payload for adding a block to the plan.
type CreatePlanBlockRequest struct {
	ID                  string    `json:"id,omitempty" validate:"omitempty,min=1"`
	Title               string    `json:"title" validate:"required"`
	CourseID            string    `json:"courseId,omitempty" validate:"omitempty,min=1"`
	RelatedAssignmentID string    `json:"relatedAssignmentId,omitempty" validate:"omitempty,min=1"`
	Start               time.Time `json:"start" validate:"required"`
	End                 time.Time `json:"end" validate:"required,gtfield=Start"`
	Location            string    `json:"location,omitempty" validate:"omitempty,min=1"`
	Notes               string    `json:"notes,omitempty"`
}

// Draft converts the request into an unpersisted block.
func (r CreatePlanBlockRequest) Draft() models.PlanBlockDraft {
	return models.PlanBlockDraft{
		ID:                  r.ID,
		Title:               r.Title,
		CourseID:            r.CourseID,
		RelatedAssignmentID: r.RelatedAssignmentID,
		Start:               r.Start,
		End:                 r.End,
		Location:            r.Location,
		Notes:               r.Notes,
	}
}

// UpdatePlanBlockRequest carries a partial update. ID is only read when the route has no id.
type UpdatePlanBlockRequest struct {
	ID                  string     `json:"id,omitempty"`
	Title               *string    `json:"title,omitempty" validate:"omitempty,min=1"`
	CourseID            *string    `json:"courseId,omitempty" validate:"omitempty,min=1"`
	RelatedAssignmentID *string    `json:"relatedAssignmentId,omitempty" validate:"omitempty,min=1"`
	Start               *time.Time `json:"start,omitempty"`
	End                 *time.Time `json:"end,omitempty"`
	Location            *string    `json:"location,omitempty" validate:"omitempty,min=1"`
	Notes               *string    `json:"notes,omitempty"`
}

// Patch converts the request into a model patch.
func (r UpdatePlanBlockRequest) Patch() models.PlanBlockPatch {
	return models.PlanBlockPatch{
		Title:               r.Title,
		CourseID:            r.CourseID,
		RelatedAssignmentID: r.RelatedAssignmentID,
		Start:               r.Start,
		End:                 r.End,
		Location:            r.Location,
		Notes:               r.Notes,
	}
}

// DeletePlanBlockRequest identifies a block to delete when the id travels in the body.
type DeletePlanBlockRequest struct {
	ID string `json:"id" validate:"required"`
}

// PlanBlockMutation reports the result of a single store mutation.
type PlanBlockMutation struct {
	Block   *models.PlanBlock   `json:"block,omitempty"`
	Version string              `json:"version"`
	Changes []models.DayChanges `json:"changes"`
}

// PlanBlockList is the current collection with its version.
type PlanBlockList struct {
	Blocks  []models.PlanBlock `json:"blocks"`
	Version string             `json:"version"`
}

// ExportFormat enumerates plan export renderings.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// PlanExport is a rendered plan document.
type PlanExport struct {
	Filename    string
	ContentType string
	Content     []byte
}
