package models

import "time"

// PlanBlock is a persisted study session in the plan collection.
type PlanBlock struct {
	ID                  string    `json:"id" validate:"required"`
	Title               string    `json:"title" validate:"required"`
	CourseID            string    `json:"courseId,omitempty"`
	RelatedAssignmentID string    `json:"relatedAssignmentId,omitempty"`
	Start               time.Time `json:"start" validate:"required"`
	End                 time.Time `json:"end" validate:"required,gtfield=Start"`
	Location            string    `json:"location,omitempty"`
	Notes               string    `json:"notes,omitempty"`
}

// Minutes returns the whole-minute length of the block, never negative.
func (b PlanBlock) Minutes() int {
	d := b.End.Sub(b.Start)
	if d <= 0 {
		return 0
	}
	return int(d.Round(time.Minute) / time.Minute)
}

// Overlaps reports whether the half-open intervals of b and other intersect.
func (b PlanBlock) Overlaps(other PlanBlock) bool {
	return b.Start.Before(other.End) && other.Start.Before(b.End)
}

// PlanBlockDraft is an unpersisted block. ID may be empty, in which case the store assigns one.
type PlanBlockDraft struct {
	ID                  string    `json:"id,omitempty"`
	Title               string    `json:"title" validate:"required"`
	CourseID            string    `json:"courseId,omitempty"`
	RelatedAssignmentID string    `json:"relatedAssignmentId,omitempty"`
	Start               time.Time `json:"start" validate:"required"`
	End                 time.Time `json:"end" validate:"required,gtfield=Start"`
	Location            string    `json:"location,omitempty"`
	Notes               string    `json:"notes,omitempty"`
}

// Block materialises the draft under the given identifier.
func (d PlanBlockDraft) Block(id string) PlanBlock {
	return PlanBlock{
		ID:                  id,
		Title:               d.Title,
		CourseID:            d.CourseID,
		RelatedAssignmentID: d.RelatedAssignmentID,
		Start:               d.Start,
		End:                 d.End,
		Location:            d.Location,
		Notes:               d.Notes,
	}
}

// PlanBlockPatch carries the fields to merge onto an existing block. Nil means unchanged.
type PlanBlockPatch struct {
	Title               *string    `json:"title,omitempty"`
	CourseID            *string    `json:"courseId,omitempty"`
	RelatedAssignmentID *string    `json:"relatedAssignmentId,omitempty"`
	Start               *time.Time `json:"start,omitempty"`
	End                 *time.Time `json:"end,omitempty"`
	Location            *string    `json:"location,omitempty"`
	Notes               *string    `json:"notes,omitempty"`
}

// Apply returns a copy of block with the patch merged in.
func (p PlanBlockPatch) Apply(block PlanBlock) PlanBlock {
	merged := block
	if p.Title != nil {
		merged.Title = *p.Title
	}
	if p.CourseID != nil {
		merged.CourseID = *p.CourseID
	}
	if p.RelatedAssignmentID != nil {
		merged.RelatedAssignmentID = *p.RelatedAssignmentID
	}
	if p.Start != nil {
		merged.Start = *p.Start
	}
	if p.End != nil {
		merged.End = *p.End
	}
	if p.Location != nil {
		merged.Location = *p.Location
	}
	if p.Notes != nil {
		merged.Notes = *p.Notes
	}
	return merged
}
