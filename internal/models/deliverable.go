package models

import "time"

// Deliverable is a due academic task fed to the allocator. It is read-only input.
type Deliverable struct {
	ID               string    `json:"id" yaml:"id" validate:"required"`
	CourseID         string    `json:"courseId,omitempty" yaml:"courseId"`
	Title            string    `json:"title" yaml:"title" validate:"required"`
	DueAt            time.Time `json:"dueAt" yaml:"dueAt" validate:"required"`
	EstimatedMinutes *int      `json:"estimatedMinutes,omitempty" yaml:"estimatedMinutes"`
	Weight           *float64  `json:"weight,omitempty" yaml:"weight"`
	Points           *float64  `json:"points,omitempty" yaml:"points"`
}

// Effort returns the estimated minutes, or zero when unknown.
func (d Deliverable) Effort() int {
	if d.EstimatedMinutes == nil {
		return 0
	}
	return *d.EstimatedMinutes
}
