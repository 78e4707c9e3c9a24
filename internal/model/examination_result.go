package model

import (
	"time"

	"github.com/google/uuid"
)

// ExaminationResult records the outcome of one student's oral examination.
// At most one result exists per student; results are never mutated after
// creation.
type ExaminationResult struct {
	ID               uuid.UUID `json:"id"`
	StudentID        uuid.UUID `json:"student_id"`
	QuestionNumber   int       `json:"question_number"`
	TimeSpentSeconds int       `json:"time_spent_seconds"`
	Notes            string    `json:"notes,omitempty"`
	Grade            Grade     `json:"grade"`
	CompletedAt      time.Time `json:"completed_at"`
}

// TimeSpent returns the oral phase duration.
func (r *ExaminationResult) TimeSpent() time.Duration {
	return time.Duration(r.TimeSpentSeconds) * time.Second
}

// SubmitGradeRequest is the payload for grading the current student.
type SubmitGradeRequest struct {
	Grade Grade  `json:"grade" binding:"oneof=-3 0 2 4 7 10 12"`
	Notes string `json:"notes" binding:"omitempty,max=1000"`
}
