package session

import (
	"github.com/eksamina/eksaminator-backend/internal/model"
	"github.com/google/uuid"
)

// Snapshot is the read-only projection of the engine emitted after every
// transition and every tick. The presentation layer renders it and must not
// mutate engine state through it.
type Snapshot struct {
	State            State          `json:"state"`
	ExamID           uuid.UUID      `json:"exam_id"`
	CurrentStudent   *model.Student `json:"current_student,omitempty"`
	Position         int            `json:"position"` // 1-based, 0 when no active student
	TotalStudents    int            `json:"total_students"`
	GradedCount      int            `json:"graded_count"`
	QuestionNumber   int            `json:"question_number,omitempty"`
	ElapsedSeconds   int            `json:"elapsed_seconds"`
	RemainingSeconds int            `json:"remaining_seconds"`
	ExamCompleted    bool           `json:"exam_completed"`
	LastResult       *ResultSummary `json:"last_result,omitempty"`
}

// ResultSummary describes the most recently saved result, shown to the
// examiner between students.
type ResultSummary struct {
	StudentName      string      `json:"student_name"`
	StudentNo        string      `json:"student_no"`
	QuestionNumber   int         `json:"question_number"`
	TimeSpentSeconds int         `json:"time_spent_seconds"`
	Grade            model.Grade `json:"grade"`
	Notes            string      `json:"notes,omitempty"`
}
