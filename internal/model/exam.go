package model

import (
	"time"

	"github.com/google/uuid"
)

// Exam represents one oral examination: a course, a question pool and a
// per-student time allotment.
type Exam struct {
	ID                 uuid.UUID  `json:"id"`
	ExamTerm           string     `json:"exam_term"`
	CourseName         string     `json:"course_name"`
	ExamDate           time.Time  `json:"exam_date"`
	NumberOfQuestions  int        `json:"number_of_questions"`
	ExaminationMinutes int        `json:"examination_minutes"`
	StartTime          string     `json:"start_time"`
	IsCompleted        bool       `json:"is_completed"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// Duration returns the allotted examination window per student.
func (e *Exam) Duration() time.Duration {
	return time.Duration(e.ExaminationMinutes) * time.Minute
}

// CreateExamRequest is the payload for creating a new exam.
type CreateExamRequest struct {
	ExamTerm           string    `json:"exam_term" binding:"required,min=1,max=100"`
	CourseName         string    `json:"course_name" binding:"required,min=1,max=200"`
	ExamDate           time.Time `json:"exam_date" binding:"required"`
	NumberOfQuestions  int       `json:"number_of_questions" binding:"required,min=1,max=100"`
	ExaminationMinutes int       `json:"examination_minutes" binding:"required,min=1,max=480"`
	StartTime          string    `json:"start_time" binding:"required,datetime=15:04"`
}
