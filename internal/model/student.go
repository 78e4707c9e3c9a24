package model

import "github.com/google/uuid"

// Student represents one enrolled candidate. ExamOrder fixes the position in
// the examination sequence and is never reassigned.
type Student struct {
	ID        uuid.UUID `json:"id"`
	ExamID    uuid.UUID `json:"exam_id"`
	StudentNo string    `json:"student_no"`
	Name      string    `json:"name"`
	ExamOrder int       `json:"exam_order"`
}

// EnrollStudentRequest is the payload for enrolling a student in an exam.
// The exam order is assigned server-side.
type EnrollStudentRequest struct {
	StudentNo string `json:"student_no" binding:"required,min=1,max=50"`
	Name      string `json:"name" binding:"required,min=1,max=200"`
}
