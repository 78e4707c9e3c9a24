package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/eksamina/eksaminator-backend/internal/model"
	"github.com/eksamina/eksaminator-backend/internal/repository"
	"github.com/google/uuid"
)

// ErrExamCompleted is returned when enrolling into an already-completed exam.
var ErrExamCompleted = errors.New("exam is already completed")

// StudentService handles student enrollment.
type StudentService struct {
	studentRepo *repository.StudentRepository
	examRepo    *repository.ExamRepository
}

// NewStudentService creates a new StudentService.
func NewStudentService(studentRepo *repository.StudentRepository, examRepo *repository.ExamRepository) *StudentService {
	return &StudentService{studentRepo: studentRepo, examRepo: examRepo}
}

// ListByExam retrieves an exam's students in exam order.
func (s *StudentService) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.Student, error) {
	return s.studentRepo.ListByExam(ctx, examID)
}

// Enroll adds a student to an exam. The exam order is assigned by the
// repository as max(existing) + 1.
func (s *StudentService) Enroll(ctx context.Context, examID uuid.UUID, req *model.EnrollStudentRequest) (*model.Student, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}
	if exam.IsCompleted {
		return nil, ErrExamCompleted
	}

	student := &model.Student{
		ExamID:    examID,
		StudentNo: req.StudentNo,
		Name:      req.Name,
	}
	if err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, fmt.Errorf("enroll student: %w", err)
	}
	return student, nil
}
