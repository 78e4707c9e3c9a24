package service

import (
	"context"

	"github.com/eksamina/eksaminator-backend/internal/model"
	"github.com/eksamina/eksaminator-backend/internal/repository"
	"github.com/google/uuid"
)

// ExaminerService exposes examiner account lookups.
type ExaminerService struct {
	examinerRepo *repository.ExaminerRepository
}

// NewExaminerService creates a new ExaminerService.
func NewExaminerService(examinerRepo *repository.ExaminerRepository) *ExaminerService {
	return &ExaminerService{examinerRepo: examinerRepo}
}

func (s *ExaminerService) GetByEmail(ctx context.Context, email string) (*model.Examiner, error) {
	return s.examinerRepo.GetByEmail(ctx, email)
}

func (s *ExaminerService) GetByID(ctx context.Context, id uuid.UUID) (*model.Examiner, error) {
	return s.examinerRepo.GetByID(ctx, id)
}
