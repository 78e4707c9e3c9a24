package repository

import (
	"context"
	"time"

	"github.com/eksamina/eksaminator-backend/internal/model"
	"github.com/google/uuid"
)

// SessionStore bundles the three repositories into the storage collaborator
// the session engine needs.
type SessionStore struct {
	exams    *ExamRepository
	students *StudentRepository
	results  *ResultRepository
}

// NewSessionStore creates a session.Store backed by Postgres.
func NewSessionStore(exams *ExamRepository, students *StudentRepository, results *ResultRepository) *SessionStore {
	return &SessionStore{exams: exams, students: students, results: results}
}

func (s *SessionStore) GetExam(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	return s.exams.GetByID(ctx, id)
}

func (s *SessionStore) ListStudents(ctx context.Context, examID uuid.UUID) ([]model.Student, error) {
	return s.students.ListByExam(ctx, examID)
}

func (s *SessionStore) ListResults(ctx context.Context, examID uuid.UUID) ([]model.ExaminationResult, error) {
	return s.results.ListByExam(ctx, examID)
}

func (s *SessionStore) CreateResult(ctx context.Context, result *model.ExaminationResult) error {
	return s.results.Create(ctx, result)
}

func (s *SessionStore) MarkExamCompleted(ctx context.Context, examID uuid.UUID, at time.Time) error {
	return s.exams.MarkCompleted(ctx, examID, at)
}
