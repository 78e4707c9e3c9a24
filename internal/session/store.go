package session

import (
	"context"
	"time"

	"github.com/eksamina/eksaminator-backend/internal/model"
	"github.com/google/uuid"
)

// Store is the durable-storage collaborator the engine needs. All session
// state is derivable from these records; the engine itself keeps nothing
// across restarts.
type Store interface {
	GetExam(ctx context.Context, id uuid.UUID) (*model.Exam, error)

	// ListStudents returns the exam's students ordered by exam order.
	ListStudents(ctx context.Context, examID uuid.UUID) ([]model.Student, error)

	// ListResults returns all results recorded for the exam's students.
	ListResults(ctx context.Context, examID uuid.UUID) ([]model.ExaminationResult, error)

	// CreateResult persists a result. Returns ErrDuplicateResult if the
	// student already has one.
	CreateResult(ctx context.Context, result *model.ExaminationResult) error

	// MarkExamCompleted sets the exam's completion flag and timestamp.
	MarkExamCompleted(ctx context.Context, examID uuid.UUID, at time.Time) error
}
