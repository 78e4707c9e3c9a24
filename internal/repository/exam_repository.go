package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/eksamina/eksaminator-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const examColumns = `id, exam_term, course_name, exam_date, number_of_questions,
	        examination_minutes, start_time, is_completed, completed_at, created_at`

// ExamRepository handles exam data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

func scanExam(row interface{ Scan(...any) error }) (*model.Exam, error) {
	e := &model.Exam{}
	err := row.Scan(&e.ID, &e.ExamTerm, &e.CourseName, &e.ExamDate, &e.NumberOfQuestions,
		&e.ExaminationMinutes, &e.StartTime, &e.IsCompleted, &e.CompletedAt, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// GetByID retrieves an exam by its UUID.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	return scanExam(r.pool.QueryRow(ctx,
		`SELECT `+examColumns+` FROM exams WHERE id = $1`, id))
}

// Create inserts a new exam.
func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exams (exam_term, course_name, exam_date, number_of_questions,
		                    examination_minutes, start_time)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, is_completed, created_at`,
		e.ExamTerm, e.CourseName, e.ExamDate, e.NumberOfQuestions,
		e.ExaminationMinutes, e.StartTime,
	).Scan(&e.ID, &e.IsCompleted, &e.CreatedAt)
}

// ListPaginated retrieves exams newest-first. completed filters on the
// completion flag when non-nil.
func (r *ExamRepository) ListPaginated(ctx context.Context, completed *bool, limit, offset int) ([]model.Exam, int, error) {
	baseQuery := ` FROM exams`
	var args []any
	if completed != nil {
		args = append(args, *completed)
		baseQuery += ` WHERE is_completed = $1`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + examColumns + baseQuery +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		e, err := scanExam(rows)
		if err != nil {
			return nil, 0, err
		}
		exams = append(exams, *e)
	}
	return exams, total, rows.Err()
}

// MarkCompleted flips the completion flag and records the timestamp.
func (r *ExamRepository) MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exams SET is_completed = TRUE, completed_at = $1 WHERE id = $2`,
		at, id)
	return err
}
