package repository

import (
	"context"

	"github.com/eksamina/eksaminator-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StudentRepository handles student enrollment data access.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// ListByExam retrieves an exam's students ordered by exam order.
func (r *StudentRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.Student, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, exam_id, student_no, name, exam_order
		 FROM students
		 WHERE exam_id = $1
		 ORDER BY exam_order ASC`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		var s model.Student
		if err := rows.Scan(&s.ID, &s.ExamID, &s.StudentNo, &s.Name, &s.ExamOrder); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// Create enrolls a student. The exam order is assigned in the same statement
// as max(existing order) + 1. Two concurrent enrollments can still read the
// same max; the loser fails on UNIQUE(exam_id, exam_order) and must retry,
// so orders are never reused or duplicated.
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO students (exam_id, student_no, name, exam_order)
		 SELECT $1, $2, $3, COALESCE(MAX(exam_order), 0) + 1
		 FROM students WHERE exam_id = $1
		 RETURNING id, exam_order`,
		s.ExamID, s.StudentNo, s.Name,
	).Scan(&s.ID, &s.ExamOrder)
}
