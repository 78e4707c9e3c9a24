package repository

import (
	"context"
	"errors"

	"github.com/eksamina/eksaminator-backend/internal/model"
	"github.com/eksamina/eksaminator-backend/internal/session"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ResultRepository handles examination result data access.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Create inserts a result. The one-result-per-student rule is enforced by the
// unique constraint on student_id; a conflicting insert writes nothing and
// surfaces as session.ErrDuplicateResult.
func (r *ResultRepository) Create(ctx context.Context, res *model.ExaminationResult) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO examination_results
		   (student_id, question_number, time_spent_seconds, notes, grade, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (student_id) DO NOTHING
		 RETURNING id`,
		res.StudentID, res.QuestionNumber, res.TimeSpentSeconds, res.Notes,
		res.Grade, res.CompletedAt,
	).Scan(&res.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return session.ErrDuplicateResult
	}
	return err
}

// ListByExam retrieves all results for an exam's students in exam order.
func (r *ResultRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.ExaminationResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT er.id, er.student_id, er.question_number, er.time_spent_seconds,
		        er.notes, er.grade, er.completed_at
		 FROM examination_results er
		 JOIN students s ON er.student_id = s.id
		 WHERE s.exam_id = $1
		 ORDER BY s.exam_order ASC`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.ExaminationResult
	for rows.Next() {
		var res model.ExaminationResult
		if err := rows.Scan(&res.ID, &res.StudentID, &res.QuestionNumber,
			&res.TimeSpentSeconds, &res.Notes, &res.Grade, &res.CompletedAt); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// ComputeStatistics aggregates an exam's results for the statistics cache.
func (r *ResultRepository) ComputeStatistics(ctx context.Context, examID uuid.UUID) (*model.ExamStatistics, error) {
	stats := &model.ExamStatistics{
		ExamID:       examID,
		Distribution: make(map[model.Grade]int),
	}

	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM students WHERE exam_id = $1`, examID,
	).Scan(&stats.StudentCount)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT er.grade, COUNT(*), COALESCE(AVG(er.time_spent_seconds), 0)
		 FROM examination_results er
		 JOIN students s ON er.student_id = s.id
		 WHERE s.exam_id = $1
		 GROUP BY er.grade`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var gradeSum, timeSum float64
	for rows.Next() {
		var grade model.Grade
		var count int
		var avgTime float64
		if err := rows.Scan(&grade, &count, &avgTime); err != nil {
			return nil, err
		}
		stats.Distribution[grade] = count
		stats.ResultCount += count
		gradeSum += float64(grade) * float64(count)
		timeSum += avgTime * float64(count)
		if grade.Passing() {
			stats.PassRate += float64(count)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if stats.ResultCount > 0 {
		stats.AverageGrade = gradeSum / float64(stats.ResultCount)
		stats.PassRate /= float64(stats.ResultCount)
		stats.AverageTimeSec = int(timeSum / float64(stats.ResultCount))
	}
	return stats, nil
}
