package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/eksamina/eksaminator-backend/internal/config"
	"github.com/eksamina/eksaminator-backend/internal/model"
	"github.com/eksamina/eksaminator-backend/internal/repository"
	"github.com/eksamina/eksaminator-backend/internal/response"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// statisticsCacheTTL bounds staleness if the refresh queue is ever dropped.
const statisticsCacheTTL = 24 * time.Hour

// ExamService handles exam business logic and the statistics cache.
type ExamService struct {
	examRepo    *repository.ExamRepository
	studentRepo *repository.StudentRepository
	resultRepo  *repository.ResultRepository
	rdb         *redis.Client
	log         zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(
	examRepo *repository.ExamRepository,
	studentRepo *repository.StudentRepository,
	resultRepo *repository.ResultRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *ExamService {
	return &ExamService{
		examRepo:    examRepo,
		studentRepo: studentRepo,
		resultRepo:  resultRepo,
		rdb:         rdb,
		log:         log.With().Str("component", "exam_service").Logger(),
	}
}

// Create inserts a new exam from a validated request.
func (s *ExamService) Create(ctx context.Context, req *model.CreateExamRequest) (*model.Exam, error) {
	exam := &model.Exam{
		ExamTerm:           req.ExamTerm,
		CourseName:         req.CourseName,
		ExamDate:           req.ExamDate,
		NumberOfQuestions:  req.NumberOfQuestions,
		ExaminationMinutes: req.ExaminationMinutes,
		StartTime:          req.StartTime,
	}
	if err := s.examRepo.Create(ctx, exam); err != nil {
		return nil, fmt.Errorf("create exam: %w", err)
	}
	return exam, nil
}

// GetByID retrieves an exam by its UUID.
func (s *ExamService) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	return s.examRepo.GetByID(ctx, id)
}

// ExamDetail is an exam with its enrolled students and any recorded results.
type ExamDetail struct {
	model.Exam
	Students []StudentWithResult `json:"students"`
}

// StudentWithResult pairs a student with their result, if graded.
type StudentWithResult struct {
	model.Student
	Result *model.ExaminationResult `json:"result,omitempty"`
}

// GetDetail retrieves an exam together with students (in exam order) and
// their results.
func (s *ExamService) GetDetail(ctx context.Context, id uuid.UUID) (*ExamDetail, error) {
	exam, err := s.examRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}
	students, err := s.studentRepo.ListByExam(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	results, err := s.resultRepo.ListByExam(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}

	byStudent := make(map[uuid.UUID]model.ExaminationResult, len(results))
	for _, r := range results {
		byStudent[r.StudentID] = r
	}

	detail := &ExamDetail{Exam: *exam, Students: make([]StudentWithResult, 0, len(students))}
	for _, st := range students {
		entry := StudentWithResult{Student: st}
		if r, ok := byStudent[st.ID]; ok {
			res := r
			entry.Result = &res
		}
		detail.Students = append(detail.Students, entry)
	}
	return detail, nil
}

// List retrieves exams newest-first with pagination. completed filters on the
// completion flag when non-nil.
func (s *ExamService) List(ctx context.Context, completed *bool, page, perPage int) ([]model.Exam, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	exams, total, err := s.examRepo.ListPaginated(ctx, completed, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if exams == nil {
		exams = []model.Exam{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return exams, pagination, nil
}

// ListResults retrieves an exam's results in exam order.
func (s *ExamService) ListResults(ctx context.Context, examID uuid.UUID) ([]model.ExaminationResult, error) {
	return s.resultRepo.ListByExam(ctx, examID)
}

// GetStatistics returns the exam's aggregate statistics. Reads the Redis
// cache first and falls back to Postgres on a miss, self-healing the cache so
// the next read is fast.
func (s *ExamService) GetStatistics(ctx context.Context, examID uuid.UUID) (*model.ExamStatistics, error) {
	key := config.CacheKey.ExamStatisticsKey(examID.String())

	val, err := s.rdb.Get(ctx, key).Result()
	if err == nil {
		stats := &model.ExamStatistics{}
		if err := json.Unmarshal([]byte(val), stats); err == nil {
			return stats, nil
		}
		// Corrupt cache entry: fall through and recompute.
		s.log.Warn().Str("exam_id", examID.String()).Msg("discarding unreadable statistics cache entry")
	} else if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("read statistics cache: %w", err)
	}

	stats, err := s.resultRepo.ComputeStatistics(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("compute statistics: %w", err)
	}

	if raw, err := json.Marshal(stats); err == nil {
		if err := s.rdb.Set(ctx, key, raw, statisticsCacheTTL).Err(); err != nil {
			s.log.Warn().Err(err).Msg("failed to self-heal statistics cache")
		}
	}
	return stats, nil
}

// HistoryEntry is a completed exam with its aggregates.
type HistoryEntry struct {
	model.Exam
	Statistics *model.ExamStatistics `json:"statistics"`
}

// History retrieves completed exams newest-first with their statistics.
func (s *ExamService) History(ctx context.Context, page, perPage int) ([]HistoryEntry, *response.Pagination, error) {
	completed := true
	exams, pagination, err := s.List(ctx, &completed, page, perPage)
	if err != nil {
		return nil, nil, err
	}

	entries := make([]HistoryEntry, 0, len(exams))
	for _, exam := range exams {
		stats, err := s.GetStatistics(ctx, exam.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("statistics for exam %s: %w", exam.ID, err)
		}
		entries = append(entries, HistoryEntry{Exam: exam, Statistics: stats})
	}
	return entries, pagination, nil
}
