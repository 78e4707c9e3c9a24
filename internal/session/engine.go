package session

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/eksamina/eksaminator-backend/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// State is the session state tag.
type State string

const (
	StateNotStarted         State = "NOT_STARTED"
	StateAwaitingQuestion   State = "AWAITING_QUESTION"
	StateQuestionDrawn      State = "QUESTION_DRAWN"
	StateExaminationRunning State = "EXAMINATION_RUNNING"
	StateExaminationEnded   State = "EXAMINATION_ENDED"
	StateAllComplete        State = "ALL_STUDENTS_COMPLETE"
)

// DefaultTickInterval is the clock sampling cadence while an examination is
// running. Elapsed time is always recomputed from absolute instants, so a
// missed or late tick never corrupts the arithmetic.
const DefaultTickInterval = time.Second

// Config carries the engine's collaborators. Zero values select production
// defaults.
type Config struct {
	Clock        Clock
	TickInterval time.Duration
	// OnUpdate is invoked after every transition and every tick with a fresh
	// snapshot. Called without the engine lock held.
	OnUpdate func(Snapshot)
	Logger   zerolog.Logger
}

// Engine runs one exam sitting: all enrolled students in exam order, one
// timed oral examination each, exactly one grade per student. All live state
// is ephemeral and rebuilt from the Store on LoadExam.
type Engine struct {
	mu    sync.Mutex
	store Store
	clock Clock
	log   zerolog.Logger

	examID   uuid.UUID
	exam     *model.Exam
	students []model.Student
	results  map[uuid.UUID]model.ExaminationResult

	state          State
	idx            int
	questionNumber int
	startedAt      time.Time
	frozenElapsed  time.Duration
	lastResult     *ResultSummary

	// generation invalidates ticker goroutines: every transition that stops
	// the clock bumps it, and a tick carrying a stale generation is discarded.
	generation   uint64
	tickInterval time.Duration
	onUpdate     func(Snapshot)
	intn         func(int) int
	closed       bool
}

// NewEngine creates an engine for one exam. Call LoadExam before any other
// action.
func NewEngine(store Store, examID uuid.UUID, cfg Config) *Engine {
	if cfg.Clock == nil {
		cfg.Clock = SystemClock
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	return &Engine{
		store:        store,
		clock:        cfg.Clock,
		log:          cfg.Logger.With().Str("component", "session_engine").Str("exam_id", examID.String()).Logger(),
		examID:       examID,
		results:      make(map[uuid.UUID]model.ExaminationResult),
		state:        StateNotStarted,
		tickInterval: cfg.TickInterval,
		onUpdate:     cfg.OnUpdate,
		intn:         rand.IntN,
	}
}

// LoadExam reconciles the engine against the persisted exam, student and
// result sets. The active student is the first in exam order without a
// result; if every student has one the session is already complete, and a
// missing completion flag on the exam is repaired.
func (e *Engine) LoadExam(ctx context.Context) (Snapshot, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return Snapshot{}, ErrClosed
	}
	if e.state != StateNotStarted {
		err := &TransitionError{From: e.state, Action: "loadExam"}
		e.mu.Unlock()
		return Snapshot{}, err
	}

	exam, err := e.store.GetExam(ctx, e.examID)
	if err != nil {
		e.mu.Unlock()
		return Snapshot{}, fmt.Errorf("load exam: %w", err)
	}
	students, err := e.store.ListStudents(ctx, e.examID)
	if err != nil {
		e.mu.Unlock()
		return Snapshot{}, fmt.Errorf("list students: %w", err)
	}
	results, err := e.store.ListResults(ctx, e.examID)
	if err != nil {
		e.mu.Unlock()
		return Snapshot{}, fmt.Errorf("list results: %w", err)
	}

	if len(students) == 0 {
		e.mu.Unlock()
		return Snapshot{}, ErrNoStudents
	}
	if exam.NumberOfQuestions <= 0 {
		// Never true for rows that passed creation-time validation, but the
		// draw must not panic on whatever the store returns.
		e.mu.Unlock()
		return Snapshot{}, ErrNoQuestions
	}

	e.exam = exam
	e.students = students
	e.results = make(map[uuid.UUID]model.ExaminationResult, len(results))
	for _, r := range results {
		e.results[r.StudentID] = r
	}

	if next, ok := e.nextUngraded(0); ok {
		e.idx = next
		e.state = StateAwaitingQuestion
	} else {
		if !e.exam.IsCompleted {
			// Repair: all results exist but the flag was never flipped
			// (e.g. the process died between saving the last result and
			// updating the exam). Keep NotStarted on failure so the load
			// can be retried.
			now := e.clock.Now()
			if err := e.store.MarkExamCompleted(ctx, e.examID, now); err != nil {
				e.exam = nil
				e.students = nil
				e.mu.Unlock()
				return Snapshot{}, fmt.Errorf("repair completion flag: %w", err)
			}
			e.exam.IsCompleted = true
			e.exam.CompletedAt = &now
			e.log.Warn().Msg("repaired missing completion flag")
		}
		e.state = StateAllComplete
	}

	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.publish(snap)
	return snap, nil
}

// DrawQuestion samples a question number uniformly from
// [1, NumberOfQuestions]. Draws are independent across students; a number may
// repeat within the sitting. Re-drawing for the same student is not allowed.
func (e *Engine) DrawQuestion() (Snapshot, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return Snapshot{}, ErrClosed
	}
	if e.state != StateAwaitingQuestion {
		err := &TransitionError{From: e.state, Action: "drawQuestion"}
		e.mu.Unlock()
		return Snapshot{}, err
	}

	e.questionNumber = e.intn(e.exam.NumberOfQuestions) + 1
	e.state = StateQuestionDrawn

	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.publish(snap)
	return snap, nil
}

// StartExamination records the start instant and begins the countdown.
func (e *Engine) StartExamination() (Snapshot, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return Snapshot{}, ErrClosed
	}
	if e.state != StateQuestionDrawn {
		err := &TransitionError{From: e.state, Action: "startExamination"}
		e.mu.Unlock()
		return Snapshot{}, err
	}

	e.startedAt = e.clock.Now()
	e.state = StateExaminationRunning
	e.generation++
	gen := e.generation

	snap := e.snapshotLocked()
	e.mu.Unlock()

	go e.runTicker(gen)

	e.publish(snap)
	return snap, nil
}

// EndExamination stops the clock manually. Elapsed time is now minus the
// start instant, capped at the configured duration.
func (e *Engine) EndExamination() (Snapshot, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return Snapshot{}, ErrClosed
	}
	if e.state != StateExaminationRunning {
		err := &TransitionError{From: e.state, Action: "endExamination"}
		e.mu.Unlock()
		return Snapshot{}, err
	}

	elapsed := e.clock.Now().Sub(e.startedAt)
	if elapsed > e.exam.Duration() {
		elapsed = e.exam.Duration()
	}
	e.frozenElapsed = elapsed
	e.state = StateExaminationEnded
	e.generation++ // kill the ticker

	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.publish(snap)
	return snap, nil
}

// SubmitGrade persists the current student's result and advances to the next
// student, or completes the exam after the last one. On a storage failure the
// engine stays in ExaminationEnded so the submission can be retried; no
// result counts as saved until the store confirms it.
func (e *Engine) SubmitGrade(ctx context.Context, grade model.Grade, notes string) (Snapshot, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return Snapshot{}, ErrClosed
	}
	if e.state != StateExaminationEnded {
		err := &TransitionError{From: e.state, Action: "submitGrade"}
		e.mu.Unlock()
		return Snapshot{}, err
	}
	if !grade.Valid() {
		e.mu.Unlock()
		return Snapshot{}, ErrInvalidGrade
	}

	// Any tick still in flight for this student is now superseded.
	e.generation++

	student := e.students[e.idx]
	result := &model.ExaminationResult{
		StudentID:        student.ID,
		QuestionNumber:   e.questionNumber,
		TimeSpentSeconds: int(e.frozenElapsed / time.Second),
		Notes:            notes,
		Grade:            grade,
		CompletedAt:      e.clock.Now(),
	}

	if err := e.store.CreateResult(ctx, result); err != nil {
		e.mu.Unlock()
		return Snapshot{}, fmt.Errorf("save result for student %s: %w", student.StudentNo, err)
	}

	e.results[student.ID] = *result
	e.lastResult = &ResultSummary{
		StudentName:      student.Name,
		StudentNo:        student.StudentNo,
		QuestionNumber:   result.QuestionNumber,
		TimeSpentSeconds: result.TimeSpentSeconds,
		Grade:            result.Grade,
		Notes:            result.Notes,
	}

	e.questionNumber = 0
	e.frozenElapsed = 0

	var completionErr error
	if next, ok := e.nextUngraded(e.idx + 1); ok {
		e.idx = next
		e.state = StateAwaitingQuestion
	} else {
		e.state = StateAllComplete
		now := e.clock.Now()
		if err := e.store.MarkExamCompleted(ctx, e.examID, now); err != nil {
			// The result itself is saved; the flag is repaired on the next
			// LoadExam. Surface the failure so the caller can warn.
			completionErr = fmt.Errorf("mark exam completed: %w", err)
		} else {
			e.exam.IsCompleted = true
			e.exam.CompletedAt = &now
		}
	}

	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.publish(snap)
	return snap, completionErr
}

// Snapshot returns the current projection without changing state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Close stops the ticker and rejects all further actions.
func (e *Engine) Close() {
	e.mu.Lock()
	e.closed = true
	e.generation++
	e.mu.Unlock()
}

// runTicker samples the clock once per tick interval while the examination
// runs. Handling is serialized through the engine mutex, and a generation
// mismatch means this run was superseded.
func (e *Engine) runTicker(gen uint64) {
	ticker := time.NewTicker(e.tickInterval)
	defer ticker.Stop()
	for range ticker.C {
		if !e.tick(gen) {
			return
		}
	}
}

// tick reevaluates remaining time from absolute instants. Returns false once
// the run is over (expiry, manual end, grading, or close).
func (e *Engine) tick(gen uint64) bool {
	e.mu.Lock()
	if gen != e.generation || e.state != StateExaminationRunning {
		e.mu.Unlock()
		return false
	}

	now := e.clock.Now()
	if now.Sub(e.startedAt) >= e.exam.Duration() {
		// Expiry: elapsed is exactly the configured duration, never a few
		// ticks over.
		e.frozenElapsed = e.exam.Duration()
		e.state = StateExaminationEnded
		e.generation++
		e.log.Info().Str("student_no", e.students[e.idx].StudentNo).Msg("examination time expired")

		snap := e.snapshotLocked()
		e.mu.Unlock()
		e.publish(snap)
		return false
	}

	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.publish(snap)
	return true
}

// nextUngraded returns the index of the first student at or after from
// without a result.
func (e *Engine) nextUngraded(from int) (int, bool) {
	for i := from; i < len(e.students); i++ {
		if _, graded := e.results[e.students[i].ID]; !graded {
			return i, true
		}
	}
	return 0, false
}

// elapsedLocked computes elapsed time for the current phase, clamped to
// [0, duration].
func (e *Engine) elapsedLocked() time.Duration {
	switch e.state {
	case StateExaminationRunning:
		elapsed := e.clock.Now().Sub(e.startedAt)
		if elapsed < 0 {
			elapsed = 0
		}
		if elapsed > e.exam.Duration() {
			elapsed = e.exam.Duration()
		}
		return elapsed
	case StateExaminationEnded:
		return e.frozenElapsed
	default:
		return 0
	}
}

func (e *Engine) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:       e.state,
		ExamID:      e.examID,
		GradedCount: len(e.results),
		LastResult:  e.lastResult,
	}
	if e.exam == nil {
		return snap
	}

	snap.TotalStudents = len(e.students)
	snap.QuestionNumber = e.questionNumber
	snap.ExamCompleted = e.exam.IsCompleted

	if e.state == StateAwaitingQuestion || e.state == StateQuestionDrawn ||
		e.state == StateExaminationRunning || e.state == StateExaminationEnded {
		student := e.students[e.idx]
		snap.CurrentStudent = &student
		snap.Position = e.idx + 1
	}

	elapsed := e.elapsedLocked()
	remaining := e.exam.Duration() - elapsed
	if remaining < 0 {
		remaining = 0
	}
	snap.ElapsedSeconds = int(elapsed / time.Second)
	snap.RemainingSeconds = int(remaining / time.Second)
	return snap
}

func (e *Engine) publish(snap Snapshot) {
	if e.onUpdate != nil {
		e.onUpdate(snap)
	}
}
