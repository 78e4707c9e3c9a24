package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eksamina/eksaminator-backend/internal/model"
	"github.com/google/uuid"
)

// fakeClock is a manually advanced Clock.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 12, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// memStore is an in-memory Store with injectable failures.
type memStore struct {
	exam       *model.Exam
	students   []model.Student
	results    []model.ExaminationResult
	failCreate error
	failMark   error
}

func (s *memStore) GetExam(_ context.Context, id uuid.UUID) (*model.Exam, error) {
	cp := *s.exam
	return &cp, nil
}

func (s *memStore) ListStudents(_ context.Context, _ uuid.UUID) ([]model.Student, error) {
	return append([]model.Student(nil), s.students...), nil
}

func (s *memStore) ListResults(_ context.Context, _ uuid.UUID) ([]model.ExaminationResult, error) {
	return append([]model.ExaminationResult(nil), s.results...), nil
}

func (s *memStore) CreateResult(_ context.Context, r *model.ExaminationResult) error {
	if s.failCreate != nil {
		err := s.failCreate
		s.failCreate = nil
		return err
	}
	for _, existing := range s.results {
		if existing.StudentID == r.StudentID {
			return ErrDuplicateResult
		}
	}
	r.ID = uuid.New()
	s.results = append(s.results, *r)
	return nil
}

func (s *memStore) MarkExamCompleted(_ context.Context, _ uuid.UUID, at time.Time) error {
	if s.failMark != nil {
		err := s.failMark
		s.failMark = nil
		return err
	}
	s.exam.IsCompleted = true
	s.exam.CompletedAt = &at
	return nil
}

func newTestStore(numStudents, numQuestions, minutes int) *memStore {
	examID := uuid.New()
	exam := &model.Exam{
		ID:                 examID,
		ExamTerm:           "Sommer 2025",
		CourseName:         "Softwarearkitektur",
		NumberOfQuestions:  numQuestions,
		ExaminationMinutes: minutes,
		StartTime:          "09:00",
	}
	students := make([]model.Student, 0, numStudents)
	for i := 0; i < numStudents; i++ {
		students = append(students, model.Student{
			ID:        uuid.New(),
			ExamID:    examID,
			StudentNo: string(rune('A' + i)),
			Name:      "Student " + string(rune('A'+i)),
			ExamOrder: i + 1,
		})
	}
	return &memStore{exam: exam, students: students}
}

func newTestEngine(store *memStore, clock Clock) *Engine {
	return NewEngine(store, store.exam.ID, Config{
		Clock: clock,
		// Keep the real ticker idle so tests drive ticks explicitly.
		TickInterval: time.Hour,
	})
}

func TestLoadExamNoStudents(t *testing.T) {
	store := newTestStore(0, 10, 30)
	eng := newTestEngine(store, newFakeClock())
	defer eng.Close()

	if _, err := eng.LoadExam(context.Background()); !errors.Is(err, ErrNoStudents) {
		t.Fatalf("LoadExam() error = %v, want ErrNoStudents", err)
	}
	if got := eng.Snapshot().State; got != StateNotStarted {
		t.Errorf("state after failed load = %v, want %v", got, StateNotStarted)
	}
}

func TestLoadExamNoQuestions(t *testing.T) {
	store := newTestStore(2, 0, 30)
	eng := newTestEngine(store, newFakeClock())
	defer eng.Close()

	if _, err := eng.LoadExam(context.Background()); !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("LoadExam() error = %v, want ErrNoQuestions", err)
	}
	if got := eng.Snapshot().State; got != StateNotStarted {
		t.Errorf("state after failed load = %v, want %v", got, StateNotStarted)
	}
}

func TestFullSitting(t *testing.T) {
	const n = 3
	store := newTestStore(n, 10, 30)
	clock := newFakeClock()
	eng := newTestEngine(store, clock)
	defer eng.Close()

	ctx := context.Background()
	snap, err := eng.LoadExam(ctx)
	if err != nil {
		t.Fatalf("LoadExam() error = %v", err)
	}
	if snap.State != StateAwaitingQuestion || snap.Position != 1 {
		t.Fatalf("after load: state=%v position=%d, want %v/1", snap.State, snap.Position, StateAwaitingQuestion)
	}

	grades := []model.Grade{model.GradeSeven, model.GradeTwelve, model.GradeZero}
	for i := 0; i < n; i++ {
		if _, err := eng.DrawQuestion(); err != nil {
			t.Fatalf("student %d: DrawQuestion() error = %v", i+1, err)
		}
		if _, err := eng.StartExamination(); err != nil {
			t.Fatalf("student %d: StartExamination() error = %v", i+1, err)
		}
		clock.Advance(10 * time.Minute)
		if _, err := eng.EndExamination(); err != nil {
			t.Fatalf("student %d: EndExamination() error = %v", i+1, err)
		}
		snap, err = eng.SubmitGrade(ctx, grades[i], "notes")
		if err != nil {
			t.Fatalf("student %d: SubmitGrade() error = %v", i+1, err)
		}
	}

	if snap.State != StateAllComplete {
		t.Errorf("final state = %v, want %v", snap.State, StateAllComplete)
	}
	if !snap.ExamCompleted || !store.exam.IsCompleted {
		t.Error("exam completion flag not set")
	}
	if store.exam.CompletedAt == nil {
		t.Error("completion timestamp not set")
	}
	if len(store.results) != n {
		t.Fatalf("results = %d, want %d", len(store.results), n)
	}
	seen := make(map[uuid.UUID]bool)
	for _, r := range store.results {
		if seen[r.StudentID] {
			t.Errorf("duplicate result for student %s", r.StudentID)
		}
		seen[r.StudentID] = true
		if r.TimeSpentSeconds != 600 {
			t.Errorf("TimeSpentSeconds = %d, want 600", r.TimeSpentSeconds)
		}
	}
}

func TestExpiryClampsElapsed(t *testing.T) {
	store := newTestStore(1, 5, 1) // 1-minute examination
	clock := newFakeClock()
	eng := newTestEngine(store, clock)
	defer eng.Close()

	ctx := context.Background()
	mustLoad(t, eng, ctx)
	mustDraw(t, eng)
	if _, err := eng.StartExamination(); err != nil {
		t.Fatalf("StartExamination() error = %v", err)
	}

	clock.Advance(61 * time.Second)
	if cont := eng.tick(eng.generation); cont {
		t.Error("tick() = true after expiry, want false")
	}

	snap := eng.Snapshot()
	if snap.State != StateExaminationEnded {
		t.Errorf("state = %v, want %v", snap.State, StateExaminationEnded)
	}
	if snap.ElapsedSeconds != 60 {
		t.Errorf("elapsed = %ds, want exactly 60s", snap.ElapsedSeconds)
	}
	if snap.RemainingSeconds != 0 {
		t.Errorf("remaining = %ds, want 0", snap.RemainingSeconds)
	}
}

func TestManualEndRecordsElapsed(t *testing.T) {
	store := newTestStore(1, 5, 30)
	clock := newFakeClock()
	eng := newTestEngine(store, clock)
	defer eng.Close()

	ctx := context.Background()
	mustLoad(t, eng, ctx)
	mustDraw(t, eng)
	if _, err := eng.StartExamination(); err != nil {
		t.Fatalf("StartExamination() error = %v", err)
	}

	clock.Advance(12*time.Minute + 30*time.Second)
	snap, err := eng.EndExamination()
	if err != nil {
		t.Fatalf("EndExamination() error = %v", err)
	}
	if snap.ElapsedSeconds != 750 {
		t.Errorf("elapsed = %ds, want 750", snap.ElapsedSeconds)
	}
	if want := 30*60 - 750; snap.RemainingSeconds != want {
		t.Errorf("remaining = %ds, want %d", snap.RemainingSeconds, want)
	}
}

func TestRemainingNeverNegative(t *testing.T) {
	store := newTestStore(1, 5, 1)
	clock := newFakeClock()
	eng := newTestEngine(store, clock)
	defer eng.Close()

	ctx := context.Background()
	mustLoad(t, eng, ctx)
	mustDraw(t, eng)
	if _, err := eng.StartExamination(); err != nil {
		t.Fatalf("StartExamination() error = %v", err)
	}

	// Way past the allotted time without a tick firing.
	clock.Advance(2 * time.Hour)
	snap := eng.Snapshot()
	if snap.RemainingSeconds != 0 {
		t.Errorf("remaining = %ds, want 0", snap.RemainingSeconds)
	}
	if snap.ElapsedSeconds != 60 {
		t.Errorf("elapsed = %ds, want clamped to 60", snap.ElapsedSeconds)
	}
}

func TestDrawQuestionBounds(t *testing.T) {
	store := newTestStore(1, 5, 30)
	eng := newTestEngine(store, newFakeClock())
	defer eng.Close()

	mustLoad(t, eng, context.Background())

	seen := make(map[int]bool)
	for i := 0; i < 10000; i++ {
		snap, err := eng.DrawQuestion()
		if err != nil {
			t.Fatalf("DrawQuestion() error = %v", err)
		}
		if snap.QuestionNumber < 1 || snap.QuestionNumber > 5 {
			t.Fatalf("question %d out of [1,5]", snap.QuestionNumber)
		}
		seen[snap.QuestionNumber] = true
		// Rewind so the next draw is permitted; re-drawing is not a public
		// action.
		eng.mu.Lock()
		eng.state = StateAwaitingQuestion
		eng.mu.Unlock()
	}
	if len(seen) != 5 {
		t.Errorf("10000 draws visited %d of 5 values", len(seen))
	}
}

func TestResumeSkipsGradedStudents(t *testing.T) {
	for _, k := range []int{1, 2, 3} {
		store := newTestStore(4, 10, 30)
		for i := 0; i < k; i++ {
			store.results = append(store.results, model.ExaminationResult{
				ID:        uuid.New(),
				StudentID: store.students[i].ID,
				Grade:     model.GradeFour,
			})
		}
		eng := newTestEngine(store, newFakeClock())
		snap, err := eng.LoadExam(context.Background())
		if err != nil {
			t.Fatalf("k=%d: LoadExam() error = %v", k, err)
		}
		if snap.State != StateAwaitingQuestion {
			t.Errorf("k=%d: state = %v, want %v", k, snap.State, StateAwaitingQuestion)
		}
		if snap.Position != k+1 {
			t.Errorf("k=%d: position = %d, want %d", k, snap.Position, k+1)
		}
		eng.Close()
	}
}

func TestResumeAllGradedRepairsCompletionFlag(t *testing.T) {
	store := newTestStore(2, 10, 30)
	for _, s := range store.students {
		store.results = append(store.results, model.ExaminationResult{
			ID:        uuid.New(),
			StudentID: s.ID,
			Grade:     model.GradeTen,
		})
	}
	// Flag was never flipped.
	store.exam.IsCompleted = false

	eng := newTestEngine(store, newFakeClock())
	defer eng.Close()

	snap, err := eng.LoadExam(context.Background())
	if err != nil {
		t.Fatalf("LoadExam() error = %v", err)
	}
	if snap.State != StateAllComplete {
		t.Errorf("state = %v, want %v", snap.State, StateAllComplete)
	}
	if !store.exam.IsCompleted {
		t.Error("completion flag was not repaired")
	}
}

func TestDoubleSubmitKeepsOneResult(t *testing.T) {
	store := newTestStore(2, 10, 30)
	clock := newFakeClock()
	eng := newTestEngine(store, clock)
	defer eng.Close()

	ctx := context.Background()
	mustLoad(t, eng, ctx)
	mustDraw(t, eng)
	if _, err := eng.StartExamination(); err != nil {
		t.Fatalf("StartExamination() error = %v", err)
	}
	clock.Advance(time.Minute)
	if _, err := eng.EndExamination(); err != nil {
		t.Fatalf("EndExamination() error = %v", err)
	}

	if _, err := eng.SubmitGrade(ctx, model.GradeSeven, ""); err != nil {
		t.Fatalf("first SubmitGrade() error = %v", err)
	}
	// Double-tap: the session has advanced, so the repeat is a precondition
	// failure and no second row is written.
	if _, err := eng.SubmitGrade(ctx, model.GradeSeven, ""); !IsTransitionError(err) {
		t.Fatalf("second SubmitGrade() error = %v, want TransitionError", err)
	}
	if len(store.results) != 1 {
		t.Errorf("results = %d, want 1", len(store.results))
	}
}

func TestSubmitGradeStorageFailureIsRetryable(t *testing.T) {
	store := newTestStore(1, 10, 30)
	clock := newFakeClock()
	eng := newTestEngine(store, clock)
	defer eng.Close()

	ctx := context.Background()
	mustLoad(t, eng, ctx)
	mustDraw(t, eng)
	if _, err := eng.StartExamination(); err != nil {
		t.Fatalf("StartExamination() error = %v", err)
	}
	clock.Advance(time.Minute)
	if _, err := eng.EndExamination(); err != nil {
		t.Fatalf("EndExamination() error = %v", err)
	}

	store.failCreate = errors.New("connection reset")
	if _, err := eng.SubmitGrade(ctx, model.GradeTwo, ""); err == nil {
		t.Fatal("SubmitGrade() with failing store: want error")
	}
	if got := eng.Snapshot().State; got != StateExaminationEnded {
		t.Fatalf("state after storage failure = %v, want %v", got, StateExaminationEnded)
	}

	snap, err := eng.SubmitGrade(ctx, model.GradeTwo, "")
	if err != nil {
		t.Fatalf("retried SubmitGrade() error = %v", err)
	}
	if snap.State != StateAllComplete {
		t.Errorf("state = %v, want %v", snap.State, StateAllComplete)
	}
	if len(store.results) != 1 {
		t.Errorf("results = %d, want 1", len(store.results))
	}
}

func TestStaleTickDiscarded(t *testing.T) {
	store := newTestStore(1, 10, 1)
	clock := newFakeClock()
	eng := newTestEngine(store, clock)
	defer eng.Close()

	ctx := context.Background()
	mustLoad(t, eng, ctx)
	mustDraw(t, eng)
	if _, err := eng.StartExamination(); err != nil {
		t.Fatalf("StartExamination() error = %v", err)
	}
	staleGen := eng.generation

	clock.Advance(30 * time.Second)
	if _, err := eng.EndExamination(); err != nil {
		t.Fatalf("EndExamination() error = %v", err)
	}

	// A tick from the superseded run must be a no-op even past expiry.
	clock.Advance(time.Hour)
	if cont := eng.tick(staleGen); cont {
		t.Error("stale tick() = true, want false")
	}
	if got := eng.Snapshot().ElapsedSeconds; got != 30 {
		t.Errorf("elapsed = %ds, want 30 (unchanged by stale tick)", got)
	}
}

func TestInvalidGradeRejected(t *testing.T) {
	store := newTestStore(1, 10, 30)
	clock := newFakeClock()
	eng := newTestEngine(store, clock)
	defer eng.Close()

	ctx := context.Background()
	mustLoad(t, eng, ctx)
	mustDraw(t, eng)
	if _, err := eng.StartExamination(); err != nil {
		t.Fatalf("StartExamination() error = %v", err)
	}
	if _, err := eng.EndExamination(); err != nil {
		t.Fatalf("EndExamination() error = %v", err)
	}

	if _, err := eng.SubmitGrade(ctx, model.Grade(5), ""); !errors.Is(err, ErrInvalidGrade) {
		t.Fatalf("SubmitGrade(5) error = %v, want ErrInvalidGrade", err)
	}
	if got := eng.Snapshot().State; got != StateExaminationEnded {
		t.Errorf("state = %v, want unchanged %v", got, StateExaminationEnded)
	}
	if len(store.results) != 0 {
		t.Errorf("results = %d, want 0", len(store.results))
	}
}

func TestWrongStateActionsRejected(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		prepare func(t *testing.T, eng *Engine, clock *fakeClock)
		action  func(eng *Engine) error
	}{
		{
			name:    "draw before load",
			prepare: func(t *testing.T, eng *Engine, clock *fakeClock) {},
			action:  func(eng *Engine) error { _, err := eng.DrawQuestion(); return err },
		},
		{
			name: "start before draw",
			prepare: func(t *testing.T, eng *Engine, clock *fakeClock) {
				mustLoad(t, eng, ctx)
			},
			action: func(eng *Engine) error { _, err := eng.StartExamination(); return err },
		},
		{
			name: "end before start",
			prepare: func(t *testing.T, eng *Engine, clock *fakeClock) {
				mustLoad(t, eng, ctx)
				mustDraw(t, eng)
			},
			action: func(eng *Engine) error { _, err := eng.EndExamination(); return err },
		},
		{
			name: "grade while question drawn",
			prepare: func(t *testing.T, eng *Engine, clock *fakeClock) {
				mustLoad(t, eng, ctx)
				mustDraw(t, eng)
			},
			action: func(eng *Engine) error {
				_, err := eng.SubmitGrade(ctx, model.GradeSeven, "")
				return err
			},
		},
		{
			name: "second draw",
			prepare: func(t *testing.T, eng *Engine, clock *fakeClock) {
				mustLoad(t, eng, ctx)
				mustDraw(t, eng)
			},
			action: func(eng *Engine) error { _, err := eng.DrawQuestion(); return err },
		},
		{
			name: "load twice",
			prepare: func(t *testing.T, eng *Engine, clock *fakeClock) {
				mustLoad(t, eng, ctx)
			},
			action: func(eng *Engine) error { _, err := eng.LoadExam(ctx); return err },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(2, 10, 30)
			clock := newFakeClock()
			eng := newTestEngine(store, clock)
			defer eng.Close()

			tt.prepare(t, eng, clock)
			before := eng.Snapshot().State
			if err := tt.action(eng); !IsTransitionError(err) {
				t.Fatalf("error = %v, want TransitionError", err)
			}
			if after := eng.Snapshot().State; after != before {
				t.Errorf("state changed %v -> %v on rejected action", before, after)
			}
		})
	}
}

func TestClosedEngineRejectsActions(t *testing.T) {
	store := newTestStore(1, 10, 30)
	eng := newTestEngine(store, newFakeClock())
	eng.Close()

	if _, err := eng.LoadExam(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("LoadExam() after Close error = %v, want ErrClosed", err)
	}
}

func mustLoad(t *testing.T, eng *Engine, ctx context.Context) {
	t.Helper()
	if _, err := eng.LoadExam(ctx); err != nil {
		t.Fatalf("LoadExam() error = %v", err)
	}
}

func mustDraw(t *testing.T, eng *Engine) {
	t.Helper()
	if _, err := eng.DrawQuestion(); err != nil {
		t.Fatalf("DrawQuestion() error = %v", err)
	}
}
