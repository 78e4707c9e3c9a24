package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/eksamina/eksaminator-backend/internal/config"
	"github.com/eksamina/eksaminator-backend/internal/model"
	"github.com/eksamina/eksaminator-backend/internal/session"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrNoActiveSession is returned when a session action arrives with no exam
// loaded.
var ErrNoActiveSession = errors.New("no active exam session")

// StatisticsJob is the payload pushed to the statistics refresh queue.
type StatisticsJob struct {
	ExamID string `json:"exam_id"`
}

// SessionService owns the single active exam session per process and fans
// engine snapshots out to subscribers (the WebSocket stream). Loading a new
// exam closes the previous session.
type SessionService struct {
	mu     sync.Mutex
	engine *session.Engine

	store session.Store
	rdb   *redis.Client
	log   zerolog.Logger

	subMu   sync.Mutex
	subs    map[int]chan session.Snapshot
	nextSub int
}

// NewSessionService creates a new SessionService.
func NewSessionService(store session.Store, rdb *redis.Client, log zerolog.Logger) *SessionService {
	return &SessionService{
		store: store,
		rdb:   rdb,
		log:   log.With().Str("component", "session_service").Logger(),
		subs:  make(map[int]chan session.Snapshot),
	}
}

// LoadExam starts (or resumes) a sitting for the given exam, replacing any
// session already in progress.
func (s *SessionService) LoadExam(ctx context.Context, examID uuid.UUID) (session.Snapshot, error) {
	s.mu.Lock()
	if s.engine != nil {
		s.engine.Close()
		s.engine = nil
	}
	eng := session.NewEngine(s.store, examID, session.Config{
		Logger:   s.log,
		OnUpdate: s.broadcast,
	})
	s.engine = eng
	s.mu.Unlock()

	snap, err := eng.LoadExam(ctx)
	if err != nil {
		s.mu.Lock()
		if s.engine == eng {
			s.engine = nil
		}
		s.mu.Unlock()
		eng.Close()
		return session.Snapshot{}, err
	}
	return snap, nil
}

// Snapshot returns the current session projection.
func (s *SessionService) Snapshot() (session.Snapshot, error) {
	eng, err := s.current()
	if err != nil {
		return session.Snapshot{}, err
	}
	return eng.Snapshot(), nil
}

// DrawQuestion draws a question for the active student.
func (s *SessionService) DrawQuestion() (session.Snapshot, error) {
	eng, err := s.current()
	if err != nil {
		return session.Snapshot{}, err
	}
	return eng.DrawQuestion()
}

// StartExamination starts the active student's countdown.
func (s *SessionService) StartExamination() (session.Snapshot, error) {
	eng, err := s.current()
	if err != nil {
		return session.Snapshot{}, err
	}
	return eng.StartExamination()
}

// EndExamination stops the countdown manually.
func (s *SessionService) EndExamination() (session.Snapshot, error) {
	eng, err := s.current()
	if err != nil {
		return session.Snapshot{}, err
	}
	return eng.EndExamination()
}

// SubmitGrade records the active student's result and queues a statistics
// refresh for the exam.
func (s *SessionService) SubmitGrade(ctx context.Context, grade model.Grade, notes string) (session.Snapshot, error) {
	eng, err := s.current()
	if err != nil {
		return session.Snapshot{}, err
	}

	snap, err := eng.SubmitGrade(ctx, grade, notes)
	// A non-empty state means the result was persisted even if a follow-up
	// step (completion flag) failed.
	if snap.State != "" {
		s.enqueueStatisticsRefresh(ctx, snap.ExamID)
	}
	return snap, err
}

// Subscribe registers a snapshot listener. The returned cancel func must be
// called when the subscriber goes away. Slow subscribers miss intermediate
// snapshots rather than blocking the engine.
func (s *SessionService) Subscribe() (<-chan session.Snapshot, func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan session.Snapshot, 16)
	s.subs[id] = ch
	s.subMu.Unlock()

	cancel := func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
	return ch, cancel
}

func (s *SessionService) broadcast(snap session.Snapshot) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default: // drop for slow consumers; the next snapshot supersedes
		}
	}
}

func (s *SessionService) enqueueStatisticsRefresh(ctx context.Context, examID uuid.UUID) {
	raw, _ := json.Marshal(StatisticsJob{ExamID: examID.String()})
	if err := s.rdb.RPush(ctx, config.WorkerKey.RefreshStatisticsQueue, raw).Err(); err != nil {
		// Cache staleness only; the TTL bounds it.
		s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("failed to queue statistics refresh")
	}
}

func (s *SessionService) current() (*session.Engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return nil, ErrNoActiveSession
	}
	return s.engine, nil
}
