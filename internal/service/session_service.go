package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/aulaplay/aulaplay-backend/internal/config"
	"github.com/aulaplay/aulaplay-backend/internal/model"
	"github.com/aulaplay/aulaplay-backend/internal/repository"
	"github.com/aulaplay/aulaplay-backend/internal/session"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Session domain errors.
var (
	ErrNoSession             = errors.New("no running session for this activity")
	ErrSessionAlreadyRunning = errors.New("another activity session is already running")
	ErrAnswerRequired        = errors.New("current question has no answer")
	ErrSessionFinished       = errors.New("session is already completed")
	ErrResultNotReady        = errors.New("result is not available yet")
)

// SessionEventType discriminates session stream events.
type SessionEventType string

const (
	SessionEventTick      SessionEventType = "tick"
	SessionEventCompleted SessionEventType = "completed"
)

// SessionEvent is pushed to stream subscribers as the session progresses.
type SessionEvent struct {
	Type             SessionEventType `json:"type"`
	RemainingSeconds int              `json:"remaining_seconds"`
	Result           *model.Result    `json:"result,omitempty"`
}

// SessionState is a point-in-time snapshot of a running session, shaped for
// the presentation layer.
type SessionState struct {
	ActivityID       uuid.UUID      `json:"activity_id"`
	Phase            session.Phase  `json:"phase"`
	CurrentIndex     int            `json:"current_index"`
	TotalQuestions   int            `json:"total_questions"`
	RemainingSeconds int            `json:"remaining_seconds"`
	Answers          map[int]string `json:"answers"`
	CanAdvance       bool           `json:"can_advance"`
}

type runningSession struct {
	controller *session.Controller

	mu   sync.Mutex
	subs map[chan SessionEvent]struct{}
}

func (rs *runningSession) broadcast(ev SessionEvent) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	for ch := range rs.subs {
		select {
		case ch <- ev:
		default:
			// Slow subscriber. Drop the event rather than stall the clock.
		}
	}
}

// SessionService owns the in-memory registry of running session controllers.
// One running session per student; results are handed off to Redis for the
// persistence worker on completion.
type SessionService struct {
	cfg          *config.Config
	activityRepo *repository.ActivityRepository
	resultRepo   *repository.ResultRepository
	rdb          *redis.Client
	log          zerolog.Logger

	mu       sync.Mutex
	sessions map[int]*runningSession
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	cfg *config.Config,
	activityRepo *repository.ActivityRepository,
	resultRepo *repository.ResultRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		cfg:          cfg,
		activityRepo: activityRepo,
		resultRepo:   resultRepo,
		rdb:          rdb,
		log:          log.With().Str("component", "session_service").Logger(),
		sessions:     make(map[int]*runningSession),
	}
}

// Start creates and starts a session for the student on the given activity.
// A student can run at most one session at a time; a finished controller is
// replaced by the new one.
func (s *SessionService) Start(ctx context.Context, studentID int, activityID uuid.UUID) (*SessionState, error) {
	activity, err := s.activityRepo.GetWithQuestions(ctx, activityID)
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}
	if activity.Status != model.ActivityStatusPublished {
		return nil, ErrActivityNotPublished
	}
	if err := activity.Validate(); err != nil {
		return nil, fmt.Errorf("validate activity: %w", err)
	}

	s.mu.Lock()
	if existing, ok := s.sessions[studentID]; ok {
		if existing.controller.Phase() == session.PhaseInProgress {
			s.mu.Unlock()
			return nil, ErrSessionAlreadyRunning
		}
		// Completed leftover. Replace it.
		existing.controller.Close()
		delete(s.sessions, studentID)
	}

	rs := &runningSession{subs: make(map[chan SessionEvent]struct{})}
	rs.controller = session.NewController(activity, studentID, session.Options{
		TickInterval:     s.cfg.SessionTickInterval,
		AutoAdvanceDelay: s.cfg.SessionAutoAdvanceDelay,
		OnTick: func(remaining int) {
			rs.broadcast(SessionEvent{Type: SessionEventTick, RemainingSeconds: remaining})
		},
		OnComplete: func(res *model.Result) {
			s.finishSession(studentID, rs, res)
		},
	})
	s.sessions[studentID] = rs
	s.mu.Unlock()

	// Mark the student as busy so other devices see the running session.
	activeKey := config.CacheKey.StudentActiveActivityKey(studentID)
	if err := s.rdb.Set(ctx, activeKey, activityID.String(), 0).Err(); err != nil {
		s.log.Warn().Err(err).Int("student_id", studentID).Msg("Failed to mark active session")
	}

	rs.controller.Start()

	s.log.Info().
		Int("student_id", studentID).
		Str("activity_id", activityID.String()).
		Int("questions", len(activity.Questions)).
		Msg("Session started")

	return snapshot(rs.controller), nil
}

// finishSession runs on the Completed transition: queue the result for the
// persistence worker, clear the busy marker and notify subscribers.
func (s *SessionService) finishSession(studentID int, rs *runningSession, res *model.Result) {
	ctx := context.Background()

	raw, err := json.Marshal(res)
	if err != nil {
		s.log.Error().Err(err).Int("student_id", studentID).Msg("Marshal result failed")
	} else if err := s.rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, raw).Err(); err != nil {
		s.log.Error().Err(err).Int("student_id", studentID).Msg("Queue result failed, persisting directly")
		// Queue unreachable. Do not lose the result.
		if dbErr := s.resultRepo.Upsert(ctx, res); dbErr != nil {
			s.log.Error().Err(dbErr).Int("student_id", studentID).Msg("Direct result persist failed")
		}
	}

	if err := s.rdb.Del(ctx, config.CacheKey.StudentActiveActivityKey(studentID)).Err(); err != nil {
		s.log.Warn().Err(err).Int("student_id", studentID).Msg("Failed to clear active session marker")
	}

	s.log.Info().
		Int("student_id", studentID).
		Str("activity_id", res.ActivityID.String()).
		Int("score", res.Score).
		Int("correct", res.CorrectCount).
		Int("total", res.TotalQuestions).
		Msg("Session completed")

	rs.broadcast(SessionEvent{Type: SessionEventCompleted, Result: res})
}

// get returns the student's running session, checked against the activity.
func (s *SessionService) get(studentID int, activityID uuid.UUID) (*runningSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rs, ok := s.sessions[studentID]
	if !ok || rs.controller.Activity().ID != activityID {
		return nil, ErrNoSession
	}
	return rs, nil
}

// State returns a snapshot of the student's session on the given activity.
func (s *SessionService) State(studentID int, activityID uuid.UUID) (*SessionState, error) {
	rs, err := s.get(studentID, activityID)
	if err != nil {
		return nil, err
	}
	return snapshot(rs.controller), nil
}

// RecordAnswer records the student's answer for the current question.
func (s *SessionService) RecordAnswer(studentID int, activityID uuid.UUID, answer string) (*SessionState, error) {
	rs, err := s.get(studentID, activityID)
	if err != nil {
		return nil, err
	}
	if rs.controller.Phase() != session.PhaseInProgress {
		return nil, ErrSessionFinished
	}
	rs.controller.RecordAnswer(answer)
	return snapshot(rs.controller), nil
}

// Advance moves to the next question or submits from the last one.
func (s *SessionService) Advance(studentID int, activityID uuid.UUID) (*SessionState, error) {
	rs, err := s.get(studentID, activityID)
	if err != nil {
		return nil, err
	}
	if rs.controller.Phase() != session.PhaseInProgress {
		return nil, ErrSessionFinished
	}
	if !rs.controller.CanAdvance() {
		return nil, ErrAnswerRequired
	}
	rs.controller.Advance()
	return snapshot(rs.controller), nil
}

// Retreat moves back one question.
func (s *SessionService) Retreat(studentID int, activityID uuid.UUID) (*SessionState, error) {
	rs, err := s.get(studentID, activityID)
	if err != nil {
		return nil, err
	}
	if rs.controller.Phase() != session.PhaseInProgress {
		return nil, ErrSessionFinished
	}
	rs.controller.Retreat()
	return snapshot(rs.controller), nil
}

// Submit finishes the session explicitly.
func (s *SessionService) Submit(studentID int, activityID uuid.UUID) (*SessionState, error) {
	rs, err := s.get(studentID, activityID)
	if err != nil {
		return nil, err
	}
	if rs.controller.Phase() != session.PhaseInProgress {
		return nil, ErrSessionFinished
	}
	if !rs.controller.CanAdvance() {
		return nil, ErrAnswerRequired
	}
	rs.controller.Submit()
	return snapshot(rs.controller), nil
}

// Abandon tears down a session without scoring it. Nothing is persisted.
func (s *SessionService) Abandon(ctx context.Context, studentID int, activityID uuid.UUID) error {
	rs, err := s.get(studentID, activityID)
	if err != nil {
		return err
	}

	rs.controller.Close()

	s.mu.Lock()
	delete(s.sessions, studentID)
	s.mu.Unlock()

	if err := s.rdb.Del(ctx, config.CacheKey.StudentActiveActivityKey(studentID)).Err(); err != nil {
		s.log.Warn().Err(err).Int("student_id", studentID).Msg("Failed to clear active session marker")
	}

	s.log.Info().
		Int("student_id", studentID).
		Str("activity_id", activityID.String()).
		Msg("Session abandoned")
	return nil
}

// Result returns the student's result for an activity: from the in-memory
// session when it just completed, otherwise from PostgreSQL.
func (s *SessionService) Result(ctx context.Context, studentID int, activityID uuid.UUID) (*model.Result, error) {
	s.mu.Lock()
	rs, ok := s.sessions[studentID]
	s.mu.Unlock()

	if ok && rs.controller.Activity().ID == activityID {
		if res, done := rs.controller.Result(); done {
			return res, nil
		}
		return nil, ErrResultNotReady
	}

	res, err := s.resultRepo.GetByActivityAndStudent(ctx, activityID, studentID)
	if err != nil {
		return nil, ErrResultNotReady
	}
	return res, nil
}

// ListResults returns all persisted results for a student, newest first.
// Review entries are omitted; GetResult serves the full review.
func (s *SessionService) ListResults(ctx context.Context, studentID int) ([]model.Result, error) {
	return s.resultRepo.ListByStudent(ctx, studentID)
}

// Subscribe attaches a listener to the session's event stream. The returned
// cancel func must be called when the listener goes away.
func (s *SessionService) Subscribe(studentID int, activityID uuid.UUID) (<-chan SessionEvent, func(), error) {
	rs, err := s.get(studentID, activityID)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan SessionEvent, 16)
	rs.mu.Lock()
	rs.subs[ch] = struct{}{}
	rs.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			rs.mu.Lock()
			delete(rs.subs, ch)
			// Safe to close here: broadcast sends only while holding rs.mu.
			close(ch)
			rs.mu.Unlock()
		})
	}
	return ch, cancel, nil
}

// ActiveSessions reports how many sessions are currently in progress.
func (s *SessionService) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, rs := range s.sessions {
		if rs.controller.Phase() == session.PhaseInProgress {
			n++
		}
	}
	return n
}

// Shutdown closes every running session. Sessions are not scored; students
// resume with a fresh attempt after a restart.
func (s *SessionService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for studentID, rs := range s.sessions {
		rs.controller.Close()
		delete(s.sessions, studentID)
	}
}

func snapshot(c *session.Controller) *SessionState {
	return &SessionState{
		ActivityID:       c.Activity().ID,
		Phase:            c.Phase(),
		CurrentIndex:     c.CurrentIndex(),
		TotalQuestions:   len(c.Activity().Questions),
		RemainingSeconds: c.RemainingSeconds(),
		Answers:          c.Answers(),
		CanAdvance:       c.CanAdvance(),
	}
}
