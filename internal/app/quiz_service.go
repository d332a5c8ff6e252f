package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"quiz-session-engine/internal/domain"
	"quiz-session-engine/internal/engine"

	"github.com/google/uuid"
)

// AttemptRepository abstracts how in-progress attempts are stored (in-memory, Redis, etc).
type AttemptRepository interface {
	Save(ctx context.Context, attempt domain.Attempt) error
	Get(ctx context.Context, attemptID string) (domain.Attempt, error)
	Delete(ctx context.Context, attemptID string) error
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.QuizDefinition, error)
}

// ResultRepository keeps graded attempts.
type ResultRepository interface {
	SaveResult(ctx context.Context, result domain.AttemptResult) error
	ListResults(ctx context.Context, quizID string, limit int) ([]domain.AttemptResult, error)
}

// QuizService contains the quiz attempt use cases.
type QuizService struct {
	attempts AttemptRepository
	quizzes  QuizRepository
	results  ResultRepository
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// Option customizes a QuizService.
type Option func(*QuizService)

// WithLogger sets the logger used for attempt transitions.
func WithLogger(logger *slog.Logger) Option {
	return func(s *QuizService) { s.logger = logger }
}

// WithClock is intended for tests that need deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *QuizService) { s.now = now }
}

// WithIDGenerator replaces the UUID attempt ID generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *QuizService) { s.newID = newID }
}

func NewQuizService(attempts AttemptRepository, quizzes QuizRepository, results ResultRepository, opts ...Option) *QuizService {
	s := &QuizService{
		attempts: attempts,
		quizzes:  quizzes,
		results:  results,
		logger:   slog.Default(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartAttempt begins a new attempt at quizID.
func (s *QuizService) StartAttempt(ctx context.Context, quizID string) (domain.AttemptView, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.AttemptView{}, err
	}
	eng, state, err := engine.Start(quiz)
	if err != nil {
		return domain.AttemptView{}, err
	}

	now := s.now()
	attempt := domain.Attempt{
		ID:        s.newID(),
		State:     state,
		StartedAt: now,
		UpdatedAt: now,
	}
	if err := s.attempts.Save(ctx, attempt); err != nil {
		return domain.AttemptView{}, fmt.Errorf("save attempt: %w", err)
	}
	s.logger.InfoContext(ctx, "attempt started", "attempt_id", attempt.ID, "quiz_id", quizID, "questions", eng.Len())
	return view(eng, attempt), nil
}

// View returns the current state of an attempt.
func (s *QuizService) View(ctx context.Context, attemptID string) (domain.AttemptView, error) {
	eng, attempt, err := s.load(ctx, attemptID)
	if err != nil {
		return domain.AttemptView{}, err
	}
	return view(eng, attempt), nil
}

// SelectAnswer records an answer; re-answering replaces the earlier choice.
func (s *QuizService) SelectAnswer(ctx context.Context, attemptID, questionID string, option int) (domain.AttemptView, error) {
	return s.apply(ctx, attemptID, func(eng *engine.Engine, state domain.SessionState) (domain.SessionState, error) {
		return eng.SelectAnswer(state, questionID, option)
	})
}

// ToggleFlag flags or unflags a question for review.
func (s *QuizService) ToggleFlag(ctx context.Context, attemptID, questionID string) (domain.AttemptView, error) {
	return s.apply(ctx, attemptID, func(eng *engine.Engine, state domain.SessionState) (domain.SessionState, error) {
		return eng.ToggleFlag(state, questionID)
	})
}

// GoTo jumps to a question; out-of-range indexes stop at the first or last question.
func (s *QuizService) GoTo(ctx context.Context, attemptID string, index int) (domain.AttemptView, error) {
	return s.apply(ctx, attemptID, func(eng *engine.Engine, state domain.SessionState) (domain.SessionState, error) {
		return eng.GoTo(state, index), nil
	})
}

// Next moves one question forward.
func (s *QuizService) Next(ctx context.Context, attemptID string) (domain.AttemptView, error) {
	return s.apply(ctx, attemptID, func(eng *engine.Engine, state domain.SessionState) (domain.SessionState, error) {
		return eng.Next(state), nil
	})
}

// Previous moves one question back.
func (s *QuizService) Previous(ctx context.Context, attemptID string) (domain.AttemptView, error) {
	return s.apply(ctx, attemptID, func(eng *engine.Engine, state domain.SessionState) (domain.SessionState, error) {
		return eng.Previous(state), nil
	})
}

// Review reports unanswered and flagged questions ahead of submission.
func (s *QuizService) Review(ctx context.Context, attemptID string) (domain.SubmitReview, error) {
	eng, attempt, err := s.load(ctx, attemptID)
	if err != nil {
		return domain.SubmitReview{}, err
	}
	return eng.Review(attempt.State), nil
}

// Submit grades an attempt, records the result and discards the attempt.
// A second Submit for the same attempt returns domain.ErrAttemptNotFound.
func (s *QuizService) Submit(ctx context.Context, attemptID string) (domain.ResultRecord, error) {
	eng, attempt, err := s.load(ctx, attemptID)
	if err != nil {
		return domain.ResultRecord{}, err
	}

	record := eng.Submit(attempt.State)
	result := domain.AttemptResult{
		AttemptID:   attempt.ID,
		StartedAt:   attempt.StartedAt,
		SubmittedAt: s.now(),
		Result:      record,
	}

	if err := s.attempts.Delete(ctx, attemptID); err != nil {
		return domain.ResultRecord{}, fmt.Errorf("discard attempt: %w", err)
	}
	if s.results != nil {
		if err := s.results.SaveResult(ctx, result); err != nil {
			// The attempt is already gone; the caller still gets its grade.
			s.logger.ErrorContext(ctx, "save result failed", "attempt_id", attemptID, "error", err)
		}
	}

	s.logger.InfoContext(ctx, "attempt submitted",
		"attempt_id", attemptID,
		"quiz_id", record.QuizID,
		"score", record.Score,
		"passed", record.Passed,
		"unanswered", record.UnansweredCount,
	)
	return record, nil
}

// Abandon discards an attempt without grading it.
func (s *QuizService) Abandon(ctx context.Context, attemptID string) error {
	if _, err := s.attempts.Get(ctx, attemptID); err != nil {
		return err
	}
	if err := s.attempts.Delete(ctx, attemptID); err != nil {
		return fmt.Errorf("discard attempt: %w", err)
	}
	s.logger.InfoContext(ctx, "attempt abandoned", "attempt_id", attemptID)
	return nil
}

// History returns the most recent results for a quiz, newest first.
func (s *QuizService) History(ctx context.Context, quizID string, limit int) ([]domain.AttemptResult, error) {
	if s.results == nil {
		return []domain.AttemptResult{}, nil
	}
	return s.results.ListResults(ctx, quizID, limit)
}

type transition func(eng *engine.Engine, state domain.SessionState) (domain.SessionState, error)

func (s *QuizService) apply(ctx context.Context, attemptID string, fn transition) (domain.AttemptView, error) {
	eng, attempt, err := s.load(ctx, attemptID)
	if err != nil {
		return domain.AttemptView{}, err
	}
	next, err := fn(eng, attempt.State)
	if err != nil {
		return domain.AttemptView{}, err
	}
	attempt.State = next
	attempt.UpdatedAt = s.now()
	if err := s.attempts.Save(ctx, attempt); err != nil {
		return domain.AttemptView{}, fmt.Errorf("save attempt: %w", err)
	}
	s.logger.DebugContext(ctx, "attempt updated", "attempt_id", attemptID, "index", next.CurrentIndex, "answered", len(next.Answers))
	return view(eng, attempt), nil
}

func (s *QuizService) load(ctx context.Context, attemptID string) (*engine.Engine, domain.Attempt, error) {
	attempt, err := s.attempts.Get(ctx, attemptID)
	if err != nil {
		return nil, domain.Attempt{}, err
	}
	quiz, err := s.quizzes.GetQuiz(ctx, attempt.State.QuizID)
	if err != nil {
		return nil, domain.Attempt{}, err
	}
	eng, err := engine.New(quiz)
	if err != nil {
		return nil, domain.Attempt{}, err
	}
	state, err := eng.Restore(attempt.State)
	if err != nil {
		return nil, domain.Attempt{}, err
	}
	attempt.State = state
	return eng, attempt, nil
}

func view(eng *engine.Engine, attempt domain.Attempt) domain.AttemptView {
	current := eng.Current(attempt.State)
	v := domain.AttemptView{
		AttemptID: attempt.ID,
		QuizID:    attempt.State.QuizID,
		Current:   current,
		Progress:  eng.Progress(attempt.State),
		Navigator: eng.Navigator(attempt.State),
		Flagged:   attempt.State.Flagged[current.ID],
	}
	if answer, ok := attempt.State.Answers[current.ID]; ok {
		v.Answer = &answer
	}
	return v
}
