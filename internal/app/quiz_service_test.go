package app_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"quiz-session-engine/internal/app"
	"quiz-session-engine/internal/domain"
	"quiz-session-engine/internal/infra/memory"
)

func TestStartAndSubmit(t *testing.T) {
	ctx := context.Background()
	service, attempts, _ := newTestService()

	view, err := service.StartAttempt(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if view.AttemptID != "attempt-1" || view.Current.ID != "q1" || view.Progress.TotalQuestions != 2 {
		t.Fatalf("unexpected start view: %+v", view)
	}

	view, err = service.SelectAnswer(ctx, view.AttemptID, "q1", 0)
	if err != nil {
		t.Fatalf("answer failed: %v", err)
	}
	if view.Answer == nil || *view.Answer != 0 || view.Progress.Percent != 50 {
		t.Fatalf("unexpected view after answer: %+v", view)
	}

	record, err := service.Submit(ctx, view.AttemptID)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if record.CorrectCount != 1 || record.IncorrectCount != 0 || record.UnansweredCount != 1 {
		t.Fatalf("unexpected counts: %+v", record)
	}
	if record.Score != 50 || record.Passed {
		t.Fatalf("expected score 50 and not passed, got %d/%v", record.Score, record.Passed)
	}
	if attempts.Len() != 0 {
		t.Fatalf("expected attempt discarded after submit")
	}

	if _, err := service.Submit(ctx, view.AttemptID); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected second submit to fail with ErrAttemptNotFound, got %v", err)
	}
	if _, err := service.SelectAnswer(ctx, view.AttemptID, "q2", 1); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected mutation after submit to fail, got %v", err)
	}
}

func TestNavigationAndFlags(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService()

	view, err := service.StartAttempt(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	id := view.AttemptID

	view, _ = service.Next(ctx, id)
	if view.Current.ID != "q2" {
		t.Fatalf("expected q2 after next, got %s", view.Current.ID)
	}
	view, _ = service.Next(ctx, id)
	if view.Current.ID != "q2" {
		t.Fatalf("expected next to stop at the last question, got %s", view.Current.ID)
	}
	view, _ = service.GoTo(ctx, id, -5)
	if view.Current.ID != "q1" {
		t.Fatalf("expected goto -5 to land on q1, got %s", view.Current.ID)
	}
	view, _ = service.Previous(ctx, id)
	if view.Current.Number != 1 {
		t.Fatalf("expected previous to stop at the first question, got %d", view.Current.Number)
	}

	view, err = service.ToggleFlag(ctx, id, "q1")
	if err != nil {
		t.Fatalf("flag failed: %v", err)
	}
	if !view.Flagged || !view.Navigator[0].Flagged {
		t.Fatalf("expected q1 flagged: %+v", view)
	}

	review, err := service.Review(ctx, id)
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if review.AnsweredCount != 0 || len(review.UnansweredIDs) != 2 || len(review.FlaggedIDs) != 1 {
		t.Fatalf("unexpected review: %+v", review)
	}

	if _, err := service.ToggleFlag(ctx, id, "q9"); !errors.Is(err, domain.ErrUnknownQuestion) {
		t.Fatalf("expected ErrUnknownQuestion, got %v", err)
	}
	if _, err := service.SelectAnswer(ctx, id, "q1", 7); !errors.Is(err, domain.ErrOptionOutOfRange) {
		t.Fatalf("expected ErrOptionOutOfRange, got %v", err)
	}
}

func TestStartRejectsBadQuizzes(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService()

	if _, err := service.StartAttempt(ctx, "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
	if _, err := service.StartAttempt(ctx, "empty"); !errors.Is(err, domain.ErrInvalidQuizDefinition) {
		t.Fatalf("expected ErrInvalidQuizDefinition, got %v", err)
	}
}

func TestAbandonDiscardsWithoutResult(t *testing.T) {
	ctx := context.Background()
	service, attempts, _ := newTestService()

	view, _ := service.StartAttempt(ctx, "quiz-1")
	if err := service.Abandon(ctx, view.AttemptID); err != nil {
		t.Fatalf("abandon failed: %v", err)
	}
	if attempts.Len() != 0 {
		t.Fatalf("expected no attempts left")
	}
	if err := service.Abandon(ctx, view.AttemptID); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected ErrAttemptNotFound, got %v", err)
	}
	history, _ := service.History(ctx, "quiz-1", 10)
	if len(history) != 0 {
		t.Fatalf("expected empty history, got %+v", history)
	}
}

func TestHistoryRecordsSubmissions(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService()

	for i := 0; i < 2; i++ {
		view, _ := service.StartAttempt(ctx, "quiz-1")
		_, _ = service.SelectAnswer(ctx, view.AttemptID, "q1", 0)
		if i == 1 {
			_, _ = service.SelectAnswer(ctx, view.AttemptID, "q2", 1)
		}
		if _, err := service.Submit(ctx, view.AttemptID); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	history, err := service.History(ctx, "quiz-1", 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 results, got %d", len(history))
	}
	if history[0].AttemptID != "attempt-2" || history[0].Result.Score != 100 || !history[0].Result.Passed {
		t.Fatalf("expected newest perfect attempt first, got %+v", history[0])
	}
	if !history[0].SubmittedAt.Equal(testNow) {
		t.Fatalf("expected submitted at %v, got %v", testNow, history[0].SubmittedAt)
	}
}

var testNow = time.Date(2024, 11, 22, 9, 0, 0, 0, time.UTC)

func newTestService() (*app.QuizService, *memory.AttemptStore, *memory.ResultStore) {
	attempts := memory.NewAttemptStore()
	results := memory.NewResultStore(0)
	quizRepo := memory.NewQuizRepository(memory.NewStaticQuizLoader(map[string]domain.QuizDefinition{
		"quiz-1": {
			ID:         "quiz-1",
			Difficulty: domain.DifficultyEasy,
			Mode:       domain.ModeAI,
			Questions: []domain.Question{
				{ID: "q1", Prompt: "Select the first option", Options: []string{"Right", "Wrong"}, CorrectOptionIndex: 0},
				{ID: "q2", Prompt: "Select the second option", Options: []string{"Wrong", "Right"}, CorrectOptionIndex: 1},
			},
		},
		"empty": {ID: "empty"},
	}), 5*time.Minute)

	n := 0
	service := app.NewQuizService(attempts, quizRepo, results,
		app.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		app.WithClock(func() time.Time { return testNow }),
		app.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("attempt-%d", n)
		}),
	)
	return service, attempts, results
}
