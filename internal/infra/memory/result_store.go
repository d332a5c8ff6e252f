package memory

import (
	"context"
	"sync"

	"quiz-session-engine/internal/domain"
)

// ResultStore keeps graded attempts per quiz, capped at maxPerQuiz.
type ResultStore struct {
	maxPerQuiz int

	mu      sync.RWMutex
	results map[string][]domain.AttemptResult
}

// NewResultStore keeps at most maxPerQuiz results per quiz; zero or less means unbounded.
func NewResultStore(maxPerQuiz int) *ResultStore {
	return &ResultStore{
		maxPerQuiz: maxPerQuiz,
		results:    make(map[string][]domain.AttemptResult),
	}
}

func (s *ResultStore) SaveResult(_ context.Context, result domain.AttemptResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	quizID := result.Result.QuizID
	list := append(s.results[quizID], result)
	if s.maxPerQuiz > 0 && len(list) > s.maxPerQuiz {
		list = append([]domain.AttemptResult(nil), list[len(list)-s.maxPerQuiz:]...)
	}
	s.results[quizID] = list
	return nil
}

// ListResults returns newest first. limit <= 0 returns everything kept.
func (s *ResultStore) ListResults(_ context.Context, quizID string, limit int) ([]domain.AttemptResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.results[quizID]
	n := len(list)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.AttemptResult, 0, n)
	for i := len(list) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, list[i])
	}
	return out, nil
}
