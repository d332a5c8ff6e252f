package memory

import (
	"context"
	"sync"

	"quiz-session-engine/internal/domain"
)

// AttemptStore is an in-memory implementation of app.AttemptRepository.
// Attempts are copied on the way in and out so callers never share maps.
type AttemptStore struct {
	mu       sync.RWMutex
	attempts map[string]domain.Attempt
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{
		attempts: make(map[string]domain.Attempt),
	}
}

func (s *AttemptStore) Save(_ context.Context, attempt domain.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[attempt.ID] = copyAttempt(attempt)
	return nil
}

func (s *AttemptStore) Get(_ context.Context, attemptID string) (domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempt, ok := s.attempts[attemptID]
	if !ok {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	return copyAttempt(attempt), nil
}

func (s *AttemptStore) Delete(_ context.Context, attemptID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, attemptID)
	return nil
}

// Len reports how many attempts are in progress.
func (s *AttemptStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.attempts)
}

func copyAttempt(a domain.Attempt) domain.Attempt {
	answers := make(map[string]int, len(a.State.Answers))
	for id, option := range a.State.Answers {
		answers[id] = option
	}
	flagged := make(map[string]bool, len(a.State.Flagged))
	for id, f := range a.State.Flagged {
		flagged[id] = f
	}
	a.State.Answers = answers
	a.State.Flagged = flagged
	return a
}
