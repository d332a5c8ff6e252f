// Package engine runs a single quiz attempt. Every operation is a pure
// transition from one domain.SessionState to the next: states passed in are
// never modified, and the engine performs no I/O.
package engine

import (
	"fmt"

	"quiz-session-engine/internal/domain"
)

// PassingScore is the minimum score that counts as passed.
const PassingScore = 60

// Engine holds a validated quiz definition. It is immutable and safe to share.
type Engine struct {
	quiz  domain.QuizDefinition
	index map[string]int
}

// Start validates def and returns the engine together with a fresh session.
func Start(def domain.QuizDefinition) (*Engine, domain.SessionState, error) {
	eng, err := New(def)
	if err != nil {
		return nil, domain.SessionState{}, err
	}
	return eng, domain.SessionState{
		QuizID:  eng.quiz.ID,
		Answers: make(map[string]int),
		Flagged: make(map[string]bool),
	}, nil
}

// New validates def without creating a session. Use it with Restore to
// continue a stored attempt.
func New(def domain.QuizDefinition) (*Engine, error) {
	if err := Validate(def); err != nil {
		return nil, err
	}
	quiz := cloneDefinition(def)
	index := make(map[string]int, len(quiz.Questions))
	for i, q := range quiz.Questions {
		index[q.ID] = i
	}
	return &Engine{quiz: quiz, index: index}, nil
}

// Quiz returns a copy of the definition the engine grades against.
func (e *Engine) Quiz() domain.QuizDefinition {
	return cloneDefinition(e.quiz)
}

// Len is the number of questions.
func (e *Engine) Len() int {
	return len(e.quiz.Questions)
}

// Restore checks a state loaded from storage against the quiz and returns a
// private copy of it.
func (e *Engine) Restore(state domain.SessionState) (domain.SessionState, error) {
	if state.QuizID != e.quiz.ID {
		return domain.SessionState{}, fmt.Errorf("%w: state belongs to quiz %q, not %q", domain.ErrInvalidSessionState, state.QuizID, e.quiz.ID)
	}
	if state.CurrentIndex < 0 || state.CurrentIndex >= e.Len() {
		return domain.SessionState{}, fmt.Errorf("%w: current index %d", domain.ErrInvalidSessionState, state.CurrentIndex)
	}
	for id, option := range state.Answers {
		i, ok := e.index[id]
		if !ok {
			return domain.SessionState{}, fmt.Errorf("%w: answer for unknown question %q", domain.ErrInvalidSessionState, id)
		}
		if option < 0 || option >= len(e.quiz.Questions[i].Options) {
			return domain.SessionState{}, fmt.Errorf("%w: answer %d for question %q", domain.ErrInvalidSessionState, option, id)
		}
	}
	for id := range state.Flagged {
		if _, ok := e.index[id]; !ok {
			return domain.SessionState{}, fmt.Errorf("%w: flag for unknown question %q", domain.ErrInvalidSessionState, id)
		}
	}
	return cloneState(state), nil
}

// SelectAnswer records optionIndex as the answer to questionID, replacing any
// earlier choice.
func (e *Engine) SelectAnswer(state domain.SessionState, questionID string, optionIndex int) (domain.SessionState, error) {
	i, ok := e.index[questionID]
	if !ok {
		return state, fmt.Errorf("%w: %q", domain.ErrUnknownQuestion, questionID)
	}
	if n := len(e.quiz.Questions[i].Options); optionIndex < 0 || optionIndex >= n {
		return state, fmt.Errorf("%w: question %q has %d options, got %d", domain.ErrOptionOutOfRange, questionID, n, optionIndex)
	}
	next := cloneState(state)
	next.Answers[questionID] = optionIndex
	return next, nil
}

// GoTo moves to index, saturating at the first and last question.
func (e *Engine) GoTo(state domain.SessionState, index int) domain.SessionState {
	next := cloneState(state)
	switch {
	case index < 0:
		next.CurrentIndex = 0
	case index >= e.Len():
		next.CurrentIndex = e.Len() - 1
	default:
		next.CurrentIndex = index
	}
	return next
}

// Next moves one question forward; it stays put on the last question.
func (e *Engine) Next(state domain.SessionState) domain.SessionState {
	return e.GoTo(state, state.CurrentIndex+1)
}

// Previous moves one question back; it stays put on the first question.
func (e *Engine) Previous(state domain.SessionState) domain.SessionState {
	return e.GoTo(state, state.CurrentIndex-1)
}

// ToggleFlag flags questionID for review, or clears the flag if already set.
func (e *Engine) ToggleFlag(state domain.SessionState, questionID string) (domain.SessionState, error) {
	if _, ok := e.index[questionID]; !ok {
		return state, fmt.Errorf("%w: %q", domain.ErrUnknownQuestion, questionID)
	}
	next := cloneState(state)
	if next.Flagged[questionID] {
		delete(next.Flagged, questionID)
	} else {
		next.Flagged[questionID] = true
	}
	return next, nil
}

// Progress counts answered questions.
func (e *Engine) Progress(state domain.SessionState) domain.Progress {
	answered := 0
	for _, q := range e.quiz.Questions {
		if _, ok := state.Answers[q.ID]; ok {
			answered++
		}
	}
	return domain.Progress{
		AnsweredCount:  answered,
		TotalQuestions: e.Len(),
		Percent:        percent(answered, e.Len()),
	}
}

// Current returns the question at the session's current index.
func (e *Engine) Current(state domain.SessionState) domain.QuestionView {
	i := state.CurrentIndex
	if i < 0 || i >= e.Len() {
		i = 0
	}
	q := e.quiz.Questions[i]
	return domain.QuestionView{
		ID:         q.ID,
		Number:     i + 1,
		Prompt:     q.Prompt,
		Options:    append([]string(nil), q.Options...),
		Topic:      q.Topic,
		Difficulty: q.Difficulty,
	}
}

// Navigator describes every question's answered/flagged/current status.
func (e *Engine) Navigator(state domain.SessionState) []domain.NavigatorEntry {
	entries := make([]domain.NavigatorEntry, 0, e.Len())
	for i, q := range e.quiz.Questions {
		_, answered := state.Answers[q.ID]
		entries = append(entries, domain.NavigatorEntry{
			Number:     i + 1,
			QuestionID: q.ID,
			Answered:   answered,
			Flagged:    state.Flagged[q.ID],
			Current:    i == state.CurrentIndex,
		})
	}
	return entries
}

// Review lists unanswered and flagged questions in quiz order. It does not
// gate Submit.
func (e *Engine) Review(state domain.SessionState) domain.SubmitReview {
	review := domain.SubmitReview{
		TotalQuestions: e.Len(),
		UnansweredIDs:  []string{},
		FlaggedIDs:     []string{},
	}
	for _, q := range e.quiz.Questions {
		if _, ok := state.Answers[q.ID]; ok {
			review.AnsweredCount++
		} else {
			review.UnansweredIDs = append(review.UnansweredIDs, q.ID)
		}
		if state.Flagged[q.ID] {
			review.FlaggedIDs = append(review.FlaggedIDs, q.ID)
		}
	}
	return review
}

// Submit grades the session. It accepts any completion level and leaves
// state untouched; callers discard the session afterwards.
func (e *Engine) Submit(state domain.SessionState) domain.ResultRecord {
	record := domain.ResultRecord{
		QuizID:         e.quiz.ID,
		TotalQuestions: e.Len(),
		Difficulty:     e.quiz.Difficulty,
		Mode:           e.quiz.Mode,
		PerQuestion:    make([]domain.QuestionResult, 0, e.Len()),
	}

	for _, q := range e.quiz.Questions {
		result := domain.QuestionResult{
			QuestionID:    q.ID,
			Question:      q.Prompt,
			Options:       append([]string(nil), q.Options...),
			CorrectAnswer: q.CorrectOptionIndex,
			Explanation:   q.Explanation,
			Topic:         q.Topic,
		}
		answer, ok := state.Answers[q.ID]
		switch {
		case !ok:
			record.UnansweredCount++
		case answer == q.CorrectOptionIndex:
			result.UserAnswer = &answer
			result.IsCorrect = true
			record.CorrectCount++
		default:
			result.UserAnswer = &answer
			record.IncorrectCount++
		}
		record.PerQuestion = append(record.PerQuestion, result)
	}

	record.Score = percent(record.CorrectCount, record.TotalQuestions)
	record.Passed = record.Score >= PassingScore
	return record
}

// percent is round(part/total*100) with halves rounded up, in integer math.
func percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return (part*200 + total) / (2 * total)
}

func cloneState(s domain.SessionState) domain.SessionState {
	out := domain.SessionState{
		QuizID:       s.QuizID,
		CurrentIndex: s.CurrentIndex,
		Answers:      make(map[string]int, len(s.Answers)),
		Flagged:      make(map[string]bool, len(s.Flagged)),
	}
	for id, option := range s.Answers {
		out.Answers[id] = option
	}
	for id, flagged := range s.Flagged {
		if flagged {
			out.Flagged[id] = true
		}
	}
	return out
}

func cloneDefinition(def domain.QuizDefinition) domain.QuizDefinition {
	out := def
	out.Questions = make([]domain.Question, len(def.Questions))
	for i, q := range def.Questions {
		q.Options = append([]string(nil), q.Options...)
		out.Questions[i] = q
	}
	return out
}
