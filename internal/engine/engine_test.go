package engine

import (
	"errors"
	"fmt"
	"testing"

	"quiz-session-engine/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quizWith(correct ...int) domain.QuizDefinition {
	def := domain.QuizDefinition{
		ID:         "quiz-1",
		Difficulty: domain.DifficultyMedium,
		Mode:       domain.ModeAI,
	}
	for i, c := range correct {
		def.Questions = append(def.Questions, domain.Question{
			ID:                 fmt.Sprintf("q%d", i+1),
			Prompt:             fmt.Sprintf("Question %d", i+1),
			Options:            []string{"A", "B", "C", "D"},
			CorrectOptionIndex: c,
			Explanation:        "because",
			Topic:              "Mechanics",
		})
	}
	return def
}

func TestStartCreatesFreshSession(t *testing.T) {
	eng, state, err := Start(quizWith(0, 1, 2))
	require.NoError(t, err)

	assert.Equal(t, "quiz-1", state.QuizID)
	assert.Equal(t, 0, state.CurrentIndex)
	assert.Empty(t, state.Answers)
	assert.Empty(t, state.Flagged)
	assert.Equal(t, domain.Progress{AnsweredCount: 0, TotalQuestions: 3, Percent: 0}, eng.Progress(state))
}

func TestSelectAnswerLastWriteWins(t *testing.T) {
	eng, state, err := Start(quizWith(0, 1))
	require.NoError(t, err)

	for _, option := range []int{2, 0, 3} {
		state, err = eng.SelectAnswer(state, "q1", option)
		require.NoError(t, err)
	}
	state, err = eng.SelectAnswer(state, "q2", 1)
	require.NoError(t, err)
	state, err = eng.SelectAnswer(state, "q2", 1)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"q1": 3, "q2": 1}, state.Answers)
	assert.Equal(t, 0, state.CurrentIndex)
	assert.Empty(t, state.Flagged)
}

func TestSelectAnswerDoesNotMutateInput(t *testing.T) {
	eng, before, err := Start(quizWith(0, 1))
	require.NoError(t, err)

	after, err := eng.SelectAnswer(before, "q1", 1)
	require.NoError(t, err)

	assert.Empty(t, before.Answers)
	assert.Equal(t, 1, after.Answers["q1"])
}

func TestSelectAnswerRejectsBadInput(t *testing.T) {
	eng, state, err := Start(quizWith(0, 1))
	require.NoError(t, err)

	_, err = eng.SelectAnswer(state, "missing", 0)
	assert.ErrorIs(t, err, domain.ErrUnknownQuestion)

	_, err = eng.SelectAnswer(state, "q1", 4)
	assert.ErrorIs(t, err, domain.ErrOptionOutOfRange)

	_, err = eng.SelectAnswer(state, "q1", -1)
	assert.ErrorIs(t, err, domain.ErrOptionOutOfRange)
}

func TestGoToSaturatesAtBoundaries(t *testing.T) {
	eng, state, err := Start(quizWith(0, 1, 2))
	require.NoError(t, err)

	state = eng.GoTo(state, -1)
	assert.Equal(t, 0, state.CurrentIndex)

	state = eng.GoTo(state, 99)
	assert.Equal(t, 2, state.CurrentIndex)

	state = eng.GoTo(state, 99)
	assert.Equal(t, 2, state.CurrentIndex)

	state = eng.GoTo(state, 1)
	assert.Equal(t, 1, state.CurrentIndex)

	for _, target := range []int{-100, -1, 0, 1, 2, 3, 100} {
		got := eng.GoTo(state, target).CurrentIndex
		assert.GreaterOrEqual(t, got, 0)
		assert.Less(t, got, eng.Len())
	}
}

func TestNextAndPrevious(t *testing.T) {
	eng, state, err := Start(quizWith(0, 1))
	require.NoError(t, err)

	state = eng.Previous(state)
	assert.Equal(t, 0, state.CurrentIndex)
	state = eng.Next(state)
	assert.Equal(t, 1, state.CurrentIndex)
	state = eng.Next(state)
	assert.Equal(t, 1, state.CurrentIndex)
	state = eng.Previous(state)
	assert.Equal(t, 0, state.CurrentIndex)
}

func TestToggleFlagIsInvolution(t *testing.T) {
	eng, state, err := Start(quizWith(0, 1))
	require.NoError(t, err)

	flagged, err := eng.ToggleFlag(state, "q2")
	require.NoError(t, err)
	assert.True(t, flagged.Flagged["q2"])
	assert.Empty(t, flagged.Answers)

	cleared, err := eng.ToggleFlag(flagged, "q2")
	require.NoError(t, err)
	assert.Equal(t, state.Flagged, cleared.Flagged)

	_, err = eng.ToggleFlag(state, "nope")
	assert.ErrorIs(t, err, domain.ErrUnknownQuestion)
}

func TestProgressRoundsHalfUp(t *testing.T) {
	eng, state, err := Start(quizWith(0, 0, 0, 0, 0, 0, 0, 0))
	require.NoError(t, err)

	state, err = eng.SelectAnswer(state, "q1", 0)
	require.NoError(t, err)
	assert.Equal(t, 13, eng.Progress(state).Percent) // 12.5

	state, err = eng.SelectAnswer(state, "q1", 2)
	require.NoError(t, err)
	assert.Equal(t, 1, eng.Progress(state).AnsweredCount)
}

func TestSubmitScenarios(t *testing.T) {
	tests := []struct {
		name       string
		def        domain.QuizDefinition
		answers    map[string]int
		correct    int
		incorrect  int
		unanswered int
		score      int
		passed     bool
	}{
		{
			name:       "one correct one unanswered",
			def:        quizWith(0, 1),
			answers:    map[string]int{"q1": 0},
			correct:    1,
			unanswered: 1,
			score:      50,
		},
		{
			name:      "one wrong one correct",
			def:       quizWith(0, 1),
			answers:   map[string]int{"q1": 1, "q2": 1},
			correct:   1,
			incorrect: 1,
			score:     50,
		},
		{
			name:    "all correct",
			def:     quizWith(0, 1, 2, 3, 0),
			answers: map[string]int{"q1": 0, "q2": 1, "q3": 2, "q4": 3, "q5": 0},
			correct: 5,
			score:   100,
			passed:  true,
		},
		{
			name:       "nothing answered",
			def:        quizWith(0, 1, 2),
			unanswered: 3,
		},
		{
			name:      "exactly at threshold",
			def:       quizWith(0, 0, 0, 0, 0),
			answers:   map[string]int{"q1": 0, "q2": 0, "q3": 0, "q4": 1, "q5": 1},
			correct:   3,
			incorrect: 2,
			score:     60,
			passed:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, state, err := Start(tt.def)
			require.NoError(t, err)
			for id, option := range tt.answers {
				state, err = eng.SelectAnswer(state, id, option)
				require.NoError(t, err)
			}

			record := eng.Submit(state)
			assert.Equal(t, tt.correct, record.CorrectCount)
			assert.Equal(t, tt.incorrect, record.IncorrectCount)
			assert.Equal(t, tt.unanswered, record.UnansweredCount)
			assert.Equal(t, tt.score, record.Score)
			assert.Equal(t, tt.passed, record.Passed)
			assert.Equal(t, record.TotalQuestions, record.CorrectCount+record.IncorrectCount+record.UnansweredCount)
			assert.Len(t, record.PerQuestion, len(tt.def.Questions))
		})
	}
}

func TestSubmitPerQuestionDetail(t *testing.T) {
	eng, state, err := Start(quizWith(0, 1, 2))
	require.NoError(t, err)
	state, _ = eng.SelectAnswer(state, "q1", 0)
	state, _ = eng.SelectAnswer(state, "q2", 3)

	record := eng.Submit(state)
	require.Len(t, record.PerQuestion, 3)

	assert.Equal(t, "quiz-1", record.QuizID)
	assert.Equal(t, domain.DifficultyMedium, record.Difficulty)
	assert.Equal(t, domain.ModeAI, record.Mode)

	q1, q2, q3 := record.PerQuestion[0], record.PerQuestion[1], record.PerQuestion[2]
	assert.Equal(t, "q1", q1.QuestionID)
	require.NotNil(t, q1.UserAnswer)
	assert.Equal(t, 0, *q1.UserAnswer)
	assert.True(t, q1.IsCorrect)
	assert.Equal(t, domain.OutcomeCorrect, q1.Outcome())

	require.NotNil(t, q2.UserAnswer)
	assert.Equal(t, 3, *q2.UserAnswer)
	assert.Equal(t, 1, q2.CorrectAnswer)
	assert.Equal(t, domain.OutcomeIncorrect, q2.Outcome())

	assert.Nil(t, q3.UserAnswer)
	assert.False(t, q3.IsCorrect)
	assert.Equal(t, domain.OutcomeUnanswered, q3.Outcome())

	// Grading leaves the session as it was.
	assert.Len(t, state.Answers, 2)
}

func TestStartRejectsInvalidDefinitions(t *testing.T) {
	tests := []struct {
		name  string
		def   domain.QuizDefinition
		field string
	}{
		{
			name:  "no questions",
			def:   domain.QuizDefinition{ID: "empty"},
			field: "questions",
		},
		{
			name: "single option",
			def: domain.QuizDefinition{ID: "q", Questions: []domain.Question{
				{ID: "q1", Options: []string{"only"}},
			}},
			field: "questions[0].options",
		},
		{
			name: "correct index past options",
			def: domain.QuizDefinition{ID: "q", Questions: []domain.Question{
				{ID: "q1", Options: []string{"a", "b"}, CorrectOptionIndex: 2},
			}},
			field: "questions[0].correctAnswer",
		},
		{
			name: "negative correct index",
			def: domain.QuizDefinition{ID: "q", Questions: []domain.Question{
				{ID: "q1", Options: []string{"a", "b"}, CorrectOptionIndex: -1},
			}},
			field: "questions[0].correctAnswer",
		},
		{
			name: "duplicate ids",
			def: domain.QuizDefinition{ID: "q", Questions: []domain.Question{
				{ID: "q1", Options: []string{"a", "b"}},
				{ID: "q1", Options: []string{"a", "b"}},
			}},
			field: "questions[1].id",
		},
		{
			name: "missing question id",
			def: domain.QuizDefinition{ID: "q", Questions: []domain.Question{
				{Options: []string{"a", "b"}},
			}},
			field: "questions[0].id",
		},
		{
			name: "unknown difficulty",
			def: domain.QuizDefinition{ID: "q", Difficulty: "brutal", Questions: []domain.Question{
				{ID: "q1", Options: []string{"a", "b"}},
			}},
			field: "difficulty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Start(tt.def)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidQuizDefinition)

			var verrs domain.ValidationErrors
			require.True(t, errors.As(err, &verrs))
			fields := make([]string, 0, len(verrs))
			for _, ve := range verrs {
				fields = append(fields, ve.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestStartCopiesDefinition(t *testing.T) {
	def := quizWith(0, 1)
	eng, _, err := Start(def)
	require.NoError(t, err)

	def.Questions[0].Options[0] = "changed"
	def.Questions[0].CorrectOptionIndex = 3

	quiz := eng.Quiz()
	assert.Equal(t, "A", quiz.Questions[0].Options[0])
	assert.Equal(t, 0, quiz.Questions[0].CorrectOptionIndex)
}

func TestCurrentHidesAnswer(t *testing.T) {
	eng, state, err := Start(quizWith(2, 1))
	require.NoError(t, err)

	view := eng.Current(eng.Next(state))
	assert.Equal(t, "q2", view.ID)
	assert.Equal(t, 2, view.Number)
	assert.Equal(t, []string{"A", "B", "C", "D"}, view.Options)
}

func TestNavigatorAndReview(t *testing.T) {
	eng, state, err := Start(quizWith(0, 1, 2))
	require.NoError(t, err)
	state, _ = eng.SelectAnswer(state, "q1", 0)
	state, _ = eng.ToggleFlag(state, "q3")
	state = eng.GoTo(state, 1)

	nav := eng.Navigator(state)
	require.Len(t, nav, 3)
	assert.Equal(t, domain.NavigatorEntry{Number: 1, QuestionID: "q1", Answered: true}, nav[0])
	assert.Equal(t, domain.NavigatorEntry{Number: 2, QuestionID: "q2", Current: true}, nav[1])
	assert.Equal(t, domain.NavigatorEntry{Number: 3, QuestionID: "q3", Flagged: true}, nav[2])

	review := eng.Review(state)
	assert.Equal(t, 1, review.AnsweredCount)
	assert.Equal(t, 3, review.TotalQuestions)
	assert.Equal(t, []string{"q2", "q3"}, review.UnansweredIDs)
	assert.Equal(t, []string{"q3"}, review.FlaggedIDs)
}

func TestRestore(t *testing.T) {
	eng, state, err := Start(quizWith(0, 1))
	require.NoError(t, err)
	state, _ = eng.SelectAnswer(state, "q2", 1)

	restored, err := eng.Restore(state)
	require.NoError(t, err)
	assert.Equal(t, state, restored)

	bad := []domain.SessionState{
		{QuizID: "other"},
		{QuizID: "quiz-1", CurrentIndex: 2},
		{QuizID: "quiz-1", Answers: map[string]int{"q9": 0}},
		{QuizID: "quiz-1", Answers: map[string]int{"q1": 7}},
		{QuizID: "quiz-1", Flagged: map[string]bool{"q9": true}},
	}
	for _, s := range bad {
		_, err := eng.Restore(s)
		assert.ErrorIs(t, err, domain.ErrInvalidSessionState, "state %+v", s)
	}
}
