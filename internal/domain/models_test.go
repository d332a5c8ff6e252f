package domain

import (
	"errors"
	"testing"
)

func intPtr(v int) *int { return &v }

func sampleRecord() ResultRecord {
	return ResultRecord{
		QuizID:          "quiz-1",
		TotalQuestions:  4,
		CorrectCount:    2,
		IncorrectCount:  1,
		UnansweredCount: 1,
		Score:           50,
		PerQuestion: []QuestionResult{
			{QuestionID: "q1", UserAnswer: intPtr(0), IsCorrect: true, Topic: "Mechanics"},
			{QuestionID: "q2", UserAnswer: intPtr(1), Topic: "Optics"},
			{QuestionID: "q3", Topic: "Mechanics"},
			{QuestionID: "q4", UserAnswer: intPtr(2), IsCorrect: true},
		},
	}
}

func TestResultFilter(t *testing.T) {
	record := sampleRecord()

	cases := map[Outcome][]string{
		OutcomeCorrect:    {"q1", "q4"},
		OutcomeIncorrect:  {"q2"},
		OutcomeUnanswered: {"q3"},
	}
	for outcome, want := range cases {
		got := record.Filter(outcome)
		if len(got) != len(want) {
			t.Fatalf("%s: expected %d results, got %d", outcome, len(want), len(got))
		}
		for i := range want {
			if got[i].QuestionID != want[i] {
				t.Fatalf("%s: expected %s at %d, got %s", outcome, want[i], i, got[i].QuestionID)
			}
		}
	}
}

func TestResultBand(t *testing.T) {
	cases := []struct {
		score int
		want  Band
	}{
		{100, BandExcellent},
		{80, BandExcellent},
		{79, BandPass},
		{60, BandPass},
		{59, BandFail},
		{0, BandFail},
	}
	for _, c := range cases {
		if got := (ResultRecord{Score: c.score}).Band(); got != c.want {
			t.Fatalf("score %d: expected %s, got %s", c.score, c.want, got)
		}
	}
}

func TestTopicBreakdown(t *testing.T) {
	got := sampleRecord().TopicBreakdown()
	want := []TopicScore{
		{Topic: "Mechanics", Correct: 1, Total: 2},
		{Topic: "Optics", Correct: 0, Total: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d topics, got %+v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("topic %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	if !errors.Is(errs, ErrInvalidQuizDefinition) {
		t.Fatalf("expected ValidationErrors to match ErrInvalidQuizDefinition")
	}

	errs = append(errs, ValidationError{Field: "questions", Message: "must contain at least 1 items"})
	if got, want := errs.Error(), "invalid quiz definition: questions must contain at least 1 items"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	errs = append(errs, ValidationError{Field: "id", Message: "is required"})
	if got, want := errs.Error(), "invalid quiz definition: 2 field errors"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
