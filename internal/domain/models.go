package domain

import "time"

// Difficulty is an informational label attached to quizzes and questions.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Mode records how a quiz was produced.
type Mode string

const (
	ModeAI         Mode = "ai"
	ModePastPapers Mode = "pastpapers"
)

// Question models an MCQ question with exactly one correct option.
type Question struct {
	ID                 string     `json:"id" yaml:"id" validate:"required"`
	Prompt             string     `json:"question" yaml:"question"`
	Options            []string   `json:"options" yaml:"options" validate:"min=2"`
	CorrectOptionIndex int        `json:"correctAnswer" yaml:"correctAnswer" validate:"gte=0"`
	Explanation        string     `json:"explanation,omitempty" yaml:"explanation,omitempty"`
	Topic              string     `json:"topic,omitempty" yaml:"topic,omitempty"`
	Difficulty         Difficulty `json:"difficulty,omitempty" yaml:"difficulty,omitempty" validate:"omitempty,difficulty"`
}

// QuizDefinition is an ordered collection of questions. Order defines numbering.
type QuizDefinition struct {
	ID         string     `json:"id" yaml:"id" validate:"required"`
	Questions  []Question `json:"questions" yaml:"questions" validate:"min=1,dive"`
	Difficulty Difficulty `json:"difficulty,omitempty" yaml:"difficulty,omitempty" validate:"omitempty,difficulty"`
	Mode       Mode       `json:"mode,omitempty" yaml:"mode,omitempty" validate:"omitempty,mode"`
}

// QuestionView is a question as shown during an attempt; it never carries the answer.
type QuestionView struct {
	ID         string     `json:"id"`
	Number     int        `json:"number"`
	Prompt     string     `json:"question"`
	Options    []string   `json:"options"`
	Topic      string     `json:"topic,omitempty"`
	Difficulty Difficulty `json:"difficulty,omitempty"`
}

// SessionState is the mutable part of one attempt. Unanswered questions are
// absent from Answers.
type SessionState struct {
	QuizID       string          `json:"quizId"`
	CurrentIndex int             `json:"currentIndex"`
	Answers      map[string]int  `json:"answers"`
	Flagged      map[string]bool `json:"flagged"`
}

// Progress summarizes how much of an attempt has been answered.
type Progress struct {
	AnsweredCount  int `json:"answeredCount"`
	TotalQuestions int `json:"totalQuestions"`
	Percent        int `json:"percent"`
}

// NavigatorEntry is one cell of the question navigator.
type NavigatorEntry struct {
	Number     int    `json:"number"`
	QuestionID string `json:"questionId"`
	Answered   bool   `json:"answered"`
	Flagged    bool   `json:"flagged"`
	Current    bool   `json:"current"`
}

// SubmitReview is what a caller shows before confirming a submission.
type SubmitReview struct {
	AnsweredCount  int      `json:"answeredCount"`
	TotalQuestions int      `json:"totalQuestions"`
	UnansweredIDs  []string `json:"unansweredIds"`
	FlaggedIDs     []string `json:"flaggedIds"`
}

// Outcome classifies a graded question.
type Outcome string

const (
	OutcomeCorrect    Outcome = "correct"
	OutcomeIncorrect  Outcome = "incorrect"
	OutcomeUnanswered Outcome = "unanswered"
)

// Band is the coarse grade shown next to a score.
type Band string

const (
	BandExcellent Band = "excellent"
	BandPass      Band = "pass"
	BandFail      Band = "fail"
)

// QuestionResult is the graded view of a single question.
type QuestionResult struct {
	QuestionID    string   `json:"questionId"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	UserAnswer    *int     `json:"userAnswer,omitempty"`
	CorrectAnswer int      `json:"correctAnswer"`
	IsCorrect     bool     `json:"isCorrect"`
	Explanation   string   `json:"explanation,omitempty"`
	Topic         string   `json:"topic,omitempty"`
}

// Outcome reports whether the question was answered correctly, incorrectly or not at all.
func (r QuestionResult) Outcome() Outcome {
	switch {
	case r.UserAnswer == nil:
		return OutcomeUnanswered
	case r.IsCorrect:
		return OutcomeCorrect
	default:
		return OutcomeIncorrect
	}
}

// ResultRecord is produced once per submitted attempt and never patched.
type ResultRecord struct {
	QuizID          string           `json:"quizId"`
	TotalQuestions  int              `json:"totalQuestions"`
	CorrectCount    int              `json:"correctCount"`
	IncorrectCount  int              `json:"incorrectCount"`
	UnansweredCount int              `json:"unansweredCount"`
	Score           int              `json:"score"`
	Passed          bool             `json:"passed"`
	Difficulty      Difficulty       `json:"difficulty,omitempty"`
	Mode            Mode             `json:"mode,omitempty"`
	PerQuestion     []QuestionResult `json:"questions"`
}

// Filter returns the per-question results with the given outcome, in quiz order.
func (r ResultRecord) Filter(outcome Outcome) []QuestionResult {
	out := make([]QuestionResult, 0, len(r.PerQuestion))
	for _, q := range r.PerQuestion {
		if q.Outcome() == outcome {
			out = append(out, q)
		}
	}
	return out
}

// Band maps the score onto excellent (>=80), pass (>=60) or fail.
func (r ResultRecord) Band() Band {
	switch {
	case r.Score >= 80:
		return BandExcellent
	case r.Score >= 60:
		return BandPass
	default:
		return BandFail
	}
}

// TopicScore aggregates results for one topic.
type TopicScore struct {
	Topic   string `json:"topic"`
	Correct int    `json:"correct"`
	Total   int    `json:"total"`
}

// TopicBreakdown groups results by topic in first-seen order. Questions
// without a topic are skipped.
func (r ResultRecord) TopicBreakdown() []TopicScore {
	var out []TopicScore
	pos := make(map[string]int)
	for _, q := range r.PerQuestion {
		if q.Topic == "" {
			continue
		}
		i, ok := pos[q.Topic]
		if !ok {
			i = len(out)
			pos[q.Topic] = i
			out = append(out, TopicScore{Topic: q.Topic})
		}
		out[i].Total++
		if q.IsCorrect {
			out[i].Correct++
		}
	}
	return out
}

// Attempt is a stored, in-progress session.
type Attempt struct {
	ID        string       `json:"id"`
	State     SessionState `json:"state"`
	StartedAt time.Time    `json:"startedAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// AttemptView is what clients see after every transition.
type AttemptView struct {
	AttemptID string           `json:"attemptId"`
	QuizID    string           `json:"quizId"`
	Current   QuestionView     `json:"current"`
	Progress  Progress         `json:"progress"`
	Navigator []NavigatorEntry `json:"navigator"`
	Answer    *int             `json:"answer,omitempty"`
	Flagged   bool             `json:"flagged"`
}

// AttemptResult is a graded attempt as kept in history.
type AttemptResult struct {
	AttemptID   string       `json:"attemptId"`
	StartedAt   time.Time    `json:"startedAt"`
	SubmittedAt time.Time    `json:"submittedAt"`
	Result      ResultRecord `json:"result"`
}
