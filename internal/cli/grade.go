package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"quiz-session-engine/internal/domain"
	"quiz-session-engine/internal/engine"
	"quiz-session-engine/internal/infra/memory"

	"github.com/spf13/cobra"
)

// NewValidateCmd checks quiz files without starting anything.
func NewValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <quiz-file>...",
		Short: "Check quiz definition files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateFiles(cmd.OutOrStdout(), args)
		},
	}
}

func validateFiles(w io.Writer, paths []string) error {
	failed := 0
	for _, path := range paths {
		quiz, err := memory.ReadQuizFile(path)
		if err == nil {
			err = engine.Validate(quiz)
		}
		if err == nil {
			fmt.Fprintf(w, "ok      %s (%d questions)\n", path, len(quiz.Questions))
			continue
		}
		failed++
		var verrs domain.ValidationErrors
		if errors.As(err, &verrs) {
			fmt.Fprintf(w, "invalid %s\n", path)
			for _, ve := range verrs {
				fmt.Fprintf(w, "        %s: %s\n", ve.Field, ve.Message)
			}
			continue
		}
		fmt.Fprintf(w, "error   %s: %v\n", path, err)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d quiz files failed validation", failed, len(paths))
	}
	return nil
}

// NewGradeCmd grades a set of answers against a quiz file offline.
func NewGradeCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "grade <quiz-file> <answers-file>",
		Short: "Grade answers ({\"questionId\": optionIndex}) against a quiz file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := gradeFiles(args[0], args[1])
			if err != nil {
				return err
			}
			if format == "text" {
				return writeSummary(cmd.OutOrStdout(), record)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(record)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format (json, text)")
	return cmd
}

func gradeFiles(quizPath, answersPath string) (domain.ResultRecord, error) {
	quiz, err := memory.ReadQuizFile(quizPath)
	if err != nil {
		return domain.ResultRecord{}, err
	}
	data, err := os.ReadFile(answersPath)
	if err != nil {
		return domain.ResultRecord{}, fmt.Errorf("read answers: %w", err)
	}
	var answers map[string]int
	if err := json.Unmarshal(data, &answers); err != nil {
		return domain.ResultRecord{}, fmt.Errorf("parse answers: %w", err)
	}
	return grade(quiz, answers)
}

func grade(quiz domain.QuizDefinition, answers map[string]int) (domain.ResultRecord, error) {
	eng, state, err := engine.Start(quiz)
	if err != nil {
		return domain.ResultRecord{}, err
	}
	ids := make([]string, 0, len(answers))
	for id := range answers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		state, err = eng.SelectAnswer(state, id, answers[id])
		if err != nil {
			return domain.ResultRecord{}, err
		}
	}
	return eng.Submit(state), nil
}

func writeSummary(w io.Writer, r domain.ResultRecord) error {
	status := "failed"
	if r.Passed {
		status = "passed"
	}
	fmt.Fprintf(w, "quiz %s: %d%% (%s, %s)\n", r.QuizID, r.Score, status, r.Band())
	fmt.Fprintf(w, "correct %d, incorrect %d, unanswered %d of %d\n",
		r.CorrectCount, r.IncorrectCount, r.UnansweredCount, r.TotalQuestions)
	for _, topic := range r.TopicBreakdown() {
		fmt.Fprintf(w, "  %s: %d/%d\n", topic.Topic, topic.Correct, topic.Total)
	}
	for i, q := range r.Filter(domain.OutcomeIncorrect) {
		if i == 0 {
			fmt.Fprintln(w, "review:")
		}
		fmt.Fprintf(w, "  %s: answered %d, correct %d\n", q.QuestionID, *q.UserAnswer, q.CorrectAnswer)
	}
	return nil
}
