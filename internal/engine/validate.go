package engine

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"quiz-session-engine/internal/domain"

	"github.com/go-playground/validator/v10"
)

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("difficulty", validateDifficulty)
	_ = v.RegisterValidation("mode", validateMode)

	// Report fields by their JSON names so errors line up with quiz files.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validateDifficulty(fl validator.FieldLevel) bool {
	switch domain.Difficulty(fl.Field().String()) {
	case domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard:
		return true
	}
	return false
}

func validateMode(fl validator.FieldLevel) bool {
	switch domain.Mode(fl.Field().String()) {
	case domain.ModeAI, domain.ModePastPapers:
		return true
	}
	return false
}

// Validate checks that a quiz can be started. The returned error is a
// domain.ValidationErrors and matches domain.ErrInvalidQuizDefinition.
func Validate(def domain.QuizDefinition) error {
	var errs domain.ValidationErrors

	if err := structValidator.Struct(def); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("%w: %v", domain.ErrInvalidQuizDefinition, err)
		}
		for _, fe := range fieldErrs {
			errs = append(errs, domain.ValidationError{
				Field:   fieldPath(fe),
				Message: fieldMessage(fe),
				Rule:    fe.Tag(),
			})
		}
	}

	seen := make(map[string]int, len(def.Questions))
	for i, q := range def.Questions {
		if q.ID != "" {
			if first, dup := seen[q.ID]; dup {
				errs = append(errs, domain.ValidationError{
					Field:   fmt.Sprintf("questions[%d].id", i),
					Message: fmt.Sprintf("duplicates questions[%d].id %q", first, q.ID),
					Rule:    "unique",
				})
			} else {
				seen[q.ID] = i
			}
		}
		if len(q.Options) > 0 && q.CorrectOptionIndex >= len(q.Options) {
			errs = append(errs, domain.ValidationError{
				Field:   fmt.Sprintf("questions[%d].correctAnswer", i),
				Message: fmt.Sprintf("must be less than %d", len(q.Options)),
				Rule:    "lt",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// fieldPath drops the root struct name from the validator namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must contain at least %s items", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "difficulty":
		return "must be one of easy, medium, hard"
	case "mode":
		return "must be one of ai, pastpapers"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
