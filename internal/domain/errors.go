package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuizDefinition is returned when a quiz cannot be started.
	ErrInvalidQuizDefinition = errors.New("invalid quiz definition")
	// ErrUnknownQuestion indicates a question ID that is not part of the quiz.
	ErrUnknownQuestion = errors.New("unknown question")
	// ErrOptionOutOfRange indicates an option index outside the question's options.
	ErrOptionOutOfRange = errors.New("option out of range")
	// ErrInvalidSessionState is returned when a stored state does not fit its quiz.
	ErrInvalidSessionState = errors.New("invalid session state")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrAttemptNotFound is returned for unknown, submitted or abandoned attempts.
	ErrAttemptNotFound = errors.New("attempt not found")
)

// ValidationError describes one failed rule of a quiz definition.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Rule    string `json:"rule,omitempty"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// ValidationErrors collects every failed rule. It matches ErrInvalidQuizDefinition.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ErrInvalidQuizDefinition.Error()
	}
	if len(ve) == 1 {
		return fmt.Sprintf("%s: %s %s", ErrInvalidQuizDefinition, ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("%s: %d field errors", ErrInvalidQuizDefinition, len(ve))
}

func (ve ValidationErrors) Is(target error) bool {
	return target == ErrInvalidQuizDefinition
}
