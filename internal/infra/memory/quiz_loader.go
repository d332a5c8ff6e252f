package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"quiz-session-engine/internal/domain"

	"gopkg.in/yaml.v3"
)

// StaticQuizLoader is a simple loader backed by an in-memory map (useful for tests/demos).
type StaticQuizLoader struct {
	quizzes map[string]domain.QuizDefinition
}

func NewStaticQuizLoader(quizzes map[string]domain.QuizDefinition) *StaticQuizLoader {
	return &StaticQuizLoader{quizzes: quizzes}
}

func (l *StaticQuizLoader) LoadQuiz(_ context.Context, quizID string) (domain.QuizDefinition, error) {
	if quiz, ok := l.quizzes[quizID]; ok {
		return quiz, nil
	}
	return domain.QuizDefinition{}, domain.ErrQuizNotFound
}

// FileQuizLoader reads <dir>/<quizID>.json, .yaml or .yml.
type FileQuizLoader struct {
	dir string
}

func NewFileQuizLoader(dir string) *FileQuizLoader {
	return &FileQuizLoader{dir: dir}
}

func (l *FileQuizLoader) LoadQuiz(_ context.Context, quizID string) (domain.QuizDefinition, error) {
	if quizID == "" || strings.ContainsAny(quizID, `/\`) || strings.Contains(quizID, "..") {
		return domain.QuizDefinition{}, domain.ErrQuizNotFound
	}
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		path := filepath.Join(l.dir, quizID+ext)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		quiz, err := ReadQuizFile(path)
		if err != nil {
			return domain.QuizDefinition{}, err
		}
		if quiz.ID == "" {
			quiz.ID = quizID
		}
		return quiz, nil
	}
	return domain.QuizDefinition{}, domain.ErrQuizNotFound
}

// ReadQuizFile decodes a quiz definition, picking the format from the extension.
func ReadQuizFile(path string) (domain.QuizDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.QuizDefinition{}, fmt.Errorf("read quiz %s: %w", path, err)
	}
	var quiz domain.QuizDefinition
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &quiz)
	default:
		err = json.Unmarshal(data, &quiz)
	}
	if err != nil {
		return domain.QuizDefinition{}, fmt.Errorf("parse quiz %s: %w", path, err)
	}
	return quiz, nil
}
