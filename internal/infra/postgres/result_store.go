package postgres

import (
	"context"
	"fmt"
	"time"

	"quiz-session-engine/internal/domain"

	"github.com/uptrace/bun"
)

type resultRow struct {
	bun.BaseModel `bun:"table:quiz_results"`

	AttemptID   string              `bun:"attempt_id,pk"`
	QuizID      string              `bun:"quiz_id,notnull"`
	Score       int                 `bun:"score,notnull"`
	Passed      bool                `bun:"passed,notnull"`
	StartedAt   time.Time           `bun:"started_at,notnull"`
	SubmittedAt time.Time           `bun:"submitted_at,notnull"`
	Record      domain.ResultRecord `bun:"record,type:jsonb,notnull"`
}

// ResultStore persists graded attempts in the quiz_results table.
type ResultStore struct {
	db *bun.DB
}

func NewResultStore(db *bun.DB) *ResultStore {
	return &ResultStore{db: db}
}

// SaveResult inserts a result; saving the same attempt twice is a no-op.
func (s *ResultStore) SaveResult(ctx context.Context, result domain.AttemptResult) error {
	row := resultRow{
		AttemptID:   result.AttemptID,
		QuizID:      result.Result.QuizID,
		Score:       result.Result.Score,
		Passed:      result.Result.Passed,
		StartedAt:   result.StartedAt,
		SubmittedAt: result.SubmittedAt,
		Record:      result.Result,
	}
	_, err := s.db.NewInsert().
		Model(&row).
		On("CONFLICT (attempt_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// ListResults returns newest first. limit <= 0 returns every row.
func (s *ResultStore) ListResults(ctx context.Context, quizID string, limit int) ([]domain.AttemptResult, error) {
	var rows []resultRow
	q := s.db.NewSelect().
		Model(&rows).
		Where("quiz_id = ?", quizID).
		Order("submitted_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}

	results := make([]domain.AttemptResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, domain.AttemptResult{
			AttemptID:   row.AttemptID,
			StartedAt:   row.StartedAt,
			SubmittedAt: row.SubmittedAt,
			Result:      row.Record,
		})
	}
	return results, nil
}
