package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"quiz-session-engine/internal/domain"

	"github.com/redis/go-redis/v9"
)

// ResultStore keeps recent results per quiz in a capped list, newest at the head:
// LPUSH quiz:{quizID}:results <json>; LTRIM 0 max-1
type ResultStore struct {
	client     *redis.Client
	maxPerQuiz int64
}

// NewResultStore keeps at most maxPerQuiz results per quiz; zero or less means unbounded.
func NewResultStore(client *redis.Client, maxPerQuiz int) *ResultStore {
	return &ResultStore{client: client, maxPerQuiz: int64(maxPerQuiz)}
}

func (s *ResultStore) SaveResult(ctx context.Context, result domain.AttemptResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	key := s.key(result.Result.QuizID)
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, data)
	if s.maxPerQuiz > 0 {
		pipe.LTrim(ctx, key, 0, s.maxPerQuiz-1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

func (s *ResultStore) ListResults(ctx context.Context, quizID string, limit int) ([]domain.AttemptResult, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	raw, err := s.client.LRange(ctx, s.key(quizID), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	results := make([]domain.AttemptResult, 0, len(raw))
	for _, item := range raw {
		var result domain.AttemptResult
		if err := json.Unmarshal([]byte(item), &result); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *ResultStore) key(quizID string) string {
	return "quiz:" + quizID + ":results"
}
