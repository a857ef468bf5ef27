package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"mavi-fit-game/internal/domain"
	"mavi-fit-game/internal/infra/memory"
)

const questionKeyPrefix = "fitgame:questions:"

// QuestionCache keeps each category's question set as one JSON blob in Redis and falls back
// to the loader on a miss:
//
//	SET fitgame:questions:{categoryID} [...questions] EX ttl
type QuestionCache struct {
	client *redis.Client
	loader memory.QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewQuestionCache(client *redis.Client, loader memory.QuestionLoader, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionCache) CategoryQuestions(ctx context.Context, categoryID string) ([]domain.QuestionItem, error) {
	if questions, ok := r.cached(ctx, categoryID); ok {
		return questions, nil
	}

	result, err, _ := r.sf.Do(categoryID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if questions, ok := r.cached(ctx, categoryID); ok {
			return questions, nil
		}

		questions, err := r.loader.LoadCategoryQuestions(ctx, categoryID)
		if err != nil {
			return nil, err
		}
		payload, err := json.Marshal(questions)
		if err != nil {
			return nil, err
		}
		if err := r.client.Set(ctx, questionKey(categoryID), payload, r.ttlWithJitter()).Err(); err != nil {
			slog.Warn("question cache write failed", slog.String("category_id", categoryID), slog.Any("error", err))
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.QuestionItem), nil
}

// Invalidate drops the cached set of a category.
func (r *QuestionCache) Invalidate(ctx context.Context, categoryID string) error {
	return r.client.Del(ctx, questionKey(categoryID)).Err()
}

func (r *QuestionCache) cached(ctx context.Context, categoryID string) ([]domain.QuestionItem, bool) {
	raw, err := r.client.Get(ctx, questionKey(categoryID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("question cache read failed", slog.String("category_id", categoryID), slog.Any("error", err))
		}
		return nil, false
	}
	var questions []domain.QuestionItem
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, false
	}
	return questions, true
}

func questionKey(categoryID string) string {
	return questionKeyPrefix + categoryID
}

func (r *QuestionCache) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
