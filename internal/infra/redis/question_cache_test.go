package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"mavi-fit-game/internal/domain"
	"mavi-fit-game/internal/infra/memory"
)

func TestQuestionCacheCachesInRedis(t *testing.T) {
	mr, client := newMiniredis(t)

	loader := &countingLoader{
		QuestionLoader: staticLoader(map[string][]domain.QuestionItem{
			"cat-1": sampleQuestions(),
		}),
	}
	repo := NewQuestionCache(client, loader, time.Minute)

	questions, err := repo.CategoryQuestions(context.Background(), "cat-1")
	if err != nil {
		t.Fatalf("get questions: %v", err)
	}
	if len(questions) != 1 || loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d calls", loader.calls)
	}
	if !mr.Exists("fitgame:questions:cat-1") {
		t.Fatalf("expected redis key to be set")
	}
	if ttl := mr.TTL("fitgame:questions:cat-1"); ttl < time.Minute || ttl > time.Minute+6*time.Second {
		t.Fatalf("expected ttl with jitter, got %v", ttl)
	}

	// Second call should hit cache, loader not incremented.
	cached, _ := repo.CategoryQuestions(context.Background(), "cat-1")
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if cached[0].Options[1].Text != "Serena" || !cached[0].Options[0].Correct {
		t.Fatalf("cached question lost fields: %+v", cached[0])
	}

	if err := repo.Invalidate(context.Background(), "cat-1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	_, _ = repo.CategoryQuestions(context.Background(), "cat-1")
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, loader calls=%d", loader.calls)
	}
}

func TestQuestionCacheLoaderError(t *testing.T) {
	_, client := newMiniredis(t)
	repo := NewQuestionCache(client, staticLoader(nil), time.Minute)
	if _, err := repo.CategoryQuestions(context.Background(), "missing"); err != domain.ErrCategoryNotFound {
		t.Fatalf("expected category not found, got %v", err)
	}
}

type countingLoader struct {
	memory.QuestionLoader
	calls int
}

func (l *countingLoader) LoadCategoryQuestions(ctx context.Context, categoryID string) ([]domain.QuestionItem, error) {
	l.calls++
	return l.QuestionLoader.LoadCategoryQuestions(ctx, categoryID)
}

func sampleQuestions() []domain.QuestionItem {
	return []domain.QuestionItem{
		{
			ID:         "q1",
			CategoryID: "cat-1",
			Images:     []domain.QuestionImage{{URL: "https://cdn.example/1.jpg", Color: "blue", IsPrimary: true}},
			Options: []domain.Option{
				{ID: "o1", Text: "Alissa", Correct: true},
				{ID: "o2", Text: "Serena"},
			},
			IsActive: true,
		},
	}
}

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

// staticLoader serves fixed question sets by category.
type staticLoader map[string][]domain.QuestionItem

func (l staticLoader) LoadCategoryQuestions(_ context.Context, categoryID string) ([]domain.QuestionItem, error) {
	if questions, ok := l[categoryID]; ok {
		return questions, nil
	}
	return nil, domain.ErrCategoryNotFound
}
