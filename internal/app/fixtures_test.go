package app_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"mavi-fit-game/internal/app"
	"mavi-fit-game/internal/domain"
	"mavi-fit-game/internal/infra/memory"
)

type fixture struct {
	store  *memory.Store
	game   *app.GameService
	badges *app.BadgeEngine
	hub    *app.LeaderboardHub
	now    time.Time
	player domain.Actor
}

func (f *fixture) clock() time.Time { return f.now }

// newFixture seeds a user, the badge catalog and one playable category per entry of sizes,
// named cat-1, cat-2, ... with questions cat-N-q1.. each having a single correct option "ok".
func newFixture(t *testing.T, sizes ...int) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		store:  memory.NewStore(),
		now:    time.Date(2024, 11, 22, 14, 0, 0, 0, time.UTC),
		player: domain.Actor{UserID: "u1", Role: domain.RoleEmployee, StoreCode: "IST01"},
	}

	if err := f.store.CreateUser(ctx, &domain.User{ID: "u1", Email: "ayse@mavi.com", DisplayName: "Ayşe", Role: domain.RoleEmployee, StoreCode: "IST01"}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	f.badges = app.NewBadgeEngine(f.store, f.store, f.store, f.store, app.DefaultBadgeRules()).WithClock(f.clock)
	if err := f.badges.SeedCatalog(ctx); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}

	for i, n := range sizes {
		addCategory(t, f.store, fmt.Sprintf("cat-%d", i+1), n)
	}

	f.hub = app.NewLeaderboardHubWithClock(f.store, 10, f.clock)
	f.game = app.NewGameService(app.GameDeps{
		Categories:  f.store,
		Questions:   memory.NewQuestionCache(f.store, 0),
		Sessions:    f.store,
		Analytics:   f.store,
		Users:       f.store,
		Leaderboard: f.hub,
		Badges:      f.badges,
	}, app.DefaultScoringPolicy(), 30*time.Second).WithClock(f.clock).WithSeed(42)
	return f
}

func addCategory(t *testing.T, store *memory.Store, id string, questions int) {
	t.Helper()
	ctx := context.Background()
	category := domain.QuizCategory{ID: id, Name: "Kategori " + id, Slug: id, IsActive: true, IsQuizActive: true}
	badge := app.CategoryBadge(category)
	if err := store.UpsertDefinition(ctx, &badge); err != nil {
		t.Fatalf("upsert badge: %v", err)
	}
	category.CompletionBadgeCode = badge.Code
	if err := store.CreateCategory(ctx, &category); err != nil {
		t.Fatalf("create category: %v", err)
	}
	for i := 1; i <= questions; i++ {
		q := domain.QuestionItem{
			ID:         fmt.Sprintf("%s-q%d", id, i),
			CategoryID: id,
			Images: []domain.QuestionImage{
				{URL: "https://cdn.example/blue.jpg", Color: "blue", IsPrimary: true},
				{URL: "https://cdn.example/black.jpg", Color: "black"},
			},
			Explanation: "Bel yüksek, paça dar.",
			Tags:        []string{"women"},
			Gender:      "women",
			FitCategory: "skinny",
			Options: []domain.Option{
				{ID: "ok", Text: "Alissa", Correct: true},
				{ID: "w1", Text: "Serena", Correct: false},
				{ID: "w2", Text: "Sophie", Correct: false},
				{ID: "w3", Text: "Star", Correct: false},
			},
			IsActive: true,
		}
		if err := store.CreateQuestion(ctx, &q); err != nil {
			t.Fatalf("create question: %v", err)
		}
	}
}

func (f *fixture) answer(t *testing.T, sessionID string, q *domain.QuestionView, optionID string, ms int64) domain.AnswerResult {
	t.Helper()
	if q == nil {
		t.Fatalf("no question to answer")
	}
	res, err := f.game.SubmitAnswer(context.Background(), f.player, domain.AnswerSubmission{
		SessionID:        sessionID,
		QuestionID:       q.ID,
		SelectedAnswerID: optionID,
		ResponseTimeMs:   ms,
		QuestionColor:    q.Color,
	})
	if err != nil {
		t.Fatalf("submit answer: %v", err)
	}
	return res
}

func assertNoDuplicates(t *testing.T, ids []string) {
	t.Helper()
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			t.Fatalf("duplicate question %s in %v", id, ids)
		}
		seen[id] = true
	}
}
