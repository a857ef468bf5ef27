package memory

import (
	"context"
	"testing"
	"time"

	"mavi-fit-game/internal/domain"
)

func TestSaveProgressIsMonotonic(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	unlocked := time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)

	steps := []domain.UserBadgeProgress{
		{UserID: "u1", BadgeCode: "streak_10", CurrentValue: 4},
		{UserID: "u1", BadgeCode: "streak_10", CurrentValue: 10, TierUnlocked: 1, UnlockedAt: &unlocked},
		{UserID: "u1", BadgeCode: "streak_10", CurrentValue: 2},
	}
	for i := range steps {
		if err := store.SaveProgress(ctx, &steps[i]); err != nil {
			t.Fatalf("save step %d: %v", i, err)
		}
	}

	got, err := store.GetProgress(ctx, "u1", "streak_10")
	if err != nil || got == nil {
		t.Fatalf("get progress: %v %v", got, err)
	}
	if got.CurrentValue != 10 {
		t.Fatalf("progress decreased to %d", got.CurrentValue)
	}
	if got.UnlockedAt == nil || !got.UnlockedAt.Equal(unlocked) || got.TierUnlocked != 1 {
		t.Fatalf("unlock state lost: %+v", got)
	}
}

func TestGetProgressMissingIsNil(t *testing.T) {
	got, err := NewStore().GetProgress(context.Background(), "u1", "nope")
	if err != nil || got != nil {
		t.Fatalf("expected nil progress without error, got %+v %v", got, err)
	}
}

func TestDefinitionsKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	for _, code := range []string{"b", "a", "c"} {
		_ = store.UpsertDefinition(ctx, &domain.BadgeDefinition{Code: code})
	}
	_ = store.UpsertDefinition(ctx, &domain.BadgeDefinition{Code: "a", Name: "renamed"})

	defs, _ := store.ListDefinitions(ctx)
	if len(defs) != 3 || defs[0].Code != "b" || defs[1].Code != "a" || defs[1].Name != "renamed" {
		t.Fatalf("unexpected definitions %+v", defs)
	}
	if _, err := store.GetDefinition(ctx, "zzz"); err != domain.ErrBadgeNotFound {
		t.Fatalf("expected badge not found, got %v", err)
	}
}
