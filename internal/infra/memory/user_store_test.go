package memory

import (
	"context"
	"testing"
	"time"

	"mavi-fit-game/internal/app"
	"mavi-fit-game/internal/domain"
)

func TestDeleteUserCascades(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	_ = store.CreateUser(ctx, &domain.User{ID: "u1", Email: "a@mavi.com", StoreCode: "IST01"})
	_ = store.CreateUser(ctx, &domain.User{ID: "u2", Email: "b@mavi.com", StoreCode: "IST01"})
	_ = store.CreateSession(ctx, &domain.GameSession{ID: "s1", UserID: "u1"})
	_ = store.AppendAnswer(ctx, &domain.AnswerAnalytic{ID: "a1", UserID: "u1", SessionID: "s1"})
	_ = store.AppendAnswer(ctx, &domain.AnswerAnalytic{ID: "a2", UserID: "u2", SessionID: "s2"})
	_ = store.SaveProgress(ctx, &domain.UserBadgeProgress{UserID: "u1", BadgeCode: "veteran_50", CurrentValue: 3})
	_ = store.CreateReport(ctx, &domain.ErrorReport{ID: "r1", UserID: "u1"})
	_ = store.AddPoints(ctx, "u1", "Ayşe", 30)

	if err := store.DeleteUser(ctx, "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := store.GetUser(ctx, "u1"); err != domain.ErrUserNotFound {
		t.Fatalf("expected user gone, got %v", err)
	}
	if _, err := store.GetSession(ctx, "s1"); err != domain.ErrSessionNotFound {
		t.Fatalf("expected session gone, got %v", err)
	}
	answers, _ := store.ListAnswers(ctx, app.AnalyticsFilter{})
	if len(answers) != 1 || answers[0].UserID != "u2" {
		t.Fatalf("expected only u2 answers, got %+v", answers)
	}
	if p, _ := store.GetProgress(ctx, "u1", "veteran_50"); p != nil {
		t.Fatalf("expected progress gone, got %+v", p)
	}
	if _, err := store.GetReport(ctx, "r1"); err != domain.ErrReportNotFound {
		t.Fatalf("expected report gone, got %v", err)
	}
	top, _ := store.Top(ctx, 10)
	if len(top) != 0 {
		t.Fatalf("expected empty leaderboard, got %+v", top)
	}
}

func TestIncrementStatsAndLogin(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	_ = store.CreateUser(ctx, &domain.User{ID: "u1", Email: "a@mavi.com"})

	user, err := store.IncrementStats(ctx, "u1", domain.UserStatsDelta{Answered: 1, Correct: 1, Points: 15})
	if err != nil {
		t.Fatalf("increment: %v", err)
	}
	user, _ = store.IncrementStats(ctx, "u1", domain.UserStatsDelta{Answered: 1, TrainingSeconds: 40})
	if user.TotalAnswered != 2 || user.TotalCorrect != 1 || user.TotalPoints != 15 || user.TrainingSeconds != 40 {
		t.Fatalf("unexpected counters %+v", user)
	}

	at := time.Date(2024, 11, 22, 9, 0, 0, 0, time.UTC)
	if err := store.RecordLogin(ctx, "u1", 3, 5, at); err != nil {
		t.Fatalf("record login: %v", err)
	}
	user, _ = store.GetUser(ctx, "u1")
	if user.LoginStreak != 3 || user.LongestLoginStreak != 5 || !user.LastLoginAt.Equal(at) {
		t.Fatalf("login not recorded: %+v", user)
	}
}

func TestListUsersByStore(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	_ = store.CreateUser(ctx, &domain.User{ID: "u1", Email: "a@mavi.com", StoreCode: "IST01"})
	_ = store.CreateUser(ctx, &domain.User{ID: "u2", Email: "b@mavi.com", StoreCode: "ANK01"})

	if err := store.CreateUser(ctx, &domain.User{ID: "u3", Email: "a@mavi.com"}); err != domain.ErrEmailTaken {
		t.Fatalf("expected duplicate email rejected, got %v", err)
	}

	all, _ := store.ListUsers(ctx, "")
	ist, _ := store.ListUsers(ctx, "IST01")
	if len(all) != 2 || len(ist) != 1 || ist[0].ID != "u1" {
		t.Fatalf("unexpected listing all=%v ist=%v", all, ist)
	}
}

func TestLeaderboardOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	_ = store.AddPoints(ctx, "u1", "Ayşe", 20)
	_ = store.AddPoints(ctx, "u2", "Mehmet", 30)
	_ = store.AddPoints(ctx, "u1", "", 10)

	top, _ := store.Top(ctx, 10)
	if len(top) != 2 {
		t.Fatalf("expected 2 entries, got %+v", top)
	}
	if top[0].UserID != "u2" || top[1].UserID != "u1" || top[1].DisplayName != "Ayşe" {
		t.Fatalf("expected earlier scorer first on tie, got %+v", top)
	}
}
