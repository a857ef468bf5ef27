package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"mavi-fit-game/internal/domain"
)

func TestStartGameSingleQuestionExhausts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)

	start, err := f.game.StartGame(ctx, f.player, "u1", "cat-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if start.Question == nil || start.Question.ID != "cat-1-q1" {
		t.Fatalf("expected the only question, got %+v", start.Question)
	}
	if start.TotalAvailableQuestions != 1 || start.Score != 0 || start.Lifeline50Used || start.LifelineSkipUsed {
		t.Fatalf("unexpected start state %+v", start)
	}

	if _, err := f.game.StartGame(ctx, f.player, "u1", "cat-1"); !errors.Is(err, domain.ErrNoEligibleQuestion) {
		t.Fatalf("expected no eligible question, got %v", err)
	}
}

func TestStartGameHidesCorrectFlag(t *testing.T) {
	f := newFixture(t, 3)
	start, err := f.game.StartGame(context.Background(), f.player, "u1", "cat-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(start.Question.Options) != 4 {
		t.Fatalf("expected 4 options, got %+v", start.Question.Options)
	}
	if start.Question.Color != "blue" || start.Question.ImageURL == "" {
		t.Fatalf("expected primary image on first question, got %+v", start.Question)
	}
}

func TestStartGameRejectsUnplayableCategory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	cat, _ := f.store.GetCategory(ctx, "cat-1")
	cat.IsQuizActive = false
	_ = f.store.UpdateCategory(ctx, &cat)

	if _, err := f.game.StartGame(ctx, f.player, "u1", "cat-1"); !errors.Is(err, domain.ErrCategoryNotPlayable) {
		t.Fatalf("expected not playable, got %v", err)
	}
	if _, err := f.game.StartGame(ctx, f.player, "u1", "missing"); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("expected category not found, got %v", err)
	}
	if _, err := f.game.StartGame(ctx, f.player, "", "cat-1"); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestStartGameForOtherUserForbidden(t *testing.T) {
	f := newFixture(t, 2)
	if _, err := f.game.StartGame(context.Background(), f.player, "someone-else", "cat-1"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestScoringStreakScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 6)

	start, err := f.game.StartGame(ctx, f.player, "u1", "cat-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	q := start.Question
	for i := 0; i < 3; i++ {
		res := f.answer(t, start.SessionID, q, "ok", 5000)
		if res.ScoreDelta != 10 {
			t.Fatalf("answer %d: expected 10 without bonus, got %d", i, res.ScoreDelta)
		}
		q = res.NextQuestion
	}

	res := f.answer(t, start.SessionID, q, "ok", 500)
	if res.ScoreDelta != 30 {
		t.Fatalf("expected (10+5)*2=30, got %d", res.ScoreDelta)
	}
	if res.NewScore != 60 || res.Streak != 4 || !res.IsCorrect {
		t.Fatalf("unexpected result %+v", res)
	}

	user, _ := f.store.GetUser(ctx, "u1")
	if user.TotalPoints != 60 || user.TotalAnswered != 4 || user.TotalCorrect != 4 {
		t.Fatalf("user counters not updated: %+v", user)
	}
	lb, _ := f.hub.Top(ctx, 10)
	if len(lb.Entries) != 1 || lb.Entries[0].Score != 60 || lb.Entries[0].Rank != 1 {
		t.Fatalf("leaderboard not updated: %+v", lb)
	}
}

func TestWrongAnswerResetsStreak(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 4)

	start, _ := f.game.StartGame(ctx, f.player, "u1", "cat-1")
	res := f.answer(t, start.SessionID, start.Question, "ok", 1000)
	res = f.answer(t, start.SessionID, res.NextQuestion, "ok", 1000)
	if res.Streak != 2 {
		t.Fatalf("expected streak 2, got %d", res.Streak)
	}

	res = f.answer(t, start.SessionID, res.NextQuestion, "w1", 1000)
	if res.ScoreDelta != 0 || res.IsCorrect || res.Streak != 0 || res.CorrectAnswerID != "ok" {
		t.Fatalf("unexpected wrong answer result %+v", res)
	}
	session, _ := f.store.GetSession(ctx, start.SessionID)
	if session.CurrentStreak != 0 || session.BestStreak != 2 || session.WrongCount != 1 {
		t.Fatalf("session streak not reset: %+v", session)
	}

	answers, _ := f.store.RecentSessionAnswers(ctx, start.SessionID, 10)
	if len(answers) != 3 || answers[0].IsCorrect || answers[0].SelectedAnswerText != "Serena" || answers[0].CorrectAnswerText != "Alissa" {
		t.Fatalf("analytic not recorded: %+v", answers)
	}
	if answers[0].StoreCode != "IST01" || answers[0].FitCategory != "skinny" {
		t.Fatalf("analytic missing metadata: %+v", answers[0])
	}
}

func TestSubmitAnswerErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 3)
	start, _ := f.game.StartGame(ctx, f.player, "u1", "cat-1")

	cases := []struct {
		name string
		sub  domain.AnswerSubmission
		want error
	}{
		{"unknown session", domain.AnswerSubmission{SessionID: "nope", QuestionID: start.Question.ID, SelectedAnswerID: "ok"}, domain.ErrSessionNotFound},
		{"unknown question", domain.AnswerSubmission{SessionID: start.SessionID, QuestionID: "nope", SelectedAnswerID: "ok"}, domain.ErrQuestionNotFound},
		{"unknown option", domain.AnswerSubmission{SessionID: start.SessionID, QuestionID: start.Question.ID, SelectedAnswerID: "zz"}, domain.ErrOptionNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.game.SubmitAnswer(ctx, f.player, tc.sub); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	other := "cat-1-q1"
	if other == start.Question.ID {
		other = "cat-1-q2"
	}
	_, err := f.game.SubmitAnswer(ctx, f.player, domain.AnswerSubmission{SessionID: start.SessionID, QuestionID: other, SelectedAnswerID: "ok"})
	if !errors.Is(err, domain.ErrQuestionMismatch) {
		t.Fatalf("expected mismatch for a question that is not current, got %v", err)
	}

	_, err = f.game.SubmitAnswer(ctx, f.player, domain.AnswerSubmission{SessionID: start.SessionID, QuestionID: start.Question.ID, SelectedAnswerID: "ok", ResponseTimeMs: -1})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	intruder := domain.Actor{UserID: "u2", Role: domain.RoleEmployee}
	_, err = f.game.SubmitAnswer(ctx, intruder, domain.AnswerSubmission{SessionID: start.SessionID, QuestionID: start.Question.ID, SelectedAnswerID: "ok"})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestAskedQuestionsStayUnique(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 6)

	start, _ := f.game.StartGame(ctx, f.player, "u1", "cat-1")
	res := f.answer(t, start.SessionID, start.Question, "ok", 1000)
	skipped, err := f.game.UseSkip(ctx, f.player, start.SessionID)
	if err != nil {
		t.Fatalf("skip: %v", err)
	}
	if skipped.ID == res.NextQuestion.ID {
		t.Fatalf("skip returned the same question")
	}
	q := &skipped
	for q != nil {
		r := f.answer(t, start.SessionID, q, "w2", 4000)
		q = r.NextQuestion
		if q == nil && !r.CategoryCompleted {
			t.Fatalf("expected category completed when no question is left")
		}
	}

	session, _ := f.store.GetSession(ctx, start.SessionID)
	assertNoDuplicates(t, session.AskedQuestions)
	if len(session.AskedQuestions) != 6 {
		t.Fatalf("expected all 6 questions asked, got %v", session.AskedQuestions)
	}
	if session.CorrectCount+session.WrongCount != 5 {
		t.Fatalf("skipped question must not be graded: %+v", session)
	}
}

func TestConcurrentSessionsDoNotRepeat(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)

	a, err := f.game.StartGame(ctx, f.player, "u1", "cat-1")
	if err != nil {
		t.Fatalf("start a: %v", err)
	}
	b, err := f.game.StartGame(ctx, f.player, "u1", "cat-1")
	if err != nil {
		t.Fatalf("start b: %v", err)
	}
	if a.Question.ID == b.Question.ID {
		t.Fatalf("open sessions served the same question %s", a.Question.ID)
	}
}

func TestFiftyFiftyOnlyOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 3)
	start, _ := f.game.StartGame(ctx, f.player, "u1", "cat-1")

	view, err := f.game.UseFiftyFifty(ctx, f.player, start.SessionID, *start.Question)
	if err != nil {
		t.Fatalf("5050: %v", err)
	}
	if len(view.Options) != 2 || !view.HasOption("ok") {
		t.Fatalf("expected correct plus one distractor, got %+v", view.Options)
	}

	if _, err := f.game.UseFiftyFifty(ctx, f.player, start.SessionID, *start.Question); !errors.Is(err, domain.ErrLifelineUsed) {
		t.Fatalf("expected lifeline already used, got %v", err)
	}
	session, _ := f.store.GetSession(ctx, start.SessionID)
	if !session.Lifeline50Used || session.LifelineSkipUsed {
		t.Fatalf("unexpected lifeline flags %+v", session)
	}
}

func TestSkipOnlyOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 4)
	start, _ := f.game.StartGame(ctx, f.player, "u1", "cat-1")

	next, err := f.game.UseSkip(ctx, f.player, start.SessionID)
	if err != nil {
		t.Fatalf("skip: %v", err)
	}
	if next.ID == start.Question.ID {
		t.Fatalf("skip must replace the question")
	}
	if _, err := f.game.UseSkip(ctx, f.player, start.SessionID); !errors.Is(err, domain.ErrLifelineUsed) {
		t.Fatalf("expected lifeline already used, got %v", err)
	}

	res := f.answer(t, start.SessionID, &next, "ok", 1000)
	if res.ScoreDelta != 15 {
		t.Fatalf("skip must not affect scoring, got %d", res.ScoreDelta)
	}
}

func TestSkipWithoutReplacementKeepsLifeline(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	start, _ := f.game.StartGame(ctx, f.player, "u1", "cat-1")

	if _, err := f.game.UseSkip(ctx, f.player, start.SessionID); !errors.Is(err, domain.ErrNoEligibleQuestion) {
		t.Fatalf("expected no eligible question, got %v", err)
	}
	session, _ := f.store.GetSession(ctx, start.SessionID)
	if session.LifelineSkipUsed {
		t.Fatalf("failed skip must not consume the lifeline")
	}
}

func TestCompleteCategoryAwardsOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)

	start, _ := f.game.StartGame(ctx, f.player, "u1", "cat-1")
	res := f.answer(t, start.SessionID, start.Question, "ok", 1000)
	res = f.answer(t, start.SessionID, res.NextQuestion, "ok", 1000)
	if !res.CategoryCompleted {
		t.Fatalf("expected category completed")
	}

	first, err := f.game.CompleteCategory(ctx, f.player, start.SessionID, "u1", "cat-1")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !first.Success || first.BadgeAwarded == nil || !first.BadgeAwarded.NewlyUnlocked || first.AlreadyUnlocked {
		t.Fatalf("expected a fresh award, got %+v", first)
	}
	if first.BadgeAwarded.Badge.Code != "category_cat-1" || first.CategoryName != "Kategori cat-1" {
		t.Fatalf("unexpected award %+v", first)
	}

	second, err := f.game.CompleteCategory(ctx, f.player, start.SessionID, "u1", "cat-1")
	if err != nil {
		t.Fatalf("complete again: %v", err)
	}
	if second.Success || second.BadgeAwarded != nil {
		t.Fatalf("second completion must not award again, got %+v", second)
	}

	progress, _ := f.store.ListProgress(ctx, "u1")
	unlocks := 0
	for _, p := range progress {
		if p.BadgeCode == "category_cat-1" && p.Unlocked() {
			unlocks++
		}
	}
	if unlocks != 1 {
		t.Fatalf("expected exactly one category badge unlock, got %d", unlocks)
	}

	session, _ := f.store.GetSession(ctx, start.SessionID)
	if len(session.AskedQuestions) != 0 || len(session.UsedColors) != 0 {
		t.Fatalf("expected reset history, got %+v", session)
	}
	if _, err := f.game.StartGame(ctx, f.player, "u1", "cat-1"); err != nil {
		t.Fatalf("replay after reset should start: %v", err)
	}
}

func TestCompleteCategoryAcrossOpenSessions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)

	a, err := f.game.StartGame(ctx, f.player, "u1", "cat-1")
	if err != nil {
		t.Fatalf("start a: %v", err)
	}
	b, err := f.game.StartGame(ctx, f.player, "u1", "cat-1")
	if err != nil {
		t.Fatalf("start b: %v", err)
	}
	if a.Question.ID == b.Question.ID {
		t.Fatalf("open sessions must not share a question")
	}
	if res := f.answer(t, a.SessionID, a.Question, "ok", 1000); !res.CategoryCompleted {
		t.Fatalf("expected session a to run out of questions")
	}
	if res := f.answer(t, b.SessionID, b.Question, "ok", 1000); !res.CategoryCompleted {
		t.Fatalf("expected session b to run out of questions")
	}

	first, err := f.game.CompleteCategory(ctx, f.player, a.SessionID, "u1", "cat-1")
	if err != nil {
		t.Fatalf("complete a: %v", err)
	}
	if !first.Success || first.BadgeAwarded == nil || !first.BadgeAwarded.NewlyUnlocked {
		t.Fatalf("split coverage should complete the category, got %+v", first)
	}

	second, err := f.game.CompleteCategory(ctx, f.player, b.SessionID, "u1", "cat-1")
	if err != nil {
		t.Fatalf("complete b: %v", err)
	}
	if second.Success || second.BadgeAwarded != nil {
		t.Fatalf("the badge must be awarded once, got %+v", second)
	}

	for _, id := range []string{a.SessionID, b.SessionID} {
		session, _ := f.store.GetSession(ctx, id)
		if len(session.AskedQuestions) != 0 {
			t.Fatalf("expected session %s history cleared, got %v", id, session.AskedQuestions)
		}
	}
	if _, err := f.game.StartGame(ctx, f.player, "u1", "cat-1"); err != nil {
		t.Fatalf("replay after completion should start: %v", err)
	}
}

func TestCompleteCategoryKeepsSiblingCurrentQuestion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)

	a, _ := f.game.StartGame(ctx, f.player, "u1", "cat-1")
	b, _ := f.game.StartGame(ctx, f.player, "u1", "cat-1")
	f.answer(t, a.SessionID, a.Question, "ok", 1000)

	res, err := f.game.CompleteCategory(ctx, f.player, a.SessionID, "u1", "cat-1")
	if err != nil || !res.Success {
		t.Fatalf("complete: %+v %v", res, err)
	}
	sibling, _ := f.store.GetSession(ctx, b.SessionID)
	if len(sibling.AskedQuestions) != 1 || sibling.AskedQuestions[0] != b.Question.ID {
		t.Fatalf("sibling should keep only its pending question, got %v", sibling.AskedQuestions)
	}
	f.answer(t, b.SessionID, b.Question, "ok", 1000)
}

func TestCompleteCategoryNotCovered(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 3)
	start, _ := f.game.StartGame(ctx, f.player, "u1", "cat-1")

	res, err := f.game.CompleteCategory(ctx, f.player, start.SessionID, "u1", "cat-1")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if res.Success || res.BadgeAwarded != nil {
		t.Fatalf("uncovered category must not complete: %+v", res)
	}
	session, _ := f.store.GetSession(ctx, start.SessionID)
	if len(session.AskedQuestions) != 1 {
		t.Fatalf("uncovered category must not reset history: %+v", session.AskedQuestions)
	}
}

func TestAllCategoriesUnionsPlayableCategories(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1, 1)
	all := domain.QuizCategory{ID: "all", Name: "Tüm Kategoriler", Slug: "tum", IsActive: true, IsAllCategories: true}
	_ = f.store.CreateCategory(ctx, &all)

	start, err := f.game.StartGame(ctx, f.player, "u1", "all")
	if err != nil {
		t.Fatalf("start all: %v", err)
	}
	if start.TotalAvailableQuestions != 2 {
		t.Fatalf("expected union of 2 questions, got %d", start.TotalAvailableQuestions)
	}
	res := f.answer(t, start.SessionID, start.Question, "ok", 1000)
	res = f.answer(t, start.SessionID, res.NextQuestion, "ok", 1000)
	if !res.CategoryCompleted {
		t.Fatalf("expected aggregate completed")
	}

	done, err := f.game.CompleteCategory(ctx, f.player, start.SessionID, "u1", "all")
	if err != nil {
		t.Fatalf("complete all: %v", err)
	}
	if !done.Success || done.BadgeAwarded == nil || done.BadgeAwarded.Badge.Code != "category_all" {
		t.Fatalf("expected all-categories badge, got %+v", done)
	}
}

func TestEndGameCreditsTrainingTime(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 3)
	start, _ := f.game.StartGame(ctx, f.player, "u1", "cat-1")
	res := f.answer(t, start.SessionID, start.Question, "ok", 1000)
	f.answer(t, start.SessionID, res.NextQuestion, "ok", 1000)

	f.now = f.now.Add(45 * time.Second)
	end, err := f.game.EndGame(ctx, f.player, start.SessionID)
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if end.Score != 30 || end.CorrectCount != 2 || end.DurationSeconds != 45 {
		t.Fatalf("unexpected summary %+v", end)
	}
	user, _ := f.store.GetUser(ctx, "u1")
	if user.TrainingSeconds != 45 {
		t.Fatalf("expected 45s training, got %d", user.TrainingSeconds)
	}

	again, err := f.game.EndGame(ctx, f.player, start.SessionID)
	if err != nil || again.Score != 30 {
		t.Fatalf("ending twice should return the summary: %+v %v", again, err)
	}
	user, _ = f.store.GetUser(ctx, "u1")
	if user.TrainingSeconds != 45 {
		t.Fatalf("training time credited twice: %d", user.TrainingSeconds)
	}

	if _, err := f.game.UseSkip(ctx, f.player, start.SessionID); !errors.Is(err, domain.ErrSessionEnded) {
		t.Fatalf("expected session ended, got %v", err)
	}
}

func TestEndGameCapsIdleTime(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 3)
	start, _ := f.game.StartGame(ctx, f.player, "u1", "cat-1")
	f.answer(t, start.SessionID, start.Question, "ok", 1000)

	f.now = f.now.Add(3 * time.Hour)
	if _, err := f.game.EndGame(ctx, f.player, start.SessionID); err != nil {
		t.Fatalf("end: %v", err)
	}
	user, _ := f.store.GetUser(ctx, "u1")
	if user.TrainingSeconds != 30 {
		t.Fatalf("expected one question time limit credited, got %d", user.TrainingSeconds)
	}
}

func TestSubmitAnswerConflictOnStaleSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 3)
	start, _ := f.game.StartGame(ctx, f.player, "u1", "cat-1")

	stale, _ := f.store.GetSession(ctx, start.SessionID)
	f.answer(t, start.SessionID, start.Question, "ok", 1000)

	stale.Score = 1000
	if err := f.store.UpdateSession(ctx, stale); !errors.Is(err, domain.ErrSessionConflict) {
		t.Fatalf("expected conflict for stale write, got %v", err)
	}
}
