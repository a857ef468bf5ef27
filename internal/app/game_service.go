package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"mavi-fit-game/internal/domain"
)

// GameDeps groups the collaborators of the game session engine.
type GameDeps struct {
	Categories  CategoryRepository
	Questions   QuestionRepository
	Sessions    SessionRepository
	Analytics   AnalyticsRepository
	Users       UserRepository
	Leaderboard *LeaderboardHub
	Badges      *BadgeEngine
}

// GameService runs the start / answer / lifeline / completion cycle of a game session.
type GameService struct {
	categories  CategoryRepository
	questions   QuestionRepository
	sessions    SessionRepository
	analytics   AnalyticsRepository
	users       UserRepository
	leaderboard *LeaderboardHub
	badges      *BadgeEngine

	scoring   ScoringPolicy
	timeLimit time.Duration
	picker    *picker
	now       func() time.Time
}

func NewGameService(deps GameDeps, scoring ScoringPolicy, timeLimit time.Duration) *GameService {
	return &GameService{
		categories:  deps.Categories,
		questions:   deps.Questions,
		sessions:    deps.Sessions,
		analytics:   deps.Analytics,
		users:       deps.Users,
		leaderboard: deps.Leaderboard,
		badges:      deps.Badges,
		scoring:     scoring,
		timeLimit:   timeLimit,
		picker:      newTimePicker(),
		now:         time.Now,
	}
}

// WithClock is test-only for deterministic timestamps.
func (s *GameService) WithClock(now func() time.Time) *GameService {
	s.now = now
	return s
}

// WithSeed is test-only for a reproducible question order.
func (s *GameService) WithSeed(seed int64) *GameService {
	s.picker = newPicker(seed)
	return s
}

// StartGame opens a new session on a playable category and presents its first question.
func (s *GameService) StartGame(ctx context.Context, actor domain.Actor, userID, categoryID string) (domain.GameStart, error) {
	if userID == "" {
		return domain.GameStart{}, domain.Invalid("userId", "required")
	}
	if categoryID == "" {
		return domain.GameStart{}, domain.Invalid("categoryId", "required")
	}
	if !actor.CanActFor(userID) {
		return domain.GameStart{}, domain.ErrForbidden
	}

	category, err := s.categories.GetCategory(ctx, categoryID)
	if err != nil {
		return domain.GameStart{}, err
	}
	if !category.Playable() && !(category.IsAllCategories && category.IsActive) {
		return domain.GameStart{}, domain.ErrCategoryNotPlayable
	}

	pool, err := s.categoryPool(ctx, category)
	if err != nil {
		return domain.GameStart{}, err
	}
	open, _, err := s.openAsked(ctx, userID, categoryID)
	if err != nil {
		return domain.GameStart{}, err
	}

	first, ok := s.picker.pickQuestion(eligibleQuestions(pool, open))
	if !ok {
		return domain.GameStart{}, domain.ErrNoEligibleQuestion
	}
	view := s.picker.present(first, nil)

	session := &domain.GameSession{
		ID:                uuid.NewString(),
		UserID:            userID,
		CategoryID:        category.ID,
		TotalQuestions:    len(activeQuestions(pool)),
		AskedQuestions:    []string{},
		UsedColors:        []string{},
		CurrentQuestionID: first.ID,
		StartedAt:         s.now(),
	}
	session.MarkAsked(first.ID, view.Color)
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return domain.GameStart{}, fmt.Errorf("create session: %w", err)
	}

	slog.Debug("game started",
		slog.String("session_id", session.ID),
		slog.String("user_id", userID),
		slog.String("category_id", category.ID),
		slog.Int("available", session.TotalQuestions))

	return domain.GameStart{
		SessionID:               session.ID,
		Question:                &view,
		Score:                   session.Score,
		TotalAvailableQuestions: session.TotalQuestions,
		Lifeline50Used:          session.Lifeline50Used,
		LifelineSkipUsed:        session.LifelineSkipUsed,
	}, nil
}

// SubmitAnswer grades the answer to the session's current question, advances the session and
// records the analytic event.
func (s *GameService) SubmitAnswer(ctx context.Context, actor domain.Actor, sub domain.AnswerSubmission) (domain.AnswerResult, error) {
	if err := validateSubmission(sub); err != nil {
		return domain.AnswerResult{}, err
	}
	session, err := s.openSession(ctx, actor, sub.SessionID)
	if err != nil {
		return domain.AnswerResult{}, err
	}
	category, err := s.categories.GetCategory(ctx, session.CategoryID)
	if err != nil {
		return domain.AnswerResult{}, err
	}
	pool, err := s.categoryPool(ctx, category)
	if err != nil {
		return domain.AnswerResult{}, err
	}

	question, ok := findQuestion(pool, sub.QuestionID)
	if !ok {
		return domain.AnswerResult{}, domain.ErrQuestionNotFound
	}
	if session.CurrentQuestionID != question.ID {
		return domain.AnswerResult{}, domain.ErrQuestionMismatch
	}
	selected, ok := question.OptionByID(sub.SelectedAnswerID)
	if !ok {
		return domain.AnswerResult{}, domain.ErrOptionNotFound
	}
	correct, _ := question.CorrectOption()

	grade := s.scoring.Score(selected.ID == correct.ID, sub.ResponseTimeMs, session.CurrentStreak)
	session.Score += grade.ScoreDelta
	session.CurrentStreak = grade.Streak
	if grade.Streak > session.BestStreak {
		session.BestStreak = grade.Streak
	}
	if grade.Correct {
		session.CorrectCount++
	} else {
		session.WrongCount++
	}
	session.TotalResponseMs += sub.ResponseTimeMs
	session.MarkAsked(question.ID, sub.QuestionColor)

	open, _, err := s.openAsked(ctx, session.UserID, session.CategoryID)
	if err != nil {
		return domain.AnswerResult{}, err
	}
	var next *domain.QuestionView
	if q, ok := s.picker.pickQuestion(eligibleQuestions(pool, open, session.AskedQuestions)); ok {
		view := s.picker.present(q, session.UsedColors)
		session.MarkAsked(q.ID, view.Color)
		session.CurrentQuestionID = q.ID
		next = &view
	} else {
		session.CurrentQuestionID = ""
	}

	if err := s.sessions.UpdateSession(ctx, session); err != nil {
		return domain.AnswerResult{}, err
	}

	user, err := s.users.IncrementStats(ctx, session.UserID, domain.UserStatsDelta{
		Answered: 1,
		Correct:  boolValue(grade.Correct),
		Points:   grade.ScoreDelta,
	})
	if err != nil {
		return domain.AnswerResult{}, fmt.Errorf("increment user stats: %w", err)
	}

	analytic := &domain.AnswerAnalytic{
		ID:                 uuid.NewString(),
		SessionID:          session.ID,
		UserID:             session.UserID,
		QuestionID:         question.ID,
		CategoryID:         question.CategoryID,
		StoreCode:          user.StoreCode,
		SelectedAnswerID:   selected.ID,
		SelectedAnswerText: selected.Text,
		CorrectAnswerID:    correct.ID,
		CorrectAnswerText:  correct.Text,
		IsCorrect:          grade.Correct,
		ResponseTimeMs:     sub.ResponseTimeMs,
		LifelineUsed:       sub.LifelineUsed,
		QuestionColor:      sub.QuestionColor,
		Gender:             question.Gender,
		FitCategory:        question.FitCategory,
		ScoreDelta:         grade.ScoreDelta,
		CreatedAt:          s.now(),
	}
	if err := s.analytics.AppendAnswer(ctx, analytic); err != nil {
		return domain.AnswerResult{}, fmt.Errorf("append answer analytic: %w", err)
	}

	if grade.ScoreDelta > 0 && s.leaderboard != nil {
		if err := s.leaderboard.Record(ctx, user.ID, user.DisplayName, grade.ScoreDelta); err != nil {
			slog.Warn("leaderboard update failed", slog.String("user_id", user.ID), slog.Any("error", err))
		}
	}

	var unlocked []domain.BadgeUnlock
	if s.badges != nil {
		unlocked, err = s.badges.CheckGameBadges(ctx, user, session, analytic)
		if err != nil {
			slog.Warn("badge check failed", slog.String("session_id", session.ID), slog.Any("error", err))
		}
	}

	return domain.AnswerResult{
		IsCorrect:         grade.Correct,
		ScoreDelta:        grade.ScoreDelta,
		NewScore:          session.Score,
		Streak:            session.CurrentStreak,
		CorrectAnswerID:   correct.ID,
		Explanation:       question.Explanation,
		NextQuestion:      next,
		CategoryCompleted: next == nil,
		UnlockedBadges:    newlyUnlocked(unlocked),
	}, nil
}

// UseFiftyFifty hides two wrong options of the current question. The client sends the question as
// it is displayed; when it carries no options the full option set is used.
func (s *GameService) UseFiftyFifty(ctx context.Context, actor domain.Actor, sessionID string, shown domain.QuestionView) (domain.QuestionView, error) {
	if sessionID == "" {
		return domain.QuestionView{}, domain.Invalid("sessionId", "required")
	}
	session, err := s.openSession(ctx, actor, sessionID)
	if err != nil {
		return domain.QuestionView{}, err
	}
	if session.Lifeline50Used {
		return domain.QuestionView{}, domain.ErrLifelineUsed
	}
	if shown.ID == "" {
		shown.ID = session.CurrentQuestionID
	}
	if shown.ID != session.CurrentQuestionID || shown.ID == "" {
		return domain.QuestionView{}, domain.ErrQuestionMismatch
	}

	category, err := s.categories.GetCategory(ctx, session.CategoryID)
	if err != nil {
		return domain.QuestionView{}, err
	}
	pool, err := s.categoryPool(ctx, category)
	if err != nil {
		return domain.QuestionView{}, err
	}
	question, ok := findQuestion(pool, shown.ID)
	if !ok {
		return domain.QuestionView{}, domain.ErrQuestionNotFound
	}

	known := make([]domain.OptionView, 0, len(shown.Options))
	for _, opt := range shown.Options {
		if full, ok := question.OptionByID(opt.ID); ok {
			known = append(known, domain.OptionView{ID: full.ID, Text: full.Text})
		}
	}
	shown.Options = known
	shown.CategoryID = question.CategoryID

	var (
		view   domain.QuestionView
		hidden []string
	)
	s.picker.with(func(r *rand.Rand) { view, hidden = fiftyFifty(question, shown, r) })

	session.Lifeline50Used = true
	if err := s.sessions.UpdateSession(ctx, session); err != nil {
		return domain.QuestionView{}, err
	}
	slog.Debug("fifty-fifty used",
		slog.String("session_id", session.ID),
		slog.Any("hidden", hidden))
	return view, nil
}

// UseSkip replaces the current question without scoring it. The skipped question stays asked.
func (s *GameService) UseSkip(ctx context.Context, actor domain.Actor, sessionID string) (domain.QuestionView, error) {
	if sessionID == "" {
		return domain.QuestionView{}, domain.Invalid("sessionId", "required")
	}
	session, err := s.openSession(ctx, actor, sessionID)
	if err != nil {
		return domain.QuestionView{}, err
	}
	if session.LifelineSkipUsed {
		return domain.QuestionView{}, domain.ErrLifelineUsed
	}

	category, err := s.categories.GetCategory(ctx, session.CategoryID)
	if err != nil {
		return domain.QuestionView{}, err
	}
	pool, err := s.categoryPool(ctx, category)
	if err != nil {
		return domain.QuestionView{}, err
	}
	open, _, err := s.openAsked(ctx, session.UserID, session.CategoryID)
	if err != nil {
		return domain.QuestionView{}, err
	}
	next, ok := s.picker.pickQuestion(eligibleQuestions(pool, open, session.AskedQuestions))
	if !ok {
		return domain.QuestionView{}, domain.ErrNoEligibleQuestion
	}
	view := s.picker.present(next, session.UsedColors)

	if session.CurrentQuestionID != "" {
		session.MarkAsked(session.CurrentQuestionID, "")
	}
	session.MarkAsked(next.ID, view.Color)
	session.CurrentQuestionID = next.ID
	session.LifelineSkipUsed = true
	if err := s.sessions.UpdateSession(ctx, session); err != nil {
		return domain.QuestionView{}, err
	}
	return view, nil
}

// CompleteCategory awards the category's completion badge when the session has covered every
// active question, then clears the session's history so the category can be replayed.
func (s *GameService) CompleteCategory(ctx context.Context, actor domain.Actor, sessionID, userID, categoryID string) (domain.CompletionResult, error) {
	if sessionID == "" {
		return domain.CompletionResult{}, domain.Invalid("sessionId", "required")
	}
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return domain.CompletionResult{}, err
	}
	if userID == "" {
		userID = session.UserID
	}
	if userID != session.UserID || !actor.CanActFor(userID) {
		return domain.CompletionResult{}, domain.ErrForbidden
	}
	if categoryID == "" {
		categoryID = session.CategoryID
	}
	if categoryID != session.CategoryID {
		return domain.CompletionResult{}, domain.Invalid("categoryId", "does not match the session")
	}

	category, err := s.categories.GetCategory(ctx, categoryID)
	if err != nil {
		return domain.CompletionResult{}, err
	}
	pool, err := s.categoryPool(ctx, category)
	if err != nil {
		return domain.CompletionResult{}, err
	}

	// Open sibling sessions exclude their questions from this one, so coverage is judged on
	// everything the user has been shown across them.
	open, siblings, err := s.openAsked(ctx, session.UserID, session.CategoryID)
	if err != nil {
		return domain.CompletionResult{}, err
	}
	result := domain.CompletionResult{CategoryName: category.Name}
	if !covers(activeQuestions(pool), session.AskedQuestions, open) {
		return result, nil
	}

	session.AskedQuestions = []string{}
	session.UsedColors = []string{}
	session.CurrentQuestionID = ""
	if err := s.sessions.UpdateSession(ctx, session); err != nil {
		return domain.CompletionResult{}, err
	}
	for i := range siblings {
		if siblings[i].ID == session.ID {
			continue
		}
		s.releaseSibling(ctx, &siblings[i])
	}
	result.Success = true

	code := completionBadge(category)
	if code == "" || s.badges == nil {
		return result, nil
	}
	unlock, err := s.badges.Award(ctx, userID, code)
	if err != nil {
		return domain.CompletionResult{}, fmt.Errorf("award completion badge %s: %w", code, err)
	}
	result.BadgeAwarded = &unlock
	result.AlreadyUnlocked = !unlock.NewlyUnlocked
	return result, nil
}

// EndGame closes the session, credits its duration as training time and evaluates end-of-game
// badges. Ending an ended session returns its summary again.
func (s *GameService) EndGame(ctx context.Context, actor domain.Actor, sessionID string) (domain.GameEnd, error) {
	if sessionID == "" {
		return domain.GameEnd{}, domain.Invalid("sessionId", "required")
	}
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return domain.GameEnd{}, err
	}
	if !actor.CanActFor(session.UserID) {
		return domain.GameEnd{}, domain.ErrForbidden
	}
	if !session.Open() {
		return gameSummary(session, nil), nil
	}

	endedAt := s.now()
	session.EndedAt = &endedAt
	session.CurrentQuestionID = ""
	if err := s.sessions.UpdateSession(ctx, session); err != nil {
		return domain.GameEnd{}, err
	}

	user, err := s.users.IncrementStats(ctx, session.UserID, domain.UserStatsDelta{
		TrainingSeconds: s.trainingSeconds(session),
	})
	if err != nil {
		return domain.GameEnd{}, fmt.Errorf("increment training time: %w", err)
	}

	var unlocked []domain.BadgeUnlock
	if s.badges != nil {
		unlocked, err = s.badges.Evaluate(ctx, user.ID, EventGameEnd, BadgeFacts{
			Now:     endedAt,
			User:    user,
			Session: session,
		})
		if err != nil {
			slog.Warn("badge check failed", slog.String("session_id", session.ID), slog.Any("error", err))
		}
	}
	return gameSummary(session, newlyUnlocked(unlocked)), nil
}

// trainingSeconds is the session's wall time, capped at the time limit of each answered question.
func (s *GameService) trainingSeconds(session *domain.GameSession) int {
	if session.EndedAt == nil {
		return 0
	}
	elapsed := session.EndedAt.Sub(session.StartedAt)
	if elapsed < 0 {
		return 0
	}
	if s.timeLimit > 0 {
		ceiling := time.Duration(session.AnsweredCount()) * s.timeLimit
		if elapsed > ceiling {
			elapsed = ceiling
		}
	}
	return int(elapsed / time.Second)
}

func (s *GameService) openSession(ctx context.Context, actor domain.Actor, sessionID string) (*domain.GameSession, error) {
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !actor.CanActFor(session.UserID) {
		return nil, domain.ErrForbidden
	}
	if !session.Open() {
		return nil, domain.ErrSessionEnded
	}
	return session, nil
}

// categoryPool returns the questions of a category; the all-categories aggregate unions every
// playable concrete category.
func (s *GameService) categoryPool(ctx context.Context, category domain.QuizCategory) ([]domain.QuestionItem, error) {
	if !category.IsAllCategories {
		return s.questions.CategoryQuestions(ctx, category.ID)
	}
	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	var pool []domain.QuestionItem
	for _, c := range categories {
		if c.IsAllCategories || !c.Playable() {
			continue
		}
		questions, err := s.questions.CategoryQuestions(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		pool = append(pool, questions...)
	}
	return pool, nil
}

func validateSubmission(sub domain.AnswerSubmission) error {
	switch {
	case sub.SessionID == "":
		return domain.Invalid("sessionId", "required")
	case sub.QuestionID == "":
		return domain.Invalid("questionId", "required")
	case sub.SelectedAnswerID == "":
		return domain.Invalid("selectedAnswerId", "required")
	case sub.ResponseTimeMs < 0:
		return domain.Invalid("responseTimeMs", "must not be negative")
	}
	switch sub.LifelineUsed {
	case domain.LifelineNone, domain.LifelineFiftyFifty, domain.LifelineSkip:
		return nil
	}
	return domain.Invalid("lifelineUsed", "unknown lifeline")
}

// covers reports whether every question of the set appears in one of the asked lists.
func covers(questions []domain.QuestionItem, asked ...[]string) bool {
	if len(questions) == 0 {
		return false
	}
	seen := make(map[string]bool)
	for _, ids := range asked {
		for _, id := range ids {
			seen[id] = true
		}
	}
	for _, q := range questions {
		if !seen[q.ID] {
			return false
		}
	}
	return true
}

// openAsked returns the question ids asked in the user's open sessions on the category along
// with those sessions.
func (s *GameService) openAsked(ctx context.Context, userID, categoryID string) ([]string, []domain.GameSession, error) {
	sessions, err := s.sessions.OpenSessions(ctx, userID, categoryID)
	if err != nil {
		return nil, nil, fmt.Errorf("open sessions: %w", err)
	}
	var asked []string
	for _, sess := range sessions {
		asked = append(asked, sess.AskedQuestions...)
	}
	return asked, sessions, nil
}

// releaseSibling clears the history of another open session after a completion, keeping only
// the question it is currently showing. A sibling that keeps changing underneath is left alone.
func (s *GameService) releaseSibling(ctx context.Context, sibling *domain.GameSession) {
	for attempt := 0; attempt < 3; attempt++ {
		sibling.AskedQuestions = []string{}
		sibling.UsedColors = []string{}
		if sibling.CurrentQuestionID != "" {
			sibling.AskedQuestions = append(sibling.AskedQuestions, sibling.CurrentQuestionID)
		}
		err := s.sessions.UpdateSession(ctx, sibling)
		if err == nil {
			return
		}
		if !errors.Is(err, domain.ErrSessionConflict) {
			slog.Warn("sibling session reset failed", slog.String("session_id", sibling.ID), slog.Any("error", err))
			return
		}
		fresh, err := s.sessions.GetSession(ctx, sibling.ID)
		if err != nil || !fresh.Open() {
			return
		}
		*sibling = *fresh
	}
	slog.Warn("sibling session kept changing, left as is", slog.String("session_id", sibling.ID))
}

func completionBadge(category domain.QuizCategory) string {
	if category.CompletionBadgeCode != "" {
		return category.CompletionBadgeCode
	}
	if category.IsAllCategories {
		return AllCategoriesBadgeCode
	}
	return ""
}

func gameSummary(session *domain.GameSession, unlocked []domain.BadgeUnlock) domain.GameEnd {
	out := domain.GameEnd{
		SessionID:      session.ID,
		Score:          session.Score,
		CorrectCount:   session.CorrectCount,
		WrongCount:     session.WrongCount,
		UnlockedBadges: unlocked,
	}
	if session.EndedAt != nil {
		out.EndedAt = *session.EndedAt
		out.DurationSeconds = int(session.EndedAt.Sub(session.StartedAt) / time.Second)
	}
	if out.UnlockedBadges == nil {
		out.UnlockedBadges = []domain.BadgeUnlock{}
	}
	return out
}

func newlyUnlocked(unlocks []domain.BadgeUnlock) []domain.BadgeUnlock {
	out := make([]domain.BadgeUnlock, 0, len(unlocks))
	for _, u := range unlocks {
		if u.NewlyUnlocked {
			out = append(out, u)
		}
	}
	return out
}
