package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mavi-fit-game/internal/domain"
)

// Badge event types accepted by Check.
const (
	EventAnswer  = "answer"
	EventGameEnd = "game_end"
	EventLogin   = "login"
	EventProfile = "profile"
)

var eventUnlockTypes = map[string]map[string]bool{
	EventAnswer: {
		UnlockSessionStreak:   true,
		UnlockAvgResponseMs:   true,
		UnlockTotalAnswers:    true,
		UnlockTotalPoints:     true,
		UnlockNightOwl:        true,
		UnlockLifelineFail:    true,
		UnlockLastSecond:      true,
		UnlockLightningStreak: true,
	},
	EventGameEnd: {
		UnlockAvgResponseMs:   true,
		UnlockTotalPoints:     true,
		UnlockTrainingMinutes: true,
		UnlockPerfectGame:     true,
	},
	EventLogin: {
		UnlockLoginStreak: true,
	},
	EventProfile: {
		UnlockTotalAnswers:    true,
		UnlockTotalPoints:     true,
		UnlockTrainingMinutes: true,
		UnlockLoginStreak:     true,
	},
}

// BadgeRules holds the thresholds of the secret badges.
type BadgeRules struct {
	NightStartHour      int
	NightEndHour        int
	Location            *time.Location
	QuestionTimeLimitMs int64
	LastSecondMs        int64
	LightningCount      int
	LightningWindowMs   int64
	PerfectGameMin      int
	SpeedMinAnswers     int
}

// DefaultBadgeRules mirrors the documented defaults.
func DefaultBadgeRules() BadgeRules {
	return BadgeRules{
		NightStartHour:      0,
		NightEndHour:        5,
		Location:            time.UTC,
		QuestionTimeLimitMs: 30000,
		LastSecondMs:        1000,
		LightningCount:      5,
		LightningWindowMs:   15000,
		PerfectGameMin:      10,
		SpeedMinAnswers:     10,
	}
}

// BadgeFacts is everything a rule may look at during one evaluation.
type BadgeFacts struct {
	Now           time.Time
	User          *domain.User
	Session       *domain.GameSession
	LastAnswer    *domain.AnswerAnalytic
	RecentAnswers []domain.AnswerAnalytic // newest first
}

// EventData is the client-supplied payload of a badge check.
type EventData struct {
	SessionID string `json:"sessionId"`
}

// BadgeEngine evaluates the badge catalog against facts and records progress.
type BadgeEngine struct {
	badges    BadgeRepository
	users     UserRepository
	sessions  SessionRepository
	analytics AnalyticsRepository
	rules     BadgeRules
	now       func() time.Time
}

func NewBadgeEngine(badges BadgeRepository, users UserRepository, sessions SessionRepository, analytics AnalyticsRepository, rules BadgeRules) *BadgeEngine {
	if rules.Location == nil {
		rules.Location = time.UTC
	}
	return &BadgeEngine{
		badges:    badges,
		users:     users,
		sessions:  sessions,
		analytics: analytics,
		rules:     rules,
		now:       time.Now,
	}
}

// WithClock is test-only for deterministic unlock timestamps.
func (e *BadgeEngine) WithClock(now func() time.Time) *BadgeEngine {
	e.now = now
	return e
}

// Check loads the facts for an event and evaluates it for userID.
func (e *BadgeEngine) Check(ctx context.Context, actor domain.Actor, userID, eventType string, data EventData) ([]domain.BadgeUnlock, error) {
	if !actor.CanActFor(userID) {
		return nil, domain.ErrForbidden
	}
	if _, ok := eventUnlockTypes[eventType]; !ok {
		return nil, domain.ErrUnknownEvent
	}

	user, err := e.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	facts := BadgeFacts{Now: e.now(), User: user}

	if eventType == EventAnswer || eventType == EventGameEnd {
		if data.SessionID == "" {
			return nil, domain.Invalid("eventData.sessionId", "required")
		}
		session, err := e.sessions.GetSession(ctx, data.SessionID)
		if err != nil {
			return nil, err
		}
		if session.UserID != userID {
			return nil, domain.ErrForbidden
		}
		if eventType == EventGameEnd && session.Open() {
			return nil, domain.Invalid("eventData.sessionId", "session has not ended")
		}
		facts.Session = session
		recent, err := e.analytics.RecentSessionAnswers(ctx, session.ID, e.recentWindow())
		if err != nil {
			return nil, err
		}
		facts.RecentAnswers = recent
		if len(recent) > 0 {
			facts.LastAnswer = &recent[0]
		}
	}
	return e.Evaluate(ctx, userID, eventType, facts)
}

// CheckGameBadges evaluates the answer-time rules for a session the caller already loaded.
func (e *BadgeEngine) CheckGameBadges(ctx context.Context, user *domain.User, session *domain.GameSession, last *domain.AnswerAnalytic) ([]domain.BadgeUnlock, error) {
	recent, err := e.analytics.RecentSessionAnswers(ctx, session.ID, e.recentWindow())
	if err != nil {
		return nil, err
	}
	return e.Evaluate(ctx, user.ID, EventAnswer, BadgeFacts{
		Now:           e.now(),
		User:          user,
		Session:       session,
		LastAnswer:    last,
		RecentAnswers: recent,
	})
}

func (e *BadgeEngine) recentWindow() int {
	if e.rules.LightningCount > 0 {
		return e.rules.LightningCount
	}
	return 1
}

// Evaluate runs every rule bound to eventType. Progress is read once per badge code, only
// ever raised, and a badge is unlocked at most once.
func (e *BadgeEngine) Evaluate(ctx context.Context, userID, eventType string, facts BadgeFacts) ([]domain.BadgeUnlock, error) {
	types, ok := eventUnlockTypes[eventType]
	if !ok {
		return nil, domain.ErrUnknownEvent
	}
	if facts.Now.IsZero() {
		facts.Now = e.now()
	}

	defs, err := e.badges.ListDefinitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list badge definitions: %w", err)
	}

	var unlocks []domain.BadgeUnlock
	for _, def := range defs {
		if !types[def.UnlockType] {
			continue
		}
		value, applicable := e.progressValue(def, facts)
		if !applicable {
			continue
		}
		unlock, reached, err := e.apply(ctx, userID, def, value, facts.Now)
		if err != nil {
			return unlocks, err
		}
		if reached {
			unlocks = append(unlocks, unlock)
		}
	}
	return unlocks, nil
}

// Award unlocks a one-shot badge directly, used by category completion.
func (e *BadgeEngine) Award(ctx context.Context, userID, code string) (domain.BadgeUnlock, error) {
	def, err := e.badges.GetDefinition(ctx, code)
	if err != nil {
		return domain.BadgeUnlock{}, err
	}
	unlock, _, err := e.apply(ctx, userID, def, targetValue(def), e.now())
	return unlock, err
}

func (e *BadgeEngine) apply(ctx context.Context, userID string, def domain.BadgeDefinition, value int, now time.Time) (domain.BadgeUnlock, bool, error) {
	progress, err := e.badges.GetProgress(ctx, userID, def.Code)
	if err != nil {
		return domain.BadgeUnlock{}, false, fmt.Errorf("get badge progress %s: %w", def.Code, err)
	}
	if progress == nil {
		if value <= 0 {
			return domain.BadgeUnlock{}, false, nil
		}
		progress = &domain.UserBadgeProgress{UserID: userID, BadgeCode: def.Code}
	}

	changed := false
	if value > progress.CurrentValue {
		progress.CurrentValue = value
		changed = true
	}

	target := targetValue(def)
	reached := progress.CurrentValue >= target
	newly := false
	if reached && !progress.Unlocked() {
		unlockedAt := now
		progress.UnlockedAt = &unlockedAt
		if def.Tier > progress.TierUnlocked {
			progress.TierUnlocked = def.Tier
		}
		newly = true
		changed = true
	}

	if changed {
		progress.UpdatedAt = now
		if err := e.badges.SaveProgress(ctx, progress); err != nil {
			return domain.BadgeUnlock{}, false, fmt.Errorf("save badge progress %s: %w", def.Code, err)
		}
	}
	if newly {
		slog.Info("badge unlocked",
			slog.String("user_id", userID),
			slog.String("badge", def.Code),
			slog.Int("tier", def.Tier))
	}

	unlock := domain.BadgeUnlock{Badge: def, Progress: *progress, NewlyUnlocked: newly}
	if newly {
		unlock.Message = celebrationMessage(def)
	}
	return unlock, reached, nil
}

// targetValue is the progress value at which the badge unlocks. Pass/fail rules count to 1.
func targetValue(def domain.BadgeDefinition) int {
	switch def.UnlockType {
	case UnlockSessionStreak, UnlockTotalAnswers, UnlockTotalPoints, UnlockLoginStreak, UnlockTrainingMinutes:
		if def.UnlockValue > 0 {
			return def.UnlockValue
		}
	}
	return 1
}

func (e *BadgeEngine) progressValue(def domain.BadgeDefinition, f BadgeFacts) (int, bool) {
	switch def.UnlockType {
	case UnlockSessionStreak:
		if f.Session == nil {
			return 0, false
		}
		return f.Session.BestStreak, true
	case UnlockAvgResponseMs:
		if f.Session == nil {
			return 0, false
		}
		if f.Session.AnsweredCount() >= e.rules.SpeedMinAnswers && f.Session.MeanResponseMs() <= int64(def.UnlockValue) {
			return 1, true
		}
		return 0, true
	case UnlockTotalAnswers:
		return userValue(f.User, func(u *domain.User) int { return u.TotalAnswered })
	case UnlockTotalPoints:
		return userValue(f.User, func(u *domain.User) int { return u.TotalPoints })
	case UnlockLoginStreak:
		return userValue(f.User, func(u *domain.User) int { return u.LoginStreak })
	case UnlockTrainingMinutes:
		return userValue(f.User, func(u *domain.User) int { return u.TrainingSeconds / 60 })
	case UnlockPerfectGame:
		if f.Session == nil {
			return 0, false
		}
		return boolValue(f.Session.AnsweredCount() >= e.rules.PerfectGameMin && f.Session.WrongCount == 0), true
	case UnlockNightOwl:
		at := f.Now
		if f.LastAnswer != nil && !f.LastAnswer.CreatedAt.IsZero() {
			at = f.LastAnswer.CreatedAt
		}
		return boolValue(e.inNightWindow(at)), true
	case UnlockLifelineFail:
		if f.LastAnswer == nil {
			return 0, false
		}
		return boolValue(f.LastAnswer.LifelineUsed == domain.LifelineFiftyFifty && !f.LastAnswer.IsCorrect), true
	case UnlockLastSecond:
		if f.LastAnswer == nil {
			return 0, false
		}
		remaining := e.rules.QuestionTimeLimitMs - f.LastAnswer.ResponseTimeMs
		return boolValue(f.LastAnswer.IsCorrect && remaining >= 0 && remaining <= e.rules.LastSecondMs), true
	case UnlockLightningStreak:
		return boolValue(e.lightning(f.RecentAnswers)), true
	}
	return 0, false
}

func (e *BadgeEngine) inNightWindow(at time.Time) bool {
	hour := at.In(e.rules.Location).Hour()
	start, end := e.rules.NightStartHour, e.rules.NightEndHour
	if start <= end {
		return hour >= start && hour < end
	}
	return hour >= start || hour < end
}

// lightning reports whether the newest LightningCount answers were all correct and together
// took no more than LightningWindowMs.
func (e *BadgeEngine) lightning(recent []domain.AnswerAnalytic) bool {
	n := e.rules.LightningCount
	if n <= 0 || len(recent) < n {
		return false
	}
	var total int64
	for _, a := range recent[:n] {
		if !a.IsCorrect {
			return false
		}
		total += a.ResponseTimeMs
	}
	return total <= e.rules.LightningWindowMs
}

// UserBadges lists the catalog with the user's progress; hidden badges stay masked until unlocked.
func (e *BadgeEngine) UserBadges(ctx context.Context, actor domain.Actor, userID string) ([]domain.BadgeUnlock, error) {
	if !actor.CanActFor(userID) {
		return nil, domain.ErrForbidden
	}
	defs, err := e.badges.ListDefinitions(ctx)
	if err != nil {
		return nil, err
	}
	progress, err := e.badges.ListProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]domain.UserBadgeProgress, len(progress))
	for _, p := range progress {
		byCode[p.BadgeCode] = p
	}

	out := make([]domain.BadgeUnlock, 0, len(defs))
	for _, def := range defs {
		p, ok := byCode[def.Code]
		if !ok {
			p = domain.UserBadgeProgress{UserID: userID, BadgeCode: def.Code}
		}
		if def.IsHidden && !p.Unlocked() {
			def.Name = "???"
			def.Description = ""
		}
		out = append(out, domain.BadgeUnlock{Badge: def, Progress: p})
	}
	return out, nil
}

// SeedCatalog upserts the default catalog.
func (e *BadgeEngine) SeedCatalog(ctx context.Context) error {
	for _, def := range DefaultBadgeCatalog() {
		def := def
		if err := e.badges.UpsertDefinition(ctx, &def); err != nil {
			return fmt.Errorf("seed badge %s: %w", def.Code, err)
		}
	}
	return nil
}

func celebrationMessage(def domain.BadgeDefinition) string {
	return fmt.Sprintf("Tebrikler! %q rozetini kazandın!", def.Name)
}

func userValue(u *domain.User, get func(*domain.User) int) (int, bool) {
	if u == nil {
		return 0, false
	}
	return get(u), true
}

func boolValue(b bool) int {
	if b {
		return 1
	}
	return 0
}
