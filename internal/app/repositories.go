package app

import (
	"context"
	"time"

	"mavi-fit-game/internal/domain"
)

// CategoryRepository stores quiz categories.
type CategoryRepository interface {
	GetCategory(ctx context.Context, id string) (domain.QuizCategory, error)
	ListCategories(ctx context.Context) ([]domain.QuizCategory, error)
	CreateCategory(ctx context.Context, category *domain.QuizCategory) error
	UpdateCategory(ctx context.Context, category *domain.QuizCategory) error
}

// QuestionRepository serves the question set of a category (from cache/backing store).
type QuestionRepository interface {
	CategoryQuestions(ctx context.Context, categoryID string) ([]domain.QuestionItem, error)
	Invalidate(ctx context.Context, categoryID string) error
}

// QuestionStore is the write side of the question catalog.
type QuestionStore interface {
	GetQuestion(ctx context.Context, id string) (domain.QuestionItem, error)
	ListQuestions(ctx context.Context, categoryID string) ([]domain.QuestionItem, error)
	CreateQuestion(ctx context.Context, question *domain.QuestionItem) error
	SetQuestionActive(ctx context.Context, id string, active bool) error
}

// SessionRepository persists game sessions. Update must reject stale versions with
// domain.ErrSessionConflict and bump Version on success.
type SessionRepository interface {
	CreateSession(ctx context.Context, session *domain.GameSession) error
	GetSession(ctx context.Context, id string) (*domain.GameSession, error)
	UpdateSession(ctx context.Context, session *domain.GameSession) error
	// OpenSessions returns the sessions of the user on the category that have not ended,
	// oldest first.
	OpenSessions(ctx context.Context, userID, categoryID string) ([]domain.GameSession, error)
}

// AnalyticsFilter narrows answer analytics.
type AnalyticsFilter struct {
	CategoryID string
	StoreCode  string
	UserID     string
	Since      time.Time
	Until      time.Time
}

// AnalyticsRepository is the append-only answer log.
type AnalyticsRepository interface {
	AppendAnswer(ctx context.Context, answer *domain.AnswerAnalytic) error
	ListAnswers(ctx context.Context, filter AnalyticsFilter) ([]domain.AnswerAnalytic, error)
	// RecentSessionAnswers returns up to limit answers of the session, newest first.
	RecentSessionAnswers(ctx context.Context, sessionID string, limit int) ([]domain.AnswerAnalytic, error)
}

// BadgeRepository stores the badge catalog and per-user progress. SaveProgress must never
// lower CurrentValue nor clear UnlockedAt.
type BadgeRepository interface {
	ListDefinitions(ctx context.Context) ([]domain.BadgeDefinition, error)
	GetDefinition(ctx context.Context, code string) (domain.BadgeDefinition, error)
	UpsertDefinition(ctx context.Context, def *domain.BadgeDefinition) error
	GetProgress(ctx context.Context, userID, code string) (*domain.UserBadgeProgress, error)
	SaveProgress(ctx context.Context, progress *domain.UserBadgeProgress) error
	ListProgress(ctx context.Context, userID string) ([]domain.UserBadgeProgress, error)
}

// UserRepository stores accounts and their cumulative counters.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	// ListUsers returns all users, or only those of storeCode when it is not empty.
	ListUsers(ctx context.Context, storeCode string) ([]domain.User, error)
	RecordLogin(ctx context.Context, id string, streak, longest int, at time.Time) error
	IncrementStats(ctx context.Context, id string, delta domain.UserStatsDelta) (*domain.User, error)
	UpdateRole(ctx context.Context, id string, role domain.Role) error
	// DeleteUser removes the user with its sessions, analytics, badge progress and reports.
	DeleteUser(ctx context.Context, id string) error
}

// ReportRepository stores question error reports.
type ReportRepository interface {
	CreateReport(ctx context.Context, report *domain.ErrorReport) error
	GetReport(ctx context.Context, id string) (*domain.ErrorReport, error)
	ListReports(ctx context.Context, status domain.ReportStatus) ([]domain.ErrorReport, error)
	UpdateReport(ctx context.Context, report *domain.ErrorReport) error
}

// LeaderboardRepository keeps cumulative points per player.
type LeaderboardRepository interface {
	AddPoints(ctx context.Context, userID, displayName string, points int) error
	Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	Remove(ctx context.Context, userID string) error
}
