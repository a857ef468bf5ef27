package postgres

import (
	"github.com/uptrace/bun"

	"mavi-fit-game/internal/domain"
)

type userRow struct {
	bun.BaseModel `bun:"table:users,alias:u"`
	domain.User
}

type categoryRow struct {
	bun.BaseModel `bun:"table:quiz_categories,alias:c"`
	domain.QuizCategory
}

type questionRow struct {
	bun.BaseModel `bun:"table:questions,alias:q"`
	domain.QuestionItem
}

type sessionRow struct {
	bun.BaseModel `bun:"table:game_sessions,alias:s"`
	domain.GameSession
}

type answerRow struct {
	bun.BaseModel `bun:"table:answer_analytics,alias:a"`
	domain.AnswerAnalytic
}

type badgeRow struct {
	bun.BaseModel `bun:"table:badge_definitions,alias:b"`
	domain.BadgeDefinition
}

type progressRow struct {
	bun.BaseModel `bun:"table:user_badge_progress,alias:p"`
	domain.UserBadgeProgress
}

type reportRow struct {
	bun.BaseModel `bun:"table:error_reports,alias:r"`
	domain.ErrorReport
}
