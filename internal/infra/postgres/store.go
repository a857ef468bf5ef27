package postgres

import (
	"github.com/uptrace/bun"

	"mavi-fit-game/internal/app"
)

// Store implements every app repository on top of Postgres.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

var (
	_ app.CategoryRepository    = (*Store)(nil)
	_ app.QuestionStore         = (*Store)(nil)
	_ app.SessionRepository     = (*Store)(nil)
	_ app.AnalyticsRepository   = (*Store)(nil)
	_ app.BadgeRepository       = (*Store)(nil)
	_ app.UserRepository        = (*Store)(nil)
	_ app.ReportRepository      = (*Store)(nil)
	_ app.LeaderboardRepository = (*Store)(nil)
)
