package postgres

import (
	"context"
	"fmt"

	"mavi-fit-game/internal/domain"
)

func (s *Store) CreateSession(ctx context.Context, session *domain.GameSession) error {
	session.Version = 1
	_, err := s.db.NewInsert().Model(newSessionRow(session)).Exec(ctx)
	if isUniqueViolation(err) {
		return domain.ErrSessionConflict
	}
	return err
}

func (s *Store) GetSession(ctx context.Context, id string) (*domain.GameSession, error) {
	row := new(sessionRow)
	if err := s.db.NewSelect().Model(row).Where("id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(err, domain.ErrSessionNotFound)
	}
	return &row.GameSession, nil
}

// UpdateSession writes the session only if the stored version still matches.
func (s *Store) UpdateSession(ctx context.Context, session *domain.GameSession) error {
	row := newSessionRow(session)
	row.Version = session.Version + 1
	res, err := s.db.NewUpdate().
		Model(row).
		Column(sessionMutableColumns...).
		WherePK().
		Where("version = ?", session.Version).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		exists, err := s.db.NewSelect().Model((*sessionRow)(nil)).Where("id = ?", session.ID).Exists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrSessionNotFound
		}
		return domain.ErrSessionConflict
	}
	session.Version = row.Version
	return nil
}

func (s *Store) OpenSessions(ctx context.Context, userID, categoryID string) ([]domain.GameSession, error) {
	var rows []sessionRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", userID).
		Where("category_id = ?", categoryID).
		Where("ended_at IS NULL").
		OrderExpr("started_at, id").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("open sessions: %w", err)
	}
	out := make([]domain.GameSession, len(rows))
	for i, row := range rows {
		out[i] = row.GameSession
	}
	return out, nil
}

var sessionMutableColumns = []string{
	"score", "total_questions", "lifeline_50_used", "lifeline_skip_used",
	"asked_questions", "used_colors", "current_question_id",
	"current_streak", "best_streak", "correct_count", "wrong_count",
	"total_response_ms", "ended_at", "version",
}

func newSessionRow(session *domain.GameSession) *sessionRow {
	row := &sessionRow{GameSession: *session}
	if row.AskedQuestions == nil {
		row.AskedQuestions = []string{}
	}
	if row.UsedColors == nil {
		row.UsedColors = []string{}
	}
	return row
}
