package postgres

import (
	"context"
	"fmt"

	"mavi-fit-game/internal/app"
	"mavi-fit-game/internal/domain"
)

func (s *Store) AppendAnswer(ctx context.Context, answer *domain.AnswerAnalytic) error {
	_, err := s.db.NewInsert().Model(&answerRow{AnswerAnalytic: *answer}).Exec(ctx)
	return err
}

func (s *Store) ListAnswers(ctx context.Context, filter app.AnalyticsFilter) ([]domain.AnswerAnalytic, error) {
	var rows []answerRow
	q := s.db.NewSelect().Model(&rows).OrderExpr("seq ASC")
	if filter.CategoryID != "" {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.StoreCode != "" {
		q = q.Where("store_code = ?", filter.StoreCode)
	}
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if !filter.Since.IsZero() {
		q = q.Where("created_at >= ?", filter.Since)
	}
	if !filter.Until.IsZero() {
		q = q.Where("created_at < ?", filter.Until)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	return answers(rows), nil
}

func (s *Store) RecentSessionAnswers(ctx context.Context, sessionID string, limit int) ([]domain.AnswerAnalytic, error) {
	var rows []answerRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("session_id = ?", sessionID).
		OrderExpr("seq DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return answers(rows), nil
}

func answers(rows []answerRow) []domain.AnswerAnalytic {
	out := make([]domain.AnswerAnalytic, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.AnswerAnalytic)
	}
	return out
}
