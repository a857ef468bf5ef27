package postgres

import (
	"context"
	"database/sql"
	"errors"

	"mavi-fit-game/internal/domain"
)

func (s *Store) ListDefinitions(ctx context.Context) ([]domain.BadgeDefinition, error) {
	var rows []badgeRow
	if err := s.db.NewSelect().Model(&rows).OrderExpr("seq ASC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]domain.BadgeDefinition, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.BadgeDefinition)
	}
	return out, nil
}

func (s *Store) GetDefinition(ctx context.Context, code string) (domain.BadgeDefinition, error) {
	row := new(badgeRow)
	if err := s.db.NewSelect().Model(row).Where("code = ?", code).Scan(ctx); err != nil {
		return domain.BadgeDefinition{}, notFound(err, domain.ErrBadgeNotFound)
	}
	return row.BadgeDefinition, nil
}

func (s *Store) UpsertDefinition(ctx context.Context, def *domain.BadgeDefinition) error {
	_, err := s.db.NewInsert().
		Model(&badgeRow{BadgeDefinition: *def}).
		On("CONFLICT (code) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("description = EXCLUDED.description").
		Set("category = EXCLUDED.category").
		Set("tier = EXCLUDED.tier").
		Set("unlock_type = EXCLUDED.unlock_type").
		Set("unlock_value = EXCLUDED.unlock_value").
		Set("is_hidden = EXCLUDED.is_hidden").
		Exec(ctx)
	return err
}

// GetProgress returns nil without error when the user has no row for the badge yet.
func (s *Store) GetProgress(ctx context.Context, userID, code string) (*domain.UserBadgeProgress, error) {
	row := new(progressRow)
	err := s.db.NewSelect().Model(row).Where("user_id = ?", userID).Where("badge_code = ?", code).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row.UserBadgeProgress, nil
}

// SaveProgress upserts progress; the stored value only grows and an unlock is never cleared.
func (s *Store) SaveProgress(ctx context.Context, progress *domain.UserBadgeProgress) error {
	_, err := s.db.NewInsert().
		Model(&progressRow{UserBadgeProgress: *progress}).
		On("CONFLICT (user_id, badge_code) DO UPDATE").
		Set("current_value = GREATEST(p.current_value, EXCLUDED.current_value)").
		Set("tier_unlocked = GREATEST(p.tier_unlocked, EXCLUDED.tier_unlocked)").
		Set("unlocked_at = COALESCE(p.unlocked_at, EXCLUDED.unlocked_at)").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *Store) ListProgress(ctx context.Context, userID string) ([]domain.UserBadgeProgress, error) {
	var rows []progressRow
	if err := s.db.NewSelect().Model(&rows).Where("user_id = ?", userID).OrderExpr("badge_code ASC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]domain.UserBadgeProgress, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.UserBadgeProgress)
	}
	return out, nil
}
