package postgres

import (
	"context"

	"mavi-fit-game/internal/domain"
)

// AddPoints is a no-op: IncrementStats already credits users.total_points, which Top reads.
func (s *Store) AddPoints(context.Context, string, string, int) error {
	return nil
}

func (s *Store) Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	var rows []userRow
	err := s.db.NewSelect().
		Model(&rows).
		Column("id", "display_name", "total_points").
		Where("total_points > 0").
		OrderExpr("total_points DESC, created_at ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		out = append(out, domain.LeaderboardEntry{
			UserID:      row.ID,
			DisplayName: row.DisplayName,
			Score:       row.TotalPoints,
			Rank:        i + 1,
		})
	}
	return out, nil
}

// Remove is a no-op; the points live on the user row and go away with it.
func (s *Store) Remove(context.Context, string) error {
	return nil
}
