package memory

import (
	"context"
	"sort"

	"mavi-fit-game/internal/domain"
)

type pointsRow struct {
	userID      string
	displayName string
	score       int
	seq         int
}

func (s *Store) AddPoints(_ context.Context, userID, displayName string, points int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.points[userID]
	if !ok {
		row = &pointsRow{userID: userID}
		s.points[userID] = row
	}
	if displayName != "" {
		row.displayName = displayName
	}
	row.score += points
	row.seq = s.next()
	return nil
}

// Top ranks by score, earlier scorers first on ties.
func (s *Store) Top(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := make([]pointsRow, 0, len(s.points))
	for _, row := range s.points {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].score != rows[j].score {
			return rows[i].score > rows[j].score
		}
		return rows[i].seq < rows[j].seq
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	out := make([]domain.LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		out = append(out, domain.LeaderboardEntry{
			UserID:      row.userID,
			DisplayName: row.displayName,
			Score:       row.score,
			Rank:        i + 1,
		})
	}
	return out, nil
}

func (s *Store) Remove(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.points, userID)
	return nil
}
