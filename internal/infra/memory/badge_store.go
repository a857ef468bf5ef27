package memory

import (
	"context"
	"sort"

	"mavi-fit-game/internal/domain"
)

type badgeRow struct {
	def domain.BadgeDefinition
	seq int
}

type progressKey struct {
	userID string
	code   string
}

type progressRow struct {
	progress domain.UserBadgeProgress
}

func (s *Store) ListDefinitions(_ context.Context) ([]domain.BadgeDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := make([]badgeRow, 0, len(s.badges))
	for _, row := range s.badges {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	out := make([]domain.BadgeDefinition, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.def)
	}
	return out, nil
}

func (s *Store) GetDefinition(_ context.Context, code string) (domain.BadgeDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.badges[code]
	if !ok {
		return domain.BadgeDefinition{}, domain.ErrBadgeNotFound
	}
	return row.def, nil
}

func (s *Store) UpsertDefinition(_ context.Context, def *domain.BadgeDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.badges[def.Code]
	if !ok {
		row.seq = s.next()
	}
	row.def = *def
	s.badges[def.Code] = row
	return nil
}

func (s *Store) GetProgress(_ context.Context, userID, code string) (*domain.UserBadgeProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.progress[progressKey{userID, code}]
	if !ok {
		return nil, nil
	}
	p := cloneProgress(row.progress)
	return &p, nil
}

// SaveProgress merges the record monotonically: the counter and tier only grow and an unlock
// time, once set, is kept.
func (s *Store) SaveProgress(_ context.Context, progress *domain.UserBadgeProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := progressKey{progress.UserID, progress.BadgeCode}
	row, ok := s.progress[key]
	if !ok {
		s.progress[key] = progressRow{progress: cloneProgress(*progress)}
		return nil
	}
	cur := row.progress
	if progress.CurrentValue > cur.CurrentValue {
		cur.CurrentValue = progress.CurrentValue
	}
	if progress.TierUnlocked > cur.TierUnlocked {
		cur.TierUnlocked = progress.TierUnlocked
	}
	if cur.UnlockedAt == nil && progress.UnlockedAt != nil {
		at := *progress.UnlockedAt
		cur.UnlockedAt = &at
	}
	cur.UpdatedAt = progress.UpdatedAt
	s.progress[key] = progressRow{progress: cur}
	return nil
}

func (s *Store) ListProgress(_ context.Context, userID string) ([]domain.UserBadgeProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.UserBadgeProgress, 0)
	for key, row := range s.progress {
		if key.userID == userID {
			out = append(out, cloneProgress(row.progress))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BadgeCode < out[j].BadgeCode })
	return out, nil
}

func cloneProgress(p domain.UserBadgeProgress) domain.UserBadgeProgress {
	if p.UnlockedAt != nil {
		at := *p.UnlockedAt
		p.UnlockedAt = &at
	}
	return p
}
