package memory

import (
	"context"
	"sort"
	"time"

	"mavi-fit-game/internal/domain"
)

type userRow struct {
	user domain.User
	seq  int
}

func (s *Store) CreateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.users {
		if row.user.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	s.users[user.ID] = userRow{user: cloneUser(*user), seq: s.next()}
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u := cloneUser(row.user)
	return &u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, row := range s.users {
		if row.user.Email == email {
			u := cloneUser(row.user)
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *Store) ListUsers(_ context.Context, storeCode string) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := make([]userRow, 0, len(s.users))
	for _, row := range s.users {
		if storeCode == "" || row.user.StoreCode == storeCode {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	out := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, cloneUser(row.user))
	}
	return out, nil
}

func (s *Store) RecordLogin(_ context.Context, id string, streak, longest int, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	row.user.LoginStreak = streak
	row.user.LongestLoginStreak = longest
	row.user.LastLoginAt = &at
	s.users[id] = row
	return nil
}

func (s *Store) IncrementStats(_ context.Context, id string, delta domain.UserStatsDelta) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	row.user.TotalAnswered += delta.Answered
	row.user.TotalCorrect += delta.Correct
	row.user.TotalPoints += delta.Points
	row.user.TrainingSeconds += delta.TrainingSeconds
	s.users[id] = row
	u := cloneUser(row.user)
	return &u, nil
}

func (s *Store) UpdateRole(_ context.Context, id string, role domain.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	row.user.Role = role
	s.users[id] = row
	return nil
}

// DeleteUser removes the user together with its sessions, answers, badge progress, reports
// and leaderboard entry.
func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(s.users, id)
	for sid, row := range s.sessions {
		if row.session.UserID == id {
			delete(s.sessions, sid)
		}
	}
	kept := s.answers[:0]
	for _, row := range s.answers {
		if row.answer.UserID != id {
			kept = append(kept, row)
		}
	}
	s.answers = kept
	for key := range s.progress {
		if key.userID == id {
			delete(s.progress, key)
		}
	}
	for rid, row := range s.reports {
		if row.report.UserID == id {
			delete(s.reports, rid)
		}
	}
	delete(s.points, id)
	return nil
}

func cloneUser(u domain.User) domain.User {
	if u.LastLoginAt != nil {
		at := *u.LastLoginAt
		u.LastLoginAt = &at
	}
	return u
}
