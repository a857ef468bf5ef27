package memory

import (
	"context"

	"mavi-fit-game/internal/app"
	"mavi-fit-game/internal/domain"
)

type answerRow struct {
	answer domain.AnswerAnalytic
	seq    int
}

func (s *Store) AppendAnswer(_ context.Context, answer *domain.AnswerAnalytic) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers = append(s.answers, answerRow{answer: *answer, seq: s.next()})
	return nil
}

func (s *Store) ListAnswers(_ context.Context, filter app.AnalyticsFilter) ([]domain.AnswerAnalytic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.AnswerAnalytic, 0)
	for _, row := range s.answers {
		if matches(row.answer, filter) {
			out = append(out, row.answer)
		}
	}
	return out, nil
}

func (s *Store) RecentSessionAnswers(_ context.Context, sessionID string, limit int) ([]domain.AnswerAnalytic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.AnswerAnalytic, 0, limit)
	for i := len(s.answers) - 1; i >= 0 && len(out) < limit; i-- {
		if s.answers[i].answer.SessionID == sessionID {
			out = append(out, s.answers[i].answer)
		}
	}
	return out, nil
}

func matches(a domain.AnswerAnalytic, f app.AnalyticsFilter) bool {
	switch {
	case f.CategoryID != "" && a.CategoryID != f.CategoryID:
		return false
	case f.StoreCode != "" && a.StoreCode != f.StoreCode:
		return false
	case f.UserID != "" && a.UserID != f.UserID:
		return false
	case !f.Since.IsZero() && a.CreatedAt.Before(f.Since):
		return false
	case !f.Until.IsZero() && !a.CreatedAt.Before(f.Until):
		return false
	}
	return true
}
