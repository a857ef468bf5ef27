package memory

import (
	"context"
	"sort"

	"mavi-fit-game/internal/domain"
)

type sessionRow struct {
	session domain.GameSession
	seq     int
}

func (s *Store) CreateSession(_ context.Context, session *domain.GameSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; ok {
		return domain.ErrSessionConflict
	}
	session.Version = 1
	s.sessions[session.ID] = sessionRow{session: cloneSession(*session), seq: s.next()}
	return nil
}

func (s *Store) GetSession(_ context.Context, id string) (*domain.GameSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	session := cloneSession(row.session)
	return &session, nil
}

// UpdateSession stores the session only if nobody wrote it since it was read.
func (s *Store) UpdateSession(_ context.Context, session *domain.GameSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.sessions[session.ID]
	if !ok {
		return domain.ErrSessionNotFound
	}
	if row.session.Version != session.Version {
		return domain.ErrSessionConflict
	}
	session.Version++
	row.session = cloneSession(*session)
	s.sessions[session.ID] = row
	return nil
}

func (s *Store) OpenSessions(_ context.Context, userID, categoryID string) ([]domain.GameSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var rows []sessionRow
	for _, row := range s.sessions {
		sess := row.session
		if sess.UserID != userID || sess.CategoryID != categoryID || !sess.Open() {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	out := make([]domain.GameSession, len(rows))
	for i, row := range rows {
		out[i] = cloneSession(row.session)
	}
	return out, nil
}

func cloneSession(sess domain.GameSession) domain.GameSession {
	sess.AskedQuestions = cloneStrings(sess.AskedQuestions)
	sess.UsedColors = cloneStrings(sess.UsedColors)
	if sess.EndedAt != nil {
		ended := *sess.EndedAt
		sess.EndedAt = &ended
	}
	return sess
}
