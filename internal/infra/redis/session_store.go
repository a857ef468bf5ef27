package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"mavi-fit-game/internal/domain"
)

// SessionStore keeps game sessions in Redis so several API instances can share them.
//
//	fitgame:session:{id}                     JSON session, EX ttl
//	fitgame:open:{userID}:{categoryID}       SET of open session ids
//
// Updates are compare-and-set on the Version field using WATCH/MULTI.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) CreateSession(ctx context.Context, session *domain.GameSession) error {
	session.Version = 1
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	created, err := s.client.SetNX(ctx, sessionKey(session.ID), payload, s.ttl).Result()
	if err != nil {
		return err
	}
	if !created {
		return domain.ErrSessionConflict
	}
	if session.Open() {
		pipe := s.client.TxPipeline()
		pipe.SAdd(ctx, openKey(session.UserID, session.CategoryID), session.ID)
		if s.ttl > 0 {
			pipe.Expire(ctx, openKey(session.UserID, session.CategoryID), s.ttl)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("index open session: %w", err)
		}
	}
	return nil
}

func (s *SessionStore) GetSession(ctx context.Context, id string) (*domain.GameSession, error) {
	raw, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var session domain.GameSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &session, nil
}

// UpdateSession stores the session only if nobody wrote it since it was read.
func (s *SessionStore) UpdateSession(ctx context.Context, session *domain.GameSession) error {
	key := sessionKey(session.ID)
	next := *session
	next.Version++

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return domain.ErrSessionNotFound
		}
		if err != nil {
			return err
		}
		var stored domain.GameSession
		if err := json.Unmarshal(raw, &stored); err != nil {
			return err
		}
		if stored.Version != session.Version {
			return domain.ErrSessionConflict
		}
		payload, err := json.Marshal(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, s.ttl)
			if !next.Open() {
				pipe.SRem(ctx, openKey(next.UserID, next.CategoryID), next.ID)
			}
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return domain.ErrSessionConflict
	}
	if err != nil {
		return err
	}
	session.Version = next.Version
	return nil
}

func (s *SessionStore) OpenSessions(ctx context.Context, userID, categoryID string) ([]domain.GameSession, error) {
	index := openKey(userID, categoryID)
	ids, err := s.client.SMembers(ctx, index).Result()
	if err != nil || len(ids) == 0 {
		return nil, err
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = sessionKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	var out []domain.GameSession
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// expired session, drop it from the index
			s.client.SRem(ctx, index, ids[i])
			continue
		}
		var session domain.GameSession
		if err := json.Unmarshal([]byte(raw), &session); err != nil || !session.Open() {
			continue
		}
		out = append(out, session)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out, nil
}

func sessionKey(id string) string {
	return "fitgame:session:" + id
}

func openKey(userID, categoryID string) string {
	return "fitgame:open:" + userID + ":" + categoryID
}
