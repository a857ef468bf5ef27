package app

import (
	"context"
	"sync"
	"time"

	"mavi-fit-game/internal/domain"
)

// DefaultLeaderboardSize is the number of entries pushed to live subscribers.
const DefaultLeaderboardSize = 20

// LeaderboardHub keeps cumulative points in a LeaderboardRepository and fans snapshots out to
// live subscribers.
type LeaderboardHub struct {
	store LeaderboardRepository
	size  int
	now   func() time.Time

	mu          sync.Mutex
	subscribers map[chan domain.Leaderboard]struct{}
}

func NewLeaderboardHub(store LeaderboardRepository, size int) *LeaderboardHub {
	return newLeaderboardHubWithClock(store, size, time.Now)
}

// NewLeaderboardHubWithClock is test-only for deterministic timestamps.
func NewLeaderboardHubWithClock(store LeaderboardRepository, size int, now func() time.Time) *LeaderboardHub {
	return newLeaderboardHubWithClock(store, size, now)
}

func newLeaderboardHubWithClock(store LeaderboardRepository, size int, now func() time.Time) *LeaderboardHub {
	if size <= 0 {
		size = DefaultLeaderboardSize
	}
	return &LeaderboardHub{
		store:       store,
		size:        size,
		now:         now,
		subscribers: make(map[chan domain.Leaderboard]struct{}),
	}
}

// Record adds points to a player and broadcasts the new standings.
func (h *LeaderboardHub) Record(ctx context.Context, userID, displayName string, points int) error {
	if points <= 0 {
		return nil
	}
	if err := h.store.AddPoints(ctx, userID, displayName, points); err != nil {
		return err
	}
	lb, err := h.Top(ctx, h.size)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.broadcastLocked(lb)
	h.mu.Unlock()
	return nil
}

// Remove drops a player, e.g. after account deletion, and broadcasts the new standings.
func (h *LeaderboardHub) Remove(ctx context.Context, userID string) error {
	if err := h.store.Remove(ctx, userID); err != nil {
		return err
	}
	lb, err := h.Top(ctx, h.size)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.broadcastLocked(lb)
	h.mu.Unlock()
	return nil
}

// Top returns the ranked leaderboard.
func (h *LeaderboardHub) Top(ctx context.Context, limit int) (domain.Leaderboard, error) {
	if limit <= 0 {
		limit = h.size
	}
	entries, err := h.store.Top(ctx, limit)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return domain.Leaderboard{Entries: entries, UpdatedAt: h.now()}, nil
}

// Subscribe returns a channel that receives leaderboard snapshots, starting with the current one.
// The caller must invoke the returned cancel function to avoid leaks.
func (h *LeaderboardHub) Subscribe(ctx context.Context) (<-chan domain.Leaderboard, func(), error) {
	initial, err := h.Top(ctx, h.size)
	if err != nil {
		return nil, nil, err
	}
	ch := make(chan domain.Leaderboard, 8)
	ch <- initial

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel, nil
}

// Subscribers reports the number of live subscribers.
func (h *LeaderboardHub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

func (h *LeaderboardHub) broadcastLocked(lb domain.Leaderboard) {
	for ch := range h.subscribers {
		select {
		case ch <- lb:
		default:
			// Slow subscriber: drop its oldest snapshot so broadcast never blocks.
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}
