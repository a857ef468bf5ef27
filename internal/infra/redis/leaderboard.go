package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"mavi-fit-game/internal/domain"
)

const (
	leaderboardKey      = "fitgame:leaderboard"
	leaderboardNamesKey = "fitgame:leaderboard:names"
)

// LeaderboardStore keeps cumulative points in a sorted set and display names in a hash.
type LeaderboardStore struct {
	client *redis.Client
}

func NewLeaderboardStore(client *redis.Client) *LeaderboardStore {
	return &LeaderboardStore{client: client}
}

func (r *LeaderboardStore) AddPoints(ctx context.Context, userID, displayName string, points int) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZIncrBy(ctx, leaderboardKey, float64(points), userID)
		pipe.HSet(ctx, leaderboardNamesKey, userID, displayName)
		return nil
	})
	return err
}

// Top returns the highest scores first.
func (r *LeaderboardStore) Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	results, err := r.client.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit)-1).Result()
	if err != nil || len(results) == 0 {
		return nil, err
	}

	ids := make([]string, len(results))
	for i, z := range results {
		ids[i] = z.Member.(string)
	}
	names, err := r.client.HMGet(ctx, leaderboardNamesKey, ids...).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]domain.LeaderboardEntry, len(results))
	for i, z := range results {
		name, _ := names[i].(string)
		entries[i] = domain.LeaderboardEntry{
			UserID:      ids[i],
			DisplayName: name,
			Score:       int(z.Score),
		}
	}
	return entries, nil
}

// Remove drops a player from the board.
func (r *LeaderboardStore) Remove(ctx context.Context, userID string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, leaderboardKey, userID)
		pipe.HDel(ctx, leaderboardNamesKey, userID)
		return nil
	})
	return err
}
