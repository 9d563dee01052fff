package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/zenvx/CodeBattleCoordService/internal/model"
)

const rankingKey = "leaderboard"

func entryKey(userID string) string {
	return fmt.Sprintf("leaderboard/%s", userID)
}

// Manager keeps the public leaderboard: a rating-ordered sorted set plus a
// denormalized entry document per user, so ranking and search never touch
// full stats records.
type Manager struct {
	client *redis.Client
}

func NewManager(client *redis.Client) *Manager {
	return &Manager{client: client}
}

// UpsertEntry replaces a user's leaderboard projection and re-scores them in
// the ranking set.
func (m *Manager) UpsertEntry(ctx context.Context, entry *model.LeaderboardEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal leaderboard entry: %w", err)
	}
	if err := m.client.Set(ctx, entryKey(entry.UserID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set leaderboard entry: %w", err)
	}

	err = m.client.ZAdd(ctx, rankingKey, redis.Z{
		Score:  float64(entry.Rating),
		Member: entry.UserID,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to score leaderboard entry: %w", err)
	}
	return nil
}

// Top returns the highest-rated users, rank-filled, best first.
func (m *Manager) Top(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	userIDs, err := m.client.ZRevRange(ctx, rankingKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read ranking: %w", err)
	}

	entries := make([]*model.LeaderboardEntry, 0, len(userIDs))
	for i, userID := range userIDs {
		entry, err := m.GetEntry(ctx, userID)
		if err != nil {
			continue // entry doc lagging behind the ranking set
		}
		entry.Rank = int64(i + 1)
		entries = append(entries, entry)
	}
	return entries, nil
}

func (m *Manager) GetEntry(ctx context.Context, userID string) (*model.LeaderboardEntry, error) {
	data, err := m.client.Get(ctx, entryKey(userID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("leaderboard entry not found for %s", userID)
		}
		return nil, fmt.Errorf("failed to get leaderboard entry: %w", err)
	}

	var entry model.LeaderboardEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal leaderboard entry: %w", err)
	}
	return &entry, nil
}

// GetRank returns a user's 1-based position, or -1 when unranked.
func (m *Manager) GetRank(ctx context.Context, userID string) (int64, error) {
	rank, err := m.client.ZRevRank(ctx, rankingKey, userID).Result()
	if err != nil {
		if err == redis.Nil {
			return -1, nil
		}
		return -1, fmt.Errorf("failed to get rank: %w", err)
	}
	return rank + 1, nil
}
