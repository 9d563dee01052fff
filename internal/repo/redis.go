package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/zenvx/CodeBattleCoordService/internal/model"
)

var (
	ErrNotFound = errors.New("record not found")
)

// RedisRepository is the shared realtime store. Every coordination record
// lives here as a JSON document under a well-known path; there are no
// transactions across paths, so cross-entity consistency is caller-enforced
// call order.
type RedisRepository struct {
	client *redis.Client
}

func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

func presenceKey(userID string) string {
	return fmt.Sprintf("online_players/%s", userID)
}

func queueKey(entryID string) string {
	return fmt.Sprintf("matchmaking/queue/%s", entryID)
}

func challengeKey(userID string) string {
	return fmt.Sprintf("challenges/%s", userID)
}

func battleKey(battleID string) string {
	return fmt.Sprintf("battles/%s", battleID)
}

func lobbyKey(lobbyID string) string {
	return fmt.Sprintf("group_battles/%s", lobbyID)
}

func (r *RedisRepository) setJSON(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return r.client.Set(ctx, key, data, 0).Err()
}

func (r *RedisRepository) getJSON(ctx context.Context, key string, v interface{}) error {
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

// ---- presence ----

func (r *RedisRepository) SetPresence(ctx context.Context, rec *model.PresenceRecord) error {
	return r.setJSON(ctx, presenceKey(rec.UserID), rec)
}

func (r *RedisRepository) GetPresence(ctx context.Context, userID string) (*model.PresenceRecord, error) {
	var rec model.PresenceRecord
	if err := r.getJSON(ctx, presenceKey(userID), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *RedisRepository) DeletePresence(ctx context.Context, userID string) error {
	return r.client.Del(ctx, presenceKey(userID)).Err()
}

// ListPresence returns every presence record, stale ones included. Staleness
// filtering happens at the reader.
func (r *RedisRepository) ListPresence(ctx context.Context) ([]*model.PresenceRecord, error) {
	keys, err := r.client.Keys(ctx, "online_players/*").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list presence keys: %w", err)
	}

	records := make([]*model.PresenceRecord, 0, len(keys))
	for _, key := range keys {
		var rec model.PresenceRecord
		if err := r.getJSON(ctx, key, &rec); err != nil {
			continue // deleted between KEYS and GET
		}
		records = append(records, &rec)
	}
	return records, nil
}

// ---- matchmaking queue ----

func (r *RedisRepository) CreateQueueEntry(ctx context.Context, entry *model.QueueEntry) error {
	return r.setJSON(ctx, queueKey(entry.EntryID), entry)
}

func (r *RedisRepository) GetQueueEntry(ctx context.Context, entryID string) (*model.QueueEntry, error) {
	var entry model.QueueEntry
	if err := r.getJSON(ctx, queueKey(entryID), &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *RedisRepository) UpdateQueueEntry(ctx context.Context, entry *model.QueueEntry) error {
	return r.setJSON(ctx, queueKey(entry.EntryID), entry)
}

// DeleteQueueEntry is idempotent: deleting an already-gone entry is not an
// error.
func (r *RedisRepository) DeleteQueueEntry(ctx context.Context, entryID string) error {
	return r.client.Del(ctx, queueKey(entryID)).Err()
}

func (r *RedisRepository) ListQueueEntries(ctx context.Context) ([]*model.QueueEntry, error) {
	keys, err := r.client.Keys(ctx, "matchmaking/queue/*").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list queue keys: %w", err)
	}

	entries := make([]*model.QueueEntry, 0, len(keys))
	for _, key := range keys {
		var entry model.QueueEntry
		if err := r.getJSON(ctx, key, &entry); err != nil {
			continue
		}
		entries = append(entries, &entry)
	}
	return entries, nil
}

// ---- challenge mailbox ----

// SetChallenge writes the single-slot mailbox unconditionally (last writer
// wins) and notifies subscribers.
func (r *RedisRepository) SetChallenge(ctx context.Context, toID string, ch *model.Challenge) error {
	if err := r.setJSON(ctx, challengeKey(toID), ch); err != nil {
		return err
	}
	return r.publishChallenge(ctx, toID, ch)
}

func (r *RedisRepository) GetChallenge(ctx context.Context, toID string) (*model.Challenge, error) {
	var ch model.Challenge
	if err := r.getJSON(ctx, challengeKey(toID), &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

func (r *RedisRepository) DeleteChallenge(ctx context.Context, toID string) error {
	if err := r.client.Del(ctx, challengeKey(toID)).Err(); err != nil {
		return err
	}
	// nil payload signals deletion to watchers
	return r.client.Publish(ctx, challengeKey(toID), "").Err()
}

func (r *RedisRepository) publishChallenge(ctx context.Context, toID string, ch *model.Challenge) error {
	data, err := json.Marshal(ch)
	if err != nil {
		return fmt.Errorf("failed to marshal challenge notification: %w", err)
	}
	return r.client.Publish(ctx, challengeKey(toID), data).Err()
}

// SubscribeChallenge returns a pub/sub subscription for mailbox changes at
// toID. The caller owns the subscription and must Close it.
func (r *RedisRepository) SubscribeChallenge(ctx context.Context, toID string) *redis.PubSub {
	return r.client.Subscribe(ctx, challengeKey(toID))
}

// WatchChallenge adapts the mailbox subscription to a channel of snapshots.
// A nil element means the mailbox was deleted. The returned stop func
// releases the subscription.
func (r *RedisRepository) WatchChallenge(ctx context.Context, toID string) (<-chan *model.Challenge, func(), error) {
	sub := r.SubscribeChallenge(ctx, toID)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe to mailbox: %w", err)
	}

	out := make(chan *model.Challenge, 8)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			if msg.Payload == "" {
				out <- nil
				continue
			}
			var ch model.Challenge
			if err := json.Unmarshal([]byte(msg.Payload), &ch); err != nil {
				continue
			}
			out <- &ch
		}
	}()

	return out, func() { sub.Close() }, nil
}

// ---- battles ----

func (r *RedisRepository) CreateBattle(ctx context.Context, battle *model.Battle) error {
	return r.setJSON(ctx, battleKey(battle.BattleID), battle)
}

func (r *RedisRepository) GetBattle(ctx context.Context, battleID string) (*model.Battle, error) {
	var battle model.Battle
	if err := r.getJSON(ctx, battleKey(battleID), &battle); err != nil {
		return nil, err
	}
	return &battle, nil
}

func (r *RedisRepository) UpdateBattle(ctx context.Context, battle *model.Battle) error {
	return r.setJSON(ctx, battleKey(battle.BattleID), battle)
}

// ---- lobbies ----

func (r *RedisRepository) CreateLobby(ctx context.Context, lobby *model.Lobby) error {
	return r.setJSON(ctx, lobbyKey(lobby.LobbyID), lobby)
}

func (r *RedisRepository) GetLobby(ctx context.Context, lobbyID string) (*model.Lobby, error) {
	var lobby model.Lobby
	if err := r.getJSON(ctx, lobbyKey(lobbyID), &lobby); err != nil {
		return nil, err
	}
	return &lobby, nil
}

func (r *RedisRepository) UpdateLobby(ctx context.Context, lobby *model.Lobby) error {
	return r.setJSON(ctx, lobbyKey(lobby.LobbyID), lobby)
}

func (r *RedisRepository) DeleteLobby(ctx context.Context, lobbyID string) error {
	return r.client.Del(ctx, lobbyKey(lobbyID)).Err()
}
