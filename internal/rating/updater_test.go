package rating

import (
	"context"
	"testing"

	"github.com/zenvx/CodeBattleCoordService/internal/model"
)

type memStatsStore struct {
	stats map[string]*model.UserStats
}

func newMemStatsStore() *memStatsStore {
	return &memStatsStore{stats: make(map[string]*model.UserStats)}
}

func (m *memStatsStore) GetUserStats(ctx context.Context, userID string) (*model.UserStats, error) {
	if s, ok := m.stats[userID]; ok {
		copied := *s
		return &copied, nil
	}
	return &model.UserStats{UserID: userID, Rating: model.InitialRating, Rank: model.RankSilver}, nil
}

func (m *memStatsStore) SaveUserStats(ctx context.Context, stats *model.UserStats) error {
	copied := *stats
	m.stats[stats.UserID] = &copied
	return nil
}

type memBoard struct {
	entries map[string]*model.LeaderboardEntry
}

func (m *memBoard) UpsertEntry(ctx context.Context, entry *model.LeaderboardEntry) error {
	if m.entries == nil {
		m.entries = make(map[string]*model.LeaderboardEntry)
	}
	m.entries[entry.UserID] = entry
	return nil
}

func TestRecordBattleOutcomeUsesPreBattleRatings(t *testing.T) {
	store := newMemStatsStore()
	store.SaveUserStats(context.Background(), &model.UserStats{UserID: "winner", Rating: 1000, Rank: model.RankSilver})
	store.SaveUserStats(context.Background(), &model.UserStats{UserID: "loser", Rating: 1000, Rank: model.RankSilver})

	board := &memBoard{}
	u := NewUpdater(store, board)

	err := u.RecordBattleOutcome(context.Background(),
		model.User{ID: "winner", Name: "W"},
		model.User{ID: "loser", Name: "L"},
		90,
	)
	if err != nil {
		t.Fatalf("RecordBattleOutcome failed: %v", err)
	}

	w, _ := store.GetUserStats(context.Background(), "winner")
	l, _ := store.GetUserStats(context.Background(), "loser")

	// Equal pre-battle ratings and placement K: symmetric +20/-20 deltas.
	if w.Rating != 1020 {
		t.Fatalf("winner rating = %d, want 1020", w.Rating)
	}
	if l.Rating != 980 {
		t.Fatalf("loser rating = %d, want 980", l.Rating)
	}
	if w.Wins != 1 || l.Losses != 1 {
		t.Fatalf("counters wrong: winner wins=%d loser losses=%d", w.Wins, l.Losses)
	}
	if l.Rank != model.RankBronze {
		t.Fatalf("loser dropped below 1000 must be Bronze, got %s", l.Rank)
	}

	// Board projection refreshed for both.
	if board.entries["winner"] == nil || board.entries["winner"].Rating != 1020 {
		t.Fatalf("winner board entry not refreshed: %+v", board.entries["winner"])
	}
	if board.entries["loser"] == nil || board.entries["loser"].Rating != 980 {
		t.Fatalf("loser board entry not refreshed: %+v", board.entries["loser"])
	}
}

func TestRecordOutcomeFillsIdentity(t *testing.T) {
	store := newMemStatsStore()
	u := NewUpdater(store, &memBoard{})

	next, err := u.RecordOutcome(context.Background(), model.User{ID: "u1", Name: "Alice", Avatar: "a.png"}, Outcome{Won: true, DurationSeconds: 45, OpponentRating: 1000})
	if err != nil {
		t.Fatalf("RecordOutcome failed: %v", err)
	}
	if next.UserName != "Alice" || next.Avatar != "a.png" {
		t.Fatalf("identity not denormalized: %+v", next)
	}

	saved, _ := store.GetUserStats(context.Background(), "u1")
	if saved.Battles != 1 || saved.Wins != 1 {
		t.Fatalf("stats not persisted: %+v", saved)
	}
}
