package battle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zenvx/CodeBattleCoordService/internal/model"
)

type memBattleStore struct {
	battles map[string]*model.Battle
}

func newMemBattleStore() *memBattleStore {
	return &memBattleStore{battles: make(map[string]*model.Battle)}
}

func (m *memBattleStore) GetBattle(ctx context.Context, battleID string) (*model.Battle, error) {
	b, ok := m.battles[battleID]
	if !ok {
		return nil, errors.New("not found")
	}
	copied := *b
	return &copied, nil
}

func (m *memBattleStore) UpdateBattle(ctx context.Context, battle *model.Battle) error {
	copied := *battle
	m.battles[battle.BattleID] = &copied
	return nil
}

type recordingRating struct {
	winnerID string
	loserID  string
	calls    int
}

func (r *recordingRating) RecordBattleOutcome(ctx context.Context, winner, loser model.User, durationSeconds int64) error {
	r.winnerID = winner.ID
	r.loserID = loser.ID
	r.calls++
	return nil
}

type recordingArchive struct {
	archived []*model.Battle
}

func (r *recordingArchive) ArchiveBattle(ctx context.Context, battle *model.Battle) error {
	copied := *battle
	r.archived = append(r.archived, &copied)
	return nil
}

type recordingOutcomes struct {
	events []model.OutcomeEvent
}

func (r *recordingOutcomes) PublishOutcome(event model.OutcomeEvent) {
	r.events = append(r.events, event)
}

func activeBattle() *model.Battle {
	return &model.Battle{
		BattleID:  "b1",
		Player1:   model.BattlePlayer{ID: "u1", Name: "Alice"},
		Player2:   model.BattlePlayer{ID: "u2", Name: "Bob"},
		Status:    model.BattleActive,
		StartedAt: 1000,
	}
}

func newTestManager(store Store) (*Manager, *recordingRating, *recordingArchive, *recordingOutcomes) {
	rating := &recordingRating{}
	archive := &recordingArchive{}
	outcomes := &recordingOutcomes{}
	m := NewManager(store, archive, rating, outcomes)
	m.now = func() time.Time { return time.UnixMilli(61000) }
	return m, rating, archive, outcomes
}

func TestSubmitProgressFinishSetsWinner(t *testing.T) {
	store := newMemBattleStore()
	store.UpdateBattle(context.Background(), activeBattle())
	m, rating, archive, outcomes := newTestManager(store)

	updated, err := m.SubmitProgress(context.Background(), "b1", "u2", 3, true)
	if err != nil {
		t.Fatalf("finish failed: %v", err)
	}

	if updated.Status != model.BattleFinished {
		t.Fatalf("status = %s, want finished", updated.Status)
	}
	if updated.Winner != model.SlotPlayer2 {
		t.Fatalf("winner slot = %s, want player2", updated.Winner)
	}
	if updated.WinnerID() != "u2" {
		t.Fatalf("winner id = %s, want u2", updated.WinnerID())
	}
	if updated.EndReason != model.EndReasonCompleted {
		t.Fatalf("end reason = %s", updated.EndReason)
	}

	if rating.calls != 1 || rating.winnerID != "u2" || rating.loserID != "u1" {
		t.Fatalf("rating recorded wrong: %+v", rating)
	}
	if len(archive.archived) != 1 {
		t.Fatalf("battle not archived")
	}
	if len(outcomes.events) != 1 || outcomes.events[0].WinnerID != "u2" {
		t.Fatalf("outcome event wrong: %+v", outcomes.events)
	}
	if outcomes.events[0].DurationSeconds != 60 {
		t.Fatalf("duration = %d, want 60", outcomes.events[0].DurationSeconds)
	}
}

func TestSecondFinishRejected(t *testing.T) {
	store := newMemBattleStore()
	store.UpdateBattle(context.Background(), activeBattle())
	m, rating, _, _ := newTestManager(store)

	if _, err := m.SubmitProgress(context.Background(), "b1", "u1", 3, true); err != nil {
		t.Fatalf("first finish failed: %v", err)
	}
	if _, err := m.SubmitProgress(context.Background(), "b1", "u2", 3, true); !errors.Is(err, ErrBattleFinished) {
		t.Fatalf("second finish = %v, want ErrBattleFinished", err)
	}

	// Winner is immutable and stats ran once.
	b, _ := store.GetBattle(context.Background(), "b1")
	if b.Winner != model.SlotPlayer1 {
		t.Fatalf("winner changed to %s", b.Winner)
	}
	if rating.calls != 1 {
		t.Fatalf("rating recorded %d times, want 1", rating.calls)
	}
}

func TestForfeitAwardsOpponent(t *testing.T) {
	store := newMemBattleStore()
	store.UpdateBattle(context.Background(), activeBattle())
	m, rating, _, _ := newTestManager(store)

	updated, err := m.Forfeit(context.Background(), "b1", "u1")
	if err != nil {
		t.Fatalf("forfeit failed: %v", err)
	}

	if updated.Winner != model.SlotPlayer2 {
		t.Fatalf("forfeit winner = %s, want the opponent", updated.Winner)
	}
	if updated.WinnerID() == "" {
		t.Fatalf("finished battle must always have a winner")
	}
	if updated.EndReason != model.EndReasonForfeit {
		t.Fatalf("end reason = %s, want forfeit", updated.EndReason)
	}
	if !updated.Player1.Forfeited {
		t.Fatalf("forfeiting player not flagged")
	}
	if rating.winnerID != "u2" || rating.loserID != "u1" {
		t.Fatalf("rating winner/loser wrong: %+v", rating)
	}
}

func TestProgressWithoutFinishKeepsBattleActive(t *testing.T) {
	store := newMemBattleStore()
	store.UpdateBattle(context.Background(), activeBattle())
	m, rating, archive, _ := newTestManager(store)

	updated, err := m.SubmitProgress(context.Background(), "b1", "u1", 2, false)
	if err != nil {
		t.Fatalf("progress failed: %v", err)
	}
	if updated.Status != model.BattleActive {
		t.Fatalf("progress must not finish the battle")
	}
	if updated.Player1.TestsPassed != 2 {
		t.Fatalf("tests passed = %d, want 2", updated.Player1.TestsPassed)
	}
	if rating.calls != 0 || len(archive.archived) != 0 {
		t.Fatalf("finalize ran on a non-terminal update")
	}
}

func TestNonParticipantRejected(t *testing.T) {
	store := newMemBattleStore()
	store.UpdateBattle(context.Background(), activeBattle())
	m, _, _, _ := newTestManager(store)

	if _, err := m.SubmitProgress(context.Background(), "b1", "intruder", 1, false); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("stranger update = %v, want ErrNotParticipant", err)
	}
	if err := m.SyncCode(context.Background(), "b1", "intruder", "x"); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("stranger sync = %v, want ErrNotParticipant", err)
	}
}
