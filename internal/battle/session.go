package battle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/zenvx/CodeBattleCoordService/internal/model"
)

var (
	ErrBattleNotFound = errors.New("battle not found")
	ErrNotParticipant = errors.New("user is not a player in this battle")
	ErrBattleFinished = errors.New("battle already finished")
)

// Store is the realtime home of active battle records.
type Store interface {
	GetBattle(ctx context.Context, battleID string) (*model.Battle, error)
	UpdateBattle(ctx context.Context, battle *model.Battle) error
}

// Archive receives terminal battles for history.
type Archive interface {
	ArchiveBattle(ctx context.Context, battle *model.Battle) error
}

// RatingSink consumes the final outcome once per finished battle.
type RatingSink interface {
	RecordBattleOutcome(ctx context.Context, winner, loser model.User, durationSeconds int64) error
}

// OutcomeSink publishes outcome events for downstream consumers. Fire and
// forget.
type OutcomeSink interface {
	PublishOutcome(event model.OutcomeEvent)
}

// Manager owns 1v1 battle state transitions. A per-battle mutex serializes
// the finish path, so a simultaneous double-finish resolves to
// first-writer-wins instead of the store's accidental update ordering.
type Manager struct {
	store    Store
	archive  Archive
	rating   RatingSink
	outcomes OutcomeSink
	now      func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewManager(store Store, archive Archive, rating RatingSink, outcomes OutcomeSink) *Manager {
	return &Manager{
		store:    store,
		archive:  archive,
		rating:   rating,
		outcomes: outcomes,
		now:      time.Now,
		locks:    make(map[string]*sync.Mutex),
	}
}

func (m *Manager) lockFor(battleID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[battleID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[battleID] = l
	}
	return l
}

func (m *Manager) releaseLock(battleID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, battleID)
}

// SyncCode mirrors a player's editor contents into their slot. Progress and
// finish state are untouched.
func (m *Manager) SyncCode(ctx context.Context, battleID, playerID, code string) error {
	l := m.lockFor(battleID)
	l.Lock()
	defer l.Unlock()

	battle, err := m.store.GetBattle(ctx, battleID)
	if err != nil {
		return ErrBattleNotFound
	}
	slot := battle.SlotOf(playerID)
	if slot == "" {
		return ErrNotParticipant
	}
	if battle.Status == model.BattleFinished {
		return ErrBattleFinished
	}

	battle.PlayerAt(slot).Code = code
	return m.store.UpdateBattle(ctx, battle)
}

// SubmitProgress updates the caller's slot; when finished is set, the same
// call performs the terminal transition: status=finished, winner=caller.
// First finish wins; any later finish attempt gets ErrBattleFinished.
func (m *Manager) SubmitProgress(ctx context.Context, battleID, playerID string, testsPassed int, finished bool) (*model.Battle, error) {
	l := m.lockFor(battleID)
	l.Lock()
	defer l.Unlock()

	battle, err := m.store.GetBattle(ctx, battleID)
	if err != nil {
		return nil, ErrBattleNotFound
	}
	slot := battle.SlotOf(playerID)
	if slot == "" {
		return nil, ErrNotParticipant
	}
	if battle.Status == model.BattleFinished {
		return nil, ErrBattleFinished
	}

	player := battle.PlayerAt(slot)
	player.TestsPassed = testsPassed

	if !finished {
		if err := m.store.UpdateBattle(ctx, battle); err != nil {
			return nil, fmt.Errorf("failed to update battle: %w", err)
		}
		return battle, nil
	}

	player.Finished = true
	battle.Status = model.BattleFinished
	battle.Winner = slot
	battle.FinishedAt = m.now().UnixMilli()
	battle.EndReason = model.EndReasonCompleted
	if err := m.store.UpdateBattle(ctx, battle); err != nil {
		return nil, fmt.Errorf("failed to finish battle: %w", err)
	}

	m.finalize(ctx, battle)
	m.releaseLock(battleID)
	return battle, nil
}

// Forfeit marks the caller forfeited and the opponent as winner. Terminal and
// one-shot, same as a finish.
func (m *Manager) Forfeit(ctx context.Context, battleID, playerID string) (*model.Battle, error) {
	l := m.lockFor(battleID)
	l.Lock()
	defer l.Unlock()

	battle, err := m.store.GetBattle(ctx, battleID)
	if err != nil {
		return nil, ErrBattleNotFound
	}
	slot := battle.SlotOf(playerID)
	if slot == "" {
		return nil, ErrNotParticipant
	}
	if battle.Status == model.BattleFinished {
		return nil, ErrBattleFinished
	}

	battle.PlayerAt(slot).Forfeited = true
	battle.Status = model.BattleFinished
	battle.Winner = model.Opponent(slot)
	battle.FinishedAt = m.now().UnixMilli()
	battle.EndReason = model.EndReasonForfeit
	if err := m.store.UpdateBattle(ctx, battle); err != nil {
		return nil, fmt.Errorf("failed to forfeit battle: %w", err)
	}

	m.finalize(ctx, battle)
	m.releaseLock(battleID)
	return battle, nil
}

// finalize runs the post-finish sequence: rating update, archive, outcome
// event. Caller-enforced call order, not a transaction; a crash mid-sequence
// leaves a finished battle whose stats never updated (accepted gap).
func (m *Manager) finalize(ctx context.Context, battle *model.Battle) {
	winnerSlot := battle.Winner
	winner := battle.PlayerAt(winnerSlot)
	loser := battle.PlayerAt(model.Opponent(winnerSlot))
	duration := (battle.FinishedAt - battle.StartedAt) / 1000

	err := m.rating.RecordBattleOutcome(ctx,
		model.User{ID: winner.ID, Name: winner.Name},
		model.User{ID: loser.ID, Name: loser.Name},
		duration,
	)
	if err != nil {
		log.Printf("[Battle] rating update failed for %s: %v", battle.BattleID, err)
	}

	if m.archive != nil {
		if err := m.archive.ArchiveBattle(ctx, battle); err != nil {
			log.Printf("[Battle] archive failed for %s: %v", battle.BattleID, err)
		}
	}

	if m.outcomes != nil {
		m.outcomes.PublishOutcome(model.OutcomeEvent{
			BattleID:        battle.BattleID,
			WinnerID:        winner.ID,
			LoserID:         loser.ID,
			EndReason:       battle.EndReason,
			DurationSeconds: duration,
			FinishedAt:      battle.FinishedAt,
		})
	}
}
