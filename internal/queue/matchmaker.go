package queue

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/zenvx/CodeBattleCoordService/internal/model"
)

var (
	ErrEntryNotFound  = errors.New("queue entry not found")
	ErrSearchTimeout  = errors.New("no opponent found within the search window")
	ErrAlreadyWaiting = errors.New("user already has a waiting entry")
)

// Store is the slice of the realtime store the matchmaker needs. Battle
// creation lives here too because the matching party materializes the battle
// before flipping either entry to matched.
type Store interface {
	CreateQueueEntry(ctx context.Context, entry *model.QueueEntry) error
	GetQueueEntry(ctx context.Context, entryID string) (*model.QueueEntry, error)
	UpdateQueueEntry(ctx context.Context, entry *model.QueueEntry) error
	DeleteQueueEntry(ctx context.Context, entryID string) error
	ListQueueEntries(ctx context.Context) ([]*model.QueueEntry, error)
	CreateBattle(ctx context.Context, battle *model.Battle) error
}

// Catalog supplies the shared problem for a freshly created battle.
type Catalog interface {
	PickProblem(filters model.MatchFilters) (model.Problem, error)
}

// Matchmaker runs the pool-based pairing protocol. Every waiting entry is
// scanned with the same deterministic rules; the creation tie-break in
// ShouldOwnMatchCreation keeps concurrent scans convergent without locks or
// retries.
type Matchmaker struct {
	store   Store
	catalog Catalog
	now     func() time.Time

	scanInterval time.Duration
}

func NewMatchmaker(store Store, catalog Catalog) *Matchmaker {
	return &Matchmaker{
		store:        store,
		catalog:      catalog,
		now:          time.Now,
		scanInterval: time.Second,
	}
}

// Join pushes a waiting entry into the pool.
func (m *Matchmaker) Join(ctx context.Context, user model.User, filters model.MatchFilters) (*model.QueueEntry, error) {
	entry := &model.QueueEntry{
		EntryID:  uuid.New().String(),
		UserID:   user.ID,
		UserName: user.Name,
		JoinedAt: m.now().UnixMilli(),
		Status:   model.QueueWaiting,
		Filters:  filters,
	}
	if err := m.store.CreateQueueEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to join queue: %w", err)
	}
	return entry, nil
}

// Leave deletes the entry. Idempotent: leaving twice is fine.
func (m *Matchmaker) Leave(ctx context.Context, entryID string) error {
	return m.store.DeleteQueueEntry(ctx, entryID)
}

// ScanResult is the outcome of one pass over the queue for one entry.
type ScanResult struct {
	Matched  bool
	BattleID string
}

// ScanOnce applies the matching rules for a single entry against the current
// queue snapshot. At-least-once and convergent: running it again for either
// party after a match yields the same battle id.
func (m *Matchmaker) ScanOnce(ctx context.Context, entryID string) (ScanResult, error) {
	mine, err := m.store.GetQueueEntry(ctx, entryID)
	if err != nil {
		return ScanResult{}, ErrEntryNotFound
	}

	// Already matched by the other party: consume and exit.
	if mine.Status == model.QueueMatched {
		if err := m.store.DeleteQueueEntry(ctx, entryID); err != nil {
			log.Printf("[Queue] failed to consume matched entry %s: %v", entryID, err)
		}
		return ScanResult{Matched: true, BattleID: mine.BattleID}, nil
	}

	entries, err := m.store.ListQueueEntries(ctx)
	if err != nil {
		return ScanResult{}, fmt.Errorf("failed to list queue: %w", err)
	}

	candidate := pickCandidate(mine, entries)
	if candidate == nil {
		return ScanResult{}, nil
	}

	// Only the earlier-joined party creates the battle; the other side will
	// observe its entry flip to matched on a later scan.
	if !ShouldOwnMatchCreation(mine, candidate) {
		return ScanResult{}, nil
	}

	battle, err := m.materializeMatch(ctx, mine, candidate)
	if err != nil {
		return ScanResult{}, err
	}

	if err := m.store.DeleteQueueEntry(ctx, entryID); err != nil {
		log.Printf("[Queue] failed to consume own entry %s: %v", entryID, err)
	}
	return ScanResult{Matched: true, BattleID: battle.BattleID}, nil
}

func (m *Matchmaker) materializeMatch(ctx context.Context, mine, candidate *model.QueueEntry) (*model.Battle, error) {
	problem, err := m.catalog.PickProblem(ResolveFilters(mine.Filters, candidate.Filters))
	if err != nil {
		return nil, fmt.Errorf("failed to pick problem: %w", err)
	}

	battle := &model.Battle{
		BattleID:  uuid.New().String(),
		Player1:   model.BattlePlayer{ID: mine.UserID, Name: mine.UserName},
		Player2:   model.BattlePlayer{ID: candidate.UserID, Name: candidate.UserName},
		Problem:   problem,
		Status:    model.BattleActive,
		StartedAt: m.now().UnixMilli(),
	}
	if err := m.store.CreateBattle(ctx, battle); err != nil {
		return nil, fmt.Errorf("failed to create battle: %w", err)
	}

	mine.Status = model.QueueMatched
	mine.BattleID = battle.BattleID
	if err := m.store.UpdateQueueEntry(ctx, mine); err != nil {
		return nil, fmt.Errorf("failed to mark own entry matched: %w", err)
	}

	candidate.Status = model.QueueMatched
	candidate.BattleID = battle.BattleID
	if err := m.store.UpdateQueueEntry(ctx, candidate); err != nil {
		return nil, fmt.Errorf("failed to mark candidate matched: %w", err)
	}

	return battle, nil
}

// Await scans on a fixed interval until the entry matches or the search
// ceiling passes. On timeout the entry is deleted and ErrSearchTimeout
// returned; a crashed peer simply never shows up and times out the same way.
func (m *Matchmaker) Await(ctx context.Context, entryID string) (string, error) {
	deadline := time.NewTimer(model.QueueSearchTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(m.scanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = m.Leave(context.Background(), entryID)
			return "", ctx.Err()
		case <-deadline.C:
			_ = m.Leave(ctx, entryID)
			return "", ErrSearchTimeout
		case <-ticker.C:
			result, err := m.ScanOnce(ctx, entryID)
			if err != nil {
				if errors.Is(err, ErrEntryNotFound) {
					return "", err
				}
				log.Printf("[Queue] scan failed for %s: %v", entryID, err)
				continue
			}
			if result.Matched {
				return result.BattleID, nil
			}
		}
	}
}
