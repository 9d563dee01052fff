package presence

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/zenvx/CodeBattleCoordService/internal/model"
)

var ErrNotOnline = errors.New("user has no presence record")

// Store is the slice of the realtime store the tracker needs.
type Store interface {
	SetPresence(ctx context.Context, rec *model.PresenceRecord) error
	GetPresence(ctx context.Context, userID string) (*model.PresenceRecord, error)
	DeletePresence(ctx context.Context, userID string) error
	ListPresence(ctx context.Context) ([]*model.PresenceRecord, error)
}

// Tracker is a liveness oracle with bounded staleness. Records are written on
// connect, refreshed by heartbeat, and deleted on a clean disconnect; a crash
// leaves a zombie record that readers filter out once StaleTimeout passes its
// last heartbeat. There is no server-side expiry job.
type Tracker struct {
	store Store
	now   func() time.Time

	mu         sync.Mutex
	heartbeats map[string]chan struct{}
}

func NewTracker(store Store) *Tracker {
	return &Tracker{
		store:      store,
		now:        time.Now,
		heartbeats: make(map[string]chan struct{}),
	}
}

// GoOnline writes the presence record and starts the recurring heartbeat for
// this user. Calling it twice restarts the heartbeat.
func (t *Tracker) GoOnline(ctx context.Context, user model.User) error {
	rec := &model.PresenceRecord{
		UserID:   user.ID,
		UserName: user.Name,
		Avatar:   user.Avatar,
		Status:   model.PresenceAvailable,
		LastSeen: t.now().UnixMilli(),
	}
	if err := t.store.SetPresence(ctx, rec); err != nil {
		return err
	}

	t.mu.Lock()
	if stop, ok := t.heartbeats[user.ID]; ok {
		close(stop)
	}
	stop := make(chan struct{})
	t.heartbeats[user.ID] = stop
	t.mu.Unlock()

	go t.heartbeatLoop(user.ID, stop)
	return nil
}

func (t *Tracker) heartbeatLoop(userID string, stop chan struct{}) {
	ticker := time.NewTicker(model.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := t.Touch(ctx, userID); err != nil {
				log.Printf("[Presence] heartbeat failed for %s: %v", userID, err)
			}
			cancel()
		}
	}
}

// Touch refreshes lastSeen without changing status.
func (t *Tracker) Touch(ctx context.Context, userID string) error {
	rec, err := t.store.GetPresence(ctx, userID)
	if err != nil {
		return ErrNotOnline
	}
	rec.LastSeen = t.now().UnixMilli()
	return t.store.SetPresence(ctx, rec)
}

// SetStatus updates status only; lastSeen is refreshed as a side effect since
// a status change proves the client is alive.
func (t *Tracker) SetStatus(ctx context.Context, userID string, status model.PresenceStatus) error {
	rec, err := t.store.GetPresence(ctx, userID)
	if err != nil {
		return ErrNotOnline
	}
	rec.Status = status
	rec.LastSeen = t.now().UnixMilli()
	return t.store.SetPresence(ctx, rec)
}

// GoOffline stops the heartbeat and deletes the record. Best effort: if the
// process dies before this runs, the record goes stale instead.
func (t *Tracker) GoOffline(ctx context.Context, userID string) error {
	t.mu.Lock()
	if stop, ok := t.heartbeats[userID]; ok {
		close(stop)
		delete(t.heartbeats, userID)
	}
	t.mu.Unlock()

	return t.store.DeletePresence(ctx, userID)
}

// IsLive applies the read-time staleness filter for a single user.
func (t *Tracker) IsLive(ctx context.Context, userID string) bool {
	rec, err := t.store.GetPresence(ctx, userID)
	if err != nil {
		return false
	}
	return rec.IsLive(t.now())
}

// OnlinePlayers returns only records whose lastSeen is within StaleTimeout.
// Zombie records are skipped, never surfaced.
func (t *Tracker) OnlinePlayers(ctx context.Context) ([]*model.PresenceRecord, error) {
	records, err := t.store.ListPresence(ctx)
	if err != nil {
		return nil, err
	}

	now := t.now()
	live := make([]*model.PresenceRecord, 0, len(records))
	for _, rec := range records {
		if rec.IsLive(now) {
			live = append(live, rec)
		}
	}
	return live, nil
}
