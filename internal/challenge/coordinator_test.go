package challenge

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/zenvx/CodeBattleCoordService/internal/model"
)

// memMailbox mimics the store's single-slot mailbox plus pub/sub watch.
type memMailbox struct {
	mu         sync.Mutex
	challenges map[string]*model.Challenge
	battles    map[string]*model.Battle
	watchers   map[string][]chan *model.Challenge
}

func newMemMailbox() *memMailbox {
	return &memMailbox{
		challenges: make(map[string]*model.Challenge),
		battles:    make(map[string]*model.Battle),
		watchers:   make(map[string][]chan *model.Challenge),
	}
}

func (m *memMailbox) SetChallenge(ctx context.Context, toID string, ch *model.Challenge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *ch
	m.challenges[toID] = &copied
	for _, w := range m.watchers[toID] {
		update := copied
		w <- &update
	}
	return nil
}

func (m *memMailbox) GetChallenge(ctx context.Context, toID string) (*model.Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.challenges[toID]
	if !ok {
		return nil, errors.New("not found")
	}
	copied := *ch
	return &copied, nil
}

func (m *memMailbox) DeleteChallenge(ctx context.Context, toID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.challenges, toID)
	for _, w := range m.watchers[toID] {
		w <- nil
	}
	return nil
}

func (m *memMailbox) WatchChallenge(ctx context.Context, toID string) (<-chan *model.Challenge, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan *model.Challenge, 16)
	m.watchers[toID] = append(m.watchers[toID], ch)
	stop := func() {}
	return ch, stop, nil
}

func (m *memMailbox) CreateBattle(ctx context.Context, battle *model.Battle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *battle
	m.battles[battle.BattleID] = &copied
	return nil
}

func newFastCoordinator(store Mailbox, timeout time.Duration) *Coordinator {
	c := NewCoordinator(store)
	c.timeout = timeout
	c.grace = 10 * time.Millisecond
	return c
}

func TestAcceptCreatesBattleAndNotifiesSender(t *testing.T) {
	store := newMemMailbox()
	c := newFastCoordinator(store, time.Second)
	ctx := context.Background()

	sender := model.User{ID: "u1", Name: "Alice"}
	recipient := model.User{ID: "u2", Name: "Bob"}
	problem := model.Problem{ID: "p1", Title: "Two Sum"}

	if err := c.Send(ctx, sender, recipient.ID, problem); err != nil {
		t.Fatalf("send: %v", err)
	}

	var accepted, declined, expired int
	var gotBattleID string
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.AwaitResponse(ctx, recipient.ID, Callbacks{
			OnAccepted: func(battleID string) { accepted++; gotBattleID = battleID },
			OnDeclined: func() { declined++ },
			OnExpired:  func() { expired++ },
		})
	}()

	time.Sleep(20 * time.Millisecond)
	battle, err := c.Respond(ctx, recipient, true)
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if battle == nil || battle.Player1.ID != "u1" || battle.Player2.ID != "u2" {
		t.Fatalf("battle players wrong: %+v", battle)
	}

	<-done
	if accepted != 1 || declined != 0 || expired != 0 {
		t.Fatalf("callbacks = %d/%d/%d, want exactly one accept", accepted, declined, expired)
	}
	if gotBattleID != battle.BattleID {
		t.Fatalf("sender saw battle %q, recipient created %q", gotBattleID, battle.BattleID)
	}
	if store.battles[battle.BattleID] == nil {
		t.Fatalf("battle not persisted")
	}
}

func TestDeclineFiresOnDeclinedOnce(t *testing.T) {
	store := newMemMailbox()
	c := newFastCoordinator(store, time.Second)
	ctx := context.Background()

	c.Send(ctx, model.User{ID: "u1", Name: "Alice"}, "u2", model.Problem{ID: "p1"})

	var accepted, declined, expired int
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.AwaitResponse(ctx, "u2", Callbacks{
			OnAccepted: func(string) { accepted++ },
			OnDeclined: func() { declined++ },
			OnExpired:  func() { expired++ },
		})
	}()

	time.Sleep(20 * time.Millisecond)
	battle, err := c.Respond(ctx, model.User{ID: "u2", Name: "Bob"}, false)
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if battle != nil {
		t.Fatalf("decline must not create a battle")
	}

	<-done
	if accepted != 0 || declined != 1 || expired != 0 {
		t.Fatalf("callbacks = %d/%d/%d, want exactly one decline", accepted, declined, expired)
	}
}

func TestUnansweredChallengeExpiresExactlyOnce(t *testing.T) {
	store := newMemMailbox()
	c := newFastCoordinator(store, 50*time.Millisecond)
	ctx := context.Background()

	c.Send(ctx, model.User{ID: "u1", Name: "Alice"}, "u2", model.Problem{ID: "p1"})

	var expired int
	var otherCalls int
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.AwaitResponse(ctx, "u2", Callbacks{
			OnAccepted: func(string) { otherCalls++ },
			OnDeclined: func() { otherCalls++ },
			OnExpired:  func() { expired++ },
		})
	}()

	<-done
	if expired != 1 || otherCalls != 0 {
		t.Fatalf("expiry callbacks = %d (other %d), want exactly one", expired, otherCalls)
	}

	// Mailbox is marked expired, then deleted after the grace delay.
	ch, err := store.GetChallenge(ctx, "u2")
	if err == nil && ch.Status != model.ChallengeExpired {
		t.Fatalf("lingering mailbox status = %s, want expired", ch.Status)
	}
	time.Sleep(50 * time.Millisecond)
	if _, err := store.GetChallenge(ctx, "u2"); err == nil {
		t.Fatalf("expired mailbox must be deleted after the grace period")
	}
}

func TestRespondWithoutChallenge(t *testing.T) {
	c := newFastCoordinator(newMemMailbox(), time.Second)
	if _, err := c.Respond(context.Background(), model.User{ID: "u2"}, true); !errors.Is(err, ErrNoChallenge) {
		t.Fatalf("respond on empty mailbox = %v, want ErrNoChallenge", err)
	}
}

func TestRespondTwiceRejected(t *testing.T) {
	store := newMemMailbox()
	c := newFastCoordinator(store, time.Second)
	ctx := context.Background()

	c.Send(ctx, model.User{ID: "u1", Name: "Alice"}, "u2", model.Problem{ID: "p1"})
	if _, err := c.Respond(ctx, model.User{ID: "u2", Name: "Bob"}, false); err != nil {
		t.Fatalf("first respond: %v", err)
	}
	if _, err := c.Respond(ctx, model.User{ID: "u2", Name: "Bob"}, true); !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("second respond = %v, want ErrAlreadyResolved", err)
	}
}

func TestRespondBeforeAwaitStillDelivered(t *testing.T) {
	store := newMemMailbox()
	c := newFastCoordinator(store, time.Second)
	c.grace = time.Second
	ctx := context.Background()

	c.Send(ctx, model.User{ID: "u1", Name: "Alice"}, "u2", model.Problem{ID: "p1"})

	// Recipient accepts before the sender's watch attaches.
	battle, err := c.Respond(ctx, model.User{ID: "u2", Name: "Bob"}, true)
	if err != nil {
		t.Fatalf("respond: %v", err)
	}

	var accepted, other int
	var gotBattleID string
	err = c.AwaitResponse(ctx, "u2", Callbacks{
		OnAccepted: func(battleID string) { accepted++; gotBattleID = battleID },
		OnDeclined: func() { other++ },
		OnExpired:  func() { other++ },
	})
	if err != nil {
		t.Fatalf("await: %v", err)
	}
	if accepted != 1 || other != 0 {
		t.Fatalf("callbacks = accepted %d / other %d, want the early accept delivered", accepted, other)
	}
	if gotBattleID != battle.BattleID {
		t.Fatalf("sender saw battle %q, recipient created %q", gotBattleID, battle.BattleID)
	}
}

func TestDeclineBeforeAwaitStillDelivered(t *testing.T) {
	store := newMemMailbox()
	c := newFastCoordinator(store, time.Second)
	c.grace = time.Second
	ctx := context.Background()

	c.Send(ctx, model.User{ID: "u1", Name: "Alice"}, "u2", model.Problem{ID: "p1"})
	if _, err := c.Respond(ctx, model.User{ID: "u2", Name: "Bob"}, false); err != nil {
		t.Fatalf("respond: %v", err)
	}

	var declined, other int
	err := c.AwaitResponse(ctx, "u2", Callbacks{
		OnAccepted: func(string) { other++ },
		OnDeclined: func() { declined++ },
		OnExpired:  func() { other++ },
	})
	if err != nil {
		t.Fatalf("await: %v", err)
	}
	if declined != 1 || other != 0 {
		t.Fatalf("callbacks = declined %d / other %d, want the early decline delivered", declined, other)
	}
}
