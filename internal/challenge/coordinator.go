package challenge

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
	ErrNoChallenge     = errors.New("no challenge in mailbox")
	ErrAlreadyResolved = errors.New("challenge already resolved")
)

// Mailbox is the slice of the realtime store holding single-slot challenge
// mailboxes, plus battle creation for the accept path.
type Mailbox interface {
	SetChallenge(ctx context.Context, toID string, ch *model.Challenge) error
	GetChallenge(ctx context.Context, toID string) (*model.Challenge, error)
	DeleteChallenge(ctx context.Context, toID string) error
	WatchChallenge(ctx context.Context, toID string) (<-chan *model.Challenge, func(), error)
	CreateBattle(ctx context.Context, battle *model.Battle) error
}

// Callbacks receive the terminal outcome of a sent challenge. Exactly one
// fires.
type Callbacks struct {
	OnAccepted func(battleID string)
	OnDeclined func()
	OnExpired  func()
}

// Coordinator runs the point-to-point invitation protocol. The mailbox write
// is unconditional (last writer wins); the recipient is authoritative for
// battle creation on accept; the sender owns the expiry timer.
type Coordinator struct {
	store   Mailbox
	now     func() time.Time
	timeout time.Duration
	grace   time.Duration
}

func NewCoordinator(store Mailbox) *Coordinator {
	return &Coordinator{
		store:   store,
		now:     time.Now,
		timeout: model.ChallengeResponseTimeout,
		grace:   model.ChallengeDeleteGrace,
	}
}

// Send drops a pending challenge into toID's mailbox. No atomic check for an
// existing pending challenge; a human on the other end resolves the race.
func (c *Coordinator) Send(ctx context.Context, from model.User, toID string, problem model.Problem) error {
	ch := &model.Challenge{
		From:      from,
		Problem:   problem,
		CreatedAt: c.now().UnixMilli(),
		Status:    model.ChallengePending,
	}
	if err := c.store.SetChallenge(ctx, toID, ch); err != nil {
		return fmt.Errorf("failed to send challenge: %w", err)
	}
	return nil
}

// Respond transitions the mailbox exactly once. On accept the recipient
// creates the Battle first, so the battle's existence is
// recipient-authoritative, then publishes accepted+battleId for the sender's
// subscription to observe.
func (c *Coordinator) Respond(ctx context.Context, recipient model.User, accept bool) (*model.Battle, error) {
	ch, err := c.store.GetChallenge(ctx, recipient.ID)
	if err != nil {
		return nil, ErrNoChallenge
	}
	if ch.Status != model.ChallengePending {
		return nil, ErrAlreadyResolved
	}

	if !accept {
		ch.Status = model.ChallengeDeclined
		if err := c.store.SetChallenge(ctx, recipient.ID, ch); err != nil {
			return nil, fmt.Errorf("failed to decline challenge: %w", err)
		}
		c.deleteAfterGrace(recipient.ID)
		return nil, nil
	}

	battle := &model.Battle{
		BattleID:  uuid.New().String(),
		Player1:   model.BattlePlayer{ID: ch.From.ID, Name: ch.From.Name},
		Player2:   model.BattlePlayer{ID: recipient.ID, Name: recipient.Name},
		Problem:   ch.Problem,
		Status:    model.BattleActive,
		StartedAt: c.now().UnixMilli(),
	}
	if err := c.store.CreateBattle(ctx, battle); err != nil {
		return nil, fmt.Errorf("failed to create battle: %w", err)
	}

	ch.Status = model.ChallengeAccepted
	ch.BattleID = battle.BattleID
	if err := c.store.SetChallenge(ctx, recipient.ID, ch); err != nil {
		// The battle exists either way; if the sender's process is gone this
		// write goes unread, which is accepted fire-and-forget semantics.
		return nil, fmt.Errorf("failed to mark challenge accepted: %w", err)
	}

	c.deleteAfterGrace(recipient.ID)
	return battle, nil
}

// AwaitResponse is the sender side: it watches the mailbox and independently
// races the expiry timer. The first of {status change, deletion, timeout}
// is terminal; the handled guard makes dispatch exactly-once.
func (c *Coordinator) AwaitResponse(ctx context.Context, targetID string, cb Callbacks) error {
	updates, stop, err := c.store.WatchChallenge(ctx, targetID)
	if err != nil {
		return err
	}
	defer stop()

	// The watch only carries writes made after it attached. A recipient may
	// have resolved the mailbox in that gap, so read the current state once
	// and dispatch it if it is already terminal.
	if ch, err := c.store.GetChallenge(ctx, targetID); err == nil {
		if dispatchTerminal(ch, cb) {
			return nil
		}
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	handled := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-timer.C:
			if handled {
				return nil
			}
			handled = true
			c.expire(targetID)
			if cb.OnExpired != nil {
				cb.OnExpired()
			}
			return nil

		case ch, ok := <-updates:
			if handled {
				return nil
			}
			if !ok || ch == nil {
				// Mailbox deleted without an observed terminal status.
				handled = true
				if cb.OnDeclined != nil {
					cb.OnDeclined()
				}
				return nil
			}
			if dispatchTerminal(ch, cb) {
				handled = true
				return nil
			}
			// Pending echo of our own send.
		}
	}
}

// dispatchTerminal fires the callback matching a terminal status. Returns
// false for a still-pending challenge.
func dispatchTerminal(ch *model.Challenge, cb Callbacks) bool {
	switch ch.Status {
	case model.ChallengeAccepted:
		if cb.OnAccepted != nil {
			cb.OnAccepted(ch.BattleID)
		}
		return true
	case model.ChallengeDeclined:
		if cb.OnDeclined != nil {
			cb.OnDeclined()
		}
		return true
	case model.ChallengeExpired:
		if cb.OnExpired != nil {
			cb.OnExpired()
		}
		return true
	}
	return false
}

// expire marks the mailbox expired so a late reader sees why it vanished,
// then deletes it after the grace delay.
func (c *Coordinator) expire(targetID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ch, err := c.store.GetChallenge(ctx, targetID)
	if err != nil {
		return // recipient already consumed it
	}
	if ch.Status != model.ChallengePending {
		return
	}
	ch.Status = model.ChallengeExpired
	if err := c.store.SetChallenge(ctx, targetID, ch); err != nil {
		log.Printf("[Challenge] failed to mark expired for %s: %v", targetID, err)
	}
	c.deleteAfterGrace(targetID)
}

func (c *Coordinator) deleteAfterGrace(targetID string) {
	time.AfterFunc(c.grace, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.store.DeleteChallenge(ctx, targetID); err != nil {
			log.Printf("[Challenge] mailbox cleanup failed for %s: %v", targetID, err)
		}
	})
}
