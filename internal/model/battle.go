package model

import "time"

const (
	// Wire ceiling for queue searches and challenge responses. Both are
	// client-owned timers; the coordinator enforces the same ceiling so a
	// crashed client cannot leave a waiting record behind forever.
	QueueSearchTimeout       = 30 * time.Second
	ChallengeResponseTimeout = 30 * time.Second

	// A terminal challenge mailbox entry is kept around briefly so a slow
	// sender read still observes the final status before deletion.
	ChallengeDeleteGrace = 1 * time.Second

	// Twice the heartbeat interval: a client on schedule always beats the
	// read deadline, a silent one gets its socket reaped.
	WebsocketReadTimeout = 2 * HeartbeatInterval
)

type BattleStatus string

const (
	BattleActive   BattleStatus = "active"
	BattleFinished BattleStatus = "finished"
)

type PlayerSlot string

const (
	SlotPlayer1 PlayerSlot = "player1"
	SlotPlayer2 PlayerSlot = "player2"
)

const (
	EndReasonCompleted = "completed"
	EndReasonForfeit   = "forfeit"
)

// User is the denormalized identity copied into records by value. The store
// has no joins, so every record carries its own copy.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

type BattlePlayer struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	TestsPassed int    `json:"testsPassed"`
	Finished    bool   `json:"finished"`
	Forfeited   bool   `json:"forfeited,omitempty"`
}

// Battle is the 1v1 contest record. Invariant: exactly one writer moves
// Status to finished; once finished, Winner is set and immutable.
type Battle struct {
	BattleID   string       `json:"battleId"`
	Player1    BattlePlayer `json:"player1"`
	Player2    BattlePlayer `json:"player2"`
	Problem    Problem      `json:"problem"`
	Status     BattleStatus `json:"status"`
	Winner     PlayerSlot   `json:"winner,omitempty"`
	StartedAt  int64        `json:"startedAt"`
	FinishedAt int64        `json:"finishedAt,omitempty"`
	EndReason  string       `json:"endReason,omitempty"`
}

// SlotOf returns which slot the given user occupies, or "" if neither.
func (b *Battle) SlotOf(userID string) PlayerSlot {
	switch userID {
	case b.Player1.ID:
		return SlotPlayer1
	case b.Player2.ID:
		return SlotPlayer2
	}
	return ""
}

func (b *Battle) PlayerAt(slot PlayerSlot) *BattlePlayer {
	if slot == SlotPlayer1 {
		return &b.Player1
	}
	return &b.Player2
}

func Opponent(slot PlayerSlot) PlayerSlot {
	if slot == SlotPlayer1 {
		return SlotPlayer2
	}
	return SlotPlayer1
}

// WinnerID resolves the winner slot to a user id. Empty for unfinished
// battles.
func (b *Battle) WinnerID() string {
	switch b.Winner {
	case SlotPlayer1:
		return b.Player1.ID
	case SlotPlayer2:
		return b.Player2.ID
	}
	return ""
}
