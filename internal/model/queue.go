package model

// FilterRandom is the wildcard value for matchmaking filters.
const FilterRandom = "Random"

type QueueStatus string

const (
	QueueWaiting QueueStatus = "waiting"
	QueueMatched QueueStatus = "matched"
)

type MatchFilters struct {
	Difficulty string `json:"difficulty"`
	Category   string `json:"category"`
}

// QueueEntry is a waiting ticket in the matchmaking pool. Created on join,
// flipped to matched by whichever compatible entry joined earlier, deleted by
// its owner once consumed or on cancel/timeout.
type QueueEntry struct {
	EntryID  string       `json:"entryId"`
	UserID   string       `json:"userId"`
	UserName string       `json:"userName"`
	JoinedAt int64        `json:"joinedAt"` // unix millis
	Status   QueueStatus  `json:"status"`
	BattleID string       `json:"battleId,omitempty"`
	Filters  MatchFilters `json:"filters"`
}

type ChallengeStatus string

const (
	ChallengePending  ChallengeStatus = "pending"
	ChallengeAccepted ChallengeStatus = "accepted"
	ChallengeDeclined ChallengeStatus = "declined"
	ChallengeExpired  ChallengeStatus = "expired"
)

// Challenge is a single-slot mailbox keyed by the *target* user id: a user
// holds at most one pending incoming challenge, last writer wins.
type Challenge struct {
	From      User            `json:"from"`
	Problem   Problem         `json:"problem"`
	CreatedAt int64           `json:"createdAt"`
	Status    ChallengeStatus `json:"status"`
	BattleID  string          `json:"battleId,omitempty"`
}
