package model

import "time"

const (
	// HeartbeatInterval is how often an online client refreshes lastSeen.
	HeartbeatInterval = 60 * time.Second

	// StaleTimeout bounds presence staleness. A record is online only if
	// now - lastSeen < StaleTimeout; this is a read-time filter, not a
	// write-time expiry, so zombie records linger until overwritten.
	StaleTimeout = 2 * time.Minute
)

type PresenceStatus string

const (
	PresenceAvailable PresenceStatus = "available"
	PresenceInBattle  PresenceStatus = "in_battle"
)

type PresenceRecord struct {
	UserID   string         `json:"userId"`
	UserName string         `json:"userName"`
	Avatar   string         `json:"avatar,omitempty"`
	Status   PresenceStatus `json:"status"`
	LastSeen int64          `json:"lastSeen"` // unix millis
}

// IsLive applies the staleness filter. Every reader re-derives liveness from
// lastSeen instead of trusting the record's existence.
func (p *PresenceRecord) IsLive(now time.Time) bool {
	return now.UnixMilli()-p.LastSeen < StaleTimeout.Milliseconds()
}
