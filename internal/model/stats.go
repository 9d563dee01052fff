package model

// Rank thresholds form a step function of rating.
const (
	RankBronze    = "Bronze"
	RankSilver    = "Silver"
	RankGold      = "Gold"
	RankPlatinum  = "Platinum"
	RankDiamond   = "Diamond"
	RankMaster    = "Master"
	RankLegendary = "Legendary"
)

const (
	InitialRating = 1000

	// Placement-period volatility: higher K for the first battles.
	PlacementBattles = 30
	KFactorPlacement = 40
	KFactorStable    = 20
)

// UserStats is mutated only by the rating updater, exactly once per finished
// battle. Persisted relationally; Achievements ride along as jsonb.
type UserStats struct {
	UserID         string   `gorm:"column:user_id;primaryKey" json:"userId"`
	UserName       string   `gorm:"column:user_name" json:"userName"`
	Avatar         string   `gorm:"column:avatar" json:"avatar,omitempty"`
	Battles        int      `gorm:"column:battles" json:"battles"`
	Wins           int      `gorm:"column:wins" json:"wins"`
	Losses         int      `gorm:"column:losses" json:"losses"`
	WinRate        float64  `gorm:"column:win_rate" json:"winRate"`
	Rating         int      `gorm:"column:rating" json:"rating"`
	Rank           string   `gorm:"column:rank" json:"rank"`
	CurrentStreak  int      `gorm:"column:current_streak" json:"currentStreak"`
	BestStreak     int      `gorm:"column:best_streak" json:"bestStreak"`
	TotalTimeSpent int64    `gorm:"column:total_time_spent" json:"totalTimeSpent"` // seconds
	FastestWin     int64    `gorm:"column:fastest_win" json:"fastestWin"`          // seconds, 0 = none yet
	Achievements   []string `gorm:"column:achievements;type:jsonb;serializer:json" json:"achievements,omitempty"`
}

func (UserStats) TableName() string {
	return "user_stats"
}

// LeaderboardEntry is the denormalized public projection of UserStats, kept
// separately so ranking and search never expose full stats records.
type LeaderboardEntry struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Rating int    `json:"rating"`
	Wins   int    `json:"wins"`
	Streak int    `json:"streak"`
	Rank   int64  `json:"rank,omitempty"` // 1-based position, filled on read
}

// OutcomeEvent is published after a battle finishes, for downstream
// consumers. Fire and forget.
type OutcomeEvent struct {
	BattleID        string `json:"battleId"`
	WinnerID        string `json:"winnerId"`
	LoserID         string `json:"loserId"`
	EndReason       string `json:"endReason"`
	DurationSeconds int64  `json:"durationSeconds"`
	FinishedAt      int64  `json:"finishedAt"`
}
