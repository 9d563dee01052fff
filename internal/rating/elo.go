package rating

import (
	"math"

	"github.com/zenvx/CodeBattleCoordService/internal/model"
)

// Outcome is one finished battle from a single player's perspective.
type Outcome struct {
	Won             bool
	DurationSeconds int64
	OpponentRating  int
}

// ExpectedScore is the standard Elo win probability of `rating` against
// `opponent`.
func ExpectedScore(rating, opponent int) float64 {
	return 1 / (1 + math.Pow(10, float64(opponent-rating)/400))
}

// KFactor keeps placement-period volatility high for the first battles.
func KFactor(battlesRecorded int) int {
	if battlesRecorded < model.PlacementBattles {
		return model.KFactorPlacement
	}
	return model.KFactorStable
}

// RankForRating is a pure step function of rating.
func RankForRating(rating int) string {
	switch {
	case rating < 1000:
		return model.RankBronze
	case rating < 1200:
		return model.RankSilver
	case rating < 1400:
		return model.RankGold
	case rating < 1600:
		return model.RankPlatinum
	case rating < 2000:
		return model.RankDiamond
	case rating < 2500:
		return model.RankMaster
	default:
		return model.RankLegendary
	}
}

// ApplyOutcome is a pure function of prior stats to next stats. It never
// touches storage; the impure wrapper around it persists the result exactly
// once per finished battle.
func ApplyOutcome(stats model.UserStats, out Outcome) model.UserStats {
	actual := 0.0
	if out.Won {
		actual = 1.0
	}

	k := KFactor(stats.Battles)
	delta := int(math.Round(float64(k) * (actual - ExpectedScore(stats.Rating, out.OpponentRating))))

	stats.Battles++
	if out.Won {
		stats.Wins++
		stats.CurrentStreak++
		if stats.CurrentStreak > stats.BestStreak {
			stats.BestStreak = stats.CurrentStreak
		}
		if stats.FastestWin == 0 || out.DurationSeconds < stats.FastestWin {
			stats.FastestWin = out.DurationSeconds
		}
	} else {
		stats.Losses++
		stats.CurrentStreak = 0
	}

	stats.Rating += delta
	stats.Rank = RankForRating(stats.Rating)
	stats.WinRate = float64(stats.Wins) / float64(stats.Battles)
	stats.TotalTimeSpent += out.DurationSeconds

	stats.Achievements = awardAchievements(stats)
	return stats
}
