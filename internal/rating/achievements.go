package rating

import "github.com/zenvx/CodeBattleCoordService/internal/model"

// Achievements are monotonic predicates over cumulative stats, each awarded
// at most once, independently of evaluation order.
var achievementTable = []struct {
	ID        string
	Qualifies func(model.UserStats) bool
}{
	{"first_win", func(s model.UserStats) bool { return s.Wins >= 1 }},
	{"ten_battles", func(s model.UserStats) bool { return s.Battles >= 10 }},
	{"hundred_battles", func(s model.UserStats) bool { return s.Battles >= 100 }},
	{"streak_3", func(s model.UserStats) bool { return s.BestStreak >= 3 }},
	{"streak_10", func(s model.UserStats) bool { return s.BestStreak >= 10 }},
	{"rating_1200", func(s model.UserStats) bool { return s.Rating >= 1200 }},
	{"rating_1600", func(s model.UserStats) bool { return s.Rating >= 1600 }},
	{"rating_2500", func(s model.UserStats) bool { return s.Rating >= 2500 }},
	{"sub_minute_win", func(s model.UserStats) bool { return s.FastestWin > 0 && s.FastestWin <= 60 }},
}

func awardAchievements(stats model.UserStats) []string {
	held := make(map[string]bool, len(stats.Achievements))
	for _, id := range stats.Achievements {
		held[id] = true
	}

	out := stats.Achievements
	for _, a := range achievementTable {
		if !held[a.ID] && a.Qualifies(stats) {
			out = append(out, a.ID)
		}
	}
	return out
}
