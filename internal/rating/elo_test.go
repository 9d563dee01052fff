package rating

import (
	"testing"

	"github.com/zenvx/CodeBattleCoordService/internal/model"
)

func freshStats() model.UserStats {
	return model.UserStats{
		UserID: "u1",
		Rating: model.InitialRating,
		Rank:   model.RankSilver,
	}
}

func TestExpectedScoreSymmetry(t *testing.T) {
	for _, pair := range [][2]int{{1000, 1000}, {1200, 1000}, {900, 1400}, {2500, 800}} {
		a := ExpectedScore(pair[0], pair[1])
		b := ExpectedScore(pair[1], pair[0])
		if diff := a + b - 1; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("expected scores of %v must sum to 1, got %v + %v", pair, a, b)
		}
	}
	if e := ExpectedScore(1000, 1000); e != 0.5 {
		t.Fatalf("equal ratings must give 0.5, got %v", e)
	}
}

func TestKFactorSwitchesAfterPlacement(t *testing.T) {
	if k := KFactor(0); k != model.KFactorPlacement {
		t.Fatalf("first battle K = %d, want %d", k, model.KFactorPlacement)
	}
	if k := KFactor(model.PlacementBattles - 1); k != model.KFactorPlacement {
		t.Fatalf("last placement battle K = %d, want %d", k, model.KFactorPlacement)
	}
	if k := KFactor(model.PlacementBattles); k != model.KFactorStable {
		t.Fatalf("post placement K = %d, want %d", k, model.KFactorStable)
	}
}

func TestRankForRatingSteps(t *testing.T) {
	cases := []struct {
		rating int
		want   string
	}{
		{0, model.RankBronze},
		{999, model.RankBronze},
		{1000, model.RankSilver},
		{1199, model.RankSilver},
		{1200, model.RankGold},
		{1399, model.RankGold},
		{1400, model.RankPlatinum},
		{1599, model.RankPlatinum},
		{1600, model.RankDiamond},
		{1999, model.RankDiamond},
		{2000, model.RankMaster},
		{2499, model.RankMaster},
		{2500, model.RankLegendary},
		{9000, model.RankLegendary},
	}
	for _, c := range cases {
		if got := RankForRating(c.rating); got != c.want {
			t.Fatalf("rank at %d = %s, want %s", c.rating, got, c.want)
		}
	}
}

func TestApplyOutcomeWinThenLoss(t *testing.T) {
	stats := freshStats()
	preWin := stats.Rating

	afterWin := ApplyOutcome(stats, Outcome{Won: true, DurationSeconds: 120, OpponentRating: preWin})
	if afterWin.Rating <= preWin {
		t.Fatalf("winning against an equal must raise rating: %d -> %d", preWin, afterWin.Rating)
	}
	if afterWin.CurrentStreak != 1 || afterWin.BestStreak != 1 {
		t.Fatalf("streaks after win = %d/%d, want 1/1", afterWin.CurrentStreak, afterWin.BestStreak)
	}
	if afterWin.Wins != 1 || afterWin.Battles != 1 {
		t.Fatalf("counters after win = %d wins / %d battles", afterWin.Wins, afterWin.Battles)
	}
	if afterWin.FastestWin != 120 {
		t.Fatalf("fastest win = %d, want 120", afterWin.FastestWin)
	}

	afterLoss := ApplyOutcome(afterWin, Outcome{Won: false, DurationSeconds: 60, OpponentRating: preWin})
	if afterLoss.CurrentStreak != 0 {
		t.Fatalf("streak after loss = %d, want 0", afterLoss.CurrentStreak)
	}
	if afterLoss.BestStreak != 1 {
		t.Fatalf("best streak must survive a loss, got %d", afterLoss.BestStreak)
	}
	if afterLoss.Rating >= afterWin.Rating {
		t.Fatalf("losing must lower rating: %d -> %d", afterWin.Rating, afterLoss.Rating)
	}
	if afterLoss.Losses != 1 || afterLoss.Battles != 2 {
		t.Fatalf("counters after loss = %d losses / %d battles", afterLoss.Losses, afterLoss.Battles)
	}
	if afterLoss.WinRate != 0.5 {
		t.Fatalf("win rate = %v, want 0.5", afterLoss.WinRate)
	}
	if afterLoss.TotalTimeSpent != 180 {
		t.Fatalf("total time = %d, want 180", afterLoss.TotalTimeSpent)
	}
}

func TestApplyOutcomeFastestWinOnlyImproves(t *testing.T) {
	stats := freshStats()
	stats = ApplyOutcome(stats, Outcome{Won: true, DurationSeconds: 90, OpponentRating: 1000})
	stats = ApplyOutcome(stats, Outcome{Won: true, DurationSeconds: 300, OpponentRating: 1000})
	if stats.FastestWin != 90 {
		t.Fatalf("slower win must not overwrite fastest, got %d", stats.FastestWin)
	}
	stats = ApplyOutcome(stats, Outcome{Won: true, DurationSeconds: 45, OpponentRating: 1000})
	if stats.FastestWin != 45 {
		t.Fatalf("faster win must overwrite fastest, got %d", stats.FastestWin)
	}
}

func TestAchievementsAwardedOnce(t *testing.T) {
	stats := freshStats()
	stats = ApplyOutcome(stats, Outcome{Won: true, DurationSeconds: 30, OpponentRating: 1000})

	if !hasAchievement(stats, "first_win") {
		t.Fatalf("first_win missing after first win: %v", stats.Achievements)
	}
	if !hasAchievement(stats, "sub_minute_win") {
		t.Fatalf("sub_minute_win missing after 30s win: %v", stats.Achievements)
	}

	stats = ApplyOutcome(stats, Outcome{Won: true, DurationSeconds: 30, OpponentRating: 1000})
	count := 0
	for _, id := range stats.Achievements {
		if id == "first_win" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("first_win awarded %d times, want 1", count)
	}
}

func TestStreakAchievements(t *testing.T) {
	stats := freshStats()
	for i := 0; i < 3; i++ {
		stats = ApplyOutcome(stats, Outcome{Won: true, DurationSeconds: 120, OpponentRating: stats.Rating})
	}
	if !hasAchievement(stats, "streak_3") {
		t.Fatalf("streak_3 missing after 3 straight wins: %v", stats.Achievements)
	}
	// Losing does not revoke it.
	stats = ApplyOutcome(stats, Outcome{Won: false, DurationSeconds: 120, OpponentRating: stats.Rating})
	if !hasAchievement(stats, "streak_3") {
		t.Fatalf("streak_3 revoked by a loss: %v", stats.Achievements)
	}
}

func hasAchievement(stats model.UserStats, id string) bool {
	for _, a := range stats.Achievements {
		if a == id {
			return true
		}
	}
	return false
}
