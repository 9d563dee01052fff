package rating

import (
	"context"
	"fmt"
	"log"

	"github.com/zenvx/CodeBattleCoordService/internal/model"
)

// StatsStore is the durable home of UserStats.
type StatsStore interface {
	GetUserStats(ctx context.Context, userID string) (*model.UserStats, error)
	SaveUserStats(ctx context.Context, stats *model.UserStats) error
}

// Board receives the denormalized public projection after every update.
type Board interface {
	UpsertEntry(ctx context.Context, entry *model.LeaderboardEntry) error
}

// Updater consumes battle outcomes. The stats write and the leaderboard write
// are sequenced, not transactional: a crash in between leaves the board one
// battle behind until the user's next finish.
type Updater struct {
	stats StatsStore
	board Board
}

func NewUpdater(stats StatsStore, board Board) *Updater {
	return &Updater{stats: stats, board: board}
}

// RecordBattleOutcome applies a finished battle to both players. Expected
// scores are computed against each opponent's pre-battle rating, so the
// update order of the two sides cannot skew the deltas.
func (u *Updater) RecordBattleOutcome(ctx context.Context, winner, loser model.User, durationSeconds int64) error {
	winnerStats, err := u.stats.GetUserStats(ctx, winner.ID)
	if err != nil {
		return fmt.Errorf("failed to load winner stats: %w", err)
	}
	loserStats, err := u.stats.GetUserStats(ctx, loser.ID)
	if err != nil {
		return fmt.Errorf("failed to load loser stats: %w", err)
	}

	winnerRating := winnerStats.Rating
	loserRating := loserStats.Rating

	if _, err := u.RecordOutcome(ctx, winner, Outcome{Won: true, DurationSeconds: durationSeconds, OpponentRating: loserRating}); err != nil {
		return err
	}
	if _, err := u.RecordOutcome(ctx, loser, Outcome{Won: false, DurationSeconds: durationSeconds, OpponentRating: winnerRating}); err != nil {
		return err
	}
	return nil
}

// RecordOutcome loads the user's stats, applies the Elo update and derived
// state, persists it, and refreshes the leaderboard projection.
func (u *Updater) RecordOutcome(ctx context.Context, user model.User, out Outcome) (*model.UserStats, error) {
	stats, err := u.stats.GetUserStats(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats for %s: %w", user.ID, err)
	}

	next := ApplyOutcome(*stats, out)
	next.UserName = user.Name
	next.Avatar = user.Avatar

	if err := u.stats.SaveUserStats(ctx, &next); err != nil {
		return nil, fmt.Errorf("failed to save stats for %s: %w", user.ID, err)
	}

	entry := &model.LeaderboardEntry{
		UserID: user.ID,
		Name:   user.Name,
		Avatar: user.Avatar,
		Rating: next.Rating,
		Wins:   next.Wins,
		Streak: next.CurrentStreak,
	}
	if err := u.board.UpsertEntry(ctx, entry); err != nil {
		// Leaderboard is a projection; the authoritative stats are saved.
		log.Printf("[Rating] leaderboard update failed for %s: %v", user.ID, err)
	}

	return &next, nil
}
