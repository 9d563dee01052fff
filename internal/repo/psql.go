package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/zenvx/CodeBattleCoordService/internal/model"
)

// PSQLRepository persists UserStats. Stats are mutated only by the rating
// updater, exactly once per finished battle.
type PSQLRepository struct {
	db *gorm.DB
}

func NewPSQLRepository(db *gorm.DB) *PSQLRepository {
	return &PSQLRepository{db: db}
}

// GetUserStats returns the stored stats, or a fresh zero-battle record at the
// initial rating if the user has never fought.
func (r *PSQLRepository) GetUserStats(ctx context.Context, userID string) (*model.UserStats, error) {
	var stats model.UserStats
	err := r.db.WithContext(ctx).First(&stats, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.UserStats{
				UserID: userID,
				Rating: model.InitialRating,
				Rank:   model.RankSilver,
			}, nil
		}
		return nil, err
	}
	return &stats, nil
}

func (r *PSQLRepository) SaveUserStats(ctx context.Context, stats *model.UserStats) error {
	return r.db.WithContext(ctx).Save(stats).Error
}
