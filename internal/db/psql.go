package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	configs "github.com/zenvx/CodeBattleCoordService/internal/config"
	"github.com/zenvx/CodeBattleCoordService/internal/model"
)

func InitPsql(cfg *configs.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.PsqlURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	if err := db.AutoMigrate(&model.UserStats{}); err != nil {
		return nil, fmt.Errorf("failed to migrate user stats: %w", err)
	}
	return db, nil
}
