package global

import (
	"github.com/zenvx/CodeBattleCoordService/internal/battle"
	"github.com/zenvx/CodeBattleCoordService/internal/catalog"
	"github.com/zenvx/CodeBattleCoordService/internal/challenge"
	"github.com/zenvx/CodeBattleCoordService/internal/judge"
	"github.com/zenvx/CodeBattleCoordService/internal/jwt"
	"github.com/zenvx/CodeBattleCoordService/internal/leaderboard"
	"github.com/zenvx/CodeBattleCoordService/internal/lobby"
	"github.com/zenvx/CodeBattleCoordService/internal/presence"
	"github.com/zenvx/CodeBattleCoordService/internal/queue"
	"github.com/zenvx/CodeBattleCoordService/internal/rating"
	"github.com/zenvx/CodeBattleCoordService/internal/repo"
	"github.com/zenvx/CodeBattleCoordService/internal/state"
)

// State holds the application dependencies shared across the WebSocket and
// REST layers.
type State struct {
	Redis       *repo.RedisRepository
	Mongo       *repo.MongoRepository
	Psql        *repo.PSQLRepository
	LocalState  *state.LocalStateManager
	Leaderboard *leaderboard.Manager
	JwtManager  *jwt.JWTManager

	Presence   *presence.Tracker
	Matchmaker *queue.Matchmaker
	Challenges *challenge.Coordinator
	Battles    *battle.Manager
	Lobbies    *lobby.Coordinator
	Rating     *rating.Updater
	Judge      *judge.Client
	Catalog    *catalog.Catalog
}
