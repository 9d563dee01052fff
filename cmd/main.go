package main

import (
	"log"
	"strings"
	"time"

	"github.com/zenvx/CodeBattleCoordService/internal/battle"
	"github.com/zenvx/CodeBattleCoordService/internal/catalog"
	"github.com/zenvx/CodeBattleCoordService/internal/challenge"
	configs "github.com/zenvx/CodeBattleCoordService/internal/config"
	"github.com/zenvx/CodeBattleCoordService/internal/db"
	"github.com/zenvx/CodeBattleCoordService/internal/events"
	"github.com/zenvx/CodeBattleCoordService/internal/global"
	"github.com/zenvx/CodeBattleCoordService/internal/handlers"
	"github.com/zenvx/CodeBattleCoordService/internal/judge"
	"github.com/zenvx/CodeBattleCoordService/internal/jwt"
	"github.com/zenvx/CodeBattleCoordService/internal/leaderboard"
	"github.com/zenvx/CodeBattleCoordService/internal/lobby"
	"github.com/zenvx/CodeBattleCoordService/internal/presence"
	"github.com/zenvx/CodeBattleCoordService/internal/queue"
	"github.com/zenvx/CodeBattleCoordService/internal/rating"
	"github.com/zenvx/CodeBattleCoordService/internal/repo"
	"github.com/zenvx/CodeBattleCoordService/internal/state"
	"github.com/zenvx/CodeBattleCoordService/internal/wss"
	wsshandler "github.com/zenvx/CodeBattleCoordService/internal/wss/handlers"
	"github.com/zenvx/CodeBattleCoordService/internal/wss/middleware"
	wsstypes "github.com/zenvx/CodeBattleCoordService/internal/wss/types"
)

func main() {
	cfg := configs.LoadConfig()

	redisClient := db.NewRedisClient(cfg)
	redisRepo := repo.NewRedisRepository(redisClient)

	mongoClient, err := db.InitMongo(&cfg)
	if err != nil {
		log.Fatalf("mongo init failed: %v", err)
	}
	mongoRepo := repo.NewMongoRepository(mongoClient, "codebattle")

	psqlDB, err := db.InitPsql(&cfg)
	if err != nil {
		log.Fatalf("psql init failed: %v", err)
	}
	psqlRepo := repo.NewPSQLRepository(psqlDB)

	producer, err := events.NewProducer(strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaOutcomeTopic)
	if err != nil {
		log.Fatalf("kafka producer init failed: %v", err)
	}
	defer producer.Close()

	board := leaderboard.NewManager(redisClient)
	updater := rating.NewUpdater(psqlRepo, board)
	problemCatalog := catalog.NewCatalog()
	judgeClient := judge.NewClient(cfg.JudgeBaseURL, time.Duration(cfg.JudgePollMillis)*time.Millisecond, cfg.JudgeMaxAttempts)

	jwtManager := jwt.NewJWTManager(cfg.JWTSecret)
	authMW := middleware.NewAuthMiddleware(jwtManager)

	appState := &global.State{
		Redis:       redisRepo,
		Mongo:       mongoRepo,
		Psql:        psqlRepo,
		LocalState:  state.NewLocalStateManager(),
		Leaderboard: board,
		JwtManager:  jwtManager,
		Presence:    presence.NewTracker(redisRepo),
		Matchmaker:  queue.NewMatchmaker(redisRepo, problemCatalog),
		Challenges:  challenge.NewCoordinator(redisRepo),
		Battles:     battle.NewManager(redisRepo, mongoRepo, updater, producer),
		Lobbies:     lobby.NewCoordinator(redisRepo),
		Rating:      updater,
		Judge:       judgeClient,
		Catalog:     problemCatalog,
	}

	dispatcher := wss.NewDispatcher()
	dispatcher.Register(wsstypes.PING_SERVER, wsshandler.PingHandler)

	dispatcher.Register(wsstypes.GO_ONLINE, wsshandler.GoOnlineHandler)
	dispatcher.Register(wsstypes.GO_OFFLINE, wsshandler.GoOfflineHandler)
	dispatcher.Register(wsstypes.HEARTBEAT, wsshandler.HeartbeatHandler)
	dispatcher.Register(wsstypes.GET_ONLINE_PLAYERS, wsshandler.GetOnlinePlayersHandler)

	dispatcher.Register(wsstypes.JOIN_QUEUE, wsshandler.JoinQueueHandler)
	dispatcher.Register(wsstypes.LEAVE_QUEUE, wsshandler.LeaveQueueHandler)

	dispatcher.Register(wsstypes.SEND_CHALLENGE, wsshandler.SendChallengeHandler)
	dispatcher.Register(wsstypes.RESPOND_CHALLENGE, wsshandler.RespondChallengeHandler)

	dispatcher.Register(wsstypes.SYNC_CODE, authMW.RequireBattleToken(wsshandler.SyncCodeHandler))
	dispatcher.Register(wsstypes.SUBMIT_CODE, authMW.RequireBattleToken(wsshandler.SubmitCodeHandler))
	dispatcher.Register(wsstypes.FORFEIT_BATTLE, authMW.RequireBattleToken(wsshandler.ForfeitBattleHandler))

	dispatcher.Register(wsstypes.CREATE_LOBBY, wsshandler.CreateLobbyHandler)
	dispatcher.Register(wsstypes.JOIN_LOBBY, wsshandler.JoinLobbyHandler)
	dispatcher.Register(wsstypes.LEAVE_LOBBY, wsshandler.LeaveLobbyHandler)
	dispatcher.Register(wsstypes.CREATE_GROUP, wsshandler.CreateGroupHandler)
	dispatcher.Register(wsstypes.JOIN_GROUP, wsshandler.JoinGroupHandler)
	dispatcher.Register(wsstypes.SET_BATTLE_CONFIG, wsshandler.SetBattleConfigHandler)
	dispatcher.Register(wsstypes.ADD_CUSTOM_PROBLEM, wsshandler.AddCustomProblemHandler)
	dispatcher.Register(wsstypes.START_LOBBY_BATTLE, wsshandler.StartLobbyBattleHandler)
	dispatcher.Register(wsstypes.SOLVE_PROBLEM, wsshandler.SolveProblemHandler)
	dispatcher.Register(wsstypes.END_LOBBY_BATTLE, wsshandler.EndLobbyBattleHandler)
	dispatcher.Register(wsstypes.RESET_LOBBY, wsshandler.ResetLobbyHandler)
	dispatcher.Register(wsstypes.DELETE_LOBBY, wsshandler.DeleteLobbyHandler)
	dispatcher.Register(wsstypes.FORFEIT_GROUP, wsshandler.ForfeitGroupHandler)

	dispatcher.Register(wsstypes.GET_LEADERBOARD, wsshandler.GetLeaderboardHandler)

	addr := ":" + cfg.HTTPPort
	if err := handlers.StartServer(addr, appState, wss.WsHandler(dispatcher, appState)); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
