package wsshandler

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/zenvx/CodeBattleCoordService/internal/wss/broadcasts"
	wsstypes "github.com/zenvx/CodeBattleCoordService/internal/wss/types"
)

const defaultLeaderboardLimit = 25

func GetLeaderboardHandler(ctx *wsstypes.WsContext) error {
	requestID := uuid.New().String()

	var payload wsstypes.GetLeaderboardPayload
	if err := decodePayload(ctx.Payload, &payload); err != nil {
		log.Printf("[%s] [GetLeaderboard] Unmarshal error: %v", requestID, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.GET_LEADERBOARD, "Invalid payload format", nil)
	}
	if payload.Limit <= 0 {
		payload.Limit = defaultLeaderboardLimit
	}

	entries, err := ctx.State.Leaderboard.Top(context.Background(), payload.Limit)
	if err != nil {
		log.Printf("[%s] [GetLeaderboard] fetch failed: %v", requestID, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.GET_LEADERBOARD, "Failed to fetch leaderboard", nil)
	}

	response := map[string]interface{}{
		"entries": entries,
	}
	if payload.UserId != "" {
		if rank, err := ctx.State.Leaderboard.GetRank(context.Background(), payload.UserId); err == nil {
			response["myRank"] = rank
		}
	}

	return broadcasts.SendJSON(ctx.Conn, map[string]interface{}{
		"type":    wsstypes.GET_LEADERBOARD,
		"status":  "success",
		"payload": response,
	})
}

func PingHandler(ctx *wsstypes.WsContext) error {
	return broadcasts.SendJSON(ctx.Conn, map[string]interface{}{
		"type":   wsstypes.PING_SERVER,
		"status": "success",
	})
}
