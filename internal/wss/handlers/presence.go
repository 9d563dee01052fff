package wsshandler

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/zenvx/CodeBattleCoordService/internal/model"
	"github.com/zenvx/CodeBattleCoordService/internal/wss/broadcasts"
	wsstypes "github.com/zenvx/CodeBattleCoordService/internal/wss/types"
)

func GoOnlineHandler(ctx *wsstypes.WsContext) error {
	requestID := uuid.New().String()

	var payload wsstypes.GoOnlinePayload
	if err := decodePayload(ctx.Payload, &payload); err != nil {
		log.Printf("[%s] [GoOnline] Unmarshal error: %v", requestID, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.GO_ONLINE, "Invalid payload format", nil)
	}

	user := model.User{ID: payload.UserId, Name: payload.UserName, Avatar: payload.Avatar}
	if err := ctx.State.Presence.GoOnline(context.Background(), user); err != nil {
		log.Printf("[%s] [GoOnline] failed for %s: %v", requestID, payload.UserId, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.GO_ONLINE, "Failed to go online", nil)
	}

	// Personal room: lets other handlers push events straight to this player.
	ctx.State.LocalState.AddWSClient(payload.UserId, payload.UserId, ctx.Conn)

	log.Printf("[%s] [GoOnline] user %s is online", requestID, payload.UserId)
	return broadcasts.SendJSON(ctx.Conn, map[string]interface{}{
		"type":   wsstypes.GO_ONLINE,
		"status": "success",
		"payload": map[string]interface{}{
			"userId": payload.UserId,
		},
	})
}

func GoOfflineHandler(ctx *wsstypes.WsContext) error {
	requestID := uuid.New().String()

	userID, _ := ctx.Payload["userId"].(string)
	if userID == "" {
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.GO_OFFLINE, "userId is required", nil)
	}

	if err := ctx.State.Presence.GoOffline(context.Background(), userID); err != nil {
		log.Printf("[%s] [GoOffline] failed for %s: %v", requestID, userID, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.GO_OFFLINE, "Failed to go offline", nil)
	}

	ctx.State.LocalState.CleanupRoom(userID)

	log.Printf("[%s] [GoOffline] user %s is offline", requestID, userID)
	return broadcasts.SendJSON(ctx.Conn, map[string]interface{}{
		"type":   wsstypes.GO_OFFLINE,
		"status": "success",
		"payload": map[string]interface{}{
			"userId": userID,
		},
	})
}

func HeartbeatHandler(ctx *wsstypes.WsContext) error {
	userID, _ := ctx.Payload["userId"].(string)
	if userID == "" {
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.HEARTBEAT, "userId is required", nil)
	}

	if err := ctx.State.Presence.Touch(context.Background(), userID); err != nil {
		log.Printf("[Heartbeat] touch failed for %s: %v", userID, err)
	}
	return nil
}

func GetOnlinePlayersHandler(ctx *wsstypes.WsContext) error {
	requestID := uuid.New().String()

	players, err := ctx.State.Presence.OnlinePlayers(context.Background())
	if err != nil {
		log.Printf("[%s] [OnlinePlayers] list failed: %v", requestID, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.GET_ONLINE_PLAYERS, "Failed to list online players", nil)
	}

	return broadcasts.SendJSON(ctx.Conn, map[string]interface{}{
		"type":   wsstypes.GET_ONLINE_PLAYERS,
		"status": "success",
		"payload": map[string]interface{}{
			"players": players,
		},
	})
}
