package wsshandler

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/zenvx/CodeBattleCoordService/internal/model"
	"github.com/zenvx/CodeBattleCoordService/internal/wss/broadcasts"
	wsstypes "github.com/zenvx/CodeBattleCoordService/internal/wss/types"
)

func SyncCodeHandler(ctx *wsstypes.WsContext) error {
	var payload wsstypes.SyncCodePayload
	if err := decodePayload(ctx.Payload, &payload); err != nil {
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.SYNC_CODE, "Invalid payload format", nil)
	}

	ctx.State.LocalState.AddWSClient(payload.BattleId, payload.UserId, ctx.Conn)

	if err := ctx.State.Battles.SyncCode(context.Background(), payload.BattleId, payload.UserId, payload.Code); err != nil {
		log.Printf("[SyncCode] failed for %s in %s: %v", payload.UserId, payload.BattleId, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.SYNC_CODE, "Failed to sync code", nil)
	}
	return nil
}

// SubmitCodeHandler grades the submission against the battle's test cases and
// pushes the result through the battle manager. Passing every case finishes
// the battle.
func SubmitCodeHandler(ctx *wsstypes.WsContext) error {
	requestID := uuid.New().String()

	var payload wsstypes.SubmitCodePayload
	if err := decodePayload(ctx.Payload, &payload); err != nil {
		log.Printf("[%s] [SubmitCode] Unmarshal error: %v", requestID, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.SUBMIT_CODE, "Invalid payload format", nil)
	}

	ctx.State.LocalState.AddWSClient(payload.BattleId, payload.UserId, ctx.Conn)

	battleDoc, err := ctx.State.Redis.GetBattle(context.Background(), payload.BattleId)
	if err != nil {
		log.Printf("[%s] [SubmitCode] battle %s not found: %v", requestID, payload.BattleId, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.SUBMIT_CODE, "Battle not found", nil)
	}

	grade, err := ctx.State.Judge.ExecuteCode(context.Background(), payload.Code, payload.LanguageId, battleDoc.Problem.TestCases)
	if err != nil {
		log.Printf("[%s] [SubmitCode] judge failed for %s: %v", requestID, payload.UserId, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.SUBMIT_CODE, "Judge unavailable", nil)
	}

	updated, err := ctx.State.Battles.SubmitProgress(context.Background(), payload.BattleId, payload.UserId, grade.TestsPassed, grade.Success)
	if err != nil {
		log.Printf("[%s] [SubmitCode] progress update failed: %v", requestID, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.SUBMIT_CODE, "Failed to record progress", nil)
	}

	clients := ctx.State.LocalState.GetAllWSClients(payload.BattleId)
	slot := updated.SlotOf(payload.UserId)
	broadcasts.BroadcastBattleProgress(clients, payload.BattleId, slot, grade.TestsPassed, updated.Status == model.BattleFinished)

	if updated.Status == model.BattleFinished {
		broadcasts.BroadcastBattleFinished(clients, updated)
		finishBattlePresence(ctx, requestID, updated)
		ctx.State.LocalState.CleanupRoom(payload.BattleId)
	}

	return broadcasts.SendJSON(ctx.Conn, map[string]interface{}{
		"type":   wsstypes.SUBMIT_CODE,
		"status": "success",
		"payload": map[string]interface{}{
			"battleId":    payload.BattleId,
			"grade":       grade,
			"testsPassed": grade.TestsPassed,
			"finished":    grade.Success,
		},
	})
}

func ForfeitBattleHandler(ctx *wsstypes.WsContext) error {
	requestID := uuid.New().String()

	var payload wsstypes.ForfeitBattlePayload
	if err := decodePayload(ctx.Payload, &payload); err != nil {
		log.Printf("[%s] [ForfeitBattle] Unmarshal error: %v", requestID, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.FORFEIT_BATTLE, "Invalid payload format", nil)
	}

	updated, err := ctx.State.Battles.Forfeit(context.Background(), payload.BattleId, payload.UserId)
	if err != nil {
		log.Printf("[%s] [ForfeitBattle] failed for %s in %s: %v", requestID, payload.UserId, payload.BattleId, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.FORFEIT_BATTLE, "Failed to forfeit battle", nil)
	}

	log.Printf("[%s] [ForfeitBattle] %s forfeited %s", requestID, payload.UserId, payload.BattleId)

	clients := ctx.State.LocalState.GetAllWSClients(payload.BattleId)
	broadcasts.BroadcastBattleFinished(clients, updated)
	finishBattlePresence(ctx, requestID, updated)
	ctx.State.LocalState.CleanupRoom(payload.BattleId)

	return broadcasts.SendJSON(ctx.Conn, map[string]interface{}{
		"type":   wsstypes.FORFEIT_BATTLE,
		"status": "success",
		"payload": map[string]interface{}{
			"battleId": payload.BattleId,
			"winner":   updated.Winner,
		},
	})
}

// finishBattlePresence returns both players to available after a terminal
// transition.
func finishBattlePresence(ctx *wsstypes.WsContext, requestID string, battle *model.Battle) {
	for _, playerID := range []string{battle.Player1.ID, battle.Player2.ID} {
		if err := ctx.State.Presence.SetStatus(context.Background(), playerID, model.PresenceAvailable); err != nil {
			log.Printf("[%s] [Battle] presence reset failed for %s: %v", requestID, playerID, err)
		}
	}
}
