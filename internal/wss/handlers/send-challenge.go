package wsshandler

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/zenvx/CodeBattleCoordService/internal/challenge"
	"github.com/zenvx/CodeBattleCoordService/internal/model"
	"github.com/zenvx/CodeBattleCoordService/internal/wss/broadcasts"
	wsstypes "github.com/zenvx/CodeBattleCoordService/internal/wss/types"
)

func SendChallengeHandler(ctx *wsstypes.WsContext) error {
	requestID := uuid.New().String()

	var payload wsstypes.SendChallengePayload
	if err := decodePayload(ctx.Payload, &payload); err != nil {
		log.Printf("[%s] [SendChallenge] Unmarshal error: %v", requestID, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.SEND_CHALLENGE, "Invalid payload format", nil)
	}

	if !ctx.State.Presence.IsLive(context.Background(), payload.TargetId) {
		log.Printf("[%s] [SendChallenge] target %s is offline", requestID, payload.TargetId)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.SEND_CHALLENGE, "Target player is offline", nil)
	}

	filters := model.MatchFilters{Difficulty: payload.Difficulty, Category: payload.Category}
	if filters.Difficulty == "" {
		filters.Difficulty = model.FilterRandom
	}
	if filters.Category == "" {
		filters.Category = model.FilterRandom
	}
	problem, err := ctx.State.Catalog.PickProblem(filters)
	if err != nil {
		log.Printf("[%s] [SendChallenge] no problem for filters %+v: %v", requestID, filters, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.SEND_CHALLENGE, "No problem available for those filters", nil)
	}

	from := model.User{ID: payload.UserId, Name: payload.UserName}
	if err := ctx.State.Challenges.Send(context.Background(), from, payload.TargetId, problem); err != nil {
		log.Printf("[%s] [SendChallenge] send failed: %v", requestID, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.SEND_CHALLENGE, "Failed to send challenge", nil)
	}

	log.Printf("[%s] [SendChallenge] %s challenged %s", requestID, payload.UserId, payload.TargetId)

	// Push the invite to the recipient's personal room if it is connected
	// here; otherwise the mailbox write alone carries it.
	if targetConn, ok := ctx.State.LocalState.GetWSClient(payload.TargetId, payload.TargetId); ok {
		broadcasts.SendJSON(targetConn, map[string]interface{}{
			"type":   wsstypes.CHALLENGE_RECEIVED,
			"status": "ok",
			"payload": model.ChallengeReceivedPayload{
				From:      from,
				Problem:   problem,
				CreatedAt: time.Now().UnixMilli(),
			},
		})
	}

	// Sender side owns the expiry timer; the terminal outcome lands on this
	// socket exactly once.
	conn := ctx.Conn
	appState := ctx.State
	go func() {
		awaitCtx, cancel := context.WithTimeout(context.Background(), model.ChallengeResponseTimeout+10*time.Second)
		defer cancel()

		err := appState.Challenges.AwaitResponse(awaitCtx, payload.TargetId, challenge.Callbacks{
			OnAccepted: func(battleID string) {
				token, _ := appState.JwtManager.GenerateToken(payload.UserId, battleID, time.Hour)
				broadcasts.SendJSON(conn, map[string]interface{}{
					"type":   wsstypes.CHALLENGE_ACCEPTED,
					"status": "ok",
					"payload": map[string]interface{}{
						"battleId": battleID,
						"token":    token,
					},
				})
			},
			OnDeclined: func() {
				broadcasts.SendJSON(conn, map[string]interface{}{
					"type":   wsstypes.CHALLENGE_DECLINED,
					"status": "ok",
					"payload": map[string]interface{}{
						"targetId": payload.TargetId,
					},
				})
			},
			OnExpired: func() {
				broadcasts.SendJSON(conn, map[string]interface{}{
					"type":   wsstypes.CHALLENGE_EXPIRED,
					"status": "ok",
					"payload": map[string]interface{}{
						"targetId": payload.TargetId,
					},
				})
			},
		})
		if err != nil {
			log.Printf("[%s] [SendChallenge] await failed: %v", requestID, err)
		}
	}()

	return broadcasts.SendJSON(ctx.Conn, map[string]interface{}{
		"type":   wsstypes.SEND_CHALLENGE,
		"status": "success",
		"payload": map[string]interface{}{
			"targetId": payload.TargetId,
			"problem":  problem,
		},
	})
}

func RespondChallengeHandler(ctx *wsstypes.WsContext) error {
	requestID := uuid.New().String()

	var payload wsstypes.RespondChallengePayload
	if err := decodePayload(ctx.Payload, &payload); err != nil {
		log.Printf("[%s] [RespondChallenge] Unmarshal error: %v", requestID, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.RESPOND_CHALLENGE, "Invalid payload format", nil)
	}

	recipient := model.User{ID: payload.UserId, Name: payload.UserName}
	battle, err := ctx.State.Challenges.Respond(context.Background(), recipient, payload.Accept)
	if err != nil {
		log.Printf("[%s] [RespondChallenge] respond failed for %s: %v", requestID, payload.UserId, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.RESPOND_CHALLENGE, "Failed to respond to challenge", nil)
	}

	response := map[string]interface{}{
		"accepted": payload.Accept,
	}
	if battle != nil {
		token, _ := ctx.State.JwtManager.GenerateToken(payload.UserId, battle.BattleID, time.Hour)
		response["battleId"] = battle.BattleID
		response["token"] = token

		if err := ctx.State.Presence.SetStatus(context.Background(), payload.UserId, model.PresenceInBattle); err != nil {
			log.Printf("[%s] [RespondChallenge] presence update failed: %v", requestID, err)
		}
	}

	log.Printf("[%s] [RespondChallenge] %s accepted=%v", requestID, payload.UserId, payload.Accept)
	return broadcasts.SendJSON(ctx.Conn, map[string]interface{}{
		"type":    wsstypes.RESPOND_CHALLENGE,
		"status":  "success",
		"payload": response,
	})
}
