package wsshandler

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/zenvx/CodeBattleCoordService/internal/model"
	"github.com/zenvx/CodeBattleCoordService/internal/queue"
	"github.com/zenvx/CodeBattleCoordService/internal/wss/broadcasts"
	wsstypes "github.com/zenvx/CodeBattleCoordService/internal/wss/types"
)

func JoinQueueHandler(ctx *wsstypes.WsContext) error {
	requestID := uuid.New().String()

	var payload wsstypes.JoinQueuePayload
	if err := decodePayload(ctx.Payload, &payload); err != nil {
		log.Printf("[%s] [JoinQueue] Unmarshal error: %v", requestID, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.JOIN_QUEUE, "Invalid payload format", nil)
	}

	user := model.User{ID: payload.UserId, Name: payload.UserName}
	filters := model.MatchFilters{Difficulty: payload.Difficulty, Category: payload.Category}
	if filters.Difficulty == "" {
		filters.Difficulty = model.FilterRandom
	}
	if filters.Category == "" {
		filters.Category = model.FilterRandom
	}

	entry, err := ctx.State.Matchmaker.Join(context.Background(), user, filters)
	if err != nil {
		log.Printf("[%s] [JoinQueue] join failed for %s: %v", requestID, payload.UserId, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.JOIN_QUEUE, "Failed to join queue", nil)
	}

	log.Printf("[%s] [JoinQueue] user %s queued as %s", requestID, payload.UserId, entry.EntryID)

	// The search runs beyond this message's lifetime; the outcome lands on the
	// same socket as QUEUE_MATCHED or QUEUE_TIMEOUT.
	conn := ctx.Conn
	appState := ctx.State
	go func() {
		searchCtx, cancel := context.WithTimeout(context.Background(), model.QueueSearchTimeout+5*time.Second)
		defer cancel()

		battleID, err := appState.Matchmaker.Await(searchCtx, entry.EntryID)
		if err != nil {
			if errors.Is(err, queue.ErrSearchTimeout) {
				log.Printf("[%s] [JoinQueue] search timed out for %s", requestID, entry.EntryID)
				broadcasts.SendJSON(conn, map[string]interface{}{
					"type":   wsstypes.QUEUE_TIMEOUT,
					"status": "ok",
					"payload": map[string]interface{}{
						"entryId": entry.EntryID,
					},
				})
				return
			}
			log.Printf("[%s] [JoinQueue] search failed for %s: %v", requestID, entry.EntryID, err)
			return
		}

		if err := appState.Presence.SetStatus(context.Background(), payload.UserId, model.PresenceInBattle); err != nil {
			log.Printf("[%s] [JoinQueue] presence update failed for %s: %v", requestID, payload.UserId, err)
		}

		token, _ := appState.JwtManager.GenerateToken(payload.UserId, battleID, time.Hour)
		broadcasts.SendJSON(conn, map[string]interface{}{
			"type":   wsstypes.QUEUE_MATCHED,
			"status": "ok",
			"payload": model.QueueMatchedPayload{
				EntryID:  entry.EntryID,
				BattleID: battleID,
				Token:    token,
			},
		})
	}()

	return broadcasts.SendJSON(ctx.Conn, map[string]interface{}{
		"type":   wsstypes.JOIN_QUEUE,
		"status": "success",
		"payload": map[string]interface{}{
			"entryId": entry.EntryID,
		},
	})
}

func LeaveQueueHandler(ctx *wsstypes.WsContext) error {
	requestID := uuid.New().String()

	var payload wsstypes.LeaveQueuePayload
	if err := decodePayload(ctx.Payload, &payload); err != nil {
		log.Printf("[%s] [LeaveQueue] Unmarshal error: %v", requestID, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.LEAVE_QUEUE, "Invalid payload format", nil)
	}

	if err := ctx.State.Matchmaker.Leave(context.Background(), payload.EntryId); err != nil {
		log.Printf("[%s] [LeaveQueue] leave failed for %s: %v", requestID, payload.EntryId, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.LEAVE_QUEUE, "Failed to leave queue", nil)
	}

	log.Printf("[%s] [LeaveQueue] entry %s removed", requestID, payload.EntryId)
	return broadcasts.SendJSON(ctx.Conn, map[string]interface{}{
		"type":   wsstypes.LEAVE_QUEUE,
		"status": "success",
		"payload": map[string]interface{}{
			"entryId": payload.EntryId,
		},
	})
}
