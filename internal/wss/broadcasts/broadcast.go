package broadcasts

import (
	"github.com/gorilla/websocket"

	"github.com/zenvx/CodeBattleCoordService/internal/model"
	wsstypes "github.com/zenvx/CodeBattleCoordService/internal/wss/types"
)

// BroadcastToRoom fans an event out to every connected client of a battle or
// lobby room.
func BroadcastToRoom(clients map[string]*websocket.Conn, eventType string, payload interface{}) {
	for _, conn := range clients {
		if conn == nil {
			continue
		}
		SendJSON(conn, map[string]interface{}{
			"type":    eventType,
			"status":  "ok",
			"payload": payload,
		})
	}
}

func BroadcastBattleProgress(clients map[string]*websocket.Conn, battleID string, slot model.PlayerSlot, testsPassed int, finished bool) {
	BroadcastToRoom(clients, wsstypes.BATTLE_PROGRESS, model.BattleProgressPayload{
		BattleID:    battleID,
		Slot:        slot,
		TestsPassed: testsPassed,
		Finished:    finished,
	})
}

func BroadcastBattleFinished(clients map[string]*websocket.Conn, battle *model.Battle) {
	BroadcastToRoom(clients, wsstypes.BATTLE_FINISHED, model.BattleFinishedPayload{
		BattleID:  battle.BattleID,
		Winner:    battle.Winner,
		WinnerID:  battle.WinnerID(),
		EndReason: battle.EndReason,
	})
}

func BroadcastLobbyUpdated(clients map[string]*websocket.Conn, lobby *model.Lobby) {
	BroadcastToRoom(clients, wsstypes.LOBBY_UPDATED, model.LobbyUpdatedPayload{
		LobbyID: lobby.LobbyID,
		Status:  lobby.Status,
		Lobby:   lobby,
	})
}

func BroadcastLobbyCompleted(clients map[string]*websocket.Conn, lobbyID string, result *model.LobbyResult) {
	BroadcastToRoom(clients, wsstypes.LOBBY_COMPLETED, model.LobbyCompletedPayload{
		LobbyID: lobbyID,
		Result:  result,
	})
}
