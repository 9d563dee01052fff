package wss

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zenvx/CodeBattleCoordService/internal/global"
	"github.com/zenvx/CodeBattleCoordService/internal/model"
	wsstypes "github.com/zenvx/CodeBattleCoordService/internal/wss/types"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func WsHandler(dispatcher *Dispatcher, appState *global.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("[WS] upgrade error:", err)
			return
		}
		defer conn.Close()
		log.Println("[WS] WebSocket connection established")

		var userID, roomID string

		for {
			conn.SetReadDeadline(time.Now().Add(model.WebsocketReadTimeout))

			_, msg, err := conn.ReadMessage()
			if err != nil {
				log.Printf("[WS] read error: %v (user: %s, room: %s)", err, userID, roomID)
				cleanupConnection(appState, userID, roomID)
				return
			}

			var wsMsg wsstypes.WsMessage
			if err := json.Unmarshal(msg, &wsMsg); err != nil {
				log.Println("[WS] invalid message format:", err)
				continue
			}

			log.Printf("[WS] received: type=%s payload=%v", wsMsg.Type, wsMsg.Payload)

			// track for cleanup
			if uid, ok := wsMsg.Payload["userId"].(string); ok {
				userID = uid
			}
			if bid, ok := wsMsg.Payload["battleId"].(string); ok {
				roomID = bid
			}
			if lid, ok := wsMsg.Payload["lobbyId"].(string); ok {
				roomID = lid
			}

			ctx := &wsstypes.WsContext{
				Conn:    conn,
				Payload: wsMsg.Payload,
				UserID:  userID,
				State:   appState,
			}

			if err := dispatcher.Dispatch(wsMsg.Type, ctx); err != nil {
				log.Printf("[Dispatch] error handling %s: %v", wsMsg.Type, err)
			}
		}
	}
}

// cleanupConnection runs when a socket drops: the player goes offline and
// leaves its room's local state. Store documents are untouched; staleness
// filtering and timeouts handle the rest.
func cleanupConnection(appState *global.State, userID, roomID string) {
	if userID == "" {
		log.Println("[WS] skipping cleanup: userID missing")
		return
	}

	log.Printf("[WS] cleaning up session: user=%s room=%s", userID, roomID)

	if err := appState.Presence.GoOffline(context.Background(), userID); err != nil {
		log.Printf("[Presence] failed to remove presence for %s: %v", userID, err)
	}

	appState.LocalState.RemoveWSClient(userID, userID)
	if roomID != "" {
		appState.LocalState.RemoveWSClient(roomID, userID)
	}
}
