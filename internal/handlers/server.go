package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/zenvx/CodeBattleCoordService/internal/global"
)

// StartServer starts the battle coordinator HTTP server.
func StartServer(addr string, appState *global.State, wsHandler http.HandlerFunc) error {
	r := mux.NewRouter()
	api := NewAPI(appState)

	// WebSocket endpoint
	r.HandleFunc("/ws", wsHandler).Methods("GET")

	// REST API endpoints
	r.HandleFunc("/health", api.HealthHandler).Methods("GET")
	r.HandleFunc("/players/online", api.OnlinePlayersHandler).Methods("GET")
	r.HandleFunc("/leaderboard", api.LeaderboardHandler).Methods("GET")
	r.HandleFunc("/users/{user_id}/stats", api.UserStatsHandler).Methods("GET")
	r.HandleFunc("/users/{user_id}/battles", api.BattleHistoryHandler).Methods("GET")
	r.HandleFunc("/battles/{battle_id}", api.GetBattleHandler).Methods("GET")

	http.Handle("/", r)
	log.Printf("Starting battle coordinator server on %s", addr)
	return http.ListenAndServe(addr, nil)
}
