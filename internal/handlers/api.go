package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/zenvx/CodeBattleCoordService/internal/global"
)

// API carries the shared state into the REST handlers.
type API struct {
	State *global.State
}

func NewAPI(appState *global.State) *API {
	return &API{State: appState}
}

func (a *API) HealthHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSONResponse(w, map[string]string{"health": "ok"}, http.StatusOK)
}

// OnlinePlayersHandler lists presence records that pass the staleness filter.
func (a *API) OnlinePlayersHandler(w http.ResponseWriter, r *http.Request) {
	players, err := a.State.Presence.OnlinePlayers(r.Context())
	if err != nil {
		WriteJSONError(w, "Failed to list online players", http.StatusInternalServerError)
		return
	}
	WriteJSONResponse(w, players, http.StatusOK)
}

func (a *API) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	limit := 25
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	entries, err := a.State.Leaderboard.Top(r.Context(), limit)
	if err != nil {
		WriteJSONError(w, "Failed to fetch leaderboard", http.StatusInternalServerError)
		return
	}
	WriteJSONResponse(w, entries, http.StatusOK)
}

func (a *API) UserStatsHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID := vars["user_id"]
	if userID == "" {
		WriteJSONError(w, "Missing user_id", http.StatusBadRequest)
		return
	}

	stats, err := a.State.Psql.GetUserStats(r.Context(), userID)
	if err != nil {
		WriteJSONError(w, "Failed to fetch user stats", http.StatusInternalServerError)
		return
	}

	rank, err := a.State.Leaderboard.GetRank(r.Context(), userID)
	if err != nil {
		rank = -1
	}

	WriteJSONResponse(w, map[string]interface{}{
		"stats":           stats,
		"leaderboardRank": rank,
	}, http.StatusOK)
}

// BattleHistoryHandler pages through a user's archived battles.
func (a *API) BattleHistoryHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID := vars["user_id"]
	if userID == "" {
		WriteJSONError(w, "Missing user_id", http.StatusBadRequest)
		return
	}

	page := 1
	pageSize := 20
	if raw := r.URL.Query().Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page = n
		}
	}
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			pageSize = n
		}
	}

	battles, err := a.State.Mongo.GetUserBattles(r.Context(), userID, page, pageSize)
	if err != nil {
		WriteJSONError(w, "Failed to fetch battle history", http.StatusInternalServerError)
		return
	}
	WriteJSONResponse(w, battles, http.StatusOK)
}

func (a *API) GetBattleHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	battleID := vars["battle_id"]
	if battleID == "" {
		WriteJSONError(w, "Missing battle_id", http.StatusBadRequest)
		return
	}

	// Active battles live in Redis; finished ones in the archive.
	battle, err := a.State.Redis.GetBattle(r.Context(), battleID)
	if err != nil {
		battle, err = a.State.Mongo.GetArchivedBattle(r.Context(), battleID)
		if err != nil {
			WriteJSONError(w, "Battle not found", http.StatusNotFound)
			return
		}
	}
	WriteJSONResponse(w, battle, http.StatusOK)
}
