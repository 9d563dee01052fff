package wsstypes

import (
	"github.com/gorilla/websocket"

	"github.com/zenvx/CodeBattleCoordService/internal/global"
	"github.com/zenvx/CodeBattleCoordService/internal/jwt"
)

// WsContext is handed to every dispatched handler.
type WsContext struct {
	Conn    *websocket.Conn
	Payload map[string]any
	UserID  string
	Claims  *jwt.CustomClaims
	State   *global.State
}

type WsMessage struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type GoOnlinePayload struct {
	UserId   string `json:"userId"`
	UserName string `json:"userName"`
	Avatar   string `json:"avatar"`
	Token    string `json:"token"`
}

type JoinQueuePayload struct {
	UserId     string `json:"userId"`
	UserName   string `json:"userName"`
	Difficulty string `json:"difficulty"`
	Category   string `json:"category"`
}

type LeaveQueuePayload struct {
	UserId  string `json:"userId"`
	EntryId string `json:"entryId"`
}

type SendChallengePayload struct {
	UserId     string `json:"userId"`
	UserName   string `json:"userName"`
	TargetId   string `json:"targetId"`
	Difficulty string `json:"difficulty"`
	Category   string `json:"category"`
}

type RespondChallengePayload struct {
	UserId   string `json:"userId"`
	UserName string `json:"userName"`
	Accept   bool   `json:"accept"`
}

type SyncCodePayload struct {
	UserId   string `json:"userId"`
	BattleId string `json:"battleId"`
	Code     string `json:"code"`
}

type SubmitCodePayload struct {
	UserId     string `json:"userId"`
	BattleId   string `json:"battleId"`
	Code       string `json:"code"`
	LanguageId int    `json:"languageId"`
}

type ForfeitBattlePayload struct {
	UserId   string `json:"userId"`
	BattleId string `json:"battleId"`
}

type LobbyActionPayload struct {
	UserId   string `json:"userId"`
	UserName string `json:"userName"`
	Avatar   string `json:"avatar"`
	LobbyId  string `json:"lobbyId"`
	GroupId  string `json:"groupId"`
}

type SolveProblemPayload struct {
	UserId     string `json:"userId"`
	LobbyId    string `json:"lobbyId"`
	GroupId    string `json:"groupId"`
	ProblemId  string `json:"problemId"`
	Code       string `json:"code"`
	LanguageId int    `json:"languageId"`
}

type GetLeaderboardPayload struct {
	UserId string `json:"userId"`
	Limit  int    `json:"limit"`
}

const (
	PING_SERVER = "PING_SERVER"

	GO_ONLINE  = "GO_ONLINE"
	GO_OFFLINE = "GO_OFFLINE"
	HEARTBEAT  = "HEARTBEAT"

	JOIN_QUEUE    = "JOIN_QUEUE"
	LEAVE_QUEUE   = "LEAVE_QUEUE"
	QUEUE_MATCHED = "QUEUE_MATCHED"
	QUEUE_TIMEOUT = "QUEUE_TIMEOUT"

	SEND_CHALLENGE     = "SEND_CHALLENGE"
	RESPOND_CHALLENGE  = "RESPOND_CHALLENGE"
	CHALLENGE_RECEIVED = "CHALLENGE_RECEIVED"
	CHALLENGE_ACCEPTED = "CHALLENGE_ACCEPTED"
	CHALLENGE_DECLINED = "CHALLENGE_DECLINED"
	CHALLENGE_EXPIRED  = "CHALLENGE_EXPIRED"

	SYNC_CODE       = "SYNC_CODE"
	SUBMIT_CODE     = "SUBMIT_CODE"
	BATTLE_PROGRESS = "BATTLE_PROGRESS"
	BATTLE_FINISHED = "BATTLE_FINISHED"
	FORFEIT_BATTLE  = "FORFEIT_BATTLE"

	CREATE_LOBBY       = "CREATE_LOBBY"
	JOIN_LOBBY         = "JOIN_LOBBY"
	LEAVE_LOBBY        = "LEAVE_LOBBY"
	CREATE_GROUP       = "CREATE_GROUP"
	JOIN_GROUP         = "JOIN_GROUP"
	SET_BATTLE_CONFIG  = "SET_BATTLE_CONFIG"
	ADD_CUSTOM_PROBLEM = "ADD_CUSTOM_PROBLEM"
	START_LOBBY_BATTLE = "START_LOBBY_BATTLE"
	SOLVE_PROBLEM      = "SOLVE_PROBLEM"
	END_LOBBY_BATTLE   = "END_LOBBY_BATTLE"
	RESET_LOBBY        = "RESET_LOBBY"
	DELETE_LOBBY       = "DELETE_LOBBY"
	FORFEIT_GROUP      = "FORFEIT_GROUP"
	LOBBY_UPDATED      = "LOBBY_UPDATED"
	LOBBY_COMPLETED    = "LOBBY_COMPLETED"

	GET_LEADERBOARD    = "GET_LEADERBOARD"
	GET_ONLINE_PLAYERS = "GET_ONLINE_PLAYERS"

	AUTH_ERROR = "AUTH_ERROR"
)
