package wsshandler

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/zenvx/CodeBattleCoordService/internal/model"
	"github.com/zenvx/CodeBattleCoordService/internal/wss/broadcasts"
	wsstypes "github.com/zenvx/CodeBattleCoordService/internal/wss/types"
)

func CreateLobbyHandler(ctx *wsstypes.WsContext) error {
	requestID := uuid.New().String()

	var payload wsstypes.LobbyActionPayload
	if err := decodePayload(ctx.Payload, &payload); err != nil {
		log.Printf("[%s] [CreateLobby] Unmarshal error: %v", requestID, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.CREATE_LOBBY, "Invalid payload format", nil)
	}

	host := model.User{ID: payload.UserId, Name: payload.UserName, Avatar: payload.Avatar}
	lobbyDoc, err := ctx.State.Lobbies.CreateLobby(context.Background(), host)
	if err != nil {
		log.Printf("[%s] [CreateLobby] failed for %s: %v", requestID, payload.UserId, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.CREATE_LOBBY, "Failed to create lobby", nil)
	}

	ctx.State.LocalState.AddWSClient(lobbyDoc.LobbyID, payload.UserId, ctx.Conn)
	log.Printf("[%s] [CreateLobby] %s created lobby %s", requestID, payload.UserId, lobbyDoc.LobbyID)

	return broadcasts.SendJSON(ctx.Conn, map[string]interface{}{
		"type":   wsstypes.CREATE_LOBBY,
		"status": "success",
		"payload": map[string]interface{}{
			"lobbyId": lobbyDoc.LobbyID,
			"lobby":   lobbyDoc,
		},
	})
}

func JoinLobbyHandler(ctx *wsstypes.WsContext) error {
	requestID := uuid.New().String()

	var payload wsstypes.LobbyActionPayload
	if err := decodePayload(ctx.Payload, &payload); err != nil {
		log.Printf("[%s] [JoinLobby] Unmarshal error: %v", requestID, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.JOIN_LOBBY, "Invalid payload format", nil)
	}

	user := model.User{ID: payload.UserId, Name: payload.UserName, Avatar: payload.Avatar}
	lobbyDoc, err := ctx.State.Lobbies.JoinLobby(context.Background(), payload.LobbyId, user)
	if err != nil {
		log.Printf("[%s] [JoinLobby] failed for %s: %v", requestID, payload.UserId, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.JOIN_LOBBY, "Failed to join lobby", nil)
	}

	ctx.State.LocalState.AddWSClient(payload.LobbyId, payload.UserId, ctx.Conn)
	broadcasts.BroadcastLobbyUpdated(ctx.State.LocalState.GetAllWSClients(payload.LobbyId), lobbyDoc)
	return nil
}

func LeaveLobbyHandler(ctx *wsstypes.WsContext) error {
	requestID := uuid.New().String()

	var payload wsstypes.LobbyActionPayload
	if err := decodePayload(ctx.Payload, &payload); err != nil {
		log.Printf("[%s] [LeaveLobby] Unmarshal error: %v", requestID, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.LEAVE_LOBBY, "Invalid payload format", nil)
	}

	lobbyDoc, err := ctx.State.Lobbies.LeaveLobby(context.Background(), payload.LobbyId, payload.UserId)
	if err != nil {
		log.Printf("[%s] [LeaveLobby] failed for %s: %v", requestID, payload.UserId, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.LEAVE_LOBBY, "Failed to leave lobby", nil)
	}

	// Manager leaving flags abnormal termination for everyone else.
	if payload.UserId == lobbyDoc.HostID {
		if updated, err := ctx.State.Lobbies.SetManagerOnline(context.Background(), payload.LobbyId, false); err == nil {
			lobbyDoc = updated
		}
	}

	ctx.State.LocalState.RemoveWSClient(payload.LobbyId, payload.UserId)
	broadcasts.BroadcastLobbyUpdated(ctx.State.LocalState.GetAllWSClients(payload.LobbyId), lobbyDoc)
	return nil
}

func CreateGroupHandler(ctx *wsstypes.WsContext) error {
	requestID := uuid.New().String()

	var payload wsstypes.LobbyActionPayload
	if err := decodePayload(ctx.Payload, &payload); err != nil {
		log.Printf("[%s] [CreateGroup] Unmarshal error: %v", requestID, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.CREATE_GROUP, "Invalid payload format", nil)
	}
	name, _ := ctx.Payload["name"].(string)
	color, _ := ctx.Payload["color"].(string)

	groupID, err := ctx.State.Lobbies.CreateGroup(context.Background(), payload.LobbyId, payload.UserId, name, color)
	if err != nil {
		log.Printf("[%s] [CreateGroup] failed in %s: %v", requestID, payload.LobbyId, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.CREATE_GROUP, "Failed to create group", nil)
	}

	lobbyDoc, err := ctx.State.Lobbies.GetLobby(context.Background(), payload.LobbyId)
	if err == nil {
		broadcasts.BroadcastLobbyUpdated(ctx.State.LocalState.GetAllWSClients(payload.LobbyId), lobbyDoc)
	}

	return broadcasts.SendJSON(ctx.Conn, map[string]interface{}{
		"type":   wsstypes.CREATE_GROUP,
		"status": "success",
		"payload": map[string]interface{}{
			"lobbyId": payload.LobbyId,
			"groupId": groupID,
		},
	})
}

func JoinGroupHandler(ctx *wsstypes.WsContext) error {
	requestID := uuid.New().String()

	var payload wsstypes.LobbyActionPayload
	if err := decodePayload(ctx.Payload, &payload); err != nil {
		log.Printf("[%s] [JoinGroup] Unmarshal error: %v", requestID, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.JOIN_GROUP, "Invalid payload format", nil)
	}

	lobbyDoc, err := ctx.State.Lobbies.JoinGroup(context.Background(), payload.LobbyId, payload.GroupId, payload.UserId)
	if err != nil {
		log.Printf("[%s] [JoinGroup] failed for %s: %v", requestID, payload.UserId, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.JOIN_GROUP, "Failed to join group", nil)
	}

	broadcasts.BroadcastLobbyUpdated(ctx.State.LocalState.GetAllWSClients(payload.LobbyId), lobbyDoc)
	return nil
}

func SetBattleConfigHandler(ctx *wsstypes.WsContext) error {
	requestID := uuid.New().String()

	var payload wsstypes.LobbyActionPayload
	if err := decodePayload(ctx.Payload, &payload); err != nil {
		log.Printf("[%s] [SetBattleConfig] Unmarshal error: %v", requestID, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.SET_BATTLE_CONFIG, "Invalid payload format", nil)
	}

	var config model.LobbyBattleConfig
	if raw, ok := ctx.Payload["config"].(map[string]any); ok {
		if err := decodePayload(raw, &config); err != nil {
			return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.SET_BATTLE_CONFIG, "Invalid config format", nil)
		}
	}

	lobbyDoc, err := ctx.State.Lobbies.SetBattleConfig(context.Background(), payload.LobbyId, payload.UserId, config)
	if err != nil {
		log.Printf("[%s] [SetBattleConfig] failed in %s: %v", requestID, payload.LobbyId, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.SET_BATTLE_CONFIG, "Failed to set battle config", nil)
	}

	broadcasts.BroadcastLobbyUpdated(ctx.State.LocalState.GetAllWSClients(payload.LobbyId), lobbyDoc)
	return nil
}

func AddCustomProblemHandler(ctx *wsstypes.WsContext) error {
	requestID := uuid.New().String()

	var payload wsstypes.LobbyActionPayload
	if err := decodePayload(ctx.Payload, &payload); err != nil {
		log.Printf("[%s] [AddCustomProblem] Unmarshal error: %v", requestID, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.ADD_CUSTOM_PROBLEM, "Invalid payload format", nil)
	}

	var problem model.Problem
	if raw, ok := ctx.Payload["problem"].(map[string]any); ok {
		if err := decodePayload(raw, &problem); err != nil {
			return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.ADD_CUSTOM_PROBLEM, "Invalid problem format", nil)
		}
	}

	lobbyDoc, err := ctx.State.Lobbies.AddCustomProblem(context.Background(), payload.LobbyId, payload.UserId, problem)
	if err != nil {
		log.Printf("[%s] [AddCustomProblem] rejected in %s: %v", requestID, payload.LobbyId, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.ADD_CUSTOM_PROBLEM, err.Error(), nil)
	}

	broadcasts.BroadcastLobbyUpdated(ctx.State.LocalState.GetAllWSClients(payload.LobbyId), lobbyDoc)
	return nil
}

func StartLobbyBattleHandler(ctx *wsstypes.WsContext) error {
	requestID := uuid.New().String()

	var payload wsstypes.LobbyActionPayload
	if err := decodePayload(ctx.Payload, &payload); err != nil {
		log.Printf("[%s] [StartLobbyBattle] Unmarshal error: %v", requestID, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.START_LOBBY_BATTLE, "Invalid payload format", nil)
	}

	lobbyDoc, err := ctx.State.Lobbies.StartBattle(context.Background(), payload.LobbyId, payload.UserId)
	if err != nil {
		log.Printf("[%s] [StartLobbyBattle] rejected in %s: %v", requestID, payload.LobbyId, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.START_LOBBY_BATTLE, err.Error(), nil)
	}

	log.Printf("[%s] [StartLobbyBattle] lobby %s entered battle", requestID, payload.LobbyId)
	broadcasts.BroadcastLobbyUpdated(ctx.State.LocalState.GetAllWSClients(payload.LobbyId), lobbyDoc)
	return nil
}

// SolveProblemHandler grades a lobby submission and, on success, records the
// solve for the player's group.
func SolveProblemHandler(ctx *wsstypes.WsContext) error {
	requestID := uuid.New().String()

	var payload wsstypes.SolveProblemPayload
	if err := decodePayload(ctx.Payload, &payload); err != nil {
		log.Printf("[%s] [SolveProblem] Unmarshal error: %v", requestID, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.SOLVE_PROBLEM, "Invalid payload format", nil)
	}

	lobbyDoc, err := ctx.State.Lobbies.GetLobby(context.Background(), payload.LobbyId)
	if err != nil {
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.SOLVE_PROBLEM, "Lobby not found", nil)
	}

	problem, found := lobbyProblem(ctx, lobbyDoc, payload.ProblemId)
	if !found {
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.SOLVE_PROBLEM, "Problem not found", nil)
	}

	grade, err := ctx.State.Judge.ExecuteCode(context.Background(), payload.Code, payload.LanguageId, problem.TestCases)
	if err != nil {
		log.Printf("[%s] [SolveProblem] judge failed for %s: %v", requestID, payload.UserId, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.SOLVE_PROBLEM, "Judge unavailable", nil)
	}

	if !grade.Success {
		return broadcasts.SendJSON(ctx.Conn, map[string]interface{}{
			"type":   wsstypes.SOLVE_PROBLEM,
			"status": "success",
			"payload": map[string]interface{}{
				"problemId": payload.ProblemId,
				"solved":    false,
				"grade":     grade,
			},
		})
	}

	result, err := ctx.State.Lobbies.SolveProblem(context.Background(), payload.LobbyId, payload.ProblemId, payload.GroupId, payload.UserId)
	if err != nil {
		log.Printf("[%s] [SolveProblem] record failed in %s: %v", requestID, payload.LobbyId, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.SOLVE_PROBLEM, "Failed to record solve", nil)
	}

	clients := ctx.State.LocalState.GetAllWSClients(payload.LobbyId)
	if updated, err := ctx.State.Lobbies.GetLobby(context.Background(), payload.LobbyId); err == nil {
		broadcasts.BroadcastLobbyUpdated(clients, updated)
	}
	if result.Completed && result.Result != nil {
		broadcasts.BroadcastLobbyCompleted(clients, payload.LobbyId, result.Result)
	}

	return broadcasts.SendJSON(ctx.Conn, map[string]interface{}{
		"type":   wsstypes.SOLVE_PROBLEM,
		"status": "success",
		"payload": map[string]interface{}{
			"problemId":     payload.ProblemId,
			"solved":        true,
			"alreadySolved": result.AlreadySolved,
			"completed":     result.Completed,
		},
	})
}

func lobbyProblem(ctx *wsstypes.WsContext, lobbyDoc *model.Lobby, problemID string) (model.Problem, bool) {
	for _, p := range lobbyDoc.CustomProblems {
		if p.ID == problemID {
			return p, true
		}
	}
	return ctx.State.Catalog.GetProblem(problemID)
}

func EndLobbyBattleHandler(ctx *wsstypes.WsContext) error {
	requestID := uuid.New().String()

	var payload wsstypes.LobbyActionPayload
	if err := decodePayload(ctx.Payload, &payload); err != nil {
		log.Printf("[%s] [EndLobbyBattle] Unmarshal error: %v", requestID, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.END_LOBBY_BATTLE, "Invalid payload format", nil)
	}

	result, err := ctx.State.Lobbies.EndBattle(context.Background(), payload.LobbyId, payload.UserId)
	if err != nil {
		log.Printf("[%s] [EndLobbyBattle] rejected in %s: %v", requestID, payload.LobbyId, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.END_LOBBY_BATTLE, err.Error(), nil)
	}

	broadcasts.BroadcastLobbyCompleted(ctx.State.LocalState.GetAllWSClients(payload.LobbyId), payload.LobbyId, result)
	return nil
}

func ResetLobbyHandler(ctx *wsstypes.WsContext) error {
	requestID := uuid.New().String()

	var payload wsstypes.LobbyActionPayload
	if err := decodePayload(ctx.Payload, &payload); err != nil {
		log.Printf("[%s] [ResetLobby] Unmarshal error: %v", requestID, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.RESET_LOBBY, "Invalid payload format", nil)
	}

	lobbyDoc, err := ctx.State.Lobbies.ResetLobbyForNewBattle(context.Background(), payload.LobbyId, payload.UserId)
	if err != nil {
		log.Printf("[%s] [ResetLobby] rejected in %s: %v", requestID, payload.LobbyId, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.RESET_LOBBY, err.Error(), nil)
	}

	broadcasts.BroadcastLobbyUpdated(ctx.State.LocalState.GetAllWSClients(payload.LobbyId), lobbyDoc)
	return nil
}

func ForfeitGroupHandler(ctx *wsstypes.WsContext) error {
	requestID := uuid.New().String()

	var payload wsstypes.LobbyActionPayload
	if err := decodePayload(ctx.Payload, &payload); err != nil {
		log.Printf("[%s] [ForfeitGroup] Unmarshal error: %v", requestID, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.FORFEIT_GROUP, "Invalid payload format", nil)
	}

	lobbyDoc, err := ctx.State.Lobbies.ForfeitGroup(context.Background(), payload.LobbyId, payload.GroupId, payload.UserId)
	if err != nil {
		log.Printf("[%s] [ForfeitGroup] rejected in %s: %v", requestID, payload.LobbyId, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.FORFEIT_GROUP, "Failed to forfeit group", nil)
	}

	broadcasts.BroadcastLobbyUpdated(ctx.State.LocalState.GetAllWSClients(payload.LobbyId), lobbyDoc)
	return nil
}

func DeleteLobbyHandler(ctx *wsstypes.WsContext) error {
	requestID := uuid.New().String()

	var payload wsstypes.LobbyActionPayload
	if err := decodePayload(ctx.Payload, &payload); err != nil {
		log.Printf("[%s] [DeleteLobby] Unmarshal error: %v", requestID, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.DELETE_LOBBY, "Invalid payload format", nil)
	}

	clients := ctx.State.LocalState.GetAllWSClients(payload.LobbyId)
	if err := ctx.State.Lobbies.DeleteLobby(context.Background(), payload.LobbyId, payload.UserId); err != nil {
		log.Printf("[%s] [DeleteLobby] rejected in %s: %v", requestID, payload.LobbyId, err)
		return broadcasts.SendErrorWithType(ctx.Conn, wsstypes.DELETE_LOBBY, "Failed to delete lobby", nil)
	}

	broadcasts.BroadcastToRoom(clients, wsstypes.DELETE_LOBBY, map[string]interface{}{
		"lobbyId": payload.LobbyId,
	})
	ctx.State.LocalState.CleanupRoom(payload.LobbyId)

	log.Printf("[%s] [DeleteLobby] %s deleted lobby %s", requestID, payload.UserId, payload.LobbyId)
	return nil
}
