package model

import "time"

const (
	MinGroupsPerLobby  = 2
	MinPlayersPerGroup = 2
	MinLobbyProblems   = 2

	// Non-manager clients treat managerOnline=false as abnormal termination
	// after this grace period.
	ManagerOfflineGrace = 10 * time.Second
)

type LobbyStatus string

const (
	LobbyPhaseLobby     LobbyStatus = "LOBBY"
	LobbyPhaseBattle    LobbyStatus = "BATTLE"
	LobbyPhaseCompleted LobbyStatus = "COMPLETED"
)

type LobbyPlayer struct {
	Name    string `json:"name"`
	Avatar  string `json:"avatar,omitempty"`
	GroupID string `json:"groupId,omitempty"`
}

type Group struct {
	Name      string                 `json:"name"`
	Color     string                 `json:"color"`
	Players   map[string]LobbyPlayer `json:"players"`
	Forfeited bool                   `json:"forfeited,omitempty"`
}

type LobbyBattleConfig struct {
	ProblemIDs    []string `json:"problemIds"`
	Category      string   `json:"category"`
	Mode          string   `json:"mode"`
	ProblemSource string   `json:"problemSource"`
}

// ProblemSolve records the first solver of a problem for a group. Entries are
// append-only per (problem, group): later submissions by teammates are no-ops.
type ProblemSolve struct {
	SolvedBy string `json:"solvedBy"`
	SolvedAt int64  `json:"solvedAt"` // unix millis
}

// Lobby is the multi-team battle container. Group scores are never stored;
// they are recomputed from ProblemStates on every read to avoid lost-update
// races on concurrent solves.
type Lobby struct {
	LobbyID        string                             `json:"lobbyId"`
	HostID         string                             `json:"hostId"`
	HostName       string                             `json:"hostName"`
	Players        map[string]LobbyPlayer             `json:"players"`
	Groups         map[string]*Group                  `json:"groups"`
	BattleConfig   LobbyBattleConfig                  `json:"battleConfig"`
	CustomProblems []Problem                          `json:"customProblems,omitempty"`
	ProblemStates  map[string]map[string]ProblemSolve `json:"problemStates"` // problemId -> groupId -> solve
	Status         LobbyStatus                        `json:"status"`
	ManagerOnline  bool                               `json:"managerOnline"`
	StartedAt      int64                              `json:"startedAt,omitempty"`
}

// GroupStanding is a computed ranking row, never persisted.
type GroupStanding struct {
	GroupID      string `json:"groupId"`
	GroupName    string `json:"groupName"`
	Score        int    `json:"score"`
	LastSolvedAt int64  `json:"lastSolvedAt,omitempty"`
}

type LobbyResult struct {
	Standings []GroupStanding `json:"standings"`
	IsDraw    bool            `json:"isDraw"`
	Winner    *GroupStanding  `json:"winner,omitempty"`
}
