package lobby

import (
	"testing"

	"github.com/zenvx/CodeBattleCoordService/internal/model"
)

func scoredLobby() *model.Lobby {
	return &model.Lobby{
		LobbyID: "l1",
		Groups: map[string]*model.Group{
			"red":  {Name: "Red"},
			"blue": {Name: "Blue"},
		},
		BattleConfig: model.LobbyBattleConfig{ProblemIDs: []string{"pr1", "pr2"}},
		ProblemStates: map[string]map[string]model.ProblemSolve{
			"pr1": {
				"red":  {SolvedBy: "p1", SolvedAt: 100},
				"blue": {SolvedBy: "p3", SolvedAt: 200},
			},
		},
	}
}

func TestComputeStandingsScoreDescending(t *testing.T) {
	lobbyDoc := scoredLobby()
	lobbyDoc.ProblemStates["pr2"] = map[string]model.ProblemSolve{
		"blue": {SolvedBy: "p4", SolvedAt: 300},
	}

	standings := ComputeStandings(lobbyDoc)
	if standings[0].GroupID != "blue" || standings[0].Score != 2 {
		t.Fatalf("standings[0] = %+v, want blue with 2", standings[0])
	}
	if standings[1].GroupID != "red" || standings[1].Score != 1 {
		t.Fatalf("standings[1] = %+v, want red with 1", standings[1])
	}
}

func TestComputeStandingsTieBreaksOnEarliestFinish(t *testing.T) {
	lobbyDoc := scoredLobby()
	// Both groups have one solve; red finished earlier.
	standings := ComputeStandings(lobbyDoc)
	if standings[0].GroupID != "red" {
		t.Fatalf("earlier finisher must rank first on equal score, got %+v", standings)
	}
}

func TestComputeResultEqualScoresIsDraw(t *testing.T) {
	result := ComputeResult(scoredLobby())
	if !result.IsDraw {
		t.Fatalf("equal top scores must draw, got %+v", result)
	}
	if result.Winner != nil {
		t.Fatalf("draw must have no winner")
	}
}

func TestComputeResultBothZeroIsDraw(t *testing.T) {
	lobbyDoc := scoredLobby()
	lobbyDoc.ProblemStates = map[string]map[string]model.ProblemSolve{}

	result := ComputeResult(lobbyDoc)
	if !result.IsDraw || result.Winner != nil {
		t.Fatalf("zero-zero must draw, got %+v", result)
	}
}

func TestGroupSolvedAll(t *testing.T) {
	lobbyDoc := scoredLobby()
	if groupSolvedAll(lobbyDoc, "red") {
		t.Fatalf("red has one of two problems")
	}
	lobbyDoc.ProblemStates["pr2"] = map[string]model.ProblemSolve{
		"red": {SolvedBy: "p2", SolvedAt: 400},
	}
	if !groupSolvedAll(lobbyDoc, "red") {
		t.Fatalf("red solved everything")
	}
	if groupSolvedAll(lobbyDoc, "blue") {
		t.Fatalf("blue still missing pr2")
	}
}
