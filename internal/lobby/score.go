package lobby

import (
	"sort"

	"github.com/zenvx/CodeBattleCoordService/internal/model"
)

// groupScore derives a group's score from problemStates. Scores are never
// stored as counters; recomputing on read makes concurrent solves
// order-insensitive.
func groupScore(lobby *model.Lobby, groupID string) (score int, lastSolvedAt int64) {
	for _, solves := range lobby.ProblemStates {
		if solve, ok := solves[groupID]; ok {
			score++
			if solve.SolvedAt > lastSolvedAt {
				lastSolvedAt = solve.SolvedAt
			}
		}
	}
	return score, lastSolvedAt
}

// groupSolvedAll reports whether a group has a recorded solve for every
// configured problem.
func groupSolvedAll(lobby *model.Lobby, groupID string) bool {
	if len(lobby.BattleConfig.ProblemIDs) == 0 {
		return false
	}
	for _, problemID := range lobby.BattleConfig.ProblemIDs {
		if _, ok := lobby.ProblemStates[problemID][groupID]; !ok {
			return false
		}
	}
	return true
}

// ComputeStandings ranks groups by score descending, ties broken by who
// finished their last solve earliest.
func ComputeStandings(lobby *model.Lobby) []model.GroupStanding {
	standings := make([]model.GroupStanding, 0, len(lobby.Groups))
	for groupID, group := range lobby.Groups {
		score, lastSolvedAt := groupScore(lobby, groupID)
		standings = append(standings, model.GroupStanding{
			GroupID:      groupID,
			GroupName:    group.Name,
			Score:        score,
			LastSolvedAt: lastSolvedAt,
		})
	}

	sort.Slice(standings, func(i, j int) bool {
		if standings[i].Score != standings[j].Score {
			return standings[i].Score > standings[j].Score
		}
		if standings[i].LastSolvedAt != standings[j].LastSolvedAt {
			return standings[i].LastSolvedAt < standings[j].LastSolvedAt
		}
		return standings[i].GroupID < standings[j].GroupID
	})
	return standings
}

// ComputeResult declares a draw when the top two scores are equal, including
// the both-zero case. Forfeited groups never win.
func ComputeResult(lobby *model.Lobby) model.LobbyResult {
	standings := ComputeStandings(lobby)
	result := model.LobbyResult{Standings: standings}

	contenders := make([]model.GroupStanding, 0, len(standings))
	for _, s := range standings {
		if g, ok := lobby.Groups[s.GroupID]; ok && g.Forfeited {
			continue
		}
		contenders = append(contenders, s)
	}

	switch {
	case len(contenders) == 0:
		result.IsDraw = true
	case len(contenders) == 1:
		winner := contenders[0]
		result.Winner = &winner
	case contenders[0].Score == contenders[1].Score:
		result.IsDraw = true
	default:
		winner := contenders[0]
		result.Winner = &winner
	}
	return result
}
