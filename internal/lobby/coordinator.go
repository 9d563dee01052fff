package lobby

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zenvx/CodeBattleCoordService/internal/model"
)

var (
	ErrLobbyNotFound    = errors.New("lobby not found")
	ErrNotManager       = errors.New("only the lobby manager can perform this action")
	ErrWrongPhase       = errors.New("operation not allowed in current lobby phase")
	ErrNotInLobby       = errors.New("user is not in this lobby")
	ErrNotInGroup       = errors.New("player is not in this group")
	ErrUnknownProblem   = errors.New("problem is not part of this battle")
	ErrTooFewGroups     = errors.New("battle needs at least two groups")
	ErrGroupTooSmall    = errors.New("every group needs at least two players")
	ErrTooFewProblems   = errors.New("battle needs at least two problems")
	ErrInvalidTestCases = errors.New("custom problem needs at least one public and two hidden test cases")
)

// Store is the slice of the realtime store holding lobby documents.
type Store interface {
	CreateLobby(ctx context.Context, lobby *model.Lobby) error
	GetLobby(ctx context.Context, lobbyID string) (*model.Lobby, error)
	UpdateLobby(ctx context.Context, lobby *model.Lobby) error
	DeleteLobby(ctx context.Context, lobbyID string) error
}

// Coordinator drives the LOBBY -> BATTLE -> COMPLETED -> (reset) -> LOBBY
// state machine. A per-lobby mutex serializes writers within this
// coordinator; the document operations themselves stay idempotent so a
// replayed transition is harmless.
type Coordinator struct {
	store Store
	now   func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewCoordinator(store Store) *Coordinator {
	return &Coordinator{
		store: store,
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}
}

func (c *Coordinator) lockFor(lobbyID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[lobbyID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[lobbyID] = l
	}
	return l
}

// withLobby runs fn against the locked, freshly-read lobby and persists it if
// fn succeeds.
func (c *Coordinator) withLobby(ctx context.Context, lobbyID string, fn func(*model.Lobby) error) (*model.Lobby, error) {
	l := c.lockFor(lobbyID)
	l.Lock()
	defer l.Unlock()

	lobby, err := c.store.GetLobby(ctx, lobbyID)
	if err != nil {
		return nil, ErrLobbyNotFound
	}
	if err := fn(lobby); err != nil {
		return nil, err
	}
	if err := c.store.UpdateLobby(ctx, lobby); err != nil {
		return nil, fmt.Errorf("failed to update lobby: %w", err)
	}
	return lobby, nil
}

func (c *Coordinator) CreateLobby(ctx context.Context, host model.User) (*model.Lobby, error) {
	lobby := &model.Lobby{
		LobbyID:  uuid.New().String(),
		HostID:   host.ID,
		HostName: host.Name,
		Players: map[string]model.LobbyPlayer{
			host.ID: {Name: host.Name, Avatar: host.Avatar},
		},
		Groups:        make(map[string]*model.Group),
		ProblemStates: make(map[string]map[string]model.ProblemSolve),
		Status:        model.LobbyPhaseLobby,
		ManagerOnline: true,
	}
	if err := c.store.CreateLobby(ctx, lobby); err != nil {
		return nil, fmt.Errorf("failed to create lobby: %w", err)
	}
	return lobby, nil
}

func (c *Coordinator) JoinLobby(ctx context.Context, lobbyID string, user model.User) (*model.Lobby, error) {
	return c.withLobby(ctx, lobbyID, func(lobby *model.Lobby) error {
		if lobby.Status != model.LobbyPhaseLobby {
			return ErrWrongPhase
		}
		lobby.Players[user.ID] = model.LobbyPlayer{Name: user.Name, Avatar: user.Avatar}
		return nil
	})
}

func (c *Coordinator) LeaveLobby(ctx context.Context, lobbyID, userID string) (*model.Lobby, error) {
	return c.withLobby(ctx, lobbyID, func(lobby *model.Lobby) error {
		removePlayerFromGroups(lobby, userID)
		delete(lobby.Players, userID)
		return nil
	})
}

func (c *Coordinator) CreateGroup(ctx context.Context, lobbyID, managerID, name, color string) (string, error) {
	groupID := uuid.New().String()
	_, err := c.withLobby(ctx, lobbyID, func(lobby *model.Lobby) error {
		if lobby.HostID != managerID {
			return ErrNotManager
		}
		if lobby.Status != model.LobbyPhaseLobby {
			return ErrWrongPhase
		}
		lobby.Groups[groupID] = &model.Group{
			Name:    name,
			Color:   color,
			Players: make(map[string]model.LobbyPlayer),
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return groupID, nil
}

// JoinGroup moves a player into a group. A player belongs to at most one
// group, so any previous membership is dropped first.
func (c *Coordinator) JoinGroup(ctx context.Context, lobbyID, groupID, userID string) (*model.Lobby, error) {
	return c.withLobby(ctx, lobbyID, func(lobby *model.Lobby) error {
		if lobby.Status != model.LobbyPhaseLobby {
			return ErrWrongPhase
		}
		player, ok := lobby.Players[userID]
		if !ok {
			return ErrNotInLobby
		}
		group, ok := lobby.Groups[groupID]
		if !ok {
			return ErrNotInGroup
		}

		removePlayerFromGroups(lobby, userID)
		player.GroupID = groupID
		lobby.Players[userID] = player
		group.Players[userID] = player
		return nil
	})
}

func removePlayerFromGroups(lobby *model.Lobby, userID string) {
	for _, group := range lobby.Groups {
		delete(group.Players, userID)
	}
	if player, ok := lobby.Players[userID]; ok {
		player.GroupID = ""
		lobby.Players[userID] = player
	}
}

func (c *Coordinator) SetBattleConfig(ctx context.Context, lobbyID, managerID string, config model.LobbyBattleConfig) (*model.Lobby, error) {
	return c.withLobby(ctx, lobbyID, func(lobby *model.Lobby) error {
		if lobby.HostID != managerID {
			return ErrNotManager
		}
		if lobby.Status != model.LobbyPhaseLobby {
			return ErrWrongPhase
		}
		lobby.BattleConfig = config
		return nil
	})
}

// AddCustomProblem validates the lobby-scoped problem before any write:
// at least one public and two hidden test cases, never enforced by the store.
func (c *Coordinator) AddCustomProblem(ctx context.Context, lobbyID, managerID string, problem model.Problem) (*model.Lobby, error) {
	public, hidden := problem.CountTestCases()
	if problem.Title == "" || public < model.MinPublicTestCases || hidden < model.MinHiddenTestCases {
		return nil, ErrInvalidTestCases
	}
	if problem.ID == "" {
		problem.ID = uuid.New().String()
	}

	return c.withLobby(ctx, lobbyID, func(lobby *model.Lobby) error {
		if lobby.HostID != managerID {
			return ErrNotManager
		}
		if lobby.Status != model.LobbyPhaseLobby {
			return ErrWrongPhase
		}
		lobby.CustomProblems = append(lobby.CustomProblems, problem)
		lobby.BattleConfig.ProblemIDs = append(lobby.BattleConfig.ProblemIDs, problem.ID)
		return nil
	})
}

// StartBattle moves LOBBY -> BATTLE. All preconditions are checked before
// any write; a failed start leaves no partial state.
func (c *Coordinator) StartBattle(ctx context.Context, lobbyID, managerID string) (*model.Lobby, error) {
	return c.withLobby(ctx, lobbyID, func(lobby *model.Lobby) error {
		if lobby.HostID != managerID {
			return ErrNotManager
		}
		if lobby.Status != model.LobbyPhaseLobby {
			return ErrWrongPhase
		}
		if len(lobby.Groups) < model.MinGroupsPerLobby {
			return ErrTooFewGroups
		}
		for _, group := range lobby.Groups {
			if len(group.Players) < model.MinPlayersPerGroup {
				return ErrGroupTooSmall
			}
		}
		if len(lobby.BattleConfig.ProblemIDs) < model.MinLobbyProblems {
			return ErrTooFewProblems
		}

		lobby.Status = model.LobbyPhaseBattle
		lobby.StartedAt = c.now().UnixMilli()
		lobby.ProblemStates = make(map[string]map[string]model.ProblemSolve)
		return nil
	})
}

// SolveResult reports what a solve attempt did.
type SolveResult struct {
	AlreadySolved bool
	Completed     bool
	Result        *model.LobbyResult
}

// SolveProblem records the first solver for a (problem, group) pair.
// Idempotent: a teammate's later submission is a no-op, never an error, and
// the recorded solvedBy does not change. When the group has solved every
// configured problem, the battle completes.
func (c *Coordinator) SolveProblem(ctx context.Context, lobbyID, problemID, groupID, playerID string) (SolveResult, error) {
	var result SolveResult
	lobby, err := c.withLobby(ctx, lobbyID, func(lobby *model.Lobby) error {
		if lobby.Status != model.LobbyPhaseBattle {
			return ErrWrongPhase
		}
		group, ok := lobby.Groups[groupID]
		if !ok {
			return ErrNotInGroup
		}
		if _, ok := group.Players[playerID]; !ok {
			return ErrNotInGroup
		}
		if !configuredProblem(lobby, problemID) {
			return ErrUnknownProblem
		}

		if _, solved := lobby.ProblemStates[problemID][groupID]; solved {
			result.AlreadySolved = true
			return nil
		}

		if lobby.ProblemStates[problemID] == nil {
			lobby.ProblemStates[problemID] = make(map[string]model.ProblemSolve)
		}
		lobby.ProblemStates[problemID][groupID] = model.ProblemSolve{
			SolvedBy: playerID,
			SolvedAt: c.now().UnixMilli(),
		}

		if groupSolvedAll(lobby, groupID) {
			lobby.Status = model.LobbyPhaseCompleted
			result.Completed = true
		}
		return nil
	})
	if err != nil {
		return SolveResult{}, err
	}

	if result.Completed {
		r := ComputeResult(lobby)
		result.Result = &r
	}
	return result, nil
}

func configuredProblem(lobby *model.Lobby, problemID string) bool {
	for _, id := range lobby.BattleConfig.ProblemIDs {
		if id == problemID {
			return true
		}
	}
	return false
}

// CompleteBattle flips BATTLE -> COMPLETED. Idempotent: concurrent attempts
// all converge on the same terminal state, so any client observing its group
// done may call it.
func (c *Coordinator) CompleteBattle(ctx context.Context, lobbyID string) (*model.LobbyResult, error) {
	lobby, err := c.withLobby(ctx, lobbyID, func(lobby *model.Lobby) error {
		switch lobby.Status {
		case model.LobbyPhaseBattle:
			lobby.Status = model.LobbyPhaseCompleted
			return nil
		case model.LobbyPhaseCompleted:
			return nil
		default:
			return ErrWrongPhase
		}
	})
	if err != nil {
		return nil, err
	}
	result := ComputeResult(lobby)
	return &result, nil
}

// EndBattle is the manager's early termination. Same terminal state as a
// natural completion.
func (c *Coordinator) EndBattle(ctx context.Context, lobbyID, managerID string) (*model.LobbyResult, error) {
	lobby, err := c.withLobby(ctx, lobbyID, func(lobby *model.Lobby) error {
		if lobby.HostID != managerID {
			return ErrNotManager
		}
		switch lobby.Status {
		case model.LobbyPhaseBattle:
			lobby.Status = model.LobbyPhaseCompleted
			return nil
		case model.LobbyPhaseCompleted:
			return nil
		default:
			return ErrWrongPhase
		}
	})
	if err != nil {
		return nil, err
	}
	result := ComputeResult(lobby)
	return &result, nil
}

// ForfeitGroup marks a group out of contention. Standings still include it;
// it just cannot win.
func (c *Coordinator) ForfeitGroup(ctx context.Context, lobbyID, groupID, playerID string) (*model.Lobby, error) {
	return c.withLobby(ctx, lobbyID, func(lobby *model.Lobby) error {
		if lobby.Status != model.LobbyPhaseBattle {
			return ErrWrongPhase
		}
		group, ok := lobby.Groups[groupID]
		if !ok {
			return ErrNotInGroup
		}
		if _, ok := group.Players[playerID]; !ok {
			return ErrNotInGroup
		}
		group.Forfeited = true
		return nil
	})
}

// ResetLobbyForNewBattle clears battle state and returns to LOBBY, keeping
// groups and player assignments for a rematch.
func (c *Coordinator) ResetLobbyForNewBattle(ctx context.Context, lobbyID, managerID string) (*model.Lobby, error) {
	return c.withLobby(ctx, lobbyID, func(lobby *model.Lobby) error {
		if lobby.HostID != managerID {
			return ErrNotManager
		}
		if lobby.Status != model.LobbyPhaseCompleted {
			return ErrWrongPhase
		}

		lobby.Status = model.LobbyPhaseLobby
		lobby.StartedAt = 0
		lobby.ProblemStates = make(map[string]map[string]model.ProblemSolve)
		for _, group := range lobby.Groups {
			group.Forfeited = false
		}
		return nil
	})
}

// SetManagerOnline tracks the manager's liveness. Non-manager clients treat
// false as an abnormal-termination signal after a grace period.
func (c *Coordinator) SetManagerOnline(ctx context.Context, lobbyID string, online bool) (*model.Lobby, error) {
	return c.withLobby(ctx, lobbyID, func(lobby *model.Lobby) error {
		lobby.ManagerOnline = online
		return nil
	})
}

func (c *Coordinator) GetLobby(ctx context.Context, lobbyID string) (*model.Lobby, error) {
	return c.store.GetLobby(ctx, lobbyID)
}

func (c *Coordinator) DeleteLobby(ctx context.Context, lobbyID, managerID string) error {
	lobby, err := c.store.GetLobby(ctx, lobbyID)
	if err != nil {
		return ErrLobbyNotFound
	}
	if lobby.HostID != managerID {
		return ErrNotManager
	}
	return c.store.DeleteLobby(ctx, lobbyID)
}
