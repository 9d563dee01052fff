package model

// Typed payloads for the events pushed to room sockets. Request payloads live
// with the websocket types; these are the server-initiated shapes.

type QueueMatchedPayload struct {
	EntryID  string `json:"entryId"`
	BattleID string `json:"battleId"`
	Token    string `json:"token"`
}

type ChallengeReceivedPayload struct {
	From      User    `json:"from"`
	Problem   Problem `json:"problem"`
	CreatedAt int64   `json:"createdAt"`
}

type BattleProgressPayload struct {
	BattleID    string     `json:"battleId"`
	Slot        PlayerSlot `json:"slot"`
	TestsPassed int        `json:"testsPassed"`
	Finished    bool       `json:"finished"`
}

type BattleFinishedPayload struct {
	BattleID  string     `json:"battleId"`
	Winner    PlayerSlot `json:"winner"`
	WinnerID  string     `json:"winnerId"`
	EndReason string     `json:"endReason"`
}

type LobbyUpdatedPayload struct {
	LobbyID string      `json:"lobbyId"`
	Status  LobbyStatus `json:"status"`
	Lobby   *Lobby      `json:"lobby"`
}

type LobbyCompletedPayload struct {
	LobbyID string       `json:"lobbyId"`
	Result  *LobbyResult `json:"result"`
}

// GenericResponse is the REST envelope.
type GenericResponse struct {
	Success bool                   `json:"success"`
	Status  int                    `json:"status"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	Error   *ErrorInfo             `json:"error,omitempty"`
}

type ErrorInfo struct {
	ErrorType string `json:"type"`
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
}
