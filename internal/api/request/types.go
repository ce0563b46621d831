package request

// CreateSessionRequest is the request body for creating a session
type CreateSessionRequest struct {
	PlayerName string `json:"player_name"`
}

// StartGameRequest is the request body for starting a single-player game.
// SessionID is optional; a new session is created when it is empty.
type StartGameRequest struct {
	SessionID  string `json:"session_id,omitempty"`
	PlayerName string `json:"player_name"`
	Bet        int    `json:"bet"`
	Balance    int    `json:"balance"`
}

// RestartRequest is the request body for dealing the next round
type RestartRequest struct {
	Bet int `json:"bet"`
}
