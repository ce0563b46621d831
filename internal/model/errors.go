package model

import "errors"

// Common errors used across the application
var (
	// Input errors
	ErrInvalidBet          = errors.New("bet must be greater than zero")
	ErrInvalidBalance      = errors.New("balance must not be negative")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidPlayerName   = errors.New("player name is required")
	ErrInvalidAction       = errors.New("unknown action")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrNoActiveGame    = errors.New("no game has been started")

	// Room errors
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomFull       = errors.New("room is full")
	ErrNotInRoom      = errors.New("player is not in room")
	ErrAlreadyInRoom  = errors.New("already in a room")
	ErrNotCreator     = errors.New("only the room creator can do that")
	ErrNoPlayersReady = errors.New("no players to deal to")

	// Game errors
	ErrActionNotAllowed   = errors.New("action not allowed in the current phase")
	ErrCannotDoubleDown   = errors.New("double down is not available for this hand")
	ErrCannotSplit        = errors.New("split is not available for this hand")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrRoundInProgress    = errors.New("round is still in progress")
	ErrActionNotSupported = errors.New("action is not supported in multiplayer")
	ErrDeckExhausted      = errors.New("deck is exhausted")
)
