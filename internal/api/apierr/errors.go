package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/blackjack-go/internal/model"
)

// APIError is the error body sent to clients over HTTP and WebSocket
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidBet         = "INVALID_BET"
	CodeInvalidBalance     = "INVALID_BALANCE"
	CodeInsufficientFunds  = "INSUFFICIENT_BALANCE"
	CodeInvalidPlayerName  = "INVALID_PLAYER_NAME"
	CodeInvalidAction      = "INVALID_ACTION"
	CodeSessionNotFound    = "SESSION_NOT_FOUND"
	CodeRoomNotFound       = "ROOM_NOT_FOUND"
	CodeNoActiveGame       = "NO_ACTIVE_GAME"
	CodeNotInRoom          = "NOT_IN_ROOM"
	CodeIllegalAction      = "ILLEGAL_ACTION"
	CodeCannotDoubleDown   = "CANNOT_DOUBLE_DOWN"
	CodeCannotSplit        = "CANNOT_SPLIT"
	CodeNotYourTurn        = "NOT_YOUR_TURN"
	CodeNotCreator         = "NOT_CREATOR"
	CodeRoundInProgress    = "ROUND_IN_PROGRESS"
	CodeActionNotSupported = "ACTION_NOT_SUPPORTED"
	CodeRoomFull           = "ROOM_FULL"
	CodeAlreadyInRoom      = "ALREADY_IN_ROOM"
	CodeNoPlayers          = "NO_PLAYERS"
	CodeDeckExhausted      = "DECK_EXHAUSTED"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

func (e *httpError) Error() string {
	return e.apiError.Message
}

type mapping struct {
	err    error
	status int
	code   string
}

// Checked in order with errors.Is. Messages come from the sentinel itself.
var mappings = []mapping{
	{model.ErrInvalidBet, http.StatusBadRequest, CodeInvalidBet},
	{model.ErrInvalidBalance, http.StatusBadRequest, CodeInvalidBalance},
	{model.ErrInsufficientBalance, http.StatusBadRequest, CodeInsufficientFunds},
	{model.ErrInvalidPlayerName, http.StatusBadRequest, CodeInvalidPlayerName},
	{model.ErrInvalidAction, http.StatusBadRequest, CodeInvalidAction},

	{model.ErrSessionNotFound, http.StatusNotFound, CodeSessionNotFound},
	{model.ErrRoomNotFound, http.StatusNotFound, CodeRoomNotFound},
	{model.ErrNoActiveGame, http.StatusNotFound, CodeNoActiveGame},
	{model.ErrNotInRoom, http.StatusNotFound, CodeNotInRoom},

	{model.ErrNotYourTurn, http.StatusForbidden, CodeNotYourTurn},
	{model.ErrNotCreator, http.StatusForbidden, CodeNotCreator},

	{model.ErrActionNotAllowed, http.StatusConflict, CodeIllegalAction},
	{model.ErrCannotDoubleDown, http.StatusConflict, CodeCannotDoubleDown},
	{model.ErrCannotSplit, http.StatusConflict, CodeCannotSplit},
	{model.ErrRoundInProgress, http.StatusConflict, CodeRoundInProgress},
	{model.ErrActionNotSupported, http.StatusConflict, CodeActionNotSupported},
	{model.ErrRoomFull, http.StatusConflict, CodeRoomFull},
	{model.ErrAlreadyInRoom, http.StatusConflict, CodeAlreadyInRoom},
	{model.ErrNoPlayersReady, http.StatusConflict, CodeNoPlayers},
	{model.ErrDeckExhausted, http.StatusConflict, CodeDeckExhausted},
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	status, apiErr := FromError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: apiErr})
}

// FromError maps an error to its HTTP status and client-facing body.
// Unrecognised errors become a generic internal error; the cause is not
// exposed.
func FromError(err error) (int, APIError) {
	var he *httpError
	if errors.As(err, &he) {
		return he.status, he.apiError
	}

	for _, m := range mappings {
		if errors.Is(err, m.err) {
			return m.status, APIError{Code: m.code, Message: m.err.Error()}
		}
	}
	return http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "internal server error"}
}

// IsInternal reports whether err maps to a 500
func IsInternal(err error) bool {
	status, _ := FromError(err)
	return status == http.StatusInternalServerError
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "internal server error"}}
}
