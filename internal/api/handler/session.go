package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/blackjack-go/internal/api/apierr"
	"github.com/mcoot/blackjack-go/internal/api/request"
	"github.com/mcoot/blackjack-go/internal/api/response"
	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/services/session"
)

// SessionHandler handles single-player session and game requests
type SessionHandler struct {
	sessions session.ControllerInterface
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(sessions session.ControllerInterface) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Create handles POST /sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	sess, err := h.sessions.CreateSession(r.Context(), req.PlayerName)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.Created(w, "/api/v1/sessions/"+string(sess.ID), response.Session{
		SessionID:  string(sess.ID),
		PlayerName: sess.PlayerName,
	})
}

// Delete handles DELETE /sessions/{id}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.RemoveSession(r.Context(), sessionID(r)); err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// StartGame handles POST /game/start
func (h *SessionHandler) StartGame(w http.ResponseWriter, r *http.Request) {
	var req request.StartGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	sess, err := h.sessions.StartGame(r.Context(), model.SessionID(req.SessionID), req.PlayerName, req.Bet, req.Balance)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.Created(w, "/api/v1/sessions/"+string(sess.ID)+"/game", response.StartGame{
		SessionID: string(sess.ID),
		State:     response.GameStateFromModel(sess.Game),
	})
}

// GetGame handles GET /sessions/{id}/game
func (h *SessionHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	state, err := h.sessions.GetGameState(r.Context(), sessionID(r))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GameStateFromModel(state))
}

// Action handles POST /sessions/{id}/game/{action}
func (h *SessionHandler) Action(w http.ResponseWriter, r *http.Request) {
	action, err := model.ParseAction(mux.Vars(r)["action"])
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	state, err := h.sessions.Act(r.Context(), sessionID(r), action)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GameStateFromModel(state))
}

// Restart handles POST /sessions/{id}/game/restart
func (h *SessionHandler) Restart(w http.ResponseWriter, r *http.Request) {
	var req request.RestartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	state, err := h.sessions.Restart(r.Context(), sessionID(r), req.Bet)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GameStateFromModel(state))
}

func sessionID(r *http.Request) model.SessionID {
	return model.SessionID(mux.Vars(r)["id"])
}
