package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/blackjack-go/internal/api/apierr"
	"github.com/mcoot/blackjack-go/internal/api/realtime"
	"github.com/mcoot/blackjack-go/internal/api/response"
	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/services/room"
)

// RoomHandler serves read-only room views. Rooms are joined and played
// over the WebSocket channel.
type RoomHandler struct {
	rooms room.ControllerInterface
	hubs  *realtime.HubManager
}

// NewRoomHandler creates a new RoomHandler
func NewRoomHandler(rooms room.ControllerInterface, hubs *realtime.HubManager) *RoomHandler {
	return &RoomHandler{rooms: rooms, hubs: hubs}
}

// Get handles GET /rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	rm, err := h.rooms.GetRoom(r.Context(), roomCode(r))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.RoomFromModel(rm))
}

// Events handles GET /rooms/{code}/events, streaming room updates to a
// spectator over SSE
func (h *RoomHandler) Events(w http.ResponseWriter, r *http.Request) {
	code := roomCode(r)
	rm, err := h.rooms.GetRoom(r.Context(), code)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	sub := realtime.NewSubscriber("spectator")
	hubCode := rm.Code
	hub := h.hubs.Subscribe(hubCode, sub)

	// Snapshot again after subscribing so no update falls in between
	rm, err = h.rooms.GetRoom(r.Context(), code)
	if err != nil {
		hub.Unregister(sub)
		h.hubs.RemoveIfEmpty(hubCode)
		apierr.WriteError(w, err)
		return
	}

	realtime.ServeSSE(w, r, hub, sub, realtime.SnapshotMessages(rm)...)
	h.hubs.RemoveIfEmpty(hubCode)
}

func roomCode(r *http.Request) model.RoomCode {
	return model.RoomCode(mux.Vars(r)["code"])
}
