package realtime

import (
	"context"
	"log/slog"

	"github.com/mcoot/blackjack-go/internal/api/response"
	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/services/room"
)

// Publisher turns room events into hub broadcasts
type Publisher struct {
	hubs   *HubManager
	logger *slog.Logger
}

var _ room.Publisher = (*Publisher)(nil)

// NewPublisher creates a Publisher over the given hubs
func NewPublisher(hubs *HubManager, logger *slog.Logger) *Publisher {
	return &Publisher{
		hubs:   hubs,
		logger: logger.With(slog.String("component", "room-publisher")),
	}
}

// Publish broadcasts the event to the room's subscribers. A closed room
// also has its hub shut down once the closing frame is queued.
func (p *Publisher) Publish(_ context.Context, event model.Event) {
	hub := p.hubs.GetHub(event.RoomCode)

	if event.Type == model.EventRoomClosed {
		if hub != nil {
			if msg, ok := p.encode(TypeRoomClosed, RoomPayload{RoomCode: string(event.RoomCode)}); ok {
				hub.Broadcast(msg)
			}
		}
		p.hubs.RemoveHub(event.RoomCode)
		return
	}

	if hub == nil || event.Room == nil {
		return
	}

	msg, ok := EventMessage(event)
	if !ok {
		p.logger.Warn("unhandled room event", slog.String("type", string(event.Type)))
		return
	}
	hub.Broadcast(msg)
}

func (p *Publisher) encode(t MessageType, payload any) (Message, bool) {
	msg, err := NewMessage(t, payload)
	if err != nil {
		p.logger.Error("failed to encode message", slog.String("type", string(t)), slog.Any("error", err))
		return Message{}, false
	}
	return msg, true
}

// EventMessage renders a room event carrying a snapshot as a frame
func EventMessage(event model.Event) (Message, bool) {
	var (
		msg Message
		err error
	)
	switch event.Type {
	case model.EventPlayerListUpdated:
		msg, err = NewMessage(TypePlayerList, response.PlayerListFromModel(event.Room))
	case model.EventRoundStarted:
		msg, err = NewMessage(TypeRoundStarted, StatePayload{State: response.RoomStateFromModel(event.Room)})
	case model.EventStateUpdated:
		msg, err = NewMessage(TypeStateUpdate, StatePayload{State: response.RoomStateFromModel(event.Room)})
	default:
		return Message{}, false
	}
	return msg, err == nil
}

// SnapshotMessages returns the frames that bring a new listener up to date:
// the player list, then the round state if a round exists.
func SnapshotMessages(r *model.Room) []Message {
	out := make([]Message, 0, 2)
	if msg, ok := EventMessage(model.Event{Type: model.EventPlayerListUpdated, RoomCode: r.Code, Room: r}); ok {
		out = append(out, msg)
	}
	if r.Game != nil {
		if msg, ok := EventMessage(model.Event{Type: model.EventStateUpdated, RoomCode: r.Code, Room: r}); ok {
			out = append(out, msg)
		}
	}
	return out
}
