package model

import "time"

// EventType identifies the type of room event
type EventType string

const (
	EventPlayerListUpdated EventType = "player_list"
	EventRoundStarted      EventType = "round_started"
	EventStateUpdated      EventType = "state_update"
	EventRoomClosed        EventType = "room_closed"
)

// Event is emitted by the room orchestrator after every mutation.
// Room is a snapshot taken at the time of the event; it is nil for
// EventRoomClosed.
type Event struct {
	Type      EventType
	Timestamp time.Time
	RoomCode  RoomCode
	PlayerID  PlayerID // The player who triggered the event, if any
	Room      *Room
}
