package realtime

import (
	"encoding/json"

	"github.com/mcoot/blackjack-go/internal/api/response"
)

// MessageType names a frame on the room channel
type MessageType string

// Client to server
const (
	TypeCreateRoom   MessageType = "create_room"
	TypeJoinRoom     MessageType = "join_room"
	TypeLeaveRoom    MessageType = "leave_room"
	TypeStartRound   MessageType = "start_round"
	TypeRestartRound MessageType = "restart_round"
	TypePlayerAction MessageType = "player_action"
)

// Server to client
const (
	TypeRoomCreated  MessageType = "room_created"
	TypeRoomJoined   MessageType = "room_joined"
	TypeRoomLeft     MessageType = "room_left"
	TypeRoomError    MessageType = "room_error"
	TypePlayerList   MessageType = "player_list"
	TypeRoundStarted MessageType = "round_started"
	TypeStateUpdate  MessageType = "state_update"
	TypeRoomClosed   MessageType = "room_closed"
)

// Message is one frame: {"type": ..., "payload": {...}}
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewMessage encodes payload into a frame of the given type
func NewMessage(t MessageType, payload any) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Payload: data}, nil
}

// Decode unmarshals the payload into v. An absent payload leaves v unchanged.
func (m Message) Decode(v any) error {
	if len(m.Payload) == 0 {
		return nil
	}
	return json.Unmarshal(m.Payload, v)
}

// CreateRoomPayload is sent with create_room
type CreateRoomPayload struct {
	PlayerName string `json:"player_name"`
}

// JoinRoomPayload is sent with join_room
type JoinRoomPayload struct {
	RoomCode   string `json:"room_code"`
	PlayerName string `json:"player_name"`
}

// RoomPayload carries only a room code. It is used by leave_room,
// start_round, restart_round, room_left, and room_closed.
type RoomPayload struct {
	RoomCode string `json:"room_code"`
}

// PlayerActionPayload is sent with player_action
type PlayerActionPayload struct {
	RoomCode string `json:"room_code"`
	Action   string `json:"action"`
}

// MembershipPayload answers create_room and join_room
type MembershipPayload struct {
	RoomCode string `json:"room_code"`
	PlayerID string `json:"player_id"`
}

// StatePayload is sent with round_started and state_update
type StatePayload struct {
	State *response.RoomState `json:"state"`
}
