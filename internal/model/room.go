package model

import "time"

// RoomCode is a short human-shareable identifier for joining rooms
type RoomCode string

// RoomConfig holds the fixed wagering settings for a room
type RoomConfig struct {
	Bet        int
	Balance    int
	MaxPlayers int
}

// DefaultRoomConfig returns the default room configuration
func DefaultRoomConfig() RoomConfig {
	return RoomConfig{
		Bet:        100,
		Balance:    1000,
		MaxPlayers: 8,
	}
}

// RoomGame is the shared round state of a room
type RoomGame struct {
	Phase     Phase
	Round     int
	Deck      *Deck
	Dealer    Dealer
	TurnIndex int                     // index into Room.Players; -1 outside the player turn
	Results   map[PlayerID]HandResult // populated once Phase is result
}

// Clone returns an independent deep copy of the round
func (g *RoomGame) Clone() *RoomGame {
	if g == nil {
		return nil
	}
	out := *g
	out.Deck = g.Deck.Clone()
	out.Dealer = g.Dealer.Clone()
	if g.Results != nil {
		out.Results = make(map[PlayerID]HandResult, len(g.Results))
		for id, r := range g.Results {
			out.Results[id] = r
		}
	}
	return &out
}

// Room is a group of players sharing one dealer.
// Players are kept in join order, which is also the turn order.
type Room struct {
	Code      RoomCode
	Players   []RoomPlayer
	CreatorID PlayerID
	Config    RoomConfig
	Game      *RoomGame // nil until the first round starts
	Version   int64     // incremented on every mutation
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetPlayer returns the seat with the given ID, or nil if not found
func (r *Room) GetPlayer(id PlayerID) *RoomPlayer {
	for i := range r.Players {
		if r.Players[i].ID == id {
			return &r.Players[i]
		}
	}
	return nil
}

// PlayerIndex returns the join-order index of the player, or -1
func (r *Room) PlayerIndex(id PlayerID) int {
	for i := range r.Players {
		if r.Players[i].ID == id {
			return i
		}
	}
	return -1
}

// CurrentTurn returns the ID of the player whose turn it is, or "" when
// no player may act
func (r *Room) CurrentTurn() PlayerID {
	if r.Game == nil || r.Game.Phase != PhasePlayerTurn {
		return ""
	}
	if r.Game.TurnIndex < 0 || r.Game.TurnIndex >= len(r.Players) {
		return ""
	}
	return r.Players[r.Game.TurnIndex].ID
}

// RoundInProgress reports whether players or the dealer are still acting
func (r *Room) RoundInProgress() bool {
	return r.Game != nil && r.Game.Phase != PhaseResult
}

// Clone returns an independent deep copy of the room
func (r *Room) Clone() *Room {
	if r == nil {
		return nil
	}
	out := *r
	out.Players = make([]RoomPlayer, len(r.Players))
	for i, p := range r.Players {
		out.Players[i] = p.Clone()
	}
	out.Game = r.Game.Clone()
	return &out
}
