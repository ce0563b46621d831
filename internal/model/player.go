package model

import "time"

// PlayerID uniquely identifies a player within a room
type PlayerID string

// RoomPlayer is a multiplayer seat. Multiplayer players hold exactly one
// hand; Bet and Balance are fixed by the room configuration.
type RoomPlayer struct {
	ID       PlayerID
	Name     string
	Hand     Hand
	IsStand  bool
	InRound  bool // false when the player joined after the deal
	Bet      int
	Balance  int
	JoinedAt time.Time
}

// Finished reports whether the player has no further decisions this round
func (p *RoomPlayer) Finished() bool {
	return !p.InRound || p.IsStand || p.Hand.IsBust
}

// Clone returns an independent copy of the seat
func (p RoomPlayer) Clone() RoomPlayer {
	p.Hand = p.Hand.Clone()
	return p
}
