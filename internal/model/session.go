package model

import "time"

// SessionID uniquely identifies a single-player session
type SessionID string

// Session owns at most one live single-player game
type Session struct {
	ID           SessionID
	PlayerName   string
	Game         *GameState // nil until the first game starts
	CreatedAt    time.Time
	LastActivity time.Time
}

// IdleSince reports whether the session has been inactive since before cutoff
func (s *Session) IdleSince(cutoff time.Time) bool {
	return s.LastActivity.Before(cutoff)
}

// Clone returns an independent deep copy of the session
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Game = s.Game.Clone()
	return &out
}
