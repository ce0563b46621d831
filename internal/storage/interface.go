package storage

import (
	"context"
	"time"

	"github.com/mcoot/blackjack-go/internal/model"
)

// Storage holds live sessions and rooms. Implementations return copies:
// mutating a value returned by Get does not change stored state until it
// is passed back to Save.
type Storage interface {
	// Session operations
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
	DeleteSession(ctx context.Context, id model.SessionID) error
	// ListIdleSessions returns sessions whose last activity is before cutoff
	ListIdleSessions(ctx context.Context, cutoff time.Time) ([]model.SessionID, error)

	// Room operations
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error)
	DeleteRoom(ctx context.Context, code model.RoomCode) error
	RoomExists(ctx context.Context, code model.RoomCode) (bool, error)
	// TouchRoom extends the room's expiry, if the backend has one
	TouchRoom(ctx context.Context, code model.RoomCode) error
}
