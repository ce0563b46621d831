package room

import (
	"context"

	"github.com/mcoot/blackjack-go/internal/model"
)

// Publisher receives room events. Publish is called while the room lock
// is held, so events for one room arrive in mutation order. It must not
// call back into the Controller for the same room.
type Publisher interface {
	Publish(ctx context.Context, event model.Event)
}

// NopPublisher drops every event
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, model.Event) {}
