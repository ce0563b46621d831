package redis

import (
	"fmt"

	"github.com/mcoot/blackjack-go/internal/model"
)

const keyPrefix = "blackjack"

func sessionKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}

// sessionActivityKey is a sorted set of session IDs scored by last activity
// in unix milliseconds
func sessionActivityKey() string {
	return fmt.Sprintf("%s:idx:session_activity", keyPrefix)
}

func roomKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, code)
}
