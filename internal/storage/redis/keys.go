package redis

import (
	"fmt"

	"github.com/mcoot/spyword/internal/model"
)

// Key prefix for all session data
const keyPrefix = "spyword"

func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

func sessionKey(code model.SessionCode) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, code)
}

// sessionIndexKey is the SET of live session codes
func sessionIndexKey() string {
	return fmt.Sprintf("%s:idx:sessions", keyPrefix)
}
