package matchmaking

import (
	"time"

	"github.com/google/uuid"
)

// WaitingPlayer is one entry in a waiting queue. It exists from join until
// leave or until it is drained into a match.
type WaitingPlayer struct {
	UserID   uuid.UUID `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`

	// seq breaks ties between equal join timestamps so that ordering never
	// depends on the user ID.
	seq uint64
}
