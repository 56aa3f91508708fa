package matchmaking

import "errors"

var (
	ErrAlreadyQueued = errors.New("player already queued")
	ErrNotQueued     = errors.New("player not queued")
	ErrQueueNotReady = errors.New("queue not ready for a match")
	ErrUnknownQueue  = errors.New("unknown queue")
)
