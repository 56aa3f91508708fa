package matchmaking

import "time"

// Policy controls when a queue is allowed to start a match.
type Policy struct {
	// MinSize is the smallest match ever started.
	MinSize int
	// DesiredSize is the preferred match size.
	DesiredSize int
	// MaxWait is how long the oldest waiter may sit in the queue before the
	// required size escalates down from DesiredSize to MinSize.
	MaxWait time.Duration
}

// Status classifies a queue's readiness to start a match.
type Status int

const (
	NotReady Status = iota
	Ready
	LongWaitNotReady
	LongWaitReady
)

func (s Status) String() string {
	switch s {
	case NotReady:
		return "not_ready"
	case Ready:
		return "ready"
	case LongWaitNotReady:
		return "long_wait_not_ready"
	case LongWaitReady:
		return "long_wait_ready"
	default:
		return "unknown"
	}
}

// CanStart reports whether a match may be started under this status.
func (s Status) CanStart() bool {
	return s == Ready || s == LongWaitReady
}
