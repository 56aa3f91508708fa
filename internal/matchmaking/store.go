package matchmaking

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store holds one WaitingQueue per match mode behind a reader/writer lock.
// It is shared between HTTP handlers and the match coordinator; critical
// sections stay O(queue size) and perform no I/O.
type Store struct {
	mu     sync.RWMutex
	queues map[string]*WaitingQueue
}

// NewStore creates a store with one empty queue per mode.
func NewStore(modes []string) *Store {
	queues := make(map[string]*WaitingQueue, len(modes))
	for _, mode := range modes {
		queues[mode] = NewWaitingQueue()
	}
	return &Store{queues: queues}
}

// Modes lists the configured queue names.
func (s *Store) Modes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	modes := make([]string, 0, len(s.queues))
	for mode := range s.queues {
		modes = append(modes, mode)
	}
	return modes
}

// Join adds the user to the named queue with the current time.
func (s *Store) Join(mode string, userID uuid.UUID) (*WaitingPlayer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.queues[mode]
	if !ok {
		return nil, ErrUnknownQueue
	}
	return q.Join(userID, time.Now())
}

// Leave removes the user from the named queue.
func (s *Store) Leave(mode string, userID uuid.UUID) (*WaitingPlayer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.queues[mode]
	if !ok {
		return nil, ErrUnknownQueue
	}
	return q.Leave(userID)
}

// Contains reports whether the user waits in the named queue.
func (s *Store) Contains(mode string, userID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.queues[mode]
	if !ok {
		return false, ErrUnknownQueue
	}
	return q.Contains(userID), nil
}

// Status classifies the named queue's readiness.
func (s *Store) Status(mode string, policy Policy, now time.Time) (Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.queues[mode]
	if !ok {
		return NotReady, ErrUnknownQueue
	}
	return q.Status(policy, now), nil
}

// DrainReady atomically re-validates readiness and removes the players for
// one match, oldest first.
func (s *Store) DrainReady(mode string, policy Policy, now time.Time) ([]*WaitingPlayer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.queues[mode]
	if !ok {
		return nil, ErrUnknownQueue
	}
	return q.DrainReady(policy, now)
}

// Restore puts drained players back after a failed match attempt, keeping
// their original join times. Returns how many were re-inserted; players who
// re-joined on their own in the meantime are skipped.
func (s *Store) Restore(mode string, players []*WaitingPlayer) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.queues[mode]
	if !ok {
		return 0, ErrUnknownQueue
	}

	restored := 0
	for _, p := range players {
		if q.restore(p) {
			restored++
		}
	}
	return restored, nil
}
