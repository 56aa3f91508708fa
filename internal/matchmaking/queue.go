package matchmaking

import (
	"container/heap"
	"time"

	"github.com/google/uuid"
)

// WaitingQueue is an ordered collection of waiting players, earliest join
// first. It is not safe for concurrent use; the Store guards access.
type WaitingQueue struct {
	players playerHeap
	members map[uuid.UUID]struct{}
	nextSeq uint64
}

func NewWaitingQueue() *WaitingQueue {
	return &WaitingQueue{
		members: make(map[uuid.UUID]struct{}),
	}
}

// Len returns the number of waiting players.
func (q *WaitingQueue) Len() int {
	return len(q.players)
}

// Contains reports whether the user is currently waiting.
func (q *WaitingQueue) Contains(userID uuid.UUID) bool {
	_, ok := q.members[userID]
	return ok
}

// Oldest returns the longest-waiting player, or nil for an empty queue.
func (q *WaitingQueue) Oldest() *WaitingPlayer {
	if len(q.players) == 0 {
		return nil
	}
	return q.players[0]
}

// Join adds the user with the given join time.
func (q *WaitingQueue) Join(userID uuid.UUID, now time.Time) (*WaitingPlayer, error) {
	if q.Contains(userID) {
		return nil, ErrAlreadyQueued
	}

	player := &WaitingPlayer{
		UserID:   userID,
		JoinedAt: now,
	}
	q.push(player)

	return player, nil
}

// Leave removes the user and returns their queue entry.
func (q *WaitingQueue) Leave(userID uuid.UUID) (*WaitingPlayer, error) {
	if !q.Contains(userID) {
		return nil, ErrNotQueued
	}

	// Linear scan; queues hold tens of players, not thousands.
	for i, p := range q.players {
		if p.UserID == userID {
			heap.Remove(&q.players, i)
			delete(q.members, userID)
			return p, nil
		}
	}

	return nil, ErrNotQueued
}

// Status classifies readiness under the policy at the given time.
func (q *WaitingQueue) Status(policy Policy, now time.Time) Status {
	if q.Len() >= policy.DesiredSize {
		return Ready
	}

	oldest := q.Oldest()
	if oldest == nil {
		return NotReady
	}

	if now.Sub(oldest.JoinedAt) > policy.MaxWait {
		if q.Len() >= policy.MinSize {
			return LongWaitReady
		}
		return LongWaitNotReady
	}

	return NotReady
}

// DrainReady removes and returns up to DesiredSize players, oldest first.
// Readiness is re-validated here rather than trusting an earlier status:
// a leave may have raced in between. A long-wait match legitimately starts
// with fewer than DesiredSize players, so the drain count is capped at the
// current size instead of assuming a full match.
func (q *WaitingQueue) DrainReady(policy Policy, now time.Time) ([]*WaitingPlayer, error) {
	if !q.Status(policy, now).CanStart() {
		return nil, ErrQueueNotReady
	}

	n := policy.DesiredSize
	if q.Len() < n {
		n = q.Len()
	}

	drained := make([]*WaitingPlayer, 0, n)
	for i := 0; i < n; i++ {
		p := heap.Pop(&q.players).(*WaitingPlayer)
		delete(q.members, p.UserID)
		drained = append(drained, p)
	}

	return drained, nil
}

// restore re-inserts a previously drained player keeping their original
// join time, so a failed match attempt does not cost them their place.
// No-op if the user re-joined in the meantime.
func (q *WaitingQueue) restore(player *WaitingPlayer) bool {
	if q.Contains(player.UserID) {
		return false
	}
	q.push(player)
	return true
}

func (q *WaitingQueue) push(player *WaitingPlayer) {
	player.seq = q.nextSeq
	q.nextSeq++
	heap.Push(&q.players, player)
	q.members[player.UserID] = struct{}{}
}

// playerHeap orders by (JoinedAt, seq). It never compares user IDs, so
// equal timestamps resolve deterministically by insertion order.
type playerHeap []*WaitingPlayer

func (h playerHeap) Len() int { return len(h) }

func (h playerHeap) Less(i, j int) bool {
	if h[i].JoinedAt.Equal(h[j].JoinedAt) {
		return h[i].seq < h[j].seq
	}
	return h[i].JoinedAt.Before(h[j].JoinedAt)
}

func (h playerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *playerHeap) Push(x interface{}) {
	*h = append(*h, x.(*WaitingPlayer))
}

func (h *playerHeap) Pop() interface{} {
	old := *h
	n := len(old)
	p := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return p
}
