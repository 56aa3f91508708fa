package matchmaking

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestStore_UnknownQueue(t *testing.T) {
	store := NewStore([]string{"solo"})

	if _, err := store.Join("ranked", uuid.New()); err != ErrUnknownQueue {
		t.Errorf("Join error = %v, want ErrUnknownQueue", err)
	}
	if _, err := store.Leave("ranked", uuid.New()); err != ErrUnknownQueue {
		t.Errorf("Leave error = %v, want ErrUnknownQueue", err)
	}
	if _, err := store.DrainReady("ranked", testPolicy, time.Now()); err != ErrUnknownQueue {
		t.Errorf("DrainReady error = %v, want ErrUnknownQueue", err)
	}
}

func TestStore_ModesAreIsolated(t *testing.T) {
	store := NewStore([]string{"solo", "duo"})
	userID := uuid.New()

	if _, err := store.Join("solo", userID); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	// The same user may wait in another mode's queue.
	if _, err := store.Join("duo", userID); err != nil {
		t.Errorf("Join in second mode failed: %v", err)
	}

	queued, err := store.Contains("duo", userID)
	if err != nil || !queued {
		t.Errorf("Contains(duo) = %v, %v, want true, nil", queued, err)
	}

	if _, err := store.Leave("solo", userID); err != nil {
		t.Errorf("Leave(solo) failed: %v", err)
	}
	queued, _ = store.Contains("duo", userID)
	if !queued {
		t.Error("leaving solo must not remove the duo entry")
	}
}

func TestStore_JoinLeaveRoundTrip(t *testing.T) {
	store := NewStore([]string{"solo"})
	userID := uuid.New()

	joined, err := store.Join("solo", userID)
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if joined.UserID != userID {
		t.Errorf("joined user = %s, want %s", joined.UserID, userID)
	}

	left, err := store.Leave("solo", userID)
	if err != nil {
		t.Fatalf("Leave failed: %v", err)
	}
	if !left.JoinedAt.Equal(joined.JoinedAt) {
		t.Errorf("leave returned joined_at %s, want %s", left.JoinedAt, joined.JoinedAt)
	}
}

// A drain racing concurrent joins and leaves must neither deadlock nor
// violate the single-entry invariant.
func TestStore_ConcurrentAccess(t *testing.T) {
	store := NewStore([]string{"solo"})
	policy := Policy{MinSize: 2, DesiredSize: 4, MaxWait: time.Minute}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			userID := uuid.New()
			for j := 0; j < 50; j++ {
				if _, err := store.Join("solo", userID); err != nil && err != ErrAlreadyQueued {
					t.Errorf("Join failed: %v", err)
					return
				}
				store.Contains("solo", userID)
				if _, err := store.Leave("solo", userID); err != nil && err != ErrNotQueued {
					t.Errorf("Leave failed: %v", err)
					return
				}
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 200; j++ {
			if _, err := store.DrainReady("solo", policy, time.Now()); err != nil && err != ErrQueueNotReady {
				t.Errorf("DrainReady failed: %v", err)
				return
			}
		}
	}()

	wg.Wait()
}
