package ratelimit

import (
	"testing"
	"time"
)

func TestTokenBucket_Allow(t *testing.T) {
	bucket := NewTokenBucket(5, 1) // 5 capacity, 1 refill per second

	// Should allow the first 5 requests.
	for i := 0; i < 5; i++ {
		if !bucket.Allow() {
			t.Errorf("Request %d should be allowed", i+1)
		}
	}

	// 6th request should be denied.
	if bucket.Allow() {
		t.Error("6th request should be denied")
	}

	// Wait for a refill.
	time.Sleep(1100 * time.Millisecond)

	if !bucket.Allow() {
		t.Error("Request after refill should be allowed")
	}
}

func TestTokenBucket_AllowN(t *testing.T) {
	bucket := NewTokenBucket(10, 2)

	if !bucket.AllowN(10) {
		t.Error("AllowN(10) should be allowed on a full bucket")
	}

	if bucket.AllowN(1) {
		t.Error("AllowN(1) should be denied after consuming all tokens")
	}

	// One second refills 2 tokens.
	time.Sleep(1100 * time.Millisecond)

	if !bucket.AllowN(2) {
		t.Error("AllowN(2) should be allowed after refill")
	}
}

func TestLimiter_PerKeyIsolation(t *testing.T) {
	limiter := NewLimiter(3, 1)

	for i := 0; i < 3; i++ {
		if !limiter.Allow("user1") {
			t.Errorf("Request %d for user1 should be allowed", i+1)
		}
	}

	if limiter.Allow("user1") {
		t.Error("4th request for user1 should be denied")
	}

	// A different key has its own bucket.
	if !limiter.Allow("user2") {
		t.Error("First request for user2 should be allowed")
	}
}

func TestLimiter_Reset(t *testing.T) {
	limiter := NewLimiter(1, 1)

	if !limiter.Allow("user1") {
		t.Error("First request should be allowed")
	}
	if limiter.Allow("user1") {
		t.Error("Second request should be denied")
	}

	limiter.Reset("user1")

	if !limiter.Allow("user1") {
		t.Error("Request after reset should be allowed")
	}
}
