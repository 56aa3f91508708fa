package gameserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Spawn(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/game/spawn", r.URL.Path)
		assert.Equal(t, "service-key-123", r.Header.Get("Service-Key"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"process_id":4242,"port":7777,"created_at":"2024-05-01T12:00:00Z"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "service-key-123", "play.example.com", 5*time.Second)

	desc, err := client.Spawn(context.Background())
	require.NoError(t, err)

	// The host comes from configuration, never from the manager.
	assert.Equal(t, "play.example.com", desc.Host)
	assert.Equal(t, 7777, desc.Port)
	assert.True(t, desc.CreatedAt.Equal(created))
}

func TestClient_SpawnNon201(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no capacity left", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key", "play.example.com", 5*time.Second)

	_, err := client.Spawn(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestClient_SpawnTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key", "play.example.com", 20*time.Millisecond)

	_, err := client.Spawn(context.Background())
	require.Error(t, err)
}

func TestClient_SpawnContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key", "play.example.com", 5*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Spawn(ctx)
	require.Error(t, err)
}
