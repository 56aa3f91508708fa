package gameserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Description is the address of a freshly spawned game server, pushed
// verbatim to matched players.
type Description struct {
	Host      string    `json:"host"`
	Port      int       `json:"port"`
	CreatedAt time.Time `json:"created_at"`
}

// spawnResponse is the manager's wire format. The manager reports the
// process it started; the externally reachable host is local configuration.
type spawnResponse struct {
	ProcessID int       `json:"process_id"`
	Port      int       `json:"port"`
	CreatedAt time.Time `json:"created_at"`
}

// Manager spawns game server instances.
type Manager interface {
	Spawn(ctx context.Context) (*Description, error)
}

// Client calls the game server manager service over HTTP.
type Client struct {
	http         *resty.Client
	externalHost string
	serviceKey   string
}

// NewClient creates a manager client. Every spawn call is bounded by the
// given timeout; failures are returned to the caller and never retried here.
func NewClient(baseURL, serviceKey, externalHost string, timeout time.Duration) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)

	return &Client{
		http:         httpClient,
		externalHost: externalHost,
		serviceKey:   serviceKey,
	}
}

// Spawn asks the manager for a new game server instance.
func (c *Client) Spawn(ctx context.Context) (*Description, error) {
	var spawned spawnResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Service-Key", c.serviceKey).
		SetResult(&spawned).
		Post("/game/spawn")
	if err != nil {
		return nil, fmt.Errorf("game server spawn request failed: %w", err)
	}

	if resp.StatusCode() != http.StatusCreated {
		return nil, fmt.Errorf("game server manager returned %d: %s",
			resp.StatusCode(), resp.String())
	}

	return &Description{
		Host:      c.externalHost,
		Port:      spawned.Port,
		CreatedAt: spawned.CreatedAt,
	}, nil
}
