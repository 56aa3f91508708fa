package coordinator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/multiplayerbase/matchmaking-backend/internal/gameserver"
	"github.com/multiplayerbase/matchmaking-backend/internal/matchmaking"
	"github.com/multiplayerbase/matchmaking-backend/pkg/logger"
)

// Message is a tagged push payload relayed to one client.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Session can push messages to exactly one live client connection.
type Session interface {
	// Push hands the message to the session without blocking; it reports
	// false if the session cannot accept it (e.g. its buffer is full).
	Push(msg *Message) bool
	// Close asks the session to shut its connection down.
	Close()
}

type coordinatorMsg interface{ coordinatorMsg() }

type registerMsg struct {
	userID  uuid.UUID
	session Session
}

type unregisterMsg struct {
	userID  uuid.UUID
	session Session
}

type checkQueueMsg struct {
	mode string
}

func (registerMsg) coordinatorMsg()   {}
func (unregisterMsg) coordinatorMsg() {}
func (checkQueueMsg) coordinatorMsg() {}

// Coordinator owns the userID → session registry and the start-of-match
// sequence. It is a single worker draining one mailbox, so the registry
// needs no lock: every read and write happens on the worker goroutine.
type Coordinator struct {
	store        *matchmaking.Store
	policy       matchmaking.Policy
	servers      gameserver.Manager
	spawnTimeout time.Duration

	mailbox  chan coordinatorMsg
	sessions map[uuid.UUID]Session

	logger   *zap.Logger
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
	mu       sync.Mutex
}

func New(store *matchmaking.Store, policy matchmaking.Policy, servers gameserver.Manager, spawnTimeout time.Duration) *Coordinator {
	return &Coordinator{
		store:        store,
		policy:       policy,
		servers:      servers,
		spawnTimeout: spawnTimeout,
		mailbox:      make(chan coordinatorMsg, 256),
		sessions:     make(map[uuid.UUID]Session),
		logger:       logger.Named("coordinator"),
		stopChan:     make(chan struct{}),
	}
}

// Start launches the worker.
func (c *Coordinator) Start() {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.mu.Unlock()

	c.logger.Info("Starting match coordinator",
		zap.Int("minSize", c.policy.MinSize),
		zap.Int("desiredSize", c.policy.DesiredSize),
		zap.Duration("maxWait", c.policy.MaxWait))

	c.wg.Add(1)
	go c.run()
}

// Stop shuts the worker down and waits for it to finish.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	c.mu.Unlock()

	close(c.stopChan)
	c.wg.Wait()
	c.logger.Info("Match coordinator stopped")
}

// Register stores the session for the user. An existing registration is
// superseded: the older session is force-closed rather than leaked.
func (c *Coordinator) Register(userID uuid.UUID, session Session) {
	select {
	case c.mailbox <- registerMsg{userID: userID, session: session}:
	case <-c.stopChan:
	}
}

// Unregister removes the user's registration, but only if it still refers
// to the given session. A stale unregister from a superseded connection
// must not evict the live one.
func (c *Coordinator) Unregister(userID uuid.UUID, session Session) {
	select {
	case c.mailbox <- unregisterMsg{userID: userID, session: session}:
	case <-c.stopChan:
	}
}

// CheckQueue asks the worker to re-evaluate the named queue. It is a
// fire-and-forget trigger: when the mailbox is full the check is dropped,
// since the next join or leave will trigger another one.
func (c *Coordinator) CheckQueue(mode string) {
	select {
	case c.mailbox <- checkQueueMsg{mode: mode}:
	default:
		c.logger.Warn("Coordinator mailbox full, dropping queue check",
			zap.String("mode", mode))
	}
}

func (c *Coordinator) run() {
	defer c.wg.Done()

	for {
		select {
		case msg := <-c.mailbox:
			c.handle(msg)
		case <-c.stopChan:
			return
		}
	}
}

func (c *Coordinator) handle(msg coordinatorMsg) {
	switch m := msg.(type) {
	case registerMsg:
		if old, ok := c.sessions[m.userID]; ok && old != m.session {
			old.Close()
			c.logger.Info("Superseding existing realtime session",
				zap.String("userId", m.userID.String()))
		}
		c.sessions[m.userID] = m.session
		c.logger.Debug("Session registered",
			zap.String("userId", m.userID.String()),
			zap.Int("totalSessions", len(c.sessions)))

	case unregisterMsg:
		if current, ok := c.sessions[m.userID]; ok && current == m.session {
			delete(c.sessions, m.userID)
			c.logger.Debug("Session unregistered",
				zap.String("userId", m.userID.String()),
				zap.Int("totalSessions", len(c.sessions)))
		}

	case checkQueueMsg:
		c.checkQueue(m.mode)
	}
}

// checkQueue runs the start-of-match sequence when the queue is ready.
// Every failure in here is logged and swallowed: the trigger was
// fire-and-forget, there is no caller to report to.
func (c *Coordinator) checkQueue(mode string) {
	now := time.Now()

	status, err := c.store.Status(mode, c.policy, now)
	if err != nil {
		c.logger.Error("Queue check on unknown queue", zap.String("mode", mode))
		return
	}
	if !status.CanStart() {
		return
	}

	// DrainReady re-validates readiness under the queue lock; a leave may
	// have raced in since the status read above.
	players, err := c.store.DrainReady(mode, c.policy, now)
	if err != nil {
		c.logger.Debug("Queue no longer ready at drain time",
			zap.String("mode", mode))
		return
	}

	c.logger.Info("Starting match",
		zap.String("mode", mode),
		zap.Int("players", len(players)))

	ctx, cancel := context.WithTimeout(context.Background(), c.spawnTimeout)
	defer cancel()

	server, err := c.servers.Spawn(ctx)
	if err != nil {
		c.logger.Error("Game server spawn failed, restoring players",
			zap.String("mode", mode),
			zap.Int("players", len(players)),
			zap.Error(err))

		restored, restoreErr := c.store.Restore(mode, players)
		if restoreErr != nil {
			c.logger.Error("Failed to restore players", zap.Error(restoreErr))
		} else if restored < len(players) {
			c.logger.Warn("Some players re-joined before restore",
				zap.Int("restored", restored),
				zap.Int("drained", len(players)))
		}
		return
	}

	c.notifyPlayers(players, server)
}

func (c *Coordinator) notifyPlayers(players []*matchmaking.WaitingPlayer, server *gameserver.Description) {
	msg := &Message{
		Type:    "start_game",
		Payload: server,
	}

	for _, p := range players {
		session, ok := c.sessions[p.UserID]
		if !ok {
			// No live connection; the invitation is dropped, not requeued.
			c.logger.Debug("Matched player has no realtime session",
				zap.String("userId", p.UserID.String()))
			continue
		}

		if !session.Push(msg) {
			c.logger.Warn("Failed to push match notification",
				zap.String("userId", p.UserID.String()))
		}
	}

	c.logger.Info("Match notifications sent",
		zap.String("host", server.Host),
		zap.Int("port", server.Port),
		zap.Int("players", len(players)))
}
