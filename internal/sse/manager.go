package sse

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ramekin/ramekin-web/internal/id"
)

const (
	queueSize     = 1000
	clientBacklog = 100
)

// Client is one open event stream.
type Client struct {
	ID          string
	SessionID   string
	ConnectedAt time.Time
	EventChan   chan Event
	// Done is closed when the manager drops the client.
	Done chan struct{}
}

// Manager routes session events to the streams following that session.
// Events without a session go to every stream.
type Manager struct {
	queue  chan Event
	logger *slog.Logger
	wg     sync.WaitGroup

	mu       sync.RWMutex
	sessions map[string]map[string]*Client // session id -> client id -> client
	count    int

	// closedMu guards closed and the send side of queue.
	closedMu sync.RWMutex
	closed   bool
}

// NewManager creates a Manager. Call Start before emitting.
func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		queue:    make(chan Event, queueSize),
		logger:   logger,
		sessions: make(map[string]map[string]*Client),
	}
}

// Start delivers queued events until ctx is done or Shutdown drains the queue.
func (m *Manager) Start(ctx context.Context) {
	m.wg.Add(1)
	defer m.wg.Done()

	m.logger.Info("SSE manager starting")
	for {
		select {
		case event, ok := <-m.queue:
			if !ok {
				return
			}
			m.deliver(event)
		case <-ctx.Done():
			m.logger.Info("SSE manager stopping")
			m.dropAll()
			return
		}
	}
}

// Shutdown stops accepting events, delivers what is queued and drops every
// client. It is safe to call more than once.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.closedMu.Lock()
	if m.closed {
		m.closedMu.Unlock()
		return nil
	}
	m.closed = true
	close(m.queue)
	m.closedMu.Unlock()

	done := make(chan struct{})
	go func() {
		for event := range m.queue {
			m.deliver(event)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		m.logger.Warn("SSE drain timed out; queued events lost")
	}

	m.wg.Wait()
	m.dropAll()
	m.logger.Info("SSE manager stopped")
	return nil
}

// Emit queues event. It never blocks: a full queue drops the event.
func (m *Manager) Emit(event Event) {
	m.closedMu.RLock()
	defer m.closedMu.RUnlock()
	if m.closed {
		return
	}

	select {
	case m.queue <- event:
	default:
		m.logger.Error("SSE queue full, dropping event",
			slog.String("event_type", string(event.Type)),
			slog.String("session_id", event.SessionID))
	}
}

func (m *Manager) deliver(event Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var delivered, dropped int
	send := func(c *Client) {
		select {
		case c.EventChan <- event:
			delivered++
		default:
			dropped++
			m.logger.Warn("dropped event for slow client",
				slog.String("client_id", c.ID),
				slog.String("event_type", string(event.Type)))
		}
	}

	if event.SessionID == "" {
		for _, clients := range m.sessions {
			for _, c := range clients {
				send(c)
			}
		}
	} else {
		for _, c := range m.sessions[event.SessionID] {
			send(c)
		}
	}

	m.logger.Debug("event delivered",
		slog.String("event_type", string(event.Type)),
		slog.String("session_id", event.SessionID),
		slog.Int("delivered", delivered),
		slog.Int("dropped", dropped))
}

// Connect opens a stream following sessionID.
func (m *Manager) Connect(sessionID string) (*Client, error) {
	clientID, err := id.Generate(id.SSEClient)
	if err != nil {
		return nil, err
	}

	c := &Client{
		ID:          clientID,
		SessionID:   sessionID,
		ConnectedAt: time.Now(),
		EventChan:   make(chan Event, clientBacklog),
		Done:        make(chan struct{}),
	}

	m.mu.Lock()
	clients := m.sessions[sessionID]
	if clients == nil {
		clients = make(map[string]*Client)
		m.sessions[sessionID] = clients
	}
	clients[clientID] = c
	m.count++
	total := m.count
	m.mu.Unlock()

	m.logger.Info("SSE client connected",
		slog.String("client_id", clientID),
		slog.String("session_id", sessionID),
		slog.Int("total_clients", total))
	return c, nil
}

// Disconnect drops one client. Unknown ids are ignored.
func (m *Manager) Disconnect(clientID string) {
	m.mu.Lock()
	var c *Client
	for sessionID, clients := range m.sessions {
		if found, ok := clients[clientID]; ok {
			c = found
			m.removeLocked(sessionID, clientID)
			break
		}
	}
	total := m.count
	m.mu.Unlock()

	if c == nil {
		return
	}
	close(c.Done)
	m.logger.Info("SSE client disconnected",
		slog.String("client_id", clientID),
		slog.Duration("duration", time.Since(c.ConnectedAt)),
		slog.Int("total_clients", total))
}

// DisconnectSession drops every client following sessionID.
func (m *Manager) DisconnectSession(sessionID string) {
	m.mu.Lock()
	clients := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.count -= len(clients)
	m.mu.Unlock()

	for _, c := range clients {
		close(c.Done)
	}
	if len(clients) > 0 {
		m.logger.Info("SSE session closed",
			slog.String("session_id", sessionID),
			slog.Int("clients", len(clients)))
	}
}

// ClientCount returns the number of connected clients.
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.count
}

// SessionCount returns the number of sessions with at least one client.
func (m *Manager) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) removeLocked(sessionID, clientID string) {
	clients := m.sessions[sessionID]
	delete(clients, clientID)
	if len(clients) == 0 {
		delete(m.sessions, sessionID)
	}
	m.count--
}

func (m *Manager) dropAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]map[string]*Client)
	m.count = 0
	m.mu.Unlock()

	for _, clients := range sessions {
		for _, c := range clients {
			close(c.Done)
		}
	}
}
