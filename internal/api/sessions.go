package api

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ramekin/ramekin-web/internal/capture"
	"github.com/ramekin/ramekin-web/internal/domain"
	"github.com/ramekin/ramekin-web/internal/errors"
	"github.com/ramekin/ramekin-web/internal/sse"
	"github.com/ramekin/ramekin-web/internal/store"
)

// outboxLimit bounds the replay buffer of a relay session.
const outboxLimit = 32

// captureSession is one capture page being relayed. The receiver runs here;
// proxy stands in for the browser window that opened the capture page.
// Messages the receiver posts reach proxy and are streamed to the page,
// which forwards them with window.postMessage. Window messages the page
// hears are injected into the receiver's endpoint.
type captureSession struct {
	id       string
	proxy    *capture.Endpoint
	page     *capture.Endpoint
	receiver *capture.Receiver
	created  time.Time

	mu       sync.Mutex
	lastSeen time.Time
	seq      int
	outbox   []sse.Event
	state    sse.Event
	recorded bool
	closed   bool
}

func (c *captureSession) touch(now time.Time) {
	c.mu.Lock()
	c.lastSeen = now
	c.mu.Unlock()
}

func (c *captureSession) seen() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSeen
}

// queueMessage numbers an outbound message and keeps it for replay.
func (c *captureSession) queueMessage(env capture.Envelope, target string) sse.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	event := sse.NewMessageEvent(c.id, c.seq, env.Data, target)
	c.outbox = append(c.outbox, event)
	if len(c.outbox) > outboxLimit {
		c.outbox = c.outbox[len(c.outbox)-outboxLimit:]
	}
	return event
}

func (c *captureSession) setState(state capture.State) sse.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = sse.NewStateEvent(c.id, state)
	return c.state
}

// backlog returns queued messages followed by the latest state.
func (c *captureSession) backlog() ([]sse.Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, false
	}
	out := append([]sse.Event(nil), c.outbox...)
	if c.state.Type != "" {
		out = append(out, c.state)
	}
	return out, true
}

// markClosed makes later backlog calls refuse new subscribers.
func (c *captureSession) markClosed() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

// markRecorded reports whether this call was the first to record the job.
func (c *captureSession) markRecorded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	first := !c.recorded
	c.recorded = true
	return first
}

// sessionRegistry holds live relay sessions and expires idle ones.
type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*captureSession
	ttl      time.Duration
}

func newSessionRegistry(ttl time.Duration) *sessionRegistry {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &sessionRegistry{sessions: make(map[string]*captureSession), ttl: ttl}
}

func (r *sessionRegistry) put(sess *captureSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sess.id] = sess
}

// get returns the session and marks it as used.
func (r *sessionRegistry) get(id string, now time.Time) (*captureSession, bool) {
	r.mu.Lock()
	sess, ok := r.sessions[id]
	r.mu.Unlock()
	if ok {
		sess.touch(now)
	}
	return sess, ok
}

func (r *sessionRegistry) remove(id string) (*captureSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[id]
	delete(r.sessions, id)
	return sess, ok
}

// expire removes and returns sessions idle for longer than the TTL.
func (r *sessionRegistry) expire(now time.Time) []*captureSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*captureSession
	for id, sess := range r.sessions {
		if now.Sub(sess.seen()) > r.ttl {
			delete(r.sessions, id)
			out = append(out, sess)
		}
	}
	return out
}

// drain removes and returns every session.
func (r *sessionRegistry) drain() []*captureSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*captureSession, 0, len(r.sessions))
	for _, sess := range r.sessions {
		out = append(out, sess)
	}
	clear(r.sessions)
	return out
}

func (r *sessionRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// closeSession stops the receiver and tears down its channel and streams.
// Subscribers that connect after markClosed see a closed backlog; those that
// connected before are dropped by DisconnectSession.
func (s *Server) closeSession(sess *captureSession) {
	sess.markClosed()
	sess.receiver.Close()
	sess.proxy.Close()
	sess.page.Close()
	s.sseManager.DisconnectSession(sess.id)
}

// recordProgress mirrors receiver state into the local capture history.
func (s *Server) recordProgress(sess *captureSession, state capture.State) {
	if s.store == nil || state.JobID == "" {
		return
	}

	job := &domain.ScrapeJob{
		ID:     state.JobID,
		Status: state.JobStatus,
		URL:    state.SourceURL,
	}
	if state.RecipeID != "" {
		job.RecipeID = &state.RecipeID
	}
	if state.Phase == capture.PhaseError && state.Error != "" {
		msg := state.Error
		job.Status = domain.JobFailed
		job.Error = &msg
	}

	// Receiver callbacks can run after the request that caused them returns.
	ctx := context.Background()

	var err error
	if sess.markRecorded() {
		_, err = s.store.RecordCapture(ctx, job, state.SourceURL, state.Title)
		if errors.Is(err, store.ErrAlreadyExists) {
			_, err = s.store.UpdateCapture(ctx, job)
		}
	} else {
		_, err = s.store.UpdateCapture(ctx, job)
	}
	if err != nil {
		s.logger.Warn("failed to record capture progress",
			slog.String("session_id", sess.id),
			slog.String("job_id", state.JobID),
			slog.String("error", err.Error()))
	}
}
