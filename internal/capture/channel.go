package capture

import (
	"sync"

	"github.com/ramekin/ramekin-web/internal/errors"
)

// AnyOrigin is the wildcard target origin.
const AnyOrigin = "*"

// Source identifies the window that sent a message. The zero value is no
// window at all.
type Source string

// Envelope is a delivered message together with the sender's identity.
type Envelope struct {
	Origin string
	Source Source
	Data   Message
}

// Channel is one endpoint of a cross-window message channel.
//
// Post delivers msg to the peer only if the peer's origin matches
// targetOrigin (or targetOrigin is AnyOrigin); a mismatch drops the message
// silently. Delivery is asynchronous. Listen registers fn for every
// subsequent envelope and returns a function that removes it.
type Channel interface {
	Post(msg Message, targetOrigin string) error
	Listen(fn func(Envelope)) (remove func())
}

// ErrChannelClosed is returned by Post on a closed endpoint.
var ErrChannelClosed = errors.Internal("channel closed")

// Endpoint is one side of an in-process Pipe.
type Endpoint struct {
	id     Source
	origin string
	peer   *Endpoint

	mu        sync.Mutex
	listeners map[int]func(Envelope)
	nextID    int
	queue     []Envelope
	closed    bool

	wake chan struct{}
	done chan struct{}
}

// Pipe returns two connected endpoints. Each endpoint delivers to its
// listeners in order on its own goroutine, so a listener may post back
// without deadlocking. Close both endpoints when done.
func Pipe(openerOrigin, childOrigin string) (opener, child *Endpoint) {
	opener = newEndpoint("opener", openerOrigin)
	child = newEndpoint("child", childOrigin)
	opener.peer, child.peer = child, opener
	return opener, child
}

func newEndpoint(id Source, origin string) *Endpoint {
	e := &Endpoint{
		id:        id,
		origin:    origin,
		listeners: make(map[int]func(Envelope)),
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	go e.run()
	return e
}

// Source returns the identity this endpoint stamps on outgoing envelopes.
func (e *Endpoint) Source() Source { return e.id }

// Origin returns the endpoint's origin.
func (e *Endpoint) Origin() string { return e.origin }

// Post implements Channel.
func (e *Endpoint) Post(msg Message, targetOrigin string) error {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return ErrChannelClosed
	}

	if targetOrigin != AnyOrigin && targetOrigin != e.peer.origin {
		return nil
	}
	e.peer.enqueue(Envelope{Origin: e.origin, Source: e.id, Data: msg})
	return nil
}

// Inject delivers env to this endpoint's listeners as if some other window
// had posted it.
func (e *Endpoint) Inject(env Envelope) {
	e.enqueue(env)
}

// Listen implements Channel.
func (e *Endpoint) Listen(fn func(Envelope)) func() {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.listeners[id] = fn
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.listeners, id)
		e.mu.Unlock()
	}
}

// Close stops delivery. Queued envelopes are discarded.
func (e *Endpoint) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.queue = nil
	close(e.done)
}

func (e *Endpoint) enqueue(env Envelope) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.queue = append(e.queue, env)
	e.mu.Unlock()

	select {
	case e.wake <- struct{}{}:
	default:
	}
}

func (e *Endpoint) run() {
	for {
		select {
		case <-e.done:
			return
		case <-e.wake:
		}

		for {
			e.mu.Lock()
			if e.closed || len(e.queue) == 0 {
				e.mu.Unlock()
				break
			}
			env := e.queue[0]
			e.queue = e.queue[1:]
			fns := make([]func(Envelope), 0, len(e.listeners))
			for _, id := range sortedKeys(e.listeners) {
				fns = append(fns, e.listeners[id])
			}
			e.mu.Unlock()

			for _, fn := range fns {
				fn(env)
			}
		}
	}
}
