package capture

import (
	"log/slog"
	"sync"
)

// Host is the page the opener script was injected into.
type Host interface {
	// RemoveContainer takes the capture UI off the page.
	RemoveContainer()
	// OpenWindow opens url in a new browsing context.
	OpenWindow(url string)
}

// OpenerConfig wires an Opener.
type OpenerConfig struct {
	Channel Channel
	// ExpectedOrigin is the Ramekin origin; envelopes from anywhere else are
	// ignored and the snapshot is only ever posted there.
	ExpectedOrigin string
	HTML           string
	URL            string
	Host           Host
	Logger         *slog.Logger
}

// Opener is the injected script's side of the handshake. The snapshot is
// fixed at construction, before any capture UI is added to the page.
type Opener struct {
	channel Channel
	origin  string
	html    string
	url     string
	host    Host
	logger  *slog.Logger

	mu       sync.Mutex
	unlisten func()
	detached bool
	sent     int
}

// NewOpener creates an opener. Call Attach to start listening.
func NewOpener(cfg OpenerConfig) *Opener {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Opener{
		channel: cfg.Channel,
		origin:  cfg.ExpectedOrigin,
		html:    cfg.HTML,
		url:     cfg.URL,
		host:    cfg.Host,
		logger:  logger.With("component", "capture_opener"),
	}
}

// Attach registers the message listener. It is a no-op once attached or
// after Detach.
func (o *Opener) Attach() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.unlisten != nil || o.detached {
		return
	}
	o.unlisten = o.channel.Listen(o.handle)
}

// Detach removes the listener. It is safe to call repeatedly.
func (o *Opener) Detach() {
	o.detach()
}

// detach reports whether this call did the detaching.
func (o *Opener) detach() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.detached {
		return false
	}
	o.detached = true
	if o.unlisten != nil {
		o.unlisten()
		o.unlisten = nil
	}
	return true
}

// Attached reports whether the listener is registered.
func (o *Opener) Attached() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.unlisten != nil
}

// Sent returns how many times the snapshot has been posted.
func (o *Opener) Sent() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sent
}

func (o *Opener) handle(env Envelope) {
	if env.Origin != o.origin {
		o.logger.Debug("ignoring message from unexpected origin", "origin", env.Origin)
		return
	}

	o.mu.Lock()
	if o.detached {
		o.mu.Unlock()
		return
	}
	o.mu.Unlock()

	switch env.Data.Kind {
	case KindReady:
		if err := o.channel.Post(HTML(o.html, o.url), o.origin); err != nil {
			o.logger.Warn("failed to send snapshot", "error", err)
			return
		}
		o.mu.Lock()
		o.sent++
		o.mu.Unlock()

	case KindClose:
		if o.detach() {
			o.host.RemoveContainer()
		}

	case KindViewRecipe:
		o.host.OpenWindow(env.Data.URL)
	}
}
