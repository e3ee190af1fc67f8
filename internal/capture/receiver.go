package capture

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ramekin/ramekin-web/internal/domain"
	"github.com/ramekin/ramekin-web/internal/errors"
	"github.com/ramekin/ramekin-web/internal/ramekin"
)

// Phase is the receiver's position in the handshake.
type Phase string

// Receiver phases. Success and Error are terminal.
const (
	PhaseWaiting   Phase = "waiting"
	PhaseCapturing Phase = "capturing"
	PhaseSuccess   Phase = "success"
	PhaseError     Phase = "error"
)

// Terminal reports whether no further transitions can happen.
func (p Phase) Terminal() bool {
	return p == PhaseSuccess || p == PhaseError
}

// State is a snapshot of a receiver.
type State struct {
	Phase      Phase            `json:"phase"`
	JobID      string           `json:"job_id,omitempty"`
	JobStatus  domain.JobStatus `json:"job_status,omitempty"`
	StatusText string           `json:"status_text,omitempty"`
	RecipeID   string           `json:"recipe_id,omitempty"`
	SourceURL  string           `json:"source_url,omitempty"`
	Title      string           `json:"title,omitempty"`
	Error      string           `json:"error,omitempty"`
	ErrorCode  errors.Code      `json:"error_code,omitempty"`
}

// ReceiverConfig wires a Receiver.
type ReceiverConfig struct {
	// Channel reaches the opener. Nil means the page was not opened by the
	// capture mechanism.
	Channel Channel
	// Opener is the Source of the window allowed to send the snapshot.
	Opener Source
	// Credentials must hold a token before a capture can start.
	Credentials ramekin.TokenSource
	Jobs        JobAPI
	// Title extracts a display title from a snapshot. Nil uses PageTitle.
	Title func(html string) string

	Clock        Clock
	PollInterval time.Duration
	Logger       *slog.Logger
}

// Receiver is the capture page's side of the handshake. It accepts exactly
// one snapshot from its opener, creates a capture job and follows it.
type Receiver struct {
	cfg    ReceiverConfig
	logger *slog.Logger

	mu        sync.Mutex
	state     State
	started   bool
	closed    bool
	ctx       context.Context
	cancel    context.CancelFunc
	unlisten  func()
	poller    *Poller
	observers map[int]func(State)
	nextObs   int
}

// NewReceiver creates a receiver in PhaseWaiting. Call Start to begin.
func NewReceiver(cfg ReceiverConfig) *Receiver {
	if cfg.Clock == nil {
		cfg.Clock = RealClock()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Title == nil {
		cfg.Title = PageTitle
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Receiver{
		cfg:       cfg,
		logger:    logger.With("component", "capture_receiver"),
		state:     State{Phase: PhaseWaiting},
		observers: make(map[int]func(State)),
	}
}

// Start checks the preconditions, registers the message listener and
// announces readiness to the opener. A failed precondition leaves the
// receiver in PhaseError without touching the channel. Start is a no-op
// after the first call.
func (r *Receiver) Start(ctx context.Context) State {
	r.mu.Lock()
	if r.started || r.closed {
		s := r.state
		r.mu.Unlock()
		return s
	}
	r.started = true

	if r.cfg.Channel == nil || r.cfg.Opener == "" {
		r.mu.Unlock()
		r.fail(errors.Precondition(TextNoOpener))
		return r.State()
	}
	if !r.hasCredential() {
		r.mu.Unlock()
		r.fail(errors.Precondition(TextNotLoggedIn))
		return r.State()
	}

	r.ctx, r.cancel = context.WithCancel(ctx)
	r.unlisten = r.cfg.Channel.Listen(r.handle)
	r.mu.Unlock()

	if err := r.cfg.Channel.Post(Ready(), AnyOrigin); err != nil {
		r.logger.Warn("failed to announce ready", "error", err)
	}
	return r.State()
}

func (r *Receiver) hasCredential() bool {
	if r.cfg.Credentials == nil {
		return false
	}
	token, ok := r.cfg.Credentials.Token()
	return ok && token != ""
}

// State returns the current snapshot.
func (r *Receiver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// OnChange registers fn for every state transition and returns a function
// that removes it. fn runs on whichever goroutine caused the transition.
func (r *Receiver) OnChange(fn func(State)) (remove func()) {
	r.mu.Lock()
	id := r.nextObs
	r.nextObs++
	r.observers[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.observers, id)
		r.mu.Unlock()
	}
}

// Close stops polling, removes the listener and cancels in-flight requests.
// No transition happens after Close returns.
func (r *Receiver) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	if r.poller != nil {
		r.poller.Stop()
	}
	if r.unlisten != nil {
		r.unlisten()
		r.unlisten = nil
	}
	if r.cancel != nil {
		r.cancel()
	}
}

// RequestClose asks the opener to remove the capture UI.
func (r *Receiver) RequestClose() error {
	if r.cfg.Channel == nil {
		return errors.Precondition(TextNoOpener)
	}
	return r.cfg.Channel.Post(Close(), AnyOrigin)
}

// ViewRecipe asks the opener to open url in a new tab.
func (r *Receiver) ViewRecipe(url string) error {
	if r.cfg.Channel == nil {
		return errors.Precondition(TextNoOpener)
	}
	return r.cfg.Channel.Post(ViewRecipe(url), AnyOrigin)
}

func (r *Receiver) handle(env Envelope) {
	r.mu.Lock()
	if r.closed || r.state.Phase != PhaseWaiting {
		r.mu.Unlock()
		return
	}
	if env.Source != r.cfg.Opener {
		r.mu.Unlock()
		r.logger.Debug("dropping message from foreign window", "origin", env.Origin)
		return
	}
	if env.Data.Kind != KindHTML {
		r.mu.Unlock()
		return
	}

	html, sourceURL := env.Data.HTML, env.Data.URL
	r.state.Phase = PhaseCapturing
	r.state.SourceURL = sourceURL
	r.state.StatusText = TextSaving
	ctx := r.ctx
	r.mu.Unlock()

	// Parsing a large snapshot must not block State or Close.
	title := r.cfg.Title(html)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.state.Title = title
	r.mu.Unlock()
	r.notify()

	r.logger.Info("capture started", "url", sourceURL, "title", title, "bytes", len(html))

	job, err := r.cfg.Jobs.CreateCapture(ctx, html, sourceURL)
	if err != nil {
		r.fail(errors.Wrap(err, errors.CodeOf(err), ramekin.ErrorMessage(err, TextSaveFailed)))
		return
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.state.JobID = job.ID
	r.state.JobStatus = job.Status
	r.state.StatusText = StatusText(job.Status)
	r.poller = NewPoller(r.cfg.Jobs, r.cfg.Clock, r.cfg.PollInterval)
	poller := r.poller
	r.mu.Unlock()
	r.notify()

	r.logger.Info("capture job created", "job_id", job.ID, "status", job.Status)
	poller.Start(ctx, job.ID, r.onPoll)
}

func (r *Receiver) onPoll(job *domain.ScrapeJob, err error) bool {
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return true
		}
		r.fail(errors.Wrap(err, errors.CodeNetwork, ramekin.ErrorMessage(err, TextPollFailed)))
		return true
	}

	switch {
	case job.Status == domain.JobFailed:
		msg := TextExtractFailed
		if job.Error != nil && *job.Error != "" {
			msg = *job.Error
		}
		r.fail(errors.JobFailed(msg))
		return true

	case Settled(job):
		r.transition(func(s *State) {
			s.Phase = PhaseSuccess
			s.JobStatus = job.Status
			s.RecipeID = *job.RecipeID
			s.StatusText = TextSaved
		})
		r.logger.Info("capture completed", "job_id", job.ID, "recipe_id", *job.RecipeID)
		return true

	default:
		r.transition(func(s *State) {
			s.JobStatus = job.Status
			s.StatusText = StatusText(job.Status)
		})
		return false
	}
}

func (r *Receiver) fail(err *errors.Error) {
	applied := r.transition(func(s *State) {
		s.Phase = PhaseError
		s.Error = err.Message
		s.ErrorCode = err.Code
	})
	if applied {
		r.logger.Warn("capture failed", "code", err.Code, "error", err)
	}
}

// transition applies fn unless the receiver is closed or already terminal.
func (r *Receiver) transition(fn func(*State)) bool {
	r.mu.Lock()
	if r.closed || r.state.Phase.Terminal() {
		r.mu.Unlock()
		return false
	}
	fn(&r.state)
	r.mu.Unlock()
	r.notify()
	return true
}

func (r *Receiver) notify() {
	r.mu.Lock()
	s := r.state
	fns := make([]func(State), 0, len(r.observers))
	for _, id := range sortedKeys(r.observers) {
		fns = append(fns, r.observers[id])
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}
