package capture

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/ramekin/ramekin-web/internal/domain"
	"github.com/ramekin/ramekin-web/internal/errors"
	"github.com/ramekin/ramekin-web/internal/ramekin"
)

// OverlayID is the DOM id of the progress overlay. Its presence means a
// capture already ran on the page.
const OverlayID = "ramekin-capture-overlay"

// TextRequestFailed is shown when the backend rejects a capture without
// saying why.
const TextRequestFailed = "Request failed"

// ErrInvalidBookmarklet is returned when the launch script URL cannot be
// parsed or carries no token.
var ErrInvalidBookmarklet = errors.Precondition("Invalid bookmarklet. Please get a new one from your Ramekin account.")

// LaunchParams is what the self-contained script learns from its own URL.
type LaunchParams struct {
	ScriptOrigin string
	APIOrigin    string
	Token        string
}

// ParseLaunchURL reads the token and backend origin from the script's own
// src. The api parameter falls back to the script's origin.
func ParseLaunchURL(src string) (LaunchParams, error) {
	u, err := url.Parse(src)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return LaunchParams{}, ErrInvalidBookmarklet.WithCause(err)
	}

	q := u.Query()
	p := LaunchParams{
		ScriptOrigin: u.Scheme + "://" + u.Host,
		Token:        q.Get("token"),
	}
	if p.Token == "" {
		return LaunchParams{}, ErrInvalidBookmarklet
	}

	p.APIOrigin = p.ScriptOrigin
	if api := q.Get("api"); api != "" {
		// Some bookmarklets encode the parameter twice.
		if decoded, err := url.QueryUnescape(api); err == nil {
			api = decoded
		}
		p.APIOrigin = strings.TrimRight(api, "/")
	}
	return p, nil
}

// LaunchURL builds the script URL a bookmarklet loads.
func LaunchURL(scriptOrigin, apiOrigin, token string) string {
	q := url.Values{}
	q.Set("token", token)
	if apiOrigin != "" && apiOrigin != scriptOrigin {
		q.Set("api", apiOrigin)
	}
	return strings.TrimRight(scriptOrigin, "/") + "/capture.js?" + q.Encode()
}

// FindLaunchScript returns the src of the last external script in page, the
// one that was appended by the bookmarklet.
func FindLaunchScript(page string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", errors.Wrap(err, errors.CodeValidation, "parse page")
	}
	src, ok := doc.Find("script[src]").Last().Attr("src")
	if !ok || src == "" {
		return "", ErrInvalidBookmarklet
	}
	return src, nil
}

// OverlayKind is the state of the progress overlay.
type OverlayKind int

// Overlay states.
const (
	OverlayHidden OverlayKind = iota
	OverlaySaving
	OverlayExtracting
	OverlayProcessing
	OverlaySaved
	OverlayFailed
)

func (k OverlayKind) String() string {
	switch k {
	case OverlaySaving:
		return "saving"
	case OverlayExtracting:
		return "extracting"
	case OverlayProcessing:
		return "processing"
	case OverlaySaved:
		return "saved"
	case OverlayFailed:
		return "failed"
	default:
		return "hidden"
	}
}

// Overlay is what the bookmarklet shows on the captured page.
type Overlay struct {
	Kind    OverlayKind
	Message string
	// RecipeURL links to the saved recipe. Set only when Kind is OverlaySaved.
	RecipeURL string
}

// Busy reports whether the spinner is showing.
func (o Overlay) Busy() bool {
	return o.Kind == OverlaySaving || o.Kind == OverlayExtracting || o.Kind == OverlayProcessing
}

// Closable reports whether the overlay offers a close button.
func (o Overlay) Closable() bool {
	return o.Kind == OverlaySaved || o.Kind == OverlayFailed
}

// BookmarkletConfig wires a Bookmarklet. Jobs must authenticate with
// Launch.Token.
type BookmarkletConfig struct {
	Launch       LaunchParams
	Jobs         JobAPI
	Clock        Clock
	PollInterval time.Duration
	Logger       *slog.Logger
}

// Bookmarklet is the self-contained capture variant: no capture page, no
// handshake. It creates the job from the page itself and reports progress
// through an overlay.
type Bookmarklet struct {
	cfg    BookmarkletConfig
	logger *slog.Logger

	mu        sync.Mutex
	overlay   Overlay
	ran       bool
	closed    bool
	cancel    context.CancelFunc
	poller    *Poller
	observers []func(Overlay)
}

// NewBookmarklet creates a bookmarklet with a hidden overlay.
func NewBookmarklet(cfg BookmarkletConfig) *Bookmarklet {
	if cfg.Clock == nil {
		cfg.Clock = RealClock()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Bookmarklet{
		cfg:    cfg,
		logger: logger.With("component", "capture_bookmarklet", "api", cfg.Launch.APIOrigin),
	}
}

// OnChange registers fn for every overlay change.
func (b *Bookmarklet) OnChange(fn func(Overlay)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = append(b.observers, fn)
}

// Overlay returns what is currently shown.
func (b *Bookmarklet) Overlay() Overlay {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.overlay
}

// Run captures html from the page at pageURL. The first job poll runs before
// Run returns; later polls run on the clock. Run does nothing the second time.
func (b *Bookmarklet) Run(ctx context.Context, html, pageURL string) Overlay {
	b.mu.Lock()
	if b.ran || b.closed {
		o := b.overlay
		b.mu.Unlock()
		return o
	}
	b.ran = true
	ctx, b.cancel = context.WithCancel(ctx)
	b.mu.Unlock()

	b.show(Overlay{Kind: OverlaySaving, Message: TextSaving})

	job, err := b.cfg.Jobs.CreateCapture(ctx, html, pageURL)
	if err != nil {
		b.logger.Error("capture failed", "error", err)
		b.show(Overlay{Kind: OverlayFailed, Message: createFailureText(err)})
		return b.Overlay()
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return b.Overlay()
	}
	b.poller = NewPoller(b.cfg.Jobs, b.cfg.Clock, b.cfg.PollInterval)
	poller := b.poller
	b.mu.Unlock()

	poller.Start(ctx, job.ID, b.onPoll)
	return b.Overlay()
}

// Close removes the overlay, stops polling and cancels in-flight requests.
func (b *Bookmarklet) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.poller != nil {
		b.poller.Stop()
	}
	if b.cancel != nil {
		b.cancel()
	}
	b.closed = true
	b.overlay = Overlay{Kind: OverlayHidden}
}

func (b *Bookmarklet) onPoll(job *domain.ScrapeJob, err error) bool {
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return true
		}
		b.logger.Error("poll failed", "error", err)
		b.show(Overlay{Kind: OverlayFailed, Message: TextPollFailed})
		return true
	}

	switch {
	case job.Status == domain.JobFailed:
		msg := TextExtractFailed
		if job.Error != nil && *job.Error != "" {
			msg = *job.Error
		}
		b.show(Overlay{Kind: OverlayFailed, Message: msg})
		return true
	case Settled(job):
		b.show(Overlay{
			Kind:      OverlaySaved,
			Message:   TextSaved,
			RecipeURL: RecipeURL(b.cfg.Launch.ScriptOrigin, *job.RecipeID),
		})
		return true
	case job.Status == domain.JobParsing:
		b.show(Overlay{Kind: OverlayExtracting, Message: TextExtracting})
	default:
		b.show(Overlay{Kind: OverlayProcessing, Message: TextProcessing})
	}
	return false
}

func (b *Bookmarklet) show(o Overlay) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.overlay = o
	fns := append([]func(Overlay){}, b.observers...)
	b.mu.Unlock()

	for _, fn := range fns {
		fn(o)
	}
}

func createFailureText(err error) string {
	var apiErr *ramekin.APIError
	if errors.As(err, &apiErr) {
		return ramekin.ErrorMessage(err, TextRequestFailed)
	}
	return TextSaveFailed
}
