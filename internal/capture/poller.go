package capture

import (
	"context"
	"sync"
	"time"

	"github.com/ramekin/ramekin-web/internal/domain"
)

// DefaultPollInterval is the spacing between job status requests.
const DefaultPollInterval = 500 * time.Millisecond

// JobAPI is the slice of the Ramekin backend the capture flow needs.
// *ramekin.Client satisfies it.
type JobAPI interface {
	CreateCapture(ctx context.Context, html, sourceURL string) (*domain.ScrapeJob, error)
	GetScrape(ctx context.Context, id string) (*domain.ScrapeJob, error)
}

// PollFunc handles one poll result and reports whether polling is done.
type PollFunc func(job *domain.ScrapeJob, err error) (done bool)

// Poller polls a scrape job serially: the next request is scheduled only
// after the previous response has been handled, so requests never overlap.
// Once stopped, a poller never calls its handler again, even if a timer
// callback slips through.
type Poller struct {
	jobs     JobAPI
	clock    Clock
	interval time.Duration

	mu      sync.Mutex
	timer   Timer
	stopped bool
	polls   int
}

// NewPoller creates a poller. A zero interval uses DefaultPollInterval.
func NewPoller(jobs JobAPI, clock Clock, interval time.Duration) *Poller {
	if clock == nil {
		clock = RealClock()
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{jobs: jobs, clock: clock, interval: interval}
}

// Start issues the first request immediately on the calling goroutine, then
// one every interval until handle reports done or Stop is called.
func (p *Poller) Start(ctx context.Context, jobID string, handle PollFunc) {
	p.tick(ctx, jobID, handle)
}

// Stop cancels the pending request, if any. It is safe to call repeatedly.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

// Stopped reports whether the poller has finished.
func (p *Poller) Stopped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped
}

// Polls returns the number of requests issued so far.
func (p *Poller) Polls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.polls
}

func (p *Poller) tick(ctx context.Context, jobID string, handle PollFunc) {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.timer = nil
	p.polls++
	p.mu.Unlock()

	job, err := p.jobs.GetScrape(ctx, jobID)

	if p.Stopped() {
		return
	}
	if handle(job, err) {
		p.Stop()
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.timer = p.clock.AfterFunc(p.interval, func() {
		p.tick(ctx, jobID, handle)
	})
}
