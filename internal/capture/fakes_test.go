package capture

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ramekin/ramekin-web/internal/domain"
	"github.com/ramekin/ramekin-web/internal/logger"
)

var epoch = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func quiet() *slog.Logger { return logger.Discard().Logger }

func strPtr(s string) *string { return &s }

type pollResponse struct {
	job *domain.ScrapeJob
	err error
}

func status(s domain.JobStatus) pollResponse {
	return pollResponse{job: &domain.ScrapeJob{ID: "job-1", Status: s}}
}

func completed(recipeID string) pollResponse {
	return pollResponse{job: &domain.ScrapeJob{ID: "job-1", Status: domain.JobCompleted, RecipeID: strPtr(recipeID)}}
}

func failed(msg string) pollResponse {
	job := &domain.ScrapeJob{ID: "job-1", Status: domain.JobFailed}
	if msg != "" {
		job.Error = strPtr(msg)
	}
	return pollResponse{job: job}
}

type createCall struct {
	html string
	url  string
}

// fakeJobs answers polls from a script; the last response repeats.
type fakeJobs struct {
	mu        sync.Mutex
	createErr error
	responses []pollResponse
	created   []createCall
	polled    []string
}

func (f *fakeJobs) CreateCapture(_ context.Context, html, sourceURL string) (*domain.ScrapeJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, createCall{html: html, url: sourceURL})
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &domain.ScrapeJob{ID: "job-1", Status: domain.JobPending}, nil
}

func (f *fakeJobs) GetScrape(_ context.Context, id string) (*domain.ScrapeJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polled = append(f.polled, id)
	if len(f.responses) == 0 {
		return &domain.ScrapeJob{ID: id, Status: domain.JobPending}, nil
	}
	r := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return r.job, r.err
}

func (f *fakeJobs) creates() []createCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]createCall(nil), f.created...)
}

func (f *fakeJobs) polls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.polled)
}

type posted struct {
	msg    Message
	target string
}

// syncChannel delivers on the caller's goroutine so tests can step the
// protocol one message at a time.
type syncChannel struct {
	mu        sync.Mutex
	listeners map[int]func(Envelope)
	next      int
	posts     []posted
}

func newSyncChannel() *syncChannel {
	return &syncChannel{listeners: make(map[int]func(Envelope))}
}

func (c *syncChannel) Post(msg Message, targetOrigin string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.posts = append(c.posts, posted{msg: msg, target: targetOrigin})
	return nil
}

func (c *syncChannel) Listen(fn func(Envelope)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.next
	c.next++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *syncChannel) deliver(env Envelope) {
	c.mu.Lock()
	fns := make([]func(Envelope), 0, len(c.listeners))
	for _, id := range sortedKeys(c.listeners) {
		fns = append(fns, c.listeners[id])
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn(env)
	}
}

func (c *syncChannel) sent() []posted {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]posted(nil), c.posts...)
}

func (c *syncChannel) listening() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.listeners)
}

type fakeHost struct {
	mu      sync.Mutex
	removed int
	opened  []string
}

func (h *fakeHost) RemoveContainer() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removed++
}

func (h *fakeHost) OpenWindow(url string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.opened = append(h.opened, url)
}

func (h *fakeHost) removals() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.removed
}

func (h *fakeHost) windows() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.opened...)
}
