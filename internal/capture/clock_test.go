package capture

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ramekin/ramekin-web/internal/domain"
)

func TestFakeClock_FiresInOrder(t *testing.T) {
	c := NewFakeClock(epoch)
	var fired []string

	c.AfterFunc(2*time.Second, func() { fired = append(fired, "b") })
	c.AfterFunc(time.Second, func() {
		fired = append(fired, "a")
		c.AfterFunc(500*time.Millisecond, func() { fired = append(fired, "a2") })
	})
	stopped := c.AfterFunc(time.Second, func() { fired = append(fired, "stopped") })
	assert.True(t, stopped.Stop())
	assert.False(t, stopped.Stop())

	c.Advance(3 * time.Second)

	assert.Equal(t, []string{"a", "a2", "b"}, fired)
	assert.Equal(t, epoch.Add(3*time.Second), c.Now())
	assert.Zero(t, c.Pending())
}

func TestPoller_StopsWhenDone(t *testing.T) {
	jobs := &fakeJobs{responses: []pollResponse{status(domain.JobPending), status(domain.JobScraping), completed("r1")}}
	clock := NewFakeClock(epoch)
	p := NewPoller(jobs, clock, 0)

	var statuses []domain.JobStatus
	p.Start(context.Background(), "job-1", func(job *domain.ScrapeJob, err error) bool {
		statuses = append(statuses, job.Status)
		return Settled(job)
	})

	clock.Advance(DefaultPollInterval * 10)

	assert.Equal(t, []domain.JobStatus{domain.JobPending, domain.JobScraping, domain.JobCompleted}, statuses)
	assert.Equal(t, 3, p.Polls())
	assert.True(t, p.Stopped())
}

func TestPoller_StopBeforeTick(t *testing.T) {
	jobs := &fakeJobs{}
	clock := NewFakeClock(epoch)
	p := NewPoller(jobs, clock, time.Second)

	handled := 0
	p.Start(context.Background(), "job-1", func(*domain.ScrapeJob, error) bool {
		handled++
		return false
	})
	p.Stop()
	p.Stop()

	clock.LastTimer().Fire()
	clock.Advance(time.Minute)

	assert.Equal(t, 1, handled)
	assert.Equal(t, 1, jobs.polls())
}
