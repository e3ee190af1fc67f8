package capture

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramekin/ramekin-web/internal/domain"
	"github.com/ramekin/ramekin-web/internal/errors"
	"github.com/ramekin/ramekin-web/internal/ramekin"
	"github.com/ramekin/ramekin-web/internal/session"
)

const (
	openerSource Source = "opener"
	pageHTML            = `<html><head><title>Best Pancakes</title></head><body>...</body></html>`
	pageURL             = "https://food.example/pancakes"
)

type receiverFixture struct {
	channel  *syncChannel
	jobs     *fakeJobs
	clock    *FakeClock
	receiver *Receiver
	states   []State
}

func newReceiverFixture(t *testing.T, responses ...pollResponse) *receiverFixture {
	t.Helper()
	f := &receiverFixture{
		channel: newSyncChannel(),
		jobs:    &fakeJobs{responses: responses},
		clock:   NewFakeClock(epoch),
	}
	f.receiver = NewReceiver(ReceiverConfig{
		Channel:     f.channel,
		Opener:      openerSource,
		Credentials: session.Static("tok"),
		Jobs:        f.jobs,
		Clock:       f.clock,
		Logger:      quiet(),
	})
	f.receiver.OnChange(func(s State) { f.states = append(f.states, s) })
	t.Cleanup(f.receiver.Close)
	return f
}

func (f *receiverFixture) sendSnapshot() {
	f.channel.deliver(Envelope{Origin: "https://food.example", Source: openerSource, Data: HTML(pageHTML, pageURL)})
}

func TestReceiver_HandshakeSuccess(t *testing.T) {
	f := newReceiverFixture(t,
		status(domain.JobPending),
		status(domain.JobParsing),
		completed("recipe-42"),
	)

	state := f.receiver.Start(context.Background())
	assert.Equal(t, PhaseWaiting, state.Phase)
	require.Len(t, f.channel.sent(), 1)
	assert.Equal(t, posted{msg: Ready(), target: AnyOrigin}, f.channel.sent()[0])

	f.sendSnapshot()
	require.Len(t, f.jobs.creates(), 1)
	assert.Equal(t, createCall{html: pageHTML, url: pageURL}, f.jobs.creates()[0])
	assert.Equal(t, 1, f.jobs.polls(), "first poll is immediate")

	state = f.receiver.State()
	assert.Equal(t, PhaseCapturing, state.Phase)
	assert.Equal(t, "job-1", state.JobID)
	assert.Equal(t, "Best Pancakes", state.Title)
	assert.Equal(t, TextProcessing, state.StatusText)

	f.clock.Advance(499 * time.Millisecond)
	assert.Equal(t, 1, f.jobs.polls())

	f.clock.Advance(time.Millisecond)
	assert.Equal(t, 2, f.jobs.polls())
	assert.Equal(t, domain.JobParsing, f.receiver.State().JobStatus)
	assert.Equal(t, TextExtracting, f.receiver.State().StatusText)

	f.clock.Advance(500 * time.Millisecond)
	assert.Equal(t, 3, f.jobs.polls())

	state = f.receiver.State()
	assert.Equal(t, PhaseSuccess, state.Phase)
	assert.Equal(t, "recipe-42", state.RecipeID)
	assert.Equal(t, TextSaved, state.StatusText)

	f.clock.Advance(10 * time.Second)
	assert.Equal(t, 3, f.jobs.polls(), "no polls after success")
	assert.Zero(t, f.clock.Pending())

	require.NotEmpty(t, f.states)
	assert.Equal(t, PhaseSuccess, f.states[len(f.states)-1].Phase)
}

func TestReceiver_JobFailed(t *testing.T) {
	f := newReceiverFixture(t, status(domain.JobPending), failed("boom"))
	f.receiver.Start(context.Background())
	f.sendSnapshot()

	f.clock.Advance(500 * time.Millisecond)

	state := f.receiver.State()
	assert.Equal(t, PhaseError, state.Phase)
	assert.Equal(t, "boom", state.Error)
	assert.Equal(t, errors.CodeJobFailed, state.ErrorCode)
	assert.Zero(t, f.clock.Pending(), "timer cleared")

	// A tick that escaped cancellation must not poll or change state.
	f.clock.LastTimer().Fire()
	assert.Equal(t, 2, f.jobs.polls())
	assert.Equal(t, state, f.receiver.State())
}

func TestReceiver_JobFailedWithoutMessage(t *testing.T) {
	f := newReceiverFixture(t, failed(""))
	f.receiver.Start(context.Background())
	f.sendSnapshot()

	assert.Equal(t, PhaseError, f.receiver.State().Phase)
	assert.Equal(t, TextExtractFailed, f.receiver.State().Error)
}

func TestReceiver_DropsForeignAndMalformedMessages(t *testing.T) {
	f := newReceiverFixture(t, status(domain.JobPending))
	f.receiver.Start(context.Background())

	f.channel.deliver(Envelope{Origin: "https://evil.example", Source: "intruder", Data: HTML("<p>evil</p>", "https://evil.example")})
	f.channel.deliver(Envelope{Origin: "https://food.example", Source: openerSource, Data: Ready()})
	f.channel.deliver(Envelope{Origin: "https://food.example", Source: openerSource, Data: Message{}})
	f.channel.deliver(Envelope{Origin: "https://food.example", Source: openerSource, Data: Close()})

	assert.Empty(t, f.jobs.creates())
	assert.Equal(t, PhaseWaiting, f.receiver.State().Phase)

	f.sendSnapshot()
	f.sendSnapshot()
	assert.Len(t, f.jobs.creates(), 1, "only the first snapshot starts a capture")
}

func TestReceiver_Preconditions(t *testing.T) {
	tests := []struct {
		name        string
		withChannel bool
		opener      Source
		creds       ramekin.TokenSource
		want        string
	}{
		{name: "no opener", withChannel: false, opener: openerSource, creds: session.Static("tok"), want: TextNoOpener},
		{name: "no opener source", withChannel: true, opener: "", creds: session.Static("tok"), want: TextNoOpener},
		{name: "no credential", withChannel: true, opener: openerSource, creds: session.Static(""), want: TextNotLoggedIn},
		{name: "nil credential source", withChannel: true, opener: openerSource, creds: nil, want: TextNotLoggedIn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			channel := newSyncChannel()
			cfg := ReceiverConfig{Opener: tt.opener, Credentials: tt.creds, Jobs: &fakeJobs{}, Clock: NewFakeClock(epoch), Logger: quiet()}
			if tt.withChannel {
				cfg.Channel = channel
			}
			r := NewReceiver(cfg)
			defer r.Close()

			state := r.Start(context.Background())

			assert.Equal(t, PhaseError, state.Phase)
			assert.Equal(t, tt.want, state.Error)
			assert.Equal(t, errors.CodePrecondition, state.ErrorCode)
			assert.Empty(t, channel.sent(), "nothing posted")
			assert.Zero(t, channel.listening(), "no listener registered")
		})
	}
}

func TestReceiver_CreateFailure(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantText string
		wantCode errors.Code
	}{
		{
			name:     "server message",
			err:      &ramekin.APIError{Status: 400, Message: "No recipe found on page"},
			wantText: "No recipe found on page",
			wantCode: errors.CodeValidation,
		},
		{
			name:     "no server message",
			err:      &ramekin.APIError{Status: 500},
			wantText: TextSaveFailed,
			wantCode: errors.CodeInternal,
		},
		{
			name:     "network",
			err:      errors.Network("request failed", errors.New("connection refused")),
			wantText: TextSaveFailed,
			wantCode: errors.CodeNetwork,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReceiverFixture(t)
			f.jobs.createErr = tt.err
			f.receiver.Start(context.Background())
			f.sendSnapshot()

			state := f.receiver.State()
			assert.Equal(t, PhaseError, state.Phase)
			assert.Equal(t, tt.wantText, state.Error)
			assert.Equal(t, tt.wantCode, state.ErrorCode)
			assert.Zero(t, f.jobs.polls())
		})
	}
}

func TestReceiver_PollNetworkError(t *testing.T) {
	f := newReceiverFixture(t,
		status(domain.JobPending),
		pollResponse{err: errors.Network("request failed", errors.New("reset"))},
	)
	f.receiver.Start(context.Background())
	f.sendSnapshot()
	f.clock.Advance(500 * time.Millisecond)

	state := f.receiver.State()
	assert.Equal(t, PhaseError, state.Phase)
	assert.Equal(t, TextPollFailed, state.Error)
	assert.Equal(t, errors.CodeNetwork, state.ErrorCode)

	f.clock.Advance(5 * time.Second)
	assert.Equal(t, 2, f.jobs.polls())
}

func TestReceiver_UnknownStatusKeepsPolling(t *testing.T) {
	f := newReceiverFixture(t,
		status("queued_for_gpu"),
		pollResponse{job: &domain.ScrapeJob{ID: "job-1", Status: domain.JobCompleted}},
		completed("r1"),
	)
	f.receiver.Start(context.Background())
	f.sendSnapshot()

	state := f.receiver.State()
	assert.Equal(t, PhaseCapturing, state.Phase)
	assert.Equal(t, domain.JobStatus("queued_for_gpu"), state.JobStatus)
	assert.Equal(t, TextProcessing, state.StatusText)

	f.clock.Advance(500 * time.Millisecond)
	assert.Equal(t, PhaseCapturing, f.receiver.State().Phase, "completed without a recipe id is not done")

	f.clock.Advance(500 * time.Millisecond)
	assert.Equal(t, PhaseSuccess, f.receiver.State().Phase)
	assert.Equal(t, "r1", f.receiver.State().RecipeID)
}

func TestReceiver_CloseStopsEverything(t *testing.T) {
	f := newReceiverFixture(t, status(domain.JobPending))
	f.receiver.Start(context.Background())
	f.sendSnapshot()
	require.Equal(t, 1, f.jobs.polls())
	require.Equal(t, 1, f.clock.Pending())

	f.receiver.Close()
	f.receiver.Close()

	assert.Zero(t, f.clock.Pending())
	assert.Zero(t, f.channel.listening())

	f.clock.Advance(5 * time.Second)
	f.clock.LastTimer().Fire()
	assert.Equal(t, 1, f.jobs.polls())
	assert.Equal(t, PhaseCapturing, f.receiver.State().Phase)
}

func TestReceiver_TerminalStateIsSticky(t *testing.T) {
	f := newReceiverFixture(t, completed("r1"))
	f.receiver.Start(context.Background())
	f.sendSnapshot()
	require.Equal(t, PhaseSuccess, f.receiver.State().Phase)

	f.receiver.fail(errors.Internal("late"))
	f.sendSnapshot()

	assert.Equal(t, PhaseSuccess, f.receiver.State().Phase)
	assert.Len(t, f.jobs.creates(), 1)
}

func TestReceiver_RequestCloseAndViewRecipe(t *testing.T) {
	f := newReceiverFixture(t, completed("r1"))
	f.receiver.Start(context.Background())
	f.sendSnapshot()

	require.NoError(t, f.receiver.ViewRecipe("https://ramekin.example/recipes/r1"))
	require.NoError(t, f.receiver.RequestClose())

	sent := f.channel.sent()
	require.Len(t, sent, 3)
	assert.Equal(t, ViewRecipe("https://ramekin.example/recipes/r1"), sent[1].msg)
	assert.Equal(t, Close(), sent[2].msg)
}

func TestReceiver_RequestCloseWithoutOpener(t *testing.T) {
	r := NewReceiver(ReceiverConfig{Logger: quiet()})
	assert.True(t, errors.Is(r.RequestClose(), errors.ErrPrecondition))
}

func TestReceiver_TitleParseDoesNotHoldState(t *testing.T) {
	channel := newSyncChannel()
	jobs := &fakeJobs{responses: []pollResponse{status(domain.JobPending)}}
	parsing := make(chan struct{})
	release := make(chan struct{})
	r := NewReceiver(ReceiverConfig{
		Channel:     channel,
		Opener:      openerSource,
		Credentials: session.Static("tok"),
		Jobs:        jobs,
		Clock:       NewFakeClock(epoch),
		Logger:      quiet(),
		Title: func(string) string {
			close(parsing)
			<-release
			return "Slow Page"
		},
	})
	r.Start(context.Background())

	handled := make(chan struct{})
	go func() {
		channel.deliver(Envelope{Source: openerSource, Data: HTML(pageHTML, pageURL)})
		close(handled)
	}()
	<-parsing

	got := make(chan State, 1)
	go func() { got <- r.State() }()
	select {
	case s := <-got:
		assert.Equal(t, PhaseCapturing, s.Phase)
		assert.Equal(t, TextSaving, s.StatusText)
	case <-time.After(time.Second):
		t.Fatal("State blocked while the snapshot title was parsed")
	}

	// Closing mid-parse drops the snapshot.
	r.Close()
	close(release)
	<-handled
	assert.Empty(t, jobs.creates())
	assert.Empty(t, r.State().Title)
}
