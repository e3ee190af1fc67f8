package sse

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramekin/ramekin-web/internal/capture"
	"github.com/ramekin/ramekin-web/internal/logger"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(logger.Discard().Logger)
	ctx, cancel := context.WithCancel(context.Background())
	go m.Start(ctx)
	t.Cleanup(cancel)
	return m
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case e := <-c.EventChan:
		return e
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
		return Event{}
	}
}

func TestManager_FiltersBySession(t *testing.T) {
	m := newTestManager(t)

	a, err := m.Connect("cap-a")
	require.NoError(t, err)
	b, err := m.Connect("cap-b")
	require.NoError(t, err)
	assert.Equal(t, 2, m.ClientCount())

	m.Emit(NewMessageEvent("cap-a", 1, capture.Ready(), capture.AnyOrigin))

	e := receive(t, a)
	assert.Equal(t, EventCaptureMessage, e.Type)
	assert.Equal(t, MessageEventData{Seq: 1, Message: capture.Ready(), TargetOrigin: "*"}, e.Data)

	select {
	case e := <-b.EventChan:
		t.Fatalf("unexpected event for other session: %v", e.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestManager_DisconnectSession(t *testing.T) {
	m := newTestManager(t)

	a1, _ := m.Connect("cap-a")
	_, _ = m.Connect("cap-a")
	_, _ = m.Connect("cap-b")

	assert.Equal(t, 2, m.SessionCount())
	m.DisconnectSession("cap-a")

	assert.Equal(t, 1, m.ClientCount())
	assert.Equal(t, 1, m.SessionCount())
	select {
	case <-a1.Done:
	default:
		t.Fatal("client not closed")
	}
	m.Disconnect(a1.ID)
}

func TestManager_UnscopedEventsReachEverySession(t *testing.T) {
	m := newTestManager(t)

	a, _ := m.Connect("cap-a")
	b, _ := m.Connect("cap-b")

	m.Emit(NewHeartbeatEvent())

	assert.Equal(t, EventHeartbeat, receive(t, a).Type)
	assert.Equal(t, EventHeartbeat, receive(t, b).Type)
}

func TestManager_DisconnectUnknownIsNoop(t *testing.T) {
	m := newTestManager(t)
	c, _ := m.Connect("cap-a")

	m.Disconnect("sse-missing")
	m.Disconnect(c.ID)
	m.Disconnect(c.ID)

	assert.Zero(t, m.ClientCount())
	assert.Zero(t, m.SessionCount())
}

func TestManager_EmitAfterShutdown(t *testing.T) {
	m := NewManager(logger.Discard().Logger)
	go m.Start(context.Background())

	require.NoError(t, m.Shutdown(context.Background()))
	require.NoError(t, m.Shutdown(context.Background()))

	m.Emit(NewStateEvent("cap-a", capture.State{Phase: capture.PhaseWaiting}))
	assert.Zero(t, m.ClientCount())
}

func TestHandler_ReplaysBacklogThenStreams(t *testing.T) {
	m := newTestManager(t)
	h := NewHandler(m, logger.Discard().Logger)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.Serve(w, r, "cap-a", func() ([]Event, bool) {
			return []Event{NewMessageEvent("cap-a", 1, capture.Ready(), capture.AnyOrigin)}, true
		})
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return m.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	m.Emit(NewStateEvent("cap-a", capture.State{Phase: capture.PhaseCapturing}))

	var events []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() && len(events) < 3 {
		if name, ok := strings.CutPrefix(scanner.Text(), "event: "); ok {
			events = append(events, name)
		}
	}
	assert.Equal(t, []string{"connected", "capture.message", "capture.state"}, events)
}

func TestHandler_ClosedSessionEndsStream(t *testing.T) {
	m := newTestManager(t)
	h := NewHandler(m, logger.Discard().Logger)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.Serve(w, r, "cap-gone", func() ([]Event, bool) { return nil, false })
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "event: connected")
	assert.NotContains(t, string(body), "event: capture.")
	assert.Zero(t, m.ClientCount())
	assert.Zero(t, m.SessionCount())
}
