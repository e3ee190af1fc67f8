// Package sse streams capture relay events to the capture page.
//
// The capture page cannot receive window messages from the server directly,
// so everything the in-server receiver posts to its opener, and every state
// change, travels down a per-session event stream. The page relays messages
// on with window.postMessage.
package sse

import (
	"time"

	"github.com/ramekin/ramekin-web/internal/capture"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventCaptureMessage carries a window message the receiver posted.
	EventCaptureMessage EventType = "capture.message"
	// EventCaptureState carries a receiver state snapshot.
	EventCaptureState EventType = "capture.state"
	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event is one server-sent event.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`

	// SessionID limits delivery to clients of one capture session.
	// Empty means every client.
	SessionID string `json:"-"`
}

// MessageEventData is the payload of capture.message. Seq increases by one
// per message within a session; clients drop anything they have already seen.
type MessageEventData struct {
	Seq          int             `json:"seq"`
	Message      capture.Message `json:"message"`
	TargetOrigin string          `json:"target_origin"`
}

// StateEventData is the payload of capture.state.
type StateEventData struct {
	State capture.State `json:"state"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewMessageEvent creates a capture.message event for one session.
func NewMessageEvent(sessionID string, seq int, msg capture.Message, targetOrigin string) Event {
	return Event{
		Type:      EventCaptureMessage,
		Data:      MessageEventData{Seq: seq, Message: msg, TargetOrigin: targetOrigin},
		Timestamp: time.Now(),
		SessionID: sessionID,
	}
}

// NewStateEvent creates a capture.state event for one session.
func NewStateEvent(sessionID string, state capture.State) Event {
	return Event{
		Type:      EventCaptureState,
		Data:      StateEventData{State: state},
		Timestamp: time.Now(),
		SessionID: sessionID,
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type: EventHeartbeat,
		Data: HeartbeatEventData{
			ServerTime: time.Now(),
		},
		Timestamp: time.Now(),
	}
}
