package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func plain(buf *bytes.Buffer, level slog.Level) *slog.Logger {
	h := NewPrettyHandler(buf, &slog.HandlerOptions{Level: level})
	h.color = false
	return slog.New(h)
}

func TestNew_FormatAutoDetection(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		wantJSON    bool
	}{
		{name: "production uses json", environment: "production", wantJSON: true},
		{name: "development uses pretty", environment: "development"},
		{name: "cli uses pretty", environment: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			New(Config{Environment: tt.environment, Writer: &buf, NoColor: true}).Info("capture started")

			if tt.wantJSON {
				assert.Contains(t, buf.String(), `"msg":"capture started"`)
			} else {
				assert.Contains(t, buf.String(), "INF capture started")
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DeBuG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestPrettyHandler_Enabled(t *testing.T) {
	h := NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelInfo})

	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestPrettyHandler_Handle(t *testing.T) {
	var buf bytes.Buffer
	plain(&buf, slog.LevelInfo).Info("job polled", "job_id", "j1", "attempt", 3, "status", "still parsing")

	out := buf.String()
	assert.Contains(t, out, "INF job polled")
	assert.Contains(t, out, "job_id=j1")
	assert.Contains(t, out, "attempt=3")
	assert.Contains(t, out, `status="still parsing"`)
	assert.NotContains(t, out, "\033[")
}

func TestPrettyHandler_Colors(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewPrettyHandler(&buf, nil)).Warn("slow")

	assert.Contains(t, buf.String(), colorYellow+"WRN"+colorReset)
}

func TestPrettyHandler_Groups(t *testing.T) {
	var buf bytes.Buffer
	l := plain(&buf, slog.LevelInfo).
		With("component", "relay").
		WithGroup("session").
		With("id", "cap-1")

	l.Info("message relayed", "source", "opener", slog.Group("msg", "type", "html"))

	out := buf.String()
	assert.Contains(t, out, "component=relay")
	assert.Contains(t, out, "session.id=cap-1")
	assert.Contains(t, out, "session.source=opener")
	assert.Contains(t, out, "session.msg.type=html")
}

func TestPrettyHandler_WithSource(t *testing.T) {
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, &slog.HandlerOptions{AddSource: true})
	slog.New(h).Info("test message")

	assert.Contains(t, buf.String(), "logger_test.go:")
}

func TestFormatValue(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		value slog.Value
		want  string
	}{
		{"string", slog.StringValue("ready"), "ready"},
		{"empty string", slog.StringValue(""), `""`},
		{"time", slog.TimeValue(now), now.Format(time.RFC3339)},
		{"duration", slog.DurationValue(500 * time.Millisecond), "500ms"},
		{"int", slog.IntValue(42), "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatValue(tt.value))
		})
	}
}

func TestLogger_WithErrorAndField(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Format: "json", Writer: &buf})

	l.WithError(errors.New("boom")).WithField("job_id", "j1").Info("poll failed")

	out := buf.String()
	assert.Contains(t, out, `"error":"boom"`)
	assert.Contains(t, out, `"job_id":"j1"`)
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() { Discard().Info("nothing") })
}
