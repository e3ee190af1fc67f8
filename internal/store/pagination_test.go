package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramekin/ramekin-web/internal/domain"
	"github.com/ramekin/ramekin-web/internal/errors"
)

func TestPageParams_Normalize(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"zero uses default", 0, defaultPageLimit},
		{"negative uses default", -5, defaultPageLimit},
		{"in range kept", 50, 50},
		{"clamped to max", 5000, maxPageLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PageParams{Limit: tt.limit}
			p.Normalize()
			assert.Equal(t, tt.want, p.Limit)
		})
	}
}

func TestCursor(t *testing.T) {
	assert.Empty(t, EncodeCursor(""))

	key, err := DecodeCursor("")
	require.NoError(t, err)
	assert.Empty(t, key)

	cursor := EncodeCursor("idx:capture:created:2026-03-01T12:00:00.000000000Z:job_1")
	assert.NotContains(t, cursor, ":")
	key, err = DecodeCursor(cursor)
	require.NoError(t, err)
	assert.Equal(t, "idx:capture:created:2026-03-01T12:00:00.000000000Z:job_1", key)

	_, err = DecodeCursor("not base64!")
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidation, errors.CodeOf(err))
}

func TestTimestampIndexKey(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 42, time.UTC)
	key := formatTimestampIndexKey(captureTimePrefix, ts, "job:with:colons")
	assert.Equal(t, "idx:capture:created:2026-03-01T12:00:00.000000042Z:job:with:colons", string(key))

	id, err := parseTimestampIndexKey(key, captureTimePrefix)
	require.NoError(t, err)
	assert.Equal(t, "job:with:colons", id)

	_, err = parseTimestampIndexKey([]byte("other:2026"), captureTimePrefix)
	require.Error(t, err)
	_, err = parseTimestampIndexKey([]byte(captureTimePrefix+"short"), captureTimePrefix)
	require.Error(t, err)
}

func TestTimestampIndexKey_SortsChronologically(t *testing.T) {
	early := time.Date(2026, 3, 1, 12, 0, 0, 999, time.UTC)
	late := time.Date(2026, 3, 1, 12, 0, 1, 0, time.UTC)
	assert.Less(t,
		string(formatTimestampIndexKey(captureTimePrefix, early, "z")),
		string(formatTimestampIndexKey(captureTimePrefix, late, "a")))
}

func TestListCaptures_Pages(t *testing.T) {
	s, err := New("", nil, Options{InMemory: true})
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	for i := range 5 {
		id := fmt.Sprintf("job_%d", i)
		_, err := s.RecordCapture(ctx, &domain.ScrapeJob{ID: id, Status: domain.JobPending}, "https://example.com/"+id, "")
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	page1, err := s.ListCaptures(ctx, PageParams{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page1.Items, 2)
	assert.True(t, page1.HasMore)
	assert.Equal(t, "job_4", page1.Items[0].JobID)
	assert.Equal(t, "job_3", page1.Items[1].JobID)

	page2, err := s.ListCaptures(ctx, PageParams{Limit: 2, Cursor: page1.NextCursor})
	require.NoError(t, err)
	require.Len(t, page2.Items, 2)
	assert.Equal(t, "job_2", page2.Items[0].JobID)
	assert.Equal(t, "job_1", page2.Items[1].JobID)

	page3, err := s.ListCaptures(ctx, PageParams{Limit: 2, Cursor: page2.NextCursor})
	require.NoError(t, err)
	require.Len(t, page3.Items, 1)
	assert.Equal(t, "job_0", page3.Items[0].JobID)
	assert.False(t, page3.HasMore)
	assert.Empty(t, page3.NextCursor)
}

func TestListCaptures_Empty(t *testing.T) {
	s, err := New("", nil, Options{InMemory: true})
	require.NoError(t, err)
	defer s.Close()

	page, err := s.ListCaptures(context.Background(), PageParams{})
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasMore)
}
