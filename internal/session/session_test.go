package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_SurvivesRestart(t *testing.T) {
	ctx := context.Background()
	persister := &MemoryPersister{}

	s, err := New(ctx, persister, nil)
	require.NoError(t, err)
	assert.False(t, s.IsAuthenticated())

	require.NoError(t, s.Set(ctx, "tok-1"))

	restarted, err := New(ctx, persister, nil)
	require.NoError(t, err)
	token, ok := restarted.Token()
	assert.True(t, ok)
	assert.Equal(t, "tok-1", token)
}

func TestSession_ClearNotifiesAndPersists(t *testing.T) {
	ctx := context.Background()
	persister := &MemoryPersister{}
	s, err := New(ctx, persister, nil)
	require.NoError(t, err)

	var changes []ChangeKind
	unsubscribe := s.Subscribe(func(c Change) { changes = append(changes, c.Kind) })

	require.NoError(t, s.Set(ctx, "tok"))
	require.NoError(t, s.Clear(ctx))

	assert.Equal(t, []ChangeKind{LoggedIn, LoggedOut}, changes)
	assert.False(t, s.IsAuthenticated())

	stored, _ := persister.LoadToken(ctx)
	assert.Empty(t, stored)

	unsubscribe()
	require.NoError(t, s.Set(ctx, "again"))
	assert.Len(t, changes, 2)
}

func TestSession_SetEmptyClears(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, nil, nil)
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "tok"))
	require.NoError(t, s.Set(ctx, ""))

	assert.False(t, s.IsAuthenticated())
}

func TestStatic(t *testing.T) {
	token, ok := Static("abc").Token()
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	_, ok = Static("").Token()
	assert.False(t, ok)
}
