package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramekin/ramekin-web/internal/domain"
	"github.com/ramekin/ramekin-web/internal/errors"
	"github.com/ramekin/ramekin-web/internal/session"
)

// Compile-time check that Store persists the session credential.
var _ session.Persister = (*Store)(nil)

func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "ramekin-test-*")
	require.NoError(t, err)

	s, err := New(filepath.Join(tmpDir, "test.db"), nil)
	require.NoError(t, err)

	cleanup := func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	}
	return s, cleanup
}

func TestCredential_SurvivesReopen(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "test.db")
	ctx := context.Background()

	s, err := New(path, nil)
	require.NoError(t, err)

	token, err := s.LoadToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, s.SaveToken(ctx, "tok-123"))
	require.NoError(t, s.Close())

	reopened, err := New(path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	sess, err := session.New(ctx, reopened, nil)
	require.NoError(t, err)
	got, ok := sess.Token()
	assert.True(t, ok)
	assert.Equal(t, "tok-123", got)
}

func TestDeleteToken_DropsTagCache(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, s.SaveToken(ctx, "tok"))
	require.NoError(t, s.CacheTags(ctx, []domain.Tag{{ID: "t1", Name: "dinner"}}))

	tags, ok, err := s.CachedTags(ctx, time.Hour)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "dinner", tags[0].Name)

	require.NoError(t, s.DeleteToken(ctx))

	_, ok, err = s.CachedTags(ctx, time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	token, err := s.LoadToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestCaptures_RecordAndUpdate(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	job := &domain.ScrapeJob{ID: "job-1", Status: domain.JobPending}
	rec, err := s.RecordCapture(ctx, job, "https://example.com/pie", "Pie")
	require.NoError(t, err)
	assert.Equal(t, domain.JobPending, rec.Status)

	_, err = s.RecordCapture(ctx, job, "https://example.com/pie", "Pie")
	assert.True(t, errors.Is(err, ErrAlreadyExists))

	recipeID := "recipe-9"
	job.Status = domain.JobCompleted
	job.RecipeID = &recipeID
	rec, err = s.UpdateCapture(ctx, job)
	require.NoError(t, err)
	assert.Equal(t, domain.JobCompleted, rec.Status)
	assert.Equal(t, "Pie", rec.Title)

	byRecipe, err := s.CaptureForRecipe(ctx, recipeID)
	require.NoError(t, err)
	assert.Equal(t, "job-1", byRecipe.JobID)

	_, err = s.CaptureForRecipe(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRecentCaptures_NewestFirst(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		_, err := s.RecordCapture(ctx, &domain.ScrapeJob{ID: id, Status: domain.JobPending}, "https://example.com/"+id, "")
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	recs, err := s.RecentCaptures(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "c", recs[0].JobID)
	assert.Equal(t, "b", recs[1].JobID)
}

func TestEntity_DeleteIsIdempotent(t *testing.T) {
	s, err := New("", nil, Options{InMemory: true})
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	recipeID := "r1"
	require.NoError(t, s.Captures.Create(ctx, "j1", &domain.CaptureRecord{JobID: "j1", RecipeID: &recipeID}))
	require.NoError(t, s.Captures.Delete(ctx, "j1"))
	require.NoError(t, s.Captures.Delete(ctx, "j1"))

	_, err = s.Captures.GetByIndex(ctx, "recipe", recipeID)
	assert.True(t, errors.Is(err, ErrNotFound))
}
