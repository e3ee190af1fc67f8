package ingredients

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramekin/ramekin-web/internal/domain"
)

func TestEditor_NotifiesSubscribers(t *testing.T) {
	e := NewEditor(nil)

	var seen [][]string
	unsubscribe := e.Subscribe(func(list []domain.Ingredient) {
		seen = append(seen, items(list))
	})

	e.Add()
	e.SetItem(0, "flour")
	e.AddWithSection("Glaze")
	e.SetItem(1, "sugar")

	require.Len(t, seen, 4)
	assert.Equal(t, []string{"flour", "sugar"}, seen[3])

	unsubscribe()
	unsubscribe()
	e.Remove(0)
	assert.Len(t, seen, 4)
	assert.Equal(t, 1, e.Len())
}

func TestEditor_GroupsFollowMoves(t *testing.T) {
	e := NewEditor([]domain.Ingredient{
		ing("flour", domain.Str("Dough")),
		ing("yeast", domain.Str("Dough")),
		ing("sugar", domain.Str("Glaze")),
	})

	e.MoveToSlot(2, 0)

	groups := e.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"sugar", "flour", "yeast"}, items(groups[0].Ingredients))
	assert.Equal(t, "Dough", groups[0].Name())
}

func TestEditor_FailedRemoveLeavesStateAlone(t *testing.T) {
	e := NewEditor([]domain.Ingredient{ing("salt", nil)})

	calls := 0
	e.Subscribe(func([]domain.Ingredient) { calls++ })

	err := e.RemoveMeasurement(0, 0)

	assert.ErrorIs(t, err, ErrLastMeasurement)
	assert.Zero(t, calls)
	assert.Len(t, e.Ingredients()[0].Measurements, 1)
}

func TestEditor_SnapshotsAreIsolated(t *testing.T) {
	e := NewEditor([]domain.Ingredient{ing("salt", nil)})

	snapshot := e.Ingredients()
	snapshot[0].Item = "pepper"

	assert.Equal(t, "salt", e.Ingredients()[0].Item)
}

func TestEditor_RecoveredPanicKeepsEditorUsable(t *testing.T) {
	e := NewEditor([]domain.Ingredient{ing("flour", nil)})

	var notified int
	e.Subscribe(func([]domain.Ingredient) { notified++ })

	assert.Panics(t, func() { e.Move(5, 0, nil) })

	done := make(chan int, 1)
	go func() { done <- e.Len() }()
	select {
	case n := <-done:
		assert.Equal(t, 1, n)
	case <-time.After(time.Second):
		t.Fatal("editor locked after a recovered out-of-range move")
	}

	assert.Equal(t, []string{"flour"}, items(e.Ingredients()))
	assert.Zero(t, notified)

	e.Add()
	assert.Equal(t, 2, e.Len())
	assert.Equal(t, 1, notified)
}
