package ingredients

import (
	"sync"

	"github.com/ramekin/ramekin-web/internal/domain"
)

// Listener receives the new list after every applied change.
type Listener func(list []domain.Ingredient)

// Editor owns an ingredient list and applies edits atomically: each
// operation computes a new list and swaps it in whole, then notifies
// listeners. Readers never observe a partially applied edit.
type Editor struct {
	mu        sync.RWMutex
	list      []domain.Ingredient
	listeners map[int]Listener
	nextID    int
}

// NewEditor creates an editor over a copy of initial.
func NewEditor(initial []domain.Ingredient) *Editor {
	return &Editor{
		list:      domain.CloneIngredients(initial),
		listeners: make(map[int]Listener),
	}
}

// Ingredients returns a copy of the current list.
func (e *Editor) Ingredients() []domain.Ingredient {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return domain.CloneIngredients(e.list)
}

// Len returns the number of ingredients.
func (e *Editor) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.list)
}

// Groups recomputes the section groups from the current list.
func (e *Editor) Groups() []SectionGroup {
	return GroupBySection(e.Ingredients())
}

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (e *Editor) Subscribe(fn Listener) (unsubscribe func()) {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.listeners[id] = fn
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.listeners, id)
			e.mu.Unlock()
		})
	}
}

// Apply replaces the list with fn(current) and notifies listeners.
func (e *Editor) Apply(fn func([]domain.Ingredient) []domain.Ingredient) {
	e.apply(func(l []domain.Ingredient) ([]domain.Ingredient, error) { return fn(l), nil })
}

// apply swaps in fn's result unless fn fails, in which case the list and
// listeners are left untouched.
func (e *Editor) apply(fn func([]domain.Ingredient) ([]domain.Ingredient, error)) error {
	snapshot, listeners, err := e.swap(fn)
	if err != nil {
		return err
	}
	for _, l := range listeners {
		l(domain.CloneIngredients(snapshot))
	}
	return nil
}

// swap runs fn under the write lock. A panicking fn leaves the list as it was
// and the lock released.
func (e *Editor) swap(fn func([]domain.Ingredient) ([]domain.Ingredient, error)) ([]domain.Ingredient, []Listener, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := fn(e.list)
	if err != nil {
		return nil, nil, err
	}
	e.list = next

	listeners := make([]Listener, 0, len(e.listeners))
	for _, l := range e.listeners {
		listeners = append(listeners, l)
	}
	return domain.CloneIngredients(next), listeners, nil
}

// Replace swaps in a new list, e.g. after an enrichment result is accepted.
func (e *Editor) Replace(list []domain.Ingredient) {
	next := domain.CloneIngredients(list)
	e.Apply(func([]domain.Ingredient) []domain.Ingredient { return next })
}

// Move drags the ingredient at from to to, assigning targetSection.
func (e *Editor) Move(from, to int, targetSection *string) {
	e.Apply(func(l []domain.Ingredient) []domain.Ingredient { return Move(l, from, to, targetSection) })
}

// MoveToSlot drags the ingredient at from onto to, inheriting its section.
func (e *Editor) MoveToSlot(from, to int) {
	e.Apply(func(l []domain.Ingredient) []domain.Ingredient { return MoveToSlot(l, from, to) })
}

// Add appends an empty unlabeled ingredient.
func (e *Editor) Add() {
	e.Apply(Add)
}

// AddWithSection appends an empty ingredient labeled name.
func (e *Editor) AddWithSection(name string) {
	e.Apply(func(l []domain.Ingredient) []domain.Ingredient { return AddWithSection(l, name) })
}

// Remove deletes the ingredient at index.
func (e *Editor) Remove(index int) {
	e.Apply(func(l []domain.Ingredient) []domain.Ingredient { return Remove(l, index) })
}

// SetItem sets the item name at index.
func (e *Editor) SetItem(index int, item string) {
	e.Apply(func(l []domain.Ingredient) []domain.Ingredient { return SetItem(l, index, item) })
}

// SetNote sets the note at index.
func (e *Editor) SetNote(index int, note string) {
	e.Apply(func(l []domain.Ingredient) []domain.Ingredient { return SetNote(l, index, note) })
}

// RenameSection relabels the group starting at startIndex.
func (e *Editor) RenameSection(startIndex int, name string) {
	e.Apply(func(l []domain.Ingredient) []domain.Ingredient { return RenameSection(l, startIndex, name) })
}

// AddAlternativeMeasurement appends an empty measurement at index.
func (e *Editor) AddAlternativeMeasurement(index int) {
	e.Apply(func(l []domain.Ingredient) []domain.Ingredient { return AddAlternativeMeasurement(l, index) })
}

// RemoveMeasurement removes one measurement. On ErrLastMeasurement nothing
// changes and no listener fires.
func (e *Editor) RemoveMeasurement(index, measurement int) error {
	return e.apply(func(l []domain.Ingredient) ([]domain.Ingredient, error) {
		return RemoveMeasurement(l, index, measurement)
	})
}

// SetAmount writes a measurement amount; blank means absent.
func (e *Editor) SetAmount(index, measurement int, amount string) {
	e.Apply(func(l []domain.Ingredient) []domain.Ingredient { return SetAmount(l, index, measurement, amount) })
}

// SetUnit writes a measurement unit; blank means absent.
func (e *Editor) SetUnit(index, measurement int, unit string) {
	e.Apply(func(l []domain.Ingredient) []domain.Ingredient { return SetUnit(l, index, measurement, unit) })
}
