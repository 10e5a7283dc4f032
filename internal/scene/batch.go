package scene

import "github.com/inamate/whiteboard/backend-go/internal/element"

// Batch accumulates mutations so one logical operation produces exactly one
// update notification. Commit is idempotent and meant to be deferred.
type Batch struct {
	scene     *Scene
	reason    string
	dirty     bool
	committed bool
}

// Begin opens a batch. reason is passed through to subscribers.
func (s *Scene) Begin(reason string) *Batch {
	return &Batch{scene: s, reason: reason}
}

// Mutate applies u to el and records whether anything changed.
func (b *Batch) Mutate(el *element.Element, u element.Updates) bool {
	if b.scene.Mutate(el, u) {
		b.dirty = true
		return true
	}
	return false
}

// MarkDirty forces a notification on commit, for changes made outside Mutate.
func (b *Batch) MarkDirty() {
	b.dirty = true
}

// Dirty reports whether the batch has pending changes.
func (b *Batch) Dirty() bool {
	return b.dirty
}

// Commit notifies subscribers once if anything changed.
func (b *Batch) Commit() {
	if b.committed {
		return
	}
	b.committed = true
	if b.dirty {
		b.scene.triggerUpdate(b.reason)
	}
}
