package scene

import (
	"sync"

	"github.com/inamate/whiteboard/backend-go/internal/element"
)

// Update is delivered to subscribers once per committed change set.
type Update struct {
	Version int64  `json:"version"`
	Reason  string `json:"reason,omitempty"`
}

// Scene owns the board's elements in z-order and notifies subscribers when
// they change. Mutations are expected to come from a single caller at a
// time; the lock only protects readers on other goroutines.
type Scene struct {
	mu          sync.RWMutex
	elements    []*element.Element
	byID        element.ElementsMap
	version     int64
	nextSubID   int
	subscribers map[int]func(Update)
}

// New creates a scene holding the given elements.
func New(elements []*element.Element) *Scene {
	s := &Scene{subscribers: make(map[int]func(Update))}
	s.ReplaceAllElements(elements)
	return s
}

// ElementsIncludingDeleted returns every element in z-order.
func (s *Scene) ElementsIncludingDeleted() []*element.Element {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*element.Element(nil), s.elements...)
}

// NonDeletedElements returns the live elements in z-order.
func (s *Scene) NonDeletedElements() []*element.Element {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*element.Element, 0, len(s.elements))
	for _, el := range s.elements {
		if !el.IsDeleted {
			out = append(out, el)
		}
	}
	return out
}

// NonDeletedElementsMap indexes the live elements by id.
func (s *Scene) NonDeletedElementsMap() element.ElementsMap {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m := make(element.ElementsMap, len(s.byID))
	for id, el := range s.byID {
		if !el.IsDeleted {
			m[id] = el
		}
	}
	return m
}

// Element returns the element with the given id, deleted or not.
func (s *Scene) Element(id string) (*element.Element, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	el, ok := s.byID[id]
	return el, ok
}

// SelectedElements returns the live elements whose ids are selected, in
// z-order. Labels bound to a container are left out; they follow their
// container.
func (s *Scene) SelectedElements(selected map[string]bool) []*element.Element {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*element.Element
	for _, el := range s.elements {
		if el.IsDeleted || !selected[el.ID] || element.IsBoundText(el) {
			continue
		}
		out = append(out, el)
	}
	return out
}

// ReplaceAllElements swaps the scene's contents. It does not notify.
func (s *Scene) ReplaceAllElements(elements []*element.Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elements = append([]*element.Element(nil), elements...)
	s.byID = element.ToMap(s.elements)
}

// Mutate applies a partial update to one element in place.
func (s *Scene) Mutate(el *element.Element, u element.Updates) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return element.Mutate(el, u)
}

// Snapshot deep-copies the live elements, keyed by id.
func (s *Scene) Snapshot() element.ElementsMap {
	return s.NonDeletedElementsMap().Clone()
}

// Version returns the number of updates triggered so far.
func (s *Scene) Version() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (s *Scene) Subscribe(fn func(Update)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// TriggerUpdate notifies subscribers once.
func (s *Scene) TriggerUpdate() {
	s.triggerUpdate("")
}

func (s *Scene) triggerUpdate(reason string) {
	s.mu.Lock()
	s.version++
	u := Update{Version: s.version, Reason: reason}
	subs := make([]func(Update), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(u)
	}
}
