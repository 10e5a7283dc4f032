package engine

import (
	"encoding/json"
	"slices"
	"sort"
	"sync"

	"github.com/inamate/whiteboard/backend-go/internal/binding"
	"github.com/inamate/whiteboard/backend-go/internal/document"
	"github.com/inamate/whiteboard/backend-go/internal/element"
	"github.com/inamate/whiteboard/backend-go/internal/scene"
	"github.com/inamate/whiteboard/backend-go/internal/textlayout"
)

// Engine owns one board and the editor state needed to resize its
// elements. It processes commands from the frontend and answers queries.
//
// Subscribers are called while the engine lock is held and must not call
// back into the engine.
type Engine struct {
	mu sync.Mutex

	board    *document.Board
	scene    *scene.Scene
	appState document.AppState

	binder   *binding.Binder
	resizer  *Resizer
	stepSize float64

	// Drag in progress, if any
	gesture *Gesture
}

// NewEngine creates an engine with no board loaded. stepSize is the grid
// used for quantized resizes; zero uses DefaultStepSize.
func NewEngine(stepSize float64) *Engine {
	return &Engine{
		binder:   binding.NewBinder(textlayout.NewMeasurer()),
		stepSize: stepSize,
	}
}

// --- Commands (frontend → backend) ---

// LoadBoard loads a board from JSON.
func (e *Engine) LoadBoard(jsonData string) error {
	b, err := document.Parse([]byte(jsonData))
	if err != nil {
		return err
	}
	e.SetBoard(b)
	return nil
}

// LoadSampleBoard loads the built-in sample board.
func (e *Engine) LoadSampleBoard(boardID string) {
	e.SetBoard(document.NewSampleBoard(boardID))
}

// SetBoard replaces the loaded board. Any gesture in progress is dropped.
func (e *Engine) SetBoard(b *document.Board) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.scene == nil {
		e.scene = scene.New(b.Elements)
		e.resizer = NewResizer(e.scene, e.binder, e.stepSize)
	} else {
		// keep subscribers attached across reloads
		e.scene.ReplaceAllElements(b.Elements)
		e.scene.TriggerUpdate()
	}
	e.board = b
	e.appState = b.AppState.Clone()
	e.appState.ElementsToHighlight = nil
	e.gesture = nil
	SelectGroupsForSelectedElements(&e.appState, e.scene.NonDeletedElements())
}

// SetSelection sets the selected element ids and derives which groups are
// selected as a whole.
func (e *Engine) SetSelection(ids []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scene == nil {
		return ErrNoBoard
	}
	selected := make(map[string]bool, len(ids))
	for _, id := range ids {
		selected[id] = true
	}
	e.appState.SelectedElementIDs = selected
	SelectGroupsForSelectedElements(&e.appState, e.scene.NonDeletedElements())
	return nil
}

// SetCropping marks an image as being cropped, which switches its reported
// dimensions to the uncropped size. An empty id clears it.
func (e *Engine) SetCropping(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scene == nil {
		return ErrNoBoard
	}
	e.appState.CroppingElementID = id
	return nil
}

// SetDimension sets width or height of the selection to an absolute value.
// It is refused while a drag is active, since the drag's next update would
// overwrite it.
func (e *Engine) SetDimension(property string, value float64, opts Options) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scene == nil {
		return Result{}, ErrNoBoard
	}
	if e.gesture != nil {
		return Result{}, ErrResizeInProgress
	}
	p, err := ParseProperty(property)
	if err != nil {
		return Result{}, err
	}
	return e.resizer.ApplyResize(&e.appState, Request{Property: p, Value: value, Options: opts})
}

// BeginResize starts a drag on the current selection. The selected element
// set is pinned until the gesture ends, so later selection changes do not
// affect it. A gesture already in progress is abandoned.
func (e *Engine) BeginResize() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scene == nil {
		return ErrNoBoard
	}
	if e.gesture != nil {
		e.gesture.Cancel()
	}
	e.gesture = e.resizer.BeginGesture(&e.appState)
	return nil
}

// UpdateResize applies the delta accumulated since BeginResize. Frames
// touched by the drag preview their would-be members as highlights.
func (e *Engine) UpdateResize(property string, delta float64, opts Options) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gesture == nil {
		return Result{}, ErrNoGesture
	}
	p, err := ParseProperty(property)
	if err != nil {
		return Result{}, err
	}
	res, err := e.gesture.Update(Request{Property: p, Value: delta, Options: opts})
	if err != nil {
		return res, err
	}
	e.appState.ElementsToHighlight = slices.Clone(e.gesture.Staged())
	return res, nil
}

// EndResize finishes the drag and commits frame membership.
func (e *Engine) EndResize() (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gesture == nil {
		return Result{}, ErrNoGesture
	}
	g := e.gesture
	e.gesture = nil
	e.appState.ElementsToHighlight = nil
	return g.End()
}

// CancelResize abandons the drag. Elements stay where the last update put
// them.
func (e *Engine) CancelResize() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gesture == nil {
		return ErrNoGesture
	}
	e.gesture.Cancel()
	e.gesture = nil
	e.appState.ElementsToHighlight = nil
	return nil
}

// Subscribe registers fn for scene updates. It returns a function that
// removes the subscription.
func (e *Engine) Subscribe(fn func(scene.Update)) (func(), error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scene == nil {
		return nil, ErrNoBoard
	}
	return e.scene.Subscribe(fn), nil
}

// --- Queries (frontend ← backend) ---

// Board returns a detached copy of the board with its current elements.
func (e *Engine) Board() *document.Board {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.board == nil {
		return nil
	}
	b := *e.board
	b.Version = e.board.Version + int(e.scene.Version())
	elements := e.scene.ElementsIncludingDeleted()
	b.Elements = make([]*element.Element, len(elements))
	for i, el := range elements {
		b.Elements[i] = el.Clone()
	}
	b.AppState = e.appState.Clone()
	return &b
}

// GetBoard returns the board as JSON.
func (e *Engine) GetBoard() string {
	b := e.Board()
	if b == nil {
		return "{}"
	}
	data, _ := json.Marshal(b)
	return string(data)
}

// Dimensions returns the size of the current selection.
func (e *Engine) Dimensions() Dimensions {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.resizer == nil {
		return Dimensions{}
	}
	return e.resizer.GetDimensions(&e.appState)
}

// GetDimensions returns the size of the current selection as JSON.
func (e *Engine) GetDimensions() string {
	data, _ := json.Marshal(e.Dimensions())
	return string(data)
}

// Selection returns the selected element ids, sorted.
func (e *Engine) Selection() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := make([]string, 0, len(e.appState.SelectedElementIDs))
	for id, ok := range e.appState.SelectedElementIDs {
		if ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// GetSelection returns the current selection as JSON.
func (e *Engine) GetSelection() string {
	data, _ := json.Marshal(e.Selection())
	return string(data)
}

// Highlighted returns the ids previewed as frame members during a drag.
func (e *Engine) Highlighted() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.appState.ElementsToHighlight)
}

// Resizing reports whether a drag is in progress.
func (e *Engine) Resizing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gesture != nil
}

// Version returns the number of committed scene updates since the engine
// was created.
func (e *Engine) Version() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scene == nil {
		return 0
	}
	return e.scene.Version()
}
