package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/inamate/whiteboard/backend-go/internal/binding"
	"github.com/inamate/whiteboard/backend-go/internal/document"
	"github.com/inamate/whiteboard/backend-go/internal/element"
	"github.com/inamate/whiteboard/backend-go/internal/scene"
)

// DefaultStepSize is the grid used when step quantization is requested.
const DefaultStepSize = 10.0

// Property is the dimension a request changes.
type Property string

const (
	PropertyWidth  Property = "width"
	PropertyHeight Property = "height"
)

// ParseProperty validates a property name coming from a client.
func ParseProperty(s string) (Property, error) {
	switch Property(s) {
	case PropertyWidth, PropertyHeight:
		return Property(s), nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrInvalidProperty)
}

func (p Property) edge() binding.Edge {
	if p == PropertyHeight {
		return binding.EdgeSouth
	}
	return binding.EdgeEast
}

// Options tune a resize request.
type Options struct {
	PreserveAspectRatio  bool `json:"preserveAspectRatio"`
	StepSizeQuantization bool `json:"stepSizeQuantization"`
}

// Request is one resize: an absolute target for Property, or, when
// Incremental is set, a delta added to each unit's original size.
type Request struct {
	Property    Property `json:"property"`
	Value       float64  `json:"value"`
	Incremental bool     `json:"incremental"`
	Options
}

func (req Request) validate() error {
	if math.IsNaN(req.Value) || math.IsInf(req.Value, 0) {
		return fmt.Errorf("%s=%v: %w", req.Property, req.Value, ErrNonNumericInput)
	}
	if _, err := ParseProperty(string(req.Property)); err != nil {
		return err
	}
	return nil
}

// Result reports what a resize did.
type Result struct {
	Units   int      `json:"units"`
	Changed bool     `json:"changed"`
	Staged  []string `json:"staged,omitempty"`
	Failed  []error  `json:"-"`
}

// Err joins the per-unit failures, or returns nil.
func (r Result) Err() error {
	return errors.Join(r.Failed...)
}

// Store is the scene the resizer reads from and writes through.
type Store interface {
	SelectedElements(selected map[string]bool) []*element.Element
	NonDeletedElementsMap() element.ElementsMap
	ElementsIncludingDeleted() []*element.Element
	Snapshot() element.ElementsMap
	Begin(reason string) *scene.Batch
}

// Binder keeps bound labels and arrows attached.
type Binder interface {
	BoundTextElement(el *element.Element, elementsMap element.ElementsMap) *element.Element
	UpdateBoundElements(mut binding.Mutator, el *element.Element, elementsMap element.ElementsMap, newSize *binding.Size)
	HandleBindTextResize(mut binding.Mutator, container *element.Element, elementsMap element.ElementsMap, edge binding.Edge, keepAspect bool)
}

// Resizer applies dimension changes to a selection.
type Resizer struct {
	store    Store
	binder   Binder
	stepSize float64
}

// NewResizer creates a resizer. A stepSize of zero or less uses DefaultStepSize.
func NewResizer(store Store, binder Binder, stepSize float64) *Resizer {
	if stepSize <= 0 {
		stepSize = DefaultStepSize
	}
	return &Resizer{store: store, binder: binder, stepSize: stepSize}
}

// ApplyResize resizes the selection in appState, or the explicit elements
// when given, and commits one scene update. Frame membership is committed
// immediately. An empty selection is a no-op.
func (r *Resizer) ApplyResize(appState *document.AppState, req Request, explicit ...*element.Element) (Result, error) {
	if err := req.validate(); err != nil {
		return Result{}, err
	}
	selected := r.selection(appState, explicit)
	if len(selected) == 0 {
		return Result{}, nil
	}
	return r.apply(appState, req, selected, r.store.Snapshot(), true), nil
}

func (r *Resizer) selection(appState *document.AppState, explicit []*element.Element) []*element.Element {
	if len(explicit) > 0 {
		return explicit
	}
	if appState == nil {
		return nil
	}
	return r.store.SelectedElements(appState.SelectedElementIDs)
}

func (r *Resizer) apply(
	appState *document.AppState,
	req Request,
	selected []*element.Element,
	originals element.ElementsMap,
	commitFrames bool,
) Result {
	batch := r.store.Begin("resize")
	defer batch.Commit()

	elementsMap := r.store.NonDeletedElementsMap()
	units := ResolveAtomicUnits(selected, elementsMap, appState)
	singleImage := len(selected) == 1 && element.IsImage(selected[0])

	res := Result{Units: units.Len()}
	var resized []string
	for i := range units.Len() {
		ids := units.Unit(i)
		members := ElementsInAtomicUnit(ids, elementsMap, originals)
		if len(members) == 0 {
			continue
		}
		var err error
		if len(members) == 1 {
			err = r.resizeSingleUnit(batch, req, members[0], elementsMap, originals, singleImage)
		} else {
			err = r.resizeGroupUnit(batch, req, members, elementsMap, originals)
		}
		if err != nil {
			slog.Warn("resize unit failed", "unit", i, "elements", ids, "error", err)
			res.Failed = append(res.Failed, err)
			continue
		}
		resized = append(resized, ids...)
	}

	frames := touchedFrames(resized, elementsMap, originals)
	if len(frames) > 0 {
		res.Staged = updateFrameMembership(batch, frames, r.store.ElementsIncludingDeleted(), originals, commitFrames)
	}
	res.Changed = batch.Dirty()
	return res
}

func (r *Resizer) resizeSingleUnit(
	mut binding.Mutator,
	req Request,
	m UnitMember,
	elementsMap, originals element.ElementsMap,
	singleImage bool,
) error {
	latest, orig := m.Latest, m.Original

	nextWidth, nextHeight := latest.Width, latest.Height
	if req.Incremental {
		nextWidth, nextHeight = orig.Width, orig.Height
	}
	base := orig.Width
	if req.Property == PropertyHeight {
		base = orig.Height
	}
	target := req.Value
	if req.Incremental {
		target = base + req.Value
	}
	target = r.normalize(target, req.StepSizeQuantization)
	if req.Property == PropertyWidth {
		nextWidth = target
	} else {
		nextHeight = target
	}

	keepAspect := req.PreserveAspectRatio || singleImage
	if keepAspect {
		nextWidth, nextHeight = aspectLockedSize(req.Property, nextWidth, nextHeight, orig.Width, orig.Height)
		nextWidth = max(nextWidth, element.MinDimension)
		nextHeight = max(nextHeight, element.MinDimension)
	}

	return r.ResizeSingleElement(mut, nextWidth, nextHeight, latest, orig, elementsMap, originals, req.Property.edge(), keepAspect)
}

func (r *Resizer) resizeGroupUnit(
	mut binding.Mutator,
	req Request,
	members []UnitMember,
	elementsMap, originals element.ElementsMap,
) error {
	latest := make([]*element.Element, len(members))
	origs := make([]*element.Element, len(members))
	for i, m := range members {
		latest[i], origs[i] = m.Latest, m.Original
	}
	bounds, err := element.CommonBounds(origs)
	if err != nil {
		return err
	}

	nextWidth, nextHeight := bounds.Width(), bounds.Height()
	base := nextWidth
	if req.Property == PropertyHeight {
		base = nextHeight
	}
	target := req.Value
	if req.Incremental {
		target = base + req.Value
	}
	target = r.normalize(target, req.StepSizeQuantization)
	if req.Property == PropertyWidth {
		nextWidth = target
	} else {
		nextHeight = target
	}

	return r.ResizeGroup(mut, GroupResize{
		NextWidth:           nextWidth,
		NextHeight:          nextHeight,
		Property:            req.Property,
		PreserveAspectRatio: req.PreserveAspectRatio,
	}, latest, origs, elementsMap, originals)
}

// normalize clamps a requested size to be non-negative, snaps it to the
// step grid or the nearest integer, then enforces the minimum dimension.
func (r *Resizer) normalize(v float64, quantize bool) float64 {
	v = max(0, v)
	if quantize {
		v = element.StepSized(v, r.stepSize)
	} else {
		v = math.Round(v)
	}
	return max(v, element.MinDimension)
}

// Gesture is an in-progress drag. Every update is measured from the state
// captured at Begin; frame membership is only previewed until End.
type Gesture struct {
	r         *Resizer
	appState  document.AppState
	elements  []*element.Element
	originals element.ElementsMap
	staged    []string
	ended     bool
}

// BeginGesture pins the elements to resize and snapshots their state.
func (r *Resizer) BeginGesture(appState *document.AppState, explicit ...*element.Element) *Gesture {
	g := &Gesture{
		r:         r,
		elements:  r.selection(appState, explicit),
		originals: r.store.Snapshot(),
	}
	if appState != nil {
		g.appState = appState.Clone()
	}
	return g
}

// Elements returns the pinned element set.
func (g *Gesture) Elements() []*element.Element {
	return g.elements
}

// Staged returns the ids currently previewed as frame members.
func (g *Gesture) Staged() []string {
	return g.staged
}

// Update applies an accumulated delta. req.Incremental is forced on.
func (g *Gesture) Update(req Request) (Result, error) {
	if g.ended {
		return Result{}, ErrNoGesture
	}
	req.Incremental = true
	if err := req.validate(); err != nil {
		return Result{}, err
	}
	if len(g.elements) == 0 {
		return Result{}, nil
	}
	res := g.r.apply(&g.appState, req, g.elements, g.originals, false)
	g.staged = res.Staged
	return res, nil
}

// End commits frame membership for every frame the gesture resized.
func (g *Gesture) End() (Result, error) {
	if g.ended {
		return Result{}, ErrNoGesture
	}
	g.ended = true
	g.staged = nil
	if len(g.elements) == 0 {
		return Result{}, nil
	}

	batch := g.r.store.Begin("resize.end")
	defer batch.Commit()

	ids := make([]string, 0, len(g.elements))
	for _, el := range g.elements {
		ids = append(ids, el.ID)
	}
	frames := touchedFrames(ids, g.r.store.NonDeletedElementsMap(), g.originals)
	res := Result{}
	if len(frames) > 0 {
		updateFrameMembership(batch, frames, g.r.store.ElementsIncludingDeleted(), g.originals, true)
	}
	res.Changed = batch.Dirty()
	return res, nil
}

// Cancel abandons the gesture. Elements keep their last applied state.
func (g *Gesture) Cancel() {
	g.ended = true
	g.staged = nil
}
