// Package binding keeps labels and arrows attached to the shapes they are
// bound to when those shapes change size.
package binding

import (
	"math"

	"github.com/inamate/whiteboard/backend-go/internal/element"
	"github.com/inamate/whiteboard/backend-go/internal/textlayout"
)

const (
	// BoundTextPadding is the gap between a container's edge and its label.
	BoundTextPadding = 5.0

	arrowLabelWidthFraction = 0.7
	arrowLabelMinWidth      = 60.0
)

// Edge names the side of a shape being dragged.
type Edge string

const (
	EdgeEast  Edge = "e"
	EdgeSouth Edge = "s"
)

// Mutator applies partial updates. Both scene.Scene and scene.Batch satisfy it.
type Mutator interface {
	Mutate(el *element.Element, u element.Updates) bool
}

// Size is a width/height pair.
type Size struct {
	Width  float64
	Height float64
}

// Binder resolves and maintains bound labels and arrow bindings.
type Binder struct {
	measurer *textlayout.Measurer
}

func NewBinder(measurer *textlayout.Measurer) *Binder {
	return &Binder{measurer: measurer}
}

// BoundTextElement returns the label carried by el, or nil.
func (b *Binder) BoundTextElement(el *element.Element, elementsMap element.ElementsMap) *element.Element {
	if el == nil {
		return nil
	}
	for _, be := range el.BoundElements {
		if be.Type != element.KindText {
			continue
		}
		text, ok := elementsMap[be.ID]
		if ok && element.IsText(text) && text.ContainerID == el.ID && !text.IsDeleted {
			return text
		}
	}
	return nil
}

// UpdateBoundElements re-anchors every arrow bound to el onto el's current
// position and newSize. A nil newSize uses el's stored size.
func (b *Binder) UpdateBoundElements(mut Mutator, el *element.Element, elementsMap element.ElementsMap, newSize *Size) {
	size := Size{Width: el.Width, Height: el.Height}
	if newSize != nil {
		size = *newSize
	}

	for _, be := range el.BoundElements {
		if be.Type != element.KindArrow {
			continue
		}
		arrow, ok := elementsMap[be.ID]
		if !ok || arrow.IsDeleted || len(arrow.Points) < 2 {
			continue
		}

		abs := make([]element.Point, len(arrow.Points))
		for i, p := range arrow.Points {
			abs[i] = element.Point{X: arrow.X + p.X, Y: arrow.Y + p.Y}
		}

		moved := false
		if arrow.StartBinding != nil && arrow.StartBinding.ElementID == el.ID {
			abs[0] = anchorPoint(el, size, arrow.StartBinding.FixedPoint)
			moved = true
		}
		if arrow.EndBinding != nil && arrow.EndBinding.ElementID == el.ID {
			abs[len(abs)-1] = anchorPoint(el, size, arrow.EndBinding.FixedPoint)
			moved = true
		}
		if !moved {
			continue
		}

		origin := abs[0]
		points := make([]element.Point, len(abs))
		minX, minY := math.Inf(1), math.Inf(1)
		maxX, maxY := math.Inf(-1), math.Inf(-1)
		for i, p := range abs {
			points[i] = element.Point{X: p.X - origin.X, Y: p.Y - origin.Y}
			minX, minY = min(minX, points[i].X), min(minY, points[i].Y)
			maxX, maxY = max(maxX, points[i].X), max(maxY, points[i].Y)
		}

		mut.Mutate(arrow, element.Updates{
			X:      element.F(origin.X),
			Y:      element.F(origin.Y),
			Width:  element.F(maxX - minX),
			Height: element.F(maxY - minY),
			Points: points,
		})

		if label := b.BoundTextElement(arrow, elementsMap); label != nil {
			b.positionLabel(mut, arrow, label)
		}
	}
}

func anchorPoint(el *element.Element, size Size, fixed element.Point) element.Point {
	return element.Point{
		X: el.X + fixed.X*size.Width,
		Y: el.Y + fixed.Y*size.Height,
	}
}

// HandleBindTextResize re-flows container's label to the container's current
// size and re-aligns it. When keepAspect is false and the label no longer
// fits, the container grows downwards.
func (b *Binder) HandleBindTextResize(mut Mutator, container *element.Element, elementsMap element.ElementsMap, edge Edge, keepAspect bool) {
	label := b.BoundTextElement(container, elementsMap)
	if label == nil {
		return
	}

	// a height-only drag keeps the current line breaks
	text := label.Text
	if edge != EdgeSouth {
		source := label.OriginalText
		if source == "" {
			source = label.Text
		}
		text = b.measurer.Wrap(source, label.FontSize, BoundTextMaxWidth(container))
	}
	width, height := b.measurer.Measure(text, label.FontSize, label.LineHeight)

	mut.Mutate(label, element.Updates{
		Text:   element.S(text),
		Width:  element.F(width),
		Height: element.F(height),
	})

	if !keepAspect && !element.IsArrow(container) && height > BoundTextMaxHeight(container) {
		needed := containerHeightForText(container, height)
		if needed > container.Height {
			mut.Mutate(container, element.Updates{Height: element.F(max(needed, element.MinDimension))})
			// the container grew; arrows must follow its new bottom edge
			b.UpdateBoundElements(mut, container, elementsMap, nil)
		}
	}

	b.positionLabel(mut, container, label)
}

func (b *Binder) positionLabel(mut Mutator, container, label *element.Element) {
	var x, y float64

	if element.IsArrow(container) {
		bounds := element.ElementBounds(container)
		x = (bounds.X1+bounds.X2)/2 - label.Width/2
		y = (bounds.Y1+bounds.Y2)/2 - label.Height/2
	} else {
		switch label.TextAlign {
		case element.TextAlignLeft:
			x = container.X + BoundTextPadding
		case element.TextAlignRight:
			x = container.X + container.Width - BoundTextPadding - label.Width
		default:
			x = container.X + (container.Width-label.Width)/2
		}
		switch label.VerticalAlign {
		case element.VerticalAlignTop:
			y = container.Y + BoundTextPadding
		case element.VerticalAlignBottom:
			y = container.Y + container.Height - BoundTextPadding - label.Height
		default:
			y = container.Y + (container.Height-label.Height)/2
		}
	}

	mut.Mutate(label, element.Updates{X: element.F(x), Y: element.F(y)})
}

// BoundTextMaxWidth is the widest a label may be inside container.
func BoundTextMaxWidth(container *element.Element) float64 {
	switch container.Type {
	case element.KindEllipse:
		return container.Width/2*math.Sqrt2 - 2*BoundTextPadding
	case element.KindDiamond:
		return container.Width/2 - 2*BoundTextPadding
	case element.KindArrow:
		return max(container.Width*arrowLabelWidthFraction, arrowLabelMinWidth)
	default:
		return container.Width - 2*BoundTextPadding
	}
}

// BoundTextMaxHeight is the tallest a label may be inside container.
func BoundTextMaxHeight(container *element.Element) float64 {
	switch container.Type {
	case element.KindEllipse:
		return container.Height/2*math.Sqrt2 - 2*BoundTextPadding
	case element.KindDiamond:
		return container.Height/2 - 2*BoundTextPadding
	default:
		return container.Height - 2*BoundTextPadding
	}
}

func containerHeightForText(container *element.Element, textHeight float64) float64 {
	inner := textHeight + 2*BoundTextPadding
	switch container.Type {
	case element.KindEllipse:
		return inner * math.Sqrt2
	case element.KindDiamond:
		return inner * 2
	default:
		return inner
	}
}
