package engine

import (
	"fmt"

	"github.com/inamate/whiteboard/backend-go/internal/binding"
	"github.com/inamate/whiteboard/backend-go/internal/element"
)

// GroupResize describes one rigid-block resize.
type GroupResize struct {
	NextWidth           float64
	NextHeight          float64
	Property            Property
	PreserveAspectRatio bool
}

// ResizeGroup scales every member of an atomic unit about the top-left
// corner of the unit's original bounds, so all members share one anchor
// and one pair of scale factors. Members are measured from their original
// snapshots; latest and originals are parallel slices.
func (r *Resizer) ResizeGroup(
	mut binding.Mutator,
	target GroupResize,
	latest, originals []*element.Element,
	elementsMap, originalsMap element.ElementsMap,
) error {
	bounds, err := element.CommonBounds(originals)
	if err != nil {
		return fmt.Errorf("group bounds: %w", err)
	}
	initialWidth, initialHeight := bounds.Width(), bounds.Height()
	if initialWidth <= 0 || initialHeight <= 0 {
		return fmt.Errorf("group of %d is %vx%v: %w", len(originals), initialWidth, initialHeight, ErrDegenerateGeometry)
	}

	nextWidth, nextHeight := target.NextWidth, target.NextHeight
	if target.PreserveAspectRatio {
		nextWidth, nextHeight = aspectLockedSize(target.Property, nextWidth, nextHeight, initialWidth, initialHeight)
	}
	scaleX := nextWidth / initialWidth
	scaleY := nextHeight / initialHeight
	if target.PreserveAspectRatio {
		if target.Property == PropertyWidth {
			scaleY = scaleX
		} else {
			scaleX = scaleY
		}
	}

	axisScale := scaleX
	edge := binding.EdgeEast
	if target.Property == PropertyHeight {
		axisScale, edge = scaleY, binding.EdgeSouth
	}

	anchor := bounds.Min()
	transform := element.ScaleAbout(anchor, scaleX, scaleY)

	for i, orig := range originals {
		el := latest[i]

		pos := transform.TransformPoint(element.Point{X: orig.X, Y: orig.Y})
		width := max(orig.Width*scaleX, element.MinDimension)
		height := max(orig.Height*scaleY, element.MinDimension)

		updates := element.Updates{
			X:      element.F(pos.X),
			Y:      element.F(pos.Y),
			Width:  element.F(width),
			Height: element.F(height),
			Points: element.RescalePoints(orig, width, height),
		}
		if element.IsText(orig) {
			updates.FontSize = element.F(orig.FontSize * axisScale)
		}
		mut.Mutate(el, updates)

		if err := r.syncBoundElements(mut, el, orig, elementsMap, originalsMap, axisScale, edge, target.PreserveAspectRatio); err != nil {
			return err
		}
	}
	return nil
}

// aspectLockedSize derives the non-driving dimension from the driving one
// using the original aspect ratio, rounded to two decimals.
func aspectLockedSize(property Property, nextWidth, nextHeight, initialWidth, initialHeight float64) (float64, float64) {
	if initialWidth <= 0 || initialHeight <= 0 {
		return nextWidth, nextHeight
	}
	aspect := initialWidth / initialHeight
	if property == PropertyWidth {
		return nextWidth, element.Round2(nextWidth / aspect)
	}
	return element.Round2(nextHeight * aspect), nextHeight
}
