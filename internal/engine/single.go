package engine

import (
	"fmt"

	"github.com/inamate/whiteboard/backend-go/internal/binding"
	"github.com/inamate/whiteboard/backend-go/internal/element"
)

// ResizeSingleElement sets latest to nextWidth x nextHeight, measured from
// original. The top-left corner stays where it was, so growth happens
// toward the dragged east or south edge. Points are stretched to the new
// size, a text element's own font scales by the ratio along the dragged
// axis, and bound arrows and labels are brought along.
func (r *Resizer) ResizeSingleElement(
	mut binding.Mutator,
	nextWidth, nextHeight float64,
	latest, original *element.Element,
	elementsMap, originals element.ElementsMap,
	edge binding.Edge,
	keepAspect bool,
) error {
	nextWidth = max(nextWidth, element.MinDimension)
	nextHeight = max(nextHeight, element.MinDimension)

	originalSize := original.Width
	nextSize := nextWidth
	if edge == binding.EdgeSouth {
		originalSize, nextSize = original.Height, nextHeight
	}

	scale := 1.0
	if originalSize > 0 {
		scale = nextSize / originalSize
	} else if element.IsText(original) || r.binder.BoundTextElement(original, originals) != nil {
		return fmt.Errorf("resize %s: original %s is %v: %w", original.ID, edgeAxis(edge), originalSize, ErrDegenerateGeometry)
	}

	updates := element.Updates{
		X:      element.F(original.X),
		Y:      element.F(original.Y),
		Width:  element.F(nextWidth),
		Height: element.F(nextHeight),
		Points: element.RescalePoints(original, nextWidth, nextHeight),
	}
	if element.IsText(original) {
		updates.FontSize = element.F(original.FontSize * scale)
	}
	mut.Mutate(latest, updates)

	return r.syncBoundElements(mut, latest, original, elementsMap, originals, scale, edge, keepAspect)
}

func edgeAxis(edge binding.Edge) string {
	if edge == binding.EdgeSouth {
		return "height"
	}
	return "width"
}
