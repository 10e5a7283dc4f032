package engine

import (
	"fmt"
	"math"

	"github.com/inamate/whiteboard/backend-go/internal/binding"
	"github.com/inamate/whiteboard/backend-go/internal/element"
)

// syncBoundElements keeps what is attached to a just-resized element in
// step with it: arrows re-anchor on the new size, and a bound label has its
// original font scaled by scale and is re-flowed inside the new bounds.
//
// The label is looked up through originals because the binding is indexed
// by the element's state when the operation started.
func (r *Resizer) syncBoundElements(
	mut binding.Mutator,
	latest, original *element.Element,
	elementsMap, originals element.ElementsMap,
	scale float64,
	edge binding.Edge,
	keepAspect bool,
) error {
	newSize := &binding.Size{Width: latest.Width, Height: latest.Height}
	r.binder.UpdateBoundElements(mut, latest, elementsMap, newSize)

	label := r.binder.BoundTextElement(original, originals)
	if label == nil {
		return nil
	}
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return fmt.Errorf("scale bound text of %s by %v: %w", latest.ID, scale, ErrDegenerateGeometry)
	}

	latestLabel, ok := elementsMap[label.ID]
	if !ok || !element.IsText(latestLabel) {
		return nil
	}
	mut.Mutate(latestLabel, element.Updates{FontSize: element.F(label.FontSize * scale)})
	r.binder.HandleBindTextResize(mut, latest, elementsMap, edge, keepAspect)
	return nil
}
