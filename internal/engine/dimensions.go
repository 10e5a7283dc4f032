package engine

import (
	"encoding/json"

	"github.com/inamate/whiteboard/backend-go/internal/document"
	"github.com/inamate/whiteboard/backend-go/internal/element"
)

// Mixed is reported in place of a number when a multi-selection's units
// disagree on a dimension.
const Mixed = "Mixed"

// Dimensions is the aggregate size of a selection.
type Dimensions struct {
	Width       float64
	Height      float64
	MixedWidth  bool
	MixedHeight bool
}

// MarshalJSON writes "Mixed" for a mixed axis and the number otherwise.
func (d Dimensions) MarshalJSON() ([]byte, error) {
	axis := func(v float64, mixed bool) any {
		if mixed {
			return Mixed
		}
		return v
	}
	return json.Marshal(map[string]any{
		"width":  axis(d.Width, d.MixedWidth),
		"height": axis(d.Height, d.MixedHeight),
	})
}

// GetDimensions reports the size of the selection. A single element
// reports its own size, or its uncropped size while it is being cropped.
// Several elements are measured per atomic unit, a group unit by its
// common bounds; an axis on which units differ is reported as mixed.
func GetDimensions(selected []*element.Element, elementsMap element.ElementsMap, appState *document.AppState) Dimensions {
	switch len(selected) {
	case 0:
		return Dimensions{}
	case 1:
		el := selected[0]
		w, h := el.Width, el.Height
		if appState != nil && appState.CroppingElementID == el.ID {
			w, h = element.UncroppedSize(el)
		}
		return Dimensions{Width: element.Round2(w), Height: element.Round2(h)}
	}

	byID := element.ToMap(selected)
	units := ResolveAtomicUnits(selected, elementsMap, appState)
	var d Dimensions
	for i := range units.Len() {
		members := make([]*element.Element, 0, len(units.Unit(i)))
		for _, id := range units.Unit(i) {
			members = append(members, byID[id])
		}
		var w, h float64
		if len(members) == 1 {
			w, h = members[0].Width, members[0].Height
		} else {
			b, err := element.CommonBounds(members)
			if err != nil {
				continue
			}
			w, h = b.Width(), b.Height()
		}
		w, h = element.Round2(w), element.Round2(h)
		if i == 0 {
			d.Width, d.Height = w, h
			continue
		}
		if w != d.Width {
			d.MixedWidth = true
		}
		if h != d.Height {
			d.MixedHeight = true
		}
	}
	return d
}

// GetDimensions reports the size of the current selection in appState.
func (r *Resizer) GetDimensions(appState *document.AppState) Dimensions {
	if appState == nil {
		return Dimensions{}
	}
	selected := r.store.SelectedElements(appState.SelectedElementIDs)
	return GetDimensions(selected, r.store.NonDeletedElementsMap(), appState)
}
