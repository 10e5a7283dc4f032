package engine

import (
	"slices"

	"github.com/inamate/whiteboard/backend-go/internal/binding"
	"github.com/inamate/whiteboard/backend-go/internal/element"
)

// ElementsInResizingFrame returns the elements that belong to frame once it
// has its current bounds. Elements that were members before the resize stay
// while they still overlap the frame; unassigned elements join when they
// lie fully inside it. Elements owned by another frame, other frames and
// labels are never picked up here.
//
// Previous membership is read from originals so that a drag in progress,
// whose staged members were never committed, is judged against the state
// at gesture start.
func ElementsInResizingFrame(frame *element.Element, elements []*element.Element, originals element.ElementsMap) []*element.Element {
	frameBounds := element.ElementBounds(frame)
	var members []*element.Element
	for _, el := range elements {
		if el.IsDeleted || el.ID == frame.ID || element.IsFrameLike(el) || element.IsBoundText(el) {
			continue
		}
		prev := el.FrameID
		if orig, ok := originals[el.ID]; ok {
			prev = orig.FrameID
		}
		bounds := element.ElementBounds(el)
		switch prev {
		case frame.ID:
			if frameBounds.Overlaps(bounds) {
				members = append(members, el)
			}
		case "":
			if frameBounds.Contains(bounds) {
				members = append(members, el)
			}
		}
	}
	return members
}

// updateFrameMembership recomputes membership for every frame in frames.
// With commit set, FrameID is rewritten on elements that joined or left
// and on their labels; otherwise nothing is mutated. It returns the ids of
// all resulting members, in scene order, for use as a highlight preview.
func updateFrameMembership(
	mut binding.Mutator,
	frames []*element.Element,
	elements []*element.Element,
	originals element.ElementsMap,
	commit bool,
) []string {
	var staged []string
	for _, frame := range frames {
		members := ElementsInResizingFrame(frame, elements, originals)
		for _, m := range members {
			staged = append(staged, m.ID)
		}
		if commit {
			replaceAllElementsInFrame(mut, frame, members, elements, originals)
		}
	}
	return staged
}

// replaceAllElementsInFrame makes members the exact member set of frame.
func replaceAllElementsInFrame(
	mut binding.Mutator,
	frame *element.Element,
	members []*element.Element,
	elements []*element.Element,
	originals element.ElementsMap,
) {
	isMember := make(map[string]bool, len(members))
	for _, m := range members {
		isMember[m.ID] = true
	}

	assigned := map[string]string{}
	for _, el := range elements {
		if el.IsDeleted || el.ID == frame.ID || element.IsFrameLike(el) || element.IsBoundText(el) {
			continue
		}
		prev := el.FrameID
		if orig, ok := originals[el.ID]; ok {
			prev = orig.FrameID
		}
		switch {
		case isMember[el.ID]:
			assigned[el.ID] = frame.ID
		case prev == frame.ID || el.FrameID == frame.ID:
			assigned[el.ID] = ""
		}
	}

	for _, el := range elements {
		target, ok := assigned[el.ID]
		if !ok {
			continue
		}
		mut.Mutate(el, element.Updates{FrameID: element.S(target)})
	}
	for _, el := range elements {
		if !element.IsBoundText(el) || el.IsDeleted {
			continue
		}
		if target, ok := assigned[el.ContainerID]; ok {
			mut.Mutate(el, element.Updates{FrameID: element.S(target)})
		}
	}
}

// touchedFrames returns the frame-like elements among ids whose bounds
// differ from their original snapshot.
func touchedFrames(ids []string, elementsMap, originals element.ElementsMap) []*element.Element {
	var out []*element.Element
	for _, id := range ids {
		el, ok := elementsMap[id]
		if !ok || !element.IsFrameLike(el) {
			continue
		}
		orig, ok := originals[id]
		if ok && element.ElementBounds(orig) == element.ElementBounds(el) {
			continue
		}
		if !slices.Contains(out, el) {
			out = append(out, el)
		}
	}
	return out
}
