package engine

import (
	"github.com/inamate/whiteboard/backend-go/internal/document"
	"github.com/inamate/whiteboard/backend-go/internal/element"
)

// AtomicUnits partitions a selection into sets of elements that must be
// resized as one rigid block. Storage is a flat arena: unit i owns
// ids[offsets[i]:offsets[i+1]]. It is rebuilt for every operation.
type AtomicUnits struct {
	ids     []string
	offsets []int
	unitOf  map[string]int
}

// Len returns the number of units.
func (u *AtomicUnits) Len() int {
	return len(u.offsets) - 1
}

// Unit returns the element ids of unit i in selection order.
func (u *AtomicUnits) Unit(i int) []string {
	return u.ids[u.offsets[i]:u.offsets[i+1]]
}

// UnitOf returns the index of the unit holding id.
func (u *AtomicUnits) UnitOf(id string) (int, bool) {
	i, ok := u.unitOf[id]
	return i, ok
}

// ResolveAtomicUnits groups the selected elements into atomic units:
//   - members of the same selected group form one unit (outermost selected group);
//   - a frame selected together with all of its children forms one unit;
//   - everything else is a unit of its own.
//
// Overlapping rules merge their units, so the result is always a partition.
// Units are ordered by the first appearance of any member in selected.
func ResolveAtomicUnits(selected []*element.Element, elementsMap element.ElementsMap, appState *document.AppState) *AtomicUnits {
	index := make(map[string]int, len(selected))
	order := make([]*element.Element, 0, len(selected))
	for _, el := range selected {
		if _, dup := index[el.ID]; dup {
			continue
		}
		index[el.ID] = len(order)
		order = append(order, el)
	}

	parent := make([]int, len(order))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra == rb {
			return
		}
		// keep the earlier element as root so units order by first appearance
		if ra < rb {
			parent[rb] = ra
		} else {
			parent[ra] = rb
		}
	}

	groupRoot := map[string]int{}
	for i, el := range order {
		gid := outermostSelectedGroup(el, appState)
		if gid == "" {
			continue
		}
		if root, ok := groupRoot[gid]; ok {
			union(root, i)
		} else {
			groupRoot[gid] = i
		}
	}

	for i, el := range order {
		if !element.IsFrameLike(el) {
			continue
		}
		children := frameChildren(el.ID, elementsMap)
		if len(children) == 0 || !allSelected(children, index) {
			continue
		}
		for _, child := range children {
			union(i, index[child])
		}
	}

	units := &AtomicUnits{unitOf: make(map[string]int, len(order))}
	members := map[int][]string{}
	var roots []int
	for i, el := range order {
		r := find(i)
		if _, seen := members[r]; !seen {
			roots = append(roots, r)
		}
		members[r] = append(members[r], el.ID)
	}
	units.offsets = append(units.offsets, 0)
	for n, r := range roots {
		for _, id := range members[r] {
			units.ids = append(units.ids, id)
			units.unitOf[id] = n
		}
		units.offsets = append(units.offsets, len(units.ids))
	}
	return units
}

func outermostSelectedGroup(el *element.Element, appState *document.AppState) string {
	if appState == nil {
		return ""
	}
	for i := len(el.GroupIDs) - 1; i >= 0; i-- {
		if appState.SelectedGroupIDs[el.GroupIDs[i]] {
			return el.GroupIDs[i]
		}
	}
	return ""
}

// frameChildren returns the ids of live elements inside the frame, not
// counting labels, which follow their container.
func frameChildren(frameID string, elementsMap element.ElementsMap) []string {
	var out []string
	for id, el := range elementsMap {
		if el.FrameID == frameID && !el.IsDeleted && !element.IsBoundText(el) {
			out = append(out, id)
		}
	}
	return out
}

func allSelected(ids []string, index map[string]int) bool {
	for _, id := range ids {
		if _, ok := index[id]; !ok {
			return false
		}
	}
	return true
}

// FrameAndChildrenSelectedTogether reports whether any selected frame has
// all of its children selected too.
func FrameAndChildrenSelectedTogether(selected []*element.Element, elementsMap element.ElementsMap) bool {
	index := make(map[string]int, len(selected))
	for i, el := range selected {
		index[el.ID] = i
	}
	for _, el := range selected {
		if !element.IsFrameLike(el) {
			continue
		}
		if children := frameChildren(el.ID, elementsMap); len(children) > 0 && allSelected(children, index) {
			return true
		}
	}
	return false
}

// UnitMember pairs an element's current state with its state when the
// operation started.
type UnitMember struct {
	Latest   *element.Element
	Original *element.Element
}

// ElementsInAtomicUnit resolves unit ids against the current and original
// element maps. Ids missing from either map are skipped.
func ElementsInAtomicUnit(ids []string, elementsMap, originals element.ElementsMap) []UnitMember {
	out := make([]UnitMember, 0, len(ids))
	for _, id := range ids {
		latest, ok := elementsMap[id]
		if !ok {
			continue
		}
		original, ok := originals[id]
		if !ok {
			continue
		}
		out = append(out, UnitMember{Latest: latest, Original: original})
	}
	return out
}

// SelectGroupsForSelectedElements marks every group whose live members are
// all selected. Nested groups are marked along with their parents.
func SelectGroupsForSelectedElements(appState *document.AppState, elements []*element.Element) {
	members := map[string][]string{}
	for _, el := range elements {
		if el.IsDeleted || element.IsBoundText(el) {
			continue
		}
		for _, gid := range el.GroupIDs {
			members[gid] = append(members[gid], el.ID)
		}
	}

	groups := make(map[string]bool)
	for gid, ids := range members {
		all := true
		for _, id := range ids {
			if !appState.SelectedElementIDs[id] {
				all = false
				break
			}
		}
		if all {
			groups[gid] = true
		}
	}
	appState.SelectedGroupIDs = groups
}
