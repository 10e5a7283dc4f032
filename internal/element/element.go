package element

// Kind is the closed set of element types a board can hold.
type Kind string

const (
	KindRectangle  Kind = "rectangle"
	KindEllipse    Kind = "ellipse"
	KindDiamond    Kind = "diamond"
	KindLine       Kind = "line"
	KindArrow      Kind = "arrow"
	KindFreedraw   Kind = "freedraw"
	KindText       Kind = "text"
	KindImage      Kind = "image"
	KindFrame      Kind = "frame"
	KindMagicFrame Kind = "magicframe"
)

// MinDimension is the smallest width or height any element may have after a resize.
const MinDimension = 1.0

type TextAlign string

const (
	TextAlignLeft   TextAlign = "left"
	TextAlignCenter TextAlign = "center"
	TextAlignRight  TextAlign = "right"
)

type VerticalAlign string

const (
	VerticalAlignTop    VerticalAlign = "top"
	VerticalAlignMiddle VerticalAlign = "middle"
	VerticalAlignBottom VerticalAlign = "bottom"
)

// Point is a 2D point. Element points are local to the element's (X, Y).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoundElement is a weak reference from a shape to a text label or arrow bound to it.
type BoundElement struct {
	ID   string `json:"id"`
	Type Kind   `json:"type"`
}

// Binding ties one end of an arrow to a shape. FixedPoint is normalized
// to the shape's bounds: (0,0) is top-left, (1,1) is bottom-right.
type Binding struct {
	ElementID  string `json:"elementId"`
	FixedPoint Point  `json:"fixedPoint"`
}

// Crop is the visible sub-rectangle of an image in natural image pixels.
type Crop struct {
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	NaturalWidth  float64 `json:"naturalWidth"`
	NaturalHeight float64 `json:"naturalHeight"`
}

type Element struct {
	ID     string  `json:"id"`
	Type   Kind    `json:"type"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// Linear and freedraw elements
	Points       []Point  `json:"points,omitempty"`
	StartBinding *Binding `json:"startBinding,omitempty"`
	EndBinding   *Binding `json:"endBinding,omitempty"`

	// Text elements
	Text          string        `json:"text,omitempty"`
	OriginalText  string        `json:"originalText,omitempty"`
	FontSize      float64       `json:"fontSize,omitempty"`
	LineHeight    float64       `json:"lineHeight,omitempty"`
	TextAlign     TextAlign     `json:"textAlign,omitempty"`
	VerticalAlign VerticalAlign `json:"verticalAlign,omitempty"`
	ContainerID   string        `json:"containerId,omitempty"`

	// Image elements
	Crop *Crop `json:"crop,omitempty"`

	BoundElements []BoundElement `json:"boundElements,omitempty"`
	GroupIDs      []string       `json:"groupIds,omitempty"`
	FrameID       string         `json:"frameId,omitempty"`
	IsDeleted     bool           `json:"isDeleted,omitempty"`

	Version      int   `json:"version"`
	VersionNonce int64 `json:"versionNonce"`
	Updated      int64 `json:"updated"`
}

// ElementsMap indexes elements by id.
type ElementsMap map[string]*Element

// Clone returns a deep copy of the element.
func (el *Element) Clone() *Element {
	c := *el
	if el.Points != nil {
		c.Points = append([]Point(nil), el.Points...)
	}
	if el.StartBinding != nil {
		b := *el.StartBinding
		c.StartBinding = &b
	}
	if el.EndBinding != nil {
		b := *el.EndBinding
		c.EndBinding = &b
	}
	if el.Crop != nil {
		cr := *el.Crop
		c.Crop = &cr
	}
	if el.BoundElements != nil {
		c.BoundElements = append([]BoundElement(nil), el.BoundElements...)
	}
	if el.GroupIDs != nil {
		c.GroupIDs = append([]string(nil), el.GroupIDs...)
	}
	return &c
}

// ToMap indexes a slice of elements by id. Later duplicates win.
func ToMap(elements []*Element) ElementsMap {
	m := make(ElementsMap, len(elements))
	for _, el := range elements {
		m[el.ID] = el
	}
	return m
}

// Clone deep-copies every element in the map.
func (m ElementsMap) Clone() ElementsMap {
	out := make(ElementsMap, len(m))
	for id, el := range m {
		out[id] = el.Clone()
	}
	return out
}

// --- Capability checks ---

func IsText(el *Element) bool {
	return el != nil && el.Type == KindText
}

func IsImage(el *Element) bool {
	return el != nil && el.Type == KindImage
}

func IsFrameLike(el *Element) bool {
	if el == nil {
		return false
	}
	switch el.Type {
	case KindFrame, KindMagicFrame:
		return true
	}
	return false
}

func IsLinear(el *Element) bool {
	if el == nil {
		return false
	}
	switch el.Type {
	case KindLine, KindArrow:
		return true
	}
	return false
}

func IsArrow(el *Element) bool {
	return el != nil && el.Type == KindArrow
}

// HasPoints reports whether the element's outline is defined by its point list.
func HasPoints(el *Element) bool {
	if el == nil {
		return false
	}
	switch el.Type {
	case KindLine, KindArrow, KindFreedraw:
		return true
	}
	return false
}

// IsTextContainer reports whether a label may be bound to the element.
func IsTextContainer(el *Element) bool {
	if el == nil {
		return false
	}
	switch el.Type {
	case KindRectangle, KindEllipse, KindDiamond, KindArrow:
		return true
	}
	return false
}

// IsBoundText reports whether el is a label carried by another element.
func IsBoundText(el *Element) bool {
	return IsText(el) && el.ContainerID != ""
}

// OutermostGroupID returns the last group id, or "" when ungrouped.
func (el *Element) OutermostGroupID() string {
	if len(el.GroupIDs) == 0 {
		return ""
	}
	return el.GroupIDs[len(el.GroupIDs)-1]
}

// InGroup reports whether the element belongs to groupID at any nesting level.
func (el *Element) InGroup(groupID string) bool {
	for _, g := range el.GroupIDs {
		if g == groupID {
			return true
		}
	}
	return false
}
