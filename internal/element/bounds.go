package element

import (
	"errors"
	"math"
)

// ErrInvalidSelection is returned when a geometric query is made over no elements.
var ErrInvalidSelection = errors.New("invalid selection: no elements")

// Bounds is an axis-aligned box given by its top-left and bottom-right corners.
type Bounds struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

func (b Bounds) Width() float64  { return b.X2 - b.X1 }
func (b Bounds) Height() float64 { return b.Y2 - b.Y1 }
func (b Bounds) Min() Point      { return Point{X: b.X1, Y: b.Y1} }

// Contains reports whether o lies entirely within b.
func (b Bounds) Contains(o Bounds) bool {
	return o.X1 >= b.X1 && o.Y1 >= b.Y1 && o.X2 <= b.X2 && o.Y2 <= b.Y2
}

// Overlaps reports whether b and o share any area or edge.
func (b Bounds) Overlaps(o Bounds) bool {
	return b.X1 <= o.X2 && o.X1 <= b.X2 && b.Y1 <= o.Y2 && o.Y1 <= b.Y2
}

// Union returns the smallest box containing both.
func (b Bounds) Union(o Bounds) Bounds {
	return Bounds{
		X1: min(b.X1, o.X1),
		Y1: min(b.Y1, o.Y1),
		X2: max(b.X2, o.X2),
		Y2: max(b.Y2, o.Y2),
	}
}

// ElementBounds returns the area the element occupies in scene space.
// Point-carrying elements are measured from their points rather than the
// stored size, so a stale width/height never hides part of the outline.
func ElementBounds(el *Element) Bounds {
	if HasPoints(el) && len(el.Points) > 0 {
		minX, minY := math.Inf(1), math.Inf(1)
		maxX, maxY := math.Inf(-1), math.Inf(-1)
		for _, p := range el.Points {
			minX = min(minX, p.X)
			minY = min(minY, p.Y)
			maxX = max(maxX, p.X)
			maxY = max(maxY, p.Y)
		}
		return Bounds{X1: el.X + minX, Y1: el.Y + minY, X2: el.X + maxX, Y2: el.Y + maxY}
	}
	return Bounds{X1: el.X, Y1: el.Y, X2: el.X + el.Width, Y2: el.Y + el.Height}
}

// CommonBounds returns the minimal box covering every element.
func CommonBounds(elements []*Element) (Bounds, error) {
	if len(elements) == 0 {
		return Bounds{}, ErrInvalidSelection
	}
	b := ElementBounds(elements[0])
	for _, el := range elements[1:] {
		b = b.Union(ElementBounds(el))
	}
	return b, nil
}

// ScaleAboutAnchor returns anchor + (p - anchor) * (sx, sy).
func ScaleAboutAnchor(anchor, p Point, sx, sy float64) Point {
	return ScaleAbout(anchor, sx, sy).TransformPoint(p)
}

// RescalePoints stretches the element's local points so their span matches
// the new size along each axis. Returns nil for elements without points.
func RescalePoints(el *Element, newWidth, newHeight float64) []Point {
	if !HasPoints(el) || len(el.Points) == 0 {
		return nil
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range el.Points {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}

	sx, sy := 1.0, 1.0
	if span := maxX - minX; span != 0 {
		sx = newWidth / span
	}
	if span := maxY - minY; span != 0 {
		sy = newHeight / span
	}

	out := make([]Point, len(el.Points))
	for i, p := range el.Points {
		out[i] = Point{X: p.X * sx, Y: p.Y * sy}
	}
	return out
}

// StepSized rounds value to the nearest multiple of step.
func StepSized(value, step float64) float64 {
	if step <= 0 {
		return value
	}
	return math.Round(value/step) * step
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// UncroppedSize returns the size the image would have without its crop.
func UncroppedSize(el *Element) (float64, float64) {
	if el.Crop == nil || el.Crop.Width == 0 || el.Crop.Height == 0 ||
		el.Crop.NaturalWidth == 0 || el.Crop.NaturalHeight == 0 {
		return el.Width, el.Height
	}
	return el.Width / (el.Crop.Width / el.Crop.NaturalWidth),
		el.Height / (el.Crop.Height / el.Crop.NaturalHeight)
}
