package binding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/whiteboard/backend-go/internal/element"
	"github.com/inamate/whiteboard/backend-go/internal/scene"
	"github.com/inamate/whiteboard/backend-go/internal/textlayout"
)

func labelledRect(x, y, w, h, fontSize float64) []*element.Element {
	return []*element.Element{
		{
			ID: "rect", Type: element.KindRectangle, X: x, Y: y, Width: w, Height: h,
			BoundElements: []element.BoundElement{{ID: "label", Type: element.KindText}},
		},
		{
			ID: "label", Type: element.KindText, ContainerID: "rect",
			Text: "Hi", OriginalText: "Hi", FontSize: fontSize,
			TextAlign: element.TextAlignCenter, VerticalAlign: element.VerticalAlignMiddle,
		},
	}
}

func TestBoundTextElement(t *testing.T) {
	b := NewBinder(textlayout.NewMeasurer())
	els := labelledRect(0, 0, 100, 100, 20)
	m := element.ToMap(els)

	require.NotNil(t, b.BoundTextElement(m["rect"], m))
	assert.Equal(t, "label", b.BoundTextElement(m["rect"], m).ID)

	m["label"].ContainerID = "other"
	assert.Nil(t, b.BoundTextElement(m["rect"], m))
	assert.Nil(t, b.BoundTextElement(nil, m))
}

func TestUpdateBoundElementsReanchorsArrow(t *testing.T) {
	b := NewBinder(textlayout.NewMeasurer())
	rect := &element.Element{
		ID: "rect", Type: element.KindRectangle, Width: 100, Height: 100,
		BoundElements: []element.BoundElement{{ID: "arrow", Type: element.KindArrow}},
	}
	arrow := &element.Element{
		ID: "arrow", Type: element.KindArrow, X: 100, Y: 50, Width: 200,
		Points:       []element.Point{{X: 0, Y: 0}, {X: 200, Y: 0}},
		StartBinding: &element.Binding{ElementID: "rect", FixedPoint: element.Point{X: 1, Y: 0.5}},
	}
	s := scene.New([]*element.Element{rect, arrow})

	b.UpdateBoundElements(s, rect, s.NonDeletedElementsMap(), &Size{Width: 50, Height: 100})

	assert.Equal(t, 50.0, arrow.X)
	assert.Equal(t, 50.0, arrow.Y)
	assert.Equal(t, []element.Point{{X: 0, Y: 0}, {X: 250, Y: 0}}, arrow.Points)
	assert.Equal(t, 250.0, arrow.Width)
	assert.Equal(t, 0.0, arrow.Height)
}

func TestHandleBindTextResizeCentresLabel(t *testing.T) {
	b := NewBinder(textlayout.NewMeasurer())
	s := scene.New(labelledRect(10, 20, 200, 100, 20))
	m := s.NonDeletedElementsMap()

	b.HandleBindTextResize(s, m["rect"], m, EdgeEast, false)

	label := m["label"]
	assert.Greater(t, label.Width, 0.0)
	assert.Equal(t, 20*textlayout.DefaultLineHeight, label.Height)
	assert.InDelta(t, 110, label.X+label.Width/2, 1e-9)
	assert.InDelta(t, 70, label.Y+label.Height/2, 1e-9)
	assert.Equal(t, 100.0, m["rect"].Height)
}

func TestHandleBindTextResizeGrowsContainer(t *testing.T) {
	b := NewBinder(textlayout.NewMeasurer())
	s := scene.New(labelledRect(0, 0, 200, 20, 20))
	m := s.NonDeletedElementsMap()

	b.HandleBindTextResize(s, m["rect"], m, EdgeSouth, false)

	assert.Equal(t, 25+2*BoundTextPadding, m["rect"].Height)

	// with aspect ratio kept the container is left alone
	s2 := scene.New(labelledRect(0, 0, 200, 20, 20))
	m2 := s2.NonDeletedElementsMap()
	b.HandleBindTextResize(s2, m2["rect"], m2, EdgeSouth, true)
	assert.Equal(t, 20.0, m2["rect"].Height)
}

func TestBoundTextMaxWidth(t *testing.T) {
	rect := &element.Element{Type: element.KindRectangle, Width: 100}
	assert.Equal(t, 90.0, BoundTextMaxWidth(rect))
	arrow := &element.Element{Type: element.KindArrow, Width: 10}
	assert.Equal(t, arrowLabelMinWidth, BoundTextMaxWidth(arrow))
}
