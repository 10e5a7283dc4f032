package document

import (
	"time"

	"github.com/inamate/whiteboard/backend-go/internal/element"
	"github.com/inamate/whiteboard/backend-go/internal/typeid"
)

// NewSampleBoard returns a small board that exercises every kind of
// resize: a two-shape group, a labelled rectangle with an arrow bound to
// it, a frame holding two shapes, and a cropped image.
func NewSampleBoard(boardID string) *Board {
	now := time.Now().UTC().Format(time.RFC3339)

	groupID := typeid.NewGroupID()
	groupRectID := typeid.NewElementID()
	groupEllipseID := typeid.NewElementID()

	boxID := typeid.NewElementID()
	labelID := typeid.NewElementID()
	arrowID := typeid.NewElementID()

	frameID := typeid.NewElementID()
	frameRectID := typeid.NewElementID()
	frameDiamondID := typeid.NewElementID()

	imageID := typeid.NewElementID()

	elements := []*element.Element{
		// Group
		{
			ID:       groupRectID,
			Type:     element.KindRectangle,
			X:        40,
			Y:        40,
			Width:    120,
			Height:   80,
			GroupIDs: []string{groupID},
			Version:  1,
		},
		{
			ID:       groupEllipseID,
			Type:     element.KindEllipse,
			X:        180,
			Y:        60,
			Width:    60,
			Height:   60,
			GroupIDs: []string{groupID},
			Version:  1,
		},

		// Labelled box with an arrow pointing at it
		{
			ID:     boxID,
			Type:   element.KindRectangle,
			X:      320,
			Y:      40,
			Width:  200,
			Height: 100,
			BoundElements: []element.BoundElement{
				{ID: labelID, Type: element.KindText},
				{ID: arrowID, Type: element.KindArrow},
			},
			Version: 1,
		},
		{
			ID:            labelID,
			Type:          element.KindText,
			X:             370,
			Y:             77.5,
			Width:         100,
			Height:        25,
			Text:          "Resize me",
			OriginalText:  "Resize me",
			FontSize:      20,
			LineHeight:    1.25,
			TextAlign:     element.TextAlignCenter,
			VerticalAlign: element.VerticalAlignMiddle,
			ContainerID:   boxID,
			Version:       1,
		},
		{
			ID:     arrowID,
			Type:   element.KindArrow,
			X:      560,
			Y:      90,
			Width:  40,
			Height: 0,
			Points: []element.Point{{X: 0, Y: 0}, {X: -40, Y: 0}},
			EndBinding: &element.Binding{
				ElementID:  boxID,
				FixedPoint: element.Point{X: 1, Y: 0.5},
			},
			Version: 1,
		},

		// Frame with two children
		{
			ID:      frameID,
			Type:    element.KindFrame,
			X:       40,
			Y:       200,
			Width:   400,
			Height:  240,
			Version: 1,
		},
		{
			ID:      frameRectID,
			Type:    element.KindRectangle,
			X:       80,
			Y:       240,
			Width:   100,
			Height:  100,
			FrameID: frameID,
			Version: 1,
		},
		{
			ID:      frameDiamondID,
			Type:    element.KindDiamond,
			X:       240,
			Y:       260,
			Width:   120,
			Height:  120,
			FrameID: frameID,
			Version: 1,
		},

		// Cropped image
		{
			ID:     imageID,
			Type:   element.KindImage,
			X:      520,
			Y:      200,
			Width:  160,
			Height: 120,
			Crop: &element.Crop{
				X:             100,
				Y:             50,
				Width:         400,
				Height:        300,
				NaturalWidth:  800,
				NaturalHeight: 600,
			},
			Version: 1,
		},
	}

	return &Board{
		ID:        boardID,
		Name:      "Untitled",
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
		Elements:  elements,
		AppState: AppState{
			SelectedElementIDs: map[string]bool{},
			SelectedGroupIDs:   map[string]bool{},
		},
	}
}
