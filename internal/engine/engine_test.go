package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/whiteboard/backend-go/internal/document"
	"github.com/inamate/whiteboard/backend-go/internal/element"
	"github.com/inamate/whiteboard/backend-go/internal/scene"
)

func frameBoard() *document.Board {
	b := document.NewEmptyBoard("board_test", "frames")
	b.Elements = []*element.Element{
		{ID: "frame", Type: element.KindFrame, Width: 100, Height: 100},
		{ID: "inside", Type: element.KindRectangle, X: 10, Y: 10, Width: 20, Height: 20, FrameID: "frame"},
		{ID: "outside", Type: element.KindRectangle, X: 150, Y: 10, Width: 20, Height: 20},
	}
	return b
}

func elementByID(t *testing.T, b *document.Board, id string) *element.Element {
	t.Helper()
	for _, el := range b.Elements {
		if el.ID == id {
			return el
		}
	}
	require.FailNow(t, "element not found", id)
	return nil
}

func TestEngineRequiresBoard(t *testing.T) {
	e := NewEngine(0)

	_, err := e.SetDimension("width", 10, Options{})
	assert.ErrorIs(t, err, ErrNoBoard)
	assert.ErrorIs(t, e.SetSelection([]string{"x"}), ErrNoBoard)
	assert.ErrorIs(t, e.BeginResize(), ErrNoBoard)
	assert.Equal(t, "{}", e.GetBoard())
	assert.Equal(t, Dimensions{}, e.Dimensions())
}

func TestEngineLoadBoardFromJSON(t *testing.T) {
	e := NewEngine(0)
	require.Error(t, e.LoadBoard("{not json"))

	data, err := json.Marshal(frameBoard())
	require.NoError(t, err)
	require.NoError(t, e.LoadBoard(string(data)))

	b := e.Board()
	require.NotNil(t, b)
	assert.Len(t, b.Elements, 3)
	assert.Equal(t, "board_test", b.ID)
}

func TestEngineSetDimension(t *testing.T) {
	e := NewEngine(0)
	e.SetBoard(frameBoard())
	require.NoError(t, e.SetSelection([]string{"inside", "outside"}))
	assert.Equal(t, []string{"inside", "outside"}, e.Selection())
	assert.JSONEq(t, `{"width":20,"height":20}`, e.GetDimensions())

	res, err := e.SetDimension("height", 44, Options{StepSizeQuantization: true})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Units)
	assert.Equal(t, int64(1), e.Version())

	b := e.Board()
	assert.Equal(t, 40.0, elementByID(t, b, "inside").Height)
	assert.Equal(t, 40.0, elementByID(t, b, "outside").Height)

	_, err = e.SetDimension("depth", 1, Options{})
	assert.ErrorIs(t, err, ErrInvalidProperty)
}

func TestEngineResizeGesture(t *testing.T) {
	e := NewEngine(0)
	e.SetBoard(frameBoard())
	require.NoError(t, e.SetSelection([]string{"frame"}))

	var updates []scene.Update
	unsubscribe, err := e.Subscribe(func(u scene.Update) { updates = append(updates, u) })
	require.NoError(t, err)
	defer unsubscribe()

	_, err = e.UpdateResize("width", 10, Options{})
	assert.ErrorIs(t, err, ErrNoGesture)

	require.NoError(t, e.BeginResize())
	assert.True(t, e.Resizing())

	// a selection change mid-drag does not retarget the gesture
	require.NoError(t, e.SetSelection([]string{"outside"}))

	_, err = e.UpdateResize("width", 50, Options{})
	require.NoError(t, err)

	// an absolute resize would be lost on the next update
	_, err = e.SetDimension("width", 300, Options{})
	assert.ErrorIs(t, err, ErrResizeInProgress)
	assert.Equal(t, 150.0, elementByID(t, e.Board(), "frame").Width)

	_, err = e.UpdateResize("width", 100, Options{})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"inside", "outside"}, e.Highlighted())
	b := e.Board()
	assert.Equal(t, 200.0, elementByID(t, b, "frame").Width)
	assert.Equal(t, 20.0, elementByID(t, b, "outside").Width)
	assert.Empty(t, elementByID(t, b, "outside").FrameID)

	_, err = e.EndResize()
	require.NoError(t, err)
	assert.False(t, e.Resizing())
	assert.Empty(t, e.Highlighted())

	b = e.Board()
	assert.Equal(t, "frame", elementByID(t, b, "outside").FrameID)
	assert.Equal(t, "frame", elementByID(t, b, "inside").FrameID)
	assert.Len(t, updates, 3)
}

func TestEngineCancelResize(t *testing.T) {
	e := NewEngine(0)
	e.SetBoard(frameBoard())
	require.NoError(t, e.SetSelection([]string{"frame"}))

	assert.ErrorIs(t, e.CancelResize(), ErrNoGesture)

	require.NoError(t, e.BeginResize())
	_, err := e.UpdateResize("width", 100, Options{})
	require.NoError(t, err)
	require.NoError(t, e.CancelResize())

	b := e.Board()
	assert.Equal(t, 200.0, elementByID(t, b, "frame").Width)
	assert.Empty(t, elementByID(t, b, "outside").FrameID)
	assert.Empty(t, e.Highlighted())

	_, err = e.EndResize()
	assert.ErrorIs(t, err, ErrNoGesture)

	_, err = e.SetDimension("width", 300, Options{})
	require.NoError(t, err)
	assert.Equal(t, 300.0, elementByID(t, e.Board(), "frame").Width)
}

func TestEngineSampleBoard(t *testing.T) {
	e := NewEngine(0)
	e.LoadSampleBoard("board_sample")

	b := e.Board()
	var image *element.Element
	for _, el := range b.Elements {
		if el.Type == element.KindImage {
			image = el
		}
	}
	require.NotNil(t, image)

	require.NoError(t, e.SetSelection([]string{image.ID}))
	require.NoError(t, e.SetCropping(image.ID))
	assert.Equal(t, Dimensions{Width: 320, Height: 240}, e.Dimensions())

	require.NoError(t, e.SetCropping(""))
	_, err := e.SetDimension("width", 80, Options{})
	require.NoError(t, err)
	assert.Equal(t, Dimensions{Width: 80, Height: 60}, e.Dimensions())
}
