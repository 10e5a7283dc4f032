package engine

import (
	"errors"

	"github.com/inamate/whiteboard/backend-go/internal/element"
)

var (
	// ErrInvalidSelection is re-exported so callers only need this package.
	ErrInvalidSelection = element.ErrInvalidSelection

	ErrDegenerateGeometry = errors.New("degenerate geometry: zero-sized original bounds")
	ErrNonNumericInput    = errors.New("non-numeric dimension value")
	ErrInvalidProperty    = errors.New("property must be width or height")
	ErrNoGesture          = errors.New("no resize gesture in progress")
	ErrResizeInProgress   = errors.New("a resize gesture is in progress")
	ErrNoBoard            = errors.New("no board loaded")
)
