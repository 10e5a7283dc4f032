package document

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/inamate/whiteboard/backend-go/internal/element"
)

// Board is a persisted whiteboard: its elements in z-order plus the editor
// state that travels with it.
type Board struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Version   int                `json:"version"`
	CreatedAt string             `json:"createdAt"`
	UpdatedAt string             `json:"updatedAt"`
	Elements  []*element.Element `json:"elements"`
	AppState  AppState           `json:"appState"`
}

// AppState is the slice of editor state the resize engine reads.
type AppState struct {
	SelectedElementIDs  map[string]bool `json:"selectedElementIds"`
	SelectedGroupIDs    map[string]bool `json:"selectedGroupIds"`
	CroppingElementID   string          `json:"croppingElementId,omitempty"`
	ElementsToHighlight []string        `json:"elementsToHighlight,omitempty"`
}

// Clone returns a copy that shares nothing with a.
func (a AppState) Clone() AppState {
	return AppState{
		SelectedElementIDs:  maps.Clone(a.SelectedElementIDs),
		SelectedGroupIDs:    maps.Clone(a.SelectedGroupIDs),
		CroppingElementID:   a.CroppingElementID,
		ElementsToHighlight: slices.Clone(a.ElementsToHighlight),
	}
}

// NewEmptyBoard creates a board with no elements.
func NewEmptyBoard(boardID, name string) *Board {
	return &Board{
		ID:       boardID,
		Name:     name,
		Version:  1,
		Elements: []*element.Element{},
		AppState: AppState{
			SelectedElementIDs: map[string]bool{},
			SelectedGroupIDs:   map[string]bool{},
		},
	}
}

// Parse decodes a board from JSON and fills in nil maps.
func Parse(data []byte) (*Board, error) {
	var b Board
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decode board: %w", err)
	}
	if b.Elements == nil {
		b.Elements = []*element.Element{}
	}
	if b.AppState.SelectedElementIDs == nil {
		b.AppState.SelectedElementIDs = map[string]bool{}
	}
	if b.AppState.SelectedGroupIDs == nil {
		b.AppState.SelectedGroupIDs = map[string]bool{}
	}
	return &b, nil
}
