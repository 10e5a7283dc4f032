package session

import (
	"encoding/json"

	"github.com/inamate/whiteboard/backend-go/internal/document"
	"github.com/inamate/whiteboard/backend-go/internal/engine"
)

type Message struct {
	Type      string          `json:"type"`
	BoardID   string          `json:"boardId,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	SessionID string          `json:"sessionId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

const (
	TypeWelcome = "welcome"
	TypeError   = "error"

	// Presence
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
	TypePresenceUpdate = "presence.update"

	// Client → server
	TypeSelectionSet = "selection.set"
	TypeResizeSet    = "resize.set"
	TypeResizeBegin  = "resize.begin"
	TypeResizeUpdate = "resize.update"
	TypeResizeEnd    = "resize.end"
	TypeResizeCancel = "resize.cancel"

	// Server → client
	TypeDimensions   = "dimensions"
	TypeResizeResult = "resize.result"
	TypeSceneUpdate  = "scene.update"
)

type WelcomePayload struct {
	ClientID string          `json:"clientId"`
	Board    *document.Board `json:"board"`
}

type ErrorPayload struct {
	Message string `json:"message"`
	Request string `json:"request,omitempty"`
}

type SelectionPayload struct {
	IDs []string `json:"ids"`
}

// ResizePayload carries resize.set (absolute value) and resize.update
// (delta accumulated since resize.begin).
type ResizePayload struct {
	Property string  `json:"property"`
	Value    float64 `json:"value"`
	engine.Options
}

type ResizeResultPayload struct {
	engine.Result
	Dimensions  engine.Dimensions `json:"dimensions"`
	Highlighted []string          `json:"highlighted,omitempty"`
	Errors      []string          `json:"errors,omitempty"`
}

type SceneUpdatePayload struct {
	Version int64           `json:"version"`
	Reason  string          `json:"reason,omitempty"`
	Board   *document.Board `json:"board"`
}

type PresenceJoinPayload struct {
	ClientID    string `json:"clientId"`
	SessionID   string `json:"sessionId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	ClientID string `json:"clientId"`
}

type PresenceUpdatePayload struct {
	ClientID string    `json:"clientId"`
	Presence *Presence `json:"presence"`
}

type PresenceStatePayload struct {
	Presences map[string]*Presence `json:"presences"`
}

// Presence is what other participants see of a session.
type Presence struct {
	SessionID   string   `json:"sessionId"`
	DisplayName string   `json:"displayName"`
	Selection   []string `json:"selection,omitempty"`
	Resizing    bool     `json:"resizing,omitempty"`
}

func newMessage(typ string, payload any) *Message {
	data, _ := json.Marshal(payload)
	return &Message{Type: typ, Payload: data}
}
