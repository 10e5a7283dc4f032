package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/inamate/whiteboard/backend-go/internal/engine"
	"github.com/inamate/whiteboard/backend-go/internal/scene"
)

var ErrBoardBusy = errors.New("another session is resizing on this board")

const saveTimeout = 10 * time.Second

// Boards opens shared engines and persists them when no one is left.
type Boards interface {
	Open(ctx context.Context, boardID string) (*engine.Engine, error)
	Close(ctx context.Context, boardID string) error
}

// Room is everyone connected to one board. Engine commands from the room's
// clients run one at a time under mu.
type Room struct {
	mu           sync.Mutex
	boardID      string
	engine       *engine.Engine
	clients      map[string]*Client // clientID -> client
	presence     *PresenceManager
	selections   map[string][]string // clientID -> selected ids
	gestureOwner string

	updates     chan scene.Update
	unsubscribe func()
	seq         int64
	done        chan struct{}
}

func newRoom(boardID string, e *engine.Engine) *Room {
	return &Room{
		boardID:    boardID,
		engine:     e,
		clients:    make(map[string]*Client),
		presence:   NewPresenceManager(),
		selections: make(map[string][]string),
		updates:    make(chan scene.Update, 1),
		done:       make(chan struct{}),
	}
}

type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // boardID -> room
	boards     Boards
	register   chan *Client
	unregister chan *Client
	stop       chan struct{}
	stopped    chan struct{}
}

func NewHub(boards Boards) *Hub {
	return &Hub{
		rooms:      make(map[string]*Room),
		boards:     boards,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
}

func (h *Hub) Run() {
	defer close(h.stopped)
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.stop:
			h.closeAll()
			return
		}
	}
}

// Stop closes every room, saving its board, and ends Run.
func (h *Hub) Stop() {
	close(h.stop)
	<-h.stopped
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.stopped:
		close(client.send)
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stopped:
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.BoardID]
	if !ok {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		e, err := h.boards.Open(ctx, client.BoardID)
		cancel()
		if err != nil {
			h.mu.Unlock()
			slog.Error("open board", "board", client.BoardID, "error", err)
			client.Send(newMessage(TypeError, ErrorPayload{Message: "board unavailable"}))
			close(client.send)
			return
		}
		room = newRoom(client.BoardID, e)
		h.rooms[client.BoardID] = room
		h.watch(room)
	}
	room.mu.Lock()
	room.clients[client.ClientID] = client
	room.mu.Unlock()
	h.mu.Unlock()

	room.presence.Update(client.ClientID, &Presence{SessionID: client.SessionID, DisplayName: client.DisplayName})

	client.Send(newMessage(TypeWelcome, WelcomePayload{ClientID: client.ClientID, Board: room.engine.Board()}))
	client.Send(room.presence.StateMessage())

	h.broadcastToRoom(client.BoardID, newMessage(TypePresenceJoin, PresenceJoinPayload{
		ClientID:    client.ClientID,
		SessionID:   client.SessionID,
		DisplayName: client.DisplayName,
	}), client.ClientID)

	slog.Info("client joined", "session", client.SessionID, "board", client.BoardID)
}

// watch pushes a scene.update to the room whenever its engine commits.
// The subscriber only signals; the board is read from the room goroutine
// because subscribers run under the engine lock.
func (h *Hub) watch(room *Room) {
	unsubscribe, err := room.engine.Subscribe(func(u scene.Update) {
		select {
		case room.updates <- u:
		default:
			// an update is already queued; it will carry the latest board
		}
	})
	if err != nil {
		slog.Error("subscribe to board", "board", room.boardID, "error", err)
		close(room.done)
		return
	}
	room.unsubscribe = unsubscribe

	go func() {
		for {
			select {
			case u := <-room.updates:
				room.mu.Lock()
				room.seq++
				seq := room.seq
				room.mu.Unlock()

				msg := newMessage(TypeSceneUpdate, SceneUpdatePayload{
					Version: u.Version,
					Reason:  u.Reason,
					Board:   room.engine.Board(),
				})
				msg.Seq = seq
				h.broadcastToRoom(room.boardID, msg, "")
			case <-room.done:
				return
			}
		}
	}()
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.BoardID]
	if !ok {
		h.mu.Unlock()
		return
	}

	room.mu.Lock()
	if _, ok := room.clients[client.ClientID]; !ok {
		room.mu.Unlock()
		h.mu.Unlock()
		return
	}
	delete(room.clients, client.ClientID)
	delete(room.selections, client.ClientID)
	close(client.send)
	if room.gestureOwner == client.ClientID {
		// leave shapes where the last update put them
		_ = room.engine.CancelResize()
		room.gestureOwner = ""
	}
	empty := len(room.clients) == 0
	room.mu.Unlock()
	room.presence.Remove(client.ClientID)

	if empty {
		delete(h.rooms, client.BoardID)
	}
	h.mu.Unlock()

	if empty {
		h.closeRoom(room)
	} else {
		h.broadcastToRoom(client.BoardID, newMessage(TypePresenceLeave, PresenceLeavePayload{
			ClientID: client.ClientID,
		}), "")
	}

	slog.Info("client left", "session", client.SessionID, "board", client.BoardID)
}

func (h *Hub) closeRoom(room *Room) {
	if room.unsubscribe != nil {
		room.unsubscribe()
		close(room.done)
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := h.boards.Close(ctx, room.boardID); err != nil {
		slog.Error("close board", "board", room.boardID, "error", err)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	rooms := h.rooms
	h.rooms = make(map[string]*Room)
	h.mu.Unlock()

	for _, room := range rooms {
		room.mu.Lock()
		for _, c := range room.clients {
			close(c.send)
		}
		room.clients = map[string]*Client{}
		room.mu.Unlock()
		h.closeRoom(room)
	}
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	h.mu.RLock()
	room, ok := h.rooms[sender.BoardID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if _, ok := room.clients[sender.ClientID]; !ok {
		return
	}

	var err error
	switch msg.Type {
	case TypeSelectionSet:
		err = h.handleSelection(room, sender, msg)
	case TypeResizeSet:
		err = h.handleResizeSet(room, sender, msg)
	case TypeResizeBegin:
		err = h.handleResizeBegin(room, sender)
	case TypeResizeUpdate:
		err = h.handleResizeUpdate(room, sender, msg)
	case TypeResizeEnd:
		err = h.handleResizeEnd(room, sender)
	case TypeResizeCancel:
		err = h.handleResizeCancel(room, sender)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "session", sender.SessionID)
		err = errors.New("unknown message type")
	}

	if err != nil {
		sender.Send(newMessage(TypeError, ErrorPayload{Message: err.Error(), Request: msg.Type}))
	}
}

// replyError sends an error to a client that is still in its room.
func (h *Hub) replyError(sender *Client, request, message string) {
	h.mu.RLock()
	room, ok := h.rooms[sender.BoardID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if _, ok := room.clients[sender.ClientID]; ok {
		sender.Send(newMessage(TypeError, ErrorPayload{Message: message, Request: request}))
	}
}

func (h *Hub) handleSelection(room *Room, sender *Client, msg *Message) error {
	var payload SelectionPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return errors.New("invalid selection payload")
	}
	room.selections[sender.ClientID] = payload.IDs

	if err := room.engine.SetSelection(payload.IDs); err != nil {
		return err
	}
	sender.Send(newMessage(TypeDimensions, room.engine.Dimensions()))

	presence := &Presence{
		SessionID:   sender.SessionID,
		DisplayName: sender.DisplayName,
		Selection:   payload.IDs,
		Resizing:    room.gestureOwner == sender.ClientID,
	}
	room.presence.Update(sender.ClientID, presence)
	h.broadcastPresence(room, sender.ClientID, presence)
	return nil
}

func (h *Hub) handleResizeSet(room *Room, sender *Client, msg *Message) error {
	if room.gestureOwner != "" && room.gestureOwner != sender.ClientID {
		return ErrBoardBusy
	}
	payload, err := decodeResize(msg)
	if err != nil {
		return err
	}
	if err := room.engine.SetSelection(room.selections[sender.ClientID]); err != nil {
		return err
	}
	res, err := room.engine.SetDimension(payload.Property, payload.Value, payload.Options)
	if err != nil {
		return err
	}
	h.sendResult(room, sender, res)
	return nil
}

func (h *Hub) handleResizeBegin(room *Room, sender *Client) error {
	if room.gestureOwner != "" && room.gestureOwner != sender.ClientID {
		return ErrBoardBusy
	}
	if err := room.engine.SetSelection(room.selections[sender.ClientID]); err != nil {
		return err
	}
	if err := room.engine.BeginResize(); err != nil {
		return err
	}
	room.gestureOwner = sender.ClientID
	h.setResizing(room, sender, true)
	return nil
}

func (h *Hub) handleResizeUpdate(room *Room, sender *Client, msg *Message) error {
	if room.gestureOwner != sender.ClientID {
		return engine.ErrNoGesture
	}
	payload, err := decodeResize(msg)
	if err != nil {
		return err
	}
	res, err := room.engine.UpdateResize(payload.Property, payload.Value, payload.Options)
	if err != nil {
		return err
	}
	h.sendResult(room, sender, res)
	return nil
}

func (h *Hub) handleResizeEnd(room *Room, sender *Client) error {
	if room.gestureOwner != sender.ClientID {
		return engine.ErrNoGesture
	}
	room.gestureOwner = ""
	res, err := room.engine.EndResize()
	if err != nil {
		return err
	}
	h.setResizing(room, sender, false)
	h.sendResult(room, sender, res)
	return nil
}

func (h *Hub) handleResizeCancel(room *Room, sender *Client) error {
	if room.gestureOwner != sender.ClientID {
		return engine.ErrNoGesture
	}
	room.gestureOwner = ""
	h.setResizing(room, sender, false)
	return room.engine.CancelResize()
}

func (h *Hub) sendResult(room *Room, sender *Client, res engine.Result) {
	payload := ResizeResultPayload{
		Result:      res,
		Dimensions:  room.engine.Dimensions(),
		Highlighted: room.engine.Highlighted(),
	}
	for _, f := range res.Failed {
		payload.Errors = append(payload.Errors, f.Error())
	}
	sender.Send(newMessage(TypeResizeResult, payload))
}

func (h *Hub) setResizing(room *Room, sender *Client, resizing bool) {
	p, ok := room.presence.Get(sender.ClientID)
	if !ok {
		return
	}
	updated := *p
	updated.Resizing = resizing
	room.presence.Update(sender.ClientID, &updated)
	h.broadcastPresence(room, sender.ClientID, &updated)
}

func (h *Hub) broadcastPresence(room *Room, clientID string, p *Presence) {
	msg := newMessage(TypePresenceUpdate, PresenceUpdatePayload{ClientID: clientID, Presence: p})
	for id, c := range room.clients {
		if id != clientID {
			c.Send(msg)
		}
	}
}

func decodeResize(msg *Message) (*ResizePayload, error) {
	var payload ResizePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, errors.New("invalid resize payload")
	}
	return &payload, nil
}

func (h *Hub) broadcastToRoom(boardID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	room, ok := h.rooms[boardID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	// Send never blocks; holding the lock keeps removeClient from closing
	// a channel mid-broadcast.
	room.mu.Lock()
	defer room.mu.Unlock()
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			c.Send(msg)
		}
	}
}
