package server

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/teris-io/shortid"

	"github.com/chatwire/chatwire/internal/protocol"
	"github.com/chatwire/chatwire/internal/stats"
	"github.com/chatwire/chatwire/internal/store"
	"github.com/chatwire/chatwire/internal/types"
)

const requestQueueSize = 1024

type requestKind int

const (
	reqConnect requestKind = iota
	reqDisconnect
	reqCommand
	reqStop
)

type engineRequest struct {
	kind   requestKind
	client *Client
	cmd    *protocol.Command
	done   chan struct{}
}

// Engine is the single owner of all session-to-room state. Every mutation
// (join, leave, send, disconnect) flows through one FIFO request queue
// consumed by a single goroutine, so sequences like leave-then-join can
// never interleave with another connection's commands and no locks guard
// the room or participant state.
type Engine struct {
	log       *log.Logger
	store     store.RoomStore
	stats     stats.StatsProvider
	requests  chan engineRequest
	clients   map[*Client]struct{}
	occupants map[string]map[*Client]struct{}
	sid       *shortid.Shortid
	done      chan struct{}
}

func NewEngine(logger *log.Logger, rs store.RoomStore, su stats.StatsProvider) (*Engine, error) {
	sid, err := shortid.New(1, shortid.DefaultABC, uint64(time.Now().UnixNano()))
	if err != nil {
		return nil, err
	}

	su.RegisterMetric(stats.ActiveConnections)
	su.RegisterMetric(stats.ActiveRooms)
	su.RegisterMetric(stats.MessagesSent)
	su.RegisterMetric(stats.CommandsProcessed)

	return &Engine{
		log:       logger,
		store:     rs,
		stats:     su,
		requests:  make(chan engineRequest, requestQueueSize),
		clients:   make(map[*Client]struct{}),
		occupants: make(map[string]map[*Client]struct{}),
		sid:       sid,
		done:      make(chan struct{}),
	}, nil
}

// Run consumes the request queue until a stop request is processed.
// Requests already queued when shutdown begins are drained first.
func (e *Engine) Run() {
	for req := range e.requests {
		switch req.kind {
		case reqConnect:
			e.handleConnect(req.client)
		case reqDisconnect:
			e.handleDisconnect(req.client)
		case reqCommand:
			e.handleCommand(req.client, req.cmd)
		case reqStop:
			e.log.Println("engine stopping")
			close(e.done)
			if req.done != nil {
				close(req.done)
			}
			return
		}
	}
}

// Submit enqueues a decoded command. The enqueue blocks rather than
// drops when the queue is full so every command still gets its response
// event; per-connection ordering is preserved by the channel.
func (e *Engine) Submit(c *Client, cmd *protocol.Command) {
	e.enqueue(engineRequest{kind: reqCommand, client: c, cmd: cmd})
}

// Connect registers a new connection with the engine.
func (e *Engine) Connect(c *Client) {
	e.enqueue(engineRequest{kind: reqConnect, client: c})
}

// Disconnect deregisters a connection, performing the same leave side
// effects as an explicit leave when the connection was in a room.
func (e *Engine) Disconnect(c *Client) {
	e.enqueue(engineRequest{kind: reqDisconnect, client: c})
}

func (e *Engine) enqueue(req engineRequest) {
	select {
	case e.requests <- req:
	case <-e.done:
	}
}

// Shutdown posts a stop request behind all pending work and waits for the
// engine to drain, bounded by ctx.
func (e *Engine) Shutdown(ctx context.Context) error {
	select {
	case <-e.done:
		return nil
	default:
	}

	req := engineRequest{kind: reqStop, done: make(chan struct{})}

	select {
	case e.requests <- req:
	case <-e.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-req.done:
		return nil
	case <-e.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) handleConnect(c *Client) {
	e.clients[c] = struct{}{}
	e.stats.Incr(stats.ActiveConnections)
	e.log.Printf("connection %s accepted from %s", c.id, c.transport.RemoteAddr())
}

func (e *Engine) handleDisconnect(c *Client) {
	if _, ok := e.clients[c]; !ok {
		return
	}

	if c.currentRoom != "" {
		e.leaveCurrentRoom(c)
	}

	delete(e.clients, c)
	e.stats.Decr(stats.ActiveConnections)
	e.log.Printf("connection %s closed", c.id)
}

func (e *Engine) handleCommand(c *Client, cmd *protocol.Command) {
	e.stats.Incr(stats.CommandsProcessed)

	switch cmd.Type {
	case protocol.CmdJoinRoom:
		e.handleJoinRoom(c, cmd.JoinRoom)
	case protocol.CmdLeaveRoom:
		e.handleLeaveRoom(c)
	case protocol.CmdSendMessage:
		e.handleSendMessage(c, cmd.SendMessage)
	case protocol.CmdListRooms:
		e.handleListRooms(c)
	case protocol.CmdListUsers:
		e.handleListUsers(c, cmd.ListUsers)
	case protocol.CmdRoomHistory:
		e.handleRoomHistory(c, cmd.RoomHistory)
	default:
		c.queueEvent(protocol.NewErrorEvent("unknown command"))
	}
}

func (e *Engine) handleJoinRoom(c *Client, jr *protocol.JoinRoomCommand) {
	handle, err := types.NewUserHandle(jr.Handle)
	if err != nil {
		c.queueEvent(protocol.NewErrorEvent(err.Error()))
		return
	}
	roomName, err := types.NewRoomName(jr.Room)
	if err != nil {
		c.queueEvent(protocol.NewErrorEvent(err.Error()))
		return
	}

	h, name := handle.String(), roomName.String()

	// rejoining the current room re-sends history but must not emit a
	// duplicate presence notification to the other occupants
	if c.handle == h && c.currentRoom == name {
		room, err := e.store.GetRoom(name)
		if err != nil {
			e.systemError(c, "get room", err)
			return
		}
		c.queueEvent(protocol.NewJoinedRoomEvent(name, room.Messages))
		return
	}

	// switching rooms (or handles) leaves the old room first; both halves
	// run inside this single request, so no other command can observe the
	// intermediate state
	if c.currentRoom != "" {
		e.leaveCurrentRoom(c)
	}

	if _, err := e.store.GetRoom(name); errors.Is(err, store.ErrRoomNotFound) {
		e.stats.Incr(stats.ActiveRooms)
		e.log.Printf("room %q auto-created by %s", name, c.id)
	}

	room, err := e.store.CreateRoom(name)
	if err != nil {
		e.systemError(c, "create room", err)
		return
	}

	alreadyPresent := room.HasParticipant(h)
	if _, err := e.store.AddParticipant(name, h); err != nil {
		e.systemError(c, "add participant", err)
		return
	}

	if e.occupants[name] == nil {
		e.occupants[name] = make(map[*Client]struct{})
	}
	e.occupants[name][c] = struct{}{}
	c.handle = h
	c.currentRoom = name

	c.queueEvent(protocol.NewJoinedRoomEvent(name, room.Messages))

	if !alreadyPresent {
		e.broadcast(name, protocol.NewUserJoinedEvent(h, name), c)
	}
}

func (e *Engine) handleLeaveRoom(c *Client) {
	if c.currentRoom == "" {
		c.queueEvent(protocol.NewErrorEvent("not in a room"))
		return
	}

	name := c.currentRoom
	e.leaveCurrentRoom(c)
	c.queueEvent(protocol.NewLeftRoomEvent(name))
}

func (e *Engine) handleSendMessage(c *Client, sm *protocol.SendMessageCommand) {
	handle, err := types.NewUserHandle(sm.Handle)
	if err != nil {
		c.queueEvent(protocol.NewErrorEvent(err.Error()))
		return
	}
	roomName, err := types.NewRoomName(sm.Room)
	if err != nil {
		c.queueEvent(protocol.NewErrorEvent(err.Error()))
		return
	}
	content, err := types.NewMessageContent(sm.Content)
	if err != nil {
		c.queueEvent(protocol.NewErrorEvent(err.Error()))
		return
	}

	name := roomName.String()

	// sending never creates a room; only joining auto-creates
	if _, err := e.store.GetRoom(name); err != nil {
		if errors.Is(err, store.ErrRoomNotFound) {
			c.queueEvent(protocol.NewErrorEvent("room not found"))
		} else {
			e.systemError(c, "get room", err)
		}
		return
	}

	id, err := e.sid.Generate()
	if err != nil {
		e.systemError(c, "generate message id", err)
		return
	}

	msg := types.Message{
		Id:        id,
		Content:   content.String(),
		Author:    handle.String(),
		Room:      name,
		Timestamp: protocol.Now(),
	}

	if _, err := e.store.AddMessage(name, msg); err != nil {
		e.systemError(c, "add message", err)
		return
	}

	e.stats.Incr(stats.MessagesSent)

	evt := protocol.NewMessageEvent(msg)
	e.broadcast(name, evt, nil)

	// a sender outside the room still gets the message event as its
	// confirmation
	if _, ok := e.occupants[name][c]; !ok {
		c.queueEvent(evt)
	}
}

func (e *Engine) handleListRooms(c *Client) {
	c.queueEvent(protocol.NewRoomListEvent(e.store.ListRooms()))
}

func (e *Engine) handleListUsers(c *Client, lu *protocol.ListUsersCommand) {
	name := lu.Room
	if name == "" {
		if c.currentRoom == "" {
			c.queueEvent(protocol.NewErrorEvent("not in a room"))
			return
		}
		name = c.currentRoom
	} else if _, err := types.NewRoomName(name); err != nil {
		c.queueEvent(protocol.NewErrorEvent(err.Error()))
		return
	}

	room, err := e.store.GetRoom(name)
	if err != nil {
		if errors.Is(err, store.ErrRoomNotFound) {
			c.queueEvent(protocol.NewErrorEvent("room not found"))
		} else {
			e.systemError(c, "get room", err)
		}
		return
	}

	c.queueEvent(protocol.NewUserListEvent(name, room.Participants))
}

func (e *Engine) handleRoomHistory(c *Client, rh *protocol.RoomHistoryCommand) {
	if _, err := types.NewRoomName(rh.Room); err != nil {
		c.queueEvent(protocol.NewErrorEvent(err.Error()))
		return
	}

	room, err := e.store.GetRoom(rh.Room)
	if err != nil {
		if errors.Is(err, store.ErrRoomNotFound) {
			c.queueEvent(protocol.NewErrorEvent("room not found"))
		} else {
			e.systemError(c, "get room", err)
		}
		return
	}

	c.queueEvent(protocol.NewRoomHistoryEvent(room.Name, room.Messages))
}

// leaveCurrentRoom removes the client from its room and, when no other
// session keeps the handle present, removes the handle from the store and
// notifies the remaining occupants. The leaver gets no event here; the
// caller decides whether a left_room confirmation is due.
func (e *Engine) leaveCurrentRoom(c *Client) {
	name, handle := c.currentRoom, c.handle

	if occ, ok := e.occupants[name]; ok {
		delete(occ, c)
		if len(occ) == 0 {
			delete(e.occupants, name)
		}
	}
	c.currentRoom = ""

	// another session with the same handle keeps it present
	for other := range e.occupants[name] {
		if other.handle == handle {
			return
		}
	}

	if _, err := e.store.RemoveParticipant(name, handle); err != nil {
		e.log.Printf("remove participant %q from room %q: %v", handle, name, err)
		return
	}

	e.broadcast(name, protocol.NewUserLeftEvent(handle, name), nil)
}

// broadcast queues evt for every occupant of the room except skip. A full
// or closed recipient queue only loses that recipient's copy.
func (e *Engine) broadcast(name string, evt *protocol.Event, skip *Client) {
	for client := range e.occupants[name] {
		if client == skip {
			continue
		}
		client.queueEvent(evt)
	}
}

func (e *Engine) systemError(c *Client, op string, err error) {
	e.log.Printf("client %s: %s: %v", c.id, op, err)
	c.queueEvent(protocol.NewErrorEvent("internal server error"))
}
