// hub.go - room and seat management
//
// The hub pairs websocket connections with match seats. A room is created
// with a fixed seat count, fills up as players join, and starts its match on
// the last join. After that the hub only routes: the controller owns all
// game state.
package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"provinces/content"
	"provinces/game"
)

type room struct {
	id         string
	size       int
	kingdom    []string
	seats      []*Connection // nil entries are open or disconnected seats
	names      []string
	controller *game.Controller
	stop       chan struct{}
}

func (r *room) started() bool { return r.controller != nil }

// Hub owns every room on this server.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]*room
	manager *game.Manager
	library *content.Library
	ping    time.Duration
	seed    int64 // fixed shuffle seed for every match, 0 = random
	log     zerolog.Logger
}

// NewHub wires the hub over the match manager and card library.
func NewHub(manager *game.Manager, library *content.Library, ping time.Duration, seed int64, log zerolog.Logger) *Hub {
	return &Hub{
		rooms:   make(map[string]*room),
		manager: manager,
		library: library,
		ping:    ping,
		seed:    seed,
		log:     log.With().Str("component", "hub").Logger(),
	}
}

// CreateRoom opens a room and seats the creator in it.
func (h *Hub) CreateRoom(c *Connection, name string, size int, kingdom []string) (string, error) {
	if size < 2 || size > 4 {
		return "", fmt.Errorf("a match seats two to four players, got %d", size)
	}
	for _, key := range kingdom {
		if _, ok := h.library.Def(key); !ok {
			return "", fmt.Errorf("unknown kingdom card %q", key)
		}
	}
	r := &room{
		id:      uuid.NewString(),
		size:    size,
		kingdom: kingdom,
		stop:    make(chan struct{}),
	}
	h.mu.Lock()
	h.rooms[r.id] = r
	h.mu.Unlock()
	h.log.Info().Str("room", r.id).Int("size", size).Msg("room created")
	return r.id, h.Join(c, r.id, name)
}

// Join seats a connection in a room. Filling the last seat starts the match;
// joining a started room with a previously used name reconnects that seat.
func (h *Hub) Join(c *Connection, roomID, name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[roomID]
	if !ok {
		return fmt.Errorf("no such room %s", roomID)
	}

	if r.started() {
		return h.reseat(r, c, name)
	}
	if len(r.seats) >= r.size {
		return fmt.Errorf("room %s is full", roomID)
	}
	c.room = r
	c.Seat = len(r.seats)
	c.Name = name
	r.seats = append(r.seats, c)
	r.names = append(r.names, name)
	h.broadcastRoom(r, "playerJoined", map[string]any{
		"room": r.id, "seat": c.Seat, "name": name, "seated": len(r.seats), "size": r.size,
	})

	if len(r.seats) == r.size {
		return h.start(r)
	}
	return nil
}

// reseat reconnects a named player to their old seat in a running match.
func (h *Hub) reseat(r *room, c *Connection, name string) error {
	for seat, n := range r.names {
		if n != name {
			continue
		}
		if r.seats[seat] != nil {
			return fmt.Errorf("seat for %s is still connected", name)
		}
		c.room = r
		c.Seat = seat
		c.Name = name
		r.seats[seat] = c
		r.controller.Attach(seat, c)
		h.log.Info().Str("room", r.id).Int("seat", seat).Msg("player reconnected")
		return nil
	}
	return fmt.Errorf("match %s is already running", r.id)
}

func (h *Hub) start(r *room) error {
	kingdom := r.kingdom
	if len(kingdom) == 0 {
		kingdom = h.library.KingdomKeys()
		if len(kingdom) > 10 {
			kingdom = kingdom[:10]
		}
	}
	controller, err := h.manager.Create(r.names, h.seed, h.library, kingdom)
	if err != nil {
		return err
	}
	r.controller = controller
	for seat, conn := range r.seats {
		controller.Attach(seat, conn)
	}
	if err := controller.Start(); err != nil {
		return err
	}
	go h.nudgeLoop(r)
	return nil
}

// nudgeLoop reminds whichever player a parked prompt is waiting on, so a
// stalled match shows who is holding it up.
func (h *Hub) nudgeLoop(r *room) {
	ticker := time.NewTicker(h.ping)
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			if r.controller.Finished() {
				return
			}
			p, ok := r.controller.AwaitedPlayer()
			if !ok {
				continue
			}
			h.mu.RLock()
			conn := r.seats[p]
			h.mu.RUnlock()
			if conn != nil {
				conn.Emit("awaitingInput", map[string]any{"player": p})
			}
		}
	}
}

// Drop detaches a connection from its room on disconnect. The seat stays
// reserved for a reconnect; an unstarted room just loses the player.
func (h *Hub) Drop(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r := c.room
	if r == nil {
		return
	}
	c.room = nil
	if r.started() {
		r.controller.Detach(c.Seat)
		r.seats[c.Seat] = nil
		h.broadcastRoom(r, "playerDisconnected", map[string]any{"seat": c.Seat, "name": c.Name})
		return
	}
	for i, conn := range r.seats {
		if conn == c {
			r.seats = append(r.seats[:i], r.seats[i+1:]...)
			r.names = append(r.names[:i], r.names[i+1:]...)
			break
		}
	}
	for i, conn := range r.seats {
		conn.Seat = i
	}
	if len(r.seats) == 0 {
		delete(h.rooms, r.id)
	}
}

// CloseRoom tears a room down and releases its match.
func (h *Hub) CloseRoom(id string) {
	h.mu.Lock()
	r, ok := h.rooms[id]
	if ok {
		delete(h.rooms, id)
	}
	h.mu.Unlock()
	if !ok {
		return
	}
	close(r.stop)
	if r.started() {
		h.manager.Remove(r.controller.M.ID)
	}
}

// Rooms lists joinable and running rooms for the lobby.
func (h *Hub) Rooms() []map[string]any {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]map[string]any, 0, len(h.rooms))
	for _, r := range h.rooms {
		out = append(out, map[string]any{
			"id":      r.id,
			"size":    r.size,
			"seated":  len(r.seats),
			"started": r.started(),
		})
	}
	return out
}

func (h *Hub) broadcastRoom(r *room, event string, data map[string]any) {
	for _, conn := range r.seats {
		if conn != nil {
			conn.Emit(event, data)
		}
	}
}
