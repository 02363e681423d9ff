// handlers.go - inbound message routing
package server

import (
	"encoding/json"

	"provinces/game"
)

func (c *Connection) handle(msg clientMessage) {
	switch msg.Type {
	case "listCards":
		c.handleListCards()
	case "listRooms":
		c.handleListRooms()
	case "createMatch":
		c.handleCreateMatch(msg.Data)
	case "joinMatch":
		c.handleJoinMatch(msg.Data)
	case "ready":
		c.handleReady()
	case "tap":
		c.handleTap(msg.Data)
	case "input":
		c.handleInput(msg.Data)
	case "endPhase":
		c.handleEndPhase()
	case "chat":
		c.handleChat(msg.Data)
	default:
		c.fail("unknown message type: " + msg.Type)
	}
}

func (c *Connection) handleListCards() {
	defs := c.hub.library.Defs()
	cards := make([]any, len(defs))
	for i, d := range defs {
		cards[i] = d
	}
	c.Emit("cardList", map[string]any{"cards": cards})
}

func (c *Connection) handleListRooms() {
	rooms := c.hub.Rooms()
	list := make([]any, len(rooms))
	for i, r := range rooms {
		list[i] = r
	}
	c.Emit("roomList", map[string]any{"rooms": list})
}

func (c *Connection) handleCreateMatch(data json.RawMessage) {
	var req struct {
		Name    string   `json:"name"`
		Players int      `json:"players"`
		Kingdom []string `json:"kingdom"`
	}
	if err := json.Unmarshal(data, &req); err != nil || req.Name == "" {
		c.fail("createMatch needs a name and player count")
		return
	}
	id, err := c.hub.CreateRoom(c, req.Name, req.Players, req.Kingdom)
	if err != nil {
		c.fail(err.Error())
		return
	}
	c.Emit("matchCreated", map[string]any{"room": id, "seat": c.Seat})
}

func (c *Connection) handleJoinMatch(data json.RawMessage) {
	var req struct {
		Room string `json:"room"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &req); err != nil || req.Room == "" || req.Name == "" {
		c.fail("joinMatch needs a room and a name")
		return
	}
	if err := c.hub.Join(c, req.Room, req.Name); err != nil {
		c.fail(err.Error())
		return
	}
	c.Emit("matchJoined", map[string]any{"room": req.Room, "seat": c.Seat})
}

func (c *Connection) controller() (*game.Controller, bool) {
	if c.room == nil || !c.room.started() {
		c.fail("not in a running match")
		return nil, false
	}
	return c.room.controller, true
}

func (c *Connection) handleReady() {
	if ctrl, ok := c.controller(); ok {
		ctrl.OnReady(c.Seat)
	}
}

func (c *Connection) handleTap(data json.RawMessage) {
	var req struct {
		Card int `json:"card"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		c.fail("tap needs a card id")
		return
	}
	ctrl, ok := c.controller()
	if !ok {
		return
	}
	if err := ctrl.OnTap(c.Seat, req.Card); err != nil {
		c.fail(err.Error())
	}
}

func (c *Connection) handleInput(data json.RawMessage) {
	var req struct {
		Signal string          `json:"signal"`
		Value  json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &req); err != nil || req.Signal == "" {
		c.fail("input needs a signal")
		return
	}
	ctrl, ok := c.controller()
	if !ok {
		return
	}
	ctrl.OnInput(c.Seat, req.Signal, req.Value)
}

func (c *Connection) handleEndPhase() {
	ctrl, ok := c.controller()
	if !ok {
		return
	}
	if err := ctrl.OnEndPhase(c.Seat); err != nil {
		c.fail(err.Error())
	}
}

func (c *Connection) handleChat(data json.RawMessage) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		c.fail("chat needs text")
		return
	}
	if ctrl, ok := c.controller(); ok {
		ctrl.OnChat(c.Seat, req.Text)
	}
}
