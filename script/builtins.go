// builtins.go - the lua API card scripts program against
//
// Builtins take card ids and player indexes, dispatch through the same named
// actions Go effects use, and block when the action blocks. The acting player
// defaults to the card's owner so most scripts never pass one.
package script

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"provinces/game"
)

func (e *Engine) installBuiltins() {
	L := e.L
	builtins := map[string]lua.LGFunction{
		"player":          e.biPlayer,
		"victims":         e.biVictims,
		"hand":            e.biHand,
		"key_of":          e.biKeyOf,
		"cost_of":         e.biCostOf,
		"is_type":         e.biIsType,
		"pile_count":      e.biPileCount,
		"supply_upto":     e.biSupplyUpto,
		"draw":            e.biDraw,
		"plus_actions":    e.biPlusActions,
		"plus_buys":       e.biPlusBuys,
		"plus_treasure":   e.biPlusTreasure,
		"plus_potions":    e.biPlusPotions,
		"gain":            e.biGain,
		"trash":           e.biTrash,
		"discard":         e.biDiscard,
		"reveal":          e.biReveal,
		"select_cards":    e.biSelectCards,
		"prompt":          e.biPrompt,
		"reduce_cost_all": e.biReduceCostAll,
		"on_next_turn":    e.biOnNextTurn,
		"log":             e.biLog,
	}
	for name, fn := range builtins {
		L.SetGlobal(name, L.NewFunction(fn))
	}
}

// actingPlayer reads an optional player argument, defaulting to the player
// resolving the card.
func (e *Engine) actingPlayer(L *lua.LState, arg int) int {
	return L.OptInt(arg, e.run().Player)
}

func (e *Engine) do(action string, inv game.Invocation) any {
	result, err := e.run().Do(action, inv)
	if err != nil {
		e.fail(fmt.Errorf("%s: %w", e.card.Key, err))
	}
	return result
}

func idTable(L *lua.LState, ids []int) *lua.LTable {
	t := L.NewTable()
	for _, id := range ids {
		t.Append(lua.LNumber(id))
	}
	return t
}

func tableIDs(t *lua.LTable) []int {
	var ids []int
	t.ForEach(func(_, v lua.LValue) {
		if n, ok := v.(lua.LNumber); ok {
			ids = append(ids, int(n))
		}
	})
	return ids
}

func (e *Engine) biPlayer(L *lua.LState) int {
	L.Push(lua.LNumber(e.run().Player))
	return 1
}

// victims() fires the attack trigger and returns the players who did not
// react their way out of it.
func (e *Engine) biVictims(L *lua.LState) int {
	victims, err := e.run().Victims()
	if err != nil {
		e.fail(err)
		return 0
	}
	L.Push(idTable(L, victims))
	return 1
}

func (e *Engine) biHand(L *lua.LState) int {
	p := e.actingPlayer(L, 1)
	hand := *e.run().M.Locations.Source(game.ZoneHand, p)
	L.Push(idTable(L, hand))
	return 1
}

func (e *Engine) biKeyOf(L *lua.LState) int {
	c, err := e.run().M.Card(L.CheckInt(1))
	if err != nil {
		e.fail(err)
		return 0
	}
	L.Push(lua.LString(c.Key))
	return 1
}

// cost_of returns the card's effective treasure cost after price rules.
func (e *Engine) biCostOf(L *lua.LState) int {
	m := e.run().M
	c, err := m.Card(L.CheckInt(1))
	if err != nil {
		e.fail(err)
		return 0
	}
	cost, _ := m.Prices.Apply(c, m)
	L.Push(lua.LNumber(cost.Treasure))
	return 1
}

func (e *Engine) biIsType(L *lua.LState) int {
	c, err := e.run().M.Card(L.CheckInt(1))
	if err != nil {
		e.fail(err)
		return 0
	}
	L.Push(lua.LBool(c.Is(game.TypeTag(L.CheckString(2)))))
	return 1
}

func (e *Engine) biPileCount(L *lua.LState) int {
	L.Push(lua.LNumber(e.run().M.PileCount(L.CheckString(1))))
	return 1
}

// supply_upto(n) returns the top card id of every pile whose effective cost
// is at most n treasure (and no potion component).
func (e *Engine) biSupplyUpto(L *lua.LState) int {
	m := e.run().M
	limit := L.CheckInt(1)
	var ids []int
	for _, c := range m.PileTops() {
		cost, restricted := m.Prices.Apply(c, m)
		if restricted || cost.Potion > 0 || cost.Treasure > limit {
			continue
		}
		ids = append(ids, c.ID)
	}
	L.Push(idTable(L, ids))
	return 1
}

func (e *Engine) biDraw(L *lua.LState) int {
	n := L.OptInt(1, 1)
	p := e.actingPlayer(L, 2)
	result := e.do("drawCard", game.Invocation{Player: p, Count: n})
	drawn, _ := result.([]int)
	L.Push(idTable(L, drawn))
	return 1
}

func (e *Engine) biPlusActions(L *lua.LState) int {
	e.do("gainAction", game.Invocation{Player: e.run().Player, Count: L.OptInt(1, 1)})
	return 0
}

func (e *Engine) biPlusBuys(L *lua.LState) int {
	e.do("gainBuy", game.Invocation{Player: e.run().Player, Count: L.OptInt(1, 1)})
	return 0
}

func (e *Engine) biPlusTreasure(L *lua.LState) int {
	e.do("gainTreasure", game.Invocation{Player: e.run().Player, Count: L.OptInt(1, 1)})
	return 0
}

func (e *Engine) biPlusPotions(L *lua.LState) int {
	e.do("gainPotion", game.Invocation{Player: e.run().Player, Count: L.OptInt(1, 1)})
	return 0
}

// gain(key [, player]) gains the top card of a pile into the player's
// discard pile.
func (e *Engine) biGain(L *lua.LState) int {
	key := L.CheckString(1)
	p := e.actingPlayer(L, 2)
	e.do("gainCard", game.Invocation{Player: p, Key: key})
	return 0
}

func (e *Engine) biTrash(L *lua.LState) int {
	id := L.CheckInt(1)
	p := e.actingPlayer(L, 2)
	e.do("trashCard", game.Invocation{Player: p, Card: id})
	return 0
}

func (e *Engine) biDiscard(L *lua.LState) int {
	id := L.CheckInt(1)
	p := e.actingPlayer(L, 2)
	e.do("discardCard", game.Invocation{Player: p, Card: id})
	return 0
}

func (e *Engine) biReveal(L *lua.LState) int {
	id := L.CheckInt(1)
	p := e.actingPlayer(L, 2)
	e.do("revealCard", game.Invocation{Player: p, Card: id})
	return 0
}

// select_cards(player, eligible, count, optional, prompt) blocks until the
// player answers (or resolves immediately when there is no real choice) and
// returns the picked ids.
func (e *Engine) biSelectCards(L *lua.LState) int {
	optional := false
	if L.GetTop() >= 4 {
		optional = lua.LVAsBool(L.Get(4))
	}
	inv := game.Invocation{
		Player:   L.CheckInt(1),
		Eligible: tableIDs(L.CheckTable(2)),
		Count:    L.CheckInt(3),
		Optional: optional,
		Prompt:   L.OptString(5, ""),
	}
	result := e.do("selectCard", inv)
	picked, _ := result.([]int)
	L.Push(idTable(L, picked))
	return 1
}

// prompt(player, text, choices) blocks for a one-of-N answer; 0 is decline.
func (e *Engine) biPrompt(L *lua.LState) int {
	p := L.CheckInt(1)
	text := L.CheckString(2)
	var choices []game.Choice
	L.CheckTable(3).ForEach(func(k, v lua.LValue) {
		if s, ok := v.(lua.LString); ok {
			choices = append(choices, game.Choice{ID: len(choices) + 1, Text: string(s)})
		}
	})
	result := e.do("userPrompt", game.Invocation{Player: p, Prompt: text, Choices: choices})
	n, _ := result.(int)
	L.Push(lua.LNumber(n))
	return 1
}

// reduce_cost_all(n) lowers every card's cost by n treasure until the end of
// the current turn.
func (e *Engine) biReduceCostAll(L *lua.LState) int {
	n := L.CheckInt(1)
	rc := e.run()
	unsubscribe := rc.M.Prices.Register(game.AllCards, func(c *game.Card, m *game.Match) game.PriceChange {
		return game.PriceChange{Treasure: -n}
	})
	rc.C.Reactions.Register(&game.Reaction{
		ID:         game.ReactionID(e.card.Key+"#discount", e.card.ID),
		Player:     rc.Player,
		Event:      game.TriggerEndTurn,
		Compulsory: true,
		Once:       true,
		CardKey:    e.card.Key,
		CardID:     e.card.ID,
		Effect: func(_ *game.Run, _ game.Trigger) (any, error) {
			unsubscribe()
			return nil, nil
		},
	})
	return 0
}

// on_next_turn(fn) schedules a lua follow-up for the owner's next turn start.
// Duration cards use this for their delayed half.
func (e *Engine) biOnNextTurn(L *lua.LState) int {
	fn := L.CheckFunction(1)
	rc := e.run()
	card := e.card
	owner := rc.Player
	playedOn := rc.M.Turn
	rc.C.Reactions.Register(&game.Reaction{
		ID:         game.ReactionID(card.Key+"#next", card.ID),
		Player:     owner,
		Event:      game.TriggerStartTurn,
		Compulsory: true,
		Once:       true,
		CardKey:    card.Key,
		CardID:     card.ID,
		Condition: func(m *game.Match, t game.Trigger) bool {
			return t.Player == owner && m.Turn > playedOn
		},
		Effect: func(inner *game.Run, _ game.Trigger) (any, error) {
			return e.callFunction(inner, card, fn)
		},
	})
	return 0
}

func (e *Engine) biLog(L *lua.LState) int {
	rc := e.run()
	text := L.CheckString(1)
	cardID := 0
	if e.card != nil {
		cardID = e.card.ID
	}
	rc.Logf(rc.Player, "script", cardID, "%s", text)
	return 0
}
