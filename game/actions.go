// actions.go - built-in synchronous game actions
//
// Each action validates its inputs, mutates the match through the location
// store, appends a log entry, and hands reactive events to the trigger
// manager. moveCard is the only primitive that changes a card's zone; every
// other movement action is built on it.
package game

import "fmt"

func defaultCount(n int) int {
	if n == 0 {
		return 1
	}
	return n
}

// impersonal zones clear card ownership on entry.
func impersonal(z Zone) bool {
	return z == ZoneSupply || z == ZoneKingdom || z == ZoneTrash
}

// moveCard relocates a card: remove from wherever it is, append to the
// destination, run zone exit/enter lifecycle hooks. Reads Card, To, ToPlayer.
func moveCard(rc *Run, inv Invocation) (any, error) {
	m := rc.M
	c, err := m.Card(inv.Card)
	if err != nil {
		return nil, err
	}
	from, err := m.Locations.FindCard(c.ID)
	if err != nil {
		return nil, err
	}

	for _, hook := range m.exitHooks[hookKey{c.Key, from.Zone}] {
		hook(m, c)
	}

	m.Locations.remove(from)
	toPlayer := inv.ToPlayer
	if impersonal(inv.To) {
		toPlayer = NoOwner
	}
	m.Locations.appendTo(inv.To, toPlayer, c.ID)
	c.Owner = toPlayer

	for _, hook := range m.enterHooks[hookKey{c.Key, inv.To}] {
		hook(m, c)
	}
	return nil, nil
}

// gainBuy adds buys to the current turn. Reads Count.
func gainBuy(rc *Run, inv Invocation) (any, error) {
	n := defaultCount(inv.Count)
	rc.M.Buys += n
	rc.Logf(inv.Player, "gainBuy", 0, "+%d buy", n)
	return nil, nil
}

// gainAction adds actions to the current turn. Reads Count.
func gainAction(rc *Run, inv Invocation) (any, error) {
	n := defaultCount(inv.Count)
	rc.M.Actions += n
	rc.Logf(inv.Player, "gainAction", 0, "+%d action", n)
	return nil, nil
}

// gainTreasure adds treasure to the current turn. Reads Count.
func gainTreasure(rc *Run, inv Invocation) (any, error) {
	n := defaultCount(inv.Count)
	rc.M.Treasure += n
	rc.Logf(inv.Player, "gainTreasure", 0, "+%d treasure", n)
	return nil, nil
}

// gainPotion adds potions to the current turn. Reads Count.
func gainPotion(rc *Run, inv Invocation) (any, error) {
	n := defaultCount(inv.Count)
	rc.M.Potions += n
	rc.Logf(inv.Player, "gainPotion", 0, "+%d potion", n)
	return nil, nil
}

// shuffleDeck folds the player's discard pile into the deck and shuffles.
// Reads Player.
func shuffleDeck(rc *Run, inv Invocation) (any, error) {
	m := rc.M
	deck := m.Locations.Source(ZoneDeck, inv.Player)
	discard := m.Locations.Source(ZoneDiscard, inv.Player)
	*deck = append(*deck, *discard...)
	*discard = (*discard)[:0]
	m.rng.Shuffle(len(*deck), func(i, j int) {
		(*deck)[i], (*deck)[j] = (*deck)[j], (*deck)[i]
	})
	rc.Logf(inv.Player, "shuffleDeck", 0, "%s shuffles their deck", m.Players[inv.Player].Name)
	return nil, nil
}

// drawCard moves cards from the top of the player's deck to their hand,
// shuffling the discard in when the deck runs dry. Returns the drawn ids.
// Reads Player, Count.
func drawCard(rc *Run, inv Invocation) (any, error) {
	m := rc.M
	n := defaultCount(inv.Count)
	drawn := make([]int, 0, n)
	for i := 0; i < n; i++ {
		deck := m.Locations.Source(ZoneDeck, inv.Player)
		if len(*deck) == 0 {
			if len(*m.Locations.Source(ZoneDiscard, inv.Player)) == 0 {
				break // nothing left to draw
			}
			if _, err := rc.Do("shuffleDeck", Invocation{Player: inv.Player}); err != nil {
				return drawn, err
			}
			deck = m.Locations.Source(ZoneDeck, inv.Player)
		}
		top := (*deck)[len(*deck)-1]
		if _, err := rc.Do("moveCard", Invocation{Card: top, To: ZoneHand, ToPlayer: inv.Player}); err != nil {
			return drawn, err
		}
		drawn = append(drawn, top)
	}
	if len(drawn) > 0 {
		rc.Logf(inv.Player, "drawCard", 0, "%s draws %d card(s)", m.Players[inv.Player].Name, len(drawn))
	}
	return drawn, nil
}

// discardCard moves a card to its owner's discard pile. Reads Player, Card.
func discardCard(rc *Run, inv Invocation) (any, error) {
	c, err := rc.M.Card(inv.Card)
	if err != nil {
		return nil, err
	}
	if _, err := rc.Do("moveCard", Invocation{Card: c.ID, To: ZoneDiscard, ToPlayer: inv.Player}); err != nil {
		return nil, err
	}
	rc.Logf(inv.Player, "discardCard", c.ID, "%s discards %s", rc.M.Players[inv.Player].Name, c.Def.Name)
	_, err = rc.C.Reactions.Fire(rc, Trigger{Type: TriggerCardDiscarded, Player: inv.Player, Card: c.ID})
	return nil, err
}

// trashCard moves a card to the trash. Reads Player, Card.
func trashCard(rc *Run, inv Invocation) (any, error) {
	m := rc.M
	c, err := m.Card(inv.Card)
	if err != nil {
		return nil, err
	}
	if _, err := rc.Do("moveCard", Invocation{Card: c.ID, To: ZoneTrash}); err != nil {
		return nil, err
	}
	m.Stats.Trashed.add(m.Turn, c.Key)
	rc.Logf(inv.Player, "trashCard", c.ID, "%s trashes %s", m.Players[inv.Player].Name, c.Def.Name)
	_, err = rc.C.Reactions.Fire(rc, Trigger{Type: TriggerCardTrashed, Player: inv.Player, Card: c.ID})
	return nil, err
}

// gainCard takes the top card of the named pile and gives it to the player,
// by default into their discard pile. An exhausted pile is a no-op, not an
// error. Reads Player, Key, To (optional), ToPlayer (optional).
func gainCard(rc *Run, inv Invocation) (any, error) {
	m := rc.M
	c, ok := m.topOfPile(inv.Key)
	if !ok {
		rc.Logf(inv.Player, "gainCard", 0, "%s gains nothing, %s pile is empty", m.Players[inv.Player].Name, inv.Key)
		return nil, nil
	}
	to := inv.To
	if to == "" {
		to = ZoneDiscard
	}
	if _, err := rc.Do("moveCard", Invocation{Card: c.ID, To: to, ToPlayer: inv.Player}); err != nil {
		return nil, err
	}
	m.Stats.Gained.add(m.Turn, c.Key)
	rc.Logf(inv.Player, "gainCard", c.ID, "%s gains %s", m.Players[inv.Player].Name, c.Def.Name)
	if _, err := rc.C.Reactions.Fire(rc, Trigger{Type: TriggerCardGained, Player: inv.Player, Card: c.ID}); err != nil {
		return nil, err
	}
	return c.ID, nil
}

// buyCard spends a buy and the card's effective price, then gains the card.
// Reads Player, Card (a supply card id).
func buyCard(rc *Run, inv Invocation) (any, error) {
	m := rc.M
	c, err := m.Card(inv.Card)
	if err != nil {
		return nil, err
	}
	if m.Buys < 1 {
		return nil, fmt.Errorf("no buys remaining")
	}
	cost, restricted := m.Prices.Apply(c, m)
	if restricted {
		return nil, fmt.Errorf("%s cannot be bought right now", c.Def.Name)
	}
	if cost.Treasure > m.Treasure || cost.Potion > m.Potions {
		return nil, fmt.Errorf("cannot afford %s", c.Def.Name)
	}
	m.Buys--
	m.Treasure -= cost.Treasure
	m.Potions -= cost.Potion
	m.BoughtThisTurn = true
	m.Stats.Bought.add(m.Turn, c.Key)
	rc.Logf(inv.Player, "buyCard", c.ID, "%s buys %s", m.Players[inv.Player].Name, c.Def.Name)

	gained, err := rc.Do("gainCard", Invocation{Player: inv.Player, Key: c.Key})
	if err != nil {
		return nil, err
	}
	if _, err := rc.C.Reactions.Fire(rc, Trigger{Type: TriggerCardBought, Player: inv.Player, Card: c.ID}); err != nil {
		return nil, err
	}
	return gained, nil
}

// playCard resolves a card from the player's hand: move it to the play area,
// apply treasure values or spend an action, fire the cardPlayed trigger, then
// run the card's effect coroutine as a sub-run. Reads Player, Card.
func playCard(rc *Run, inv Invocation) (any, error) {
	m := rc.M
	c, err := m.Card(inv.Card)
	if err != nil {
		return nil, err
	}
	isAction := c.Is(TagAction)
	if isAction {
		if m.CurrentPhase() != PhaseAction {
			return nil, fmt.Errorf("cannot play %s outside the action phase", c.Def.Name)
		}
		if m.Actions < 1 {
			return nil, fmt.Errorf("no actions remaining")
		}
	}

	if _, err := rc.Do("moveCard", Invocation{Card: c.ID, To: ZonePlay, ToPlayer: inv.Player}); err != nil {
		return nil, err
	}
	if isAction {
		m.Actions--
	}
	m.playedTurn[c.ID] = m.Turn
	m.Stats.Played.add(m.Turn, c.Key)
	rc.Logf(inv.Player, "playCard", c.ID, "%s plays %s", m.Players[inv.Player].Name, c.Def.Name)

	if c.Is(TagTreasure) {
		if c.Def.Treasure != 0 {
			if _, err := rc.Do("gainTreasure", Invocation{Player: inv.Player, Count: c.Def.Treasure}); err != nil {
				return nil, err
			}
		}
		if c.Def.Potion != 0 {
			if _, err := rc.Do("gainPotion", Invocation{Player: inv.Player, Count: c.Def.Potion}); err != nil {
				return nil, err
			}
		}
	}

	if _, err := rc.C.Reactions.Fire(rc, Trigger{Type: TriggerCardPlayed, Player: inv.Player, Card: c.ID}); err != nil {
		return nil, err
	}

	if effect, ok := rc.C.effectFor(c); ok {
		prev := rc.Card
		rc.Card = c
		_, err := rc.Sub(effect)
		rc.Card = prev
		if err != nil {
			return nil, err
		}
	}
	return nil, nil
}

// revealCard shows a card to all players without moving it. Reads Player,
// Card.
func revealCard(rc *Run, inv Invocation) (any, error) {
	m := rc.M
	c, err := m.Card(inv.Card)
	if err != nil {
		return nil, err
	}
	rc.Logf(inv.Player, "revealCard", c.ID, "%s reveals %s", m.Players[inv.Player].Name, c.Def.Name)
	rc.C.Broadcast("cardRevealed", map[string]any{"player": inv.Player, "card": c.ID, "key": c.Key})
	_, err = rc.C.Reactions.Fire(rc, Trigger{Type: TriggerCardRevealed, Player: inv.Player, Card: c.ID})
	return nil, err
}
