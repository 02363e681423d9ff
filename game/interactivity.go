// interactivity.go - the interactivity calculator
//
// After every dispatched action the controller recomputes, for each player,
// the set of card ids that player may tap right now. The client renders
// exactly this set as enabled; all legality lives here, server side.
package game

// recomputeSelectable rebuilds Match.Selectable from scratch. Only the turn
// holder ever has selectable cards, and only in the action and buy phases; a
// parked run means the match is waiting for prompt input instead.
func recomputeSelectable(m *Match, pendingInput bool) {
	for p := range m.Players {
		m.Selectable[p] = []int{}
	}
	if !m.Started || m.Finished || pendingInput {
		return
	}

	p := m.Current
	switch m.CurrentPhase() {
	case PhaseAction:
		if m.Actions < 1 {
			return
		}
		var ids []int
		for _, id := range *m.Locations.Source(ZoneHand, p) {
			if m.cards[id].Is(TagAction) {
				ids = append(ids, id)
			}
		}
		m.Selectable[p] = ids
	case PhaseBuy:
		m.Selectable[p] = buyableCards(m, p)
	}
}

// buyableCards returns, in the buy phase, the top card of each affordable and
// unrestricted pile plus the player's hand treasures. Hand treasures drop out
// once the first purchase of the turn is made.
func buyableCards(m *Match, p int) []int {
	ids := []int{}
	if m.Buys < 1 {
		return ids
	}

	// Topmost card per pile: reverse scan so the top copy wins, skipping keys
	// already seen.
	seen := make(map[string]bool)
	for _, zone := range []Zone{ZoneKingdom, ZoneSupply} {
		seq := *m.Locations.Source(zone, NoOwner)
		for i := len(seq) - 1; i >= 0; i-- {
			c := m.cards[seq[i]]
			if seen[c.Key] {
				continue
			}
			seen[c.Key] = true
			if allow, ok := m.canBuy[c.Key]; ok && !allow(m, p) {
				continue
			}
			cost, restricted := m.Prices.Apply(c, m)
			if restricted {
				continue
			}
			if cost.Treasure <= m.Treasure && cost.Potion <= m.Potions {
				ids = append(ids, c.ID)
			}
		}
	}

	// Treasures may still be played as long as nothing was bought this turn.
	if !m.BoughtThisTurn {
		for _, id := range *m.Locations.Source(ZoneHand, p) {
			if m.cards[id].Is(TagTreasure) {
				ids = append(ids, id)
			}
		}
	}
	return ids
}
