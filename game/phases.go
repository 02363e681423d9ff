// phases.go - the turn/phase state machine
package game

// nextPhase advances the cyclic phase list. Cleanup is zero-length from the
// player's perspective: entering it discards, redraws, ends the turn and
// recurses straight into the next player's action phase.
func nextPhase(rc *Run, inv Invocation) (any, error) {
	m := rc.M
	if m.Finished {
		return nil, ErrMatchOver
	}

	leaving := m.CurrentPhase()
	if _, err := rc.C.Reactions.Fire(rc, Trigger{Type: TriggerEndTurnPhase, Player: m.Current, Payload: map[string]any{"phase": string(leaving)}}); err != nil {
		return nil, err
	}

	m.Phase++
	if m.Phase >= len(phaseOrder) {
		m.Phase = 0
		m.Current = (m.Current + 1) % len(m.Players)
	}

	switch m.CurrentPhase() {
	case PhaseAction:
		if err := beginTurn(rc); err != nil {
			return nil, err
		}
	case PhaseBuy:
		if _, err := rc.C.Reactions.Fire(rc, Trigger{Type: TriggerStartTurnPhase, Player: m.Current, Payload: map[string]any{"phase": string(PhaseBuy)}}); err != nil {
			return nil, err
		}
	case PhaseCleanup:
		if _, err := rc.C.Reactions.Fire(rc, Trigger{Type: TriggerStartTurnPhase, Player: m.Current, Payload: map[string]any{"phase": string(PhaseCleanup)}}); err != nil {
			return nil, err
		}
		if err := cleanup(rc); err != nil {
			return nil, err
		}
		// cleanup already recursed into the next player's action phase.
		return nil, nil
	}

	return rc.Do("checkForRemainingPlayerActions", Invocation{})
}

// beginTurn runs when a player's action phase opens: reset the per-turn
// counters, advance turn/round bookkeeping, bring duration cards played on
// an earlier turn back into the play area, then fire the turn triggers.
func beginTurn(rc *Run) error {
	m := rc.M
	p := m.Current

	m.Actions, m.Buys, m.Treasure, m.Potions = 1, 1, 0, 0
	m.BoughtThisTurn = false
	m.Turn++
	if p == 0 {
		m.Round++
		rc.C.rootLog("Round %d begins", m.Round)
	}
	rc.Logf(p, "startTurn", 0, "%s's turn (turn %d)", m.Players[p].Name, m.Turn)

	aged := append([]int(nil), *m.Locations.Source(ZoneDurations, p)...)
	for _, id := range aged {
		if m.playedTurn[id] < m.Turn {
			if _, err := rc.Do("moveCard", Invocation{Card: id, To: ZonePlay, ToPlayer: p}); err != nil {
				return err
			}
		}
	}

	if _, err := rc.C.Reactions.Fire(rc, Trigger{Type: TriggerStartTurn, Player: p}); err != nil {
		return err
	}
	_, err := rc.C.Reactions.Fire(rc, Trigger{Type: TriggerStartTurnPhase, Player: p, Payload: map[string]any{"phase": string(PhaseAction)}})
	return err
}

// cleanup discards the play area and hand (duration cards played this turn
// go to the holding zone instead), draws the next hand of five, ends the
// turn and advances into the next player's action phase.
func cleanup(rc *Run) error {
	m := rc.M
	p := m.Current

	play := append([]int(nil), *m.Locations.Source(ZonePlay, p)...)
	for _, id := range play {
		c, err := m.Card(id)
		if err != nil {
			return err
		}
		to := ZoneDiscard
		if c.Is(TagDuration) && m.playedTurn[id] == m.Turn {
			to = ZoneDurations
		}
		if _, err := rc.Do("moveCard", Invocation{Card: id, To: to, ToPlayer: p}); err != nil {
			return err
		}
	}

	hand := append([]int(nil), *m.Locations.Source(ZoneHand, p)...)
	for _, id := range hand {
		if _, err := rc.Do("moveCard", Invocation{Card: id, To: ZoneDiscard, ToPlayer: p}); err != nil {
			return err
		}
	}

	if _, err := rc.Do("drawCard", Invocation{Player: p, Count: 5}); err != nil {
		return err
	}
	if _, err := rc.Do("endTurn", Invocation{Player: p}); err != nil {
		return err
	}
	_, err := rc.Do("nextPhase", Invocation{})
	return err
}

// endTurn closes out the current player's turn. Transient effects (price
// rules boxed to "until end of turn") listen for this trigger to expire.
func endTurn(rc *Run, inv Invocation) (any, error) {
	m := rc.M
	rc.Logf(m.Current, "endTurn", 0, "%s ends their turn", m.Players[m.Current].Name)
	_, err := rc.C.Reactions.Fire(rc, Trigger{Type: TriggerEndTurn, Player: m.Current})
	return nil, err
}

// checkForRemainingPlayerActions auto-advances phases the current player
// cannot meaningfully act in: an action phase with no actions or no playable
// action cards, or a buy phase with no buys.
func checkForRemainingPlayerActions(rc *Run, inv Invocation) (any, error) {
	m := rc.M
	if m.Finished {
		return nil, nil
	}
	switch m.CurrentPhase() {
	case PhaseAction:
		if m.Actions < 1 || !hasActionCards(m, m.Current) {
			return rc.Do("nextPhase", Invocation{})
		}
	case PhaseBuy:
		if m.Buys < 1 {
			return rc.Do("nextPhase", Invocation{})
		}
	}
	return nil, nil
}

func hasActionCards(m *Match, player int) bool {
	for _, id := range *m.Locations.Source(ZoneHand, player) {
		if m.cards[id].Is(TagAction) {
			return true
		}
	}
	return false
}
