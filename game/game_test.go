package game

// Shared fixtures: a deterministic two-to-four player match with a small card
// set whose effects are registered in Go, and a channel that records every
// event so tests can assert on the outbound stream.

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type recordChannel struct {
	events []Event
}

func (r *recordChannel) Emit(event string, data map[string]any) {
	r.events = append(r.events, Event{Type: event, Data: data})
}

// last returns the most recent event of the given type.
func (r *recordChannel) last(eventType string) (map[string]any, bool) {
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == eventType {
			return r.events[i].Data, true
		}
	}
	return nil, false
}

func (r *recordChannel) count(eventType string) int {
	n := 0
	for _, e := range r.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

// lastSignal digs the correlation token out of the newest prompt event.
func (r *recordChannel) lastSignal(t *testing.T) string {
	t.Helper()
	for i := len(r.events) - 1; i >= 0; i-- {
		switch r.events[i].Type {
		case "selectCards", "userPrompt":
			signal, ok := r.events[i].Data["signal"].(string)
			require.True(t, ok, "prompt event without signal")
			return signal
		}
	}
	t.Fatal("no prompt event recorded")
	return ""
}

func testDefs() []*CardDef {
	return []*CardDef{
		{Key: "copper", Name: "Copper", Types: []TypeTag{TagTreasure}, Treasure: 1, Pile: 60, Base: true},
		{Key: "silver", Name: "Silver", Types: []TypeTag{TagTreasure}, Cost: Cost{Treasure: 3}, Treasure: 2, Pile: 40, Base: true},
		{Key: "gold", Name: "Gold", Types: []TypeTag{TagTreasure}, Cost: Cost{Treasure: 6}, Treasure: 3, Pile: 30, Base: true},
		{Key: "estate", Name: "Estate", Types: []TypeTag{TagVictory}, Cost: Cost{Treasure: 2}, VP: 1, Pile: 8, Base: true},
		{Key: "duchy", Name: "Duchy", Types: []TypeTag{TagVictory}, Cost: Cost{Treasure: 5}, VP: 3, Pile: 8, Base: true},
		{Key: "province", Name: "Province", Types: []TypeTag{TagVictory}, Cost: Cost{Treasure: 8}, VP: 6, Pile: 8, Base: true},
		{Key: "curse", Name: "Curse", Types: []TypeTag{TagCurse}, VP: -1, Pile: 10, Base: true},
		{Key: "smithy", Name: "Smithy", Types: []TypeTag{TagAction}, Cost: Cost{Treasure: 4}, Pile: 10},
		{Key: "village", Name: "Village", Types: []TypeTag{TagAction}, Cost: Cost{Treasure: 3}, Pile: 10},
		{Key: "militia", Name: "Militia", Types: []TypeTag{TagAction, TagAttack}, Cost: Cost{Treasure: 4}, Pile: 10},
		{Key: "moat", Name: "Moat", Types: []TypeTag{TagAction, TagReaction}, Cost: Cost{Treasure: 2}, Pile: 10},
		{Key: "wharfRat", Name: "Wharf Rat", Types: []TypeTag{TagAction, TagDuration}, Cost: Cost{Treasure: 4}, Pile: 10},
	}
}

func smithyEffect(rc *Run) (any, error) {
	return rc.Do("drawCard", Invocation{Player: rc.Player, Count: 3})
}

func villageEffect(rc *Run) (any, error) {
	if _, err := rc.Do("drawCard", Invocation{Player: rc.Player}); err != nil {
		return nil, err
	}
	return rc.Do("gainAction", Invocation{Player: rc.Player, Count: 2})
}

func militiaEffect(rc *Run) (any, error) {
	if _, err := rc.Do("gainTreasure", Invocation{Player: rc.Player, Count: 2}); err != nil {
		return nil, err
	}
	victims, err := rc.Victims()
	if err != nil {
		return nil, err
	}
	for _, v := range victims {
		hand := append([]int(nil), *rc.M.Locations.Source(ZoneHand, v)...)
		excess := len(hand) - 3
		if excess <= 0 {
			continue
		}
		picked, err := rc.Do("selectCard", Invocation{
			Player: v, Eligible: hand, Count: excess, Prompt: "Discard down to three cards",
		})
		if err != nil {
			return nil, err
		}
		for _, id := range picked.([]int) {
			if _, err := rc.Do("discardCard", Invocation{Player: v, Card: id}); err != nil {
				return nil, err
			}
		}
	}
	return nil, nil
}

func bindTestEffects(c *Controller) {
	c.RegisterEffect("smithy", smithyEffect)
	c.RegisterEffect("village", villageEffect)
	c.RegisterEffect("militia", militiaEffect)
	c.RegisterEffect("moat", func(rc *Run) (any, error) {
		return rc.Do("drawCard", Invocation{Player: rc.Player, Count: 2})
	})
	c.M.OnEnterZone("moat", ZoneHand, func(m *Match, card *Card) {
		owner := card.Owner
		c.Reactions.Register(&Reaction{
			ID:      ReactionID("moat", card.ID),
			Player:  owner,
			Event:   TriggerAttack,
			CardKey: "moat",
			CardID:  card.ID,
			Condition: func(m *Match, t Trigger) bool {
				return t.Player != owner
			},
			Effect: func(rc *Run, t Trigger) (any, error) {
				if _, err := rc.Do("revealCard", Invocation{Player: owner, Card: card.ID}); err != nil {
					return nil, err
				}
				return true, nil
			},
		})
	})
	c.M.OnExitZone("moat", ZoneHand, func(m *Match, card *Card) {
		c.Reactions.Unregister(ReactionID("moat", card.ID))
	})
}

// newTestGame builds an unstarted match with attached recording channels.
func newTestGame(t *testing.T, names ...string) (*Controller, []*recordChannel) {
	t.Helper()
	return newTestGameWithDefs(t, testDefs(), names...)
}

func newTestGameWithDefs(t *testing.T, defs []*CardDef, names ...string) (*Controller, []*recordChannel) {
	t.Helper()
	m := NewMatch(names, 7)
	require.NoError(t, Setup(m, defs, []string{"smithy", "village", "militia", "moat", "wharfRat"}))
	c := NewController(m, zerolog.Nop())
	bindTestEffects(c)

	channels := make([]*recordChannel, len(names))
	for i := range names {
		channels[i] = &recordChannel{}
		c.Attach(i, channels[i])
	}
	return c, channels
}

// giveCard mints a fresh card straight into a zone, bypassing the supply.
// Zone enter hooks run so reaction cards arm themselves as usual.
func giveCard(t *testing.T, m *Match, key string, player int, zone Zone) *Card {
	t.Helper()
	def, ok := m.Def(key)
	require.True(t, ok, "unknown card key %s", key)
	c := m.addCard(def, player)
	m.Locations.appendTo(zone, player, c.ID)
	for _, hook := range m.enterHooks[hookKey{key, zone}] {
		hook(m, c)
	}
	return c
}

// totalCards counts card ids across every zone, for conservation checks.
func totalCards(m *Match) int {
	n := 0
	m.Locations.Each(func(_ Zone, _ int, seq []int) { n += len(seq) })
	return n
}
