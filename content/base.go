// base.go - Go-implemented base set behaviors
//
// Most base cards are fully described by their lua script. The ones here need
// persistent state the script API does not reach: Moat listens for attacks
// while sitting in a hand, Gardens changes scoring.
package content

import (
	"provinces/game"
)

func registerBaseAbilities(l *Library) {
	l.AddBinder(bindMoat)
	l.AddBinder(bindGardens)
}

// bindMoat arms the attack reaction whenever a Moat enters a hand and
// disarms it on the way out. Revealing establishes immunity through the
// reaction result.
func bindMoat(m *game.Match, c *game.Controller) error {
	if _, ok := m.Def("moat"); !ok {
		return nil
	}
	m.OnEnterZone("moat", game.ZoneHand, func(m *game.Match, card *game.Card) {
		owner := card.Owner
		c.Reactions.Register(&game.Reaction{
			ID:      game.ReactionID("moat", card.ID),
			Player:  owner,
			Event:   game.TriggerAttack,
			CardKey: "moat",
			CardID:  card.ID,
			Condition: func(m *game.Match, t game.Trigger) bool {
				return t.Player != owner
			},
			Effect: func(rc *game.Run, t game.Trigger) (any, error) {
				if _, err := rc.Do("revealCard", game.Invocation{Player: owner, Card: card.ID}); err != nil {
					return nil, err
				}
				return true, nil
			},
		})
	})
	m.OnExitZone("moat", game.ZoneHand, func(m *game.Match, card *game.Card) {
		c.Reactions.Unregister(game.ReactionID("moat", card.ID))
	})
	return nil
}

// bindGardens scores one point per Gardens per ten cards owned, rounded down.
func bindGardens(m *game.Match, c *game.Controller) error {
	if _, ok := m.Def("gardens"); !ok {
		return nil
	}
	m.AddScorer(func(m *game.Match, p int) int {
		total, gardens := 0, 0
		m.Locations.Each(func(_ game.Zone, owner int, seq []int) {
			if owner != p {
				return
			}
			for _, id := range seq {
				total++
				if card, err := m.Card(id); err == nil && card.Key == "gardens" {
					gardens++
				}
			}
		})
		return gardens * (total / 10)
	})
	return nil
}
