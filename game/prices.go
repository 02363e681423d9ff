// prices.go - per-card-key chains of cost and restriction modifiers
package game

// PriceChange is one rule's contribution to a card's effective price.
// Treasure and Potion are deltas (usually negative); Restricted forbids
// buying the card outright.
type PriceChange struct {
	Treasure   int
	Potion     int
	Restricted bool
}

// PriceRule computes a price modification for a card in the current match
// state. Rules are consulted on every interactivity recompute, so they must
// be cheap and side-effect free.
type PriceRule func(c *Card, m *Match) PriceChange

type priceEntry struct {
	fn      PriceRule
	removed bool
}

// Prices folds registered rules over card base costs. Restriction flags OR
// together; cost deltas sum and the result clamps at zero.
type Prices struct {
	rules map[string][]*priceEntry
}

// NewPrices returns an empty rule engine.
func NewPrices() *Prices {
	return &Prices{rules: make(map[string][]*priceEntry)}
}

// AllCards registers a rule against every card key.
const AllCards = "*"

// Register appends a modifier for a card key and returns an unsubscribe
// handle. Transient rules ("cards cost less until end of turn") hold the
// handle and call it from an endTurn reaction.
func (p *Prices) Register(key string, fn PriceRule) func() {
	entry := &priceEntry{fn: fn}
	p.rules[key] = append(p.rules[key], entry)
	return func() { entry.removed = true }
}

// Apply folds all live rules for the card's key over its base cost.
func (p *Prices) Apply(c *Card, m *Match) (Cost, bool) {
	cost := c.Def.Cost
	restricted := false
	for _, chain := range [][]*priceEntry{p.rules[c.Key], p.rules[AllCards]} {
		for _, entry := range chain {
			if entry.removed {
				continue
			}
			change := entry.fn(c, m)
			cost.Treasure += change.Treasure
			cost.Potion += change.Potion
			restricted = restricted || change.Restricted
		}
	}
	if cost.Treasure < 0 {
		cost.Treasure = 0
	}
	if cost.Potion < 0 {
		cost.Potion = 0
	}
	return cost, restricted
}
