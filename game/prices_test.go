package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func priceFixture() (*Match, *Card) {
	m := NewMatch([]string{"a", "b"}, 1)
	def := &CardDef{Key: "smithy", Name: "Smithy", Types: []TypeTag{TagAction}, Cost: Cost{Treasure: 4}}
	m.defs[def.Key] = def
	return m, m.addCard(def, NoOwner)
}

func TestApplyFoldsAndClampsAtZero(t *testing.T) {
	m, c := priceFixture()

	m.Prices.Register("smithy", func(*Card, *Match) PriceChange { return PriceChange{Treasure: -3} })
	m.Prices.Register("smithy", func(*Card, *Match) PriceChange { return PriceChange{Treasure: -2} })

	cost, restricted := m.Prices.Apply(c, m)
	assert.False(t, restricted)
	assert.Equal(t, 0, cost.Treasure, "cost never goes negative")
}

func TestUnsubscribeRemovesRule(t *testing.T) {
	m, c := priceFixture()

	cancel := m.Prices.Register("smithy", func(*Card, *Match) PriceChange { return PriceChange{Treasure: -2} })
	cost, _ := m.Prices.Apply(c, m)
	assert.Equal(t, 2, cost.Treasure)

	cancel()
	cost, _ = m.Prices.Apply(c, m)
	assert.Equal(t, 4, cost.Treasure)
}

func TestRestrictionORs(t *testing.T) {
	m, c := priceFixture()

	m.Prices.Register("smithy", func(*Card, *Match) PriceChange { return PriceChange{} })
	m.Prices.Register("smithy", func(*Card, *Match) PriceChange { return PriceChange{Restricted: true} })

	_, restricted := m.Prices.Apply(c, m)
	assert.True(t, restricted)
}

func TestAllCardsRuleAppliesToEveryKey(t *testing.T) {
	m, c := priceFixture()

	m.Prices.Register(AllCards, func(*Card, *Match) PriceChange { return PriceChange{Treasure: -1} })
	cost, _ := m.Prices.Apply(c, m)
	assert.Equal(t, 3, cost.Treasure)
}
