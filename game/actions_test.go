package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runAction drives one action through a fresh top-level run to completion.
func runAction(t *testing.T, c *Controller, action string, inv Invocation) (any, error) {
	t.Helper()
	out := c.Pipeline.Start(inv.Player, nil, func(rc *Run) (any, error) {
		return rc.Do(action, inv)
	}, nil)
	require.True(t, out.Done, "action %s unexpectedly suspended", action)
	return out.Result, out.Err
}

func TestMoveCardToImpersonalZoneClearsOwner(t *testing.T) {
	c, _ := newTestGame(t, "ann", "bob")
	card := giveCard(t, c.M, "estate", 0, ZoneHand)

	_, err := runAction(t, c, "moveCard", Invocation{Card: card.ID, To: ZoneTrash})
	require.NoError(t, err)

	p, err := c.M.Locations.FindCard(card.ID)
	require.NoError(t, err)
	assert.Equal(t, ZoneTrash, p.Zone)
	assert.Equal(t, NoOwner, card.Owner)
}

func TestMoveCardUnknownIDFails(t *testing.T) {
	c, _ := newTestGame(t, "ann", "bob")
	_, err := runAction(t, c, "moveCard", Invocation{Card: 9999, To: ZoneTrash})
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestDrawReshufflesDiscardWhenDeckRunsDry(t *testing.T) {
	c, chans := newTestGame(t, "ann", "bob")
	m := c.M

	// Empty the deck into the discard pile.
	deck := m.Locations.Source(ZoneDeck, 0)
	discard := m.Locations.Source(ZoneDiscard, 0)
	*discard = append(*discard, *deck...)
	*deck = (*deck)[:0]
	handBefore := len(*m.Locations.Source(ZoneHand, 0))

	result, err := runAction(t, c, "drawCard", Invocation{Player: 0, Count: 3})
	require.NoError(t, err)
	assert.Len(t, result, 3)
	assert.Len(t, *m.Locations.Source(ZoneHand, 0), handBefore+3)

	found := false
	for _, e := range chans[0].events {
		if e.Type == "log" && e.Data["action"] == "shuffleDeck" {
			found = true
		}
	}
	assert.True(t, found, "reshuffle must be logged")
}

func TestDrawStopsWhenNothingLeft(t *testing.T) {
	c, _ := newTestGame(t, "ann", "bob")
	m := c.M

	deck := m.Locations.Source(ZoneDeck, 0)
	drained := len(*deck)

	result, err := runAction(t, c, "drawCard", Invocation{Player: 0, Count: drained + 5})
	require.NoError(t, err)
	assert.Len(t, result, drained, "draw past exhaustion is truncated, not an error")
}

func TestGainCardFromEmptyPileIsNoop(t *testing.T) {
	c, _ := newTestGame(t, "ann", "bob")
	before := totalCards(c.M)

	result, err := runAction(t, c, "gainCard", Invocation{Player: 0, Key: "witch"})
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, before, totalCards(c.M))
}

func TestGainCardDefaultsToDiscard(t *testing.T) {
	c, _ := newTestGame(t, "ann", "bob")
	m := c.M

	result, err := runAction(t, c, "gainCard", Invocation{Player: 1, Key: "silver"})
	require.NoError(t, err)
	id := result.(int)
	p, err := m.Locations.FindCard(id)
	require.NoError(t, err)
	assert.Equal(t, ZoneDiscard, p.Zone)
	assert.Equal(t, 1, p.Player)
	assert.Equal(t, 1, m.Stats.Gained.Total)
}

func TestBuyCardValidations(t *testing.T) {
	c, _ := newTestGame(t, "ann", "bob")
	require.NoError(t, c.Start())
	m := c.M
	silver, ok := m.topOfPile("silver")
	require.True(t, ok)

	tests := []struct {
		name    string
		prepare func()
		wantErr string
	}{
		{
			name:    "cannot afford",
			prepare: func() { m.Buys, m.Treasure = 1, 2 },
			wantErr: "cannot afford",
		},
		{
			name:    "no buys",
			prepare: func() { m.Buys, m.Treasure = 0, 9 },
			wantErr: "no buys",
		},
		{
			name: "restricted",
			prepare: func() {
				m.Buys, m.Treasure = 1, 9
				m.Prices.Register("silver", func(*Card, *Match) PriceChange { return PriceChange{Restricted: true} })
			},
			wantErr: "cannot be bought",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepare()
			_, err := runAction(t, c, "buyCard", Invocation{Player: 0, Card: silver.ID})
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestBuyCardSpendsAndGains(t *testing.T) {
	c, _ := newTestGame(t, "ann", "bob")
	require.NoError(t, c.Start())
	m := c.M
	m.Buys, m.Treasure = 2, 5
	silver, ok := m.topOfPile("silver")
	require.True(t, ok)

	gained, err := runAction(t, c, "buyCard", Invocation{Player: 0, Card: silver.ID})
	require.NoError(t, err)

	assert.Equal(t, 1, m.Buys)
	assert.Equal(t, 2, m.Treasure)
	assert.True(t, m.BoughtThisTurn)
	assert.Equal(t, 1, m.Stats.Bought.Total)
	p, err := m.Locations.FindCard(gained.(int))
	require.NoError(t, err)
	assert.Equal(t, ZoneDiscard, p.Zone)
	assert.Equal(t, 0, p.Player)
}

func TestPlayActionOutsideActionPhaseFails(t *testing.T) {
	c, _ := newTestGame(t, "ann", "bob")
	card := giveCard(t, c.M, "smithy", 0, ZoneHand)
	require.NoError(t, c.Start())
	require.NoError(t, c.OnEndPhase(0)) // into buy

	_, err := runAction(t, c, "playCard", Invocation{Player: 0, Card: card.ID})
	assert.ErrorContains(t, err, "outside the action phase")
}

func TestPlayActionWithoutActionsFails(t *testing.T) {
	c, _ := newTestGame(t, "ann", "bob")
	card := giveCard(t, c.M, "smithy", 0, ZoneHand)
	require.NoError(t, c.Start())
	c.M.Actions = 0

	_, err := runAction(t, c, "playCard", Invocation{Player: 0, Card: card.ID})
	assert.ErrorContains(t, err, "no actions remaining")
}

func TestPlayCardRunsEffectAsSubRun(t *testing.T) {
	c, _ := newTestGame(t, "ann", "bob")
	card := giveCard(t, c.M, "smithy", 0, ZoneHand)
	require.NoError(t, c.Start())
	m := c.M
	handBefore := len(*m.Locations.Source(ZoneHand, 0))

	_, err := runAction(t, c, "playCard", Invocation{Player: 0, Card: card.ID})
	require.NoError(t, err)

	// Smithy itself left the hand, three cards came in.
	assert.Len(t, *m.Locations.Source(ZoneHand, 0), handBefore-1+3)
	assert.Equal(t, 0, m.Actions)
	assert.Equal(t, 1, m.Stats.Played.Total)
	p, err := m.Locations.FindCard(card.ID)
	require.NoError(t, err)
	assert.Equal(t, ZonePlay, p.Zone)
}

func TestPlayTreasureAddsItsValue(t *testing.T) {
	c, _ := newTestGame(t, "ann", "bob")
	gold := giveCard(t, c.M, "gold", 0, ZoneHand)
	require.NoError(t, c.Start())
	m := c.M
	require.Equal(t, PhaseBuy, m.CurrentPhase())
	m.Treasure = 0

	_, err := runAction(t, c, "playCard", Invocation{Player: 0, Card: gold.ID})
	require.NoError(t, err)
	assert.Equal(t, 3, m.Treasure)
}
