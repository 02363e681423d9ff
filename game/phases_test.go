package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartOpensFirstTurnAndAutoAdvances(t *testing.T) {
	c, _ := newTestGame(t, "ann", "bob")
	require.NoError(t, c.Start())

	m := c.M
	assert.Equal(t, 0, m.Current)
	assert.Equal(t, 1, m.Turn)
	assert.Equal(t, 1, m.Round)
	// The opening hand holds only treasures and victory cards, so the action
	// phase is skipped straight into buy.
	assert.Equal(t, PhaseBuy, m.CurrentPhase())
	assert.Equal(t, 1, m.Buys)
}

func TestStartTwiceFails(t *testing.T) {
	c, _ := newTestGame(t, "ann", "bob")
	require.NoError(t, c.Start())
	assert.Error(t, c.Start())
}

func TestEndPhaseCyclesThroughPlayers(t *testing.T) {
	c, _ := newTestGame(t, "ann", "bob")
	require.NoError(t, c.Start())
	m := c.M
	before := totalCards(m)

	require.NoError(t, c.OnEndPhase(0))
	assert.Equal(t, 1, m.Current)
	assert.Equal(t, 2, m.Turn)
	assert.Equal(t, 1, m.Round)
	assert.Equal(t, PhaseBuy, m.CurrentPhase())
	assert.Len(t, *m.Locations.Source(ZoneHand, 0), 5, "cleanup redraws a fresh hand")
	assert.Empty(t, *m.Locations.Source(ZonePlay, 0))

	require.NoError(t, c.OnEndPhase(1))
	assert.Equal(t, 0, m.Current)
	assert.Equal(t, 3, m.Turn)
	assert.Equal(t, 2, m.Round, "round advances once per full rotation")
	assert.Equal(t, before, totalCards(m), "phase cycling conserves cards")
}

func TestEndPhaseValidation(t *testing.T) {
	c, _ := newTestGame(t, "ann", "bob")
	require.NoError(t, c.Start())

	assert.ErrorIs(t, c.OnEndPhase(1), ErrNotYourTurn)
}

func TestRoundIncrementsOncePerRotationOfThree(t *testing.T) {
	c, _ := newTestGame(t, "ann", "bob", "cam")
	require.NoError(t, c.Start())
	m := c.M

	for turn := 0; turn < 6; turn++ {
		require.NoError(t, c.OnEndPhase(m.Current))
	}
	assert.Equal(t, 7, m.Turn)
	assert.Equal(t, 3, m.Round)
	assert.Equal(t, 0, m.Current)
}

func TestDurationCardSpansTwoTurns(t *testing.T) {
	c, _ := newTestGame(t, "ann", "bob")
	rat := giveCard(t, c.M, "wharfRat", 0, ZoneHand)
	require.NoError(t, c.Start())
	m := c.M

	assert.Equal(t, PhaseAction, m.CurrentPhase(), "an action card in hand keeps the phase open")
	require.NoError(t, c.OnTap(0, rat.ID))

	p, err := m.Locations.FindCard(rat.ID)
	require.NoError(t, err)
	assert.Equal(t, ZonePlay, p.Zone)
	assert.Equal(t, m.Turn, m.PlayedOn(rat.ID))
	// Spending the last action auto-advanced into buy.
	assert.Equal(t, PhaseBuy, m.CurrentPhase())

	// End the turn: the duration card is held over instead of discarded.
	require.NoError(t, c.OnEndPhase(0))
	p, err = m.Locations.FindCard(rat.ID)
	require.NoError(t, err)
	assert.Equal(t, ZoneDurations, p.Zone)

	// Bob plays through; ann's next turn returns the card to play.
	require.NoError(t, c.OnEndPhase(1))
	p, err = m.Locations.FindCard(rat.ID)
	require.NoError(t, err)
	assert.Equal(t, ZonePlay, p.Zone)
}

func TestEndPhaseAfterMatchOver(t *testing.T) {
	c, _ := newTestGame(t, "ann", "bob")
	require.NoError(t, c.Start())
	c.M.Finished = true
	assert.ErrorIs(t, c.OnEndPhase(0), ErrMatchOver)
}
