package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoresSumPrintedPointsAcrossZones(t *testing.T) {
	c, _ := newTestGame(t, "ann", "bob")
	m := c.M

	// Starting decks hold three estates each; spread extra points around.
	giveCard(t, m, "duchy", 0, ZoneDiscard)
	giveCard(t, m, "province", 1, ZoneDeck)
	giveCard(t, m, "curse", 1, ZoneHand)

	scores := Scores(m)
	assert.Equal(t, 1, scores[0].Player, "bob leads with 3+6-1")
	assert.Equal(t, 8, scores[0].Points)
	assert.Equal(t, 0, scores[1].Player)
	assert.Equal(t, 6, scores[1].Points)
}

func TestExtraScorersAreAdded(t *testing.T) {
	c, _ := newTestGame(t, "ann", "bob")
	m := c.M

	m.AddScorer(func(m *Match, p int) int {
		if p == 0 {
			return 10
		}
		return 0
	})
	scores := Scores(m)
	assert.Equal(t, 0, scores[0].Player)
	assert.Equal(t, 13, scores[0].Points)
}

func TestScoresTieKeepsSeatOrder(t *testing.T) {
	c, _ := newTestGame(t, "ann", "bob")
	scores := Scores(c.M)
	assert.Equal(t, 0, scores[0].Player)
	assert.Equal(t, scores[0].Points, scores[1].Points)
}
