// score.go - end-of-game scoring
package game

import "sort"

// Score is one player's final tally.
type Score struct {
	Player int `json:"player"`
	Points int `json:"points"`
}

// Scores totals printed victory points across every card a player owns, adds
// any registered extra scorers, and returns the tallies best first. Ties keep
// seat order, which favors the player who took fewer turns.
func Scores(m *Match) []Score {
	totals := make([]Score, len(m.Players))
	for p := range m.Players {
		totals[p] = Score{Player: p, Points: playerPoints(m, p)}
	}
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Points > totals[j].Points
	})
	return totals
}

func playerPoints(m *Match, player int) int {
	points := 0
	m.Locations.Each(func(name Zone, owner int, seq []int) {
		if owner != player {
			return
		}
		for _, id := range seq {
			points += m.cards[id].Def.VP
		}
	})
	for _, fn := range m.scoring {
		points += fn(m, player)
	}
	return points
}
