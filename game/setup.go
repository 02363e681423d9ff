// setup.go - match setup
package game

import "fmt"

const (
	startingCopper = 7
	startingEstate = 3
	openingHand    = 5
)

// Setup registers every zone, builds the supply and kingdom piles, and deals
// each player their starting deck of seven copper and three estates. The
// kingdom list names which non-base piles are in play this match.
func Setup(m *Match, defs []*CardDef, kingdom []string) error {
	if m.Started {
		return fmt.Errorf("match %s already set up", m.ID)
	}
	for _, def := range defs {
		m.defs[def.Key] = def
	}

	m.Locations.RegisterZone(ZoneSupply, NoOwner, nil)
	m.Locations.RegisterZone(ZoneKingdom, NoOwner, nil)
	m.Locations.RegisterZone(ZoneTrash, NoOwner, nil)
	for p := range m.Players {
		for _, z := range []Zone{ZoneHand, ZoneDeck, ZoneDiscard, ZonePlay, ZoneSetAside, ZoneDurations} {
			m.Locations.RegisterZone(z, p, nil)
		}
	}

	for _, def := range defs {
		if def.Base && def.Pile > 0 {
			fillPile(m, ZoneSupply, def)
			m.pileKeys = append(m.pileKeys, def.Key)
		}
	}
	for _, key := range kingdom {
		def, ok := m.defs[key]
		if !ok {
			return fmt.Errorf("setup: unknown kingdom card %q", key)
		}
		if def.Pile == 0 {
			return fmt.Errorf("setup: card %q has no pile size", key)
		}
		fillPile(m, ZoneKingdom, def)
		m.pileKeys = append(m.pileKeys, def.Key)
	}

	copper, ok := m.defs["copper"]
	if !ok {
		return fmt.Errorf("setup: base set has no copper")
	}
	estate, ok := m.defs["estate"]
	if !ok {
		return fmt.Errorf("setup: base set has no estate")
	}
	for p := range m.Players {
		deck := m.Locations.Source(ZoneDeck, p)
		for i := 0; i < startingCopper; i++ {
			*deck = append(*deck, m.addCard(copper, p).ID)
		}
		for i := 0; i < startingEstate; i++ {
			*deck = append(*deck, m.addCard(estate, p).ID)
		}
		m.rng.Shuffle(len(*deck), func(i, j int) {
			(*deck)[i], (*deck)[j] = (*deck)[j], (*deck)[i]
		})
		hand := m.Locations.Source(ZoneHand, p)
		for i := 0; i < openingHand; i++ {
			top := (*deck)[len(*deck)-1]
			*deck = (*deck)[:len(*deck)-1]
			*hand = append(*hand, top)
		}
	}
	return nil
}

// fillPile mints the pile's cards into a shared zone. Victory and curse pile
// sizes scale with the player count; everything else uses the printed size.
func fillPile(m *Match, zone Zone, def *CardDef) {
	count := def.Pile
	n := len(m.Players)
	if def.Is(TagVictory) && !def.Is(TagCurse) && n > 2 {
		count = 12
	}
	if def.Is(TagCurse) {
		count = 10 * (n - 1)
	}
	seq := m.Locations.Source(zone, NoOwner)
	for i := 0; i < count; i++ {
		*seq = append(*seq, m.addCard(def, NoOwner).ID)
	}
}
