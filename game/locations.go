// locations.go - the card location store
//
// Every zone is an ordered sequence of card ids. A card id appears in exactly
// one zone at any instant: movement is remove-then-append and only moveCard
// performs it. This file is the referee for that invariant.
package game

import "fmt"

// Zone names a card location. Per-player zones are parameterized by player
// index; impersonal zones use NoOwner.
type Zone string

const (
	ZoneSupply    Zone = "supply"
	ZoneKingdom   Zone = "kingdom"
	ZoneTrash     Zone = "trash"
	ZonePlay      Zone = "play"
	ZoneSetAside  Zone = "setAside"
	ZoneHand      Zone = "hand"
	ZoneDeck      Zone = "deck"
	ZoneDiscard   Zone = "discard"
	ZoneDurations Zone = "durations" // duration cards carried across turns
)

type zoneKey struct {
	name   Zone
	player int
}

func (k zoneKey) String() string {
	if k.player == NoOwner {
		return string(k.name)
	}
	return fmt.Sprintf("%s/%d", k.name, k.player)
}

// Placement is the answer to "where is card X".
type Placement struct {
	Zone   Zone
	Player int
	Seq    *[]int // the live sequence holding the card
	Index  int
}

// Locations is the registry of all zones in a match.
type Locations struct {
	zones map[zoneKey]*[]int
	order []zoneKey // registration order, kept for deterministic scans
}

// NewLocations returns an empty zone registry.
func NewLocations() *Locations {
	return &Locations{zones: make(map[zoneKey]*[]int)}
}

// RegisterZone creates a zone exactly once. Registering the same zone twice
// is a programming error and panics.
func (l *Locations) RegisterZone(name Zone, player int, ids []int) {
	key := zoneKey{name, player}
	if _, dup := l.zones[key]; dup {
		panic(fmt.Sprintf("locations: zone %s registered twice", key))
	}
	seq := append([]int(nil), ids...)
	l.zones[key] = &seq
	l.order = append(l.order, key)
}

// Source returns the live mutable sequence for a zone. Requesting an
// unregistered zone is a programming error and panics.
func (l *Locations) Source(name Zone, player int) *[]int {
	key := zoneKey{name, player}
	seq, ok := l.zones[key]
	if !ok {
		panic(fmt.Sprintf("locations: unknown zone %s", key))
	}
	return seq
}

// Has reports whether a zone is registered.
func (l *Locations) Has(name Zone, player int) bool {
	_, ok := l.zones[zoneKey{name, player}]
	return ok
}

// FindCard scans every zone for the card id. Every card must always be
// located somewhere; not finding it means the movement invariant broke.
func (l *Locations) FindCard(id int) (Placement, error) {
	for _, key := range l.order {
		seq := l.zones[key]
		for i, c := range *seq {
			if c == id {
				return Placement{Zone: key.name, Player: key.player, Seq: seq, Index: i}, nil
			}
		}
	}
	return Placement{}, fmt.Errorf("%w: card %d in no zone", ErrCardNotFound, id)
}

// remove deletes the card from its current zone, preserving order.
func (l *Locations) remove(p Placement) {
	seq := *p.Seq
	*p.Seq = append(seq[:p.Index], seq[p.Index+1:]...)
}

// appendTo pushes the card onto the end (top) of a zone.
func (l *Locations) appendTo(name Zone, player, id int) {
	seq := l.Source(name, player)
	*seq = append(*seq, id)
}

// Counts returns the number of cards per zone, keyed by zone string. Used by
// snapshots and by the movement-invariant checks in tests.
func (l *Locations) Counts() map[string]int {
	counts := make(map[string]int, len(l.order))
	for _, key := range l.order {
		counts[key.String()] = len(*l.zones[key])
	}
	return counts
}

// Each visits every zone in registration order.
func (l *Locations) Each(fn func(name Zone, player int, seq []int)) {
	for _, key := range l.order {
		fn(key.name, key.player, *l.zones[key])
	}
}
