// match.go - the Match aggregate
package game

import (
	"math/rand"

	"github.com/google/uuid"
)

// Phase is a step of a player's turn. The phase list is fixed and cyclic.
type Phase string

const (
	PhaseAction  Phase = "action"
	PhaseBuy     Phase = "buy"
	PhaseCleanup Phase = "cleanup"
)

// phaseOrder is the fixed turn structure. nextPhase walks it cyclically.
var phaseOrder = []Phase{PhaseAction, PhaseBuy, PhaseCleanup}

// Player is one seat in a match.
type Player struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// StatCount tracks one kind of card event keyed by turn and by card key.
type StatCount struct {
	Total  int            `json:"total"`
	ByTurn map[int]int    `json:"byTurn"`
	ByCard map[string]int `json:"byCard"`
}

func newStatCount() *StatCount {
	return &StatCount{ByTurn: make(map[int]int), ByCard: make(map[string]int)}
}

func (s *StatCount) add(turn int, key string) {
	s.Total++
	s.ByTurn[turn]++
	s.ByCard[key]++
}

// Stats are the running per-match counters.
type Stats struct {
	Played  *StatCount `json:"played"`
	Gained  *StatCount `json:"gained"`
	Bought  *StatCount `json:"bought"`
	Trashed *StatCount `json:"trashed"`
}

// ZoneHook runs when a card enters or leaves a zone. Hooks are how content
// attaches persistent abilities: a reaction card entering the hand registers
// its reaction, leaving the hand removes it.
type ZoneHook func(m *Match, c *Card)

type hookKey struct {
	cardKey string
	zone    Zone
}

// Match is the aggregate root: all state for one game session. It is mutated
// exclusively through the action dispatch layer.
type Match struct {
	ID      string
	Players []*Player
	Current int // index into Players of the turn holder

	Turn   int // total player-turns taken, 1-based once started
	Round  int // full rotations through the player list
	Phase  int // index into phaseOrder

	// Per-turn resource counters, reset when a player's action phase begins.
	Actions  int
	Buys     int
	Treasure int
	Potions  int

	Locations *Locations
	Prices    *Prices
	Stats     *Stats

	// Selectable holds, per player, the card ids that player may click right
	// now. Recomputed after every dispatch.
	Selectable map[int][]int

	Log []LogEntry

	Started  bool
	Finished bool

	// BoughtThisTurn gates hand-treasure interactivity in the buy phase.
	BoughtThisTurn bool

	cards    map[int]*Card
	defs     map[string]*CardDef
	nextCard int

	// playedTurn records the turn number a card instance was last played,
	// which is what decides duration-card handling at cleanup.
	playedTurn map[int]int

	// pileKeys are the supply/kingdom piles present at setup, in order.
	// Game-end detection counts the empty ones.
	pileKeys []string

	// Constructor-injected per-match override tables (no package globals, so
	// matches stay isolated).
	enterHooks map[hookKey][]ZoneHook
	exitHooks  map[hookKey][]ZoneHook
	canBuy     map[string]func(m *Match, player int) bool
	scoring    []func(m *Match, player int) int

	rng *rand.Rand
}

// NewMatch creates an unstarted match for the given player names. The card
// library and zone contents are filled in by Setup.
func NewMatch(names []string, seed int64) *Match {
	players := make([]*Player, len(names))
	for i, n := range names {
		players[i] = &Player{Index: i, Name: n}
	}
	if seed == 0 {
		seed = int64(uuid.New().ID())
	}
	return &Match{
		ID:         uuid.NewString(),
		Players:    players,
		Locations:  NewLocations(),
		Prices:     NewPrices(),
		Stats:      &Stats{Played: newStatCount(), Gained: newStatCount(), Bought: newStatCount(), Trashed: newStatCount()},
		Selectable: make(map[int][]int),
		cards:      make(map[int]*Card),
		defs:       make(map[string]*CardDef),
		playedTurn: make(map[int]int),
		enterHooks: make(map[hookKey][]ZoneHook),
		exitHooks:  make(map[hookKey][]ZoneHook),
		canBuy:     make(map[string]func(*Match, int) bool),
		rng:        rand.New(rand.NewSource(seed)),
	}
}

// CurrentPhase returns the phase the match is in.
func (m *Match) CurrentPhase() Phase { return phaseOrder[m.Phase] }

// CurrentPlayer returns the turn holder.
func (m *Match) CurrentPlayer() *Player { return m.Players[m.Current] }

// OnEnterZone registers a lifecycle hook for a card key entering a zone.
func (m *Match) OnEnterZone(cardKey string, zone Zone, hook ZoneHook) {
	k := hookKey{cardKey, zone}
	m.enterHooks[k] = append(m.enterHooks[k], hook)
}

// OnExitZone registers a lifecycle hook for a card key leaving a zone.
func (m *Match) OnExitZone(cardKey string, zone Zone, hook ZoneHook) {
	k := hookKey{cardKey, zone}
	m.exitHooks[k] = append(m.exitHooks[k], hook)
}

// RestrictBuy installs a per-card-key purchase predicate consulted by the
// interactivity calculator.
func (m *Match) RestrictBuy(cardKey string, fn func(m *Match, player int) bool) {
	m.canBuy[cardKey] = fn
}

// AddScorer appends an extra scoring function run at game end in addition to
// printed victory points.
func (m *Match) AddScorer(fn func(m *Match, player int) int) {
	m.scoring = append(m.scoring, fn)
}

// PlayedOn returns the turn a card instance was last played, 0 if never.
func (m *Match) PlayedOn(cardID int) int { return m.playedTurn[cardID] }

// PileCount returns how many cards with the given key remain in the supply
// and kingdom zones.
func (m *Match) PileCount(key string) int {
	n := 0
	for _, zone := range []Zone{ZoneSupply, ZoneKingdom} {
		for _, id := range *m.Locations.Source(zone, NoOwner) {
			if m.cards[id].Key == key {
				n++
			}
		}
	}
	return n
}

// PileTops returns the topmost card of every non-empty supply and kingdom
// pile, in pile order. Effects that gain "a card costing up to N" filter this.
func (m *Match) PileTops() []*Card {
	tops := make([]*Card, 0, len(m.pileKeys))
	for _, key := range m.pileKeys {
		if c, ok := m.topOfPile(key); ok {
			tops = append(tops, c)
		}
	}
	return tops
}

// topOfPile returns the topmost supply/kingdom card with the given key.
func (m *Match) topOfPile(key string) (*Card, bool) {
	for _, zone := range []Zone{ZoneKingdom, ZoneSupply} {
		seq := *m.Locations.Source(zone, NoOwner)
		for i := len(seq) - 1; i >= 0; i-- {
			if c := m.cards[seq[i]]; c.Key == key {
				return c, true
			}
		}
	}
	return nil, false
}

// emptyPiles counts supply piles that started the game non-empty and are now
// exhausted.
func (m *Match) emptyPiles() int {
	n := 0
	for _, key := range m.pileKeys {
		if m.PileCount(key) == 0 {
			n++
		}
	}
	return n
}

// GameOver reports whether an end condition holds: the province pile is
// empty, or three supply piles are.
func (m *Match) GameOver() bool {
	if m.hasPile("province") && m.PileCount("province") == 0 {
		return true
	}
	return m.emptyPiles() >= 3
}

func (m *Match) hasPile(key string) bool {
	for _, k := range m.pileKeys {
		if k == key {
			return true
		}
	}
	return false
}
