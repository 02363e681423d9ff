// snapshot.go - client state projection and diffing
//
// Clients receive a full snapshot on (re)connect and RFC 6902 patches after
// each dispatched action. The projection deliberately leaves out the match
// log, which travels as its own append-only event stream.
package game

// CardView is the client-facing shape of one card.
type CardView struct {
	ID    int    `json:"id"`
	Key   string `json:"key"`
	Name  string `json:"name"`
	Owner int    `json:"owner"`
	Cost  Cost   `json:"cost"`
}

// ZoneView is the client-facing shape of one zone.
type ZoneView struct {
	Zone   Zone  `json:"zone"`
	Player int   `json:"player"`
	Cards  []int `json:"cards"`
}

// Snapshot is the full projected match state.
type Snapshot struct {
	ID         string          `json:"id"`
	Players    []*Player       `json:"players"`
	Current    int             `json:"current"`
	Turn       int             `json:"turn"`
	Round      int             `json:"round"`
	Phase      Phase           `json:"phase"`
	Actions    int             `json:"actions"`
	Buys       int             `json:"buys"`
	Treasure   int             `json:"treasure"`
	Potions    int             `json:"potions"`
	Started    bool            `json:"started"`
	Finished   bool            `json:"finished"`
	Zones      []ZoneView      `json:"zones"`
	Cards      map[int]CardView `json:"cards"`
	Selectable map[int][]int   `json:"selectable"`
}

// TakeSnapshot projects the match into its client-facing shape. Effective
// card costs are baked in so the client never prices anything itself.
func TakeSnapshot(m *Match) *Snapshot {
	s := &Snapshot{
		ID:         m.ID,
		Players:    m.Players,
		Current:    m.Current,
		Turn:       m.Turn,
		Round:      m.Round,
		Phase:      m.CurrentPhase(),
		Actions:    m.Actions,
		Buys:       m.Buys,
		Treasure:   m.Treasure,
		Potions:    m.Potions,
		Started:    m.Started,
		Finished:   m.Finished,
		Cards:      make(map[int]CardView, len(m.cards)),
		Selectable: make(map[int][]int, len(m.Players)),
	}
	m.Locations.Each(func(name Zone, player int, seq []int) {
		s.Zones = append(s.Zones, ZoneView{Zone: name, Player: player, Cards: append([]int{}, seq...)})
	})
	for id, c := range m.cards {
		cost, _ := m.Prices.Apply(c, m)
		s.Cards[id] = CardView{ID: c.ID, Key: c.Key, Name: c.Def.Name, Owner: c.Owner, Cost: cost}
	}
	for p, ids := range m.Selectable {
		s.Selectable[p] = append([]int{}, ids...)
	}
	return s
}
