// manager.go - the multi-match registry
package game

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// ContentSource supplies card templates and binds their behavior (effects,
// lifecycle hooks, price rules) to a new match. The content package
// implements it from the JSON card database plus registered Go abilities.
type ContentSource interface {
	Defs() []*CardDef
	Bind(m *Match, c *Controller) error
}

// Manager owns the live controllers, one per match.
type Manager struct {
	mu     sync.RWMutex
	live   map[string]*Controller
	log    zerolog.Logger
	opts   []Option
	optsFn func() []Option
}

// NewManager returns an empty manager. The options are applied to every
// controller it creates.
func NewManager(log zerolog.Logger, opts ...Option) *Manager {
	return &Manager{live: make(map[string]*Controller), log: log, opts: opts}
}

// PerMatchOptions registers a factory for options that must be fresh per
// match, like a script engine: lua states are not safe to share between
// concurrently running matches.
func (mgr *Manager) PerMatchOptions(fn func() []Option) {
	mgr.optsFn = fn
}

// Create sets up a new match for the given players with the given kingdom and
// registers its controller. Seed 0 means random.
func (mgr *Manager) Create(names []string, seed int64, src ContentSource, kingdom []string) (*Controller, error) {
	if len(names) < 2 {
		return nil, fmt.Errorf("a match needs at least two players")
	}
	m := NewMatch(names, seed)
	opts := mgr.opts
	if mgr.optsFn != nil {
		opts = append(append([]Option(nil), opts...), mgr.optsFn()...)
	}
	c := NewController(m, mgr.log, opts...)
	if err := Setup(m, src.Defs(), kingdom); err != nil {
		return nil, err
	}
	if err := src.Bind(m, c); err != nil {
		return nil, err
	}

	mgr.mu.Lock()
	mgr.live[m.ID] = c
	mgr.mu.Unlock()
	mgr.log.Info().Str("match", m.ID).Strs("kingdom", kingdom).Msg("match created")
	return c, nil
}

// Get returns the controller for a match id.
func (mgr *Manager) Get(id string) (*Controller, bool) {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()
	c, ok := mgr.live[id]
	return c, ok
}

// Remove drops a finished match and releases its script engine.
func (mgr *Manager) Remove(id string) {
	mgr.mu.Lock()
	c, ok := mgr.live[id]
	delete(mgr.live, id)
	mgr.mu.Unlock()
	if ok && c.Scripts != nil {
		c.Scripts.Close()
	}
}

// List returns the ids of all live matches.
func (mgr *Manager) List() []string {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()
	ids := make([]string, 0, len(mgr.live))
	for id := range mgr.live {
		ids = append(ids, id)
	}
	return ids
}

// Count reports how many matches are live.
func (mgr *Manager) Count() int {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()
	return len(mgr.live)
}
