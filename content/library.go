// library.go - the card content library
//
// Card templates live in a JSON database on disk; behaviors too stateful for
// a script (Moat's immunity, purchase restrictions) are bound in Go when a
// match is created. The library is safe to share across matches and survives
// reloads: a reload affects matches created afterwards, never running ones.
package content

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"provinces/game"
)

// Binder attaches card behavior to a freshly created match.
type Binder func(m *game.Match, c *game.Controller) error

// Library implements game.ContentSource from a JSON card database.
type Library struct {
	path string
	log  zerolog.Logger

	mu      sync.RWMutex
	defs    []*game.CardDef
	byKey   map[string]*game.CardDef
	binders []Binder
}

// Load reads the card database and installs the base-set Go abilities.
func Load(path string, log zerolog.Logger) (*Library, error) {
	l := &Library{
		path: path,
		log:  log.With().Str("component", "content").Logger(),
	}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	registerBaseAbilities(l)
	return l, nil
}

// Reload re-reads the card database from disk.
func (l *Library) Reload() error {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		return fmt.Errorf("content: read %s: %w", l.path, err)
	}
	var defs []*game.CardDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("content: parse %s: %w", l.path, err)
	}
	byKey := make(map[string]*game.CardDef, len(defs))
	for _, def := range defs {
		if def.Key == "" {
			return fmt.Errorf("content: card with empty key in %s", l.path)
		}
		if _, dup := byKey[def.Key]; dup {
			return fmt.Errorf("content: duplicate card key %q", def.Key)
		}
		byKey[def.Key] = def
	}

	l.mu.Lock()
	l.defs = defs
	l.byKey = byKey
	l.mu.Unlock()
	l.log.Info().Int("cards", len(defs)).Msg("card database loaded")
	return nil
}

// Defs returns the card templates for a new match.
func (l *Library) Defs() []*game.CardDef {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]*game.CardDef(nil), l.defs...)
}

// Def looks up one template by key.
func (l *Library) Def(key string) (*game.CardDef, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	d, ok := l.byKey[key]
	return d, ok
}

// AddBinder registers extra match-creation behavior, for expansions loaded
// alongside the base set.
func (l *Library) AddBinder(b Binder) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.binders = append(l.binders, b)
}

// Bind wires all registered behaviors into a new match.
func (l *Library) Bind(m *game.Match, c *game.Controller) error {
	l.mu.RLock()
	binders := append([]Binder(nil), l.binders...)
	l.mu.RUnlock()
	for _, b := range binders {
		if err := b(m, c); err != nil {
			return err
		}
	}
	return nil
}

// KingdomKeys lists the keys of all non-base piles in the database.
func (l *Library) KingdomKeys() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var keys []string
	for _, def := range l.defs {
		if !def.Base && def.Pile > 0 {
			keys = append(keys, def.Key)
		}
	}
	return keys
}

// RandomKingdom picks n distinct kingdom piles for a new match.
func (l *Library) RandomKingdom(n int, rng *rand.Rand) []string {
	keys := l.KingdomKeys()
	rng.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })
	if n > len(keys) {
		n = len(keys)
	}
	return keys[:n]
}
