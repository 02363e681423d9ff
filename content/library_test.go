package content

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"provinces/game"
)

func TestLoadShippedDatabase(t *testing.T) {
	l, err := Load("../data/cards.json", zerolog.Nop())
	require.NoError(t, err)

	for _, key := range []string{"copper", "silver", "gold", "estate", "duchy", "province", "curse"} {
		d, ok := l.Def(key)
		require.True(t, ok, "base card %s missing", key)
		assert.True(t, d.Base, "%s belongs to the base supply", key)
	}

	kingdom := l.KingdomKeys()
	assert.GreaterOrEqual(t, len(kingdom), 10, "enough piles for a full kingdom")
	for _, key := range kingdom {
		d, _ := l.Def(key)
		assert.False(t, d.Base)
		assert.Positive(t, d.Pile)
		if d.Is(game.TagAction) {
			assert.NotEmpty(t, d.Script, "action card %s has no effect", key)
		}
	}

	moat, ok := l.Def("moat")
	require.True(t, ok)
	assert.True(t, moat.Is(game.TagReaction))
	gardens, ok := l.Def("gardens")
	require.True(t, ok)
	assert.Empty(t, gardens.Script, "gardens scores in Go, not lua")
}

func TestLoadTestdata(t *testing.T) {
	l, err := Load("testdata/cards.json", zerolog.Nop())
	require.NoError(t, err)

	assert.Len(t, l.Defs(), 3)
	smithy, ok := l.Def("smithy")
	require.True(t, ok)
	assert.Equal(t, "draw(3)", smithy.Script)
	assert.Equal(t, 4, smithy.Cost.Treasure)
	assert.Equal(t, []string{"smithy"}, l.KingdomKeys())
}

func TestReloadKeepsOldDefsOnBadInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cards.json")
	good := `[{"key": "copper", "name": "Copper", "types": ["TREASURE"], "treasure": 1, "pile": 60, "base": true}]`
	require.NoError(t, os.WriteFile(path, []byte(good), 0o644))

	l, err := Load(path, zerolog.Nop())
	require.NoError(t, err)

	dup := `[{"key": "copper", "name": "Copper"}, {"key": "copper", "name": "Copper Again"}]`
	require.NoError(t, os.WriteFile(path, []byte(dup), 0o644))
	assert.Error(t, l.Reload())
	assert.Len(t, l.Defs(), 1, "failed reload leaves the library untouched")

	empty := `[{"key": "", "name": "Nameless"}]`
	require.NoError(t, os.WriteFile(path, []byte(empty), 0o644))
	assert.Error(t, l.Reload())
}

func TestRandomKingdomPicksDistinctPiles(t *testing.T) {
	l, err := Load("../data/cards.json", zerolog.Nop())
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(3))
	picked := l.RandomKingdom(10, rng)
	require.Len(t, picked, 10)

	seen := map[string]bool{}
	for _, key := range picked {
		assert.False(t, seen[key], "%s picked twice", key)
		seen[key] = true
		_, ok := l.Def(key)
		assert.True(t, ok)
	}

	all := l.RandomKingdom(1000, rng)
	assert.Len(t, all, len(l.KingdomKeys()), "request larger than the database is capped")
}

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cards.json")
	one := `[{"key": "copper", "name": "Copper", "types": ["TREASURE"], "treasure": 1, "pile": 60, "base": true}]`
	require.NoError(t, os.WriteFile(path, []byte(one), 0o644))

	l, err := Load(path, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, l.Watch(ctx))

	two := `[
		{"key": "copper", "name": "Copper", "types": ["TREASURE"], "treasure": 1, "pile": 60, "base": true},
		{"key": "smithy", "name": "Smithy", "types": ["ACTION"], "cost": {"treasure": 4}, "pile": 10, "script": "draw(3)"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(two), 0o644))

	require.Eventually(t, func() bool {
		_, ok := l.Def("smithy")
		return ok
	}, 3*time.Second, 20*time.Millisecond, "write should trigger a reload")
}
