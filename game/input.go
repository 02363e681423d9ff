// input.go - the two suspending actions
//
// selectCard and userPrompt are the only places the engine stops for a
// player. They park the current run under a fresh signal id and return once
// the correlated userInputReceived event arrives. Toward the requesting
// player they never silently fail: they either resolve or stay pending.
package game

import (
	"encoding/json"
	"fmt"
	"time"
)

// newSignal builds an opaque correlation token for one suspension.
func newSignal(player int) string {
	return fmt.Sprintf("%d:%d", player, time.Now().UnixNano())
}

// selectCard asks a player to pick Count cards out of Eligible. If the
// choice is forced (eligible ≤ required and not optional) it resolves
// immediately without contacting the client. Reads Player, Eligible, Count,
// Optional, Prompt. Returns []int.
func selectCard(rc *Run, inv Invocation) (any, error) {
	count := defaultCount(inv.Count)
	eligible := append([]int(nil), inv.Eligible...)

	if len(eligible) == 0 {
		return []int{}, nil
	}
	// No-choice shortcut: everything eligible must be taken anyway.
	if !inv.Optional && len(eligible) <= count {
		return eligible, nil
	}

	ch := rc.C.channel(inv.Player)
	if ch == nil {
		// No socket for the addressed player: treat as "no response" rather
		// than hanging the match.
		rc.C.log.Warn().Int("player", inv.Player).Msg("selectCard: no channel, empty selection")
		return []int{}, nil
	}

	signal := newSignal(inv.Player)
	rc.C.setWaiting(inv.Player)
	ch.Emit("selectCards", map[string]any{
		"signal":   signal,
		"eligible": eligible,
		"count":    count,
		"optional": inv.Optional,
		"prompt":   inv.Prompt,
	})
	input := rc.Await(signal, inv.Player)
	rc.C.clearWaiting()

	picked := parseCardIDs(input)
	// A malformed payload is an empty selection, not an error.
	valid := make([]int, 0, len(picked))
	for _, id := range picked {
		if len(valid) == count {
			break
		}
		for _, e := range eligible {
			if e == id {
				valid = append(valid, id)
				break
			}
		}
	}
	return valid, nil
}

// userPrompt asks a player to choose one option. Choice id 0 always means
// decline. Reads Player, Prompt, Choices. Returns int.
func userPrompt(rc *Run, inv Invocation) (any, error) {
	ch := rc.C.channel(inv.Player)
	if ch == nil {
		rc.C.log.Warn().Int("player", inv.Player).Msg("userPrompt: no channel, declining")
		return 0, nil
	}

	signal := newSignal(inv.Player)
	rc.C.setWaiting(inv.Player)
	ch.Emit("userPrompt", map[string]any{
		"signal":  signal,
		"prompt":  inv.Prompt,
		"choices": inv.Choices,
	})
	input := rc.Await(signal, inv.Player)
	rc.C.clearWaiting()

	return parseChoice(input), nil
}

// parseCardIDs accepts whatever shape the transport delivered ([]int from
// tests, decoded JSON from the wire) and extracts card ids. Anything
// unreadable yields nil.
func parseCardIDs(input any) []int {
	switch v := input.(type) {
	case []int:
		return v
	case []any:
		ids := make([]int, 0, len(v))
		for _, e := range v {
			if f, ok := e.(float64); ok {
				ids = append(ids, int(f))
			}
		}
		return ids
	case json.RawMessage:
		var ids []int
		if err := json.Unmarshal(v, &ids); err != nil {
			return nil
		}
		return ids
	default:
		return nil
	}
}

func parseChoice(input any) int {
	switch v := input.(type) {
	case int:
		return v
	case float64:
		return int(v)
	case json.RawMessage:
		var n int
		if err := json.Unmarshal(v, &n); err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}
