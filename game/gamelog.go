// gamelog.go - the structured match log shown to players
package game

// LogEntry is one line of the match log. Root entries start a turn; Depth
// nests effect consequences under the action that caused them.
type LogEntry struct {
	Seq    int    `json:"seq"`
	Turn   int    `json:"turn"`
	Round  int    `json:"round"`
	Player int    `json:"player"` // NoOwner for root entries
	Depth  int    `json:"depth"`
	Action string `json:"action,omitempty"`
	Card   int    `json:"card,omitempty"`
	Text   string `json:"text"`
}

// Event is an outbound transport message. Payloads stay loosely typed maps;
// the client owns their shape.
type Event struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// PlayerChannel is the abstract bidirectional event channel to one player.
// The engine only emits; inbound events arrive through the Controller's
// handler methods, correlated by player index.
type PlayerChannel interface {
	Emit(event string, data map[string]any)
}
