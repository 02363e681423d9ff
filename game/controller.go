// controller.go - the match controller
//
// The controller owns one match and everything attached to it: the action
// dispatcher, the reaction registry, the effect pipeline, the lua runner and
// the player channels. All inbound events funnel through it under one mutex,
// so match state is only ever touched by one request at a time.
package game

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/wI2L/jsondiff"
)

// Metrics is the hook the controller reports through. The server wires a
// prometheus implementation; tests get the nop default.
type Metrics interface {
	ActionDispatched(name string)
	PromptOpened()
	PromptResolved()
}

type nopMetrics struct{}

func (nopMetrics) ActionDispatched(string) {}
func (nopMetrics) PromptOpened()           {}
func (nopMetrics) PromptResolved()         {}

// ScriptRunner executes a card's scripted effect body. The lua engine
// implements this; the controller stays ignorant of the scripting language.
type ScriptRunner interface {
	Run(rc *Run, c *Card, src string) (any, error)
	Close()
}

// Controller drives one match.
type Controller struct {
	M         *Match
	Dispatch  *Dispatcher
	Reactions *Reactions
	Pipeline  *Pipeline
	Scripts   ScriptRunner

	mu       sync.Mutex
	channels map[int]PlayerChannel
	effects  map[string]Script // Go card effects, keyed by card key
	waiting  int               // player a prompt is addressed to, NoOwner if none
	lastSnap []byte

	log     zerolog.Logger
	metrics Metrics
}

// Option configures a controller.
type Option func(*Controller)

// WithMetrics replaces the nop metrics sink.
func WithMetrics(m Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithScriptRunner attaches a script engine for content-defined card effects.
func WithScriptRunner(s ScriptRunner) Option {
	return func(c *Controller) { c.Scripts = s }
}

// NewController wires a controller around an already set up match.
func NewController(m *Match, log zerolog.Logger, opts ...Option) *Controller {
	c := &Controller{
		M:        m,
		channels: make(map[int]PlayerChannel),
		effects:  make(map[string]Script),
		waiting:  NoOwner,
		log:      log.With().Str("match", m.ID).Logger(),
		metrics:  nopMetrics{},
	}
	c.Dispatch = NewDispatcher(c.log)
	c.Reactions = NewReactions(c.log)
	c.Pipeline = newPipeline(c, c.log)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RegisterEffect installs a Go-implemented card effect. Content loading calls
// this for cards whose behavior cannot be expressed as a script.
func (c *Controller) RegisterEffect(cardKey string, fn Script) {
	c.effects[cardKey] = fn
}

// effectFor resolves a card's effect: a registered Go effect wins, otherwise
// the card's script body runs through the script engine.
func (c *Controller) effectFor(card *Card) (Script, bool) {
	if fn, ok := c.effects[card.Key]; ok {
		return fn, true
	}
	if card.Def.Script != "" && c.Scripts != nil {
		src := card.Def.Script
		return func(rc *Run) (any, error) {
			return c.Scripts.Run(rc, card, src)
		}, true
	}
	return nil, false
}

// Attach registers a player's channel and replays the current state to it.
func (c *Controller) Attach(player int, ch PlayerChannel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.channels[player] = ch
	c.sendFullState(player)
}

// Detach drops a player's channel. The match keeps running; prompts for a
// detached player stay parked until they reattach and answer.
func (c *Controller) Detach(player int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.channels, player)
}

// Start opens the match: the first player's action phase begins and the
// opening state goes out.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.M.Started {
		return fmt.Errorf("match %s already started", c.M.ID)
	}
	c.M.Started = true
	c.log.Info().Int("players", len(c.M.Players)).Msg("match started")

	out := c.Pipeline.Start(c.M.Current, nil, func(rc *Run) (any, error) {
		if err := beginTurn(rc); err != nil {
			return nil, err
		}
		return rc.Do("checkForRemainingPlayerActions", Invocation{})
	}, nil)
	if out.Done && out.Err != nil {
		return out.Err
	}
	return nil
}

// OnReady resends the complete state to one player: snapshot plus the full
// match log, and a re-emit of any prompt that player left unanswered.
func (c *Controller) OnReady(player int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sendFullState(player)
}

func (c *Controller) sendFullState(player int) {
	ch := c.channels[player]
	if ch == nil {
		return
	}
	snap := TakeSnapshot(c.M)
	raw, err := json.Marshal(snap)
	if err != nil {
		c.log.Error().Err(err).Msg("snapshot marshal failed")
		return
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		c.log.Error().Err(err).Msg("snapshot decode failed")
		return
	}
	ch.Emit("state", data)

	entries := make([]any, len(c.M.Log))
	for i, e := range c.M.Log {
		entries[i] = e
	}
	ch.Emit("logHistory", map[string]any{"entries": entries})
}

// OnTap handles a player clicking a card. The tap is legal only if the card
// is in that player's selectable set; the zone the card sits in decides what
// the tap means (supply tap buys, hand tap plays).
func (c *Controller) OnTap(player, cardID int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.M
	if m.Finished {
		return ErrMatchOver
	}
	if player != m.Current {
		return ErrNotYourTurn
	}
	if !contains(m.Selectable[player], cardID) {
		return fmt.Errorf("%w: card %d", ErrCardNotEligible, cardID)
	}
	card, err := m.Card(cardID)
	if err != nil {
		return err
	}

	action := "playCard"
	if card.Owner == NoOwner {
		action = "buyCard"
	}
	out := c.Pipeline.Start(player, card, func(rc *Run) (any, error) {
		if _, err := c.Dispatch.Invoke(rc, action, Invocation{Player: player, Card: cardID}); err != nil {
			return nil, err
		}
		return rc.Do("checkForRemainingPlayerActions", Invocation{})
	}, func(result any, err error) {
		if err == nil {
			c.Broadcast("cardEffectsComplete", map[string]any{"player": player, "card": cardID})
		}
	})
	if out.Done && out.Err != nil {
		c.log.Warn().Err(out.Err).Int("player", player).Int("card", cardID).Str("action", action).Msg("tap rejected")
		return out.Err
	}
	return nil
}

// OnInput resumes the run parked under the signal id with the player's
// answer. Inputs from the wrong player, or for signals nothing is waiting
// on, are dropped.
func (c *Controller) OnInput(player int, signal string, input any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if rc, ok := c.Pipeline.pending[signal]; ok && rc.awaiting != player {
		c.log.Warn().Int("player", player).Str("signal", signal).Msg("input from wrong player")
		return
	}
	if out, ok := c.Pipeline.Resume(signal, input); ok && out.Done && out.Err != nil {
		c.log.Error().Err(out.Err).Str("signal", signal).Msg("run failed after resume")
	}
}

// OnEndPhase handles an explicit end-phase request from the turn holder.
func (c *Controller) OnEndPhase(player int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.M
	if m.Finished {
		return ErrMatchOver
	}
	if player != m.Current {
		return ErrNotYourTurn
	}
	if c.Pipeline.PendingCount() > 0 {
		return fmt.Errorf("cannot end phase while awaiting input")
	}
	out := c.Pipeline.Start(player, nil, func(rc *Run) (any, error) {
		return rc.Do("nextPhase", Invocation{})
	}, nil)
	if out.Done && out.Err != nil {
		return out.Err
	}
	return nil
}

// OnChat relays a lobby/table chat line to everyone.
func (c *Controller) OnChat(player int, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if text == "" {
		return
	}
	name := ""
	if player >= 0 && player < len(c.M.Players) {
		name = c.M.Players[player].Name
	}
	c.Broadcast("chat", map[string]any{"player": player, "name": name, "text": text})
}

// AwaitedPlayer exposes who a parked prompt is addressed to, for transport
// keep-alives.
func (c *Controller) AwaitedPlayer() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Pipeline.AwaitedPlayer()
}

// Finished reports whether the match has ended. Transport goroutines read it
// through here rather than touching the match directly.
func (c *Controller) Finished() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.M.Finished
}

// Broadcast emits an event to every attached channel.
func (c *Controller) Broadcast(event string, data map[string]any) {
	for _, ch := range c.channels {
		ch.Emit(event, data)
	}
}

func (c *Controller) channel(player int) PlayerChannel {
	return c.channels[player]
}

// setWaiting marks a prompt as open and tells everyone but the addressed
// player who is holding the game up.
func (c *Controller) setWaiting(player int) {
	c.waiting = player
	for p, ch := range c.channels {
		if p != player {
			ch.Emit("waitingForPlayer", map[string]any{"player": player, "name": c.M.Players[player].Name})
		}
	}
	// Re-diff so clients drop their selectable sets while the prompt is open.
	c.checkpoint()
}

func (c *Controller) clearWaiting() {
	waited := c.waiting
	if waited == NoOwner {
		return
	}
	c.waiting = NoOwner
	for p, ch := range c.channels {
		if p != waited {
			ch.Emit("waitingCleared", map[string]any{"player": waited})
		}
	}
}

// snapshotBaseline records the pre-run state a checkpoint diffs against.
func (c *Controller) snapshotBaseline() {
	recomputeSelectable(c.M, c.waiting != NoOwner)
	raw, err := json.Marshal(TakeSnapshot(c.M))
	if err != nil {
		c.log.Error().Err(err).Msg("baseline snapshot failed")
		return
	}
	c.lastSnap = raw
}

// checkpoint runs after every dispatched action: recompute interactivity,
// check for game end, diff against the last snapshot and broadcast the patch.
func (c *Controller) checkpoint() {
	m := c.M
	if m.Started && !m.Finished && m.GameOver() {
		c.finish()
	}
	recomputeSelectable(m, c.waiting != NoOwner)

	raw, err := json.Marshal(TakeSnapshot(m))
	if err != nil {
		c.log.Error().Err(err).Msg("snapshot marshal failed")
		return
	}
	if c.lastSnap == nil {
		c.lastSnap = raw
		return
	}
	patch, err := jsondiff.CompareJSON(c.lastSnap, raw)
	if err != nil {
		c.log.Error().Err(err).Msg("snapshot diff failed")
		c.lastSnap = raw
		return
	}
	c.lastSnap = raw
	if len(patch) == 0 {
		return
	}
	ops := make([]any, len(patch))
	for i, op := range patch {
		ops[i] = op
	}
	c.Broadcast("statePatch", map[string]any{"patch": ops})
}

// finish closes the match: scores are computed, the summary goes out, and no
// further actions are accepted.
func (c *Controller) finish() {
	m := c.M
	m.Finished = true
	scores := Scores(m)
	c.rootLog("Game over")
	for _, s := range scores {
		c.rootLog("%s: %d points", m.Players[s.Player].Name, s.Points)
	}
	c.log.Info().Int("turns", m.Turn).Msg("match finished")

	lines := make([]any, len(scores))
	for i, s := range scores {
		lines[i] = map[string]any{"player": s.Player, "name": m.Players[s.Player].Name, "points": s.Points}
	}
	c.Broadcast("gameOver", map[string]any{
		"scores": lines,
		"winner": scores[0].Player,
		"stats":  statsData(m),
	})
}

func statsData(m *Match) map[string]any {
	return map[string]any{
		"played":  m.Stats.Played,
		"gained":  m.Stats.Gained,
		"bought":  m.Stats.Bought,
		"trashed": m.Stats.Trashed,
		"turns":   m.Turn,
		"rounds":  m.Round,
	}
}

// rootLog appends an unattributed top-level log line.
func (c *Controller) rootLog(format string, args ...any) {
	c.appendLog(LogEntry{
		Turn:   c.M.Turn,
		Round:  c.M.Round,
		Player: NoOwner,
		Text:   fmt.Sprintf(format, args...),
	})
}

// logf appends a log line attributed to a player, nested at the run's depth.
func (rc *Run) Logf(player int, action string, card int, format string, args ...any) {
	rc.C.appendLog(LogEntry{
		Turn:   rc.M.Turn,
		Round:  rc.M.Round,
		Player: player,
		Depth:  rc.Depth,
		Action: action,
		Card:   card,
		Text:   fmt.Sprintf(format, args...),
	})
}

func (c *Controller) appendLog(e LogEntry) {
	e.Seq = len(c.M.Log) + 1
	c.M.Log = append(c.M.Log, e)
	c.Broadcast("log", map[string]any{
		"seq":    e.Seq,
		"turn":   e.Turn,
		"round":  e.Round,
		"player": e.Player,
		"depth":  e.Depth,
		"action": e.Action,
		"card":   e.Card,
		"text":   e.Text,
	})
}

func contains(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
