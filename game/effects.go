// effects.go - the pausable effect pipeline
//
// Every top-level dispatch runs as an effect run on its own goroutine, in
// strict ping-pong with whichever goroutine holds the match: the run only
// executes while its starter (or resumer) is blocked in wait, so there is
// never more than one goroutine touching match state. Await parks the run in
// the pending map keyed by signal id and hands control back; Resume feeds the
// correlated client input in and drives the run to its next park or to
// completion. Sub-coroutines are plain nested calls, so a paused sub-effect
// transitively suspends the whole run.
package game

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Script is an effect coroutine body: card effects, reaction effects and
// trigger evaluations all have this shape. It may block in rc.Await (via the
// suspending actions) at any depth.
type Script func(rc *Run) (any, error)

// Outcome is the result of driving a run: either it completed (Done, with
// Result or Err) or it parked awaiting player input.
type Outcome struct {
	Done   bool
	Result any
	Err    error
}

type runState struct {
	parked bool
	result any
	err    error
}

// Run is one effect-pipeline execution context.
type Run struct {
	C *Controller
	M *Match

	Player int   // initiating player
	Card   *Card // card being resolved, if any
	Depth  int   // log nesting depth

	// trigger results collected during the innermost reaction evaluation,
	// visible to the action that raised the trigger (attack immunity).
	reactionResults map[int]any

	signal   string
	awaiting int // player whose input the parked run needs
	state    chan runState
	resume   chan any
	onDone   func(result any, err error)
}

// Pipeline owns the pending-run map for one match.
type Pipeline struct {
	c       *Controller
	pending map[string]*Run
	log     zerolog.Logger
}

func newPipeline(c *Controller, log zerolog.Logger) *Pipeline {
	return &Pipeline{c: c, pending: make(map[string]*Run), log: log}
}

// Start runs a script as a new top-level run and drives it until it parks or
// completes. onDone fires only on natural completion.
func (p *Pipeline) Start(player int, card *Card, fn Script, onDone func(result any, err error)) Outcome {
	rc := &Run{
		C:      p.c,
		M:      p.c.M,
		Player: player,
		Card:   card,
		state:  make(chan runState),
		resume: make(chan any),
		onDone: onDone,
	}
	p.c.snapshotBaseline()
	go func() {
		result, err := fn(rc)
		rc.state <- runState{result: result, err: err}
	}()
	return p.wait(rc)
}

// Resume feeds input into the run parked under the signal id. An unknown id
// is logged and ignored; stale or duplicate responses must not crash the
// match.
func (p *Pipeline) Resume(signal string, input any) (Outcome, bool) {
	rc, ok := p.pending[signal]
	if !ok {
		p.log.Warn().Str("signal", signal).Msg("resume for unknown signal")
		return Outcome{}, false
	}
	delete(p.pending, signal)
	rc.signal = ""
	rc.resume <- input
	return p.wait(rc), true
}

// AwaitedPlayer returns the player a parked run is waiting on, if any.
func (p *Pipeline) AwaitedPlayer() (int, bool) {
	for _, rc := range p.pending {
		return rc.awaiting, true
	}
	return 0, false
}

// PendingCount reports how many runs are parked.
func (p *Pipeline) PendingCount() int { return len(p.pending) }

func (p *Pipeline) wait(rc *Run) Outcome {
	st := <-rc.state
	if st.parked {
		return Outcome{}
	}
	if rc.onDone != nil {
		rc.onDone(st.result, st.err)
	}
	return Outcome{Done: true, Result: st.result, Err: st.err}
}

// Do dispatches one yielded effect descriptor through the action registry.
// Unlike Controller.Invoke, a missing handler is not fatal here: it is logged
// and skipped so one unknown effect cannot wedge a card mid-resolution.
// After the step completes a state diff is broadcast.
func (rc *Run) Do(action string, inv Invocation) (any, error) {
	h, ok := rc.C.Dispatch.handler(action)
	if !ok {
		rc.C.log.Warn().Str("action", action).Msg("no effect handler, skipping")
		return nil, nil
	}
	rc.C.metrics.ActionDispatched(action)
	result, err := h(rc, inv)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	rc.C.checkpoint()
	return result, nil
}

// Sub runs a nested effect coroutine to completion before the outer run
// continues. If the sub parks, the whole run is parked with it.
func (rc *Run) Sub(fn Script) (any, error) {
	rc.Depth++
	defer func() { rc.Depth-- }()
	return fn(rc)
}

// Await parks the run under the signal id until correlated input arrives.
// Only the suspending actions call this; while parked, nothing else in the
// match proceeds.
func (rc *Run) Await(signal string, player int) any {
	rc.signal = signal
	rc.awaiting = player
	rc.C.Pipeline.pending[signal] = rc
	rc.C.metrics.PromptOpened()
	rc.state <- runState{parked: true}
	input := <-rc.resume
	rc.C.metrics.PromptResolved()
	return input
}
