// engine.go - the lua card-effect engine
//
// Each match owns one lua state. Scripts run only while their run holds the
// match (the pipeline guarantees one goroutine at a time), so the engine
// swaps the active run in and out around each execution instead of locking.
// Builtins that need player input block inside the suspending actions like
// any Go effect would.
package script

import (
	"fmt"

	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"

	"provinces/game"
)

// Engine implements game.ScriptRunner on a single lua state.
type Engine struct {
	L   *lua.LState
	log zerolog.Logger

	rc   *game.Run
	card *game.Card
	err  error // first Go error raised by a builtin during the current run
}

// New creates a lua state with the card builtins installed.
func New(log zerolog.Logger) *Engine {
	e := &Engine{
		L:   lua.NewState(lua.Options{SkipOpenLibs: false}),
		log: log.With().Str("component", "script").Logger(),
	}
	e.installBuiltins()
	return e
}

// Run executes a card's script body in the context of the given run. Nested
// executions (a duration follow-up firing while another script resolves) save
// and restore the active run.
func (e *Engine) Run(rc *game.Run, c *game.Card, src string) (any, error) {
	prevRC, prevCard, prevErr := e.rc, e.card, e.err
	e.rc, e.card, e.err = rc, c, nil
	defer func() { e.rc, e.card, e.err = prevRC, prevCard, prevErr }()

	if err := e.L.DoString(src); err != nil {
		if e.err != nil {
			return nil, e.err
		}
		return nil, fmt.Errorf("script %s: %w", c.Key, err)
	}
	return nil, e.err
}

// Close releases the lua state.
func (e *Engine) Close() {
	e.L.Close()
}

// callFunction invokes a stored lua function (a duration follow-up or prompt
// callback) under the given run.
func (e *Engine) callFunction(rc *game.Run, c *game.Card, fn *lua.LFunction) (any, error) {
	prevRC, prevCard, prevErr := e.rc, e.card, e.err
	e.rc, e.card, e.err = rc, c, nil
	defer func() { e.rc, e.card, e.err = prevRC, prevCard, prevErr }()

	if err := e.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}); err != nil {
		if e.err != nil {
			return nil, e.err
		}
		return nil, fmt.Errorf("script %s follow-up: %w", c.Key, err)
	}
	return nil, e.err
}

// fail records a Go error and aborts the lua script.
func (e *Engine) fail(err error) {
	if e.err == nil {
		e.err = err
	}
	e.L.RaiseError("%s", err.Error())
}

// run returns the active run, failing the script if a builtin is called
// outside an execution.
func (e *Engine) run() *game.Run {
	if e.rc == nil {
		e.L.RaiseError("builtin called outside a card effect")
	}
	return e.rc
}
