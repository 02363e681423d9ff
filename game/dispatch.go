// dispatch.go - the named action registry
//
// Every state mutation goes through a named action. Expansions register new
// actions at content-load time; the dispatcher neither knows nor cares how
// many registrants exist.
package game

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Invocation is the flat argument record shared by all actions. Each action
// documents which fields it reads.
type Invocation struct {
	Player int    // acting or addressed player
	Card   int    // card instance id
	Key    string // card template key
	Count  int

	From       Zone
	FromPlayer int
	To         Zone
	ToPlayer   int

	// Selection / prompt fields.
	Eligible []int
	Optional bool
	Prompt   string
	Choices  []Choice

	// Free-form extras for expansion actions.
	Payload map[string]any
}

// Choice is one option in a userPrompt.
type Choice struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
	Card int    `json:"card,omitempty"`
}

// Handler implements one named action. Handlers run inside an effect run and
// may suspend through the run context.
type Handler func(rc *Run, inv Invocation) (any, error)

// Dispatcher maps action names to handlers.
type Dispatcher struct {
	handlers map[string]Handler
	reserved map[string]bool
	log      zerolog.Logger
}

// NewDispatcher returns a dispatcher with the built-in actions registered and
// reserved.
func NewDispatcher(log zerolog.Logger) *Dispatcher {
	d := &Dispatcher{
		handlers: make(map[string]Handler),
		reserved: make(map[string]bool),
		log:      log,
	}
	d.registerCore()
	return d
}

func (d *Dispatcher) registerCore() {
	core := map[string]Handler{
		"gainBuy":                        gainBuy,
		"gainAction":                     gainAction,
		"gainTreasure":                   gainTreasure,
		"gainPotion":                     gainPotion,
		"drawCard":                       drawCard,
		"discardCard":                    discardCard,
		"trashCard":                      trashCard,
		"gainCard":                       gainCard,
		"buyCard":                        buyCard,
		"playCard":                       playCard,
		"moveCard":                       moveCard,
		"revealCard":                     revealCard,
		"shuffleDeck":                    shuffleDeck,
		"selectCard":                     selectCard,
		"userPrompt":                     userPrompt,
		"nextPhase":                      nextPhase,
		"endTurn":                        endTurn,
		"checkForRemainingPlayerActions": checkForRemainingPlayerActions,
	}
	for name, h := range core {
		d.handlers[name] = h
		d.reserved[name] = true
	}
}

// Register adds a custom action. Re-registering a reserved core name is
// fatal; re-registering a custom name overwrites it with a warning
// (last registration wins).
func (d *Dispatcher) Register(name string, h Handler) error {
	if d.reserved[name] {
		return fmt.Errorf("%w: %s", ErrReservedAction, name)
	}
	if _, dup := d.handlers[name]; dup {
		d.log.Warn().Str("action", name).Msg("action re-registered, overwriting")
	}
	d.handlers[name] = h
	return nil
}

// Invoke runs a named action. Unlike effect dispatch, an unregistered name
// is an error here.
func (d *Dispatcher) Invoke(rc *Run, name string, inv Invocation) (any, error) {
	h, ok := d.handlers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, name)
	}
	rc.C.metrics.ActionDispatched(name)
	result, err := h(rc, inv)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	rc.C.checkpoint()
	return result, nil
}

func (d *Dispatcher) handler(name string) (Handler, bool) {
	h, ok := d.handlers[name]
	return h, ok
}
