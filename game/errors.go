package game

import "errors"

// Fatal rule violations. These abort the current action's effect chain; the
// transport reports them to the acting player and the match keeps running.
var (
	ErrCardNotFound    = errors.New("card not found")
	ErrUnknownAction   = errors.New("no handler registered for action")
	ErrReservedAction  = errors.New("cannot replace reserved core action")
	ErrNotYourTurn     = errors.New("not your turn")
	ErrCardNotEligible = errors.New("card is not selectable")
	ErrMatchOver       = errors.New("match is over")
)
