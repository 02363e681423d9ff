// reactions.go - the reaction/trigger manager
//
// Reactions are event-listening abilities that fire independent of whose
// turn it is. A trigger evaluation walks players in turn order starting at
// the turn holder, arbitrating between multiple candidates by prompting the
// owner, and records reaction results into a per-player context map the
// raising action can read.
package game

import (
	"fmt"

	"github.com/rs/zerolog"
)

// TriggerType names a reactive event.
type TriggerType string

const (
	TriggerCardPlayed     TriggerType = "cardPlayed"
	TriggerCardGained     TriggerType = "cardGained"
	TriggerCardBought     TriggerType = "cardBought"
	TriggerCardTrashed    TriggerType = "cardTrashed"
	TriggerCardDiscarded  TriggerType = "cardDiscarded"
	TriggerCardRevealed   TriggerType = "cardRevealed"
	TriggerAttack         TriggerType = "attack"
	TriggerStartTurn      TriggerType = "startTurn"
	TriggerStartTurnPhase TriggerType = "startTurnPhase"
	TriggerEndTurnPhase   TriggerType = "endTurnPhase"
	TriggerEndTurn        TriggerType = "endTurn"
)

// Trigger is an immutable event record passed in for evaluation.
type Trigger struct {
	Type    TriggerType
	Player  int // originating player
	Card    int // card involved, 0 if none
	Payload map[string]any
}

// Reaction is one registered event listener.
type Reaction struct {
	ID         string // namespaced per card instance, e.g. "moat:17"
	Player     int    // owning player
	Event      TriggerType
	Compulsory bool // fires without asking when it is the only choice class
	Once       bool // unregisters permanently after firing
	Multi      bool // may fire alongside same-card-key reactions
	CardKey    string
	CardID     int
	Condition  func(m *Match, t Trigger) bool
	Effect     func(rc *Run, t Trigger) (any, error)
}

// Reactions is the per-match reaction registry.
type Reactions struct {
	byID  map[string]*Reaction
	order []string // registration order for stable candidate lists
	log   zerolog.Logger
}

// NewReactions returns an empty registry.
func NewReactions(log zerolog.Logger) *Reactions {
	return &Reactions{byID: make(map[string]*Reaction), log: log}
}

// ReactionID namespaces a reaction id to one physical card.
func ReactionID(cardKey string, cardID int) string {
	return fmt.Sprintf("%s:%d", cardKey, cardID)
}

// Register adds a reaction. Registering an id twice replaces the earlier
// reaction for that card instance.
func (r *Reactions) Register(reaction *Reaction) {
	if _, dup := r.byID[reaction.ID]; !dup {
		r.order = append(r.order, reaction.ID)
	}
	r.byID[reaction.ID] = reaction
}

// Unregister removes a reaction by id. A missing id is a logged no-op.
func (r *Reactions) Unregister(id string) {
	if _, ok := r.byID[id]; !ok {
		r.log.Debug().Str("reaction", id).Msg("unregister of unknown reaction")
		return
	}
	delete(r.byID, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Count reports how many reactions are registered.
func (r *Reactions) Count() int { return len(r.byID) }

// Fire evaluates a trigger. For each player in turn order from the current
// turn holder it repeatedly collects matching candidates, asks the owner
// which to fire unless every candidate is the same compulsory card (choice 0
// declines), runs the chosen reaction's effect (which may itself suspend), and records
// non-nil results into the returned per-player map. A fired non-multi
// reaction blocks same-card-key reactions for the rest of the evaluation; a
// once reaction is unregistered permanently.
func (r *Reactions) Fire(rc *Run, t Trigger) (map[int]any, error) {
	m := rc.M
	used := make(map[string]bool)
	blocked := make(map[string]bool)
	results := make(map[int]any)

	prevResults := rc.reactionResults
	rc.reactionResults = results
	defer func() { rc.reactionResults = prevResults }()

	n := len(m.Players)
	for i := 0; i < n; i++ {
		p := (m.Current + i) % n
		for {
			candidates := r.candidates(m, p, t, used, blocked)
			if len(candidates) == 0 {
				break
			}

			var pick *Reaction
			if allSameCompulsory(candidates) {
				pick = candidates[0]
			} else {
				choices := make([]Choice, 0, len(candidates))
				for i, cand := range candidates {
					name := cand.CardKey
					if def, ok := m.Def(cand.CardKey); ok {
						name = def.Name
					}
					choices = append(choices, Choice{ID: i + 1, Text: name, Card: cand.CardID})
				}
				chosen, err := rc.Do("userPrompt", Invocation{
					Player:  p,
					Prompt:  fmt.Sprintf("React to %s?", t.Type),
					Choices: choices,
				})
				if err != nil {
					return results, err
				}
				idx := parseChoice(chosen)
				if idx < 1 || idx > len(candidates) {
					// Declined: this player's reactions are done.
					break
				}
				pick = candidates[idx-1]
			}

			result, err := pick.Effect(rc, t)
			if err != nil {
				return results, err
			}
			if result != nil {
				results[p] = result
			}
			used[pick.ID] = true
			if !pick.Multi {
				blocked[pick.CardKey] = true
			}
			if pick.Once {
				r.Unregister(pick.ID)
			}
		}
	}
	return results, nil
}

func (r *Reactions) candidates(m *Match, player int, t Trigger, used, blocked map[string]bool) []*Reaction {
	var out []*Reaction
	for _, id := range r.order {
		reaction := r.byID[id]
		if reaction == nil || reaction.Player != player || reaction.Event != t.Type {
			continue
		}
		if used[reaction.ID] || blocked[reaction.CardKey] {
			continue
		}
		if reaction.Condition != nil && !reaction.Condition(m, t) {
			continue
		}
		out = append(out, reaction)
	}
	return out
}

// allSameCompulsory reports whether every candidate is the same compulsory
// card, in which case there is nothing to arbitrate.
func allSameCompulsory(candidates []*Reaction) bool {
	for _, c := range candidates {
		if !c.Compulsory || c.CardKey != candidates[0].CardKey {
			return false
		}
	}
	return true
}

// Victims fires the attack trigger for the card being resolved and returns
// the other players who did not establish immunity, in turn order from the
// attacker. A reaction that returns a non-nil result (Moat's reveal) shields
// its owner.
func (rc *Run) Victims() ([]int, error) {
	m := rc.M
	t := Trigger{Type: TriggerAttack, Player: rc.Player}
	if rc.Card != nil {
		t.Card = rc.Card.ID
	}
	immune, err := rc.C.Reactions.Fire(rc, t)
	if err != nil {
		return nil, err
	}
	n := len(m.Players)
	victims := make([]int, 0, n-1)
	for i := 1; i < n; i++ {
		p := (rc.Player + i) % n
		if immune[p] == nil {
			victims = append(victims, p)
		}
	}
	return victims, nil
}
