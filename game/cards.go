// cards.go - card identity, type tags and costs
package game

import "fmt"

// TypeTag is a card type marker. Cards carry a set of tags rather than a
// class hierarchy; all rules code checks tag membership.
type TypeTag string

const (
	TagAction   TypeTag = "ACTION"
	TagTreasure TypeTag = "TREASURE"
	TagVictory  TypeTag = "VICTORY"
	TagCurse    TypeTag = "CURSE"
	TagAttack   TypeTag = "ATTACK"
	TagReaction TypeTag = "REACTION"
	TagDuration TypeTag = "DURATION"
	TagReserve  TypeTag = "RESERVE"
)

// Cost is a card price: a treasure amount plus an optional potion amount.
type Cost struct {
	Treasure int `json:"treasure"`
	Potion   int `json:"potion,omitempty"`
}

// CardDef is a card template, loaded from content. One def backs every
// physical copy of that card in a match.
type CardDef struct {
	Key      string    `json:"key"`
	Name     string    `json:"name"`
	Types    []TypeTag `json:"types"`
	Cost     Cost      `json:"cost"`
	VP       int       `json:"vp,omitempty"`       // victory point value
	Treasure int       `json:"treasure,omitempty"` // treasure produced when played
	Potion   int       `json:"potion,omitempty"`   // potions produced when played
	Image    string    `json:"image,omitempty"`
	Script   string    `json:"script,omitempty"` // lua effect body
	Pile     int       `json:"pile,omitempty"`   // supply pile size, 0 = not in supply
	Base     bool      `json:"base,omitempty"`   // base-supply card, present in every match
}

// Is reports whether the def carries the given type tag.
func (d *CardDef) Is(tag TypeTag) bool {
	for _, t := range d.Types {
		if t == tag {
			return true
		}
	}
	return false
}

// NoOwner marks a card sitting in an impersonal zone (supply, trash).
const NoOwner = -1

// Card is one physical copy of a card. The id is unique within a match and
// never changes; the owner is reassigned as the card moves between players.
type Card struct {
	ID    int      `json:"id"`
	Key   string   `json:"key"`
	Owner int      `json:"owner"`
	Def   *CardDef `json:"-"`
}

// Is reports whether the card carries the given type tag.
func (c *Card) Is(tag TypeTag) bool { return c.Def.Is(tag) }

// Card returns the card with the given id. Every id handed out during setup
// must resolve for the whole match; an unknown id is a bug in the caller.
func (m *Match) Card(id int) (*Card, error) {
	c, ok := m.cards[id]
	if !ok {
		return nil, fmt.Errorf("%w: card %d", ErrCardNotFound, id)
	}
	return c, nil
}

// Def returns the card template registered under key, if any.
func (m *Match) Def(key string) (*CardDef, bool) {
	d, ok := m.defs[key]
	return d, ok
}

// addCard mints a new physical card from a def during setup.
func (m *Match) addCard(def *CardDef, owner int) *Card {
	m.nextCard++
	c := &Card{ID: m.nextCard, Key: def.Key, Owner: owner, Def: def}
	m.cards[c.ID] = c
	return c
}
