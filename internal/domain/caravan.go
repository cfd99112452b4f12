package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// RouteID pairs one caravan of each player for route-level comparison.
type RouteID int

const (
	RouteA RouteID = iota
	RouteB
	RouteC
)

// Routes lists every route in evaluation order.
var Routes = []RouteID{RouteA, RouteB, RouteC}

func (r RouteID) String() string {
	switch r {
	case RouteA:
		return "A"
	case RouteB:
		return "B"
	case RouteC:
		return "C"
	}
	return fmt.Sprintf("Route(%d)", int(r))
}

// CaravanID is one of the six fixed caravan slots, three per player.
type CaravanID int

const (
	CaravanP1A CaravanID = iota
	CaravanP1B
	CaravanP1C
	CaravanP2A
	CaravanP2B
	CaravanP2C
)

// CaravanIDs lists every caravan slot in order.
var CaravanIDs = []CaravanID{CaravanP1A, CaravanP1B, CaravanP1C, CaravanP2A, CaravanP2B, CaravanP2C}

var caravanSlots = map[CaravanID]struct {
	owner PlayerID
	route RouteID
	code  string
}{
	CaravanP1A: {PlayerOne, RouteA, "P1_A"},
	CaravanP1B: {PlayerOne, RouteB, "P1_B"},
	CaravanP1C: {PlayerOne, RouteC, "P1_C"},
	CaravanP2A: {PlayerTwo, RouteA, "P2_A"},
	CaravanP2B: {PlayerTwo, RouteB, "P2_B"},
	CaravanP2C: {PlayerTwo, RouteC, "P2_C"},
}

// Valid reports whether the id names one of the six slots.
func (id CaravanID) Valid() bool {
	_, ok := caravanSlots[id]
	return ok
}

// Owner returns the player who builds this caravan.
func (id CaravanID) Owner() PlayerID {
	return caravanSlots[id].owner
}

// Route returns the route this caravan competes on.
func (id CaravanID) Route() RouteID {
	return caravanSlots[id].route
}

// String returns the wire code of the slot, e.g. "P1_A".
func (id CaravanID) String() string {
	if slot, ok := caravanSlots[id]; ok {
		return slot.code
	}
	return fmt.Sprintf("Caravan(%d)", int(id))
}

// ParseCaravanID resolves a wire code produced by CaravanID.String.
func ParseCaravanID(code string) (CaravanID, error) {
	for _, id := range CaravanIDs {
		if id.String() == code {
			return id, nil
		}
	}
	return 0, fmt.Errorf("unknown caravan %q", code)
}

// CaravanIDFor returns the slot owned by player on route.
func CaravanIDFor(player PlayerID, route RouteID) (CaravanID, bool) {
	for _, id := range CaravanIDs {
		if id.Owner() == player && id.Route() == route {
			return id, true
		}
	}
	return 0, false
}

// Direction is the required progression of the next base card value.
type Direction string

const (
	DirectionUnset      Direction = "unset"
	DirectionAscending  Direction = "ascending"
	DirectionDescending Direction = "descending"
)

func (d Direction) flip() Direction {
	switch d {
	case DirectionAscending:
		return DirectionDescending
	case DirectionDescending:
		return DirectionAscending
	}
	return d
}

// Caravan is an ordered pile of played cards. The last element is the top of the pile.
// Direction, suit and score are derived from the pile on every read.
type Caravan struct {
	id   CaravanID
	pile []PlayedCard
}

// NewCaravan returns an empty caravan for the given slot.
func NewCaravan(id CaravanID) *Caravan {
	return &Caravan{id: id}
}

func (c *Caravan) ID() CaravanID { return c.id }

// Len returns the number of played cards in the pile.
func (c *Caravan) Len() int { return len(c.pile) }

// Pile returns a copy of the pile, bottom first.
func (c *Caravan) Pile() []PlayedCard {
	out := make([]PlayedCard, len(c.pile))
	for i, pc := range c.pile {
		out[i] = pc.clone()
	}
	return out
}

// TopCard returns the most recently played card.
func (c *Caravan) TopCard() (PlayedCard, bool) {
	if len(c.pile) == 0 {
		return PlayedCard{}, false
	}
	return c.pile[len(c.pile)-1].clone(), true
}

// Find returns the played card whose base card has the given id.
func (c *Caravan) Find(baseID uuid.UUID) (PlayedCard, bool) {
	for _, pc := range c.pile {
		if pc.Base.ID() == baseID {
			return pc.clone(), true
		}
	}
	return PlayedCard{}, false
}

// Direction compares the top two base values, then flips once for an odd number
// of queens on the top card.
func (c *Caravan) Direction() Direction {
	if len(c.pile) < 2 {
		return DirectionUnset
	}
	top := c.pile[len(c.pile)-1]
	topValue := top.Base.Value()
	prevValue := c.pile[len(c.pile)-2].Base.Value()

	var dir Direction
	switch {
	case topValue > prevValue:
		dir = DirectionAscending
	case topValue < prevValue:
		dir = DirectionDescending
	default:
		// Equal neighbours cannot be played legally.
		return DirectionUnset
	}

	if top.QueenCount()%2 == 1 {
		return dir.flip()
	}
	return dir
}

// CurrentSuit is the suit of the last queen on the top card, else the top card's suit.
func (c *Caravan) CurrentSuit() OptionalSuit {
	if len(c.pile) == 0 {
		return NoSuit()
	}
	top := c.pile[len(c.pile)-1]
	if suit := top.LastQueenSuit(); suit.Valid() {
		return suit
	}
	return top.Base.Suit()
}

// Score sums every base value, doubled once per attached king.
func (c *Caravan) Score() int {
	score := 0
	for _, pc := range c.pile {
		score += pc.Base.Value() << pc.KingCount()
	}
	return score
}

// AddBaseCard places a numeric card on top of the pile.
func (c *Caravan) AddBaseCard(card Card) error {
	if !card.Rank().IsNumeric() {
		return newError(CodeInvalidCardKind, "caravan %s: base card must be ACE-TEN, got %s", c.id, card)
	}
	c.pile = append(c.pile, PlayedCard{Base: card})
	return nil
}

// Attach appends a face card to the played card whose base id is targetBaseID.
func (c *Caravan) Attach(targetBaseID uuid.UUID, face Card) error {
	if face.Rank().IsNumeric() {
		return newError(CodeInvalidCardKind, "caravan %s: attachment must be a face card, got %s", c.id, face)
	}
	for i := range c.pile {
		if c.pile[i].Base.ID() == targetBaseID {
			c.pile[i].Attachments = append(c.pile[i].Attachments, face)
			return nil
		}
	}
	return newError(CodeTargetNotFound, "caravan %s: target card %s not found in pile", c.id, targetBaseID)
}

// RemoveBaseCard drops the played card with the given base id, attachments included.
// Missing ids are ignored.
func (c *Caravan) RemoveBaseCard(baseID uuid.UUID) {
	c.RemoveBaseCardsWhere(func(card Card) bool { return card.ID() == baseID })
}

// RemoveBaseCardsWhere drops every played card whose base card satisfies match.
func (c *Caravan) RemoveBaseCardsWhere(match func(Card) bool) {
	kept := c.pile[:0]
	for _, pc := range c.pile {
		if !match(pc.Base) {
			kept = append(kept, pc)
		}
	}
	for i := len(kept); i < len(c.pile); i++ {
		c.pile[i] = PlayedCard{}
	}
	c.pile = kept
}

// Discard empties the pile.
func (c *Caravan) Discard() {
	c.pile = nil
}
