package domain

import "github.com/google/uuid"

// MoveKind is the stable name of a move variant.
type MoveKind string

const (
	MovePlayBase       MoveKind = "play_base"
	MoveAttachFace     MoveKind = "attach_face"
	MoveDiscardCard    MoveKind = "discard_card"
	MoveDiscardCaravan MoveKind = "discard_caravan"
	MoveConcede        MoveKind = "concede"
)

// Move is a player intent. The set of implementations is closed to this package.
// Legality is never part of a move; it is checked against state by the ruleset.
type Move interface {
	// Mover returns the acting player.
	Mover() PlayerID
	// Kind returns the variant name.
	Kind() MoveKind

	isMove()
}

// PlayBase places a numeric card from hand on one of the mover's caravans.
type PlayBase struct {
	Player    PlayerID
	CardID    uuid.UUID
	CaravanID CaravanID
}

// AttachFace attaches a face card from hand to a base card in any caravan.
type AttachFace struct {
	Player       PlayerID
	CardID       uuid.UUID
	CaravanID    CaravanID
	TargetBaseID uuid.UUID
}

// DiscardCard throws a card from hand away.
type DiscardCard struct {
	Player PlayerID
	CardID uuid.UUID
}

// DiscardCaravan empties one of the mover's caravans.
type DiscardCaravan struct {
	Player    PlayerID
	CaravanID CaravanID
}

// Concede ends the game in the opponent's favour.
type Concede struct {
	Player PlayerID
}

func (m PlayBase) Mover() PlayerID       { return m.Player }
func (m AttachFace) Mover() PlayerID     { return m.Player }
func (m DiscardCard) Mover() PlayerID    { return m.Player }
func (m DiscardCaravan) Mover() PlayerID { return m.Player }
func (m Concede) Mover() PlayerID        { return m.Player }

func (PlayBase) Kind() MoveKind       { return MovePlayBase }
func (AttachFace) Kind() MoveKind     { return MoveAttachFace }
func (DiscardCard) Kind() MoveKind    { return MoveDiscardCard }
func (DiscardCaravan) Kind() MoveKind { return MoveDiscardCaravan }
func (Concede) Kind() MoveKind        { return MoveConcede }

func (PlayBase) isMove()       {}
func (AttachFace) isMove()     {}
func (DiscardCard) isMove()    {}
func (DiscardCaravan) isMove() {}
func (Concede) isMove()        {}
