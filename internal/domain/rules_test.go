package domain

import (
	"errors"
	"testing"
)

func TestCanPlayBase(t *testing.T) {
	var f cardFactory
	heartsNine := f.card(RankNine, SuitHearts)
	clubsNine := f.card(RankNine, SuitClubs)
	clubsTwo := f.card(RankTwo, SuitClubs)
	spadesSix := f.card(RankSix, SuitSpades)
	king := f.card(RankKing, SuitSpades)

	tests := []struct {
		name  string
		setup func(t *testing.T, s *GameState)
		move  PlayBase
		want  bool
	}{
		{
			name: "empty caravan accepts any numeric card",
			move: PlayBase{Player: PlayerOne, CardID: spadesSix.ID(), CaravanID: CaravanP1A},
			want: true,
		},
		{
			name: "face card cannot be a base",
			move: PlayBase{Player: PlayerOne, CardID: king.ID(), CaravanID: CaravanP1A},
		},
		{
			name: "card must be held",
			move: PlayBase{Player: PlayerOne, CardID: f.id(), CaravanID: CaravanP1A},
		},
		{
			name: "opponent caravan is off limits",
			move: PlayBase{Player: PlayerOne, CardID: spadesSix.ID(), CaravanID: CaravanP2A},
		},
		{
			name:  "not the current player",
			setup: func(t *testing.T, s *GameState) { s.CurrentPlayer = PlayerTwo },
			move:  PlayBase{Player: PlayerOne, CardID: spadesSix.ID(), CaravanID: CaravanP1A},
		},
		{
			name:  "finished game rejects everything",
			setup: func(t *testing.T, s *GameState) { s.Phase = PhaseFinished },
			move:  PlayBase{Player: PlayerOne, CardID: spadesSix.ID(), CaravanID: CaravanP1A},
		},
		{
			name: "setup forbids stacking",
			setup: func(t *testing.T, s *GameState) {
				s.Phase = PhaseSetup
				build(t, s, CaravanP1A, f.card(RankTwo, SuitHearts))
			},
			move: PlayBase{Player: PlayerOne, CardID: spadesSix.ID(), CaravanID: CaravanP1A},
		},
		{
			name: "same value as top is rejected",
			setup: func(t *testing.T, s *GameState) {
				build(t, s, CaravanP1A, f.card(RankSix, SuitHearts))
			},
			move: PlayBase{Player: PlayerOne, CardID: spadesSix.ID(), CaravanID: CaravanP1A},
		},
		{
			name: "unset direction accepts any other value",
			setup: func(t *testing.T, s *GameState) {
				build(t, s, CaravanP1A, f.card(RankTen, SuitHearts))
			},
			move: PlayBase{Player: PlayerOne, CardID: spadesSix.ID(), CaravanID: CaravanP1A},
			want: true,
		},
		{
			name: "continuing the direction off suit",
			setup: func(t *testing.T, s *GameState) {
				build(t, s, CaravanP1A, f.card(RankTwo, SuitHearts), f.card(RankFour, SuitHearts))
			},
			move: PlayBase{Player: PlayerOne, CardID: clubsNine.ID(), CaravanID: CaravanP1A},
			want: true,
		},
		{
			name: "reversing the direction in suit",
			setup: func(t *testing.T, s *GameState) {
				build(t, s, CaravanP1A, f.card(RankFive, SuitHearts), f.card(RankTen, SuitHearts))
			},
			move: PlayBase{Player: PlayerOne, CardID: heartsNine.ID(), CaravanID: CaravanP1A},
			want: true,
		},
		{
			name: "reversing the direction off suit",
			setup: func(t *testing.T, s *GameState) {
				build(t, s, CaravanP1A, f.card(RankFive, SuitHearts), f.card(RankTen, SuitHearts))
			},
			move: PlayBase{Player: PlayerOne, CardID: clubsTwo.ID(), CaravanID: CaravanP1A},
		},
		{
			name: "queen suit replaces the base suit",
			setup: func(t *testing.T, s *GameState) {
				top := f.card(RankTen, SuitHearts)
				build(t, s, CaravanP1A, f.card(RankFive, SuitHearts), top)
				attach(t, s, CaravanP1A, top, f.card(RankQueen, SuitClubs), f.card(RankQueen, SuitClubs))
			},
			move: PlayBase{Player: PlayerOne, CardID: clubsTwo.ID(), CaravanID: CaravanP1A},
			want: true,
		},
		{
			name: "odd queens reverse the required direction",
			setup: func(t *testing.T, s *GameState) {
				top := f.card(RankFour, SuitHearts)
				build(t, s, CaravanP1A, f.card(RankTwo, SuitHearts), top)
				attach(t, s, CaravanP1A, top, f.card(RankQueen, SuitDiamonds))
			},
			move: PlayBase{Player: PlayerOne, CardID: clubsNine.ID(), CaravanID: CaravanP1A},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newMainState()
			s.Players[PlayerOne].Hand = NewHand(heartsNine, clubsNine, clubsTwo, spadesSix, king)
			if tt.setup != nil {
				tt.setup(t, s)
			}
			if got := CanPlayBase(s, tt.move); got != tt.want {
				t.Errorf("CanPlayBase() = %v, want %v (%v)", got, tt.want, CheckMove(s, tt.move))
			}
		})
	}
}

func TestCanAttachFace(t *testing.T) {
	var f cardFactory
	base := f.card(RankSeven, SuitDiamonds)
	jack := f.card(RankJack, SuitHearts)
	three := f.card(RankThree, SuitHearts)

	tests := []struct {
		name  string
		phase Phase
		move  AttachFace
		want  bool
	}{
		{
			name:  "face on an opponent caravan",
			phase: PhaseMain,
			move:  AttachFace{Player: PlayerOne, CardID: jack.ID(), CaravanID: CaravanP2B, TargetBaseID: base.ID()},
			want:  true,
		},
		{
			name:  "no attaching during setup",
			phase: PhaseSetup,
			move:  AttachFace{Player: PlayerOne, CardID: jack.ID(), CaravanID: CaravanP2B, TargetBaseID: base.ID()},
		},
		{
			name:  "numeric card cannot attach",
			phase: PhaseMain,
			move:  AttachFace{Player: PlayerOne, CardID: three.ID(), CaravanID: CaravanP2B, TargetBaseID: base.ID()},
		},
		{
			name:  "target must be in the named caravan",
			phase: PhaseMain,
			move:  AttachFace{Player: PlayerOne, CardID: jack.ID(), CaravanID: CaravanP2A, TargetBaseID: base.ID()},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newMainState()
			s.Phase = tt.phase
			s.Players[PlayerOne].Hand = NewHand(jack, three)
			build(t, s, CaravanP2B, base)
			if got := CanAttachFace(s, tt.move); got != tt.want {
				t.Errorf("CanAttachFace() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanDiscardCard(t *testing.T) {
	var f cardFactory
	card := f.card(RankTwo, SuitClubs)
	move := DiscardCard{Player: PlayerOne, CardID: card.ID()}

	s := newMainState()
	s.Players[PlayerOne].Hand = NewHand(card)
	if CanDiscardCard(s, move) {
		t.Errorf("discard with an empty deck should be illegal")
	}

	s.Players[PlayerOne].Deck = []Card{f.card(RankFive, SuitClubs)}
	if !CanDiscardCard(s, move) {
		t.Errorf("discard with cards left to draw should be legal: %v", CheckMove(s, move))
	}

	s.Phase = PhaseSetup
	if CanDiscardCard(s, move) {
		t.Errorf("discard during setup should be illegal")
	}
}

func TestCanDiscardCaravan(t *testing.T) {
	s := newMainState()
	if !CanDiscardCaravan(s, DiscardCaravan{Player: PlayerOne, CaravanID: CaravanP1C}) {
		t.Errorf("own caravan should be discardable")
	}
	if CanDiscardCaravan(s, DiscardCaravan{Player: PlayerOne, CaravanID: CaravanP2C}) {
		t.Errorf("opponent caravan should not be discardable")
	}
	s.Phase = PhaseSetup
	if CanDiscardCaravan(s, DiscardCaravan{Player: PlayerOne, CaravanID: CaravanP1C}) {
		t.Errorf("discarding a caravan during setup should be illegal")
	}
}

func TestCanConcede(t *testing.T) {
	s := newMainState()
	s.Phase = PhaseSetup
	if !CanConcede(s, Concede{Player: PlayerOne}) {
		t.Errorf("conceding during setup should be legal")
	}
	if CanConcede(s, Concede{Player: PlayerTwo}) {
		t.Errorf("only the current player may concede")
	}
}

func TestCheckMoveReturnsIllegalMove(t *testing.T) {
	s := newMainState()
	err := CheckMove(s, Concede{Player: PlayerTwo})
	if !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("CheckMove() = %v, want ErrIllegalMove", err)
	}
	if err := CheckMove(s, Concede{Player: PlayerOne}); err != nil {
		t.Fatalf("CheckMove() = %v, want nil", err)
	}
}

func TestPredicatesAreRepeatable(t *testing.T) {
	var f cardFactory
	card := f.card(RankEight, SuitHearts)
	s := newMainState()
	s.Players[PlayerOne].Hand = NewHand(card)
	move := PlayBase{Player: PlayerOne, CardID: card.ID(), CaravanID: CaravanP1A}

	for i := 0; i < 3; i++ {
		if !CanPlayBase(s, move) {
			t.Fatalf("evaluation %d flipped to illegal", i)
		}
	}
	if s.Players[PlayerOne].Hand.Len() != 1 || s.Caravans[CaravanP1A].Len() != 0 {
		t.Fatalf("predicate mutated state")
	}
}

func TestLegalMoves(t *testing.T) {
	var f cardFactory
	eight := f.card(RankEight, SuitHearts)
	king := f.card(RankKing, SuitHearts)
	target := f.card(RankFour, SuitClubs)

	s := newMainState()
	s.Players[PlayerOne].Hand = NewHand(eight, king)
	build(t, s, CaravanP2A, target)

	moves := LegalMoves(s)
	counts := map[MoveKind]int{}
	for _, m := range moves {
		if !CanApply(s, m) {
			t.Errorf("LegalMoves returned illegal %#v", m)
		}
		counts[m.Kind()]++
	}

	want := map[MoveKind]int{
		MovePlayBase:       3, // eight onto each empty own caravan
		MoveAttachFace:     1, // king onto the only base card
		MoveDiscardCard:    0, // deck is empty
		MoveDiscardCaravan: 3,
		MoveConcede:        1,
	}
	for kind, n := range want {
		if counts[kind] != n {
			t.Errorf("%s moves = %d, want %d", kind, counts[kind], n)
		}
	}

	s.Phase = PhaseFinished
	if got := LegalMoves(s); len(got) != 0 {
		t.Errorf("finished game has %d legal moves", len(got))
	}
}
