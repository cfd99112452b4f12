package domain

import (
	"errors"
	"testing"
)

func TestCaravanIDMetadata(t *testing.T) {
	tests := []struct {
		id    CaravanID
		owner PlayerID
		route RouteID
		code  string
	}{
		{CaravanP1A, PlayerOne, RouteA, "P1_A"},
		{CaravanP1C, PlayerOne, RouteC, "P1_C"},
		{CaravanP2B, PlayerTwo, RouteB, "P2_B"},
	}
	for _, tt := range tests {
		if tt.id.Owner() != tt.owner || tt.id.Route() != tt.route || tt.id.String() != tt.code {
			t.Errorf("%d = (%s, %s, %s), want (%s, %s, %s)", int(tt.id),
				tt.id.Owner(), tt.id.Route(), tt.id, tt.owner, tt.route, tt.code)
		}
		parsed, err := ParseCaravanID(tt.code)
		if err != nil || parsed != tt.id {
			t.Errorf("ParseCaravanID(%q) = %v, %v", tt.code, parsed, err)
		}
		id, ok := CaravanIDFor(tt.owner, tt.route)
		if !ok || id != tt.id {
			t.Errorf("CaravanIDFor(%s, %s) = %s, want %s", tt.owner, tt.route, id, tt.id)
		}
	}
}

func TestDirectionUnsetBelowTwoCards(t *testing.T) {
	var f cardFactory
	c := NewCaravan(CaravanP1A)
	if d := c.Direction(); d != DirectionUnset {
		t.Fatalf("empty direction = %s, want unset", d)
	}
	if err := c.AddBaseCard(f.card(RankSeven, SuitHearts)); err != nil {
		t.Fatal(err)
	}
	if d := c.Direction(); d != DirectionUnset {
		t.Fatalf("single card direction = %s, want unset", d)
	}
}

func TestDirectionFromTopTwo(t *testing.T) {
	tests := []struct {
		name  string
		ranks []Rank
		want  Direction
	}{
		{"ascending", []Rank{RankTwo, RankSix}, DirectionAscending},
		{"descending", []Rank{RankNine, RankFour}, DirectionDescending},
		{"only top two count", []Rank{RankTwo, RankNine, RankFour}, DirectionDescending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f cardFactory
			c := NewCaravan(CaravanP1A)
			for _, r := range tt.ranks {
				if err := c.AddBaseCard(f.card(r, SuitClubs)); err != nil {
					t.Fatal(err)
				}
			}
			if got := c.Direction(); got != tt.want {
				t.Errorf("Direction() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestQueenParityFlipsDirection(t *testing.T) {
	for queens := 0; queens <= 4; queens++ {
		var f cardFactory
		c := NewCaravan(CaravanP2A)
		top := f.card(RankSeven, SuitClubs)
		if err := c.AddBaseCard(f.card(RankThree, SuitClubs)); err != nil {
			t.Fatal(err)
		}
		if err := c.AddBaseCard(top); err != nil {
			t.Fatal(err)
		}
		for i := 0; i < queens; i++ {
			if err := c.Attach(top.ID(), f.card(RankQueen, SuitHearts)); err != nil {
				t.Fatal(err)
			}
		}

		want := DirectionAscending
		if queens%2 == 1 {
			want = DirectionDescending
		}
		if got := c.Direction(); got != want {
			t.Errorf("%d queens: Direction() = %s, want %s", queens, got, want)
		}
	}
}

func TestQueenBelowTopDoesNotFlip(t *testing.T) {
	var f cardFactory
	c := NewCaravan(CaravanP1B)
	low := f.card(RankThree, SuitClubs)
	_ = c.AddBaseCard(low)
	_ = c.AddBaseCard(f.card(RankEight, SuitClubs))
	if err := c.Attach(low.ID(), f.card(RankQueen, SuitSpades)); err != nil {
		t.Fatal(err)
	}
	if got := c.Direction(); got != DirectionAscending {
		t.Errorf("Direction() = %s, want ascending", got)
	}
}

func TestCurrentSuit(t *testing.T) {
	var f cardFactory
	c := NewCaravan(CaravanP1A)
	if c.CurrentSuit().Valid() {
		t.Fatalf("empty caravan suit = %s, want none", c.CurrentSuit())
	}

	top := f.card(RankFour, SuitClubs)
	_ = c.AddBaseCard(top)
	if suit, _ := c.CurrentSuit().Get(); suit != SuitClubs {
		t.Errorf("suit = %s, want C", suit)
	}

	_ = c.Attach(top.ID(), f.card(RankQueen, SuitHearts))
	_ = c.Attach(top.ID(), f.card(RankKing, SuitSpades))
	if suit, _ := c.CurrentSuit().Get(); suit != SuitHearts {
		t.Errorf("suit after queen = %s, want H", suit)
	}

	_ = c.Attach(top.ID(), f.card(RankQueen, SuitDiamonds))
	if suit, _ := c.CurrentSuit().Get(); suit != SuitDiamonds {
		t.Errorf("suit after second queen = %s, want D", suit)
	}
}

func TestScoreDoublesPerKing(t *testing.T) {
	var f cardFactory
	c := NewCaravan(CaravanP1A)
	ten := f.card(RankTen, SuitHearts)
	five := f.card(RankFive, SuitHearts)
	_ = c.AddBaseCard(ten)
	_ = c.AddBaseCard(five)
	if got := c.Score(); got != 15 {
		t.Fatalf("Score() = %d, want 15", got)
	}

	_ = c.Attach(five.ID(), f.card(RankKing, SuitClubs))
	_ = c.Attach(five.ID(), f.card(RankKing, SuitDiamonds))
	if got := c.Score(); got != 30 {
		t.Errorf("Score() with two kings = %d, want 30", got)
	}
}

func TestDiscardResetsDerivedProperties(t *testing.T) {
	var f cardFactory
	c := NewCaravan(CaravanP1A)
	_ = c.AddBaseCard(f.card(RankTwo, SuitHearts))
	_ = c.AddBaseCard(f.card(RankNine, SuitHearts))

	c.Discard()

	if c.Len() != 0 || c.Score() != 0 {
		t.Errorf("after discard len=%d score=%d, want 0 0", c.Len(), c.Score())
	}
	if c.Direction() != DirectionUnset {
		t.Errorf("after discard direction = %s", c.Direction())
	}
	if c.CurrentSuit().Valid() {
		t.Errorf("after discard suit = %s, want none", c.CurrentSuit())
	}
	if _, ok := c.TopCard(); ok {
		t.Errorf("after discard TopCard should be absent")
	}
}

func TestCaravanOperationErrors(t *testing.T) {
	var f cardFactory
	c := NewCaravan(CaravanP1A)

	if err := c.AddBaseCard(f.card(RankJack, SuitHearts)); !errors.Is(err, ErrInvalidCardKind) {
		t.Errorf("AddBaseCard(face) = %v, want ErrInvalidCardKind", err)
	}

	base := f.card(RankSix, SuitHearts)
	_ = c.AddBaseCard(base)
	if err := c.Attach(base.ID(), f.card(RankTwo, SuitHearts)); !errors.Is(err, ErrInvalidCardKind) {
		t.Errorf("Attach(numeric) = %v, want ErrInvalidCardKind", err)
	}
	if err := c.Attach(f.id(), f.card(RankKing, SuitHearts)); !errors.Is(err, ErrTargetNotFound) {
		t.Errorf("Attach(missing) = %v, want ErrTargetNotFound", err)
	}
}

func TestPileIsACopy(t *testing.T) {
	var f cardFactory
	c := NewCaravan(CaravanP1A)
	base := f.card(RankSix, SuitHearts)
	_ = c.AddBaseCard(base)
	_ = c.Attach(base.ID(), f.card(RankKing, SuitHearts))

	pile := c.Pile()
	pile[0].Attachments = nil
	if c.Score() != 12 {
		t.Errorf("mutating Pile() leaked into caravan, score = %d", c.Score())
	}
}

func TestRemoveBaseCard(t *testing.T) {
	var f cardFactory
	c := NewCaravan(CaravanP1A)
	a, b := f.card(RankTwo, SuitHearts), f.card(RankFive, SuitHearts)
	_ = c.AddBaseCard(a)
	_ = c.AddBaseCard(b)
	_ = c.Attach(a.ID(), f.card(RankKing, SuitHearts))

	c.RemoveBaseCard(a.ID())

	if c.Len() != 1 || c.Score() != 5 {
		t.Errorf("after remove len=%d score=%d, want 1 5", c.Len(), c.Score())
	}
	c.RemoveBaseCard(a.ID())
	if c.Len() != 1 {
		t.Errorf("removing a missing card changed the pile")
	}
}
