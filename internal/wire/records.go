// Package wire converts game values to and from transport-neutral structpb records.
//
// Records use the field names clients already speak: players keyed by "P1"/"P2"
// holding deck and hand, caravans keyed by slot code holding id and pile, and
// cards as {id, rank, suit} with a null suit for jokers.
package wire

// CardRecord is the decoded form of a card.
type CardRecord struct {
	ID   string  `mapstructure:"id"`
	Rank string  `mapstructure:"rank"`
	Suit *string `mapstructure:"suit"`
}

type PlayedCardRecord struct {
	BaseCard    CardRecord   `mapstructure:"base_card"`
	Attachments []CardRecord `mapstructure:"attachments"`
}

type CaravanRecord struct {
	ID   string             `mapstructure:"id"`
	Pile []PlayedCardRecord `mapstructure:"pile"`
}

type PlayerRecord struct {
	Deck []CardRecord `mapstructure:"deck"`
	Hand []CardRecord `mapstructure:"hand"`
}

type ResultRecord struct {
	WinnerID      string `mapstructure:"winner_id"`
	Reason        string `mapstructure:"reason"`
	EndTurnNumber int    `mapstructure:"end_turn_number"`
}

// StateRecord is the decoded form of a full game state.
type StateRecord struct {
	Players       map[string]PlayerRecord  `mapstructure:"players"`
	Caravans      map[string]CaravanRecord `mapstructure:"caravans"`
	CurrentPlayer string                   `mapstructure:"current_player"`
	TurnNumber    int                      `mapstructure:"turn_number"`
	Phase         string                   `mapstructure:"phase"`
	Result        *ResultRecord            `mapstructure:"result"`
}

// MoveRecord is the decoded form of a move. Fields a variant does not use are empty.
type MoveRecord struct {
	PlayerID     string `mapstructure:"player_id"`
	MoveType     string `mapstructure:"move_type"`
	CardID       string `mapstructure:"card_id"`
	CaravanID    string `mapstructure:"caravan_id"`
	TargetBaseID string `mapstructure:"target_base_id"`
}
