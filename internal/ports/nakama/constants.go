package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a lobby-capable match.
	RpcQuickMatch = "quick_match"

	// RpcCaravanRules returns the active rule configuration.
	RpcCaravanRules = "caravan_rules"

	// MatchNameCaravan is the authoritative match handler name registered with Nakama.
	MatchNameCaravan = "caravan_match"

	// GameLabel identifies Caravan matches in label queries.
	GameLabel = "caravan"
)

// Op codes for client messages and server events. Payloads are JSON objects.
const (
	// Client -> Server
	OpStartGame    int64 = 1
	OpSubmitMove   int64 = 2 // move record, see internal/wire
	OpRequestState int64 = 3

	// Server -> Client events
	OpPlayerJoined int64 = 101
	OpPlayerLeft   int64 = 102
	OpGameStarted  int64 = 103
	OpStateUpdated int64 = 104 // send privately, per seat view
	OpMoveApplied  int64 = 105
	OpGameEnded    int64 = 107
	OpGameError    int64 = 108
)

// Error codes carried by OpGameError.
const (
	ErrCodeBadRequest    = 400
	ErrCodeForbidden     = 403
	ErrCodeIllegalMove   = 422
	ErrCodeInsufficient  = 402
	ErrCodeInternalFault = 500
)
