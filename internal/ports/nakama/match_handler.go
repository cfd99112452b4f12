package nakama

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"caravan/internal/app"
	"caravan/internal/config"
	"caravan/internal/domain"
	"caravan/internal/ports"
	"caravan/internal/random"
	"caravan/internal/wire"
)

const (
	MatchLabelKey_Open = "open" // Key for the joinable flag in the match label

	labelPhaseLobby = "lobby"

	// tickRate is one tick per second, so turn durations convert directly to ticks.
	tickRate = 1
)

// MatchState holds the authoritative runtime state for the Nakama match handler.
// Seat 0 plays as P1 and seat 1 as P2.
type MatchState struct {
	Seats        [app.SeatCount]string       `json:"seats"`         // User IDs, empty string means seat is empty
	OwnerSeat    int                         `json:"owner_seat"`    // Seat index of the match owner, -1 when empty
	Tick         int64                       `json:"tick"`          // Current tick of the match
	TurnDeadline int64                       `json:"turn_deadline"` // Tick at which the current mover auto-concedes, 0 when no timer runs
	TurnTicks    int64                       `json:"turn_ticks"`    // Turn length in ticks, 0 disables the timer
	Wager        int64                       `json:"wager"`         // Caps each player stakes on a game
	Seed         int64                       `json:"seed"`          // Shuffle seed, logged for replay
	Presences    map[string]runtime.Presence `json:"-"`             // Map UserId -> Presence for targeted messaging
	App          *app.Service                `json:"-"`             // Caravan app service
	Setup        app.Setup                   `json:"-"`             // How each game is dealt
	Game         *domain.GameState           `json:"-"`             // Current game, nil in the lobby
	Economy      ports.EconomyPort           `json:"-"`             // Interface to Nakama wallet
}

// seatPlayer maps a seat index to the player it controls.
func seatPlayer(seat int) domain.PlayerID {
	return domain.PlayerID(seat + 1)
}

// playerSeat maps a player back to its seat index.
func playerSeat(player domain.PlayerID) int {
	return int(player) - 1
}

func (ms *MatchState) seatOf(userID string) int {
	for i, seatUserID := range ms.Seats {
		if seatUserID != "" && seatUserID == userID {
			return i
		}
	}
	return -1
}

func (ms *MatchState) GetOpenSeatsCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetOccupiedSeatCount() int {
	return len(ms.Seats) - ms.GetOpenSeatsCount()
}

// inProgress reports whether a game is being played.
func (ms *MatchState) inProgress() bool {
	return ms.Game != nil && !ms.Game.Finished()
}

// seatMap returns the seated user for each player.
func (ms *MatchState) seatMap() map[domain.PlayerID]string {
	out := make(map[domain.PlayerID]string, len(ms.Seats))
	for i, userID := range ms.Seats {
		out[seatPlayer(i)] = userID
	}
	return out
}

// findFirstOccupiedSeat returns the first seat index with an occupant or -1 if none exist.
func findFirstOccupiedSeat(seats []string) int {
	for i, userID := range seats {
		if userID != "" {
			return i
		}
	}
	return -1
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// newMatchState builds the initial state from the loaded game configuration.
func newMatchState(cfg *config.GameConfig, tier string, economy ports.EconomyPort) (*MatchState, error) {
	rng, seed, err := random.NewRand(nil)
	if err != nil {
		return nil, err
	}
	return &MatchState{
		OwnerSeat: -1,
		TurnTicks: int64(cfg.TurnDuration().Seconds()) * tickRate,
		Wager:     config.GetWager(tier),
		Seed:      seed,
		Presences: make(map[string]runtime.Presence),
		App:       app.NewService(rng, cfg.Rules()),
		Setup:     app.SetupFromConfig(cfg),
		Economy:   economy,
	}, nil
}

// MatchInit is called when the match is created. params may carry a "tier" naming a wager tier.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	tier, _ := params["tier"].(string)
	state, err := newMatchState(config.GetGameConfig(), tier, NewNakamaEconomyAdapter(nk))
	if err != nil {
		logger.Error("MatchInit: Failed to seed match: %v", err)
		return nil, 0, ""
	}
	logger.Info("MatchInit: tier=%q wager=%d seed=%d", tier, state.Wager, state.Seed)

	label, err := matchLabel(state)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}
	return state, tickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Seated players may always reconnect.
	if matchState.seatOf(presence.GetUserId()) >= 0 {
		return state, true, ""
	}
	if matchState.inProgress() {
		return state, false, "Game in progress"
	}
	if matchState.GetOpenSeatsCount() <= 0 {
		return state, false, "Match full"
	}
	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p

		if seat := matchState.seatOf(p.GetUserId()); seat >= 0 {
			logger.Info("MatchJoin: User %s reconnected to seat %d.", p.GetUserId(), seat)
			if matchState.Game != nil {
				mh.sendStateView(matchState, dispatcher, logger, seat)
			}
			continue
		}

		assigned := false
		for i, seatUserID := range matchState.Seats {
			if seatUserID == "" {
				matchState.Seats[i] = p.GetUserId()
				assigned = true
				break
			}
		}
		if !assigned {
			logger.Warn("MatchJoin: User %s joined but no seat was available.", p.GetUserId())
		}
	}

	if matchState.OwnerSeat < 0 || matchState.Seats[matchState.OwnerSeat] == "" {
		matchState.OwnerSeat = findFirstOccupiedSeat(matchState.Seats[:])
		if matchState.OwnerSeat >= 0 {
			logger.Debug("MatchJoin: Owner set to seat %d.", matchState.OwnerSeat)
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger, OpPlayerJoined)

	return matchState
}

// MatchLeave is called when one or more players leave the match. A seated player who
// leaves mid-game keeps the seat and concedes once the turn comes back to them.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())

		seat := matchState.seatOf(p.GetUserId())
		if seat < 0 {
			continue
		}
		if matchState.inProgress() {
			logger.Info("MatchLeave: User %s left seat %d mid-game and will concede.", p.GetUserId(), seat)
			continue
		}
		matchState.Seats[seat] = ""
		logger.Debug("MatchLeave: User %s left, seat %d freed.", p.GetUserId(), seat)
	}

	if len(matchState.Presences) == 0 {
		logger.Info("MatchLeave: Terminating empty match.")
		return nil
	}

	if matchState.OwnerSeat < 0 || matchState.Seats[matchState.OwnerSeat] == "" {
		matchState.OwnerSeat = findFirstOccupiedSeat(matchState.Seats[:])
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger, OpPlayerLeft)

	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		var err error
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handleStartGame(ctx, matchState, dispatcher, logger, msg)
		case OpSubmitMove:
			err = mh.handleSubmitMove(ctx, matchState, dispatcher, logger, msg)
		case OpRequestState:
			mh.handleRequestState(matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
		if err != nil {
			return mh.abort(matchState, dispatcher, logger, err)
		}
	}

	if err := mh.forceConcessions(ctx, matchState, dispatcher, logger); err != nil {
		return mh.abort(matchState, dispatcher, logger, err)
	}
	return matchState
}

// forceConcessions concedes for a current player who has left or run out of time.
// The core has no clock; the host decides when a turn is forfeit.
func (mh *matchHandler) forceConcessions(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) error {
	if !state.inProgress() {
		return nil
	}
	mover := state.Game.CurrentPlayer
	userID := state.Seats[playerSeat(mover)]

	_, connected := state.Presences[userID]
	timedOut := state.TurnDeadline > 0 && state.Tick >= state.TurnDeadline
	if connected && !timedOut {
		return nil
	}

	if timedOut {
		logger.Info("forceConcessions: %s (%s) ran out of time at tick %d.", mover, userID, state.Tick)
	} else {
		logger.Info("forceConcessions: %s (%s) is gone, conceding.", mover, userID)
	}
	return mh.applyMove(ctx, state, dispatcher, logger, domain.Concede{Player: mover}, "")
}

func (mh *matchHandler) handleStartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := state.seatOf(senderID)

	logger.Info("StartGame: Request received from %s (seat=%d, owner_seat=%d, occupied=%d)", senderID, senderSeat, state.OwnerSeat, state.GetOccupiedSeatCount())

	if senderSeat < 0 || senderSeat != state.OwnerSeat {
		logger.Warn("StartGame: User %s tried to start game but is not owner (owner_seat=%d)", senderID, state.OwnerSeat)
		mh.sendError(state, dispatcher, logger, senderID, ErrCodeForbidden, "only the match owner can start the game")
		return
	}
	if state.inProgress() {
		mh.sendError(state, dispatcher, logger, senderID, ErrCodeBadRequest, "game already in progress")
		return
	}
	if occupied := state.GetOccupiedSeatCount(); occupied < app.SeatCount {
		logger.Warn("StartGame: Cannot start with %d players. Need %d.", occupied, app.SeatCount)
		mh.sendError(state, dispatcher, logger, senderID, ErrCodeBadRequest, fmt.Sprintf("need %d players", app.SeatCount))
		return
	}
	for seat, userID := range state.Seats {
		if _, ok := state.Presences[userID]; !ok {
			logger.Warn("StartGame: Seat %d (%s) is not connected.", seat, userID)
			mh.sendError(state, dispatcher, logger, senderID, ErrCodeBadRequest, fmt.Sprintf("player in seat %d is not connected", seat))
			return
		}
	}
	if err := mh.checkWagers(ctx, state); err != nil {
		logger.Warn("StartGame: %v", err)
		mh.sendError(state, dispatcher, logger, senderID, ErrCodeInsufficient, err.Error())
		return
	}

	game, events, err := state.App.StartGame(state.Setup)
	if err != nil {
		logger.Error("StartGame: Failed to start game: %v", err)
		mh.sendError(state, dispatcher, logger, senderID, ErrCodeInternalFault, "failed to start game")
		return
	}
	state.Game = game
	mh.resetTurnTimer(state)
	mh.updateLabel(state, dispatcher, logger)

	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
	logger.Info("StartGame: Game started, %s to move.", game.CurrentPlayer)
}

// checkWagers makes sure both seats can cover the stake.
func (mh *matchHandler) checkWagers(ctx context.Context, state *MatchState) error {
	if state.Wager <= 0 || state.Economy == nil {
		return nil
	}
	for _, userID := range state.Seats {
		balance, err := state.Economy.GetBalance(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to read balance for %s: %w", userID, err)
		}
		if balance < state.Wager {
			return fmt.Errorf("%s has %d %s, wager is %d", userID, balance, ports.Currency, state.Wager)
		}
	}
	return nil
}

// handleSubmitMove decodes and applies a move. It only returns an error for a broken
// engine invariant; rejected moves are reported to the sender.
func (mh *matchHandler) handleSubmitMove(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) error {
	senderID := msg.GetUserId()
	senderSeat := state.seatOf(senderID)

	if !state.inProgress() {
		logger.Warn("handleSubmitMove: Game not in progress.")
		mh.sendError(state, dispatcher, logger, senderID, ErrCodeBadRequest, "game not in progress")
		return nil
	}
	if senderSeat < 0 {
		mh.sendError(state, dispatcher, logger, senderID, ErrCodeForbidden, "not seated")
		return nil
	}

	move, err := wire.UnmarshalMove(msg.GetData())
	if err != nil {
		logger.Warn("handleSubmitMove: User %s sent a bad move: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, ErrCodeBadRequest, err.Error())
		return nil
	}
	move = withMover(move, seatPlayer(senderSeat))

	return mh.applyMove(ctx, state, dispatcher, logger, move, senderID)
}

// applyMove steps the game and fans out the results. senderID receives any rejection.
func (mh *matchHandler) applyMove(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, move domain.Move, senderID string) error {
	events, err := state.App.Step(state.Game, move)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidOutcome) {
			return err
		}
		logger.Warn("applyMove: %s %s rejected: %v", move.Mover(), move.Kind(), err)
		if senderID != "" {
			mh.sendError(state, dispatcher, logger, senderID, ErrCodeIllegalMove, err.Error())
		}
		return nil
	}

	mh.resetTurnTimer(state)
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
	for seat := range state.Seats {
		mh.sendStateView(state, dispatcher, logger, seat)
	}
	return nil
}

func (mh *matchHandler) handleRequestState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	seat := state.seatOf(msg.GetUserId())
	if seat < 0 || state.Game == nil {
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), ErrCodeBadRequest, "no game state for this user")
		return
	}
	mh.sendStateView(state, dispatcher, logger, seat)
}

func (mh *matchHandler) resetTurnTimer(state *MatchState) {
	if state.TurnTicks <= 0 || !state.inProgress() {
		state.TurnDeadline = 0
		return
	}
	state.TurnDeadline = state.Tick + state.TurnTicks
}

// abort reports a broken engine invariant to everyone and ends the match.
func (mh *matchHandler) abort(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, err error) interface{} {
	logger.Error("MatchLoop: Terminating match after invariant violation: %v", err)
	data, mErr := marshalPayload(map[string]any{
		"code":    ErrCodeInternalFault,
		"message": "the game reached an invalid state and was stopped",
	})
	if mErr == nil {
		dispatcher.BroadcastMessage(OpGameError, data, nil, nil, true)
	}
	return nil
}

// broadcastEvent handles the conversion and dispatching of app events to Nakama.
func (mh *matchHandler) broadcastEvent(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	switch ev.Kind {
	case app.EventHandDealt:
		// Hands only travel inside the private state view.
		for _, player := range ev.Recipients {
			mh.sendStateView(state, dispatcher, logger, playerSeat(player))
		}
		return
	case app.EventGameEnded:
		p := ev.Payload.(app.GameEndedPayload)
		mh.settle(ctx, state, logger, p.Result)
		state.TurnDeadline = 0
		mh.releaseAbsentSeats(state, dispatcher, logger)
		mh.updateLabel(state, dispatcher, logger)
	}

	opCode, data, ok, err := eventToMessage(ev)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}
	if !ok {
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}

	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, player := range ev.Recipients {
			if p, ok := state.Presences[state.Seats[playerSeat(player)]]; ok {
				recipients = append(recipients, p)
			}
		}
		// Targeted events must never fall back to a broadcast.
		if len(recipients) == 0 {
			return
		}
	}
	dispatcher.BroadcastMessage(opCode, data, recipients, nil, true)
}

// releaseAbsentSeats frees the seats of players who left during the game that just
// ended and hands ownership to a remaining player.
func (mh *matchHandler) releaseAbsentSeats(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	released := false
	for seat, userID := range state.Seats {
		if userID == "" {
			continue
		}
		if _, ok := state.Presences[userID]; ok {
			continue
		}
		state.Seats[seat] = ""
		released = true
		logger.Info("releaseAbsentSeats: Seat %d freed, %s left during the game.", seat, userID)
	}
	if !released {
		return
	}
	if state.OwnerSeat < 0 || state.Seats[state.OwnerSeat] == "" {
		state.OwnerSeat = findFirstOccupiedSeat(state.Seats[:])
	}
	mh.broadcastMatchState(state, dispatcher, logger, OpPlayerLeft)
}

// settle pays the wager to the winner.
func (mh *matchHandler) settle(ctx context.Context, state *MatchState, logger runtime.Logger, result domain.GameResult) {
	if state.Economy == nil {
		return
	}
	updates := app.Settle(result, state.seatMap(), state.Wager)
	if len(updates) == 0 {
		return
	}
	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)
	for i := range updates {
		updates[i].Metadata["match_id"] = matchID
	}
	if err := state.Economy.UpdateBalances(ctx, updates); err != nil {
		logger.Error("Failed to update balances: %v", err)
	}
}

// sendStateView sends a seat its redacted view of the game.
func (mh *matchHandler) sendStateView(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, seat int) {
	if state.Game == nil || seat < 0 || seat >= len(state.Seats) {
		return
	}
	presence, ok := state.Presences[state.Seats[seat]]
	if !ok {
		return
	}
	view, err := wire.ViewFor(state.Game, seatPlayer(seat))
	if err != nil {
		logger.Error("Failed to build state view for seat %d: %v", seat, err)
		return
	}
	if state.TurnDeadline > 0 {
		view.Fields["turn_seconds_remaining"] = structpb.NewNumberValue(float64((state.TurnDeadline - state.Tick) / tickRate))
	}
	data, err := marshalStruct(view)
	if err != nil {
		logger.Error("Failed to marshal state view: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpStateUpdated, data, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) broadcastMatchState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, opCode int64) {
	players := make([]any, 0, len(state.Seats))
	for i, userID := range state.Seats {
		if userID == "" {
			continue
		}
		displayName := userID
		_, connected := state.Presences[userID]
		if p, ok := state.Presences[userID]; ok {
			displayName = p.GetUsername()
		}
		players = append(players, map[string]any{
			"user_id":      userID,
			"seat":         i,
			"player_id":    seatPlayer(i).String(),
			"is_owner":     i == state.OwnerSeat,
			"display_name": displayName,
			"connected":    connected,
		})
	}

	seats := make([]any, 0, len(state.Seats))
	for _, userID := range state.Seats {
		seats = append(seats, userID)
	}
	data, err := marshalPayload(map[string]any{
		"seats":      seats,
		"owner_seat": state.OwnerSeat,
		"tick":       state.Tick,
		"wager":      state.Wager,
		"players":    players,
	})
	if err != nil {
		logger.Error("Failed to marshal match snapshot: %v", err)
		return
	}
	dispatcher.BroadcastMessage(opCode, data, nil, nil, true)
}

// sendError sends a GameError event to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	data, err := marshalPayload(map[string]any{
		"code":    code,
		"message": message,
	})
	if err != nil {
		logger.Error("Failed to marshal GameError: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}
	dispatcher.BroadcastMessage(OpGameError, data, []runtime.Presence{presence}, nil, true)
}

// matchLabel renders {"open":bool,"game":"caravan","phase":...,"wager":n}.
func matchLabel(state *MatchState) (string, error) {
	phase := labelPhaseLobby
	if state.Game != nil {
		phase = string(state.Game.Phase)
	}
	label, err := structpb.NewStruct(map[string]any{
		MatchLabelKey_Open: !state.inProgress() && state.GetOpenSeatsCount() > 0,
		"game":             GameLabel,
		"phase":            phase,
		"wager":            state.Wager,
	})
	if err != nil {
		return "", err
	}
	b, err := protojson.Marshal(label)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := matchLabel(state)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated with %d grace seconds", graceSeconds)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
