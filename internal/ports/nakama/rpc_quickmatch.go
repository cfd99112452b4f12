package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"caravan/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// QuickMatchRequest optionally names the wager tier to play at.
type QuickMatchRequest struct {
	Tier string `json:"tier"`
}

// QuickMatchResponse is the payload returned to clients when requesting a lobby-capable match.
type QuickMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
	Wager   int64  `json:"wager"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcQuickMatch, rpcQuickMatch); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcCaravanRules, rpcCaravanRules)
}

// quickMatchQuery finds open caravan lobbies staked at the given wager.
func quickMatchQuery(wager int64) string {
	return fmt.Sprintf("+label.open:T +label.game:%s +label.phase:lobby +label.wager:%d", GameLabel, wager)
}

func rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	var req QuickMatchRequest
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", runtime.NewError("invalid quick match payload", 3)
		}
	}
	wager := config.GetWager(req.Tier)

	limit := 10
	authoritative := true
	minSize := 1
	maxSize := 1 // one seated player waiting for an opponent

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, quickMatchQuery(wager))
	if err != nil {
		logger.Error("rpcQuickMatch [User:%s]: Failed to list matches: %v", userID, err)
		return "", err
	}

	resp := QuickMatchResponse{Wager: wager}
	if len(matches) > 0 {
		resp.MatchID = matches[0].MatchId
		logger.Info("rpcQuickMatch [User:%s]: Found existing match %s", userID, resp.MatchID)
	} else {
		// Seat/owner assignment happens in MatchJoin (server-authoritative).
		resp.MatchID, err = nk.MatchCreate(ctx, MatchNameCaravan, map[string]interface{}{"tier": req.Tier})
		if err != nil {
			logger.Error("rpcQuickMatch [User:%s]: Failed to create match: %v", userID, err)
			return "", err
		}
		resp.IsNew = true
		logger.Info("rpcQuickMatch [User:%s]: Created new match %s", userID, resp.MatchID)
	}

	b, err := json.Marshal(resp)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
