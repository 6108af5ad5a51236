// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/ardanlabs/powledger/foundation/blockchain/accounts"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/events"
	"github.com/ardanlabs/powledger/foundation/nameservice"
	"github.com/ardanlabs/powledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of public ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	// Need this to handle CORS on the websocket.
	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	// This upgrades the HTTP connection to a websocket connection.
	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	// This provides a channel for receiving events from the blockchain.
	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	// Starting a ticker to send a ping message over the websocket.
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	// Block waiting to receive events and send them back to the client.
	for {
		select {
		case msg, wd := <-ch:

			// If the channel is closed, release the websocket.
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// SubmitTransaction adds a new transaction to the mempool. The response says
// whether the transaction was accepted and, if not, why.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var stx submitTx
	if err := web.Decode(r, &stx); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("submit tran", "traceid", v.TraceID, "from", stx.From, "to", stx.To, "amount", stx.Amount, "nonce", stx.Nonce)

	tran := database.Tx{
		Nonce:     stx.Nonce,
		From:      stx.From,
		To:        stx.To,
		Amount:    stx.Amount,
		Data:      stx.Data,
		Signature: stx.Signature,
	}

	if err := h.State.SubmitTransaction(tran); err != nil {
		if isRejection(err) {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		return fmt.Errorf("submitting transaction: %w", err)
	}

	resp := struct {
		Status string `json:"status"`
		Hash   string `json:"hash"`
	}{
		Status: "accepted",
		Hash:   tran.Hash(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	acct := database.ToAccountID(web.Param(r, "account"))

	trans := []tx{}
	for _, tran := range h.State.RetrieveMempool() {
		if acct != "" && acct != tran.From && acct != tran.To {
			continue
		}
		trans = append(trans, toTx(h.NS, tran))
	}

	return web.Respond(ctx, w, trans, http.StatusOK)
}

// Accounts returns the current balances for all users.
func (h Handlers) Accounts(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	accountID := database.ToAccountID(web.Param(r, "account"))

	var blkAccounts map[database.AccountID]accounts.Info
	switch accountID {
	case "":
		blkAccounts = h.State.QueryAccounts()

	default:
		act, err := h.State.QueryAccount(accountID)
		if err != nil {
			return errs.NewTrusted(err, http.StatusNotFound)
		}
		blkAccounts = map[database.AccountID]accounts.Info{accountID: act}
	}

	acts := make([]info, 0, len(blkAccounts))
	for id, act := range blkAccounts {
		acts = append(acts, toInfo(h.NS, id, act))
	}
	sort.Slice(acts, func(i, j int) bool { return acts[i].Account < acts[j].Account })

	latest, err := h.State.RetrieveLatestBlock()
	if err != nil {
		return err
	}

	ai := actInfo{
		LatestBlock: latest.Hash,
		Uncommitted: h.State.QueryMempoolLength(),
		Accounts:    acts,
	}

	return web.Respond(ctx, w, ai, http.StatusOK)
}

// BlocksByAccount returns all the blocks and their details. Without an
// account this is the full chain starting at the genesis block.
func (h Handlers) BlocksByAccount(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	accountID := database.ToAccountID(web.Param(r, "account"))

	dbBlocks := h.State.QueryBlocksByAccount(accountID)
	if len(dbBlocks) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	blocks := make([]block, len(dbBlocks))
	for i, blk := range dbBlocks {
		blocks[i] = toBlock(h.NS, blk)
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// =============================================================================

// isRejection reports whether the error is a reason a transaction was not
// accepted rather than a failure of the node.
func isRejection(err error) bool {
	return errors.Is(err, database.ErrInvalidTransaction) ||
		errors.Is(err, database.ErrInsufficientBalance) ||
		errors.Is(err, database.ErrSigning)
}
