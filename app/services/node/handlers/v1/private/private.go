// Package private maintains the group of handlers for operator access.
package private

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of operator endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// MineBlock mines the current mempool into a new block synchronously and
// returns the sealed block. The beneficiary in the body is optional and
// defaults to the node's beneficiary.
func (h Handlers) MineBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req mineRequest
	if err := web.Decode(r, &req); err != nil && !errors.Is(err, io.EOF) {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	beneficiary := req.Beneficiary
	if beneficiary == "" {
		beneficiary = h.State.RetrieveBeneficiary()
	}

	h.Log.Infow("mine block", "traceid", v.TraceID, "beneficiary", beneficiary)

	block, err := h.State.MineNewBlock(ctx, beneficiary)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return errs.NewTrusted(err, http.StatusServiceUnavailable)
		case errors.Is(err, database.ErrMiningExhausted):
			return errs.NewTrusted(err, http.StatusConflict)
		}
		return fmt.Errorf("mining block: %w", err)
	}

	return web.Respond(ctx, w, block, http.StatusOK)
}

// SignalMining signals the background worker to start a mining operation.
func (h Handlers) SignalMining(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if h.State.Worker == nil {
		return errs.NewTrusted(errors.New("no mining worker is running"), http.StatusConflict)
	}

	h.State.Worker.SignalStartMining()

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "mining signalled",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// ValidateChain revalidates the entire chain including the account replay.
func (h Handlers) ValidateChain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := struct {
		Valid bool   `json:"valid"`
		Error string `json:"error,omitempty"`
	}{
		Valid: true,
	}

	if err := h.State.ValidateLedger(); err != nil {
		resp.Valid = false
		resp.Error = err.Error()
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Status returns the current status of the node.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	latest, err := h.State.RetrieveLatestBlock()
	if err != nil {
		return err
	}

	st := status{
		LatestBlockHash:   latest.Hash,
		LatestBlockNumber: latest.Number,
		ChainLength:       h.State.QueryChainLength(),
		Difficulty:        h.State.RetrieveDifficulty(),
		Uncommitted:       h.State.QueryMempoolLength(),
		Beneficiary:       h.State.RetrieveBeneficiary(),
	}

	return web.Respond(ctx, w, st, http.StatusOK)
}

// BlockByNumber returns the block at the specified number. The value
// "latest" returns the most recent block.
func (h Handlers) BlockByNumber(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	num := web.Param(r, "num")

	number := state.QueryLatest
	if num != "latest" {
		var err error
		number, err = strconv.ParseUint(num, 10, 64)
		if err != nil {
			return errs.NewTrusted(fmt.Errorf("invalid block number %q", num), http.StatusBadRequest)
		}
	}

	block, err := h.State.QueryBlockByNumber(number)
	if err != nil {
		return errs.NewTrusted(err, http.StatusNotFound)
	}

	return web.Respond(ctx, w, block, http.StatusOK)
}
