package public

import (
	"github.com/ardanlabs/powledger/foundation/blockchain/accounts"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/nameservice"
)

type submitTx struct {
	Nonce     uint64             `json:"nonce"`
	From      database.AccountID `json:"from" validate:"required"`
	To        database.AccountID `json:"to" validate:"required"`
	Amount    int64              `json:"amount"`
	Data      string             `json:"data"`
	Signature string             `json:"signature"`
}

type tx struct {
	Nonce       uint64             `json:"nonce"`
	FromAccount database.AccountID `json:"from"`
	FromName    string             `json:"from_name"`
	To          database.AccountID `json:"to"`
	ToName      string             `json:"to_name"`
	Amount      int64              `json:"amount"`
	Data        string             `json:"data,omitempty"`
	Sig         string             `json:"sig,omitempty"`
}

type block struct {
	Number        uint64 `json:"number"`
	PrevBlockHash string `json:"prev_block_hash"`
	TimeStamp     uint64 `json:"timestamp"`
	Nonce         uint64 `json:"nonce"`
	Difficulty    uint   `json:"difficulty"`
	Hash          string `json:"hash"`
	Transactions  []tx   `json:"trans"`
}

type info struct {
	Account  database.AccountID `json:"account"`
	Name     string             `json:"name"`
	Balance  int64              `json:"balance"`
	Received int64              `json:"received"`
	Spent    int64              `json:"spent"`
	Nonce    uint64             `json:"nonce"`
}

type actInfo struct {
	LatestBlock string `json:"latest_block"`
	Uncommitted int    `json:"uncommitted"`
	Accounts    []info `json:"accounts"`
}

// =============================================================================

func toTx(ns *nameservice.NameService, tran database.Tx) tx {
	return tx{
		Nonce:       tran.Nonce,
		FromAccount: tran.From,
		FromName:    ns.Lookup(tran.From),
		To:          tran.To,
		ToName:      ns.Lookup(tran.To),
		Amount:      tran.Amount,
		Data:        tran.Data,
		Sig:         tran.Signature,
	}
}

func toTxs(ns *nameservice.NameService, trans []database.Tx) []tx {
	out := make([]tx, len(trans))
	for i, tran := range trans {
		out[i] = toTx(ns, tran)
	}
	return out
}

// toBlock converts a block into the descriptor returned by the API.
func toBlock(ns *nameservice.NameService, blk database.Block) block {
	return block{
		Number:        blk.Number,
		PrevBlockHash: blk.PrevBlockHash,
		TimeStamp:     blk.TimeStamp,
		Nonce:         blk.Nonce,
		Difficulty:    blk.Difficulty,
		Hash:          blk.Hash,
		Transactions:  toTxs(ns, blk.Trans),
	}
}

func toInfo(ns *nameservice.NameService, id database.AccountID, act accounts.Info) info {
	return info{
		Account:  id,
		Name:     ns.Lookup(id),
		Balance:  act.Balance,
		Received: act.Received,
		Spent:    act.Spent,
		Nonce:    act.Nonce,
	}
}
