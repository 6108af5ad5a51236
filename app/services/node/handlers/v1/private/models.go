package private

import "github.com/ardanlabs/powledger/foundation/blockchain/database"

type mineRequest struct {
	Beneficiary database.AccountID `json:"beneficiary"`
}

type status struct {
	LatestBlockHash   string             `json:"latest_block_hash"`
	LatestBlockNumber uint64             `json:"latest_block_number"`
	ChainLength       int                `json:"chain_length"`
	Difficulty        uint               `json:"difficulty"`
	Uncommitted       int                `json:"uncommitted"`
	Beneficiary       database.AccountID `json:"beneficiary"`
}
