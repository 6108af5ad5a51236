package database_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	pkHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	pkFrom   = "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4"
)

func noop(v string, args ...any) {}

// =============================================================================

func Test_NewTx(t *testing.T) {
	type table struct {
		name   string
		from   database.AccountID
		to     database.AccountID
		amount int64
		err    error
	}

	tt := []table{
		{name: "valid", from: "alice", to: "bob", amount: 10},
		{name: "negative", from: "alice", to: "bob", amount: -5, err: database.ErrInvalidTransaction},
		{name: "zero", from: "alice", to: "bob", amount: 0, err: database.ErrInvalidTransaction},
		{name: "empty-to", from: "alice", to: "", amount: 10, err: database.ErrInvalidTransaction},
		{name: "empty-from", from: "", to: "bob", amount: 10, err: database.ErrInvalidTransaction},
	}

	t.Log("Given the need to construct transactions.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a %s transaction.", testID, tst.name)
			{
				f := func(t *testing.T) {
					tx, err := database.NewTx(0, tst.from, tst.to, tst.amount, "")
					if !errors.Is(err, tst.err) {
						t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, err)
						t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, tst.err)
						t.Fatalf("\t%s\tTest %d:\tShould get back the expected error.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get back the expected error.", success, testID)

					if tst.err == nil && (tx.From != tst.from || tx.To != tst.to || tx.Amount != tst.amount) {
						t.Fatalf("\t%s\tTest %d:\tShould get back the fields provided: %v", failed, testID, tx)
					}
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_SignTx(t *testing.T) {
	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	t.Log("Given the need to sign transactions.")
	{
		t.Logf("\tTest 0:\tWhen the signer is the sender.")
		{
			tx, err := database.NewTx(1, pkFrom, "bob", 10, "")
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to construct a transaction: %v", failed, err)
			}

			signed, err := tx.Sign(pk)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to sign the transaction: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to sign the transaction.", success)

			if err := signed.Validate(); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to validate the signature: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to validate the signature.", success)

			if _, err := signed.Sign(pk); !errors.Is(err, database.ErrSigning) {
				t.Fatalf("\t%s\tTest 0:\tShould not be able to sign twice: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould not be able to sign twice.", success)

			if tx.IsSigned() {
				t.Fatalf("\t%s\tTest 0:\tShould not change the original transaction.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould not change the original transaction.", success)

			tampered := signed
			tampered.Amount = 1000
			if err := tampered.Validate(); !errors.Is(err, database.ErrInvalidTransaction) {
				t.Fatalf("\t%s\tTest 0:\tShould reject a tampered signed transaction: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould reject a tampered signed transaction.", success)
		}

		t.Logf("\tTest 1:\tWhen the signer is not the sender.")
		{
			tx, err := database.NewTx(0, "alice", "bob", 10, "")
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to construct a transaction: %v", failed, err)
			}

			if _, err := tx.Sign(pk); !errors.Is(err, database.ErrSigning) {
				t.Fatalf("\t%s\tTest 1:\tShould get a signing error: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould get a signing error.", success)
		}
	}
}

func Test_BlockHash(t *testing.T) {
	trans := []database.Tx{
		database.NewRewardTx("bob", 534),
		{From: "alice", To: "bob", Amount: 10},
	}

	b := database.NewBlock(1_700_000_000_000, trans)

	t.Log("Given the need to hash blocks.")
	{
		if b.Nonce != 0 || b.PrevBlockHash != "" {
			t.Fatalf("\t%s\tShould start with a zero nonce and no parent.", failed)
		}
		t.Logf("\t%s\tShould start with a zero nonce and no parent.", success)

		if b.ComputeHash() != b.ComputeHash() || b.Hash != b.ComputeHash() {
			t.Fatalf("\t%s\tShould compute the same hash twice.", failed)
		}
		t.Logf("\t%s\tShould compute the same hash twice.", success)

		if !b.IsSealed() {
			t.Fatalf("\t%s\tShould be sealed after construction.", failed)
		}
		t.Logf("\t%s\tShould be sealed after construction.", success)

		reordered := database.NewBlock(b.TimeStamp, []database.Tx{trans[1], trans[0]})
		if reordered.Hash == b.Hash {
			t.Fatalf("\t%s\tShould get a different hash when the transaction order changes.", failed)
		}
		t.Logf("\t%s\tShould get a different hash when the transaction order changes.", success)

		nonced := b
		nonced.Nonce++
		if nonced.ComputeHash() == b.Hash {
			t.Fatalf("\t%s\tShould get a different hash when the nonce changes.", failed)
		}
		t.Logf("\t%s\tShould get a different hash when the nonce changes.", success)

		trans[1].Amount = 99
		if !b.IsSealed() {
			t.Fatalf("\t%s\tShould not be affected by changes to the caller's slice.", failed)
		}
		t.Logf("\t%s\tShould not be affected by changes to the caller's slice.", success)

		tampered := b.Clone()
		tampered.Trans[1].Amount = 1000
		if tampered.IsSealed() {
			t.Fatalf("\t%s\tShould detect a tampered amount.", failed)
		}
		if !b.IsSealed() {
			t.Fatalf("\t%s\tShould not share transactions with a clone.", failed)
		}
		t.Logf("\t%s\tShould detect a tampered amount.", success)
	}
}

func Test_Mine(t *testing.T) {
	t.Log("Given the need to mine blocks.")
	{
		for difficulty := uint(1); difficulty <= 2; difficulty++ {
			t.Logf("\tTest %d:\tWhen mining at difficulty %d.", difficulty, difficulty)
			{
				b := database.NewBlock(1_700_000_000_000, []database.Tx{database.NewRewardTx("bob", 534)})
				b.PrevBlockHash = signature.ZeroHash

				if err := b.Mine(context.Background(), difficulty, noop); err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to mine the block: %v", failed, difficulty, err)
				}
				t.Logf("\t%s\tTest %d:\tShould be able to mine the block.", success, difficulty)

				for i := range difficulty {
					if b.Hash[i] != '0' {
						t.Fatalf("\t%s\tTest %d:\tShould have %d leading zeros: %s", failed, difficulty, difficulty, b.Hash)
					}
				}
				t.Logf("\t%s\tTest %d:\tShould have %d leading zeros.", success, difficulty, difficulty)

				if !b.IsSealed() || b.Difficulty != difficulty {
					t.Fatalf("\t%s\tTest %d:\tShould be sealed with the difficulty recorded.", failed, difficulty)
				}
				t.Logf("\t%s\tTest %d:\tShould be sealed with the difficulty recorded.", success, difficulty)
			}
		}
	}
}

func Test_MineCancel(t *testing.T) {
	t.Log("Given the need to stop mining.")
	{
		b := database.NewBlock(1_700_000_000_000, nil)
		start := b.Hash

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := b.Mine(ctx, 64, noop); !errors.Is(err, context.Canceled) {
			t.Fatalf("\t%s\tShould get a cancelled error: %v", failed, err)
		}
		t.Logf("\t%s\tShould get a cancelled error.", success)

		if b.Nonce != 0 || b.Hash != start {
			t.Fatalf("\t%s\tShould put the block back to unsealed.", failed)
		}
		t.Logf("\t%s\tShould put the block back to unsealed.", success)

		if err := b.MineBounded(context.Background(), 64, 10, noop); !errors.Is(err, database.ErrMiningExhausted) {
			t.Fatalf("\t%s\tShould stop after the attempt cap: %v", failed, err)
		}
		t.Logf("\t%s\tShould stop after the attempt cap.", success)
	}
}

func Test_ValidateBlock(t *testing.T) {
	genesis := database.NewBlock(1_700_000_000_000, []database.Tx{database.NewGenesisTx(database.MintAccountID, 0, "init")})

	next := database.NewBlock(1_700_000_001_000, []database.Tx{database.NewRewardTx("bob", 534)})
	next.Number = 1
	next.PrevBlockHash = genesis.Hash
	if err := next.Mine(context.Background(), 1, noop); err != nil {
		t.Fatalf("Should be able to mine the block: %v", err)
	}

	t.Log("Given the need to validate blocks against their parent.")
	{
		if err := next.ValidateBlock(genesis, noop); err != nil {
			t.Fatalf("\t%s\tShould validate a linked block: %v", failed, err)
		}
		t.Logf("\t%s\tShould validate a linked block.", success)

		unlinked := next.Clone()
		unlinked.PrevBlockHash = signature.ZeroHash
		var cie *database.ChainIntegrityError
		if err := unlinked.ValidateBlock(genesis, noop); !errors.As(err, &cie) || cie.Number != 1 {
			t.Fatalf("\t%s\tShould reject a block that doesn't point at its parent: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a block that doesn't point at its parent.", success)

		renumbered := next.Clone()
		renumbered.Number = 5
		if err := renumbered.ValidateBlock(genesis, noop); !errors.Is(err, database.ErrChainIntegrity) {
			t.Fatalf("\t%s\tShould reject a block with the wrong number: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a block with the wrong number.", success)
	}
}

func Test_IsHashSolved(t *testing.T) {
	type table struct {
		difficulty uint
		hash       string
		solved     bool
	}

	tt := []table{
		{0, "ff", true},
		{1, "0f", true},
		{2, "0f", false},
		{2, "00f", true},
		{3, "00", false},
	}

	for testID, tst := range tt {
		if got := database.IsHashSolved(tst.difficulty, tst.hash); got != tst.solved {
			t.Errorf("\t%s\tTest %d:\tShould get %v for %q at %d.", failed, testID, tst.solved, tst.hash, tst.difficulty)
		}
	}
}

func Test_AccountCasing(t *testing.T) {
	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	lower := database.AccountID(strings.ToLower(pkFrom))

	t.Log("Given the need to treat every casing of an address as one account.")
	{
		if database.ToAccountID(string(lower)) != pkFrom {
			t.Fatalf("\t%s\tShould convert a hex address to its checksummed form.", failed)
		}
		if database.ToAccountID("alice") != "alice" {
			t.Fatalf("\t%s\tShould leave a non hex account as is.", failed)
		}
		t.Logf("\t%s\tShould convert account ids to their canonical form.", success)

		tx, err := database.NewTx(1, lower, "bob", 10, "")
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct a transaction: %v", failed, err)
		}
		if tx.From != pkFrom {
			t.Fatalf("\t%s\tShould store the checksummed sender: %s", failed, tx.From)
		}
		t.Logf("\t%s\tShould store the checksummed sender.", success)

		raw := database.Tx{Nonce: 1, From: lower, To: "bob", Amount: 10}
		signed, err := raw.Sign(pk)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to sign with a lowercase sender: %v", failed, err)
		}

		if err := signed.Canonical().Validate(); err != nil {
			t.Fatalf("\t%s\tShould keep the signature valid in canonical form: %v", failed, err)
		}
		if signed.Hash() != signed.Canonical().Hash() {
			t.Fatalf("\t%s\tShould hash both casings the same.", failed)
		}
		t.Logf("\t%s\tShould keep the signature valid in canonical form.", success)

		renonced := signed
		renonced.Nonce = 2
		if err := renonced.Validate(); !errors.Is(err, database.ErrInvalidTransaction) {
			t.Fatalf("\t%s\tShould cover the nonce with the signature: %v", failed, err)
		}
		t.Logf("\t%s\tShould cover the nonce with the signature.", success)
	}
}
