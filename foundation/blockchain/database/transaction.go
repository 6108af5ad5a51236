package database

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
)

// Tx is the transactional information between two parties. A Tx is a value
// and is never changed once constructed. Signing produces a new value.
type Tx struct {
	Nonce     uint64    `json:"nonce,omitempty"`     // Ethereum: Unique id for the transaction supplied by the sender.
	From      AccountID `json:"from"`                // Account sending the value.
	To        AccountID `json:"to"`                  // Account receiving the value.
	Amount    int64     `json:"amount"`              // Monetary value moved by this transaction.
	Data      string    `json:"data,omitempty"`      // Extra data related to the transaction.
	Signature string    `json:"signature,omitempty"` // Hex [R|S|V] signature over the content.
}

// NewTx constructs a new unsigned transaction. Account ids are converted to
// their canonical form. A transaction that will be signed needs a nonce
// larger than any nonce the sender has used before.
func NewTx(nonce uint64, from AccountID, to AccountID, amount int64, data string) (Tx, error) {
	tx := Tx{
		Nonce:  nonce,
		From:   from.Canonical(),
		To:     to.Canonical(),
		Amount: amount,
		Data:   data,
	}

	if err := tx.validateFields(); err != nil {
		return Tx{}, err
	}

	return tx, nil
}

// NewRewardTx constructs the transaction that mints the mining reward
// for the specified beneficiary.
func NewRewardTx(beneficiary AccountID, reward int64) Tx {
	return Tx{
		From:   MintAccountID,
		To:     beneficiary,
		Amount: reward,
	}
}

// NewGenesisTx constructs a transaction that carries the genesis payload
// or a genesis allocation. The amount may be zero for the payload.
func NewGenesisTx(to AccountID, amount int64, data string) Tx {
	return Tx{
		From:   MintAccountID,
		To:     to,
		Amount: amount,
		Data:   data,
	}
}

// Sign uses the specified private key to sign the transaction. The key must
// belong to the sending account and the transaction can only be signed once.
func (tx Tx) Sign(privateKey *ecdsa.PrivateKey) (Tx, error) {
	if tx.IsSigned() {
		return Tx{}, fmt.Errorf("%w: transaction is already signed", ErrSigning)
	}

	if err := tx.validateFields(); err != nil {
		return Tx{}, err
	}

	signer := PublicKeyToAccountID(privateKey.PublicKey)
	if !signer.Equals(tx.From) {
		return Tx{}, fmt.Errorf("%w: signer %s is not the sender %s", ErrSigning, signer, tx.From)
	}

	v, r, s, err := signature.Sign(tx.content(), privateKey)
	if err != nil {
		return Tx{}, fmt.Errorf("%w: %w", ErrSigning, err)
	}

	tx.Signature = signature.SignatureString(v, r, s)

	return tx, nil
}

// Validate checks the fields of the transaction and, when a signature is
// attached, that it was produced by the sending account. Minted transactions
// are not signed and skip the signature check.
func (tx Tx) Validate() error {
	if err := tx.validateFields(); err != nil {
		return err
	}

	if tx.IsMint() || !tx.IsSigned() {
		return nil
	}

	v, r, s, err := signature.ToVRSFromHexSignature(tx.Signature)
	if err != nil {
		return fmt.Errorf("%w: malformed signature: %w", ErrInvalidTransaction, err)
	}

	if err := signature.VerifySignature(v, r, s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}

	signer, err := signature.FromAddress(tx.content(), v, r, s)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}

	if !AccountID(signer).Equals(tx.From) {
		return fmt.Errorf("%w: signature belongs to %s, not %s", ErrInvalidTransaction, signer, tx.From)
	}

	return nil
}

// Canonical returns the transaction with its account ids in canonical form.
// The signature stays valid since it covers the canonical content.
func (tx Tx) Canonical() Tx {
	tx.From = tx.From.Canonical()
	tx.To = tx.To.Canonical()
	return tx
}

// IsSigned reports whether a signature is attached.
func (tx Tx) IsSigned() bool {
	return tx.Signature != ""
}

// IsMint reports whether the transaction was minted by the ledger.
func (tx Tx) IsMint() bool {
	return tx.From.IsMint()
}

// Hash returns the content hash of the transaction which is what gets signed.
func (tx Tx) Hash() string {
	return signature.Hash(tx.content())
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s:%d->%s:%d", tx.From, tx.Nonce, tx.To, tx.Amount)
}

// =============================================================================

// txContent is the part of the transaction covered by the signature.
type txContent struct {
	Nonce  uint64    `json:"nonce"`
	From   AccountID `json:"from"`
	To     AccountID `json:"to"`
	Amount int64     `json:"amount"`
	Data   string    `json:"data,omitempty"`
}

// content uses the canonical account ids so the casing of a hex address
// doesn't change what was signed.
func (tx Tx) content() txContent {
	return txContent{
		Nonce:  tx.Nonce,
		From:   tx.From.Canonical(),
		To:     tx.To.Canonical(),
		Amount: tx.Amount,
		Data:   tx.Data,
	}
}

// validateFields checks the shape of the transaction. Minted transactions may
// carry a zero amount since the genesis payload moves no value.
func (tx Tx) validateFields() error {
	if tx.From == "" {
		return fmt.Errorf("%w: from account is empty", ErrInvalidTransaction)
	}

	if tx.To == "" {
		return fmt.Errorf("%w: to account is empty", ErrInvalidTransaction)
	}

	switch {
	case tx.Amount < 0:
		return fmt.Errorf("%w: amount %d is negative", ErrInvalidTransaction, tx.Amount)
	case tx.Amount == 0 && !tx.IsMint():
		return fmt.Errorf("%w: amount must be greater than zero", ErrInvalidTransaction)
	}

	return nil
}
