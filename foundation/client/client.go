// Package client provides support for talking to a ledger node over its
// public and private web APIs. Requests are retried using an exponential
// backoff when the node can't be reached or responds with a 5xx.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/hashicorp/go-retryablehttp"
)

// Error is returned when the node responds with a failure status.
type Error struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("node responded %d: %s", e.Status, e.Message)
}

// =============================================================================

type config struct {
	timeout      time.Duration // maximum duration for a single HTTP request
	retryWaitMin time.Duration // minimum delay between retry attempts
	retryWaitMax time.Duration // maximum delay between retry attempts
	retryMax     int           // maximum number of retry attempts
}

// Option defines a functional option for configuring the client.
type Option func(*config)

// WithTimeout sets the maximum duration allowed for a single HTTP request.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithRetry sets the number of retries and the bounds of the wait between them.
func WithRetry(retryMax int, waitMin time.Duration, waitMax time.Duration) Option {
	return func(c *config) {
		c.retryMax = retryMax
		c.retryWaitMin = waitMin
		c.retryWaitMax = waitMax
	}
}

// Client talks to a single ledger node.
type Client struct {
	url  string
	http *retryablehttp.Client
}

// New constructs a client for the node at the specified url.
func New(url string, opts ...Option) *Client {
	cfg := config{
		timeout:      5 * time.Second,
		retryWaitMin: 500 * time.Millisecond,
		retryWaitMax: 5 * time.Second,
		retryMax:     2,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	httpClient := retryablehttp.NewClient()
	httpClient.Logger = nil
	httpClient.HTTPClient.Timeout = cfg.timeout
	httpClient.RetryWaitMin = cfg.retryWaitMin
	httpClient.RetryWaitMax = cfg.retryWaitMax
	httpClient.RetryMax = cfg.retryMax

	return &Client{
		url:  url,
		http: httpClient,
	}
}

// =============================================================================

// Submitted is the node's response to an accepted transaction.
type Submitted struct {
	Status string `json:"status"`
	Hash   string `json:"hash"`
}

// SubmitTransaction sends the transaction to the node's mempool.
func (c *Client) SubmitTransaction(ctx context.Context, tx database.Tx) (Submitted, error) {
	var resp Submitted
	if err := c.do(ctx, http.MethodPost, "/v1/tx/submit", tx, &resp); err != nil {
		return Submitted{}, err
	}

	return resp, nil
}

// Account is the balance information for a single account.
type Account struct {
	Account  database.AccountID `json:"account"`
	Name     string             `json:"name"`
	Balance  int64              `json:"balance"`
	Received int64              `json:"received"`
	Spent    int64              `json:"spent"`
	Nonce    uint64             `json:"nonce"`
}

// Accounts is the node's view of account balances.
type Accounts struct {
	LatestBlock string    `json:"latest_block"`
	Uncommitted int       `json:"uncommitted"`
	Accounts    []Account `json:"accounts"`
}

// Accounts returns the balances for the account or for every account when
// the account is empty.
func (c *Client) Accounts(ctx context.Context, accountID database.AccountID) (Accounts, error) {
	path := "/v1/accounts/list"
	if accountID != "" {
		path += "/" + string(accountID)
	}

	var resp Accounts
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return Accounts{}, err
	}

	return resp, nil
}

// Tx is a transaction as reported by the node.
type Tx struct {
	Nonce    uint64             `json:"nonce"`
	From     database.AccountID `json:"from"`
	FromName string             `json:"from_name"`
	To       database.AccountID `json:"to"`
	ToName   string             `json:"to_name"`
	Amount   int64              `json:"amount"`
	Data     string             `json:"data"`
	Sig      string             `json:"sig"`
}

// Mempool returns the uncommitted transactions. If an account is provided
// only the transactions sent from or to that account are returned.
func (c *Client) Mempool(ctx context.Context, accountID database.AccountID) ([]Tx, error) {
	path := "/v1/tx/uncommitted/list"
	if accountID != "" {
		path += "/" + string(accountID)
	}

	var resp []Tx
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	return resp, nil
}

// NextNonce returns the nonce the account should sign its next transaction
// with. It accounts for signed transactions still waiting in the mempool.
func (c *Client) NextNonce(ctx context.Context, accountID database.AccountID) (uint64, error) {
	var last uint64

	acts, err := c.Accounts(ctx, accountID)
	var cerr *Error
	switch {
	case errors.As(err, &cerr) && cerr.Status == http.StatusNotFound:
	case err != nil:
		return 0, err
	default:
		for _, act := range acts.Accounts {
			last = max(last, act.Nonce)
		}
	}

	pool, err := c.Mempool(ctx, accountID)
	if err != nil {
		return 0, err
	}

	for _, tx := range pool {
		if tx.Sig != "" && tx.From.Equals(accountID) {
			last = max(last, tx.Nonce)
		}
	}

	return last + 1, nil
}

// Block is a block as reported by the node.
type Block struct {
	Number        uint64 `json:"number"`
	PrevBlockHash string `json:"prev_block_hash"`
	TimeStamp     uint64 `json:"timestamp"`
	Nonce         uint64 `json:"nonce"`
	Difficulty    uint   `json:"difficulty"`
	Hash          string `json:"hash"`
	Transactions  []Tx   `json:"trans"`
}

// Blocks returns the chain starting at genesis. If an account is provided
// only the blocks carrying a transaction for that account are returned.
func (c *Client) Blocks(ctx context.Context, accountID database.AccountID) ([]Block, error) {
	path := "/v1/blocks/list"
	if accountID != "" {
		path += "/" + string(accountID)
	}

	var resp []Block
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	return resp, nil
}

// =============================================================================

func (c *Client) do(ctx context.Context, method string, path string, dataSend any, dataRecv any) error {
	var body io.Reader
	if dataSend != nil {
		data, err := json.Marshal(dataSend)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.url+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return nil

	case resp.StatusCode >= http.StatusBadRequest:
		var er struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&er); err != nil || er.Error == "" {
			er.Error = http.StatusText(resp.StatusCode)
		}
		return &Error{Status: resp.StatusCode, Message: er.Error}
	}

	if dataRecv != nil {
		if err := json.NewDecoder(resp.Body).Decode(dataRecv); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
