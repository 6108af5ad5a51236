package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/ardanlabs/powledger/app/services/node/handlers"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/events"
	"github.com/ardanlabs/powledger/foundation/nameservice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type ledger struct {
	st      *state.State
	public  http.Handler
	private http.Handler
	debug   http.Handler
}

func newLedger(t *testing.T) ledger {
	gen := genesis.New("init")
	gen.Difficulty = 1
	gen.Balances = map[string]int64{"alice": 100}

	return newLedgerWith(t, state.Config{
		BeneficiaryID: "miner",
		Genesis:       gen,
	})
}

func newLedgerWith(t *testing.T, stCfg state.Config) ledger {
	st, err := state.New(stCfg)
	require.NoError(t, err)

	ns, err := nameservice.New(t.TempDir())
	require.NoError(t, err)

	log := zap.NewNop().Sugar()
	cfg := handlers.MuxConfig{
		Shutdown: make(chan os.Signal, 1),
		Log:      log,
		State:    st,
		NS:       ns,
		Evts:     events.New(),
	}

	return ledger{
		st:      st,
		public:  handlers.PublicMux(cfg),
		private: handlers.PrivateMux(cfg),
		debug:   handlers.DebugMux("test", log, st),
	}
}

func call(t *testing.T, h http.Handler, method string, path string, body string) *httptest.ResponseRecorder {
	var r *http.Request
	switch body {
	case "":
		r = httptest.NewRequest(method, path, nil)
	default:
		r = httptest.NewRequest(method, path, strings.NewReader(body))
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	return w
}

// =============================================================================

func Test_SubmitTransaction(t *testing.T) {
	l := newLedger(t)

	tt := []struct {
		name   string
		body   string
		status int
	}{
		{"accepted", `{"from":"alice","to":"bob","amount":10}`, http.StatusOK},
		{"negative", `{"from":"alice","to":"bob","amount":-5}`, http.StatusBadRequest},
		{"zero", `{"from":"alice","to":"bob","amount":0}`, http.StatusBadRequest},
		{"mint", `{"from":"` + string(database.MintAccountID) + `","to":"bob","amount":10}`, http.StatusBadRequest},
		{"missing-to", `{"from":"alice","amount":10}`, http.StatusBadRequest},
		{"unknown-field", `{"from":"alice","to":"bob","amount":10,"tip":1}`, http.StatusBadRequest},
		{"bad-json", `{"from":`, http.StatusBadRequest},
	}

	for _, tst := range tt {
		t.Run(tst.name, func(t *testing.T) {
			w := call(t, l.public, http.MethodPost, "/v1/tx/submit", tst.body)
			assert.Equal(t, tst.status, w.Code, w.Body.String())
		})
	}

	assert.Equal(t, 1, l.st.QueryMempoolLength())

	w := call(t, l.public, http.MethodGet, "/v1/tx/uncommitted/list/bob", "")
	require.Equal(t, http.StatusOK, w.Code)

	var pool []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pool))
	require.Len(t, pool, 1)
	assert.Equal(t, "alice", pool[0]["from"])
}

func Test_MineAndQuery(t *testing.T) {
	l := newLedger(t)

	w := call(t, l.public, http.MethodPost, "/v1/tx/submit", `{"from":"alice","to":"bob","amount":10}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = call(t, l.private, http.MethodPost, "/v1/mining/mine", `{"beneficiary":"bob"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var mined database.Block
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mined))
	assert.Equal(t, uint64(1), mined.Number)
	assert.True(t, mined.IsSealed())
	assert.True(t, database.IsHashSolved(1, mined.Hash))
	assert.NotZero(t, mined.TimeStamp)
	assert.Equal(t, uint(1), mined.Difficulty)

	latest, err := l.st.RetrieveLatestBlock()
	require.NoError(t, err)
	assert.Equal(t, latest, mined)

	require.Len(t, mined.Trans, 2)
	assert.True(t, mined.Trans[0].IsMint())
	assert.Equal(t, database.AccountID("bob"), mined.Trans[0].To)
	assert.Equal(t, database.AccountID("alice"), mined.Trans[1].From)
	assert.Equal(t, int64(10), mined.Trans[1].Amount)

	t.Run("blocks", func(t *testing.T) {
		w := call(t, l.public, http.MethodGet, "/v1/blocks/list", "")
		require.Equal(t, http.StatusOK, w.Code)

		var blocks []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &blocks))
		assert.Len(t, blocks, 2)
	})

	t.Run("blocks-by-account", func(t *testing.T) {
		w := call(t, l.public, http.MethodGet, "/v1/blocks/list/nobody", "")
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("block-by-number", func(t *testing.T) {
		w := call(t, l.private, http.MethodGet, "/v1/blocks/number/1", "")
		require.Equal(t, http.StatusOK, w.Code)

		var blk database.Block
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &blk))
		assert.Equal(t, mined.Hash, blk.Hash)

		w = call(t, l.private, http.MethodGet, "/v1/blocks/number/latest", "")
		assert.Equal(t, http.StatusOK, w.Code)

		w = call(t, l.private, http.MethodGet, "/v1/blocks/number/9", "")
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = call(t, l.private, http.MethodGet, "/v1/blocks/number/abc", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("accounts", func(t *testing.T) {
		w := call(t, l.public, http.MethodGet, "/v1/accounts/list/bob", "")
		require.Equal(t, http.StatusOK, w.Code)

		var ai struct {
			LatestBlock string `json:"latest_block"`
			Accounts    []struct {
				Balance int64 `json:"balance"`
			} `json:"accounts"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ai))
		assert.Equal(t, mined.Hash, ai.LatestBlock)
		require.Len(t, ai.Accounts, 1)
		assert.Equal(t, int64(10+genesis.DefaultMiningReward), ai.Accounts[0].Balance)

		w = call(t, l.public, http.MethodGet, "/v1/accounts/list/nobody", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("validate", func(t *testing.T) {
		w := call(t, l.private, http.MethodGet, "/v1/chain/validate", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"valid":true}`, w.Body.String())
	})

	t.Run("status", func(t *testing.T) {
		w := call(t, l.private, http.MethodGet, "/v1/node/status", "")
		require.Equal(t, http.StatusOK, w.Code)

		var st map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
		assert.EqualValues(t, 2, st["chain_length"])
		assert.EqualValues(t, 0, st["uncommitted"])
	})
}

func Test_MineDefaultBeneficiary(t *testing.T) {
	l := newLedger(t)

	w := call(t, l.private, http.MethodPost, "/v1/mining/mine", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	act, err := l.st.QueryAccount("miner")
	require.NoError(t, err)
	assert.Equal(t, int64(genesis.DefaultMiningReward), act.Balance)
}

func Test_MineExhausted(t *testing.T) {
	gen := genesis.New("init")
	gen.Difficulty = 64

	l := newLedgerWith(t, state.Config{
		BeneficiaryID:   "miner",
		MaxMineAttempts: 1,
		Genesis:         gen,
	})

	w := call(t, l.private, http.MethodPost, "/v1/mining/mine", "")
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	assert.Equal(t, 1, l.st.QueryChainLength())
}

func Test_AddressParams(t *testing.T) {
	const checksum = "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32"
	lower := strings.ToLower(checksum)

	gen := genesis.New("init")
	gen.Difficulty = 1
	gen.Balances = map[string]int64{checksum: 100}

	l := newLedgerWith(t, state.Config{
		BeneficiaryID: "miner",
		Genesis:       gen,
	})

	w := call(t, l.public, http.MethodPost, "/v1/tx/submit", `{"nonce":1,"from":"`+lower+`","to":"bob","amount":10}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = call(t, l.public, http.MethodGet, "/v1/tx/uncommitted/list/"+lower, "")
	require.Equal(t, http.StatusOK, w.Code)

	var pool []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pool))
	require.Len(t, pool, 1)
	assert.Equal(t, checksum, pool[0]["from"])
	assert.EqualValues(t, 1, pool[0]["nonce"])

	w = call(t, l.public, http.MethodGet, "/v1/accounts/list/"+lower, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"account":"`+checksum+`"`)
}

func Test_SignalWithoutWorker(t *testing.T) {
	l := newLedger(t)

	w := call(t, l.private, http.MethodGet, "/v1/mining/signal", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func Test_Debug(t *testing.T) {
	l := newLedger(t)

	w := call(t, l.debug, http.MethodGet, "/debug/readiness", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = call(t, l.debug, http.MethodGet, "/debug/liveness", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"build":"test"`)

	w = call(t, l.public, http.MethodGet, "/v1/genesis/list", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":"init"`)
}
