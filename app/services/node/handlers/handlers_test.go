package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jazcoin/node/app/services/node/handlers"
	"github.com/jazcoin/node/business/web/errs"
	"github.com/jazcoin/node/foundation/blockchain/database"
	"github.com/jazcoin/node/foundation/blockchain/state"
	"github.com/jazcoin/node/foundation/events"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// node is a running ledger node behind a test server.
type node struct {
	state  *state.State
	evts   *events.Events
	server *httptest.Server
}

func newNode(t *testing.T) *node {
	t.Helper()

	evts := events.New()
	ev := func(v string, args ...any) {
		evts.Send(v)
	}

	st, err := state.New(state.Config{
		NodeID:      "node",
		Payee:       "payee",
		Reward:      1,
		PeerTimeout: 5 * time.Second,
		Fetcher:     state.NewHTTPFetcher(&http.Client{Timeout: 5 * time.Second}),
		EvHandler:   ev,
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the state: %v", failed, err)
	}

	mux := handlers.APIMux(handlers.MuxConfig{
		Shutdown: make(chan os.Signal, 1),
		Log:      zap.NewNop().Sugar(),
		State:    st,
		Evts:     evts,
	})

	n := node{
		state:  st,
		evts:   evts,
		server: httptest.NewServer(mux),
	}

	t.Cleanup(func() {
		n.server.Close()
		evts.Shutdown()
	})

	return &n
}

// call performs the request against the node and decodes the response
// into the provided value. The status code is returned.
func (n *node) call(t *testing.T, method string, path string, body string, v any) int {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, n.server.URL+path, r)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to build the request: %v", failed, err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to call %s %s: %v", failed, method, path, err)
	}
	defer resp.Body.Close()

	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("\t%s\tShould be able to decode the response of %s %s: %v", failed, method, path, err)
		}
	}

	return resp.StatusCode
}

type minedBlock struct {
	Message      string        `json:"message"`
	Index        uint64        `json:"index"`
	Proof        int64         `json:"proof"`
	PreviousHash string        `json:"previous_hash"`
	Transactions []database.Tx `json:"transactions"`
}

// =============================================================================

func Test_Ledger(t *testing.T) {
	t.Log("Given the need to mine blocks and pool transactions over the api.")
	{
		n := newNode(t)

		var chain database.ChainData
		if status := n.call(t, http.MethodGet, "/v1/chain", "", &chain); status != http.StatusOK || chain.Length != 1 {
			t.Fatalf("\t%s\tShould start with the genesis block: status[%d] length[%d]", failed, status, chain.Length)
		}
		t.Logf("\t%s\tShould start with the genesis block.", success)

		var blk2 minedBlock
		if status := n.call(t, http.MethodGet, "/v1/mine", "", &blk2); status != http.StatusOK {
			t.Fatalf("\t%s\tShould be able to mine a block: status[%d]", failed, status)
		}
		if blk2.Index != 2 || blk2.PreviousHash != chain.Chain[0].Hash() {
			t.Fatalf("\t%s\tShould mine block 2 on top of genesis: %+v", failed, blk2)
		}
		t.Logf("\t%s\tShould mine block 2 on top of genesis.", success)

		var added struct {
			Message string `json:"message"`
			Index   uint64 `json:"index"`
		}
		body := `{"sender":"A","receiver":"B","amount":5,"memo":"lunch"}`
		if status := n.call(t, http.MethodPost, "/v1/tx/add", body, &added); status != http.StatusCreated || added.Index != 3 {
			t.Fatalf("\t%s\tShould pool the transaction for block 3 ignoring unknown fields: status[%d] index[%d]", failed, status, added.Index)
		}
		t.Logf("\t%s\tShould pool the transaction for block 3 ignoring unknown fields.", success)

		var blk3 minedBlock
		if status := n.call(t, http.MethodGet, "/v1/mine", "", &blk3); status != http.StatusOK {
			t.Fatalf("\t%s\tShould be able to mine a block: status[%d]", failed, status)
		}

		exp := []database.Tx{
			database.NewTx("A", "B", 5),
			database.NewTx("node", "payee", 1),
		}
		if blk3.Index != 3 || len(blk3.Transactions) != len(exp) {
			t.Fatalf("\t%s\tShould mine block 3 with the pooled and reward transactions: %+v", failed, blk3)
		}
		for i := range exp {
			if blk3.Transactions[i] != exp[i] {
				t.Fatalf("\t%s\tShould have transaction %d as %s, got %s.", failed, i, exp[i], blk3.Transactions[i])
			}
		}
		t.Logf("\t%s\tShould mine block 3 with the pooled and reward transactions.", success)

		var pool []database.Tx
		if status := n.call(t, http.MethodGet, "/v1/tx/uncommitted/list", "", &pool); status != http.StatusOK || len(pool) != 0 {
			t.Fatalf("\t%s\tShould have an empty pool after mining: status[%d] pool[%d]", failed, status, len(pool))
		}
		t.Logf("\t%s\tShould have an empty pool after mining.", success)

		var valid struct {
			Valid bool `json:"valid"`
		}
		if status := n.call(t, http.MethodGet, "/v1/chain/valid", "", &valid); status != http.StatusOK || !valid.Valid {
			t.Fatalf("\t%s\tShould report a valid chain: status[%d]", failed, status)
		}
		t.Logf("\t%s\tShould report a valid chain.", success)
	}
}

func Test_BadRequests(t *testing.T) {
	type table struct {
		name   string
		path   string
		body   string
		fields []string
	}

	tt := []table{
		{name: "tx-missing-amount", path: "/v1/tx/add", body: `{"sender":"A","receiver":"B"}`, fields: []string{"amount"}},
		{name: "tx-missing-parties", path: "/v1/tx/add", body: `{"amount":5}`, fields: []string{"sender", "receiver"}},
		{name: "tx-bad-json", path: "/v1/tx/add", body: `{"sender":`},
		{name: "tx-bad-amount", path: "/v1/tx/add", body: `{"sender":"A","receiver":"B","amount":"five"}`},
		{name: "connect-missing-nodes", path: "/v1/node/connect", body: `{}`, fields: []string{"nodes"}},
		{name: "connect-empty-nodes", path: "/v1/node/connect", body: `{"nodes":[]}`, fields: []string{"nodes"}},
		{name: "connect-blank-node", path: "/v1/node/connect", body: `{"nodes":[""]}`, fields: []string{"nodes[0]"}},
		{name: "connect-no-host", path: "/v1/node/connect", body: `{"nodes":["http://"]}`},
	}

	n := newNode(t)

	t.Log("Given the need to reject malformed requests.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				var er errs.Response
				if status := n.call(t, http.MethodPost, tst.path, tst.body, &er); status != http.StatusBadRequest {
					t.Fatalf("\t%s\tTest %d:\tShould get a 400 status, got %d.", failed, testID, status)
				}
				t.Logf("\t%s\tTest %d:\tShould get a 400 status.", success, testID)

				for _, field := range tst.fields {
					if _, exists := er.Fields[field]; !exists {
						t.Fatalf("\t%s\tTest %d:\tShould report the %q field: %v", failed, testID, field, er.Fields)
					}
				}
				t.Logf("\t%s\tTest %d:\tShould report the failing fields.", success, testID)
			}

			t.Run(tst.name, f)
		}

		if len(n.state.RetrieveMempool()) != 0 || len(n.state.RetrieveKnownPeers()) != 0 {
			t.Fatalf("\t%s\tShould leave the pool and peers untouched.", failed)
		}
		t.Logf("\t%s\tShould leave the pool and peers untouched.", success)
	}
}

func Test_Consensus(t *testing.T) {
	t.Log("Given the need to adopt the longest chain held by a peer.")
	{
		local := newNode(t)
		remote := newNode(t)

		for i := 0; i < 2; i++ {
			if status := remote.call(t, http.MethodGet, "/v1/mine", "", nil); status != http.StatusOK {
				t.Fatalf("\t%s\tShould be able to mine on the remote node: status[%d]", failed, status)
			}
		}

		var connected struct {
			TotalNodes []string `json:"total_nodes"`
		}
		body := `{"nodes":["` + remote.server.URL + `","` + remote.server.URL + `/"]}`
		if status := local.call(t, http.MethodPost, "/v1/node/connect", body, &connected); status != http.StatusCreated {
			t.Fatalf("\t%s\tShould be able to connect the remote node: status[%d]", failed, status)
		}
		if len(connected.TotalNodes) != 1 || !strings.HasSuffix(remote.server.URL, connected.TotalNodes[0]) {
			t.Fatalf("\t%s\tShould register the remote host once: %v", failed, connected.TotalNodes)
		}
		t.Logf("\t%s\tShould register the remote host once.", success)

		var resolved struct {
			Replaced bool             `json:"replaced"`
			Chain    []database.Block `json:"chain"`
		}
		if status := local.call(t, http.MethodGet, "/v1/node/resolve", "", &resolved); status != http.StatusOK || !resolved.Replaced {
			t.Fatalf("\t%s\tShould replace the local chain: status[%d] replaced[%v]", failed, status, resolved.Replaced)
		}
		if len(resolved.Chain) != 3 || resolved.Chain[2].Hash() != remote.state.RetrieveLatestBlock().Hash() {
			t.Fatalf("\t%s\tShould hold the remote chain: length[%d]", failed, len(resolved.Chain))
		}
		t.Logf("\t%s\tShould replace the local chain with the remote chain.", success)

		if status := local.call(t, http.MethodGet, "/v1/node/resolve", "", &resolved); status != http.StatusOK || resolved.Replaced {
			t.Fatalf("\t%s\tShould keep the local chain on a tie: status[%d] replaced[%v]", failed, status, resolved.Replaced)
		}
		t.Logf("\t%s\tShould keep the local chain on a tie.", success)
	}
}

func Test_Events(t *testing.T) {
	t.Log("Given the need to stream ledger events over a web socket.")
	{
		n := newNode(t)

		url := "ws" + strings.TrimPrefix(n.server.URL, "http") + "/v1/events"
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to open the web socket: %v", failed, err)
		}
		defer conn.Close()
		t.Logf("\t%s\tShould be able to open the web socket.", success)

		body := `{"sender":"A","receiver":"B","amount":5}`
		if status := n.call(t, http.MethodPost, "/v1/tx/add", body, nil); status != http.StatusCreated {
			t.Fatalf("\t%s\tShould be able to add a transaction: status[%d]", failed, status)
		}

		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				t.Fatalf("\t%s\tShould receive the transaction event: %v", failed, err)
			}

			if strings.Contains(string(msg), "AddTransaction") {
				break
			}
		}
		t.Logf("\t%s\tShould receive the transaction event.", success)
	}
}
