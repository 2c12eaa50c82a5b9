package state

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jazcoin/node/foundation/blockchain/database"
	"github.com/jazcoin/node/foundation/blockchain/peer"
)

func Test_FetchChainLimit(t *testing.T) {
	const (
		success = "\u2713"
		failed  = "\u2717"
	)

	t.Log("Given the need to bound the chain a peer can send back.")
	{
		data, err := json.Marshal(database.NewChainData([]database.Block{database.Genesis(time.Now())}))
		if err != nil {
			t.Fatalf("\t%s\tShould be able to marshal a chain: %v", failed, err)
		}
		padded := strings.Repeat(" ", 1<<12) + string(data)

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(padded))
		}))
		defer srv.Close()

		small := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write(data)
		}))
		defer small.Close()

		f := NewHTTPFetcher(&http.Client{})
		f.maxBytes = 1 << 10

		big, err := peer.Parse(srv.URL)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to parse the peer: %v", failed, err)
		}

		if _, err := f.FetchChain(context.Background(), big); err == nil {
			t.Fatalf("\t%s\tShould reject a body beyond the limit.", failed)
		}
		t.Logf("\t%s\tShould reject a body beyond the limit.", success)

		fits, err := peer.Parse(small.URL)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to parse the peer: %v", failed, err)
		}

		cd, err := f.FetchChain(context.Background(), fits)
		if err != nil || cd.Length != 1 {
			t.Fatalf("\t%s\tShould read a chain that fits within the limit: %v", failed, err)
		}
		t.Logf("\t%s\tShould read a chain that fits within the limit.", success)
	}
}
