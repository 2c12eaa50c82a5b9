package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jazcoin/node/foundation/blockchain/database"
	"github.com/jazcoin/node/foundation/blockchain/peer"
)

const baseURL = "http://%s/v1"

// maxChainBytes bounds the size of a chain a peer can send back.
const maxChainBytes = 64 << 20

// HTTPFetcher retrieves peer chains over the node's HTTP API.
type HTTPFetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewHTTPFetcher constructs a fetcher using the specified client. The
// default client is used when nil.
func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}

	return &HTTPFetcher{
		client:   client,
		maxBytes: maxChainBytes,
	}
}

// FetchChain asks the peer, at its own network location, for its chain.
func (f *HTTPFetcher) FetchChain(ctx context.Context, pr peer.Peer) (database.ChainData, error) {
	url := fmt.Sprintf("%s/chain", fmt.Sprintf(baseURL, pr.Host))

	var data database.ChainData
	if err := send(ctx, f.client, f.maxBytes, http.MethodGet, url, nil, &data); err != nil {
		return database.ChainData{}, fmt.Errorf("%s: %w", pr.Host, err)
	}

	return data, nil
}

// =============================================================================

// send is a helper function to send an HTTP request to a node. No more than
// maxBytes of the response body are read.
func send(ctx context.Context, client *http.Client, maxBytes int64, method string, url string, dataSend any, dataRecv any) error {
	var body io.Reader

	if dataSend != nil {
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}

	if dataSend != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		if err != nil {
			return err
		}
		return fmt.Errorf("status %d: %w", resp.StatusCode, errors.New(string(msg)))
	}

	if dataRecv != nil {
		if err := json.NewDecoder(io.LimitReader(resp.Body, maxBytes)).Decode(dataRecv); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
