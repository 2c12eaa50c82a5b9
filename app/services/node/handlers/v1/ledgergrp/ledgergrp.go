// Package ledgergrp maintains the group of handlers for ledger access.
package ledgergrp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jazcoin/node/business/sys/validate"
	"github.com/jazcoin/node/business/web/errs"
	"github.com/jazcoin/node/foundation/blockchain/peer"
	"github.com/jazcoin/node/foundation/blockchain/pow"
	"github.com/jazcoin/node/foundation/blockchain/state"
	"github.com/jazcoin/node/foundation/events"
	"github.com/jazcoin/node/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	// Register before the handshake completes so the client doesn't miss
	// events sent right after it connects.
	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Mine performs the proof of work against the latest block and commits a new
// block with every pooled transaction plus the reward transaction.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	block, err := h.State.MineNewBlock(ctx)
	if err != nil {
		if errors.Is(err, pow.ErrNotFound) {
			return errs.NewTrusted(err, http.StatusServiceUnavailable)
		}
		return fmt.Errorf("mining block: %w", err)
	}

	h.Log.Infow("mine", "traceid", web.GetTraceID(ctx), "index", block.Index, "proof", block.Proof)

	return web.Respond(ctx, w, toMinedBlock(block), http.StatusOK)
}

// Chain returns the full chain and its length.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveChain(), http.StatusOK)
}

// IsValid reports whether the local chain passes validation.
func (h Handlers) IsValid(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := chainValid{
		Valid:   true,
		Message: "All good, the chain is valid",
	}

	if !h.State.IsChainValid() {
		resp = chainValid{
			Valid:   false,
			Message: "The chain is not valid",
		}
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveMempool(), http.StatusOK)
}

// AddTransaction pools a new transaction for the next mined block.
func (h Handlers) AddTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var tx newTx
	if err := decode(r, &tx); err != nil {
		return err
	}

	index := h.State.AddTransaction(tx.Sender, tx.Receiver, *tx.Amount)

	h.Log.Infow("add tran", "traceid", web.GetTraceID(ctx), "sender", tx.Sender, "receiver", tx.Receiver, "amount", *tx.Amount)

	resp := txAdded{
		Message: fmt.Sprintf("This transaction will be added to block %d", index),
		Index:   index,
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// Peers returns the set of known peer hosts.
func (h Handlers) Peers(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveKnownPeers(), http.StatusOK)
}

// ConnectNodes registers the network location of every provided address.
func (h Handlers) ConnectNodes(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var cn connectNodes
	if err := decode(r, &cn); err != nil {
		return err
	}

	hosts, err := h.State.AddKnownPeers(cn.Nodes)
	if err != nil {
		if errors.Is(err, peer.ErrInvalidAddress) {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		return fmt.Errorf("connecting nodes: %w", err)
	}

	resp := nodesConnected{
		Message:    "All the nodes are now connected",
		TotalNodes: hosts,
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// ResolveConsensus replaces the local chain with the longest valid chain
// held by a known peer, if any is longer.
func (h Handlers) ResolveConsensus(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	replaced, err := h.State.ResolveConsensus(ctx)
	if err != nil {
		return fmt.Errorf("resolving consensus: %w", err)
	}

	resp := consensus{
		Replaced: replaced,
		Message:  "All good, the local chain is the longest one",
		Chain:    h.State.RetrieveChain().Chain,
	}

	if replaced {
		resp.Message = "The local chain was replaced by the longest valid chain"
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// =============================================================================

// decode reads the request model, turning malformed payloads into client
// errors. Validation failures are returned untouched.
func decode(r *http.Request, val any) error {
	if err := web.Decode(r, val); err != nil {
		if validate.IsFieldErrors(err) {
			return err
		}
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	return nil
}
