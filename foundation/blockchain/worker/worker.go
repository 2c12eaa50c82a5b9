// Package worker implements the background workflows for the ledger, such
// as periodic consensus resolution with the known peers.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/jazcoin/node/foundation/blockchain/state"
)

// Worker manages the background workflows for the ledger.
type Worker struct {
	state     *state.State
	wg        sync.WaitGroup
	interval  time.Duration
	shut      chan struct{}
	shutOnce  sync.Once
	ctx       context.Context
	cancel    context.CancelFunc
	evHandler state.EventHandler
}

// Run creates a worker, registers the worker with the state package, and
// starts up all the background processes. An interval of zero leaves
// consensus to be requested on demand only.
func Run(st *state.State, interval time.Duration, evHandler state.EventHandler) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	w := Worker{
		state:     st,
		interval:  interval,
		shut:      make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
		evHandler: evHandler,
	}

	// Register this worker with the state package.
	st.Worker = &w

	if interval <= 0 {
		w.evHandler("worker: Run: periodic consensus disabled")
		return &w
	}

	// We don't want to return until we know the G is up and running.
	hasStarted := make(chan bool)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		hasStarted <- true
		w.consensusOperations()
	}()

	<-hasStarted

	return &w
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutine performing work. Only the first call
// has any effect.
func (w *Worker) Shutdown() {
	w.shutOnce.Do(func() {
		w.evHandler("worker: shutdown: started")
		defer w.evHandler("worker: shutdown: completed")

		w.evHandler("worker: shutdown: cancel in flight operations")
		w.cancel()

		w.evHandler("worker: shutdown: terminate goroutines")
		close(w.shut)
		w.wg.Wait()
	})
}

// =============================================================================

// consensusOperations resolves consensus on every tick.
func (w *Worker) consensusOperations() {
	w.evHandler("worker: consensusOperations: G started")
	defer w.evHandler("worker: consensusOperations: G completed")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !w.isShutdown() {
				w.runConsensusOperation()
			}
		case <-w.shut:
			w.evHandler("worker: consensusOperations: received shut signal")
			return
		}
	}
}

// runConsensusOperation asks the known peers for their chains and adopts
// the longest valid one.
func (w *Worker) runConsensusOperation() {
	w.evHandler("worker: runConsensusOperation: started")
	defer w.evHandler("worker: runConsensusOperation: completed")

	replaced, err := w.state.ResolveConsensus(w.ctx)
	if err != nil {
		w.evHandler("worker: runConsensusOperation: ERROR: %s", err)
		return
	}

	w.evHandler("worker: runConsensusOperation: replaced[%t]", replaced)
}

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
