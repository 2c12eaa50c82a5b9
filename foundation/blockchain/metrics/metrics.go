// Package metrics holds the prometheus collectors for the ledger node.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "jazcoin"

var (
	chainLength = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "chain_length",
		Help:      "Number of blocks in the local chain.",
	})

	blocksMined = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "blocks_mined_total",
		Help:      "Blocks mined and committed by this node.",
	})

	powTrials = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pow",
		Name:      "trials_total",
		Help:      "Proof of work candidates tried by this node.",
	})

	consensusRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "consensus",
		Name:      "runs_total",
		Help:      "Consensus resolutions by outcome.",
	}, []string{"outcome"})

	peerFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "consensus",
		Name:      "peer_failures_total",
		Help:      "Peer chain fetches that failed or returned a malformed chain.",
	})

	requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "API requests by outcome.",
	}, []string{"outcome"})
)

// SetChainLength records the length of the local chain.
func SetChainLength(n int) {
	chainLength.Set(float64(n))
}

// AddBlockMined records a committed block and the candidates it took.
func AddBlockMined(trials int64) {
	blocksMined.Inc()
	if trials > 0 {
		powTrials.Add(float64(trials))
	}
}

// AddConsensusRun records a consensus resolution.
func AddConsensusRun(replaced bool) {
	outcome := "kept"
	if replaced {
		outcome = "replaced"
	}
	consensusRuns.WithLabelValues(outcome).Inc()
}

// AddPeerFailure records a peer that could not be used during consensus.
func AddPeerFailure() {
	peerFailures.Inc()
}

// AddRequest records a handled request.
func AddRequest() {
	requests.WithLabelValues("handled").Inc()
}

// AddError records a request that ended in error.
func AddError() {
	requests.WithLabelValues("error").Inc()
}

// AddPanic records a request that panicked.
func AddPanic() {
	requests.WithLabelValues("panic").Inc()
}
