package host

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type runtimeMetrics struct {
	instructions *prometheus.CounterVec // by program, instruction, outcome
	latency      *prometheus.HistogramVec
	deposits     prometheus.Counter
	refunds      prometheus.Counter
	airdrops     prometheus.Counter
}

// newMetrics registers the runtime metrics with reg. A nil registerer
// yields working, unregistered collectors.
func newMetrics(reg prometheus.Registerer) *runtimeMetrics {
	factory := promauto.With(reg)
	return &runtimeMetrics{
		instructions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tallybook_instructions_total",
			Help: "Instructions processed, by program, instruction and outcome",
		}, []string{"program", "instruction", "outcome"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tallybook_instruction_duration_seconds",
			Help:    "Instruction latency including proof verification and commit",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"program", "instruction"}),
		deposits: factory.NewCounter(prometheus.CounterOpts{
			Name: "tallybook_deposit_lamports_total",
			Help: "Lamports locked as storage deposits",
		}),
		refunds: factory.NewCounter(prometheus.CounterOpts{
			Name: "tallybook_refund_lamports_total",
			Help: "Lamports refunded on account close",
		}),
		airdrops: factory.NewCounter(prometheus.CounterOpts{
			Name: "tallybook_airdrop_lamports_total",
			Help: "Lamports minted by the development faucet",
		}),
	}
}
