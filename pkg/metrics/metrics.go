package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type indexerMetrics struct {
	events       *prometheus.CounterVec
	blocks       prometheus.Counter
	indexedBlock prometheus.Gauge
	syncedBlock  prometheus.Gauge
	applyLatency prometheus.Histogram
	callRetries  *prometheus.CounterVec
}

var (
	once     sync.Once
	registry *indexerMetrics
)

func get() *indexerMetrics {
	once.Do(func() {
		registry = &indexerMetrics{
			events: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "lendex",
				Name:      "events_processed_total",
				Help:      "Events applied by the indexer segmented by event name.",
			}, []string{"event"}),
			blocks: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "lendex",
				Name:      "blocks_committed_total",
				Help:      "Blocks committed by the indexer.",
			}),
			indexedBlock: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "lendex",
				Name:      "indexed_block",
				Help:      "Last block committed by the indexer.",
			}),
			syncedBlock: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "lendex",
				Name:      "synced_block",
				Help:      "Last block pulled by the syncer.",
			}),
			applyLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
				Namespace: "lendex",
				Name:      "block_apply_seconds",
				Help:      "Time spent applying and committing one block.",
				Buckets:   prometheus.DefBuckets,
			}),
			callRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "lendex",
				Name:      "chain_call_retries_total",
				Help:      "Retried chain calls segmented by method.",
			}, []string{"method"}),
		}

		prometheus.MustRegister(
			registry.events,
			registry.blocks,
			registry.indexedBlock,
			registry.syncedBlock,
			registry.applyLatency,
			registry.callRetries,
		)
	})

	return registry
}

// ObserveEvent count an applied event
func ObserveEvent(name string) {
	get().events.WithLabelValues(name).Inc()
}

// ObserveBlock record a committed block and how long it took
func ObserveBlock(block uint64, elapsed time.Duration) {
	m := get()
	m.blocks.Inc()
	m.indexedBlock.Set(float64(block))
	m.applyLatency.Observe(elapsed.Seconds())
}

// ObserveSynced record the last pulled block
func ObserveSynced(block uint64) {
	get().syncedBlock.Set(float64(block))
}

// ObserveRetry count a retried chain call
func ObserveRetry(method string) {
	get().callRetries.WithLabelValues(method).Inc()
}

// Handler prometheus scrape endpoint
func Handler() http.Handler {
	get()
	return promhttp.Handler()
}
