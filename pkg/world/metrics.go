package world

// metrics.go is a thin abstraction over Prometheus, mirroring
// arena-cache's pkg/metrics.go: a metricsSink interface with a no-op and
// a Prometheus implementation, so the hot path (Tick) never pays for
// metric updates unless the caller opted in via WithMetrics.
//
// ┌──────────────────────────────────┬───────┬────────┐
// │ Metric                           │ Type  │ Labels │
// ├──────────────────────────────────┼───────┼────────┤
// │ legionsim_ticks_total            │ Ctr   │ –      │
// │ legionsim_chunks_stepped         │ Gge   │ –      │
// │ legionsim_workers_queue          │ Gge   │ shard  │
// │ legionsim_workers_idle           │ Gge   │ shard  │
// │ legionsim_workers_fail_total     │ Ctr   │ shard  │
// │ legionsim_lane_packets_in_flight │ Gge   │ –      │
// │ legionsim_vm_faults_total        │ Ctr   │ –      │
// │ legionsim_shard_epoch_seconds    │ Hist  │ –      │
// └──────────────────────────────────┴───────┴────────┘
//
// Grounded on Voskan/arena-cache's pkg/metrics.go.

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

type metricsSink interface {
	incTick()
	setChunksStepped(n int)
	setWorkerQueue(shard int, n int)
	setWorkerIdle(shard int, n int)
	incWorkerFail(shard int)
	setLanePackets(n int)
	incVMFault()
	observeEpoch(seconds float64)
}

type noopMetrics struct{}

func (noopMetrics) incTick()                       {}
func (noopMetrics) setChunksStepped(int)           {}
func (noopMetrics) setWorkerQueue(int, int)         {}
func (noopMetrics) setWorkerIdle(int, int)          {}
func (noopMetrics) incWorkerFail(int)               {}
func (noopMetrics) setLanePackets(int)              {}
func (noopMetrics) incVMFault()                     {}
func (noopMetrics) observeEpoch(float64)            {}

type promMetrics struct {
	ticks         prometheus.Counter
	chunksStepped prometheus.Gauge
	workerQueue   *prometheus.GaugeVec
	workerIdle    *prometheus.GaugeVec
	workerFail    *prometheus.CounterVec
	lanePackets   prometheus.Gauge
	vmFaults      prometheus.Counter
	epoch         prometheus.Histogram
}

func newPromMetrics(reg *prometheus.Registry) *promMetrics {
	label := []string{"shard"}
	pm := &promMetrics{
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "legionsim", Name: "ticks_total", Help: "Number of world ticks advanced.",
		}),
		chunksStepped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "legionsim", Name: "chunks_stepped", Help: "Number of chunks stepped in the last tick.",
		}),
		workerQueue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "legionsim", Name: "workers_queue", Help: "Worker requests observed at match start, per shard.",
		}, label),
		workerIdle: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "legionsim", Name: "workers_idle", Help: "Idle workers, per shard.",
		}, label),
		workerFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "legionsim", Name: "workers_fail_total", Help: "Unmatched worker requests, per shard.",
		}, label),
		lanePackets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "legionsim", Name: "lane_packets_in_flight", Help: "Packets currently in flight between stars.",
		}),
		vmFaults: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "legionsim", Name: "vm_faults_total", Help: "Number of brain VM faults logged.",
		}),
		epoch: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "legionsim", Name: "shard_epoch_seconds", Help: "Wall-clock duration of one shard epoch (begin+exec+end).",
		}),
	}
	reg.MustRegister(pm.ticks, pm.chunksStepped, pm.workerQueue, pm.workerIdle, pm.workerFail, pm.lanePackets, pm.vmFaults, pm.epoch)
	return pm
}

func (m *promMetrics) incTick()             { m.ticks.Inc() }
func (m *promMetrics) setChunksStepped(n int) { m.chunksStepped.Set(float64(n)) }
func (m *promMetrics) setWorkerQueue(shard, n int) {
	m.workerQueue.WithLabelValues(strconv.Itoa(shard)).Set(float64(n))
}
func (m *promMetrics) setWorkerIdle(shard, n int) {
	m.workerIdle.WithLabelValues(strconv.Itoa(shard)).Set(float64(n))
}
func (m *promMetrics) incWorkerFail(shard int) {
	m.workerFail.WithLabelValues(strconv.Itoa(shard)).Inc()
}
func (m *promMetrics) setLanePackets(n int) { m.lanePackets.Set(float64(n)) }
func (m *promMetrics) incVMFault()          { m.vmFaults.Inc() }
func (m *promMetrics) observeEpoch(seconds float64) { m.epoch.Observe(seconds) }

func newMetricsSink(reg *prometheus.Registry) metricsSink {
	if reg == nil {
		return noopMetrics{}
	}
	return newPromMetrics(reg)
}
