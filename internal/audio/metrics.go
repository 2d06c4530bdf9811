package audio

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains Prometheus metrics for the audio pool.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	poolSize     prometheus.Gauge
	idle         prometheus.Gauge
	acquisitions *prometheus.CounterVec
	purgeCycles  *prometheus.CounterVec
	purged       prometheus.Counter
	finished     prometheus.Counter

	// collectors is a slice of all collectors for easier iteration
	collectors []prometheus.Collector
}

// NewMetrics creates the pool metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{}
	m.initMetrics()
	if err := reg.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) initMetrics() {
	m.poolSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "audio_pool_handles",
		Help: "Number of playback handles owned by the pool",
	})

	m.idle = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "audio_pool_idle_handles",
		Help: "Number of playback handles free for the next acquisition",
	})

	m.acquisitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audio_pool_acquisitions_total",
			Help: "Handle acquisitions by outcome (reused an idle handle or grew the pool)",
		},
		[]string{"result"},
	)

	m.purgeCycles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audio_pool_purge_cycles_total",
			Help: "Purge passes by outcome (skipped at or under ceiling, or purged)",
		},
		[]string{"result"},
	)

	m.purged = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "audio_pool_purged_handles_total",
		Help: "Idle handles destroyed by purge passes",
	})

	m.finished = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "audio_pool_plays_finished_total",
		Help: "Plays that ran to completion",
	})

	m.collectors = []prometheus.Collector{
		m.poolSize,
		m.idle,
		m.acquisitions,
		m.purgeCycles,
		m.purged,
		m.finished,
	}
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range m.collectors {
		c.Describe(ch)
	}
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.collectors {
		c.Collect(ch)
	}
}

func (m *Metrics) setSize(n int) {
	if m == nil {
		return
	}
	m.poolSize.Set(float64(n))
}

func (m *Metrics) idleAdd(delta int) {
	if m == nil {
		return
	}
	m.idle.Add(float64(delta))
}

func (m *Metrics) setIdle(n int) {
	if m == nil {
		return
	}
	m.idle.Set(float64(n))
}

func (m *Metrics) acquired(grew bool) {
	if m == nil {
		return
	}
	result := "reused"
	if grew {
		result = "grown"
	}
	m.acquisitions.WithLabelValues(result).Inc()
}

func (m *Metrics) purgeCycle(res PurgeResult) {
	if m == nil {
		return
	}
	if res.Skipped {
		m.purgeCycles.WithLabelValues("skipped").Inc()
		return
	}
	m.purgeCycles.WithLabelValues("purged").Inc()
	m.purged.Add(float64(res.Purged))
}

func (m *Metrics) playFinished() {
	if m == nil {
		return
	}
	m.finished.Inc()
}
