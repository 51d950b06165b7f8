// Package metrics exposes client-side counters for feed mutations, endpoint
// probing and remote requests.
package metrics

import (
	"io"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Outcome labels.
const (
	OutcomeCommitted  = "committed"
	OutcomeRolledBack = "rolled_back"
	OutcomeStale      = "stale"
	OutcomeOK         = "ok"
	OutcomeFailed     = "failed"
)

// Metrics groups the counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	reg       *prometheus.Registry
	mutations *prometheus.CounterVec
	probes    *prometheus.CounterVec
	requests  *prometheus.CounterVec
}

// New registers the counters on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "classroom",
			Subsystem: "feed",
			Name:      "mutations_total",
			Help:      "Optimistic feed mutations by operation and outcome.",
		}, []string{"op", "outcome"}),
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "classroom",
			Subsystem: "probe",
			Name:      "attempts_total",
			Help:      "Endpoint fallback candidate attempts by operation and outcome.",
		}, []string{"op", "outcome"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "classroom",
			Subsystem: "remote",
			Name:      "requests_total",
			Help:      "Remote API requests by method and status code (0 = no response).",
		}, []string{"method", "code"}),
	}
	m.reg.MustRegister(m.mutations, m.probes, m.requests)
	return m
}

// Mutation counts one finished optimistic mutation.
func (m *Metrics) Mutation(op, outcome string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(op, outcome).Inc()
}

// ProbeAttempt counts one candidate invocation.
func (m *Metrics) ProbeAttempt(op, outcome string) {
	if m == nil {
		return
	}
	m.probes.WithLabelValues(op, outcome).Inc()
}

// Request counts one remote request.
func (m *Metrics) Request(method string, code int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, strconv.Itoa(code)).Inc()
}

// Registry exposes the underlying registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

// WriteText dumps all counters in the Prometheus text exposition format.
func (m *Metrics) WriteText(w io.Writer) error {
	if m == nil {
		return nil
	}
	families, err := m.reg.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
