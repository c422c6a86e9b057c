// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Channel traffic counters exported through Prometheus.

package control

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Direction labels a metric with the transfer direction.
type Direction string

const (
	Send Direction = "send"
	Recv Direction = "recv"
)

// Outcome labels how a send or recv ended.
type Outcome string

const (
	OutcomeOK      Outcome = "ok"
	OutcomeEmpty   Outcome = "empty"
	OutcomeTimeout Outcome = "timeout"
	OutcomeEOS     Outcome = "eos"
	OutcomeError   Outcome = "error"
)

// Metrics holds the channel collectors. A nil *Metrics records nothing.
type Metrics struct {
	messages *prometheus.CounterVec
	bytes    *prometheus.CounterVec
	open     prometheus.Gauge
}

// NewMetrics registers the channel collectors with reg. Collectors already
// registered under the same names are reused, so several channels or
// repeated construction share one set of series.
func NewMetrics(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "channel",
			Name:      "messages_total",
			Help:      "Completed send and recv calls by outcome.",
		}, []string{"direction", "outcome"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "channel",
			Name:      "bytes_total",
			Help:      "Bytes moved through the transport.",
		}, []string{"direction"}),
		open: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "channel",
			Name:      "open",
			Help:      "Channels constructed and not yet closed.",
		}),
	}
	if reg == nil {
		return m, nil
	}
	var err error
	m.messages, err = register(reg, m.messages)
	if err != nil {
		return nil, err
	}
	m.bytes, err = register(reg, m.bytes)
	if err != nil {
		return nil, err
	}
	m.open, err = register(reg, m.open)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Message counts one finished operation.
func (m *Metrics) Message(dir Direction, outcome Outcome) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(string(dir), string(outcome)).Inc()
}

// Bytes counts n transferred bytes.
func (m *Metrics) Bytes(dir Direction, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.bytes.WithLabelValues(string(dir)).Add(float64(n))
}

// Opened records a new channel.
func (m *Metrics) Opened() {
	if m == nil {
		return
	}
	m.open.Inc()
}

// Closed records a channel close.
func (m *Metrics) Closed() {
	if m == nil {
		return
	}
	m.open.Dec()
}

// MessageCounter exposes the message counter vector for inspection.
func (m *Metrics) MessageCounter() *prometheus.CounterVec {
	return m.messages
}

// ByteCounter exposes the byte counter vector for inspection.
func (m *Metrics) ByteCounter() *prometheus.CounterVec {
	return m.bytes
}

// OpenGauge exposes the open-channel gauge for inspection.
func (m *Metrics) OpenGauge() prometheus.Gauge {
	return m.open
}
