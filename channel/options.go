// File: channel/options.go
// Author: momentics <momentics@gmail.com>

package channel

import (
	"sync"
	"time"

	"github.com/momentics/hioload-chan/api"
	"github.com/momentics/hioload-chan/codec"
	"github.com/momentics/hioload-chan/codecs"
	"github.com/momentics/hioload-chan/control"
	"github.com/momentics/hioload-chan/pool"
	"go.uber.org/zap"
)

// Option configures a SocketChannel.
type Option func(*options)

type options struct {
	registry    codec.Registry
	logger      *zap.Logger
	metrics     *control.Metrics
	readChunk   int
	buffers     *pool.BufferPool
	sendTimeout time.Duration
	recvTimeout time.Duration
}

var defaultRegistry = sync.OnceValue(func() codec.Registry {
	r := codec.NewMapRegistry()
	codecs.RegisterDefaults(r)
	return r
})

// DefaultRegistry returns the shared registry holding the built-in scalar
// codecs. Channels use it when no WithRegistry option is given.
func DefaultRegistry() codec.Registry {
	return defaultRegistry()
}

func defaultOptions() options {
	return options{
		registry:    DefaultRegistry(),
		logger:      zap.NewNop(),
		readChunk:   pool.DefaultChunkSize,
		buffers:     pool.DefaultBuffers(),
		sendTimeout: api.NoTimeout,
		recvTimeout: api.NoTimeout,
	}
}

// WithRegistry sets the registry used when a call passes no codec.
func WithRegistry(r codec.Registry) Option {
	return func(o *options) {
		if r != nil {
			o.registry = r
		}
	}
}

// WithLogger sets the channel logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics enables traffic counters.
func WithMetrics(m *control.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithReadChunk caps the bytes requested from the transport per read.
func WithReadChunk(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.readChunk = n
		}
	}
}

// WithBufferPool sets the pool serialized messages are staged in.
func WithBufferPool(p *pool.BufferPool) Option {
	return func(o *options) {
		if p != nil {
			o.buffers = p
		}
	}
}

// WithDefaultTimeouts sets the budgets of the untimed Send and Recv.
// api.NoTimeout blocks without bound.
func WithDefaultTimeouts(send, recv time.Duration) Option {
	return func(o *options) {
		o.sendTimeout = send
		o.recvTimeout = recv
	}
}

// WithConfig applies the channel section of a loaded configuration.
func WithConfig(cfg control.Config) Option {
	return func(o *options) {
		o.sendTimeout = cfg.SendTimeout.Duration
		o.recvTimeout = cfg.RecvTimeout.Duration
		if cfg.ReadChunk > 0 {
			o.readChunk = cfg.ReadChunk
		}
	}
}
