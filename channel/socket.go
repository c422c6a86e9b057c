// File: channel/socket.go
// Author: momentics <momentics@gmail.com>
//
// SocketChannel drives an api.NetConn with poll(2) readiness and codec
// cursors.

package channel

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/momentics/hioload-chan/api"
	"github.com/momentics/hioload-chan/codec"
	"github.com/momentics/hioload-chan/control"
	"github.com/momentics/hioload-chan/pool"
	"github.com/momentics/hioload-chan/reactor"
	"github.com/momentics/hioload-chan/transport"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// SocketChannel is an api.AsyncChannel over a non-blocking stream
// transport. It is safe for concurrent use: sends are serialized against
// each other, receives against each other, and the two directions proceed
// independently.
type SocketChannel struct {
	id      uuid.UUID
	conn    api.NetConn
	fd      int
	wake    *transport.Waker
	log     *zap.Logger
	metrics *control.Metrics

	registry    codec.Registry
	buffers     *pool.BufferPool
	chunks      *pool.BytePool
	sendTimeout time.Duration
	recvTimeout time.Duration

	wmu    sync.Mutex
	rmu    sync.Mutex
	closed atomic.Bool
	// wbroken is set, under wmu, once a send failed mid-message. The
	// peer's decoder is then stuck inside that frame, so no later message
	// can be framed correctly.
	wbroken atomic.Bool
}

var _ api.AsyncChannel = (*SocketChannel)(nil)

// NewSocket wraps conn, which must already be in non-blocking mode. The
// channel owns conn from here on and closes it on Close.
func NewSocket(conn api.NetConn, opts ...Option) (*SocketChannel, error) {
	if conn == nil {
		return nil, fmt.Errorf("%w: nil transport", api.ErrInvalidArgument)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	wake, err := transport.NewWaker()
	if err != nil {
		return nil, fmt.Errorf("channel waker: %w", err)
	}
	chunks := pool.DefaultChunks()
	if o.readChunk != chunks.Size() {
		chunks = pool.NewBytePool(o.readChunk)
	}
	ch := &SocketChannel{
		id:          uuid.New(),
		conn:        conn,
		fd:          int(conn.RawFD()),
		wake:        wake,
		metrics:     o.metrics,
		registry:    o.registry,
		buffers:     o.buffers,
		chunks:      chunks,
		sendTimeout: o.sendTimeout,
		recvTimeout: o.recvTimeout,
	}
	ch.log = o.logger.With(zap.Stringer("channel", ch.id))
	ch.metrics.Opened()
	ch.log.Debug("channel opened", zap.Int("fd", ch.fd))
	return ch, nil
}

// ID returns the channel identifier used in logs.
func (c *SocketChannel) ID() uuid.UUID {
	return c.id
}

// WriteBroken reports whether a send failed mid-message, which leaves
// the send direction unusable.
func (c *SocketChannel) WriteBroken() bool {
	return c.wbroken.Load()
}

// Closed implements api.Closeable.
func (c *SocketChannel) Closed() bool {
	return c.closed.Load()
}

// SelectFD implements api.Selectable.
func (c *SocketChannel) SelectFD() (int, bool) {
	if c == nil || c.closed.Load() {
		return -1, false
	}
	return c.fd, true
}

// Close marks the channel closed, wakes parked callers and releases the
// transport once they have left. Only the first call has an effect.
func (c *SocketChannel) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := c.wake.Wake(); err != nil {
		c.log.Warn("close wake failed", zap.Error(err))
	}

	c.wmu.Lock()
	c.rmu.Lock()
	err := multierr.Combine(c.conn.Close(), c.wake.Close())
	c.rmu.Unlock()
	c.wmu.Unlock()

	c.metrics.Closed()
	if err != nil {
		c.log.Warn("channel release failed", zap.Error(err))
	} else {
		c.log.Debug("channel closed")
	}
	return nil
}

func (c *SocketChannel) resolve(tag codec.Tag, cd codec.Codec[any]) (codec.Codec[any], error) {
	if cd != nil {
		return cd, nil
	}
	ctx := codec.NewContext(c.registry)
	var cause error
	if res, ok := c.registry.(codec.Resolver); ok {
		found, err := res.Resolve(tag, ctx)
		if err == nil {
			return found, nil
		}
		if !errors.Is(err, codec.ErrUnknownTag) {
			cause = err
		}
	} else if found, ok := c.registry.Codec(tag, ctx); ok && found != nil {
		return found, nil
	}
	e := api.NewError(api.ErrCodeNoCodec, "no codec for type").WithContext("tag", string(tag))
	if cause != nil {
		c.log.Warn("codec factory failed", zap.String("tag", string(tag)), zap.Error(cause))
		e = e.WithCause(cause)
	}
	return nil, e
}

// Send implements api.Output with the default send timeout.
func (c *SocketChannel) Send(payload any, cd codec.Codec[any]) error {
	return c.SendTimeout(payload, cd, c.sendTimeout)
}

// SendTimeout encodes payload in full and writes it within timeout. A
// negative timeout blocks without bound and zero makes a single attempt.
// A timeout before the first byte leaves the channel usable. A timeout
// after part of the message reached the wire breaks the send direction:
// every later send fails with api.ErrEndOfStream while receiving is
// unaffected.
func (c *SocketChannel) SendTimeout(payload any, cd codec.Codec[any], timeout time.Duration) error {
	tag := codec.TagOf(payload)
	cd, err := c.resolve(tag, cd)
	if err != nil {
		c.metrics.Message(control.Send, control.OutcomeError)
		return err
	}

	buf := c.buffers.Get()
	defer c.buffers.Put(buf)
	if err := codec.EncodeTo(buf, cd, payload); err != nil {
		c.metrics.Message(control.Send, control.OutcomeError)
		return err
	}
	data := buf.Bytes()

	c.wmu.Lock()
	defer c.wmu.Unlock()

	if c.wbroken.Load() {
		c.metrics.Message(control.Send, control.OutcomeEOS)
		return fmt.Errorf("%w: send direction broken by an earlier partial message", api.ErrEndOfStream)
	}
	sent, err := c.write(data, timeout)
	c.metrics.Bytes(control.Send, sent)
	switch {
	case err == nil:
		c.metrics.Message(control.Send, control.OutcomeOK)
		c.log.Debug("sent", zap.String("tag", string(tag)), zap.Int("bytes", sent))
	case errors.Is(err, api.ErrTimeout):
		c.metrics.Message(control.Send, control.OutcomeTimeout)
		if sent > 0 {
			c.log.Warn("send timed out mid-message",
				zap.String("tag", string(tag)), zap.Int("sent", sent), zap.Int("total", len(data)))
		}
	case errors.Is(err, api.ErrEndOfStream):
		c.metrics.Message(control.Send, control.OutcomeEOS)
	default:
		c.metrics.Message(control.Send, control.OutcomeError)
	}
	if err != nil && sent > 0 {
		c.wbroken.Store(true)
	}
	return err
}

func (c *SocketChannel) write(data []byte, timeout time.Duration) (int, error) {
	dl := reactor.NewDeadline(timeout)
	sent := 0
	for attempt := 0; sent < len(data); attempt++ {
		if c.closed.Load() {
			return sent, endOfStream(sent, "send")
		}
		if attempt > 0 && dl.Expired() {
			return sent, fmt.Errorf("%w: %d of %d bytes sent", api.ErrTimeout, sent, len(data))
		}
		ready, err := reactor.Wait(c.fd, reactor.Writable, c.wake.FD(), dl.Left())
		if err != nil {
			return sent, err
		}
		if ready&reactor.Writable == 0 {
			continue
		}
		n, err := c.conn.Write(data[sent:])
		sent += n
		switch {
		case err == nil, errors.Is(err, api.ErrWouldBlock):
		case errors.Is(err, api.ErrTransportClosed):
			return sent, endOfStream(sent, "send")
		default:
			return sent, err
		}
	}
	return sent, nil
}

// Recv implements api.Input with the default receive timeout.
func (c *SocketChannel) Recv(tag codec.Tag, cd codec.Codec[any]) (any, bool, error) {
	return c.RecvTimeout(tag, cd, c.recvTimeout)
}

// RecvTimeout decodes one value of tag within timeout. ok is false with a
// nil error when the stream ended, or the channel was closed, before any
// byte of the value arrived. Ending mid-value fails with
// api.ErrEndOfStream.
func (c *SocketChannel) RecvTimeout(tag codec.Tag, cd codec.Codec[any], timeout time.Duration) (any, bool, error) {
	cd, err := c.resolve(tag, cd)
	if err != nil {
		c.metrics.Message(control.Recv, control.OutcomeError)
		return nil, false, err
	}

	c.rmu.Lock()
	defer c.rmu.Unlock()

	v, ok, count, err := c.read(cd.Decoder(), timeout)
	c.metrics.Bytes(control.Recv, count)
	switch {
	case err == nil && !ok:
		c.metrics.Message(control.Recv, control.OutcomeEmpty)
		c.log.Debug("stream ended before value", zap.String("tag", string(tag)))
		return nil, false, nil
	case err == nil:
		c.metrics.Message(control.Recv, control.OutcomeOK)
		c.log.Debug("received", zap.String("tag", string(tag)), zap.Int("bytes", count))
		return v, true, nil
	case errors.Is(err, api.ErrTimeout):
		c.metrics.Message(control.Recv, control.OutcomeTimeout)
	case errors.Is(err, api.ErrEndOfStream):
		c.metrics.Message(control.Recv, control.OutcomeEOS)
	default:
		c.metrics.Message(control.Recv, control.OutcomeError)
	}
	return nil, false, err
}

// read fills dec from the transport and reports the bytes consumed.
func (c *SocketChannel) read(dec codec.Decoder[any], timeout time.Duration) (any, bool, int, error) {
	if c.closed.Load() {
		return nil, false, 0, fmt.Errorf("%w: recv on closed channel", api.ErrEndOfStream)
	}
	chunk := c.chunks.GetBuffer()
	defer c.chunks.PutBuffer(chunk)

	dl := reactor.NewDeadline(timeout)
	count := 0
	for attempt := 0; dec.Remaining() > 0; attempt++ {
		if c.closed.Load() {
			return nil, false, count, truncated(count)
		}
		if attempt > 0 && dl.Expired() {
			return nil, false, count, fmt.Errorf("%w: %d bytes received", api.ErrTimeout, count)
		}
		ready, err := reactor.Wait(c.fd, reactor.Readable, c.wake.FD(), dl.Left())
		if err != nil {
			return nil, false, count, err
		}
		if ready&reactor.Readable == 0 {
			continue
		}
		p := (*chunk)[:min(dec.Remaining(), len(*chunk))]
		n, err := c.conn.Read(p)
		switch {
		case errors.Is(err, api.ErrWouldBlock):
			continue
		case errors.Is(err, api.ErrTransportClosed):
			return nil, false, count, truncated(count)
		case err != nil:
			return nil, false, count, err
		case n == 0:
			return nil, false, count, truncated(count)
		}
		if err := codec.Feed(dec, p[:n]); err != nil {
			return nil, false, count, err
		}
		count += n
	}
	v, err := dec.Value()
	if err != nil {
		return nil, false, count, err
	}
	return v, true, count, nil
}

// truncated applies the end-of-stream rule: no bytes means no value, some
// bytes means a cut-off message.
func truncated(count int) error {
	if count == 0 {
		return nil
	}
	return fmt.Errorf("%w: stream ended after %d bytes of a message", api.ErrEndOfStream, count)
}

func endOfStream(sent int, op string) error {
	return fmt.Errorf("%w: %s aborted after %d bytes", api.ErrEndOfStream, op, sent)
}
