//go:build linux

package transport_test

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/momentics/hioload-chan/api"
	"github.com/momentics/hioload-chan/reactor"
	"github.com/momentics/hioload-chan/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSocketpairReadWrite(t *testing.T) {
	a, b, err := transport.Socketpair()
	require.NoError(t, err)
	defer a.Close()
	defer b.Close()

	buf := make([]byte, 16)
	_, err = b.Read(buf)
	assert.ErrorIs(t, err, api.ErrWouldBlock, "nothing buffered yet")

	n, err := a.Write([]byte("ping"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = b.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf[:n]))
}

func TestPeerCloseReadsZero(t *testing.T) {
	a, b, err := transport.Socketpair()
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, a.Close())
	require.NoError(t, a.Close(), "second close is a no-op")

	n, err := b.Read(make([]byte, 4))
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = b.Write([]byte("x"))
	assert.ErrorIs(t, err, api.ErrEndOfStream)

	_, err = a.Read(make([]byte, 1))
	assert.ErrorIs(t, err, api.ErrTransportClosed)
}

func TestWriteFillsSendBuffer(t *testing.T) {
	a, b, err := transport.Socketpair()
	require.NoError(t, err)
	defer a.Close()
	defer b.Close()
	require.NoError(t, a.SetBuffers(4096, 0))

	chunk := make([]byte, 64<<10)
	total := 0
	for i := 0; i < 1024; i++ {
		n, err := a.Write(chunk)
		if errors.Is(err, api.ErrWouldBlock) {
			break
		}
		require.NoError(t, err)
		total += n
	}
	assert.Greater(t, total, 0)

	got, err := reactor.Wait(int(a.RawFD()), reactor.Writable, -1, 0)
	require.NoError(t, err)
	assert.Zero(t, got&reactor.Writable, "full buffer must not poll writable")
}

func TestWaker(t *testing.T) {
	w, err := transport.NewWaker()
	require.NoError(t, err)
	defer w.Close()

	a, b, err := transport.Socketpair()
	require.NoError(t, err)
	defer a.Close()
	defer b.Close()

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = w.Wake()
	}()
	start := time.Now()
	got, err := reactor.Wait(int(b.RawFD()), reactor.Readable, w.FD(), 5*time.Second)
	require.NoError(t, err)
	assert.NotZero(t, got&reactor.Woken)
	assert.Zero(t, got&reactor.Readable)
	assert.Less(t, time.Since(start), 2*time.Second)

	require.NoError(t, w.Wake())
	got, err = reactor.Wait(int(b.RawFD()), reactor.Readable, w.FD(), 0)
	require.NoError(t, err)
	assert.NotZero(t, got&reactor.Woken, "waker stays readable")
}

func TestFromNetConn(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := ln.Accept()
		if err == nil {
			accepted <- c
		}
	}()

	client, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	server := <-accepted
	defer server.Close()

	fc, err := transport.FromNetConn(client)
	require.NoError(t, err)

	n, err := fc.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	buf := make([]byte, 5)
	require.NoError(t, server.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, err = server.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf))

	require.NoError(t, fc.Close())
	_, err = client.Write([]byte("x"))
	assert.Error(t, err, "adopted conn is closed with the FDConn")
}

func TestNewFDConnRejectsNegative(t *testing.T) {
	_, err := transport.NewFDConn(-1)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
}
