package api_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/momentics/hioload-chan/api"
	"github.com/momentics/hioload-chan/codec"
)

func TestErrorUnwrapsToSentinel(t *testing.T) {
	err := api.NewError(api.ErrCodeNoCodec, "no codec for type").WithContext("tag", "x.Y")
	if !errors.Is(err, api.ErrNoCodec) {
		t.Fatal("structured error does not match its sentinel")
	}
	if api.CodeOf(fmt.Errorf("wrapped: %w", err)) != api.ErrCodeNoCodec {
		t.Fatal("code lost through wrapping")
	}
	if api.CodeOf(errors.New("plain")) == api.ErrCodeNoCodec {
		t.Fatal("plain error reported a code")
	}
}

func TestErrorCarriesCause(t *testing.T) {
	cause := errors.New("factory failed")
	err := api.NewError(api.ErrCodeNoCodec, "no codec for type").WithCause(cause)
	if !errors.Is(err, api.ErrNoCodec) || !errors.Is(err, cause) {
		t.Fatal("sentinel or cause not reachable through errors.Is")
	}
	if got := err.Error(); got != "no codec for type: factory failed" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestChannelInterfaceCompliance(t *testing.T) {
	var _ api.AsyncChannel = (*mockChannel)(nil)
	var _ api.Channel = (*mockChannel)(nil)
	var _ api.NetConn = (*mockConn)(nil)
}

// mockChannel implements every capability for interface checks.
type mockChannel struct{ closed bool }

func (m *mockChannel) Close() error {
	m.closed = true
	return nil
}

func (m *mockChannel) Closed() bool { return m.closed }

func (m *mockChannel) SelectFD() (int, bool) { return -1, !m.closed }

func (m *mockChannel) Send(any, codec.Codec[any]) error { return nil }

func (m *mockChannel) SendTimeout(any, codec.Codec[any], time.Duration) error {
	return api.ErrTimeout
}

func (m *mockChannel) Recv(codec.Tag, codec.Codec[any]) (any, bool, error) {
	return nil, false, nil
}

func (m *mockChannel) RecvTimeout(codec.Tag, codec.Codec[any], time.Duration) (any, bool, error) {
	return nil, false, api.ErrTimeout
}

type mockConn struct{}

func (mockConn) Read([]byte) (int, error)  { return 0, api.ErrWouldBlock }
func (mockConn) Write([]byte) (int, error) { return 0, api.ErrWouldBlock }
func (mockConn) Close() error              { return nil }
func (mockConn) RawFD() uintptr            { return 0 }
