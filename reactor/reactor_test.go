//go:build linux

package reactor_test

import (
	"testing"
	"time"

	"github.com/momentics/hioload-chan/api"
	"github.com/momentics/hioload-chan/fake"
	"github.com/momentics/hioload-chan/reactor"
	"github.com/momentics/hioload-chan/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pair(t *testing.T) (*transport.FDConn, *transport.FDConn) {
	t.Helper()
	a, b, err := transport.Socketpair()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = a.Close()
		_ = b.Close()
	})
	return a, b
}

func sel(c *transport.FDConn) *fake.Selectable {
	return fake.NewSelectable(int(c.RawFD()))
}

// racingSelectable hands out a live descriptor but reports itself closed,
// the view a selector gets when Close lands during the poll.
type racingSelectable struct{ fd int }

func (r racingSelectable) Close() error           { return nil }
func (r racingSelectable) Closed() bool           { return true }
func (r racingSelectable) SelectFD() (int, bool) { return r.fd, true }

func TestSelectEmptyReturnsImmediately(t *testing.T) {
	start := time.Now()
	ready, err := reactor.Select(nil, nil, nil, 0)
	require.NoError(t, err)
	assert.True(t, ready.Empty())

	ready, err = reactor.Select(nil, nil, nil, api.NoTimeout)
	require.NoError(t, err)
	assert.True(t, ready.Empty())
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestSelectEmptyHonoursTimeout(t *testing.T) {
	start := time.Now()
	_, err := reactor.Select(nil, nil, nil, 30*time.Millisecond)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestSelectReadableAndWritable(t *testing.T) {
	a, b := pair(t)
	sa, sb := sel(a), sel(b)

	ready, err := reactor.Select([]api.Selectable{sb}, []api.Selectable{sa}, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, ready.Readable)
	assert.Equal(t, []api.Selectable{sa}, ready.Writable)

	_, err = a.Write([]byte("x"))
	require.NoError(t, err)

	ready, err = reactor.Select([]api.Selectable{sa, sb}, nil, nil, time.Second)
	require.NoError(t, err)
	assert.Equal(t, []api.Selectable{sb}, ready.Readable)
}

func TestSelectSameChannelInBothSets(t *testing.T) {
	a, b := pair(t)
	sb := sel(b)
	_, err := a.Write([]byte("x"))
	require.NoError(t, err)

	ready, err := reactor.Select([]api.Selectable{sb, sb}, []api.Selectable{sb}, []api.Selectable{sb}, 0)
	require.NoError(t, err)
	assert.Equal(t, []api.Selectable{sb}, ready.Readable, "duplicates collapse")
	assert.Equal(t, []api.Selectable{sb}, ready.Writable)
	assert.Empty(t, ready.Exceptional)
}

func TestSelectTimesOut(t *testing.T) {
	_, b := pair(t)
	start := time.Now()
	ready, err := reactor.Select([]api.Selectable{sel(b)}, nil, nil, 40*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ready.Empty())
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestSelectSkipsNilAndClosed(t *testing.T) {
	a, b := pair(t)
	_, err := a.Write([]byte("x"))
	require.NoError(t, err)

	closed := sel(b)
	require.NoError(t, closed.Close())
	var typedNil *fake.Selectable

	ready, err := reactor.Select(
		[]api.Selectable{nil, typedNil, closed, racingSelectable{fd: int(b.RawFD())}},
		[]api.Selectable{nil},
		nil,
		0,
	)
	require.NoError(t, err)
	assert.True(t, ready.Empty())
}

func TestSelectSurvivesClosedDescriptor(t *testing.T) {
	a, b := pair(t)
	stale := sel(a)
	require.NoError(t, a.Close())

	ready, err := reactor.Select([]api.Selectable{stale}, []api.Selectable{sel(b)}, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, ready.Readable, "POLLNVAL is not readiness")
	assert.Len(t, ready.Writable, 1)
}

func TestWaitTimeout(t *testing.T) {
	_, b := pair(t)
	start := time.Now()
	got, err := reactor.Wait(int(b.RawFD()), reactor.Readable, -1, 25*time.Millisecond)
	require.NoError(t, err)
	assert.Zero(t, got)
	assert.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond)
}

func TestDeadline(t *testing.T) {
	unbounded := reactor.NewDeadline(api.NoTimeout)
	assert.Equal(t, api.NoTimeout, unbounded.Left())
	assert.False(t, unbounded.Expired())

	zero := reactor.NewDeadline(0)
	assert.Equal(t, time.Duration(0), zero.Left())
	assert.True(t, zero.Expired())

	later := reactor.NewDeadline(time.Hour)
	assert.Greater(t, later.Left(), 59*time.Minute)
	assert.False(t, later.Expired())
}

func TestPollerWait(t *testing.T) {
	a, b := pair(t)
	sa, sb := sel(a), sel(b)

	p, err := reactor.NewPoller(16)
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.Add(sb, reactor.Readable))
	require.NoError(t, p.Add(sa, reactor.Readable))
	assert.Equal(t, 2, p.Len())

	ready, err := p.Wait(10 * time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ready.Empty())

	_, err = a.Write([]byte("x"))
	require.NoError(t, err)
	ready, err = p.Wait(time.Second)
	require.NoError(t, err)
	assert.Equal(t, []api.Selectable{sb}, ready.Readable)

	require.NoError(t, p.Add(sb, reactor.Readable|reactor.Writable))
	ready, err = p.Wait(time.Second)
	require.NoError(t, err)
	assert.Equal(t, []api.Selectable{sb}, ready.Writable)

	require.NoError(t, sb.Close())
	ready, err = p.Wait(time.Second)
	require.NoError(t, err)
	assert.Empty(t, ready.Readable, "closed channel never reported")
	assert.Equal(t, 1, p.Len(), "closed channel dropped")

	require.NoError(t, p.Remove(sa))
	assert.Zero(t, p.Len())
	assert.ErrorIs(t, p.Add(sb, reactor.Readable), api.ErrTransportClosed)
	assert.ErrorIs(t, p.Add(nil, reactor.Readable), api.ErrInvalidArgument)
}
