//go:build linux

package channel_test

import (
	"testing"
	"time"

	"github.com/momentics/hioload-chan/api"
	"github.com/momentics/hioload-chan/channel"
	"github.com/momentics/hioload-chan/reactor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectReportsReadyChannel(t *testing.T) {
	a1, b1 := socketPair(t)
	a2, b2 := socketPair(t)
	_ = a1

	ready, err := reactor.Select([]api.Selectable{b1, b2}, nil, nil, 0)
	require.NoError(t, err)
	assert.True(t, ready.Empty())

	require.NoError(t, channel.Send(a2, "wake", nil))
	ready, err = reactor.Select([]api.Selectable{b1, b2}, []api.Selectable{a1}, nil, time.Second)
	require.NoError(t, err)
	assert.ElementsMatch(t, []api.Selectable{b2}, ready.Readable)
	assert.ElementsMatch(t, []api.Selectable{a1}, ready.Writable)

	s, ok, err := channel.RecvTimeout[string](b2, nil, 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "wake", s)
}

func TestSelectSkipsClosedChannels(t *testing.T) {
	a, b := socketPair(t)
	require.NoError(t, channel.Send(a, "pending", nil))
	require.NoError(t, b.Close())

	var typedNil *channel.SocketChannel
	ready, err := reactor.Select([]api.Selectable{b, typedNil, nil}, nil, nil, 20*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ready.Empty())
}

func TestPollerFanIn(t *testing.T) {
	p, err := reactor.NewPoller(8)
	require.NoError(t, err)
	defer p.Close()

	a1, b1 := socketPair(t)
	a2, b2 := socketPair(t)
	require.NoError(t, p.Add(b1, reactor.Readable))
	require.NoError(t, p.Add(b2, reactor.Readable))

	require.NoError(t, channel.Send(a1, "one", nil))
	require.NoError(t, channel.Send(a2, "two", nil))

	got := map[string]bool{}
	for len(got) < 2 {
		ready, err := p.Wait(time.Second)
		require.NoError(t, err)
		require.False(t, ready.Empty(), "poller timed out")
		for _, s := range ready.Readable {
			v, ok, err := channel.RecvTimeout[string](s.(*channel.SocketChannel), nil, 0)
			require.NoError(t, err)
			require.True(t, ok)
			got[v] = true
		}
	}
	assert.Equal(t, map[string]bool{"one": true, "two": true}, got)
}
