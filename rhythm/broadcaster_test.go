package rhythm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	t.Parallel()

	b := NewBroadcaster()
	l1 := b.Subscribe(1)
	l2 := b.Subscribe(1)
	assert.Equal(t, 2, b.ListenerCount())

	b.Unsubscribe(l1)
	assert.Equal(t, 1, b.ListenerCount())
	select {
	case <-l1.Done():
	default:
		t.Fatal("unsubscribed listener not done")
	}

	b.Unsubscribe(l2)
	assert.Equal(t, 0, b.ListenerCount())
}

func TestPublishDropsForSlowListeners(t *testing.T) {
	t.Parallel()

	b := NewBroadcaster()
	slow := b.Subscribe(1)
	fast := b.Subscribe(4)

	for i := 0; i < 3; i++ {
		b.Publish(Beat{Count: int64(i)})
	}

	require.Len(t, slow.C, 1)
	assert.Equal(t, int64(0), (<-slow.C).Count)
	assert.Len(t, fast.C, 3)
}

func TestSubscribeAfterClose(t *testing.T) {
	t.Parallel()

	b := NewBroadcaster()
	b.Close()

	l := b.Subscribe(1)
	assert.Equal(t, 0, b.ListenerCount())
	select {
	case <-l.Done():
	default:
		t.Fatal("listener on closed broadcaster should be done")
	}
}

func TestSnapshotIntervals(t *testing.T) {
	t.Parallel()

	s := Snapshot{Tempo: 120, BeatsPerBar: 4, NextBeatTime: 1.5}
	assert.Equal(t, "500ms", s.BeatInterval().String())
	assert.Equal(t, "2s", s.BarInterval().String())
	assert.InDelta(t, 2.5, s.TimeOfBeat(2), 1e-9)
}
