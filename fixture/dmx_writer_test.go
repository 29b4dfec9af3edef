package fixture

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"
)

type fakeOLA struct {
	mu     sync.Mutex
	frames map[int][][]byte
	fail   bool
	closed bool
}

func (c *fakeOLA) SendDmx(universe int, values []byte) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return false, fmt.Errorf("olad went away")
	}
	if c.frames == nil {
		c.frames = map[int][][]byte{}
	}
	c.frames[universe] = append(c.frames[universe], values)
	return true, nil
}

func (c *fakeOLA) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeOLA) sent(universe int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames[universe])
}

func TestDMXStateBounds(t *testing.T) {
	t.Parallel()

	s := NewDMXState()
	require.NoError(t, s.set(dmxOperation{universe: 1, channel: 512, value: 9}))
	assert.Equal(t, byte(9), s.Get(1, 512))
	assert.Error(t, s.set(dmxOperation{universe: 1, channel: 0, value: 1}))
	assert.Error(t, s.set(dmxOperation{universe: 1, channel: 513, value: 1}))
	assert.Equal(t, byte(0), s.Get(7, 1))
}

func TestDMXStateUniversesIsACopy(t *testing.T) {
	t.Parallel()

	s := NewDMXState()
	require.NoError(t, s.set(dmxOperation{universe: 1, channel: 1, value: 50}))

	u := s.Universes()
	u[1][0] = 0
	assert.Equal(t, byte(50), s.Get(1, 1))
	assert.Len(t, u[1], UniverseSize)
}

func TestSendDMXWorker(t *testing.T) {
	t.Parallel()

	state := NewDMXState()
	require.NoError(t, state.set(dmxOperation{universe: 1, channel: 1, value: 255}))

	client := &fakeOLA{}
	clk := testingclock.NewFakeClock(time.Now())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- SendDMXWorker(ctx, client, clk, 40*time.Millisecond, state) }()

	for i := 1; i <= 3; i++ {
		require.Eventually(t, clk.HasWaiters, time.Second, time.Millisecond)
		clk.Step(40 * time.Millisecond)
		want := i
		require.Eventually(t, func() bool { return client.sent(1) == want }, time.Second, time.Millisecond)
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.True(t, client.closed)
}

func TestSendDMXWorkerSurvivesSendErrors(t *testing.T) {
	t.Parallel()

	state := NewDMXState()
	require.NoError(t, state.set(dmxOperation{universe: 1, channel: 1, value: 255}))

	client := &fakeOLA{fail: true}
	clk := testingclock.NewFakeClock(time.Now())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = SendDMXWorker(ctx, client, clk, 40*time.Millisecond, state) }()

	require.Eventually(t, clk.HasWaiters, time.Second, time.Millisecond)
	clk.Step(40 * time.Millisecond)

	// the worker re-arms after a failed send
	require.Eventually(t, clk.HasWaiters, time.Second, time.Millisecond)
	client.mu.Lock()
	client.fail = false
	client.mu.Unlock()
	clk.Step(40 * time.Millisecond)
	require.Eventually(t, func() bool { return client.sent(1) == 1 }, time.Second, time.Millisecond)
}
