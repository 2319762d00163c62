package portal_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/savanna-accountancy/portal"
	"github.com/stretchr/testify/assert"
)

func TestRoutine_TicksUntilStopped(t *testing.T) {
	var ticks atomic.Int32
	r := portal.NewRoutine(5*time.Millisecond, func() { ticks.Add(1) })

	r.Start(context.Background())
	assert.Eventually(t, func() bool { return ticks.Load() >= 2 }, time.Second, 5*time.Millisecond)

	r.Stop()
	assert.Eventually(t, func() bool { return !r.Running() }, time.Second, 5*time.Millisecond)
}

func TestRoutine_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := portal.NewRoutine(time.Hour, func() {})
	r.Start(ctx)
	assert.True(t, r.Running())

	cancel()
	assert.Eventually(t, func() bool { return !r.Running() }, time.Second, 5*time.Millisecond)
}

func TestRoutine_StopWhenNotRunningIsNoop(t *testing.T) {
	r := portal.NewRoutine(time.Second, func() {})
	r.Stop()
	assert.False(t, r.Running())
}
