// internal/room/countdown_test.go
package room

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collectTicks runs a countdown to completion and returns every emitted value.
func collectTicks(t *testing.T, from int) []int {
	t.Helper()

	var mu sync.Mutex
	var ticks []int
	doneCh := make(chan struct{})

	StartCountdown(from, 5*time.Millisecond,
		func(remaining int) bool {
			mu.Lock()
			ticks = append(ticks, remaining)
			mu.Unlock()
			return true
		},
		func() { close(doneCh) })

	select {
	case <-doneCh:
	case <-time.After(2 * time.Second):
		t.Fatal("countdown never completed")
	}

	mu.Lock()
	defer mu.Unlock()
	return ticks
}

func TestCountdownTickSequence(t *testing.T) {
	ticks := collectTicks(t, 5)
	assert.Equal(t, []int{5, 4, 3, 2, 1, 0}, ticks)
}

func TestCountdownFromZeroFiresOnce(t *testing.T) {
	ticks := collectTicks(t, 0)
	assert.Equal(t, []int{0}, ticks)
}

func TestCountdownStopHaltsTicks(t *testing.T) {
	var mu sync.Mutex
	var ticks []int
	doneFired := false

	cd := StartCountdown(5, 5*time.Millisecond,
		func(remaining int) bool {
			mu.Lock()
			ticks = append(ticks, remaining)
			mu.Unlock()
			return true
		},
		func() {
			mu.Lock()
			doneFired = true
			mu.Unlock()
		})

	// Let a tick or two land, then cancel.
	time.Sleep(12 * time.Millisecond)
	cd.Stop()
	cd.Stop() // idempotent

	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, ticks)
	assert.Less(t, len(ticks), 6, "stop should prevent the full sequence")
	assert.False(t, doneFired, "done must not fire after Stop")
}

func TestCountdownTickFalseAborts(t *testing.T) {
	var mu sync.Mutex
	var ticks []int
	doneFired := false

	StartCountdown(5, 5*time.Millisecond,
		func(remaining int) bool {
			mu.Lock()
			ticks = append(ticks, remaining)
			mu.Unlock()
			return remaining > 3
		},
		func() {
			mu.Lock()
			doneFired = true
			mu.Unlock()
		})

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{5, 4, 3}, ticks)
	assert.False(t, doneFired)
}
