package taskpool

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPool_RunsSubmittedTasks(t *testing.T) {
	p := New(discard(), 2, 16)
	defer p.Stop()

	var count atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		ok := p.TrySubmit("count", func() {
			defer wg.Done()
			count.Add(1)
		})
		require.True(t, ok)
	}
	wg.Wait()
	assert.Equal(t, int32(10), count.Load())
}

func TestPool_DropsWhenSaturated(t *testing.T) {
	p := New(discard(), 1, 1)
	defer p.Stop()

	block := make(chan struct{})
	started := make(chan struct{})
	require.True(t, p.TrySubmit("block", func() {
		close(started)
		<-block
	}))
	<-started

	// One task fits in the queue, the next must be dropped.
	require.True(t, p.TrySubmit("queued", func() {}))
	assert.False(t, p.TrySubmit("overflow", func() {}))
	close(block)
}

func TestPool_RecoversFromPanic(t *testing.T) {
	p := New(discard(), 1, 4)
	defer p.Stop()

	done := make(chan struct{})
	require.True(t, p.TrySubmit("boom", func() { panic("boom") }))
	require.True(t, p.TrySubmit("after", func() { close(done) }))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive panicking task")
	}
}

func TestPool_RejectsAfterStop(t *testing.T) {
	p := New(discard(), 1, 4)
	p.Stop()
	assert.False(t, p.TrySubmit("late", func() {}))
}
