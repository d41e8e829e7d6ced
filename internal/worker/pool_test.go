package worker

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_RunsAllTasksBeforeStop(t *testing.T) {
	p := NewPool(3, 16)
	var n atomic.Int32
	for i := 0; i < 50; i++ {
		require.NoError(t, p.Submit(func() { n.Add(1) }))
	}
	p.Stop()
	assert.EqualValues(t, 50, n.Load())
}

func TestPool_SubmitAfterStop(t *testing.T) {
	p := NewPool(1, 1)
	p.Stop()
	p.Stop()
	assert.ErrorIs(t, p.Submit(func() {}), ErrStopped)
}

func TestPool_PanicDoesNotKillWorker(t *testing.T) {
	p := NewPool(1, 4)
	var ran atomic.Bool
	require.NoError(t, p.Submit(func() { panic("boom") }))
	require.NoError(t, p.Submit(func() { ran.Store(true) }))
	p.Stop()
	assert.True(t, ran.Load())
}

func TestPool_TrySubmitWhenFull(t *testing.T) {
	p := NewPool(1, 1)
	started, release := make(chan struct{}), make(chan struct{})
	require.NoError(t, p.Submit(func() { close(started); <-release }))
	<-started

	require.NoError(t, p.TrySubmit(func() {}))
	assert.ErrorIs(t, p.TrySubmit(func() {}), ErrQueueFull)

	close(release)
	p.Stop()
	assert.ErrorIs(t, p.TrySubmit(func() {}), ErrStopped)
}
