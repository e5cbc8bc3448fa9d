package irq

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisableHoldsOffHandler(t *testing.T) {
	var g Gate
	var ran atomic.Bool

	s := g.Disable()
	assert.True(t, g.Disabled())
	assert.False(t, g.Masked())

	done := make(chan struct{})
	go func() {
		g.Serve(func() { ran.Store(true) })
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	assert.False(t, ran.Load(), "handler ran with the gate disabled")

	g.Restore(s)
	<-done
	assert.True(t, ran.Load())
	assert.False(t, g.Disabled())
}

func TestNestedDisableRestoresPriorState(t *testing.T) {
	var g Gate
	outer := g.Disable()

	inner := make(chan State)
	go func() { inner <- g.Disable() }()
	var s State
	select {
	case s = <-inner:
	case <-time.After(time.Second):
		require.FailNow(t, "Disable blocked on a disabled gate")
	}

	g.Restore(s)
	assert.True(t, g.Disabled(), "inner Restore re-enabled the gate")
	g.Restore(outer)
	assert.False(t, g.Disabled())
}

func TestDisableAfterMaskDoesNotBlock(t *testing.T) {
	var g Gate
	g.Mask()

	done := make(chan struct{})
	go func() {
		s := g.Disable()
		g.Restore(s)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		require.FailNow(t, "Disable blocked on a masked gate")
	}
	assert.True(t, g.Disabled())
}

func TestMaskSurvivesRestore(t *testing.T) {
	var g Gate
	s := g.Disable()
	g.Mask()
	g.Restore(s)
	assert.True(t, g.Masked())
	assert.True(t, g.Disabled())
}

func TestBusyHandlerIsNotMasked(t *testing.T) {
	var g Gate
	in := make(chan struct{})
	release := make(chan struct{})
	go g.Serve(func() {
		close(in)
		<-release
	})
	<-in
	assert.False(t, g.Masked())
	close(release)
}

func TestRestoreZeroStateIsNoop(t *testing.T) {
	var g Gate
	s := g.Disable()
	g.Restore(State{})
	assert.True(t, g.Disabled())
	g.Restore(s)
	assert.False(t, g.Disabled())
}
