package autoclick

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/2DPocket/clickcapture/appstate"
)

type fakeInjector struct {
	clicks atomic.Uint32
	fail   atomic.Bool
	last   atomic.Int64
}

func (f *fakeInjector) Click(p appstate.Point) error {
	if f.fail.Load() {
		return errors.New("injection refused")
	}
	f.clicks.Add(1)
	f.last.Store(int64(p.X)<<32 | int64(p.Y))
	return nil
}

// newFastClicker shortens the interval and poll so sessions complete in
// milliseconds while keeping the chunked-sleep path exercised.
func newFastClicker(inj Injector, complete func(), warn func(string)) *Clicker {
	c := New(inj, nil, complete, warn)
	c.SetInterval(4 * time.Millisecond)
	c.poll = time.Millisecond
	return c
}

func waitComplete(t *testing.T, ch chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatalf("Timed out waiting for the completion notification")
	}
}

func TestSessionClicksExactlyTarget(t *testing.T) {
	inj := &fakeInjector{}
	completed := make(chan struct{}, 1)
	c := newFastClicker(inj, func() { completed <- struct{}{} }, nil)
	c.SetTarget(5)

	if err := c.Start(appstate.Point{X: 300, Y: 400}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitComplete(t, completed)
	c.Stop()

	if got := inj.clicks.Load(); got != 5 {
		t.Errorf("Expected exactly 5 clicks, got %d", got)
	}
	if got := c.Progress(); got != 5 {
		t.Errorf("Expected progress 5, got %d", got)
	}
	if packed := inj.last.Load(); packed != int64(300)<<32|400 {
		t.Errorf("Expected clicks at (300, 400), got packed %d", packed)
	}
	select {
	case <-completed:
		t.Errorf("Expected exactly one completion notification")
	default:
	}
}

func TestStartWhileRunningFails(t *testing.T) {
	inj := &fakeInjector{}
	completed := make(chan struct{}, 1)
	c := newFastClicker(inj, func() { completed <- struct{}{} }, nil)
	c.SetInterval(time.Second)
	c.SetTarget(100)

	if err := c.Start(appstate.Point{}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := c.Start(appstate.Point{}); err != ErrRunning {
		t.Errorf("Expected ErrRunning, got %v", err)
	}
	c.Stop()
	<-completed
}

func TestStopCancelsPromptly(t *testing.T) {
	inj := &fakeInjector{}
	completed := make(chan struct{}, 1)
	c := newFastClicker(inj, func() { completed <- struct{}{} }, nil)
	c.SetInterval(30 * time.Second) // far longer than the test allows
	c.SetTarget(100)

	if err := c.Start(appstate.Point{}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	start := time.Now()
	c.Stop()
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Expected cancellation within one poll step, took %v", elapsed)
	}
	if c.Running() {
		t.Errorf("Expected Running to be false after Stop")
	}
	<-completed
	if inj.clicks.Load() != 0 {
		t.Errorf("Expected no clicks after immediate stop, got %d", inj.clicks.Load())
	}

	// Stop again is a no-op.
	c.Stop()
}

func TestCeilingStopsWithWarning(t *testing.T) {
	inj := &fakeInjector{}
	completed := make(chan struct{}, 1)
	var warned atomic.Uint32
	c := newFastClicker(inj, func() { completed <- struct{}{} },
		func(string) { warned.Add(1) })
	c.SetInterval(0)
	c.SetTarget(MaxClicks + 50)

	if err := c.Start(appstate.Point{}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitComplete(t, completed)
	c.Stop()

	if got := inj.clicks.Load(); got != MaxClicks {
		t.Errorf("Expected the session to stop at %d clicks, got %d", MaxClicks, got)
	}
	if warned.Load() != 1 {
		t.Errorf("Expected exactly one ceiling warning, got %d", warned.Load())
	}
}

func TestTargetAtCeilingDoesNotWarn(t *testing.T) {
	inj := &fakeInjector{}
	completed := make(chan struct{}, 1)
	var warned atomic.Uint32
	c := newFastClicker(inj, func() { completed <- struct{}{} },
		func(string) { warned.Add(1) })
	c.SetInterval(0)
	c.SetTarget(MaxClicks)

	if err := c.Start(appstate.Point{}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitComplete(t, completed)
	c.Stop()

	if got := inj.clicks.Load(); got != MaxClicks {
		t.Errorf("Expected %d clicks, got %d", MaxClicks, got)
	}
	if warned.Load() != 0 {
		t.Errorf("Expected no warning when the target itself is the ceiling")
	}
}

func TestInjectionFailureEndsSession(t *testing.T) {
	inj := &fakeInjector{}
	inj.fail.Store(true)
	completed := make(chan struct{}, 1)
	c := newFastClicker(inj, func() { completed <- struct{}{} }, nil)
	c.SetTarget(10)

	if err := c.Start(appstate.Point{}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitComplete(t, completed)
	c.Stop()

	if inj.clicks.Load() != 0 {
		t.Errorf("Expected no successful clicks, got %d", inj.clicks.Load())
	}
}

func TestRestartAfterSession(t *testing.T) {
	inj := &fakeInjector{}
	completed := make(chan struct{}, 1)
	c := newFastClicker(inj, func() { completed <- struct{}{} }, nil)
	c.SetTarget(2)

	for round := 0; round < 2; round++ {
		if err := c.Start(appstate.Point{}); err != nil {
			t.Fatalf("Start round %d failed: %v", round, err)
		}
		waitComplete(t, completed)
		c.Stop()
	}
	if got := inj.clicks.Load(); got != 4 {
		t.Errorf("Expected 2 clicks per round, got %d total", got)
	}
}
