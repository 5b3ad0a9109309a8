package hook

import (
	"testing"

	"github.com/2DPocket/clickcapture/appstate"
)

// fakeSource records install state and lets tests feed raw events through
// the bridge callback.
type fakeSource struct {
	cb        func(RawEvent) bool
	installed bool
	err       error
}

func (f *fakeSource) Install(cb func(RawEvent) bool) error {
	if f.err != nil {
		return f.err
	}
	f.cb = cb
	f.installed = true
	return nil
}

func (f *fakeSource) Uninstall() { f.installed = false }

func (f *fakeSource) feed(k RawKind, x, y int) bool {
	return f.cb(RawEvent{Kind: k, Pos: appstate.Point{X: x, Y: y}})
}

func newTestBridge(t *testing.T) (*Bridge, *fakeSource) {
	t.Helper()
	src := &fakeSource{}
	b := NewBridge(src)
	if err := b.Install(); err != nil {
		t.Fatalf("Install failed: %v", err)
	}
	return b, src
}

func drainAdvisory(b *Bridge) []Event {
	var out []Event
	for {
		select {
		case ev := <-b.Events():
			out = append(out, ev)
		default:
			return out
		}
	}
}

func drainGestures(b *Bridge) []Event {
	var out []Event
	for {
		select {
		case ev := <-b.Terminal():
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestInstallIsExclusive(t *testing.T) {
	b, _ := newTestBridge(t)
	if err := b.Install(); err != ErrAlreadyInstalled {
		t.Errorf("Expected ErrAlreadyInstalled, got %v", err)
	}
	b.Uninstall()
	b.Uninstall() // idempotent
	if b.Installed() {
		t.Errorf("Expected bridge to report uninstalled")
	}
}

func TestIdleForwardsEverything(t *testing.T) {
	b, src := newTestBridge(t)
	b.SetMode(appstate.ModeIdle)

	for _, k := range []RawKind{RawMove, RawPrimaryDown, RawPrimaryUp, RawCancelKey} {
		if src.feed(k, 100, 100) {
			t.Errorf("Expected raw kind %d to be forwarded in idle mode", k)
		}
	}
}

func TestAreaSelectDragSequence(t *testing.T) {
	b, src := newTestBridge(t)
	b.SetMode(appstate.ModeAreaSelecting)

	if !src.feed(RawPrimaryDown, 10, 20) {
		t.Errorf("Expected the drag-start click to be swallowed")
	}
	if src.feed(RawMove, 50, 60) {
		t.Errorf("Expected moves to always be forwarded")
	}
	if src.feed(RawPrimaryUp, 110, 220) {
		t.Errorf("Expected the drag-end release to be forwarded")
	}

	gs := drainGestures(b)
	if len(gs) != 2 {
		t.Fatalf("Expected 2 gestures, got %d: %+v", len(gs), gs)
	}
	if gs[0].Kind != DragStart || gs[0].Anchor != (appstate.Point{X: 10, Y: 20}) {
		t.Errorf("Unexpected drag start: %+v", gs[0])
	}
	if gs[1].Kind != DragEnd || gs[1].Pos != (appstate.Point{X: 110, Y: 220}) {
		t.Errorf("Unexpected drag end: %+v", gs[1])
	}

	advs := drainAdvisory(b)
	if len(advs) != 1 || advs[0].Kind != DragUpdate ||
		advs[0].Anchor != (appstate.Point{X: 10, Y: 20}) ||
		advs[0].Pos != (appstate.Point{X: 50, Y: 60}) {
		t.Errorf("Unexpected drag update stream: %+v", advs)
	}
}

func TestMoveWithoutDragIsPointerMove(t *testing.T) {
	b, src := newTestBridge(t)
	b.SetMode(appstate.ModeCapturing)

	src.feed(RawMove, 7, 9)
	evs := drainAdvisory(b)
	if len(evs) != 1 || evs[0].Kind != PointerMove {
		t.Fatalf("Expected one PointerMove, got %+v", evs)
	}
}

func TestCaptureClickSwallowOnlyWhenArmed(t *testing.T) {
	b, src := newTestBridge(t)
	b.SetMode(appstate.ModeCapturing)

	if src.feed(RawPrimaryUp, 30, 40) {
		t.Errorf("Expected a plain capture click to be forwarded")
	}

	b.SetAutoClickArmed(true)
	if !src.feed(RawPrimaryUp, 30, 40) {
		t.Errorf("Expected the arming click to be swallowed")
	}
	b.SetAutoClickArmed(false)
	if src.feed(RawPrimaryUp, 30, 40) {
		t.Errorf("Expected clicks after arming to be forwarded again")
	}

	evs := drainGestures(b)
	if len(evs) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(evs))
	}
	for _, ev := range evs {
		if ev.Kind != PrimaryClick {
			t.Errorf("Expected PrimaryClick, got %+v", ev)
		}
	}
}

func TestCancelKeySwallowedInActiveModes(t *testing.T) {
	b, src := newTestBridge(t)

	b.SetMode(appstate.ModeAreaSelecting)
	if !src.feed(RawCancelKey, 0, 0) {
		t.Errorf("Expected cancel key to be swallowed while area-selecting")
	}
	b.SetMode(appstate.ModeCapturing)
	if !src.feed(RawCancelKey, 0, 0) {
		t.Errorf("Expected cancel key to be swallowed while capturing")
	}
	b.SetMode(appstate.ModeIdle)
	if src.feed(RawCancelKey, 0, 0) {
		t.Errorf("Expected cancel key to be forwarded while idle")
	}
}

func TestCancelKeyAbandonsDrag(t *testing.T) {
	b, src := newTestBridge(t)
	b.SetMode(appstate.ModeAreaSelecting)

	src.feed(RawPrimaryDown, 10, 10)
	src.feed(RawCancelKey, 0, 0)
	drainGestures(b)

	// The release after a cancel must not produce a DragEnd.
	src.feed(RawPrimaryUp, 90, 90)
	for _, ev := range drainGestures(b) {
		if ev.Kind == DragEnd {
			t.Errorf("Expected no DragEnd after cancel, got %+v", ev)
		}
	}
}

func TestFullBufferDropsMovesKeepsNothingBlocked(t *testing.T) {
	b, src := newTestBridge(t)
	b.SetMode(appstate.ModeCapturing)

	// Nobody drains: the callback must still return promptly for every event.
	for i := 0; i < eventBuffer*3; i++ {
		src.feed(RawMove, i, i)
	}
	if got := b.dropped.Load(); got != uint64(eventBuffer*2) {
		t.Errorf("Expected %d dropped moves, got %d", eventBuffer*2, got)
	}
	if len(drainAdvisory(b)) != eventBuffer {
		t.Errorf("Expected the buffer to hold exactly %d events", eventBuffer)
	}
}

func TestCancelKeySurvivesFullAdvisoryBuffer(t *testing.T) {
	b, src := newTestBridge(t)
	b.SetMode(appstate.ModeAreaSelecting)

	// Saturate the advisory stream with nobody draining, then press escape.
	// The gesture must arrive on its own channel regardless.
	for i := 0; i < eventBuffer*2; i++ {
		src.feed(RawMove, i, i)
	}
	src.feed(RawCancelKey, 0, 0)

	gs := drainGestures(b)
	if len(gs) != 1 || gs[0].Kind != CancelKey {
		t.Fatalf("Expected a CancelKey gesture, got %+v", gs)
	}
}

func TestFullGestureQueueKeepsNewest(t *testing.T) {
	b, src := newTestBridge(t)
	b.SetMode(appstate.ModeCapturing)

	total := terminalBuffer + 4
	for i := 1; i <= total; i++ {
		src.feed(RawPrimaryUp, i, 0)
	}

	gs := drainGestures(b)
	if len(gs) != terminalBuffer {
		t.Fatalf("Expected %d queued gestures, got %d", terminalBuffer, len(gs))
	}
	if last := gs[len(gs)-1]; last.Pos.X != total {
		t.Errorf("Expected the newest click (x=%d) to survive, got x=%d", total, last.Pos.X)
	}
	if first := gs[0]; first.Pos.X != total-terminalBuffer+1 {
		t.Errorf("Expected the oldest clicks to be evicted, queue starts at x=%d", first.Pos.X)
	}
}

func TestInstallFailurePropagates(t *testing.T) {
	src := &fakeSource{err: ErrHookUnavailable}
	b := NewBridge(src)
	if err := b.Install(); err != ErrHookUnavailable {
		t.Errorf("Expected ErrHookUnavailable, got %v", err)
	}
	if b.Installed() {
		t.Errorf("Expected bridge to stay uninstalled after a source failure")
	}
}
