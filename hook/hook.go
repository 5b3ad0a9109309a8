// Package hook installs the desktop-wide pointer/keyboard interception and
// turns raw events into the handful of gestures the event loop understands.
//
// The raw callback runs on the platform hook thread with a hard latency
// budget: it must classify, decide swallow-vs-forward, and get out in well
// under a millisecond. It therefore never blocks and never waits on the rest
// of the application. Drag tracking lives inside the bridge so the swallow
// decision needs no round trip to the event loop; the loop only publishes
// the current mode and the auto-click arming bit through atomics.
package hook

import (
	"errors"
	"log"
	"sync/atomic"

	"github.com/2DPocket/clickcapture/appstate"
)

// RawKind is a platform-neutral input event category.
type RawKind int

const (
	RawMove RawKind = iota
	RawPrimaryDown
	RawPrimaryUp
	RawCancelKey // cancel key pressed (Escape)
)

// RawEvent is what a Source reports from its interception callback.
type RawEvent struct {
	Kind RawKind
	Pos  appstate.Point
}

// Kind classifies a bridge event for the event loop.
type Kind int

const (
	PointerMove Kind = iota
	DragStart
	DragUpdate
	DragEnd
	PrimaryClick
	CancelKey
)

// Event is a classified gesture. Anchor is meaningful for drag events only.
type Event struct {
	Kind   Kind
	Anchor appstate.Point
	Pos    appstate.Point
}

// Source is a platform input interceptor. The callback's return value asks
// the source to suppress propagation of the event to other applications;
// sources that cannot suppress ignore it.
type Source interface {
	Install(cb func(RawEvent) bool) error
	Uninstall()
}

// ErrAlreadyInstalled is returned by Install when hooks are already active.
var ErrAlreadyInstalled = errors.New("hook: already installed")

// ErrHookUnavailable means the platform interception facility refused to start.
var ErrHookUnavailable = errors.New("hook: platform interception unavailable")

// eventBuffer sizes the advisory stream (moves, drag updates); those drop
// when it fills. terminalBuffer sizes the gesture queue; gestures that change
// mode must not be lost even while the loop is held up by a modal notice, so
// a full queue evicts its oldest entry instead of refusing the newest.
const (
	eventBuffer    = 64
	terminalBuffer = 16
)

// Bridge owns the interception session and the drag state machine fragment
// that must be decided synchronously inside the callback.
type Bridge struct {
	src       Source
	installed bool // loop goroutine only

	// published by the event loop, read by the callback
	mode  atomic.Int32
	armed atomic.Bool // auto-click enabled and not yet running

	// callback-local; the callback is never concurrent with itself
	dragging bool
	anchor   appstate.Point

	events   chan Event
	terminal chan Event
	dropped  atomic.Uint64
}

// NewBridge wraps a Source. A nil src selects the platform default.
func NewBridge(src Source) *Bridge {
	if src == nil {
		src = newPlatformSource()
	}
	return &Bridge{
		src:      src,
		events:   make(chan Event, eventBuffer),
		terminal: make(chan Event, terminalBuffer),
	}
}

// Events is the advisory display stream: pointer moves and drag updates.
// A dropped entry costs at most one stale repaint.
func (b *Bridge) Events() <-chan Event { return b.events }

// Terminal is the mode-changing gesture stream: drag start/end, primary
// clicks and the cancel key. Entries are never silently lost; see emitTerminal.
func (b *Bridge) Terminal() <-chan Event { return b.terminal }

// SetMode publishes the loop's current mode to the callback.
func (b *Bridge) SetMode(m appstate.Mode) { b.mode.Store(int32(m)) }

// SetAutoClickArmed publishes whether the next primary click during capture
// should start the auto-click worker (and be swallowed) instead of capturing.
func (b *Bridge) SetAutoClickArmed(armed bool) { b.armed.Store(armed) }

// Install activates the platform hooks. Loop goroutine only.
func (b *Bridge) Install() error {
	if b.installed {
		return ErrAlreadyInstalled
	}
	b.dragging = false
	if err := b.src.Install(b.handle); err != nil {
		return err
	}
	b.installed = true
	log.Printf("Input hooks installed")
	return nil
}

// Uninstall removes the platform hooks. Idempotent. Loop goroutine only.
func (b *Bridge) Uninstall() {
	if !b.installed {
		return
	}
	b.src.Uninstall()
	b.installed = false
	b.dragging = false
	log.Printf("Input hooks removed")
}

// Installed reports whether hooks are active. Loop goroutine only.
func (b *Bridge) Installed() bool { return b.installed }

// handle is the interception callback. It returns whether the raw event must
// be swallowed. Errors and panics stop here: the worst allowed outcome is
// "forward the event unmodified".
func (b *Bridge) handle(ev RawEvent) (swallow bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("hook: panic in callback (event forwarded): %v", r)
			swallow = false
		}
	}()

	mode := appstate.Mode(b.mode.Load())

	switch ev.Kind {
	case RawMove:
		if b.dragging {
			b.emitAdvisory(Event{Kind: DragUpdate, Anchor: b.anchor, Pos: ev.Pos})
		} else {
			b.emitAdvisory(Event{Kind: PointerMove, Pos: ev.Pos})
		}
		return false

	case RawPrimaryDown:
		if mode == appstate.ModeAreaSelecting {
			// Drag clarification clicks never reach other applications.
			b.anchor = ev.Pos
			b.dragging = true
			b.emitTerminal(Event{Kind: DragStart, Anchor: ev.Pos, Pos: ev.Pos})
			return true
		}
		return false

	case RawPrimaryUp:
		if mode == appstate.ModeAreaSelecting && b.dragging {
			b.dragging = false
			b.emitTerminal(Event{Kind: DragEnd, Anchor: b.anchor, Pos: ev.Pos})
			return false
		}
		if mode == appstate.ModeCapturing {
			b.emitTerminal(Event{Kind: PrimaryClick, Pos: ev.Pos})
			// Swallow only the click that arms the auto-click worker; an
			// ordinary capture click also reaches the application underneath.
			return b.armed.Load()
		}
		return false

	case RawCancelKey:
		if mode == appstate.ModeAreaSelecting || mode == appstate.ModeCapturing {
			b.dragging = false
			b.emitTerminal(Event{Kind: CancelKey, Pos: ev.Pos})
			return true
		}
		return false
	}
	return false
}

// emitAdvisory hands a display event to the loop without ever blocking the
// callback. On a full buffer the event is dropped and counted.
func (b *Bridge) emitAdvisory(ev Event) {
	select {
	case b.events <- ev:
	default:
		b.dropped.Add(1)
	}
}

// emitTerminal queues a mode-changing gesture. When the queue is full the
// oldest entry is evicted so the newest gesture always lands; the callback
// is the only producer, so the retry cannot spin.
func (b *Bridge) emitTerminal(ev Event) {
	for {
		select {
		case b.terminal <- ev:
			return
		default:
		}
		select {
		case old := <-b.terminal:
			log.Printf("hook: gesture queue full, evicted kind=%d", old.Kind)
		default:
		}
	}
}
