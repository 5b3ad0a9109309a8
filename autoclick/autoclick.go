// Package autoclick runs the background worker that repeatedly synthesizes a
// primary click at a fixed screen point while a capture session is active.
//
// Cross-thread protocol: the worker shares exactly two things with the event
// loop, a stop flag it polls and a progress counter it publishes, both
// atomics. Cancellation is cooperative only: the configured interval is slept
// in short increments with the flag checked each step, so Stop never waits
// longer than one increment regardless of the interval. On every exit path
// the worker posts exactly one completion notification before it signals
// that joining is safe.
package autoclick

import (
	"errors"
	"log"
	"sync/atomic"
	"time"

	"github.com/2DPocket/clickcapture/appstate"
)

// MaxClicks is the hard safety ceiling on a single session, independent of
// the user-configured target.
const MaxClicks = 999

// pollInterval bounds cancellation latency.
const pollInterval = 100 * time.Millisecond

// ErrRunning is returned by Start while a session worker is alive.
var ErrRunning = errors.New("autoclick: session already running")

// Injector synthesizes one primary click at an absolute screen point.
type Injector interface {
	Click(p appstate.Point) error
}

// Clicker owns one optional worker goroutine per capture session.
// Start, Stop, Running, SetInterval and SetTarget belong to the event-loop
// goroutine; Progress may be read from anywhere (advisory, may lag by one
// loop iteration).
type Clicker struct {
	injector Injector

	// refresh repaints the capture-status overlay; complete posts the
	// one-shot session-done notification into the event loop's queue.
	refresh  func()
	complete func()
	warn     func(message string)

	interval time.Duration
	poll     time.Duration

	target   atomic.Uint32
	progress atomic.Uint32
	stop     atomic.Bool

	done chan struct{} // non-nil while a worker exists; closed after complete()
}

// New builds a Clicker. refresh, complete and warn may be nil.
func New(inj Injector, refresh, complete func(), warn func(string)) *Clicker {
	c := &Clicker{
		injector: inj,
		refresh:  refresh,
		complete: complete,
		warn:     warn,
		interval: time.Second,
		poll:     pollInterval,
	}
	if c.refresh == nil {
		c.refresh = func() {}
	}
	if c.complete == nil {
		c.complete = func() {}
	}
	if c.warn == nil {
		c.warn = func(string) {}
	}
	return c
}

// SetInterval configures the delay between synthesized clicks.
func (c *Clicker) SetInterval(d time.Duration) { c.interval = d }

// SetTarget configures the click count for the next session.
func (c *Clicker) SetTarget(n uint32) { c.target.Store(n) }

// Target returns the configured click count.
func (c *Clicker) Target() uint32 { return c.target.Load() }

// Progress returns the number of clicks performed in the current session.
func (c *Clicker) Progress() uint32 { return c.progress.Load() }

// Running reports whether a session worker exists. Event-loop goroutine only.
func (c *Clicker) Running() bool { return c.done != nil }

// Start spawns the session worker clicking at pos. It fails if a worker is
// already running.
func (c *Clicker) Start(pos appstate.Point) error {
	if c.done != nil {
		return ErrRunning
	}
	c.progress.Store(0)
	c.stop.Store(false)
	c.done = make(chan struct{})
	go c.run(pos, c.done)
	log.Printf("autoclick: session started (%v interval, %d clicks, at %d,%d)",
		c.interval, c.target.Load(), pos.X, pos.Y)
	return nil
}

// Stop requests cancellation and joins the worker. Idempotent; a no-op when
// no worker is running. The join is bounded: the worker observes the flag
// within one poll increment.
func (c *Clicker) Stop() {
	if c.done == nil {
		return
	}
	c.stop.Store(true)
	<-c.done
	c.done = nil
	log.Printf("autoclick: session stopped (%d clicks performed)", c.progress.Load())
}

// run is the worker loop for one session: refresh the overlay, sleep the
// interval in poll-sized chunks, then click. Cancellation, the target, the
// ceiling, or an injection failure end the session.
func (c *Clicker) run(pos appstate.Point, done chan struct{}) {
	defer func() {
		// Completion is posted before done closes so that a Stop racing
		// with natural completion still joins after the notification is
		// en route. Exactly one notification per session, on every path.
		c.complete()
		close(done)
	}()

	target := c.target.Load()
	progress := c.progress.Load()

	for !c.stop.Load() {
		c.refresh()

		remaining := c.interval
		for remaining > 0 && !c.stop.Load() {
			step := remaining
			if step > c.poll {
				step = c.poll
			}
			time.Sleep(step)
			remaining -= step
		}
		if c.stop.Load() {
			return
		}

		if progress >= MaxClicks || progress >= target {
			// Warn only when the ceiling, not the user's target, is what
			// ended the session.
			if progress >= MaxClicks && progress < target {
				c.warn("The maximum number of automatic clicks (999) was reached. Auto-click has been stopped.")
			}
			return
		}

		progress++
		log.Printf("autoclick: click %d/%d at (%d, %d)", progress, target, pos.X, pos.Y)
		if err := c.injector.Click(pos); err != nil {
			// One injection failure ends the session; never retry forever.
			log.Printf("autoclick: injection failed, ending session: %v", err)
			return
		}
		c.progress.Store(progress)
	}
}
