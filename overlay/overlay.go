// Package overlay provides the two always-on-top transparent feedback
// windows: the selection overlay that traces the drag rectangle, and the
// capture-status overlay that follows the cursor showing waiting/processing
// state and auto-click progress.
//
// The core never draws. It mutates the shared Model, then calls Refresh;
// painting happens on the overlay's own thread from a Model snapshot.
// Overlays are created lazily on first Show, hidden (not destroyed) between
// sessions, and destroyed exactly once by Close at shutdown.
package overlay

import (
	"sync"

	"github.com/2DPocket/clickcapture/appstate"
)

// Overlay is the surface the core drives after relevant state changes.
// Refresh and Reposition are safe to call from any goroutine; Show, Hide and
// Close belong to the event-loop goroutine.
type Overlay interface {
	Show() error
	Hide()
	Refresh()
	Reposition(p appstate.Point)
	Close()
}

// Model is the advisory display state shared between the event loop (writer)
// and the paint thread (reader). This is presentation data only; a stale read
// costs at most one repaint, never correctness.
type Model struct {
	mu sync.Mutex

	dragRect appstate.Rect
	hasDrag  bool

	processing bool
	progress   uint32
	target     uint32
}

func NewModel() *Model { return &Model{} }

// SetDrag records the live drag rectangle for the selection overlay.
func (m *Model) SetDrag(r appstate.Rect) {
	m.mu.Lock()
	m.dragRect = r
	m.hasDrag = true
	m.mu.Unlock()
}

// ClearDrag removes the drag rectangle.
func (m *Model) ClearDrag() {
	m.mu.Lock()
	m.hasDrag = false
	m.mu.Unlock()
}

// Drag returns the current drag rectangle, if any.
func (m *Model) Drag() (appstate.Rect, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dragRect, m.hasDrag
}

// SetProcessing flips the waiting/processing indicator.
func (m *Model) SetProcessing(busy bool) {
	m.mu.Lock()
	m.processing = busy
	m.mu.Unlock()
}

// SetProgress records auto-click progress for the status overlay.
func (m *Model) SetProgress(done, target uint32) {
	m.mu.Lock()
	m.progress = done
	m.target = target
	m.mu.Unlock()
}

// Status returns the processing flag and auto-click progress.
func (m *Model) Status() (processing bool, progress, target uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.processing, m.progress, m.target
}

// NewSelection returns the platform selection overlay bound to model.
func NewSelection(model *Model) Overlay { return newSelectionOverlay(model) }

// NewStatus returns the platform capture-status overlay bound to model.
func NewStatus(model *Model) Overlay { return newStatusOverlay(model) }
