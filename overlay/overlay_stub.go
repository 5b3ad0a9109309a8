//go:build !windows

package overlay

import (
	"log"
	"sync/atomic"

	"github.com/2DPocket/clickcapture/appstate"
)

// headless overlays for platforms without the layered-window implementation.
// They track lifecycle so the coordination core behaves identically.

type stubOverlay struct {
	name     string
	model    *Model
	visible  atomic.Bool
	closed   atomic.Bool
	repaints atomic.Uint64
}

func newSelectionOverlay(model *Model) Overlay {
	return &stubOverlay{name: "selection", model: model}
}

func newStatusOverlay(model *Model) Overlay {
	return &stubOverlay{name: "status", model: model}
}

func (o *stubOverlay) Show() error {
	o.visible.Store(true)
	log.Printf("overlay[%s]: show", o.name)
	return nil
}

func (o *stubOverlay) Hide() {
	o.visible.Store(false)
	log.Printf("overlay[%s]: hide", o.name)
}

func (o *stubOverlay) Refresh() {
	o.repaints.Add(1)
}

func (o *stubOverlay) Reposition(p appstate.Point) {}

func (o *stubOverlay) Close() {
	if o.closed.CompareAndSwap(false, true) {
		o.visible.Store(false)
		log.Printf("overlay[%s]: closed", o.name)
	}
}
