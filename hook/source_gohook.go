//go:build !windows

package hook

import (
	"log"
	"sync"

	gohook "github.com/robotn/gohook"

	"github.com/2DPocket/clickcapture/appstate"
)

// gohookSource observes global input through gohook. This backend cannot
// suppress propagation, so swallow decisions from the bridge are logged and
// otherwise ignored; everything else behaves the same as on Windows.
type gohookSource struct {
	mu   sync.Mutex
	stop chan struct{}
}

func newPlatformSource() Source { return &gohookSource{} }

const escRawcode = 65307 // X11 keysym for Escape

func (s *gohookSource) Install(cb func(RawEvent) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return ErrAlreadyInstalled
	}
	stop := make(chan struct{})
	s.stop = stop

	evChan := gohook.Start()
	if evChan == nil {
		s.stop = nil
		return ErrHookUnavailable
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in gohook goroutine: %v", r)
			}
		}()
		for {
			select {
			case <-stop:
				return
			case ev, ok := <-evChan:
				if !ok {
					return
				}
				raw, dispatch := translate(ev)
				if !dispatch {
					continue
				}
				if cb(raw) {
					// Suppression is unsupported on this backend.
					log.Printf("hook: swallow requested but unsupported (kind=%d)", raw.Kind)
				}
			}
		}
	}()
	return nil
}

func (s *gohookSource) Uninstall() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop == nil {
		return
	}
	close(s.stop)
	s.stop = nil
	gohook.End()
}

func translate(ev gohook.Event) (RawEvent, bool) {
	pos := appstate.Point{X: int(ev.X), Y: int(ev.Y)}
	switch ev.Kind {
	case gohook.MouseMove, gohook.MouseDrag:
		return RawEvent{Kind: RawMove, Pos: pos}, true
	case gohook.MouseDown:
		if ev.Button == 1 {
			return RawEvent{Kind: RawPrimaryDown, Pos: pos}, true
		}
	case gohook.MouseUp:
		if ev.Button == 1 {
			return RawEvent{Kind: RawPrimaryUp, Pos: pos}, true
		}
	case gohook.KeyDown:
		if ev.Rawcode == escRawcode || ev.Keychar == 27 {
			return RawEvent{Kind: RawCancelKey, Pos: pos}, true
		}
	}
	return RawEvent{}, false
}
