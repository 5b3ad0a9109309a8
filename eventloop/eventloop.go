// Package eventloop is the single-threaded coordinator of the capture tool.
// One goroutine owns every mode transition and every ApplicationState
// mutation; UI commands, classified hook gestures and the auto-click
// completion signal all arrive over channels and are serialized here.
package eventloop

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/2DPocket/clickcapture/appstate"
	"github.com/2DPocket/clickcapture/autoclick"
	"github.com/2DPocket/clickcapture/capture"
	"github.com/2DPocket/clickcapture/folder"
	"github.com/2DPocket/clickcapture/hook"
	"github.com/2DPocket/clickcapture/overlay"
)

// CommandKind discriminates UI commands.
type CommandKind int

const (
	CmdAreaSelect CommandKind = iota
	CmdCapture
	CmdExportPDF
	CmdClose
	CmdSetScale
	CmdSetQuality
	CmdSetPDFMaxSize
	CmdSetAutoClickEnabled
	CmdSetAutoClickInterval
	CmdSetAutoClickCount
	CmdSetFolder
)

// Command is a discrete UI request. Int, Bool and Str carry the payload for
// the setter kinds.
type Command struct {
	Kind CommandKind
	Int  int
	Bool bool
	Str  string
}

// Shell lowers/raises the main UI around capture sessions so it stays out of
// the captured screen area.
type Shell interface {
	Lower()
	Raise()
}

// Notifier surfaces blocking notices and confirmations to the user.
type Notifier interface {
	Notice(title, message string)
	Warn(title, message string)
	Confirm(title, message string) bool
}

// Capturer is the capture collaborator (pixel grab + encode + save).
type Capturer interface {
	Save(req capture.Request) (string, error)
}

// ExportFunc runs a PDF batch export over dir with the given size cap.
type ExportFunc func(dir string, maxSizeMB int) (files []string, err error)

// Deps wires the loop's collaborators. All fields are required except
// Injector, which defaults to the platform click injector.
type Deps struct {
	App       *appstate.App
	Bridge    *hook.Bridge
	Model     *overlay.Model
	Selection overlay.Overlay
	Status    overlay.Overlay
	Shell     Shell
	Notifier  Notifier
	Capturer  Capturer
	Export    ExportFunc
	Injector  autoclick.Injector
}

// Loop owns the application state and drives the mode state machine.
type Loop struct {
	app      *appstate.App
	bridge   *hook.Bridge
	model    *overlay.Model
	sel      overlay.Overlay
	status   overlay.Overlay
	shell    Shell
	notifier Notifier
	capturer Capturer
	export   ExportFunc

	clicker *autoclick.Clicker

	commands   chan Command
	clickDone  chan struct{}
	exportDone chan error // non-nil only while ExportingPDF
}

// New builds the loop and its auto-click worker plumbing.
func New(d Deps) *Loop {
	if d.Injector == nil {
		d.Injector = autoclick.NewInjector()
	}
	l := &Loop{
		app:       d.App,
		bridge:    d.Bridge,
		model:     d.Model,
		sel:       d.Selection,
		status:    d.Status,
		shell:     d.Shell,
		notifier:  d.Notifier,
		capturer:  d.Capturer,
		export:    d.Export,
		commands:  make(chan Command, 16),
		clickDone: make(chan struct{}, 1),
	}
	l.clicker = autoclick.New(
		d.Injector,
		func() { // per-iteration overlay refresh, runs on the worker goroutine
			l.model.SetProgress(l.clicker.Progress(), l.clicker.Target())
			l.status.Refresh()
		},
		func() { l.clickDone <- struct{}{} }, // one-shot session-complete signal
		func(msg string) { l.notifier.Warn("Auto-click", msg) },
	)
	return l
}

// Post queues a UI command for the loop.
func (l *Loop) Post(cmd Command) { l.commands <- cmd }

// Clicker exposes the worker for advisory progress reads.
func (l *Loop) Clicker() *autoclick.Clicker { return l.clicker }

// Run processes events until ctx is cancelled or a Close command arrives.
func (l *Loop) Run(ctx context.Context) error {
	defer l.shutdown()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-l.commands:
			if closed := l.handleCommand(cmd); closed {
				return nil
			}
		case ev := <-l.bridge.Terminal():
			l.handleHookEvent(ev)
		case ev := <-l.bridge.Events():
			l.handleHookEvent(ev)
		case <-l.clickDone:
			l.handleAutoClickComplete()
		case err := <-l.exportDone:
			l.finishExport(err)
		}
	}
}

func (l *Loop) handleCommand(cmd Command) (closed bool) {
	s := &l.app.Settings
	switch cmd.Kind {
	case CmdAreaSelect:
		l.requestAreaSelect()
	case CmdCapture:
		l.requestCapture()
	case CmdExportPDF:
		l.requestExport()
	case CmdClose:
		return true
	case CmdSetScale:
		s.ScalePercent = appstate.ClampScale(cmd.Int)
	case CmdSetQuality:
		s.JPEGQuality = appstate.ClampQuality(cmd.Int)
	case CmdSetPDFMaxSize:
		s.PDFMaxSizeMB = appstate.ClampPDFMaxSize(cmd.Int)
	case CmdSetAutoClickEnabled:
		s.AutoClickEnabled = cmd.Bool
	case CmdSetAutoClickInterval:
		s.AutoClickIntervalMs = appstate.ClampInterval(cmd.Int)
	case CmdSetAutoClickCount:
		if cmd.Int >= 0 {
			s.AutoClickCount = uint32(cmd.Int)
		}
	case CmdSetFolder:
		if err := folder.Validate(cmd.Str); err != nil {
			l.notifier.Warn("Output folder",
				fmt.Sprintf("Cannot use %s: %v", cmd.Str, err))
			return false
		}
		l.app.FolderPath = cmd.Str
		log.Printf("Output folder changed: %s", cmd.Str)
	}
	return false
}

// ---- AreaSelecting ----

func (l *Loop) requestAreaSelect() {
	switch l.app.Mode {
	case appstate.ModeIdle:
	case appstate.ModeAreaSelecting:
		l.notifier.Notice("Area selection", "Already in area-select mode.")
		return
	default:
		l.notifier.Notice("Area selection",
			fmt.Sprintf("Cannot select an area while %s.", l.app.Mode))
		return
	}

	l.app.Mode = appstate.ModeAreaSelecting
	l.bridge.SetMode(l.app.Mode)
	if err := l.bridge.Install(); err != nil {
		l.rollbackToIdle()
		l.notifier.Warn("Area selection", "Could not install the input hooks.")
		log.Printf("area-select: hook install failed: %v", err)
		return
	}
	if err := l.sel.Show(); err != nil {
		// Never leave hooks installed with no visible feedback.
		l.bridge.Uninstall()
		l.rollbackToIdle()
		l.notifier.Warn("Area selection", "Could not show the selection overlay.")
		log.Printf("area-select: overlay show failed: %v", err)
		return
	}
	l.model.ClearDrag()
	l.shell.Lower()
	log.Printf("Area-select mode started (Escape cancels)")
}

func (l *Loop) exitAreaSelect() {
	l.app.Mode = appstate.ModeIdle
	l.app.Dragging = false
	l.model.ClearDrag()
	l.bridge.SetMode(l.app.Mode)
	l.bridge.Uninstall()
	l.sel.Hide()
	l.shell.Raise()
	log.Printf("Area-select mode ended")
}

// ---- Capturing ----

func (l *Loop) requestCapture() {
	s := l.app.Settings
	switch l.app.Mode {
	case appstate.ModeIdle:
	case appstate.ModeCapturing:
		l.notifier.Notice("Capture", "Already in capture mode.")
		return
	default:
		l.notifier.Notice("Capture",
			fmt.Sprintf("Cannot start capturing while %s.", l.app.Mode))
		return
	}
	if l.app.Selection == nil {
		l.notifier.Warn("Capture - no area selected",
			"Select an area first.\n\n"+
				"Steps:\n"+
				"1. Choose Select Area\n"+
				"2. Drag across the screen region\n"+
				"3. Choose Start Capture")
		return
	}
	if s.AutoClickEnabled && s.AutoClickCount == 0 {
		l.notifier.Warn("Auto-click",
			"The click count is 0 or unset. Configure a count of 1 or more.")
		return
	}
	if s.AutoClickEnabled {
		ok := l.notifier.Confirm("Start auto-click capture?",
			"Capture will start in auto-click mode.\n\n"+
				"How to start: click once on the spot to repeat (for example a Next button).\n"+
				"The same spot is then clicked and captured at the configured interval and count.\n\n"+
				"Press Escape at any time to stop.")
		if !ok {
			log.Printf("capture: auto-click mode declined")
			return
		}
	}

	l.app.Mode = appstate.ModeCapturing
	l.bridge.SetMode(l.app.Mode)
	l.bridge.SetAutoClickArmed(s.AutoClickEnabled)
	if err := l.bridge.Install(); err != nil {
		l.rollbackToIdle()
		l.notifier.Warn("Capture", "Could not install the input hooks.")
		log.Printf("capture: hook install failed: %v", err)
		return
	}
	l.model.SetProcessing(false)
	l.model.SetProgress(0, s.AutoClickCount)
	if err := l.status.Show(); err != nil {
		l.bridge.Uninstall()
		l.rollbackToIdle()
		l.notifier.Warn("Capture", "Could not show the capture overlay.")
		log.Printf("capture: overlay show failed: %v", err)
		return
	}
	l.shell.Lower()
	log.Printf("Capture mode started (Escape ends the session)")
}

func (l *Loop) exitCapture() {
	l.clicker.Stop()
	l.app.Mode = appstate.ModeIdle
	l.app.Processing = false
	l.bridge.SetMode(l.app.Mode)
	l.bridge.SetAutoClickArmed(false)
	l.bridge.Uninstall()
	l.status.Hide()
	l.shell.Raise()
	log.Printf("Capture mode ended")
}

// captureOnce performs one synchronous capture and advances the counter only
// on a verified save. Save failures are logged, never modal: a box would
// steal focus from whatever the user is capturing.
func (l *Loop) captureOnce() {
	sel := l.app.Selection
	if sel == nil {
		return
	}
	l.app.Processing = true
	l.model.SetProcessing(true)
	l.status.Refresh()

	s := l.app.Settings
	_, err := l.capturer.Save(capture.Request{
		Selection: *sel,
		Dir:       l.app.FolderPath,
		Index:     l.app.FileCounter,
		Scale:     s.ScalePercent,
		Quality:   s.JPEGQuality,
	})
	if err != nil {
		log.Printf("capture: save failed (counter unchanged): %v", err)
	} else {
		l.app.FileCounter++
	}

	l.app.Processing = false
	l.model.SetProcessing(false)
	l.model.SetProgress(l.clicker.Progress(), l.clicker.Target())
	l.status.Refresh()
}

// ---- hook gestures ----

func (l *Loop) handleHookEvent(ev hook.Event) {
	switch ev.Kind {
	case hook.PointerMove:
		l.app.Cursor = ev.Pos
		if l.app.Mode == appstate.ModeCapturing {
			l.status.Reposition(ev.Pos)
		}

	case hook.DragStart:
		if l.app.Mode != appstate.ModeAreaSelecting {
			return
		}
		l.app.Dragging = true
		l.app.DragAnchor = ev.Anchor
		l.app.Cursor = ev.Pos
		l.model.SetDrag(appstate.NormalizeRect(ev.Anchor, ev.Pos))
		l.sel.Refresh()

	case hook.DragUpdate:
		if !l.app.Dragging {
			return
		}
		l.app.Cursor = ev.Pos
		l.model.SetDrag(appstate.NormalizeRect(ev.Anchor, ev.Pos))
		l.sel.Refresh()

	case hook.DragEnd:
		if l.app.Mode != appstate.ModeAreaSelecting || !l.app.Dragging {
			return
		}
		r := appstate.NormalizeRect(ev.Anchor, ev.Pos)
		if r.Empty() {
			// A click with no movement. Keep any earlier selection.
			log.Printf("No valid region selected")
			l.exitAreaSelect()
			return
		}
		l.app.Selection = &r
		log.Printf("Area selected: (%d, %d) - (%d, %d)", r.Left, r.Top, r.Right, r.Bottom)
		l.exitAreaSelect()

	case hook.PrimaryClick:
		if l.app.Mode != appstate.ModeCapturing {
			return
		}
		s := l.app.Settings
		if s.AutoClickEnabled && !l.clicker.Running() {
			l.clicker.SetInterval(time.Duration(s.AutoClickIntervalMs) * time.Millisecond)
			l.clicker.SetTarget(s.AutoClickCount)
			if err := l.clicker.Start(ev.Pos); err != nil {
				log.Printf("capture: auto-click start failed: %v", err)
				return
			}
			// Subsequent clicks (including synthesized ones) capture.
			l.bridge.SetAutoClickArmed(false)
			return
		}
		l.captureOnce()

	case hook.CancelKey:
		switch l.app.Mode {
		case appstate.ModeAreaSelecting:
			// Discard the drag; an earlier confirmed selection persists.
			l.exitAreaSelect()
		case appstate.ModeCapturing:
			l.exitCapture()
		}
	}
}

// ---- auto-click completion ----

func (l *Loop) handleAutoClickComplete() {
	// The worker has posted its one-shot notification; joining is bounded.
	l.clicker.Stop()
	if l.app.Mode == appstate.ModeCapturing {
		l.exitCapture()
	}
	log.Printf("Auto-click session complete (%d clicks)", l.clicker.Progress())
}

// ---- ExportingPDF ----

func (l *Loop) requestExport() {
	switch l.app.Mode {
	case appstate.ModeIdle:
	case appstate.ModeExportingPDF:
		l.notifier.Notice("PDF export", "An export is already in progress.")
		return
	default:
		l.notifier.Notice("PDF export",
			fmt.Sprintf("Cannot export while %s.", l.app.Mode))
		return
	}

	l.app.Mode = appstate.ModeExportingPDF
	dir := l.app.FolderPath
	maxMB := l.app.Settings.PDFMaxSizeMB
	done := make(chan error, 1)
	l.exportDone = done
	log.Printf("PDF export started: %s (cap %d MB)", dir, maxMB)

	go func() {
		files, err := l.export(dir, maxMB)
		if err == nil {
			log.Printf("PDF export finished: %d file(s)", len(files))
		}
		done <- err
	}()
}

func (l *Loop) finishExport(err error) {
	l.exportDone = nil
	l.app.Mode = appstate.ModeIdle
	if err != nil {
		l.notifier.Warn("PDF export", fmt.Sprintf("Export failed: %v", err))
		return
	}
	l.notifier.Notice("PDF export", "Export complete.")
}

// ---- teardown ----

func (l *Loop) rollbackToIdle() {
	l.app.Mode = appstate.ModeIdle
	l.bridge.SetMode(l.app.Mode)
	l.bridge.SetAutoClickArmed(false)
}

func (l *Loop) shutdown() {
	switch l.app.Mode {
	case appstate.ModeCapturing:
		l.exitCapture()
	case appstate.ModeAreaSelecting:
		l.exitAreaSelect()
	}
	l.sel.Close()
	l.status.Close()
	log.Printf("Event loop shut down")
}
