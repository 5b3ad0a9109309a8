package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/2DPocket/clickcapture/appstate"
	"github.com/2DPocket/clickcapture/config"
	"github.com/2DPocket/clickcapture/eventloop"
	"github.com/2DPocket/clickcapture/folder"
	"github.com/2DPocket/clickcapture/hook"
	"github.com/2DPocket/clickcapture/logutil"
	"github.com/2DPocket/clickcapture/notify"
	"github.com/2DPocket/clickcapture/overlay"
	"github.com/2DPocket/clickcapture/pdfexport"
	"github.com/2DPocket/clickcapture/tray"

	"github.com/2DPocket/clickcapture/capture"
)

// enableDPIAwareness requests per-monitor DPI awareness on Windows so overlay
// coordinates match physical hook coordinates on scaled displays.
func enableDPIAwareness() {
	if runtime.GOOS != "windows" {
		return
	}
	shcore := syscall.NewLazyDLL("Shcore.dll")
	setProcessDpiAwareness := shcore.NewProc("SetProcessDpiAwareness")
	const processPerMonitorDPIAware = 2
	if err := setProcessDpiAwareness.Find(); err == nil {
		_, _, _ = setProcessDpiAwareness.Call(uintptr(processPerMonitorDPIAware))
		return
	}
	user32 := syscall.NewLazyDLL("user32.dll")
	setProcessDPIAware := user32.NewProc("SetProcessDPIAware")
	if err := setProcessDPIAware.Find(); err == nil {
		_, _, _ = setProcessDPIAware.Call()
	}
}

type modalNotifier struct{}

func (modalNotifier) Notice(title, message string)       { notify.Notice(title, message) }
func (modalNotifier) Warn(title, message string)         { notify.Warn(title, message) }
func (modalNotifier) Confirm(title, message string) bool { return notify.Confirm(title, message) }

func main() {
	// DPI awareness must be set before any window or metric query.
	enableDPIAwareness()

	// Keep the main goroutine on its own OS thread; the systray loop owns it.
	runtime.LockOSThread()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logutil.Setup(cfg.EnableFileLogging)

	outputDir := cfg.OutputDir
	if outputDir != "" {
		if err := folder.Validate(outputDir); err != nil {
			log.Printf("OUTPUT_DIR %q unusable (%v), falling back to auto-discovery", outputDir, err)
			outputDir = ""
		}
	}
	if outputDir == "" {
		outputDir = folder.DiscoverDefault()
	}
	log.Printf("ClickCapture starting, output folder: %s", outputDir)

	app := appstate.New(cfg.Settings, outputDir)
	model := overlay.NewModel()

	loop := eventloop.New(eventloop.Deps{
		App:       app,
		Bridge:    hook.NewBridge(nil),
		Model:     model,
		Selection: overlay.NewSelection(model),
		Status:    overlay.NewStatus(model),
		Shell:     tray.Shell{},
		Notifier:  modalNotifier{},
		Capturer:  capture.NewSaver(),
		Export: func(dir string, maxSizeMB int) ([]string, error) {
			e := &pdfexport.Exporter{Dir: dir, MaxSizeMB: maxSizeMB}
			return e.Export()
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
		tray.Quit()
	}()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
			log.Printf("event loop stopped: %v", err)
		}
		tray.Quit()
	}()

	// Blocks until Quit. Menu clicks post commands into the loop.
	tray.Run(loop.Post, cfg.Settings, func() { cancel() })
	<-loopDone
	log.Printf("ClickCapture exited")
}
