// Package tray is the command surface of the application: a system tray
// menu whose items post commands to the event loop. The tray goroutines
// never touch application state directly.
package tray

import (
	"fmt"
	"log"

	"github.com/getlantern/systray"

	"github.com/2DPocket/clickcapture/appstate"
	"github.com/2DPocket/clickcapture/eventloop"
)

const tooltipIdle = "ClickCapture - select an area, then capture"
const tooltipBusy = "ClickCapture - capturing (Escape to stop)"

var scaleChoices = []int{55, 65, 75, 85, 100}
var qualityChoices = []int{70, 80, 90, 95, 100}
var pdfSizeChoices = []int{20, 40, 60, 80, 100}
var intervalChoices = []int{1000, 2000, 3000, 4000, 5000}
var countChoices = []int{10, 50, 100, 250, 500, 999}

// Shell lowers/raises the application's shell presence around capture
// sessions: the tooltip flips to busy, and on Windows an attached console
// window is minimized out of the captured area and restored afterwards.
type Shell struct{}

func (Shell) Lower() {
	systray.SetTooltip(tooltipBusy)
	lowerConsole()
}

func (Shell) Raise() {
	systray.SetTooltip(tooltipIdle)
	raiseConsole()
}

// Run blocks on the systray main loop. post delivers menu choices to the
// event loop; initial seeds the checkbox states; onExit runs when the tray
// shuts down.
func Run(post func(eventloop.Command), initial appstate.Settings, onExit func()) {
	systray.Run(func() { onReady(post, initial) }, onExit)
}

// Quit asks the systray loop to exit.
func Quit() { systray.Quit() }

func onReady(post func(eventloop.Command), initial appstate.Settings) {
	if icon := Icon(); len(icon) > 0 {
		systray.SetIcon(icon)
	}
	systray.SetTitle("ClickCapture")
	systray.SetTooltip(tooltipIdle)

	mSelect := systray.AddMenuItem("Select Area", "Drag to choose the capture region")
	mCapture := systray.AddMenuItem("Start Capture", "Click anywhere in the region to save a shot")
	mExport := systray.AddMenuItem("Export PDF", "Bundle the saved captures into PDF files")
	systray.AddSeparator()

	mScale := systray.AddMenuItem("Scale", "Output scale percentage")
	scaleItems := radioGroup(mScale, scaleChoices, initial.ScalePercent, "%d%%")

	mQuality := systray.AddMenuItem("JPEG Quality", "JPEG encoder quality")
	qualityItems := radioGroup(mQuality, qualityChoices, initial.JPEGQuality, "%d")

	mPDFSize := systray.AddMenuItem("PDF Max Size", "Split exported PDFs at this size")
	pdfItems := radioGroup(mPDFSize, pdfSizeChoices, initial.PDFMaxSizeMB, "%d MB")
	mPDFDefault := mPDFSize.AddSubMenuItemCheckbox("500 MB (default)", "Startup size cap",
		initial.PDFMaxSizeMB == appstate.DefaultPDFSizeMB)
	mPDFUnlimited := mPDFSize.AddSubMenuItemCheckbox("Unlimited", "No size-based splitting",
		initial.PDFMaxSizeMB == appstate.UnlimitedPDFSizeMB)

	systray.AddSeparator()
	mAutoClick := systray.AddMenuItemCheckbox("Auto-click", "Click and capture automatically",
		initial.AutoClickEnabled)
	mInterval := systray.AddMenuItem("Auto-click Interval", "Delay between automatic clicks")
	intervalItems := radioGroup(mInterval, intervalChoices, initial.AutoClickIntervalMs, "%d ms")
	mCount := systray.AddMenuItem("Auto-click Count", "Number of automatic clicks")
	countItems := radioGroup(mCount, countChoices, int(initial.AutoClickCount), "%d")

	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Exit the application")

	go func() {
		for {
			select {
			case <-mSelect.ClickedCh:
				post(eventloop.Command{Kind: eventloop.CmdAreaSelect})
			case <-mCapture.ClickedCh:
				post(eventloop.Command{Kind: eventloop.CmdCapture})
			case <-mExport.ClickedCh:
				post(eventloop.Command{Kind: eventloop.CmdExportPDF})
			case <-mAutoClick.ClickedCh:
				enabled := !mAutoClick.Checked()
				if enabled {
					mAutoClick.Check()
				} else {
					mAutoClick.Uncheck()
				}
				post(eventloop.Command{Kind: eventloop.CmdSetAutoClickEnabled, Bool: enabled})
			case <-mQuit.ClickedCh:
				log.Printf("Quit selected from tray menu")
				post(eventloop.Command{Kind: eventloop.CmdClose})
				systray.Quit()
				return
			}
		}
	}()

	watchRadio(scaleItems, scaleChoices, func(v int) {
		post(eventloop.Command{Kind: eventloop.CmdSetScale, Int: v})
	})
	watchRadio(qualityItems, qualityChoices, func(v int) {
		post(eventloop.Command{Kind: eventloop.CmdSetQuality, Int: v})
	})
	watchRadio(intervalItems, intervalChoices, func(v int) {
		post(eventloop.Command{Kind: eventloop.CmdSetAutoClickInterval, Int: v})
	})
	watchRadio(countItems, countChoices, func(v int) {
		post(eventloop.Command{Kind: eventloop.CmdSetAutoClickCount, Int: v})
	})
	watchRadio(pdfItems, pdfSizeChoices, func(v int) {
		mPDFDefault.Uncheck()
		mPDFUnlimited.Uncheck()
		post(eventloop.Command{Kind: eventloop.CmdSetPDFMaxSize, Int: v})
	})
	watchSentinel := func(item *systray.MenuItem, other *systray.MenuItem, sizeMB int) {
		go func() {
			for range item.ClickedCh {
				checkOnly(pdfItems, -1)
				other.Uncheck()
				item.Check()
				post(eventloop.Command{Kind: eventloop.CmdSetPDFMaxSize, Int: sizeMB})
			}
		}()
	}
	watchSentinel(mPDFDefault, mPDFUnlimited, appstate.DefaultPDFSizeMB)
	watchSentinel(mPDFUnlimited, mPDFDefault, appstate.UnlimitedPDFSizeMB)
}

func radioGroup(parent *systray.MenuItem, choices []int, current int, format string) []*systray.MenuItem {
	items := make([]*systray.MenuItem, len(choices))
	for i, v := range choices {
		items[i] = parent.AddSubMenuItemCheckbox(fmt.Sprintf(format, v), "", v == current)
	}
	return items
}

// watchRadio runs one goroutine per group: a click checks the chosen item,
// unchecks its siblings and posts the new value.
func watchRadio(items []*systray.MenuItem, choices []int, apply func(int)) {
	for i := range items {
		i := i
		go func() {
			for range items[i].ClickedCh {
				checkOnly(items, i)
				apply(choices[i])
			}
		}()
	}
}

func checkOnly(items []*systray.MenuItem, chosen int) {
	for j, it := range items {
		if j == chosen {
			it.Check()
		} else {
			it.Uncheck()
		}
	}
}
