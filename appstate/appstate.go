// Package appstate holds the process-wide mutable state of the capture tool.
//
// Threading contract: every field of App is owned by the single event-loop
// goroutine. Nothing here is locked. The auto-click worker never touches App;
// the narrow slice of state it shares (progress counter, stop flag) lives in
// the autoclick package behind atomics. Any new code that wants to read App
// from another goroutine is wrong by construction.
package appstate

// Mode is the mutually exclusive operational state of the application.
type Mode int

const (
	ModeIdle Mode = iota
	ModeAreaSelecting
	ModeCapturing
	ModeExportingPDF
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeAreaSelecting:
		return "area-selecting"
	case ModeCapturing:
		return "capturing"
	case ModeExportingPDF:
		return "exporting-pdf"
	}
	return "unknown"
}

// Point is an absolute screen coordinate (origin top-left of the primary display).
type Point struct {
	X int
	Y int
}

// Rect is a normalized screen rectangle: Left <= Right and Top <= Bottom.
type Rect struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// NormalizeRect builds a Rect from two corners in any drag direction.
func NormalizeRect(a, b Point) Rect {
	return Rect{
		Left:   min(a.X, b.X),
		Top:    min(a.Y, b.Y),
		Right:  max(a.X, b.X),
		Bottom: max(a.Y, b.Y),
	}
}

func (r Rect) Width() int  { return r.Right - r.Left }
func (r Rect) Height() int { return r.Bottom - r.Top }

// Empty reports whether the rectangle covers no pixels.
func (r Rect) Empty() bool { return r.Width() <= 0 || r.Height() <= 0 }

// Settings are the user-tunable knobs. They reset to defaults on every start;
// nothing is persisted.
type Settings struct {
	ScalePercent        int // 55..100 step 5
	JPEGQuality         int // 70..100 step 5
	PDFMaxSizeMB        int // 20..100 step 20, or the 500/1024 sentinels
	AutoClickEnabled    bool
	AutoClickIntervalMs int // 1000..5000 step 1000
	AutoClickCount      uint32
}

// DefaultSettings mirrors the documented startup defaults.
func DefaultSettings() Settings {
	return Settings{
		ScalePercent:        65,
		JPEGQuality:         95,
		PDFMaxSizeMB:        DefaultPDFSizeMB,
		AutoClickEnabled:    false,
		AutoClickIntervalMs: 1000,
		AutoClickCount:      0,
	}
}

// ClampScale snaps a scale percentage into 55..100 in steps of 5.
func ClampScale(v int) int { return clampStep(v, 55, 100, 5) }

// ClampQuality snaps a JPEG quality percentage into 70..100 in steps of 5.
func ClampQuality(v int) int { return clampStep(v, 70, 100, 5) }

const (
	// DefaultPDFSizeMB is the startup cap for exported PDFs.
	DefaultPDFSizeMB = 500
	// UnlimitedPDFSizeMB disables size-based splitting of exported PDFs.
	UnlimitedPDFSizeMB = 1024
)

// ClampPDFMaxSize snaps a PDF size cap into 20..100 MB in steps of 20.
// DefaultPDFSizeMB and UnlimitedPDFSizeMB pass through as sentinels.
func ClampPDFMaxSize(v int) int {
	if v == DefaultPDFSizeMB || v == UnlimitedPDFSizeMB {
		return v
	}
	return clampStep(v, 20, 100, 20)
}

// ClampInterval snaps an auto-click interval into 1000..5000 ms in steps of 1000.
func ClampInterval(v int) int { return clampStep(v, 1000, 5000, 1000) }

func clampStep(v, lo, hi, step int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	// round down to the nearest step from lo
	return lo + (v-lo)/step*step
}

// App is the single application-state record. Created once when the event
// loop is built, torn down with it.
type App struct {
	Mode     Mode
	Dragging bool

	DragAnchor Point
	Cursor     Point

	// Selection is the confirmed capture rectangle. It persists across
	// capture sessions until the user re-selects.
	Selection *Rect

	FolderPath  string
	FileCounter int // next file index; advances only on a verified save

	// Processing is the capture-status indicator state (waiting vs busy).
	Processing bool

	Settings Settings
}

// New returns an App in Idle mode. The first capture file is 0001.jpg.
func New(s Settings, folder string) *App {
	return &App{
		Mode:        ModeIdle,
		FolderPath:  folder,
		FileCounter: 1,
		Settings:    s,
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
