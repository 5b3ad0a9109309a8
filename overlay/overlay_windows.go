//go:build windows

package overlay

import (
	"fmt"
	"log"
	"runtime"
	"sync"
	"syscall"
	"time"
	"unsafe"

	"github.com/lxn/win"

	"github.com/2DPocket/clickcapture/appstate"
)

var (
	user32DLL                      = syscall.NewLazyDLL("user32.dll")
	gdi32DLL                       = syscall.NewLazyDLL("gdi32.dll")
	procSetLayeredWindowAttributes = user32DLL.NewProc("SetLayeredWindowAttributes")
	procCreatePen                  = gdi32DLL.NewProc("CreatePen")
	procRectangle                  = gdi32DLL.NewProc("Rectangle")
	procCreateSolidBrush           = gdi32DLL.NewProc("CreateSolidBrush")
	procFillRect                   = user32DLL.NewProc("FillRect")
)

func createSolidBrush(color uint32) win.HBRUSH {
	ret, _, _ := procCreateSolidBrush.Call(uintptr(color))
	return win.HBRUSH(ret)
}

func fillRect(hdc win.HDC, rc *win.RECT, brush win.HBRUSH) {
	procFillRect.Call(uintptr(hdc), uintptr(unsafe.Pointer(rc)), uintptr(brush))
}

const (
	lwaColorKey = 0x00000001
	lwaAlpha    = 0x00000002

	psSolid = 0

	// colorKey is painted wherever the selection overlay must be fully
	// transparent. Pure black is safe: the frame color never uses it.
	colorKey = 0x00000000

	frameColor  = 0x000000FF // COLORREF 0x00BBGGRR: red
	statusAlpha = 200

	statusW = 170
	statusH = 44
	// status overlay trails the cursor by a small offset
	statusDX = 18
	statusDY = 18
)

// winOverlay is a layered, topmost, click-through window with its own
// message-pump thread. Drawing resources are created once at window creation
// and reused on every repaint.
type winOverlay struct {
	model *Model
	paint func(o *winOverlay, hdc win.HDC, w, h int32)

	// window geometry strategy
	fullscreen bool

	mu      sync.Mutex
	hwnd    win.HWND
	created bool
	done    chan struct{}

	pen   win.HPEN
	brush win.HBRUSH
	font  win.HFONT
}

func newSelectionOverlay(model *Model) Overlay {
	return &winOverlay{model: model, paint: paintSelection, fullscreen: true}
}

func newStatusOverlay(model *Model) Overlay {
	return &winOverlay{model: model, paint: paintStatus}
}

func (o *winOverlay) Show() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.created {
		if err := o.create(); err != nil {
			return err
		}
	}
	win.ShowWindow(o.hwnd, win.SW_SHOWNOACTIVATE)
	win.InvalidateRect(o.hwnd, nil, true)
	return nil
}

func (o *winOverlay) Hide() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.created {
		win.ShowWindow(o.hwnd, win.SW_HIDE)
	}
}

func (o *winOverlay) Refresh() {
	o.mu.Lock()
	hwnd := o.hwnd
	o.mu.Unlock()
	if hwnd != 0 {
		win.InvalidateRect(hwnd, nil, true)
	}
}

func (o *winOverlay) Reposition(p appstate.Point) {
	o.mu.Lock()
	hwnd := o.hwnd
	o.mu.Unlock()
	if hwnd != 0 {
		win.SetWindowPos(hwnd, win.HWND_TOPMOST,
			int32(p.X+statusDX), int32(p.Y+statusDY), 0, 0,
			win.SWP_NOSIZE|win.SWP_NOACTIVATE)
	}
}

func (o *winOverlay) Close() {
	o.mu.Lock()
	if !o.created {
		o.mu.Unlock()
		return
	}
	hwnd := o.hwnd
	done := o.done
	o.created = false
	o.hwnd = 0
	o.mu.Unlock()

	win.PostMessage(hwnd, win.WM_CLOSE, 0, 0)
	<-done
}

// create builds the window on its own locked OS thread and pumps messages
// there until the window dies. Called with o.mu held.
func (o *winOverlay) create() error {
	ready := make(chan error, 1)
	o.done = make(chan struct{})

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(o.done)

		classNameStr := fmt.Sprintf("ClickCaptureOverlay_%d", time.Now().UnixNano())
		className := syscall.StringToUTF16Ptr(classNameStr)
		wndClass := win.WNDCLASSEX{
			CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
			Style:         win.CS_HREDRAW | win.CS_VREDRAW,
			LpfnWndProc:   syscall.NewCallback(o.wndProc),
			HInstance:     win.GetModuleHandle(nil),
			HCursor:       win.LoadCursor(0, win.MAKEINTRESOURCE(win.IDC_ARROW)),
			HbrBackground: 0, // we paint everything ourselves
			LpszClassName: className,
		}
		if win.RegisterClassEx(&wndClass) == 0 {
			ready <- fmt.Errorf("overlay: RegisterClassEx failed")
			return
		}
		defer win.UnregisterClass(className)

		x, y, w, h := int32(0), int32(0), int32(statusW), int32(statusH)
		if o.fullscreen {
			x = win.GetSystemMetrics(win.SM_XVIRTUALSCREEN)
			y = win.GetSystemMetrics(win.SM_YVIRTUALSCREEN)
			w = win.GetSystemMetrics(win.SM_CXVIRTUALSCREEN)
			h = win.GetSystemMetrics(win.SM_CYVIRTUALSCREEN)
		}

		hwnd := win.CreateWindowEx(
			win.WS_EX_LAYERED|win.WS_EX_TOPMOST|win.WS_EX_TOOLWINDOW|win.WS_EX_TRANSPARENT|win.WS_EX_NOACTIVATE,
			className,
			syscall.StringToUTF16Ptr("clickcapture overlay"),
			win.WS_POPUP,
			x, y, w, h,
			0, 0, win.GetModuleHandle(nil), nil,
		)
		if hwnd == 0 {
			ready <- fmt.Errorf("overlay: CreateWindowEx failed")
			return
		}

		if o.fullscreen {
			// Color-keyed: only the drag frame is visible, rest is glass.
			procSetLayeredWindowAttributes.Call(uintptr(hwnd), colorKey, 0, lwaColorKey)
		} else {
			procSetLayeredWindowAttributes.Call(uintptr(hwnd), 0, statusAlpha, lwaAlpha)
		}

		// Drawing resources live as long as the window.
		pen, _, _ := procCreatePen.Call(psSolid, 3, frameColor)
		o.pen = win.HPEN(pen)
		o.brush = createSolidBrush(0x00202020)
		o.font = win.CreateFontIndirect(&win.LOGFONT{
			LfHeight:   -16,
			LfWeight:   win.FW_SEMIBOLD,
			LfQuality:  win.CLEARTYPE_QUALITY,
			LfFaceName: toFace("Segoe UI"),
		})

		o.hwnd = hwnd
		ready <- nil

		var msg win.MSG
		for win.GetMessage(&msg, 0, 0, 0) > 0 {
			win.TranslateMessage(&msg)
			win.DispatchMessage(&msg)
		}

		if o.pen != 0 {
			win.DeleteObject(win.HGDIOBJ(o.pen))
		}
		if o.brush != 0 {
			win.DeleteObject(win.HGDIOBJ(o.brush))
		}
		if o.font != 0 {
			win.DeleteObject(win.HGDIOBJ(o.font))
		}
	}()

	if err := <-ready; err != nil {
		log.Printf("overlay: create failed: %v", err)
		return err
	}
	o.created = true
	return nil
}

func (o *winOverlay) wndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	switch msg {
	case win.WM_PAINT:
		var ps win.PAINTSTRUCT
		hdc := win.BeginPaint(hwnd, &ps)
		var rc win.RECT
		win.GetClientRect(hwnd, &rc)
		o.paint(o, hdc, rc.Right-rc.Left, rc.Bottom-rc.Top)
		win.EndPaint(hwnd, &ps)
		return 0
	case win.WM_NCHITTEST:
		// Never take input; the hook owns the pointer.
		htTransparent := int(win.HTTRANSPARENT)
		return uintptr(htTransparent)
	case win.WM_CLOSE:
		win.DestroyWindow(hwnd)
		return 0
	case win.WM_DESTROY:
		win.PostQuitMessage(0)
		return 0
	}
	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}

func paintSelection(o *winOverlay, hdc win.HDC, w, h int32) {
	// Color-key background: everything black is transparent on screen.
	bg := createSolidBrush(colorKey)
	var full = win.RECT{Right: w, Bottom: h}
	fillRect(hdc, &full, bg)
	win.DeleteObject(win.HGDIOBJ(bg))

	r, ok := o.model.Drag()
	if !ok || r.Empty() {
		return
	}
	// Window origin is the virtual-screen origin; translate absolute coords.
	ox := win.GetSystemMetrics(win.SM_XVIRTUALSCREEN)
	oy := win.GetSystemMetrics(win.SM_YVIRTUALSCREEN)

	old := win.SelectObject(hdc, win.HGDIOBJ(o.pen))
	oldBrush := win.SelectObject(hdc, win.GetStockObject(win.NULL_BRUSH))
	procRectangle.Call(uintptr(hdc),
		uintptr(int32(r.Left)-ox), uintptr(int32(r.Top)-oy),
		uintptr(int32(r.Right)-ox), uintptr(int32(r.Bottom)-oy))
	win.SelectObject(hdc, oldBrush)
	win.SelectObject(hdc, old)
}

func paintStatus(o *winOverlay, hdc win.HDC, w, h int32) {
	var full = win.RECT{Right: w, Bottom: h}
	fillRect(hdc, &full, o.brush)

	processing, progress, target := o.model.Status()
	text := "camera: waiting"
	if processing {
		text = "camera: saving..."
	}
	if target > 0 {
		text = fmt.Sprintf("%s  %d/%d", text, progress, target)
	}

	oldFont := win.SelectObject(hdc, win.HGDIOBJ(o.font))
	win.SetBkMode(hdc, win.TRANSPARENT)
	if processing {
		win.SetTextColor(hdc, 0x0000A5FF) // orange while busy
	} else {
		win.SetTextColor(hdc, 0x00FFFFFF)
	}
	utf16Text, _ := syscall.UTF16FromString(text)
	win.TextOut(hdc, 10, 12, &utf16Text[0], int32(len(utf16Text)-1))
	win.SelectObject(hdc, oldFont)
}

func toFace(name string) [32]uint16 {
	var face [32]uint16
	s, _ := syscall.UTF16FromString(name)
	copy(face[:], s)
	return face
}
