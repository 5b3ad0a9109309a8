//go:build windows

package hook

import (
	"fmt"
	"log"
	"runtime"
	"syscall"
	"unsafe"

	"github.com/lxn/win"

	"github.com/2DPocket/clickcapture/appstate"
)

const (
	whKeyboardLL = 13
	whMouseLL    = 14
)

var (
	user32DLL                = syscall.NewLazyDLL("user32.dll")
	kernel32DLL              = syscall.NewLazyDLL("kernel32.dll")
	procSetWindowsHookExW    = user32DLL.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx  = user32DLL.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx       = user32DLL.NewProc("CallNextHookEx")
	procPostThreadMessageW   = user32DLL.NewProc("PostThreadMessageW")
	procGetCurrentThreadIdXP = kernel32DLL.NewProc("GetCurrentThreadId")
)

type msLLHookStruct struct {
	Pt        win.POINT
	MouseData uint32
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
}

type kbdLLHookStruct struct {
	VkCode    uint32
	ScanCode  uint32
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
}

// winSource installs WH_MOUSE_LL / WH_KEYBOARD_LL hooks on a dedicated
// locked OS thread that pumps messages. Low-level hooks require a pumping
// thread; blocking it would lag input desktop-wide, so the callback does
// nothing but delegate to the bridge classifier.
type winSource struct {
	cb       func(RawEvent) bool
	threadID uint32
	done     chan struct{}
}

func newPlatformSource() Source { return &winSource{} }

func (s *winSource) Install(cb func(RawEvent) bool) error {
	s.cb = cb
	s.done = make(chan struct{})
	ready := make(chan error, 1)

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(s.done)

		tid, _, _ := procGetCurrentThreadIdXP.Call()
		s.threadID = uint32(tid)

		mouseProc := syscall.NewCallback(s.mouseProc)
		keyProc := syscall.NewCallback(s.keyboardProc)
		hInst := win.GetModuleHandle(nil)

		mouseHook, _, err := procSetWindowsHookExW.Call(
			whMouseLL, mouseProc, uintptr(hInst), 0)
		if mouseHook == 0 {
			ready <- fmt.Errorf("install mouse hook: %v", err)
			return
		}
		keyHook, _, err := procSetWindowsHookExW.Call(
			whKeyboardLL, keyProc, uintptr(hInst), 0)
		if keyHook == 0 {
			_, _, _ = procUnhookWindowsHookEx.Call(mouseHook)
			ready <- fmt.Errorf("install keyboard hook: %v", err)
			return
		}
		ready <- nil

		var msg win.MSG
		for win.GetMessage(&msg, 0, 0, 0) > 0 {
			win.TranslateMessage(&msg)
			win.DispatchMessage(&msg)
		}

		_, _, _ = procUnhookWindowsHookEx.Call(mouseHook)
		_, _, _ = procUnhookWindowsHookEx.Call(keyHook)
	}()

	return <-ready
}

func (s *winSource) Uninstall() {
	if s.done == nil {
		return
	}
	ret, _, err := procPostThreadMessageW.Call(uintptr(s.threadID), win.WM_QUIT, 0, 0)
	if ret == 0 {
		log.Printf("hook: PostThreadMessage failed: %v", err)
	}
	<-s.done
	s.done = nil
}

func (s *winSource) mouseProc(nCode, wParam, lParam uintptr) uintptr {
	if int32(nCode) >= 0 && lParam != 0 {
		info := (*msLLHookStruct)(unsafe.Pointer(lParam))
		pos := appstate.Point{X: int(info.Pt.X), Y: int(info.Pt.Y)}
		var ev RawEvent
		dispatch := true
		switch wParam {
		case win.WM_MOUSEMOVE:
			ev = RawEvent{Kind: RawMove, Pos: pos}
		case win.WM_LBUTTONDOWN:
			ev = RawEvent{Kind: RawPrimaryDown, Pos: pos}
		case win.WM_LBUTTONUP:
			ev = RawEvent{Kind: RawPrimaryUp, Pos: pos}
		default:
			dispatch = false
		}
		if dispatch && s.cb(ev) {
			return 1 // consume; other applications never see it
		}
	}
	ret, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
	return ret
}

func (s *winSource) keyboardProc(nCode, wParam, lParam uintptr) uintptr {
	if int32(nCode) >= 0 && lParam != 0 && wParam == win.WM_KEYDOWN {
		info := (*kbdLLHookStruct)(unsafe.Pointer(lParam))
		if info.VkCode == win.VK_ESCAPE {
			if s.cb(RawEvent{Kind: RawCancelKey}) {
				return 1
			}
		}
	}
	ret, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
	return ret
}
