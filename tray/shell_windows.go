//go:build windows

package tray

import (
	"syscall"

	"github.com/lxn/win"
)

var (
	kernel32DLL          = syscall.NewLazyDLL("kernel32.dll")
	procGetConsoleWindow = kernel32DLL.NewProc("GetConsoleWindow")
)

// The process may run windowless (GUI subsystem) or from a console. Only an
// attached console needs to move out of the capture area.

func lowerConsole() {
	if hwnd, _, _ := procGetConsoleWindow.Call(); hwnd != 0 {
		win.ShowWindow(win.HWND(hwnd), win.SW_MINIMIZE)
	}
}

func raiseConsole() {
	if hwnd, _, _ := procGetConsoleWindow.Call(); hwnd != 0 {
		win.ShowWindow(win.HWND(hwnd), win.SW_RESTORE)
	}
}
