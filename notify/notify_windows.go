//go:build windows

package notify

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	mbOK              = 0x00000000
	mbOKCancel        = 0x00000001
	mbIconWarning     = 0x00000030
	mbIconQuestion    = 0x00000020
	mbIconInformation = 0x00000040
	mbTopmost         = 0x00040000

	idOK = 1
)

var (
	user32          = windows.NewLazySystemDLL("user32.dll")
	procMessageBoxW = user32.NewProc("MessageBoxW")
)

func messageBox(title, message string, flags uintptr) uintptr {
	titlePtr, _ := syscall.UTF16PtrFromString(title)
	messagePtr, _ := syscall.UTF16PtrFromString(message)
	ret, _, _ := procMessageBoxW.Call(
		0, // no parent window
		uintptr(unsafe.Pointer(messagePtr)),
		uintptr(unsafe.Pointer(titlePtr)),
		flags,
	)
	return ret
}

func showNotice(title, message string) {
	messageBox(title, message, mbOK|mbIconInformation|mbTopmost)
}

func showWarn(title, message string) {
	messageBox(title, message, mbOK|mbIconWarning|mbTopmost)
}

func showConfirm(title, message string) bool {
	return messageBox(title, message, mbOKCancel|mbIconQuestion|mbTopmost) == idOK
}
