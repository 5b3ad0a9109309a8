//go:build windows

package autoclick

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/2DPocket/clickcapture/appstate"
)

const (
	inputMouse = 0

	mouseEventfLeftDown = 0x0002
	mouseEventfLeftUp   = 0x0004
)

var (
	user32           = windows.NewLazySystemDLL("user32.dll")
	procSendInput    = user32.NewProc("SendInput")
	procSetCursorPos = user32.NewProc("SetCursorPos")
)

type mouseInput struct {
	Dx        int32
	Dy        int32
	MouseData uint32
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
}

type input struct {
	Type uint32
	_    uint32 // alignment padding before the union
	Mi   mouseInput
}

// sendInputInjector synthesizes clicks with SetCursorPos + SendInput so the
// press lands exactly on the recorded point even if the user moved the mouse.
type sendInputInjector struct{}

// NewInjector returns the platform click injector.
func NewInjector() Injector { return sendInputInjector{} }

func (sendInputInjector) Click(p appstate.Point) error {
	ret, _, err := procSetCursorPos.Call(uintptr(p.X), uintptr(p.Y))
	if ret == 0 {
		return fmt.Errorf("SetCursorPos(%d,%d): %v", p.X, p.Y, err)
	}

	inputs := [2]input{
		{Type: inputMouse, Mi: mouseInput{Flags: mouseEventfLeftDown}},
		{Type: inputMouse, Mi: mouseInput{Flags: mouseEventfLeftUp}},
	}
	n, _, err := procSendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
	if int(n) != len(inputs) {
		return fmt.Errorf("SendInput: injected %d of %d events: %v", n, len(inputs), err)
	}
	return nil
}
