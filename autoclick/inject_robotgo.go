//go:build !windows

package autoclick

import (
	"github.com/go-vgo/robotgo"

	"github.com/2DPocket/clickcapture/appstate"
)

// robotgoInjector drives the platform input facility through robotgo.
type robotgoInjector struct{}

// NewInjector returns the platform click injector.
func NewInjector() Injector { return robotgoInjector{} }

func (robotgoInjector) Click(p appstate.Point) error {
	robotgo.Move(p.X, p.Y)
	robotgo.Click("left")
	return nil
}
