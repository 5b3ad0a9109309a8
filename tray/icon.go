package tray

import (
	_ "embed"
)

// 16x16 selection-frame icon.
//
//go:embed icon.ico
var iconICO []byte

// Icon returns the tray icon bytes.
func Icon() []byte { return iconICO }
