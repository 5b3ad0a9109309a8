//go:build !windows

package tray

func lowerConsole() {}

func raiseConsole() {}
