//go:build !windows

package notify

import "log"

func showNotice(title, message string) {
	log.Printf("NOTICE [%s]: %s", title, message)
}

func showWarn(title, message string) {
	log.Printf("WARNING [%s]: %s", title, message)
}

func showConfirm(title, message string) bool {
	// No modal UI off Windows; treat the confirmation as accepted.
	log.Printf("CONFIRM [%s]: %s (auto-accepted)", title, message)
	return true
}
