// Package notify surfaces blocking user notices. Precondition failures use a
// modal box with actionable instructions; background failures never go
// through here (they are logged so the box cannot steal focus mid-capture).
package notify

// Notice shows a blocking informational/warning box.
func Notice(title, message string) {
	showNotice(title, message)
}

// Warn shows a blocking warning box.
func Warn(title, message string) {
	showWarn(title, message)
}

// Confirm shows an OK/Cancel question and reports whether OK was chosen.
func Confirm(title, message string) bool {
	return showConfirm(title, message)
}
