// Package ui provides the Bubble Tea TUI for booklib.
package ui

// ToastExpired is sent when a toast's display time is up.
// Seq identifies the toast; a newer toast makes older expiries stale.
type ToastExpired struct {
	Seq int
}
