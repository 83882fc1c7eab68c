package presenter

import "github.com/gen2brain/beeep"

// Notifier raises a desktop notification.
type Notifier interface {
	Notify(title, message string) error
}

// DesktopNotifier raises an alert through the operating system's
// notification mechanism. It is best effort: not every desktop supports it.
type DesktopNotifier struct{}

// Notify shows an alert with a sound where the platform supports it.
func (DesktopNotifier) Notify(title, message string) error {
	return beeep.Alert(title, message, "")
}
