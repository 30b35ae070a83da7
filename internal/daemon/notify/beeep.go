package notify

import "github.com/gen2brain/beeep"

// DesktopAlerter raises alerts through the platform notification service.
type DesktopAlerter struct{}

// Alert implements Alerter.
func (DesktopAlerter) Alert(title, message string) error {
	return beeep.Notify(title, message, "")
}
