//go:build !linux && !darwin && !windows

package platform

import "fmt"

// Notify reports that this platform has no notification service for the
// configured application.
func Notify(title, body string, opts Options) error {
	return fmt.Errorf("%s: %w", opts.appName(), ErrUnsupported)
}
