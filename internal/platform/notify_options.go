// Package platform sends desktop notifications through the host's native
// notification service.
package platform

import "time"

// DefaultAppName identifies canvasmark to the notification service.
const DefaultAppName = "canvasmark"

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// IconPath, when non-empty, points to an image file shown with the
	// notification if the platform supports it.
	IconPath string
	// AppName defaults to DefaultAppName.
	AppName string
	// Timeout is how long the notification stays visible. Zero lets the
	// server decide.
	Timeout time.Duration
}

func (o Options) appName() string {
	if o.AppName == "" {
		return DefaultAppName
	}
	return o.AppName
}
