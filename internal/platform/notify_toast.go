package platform

import (
	"errors"
	"strings"
)

// ErrUnsupported is returned where the host has no notification service.
var ErrUnsupported = errors.New("desktop notifications are not supported on this platform")

func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// toastScript builds the PowerShell that shows a Windows toast. An icon
// switches to the image template.
func toastScript(title, body string, opts Options) string {
	icon := strings.TrimSpace(opts.IconPath)
	tmpl := "ToastText02"
	if icon != "" {
		tmpl = "ToastImageAndText02"
	}
	lines := []string{
		"[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType=Windows Runtime] > $null",
		"$template = [Windows.UI.Notifications.ToastNotificationManager]::GetTemplateContent([Windows.UI.Notifications.ToastTemplateType]::" + tmpl + ")",
		`$texts = $template.GetElementsByTagName("text")`,
		"$texts.Item(0).AppendChild($template.CreateTextNode(" + psQuote(title) + ")) > $null",
		"$texts.Item(1).AppendChild($template.CreateTextNode(" + psQuote(body) + ")) > $null",
	}
	if icon != "" {
		lines = append(lines, `$template.GetElementsByTagName("image").Item(0).SetAttribute("src", `+psQuote(icon)+")")
	}
	lines = append(lines,
		"$toast = [Windows.UI.Notifications.ToastNotification]::new($template)",
		"[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier("+psQuote(opts.appName())+").Show($toast)",
	)
	return strings.Join(lines, "; ") + ";"
}
