package platform

import (
	"strings"
	"testing"
)

func TestAppName(t *testing.T) {
	if got := (Options{}).appName(); got != DefaultAppName {
		t.Errorf("default app name = %q", got)
	}
	if got := (Options{AppName: "other"}).appName(); got != "other" {
		t.Errorf("app name = %q", got)
	}
}

func TestToastScript(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		want    []string
		notWant []string
	}{
		{
			name:    "text only",
			opts:    Options{},
			want:    []string{"ToastText02", "CreateToastNotifier('canvasmark')", "'it''s saved'"},
			notWant: []string{"ToastImageAndText02", `"src"`},
		},
		{
			name: "icon and app name",
			opts: Options{IconPath: ` C:\tmp\p.png `, AppName: "Review"},
			want: []string{"ToastImageAndText02", `SetAttribute("src", 'C:\tmp\p.png')`, "CreateToastNotifier('Review')"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := toastScript("Saved", "it's saved", tc.opts)
			for _, w := range tc.want {
				if !strings.Contains(got, w) {
					t.Errorf("script missing %q:\n%s", w, got)
				}
			}
			for _, w := range tc.notWant {
				if strings.Contains(got, w) {
					t.Errorf("script has %q:\n%s", w, got)
				}
			}
		})
	}
}
