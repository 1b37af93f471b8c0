package notify

import (
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/example/canvasmark/internal/platform"
)

type sent struct {
	Title, Body string
	HasIcon     bool
	Timeout     time.Duration
}

func recorder(out *[]sent) Sender {
	return func(title, body string, opts platform.Options) error {
		icon := false
		if opts.IconPath != "" {
			_, err := os.Stat(opts.IconPath)
			icon = err == nil
		}
		*out = append(*out, sent{Title: title, Body: body, HasIcon: icon, Timeout: opts.Timeout})
		return nil
	}
}

func TestDisabledEventsAreSilent(t *testing.T) {
	var got []sent
	n := New(DefaultPreferences()).WithSender(recorder(&got))
	n.Export("out.png")
	n.Copy("", nil)
	if len(got) != 0 {
		t.Errorf("sent %v", got)
	}
	var nilNotifier *Notifier
	nilNotifier.Export("x")
}

func TestExportAndCopy(t *testing.T) {
	var got []sent
	n := New(DefaultPreferences()).WithSender(recorder(&got))
	n.Enable(EventExport, true)
	n.Enable(EventCopy, true)

	path := filepath.Join(t.TempDir(), "page.png")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	n.Export(path)
	n.Copy("", image.NewRGBA(image.Rect(0, 0, 2, 2)))

	want := []sent{
		{Title: "canvasmark", Body: "Exported " + path, HasIcon: true, Timeout: 5 * time.Second},
		{Title: "canvasmark", Body: "Copied image to clipboard", HasIcon: true, Timeout: 5 * time.Second},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("notifications mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadPreferences(t *testing.T) {
	t.Setenv("CANVASMARK_NOTIFY_TITLE", "Marks")
	t.Setenv("CANVASMARK_NOTIFY_COPY_TEXT", "Clipboard: %s")
	p := LoadPreferences()
	if p.Title != "Marks" || p.Events[EventCopy].Template != "Clipboard: %s" {
		t.Errorf("prefs = %+v", p)
	}
	if p.Events[EventExport].Template != "Exported %s" {
		t.Errorf("export template = %q", p.Events[EventExport].Template)
	}
}
