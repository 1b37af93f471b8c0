// Package assets holds files compiled into the canvasmark binary.
package assets

import (
	"embed"
	"io/fs"
	"sort"
	"strings"
)

// Themes contains the built-in editor themes as themes/<name>.theme.
//
//go:embed themes/*.theme
var Themes embed.FS

// ThemeNames lists the built-in theme names without extension.
func ThemeNames() []string {
	entries, err := fs.ReadDir(Themes, "themes")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if name, ok := strings.CutSuffix(entry.Name(), ".theme"); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
