// Package config loads canvasmark settings from an rc or YAML file.
package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/example/canvasmark/internal/engine"
	"github.com/example/canvasmark/internal/history"
	"github.com/example/canvasmark/internal/theme"
	"github.com/example/canvasmark/internal/tool"
	"github.com/example/canvasmark/internal/viewport"
)

// Notify holds notification settings.
type Notify struct {
	Export bool `yaml:"export"`
	Copy   bool `yaml:"copy"`
}

// Config holds the application configuration.
type Config struct {
	Theme        string
	SaveDir      string
	HistoryDepth int
	MinZoom      float64
	MaxZoom      float64
	Notify       Notify
	// Tools holds per-tool setting overrides exactly as written.
	Tools  map[tool.Name]map[string]string
	Themes map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Theme:        "", // empty falls back to env, then the built-in default
		HistoryDepth: history.MaxDepth,
		MinZoom:      viewport.MinZoom,
		MaxZoom:      viewport.MaxZoom,
		Tools:        make(map[tool.Name]map[string]string),
		Themes:       make(map[string]*theme.Theme),
	}
}

// SetTool records a tool setting after checking it applies.
func (c *Config) SetTool(n tool.Name, key, value string) error {
	if _, err := tool.Apply(tool.Default(n), key, value); err != nil {
		return err
	}
	if c.Tools[n] == nil {
		c.Tools[n] = map[string]string{}
	}
	c.Tools[n][key] = value
	return nil
}

// ToolSettings returns factory tool settings with the overrides applied.
func (c *Config) ToolSettings() (*tool.Settings, error) {
	s := tool.NewSettings()
	for _, n := range tool.Names() {
		vals := c.Tools[n]
		for _, k := range sortedKeys(vals) {
			if err := s.Set(n, k, vals[k]); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

// EditorOptions translates the configuration into engine options.
func (c *Config) EditorOptions() ([]engine.Option, error) {
	tools, err := c.ToolSettings()
	if err != nil {
		return nil, err
	}
	return []engine.Option{
		engine.WithHistoryDepth(c.HistoryDepth),
		engine.WithZoomRange(c.MinZoom, c.MaxZoom),
		engine.WithToolSettings(tools),
	}, nil
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	fmt.Fprintf(&sb, "history_depth = %d\n", c.HistoryDepth)
	fmt.Fprintf(&sb, "min_zoom = %s\n", strconv.FormatFloat(c.MinZoom, 'g', -1, 64))
	fmt.Fprintf(&sb, "max_zoom = %s\n", strconv.FormatFloat(c.MaxZoom, 'g', -1, 64))
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "export = %v\n", c.Notify.Export)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	for _, n := range tool.Names() {
		vals := c.Tools[n]
		if len(vals) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "[tool.%s]\n", n)
		for _, k := range sortedKeys(vals) {
			fmt.Fprintf(&sb, "%s = %q\n", k, vals[k])
		}
		sb.WriteString("\n")
	}

	var themeNames []string
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)

	for _, name := range themeNames {
		t := c.Themes[name]
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		fmt.Fprintf(&sb, "Name: %s\n", t.Name)
		for _, f := range t.Fields() {
			fmt.Fprintf(&sb, "%s: %s\n", f.Key, theme.Hex(f.Value))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
