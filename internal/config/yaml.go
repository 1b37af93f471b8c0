package config

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/example/canvasmark/internal/theme"
	"github.com/example/canvasmark/internal/tool"
)

type yamlConfig struct {
	Theme        string                       `yaml:"theme"`
	SaveDir      string                       `yaml:"save_dir"`
	HistoryDepth *int                         `yaml:"history_depth"`
	MinZoom      *float64                     `yaml:"min_zoom"`
	MaxZoom      *float64                     `yaml:"max_zoom"`
	Notify       Notify                       `yaml:"notify"`
	Tools        map[string]map[string]string `yaml:"tools"`
	Themes       map[string]map[string]string `yaml:"themes"`
}

// ParseYAML reads configuration in YAML form. Keys mirror the rc format:
// tool overrides live under "tools" and theme colours under "themes".
func ParseYAML(r io.Reader) (*Config, error) {
	var raw yamlConfig
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode yaml config: %w", err)
	}

	cfg := New()
	cfg.Theme = raw.Theme
	cfg.SaveDir = raw.SaveDir
	cfg.Notify = raw.Notify
	if raw.HistoryDepth != nil {
		if *raw.HistoryDepth < 2 {
			return nil, fmt.Errorf("invalid history_depth %d", *raw.HistoryDepth)
		}
		cfg.HistoryDepth = *raw.HistoryDepth
	}
	if raw.MinZoom != nil {
		cfg.MinZoom = *raw.MinZoom
	}
	if raw.MaxZoom != nil {
		cfg.MaxZoom = *raw.MaxZoom
	}
	if cfg.MinZoom <= 0 || cfg.MaxZoom <= 0 {
		return nil, fmt.Errorf("zoom limits must be positive")
	}

	for name, vals := range raw.Tools {
		n, err := tool.ParseName(name)
		if err != nil {
			return nil, fmt.Errorf("tools.%s: %w", name, err)
		}
		for _, k := range sortedKeys(vals) {
			if err := cfg.SetTool(n, strings.ToLower(k), vals[k]); err != nil {
				return nil, fmt.Errorf("tools.%s: %w", name, err)
			}
		}
	}
	for name, vals := range raw.Themes {
		t := theme.Default()
		t.Name = name
		for _, k := range sortedKeys(vals) {
			if err := t.Set(k, vals[k]); err != nil {
				return nil, fmt.Errorf("themes.%s: %w", name, err)
			}
		}
		cfg.Themes[name] = t
	}
	return cfg, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
