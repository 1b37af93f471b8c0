package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/example/canvasmark/internal/annotation"
	"github.com/example/canvasmark/internal/tool"
)

type toolsCmd struct {
	*root
	fs  *flag.FlagSet
	out io.Writer
}

func parseToolsCmd(args []string, r *root) (*toolsCmd, error) {
	fs := flag.NewFlagSet("tools", flag.ExitOnError)
	cmd := &toolsCmd{root: r, fs: fs, out: os.Stdout}
	fs.Usage = usageFunc(cmd)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (c *toolsCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func (c *toolsCmd) Run() error {
	settings := tool.NewSettings()
	if c.root != nil && c.root.config != nil {
		s, err := c.root.config.ToolSettings()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		settings = s
	}
	fmt.Fprintln(c.out, "available tools:")
	for _, n := range tool.Names() {
		vals := tool.Values(settings.Get(n))
		keys := tool.Keys(n)
		if len(keys) == 0 {
			fmt.Fprintf(c.out, "  %s\n", n)
			continue
		}
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", k, vals[k]))
		}
		fmt.Fprintf(c.out, "  %-10s %s\n", n, strings.Join(parts, " "))
	}
	return nil
}

type colorsCmd struct {
	*root
	fs  *flag.FlagSet
	out io.Writer
}

func parseColorsCmd(args []string, r *root) (*colorsCmd, error) {
	fs := flag.NewFlagSet("colors", flag.ExitOnError)
	cmd := &colorsCmd{root: r, fs: fs, out: os.Stdout}
	fs.Usage = usageFunc(cmd)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (c *colorsCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func (c *colorsCmd) Run() error {
	fmt.Fprintln(c.out, "available colors (also #RGB, #RRGGBB, #RRGGBBAA and none):")
	for _, name := range colornames.Names {
		col, err := annotation.ParseColor(name)
		if err != nil {
			continue
		}
		fmt.Fprintf(c.out, "  %-22s %s\n", name, col)
	}
	return nil
}
