package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/canvasmark/internal/appstate"
	"github.com/example/canvasmark/internal/clipboard"
	"github.com/example/canvasmark/internal/engine"
)

type editCmd struct {
	file    string
	doc     string
	output  string
	saveDoc string
	*root
	fs *flag.FlagSet
}

func (c *editCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseEditCmd(args []string, r *root) (*editCmd, error) {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	c := &editCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.file, "file", "", "image or PDF to annotate")
	fs.StringVar(&c.doc, "doc", "", "saved document to continue editing")
	fs.StringVar(&c.output, "output", "annotated.png", "export path for the save shortcut")
	fs.StringVar(&c.saveDoc, "save-doc", "", "document path for the save document shortcut")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if c.file == "" && c.doc == "" && fs.NArg() > 0 {
		c.file = fs.Arg(0)
	}
	if c.file == "" && c.doc == "" {
		return nil, &UsageError{of: c}
	}
	if c.saveDoc == "" {
		c.saveDoc = c.doc
	}
	return c, nil
}

func (c *editCmd) Run() error {
	opts, err := c.root.editorOptions()
	if err != nil {
		return err
	}
	ed, err := openEditor(context.Background(), c.file, c.doc, opts)
	if err != nil {
		return err
	}
	title := "canvasmark"
	if c.file != "" {
		title = fmt.Sprintf("canvasmark - %s", filepath.Base(c.file))
	}
	runWindow(c.root, ed, title, c.root.outputPath(c.output), c.saveDoc)
	return nil
}

// runWindow opens the editor window and blocks until it is closed.
func runWindow(r *root, ed *engine.Editor, title, output, docPath string) {
	opts := []appstate.Option{
		appstate.WithTitle(title),
		appstate.WithSave(func(ed *engine.Editor) (string, error) {
			path, err := exportPage(output, ed)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(os.Stderr, "saved %s\n", path)
			r.notifyExport(path)
			return path, nil
		}),
		appstate.WithCopy(func(ed *engine.Editor) error {
			img, err := ed.ExportDocument()
			if err != nil {
				return err
			}
			if err := clipboard.WriteImage(img); err != nil {
				return err
			}
			r.notifyCopy("page", img)
			return nil
		}),
	}
	if r != nil && r.activeTheme != nil {
		opts = append(opts, appstate.WithTheme(r.activeTheme))
	}
	if docPath != "" {
		opts = append(opts, appstate.WithSaveDocument(func(ed *engine.Editor) (string, error) {
			return writeDocument(docPath, ed)
		}))
	}
	appstate.New(ed, opts...).Run()
}
