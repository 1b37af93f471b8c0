package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/canvasmark/internal/annotation"
	"github.com/example/canvasmark/internal/engine"
	"github.com/example/canvasmark/internal/layer"
	"github.com/example/canvasmark/internal/service"
	"github.com/example/canvasmark/internal/tool"
)

// script is a recorded sequence of host operations.
type script struct {
	Ops []scriptOp `json:"ops"`
}

// scriptOp is one operation. Layer defaults to the active layer.
type scriptOp struct {
	Op     string       `json:"op"`
	Tool   string       `json:"tool,omitempty"`
	Key    string       `json:"key,omitempty"`
	Value  string       `json:"value,omitempty"`
	Name   string       `json:"name,omitempty"`
	Layer  string       `json:"layer,omitempty"`
	Number float64      `json:"number,omitempty"`
	Index  int          `json:"index,omitempty"`
	X      float64      `json:"x,omitempty"`
	Y      float64      `json:"y,omitempty"`
	Points [][2]float64 `json:"points,omitempty"`
}

func parseScript(r io.Reader) (*script, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var s script
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode script: %w", err)
	}
	return &s, nil
}

// services are the collaborators a script may call.
type services struct {
	background engine.BackgroundRemover
	ocr        engine.TextRecognizer
}

func (op scriptOp) point() annotation.Point { return annotation.Pt(op.X, op.Y) }

func (op scriptOp) layerID(ed *engine.Editor) string {
	if op.Layer != "" {
		return op.Layer
	}
	return ed.ActiveLayer().ID
}

func (op scriptOp) boolValue() (bool, error) {
	switch strings.ToLower(op.Value) {
	case "", "true", "on", "yes":
		return true, nil
	case "false", "off", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", op.Value)
}

// apply runs op against ed.
func (op scriptOp) apply(ctx context.Context, ed *engine.Editor, svc services) error {
	switch op.Op {
	case "tool":
		n, err := tool.ParseName(op.Tool)
		if err != nil {
			return err
		}
		return ed.SetActiveTool(n)
	case "set":
		n := ed.ActiveTool()
		if op.Tool != "" {
			var err error
			if n, err = tool.ParseName(op.Tool); err != nil {
				return err
			}
		}
		return ed.SetToolSetting(n, op.Key, op.Value)
	case "down":
		return ed.PointerDown(op.point())
	case "move":
		ed.PointerMove(op.point())
		return nil
	case "up":
		return ed.PointerUp(op.point())
	case "drag", "click":
		if len(op.Points) == 0 {
			return errors.New("needs at least one point")
		}
		pts := make([]annotation.Point, len(op.Points))
		for i, p := range op.Points {
			pts[i] = annotation.Pt(p[0], p[1])
		}
		if err := ed.PointerDown(pts[0]); err != nil {
			return err
		}
		for _, p := range pts[1:] {
			ed.PointerMove(p)
		}
		return ed.PointerUp(pts[len(pts)-1])
	case "cancel":
		ed.Cancel()
		return nil
	case "undo":
		ed.Undo()
		return nil
	case "redo":
		ed.Redo()
		return nil
	case "select":
		return ed.Select(op.Name)
	case "delete":
		return ed.DeleteSelection()
	case "move_selection":
		return ed.MoveSelection(op.X, op.Y)
	case "edit_text":
		sel, ok := ed.Selection()
		if !ok {
			return engine.ErrNoSelection
		}
		return ed.EditText(sel.ID, op.Value)
	case "zoom":
		ed.SetZoom(op.Number)
		return nil
	case "rotate":
		ed.SetRotation(op.Number)
		return nil
	case "pan":
		ed.SetPan(op.point())
		return nil
	case "fit":
		ed.FitPage()
		return nil
	case "page":
		return ed.SetPage(op.Index)
	case "add_layer":
		id := ed.AddLayer(op.Name)
		return ed.SetActiveLayer(id)
	case "remove_layer":
		return ed.RemoveLayer(op.layerID(ed))
	case "active_layer":
		return ed.SetActiveLayer(op.Layer)
	case "rename_layer":
		return ed.RenameLayer(op.layerID(ed), op.Name)
	case "reorder_layer":
		return ed.ReorderLayer(op.layerID(ed), op.Index)
	case "layer_opacity":
		return ed.SetLayerOpacity(op.layerID(ed), op.Number)
	case "layer_visible":
		v, err := op.boolValue()
		if err != nil {
			return err
		}
		return ed.SetLayerVisible(op.layerID(ed), v)
	case "layer_locked":
		v, err := op.boolValue()
		if err != nil {
			return err
		}
		return ed.SetLayerLocked(op.layerID(ed), v)
	case "layer_blend":
		mode, err := layer.ParseBlendMode(op.Value)
		if err != nil {
			return err
		}
		return ed.SetLayerBlendMode(op.layerID(ed), mode)
	case "remove_background":
		if svc.background == nil {
			return errors.New("no background service configured")
		}
		return ed.RemoveBackground(ctx, svc.background)
	case "recognize_text":
		if svc.ocr == nil {
			return errors.New("no text recognition service configured")
		}
		_, err := ed.InsertRecognizedText(ctx, svc.ocr)
		return err
	}
	return fmt.Errorf("unknown operation %q", op.Op)
}

// run applies every op in order and stops at the first failure.
func (s *script) run(ctx context.Context, ed *engine.Editor, svc services) error {
	for i, op := range s.Ops {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := op.apply(ctx, ed, svc); err != nil {
			return fmt.Errorf("op %d (%s): %w", i+1, op.Op, err)
		}
	}
	return nil
}

type replayCmd struct {
	file         string
	doc          string
	scriptPath   string
	output       string
	saveDoc      string
	serviceURL   string
	serviceToken string
	*root
	fs *flag.FlagSet
}

func (c *replayCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseReplayCmd(args []string, r *root) (*replayCmd, error) {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	c := &replayCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.file, "file", "", "base image or PDF")
	fs.StringVar(&c.doc, "doc", "", "saved document to start from")
	fs.StringVar(&c.scriptPath, "script", "", "JSON script of operations, - for stdin")
	fs.StringVar(&c.output, "output", "annotated.png", "export path")
	fs.StringVar(&c.saveDoc, "save-doc", "", "write the resulting document to this path")
	fs.StringVar(&c.serviceURL, "service", os.Getenv("CANVASMARK_SERVICE_URL"), "base URL of the background removal and OCR service")
	fs.StringVar(&c.serviceToken, "service-token", os.Getenv("CANVASMARK_SERVICE_TOKEN"), "bearer token for -service")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if c.scriptPath == "" {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *replayCmd) collaborators() services {
	if c.serviceURL == "" {
		return services{}
	}
	cfg := service.Config{Endpoint: c.serviceURL, Token: c.serviceToken}
	return services{
		background: service.NewBackgroundRemover(cfg),
		ocr:        service.NewTextRecognizer(cfg),
	}
}

func (c *replayCmd) readScript() (*script, error) {
	if c.scriptPath == "-" {
		return parseScript(os.Stdin)
	}
	f, err := os.Open(c.scriptPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseScript(f)
}

func (c *replayCmd) Run() error {
	s, err := c.readScript()
	if err != nil {
		return err
	}
	opts, err := c.root.editorOptions()
	if err != nil {
		return err
	}
	ctx := context.Background()
	ed, err := openEditor(ctx, c.file, c.doc, opts)
	if err != nil {
		return err
	}
	if err := s.run(ctx, ed, c.collaborators()); err != nil {
		return err
	}
	if c.saveDoc != "" {
		path, err := writeDocument(c.saveDoc, ed)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "saved document %s\n", path)
	}
	if c.output == "" {
		return nil
	}
	path, err := exportPage(c.root.outputPath(c.output), ed)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "saved %s\n", path)
	c.root.notifyExport(path)
	return nil
}
