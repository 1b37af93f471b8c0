package engine

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/example/canvasmark/internal/annotation"
	"github.com/example/canvasmark/internal/layer"
	"github.com/example/canvasmark/internal/tool"
)

func newEditor(opts ...Option) *Editor {
	return New(append([]Option{WithIDGenerator(Sequential("id"))}, opts...)...)
}

func drag(t *testing.T, e *Editor, pts ...annotation.Point) {
	t.Helper()
	if err := e.PointerDown(pts[0]); err != nil {
		t.Fatalf("PointerDown: %v", err)
	}
	for _, p := range pts[1 : len(pts)-1] {
		e.PointerMove(p)
	}
	if err := e.PointerUp(pts[len(pts)-1]); err != nil {
		t.Fatalf("PointerUp: %v", err)
	}
}

func mustTool(t *testing.T, e *Editor, n tool.Name) {
	t.Helper()
	if err := e.SetActiveTool(n); err != nil {
		t.Fatalf("SetActiveTool(%s): %v", n, err)
	}
}

func TestDrawRectangleScenario(t *testing.T) {
	e := newEditor()
	initial := e.HistoryLen()
	mustTool(t, e, tool.NameRectangle)
	drag(t, e, annotation.Pt(10, 10), annotation.Pt(50, 35), annotation.Pt(110, 60))

	anns := e.Annotations(e.ActiveLayer().ID)
	if len(anns) != 1 {
		t.Fatalf("annotations = %d, want 1", len(anns))
	}
	a := anns[0]
	if a.Kind != annotation.KindRectangle {
		t.Errorf("kind = %s", a.Kind)
	}
	want := annotation.Rect{X: 10, Y: 10, Width: 100, Height: 50}
	if diff := cmp.Diff(want, a.Bounds()); diff != "" {
		t.Errorf("bounds mismatch (-want +got):\n%s", diff)
	}
	if got := e.HistoryLen(); got != initial+1 {
		t.Errorf("history len = %d, want %d", got, initial+1)
	}
}

func TestTwoCommitsTwoUndos(t *testing.T) {
	e := newEditor()
	before := e.State()
	mustTool(t, e, tool.NameRectangle)
	drag(t, e, annotation.Pt(0, 0), annotation.Pt(20, 20))
	mustTool(t, e, tool.NameLine)
	drag(t, e, annotation.Pt(5, 5), annotation.Pt(50, 5))

	if !e.Undo() || !e.Undo() {
		t.Fatal("expected two successful undos")
	}
	if diff := cmp.Diff(before, e.State(), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("state after undo mismatch (-want +got):\n%s", diff)
	}
	if e.Undo() {
		t.Error("undo at oldest should be a no-op")
	}
	if !e.Redo() {
		t.Fatal("redo should succeed")
	}
	if n := len(e.Annotations(e.ActiveLayer().ID)); n != 1 {
		t.Errorf("after redo annotations = %d, want 1", n)
	}
}

func TestFreshCommitDropsRedo(t *testing.T) {
	e := newEditor()
	mustTool(t, e, tool.NameRectangle)
	drag(t, e, annotation.Pt(0, 0), annotation.Pt(20, 20))
	e.Undo()
	drag(t, e, annotation.Pt(30, 30), annotation.Pt(60, 60))
	if e.CanRedo() || e.Redo() {
		t.Error("redo must be gone after a fresh commit")
	}
}

func TestLayerOpacityExport(t *testing.T) {
	e := newEditor(WithBlankPages(PageSize{Width: 100, Height: 100}))
	if err := e.SetToolSetting(tool.NameRectangle, "fill", "red"); err != nil {
		t.Fatal(err)
	}
	mustTool(t, e, tool.NameRectangle)
	drag(t, e, annotation.Pt(20, 20), annotation.Pt(80, 80))
	if err := e.SetLayerOpacity(e.ActiveLayer().ID, 0.5); err != nil {
		t.Fatal(err)
	}
	img, err := e.ExportDocument()
	if err != nil {
		t.Fatal(err)
	}
	px := img.RGBAAt(50, 50)
	if px.R < 250 || px.G < 110 || px.G > 145 || px.B < 110 || px.B > 145 {
		t.Errorf("centre pixel = %+v, want about (255,128,128)", px)
	}
}

func TestRemoveLastLayer(t *testing.T) {
	e := newEditor()
	before := e.HistoryLen()
	err := e.RemoveLayer(e.ActiveLayer().ID)
	if !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("expected ErrInvariantViolation, got %v", err)
	}
	if len(e.Layers()) != 1 || e.HistoryLen() != before {
		t.Errorf("failed removal changed the document")
	}
}

func TestLockedLayerIgnoresInput(t *testing.T) {
	e := newEditor()
	id := e.ActiveLayer().ID
	if err := e.SetLayerLocked(id, true); err != nil {
		t.Fatal(err)
	}
	before := e.HistoryLen()
	mustTool(t, e, tool.NameRectangle)
	drag(t, e, annotation.Pt(0, 0), annotation.Pt(30, 30))
	if e.Dragging() || len(e.Annotations(id)) != 0 || e.HistoryLen() != before {
		t.Error("locked layer accepted a drag")
	}
	if e.UIState().Message == "" {
		t.Error("expected a status message for the locked layer")
	}
}

func TestDegenerateClickNoHistory(t *testing.T) {
	e := newEditor()
	before := e.HistoryLen()
	mustTool(t, e, tool.NameCircle)
	drag(t, e, annotation.Pt(40, 40), annotation.Pt(40, 40))
	if e.HistoryLen() != before || len(e.Annotations(e.ActiveLayer().ID)) != 0 {
		t.Error("degenerate drag changed the document")
	}
}

func TestTextPlacementSwitchesToSelect(t *testing.T) {
	e := newEditor()
	mustTool(t, e, tool.NameText)
	if err := e.PointerDown(annotation.Pt(15, 25)); err != nil {
		t.Fatal(err)
	}
	if e.ActiveTool() != tool.NameSelect {
		t.Errorf("active tool = %s, want select", e.ActiveTool())
	}
	sel, ok := e.Selection()
	if !ok || sel.Kind != annotation.KindText {
		t.Fatalf("selection = %+v %v", sel, ok)
	}
	if err := e.EditText(sel.ID, "changed"); err != nil {
		t.Fatal(err)
	}
	got, _ := e.Annotation(sel.ID)
	if got.Text.Content != "changed" {
		t.Errorf("content = %q", got.Text.Content)
	}
}

func TestSelectAndDelete(t *testing.T) {
	e := newEditor()
	mustTool(t, e, tool.NameRectangle)
	drag(t, e, annotation.Pt(10, 10), annotation.Pt(50, 50))
	historyBefore := e.HistoryLen()

	mustTool(t, e, tool.NameSelect)
	if err := e.PointerDown(annotation.Pt(30, 30)); err != nil {
		t.Fatal(err)
	}
	e.PointerUp(annotation.Pt(30, 30))
	if _, ok := e.Selection(); !ok {
		t.Fatal("expected selection")
	}
	if e.HistoryLen() != historyBefore {
		t.Error("selection must not enter history")
	}
	if err := e.DeleteSelection(); err != nil {
		t.Fatal(err)
	}
	if len(e.Annotations(e.ActiveLayer().ID)) != 0 {
		t.Error("selection not deleted")
	}
	if err := e.DeleteSelection(); !errors.Is(err, ErrNoSelection) {
		t.Errorf("expected ErrNoSelection, got %v", err)
	}
	e.Undo()
	if len(e.Annotations(e.ActiveLayer().ID)) != 1 {
		t.Error("undo did not restore the deleted annotation")
	}
}

func TestToolSwitchCancelsDrag(t *testing.T) {
	e := newEditor()
	mustTool(t, e, tool.NameArrow)
	if err := e.PointerDown(annotation.Pt(0, 0)); err != nil {
		t.Fatal(err)
	}
	e.PointerMove(annotation.Pt(40, 40))
	mustTool(t, e, tool.NameRectangle)
	if e.Dragging() {
		t.Fatal("tool switch must cancel the drag")
	}
	if err := e.PointerUp(annotation.Pt(40, 40)); err != nil {
		t.Fatal(err)
	}
	if len(e.Annotations(e.ActiveLayer().ID)) != 0 {
		t.Error("cancelled drag committed")
	}
}

func TestZoomedInputMapsToDocument(t *testing.T) {
	e := newEditor()
	e.SetZoom(2)
	e.SetPan(annotation.Pt(10, 0))
	mustTool(t, e, tool.NameRectangle)
	drag(t, e, annotation.Pt(30, 20), annotation.Pt(130, 120))
	a := e.Annotations(e.ActiveLayer().ID)[0]
	want := annotation.Rect{X: 10, Y: 10, Width: 50, Height: 50}
	if diff := cmp.Diff(want, a.Bounds()); diff != "" {
		t.Errorf("bounds mismatch (-want +got):\n%s", diff)
	}
}

func TestZoomAndRotationClamp(t *testing.T) {
	e := newEditor()
	e.SetZoom(50)
	if e.Viewport().Zoom != 5 {
		t.Errorf("zoom = %v", e.Viewport().Zoom)
	}
	e.SetZoom(0)
	if e.Viewport().Zoom != 0.1 {
		t.Errorf("zoom = %v", e.Viewport().Zoom)
	}
	e.SetRotation(-90)
	if e.Viewport().Rotation != 270 {
		t.Errorf("rotation = %v", e.Viewport().Rotation)
	}
	r := newEditor(WithZoomRange(0.5, 2))
	r.SetZoom(3)
	if r.Viewport().Zoom != 2 {
		t.Errorf("configured max zoom ignored: %v", r.Viewport().Zoom)
	}
}

func TestHiddenLayerStillEditable(t *testing.T) {
	e := newEditor()
	id := e.ActiveLayer().ID
	if err := e.SetLayerVisible(id, false); err != nil {
		t.Fatal(err)
	}
	mustTool(t, e, tool.NameRectangle)
	drag(t, e, annotation.Pt(0, 0), annotation.Pt(10, 10))
	if len(e.Annotations(id)) != 1 {
		t.Error("active hidden layer should accept annotations")
	}
}

func TestRemoveLayerReassignsActive(t *testing.T) {
	e := newEditor()
	first := e.ActiveLayer().ID
	second := e.AddLayer("")
	if e.ActiveLayer().Name != "Layer 2" {
		t.Errorf("default name = %q", e.ActiveLayer().Name)
	}
	if err := e.RemoveLayer(second); err != nil {
		t.Fatal(err)
	}
	if e.ActiveLayer().ID != first {
		t.Errorf("active = %s, want %s", e.ActiveLayer().ID, first)
	}
	if !e.Undo() || len(e.Layers()) != 2 {
		t.Error("undo should bring the removed layer back")
	}
}

func TestUndoRedoKeepsActiveLayer(t *testing.T) {
	e := newEditor()
	first := e.ActiveLayer().ID
	mustTool(t, e, tool.NameRectangle)
	drag(t, e, annotation.Pt(0, 0), annotation.Pt(20, 20))
	second := e.AddLayer("Notes")
	if err := e.SetActiveLayer(first); err != nil {
		t.Fatal(err)
	}
	before := e.State()
	if !e.Undo() || !e.Redo() {
		t.Fatal("expected undo and redo to succeed")
	}
	if diff := cmp.Diff(before, e.State(), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("state after undo and redo mismatch (-want +got):\n%s", diff)
	}

	if err := e.SetActiveLayer(second); err != nil {
		t.Fatal(err)
	}
	if !e.Undo() {
		t.Fatal("undo should remove the added layer")
	}
	if got := e.ActiveLayer().ID; got != first {
		t.Errorf("active = %s, want %s once the active layer is gone", got, first)
	}
}

func TestLayerPropertyChangesAreUndoable(t *testing.T) {
	e := newEditor()
	id := e.ActiveLayer().ID
	if err := e.SetLayerBlendMode(id, layer.BlendMultiply); err != nil {
		t.Fatal(err)
	}
	if err := e.RenameLayer(id, "Ink"); err != nil {
		t.Fatal(err)
	}
	e.Undo()
	e.Undo()
	l := e.ActiveLayer()
	if l.Blend != layer.BlendNormal || l.Name != "Layer 1" {
		t.Errorf("layer after undo = %+v", l)
	}
	if err := e.SetLayerBlendMode(id, "sparkle"); err == nil {
		t.Error("expected unknown blend mode error")
	}
}

func TestUnchangedLayerSkipsHistory(t *testing.T) {
	e := newEditor()
	id := e.ActiveLayer().ID
	before := e.HistoryLen()
	steps := []struct {
		name string
		fn   func() error
	}{
		{"visible", func() error { return e.SetLayerVisible(id, true) }},
		{"locked", func() error { return e.SetLayerLocked(id, false) }},
		{"opacity", func() error { return e.SetLayerOpacity(id, 1) }},
		{"opacity clamped", func() error { return e.SetLayerOpacity(id, 3) }},
		{"blend", func() error { return e.SetLayerBlendMode(id, layer.BlendNormal) }},
		{"rename", func() error { return e.RenameLayer(id, "Layer 1") }},
		{"reorder", func() error { return e.ReorderLayer(id, 0) }},
	}
	for _, st := range steps {
		if err := st.fn(); err != nil {
			t.Fatalf("%s: %v", st.name, err)
		}
		if e.HistoryLen() != before {
			t.Fatalf("%s: no-op change entered history", st.name)
		}
	}
	if err := e.SetLayerVisible(id, false); err != nil {
		t.Fatal(err)
	}
	if e.HistoryLen() != before+1 {
		t.Errorf("history len = %d, want %d", e.HistoryLen(), before+1)
	}
}

func TestHistoryDepthOption(t *testing.T) {
	e := newEditor(WithHistoryDepth(3))
	mustTool(t, e, tool.NameRectangle)
	for i := 0; i < 5; i++ {
		x := float64(i * 20)
		drag(t, e, annotation.Pt(x, 0), annotation.Pt(x+10, 10))
	}
	if e.HistoryLen() != 3 {
		t.Errorf("history len = %d, want 3", e.HistoryLen())
	}
}

func TestLoggerReceivesCommits(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	e := newEditor(WithLogger(log))
	mustTool(t, e, tool.NameLine)
	drag(t, e, annotation.Pt(0, 0), annotation.Pt(10, 0))
	if !strings.Contains(buf.String(), "msg=commit") {
		t.Errorf("expected commit log record, got %q", buf.String())
	}
}

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestPendingPageIgnoresInput(t *testing.T) {
	e := newEditor(WithPages(PageSize{Width: 50, Height: 50}, PageSize{Width: 60, Height: 60}))
	mustTool(t, e, tool.NameRectangle)
	drag(t, e, annotation.Pt(0, 0), annotation.Pt(20, 20))
	if len(e.Annotations(e.ActiveLayer().ID)) != 0 {
		t.Fatal("input on a pending page must be ignored")
	}
	_, err := e.ExportDocument()
	var rerr *RenderError
	if !errors.As(err, &rerr) || !errors.Is(err, ErrPageNotReady) {
		t.Fatalf("expected RenderError, got %v", err)
	}

	if err := e.SetPageRaster(0, solid(50, 50, color.RGBA{0, 0, 255, 255}), nil); err != nil {
		t.Fatal(err)
	}
	fail := errors.New("corrupt page")
	if err := e.SetPageRaster(1, nil, fail); !errors.As(err, &rerr) || rerr.Page != 1 {
		t.Fatalf("expected RenderError for page 1, got %v", err)
	}
	if p, _ := e.Page(0); p.State != PageReady {
		t.Errorf("page 0 state = %s", p.State)
	}
	if p, _ := e.Page(1); p.State != PageFailed || !errors.Is(p.Err, fail) {
		t.Errorf("page 1 = %+v", p)
	}
	drag(t, e, annotation.Pt(0, 0), annotation.Pt(20, 20))
	if len(e.Annotations(e.ActiveLayer().ID)) != 1 {
		t.Fatal("input on a ready page should draw")
	}
	img, err := e.ExportDocument()
	if err != nil {
		t.Fatal(err)
	}
	if px := img.RGBAAt(40, 40); px.B < 250 || px.R > 5 {
		t.Errorf("base raster pixel = %+v", px)
	}
}

func TestPagesKeepAnnotationsApart(t *testing.T) {
	e := newEditor(WithBlankPages(PageSize{Width: 50, Height: 50}, PageSize{Width: 50, Height: 50}))
	mustTool(t, e, tool.NameRectangle)
	drag(t, e, annotation.Pt(0, 0), annotation.Pt(20, 20))
	if err := e.SetPage(1); err != nil {
		t.Fatal(err)
	}
	drag(t, e, annotation.Pt(5, 5), annotation.Pt(25, 25))
	anns := e.Annotations(e.ActiveLayer().ID)
	if len(anns) != 2 || anns[0].Page != 0 || anns[1].Page != 1 {
		t.Errorf("pages = %+v", anns)
	}
	if err := e.SetPage(2); !errors.Is(err, ErrInvariantViolation) {
		t.Errorf("expected out of range error, got %v", err)
	}
}

type fakeRasterizer struct {
	sizes []PageSize
	fail  map[int]error
}

func (f fakeRasterizer) Pages(context.Context) ([]PageSize, error) { return f.sizes, nil }

func (f fakeRasterizer) RenderPage(_ context.Context, i int) (image.Image, error) {
	if err := f.fail[i]; err != nil {
		return nil, err
	}
	s := f.sizes[i]
	return solid(int(s.Width), int(s.Height), color.RGBA{255, 255, 255, 255}), nil
}

func TestOpenLoadsPages(t *testing.T) {
	r := fakeRasterizer{
		sizes: []PageSize{{Width: 10, Height: 10}, {Width: 20, Height: 20}},
		fail:  map[int]error{1: errors.New("boom")},
	}
	e, err := Open(context.Background(), r, WithIDGenerator(Sequential("id")))
	if err != nil {
		t.Fatal(err)
	}
	if p, _ := e.Page(0); p.State != PageReady {
		t.Errorf("page 0 = %s", p.State)
	}
	if p, _ := e.Page(1); p.State != PageFailed {
		t.Errorf("page 1 = %s", p.State)
	}
}

type sinkFunc func(context.Context, []byte) error

func (f sinkFunc) Export(ctx context.Context, b []byte) error { return f(ctx, b) }

type bgFunc func(context.Context, image.Image) (image.Image, error)

func (f bgFunc) RemoveBackground(ctx context.Context, img image.Image) (image.Image, error) {
	return f(ctx, img)
}

type ocrFunc func(context.Context, image.Image) (string, error)

func (f ocrFunc) Recognize(ctx context.Context, img image.Image) (string, error) { return f(ctx, img) }

func TestServiceFailuresLeaveDocument(t *testing.T) {
	e := newEditor()
	mustTool(t, e, tool.NameRectangle)
	drag(t, e, annotation.Pt(0, 0), annotation.Pt(20, 20))
	before := e.State()
	hist := e.HistoryLen()
	boom := errors.New("service down")

	var serr *ServiceError
	if err := e.ExportTo(context.Background(), sinkFunc(func(context.Context, []byte) error { return boom })); !errors.As(err, &serr) || !errors.Is(err, boom) {
		t.Errorf("export: expected ServiceError, got %v", err)
	}
	if _, err := e.RecognizeText(context.Background(), ocrFunc(func(context.Context, image.Image) (string, error) { return "", boom })); !errors.As(err, &serr) {
		t.Errorf("ocr: expected ServiceError, got %v", err)
	}
	if diff := cmp.Diff(before, e.State(), cmpopts.EquateEmpty()); diff != "" || e.HistoryLen() != hist {
		t.Errorf("service failure changed the document (-want +got):\n%s", diff)
	}
	// blank pages have no raster to process
	err := e.RemoveBackground(context.Background(), bgFunc(func(context.Context, image.Image) (image.Image, error) { return nil, boom }))
	var rerr *RenderError
	if !errors.As(err, &rerr) {
		t.Errorf("background removal on blank page: %v", err)
	}
}

func TestExportToSink(t *testing.T) {
	e := newEditor()
	var got []byte
	err := e.ExportTo(context.Background(), sinkFunc(func(_ context.Context, b []byte) error {
		got = b
		return nil
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(got, []byte("\x89PNG")) {
		t.Error("sink did not receive a PNG")
	}
}

func TestRemoveBackgroundReplacesRaster(t *testing.T) {
	e := newEditor(WithPages(PageSize{Width: 4, Height: 4}))
	if err := e.SetPageRaster(0, solid(4, 4, color.RGBA{10, 10, 10, 255}), nil); err != nil {
		t.Fatal(err)
	}
	clear := image.NewRGBA(image.Rect(0, 0, 4, 4))
	if err := e.RemoveBackground(context.Background(), bgFunc(func(context.Context, image.Image) (image.Image, error) { return clear, nil })); err != nil {
		t.Fatal(err)
	}
	if p, _ := e.Page(0); p.Raster != image.Image(clear) {
		t.Error("page raster not replaced")
	}
}

func TestInsertRecognizedTextNeedsFontSize(t *testing.T) {
	e := newEditor()
	if err := e.SetToolSetting(tool.NameText, "font_size", "0"); err != nil {
		t.Fatal(err)
	}
	before := e.HistoryLen()
	_, err := e.InsertRecognizedText(context.Background(), ocrFunc(func(context.Context, image.Image) (string, error) { return "hello", nil }))
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "text.size" {
		t.Fatalf("expected text.size validation error, got %v", err)
	}
	if e.HistoryLen() != before {
		t.Error("failed insert entered history")
	}
}

func TestInsertRecognizedText(t *testing.T) {
	e := newEditor()
	before := e.HistoryLen()
	a, err := e.InsertRecognizedText(context.Background(), ocrFunc(func(context.Context, image.Image) (string, error) { return "  hello world \n", nil }))
	if err != nil {
		t.Fatal(err)
	}
	if a.Text.Content != "hello world" || e.HistoryLen() != before+1 {
		t.Errorf("inserted %+v history %d", a, e.HistoryLen())
	}
}

func TestRenderView(t *testing.T) {
	e := newEditor(WithCanvasSize(200, 150))
	img, err := e.Render()
	if err != nil {
		t.Fatal(err)
	}
	if !img.Bounds().Eq(image.Rect(0, 0, 200, 150)) {
		t.Errorf("view bounds = %v", img.Bounds())
	}
}
