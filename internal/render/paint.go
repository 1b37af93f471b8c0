package render

import (
	"math"
	"strings"

	"github.com/gogpu/gg"

	"github.com/example/canvasmark/internal/annotation"
)

// stroke describes how an outline is painted. dash is empty for solid lines.
type stroke struct {
	override *annotation.Color
	dash     []float64
}

func (s stroke) color(c annotation.Color, opacity float64) annotation.Color {
	if s.override != nil {
		return s.override.WithAlpha(opacity)
	}
	return c.WithAlpha(opacity)
}

func fillWith(c *gg.Context, col annotation.Color) error {
	if col.IsNone() {
		c.ClearPath()
		return nil
	}
	setColor(c, col)
	return c.Fill()
}

func strokeWith(c *gg.Context, col annotation.Color, width float64, s stroke) error {
	if col.IsNone() || width <= 0 {
		c.ClearPath()
		return nil
	}
	setColor(c, col)
	c.SetLineWidth(width)
	if len(s.dash) > 0 {
		c.SetLineCap(gg.LineCapButt)
		c.SetDash(s.dash...)
	} else {
		c.SetLineCap(gg.LineCapRound)
		c.ClearDash()
	}
	return c.Stroke()
}

// paint draws a onto c in document space.
func paint(c *gg.Context, a annotation.Annotation, s stroke) error {
	st := a.Style
	line := s.color(st.Stroke, st.Opacity)
	fill := st.Fill.WithAlpha(st.Opacity)
	c.SetLineJoin(gg.LineJoinRound)

	switch a.Kind {
	case annotation.KindRectangle:
		c.DrawRectangle(a.X, a.Y, a.Width, a.Height)
		if err := fillWith(c, fill); err != nil {
			return err
		}
		c.DrawRectangle(a.X, a.Y, a.Width, a.Height)
		return strokeWith(c, line, st.StrokeWidth, s)
	case annotation.KindCircle:
		ctr := a.Bounds().Center()
		c.DrawEllipse(ctr.X, ctr.Y, a.Width/2, a.Height/2)
		if err := fillWith(c, fill); err != nil {
			return err
		}
		c.DrawEllipse(ctr.X, ctr.Y, a.Width/2, a.Height/2)
		return strokeWith(c, line, st.StrokeWidth, s)
	case annotation.KindHighlight:
		c.DrawRectangle(a.X, a.Y, a.Width, a.Height)
		if s.override != nil {
			return strokeWith(c, line, 1, s)
		}
		return fillWith(c, fill)
	case annotation.KindLine:
		c.DrawLine(a.Segment.Start.X, a.Segment.Start.Y, a.Segment.End.X, a.Segment.End.Y)
		return strokeWith(c, line, st.StrokeWidth, s)
	case annotation.KindArrow:
		return paintArrow(c, a, line, s)
	case annotation.KindPath:
		if len(a.Points) == 0 {
			return nil
		}
		c.MoveTo(a.Points[0].X, a.Points[0].Y)
		for _, p := range a.Points[1:] {
			c.LineTo(p.X, p.Y)
		}
		return strokeWith(c, line, st.StrokeWidth, s)
	case annotation.KindText:
		return paintText(c, a, line)
	case annotation.KindStamp:
		return paintStamp(c, a, line, s)
	}
	return nil
}

// arrowHead returns the two barb end points for a head at tip pointing away
// from tail.
func arrowHead(tail, tip annotation.Point, width float64) (annotation.Point, annotation.Point) {
	size := math.Max(10, width*4)
	angle := math.Atan2(tip.Y-tail.Y, tip.X-tail.X)
	const spread = math.Pi / 7
	left := annotation.Pt(tip.X-size*math.Cos(angle-spread), tip.Y-size*math.Sin(angle-spread))
	right := annotation.Pt(tip.X-size*math.Cos(angle+spread), tip.Y-size*math.Sin(angle+spread))
	return left, right
}

func paintArrow(c *gg.Context, a annotation.Annotation, col annotation.Color, s stroke) error {
	start, end := a.Segment.Start, a.Segment.End
	c.DrawLine(start.X, start.Y, end.X, end.Y)
	if err := strokeWith(c, col, a.Style.StrokeWidth, s); err != nil {
		return err
	}
	if start == end {
		return nil
	}
	l, r := arrowHead(start, end, a.Style.StrokeWidth)
	c.MoveTo(end.X, end.Y)
	c.LineTo(l.X, l.Y)
	c.LineTo(r.X, r.Y)
	c.ClosePath()
	if len(s.dash) > 0 {
		return strokeWith(c, col, math.Max(1, a.Style.StrokeWidth/2), s)
	}
	return fillWith(c, col)
}

func paintText(c *gg.Context, a annotation.Annotation, col annotation.Color) error {
	if col.IsNone() || a.Text == nil {
		return nil
	}
	f, err := face(a.Text.Font, a.Text.Size)
	if err != nil {
		return err
	}
	c.SetFont(f)
	setColor(c, col)
	x, ax := a.X, 0.0
	switch a.Text.Align {
	case annotation.AlignCenter:
		x, ax = a.X+a.Width/2, 0.5
	case annotation.AlignRight:
		x, ax = a.X+a.Width, 1
	}
	lineHeight := a.Text.Size * 1.2
	for i, ln := range strings.Split(a.Text.Content, "\n") {
		baseline := a.Y + a.Text.Size + float64(i)*lineHeight
		c.DrawStringAnchored(ln, x, baseline, ax, 0)
	}
	return nil
}

func paintStamp(c *gg.Context, a annotation.Annotation, col annotation.Color, s stroke) error {
	c.DrawRectangle(a.X, a.Y, a.Width, a.Height)
	if err := strokeWith(c, col, a.Style.StrokeWidth, s); err != nil {
		return err
	}
	if col.IsNone() {
		return nil
	}
	size := a.Height / 1.7
	f, err := face(DefaultFont, size)
	if err != nil {
		return err
	}
	c.SetFont(f)
	setColor(c, col)
	ctr := a.Bounds().Center()
	c.DrawStringAnchored(a.Label, ctr.X, ctr.Y+size*0.35, 0.5, 0)
	return nil
}

// setColor passes straight alpha to gg; gg.FromColor would hand it
// premultiplied components.
func setColor(c *gg.Context, col annotation.Color) {
	c.SetRGBA(float64(col.R)/255, float64(col.G)/255, float64(col.B)/255, float64(col.A)/255)
}
