package theme

import (
	"image/color"

	"github.com/example/canvasmark/internal/annotation"
	"github.com/example/canvasmark/internal/render"
)

// Theme defines the colours of the editor window. None of them reach an
// exported image.
type Theme struct {
	Name string

	// Window
	Background color.RGBA // behind toolbar and canvas
	Foreground color.RGBA // status line text

	// Toolbar
	ToolbarBackground     color.RGBA
	ButtonBackground      color.RGBA
	ButtonBackgroundHover color.RGBA
	ButtonBackgroundPress color.RGBA // active tool
	ButtonText            color.RGBA
	ButtonBorder          color.RGBA

	// Canvas
	CheckerLight color.RGBA
	CheckerDark  color.RGBA
	Preview      color.RGBA // dashed drag outline
	Selection    color.RGBA
	Handle       color.RGBA
}

// Default returns the built-in dark theme.
func Default() *Theme {
	return &Theme{
		Name:                  "Default",
		Background:            color.RGBA{0x2b, 0x2b, 0x2b, 255},
		Foreground:            color.RGBA{0xee, 0xee, 0xee, 255},
		ToolbarBackground:     color.RGBA{0x33, 0x33, 0x33, 255},
		ButtonBackground:      color.RGBA{0x44, 0x44, 0x44, 255},
		ButtonBackgroundHover: color.RGBA{0x55, 0x55, 0x55, 255},
		ButtonBackgroundPress: color.RGBA{0x1e, 0x90, 0xff, 255},
		ButtonText:            color.RGBA{0xff, 0xff, 0xff, 255},
		ButtonBorder:          color.RGBA{0x22, 0x22, 0x22, 255},
		CheckerLight:          color.RGBA{0x44, 0x44, 0x44, 255},
		CheckerDark:           color.RGBA{0x3a, 0x3a, 0x3a, 255},
		Preview:               color.RGBA{0x1e, 0x90, 0xff, 255},
		Selection:             color.RGBA{0x1e, 0x90, 0xff, 255},
		Handle:                color.RGBA{0xff, 0xff, 0xff, 255},
	}
}

// Chrome returns the canvas colours used by the render pipeline.
func (t *Theme) Chrome() render.Chrome {
	return render.Chrome{
		Backdrop:    toColor(t.CheckerDark),
		BackdropAlt: toColor(t.CheckerLight),
		Preview:     toColor(t.Preview),
		Selection:   toColor(t.Selection),
		Handle:      toColor(t.Handle),
	}
}

func toColor(c color.RGBA) annotation.Color {
	// theme colours are not premultiplied
	return annotation.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}
