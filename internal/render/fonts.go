package render

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// DefaultFont is used when an annotation names no font or an unknown one.
const DefaultFont = "goregular"

var fontData = map[string][]byte{
	"goregular": goregular.TTF,
	"gobold":    gobold.TTF,
	"goitalic":  goitalic.TTF,
	"gomono":    gomono.TTF,
}

// Fonts lists the font names accepted by text annotations.
func Fonts() []string {
	names := make([]string, 0, len(fontData))
	for n := range fontData {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

type faceKey struct {
	name string
	size float64
}

var (
	fontMu  sync.Mutex
	sources = map[string]*text.FontSource{}
	faces   = map[faceKey]text.Face{}
)

func face(name string, size float64) (text.Face, error) {
	if _, ok := fontData[name]; !ok {
		name = DefaultFont
	}
	if size <= 0 {
		size = 1
	}
	fontMu.Lock()
	defer fontMu.Unlock()
	key := faceKey{name, size}
	if f, ok := faces[key]; ok {
		return f, nil
	}
	src, ok := sources[name]
	if !ok {
		var err error
		src, err = text.NewFontSource(fontData[name])
		if err != nil {
			return nil, fmt.Errorf("load font %s: %w", name, err)
		}
		sources[name] = src
	}
	f := src.Face(size)
	faces[key] = f
	return f, nil
}
