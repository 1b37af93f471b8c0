package layer

import "fmt"

// BlendMode selects how a layer is composited over the layers below it.
type BlendMode string

const (
	BlendNormal   BlendMode = "normal"
	BlendMultiply BlendMode = "multiply"
	BlendScreen   BlendMode = "screen"
	BlendOverlay  BlendMode = "overlay"
)

// BlendModes lists the supported modes.
func BlendModes() []BlendMode {
	return []BlendMode{BlendNormal, BlendMultiply, BlendScreen, BlendOverlay}
}

// ParseBlendMode validates s. The empty string means normal.
func ParseBlendMode(s string) (BlendMode, error) {
	if s == "" {
		return BlendNormal, nil
	}
	for _, m := range BlendModes() {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown blend mode %q", s)
}
