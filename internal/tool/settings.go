package tool

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/example/canvasmark/internal/annotation"
)

// SettingError reports a rejected tool setting.
type SettingError struct {
	Tool  Name
	Key   string
	Value string
	Err   error
}

func (e *SettingError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("tool %s has no setting %q", e.Tool, e.Key)
	}
	return fmt.Sprintf("tool %s: %s=%q: %v", e.Tool, e.Key, e.Value, e.Err)
}

func (e *SettingError) Unwrap() error { return e.Err }

// Keys lists the setting keys understood by the named tool.
func Keys(n Name) []string {
	return slices.Sorted(maps.Keys(Values(Default(n))))
}

func parseLength(v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if f < 0 {
		return 0, fmt.Errorf("must not be negative")
	}
	return f, nil
}

func parseOpacity(v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if f < 0 || f > 1 {
		return 0, fmt.Errorf("must be within [0,1]")
	}
	return f, nil
}

func fmtFloat(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

// Apply returns t with key set to value. t itself is not modified.
func Apply(t Tool, key, value string) (Tool, error) {
	orig := t
	fail := func(err error) (Tool, error) {
		return orig, &SettingError{Tool: orig.Name(), Key: key, Value: value, Err: err}
	}
	var err error
	switch v := t.(type) {
	case Text:
		switch key {
		case "color":
			v.Color, err = annotation.ParseColor(value)
		case "font":
			v.Font = value
		case "font_size":
			v.Size, err = parseLength(value)
		case "align":
			v.Align, err = annotation.ParseAlign(value)
		case "opacity":
			v.Opacity, err = parseOpacity(value)
		case "text":
			v.Content = value
		default:
			err = errUnknownKey
		}
		t = v
	case Rectangle:
		switch key {
		case "color":
			v.Stroke, err = annotation.ParseColor(value)
		case "fill":
			v.Fill, err = annotation.ParseColor(value)
		case "width":
			v.Width, err = parseLength(value)
		case "opacity":
			v.Opacity, err = parseOpacity(value)
		default:
			err = errUnknownKey
		}
		t = v
	case Circle:
		switch key {
		case "color":
			v.Stroke, err = annotation.ParseColor(value)
		case "fill":
			v.Fill, err = annotation.ParseColor(value)
		case "width":
			v.Width, err = parseLength(value)
		case "opacity":
			v.Opacity, err = parseOpacity(value)
		default:
			err = errUnknownKey
		}
		t = v
	case Line:
		v.Stroke, v.Width, v.Opacity, err = applyStroke(v.Stroke, v.Width, v.Opacity, key, value)
		t = v
	case Arrow:
		v.Stroke, v.Width, v.Opacity, err = applyStroke(v.Stroke, v.Width, v.Opacity, key, value)
		t = v
	case Path:
		v.Stroke, v.Width, v.Opacity, err = applyStroke(v.Stroke, v.Width, v.Opacity, key, value)
		t = v
	case Highlight:
		switch key {
		case "color":
			v.Color, err = annotation.ParseColor(value)
		case "opacity":
			v.Opacity, err = parseOpacity(value)
		default:
			err = errUnknownKey
		}
		t = v
	case Stamp:
		switch key {
		case "color":
			v.Color, err = annotation.ParseColor(value)
		case "label":
			if value == "" {
				err = fmt.Errorf("label cannot be empty")
			}
			v.Label = value
		case "font_size":
			v.Size, err = parseLength(value)
		case "width":
			v.Width, err = parseLength(value)
		case "opacity":
			v.Opacity, err = parseOpacity(value)
		default:
			err = errUnknownKey
		}
		t = v
	case Select:
		return fail(nil)
	}
	if errors.Is(err, errUnknownKey) {
		return fail(nil)
	}
	if err != nil {
		return fail(err)
	}
	return t, nil
}

var errUnknownKey = errors.New("unknown key")

func applyStroke(c annotation.Color, w, o float64, key, value string) (annotation.Color, float64, float64, error) {
	var err error
	switch key {
	case "color":
		var nc annotation.Color
		if nc, err = annotation.ParseColor(value); err == nil {
			c = nc
		}
	case "width":
		var nw float64
		if nw, err = parseLength(value); err == nil {
			w = nw
		}
	case "opacity":
		var no float64
		if no, err = parseOpacity(value); err == nil {
			o = no
		}
	default:
		err = errUnknownKey
	}
	return c, w, o, err
}

// Values returns the settings of t keyed like Apply.
func Values(t Tool) map[string]string {
	switch v := t.(type) {
	case Text:
		return map[string]string{
			"color": v.Color.String(), "font": v.Font, "font_size": fmtFloat(v.Size),
			"align": string(v.Align), "opacity": fmtFloat(v.Opacity), "text": v.Content,
		}
	case Rectangle:
		return map[string]string{"color": v.Stroke.String(), "fill": v.Fill.String(), "width": fmtFloat(v.Width), "opacity": fmtFloat(v.Opacity)}
	case Circle:
		return map[string]string{"color": v.Stroke.String(), "fill": v.Fill.String(), "width": fmtFloat(v.Width), "opacity": fmtFloat(v.Opacity)}
	case Line:
		return map[string]string{"color": v.Stroke.String(), "width": fmtFloat(v.Width), "opacity": fmtFloat(v.Opacity)}
	case Arrow:
		return map[string]string{"color": v.Stroke.String(), "width": fmtFloat(v.Width), "opacity": fmtFloat(v.Opacity)}
	case Path:
		return map[string]string{"color": v.Stroke.String(), "width": fmtFloat(v.Width), "opacity": fmtFloat(v.Opacity)}
	case Highlight:
		return map[string]string{"color": v.Color.String(), "opacity": fmtFloat(v.Opacity)}
	case Stamp:
		return map[string]string{
			"color": v.Color.String(), "label": v.Label, "font_size": fmtFloat(v.Size),
			"width": fmtFloat(v.Width), "opacity": fmtFloat(v.Opacity),
		}
	case Select:
	}
	return map[string]string{}
}

// Settings holds the current configuration of every tool.
type Settings struct {
	tools map[Name]Tool
}

// NewSettings returns factory defaults for every tool.
func NewSettings() *Settings {
	s := &Settings{tools: map[Name]Tool{}}
	for _, n := range Names() {
		s.tools[n] = Default(n)
	}
	return s
}

// Get returns the configured tool.
func (s *Settings) Get(n Name) Tool {
	if t, ok := s.tools[n]; ok {
		return t
	}
	return Default(n)
}

// Set applies one setting. On error the settings are unchanged.
func (s *Settings) Set(n Name, key, value string) error {
	t, err := Apply(s.Get(n), key, value)
	if err != nil {
		return err
	}
	s.tools[n] = t
	return nil
}

// Clone returns an independent copy. Tool variants are values.
func (s *Settings) Clone() *Settings {
	return &Settings{tools: maps.Clone(s.tools)}
}

// MarshalJSON encodes the settings as tool -> key -> value.
func (s *Settings) MarshalJSON() ([]byte, error) {
	out := map[Name]map[string]string{}
	for _, n := range Names() {
		if vals := Values(s.Get(n)); len(vals) > 0 {
			out[n] = vals
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes settings written by MarshalJSON over the defaults.
func (s *Settings) UnmarshalJSON(b []byte) error {
	var in map[string]map[string]string
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	next := NewSettings()
	for name, vals := range in {
		n, err := ParseName(name)
		if err != nil {
			return err
		}
		for _, k := range slices.Sorted(maps.Keys(vals)) {
			if err := next.Set(n, k, vals[k]); err != nil {
				return err
			}
		}
	}
	s.tools = next.tools
	return nil
}
