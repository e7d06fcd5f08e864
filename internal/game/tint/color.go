// Package tint composes the sprite colour and animation speed of an entity
// from the cosmetic contributions of its active buffs and hit flashes.
package tint

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// Color is an RGB colour with a blend weight. Alpha 0 means "no tint".
type Color struct {
	RGB   colorful.Color
	Alpha float64
}

// None is the empty tint.
var None = Color{}

// Hex builds a Color from a "#rrggbb" string and an alpha weight.
func Hex(s string, alpha float64) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return None, fmt.Errorf("parsing tint %q: %w", s, err)
	}
	return Color{RGB: c, Alpha: alpha}, nil
}

// MustHex is Hex for package-level defaults and tests.
func MustHex(s string, alpha float64) Color {
	c, err := Hex(s, alpha)
	if err != nil {
		panic(err)
	}
	return c
}

// Visible reports whether c contributes anything to the composite.
func (c Color) Visible() bool {
	return c.Alpha > 0
}

type colorYAML struct {
	Color string  `yaml:"color"`
	Alpha float64 `yaml:"alpha"`
}

// UnmarshalYAML decodes {color: "#rrggbb", alpha: 0.5}.
func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	var raw colorYAML
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.Color == "" {
		*c = None
		return nil
	}
	parsed, err := Hex(raw.Color, raw.Alpha)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
