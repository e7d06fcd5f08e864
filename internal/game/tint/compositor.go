package tint

import (
	"math"

	"github.com/google/uuid"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/udisondev/rogue2d/internal/game/fx"
)

const (
	// DefaultFactor weights every tint contribution against the original colour.
	DefaultFactor = 4.0

	// minAnimationFactor replaces near-zero animation factors so that removing
	// a "freeze" factor can divide it back out.
	minAnimationFactor = 0.000001
)

// Compositor keeps the list of tint contributions applied to an entity and
// pushes the blended result to the fx layer on every change.
//
// Not safe for concurrent use; owned by a single entity.
type Compositor struct {
	owner    uuid.UUID
	layer    fx.Layer
	original colorful.Color
	alpha    float64
	factor   float64
	tints    []Color
	speed    float64
}

// NewCompositor creates a compositor for owner with the sprite's original colour.
func NewCompositor(owner uuid.UUID, original Color, factor float64, layer fx.Layer) *Compositor {
	if layer == nil {
		layer = fx.Nop{}
	}
	if factor <= 0 {
		factor = DefaultFactor
	}
	return &Compositor{
		owner:    owner,
		layer:    layer,
		original: original.RGB,
		alpha:    original.Alpha,
		factor:   factor,
		speed:    1,
	}
}

// Apply adds a tint contribution. Invisible tints are ignored.
func (c *Compositor) Apply(t Color) {
	if !t.Visible() {
		return
	}
	c.tints = append(c.tints, t)
	c.push()
}

// Remove drops one contribution equal to t. Returns false if none matched.
func (c *Compositor) Remove(t Color) bool {
	for i, existing := range c.tints {
		if existing == t {
			c.tints = append(c.tints[:i], c.tints[i+1:]...)
			c.push()
			return true
		}
	}
	return false
}

// Contributions returns the number of active tint contributions.
func (c *Compositor) Contributions() int {
	return len(c.tints)
}

// Color returns the blended colour:
// (original + Σ rgb·a·F) / (1 + Σ a·F), keeping the original alpha.
func (c *Compositor) Color() Color {
	r, g, b := c.original.R, c.original.G, c.original.B
	weight := 1.0
	for _, t := range c.tints {
		w := t.Alpha * c.factor
		r += t.RGB.R * w
		g += t.RGB.G * w
		b += t.RGB.B * w
		weight += w
	}
	return Color{
		RGB:   colorful.Color{R: r / weight, G: g / weight, B: b / weight},
		Alpha: c.alpha,
	}
}

// SetAlpha changes the sprite's own opacity (death fade).
func (c *Compositor) SetAlpha(a float64) {
	c.alpha = a
	c.push()
}

// ApplyAnimationMultiplier multiplies the animation speed by factor.
func (c *Compositor) ApplyAnimationMultiplier(factor float64) {
	c.speed *= safeFactor(factor)
	c.layer.SetAnimationSpeed(c.owner, c.speed)
}

// RemoveAnimationMultiplier divides a previously applied factor back out.
func (c *Compositor) RemoveAnimationMultiplier(factor float64) {
	c.speed /= safeFactor(factor)
	c.layer.SetAnimationSpeed(c.owner, c.speed)
}

// AnimationSpeed returns the current composite animation speed.
func (c *Compositor) AnimationSpeed() float64 {
	return c.speed
}

func (c *Compositor) push() {
	col := c.Color()
	c.layer.SetTint(c.owner, col.RGB, col.Alpha)
}

func safeFactor(f float64) float64 {
	if math.Abs(f) < minAnimationFactor {
		return minAnimationFactor
	}
	return f
}
