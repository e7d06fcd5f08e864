package buff

import (
	"time"

	"github.com/udisondev/rogue2d/internal/game/fx"
	"github.com/udisondev/rogue2d/internal/game/tint"
)

// Instance is a live effect on one entity. It references its definition and
// variant; it owns the cosmetic handles spawned for it.
type Instance struct {
	def     *Definition
	variant int

	Remaining time.Duration
	NextTick  time.Duration

	handle         fx.Handle
	tint           tint.Color
	animationSpeed float64
}

func newInstance(def *Definition, variant int, v Variant, durationMultiplier float64) *Instance {
	return &Instance{
		def:       def,
		variant:   variant,
		Remaining: scaleDuration(v.Duration, durationMultiplier),
		NextTick:  v.TickInterval,
	}
}

// Definition returns the effect definition.
func (i *Instance) Definition() *Definition {
	return i.def
}

// VariantIndex returns the variant index this instance was applied with.
func (i *Instance) VariantIndex() int {
	return i.variant
}

// Variant resolves the instance's variant parameters.
func (i *Instance) Variant() Variant {
	v, _ := i.def.lookup(i.variant)
	return v
}

// Infinite reports whether the instance only ends by explicit removal.
func (i *Instance) Infinite() bool {
	return i.Variant().Duration <= 0
}

// Handle returns the spawned cosmetic effect, if any.
func (i *Instance) Handle() fx.Handle {
	return i.handle
}

func (i *Instance) matches(def *Definition, variant int) bool {
	if i.def != def {
		return false
	}
	return variant < 0 || i.variant == variant
}

func scaleDuration(d time.Duration, m float64) time.Duration {
	if m < 0 {
		m = 0
	}
	if m == 1 {
		return d
	}
	return time.Duration(float64(d) * m)
}
