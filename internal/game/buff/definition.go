package buff

import (
	"log/slog"
	"time"

	"github.com/udisondev/rogue2d/internal/game/tint"
	"github.com/udisondev/rogue2d/internal/stat"
)

// Variant is one parameter set of a definition (usually one per level).
type Variant struct {
	Name string

	Duration     time.Duration // <= 0 never expires on its own
	TickInterval time.Duration // <= 0 never ticks

	DamagePerSecond float64
	HealPerSecond   float64

	// Cosmetics.
	AnimationSpeed float64
	Tint           tint.Color
	Effect         string

	// Stat deltas. Neutral is 0 for additive definitions, 1 for multiplicative ones.
	Player stat.Character
	Enemy  stat.Enemy
}

// DefaultVariant returns the values a freshly authored variant starts from.
func DefaultVariant() Variant {
	return Variant{
		Name:           "Level 1",
		Duration:       10 * time.Second,
		TickInterval:   250 * time.Millisecond,
		AnimationSpeed: 1,
	}
}

// NeutralVariant returns a variant with no stat effect for the given kind.
func NeutralVariant(kind ModifierKind) Variant {
	v := DefaultVariant()
	if kind == Multiplicative {
		v.Player = stat.CharacterIdentity()
		v.Enemy = stat.EnemyIdentity()
	}
	return v
}

// Definition is an immutable, authored effect.
type Definition struct {
	ID       string
	Name     string
	Category Category
	Stack    StackPolicy
	Modifier ModifierKind
	Variants []Variant
}

// Variant returns the variant at index i. Negative indexes select the first
// variant. A missing variant yields an inert one and a warning.
func (d *Definition) Variant(i int) Variant {
	v, ok := d.lookup(i)
	if !ok {
		slog.Warn("buff variant missing, using inert variant",
			"buff", d.ID,
			"variant", i,
			"variants", len(d.Variants))
	}
	return v
}

// HasVariant reports whether index i resolves to an authored variant.
func (d *Definition) HasVariant(i int) bool {
	_, ok := d.lookup(i)
	return ok
}

// TickDamage returns the damage dealt per tick: damagePerSecond * tickInterval.
func (d *Definition) TickDamage(i int) float64 {
	v, _ := d.lookup(i)
	return v.DamagePerSecond * v.TickInterval.Seconds()
}

// TickHeal returns the health restored per tick: healPerSecond * tickInterval.
func (d *Definition) TickHeal(i int) float64 {
	v, _ := d.lookup(i)
	return v.HealPerSecond * v.TickInterval.Seconds()
}

func (d *Definition) lookup(i int) (Variant, bool) {
	i = max(0, i)
	if i >= len(d.Variants) {
		return d.inert(), false
	}
	return d.Variants[i], true
}

func (d *Definition) inert() Variant {
	v := NeutralVariant(d.Modifier)
	v.Name = "inert"
	v.TickInterval = 0
	return v
}

// Info is a reference to an effect as carried by weapons and enemy attacks:
// which definition, which variant and the chance it applies on hit.
type Info struct {
	Buff        *Definition
	Variant     int
	Probability float64
}
