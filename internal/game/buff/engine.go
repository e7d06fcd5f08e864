package buff

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/rogue2d/internal/game/fx"
	"github.com/udisondev/rogue2d/internal/game/tint"
	"github.com/udisondev/rogue2d/internal/stat"
)

// TickTarget receives periodic damage and healing from active effects.
type TickTarget interface {
	TakeDamage(amount float64)
	RestoreHealth(amount float64)
}

// Options configures an Engine for one stat block flavour.
type Options[S stat.Block[S]] struct {
	Owner uuid.UUID
	Base  S

	// Identity is the multiplicative identity of S.
	Identity S

	// Delta picks the stat delta a variant contributes to this kind of entity.
	Delta func(v *Variant) S

	// Prepare derives the starting point of recalculation from base.
	// Nil means base is used as is.
	Prepare func(base S) S

	// OnRecalculated is called after every recalculation with the new actual stats.
	OnRecalculated func(actual S)

	Layer fx.Layer
	Tint  *tint.Compositor
}

// Engine owns the active effects of one entity and derives its actual stats
// from base stats and those effects.
//
// Not safe for concurrent use: the owning entity serializes access, so an
// Advance and the recalculation it ends with are one atomic unit.
type Engine[S stat.Block[S]] struct {
	owner    uuid.UUID
	base     S
	actual   S
	identity S
	active   []*Instance

	delta          func(v *Variant) S
	prepare        func(base S) S
	onRecalculated func(actual S)

	layer fx.Layer
	tint  *tint.Compositor
}

// NewEngine creates an engine and computes the initial actual stats.
func NewEngine[S stat.Block[S]](opts Options[S]) *Engine[S] {
	layer := opts.Layer
	if layer == nil {
		layer = fx.Nop{}
	}
	comp := opts.Tint
	if comp == nil {
		comp = tint.NewCompositor(opts.Owner, tint.Color{Alpha: 1}, tint.DefaultFactor, layer)
	}
	e := &Engine[S]{
		owner:          opts.Owner,
		base:           opts.Base,
		identity:       opts.Identity,
		active:         make([]*Instance, 0, 8),
		delta:          opts.Delta,
		prepare:        opts.Prepare,
		onRecalculated: opts.OnRecalculated,
		layer:          layer,
		tint:           comp,
	}
	e.Recalculate()
	return e
}

// Base returns the authored stats.
func (e *Engine[S]) Base() S {
	return e.base
}

// Actual returns the stats derived by the last recalculation.
func (e *Engine[S]) Actual() S {
	return e.actual
}

// Tint returns the compositor receiving this engine's cosmetic contributions.
func (e *Engine[S]) Tint() *tint.Compositor {
	return e.tint
}

// Len returns the number of active instances.
func (e *Engine[S]) Len() int {
	return len(e.active)
}

// Active returns a copy of the active instances in application order.
func (e *Engine[S]) Active() []*Instance {
	out := make([]*Instance, len(e.active))
	copy(out, e.active)
	return out
}

// Find returns the first active instance of def with the given variant.
// A negative variant matches any variant.
func (e *Engine[S]) Find(def *Definition, variant int) *Instance {
	for _, inst := range e.active {
		if inst.matches(def, variant) {
			return inst
		}
	}
	return nil
}

// Apply applies def according to its stack policy. Returns true when the
// effect is in place after the call.
//
// Stacking rules (same definition and variant):
//   - StacksFully → another instance
//   - RefreshDurationOnly → existing instance gets a fresh duration, nothing else changes
//   - DoesNotStack → another instance as well (observed behaviour, kept on purpose)
func (e *Engine[S]) Apply(def *Definition, variant int, durationMultiplier float64) bool {
	if def == nil {
		return false
	}
	variant = max(0, variant)
	v := def.Variant(variant)

	switch def.Stack {
	case StacksFully, DoesNotStack:
		e.add(def, variant, v, durationMultiplier)
		return true
	case RefreshDurationOnly:
		if existing := e.Find(def, variant); existing != nil {
			existing.Remaining = scaleDuration(v.Duration, durationMultiplier)
			slog.Debug("buff refreshed",
				"owner", e.owner,
				"buff", def.ID,
				"variant", variant,
				"remaining", existing.Remaining)
			return true
		}
		e.add(def, variant, v, durationMultiplier)
		return true
	default:
		slog.Warn("unknown stack policy, buff ignored",
			"buff", def.ID,
			"policy", def.Stack)
		return false
	}
}

// Remove removes every instance of def (or only the given variant when
// variant >= 0), releasing their cosmetics, then recalculates once.
// Returns false if nothing matched.
func (e *Engine[S]) Remove(def *Definition, variant int) bool {
	n := 0
	removed := 0
	for _, inst := range e.active {
		if inst.matches(def, variant) {
			e.release(inst)
			removed++
			continue
		}
		e.active[n] = inst
		n++
	}
	if removed == 0 {
		return false
	}
	clear(e.active[n:])
	e.active = e.active[:n]

	slog.Debug("buff removed",
		"owner", e.owner,
		"buff", def.ID,
		"variant", variant,
		"count", removed)

	e.Recalculate()
	return true
}

// Clear removes every instance, releasing cosmetics. Returns how many were removed.
func (e *Engine[S]) Clear() int {
	removed := len(e.active)
	for _, inst := range e.active {
		e.release(inst)
	}
	clear(e.active)
	e.active = e.active[:0]
	if removed > 0 {
		e.Recalculate()
	}
	return removed
}

// Advance moves every instance forward by dt: fires due ticks against
// target, expires finished instances, then recalculates exactly once.
func (e *Engine[S]) Advance(dt time.Duration, target TickTarget) {
	expired := 0
	for _, inst := range e.active {
		v := inst.Variant()

		if v.TickInterval > 0 {
			inst.NextTick -= dt
			for inst.NextTick <= 0 {
				e.tick(inst, target)
				inst.NextTick += v.TickInterval
			}
		}

		if v.Duration <= 0 {
			continue
		}
		inst.Remaining -= dt
		if inst.Remaining < 0 {
			expired++
		}
	}

	if expired > 0 {
		e.dropExpired()
	}
	e.Recalculate()
}

// Recalculate derives actual stats from scratch:
// additive deltas are folded in directly, multiplicative deltas are
// multiplied together and applied once at the end.
func (e *Engine[S]) Recalculate() {
	actual := e.base
	if e.prepare != nil {
		actual = e.prepare(actual)
	}

	multiplier := e.identity
	for _, inst := range e.active {
		v := inst.Variant()
		d := e.delta(&v)
		switch inst.def.Modifier {
		case Additive:
			actual = actual.Add(d)
		case Multiplicative:
			multiplier = multiplier.Mul(d)
		default:
			// warned once in add
		}
	}
	e.actual = actual.Mul(multiplier)

	if e.onRecalculated != nil {
		e.onRecalculated(e.actual)
	}
}

func (e *Engine[S]) add(def *Definition, variant int, v Variant, durationMultiplier float64) {
	if !def.Modifier.Valid() {
		slog.Warn("unknown modifier kind, delta ignored",
			"buff", def.ID,
			"modifier", def.Modifier)
	}
	inst := newInstance(def, variant, v, durationMultiplier)
	e.attach(inst, v)
	e.active = append(e.active, inst)

	slog.Debug("buff applied",
		"owner", e.owner,
		"buff", def.ID,
		"variant", variant,
		"remaining", inst.Remaining,
		"stack", def.Stack)

	e.Recalculate()
}

func (e *Engine[S]) tick(inst *Instance, target TickTarget) {
	if target == nil {
		return
	}
	if dmg := inst.def.TickDamage(inst.variant); dmg > 0 {
		target.TakeDamage(dmg)
	}
	if heal := inst.def.TickHeal(inst.variant); heal > 0 {
		target.RestoreHealth(heal)
	}
}

func (e *Engine[S]) dropExpired() {
	n := 0
	for _, inst := range e.active {
		if inst.Variant().Duration > 0 && inst.Remaining < 0 {
			e.release(inst)
			slog.Debug("buff expired",
				"owner", e.owner,
				"buff", inst.def.ID,
				"variant", inst.variant)
			continue
		}
		e.active[n] = inst
		n++
	}
	clear(e.active[n:])
	e.active = e.active[:n]
}

// attach applies the instance's cosmetics: particle effect, tint, animation speed.
func (e *Engine[S]) attach(inst *Instance, v Variant) {
	if v.Effect != "" {
		inst.handle = e.layer.SpawnEffect(e.owner, v.Effect)
	}
	if v.Tint.Visible() {
		inst.tint = v.Tint
		e.tint.Apply(v.Tint)
	}
	inst.animationSpeed = v.AnimationSpeed
	e.tint.ApplyAnimationMultiplier(inst.animationSpeed)
}

// release undoes attach.
func (e *Engine[S]) release(inst *Instance) {
	if inst.handle.Valid() {
		e.layer.ReleaseEffect(inst.handle)
		inst.handle = fx.Handle{}
	}
	if inst.tint.Visible() {
		e.tint.Remove(inst.tint)
	}
	e.tint.RemoveAnimationMultiplier(inst.animationSpeed)
}
