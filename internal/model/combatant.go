package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/rogue2d/internal/game/buff"
	"github.com/udisondev/rogue2d/internal/game/fx"
	"github.com/udisondev/rogue2d/internal/game/geom"
)

// Combatant — общий набор возможностей игрока и врага.
// Оружие, контактные атаки врагов и сессия работают только через него.
type Combatant interface {
	ID() uuid.UUID
	Position() geom.Vec2
	Alive() bool

	ApplyBuff(def *buff.Definition, variant int, durationMultiplier float64) bool
	ApplyBuffInfo(info buff.Info, durationMultiplier float64) bool
	RemoveBuff(def *buff.Definition, variant int) bool

	TakeDamage(amount float64)
	RestoreHealth(amount float64)
	Kill()
	RecalculateStats()
}

// Scalers exposes the session-wide aggregates that scale enemy difficulty.
type Scalers interface {
	CumulativeCurse() float64
	CumulativeLevel() float64
}

// NeutralScalers is the single-player-at-level-1 case: both aggregates are 1.
type NeutralScalers struct{}

func (NeutralScalers) CumulativeCurse() float64 { return 1 }
func (NeutralScalers) CumulativeLevel() float64 { return 1 }

// Env carries the collaborators an entity reports to.
// Zero fields fall back to no-op implementations and the global roller.
type Env struct {
	Layer   fx.Layer
	Numbers fx.Numbers
	Roller  buff.Roller
}

func (e Env) withDefaults() Env {
	if e.Layer == nil {
		e.Layer = fx.Nop{}
	}
	if e.Numbers == nil {
		e.Numbers = fx.Nop{}
	}
	if e.Roller == nil {
		e.Roller = buff.GlobalRoller{}
	}
	return e
}

// Knockback is a forced velocity that overrides normal movement while it lasts.
type Knockback struct {
	Velocity  geom.Vec2
	Remaining time.Duration
}

// Active reports whether the knockback still moves its target.
func (k Knockback) Active() bool {
	return k.Remaining > 0
}

// restore adds amount to health without exceeding maxHealth.
// Health already at or above the cap is left alone.
func restore(health, maxHealth, amount float64) float64 {
	if health >= maxHealth {
		return health
	}
	return min(maxHealth, health+amount)
}
