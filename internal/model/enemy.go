package model

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/udisondev/rogue2d/internal/game/buff"
	"github.com/udisondev/rogue2d/internal/game/geom"
	"github.com/udisondev/rogue2d/internal/game/tint"
	"github.com/udisondev/rogue2d/internal/stat"
)

// contactEpsilon — урон меньше этого порога считается нулевым (враг не атакует касанием).
const contactEpsilon = 1e-6

// EnemyConfig describes one enemy as authored in the catalog.
type EnemyConfig struct {
	Name          string
	Base          stat.Enemy
	AttackEffects []buff.Info

	Sprite        tint.Color
	TintFactor    float64
	DamageColor   tint.Color
	FlashDuration time.Duration
	DeathFade     time.Duration

	Position geom.Vec2
}

// DefaultEnemyConfig returns the authored defaults of a fresh enemy.
func DefaultEnemyConfig() EnemyConfig {
	return EnemyConfig{
		Name:          "enemy",
		Base:          stat.DefaultEnemy(),
		Sprite:        tint.MustHex("#ffffff", 1),
		TintFactor:    tint.DefaultFactor,
		DamageColor:   tint.MustHex("#ff0000", 1),
		FlashDuration: 200 * time.Millisecond,
		DeathFade:     600 * time.Millisecond,
	}
}

// Enemy — враг: базовые статы, масштабируемые проклятием и уровнем сессии,
// активные баффы, сопротивления, вспышка урона и затухание после смерти.
type Enemy struct {
	mu sync.Mutex

	id   uuid.UUID
	name string
	pos  geom.Vec2

	health    float64
	dead      bool
	despawned bool
	killed    bool // kill happened under the lock, notify on unlock

	engine  *buff.Engine[stat.Enemy]
	scalers Scalers
	env     Env

	attackEffects []buff.Info

	damageColor   tint.Color
	flashDuration time.Duration
	flashes       []*gween.Tween

	spriteAlpha float64
	deathFade   time.Duration
	fade        *gween.Tween

	knockback Knockback
	chase     geom.Vec2
	chasing   bool

	onKilled func(e *Enemy)
}

// NewEnemy создаёт врага, пересчитывает статы с учётом scalers и
// выставляет здоровье равным фактическому максимуму.
func NewEnemy(cfg EnemyConfig, scalers Scalers, env Env) *Enemy {
	if scalers == nil {
		scalers = NeutralScalers{}
	}
	env = env.withDefaults()

	e := &Enemy{
		id:            uuid.New(),
		name:          cfg.Name,
		pos:           cfg.Position,
		scalers:       scalers,
		env:           env,
		attackEffects: cfg.AttackEffects,
		damageColor:   cfg.DamageColor,
		flashDuration: cfg.FlashDuration,
		spriteAlpha:   cfg.Sprite.Alpha,
		deathFade:     cfg.DeathFade,
	}
	e.engine = buff.NewEngine(buff.Options[stat.Enemy]{
		Owner:    e.id,
		Base:     cfg.Base,
		Identity: stat.EnemyIdentity(),
		Delta:    func(v *buff.Variant) stat.Enemy { return v.Enemy },
		Prepare:  e.scaled,
		Layer:    env.Layer,
		Tint:     tint.NewCompositor(e.id, cfg.Sprite, cfg.TintFactor, env.Layer),
	})
	e.health = e.engine.Actual().MaxHealth
	return e
}

// scaled applies the session curse, then the session level, to base.
func (e *Enemy) scaled(base stat.Enemy) stat.Enemy {
	return base.CurseScaled(e.scalers.CumulativeCurse()).LevelBoosted(e.scalers.CumulativeLevel())
}

// OnKilled registers a callback fired once when the enemy dies (drop trigger).
// It runs after the enemy lock is released.
func (e *Enemy) OnKilled(fn func(e *Enemy)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onKilled = fn
}

func (e *Enemy) ID() uuid.UUID {
	return e.id
}

func (e *Enemy) Name() string {
	return e.name
}

func (e *Enemy) Position() geom.Vec2 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pos
}

// SetPosition teleports the enemy.
func (e *Enemy) SetPosition(p geom.Vec2) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pos = p
}

// Chase makes the enemy walk towards target on the following Advance calls.
func (e *Enemy) Chase(target geom.Vec2) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.chase = target
	e.chasing = true
}

func (e *Enemy) Health() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.health
}

// Actual returns the derived stats.
func (e *Enemy) Actual() stat.Enemy {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.engine.Actual()
}

// Base returns the authored stats.
func (e *Enemy) Base() stat.Enemy {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.engine.Base()
}

// Alive reports whether Kill has not happened yet.
func (e *Enemy) Alive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.dead
}

// Despawned reports whether the death fade has completed and the enemy
// should be removed from the session.
func (e *Enemy) Despawned() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.despawned
}

// Knockback returns the current forced movement.
func (e *Enemy) Knockback() Knockback {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.knockback
}

// Buffs returns the active effect instances.
func (e *Enemy) Buffs() []*buff.Instance {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.engine.Active()
}

// Color returns the composite sprite colour.
func (e *Enemy) Color() tint.Color {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.engine.Tint().Color()
}

// ApplyBuff applies def unless the enemy resists it.
// Freeze and debuff categories are rolled independently against the matching
// resistance; a roll <= resistance rejects the effect.
func (e *Enemy) ApplyBuff(def *buff.Definition, variant int, durationMultiplier float64) bool {
	if def == nil {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.dead {
		return false
	}

	res := e.engine.Actual().Resistances
	if def.Category.Has(buff.CategoryFreeze) && buff.Roll(e.env.Roller, res.Freeze) {
		slog.Debug("buff resisted", "enemy", e.id, "buff", def.ID, "resistance", "freeze")
		return false
	}
	if def.Category.Has(buff.CategoryDebuff) && buff.Roll(e.env.Roller, res.Debuff) {
		slog.Debug("buff resisted", "enemy", e.id, "buff", def.ID, "resistance", "debuff")
		return false
	}

	return e.engine.Apply(def, variant, durationMultiplier)
}

// ApplyBuffInfo rolls info.Probability, then applies the referenced effect.
func (e *Enemy) ApplyBuffInfo(info buff.Info, durationMultiplier float64) bool {
	if !buff.Roll(e.env.Roller, info.Probability) {
		return false
	}
	return e.ApplyBuff(info.Buff, info.Variant, durationMultiplier)
}

// RemoveBuff removes def (every variant when variant < 0).
func (e *Enemy) RemoveBuff(def *buff.Definition, variant int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.engine.Remove(def, variant)
}

// RecalculateStats re-derives actual stats, picking up new session scalers.
// Current health is not rescaled.
func (e *Enemy) RecalculateStats() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.engine.Recalculate()
}

// TakeDamage subtracts amount from health.
//
// A hit exactly equal to the current max health is treated as an instant kill
// and is negated entirely when a roll < kill resistance. Any other amount,
// however large, is never subject to that roll.
func (e *Enemy) TakeDamage(amount float64) {
	e.mu.Lock()
	e.takeDamage(amount)
	e.unlock()
}

// TakeDamageFrom deals damage and pushes the enemy away from source.
// The push is force * actual knockback multiplier; a multiplier of 0 makes the
// enemy immune and a running knockback is not overridden.
func (e *Enemy) TakeDamageFrom(amount float64, source geom.Vec2, force float64, duration time.Duration) {
	e.mu.Lock()
	e.takeDamage(amount)
	if force > 0 && !e.knockback.Active() {
		mult := e.engine.Actual().KnockbackMultiplier
		if mult != 0 {
			dir := e.pos.Sub(source).Normalize()
			e.knockback = Knockback{
				Velocity:  dir.Scale(force * mult),
				Remaining: duration,
			}
		}
	}
	e.unlock()
}

// RestoreHealth adds amount, clamped to actual max health.
func (e *Enemy) RestoreHealth(amount float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.restoreHealth(amount)
}

// Kill starts the death fade and fires the kill callback once.
func (e *Enemy) Kill() {
	e.mu.Lock()
	e.kill()
	e.unlock()
}

// Release drops every active buff, releasing its cosmetics.
// The session calls it when the enemy leaves the world.
func (e *Enemy) Release() int {
	e.mu.Lock()
	defer e.unlock()
	return e.engine.Clear()
}

// Touch is the contact attack: deals actual damage to target and applies the
// enemy's attack effects. Returns false when nothing happened.
func (e *Enemy) Touch(target Combatant) bool {
	e.mu.Lock()
	dmg := e.engine.Actual().Damage
	dead := e.dead
	effects := e.attackEffects
	e.mu.Unlock()

	if dead || target == nil || math.Abs(dmg) < contactEpsilon {
		return false
	}

	target.TakeDamage(dmg)
	for _, info := range effects {
		target.ApplyBuffInfo(info, 1)
	}
	return true
}

// Advance moves the enemy forward by dt: buff timers and ticks, damage flash
// and death fade timers, then movement.
func (e *Enemy) Advance(dt time.Duration) {
	e.mu.Lock()
	defer e.unlock()

	e.engine.Advance(dt, enemyTicks{e})

	secs := float32(dt.Seconds())
	e.advanceFlashes(secs)
	if e.fade != nil && !e.despawned {
		a, done := e.fade.Update(secs)
		e.engine.Tint().SetAlpha(float64(a) * e.spriteAlpha)
		if done {
			e.despawned = true
			released := e.engine.Clear()
			slog.Debug("enemy despawned", "enemy", e.id, "name", e.name, "released_buffs", released)
		}
	}

	switch {
	case e.knockback.Active():
		e.pos = e.pos.Add(e.knockback.Velocity.Scale(dt.Seconds()))
		e.knockback.Remaining -= dt
		if !e.knockback.Active() {
			e.knockback = Knockback{}
		}
	case e.chasing && !e.dead:
		e.pos = moveTowards(e.pos, e.chase, e.engine.Actual().MoveSpeed*dt.Seconds())
	}
}

func (e *Enemy) advanceFlashes(secs float32) {
	n := 0
	for _, tw := range e.flashes {
		if _, done := tw.Update(secs); done {
			e.engine.Tint().Remove(e.damageColor)
			continue
		}
		e.flashes[n] = tw
		n++
	}
	clear(e.flashes[n:])
	e.flashes = e.flashes[:n]
}

// takeDamage is TakeDamage with the lock held.
func (e *Enemy) takeDamage(amount float64) {
	actual := e.engine.Actual()
	if amount == actual.MaxHealth && e.env.Roller.Float64() < actual.Resistances.Kill {
		slog.Debug("instant kill resisted", "enemy", e.id, "amount", amount)
		return
	}

	if amount <= 0 {
		return
	}

	e.health -= amount
	e.flash()
	e.env.Numbers.FloatingText(e.id, math.Floor(amount), e.pos)
	if e.health <= 0 {
		e.kill()
	}
}

func (e *Enemy) restoreHealth(amount float64) {
	e.health = restore(e.health, e.engine.Actual().MaxHealth, amount)
}

func (e *Enemy) flash() {
	if !e.damageColor.Visible() {
		return
	}
	e.engine.Tint().Apply(e.damageColor)
	e.flashes = append(e.flashes, gween.New(0, 1, float32(e.flashDuration.Seconds()), ease.Linear))
}

func (e *Enemy) kill() {
	if e.dead {
		return
	}
	e.dead = true
	e.killed = true
	e.fade = gween.New(1, 0, float32(e.deathFade.Seconds()), ease.Linear)
	slog.Debug("enemy killed", "enemy", e.id, "name", e.name, "health", e.health)
}

// unlock releases the enemy and fires the kill callback collected under the lock.
func (e *Enemy) unlock() {
	killed := e.killed
	e.killed = false
	fn := e.onKilled
	e.mu.Unlock()

	if killed && fn != nil {
		fn(e)
	}
}

// enemyTicks routes buff ticks into the locked damage path.
type enemyTicks struct{ e *Enemy }

func (t enemyTicks) TakeDamage(amount float64)    { t.e.takeDamage(amount) }
func (t enemyTicks) RestoreHealth(amount float64) { t.e.restoreHealth(amount) }

// moveTowards moves from towards to by at most maxStep without overshooting.
func moveTowards(from, to geom.Vec2, maxStep float64) geom.Vec2 {
	d := to.Sub(from)
	dist := d.Len()
	if dist <= maxStep || dist == 0 {
		return to
	}
	return from.Add(d.Scale(maxStep / dist))
}
