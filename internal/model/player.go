package model

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/rogue2d/internal/game/buff"
	"github.com/udisondev/rogue2d/internal/game/geom"
	"github.com/udisondev/rogue2d/internal/game/tint"
	"github.com/udisondev/rogue2d/internal/stat"
)

// defaultExperienceCap is used when a character has no level ranges.
const defaultExperienceCap = 5

// LevelRange sets how much the experience cap grows for levels in [Start, End].
type LevelRange struct {
	Start       int `yaml:"start_level"`
	End         int `yaml:"end_level"`
	CapIncrease int `yaml:"experience_cap_increase"`
}

// PlayerConfig describes a playable character.
type PlayerConfig struct {
	Name        string
	Base        stat.Character
	LevelRanges []LevelRange

	Invincibility time.Duration
	DamageEffect  string
	BlockedEffect string

	Sprite     tint.Color
	TintFactor float64

	Position geom.Vec2
}

// DefaultPlayerConfig returns the authored defaults of a fresh character.
func DefaultPlayerConfig() PlayerConfig {
	return PlayerConfig{
		Name: "player",
		Base: stat.DefaultCharacter(),
		LevelRanges: []LevelRange{
			{Start: 1, End: 20, CapIncrease: 10},
			{Start: 21, End: 40, CapIncrease: 13},
			{Start: 41, End: 1000, CapIncrease: 16},
		},
		Invincibility: 500 * time.Millisecond,
		DamageEffect:  "blood_splash",
		BlockedEffect: "armor_spark",
		Sprite:        tint.MustHex("#ffffff", 1),
		TintFactor:    tint.DefaultFactor,
	}
}

// Collector is the pickup component whose radius follows the magnet stat.
type Collector interface {
	SetRadius(radius float64)
}

// PlayerHooks are notified after the player lock is released.
type PlayerHooks struct {
	// OnLevelUp fires once per Player call that gained levels.
	OnLevelUp func(p *Player, level int)
	// OnCurseChanged fires when a recalculation changed actual curse.
	OnCurseChanged func(p *Player)
	// OnKilled fires once, on the first death.
	OnKilled func(p *Player, level int)

	Collector Collector
}

type passive struct {
	id    string
	boost stat.Character
}

// playerEvents — события, накопленные под блокировкой игрока и
// разосланные после её снятия.
type playerEvents struct {
	leveled      bool
	curseChanged bool
	killed       bool
}

// Player — игровой персонаж: базовые статы, пассивные предметы, активные баффы,
// опыт и уровни, кадры неуязвимости, регенерация.
type Player struct {
	mu sync.Mutex

	id   uuid.UUID
	name string
	pos  geom.Vec2

	health float64
	dead   bool

	engine   *buff.Engine[stat.Character]
	passives []passive
	env      Env
	hooks    PlayerHooks

	level         int
	experience    int
	experienceCap int
	levelRanges   []LevelRange

	invincibility time.Duration
	invincibleFor time.Duration
	damageEffect  string
	blockedEffect string

	curse   float64
	pending playerEvents
}

// NewPlayer создаёт игрока первого уровня с полным здоровьем.
func NewPlayer(cfg PlayerConfig, env Env, hooks PlayerHooks) *Player {
	env = env.withDefaults()

	p := &Player{
		id:            uuid.New(),
		name:          cfg.Name,
		pos:           cfg.Position,
		env:           env,
		hooks:         hooks,
		level:         1,
		levelRanges:   cfg.LevelRanges,
		experienceCap: defaultExperienceCap,
		invincibility: cfg.Invincibility,
		damageEffect:  cfg.DamageEffect,
		blockedEffect: cfg.BlockedEffect,
		curse:         cfg.Base.Curse,
	}
	if len(cfg.LevelRanges) > 0 {
		p.experienceCap = cfg.LevelRanges[0].CapIncrease
	}

	p.engine = buff.NewEngine(buff.Options[stat.Character]{
		Owner:          p.id,
		Base:           cfg.Base,
		Identity:       stat.CharacterIdentity(),
		Delta:          func(v *buff.Variant) stat.Character { return v.Player },
		Prepare:        p.withPassives,
		OnRecalculated: p.recalculated,
		Layer:          env.Layer,
		Tint:           tint.NewCompositor(p.id, cfg.Sprite, cfg.TintFactor, env.Layer),
	})
	p.health = p.engine.Actual().MaxHealth
	return p
}

// withPassives adds passive item boosts to base before buffs are folded in.
func (p *Player) withPassives(base stat.Character) stat.Character {
	for _, ps := range p.passives {
		base = base.Add(ps.boost)
	}
	return base
}

// recalculated propagates stats with external dependents.
func (p *Player) recalculated(actual stat.Character) {
	if p.hooks.Collector != nil {
		p.hooks.Collector.SetRadius(actual.Magnet)
	}
	if actual.Curse != p.curse {
		p.curse = actual.Curse
		p.pending.curseChanged = true
	}
}

func (p *Player) ID() uuid.UUID {
	return p.id
}

func (p *Player) Name() string {
	return p.name
}

func (p *Player) Position() geom.Vec2 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pos
}

// SetPosition teleports the player.
func (p *Player) SetPosition(pos geom.Vec2) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pos = pos
}

func (p *Player) Health() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.health
}

// Actual returns the derived stats.
func (p *Player) Actual() stat.Character {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.engine.Actual()
}

// Base returns the authored stats.
func (p *Player) Base() stat.Character {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.engine.Base()
}

func (p *Player) Alive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.dead
}

func (p *Player) Level() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

// Experience returns the experience accumulated towards the next level and the cap.
func (p *Player) Experience() (current, capacity int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.experience, p.experienceCap
}

// Invincible reports whether invincibility frames are running.
func (p *Player) Invincible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.invincibleFor > 0
}

// Buffs returns the active effect instances.
func (p *Player) Buffs() []*buff.Instance {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.engine.Active()
}

// Color returns the composite sprite colour.
func (p *Player) Color() tint.Color {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.engine.Tint().Color()
}

// SetPassive installs or replaces the boost of passive item id.
func (p *Player) SetPassive(id string, boost stat.Character) {
	p.mu.Lock()
	defer p.unlock()

	for i := range p.passives {
		if p.passives[i].id == id {
			p.passives[i].boost = boost
			p.engine.Recalculate()
			return
		}
	}
	p.passives = append(p.passives, passive{id: id, boost: boost})
	p.engine.Recalculate()
}

// RemovePassive drops passive item id. Returns false if it was not installed.
func (p *Player) RemovePassive(id string) bool {
	p.mu.Lock()
	defer p.unlock()

	for i := range p.passives {
		if p.passives[i].id == id {
			p.passives = append(p.passives[:i], p.passives[i+1:]...)
			p.engine.Recalculate()
			return true
		}
	}
	return false
}

// ApplyBuff applies def following its stack policy. Dead players accept nothing.
func (p *Player) ApplyBuff(def *buff.Definition, variant int, durationMultiplier float64) bool {
	if def == nil {
		return false
	}

	p.mu.Lock()
	defer p.unlock()

	if p.dead {
		return false
	}
	return p.engine.Apply(def, variant, durationMultiplier)
}

// ApplyBuffInfo rolls info.Probability, then applies the referenced effect.
func (p *Player) ApplyBuffInfo(info buff.Info, durationMultiplier float64) bool {
	if !buff.Roll(p.env.Roller, info.Probability) {
		return false
	}
	return p.ApplyBuff(info.Buff, info.Variant, durationMultiplier)
}

// RemoveBuff removes def (every variant when variant < 0).
func (p *Player) RemoveBuff(def *buff.Definition, variant int) bool {
	p.mu.Lock()
	defer p.unlock()
	return p.engine.Remove(def, variant)
}

func (p *Player) RecalculateStats() {
	p.mu.Lock()
	defer p.unlock()
	p.engine.Recalculate()
}

// TakeDamage applies a hit reduced by armor. Hits during invincibility frames
// are ignored; every accepted hit, blocked or not, restarts the frames.
func (p *Player) TakeDamage(amount float64) {
	p.mu.Lock()
	defer p.unlock()
	p.takeDamage(amount)
}

// RestoreHealth adds amount, clamped to actual max health.
func (p *Player) RestoreHealth(amount float64) {
	p.mu.Lock()
	defer p.unlock()
	p.restoreHealth(amount)
}

// Kill ends the run. OnKilled fires only the first time.
func (p *Player) Kill() {
	p.mu.Lock()
	defer p.unlock()
	p.kill()
}

// Release drops every active buff, releasing its cosmetics.
// The session calls it when the player leaves the world.
func (p *Player) Release() int {
	p.mu.Lock()
	defer p.unlock()
	return p.engine.Clear()
}

// AddExperience grants experience and performs every level-up it pays for.
// Returns the number of levels gained.
func (p *Player) AddExperience(amount int) int {
	p.mu.Lock()
	defer p.unlock()

	p.experience += amount
	gained := 0
	for p.experienceCap > 0 && p.experience >= p.experienceCap {
		p.level++
		p.experience -= p.experienceCap
		p.experienceCap += p.capIncrease(p.level)
		gained++
	}
	if gained > 0 {
		p.pending.leveled = true
		slog.Debug("player leveled up",
			"player", p.id,
			"level", p.level,
			"gained", gained,
			"next_cap", p.experienceCap)
	}
	return gained
}

func (p *Player) capIncrease(level int) int {
	for _, r := range p.levelRanges {
		if level >= r.Start && level <= r.End {
			return r.CapIncrease
		}
	}
	return 0
}

// Advance moves the player forward by dt: buff timers and ticks, then
// invincibility frames, then recovery.
func (p *Player) Advance(dt time.Duration) {
	p.mu.Lock()
	defer p.unlock()

	p.engine.Advance(dt, playerTicks{p})

	if p.invincibleFor > 0 {
		p.invincibleFor = max(0, p.invincibleFor-dt)
	}

	if !p.dead {
		actual := p.engine.Actual()
		p.health = restore(p.health, actual.MaxHealth, actual.Recovery*dt.Seconds())
	}
}

func (p *Player) takeDamage(amount float64) {
	if p.invincibleFor > 0 {
		return
	}

	amount -= p.engine.Actual().Armor
	if amount > 0 {
		p.health -= amount
		if p.damageEffect != "" {
			p.env.Layer.PlayOneShot(p.id, p.damageEffect, p.pos)
		}
		p.env.Numbers.FloatingText(p.id, amount, p.pos)
		if p.health <= 0 {
			p.kill()
		}
	} else if p.blockedEffect != "" {
		p.env.Layer.PlayOneShot(p.id, p.blockedEffect, p.pos)
	}

	p.invincibleFor = p.invincibility
}

func (p *Player) restoreHealth(amount float64) {
	p.health = restore(p.health, p.engine.Actual().MaxHealth, amount)
}

func (p *Player) kill() {
	if p.dead {
		return
	}
	p.dead = true
	p.pending.killed = true
	slog.Info("player killed", "player", p.id, "name", p.name, "level", p.level)
}

// unlock releases the player and dispatches events collected under the lock.
func (p *Player) unlock() {
	ev := p.pending
	p.pending = playerEvents{}
	level := p.level
	p.mu.Unlock()

	if ev.leveled && p.hooks.OnLevelUp != nil {
		p.hooks.OnLevelUp(p, level)
	}
	if ev.curseChanged && p.hooks.OnCurseChanged != nil {
		p.hooks.OnCurseChanged(p)
	}
	if ev.killed && p.hooks.OnKilled != nil {
		p.hooks.OnKilled(p, level)
	}
}

// playerTicks routes buff ticks into the locked damage path.
type playerTicks struct{ p *Player }

func (t playerTicks) TakeDamage(amount float64)    { t.p.takeDamage(amount) }
func (t playerTicks) RestoreHealth(amount float64) { t.p.restoreHealth(amount) }
