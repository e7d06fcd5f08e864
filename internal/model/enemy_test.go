package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/rogue2d/internal/game/buff"
	"github.com/udisondev/rogue2d/internal/game/geom"
	"github.com/udisondev/rogue2d/internal/stat"
	"github.com/udisondev/rogue2d/internal/testutil"
)

func newTestEnemy(t *testing.T, base stat.Enemy, roller buff.Roller) (*Enemy, *testutil.Recorder) {
	t.Helper()

	rec := testutil.NewRecorder()
	cfg := DefaultEnemyConfig()
	cfg.Base = base
	e := NewEnemy(cfg, nil, Env{Layer: rec, Numbers: rec, Roller: roller})
	return e, rec
}

func TestEnemy_KillHeuristic(t *testing.T) {
	tests := []struct {
		name       string
		kill       float64
		roll       float64
		amount     float64
		wantHealth float64
		wantRolls  int
		wantNumber bool
	}{
		{name: "exact max health resisted", kill: 1, roll: 0.5, amount: 10, wantHealth: 10, wantRolls: 1},
		{name: "exact max health not resisted", kill: 0.25, roll: 0.5, amount: 10, wantHealth: 0, wantRolls: 1, wantNumber: true},
		{name: "roll equal to resistance is not a dodge", kill: 0.5, roll: 0.5, amount: 10, wantHealth: 0, wantRolls: 1, wantNumber: true},
		{name: "just below max health never rolls", kill: 1, roll: 0, amount: 9.99, wantHealth: 10 - 9.99, wantRolls: 0, wantNumber: true},
		{name: "overkill never rolls", kill: 1, roll: 0, amount: 50, wantHealth: -40, wantRolls: 0, wantNumber: true},
		{name: "zero damage is a no-op", kill: 1, roll: 0, amount: 0, wantHealth: 10, wantRolls: 0},
		{name: "negative damage does not heal", kill: 1, roll: 0, amount: -5, wantHealth: 10, wantRolls: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := stat.DefaultEnemy()
			base.Resistances.Kill = tt.kill
			roller := testutil.Rolls(tt.roll)
			e, rec := newTestEnemy(t, base, roller)

			e.TakeDamage(tt.amount)

			assert.InDelta(t, tt.wantHealth, e.Health(), 1e-9)
			assert.Equal(t, tt.wantRolls, roller.Calls())
			if tt.wantNumber {
				assert.Equal(t, 1, rec.NumberCount())
			} else {
				assert.Equal(t, 0, rec.NumberCount(), "negated hit shows no number")
			}
		})
	}
}

func TestEnemy_ResistanceGating(t *testing.T) {
	base := stat.DefaultEnemy()
	base.Resistances = stat.Resistances{Freeze: 0.5, Debuff: 0.3}
	freeze := testutil.Freeze(time.Second)

	t.Run("freeze roll rejects", func(t *testing.T) {
		roller := testutil.Rolls(0.4)
		e, _ := newTestEnemy(t, base, roller)

		assert.False(t, e.ApplyBuff(freeze, 0, 1))
		assert.Empty(t, e.Buffs())
		assert.Equal(t, 1, roller.Calls(), "debuff check skipped once freeze rejected")
	})

	t.Run("debuff roll is independent", func(t *testing.T) {
		roller := testutil.Rolls(0.9, 0.1)
		e, _ := newTestEnemy(t, base, roller)

		assert.False(t, e.ApplyBuff(freeze, 0, 1))
		assert.Equal(t, 2, roller.Calls())
	})

	t.Run("both rolls pass", func(t *testing.T) {
		roller := testutil.Rolls(0.9, 0.9)
		e, _ := newTestEnemy(t, base, roller)

		assert.True(t, e.ApplyBuff(freeze, 0, 1))
		assert.Equal(t, 0.0, e.Actual().MoveSpeed)
	})

	t.Run("plain buff never rolls", func(t *testing.T) {
		roller := testutil.Rolls(0)
		e, _ := newTestEnemy(t, base, roller)

		assert.True(t, e.ApplyBuff(testutil.Armor("plate", 5), 0, 1))
		assert.Equal(t, 0, roller.Calls())
		assert.InDelta(t, 15.0, e.Actual().MaxHealth, 1e-9)
	})
}

func TestEnemy_ApplyBuffInfoProbability(t *testing.T) {
	info := buff.Info{Buff: testutil.Armor("plate", 1), Probability: 0.5}

	e, _ := newTestEnemy(t, stat.DefaultEnemy(), testutil.Rolls(0.7))
	assert.False(t, e.ApplyBuffInfo(info, 1))

	e, _ = newTestEnemy(t, stat.DefaultEnemy(), testutil.Rolls(0.3))
	assert.True(t, e.ApplyBuffInfo(info, 1))
}

func TestEnemy_PoisonTicksPastDeath(t *testing.T) {
	e, rec := newTestEnemy(t, stat.DefaultEnemy(), testutil.Rolls(0.5))
	kills := 0
	e.OnKilled(func(*Enemy) { kills++ })

	require.True(t, e.ApplyBuff(testutil.Poison(4, 250*time.Millisecond, 10*time.Second), 0, 1))
	for range 30 {
		e.Advance(100 * time.Millisecond)
	}

	assert.Equal(t, -2.0, e.Health())
	assert.Equal(t, 12, rec.NumberCount())
	for _, n := range rec.Numbers {
		assert.Equal(t, 1.0, n)
	}
	assert.False(t, e.Alive())
	assert.Equal(t, 1, kills, "kill fires once")
}

func TestEnemy_SessionScaling(t *testing.T) {
	base := stat.DefaultEnemy()
	base.CurseBoosts = stat.BoostHealth
	base.LevelBoosts = stat.BoostDamage | stat.BoostKnockback

	cfg := DefaultEnemyConfig()
	cfg.Base = base
	scalers := testutil.FixedScalers{Curse: 2, Level: 3}
	e := NewEnemy(cfg, scalers, Env{})

	want := base
	want.MaxHealth = 20
	want.Damage = 9
	want.KnockbackMultiplier = 1.0 / 3
	testutil.AssertEnemyStats(t, want, e.Actual())
	assert.Equal(t, 20.0, e.Health())
}

func TestEnemy_RecalculatePicksUpScalers(t *testing.T) {
	scalers := &mutableScalers{curse: 1, level: 1}
	cfg := DefaultEnemyConfig()
	e := NewEnemy(cfg, scalers, Env{})
	require.Equal(t, 10.0, e.Actual().MaxHealth)

	scalers.curse = 1.5
	e.RecalculateStats()

	assert.InDelta(t, 15.0, e.Actual().MaxHealth, 1e-9)
	assert.InDelta(t, 1.5, e.Actual().MoveSpeed, 1e-9)
	assert.Equal(t, 10.0, e.Health(), "health is not rescaled")
}

func TestEnemy_DamageFlash(t *testing.T) {
	e, rec := newTestEnemy(t, stat.DefaultEnemy(), testutil.Rolls(0.5))
	white := e.Color()

	e.TakeDamage(1)
	flashed := e.Color()
	assert.NotEqual(t, white, flashed)
	assert.Greater(t, flashed.RGB.R, flashed.RGB.G)

	e.Advance(100 * time.Millisecond)
	assert.NotEqual(t, white, e.Color(), "still flashing")

	e.Advance(150 * time.Millisecond)
	assert.Equal(t, white, e.Color())
	assert.NotEmpty(t, rec.Tints)
}

func TestEnemy_DeathFade(t *testing.T) {
	e, rec := newTestEnemy(t, stat.DefaultEnemy(), testutil.Rolls(0.5))

	e.Kill()
	e.Kill()
	require.False(t, e.Alive())
	assert.False(t, e.Despawned())

	e.Advance(300 * time.Millisecond)
	assert.InDelta(t, 0.5, rec.LastAlpha(), 1e-3)
	assert.False(t, e.Despawned())

	e.Advance(400 * time.Millisecond)
	assert.True(t, e.Despawned())
	assert.InDelta(t, 0.0, rec.LastAlpha(), 1e-6)

	assert.False(t, e.ApplyBuff(testutil.Armor("late", 1), 0, 1), "dead enemies accept no buffs")
}

func TestEnemy_Knockback(t *testing.T) {
	t.Run("pushed away from source", func(t *testing.T) {
		e, _ := newTestEnemy(t, stat.DefaultEnemy(), testutil.Rolls(0.5))
		e.SetPosition(geom.Vec2{X: 1})

		e.TakeDamageFrom(1, geom.Vec2{}, 5, 200*time.Millisecond)
		kb := e.Knockback()
		require.True(t, kb.Active())
		assert.InDelta(t, 5.0, kb.Velocity.X, 1e-9)

		e.TakeDamageFrom(1, geom.Vec2{X: 2}, 50, time.Second)
		assert.Equal(t, kb, e.Knockback(), "running knockback is not overridden")

		e.Advance(100 * time.Millisecond)
		assert.InDelta(t, 1.5, e.Position().X, 1e-9)
		e.Advance(100 * time.Millisecond)
		assert.False(t, e.Knockback().Active())
	})

	t.Run("scaled by multiplier", func(t *testing.T) {
		base := stat.DefaultEnemy()
		base.KnockbackMultiplier = 0.5
		e, _ := newTestEnemy(t, base, testutil.Rolls(0.5))
		e.SetPosition(geom.Vec2{Y: -3})

		e.TakeDamageFrom(0, geom.Vec2{}, 4, time.Second)
		assert.InDelta(t, -2.0, e.Knockback().Velocity.Y, 1e-9)
	})

	t.Run("zero multiplier is immune", func(t *testing.T) {
		base := stat.DefaultEnemy()
		base.KnockbackMultiplier = 0
		e, _ := newTestEnemy(t, base, testutil.Rolls(0.5))
		e.SetPosition(geom.Vec2{X: 1})

		e.TakeDamageFrom(1, geom.Vec2{}, 5, time.Second)
		assert.False(t, e.Knockback().Active())
	})
}

func TestEnemy_Chase(t *testing.T) {
	e, _ := newTestEnemy(t, stat.DefaultEnemy(), testutil.Rolls(0.5))
	e.Chase(geom.Vec2{X: 10})

	e.Advance(2 * time.Second)
	assert.InDelta(t, 2.0, e.Position().X, 1e-9)

	e.ApplyBuff(testutil.Freeze(time.Minute), 0, 1)
	e.Advance(time.Second)
	assert.InDelta(t, 2.0, e.Position().X, 1e-9, "frozen enemies stand still")
}

func TestEnemy_Touch(t *testing.T) {
	poison := testutil.Poison(1, time.Second, 5*time.Second)

	cfg := DefaultEnemyConfig()
	cfg.AttackEffects = []buff.Info{{Buff: poison, Probability: 1}}
	e := NewEnemy(cfg, nil, Env{Roller: testutil.Rolls(0.5)})

	p := NewPlayer(DefaultPlayerConfig(), Env{Roller: testutil.Rolls(0.5)}, PlayerHooks{})

	require.True(t, e.Touch(p))
	assert.Equal(t, 97.0, p.Health())
	require.Len(t, p.Buffs(), 1)
	assert.Equal(t, poison, p.Buffs()[0].Definition())

	harmless := DefaultEnemyConfig()
	harmless.Base.Damage = 0
	assert.False(t, NewEnemy(harmless, nil, Env{}).Touch(p))
}

type mutableScalers struct {
	curse float64
	level float64
}

func (s *mutableScalers) CumulativeCurse() float64 { return s.curse }
func (s *mutableScalers) CumulativeLevel() float64 { return s.level }
