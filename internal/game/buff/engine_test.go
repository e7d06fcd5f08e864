package buff_test

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/rogue2d/internal/game/buff"
	"github.com/udisondev/rogue2d/internal/stat"
	"github.com/udisondev/rogue2d/internal/testutil"
)

// healthTarget is a TickTarget that records every tick.
type healthTarget struct {
	health float64
	max    float64
	hits   []float64
	heals  []float64
}

func (h *healthTarget) TakeDamage(amount float64) {
	h.hits = append(h.hits, amount)
	h.health -= amount
}

func (h *healthTarget) RestoreHealth(amount float64) {
	h.heals = append(h.heals, amount)
	h.health = min(h.max, h.health+amount)
}

type playerHarness struct {
	engine   *buff.Engine[stat.Character]
	recorder *testutil.Recorder
	recalcs  int
}

func newPlayerEngine(base stat.Character) *playerHarness {
	h := &playerHarness{recorder: testutil.NewRecorder()}
	h.engine = buff.NewEngine(buff.Options[stat.Character]{
		Owner:          uuid.New(),
		Base:           base,
		Identity:       stat.CharacterIdentity(),
		Delta:          func(v *buff.Variant) stat.Character { return v.Player },
		OnRecalculated: func(stat.Character) { h.recalcs++ },
		Layer:          h.recorder,
	})
	return h
}

func newEnemyEngine(base stat.Enemy) *buff.Engine[stat.Enemy] {
	return buff.NewEngine(buff.Options[stat.Enemy]{
		Owner:    uuid.New(),
		Base:     base,
		Identity: stat.EnemyIdentity(),
		Delta:    func(v *buff.Variant) stat.Enemy { return v.Enemy },
	})
}

func TestRecalculate_Idempotent(t *testing.T) {
	h := newPlayerEngine(stat.DefaultCharacter())
	h.engine.Apply(testutil.Might("might", 1.5, buff.StacksFully), 0, 1)
	h.engine.Apply(testutil.Armor("armor", 2), 0, 1)

	h.engine.Recalculate()
	first := h.engine.Actual()
	h.engine.Recalculate()
	second := h.engine.Actual()

	assert.Equal(t, first, second)
}

func TestApply_RefreshDurationOnly(t *testing.T) {
	h := newPlayerEngine(stat.DefaultCharacter())
	def := testutil.Might("might", 1.5, buff.RefreshDurationOnly)

	require.True(t, h.engine.Apply(def, 0, 1))
	h.engine.Advance(3*time.Second, nil)
	recalcs := h.recalcs

	require.True(t, h.engine.Apply(def, 0, 2))

	require.Equal(t, 1, h.engine.Len(), "refresh must not add an instance")
	assert.Equal(t, 20*time.Second, h.engine.Find(def, 0).Remaining, "duration is reset, not summed")
	assert.Equal(t, 0, h.recorder.ReleaseCount(), "refresh keeps the existing cosmetics")
	assert.Equal(t, recalcs, h.recalcs, "refresh does not recalculate")
	assert.InDelta(t, 1.5, h.engine.Actual().Might, 1e-9)
}

func TestApply_StackPolicies(t *testing.T) {
	tests := []struct {
		name  string
		stack buff.StackPolicy
		want  int
	}{
		{name: "stacks fully adds instances", stack: buff.StacksFully, want: 3},
		{name: "refresh keeps one instance", stack: buff.RefreshDurationOnly, want: 1},
		{name: "does not stack still duplicates", stack: buff.DoesNotStack, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newPlayerEngine(stat.DefaultCharacter())
			def := testutil.Definition("x", tt.stack, buff.Additive, testutil.Variant(time.Second))

			for range 3 {
				assert.True(t, h.engine.Apply(def, 0, 1))
			}
			assert.Equal(t, tt.want, h.engine.Len())
		})
	}
}

func TestApply_VariantsAreDistinct(t *testing.T) {
	h := newPlayerEngine(stat.DefaultCharacter())
	lvl1 := buff.NeutralVariant(buff.Additive)
	lvl1.Player.Armor = 1
	lvl2 := buff.NeutralVariant(buff.Additive)
	lvl2.Player.Armor = 3
	def := &buff.Definition{ID: "plate", Stack: buff.RefreshDurationOnly, Modifier: buff.Additive,
		Variants: []buff.Variant{lvl1, lvl2}}

	h.engine.Apply(def, 0, 1)
	h.engine.Apply(def, 1, 1)
	h.engine.Apply(def, 1, 1)

	assert.Equal(t, 2, h.engine.Len())
	assert.InDelta(t, 4.0, h.engine.Actual().Armor, 1e-9)

	assert.True(t, h.engine.Remove(def, 1))
	assert.InDelta(t, 1.0, h.engine.Actual().Armor, 1e-9)
	assert.NotNil(t, h.engine.Find(def, 0))
}

func TestRecalculate_MultiplicativeOrdering(t *testing.T) {
	base := stat.DefaultCharacter()
	base.Might = 1.1

	a := testutil.Might("a", 1.5, buff.StacksFully)
	b := testutil.Might("b", 2, buff.StacksFully)

	h := newPlayerEngine(base)
	h.engine.Apply(a, 0, 1)
	assert.InDelta(t, 1.65, h.engine.Actual().Might, 1e-12)

	h.engine.Apply(b, 0, 1)
	withBoth := h.engine.Actual().Might
	assert.InDelta(t, 1.1*1.5*2, withBoth, 1e-12)

	reversed := newPlayerEngine(base)
	reversed.engine.Apply(b, 0, 1)
	reversed.engine.Apply(a, 0, 1)
	assert.Equal(t, withBoth, reversed.engine.Actual().Might, "application order must not matter")

	require.True(t, h.engine.Remove(a, -1))
	assert.Equal(t, base.Might*2, h.engine.Actual().Might, "removal recomputes from base, no drift")
}

func TestRecalculate_AdditiveBeforeMultiplier(t *testing.T) {
	h := newPlayerEngine(stat.DefaultCharacter())

	hp := buff.NeutralVariant(buff.Additive)
	hp.Player.MaxHealth = 20
	h.engine.Apply(testutil.Definition("hp", buff.StacksFully, buff.Additive, hp), 0, 1)

	mul := buff.NeutralVariant(buff.Multiplicative)
	mul.Player.MaxHealth = 1.5
	h.engine.Apply(testutil.Definition("hp%", buff.StacksFully, buff.Multiplicative, mul), 0, 1)

	// (100 + 20) * 1.5, whichever was applied first
	assert.InDelta(t, 180.0, h.engine.Actual().MaxHealth, 1e-9)
}

func TestRecalculate_ResistanceCeiling(t *testing.T) {
	e := newEnemyEngine(stat.DefaultEnemy())

	add := testutil.Resist("ward", stat.Resistances{Freeze: 0.7, Kill: 0.7, Debuff: 0.7})
	mulV := buff.NeutralVariant(buff.Multiplicative)
	mulV.Enemy.Resistances = stat.Resistances{Freeze: 3, Kill: 3, Debuff: 3}
	mul := testutil.Definition("ward%", buff.StacksFully, buff.Multiplicative, mulV)

	for range 4 {
		e.Apply(add, 0, 1)
		e.Apply(mul, 0, 1)
		testutil.AssertResistancesCapped(t, e.Actual().Resistances)
	}
	assert.Equal(t, 1.0, e.Actual().Resistances.Freeze)
}

func TestRemove(t *testing.T) {
	h := newPlayerEngine(stat.DefaultCharacter())
	freeze := testutil.Freeze(3 * time.Second)

	assert.False(t, h.engine.Remove(freeze, -1), "nothing to remove")

	h.engine.Apply(freeze, 0, 1)
	require.Equal(t, 1, h.engine.Tint().Contributions())
	assert.Equal(t, 0.0, h.engine.Actual().MoveSpeed)

	recalcs := h.recalcs
	assert.True(t, h.engine.Remove(freeze, -1))

	assert.Equal(t, 0, h.engine.Len())
	assert.Equal(t, recalcs+1, h.recalcs, "one recalculation per removal")
	assert.Equal(t, 1, h.recorder.ReleaseCount())
	assert.Equal(t, 0, h.engine.Tint().Contributions())
	assert.InDelta(t, 1.0, h.engine.Tint().AnimationSpeed(), 1e-9)
	assert.Equal(t, 1.0, h.engine.Actual().MoveSpeed)
}

func TestAdvance_TickCadence(t *testing.T) {
	e := newEnemyEngine(stat.DefaultEnemy())
	target := &healthTarget{health: 10, max: 10}

	poison := testutil.Poison(4, 250*time.Millisecond, 10*time.Second)
	require.True(t, e.Apply(poison, 0, 1))

	for range 30 {
		e.Advance(100*time.Millisecond, target)
	}

	require.Len(t, target.hits, 12)
	for _, hit := range target.hits {
		assert.Equal(t, 1.0, hit, "tick damage is dps * interval")
	}
	assert.Equal(t, -2.0, target.health)
}

func TestAdvance_LargeStepFiresEveryDueTick(t *testing.T) {
	e := newEnemyEngine(stat.DefaultEnemy())
	target := &healthTarget{health: 10, max: 10}
	require.True(t, e.Apply(testutil.Poison(4, 250*time.Millisecond, 10*time.Second), 0, 1))

	e.Advance(1100*time.Millisecond, target)
	assert.Len(t, target.hits, 4, "floor(1100ms / 250ms)")

	// 100ms of overshoot carried over: the next tick is due after 150ms
	e.Advance(149*time.Millisecond, target)
	assert.Len(t, target.hits, 4)
	e.Advance(time.Millisecond, target)
	assert.Len(t, target.hits, 5)
}

func TestAdvance_DamageAndHealSameTick(t *testing.T) {
	v := buff.NeutralVariant(buff.Additive)
	v.DamagePerSecond = 2
	v.HealPerSecond = 4
	v.TickInterval = 500 * time.Millisecond
	v.Duration = 0
	def := testutil.Definition("leech", buff.StacksFully, buff.Additive, v)

	e := newEnemyEngine(stat.DefaultEnemy())
	target := &healthTarget{health: 5, max: 10}
	e.Apply(def, 0, 1)

	e.Advance(600*time.Millisecond, target)

	assert.Equal(t, []float64{1}, target.hits)
	assert.Equal(t, []float64{2}, target.heals)
	assert.Equal(t, 6.0, target.health)
}

func TestAdvance_Expiry(t *testing.T) {
	h := newPlayerEngine(stat.DefaultCharacter())
	v := testutil.Variant(5 * time.Second)
	v.Effect = "sparkle"
	def := testutil.Definition("short", buff.StacksFully, buff.Additive, v)

	h.engine.Apply(def, 0, 1)
	require.Equal(t, 1, h.recorder.SpawnCount())
	recalcs := h.recalcs

	h.engine.Advance(5010*time.Millisecond, nil)

	assert.Equal(t, 0, h.engine.Len())
	assert.Equal(t, 1, h.recorder.ReleaseCount(), "exactly one cosmetic release")
	assert.Equal(t, recalcs+1, h.recalcs, "exactly one recalculation for the step")
}

func TestAdvance_ExactDurationExpiresNextStep(t *testing.T) {
	h := newPlayerEngine(stat.DefaultCharacter())
	def := testutil.Definition("exact", buff.StacksFully, buff.Additive, testutil.Variant(time.Second))
	h.engine.Apply(def, 0, 1)

	h.engine.Advance(time.Second, nil)
	assert.Equal(t, 1, h.engine.Len(), "remaining 0 is not below zero yet")

	h.engine.Advance(time.Millisecond, nil)
	assert.Equal(t, 0, h.engine.Len())
}

func TestAdvance_InfiniteNeverExpires(t *testing.T) {
	h := newPlayerEngine(stat.DefaultCharacter())
	def := testutil.Armor("aura", 1)
	def.Variants[0].Duration = 0

	h.engine.Apply(def, 0, 1)
	for range 100 {
		h.engine.Advance(time.Second, nil)
	}
	assert.Equal(t, 1, h.engine.Len())
	assert.True(t, h.engine.Find(def, -1).Infinite())

	assert.True(t, h.engine.Remove(def, -1))
	assert.Equal(t, 0, h.engine.Len())
}

func TestAdvance_DurationMultiplier(t *testing.T) {
	h := newPlayerEngine(stat.DefaultCharacter())
	def := testutil.Definition("long", buff.StacksFully, buff.Additive, testutil.Variant(2*time.Second))

	h.engine.Apply(def, 0, 1.5)
	h.engine.Advance(2500*time.Millisecond, nil)
	assert.Equal(t, 1, h.engine.Len())
	h.engine.Advance(600*time.Millisecond, nil)
	assert.Equal(t, 0, h.engine.Len())
}

func TestApply_MissingVariantIsInert(t *testing.T) {
	h := newPlayerEngine(stat.DefaultCharacter())
	def := testutil.Might("might", 2, buff.StacksFully)

	require.True(t, h.engine.Apply(def, 5, 1))
	assert.Equal(t, stat.DefaultCharacter(), h.engine.Actual(), "inert variant has no stat effect")
	assert.False(t, def.HasVariant(5))
	assert.True(t, def.HasVariant(-1), "negative index selects the first variant")
}

func TestApply_UnknownModifierKindIsIgnored(t *testing.T) {
	h := newPlayerEngine(stat.DefaultCharacter())
	def := testutil.Armor("weird", 5)
	def.Modifier = buff.ModifierKind(9)

	logs := testutil.CaptureLogs(t, slog.LevelWarn)

	h.engine.Apply(def, 0, 1)
	assert.Equal(t, stat.DefaultCharacter(), h.engine.Actual())

	for range 5 {
		h.engine.Recalculate()
		h.engine.Advance(100*time.Millisecond, &healthTarget{})
	}
	assert.Equal(t, stat.DefaultCharacter(), h.engine.Actual())
	assert.Equal(t, 1, strings.Count(logs.String(), "unknown modifier kind"), "warned once, not every step")
}

func TestDefinition_TickAmounts(t *testing.T) {
	def := testutil.Poison(4, 250*time.Millisecond, time.Second)
	def.Variants[0].HealPerSecond = 2

	assert.Equal(t, 1.0, def.TickDamage(0))
	assert.Equal(t, 0.5, def.TickHeal(0))
	assert.Equal(t, 0.0, def.TickDamage(3), "missing variant deals nothing")
}

func TestClear(t *testing.T) {
	h := newPlayerEngine(stat.DefaultCharacter())
	h.engine.Apply(testutil.Freeze(time.Second), 0, 1)
	h.engine.Apply(testutil.Poison(1, time.Second, time.Second), 0, 1)

	assert.Equal(t, 2, h.engine.Clear())
	assert.Equal(t, 0, h.engine.Len())
	assert.Equal(t, 2, h.recorder.ReleaseCount())
	assert.Equal(t, 0, h.engine.Clear())
}
