package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/udisondev/rogue2d/internal/stat"
)

const statDelta = 1e-9

// AssertResistancesCapped проверяет, что ни одно сопротивление не превышает 1.
func AssertResistancesCapped(t testing.TB, r stat.Resistances) {
	t.Helper()

	assert.LessOrEqual(t, r.Freeze, 1.0, "freeze resistance above ceiling")
	assert.LessOrEqual(t, r.Kill, 1.0, "kill resistance above ceiling")
	assert.LessOrEqual(t, r.Debuff, 1.0, "debuff resistance above ceiling")
}

// AssertEnemyStats сравнивает числовые поля блока врага с допуском.
func AssertEnemyStats(t testing.TB, want, got stat.Enemy) {
	t.Helper()

	assert.InDelta(t, want.MaxHealth, got.MaxHealth, statDelta, "max health")
	assert.InDelta(t, want.MoveSpeed, got.MoveSpeed, statDelta, "move speed")
	assert.InDelta(t, want.Damage, got.Damage, statDelta, "damage")
	assert.InDelta(t, want.KnockbackMultiplier, got.KnockbackMultiplier, statDelta, "knockback")
	assert.InDelta(t, want.Resistances.Freeze, got.Resistances.Freeze, statDelta, "freeze resistance")
	assert.InDelta(t, want.Resistances.Kill, got.Resistances.Kill, statDelta, "kill resistance")
	assert.InDelta(t, want.Resistances.Debuff, got.Resistances.Debuff, statDelta, "debuff resistance")
}
