package testutil

import (
	"time"

	"github.com/udisondev/rogue2d/internal/game/buff"
	"github.com/udisondev/rogue2d/internal/game/tint"
	"github.com/udisondev/rogue2d/internal/stat"
)

// Variant возвращает вариант без урона и лечения с заданной длительностью.
func Variant(d time.Duration) buff.Variant {
	v := buff.DefaultVariant()
	v.Duration = d
	return v
}

// Definition собирает определение баффа с одним вариантом.
func Definition(id string, stack buff.StackPolicy, kind buff.ModifierKind, v buff.Variant) *buff.Definition {
	return &buff.Definition{
		ID:       id,
		Name:     id,
		Category: buff.CategoryBuff,
		Stack:    stack,
		Modifier: kind,
		Variants: []buff.Variant{v},
	}
}

// Might — мультипликативный бафф: might игрока и урон врага ×factor.
func Might(id string, factor float64, stack buff.StackPolicy) *buff.Definition {
	v := buff.NeutralVariant(buff.Multiplicative)
	v.Player.Might = factor
	v.Enemy.Damage = factor
	return Definition(id, stack, buff.Multiplicative, v)
}

// Armor — аддитивный бафф брони игрока и здоровья врага.
func Armor(id string, amount float64) *buff.Definition {
	v := buff.NeutralVariant(buff.Additive)
	v.Player.Armor = amount
	v.Enemy.MaxHealth = amount
	return Definition(id, buff.StacksFully, buff.Additive, v)
}

// Poison — периодический урон: dps урона в секунду, тик каждые interval.
func Poison(dps float64, interval, duration time.Duration) *buff.Definition {
	v := buff.NeutralVariant(buff.Additive)
	v.DamagePerSecond = dps
	v.TickInterval = interval
	v.Duration = duration
	v.Effect = "poison_cloud"
	d := Definition("poison", buff.StacksFully, buff.Additive, v)
	d.Category = buff.CategoryDebuff
	return d
}

// Regen — периодическое лечение.
func Regen(hps float64, interval, duration time.Duration) *buff.Definition {
	v := buff.NeutralVariant(buff.Additive)
	v.HealPerSecond = hps
	v.TickInterval = interval
	v.Duration = duration
	return Definition("regen", buff.RefreshDurationOnly, buff.Additive, v)
}

// Freeze — заморозка: скорость ×0, анимация остановлена, синий оттенок.
func Freeze(duration time.Duration) *buff.Definition {
	v := buff.NeutralVariant(buff.Multiplicative)
	v.Duration = duration
	v.AnimationSpeed = 0
	v.Tint = tint.MustHex("#4fc3f7", 0.5)
	v.Effect = "frost"
	v.Player.MoveSpeed = 0
	v.Enemy.MoveSpeed = 0
	d := Definition("freeze", buff.RefreshDurationOnly, buff.Multiplicative, v)
	d.Category = buff.CategoryDebuff | buff.CategoryFreeze
	return d
}

// Resist — аддитивное изменение сопротивлений врага.
func Resist(id string, r stat.Resistances) *buff.Definition {
	v := buff.NeutralVariant(buff.Additive)
	v.Enemy.Resistances = r
	return Definition(id, buff.StacksFully, buff.Additive, v)
}
