package stat

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Boostable selects which enemy fields are affected by a curse or level boost.
type Boostable uint8

const (
	BoostHealth Boostable = 1 << iota
	BoostMoveSpeed
	BoostDamage
	BoostKnockback
	BoostResistances
)

var boostableNames = map[string]Boostable{
	"health":      BoostHealth,
	"move_speed":  BoostMoveSpeed,
	"damage":      BoostDamage,
	"knockback":   BoostKnockback,
	"resistances": BoostResistances,
}

// Has reports whether all bits of f are set in b.
func (b Boostable) Has(f Boostable) bool {
	return b&f == f
}

// ParseBoostable converts a list of field names into a mask.
func ParseBoostable(names []string) (Boostable, error) {
	var b Boostable
	for _, n := range names {
		f, ok := boostableNames[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return 0, fmt.Errorf("unknown boostable field %q", n)
		}
		b |= f
	}
	return b, nil
}

// UnmarshalYAML accepts a sequence of field names.
func (b *Boostable) UnmarshalYAML(value *yaml.Node) error {
	var names []string
	if err := value.Decode(&names); err != nil {
		return err
	}
	parsed, err := ParseBoostable(names)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// Enemy is the hostile-entity stat block.
type Enemy struct {
	MaxHealth           float64     `yaml:"max_health"`
	MoveSpeed           float64     `yaml:"move_speed"`
	Damage              float64     `yaml:"damage"`
	KnockbackMultiplier float64     `yaml:"knockback_multiplier"`
	Resistances         Resistances `yaml:"resistances"`

	// Authored per enemy; carried through Add/Mul untouched.
	CurseBoosts Boostable `yaml:"curse_boosts"`
	LevelBoosts Boostable `yaml:"level_boosts"`
}

// DefaultEnemy returns the authored defaults of a fresh enemy.
func DefaultEnemy() Enemy {
	return Enemy{
		MaxHealth:           10,
		MoveSpeed:           1,
		Damage:              3,
		KnockbackMultiplier: 1,
		CurseBoosts:         BoostHealth | BoostMoveSpeed,
	}
}

// EnemyIdentity returns the multiplicative identity, resistances included.
func EnemyIdentity() Enemy {
	return Enemy{
		MaxHealth:           1,
		MoveSpeed:           1,
		Damage:              1,
		KnockbackMultiplier: 1,
		Resistances:         Resistances{Freeze: 1, Kill: 1, Debuff: 1},
	}
}

// Add returns the field-wise sum of e and o.
func (e Enemy) Add(o Enemy) Enemy {
	e.MaxHealth += o.MaxHealth
	e.MoveSpeed += o.MoveSpeed
	e.Damage += o.Damage
	e.KnockbackMultiplier += o.KnockbackMultiplier
	e.Resistances = e.Resistances.Add(o.Resistances)
	return e
}

// Mul returns the field-wise product of e and o.
func (e Enemy) Mul(o Enemy) Enemy {
	e.MaxHealth *= o.MaxHealth
	e.MoveSpeed *= o.MoveSpeed
	e.Damage *= o.Damage
	e.KnockbackMultiplier *= o.KnockbackMultiplier
	e.Resistances = e.Resistances.Mul(o.Resistances)
	return e
}

// Boost scales the fields selected by mask by factor.
// KnockbackMultiplier is divided, not multiplied: a higher curse or level
// makes enemies harder to push around.
func (e Enemy) Boost(factor float64, mask Boostable) Enemy {
	if mask.Has(BoostHealth) {
		e.MaxHealth *= factor
	}
	if mask.Has(BoostMoveSpeed) {
		e.MoveSpeed *= factor
	}
	if mask.Has(BoostDamage) {
		e.Damage *= factor
	}
	if mask.Has(BoostKnockback) {
		e.KnockbackMultiplier /= factor
	}
	if mask.Has(BoostResistances) {
		e.Resistances = e.Resistances.Scale(factor)
	}
	return e
}

// CurseScaled boosts the fields flagged in CurseBoosts by curse.
func (e Enemy) CurseScaled(curse float64) Enemy {
	return e.Boost(curse, e.CurseBoosts)
}

// LevelBoosted boosts the fields flagged in LevelBoosts by level.
func (e Enemy) LevelBoosted(level float64) Enemy {
	return e.Boost(level, e.LevelBoosts)
}
