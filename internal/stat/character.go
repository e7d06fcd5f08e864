package stat

// Character is the player-oriented stat block.
// Multiplier-like fields (MoveSpeed, Might, Area, Speed, Duration, Cooldown,
// Luck, Growth, Greed, Curse) are neutral at 1, additive-only fields
// (Recovery, Armor, Amount, Magnet, Revival) are neutral at 0.
type Character struct {
	MaxHealth float64 `yaml:"max_health"`
	Recovery  float64 `yaml:"recovery"`
	Armor     float64 `yaml:"armor"`
	MoveSpeed float64 `yaml:"move_speed"`
	Might     float64 `yaml:"might"`
	Area      float64 `yaml:"area"`
	Speed     float64 `yaml:"speed"`
	Duration  float64 `yaml:"duration"`
	Amount    int     `yaml:"amount"`
	Cooldown  float64 `yaml:"cooldown"`
	Luck      float64 `yaml:"luck"`
	Growth    float64 `yaml:"growth"`
	Greed     float64 `yaml:"greed"`
	Curse     float64 `yaml:"curse"`
	Magnet    float64 `yaml:"magnet"`
	Revival   int     `yaml:"revival"`
}

// DefaultCharacter returns the authored defaults of a fresh character.
func DefaultCharacter() Character {
	return Character{
		MaxHealth: 100,
		MoveSpeed: 1,
		Might:     1,
		Area:      1,
		Speed:     1,
		Duration:  1,
		Cooldown:  1,
		Luck:      1,
		Growth:    1,
		Greed:     1,
		Curse:     1,
	}
}

// CharacterIdentity returns the multiplicative identity (every field 1).
func CharacterIdentity() Character {
	return Character{
		MaxHealth: 1,
		Recovery:  1,
		Armor:     1,
		MoveSpeed: 1,
		Might:     1,
		Area:      1,
		Speed:     1,
		Duration:  1,
		Amount:    1,
		Cooldown:  1,
		Luck:      1,
		Growth:    1,
		Greed:     1,
		Curse:     1,
		Magnet:    1,
		Revival:   1,
	}
}

// Add returns the field-wise sum of c and o.
func (c Character) Add(o Character) Character {
	c.MaxHealth += o.MaxHealth
	c.Recovery += o.Recovery
	c.Armor += o.Armor
	c.MoveSpeed += o.MoveSpeed
	c.Might += o.Might
	c.Area += o.Area
	c.Speed += o.Speed
	c.Duration += o.Duration
	c.Amount += o.Amount
	c.Cooldown += o.Cooldown
	c.Luck += o.Luck
	c.Growth += o.Growth
	c.Greed += o.Greed
	c.Curse += o.Curse
	c.Magnet += o.Magnet
	c.Revival += o.Revival
	return c
}

// Mul returns the field-wise product of c and o.
func (c Character) Mul(o Character) Character {
	c.MaxHealth *= o.MaxHealth
	c.Recovery *= o.Recovery
	c.Armor *= o.Armor
	c.MoveSpeed *= o.MoveSpeed
	c.Might *= o.Might
	c.Area *= o.Area
	c.Speed *= o.Speed
	c.Duration *= o.Duration
	c.Amount *= o.Amount
	c.Cooldown *= o.Cooldown
	c.Luck *= o.Luck
	c.Growth *= o.Growth
	c.Greed *= o.Greed
	c.Curse *= o.Curse
	c.Magnet *= o.Magnet
	c.Revival *= o.Revival
	return c
}
