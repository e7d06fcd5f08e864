package stat

// Resistances are the enemy-only chances to shrug off hostile effects.
// Components are nominally in [-1, 1]; every operation caps them at 1,
// negative values represent vulnerability and are left alone.
type Resistances struct {
	Freeze float64 `yaml:"freeze"`
	Kill   float64 `yaml:"kill"`
	Debuff float64 `yaml:"debuff"`
}

// Add returns the component-wise sum, capped at 1.
func (r Resistances) Add(o Resistances) Resistances {
	return Resistances{
		Freeze: ceil(r.Freeze + o.Freeze),
		Kill:   ceil(r.Kill + o.Kill),
		Debuff: ceil(r.Debuff + o.Debuff),
	}
}

// Mul returns the component-wise product, capped at 1.
func (r Resistances) Mul(o Resistances) Resistances {
	return Resistances{
		Freeze: ceil(r.Freeze * o.Freeze),
		Kill:   ceil(r.Kill * o.Kill),
		Debuff: ceil(r.Debuff * o.Debuff),
	}
}

// Scale multiplies every component by factor, capped at 1.
func (r Resistances) Scale(factor float64) Resistances {
	return Resistances{
		Freeze: ceil(r.Freeze * factor),
		Kill:   ceil(r.Kill * factor),
		Debuff: ceil(r.Debuff * factor),
	}
}
