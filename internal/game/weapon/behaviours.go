package weapon

import (
	"errors"

	"github.com/udisondev/rogue2d/internal/game/geom"
)

var errNoArea = errors.New("area must be positive")

// Aura hits every living target within area.
type Aura struct{}

// NewAura is the "aura" factory.
func NewAura(d Data) (Behaviour, error) {
	if d.Stats.Area <= 0 {
		return nil, errNoArea
	}
	return Aura{}, nil
}

func (Aura) Targets(_ *Weapon, from geom.Vec2, s Stats, candidates []Target) []Target {
	return inRange(from, s.Area, candidates)
}

// Strike hits one random living target within area.
type Strike struct{}

// NewStrike is the "strike" factory.
func NewStrike(d Data) (Behaviour, error) {
	if d.Stats.Area <= 0 {
		return nil, errNoArea
	}
	return Strike{}, nil
}

func (Strike) Targets(w *Weapon, from geom.Vec2, s Stats, candidates []Target) []Target {
	near := inRange(from, s.Area, candidates)
	if len(near) == 0 {
		return nil
	}
	i := min(int(w.roller.Float64()*float64(len(near))), len(near)-1)
	return near[i : i+1]
}
