// Package weapon resolves authored weapons into behaviours and drives their
// cooldowns. Damage, area and cooldown are scaled by the owner's actual stats;
// hit effects are handed to targets as buff.Info and rolled there.
package weapon

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/rogue2d/internal/game/buff"
	"github.com/udisondev/rogue2d/internal/game/geom"
	"github.com/udisondev/rogue2d/internal/stat"
)

// Stats are the authored numbers of a weapon level.
type Stats struct {
	Damage            float64       `yaml:"damage"`
	Area              float64       `yaml:"area"`
	Knockback         float64       `yaml:"knockback"`
	Cooldown          time.Duration `yaml:"cooldown"`
	KnockbackDuration time.Duration `yaml:"knockback_duration"`

	HitEffects []buff.Info `yaml:"-"`
}

// Data is an authored weapon.
type Data struct {
	ID        string
	Name      string
	Behaviour string
	Stats     Stats
}

// Owner is the wielder whose stats scale the weapon.
type Owner interface {
	ID() uuid.UUID
	Position() geom.Vec2
	Actual() stat.Character
	Alive() bool
}

// Target is anything a weapon can hit.
type Target interface {
	ID() uuid.UUID
	Position() geom.Vec2
	Alive() bool
	TakeDamageFrom(amount float64, source geom.Vec2, force float64, duration time.Duration)
	ApplyBuffInfo(info buff.Info, durationMultiplier float64) bool
}

// Behaviour picks who a ready weapon hits.
type Behaviour interface {
	Targets(w *Weapon, from geom.Vec2, s Stats, candidates []Target) []Target
}

// Weapon is one equipped weapon instance.
//
// Not safe for concurrent use; the session advances weapons sequentially.
type Weapon struct {
	data      Data
	owner     Owner
	behaviour Behaviour
	roller    buff.Roller

	cooldown time.Duration
}

// New builds a weapon for owner. Unknown behaviours yield ErrUnknownBehaviour.
func New(d Data, owner Owner, roller buff.Roller) (*Weapon, error) {
	b, err := newBehaviour(d)
	if err != nil {
		return nil, err
	}
	if roller == nil {
		roller = buff.GlobalRoller{}
	}
	return &Weapon{
		data:      d,
		owner:     owner,
		behaviour: b,
		roller:    roller,
	}, nil
}

// Data returns the authored weapon.
func (w *Weapon) Data() Data {
	return w.data
}

// Scaled returns the weapon stats scaled by the owner's actual stats:
// damage by might, area by area, cooldown by cooldown.
func (w *Weapon) Scaled() Stats {
	return scale(w.data.Stats, w.owner.Actual())
}

func scale(s Stats, owner stat.Character) Stats {
	s.Damage *= owner.Might
	s.Area *= owner.Area
	s.Cooldown = time.Duration(float64(s.Cooldown) * max(0, owner.Cooldown))
	return s
}

// Advance counts the cooldown down and fires when it runs out.
// Returns the number of targets hit this step.
func (w *Weapon) Advance(dt time.Duration, candidates []Target) int {
	if !w.owner.Alive() {
		return 0
	}

	w.cooldown -= dt
	if w.cooldown > 0 {
		return 0
	}

	actual := w.owner.Actual()
	s := scale(w.data.Stats, actual)
	w.cooldown = s.Cooldown

	from := w.owner.Position()
	hit := w.behaviour.Targets(w, from, s, candidates)
	for _, t := range hit {
		t.TakeDamageFrom(s.Damage, from, s.Knockback, s.KnockbackDuration)
		for _, info := range s.HitEffects {
			t.ApplyBuffInfo(info, actual.Duration)
		}
	}

	if len(hit) > 0 {
		slog.Debug("weapon fired",
			"weapon", w.data.ID,
			"owner", w.owner.ID(),
			"targets", len(hit),
			"damage", s.Damage)
	}
	return len(hit)
}

// inRange returns the living candidates within radius of from.
func inRange(from geom.Vec2, radius float64, candidates []Target) []Target {
	var out []Target
	for _, c := range candidates {
		if c.Alive() && c.Position().Dist(from) <= radius {
			out = append(out, c)
		}
	}
	return out
}
