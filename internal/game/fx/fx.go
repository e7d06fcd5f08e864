// Package fx declares the cosmetic collaborators the combat core drives:
// particle effects, sprite tint, animation speed and floating damage numbers.
// The core decides when these fire; implementations decide how they render.
package fx

import (
	"github.com/google/uuid"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/udisondev/rogue2d/internal/game/geom"
)

// Handle identifies a spawned effect so it can be released later.
// The zero Handle means nothing was spawned.
type Handle struct {
	ID     uuid.UUID
	Owner  uuid.UUID
	Effect string
}

// Valid reports whether h refers to a spawned effect.
func (h Handle) Valid() bool {
	return h.ID != uuid.Nil
}

// Layer is the visual side of an entity.
type Layer interface {
	// SpawnEffect attaches a looping effect to owner and returns its handle.
	SpawnEffect(owner uuid.UUID, effect string) Handle
	// ReleaseEffect destroys a previously spawned effect.
	ReleaseEffect(h Handle)
	// PlayOneShot plays a self-destroying effect at pos (damage / blocked sparks).
	PlayOneShot(owner uuid.UUID, effect string, pos geom.Vec2)
	// SetTint pushes the composite sprite colour.
	SetTint(owner uuid.UUID, c colorful.Color, alpha float64)
	// SetAnimationSpeed pushes the composite animator speed.
	SetAnimationSpeed(owner uuid.UUID, speed float64)
}

// Numbers shows floating damage text.
type Numbers interface {
	FloatingText(owner uuid.UUID, value float64, pos geom.Vec2)
}

// Nop discards everything.
type Nop struct{}

func (Nop) SpawnEffect(uuid.UUID, string) Handle       { return Handle{} }
func (Nop) ReleaseEffect(Handle)                       {}
func (Nop) PlayOneShot(uuid.UUID, string, geom.Vec2)   {}
func (Nop) SetTint(uuid.UUID, colorful.Color, float64) {}
func (Nop) SetAnimationSpeed(uuid.UUID, float64)       {}
func (Nop) FloatingText(uuid.UUID, float64, geom.Vec2) {}
