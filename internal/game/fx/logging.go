package fx

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/udisondev/rogue2d/internal/game/geom"
)

// Logging implements Layer and Numbers on top of slog.
// Used by the headless simulator where nothing is rendered.
type Logging struct {
	Logger *slog.Logger
}

// NewLogging returns a Logging layer writing to l, or to slog.Default() when l is nil.
func NewLogging(l *slog.Logger) *Logging {
	if l == nil {
		l = slog.Default()
	}
	return &Logging{Logger: l}
}

func (f *Logging) SpawnEffect(owner uuid.UUID, effect string) Handle {
	if effect == "" {
		return Handle{}
	}
	h := Handle{ID: uuid.New(), Owner: owner, Effect: effect}
	f.Logger.Debug("fx spawn", "owner", owner, "effect", effect, "handle", h.ID)
	return h
}

func (f *Logging) ReleaseEffect(h Handle) {
	f.Logger.Debug("fx release", "owner", h.Owner, "effect", h.Effect, "handle", h.ID)
}

func (f *Logging) PlayOneShot(owner uuid.UUID, effect string, pos geom.Vec2) {
	f.Logger.Debug("fx one-shot", "owner", owner, "effect", effect, "x", pos.X, "y", pos.Y)
}

func (f *Logging) SetTint(owner uuid.UUID, c colorful.Color, alpha float64) {
	f.Logger.Debug("fx tint", "owner", owner, "color", c.Clamped().Hex(), "alpha", alpha)
}

func (f *Logging) SetAnimationSpeed(owner uuid.UUID, speed float64) {
	f.Logger.Debug("fx animation speed", "owner", owner, "speed", speed)
}

func (f *Logging) FloatingText(owner uuid.UUID, value float64, pos geom.Vec2) {
	f.Logger.Debug("damage number", "owner", owner, "value", int(value), "x", pos.X, "y", pos.Y)
}
