package weapon

import (
	"errors"
	"fmt"
)

// ErrUnknownBehaviour is returned for a behaviour key nobody registered.
var ErrUnknownBehaviour = errors.New("unknown weapon behaviour")

// Factory builds the behaviour of one weapon from its authored data.
type Factory func(d Data) (Behaviour, error)

// behaviourRegistry maps behaviour key → factory function.
// Populated by init() in the behaviour files.
var behaviourRegistry = map[string]Factory{}

// RegisterBehaviour registers a behaviour factory under key.
// Called from init() in each behaviour implementation file.
func RegisterBehaviour(key string, f Factory) {
	behaviourRegistry[key] = f
}

// Behaviours returns the registered keys.
func Behaviours() []string {
	keys := make([]string, 0, len(behaviourRegistry))
	for k := range behaviourRegistry {
		keys = append(keys, k)
	}
	return keys
}

// Validate checks that d names a registered behaviour and that the factory
// accepts it. Catalog loading calls it so bad data fails before a session starts.
func Validate(d Data) error {
	_, err := newBehaviour(d)
	return err
}

func newBehaviour(d Data) (Behaviour, error) {
	f, ok := behaviourRegistry[d.Behaviour]
	if !ok {
		return nil, fmt.Errorf("weapon %s: %w: %q", d.ID, ErrUnknownBehaviour, d.Behaviour)
	}
	b, err := f(d)
	if err != nil {
		return nil, fmt.Errorf("weapon %s: %w", d.ID, err)
	}
	return b, nil
}

func init() {
	RegisterBehaviour("aura", NewAura)
	RegisterBehaviour("strike", NewStrike)
}
