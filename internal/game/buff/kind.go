package buff

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category flags classify an effect for resistance gating only.
type Category uint8

const (
	CategoryBuff Category = 1 << iota
	CategoryDebuff
	CategoryFreeze
	CategoryStrong
)

var categoryNames = map[string]Category{
	"buff":   CategoryBuff,
	"debuff": CategoryDebuff,
	"freeze": CategoryFreeze,
	"strong": CategoryStrong,
}

// Has reports whether any bit of f is set in c.
func (c Category) Has(f Category) bool {
	return c&f != 0
}

func (c Category) String() string {
	var parts []string
	for _, n := range []string{"buff", "debuff", "freeze", "strong"} {
		if c.Has(categoryNames[n]) {
			parts = append(parts, n)
		}
	}
	return strings.Join(parts, "|")
}

// ParseCategory converts a list of names into flags.
func ParseCategory(names []string) (Category, error) {
	var c Category
	for _, n := range names {
		f, ok := categoryNames[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return 0, fmt.Errorf("unknown buff category %q", n)
		}
		c |= f
	}
	return c, nil
}

// UnmarshalYAML accepts a sequence of category names.
func (c *Category) UnmarshalYAML(value *yaml.Node) error {
	var names []string
	if err := value.Decode(&names); err != nil {
		return err
	}
	parsed, err := ParseCategory(names)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// StackPolicy governs what happens when an effect is applied while already active.
type StackPolicy uint8

const (
	// RefreshDurationOnly resets the remaining time of the existing instance.
	RefreshDurationOnly StackPolicy = iota
	// StacksFully always adds another instance.
	StacksFully
	// DoesNotStack adds a duplicate instance when one is already active.
	// The name does not match the behaviour; kept because DoT balance depends on it.
	DoesNotStack
)

var stackPolicyNames = map[string]StackPolicy{
	"refresh_duration_only": RefreshDurationOnly,
	"stacks_fully":          StacksFully,
	"does_not_stack":        DoesNotStack,
}

func (p StackPolicy) String() string {
	for n, v := range stackPolicyNames {
		if v == p {
			return n
		}
	}
	return fmt.Sprintf("StackPolicy(%d)", uint8(p))
}

// ParseStackPolicy parses a catalog stack policy name.
func ParseStackPolicy(s string) (StackPolicy, error) {
	p, ok := stackPolicyNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("unknown stack policy %q", s)
	}
	return p, nil
}

// ModifierKind decides which accumulator a variant's stat delta feeds.
type ModifierKind uint8

const (
	Additive ModifierKind = iota
	Multiplicative
)

func (k ModifierKind) String() string {
	switch k {
	case Additive:
		return "additive"
	case Multiplicative:
		return "multiplicative"
	default:
		return fmt.Sprintf("ModifierKind(%d)", uint8(k))
	}
}

// Valid reports whether k is a known modifier kind.
func (k ModifierKind) Valid() bool {
	return k == Additive || k == Multiplicative
}

// ParseModifierKind parses a catalog modifier kind name.
func ParseModifierKind(s string) (ModifierKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "additive", "add":
		return Additive, nil
	case "multiplicative", "mul":
		return Multiplicative, nil
	default:
		return 0, fmt.Errorf("unknown modifier kind %q", s)
	}
}
