package tint

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestCompositor_NoTintsKeepsOriginal(t *testing.T) {
	orig := MustHex("#808080", 1)
	c := NewCompositor(uuid.New(), orig, 0, nil)

	got := c.Color()
	assert.InDelta(t, orig.RGB.R, got.RGB.R, 1e-9)
	assert.InDelta(t, orig.RGB.G, got.RGB.G, 1e-9)
	assert.InDelta(t, orig.RGB.B, got.RGB.B, 1e-9)
	assert.Equal(t, 1.0, got.Alpha)
}

func TestCompositor_WeightedBlend(t *testing.T) {
	white := Color{RGB: colorful.Color{R: 1, G: 1, B: 1}, Alpha: 1}
	c := NewCompositor(uuid.New(), white, DefaultFactor, nil)

	red := Color{RGB: colorful.Color{R: 1}, Alpha: 0.5}
	c.Apply(red)

	// (1 + 1*0.5*4) / (1 + 0.5*4) for red, (1 + 0) / 3 for the rest
	got := c.Color()
	assert.InDelta(t, 1.0, got.RGB.R, 1e-9)
	assert.InDelta(t, 1.0/3, got.RGB.G, 1e-9)
	assert.InDelta(t, 1.0/3, got.RGB.B, 1e-9)
}

func TestCompositor_ApplyRemove(t *testing.T) {
	c := NewCompositor(uuid.New(), MustHex("#ffffff", 1), DefaultFactor, nil)
	blue := MustHex("#0000ff", 0.5)

	c.Apply(blue)
	c.Apply(blue)
	c.Apply(None)
	require.Equal(t, 2, c.Contributions(), "invisible tints are ignored")

	assert.True(t, c.Remove(blue))
	assert.Equal(t, 1, c.Contributions(), "only one equal contribution is removed")
	assert.True(t, c.Remove(blue))
	assert.False(t, c.Remove(blue))
	assert.Equal(t, 0, c.Contributions())
}

func TestCompositor_AnimationSpeed(t *testing.T) {
	c := NewCompositor(uuid.New(), None, DefaultFactor, nil)

	c.ApplyAnimationMultiplier(0.5)
	assert.InDelta(t, 0.5, c.AnimationSpeed(), 1e-12)

	c.ApplyAnimationMultiplier(0)
	assert.InDelta(t, 0.5*minAnimationFactor, c.AnimationSpeed(), 1e-15)

	c.RemoveAnimationMultiplier(0)
	c.RemoveAnimationMultiplier(0.5)
	assert.InDelta(t, 1.0, c.AnimationSpeed(), 1e-9, "freeze factor divides back out")
}

func TestCompositor_SetAlphaKeepsTints(t *testing.T) {
	c := NewCompositor(uuid.New(), MustHex("#ffffff", 1), DefaultFactor, nil)
	c.Apply(MustHex("#ff0000", 1))

	c.SetAlpha(0.25)

	assert.Equal(t, 0.25, c.Color().Alpha)
	assert.Equal(t, 1, c.Contributions())
}

func TestHex(t *testing.T) {
	c, err := Hex("#ff0000", 0.3)
	require.NoError(t, err)
	assert.True(t, c.Visible())
	assert.InDelta(t, 1.0, c.RGB.R, 1e-9)

	_, err = Hex("not-a-colour", 1)
	assert.Error(t, err)

	assert.False(t, None.Visible())
}

func TestColor_UnmarshalYAML(t *testing.T) {
	var got struct {
		Tint  Color `yaml:"tint"`
		Empty Color `yaml:"empty"`
	}
	src := "tint:\n  color: \"#00ff00\"\n  alpha: 0.4\nempty: {}\n"

	require.NoError(t, yaml.Unmarshal([]byte(src), &got))
	assert.InDelta(t, 1.0, got.Tint.RGB.G, 1e-9)
	assert.Equal(t, 0.4, got.Tint.Alpha)
	assert.Equal(t, None, got.Empty)

	err := yaml.Unmarshal([]byte("tint:\n  color: \"#zzz\"\n"), &got)
	assert.Error(t, err)
}
