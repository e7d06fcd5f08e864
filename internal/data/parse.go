package data

import (
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/rogue2d/internal/game/buff"
	"github.com/udisondev/rogue2d/internal/game/tint"
	"github.com/udisondev/rogue2d/internal/game/weapon"
	"github.com/udisondev/rogue2d/internal/model"
	"github.com/udisondev/rogue2d/internal/stat"
)

// Every section is kept as raw nodes: each entry is decoded on top of its
// authored defaults, so omitted fields keep default (or neutral) values.
type catalogYAML struct {
	Buffs      []yaml.Node `yaml:"buffs"`
	Characters []yaml.Node `yaml:"characters"`
	Enemies    []yaml.Node `yaml:"enemies"`
	Weapons    []yaml.Node `yaml:"weapons"`
}

type buffYAML struct {
	ID       string        `yaml:"id"`
	Name     string        `yaml:"name"`
	Category buff.Category `yaml:"category"`
	Stack    string        `yaml:"stack"`
	Modifier string        `yaml:"modifier"`
	Variants []yaml.Node   `yaml:"variants"`
}

type variantYAML struct {
	Name            string         `yaml:"name"`
	Duration        time.Duration  `yaml:"duration"`
	TickInterval    time.Duration  `yaml:"tick_interval"`
	DamagePerSecond float64        `yaml:"damage_per_second"`
	HealPerSecond   float64        `yaml:"heal_per_second"`
	AnimationSpeed  float64        `yaml:"animation_speed"`
	Tint            tint.Color     `yaml:"tint"`
	Effect          string         `yaml:"effect"`
	Player          stat.Character `yaml:"player"`
	Enemy           stat.Enemy     `yaml:"enemy"`
}

// infoYAML references a buff from a weapon or an enemy attack.
// Probability defaults to 1.
type infoYAML struct {
	Buff        string   `yaml:"buff"`
	Variant     int      `yaml:"variant"`
	Probability *float64 `yaml:"probability"`
}

type characterYAML struct {
	ID             string             `yaml:"id"`
	Name           string             `yaml:"name"`
	Stats          stat.Character     `yaml:"stats"`
	StartingWeapon string             `yaml:"starting_weapon"`
	LevelRanges    []model.LevelRange `yaml:"level_ranges"`
	Invincibility  time.Duration      `yaml:"invincibility"`
	DamageEffect   string             `yaml:"damage_effect"`
	BlockedEffect  string             `yaml:"blocked_effect"`
	Sprite         tint.Color         `yaml:"sprite"`
}

type enemyYAML struct {
	ID            string        `yaml:"id"`
	Name          string        `yaml:"name"`
	Stats         stat.Enemy    `yaml:"stats"`
	AttackEffects []infoYAML    `yaml:"attack_effects"`
	Sprite        tint.Color    `yaml:"sprite"`
	DamageColor   tint.Color    `yaml:"damage_color"`
	FlashDuration time.Duration `yaml:"flash_duration"`
	DeathFade     time.Duration `yaml:"death_fade"`
}

type weaponYAML struct {
	ID         string       `yaml:"id"`
	Name       string       `yaml:"name"`
	Behaviour  string       `yaml:"behaviour"`
	Stats      weapon.Stats `yaml:"stats"`
	HitEffects []infoYAML   `yaml:"hit_effects"`
}

// Parse decodes a YAML catalog. Buffs are resolved first so that weapons and
// enemies can reference them; weapon behaviours are validated here, not at spawn.
func Parse(raw []byte) (*Catalog, error) {
	var doc catalogYAML
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	c := &Catalog{
		buffs:      make(map[string]*buff.Definition, len(doc.Buffs)),
		characters: make(map[string]Character, len(doc.Characters)),
		enemies:    make(map[string]model.EnemyConfig, len(doc.Enemies)),
		weapons:    make(map[string]weapon.Data, len(doc.Weapons)),
	}

	for i := range doc.Buffs {
		def, err := parseBuff(&doc.Buffs[i])
		if err != nil {
			return nil, err
		}
		if _, dup := c.buffs[def.ID]; dup {
			return nil, fmt.Errorf("buff %q: %w", def.ID, ErrDuplicateID)
		}
		c.buffs[def.ID] = def
	}

	for i := range doc.Weapons {
		w, err := c.parseWeapon(&doc.Weapons[i])
		if err != nil {
			return nil, err
		}
		if _, dup := c.weapons[w.ID]; dup {
			return nil, fmt.Errorf("weapon %q: %w", w.ID, ErrDuplicateID)
		}
		c.weapons[w.ID] = w
	}

	for i := range doc.Enemies {
		id, e, err := c.parseEnemy(&doc.Enemies[i])
		if err != nil {
			return nil, err
		}
		if _, dup := c.enemies[id]; dup {
			return nil, fmt.Errorf("enemy %q: %w", id, ErrDuplicateID)
		}
		c.enemies[id] = e
	}

	for i := range doc.Characters {
		ch, err := c.parseCharacter(&doc.Characters[i])
		if err != nil {
			return nil, err
		}
		if _, dup := c.characters[ch.ID]; dup {
			return nil, fmt.Errorf("character %q: %w", ch.ID, ErrDuplicateID)
		}
		c.characters[ch.ID] = ch
	}

	c.logLoaded()
	return c, nil
}

func parseBuff(node *yaml.Node) (*buff.Definition, error) {
	var raw buffYAML
	if err := node.Decode(&raw); err != nil {
		return nil, fmt.Errorf("line %d: %w", node.Line, err)
	}
	if raw.ID == "" {
		return nil, fmt.Errorf("line %d: buff without id", node.Line)
	}

	def := &buff.Definition{
		ID:       raw.ID,
		Name:     raw.Name,
		Category: raw.Category,
	}

	stack, stackErr := buff.ParseStackPolicy(orDefault(raw.Stack, "refresh_duration_only"))
	kind, kindErr := buff.ParseModifierKind(orDefault(raw.Modifier, "additive"))
	if stackErr != nil || kindErr != nil {
		// Keep the game running with a visibly inert buff.
		slog.Warn("buff has invalid policy, loaded as inert",
			"buff", raw.ID,
			"stack", raw.Stack,
			"modifier", raw.Modifier)
		def.Stack = buff.RefreshDurationOnly
		def.Modifier = buff.Additive
		return def, nil
	}
	def.Stack = stack
	def.Modifier = kind

	def.Variants = make([]buff.Variant, 0, len(raw.Variants))
	for i := range raw.Variants {
		v, err := parseVariant(&raw.Variants[i], kind)
		if err != nil {
			return nil, fmt.Errorf("buff %s variant %d: %w", raw.ID, i, err)
		}
		if v.TickInterval <= 0 && (v.DamagePerSecond != 0 || v.HealPerSecond != 0) {
			slog.Warn("buff variant has damage or healing but no tick interval, it will never tick",
				"buff", raw.ID,
				"variant", i)
		}
		def.Variants = append(def.Variants, v)
	}
	if len(def.Variants) == 0 {
		slog.Warn("buff has no variants, loaded as inert", "buff", raw.ID)
	}
	return def, nil
}

// parseVariant decodes a variant on top of the neutral variant for kind, so an
// omitted multiplicative field stays 1 and an omitted additive field stays 0.
func parseVariant(node *yaml.Node, kind buff.ModifierKind) (buff.Variant, error) {
	n := buff.NeutralVariant(kind)
	raw := variantYAML{
		Name:           n.Name,
		Duration:       n.Duration,
		TickInterval:   n.TickInterval,
		AnimationSpeed: n.AnimationSpeed,
		Player:         n.Player,
		Enemy:          n.Enemy,
	}
	if err := node.Decode(&raw); err != nil {
		return buff.Variant{}, fmt.Errorf("line %d: %w", node.Line, err)
	}
	return buff.Variant{
		Name:            raw.Name,
		Duration:        raw.Duration,
		TickInterval:    raw.TickInterval,
		DamagePerSecond: raw.DamagePerSecond,
		HealPerSecond:   raw.HealPerSecond,
		AnimationSpeed:  raw.AnimationSpeed,
		Tint:            raw.Tint,
		Effect:          raw.Effect,
		Player:          raw.Player,
		Enemy:           raw.Enemy,
	}, nil
}

func (c *Catalog) parseWeapon(node *yaml.Node) (weapon.Data, error) {
	var raw weaponYAML
	if err := node.Decode(&raw); err != nil {
		return weapon.Data{}, fmt.Errorf("line %d: %w", node.Line, err)
	}

	effects, err := c.resolveInfos(raw.HitEffects)
	if err != nil {
		return weapon.Data{}, fmt.Errorf("weapon %s: %w", raw.ID, err)
	}
	d := weapon.Data{
		ID:        raw.ID,
		Name:      orDefault(raw.Name, raw.ID),
		Behaviour: raw.Behaviour,
		Stats:     raw.Stats,
	}
	d.Stats.HitEffects = effects

	if err := weapon.Validate(d); err != nil {
		return weapon.Data{}, err
	}
	return d, nil
}

func (c *Catalog) parseEnemy(node *yaml.Node) (string, model.EnemyConfig, error) {
	def := model.DefaultEnemyConfig()
	raw := enemyYAML{
		Stats:         def.Base,
		Sprite:        def.Sprite,
		DamageColor:   def.DamageColor,
		FlashDuration: def.FlashDuration,
		DeathFade:     def.DeathFade,
	}
	if err := node.Decode(&raw); err != nil {
		return "", model.EnemyConfig{}, fmt.Errorf("line %d: %w", node.Line, err)
	}
	if raw.ID == "" {
		return "", model.EnemyConfig{}, fmt.Errorf("line %d: enemy without id", node.Line)
	}

	effects, err := c.resolveInfos(raw.AttackEffects)
	if err != nil {
		return "", model.EnemyConfig{}, fmt.Errorf("enemy %s: %w", raw.ID, err)
	}

	def.Name = orDefault(raw.Name, raw.ID)
	def.Base = raw.Stats
	def.AttackEffects = effects
	def.Sprite = raw.Sprite
	def.DamageColor = raw.DamageColor
	def.FlashDuration = raw.FlashDuration
	def.DeathFade = raw.DeathFade
	return raw.ID, def, nil
}

func (c *Catalog) parseCharacter(node *yaml.Node) (Character, error) {
	def := model.DefaultPlayerConfig()
	raw := characterYAML{
		Stats:         def.Base,
		LevelRanges:   def.LevelRanges,
		Invincibility: def.Invincibility,
		DamageEffect:  def.DamageEffect,
		BlockedEffect: def.BlockedEffect,
		Sprite:        def.Sprite,
	}
	if err := node.Decode(&raw); err != nil {
		return Character{}, fmt.Errorf("line %d: %w", node.Line, err)
	}
	if raw.ID == "" {
		return Character{}, fmt.Errorf("line %d: character without id", node.Line)
	}
	if raw.StartingWeapon != "" {
		if _, ok := c.weapons[raw.StartingWeapon]; !ok {
			return Character{}, fmt.Errorf("character %s: %w: %q", raw.ID, ErrUnknownWeapon, raw.StartingWeapon)
		}
	}

	def.Name = orDefault(raw.Name, raw.ID)
	def.Base = raw.Stats
	def.LevelRanges = raw.LevelRanges
	def.Invincibility = raw.Invincibility
	def.DamageEffect = raw.DamageEffect
	def.BlockedEffect = raw.BlockedEffect
	def.Sprite = raw.Sprite
	return Character{
		ID:             raw.ID,
		Config:         def,
		StartingWeapon: raw.StartingWeapon,
	}, nil
}

func (c *Catalog) resolveInfos(raw []infoYAML) ([]buff.Info, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]buff.Info, 0, len(raw))
	for _, r := range raw {
		def, ok := c.buffs[r.Buff]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownBuff, r.Buff)
		}
		if !def.HasVariant(r.Variant) {
			slog.Warn("buff reference names a missing variant, it will be inert",
				"buff", r.Buff,
				"variant", r.Variant)
		}
		p := 1.0
		if r.Probability != nil {
			p = *r.Probability
		}
		out = append(out, buff.Info{Buff: def, Variant: r.Variant, Probability: p})
	}
	return out, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
