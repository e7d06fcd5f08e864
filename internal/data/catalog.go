package data

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/udisondev/rogue2d/internal/game/buff"
	"github.com/udisondev/rogue2d/internal/game/weapon"
	"github.com/udisondev/rogue2d/internal/model"
)

var (
	ErrUnknownBuff      = errors.New("unknown buff")
	ErrUnknownCharacter = errors.New("unknown character")
	ErrUnknownEnemy     = errors.New("unknown enemy")
	ErrUnknownWeapon    = errors.New("unknown weapon")
	ErrDuplicateID      = errors.New("duplicate id")
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Character — персонаж из каталога: конфигурация игрока и стартовое оружие.
type Character struct {
	ID             string
	Config         model.PlayerConfig
	StartingWeapon string
}

// Catalog holds every authored buff, character, enemy and weapon.
// Immutable after loading; shared by all sessions.
type Catalog struct {
	buffs      map[string]*buff.Definition
	characters map[string]Character
	enemies    map[string]model.EnemyConfig
	weapons    map[string]weapon.Data
}

// Default parses the catalog embedded in the binary.
func Default() (*Catalog, error) {
	c, err := Parse(defaultCatalog)
	if err != nil {
		return nil, fmt.Errorf("parsing embedded catalog: %w", err)
	}
	return c, nil
}

// Load reads a catalog from a YAML file.
// An empty path loads the embedded catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	c, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}
	return c, nil
}

// Buff returns the definition with the given id.
func (c *Catalog) Buff(id string) (*buff.Definition, error) {
	d, ok := c.buffs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBuff, id)
	}
	return d, nil
}

// Character returns the character with the given id.
func (c *Catalog) Character(id string) (Character, error) {
	ch, ok := c.characters[id]
	if !ok {
		return Character{}, fmt.Errorf("%w: %q", ErrUnknownCharacter, id)
	}
	return ch, nil
}

// Enemy returns the enemy configuration with the given id.
func (c *Catalog) Enemy(id string) (model.EnemyConfig, error) {
	e, ok := c.enemies[id]
	if !ok {
		return model.EnemyConfig{}, fmt.Errorf("%w: %q", ErrUnknownEnemy, id)
	}
	return e, nil
}

// Weapon returns the weapon with the given id.
func (c *Catalog) Weapon(id string) (weapon.Data, error) {
	w, ok := c.weapons[id]
	if !ok {
		return weapon.Data{}, fmt.Errorf("%w: %q", ErrUnknownWeapon, id)
	}
	return w, nil
}

// BuffIDs returns the sorted ids of every buff.
func (c *Catalog) BuffIDs() []string {
	return sortedKeys(c.buffs)
}

// EnemyIDs returns the sorted ids of every enemy.
func (c *Catalog) EnemyIDs() []string {
	return sortedKeys(c.enemies)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (c *Catalog) logLoaded() {
	slog.Info("loaded catalog",
		"buffs", len(c.buffs),
		"characters", len(c.characters),
		"enemies", len(c.enemies),
		"weapons", len(c.weapons))
}
