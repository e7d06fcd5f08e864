package world

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/yohamta/donburi"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/rogue2d/internal/game/buff"
	"github.com/udisondev/rogue2d/internal/game/geom"
	"github.com/udisondev/rogue2d/internal/game/weapon"
	"github.com/udisondev/rogue2d/internal/model"
)

// ErrGameOver is returned by Step and Run once no player is left alive.
var ErrGameOver = errors.New("game over")

// State of a session.
type State int32

const (
	StateGameplay State = iota
	StateGameOver
)

func (s State) String() string {
	switch s {
	case StateGameplay:
		return "gameplay"
	case StateGameOver:
		return "game_over"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Options configure a Session. Zero values get defaults in NewSession.
type Options struct {
	Env model.Env

	// Workers bounds how many enemies are advanced in parallel.
	Workers int
	// ContactRadius is the distance at which an enemy touches a player.
	ContactRadius float64
	// ExperiencePerKill is granted to the nearest living player on every kill.
	ExperiencePerKill int
}

// Session — одна игровая сессия: игроки, враги, их оружие и глобальные
// множители сложности. Заменяет глобальные синглтоны: создаётся явно и
// передаётся тем, кому нужна.
//
// Session implements model.Scalers. The donburi world and the id indexes are
// guarded by mu; entity methods are never called with mu held.
type Session struct {
	mu      sync.RWMutex
	world   donburi.World
	players map[uuid.UUID]donburi.Entity
	enemies map[uuid.UUID]donburi.Entity

	env               model.Env
	workers           int
	contactRadius     float64
	experiencePerKill int

	state atomic.Int32
	steps atomic.Int64
	kills atomic.Int64
}

// NewSession creates an empty session in the gameplay state.
func NewSession(opts Options) *Session {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Env.Roller == nil {
		opts.Env.Roller = buff.GlobalRoller{}
	}
	if opts.Workers > 1 {
		opts.Env.Roller = buff.NewSyncRoller(opts.Env.Roller)
	}

	return &Session{
		world:             donburi.NewWorld(),
		players:           make(map[uuid.UUID]donburi.Entity),
		enemies:           make(map[uuid.UUID]donburi.Entity),
		env:               opts.Env,
		workers:           opts.Workers,
		contactRadius:     opts.ContactRadius,
		experiencePerKill: opts.ExperiencePerKill,
	}
}

// State returns the current session state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Over reports whether the game is over.
func (s *Session) Over() bool {
	return s.State() == StateGameOver
}

// Steps returns how many steps have completed.
func (s *Session) Steps() int64 {
	return s.steps.Load()
}

// Kills returns how many enemies have died.
func (s *Session) Kills() int64 {
	return s.kills.Load()
}

// AddPlayer creates a player bound to this session and equips the given weapons.
// Level-ups and curse changes recalculate every enemy; the last death ends the game.
func (s *Session) AddPlayer(cfg model.PlayerConfig, weapons ...weapon.Data) (*model.Player, error) {
	p := model.NewPlayer(cfg, s.env, model.PlayerHooks{
		OnLevelUp:      func(*model.Player, int) { s.RecalculateEnemies() },
		OnCurseChanged: func(*model.Player) { s.RecalculateEnemies() },
		OnKilled:       s.playerKilled,
	})

	equipped := make([]*weapon.Weapon, 0, len(weapons))
	for _, d := range weapons {
		w, err := weapon.New(d, p, s.env.Roller)
		if err != nil {
			return nil, fmt.Errorf("equipping %s: %w", d.ID, err)
		}
		equipped = append(equipped, w)
	}

	s.mu.Lock()
	entity := s.world.Create(Player)
	Player.SetValue(s.world.Entry(entity), PlayerData{Player: p, Weapons: equipped})
	s.players[p.ID()] = entity
	s.mu.Unlock()

	slog.Info("player joined",
		"player", p.ID(),
		"name", cfg.Name,
		"weapons", len(equipped))

	// new player changes the session aggregates
	s.RecalculateEnemies()
	return p, nil
}

// Equip adds a weapon to a registered player.
func (s *Session) Equip(id uuid.UUID, d weapon.Data) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entity, ok := s.players[id]
	if !ok || !s.world.Valid(entity) {
		return fmt.Errorf("equipping %s: player %s not found", d.ID, id)
	}
	data := Player.Get(s.world.Entry(entity))

	w, err := weapon.New(d, data.Player, s.env.Roller)
	if err != nil {
		return fmt.Errorf("equipping %s: %w", d.ID, err)
	}
	data.Weapons = append(data.Weapons, w)
	return nil
}

// AddEnemy spawns an enemy scaled by this session's aggregates.
func (s *Session) AddEnemy(cfg model.EnemyConfig) *model.Enemy {
	e := model.NewEnemy(cfg, s, s.env)
	e.OnKilled(s.enemyKilled)

	s.mu.Lock()
	entity := s.world.Create(Enemy)
	Enemy.SetValue(s.world.Entry(entity), EnemyData{Enemy: e})
	s.enemies[e.ID()] = entity
	s.mu.Unlock()

	return e
}

// SpawnRing places count enemies evenly on a circle of radius around center.
func (s *Session) SpawnRing(cfg model.EnemyConfig, count int, center geom.Vec2, radius float64) []*model.Enemy {
	spawned := make([]*model.Enemy, 0, count)
	for i := range count {
		angle := 2 * math.Pi * float64(i) / float64(count)
		cfg.Position = center.Add(geom.Vec2{X: math.Cos(angle), Y: math.Sin(angle)}.Scale(radius))
		spawned = append(spawned, s.AddEnemy(cfg))
	}
	if count > 0 {
		slog.Debug("enemies spawned", "name", cfg.Name, "count", count, "radius", radius)
	}
	return spawned
}

// Remove unregisters a player or an enemy and releases its active buffs.
// Removing a player recalculates every enemy, since the aggregates changed.
func (s *Session) Remove(id uuid.UUID) bool {
	s.mu.Lock()
	var (
		player *model.Player
		enemy  *model.Enemy
	)
	entity, ok := s.enemies[id]
	if ok {
		delete(s.enemies, id)
		if s.world.Valid(entity) {
			enemy = Enemy.Get(s.world.Entry(entity)).Enemy
		}
	} else if entity, ok = s.players[id]; ok {
		delete(s.players, id)
		if s.world.Valid(entity) {
			player = Player.Get(s.world.Entry(entity)).Player
		}
	}
	if ok && s.world.Valid(entity) {
		s.world.Remove(entity)
	}
	s.mu.Unlock()

	switch {
	case enemy != nil:
		enemy.Release()
	case player != nil:
		player.Release()
		s.RecalculateEnemies()
	}
	return ok
}

// Players returns every registered player.
func (s *Session) Players() []*model.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Player, 0, len(s.players))
	Player.Each(s.world, func(entry *donburi.Entry) {
		out = append(out, Player.Get(entry).Player)
	})
	return out
}

// Enemies returns every registered enemy, dead ones still fading included.
func (s *Session) Enemies() []*model.Enemy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enemySnapshot()
}

func (s *Session) enemySnapshot() []*model.Enemy {
	out := make([]*model.Enemy, 0, len(s.enemies))
	Enemy.Each(s.world, func(entry *donburi.Entry) {
		out = append(out, Enemy.Get(entry).Enemy)
	})
	return out
}

// playerSnapshot copies player components so they can be used without mu.
func (s *Session) playerSnapshot() []PlayerData {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]PlayerData, 0, len(s.players))
	Player.Each(s.world, func(entry *donburi.Entry) {
		data := Player.Get(entry)
		out = append(out, PlayerData{Player: data.Player, Weapons: data.Weapons})
	})
	return out
}

// CumulativeCurse returns max(1, sum of actual curse over all players).
// Recomputed on every call.
func (s *Session) CumulativeCurse() float64 {
	total := 0.0
	for _, p := range s.Players() {
		total += p.Actual().Curse
	}
	return max(1, total)
}

// CumulativeLevel returns max(1, sum of player levels).
// Recomputed on every call.
func (s *Session) CumulativeLevel() float64 {
	total := 0
	for _, p := range s.Players() {
		total += p.Level()
	}
	return max(1, float64(total))
}

// RecalculateEnemies recomputes every enemy against the current aggregates.
func (s *Session) RecalculateEnemies() {
	enemies := s.Enemies()
	for _, e := range enemies {
		e.RecalculateStats()
	}
	if len(enemies) > 0 {
		slog.Debug("enemies recalculated",
			"count", len(enemies),
			"curse", s.CumulativeCurse(),
			"level", s.CumulativeLevel())
	}
}

// Step advances the session by dt: players, then their weapons, then enemies
// in parallel (bounded by Workers), then despawns faded enemies.
// Returns ErrGameOver once the game is over.
func (s *Session) Step(ctx context.Context, dt time.Duration) error {
	if s.Over() {
		return ErrGameOver
	}

	players := s.playerSnapshot()
	for _, pd := range players {
		pd.Player.Advance(dt)
	}

	enemies := s.Enemies()
	targets := make([]weapon.Target, len(enemies))
	for i, e := range enemies {
		targets[i] = e
	}
	for _, pd := range players {
		for _, w := range pd.Weapons {
			w.Advance(dt, targets)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, e := range enemies {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s.stepEnemy(e, players, dt)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("stepping enemies: %w", err)
	}

	s.despawn(enemies)
	s.steps.Add(1)

	if s.Over() {
		return ErrGameOver
	}
	return nil
}

// stepEnemy chases the nearest living player, advances, then touches the
// player if in contact range.
func (s *Session) stepEnemy(e *model.Enemy, players []PlayerData, dt time.Duration) {
	target := nearestAlive(players, e.Position())
	if target != nil {
		e.Chase(target.Position())
	}

	e.Advance(dt)

	if target != nil && e.Alive() && e.Position().Dist(target.Position()) <= s.contactRadius {
		e.Touch(target)
	}
}

func (s *Session) despawn(enemies []*model.Enemy) {
	n := 0
	for _, e := range enemies {
		if e.Despawned() && s.Remove(e.ID()) {
			n++
		}
	}
	if n > 0 {
		slog.Debug("enemies despawned", "count", n)
	}
}

// Run steps the session by dt every tick until ctx is done, the game is over
// or limit steps have run (0 means no limit). A non-positive tick runs steps
// back to back.
func (s *Session) Run(ctx context.Context, tick, dt time.Duration, limit int) error {
	var ticks <-chan time.Time
	if tick > 0 {
		ticker := time.NewTicker(tick)
		defer ticker.Stop()
		ticks = ticker.C
	}

	slog.Info("session started", "tick", tick, "dt", dt, "limit", limit)

	for limit == 0 || s.Steps() < int64(limit) {
		if ticks != nil {
			select {
			case <-ctx.Done():
				slog.Info("session stopping", "steps", s.Steps())
				return ctx.Err()
			case <-ticks:
			}
		} else if err := ctx.Err(); err != nil {
			slog.Info("session stopping", "steps", s.Steps())
			return err
		}

		if err := s.Step(ctx, dt); err != nil {
			return err
		}
	}

	slog.Info("session finished", "steps", s.Steps(), "kills", s.Kills())
	return nil
}

// enemyKilled awards experience to the nearest living player.
func (s *Session) enemyKilled(e *model.Enemy) {
	s.kills.Add(1)
	if s.experiencePerKill <= 0 {
		return
	}
	if p := nearestAlive(s.playerSnapshot(), e.Position()); p != nil {
		p.AddExperience(s.experiencePerKill)
	}
}

// playerKilled ends the game once no player is alive.
func (s *Session) playerKilled(p *model.Player, level int) {
	for _, pd := range s.playerSnapshot() {
		if pd.Player.Alive() {
			return
		}
	}
	if s.state.CompareAndSwap(int32(StateGameplay), int32(StateGameOver)) {
		slog.Info("game over", "last_player", p.ID(), "level", level, "kills", s.Kills())
	}
}

func nearestAlive(players []PlayerData, from geom.Vec2) *model.Player {
	var (
		best     *model.Player
		bestDist = math.Inf(1)
	)
	for _, pd := range players {
		if !pd.Player.Alive() {
			continue
		}
		if d := pd.Player.Position().Dist(from); d < bestDist {
			best, bestDist = pd.Player, d
		}
	}
	return best
}
