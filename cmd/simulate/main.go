package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/rogue2d/internal/config"
	"github.com/udisondev/rogue2d/internal/data"
	"github.com/udisondev/rogue2d/internal/game/buff"
	"github.com/udisondev/rogue2d/internal/game/fx"
	"github.com/udisondev/rogue2d/internal/game/weapon"
	"github.com/udisondev/rogue2d/internal/model"
	"github.com/udisondev/rogue2d/internal/world"
)

const SimulateConfigPath = "config/simulate.yaml"

// progressInterval — как часто фоновая горутина пишет сводку сессии.
const progressInterval = 5 * time.Second

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := SimulateConfigPath
	if p := os.Getenv("ROGUE2D_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadSimulation(cfgPath)
	if err != nil {
		return fmt.Errorf("loading simulate config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	slog.Info("rogue2d simulation starting",
		"log_level", cfg.LogLevel,
		"character", cfg.Character,
		"workers", cfg.Workers)

	catalog, err := data.Load(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	slog.Debug("catalog contents",
		"buffs", catalog.BuffIDs(),
		"enemies", catalog.EnemyIDs(),
		"weapon_behaviours", weapon.Behaviours())

	fxLayer := fx.NewLogging(slog.Default())
	session := world.NewSession(world.Options{
		Env: model.Env{
			Layer:   fxLayer,
			Numbers: fxLayer,
			Roller:  newRoller(cfg.Seed),
		},
		Workers:           cfg.Workers,
		ContactRadius:     cfg.ContactRadius,
		ExperiencePerKill: cfg.ExperiencePerKill,
	})

	if err := populate(session, catalog, cfg); err != nil {
		return err
	}

	var tick time.Duration
	if cfg.Realtime {
		tick = cfg.Step
	}

	g, gctx := errgroup.WithContext(ctx)
	done := make(chan struct{})

	g.Go(func() error {
		defer close(done)
		err := session.Run(gctx, tick, cfg.Step, cfg.Steps)
		if errors.Is(err, world.ErrGameOver) || errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		ticker := time.NewTicker(progressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return nil
			case <-ticker.C:
				logProgress(session)
			}
		}
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("running session: %w", err)
	}

	logProgress(session)
	slog.Info("rogue2d simulation finished", "state", session.State())
	return nil
}

// populate adds the configured character with its starting weapon and the
// configured enemy rings around it.
func populate(s *world.Session, catalog *data.Catalog, cfg config.Simulation) error {
	character, err := catalog.Character(cfg.Character)
	if err != nil {
		return fmt.Errorf("selecting character: %w", err)
	}

	pc := character.Config
	if cfg.Cosmetics.TintFactor > 0 {
		pc.TintFactor = cfg.Cosmetics.TintFactor
	}
	if cfg.Cosmetics.Invincibility > 0 {
		pc.Invincibility = cfg.Cosmetics.Invincibility
	}

	var weapons []weapon.Data
	if character.StartingWeapon != "" {
		w, err := catalog.Weapon(character.StartingWeapon)
		if err != nil {
			return fmt.Errorf("selecting starting weapon: %w", err)
		}
		weapons = append(weapons, w)
	}

	p, err := s.AddPlayer(pc, weapons...)
	if err != nil {
		return fmt.Errorf("adding player: %w", err)
	}

	for _, sp := range cfg.Spawns {
		ec, err := catalog.Enemy(sp.Enemy)
		if err != nil {
			return fmt.Errorf("spawning %s (known: %v): %w", sp.Enemy, catalog.EnemyIDs(), err)
		}
		if cfg.Cosmetics.TintFactor > 0 {
			ec.TintFactor = cfg.Cosmetics.TintFactor
		}
		if cfg.Cosmetics.FlashDuration > 0 {
			ec.FlashDuration = cfg.Cosmetics.FlashDuration
		}
		if cfg.Cosmetics.DeathFade > 0 {
			ec.DeathFade = cfg.Cosmetics.DeathFade
		}
		s.SpawnRing(ec, sp.Count, p.Position(), sp.Radius)
	}

	slog.Info("session populated",
		"player", p.ID(),
		"weapons", len(weapons),
		"enemies", len(s.Enemies()))
	return nil
}

func logProgress(s *world.Session) {
	attrs := []any{
		"steps", s.Steps(),
		"kills", s.Kills(),
		"enemies", len(s.Enemies()),
		"curse", s.CumulativeCurse(),
		"level", s.CumulativeLevel(),
	}
	for _, p := range s.Players() {
		cur, capacity := p.Experience()
		attrs = append(attrs,
			"health", p.Health(),
			"experience", fmt.Sprintf("%d/%d", cur, capacity))
	}
	slog.Info("session progress", attrs...)
}

// newRoller returns a seeded source, or the global one for seed 0.
func newRoller(seed uint64) buff.Roller {
	if seed == 0 {
		return buff.GlobalRoller{}
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
