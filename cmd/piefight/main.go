package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/piefight/server/internal/component"
	"github.com/piefight/server/internal/config"
	"github.com/piefight/server/internal/core/ecs"
	"github.com/piefight/server/internal/core/event"
	coresys "github.com/piefight/server/internal/core/system"
	"github.com/piefight/server/internal/data"
	"github.com/piefight/server/internal/persist"
	"github.com/piefight/server/internal/scripting"
	"github.com/piefight/server/internal/system"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              piefight  v0.1.0             \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1marena:\033[0m %s\n\n", serverName)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("PIEFIGHT_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name)

	// 3. Load arena data
	printSection("Data")
	props, err := data.LoadPropTable(cfg.Data.PropsFile)
	if err != nil {
		return fmt.Errorf("load props: %w", err)
	}
	printStat("Props", props.Count())
	roster, err := data.LoadRoster(cfg.Data.RosterFile)
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}
	printStat("Characters", roster.Count())

	rules, err := scripting.NewEngine(cfg.Scripts.Dir, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer rules.Close()
	printOK("Lua rules loaded")
	fmt.Println()

	// 4. Build the world
	ecsWorld := ecs.NewWorld(cfg.Pool.Entities, log)
	stores := system.RegisterStores(ecsWorld)
	stores.Pies.Reserve(cfg.Pool.Pies)
	stores.Props.Reserve(cfg.Pool.Props)
	stores.Characters.Reserve(roster.Count())
	stores.Transforms.Reserve(roster.Count() + props.Count())

	bus := event.NewBus()
	system.PublishDestroys(ecsWorld, bus)

	fighters := system.SpawnRoster(ecsWorld, stores, roster)
	system.SpawnProps(ecsWorld, stores, props)

	// 5. Optional snapshot database
	var persistSys *system.PersistenceSystem
	if cfg.Database.Enabled {
		printSection("Database")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		version, err := persist.RunMigrations(ctx, db.Pool, log)
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK(fmt.Sprintf("Migrations at version %d", version))
		fmt.Println()

		persistSys = system.NewPersistenceSystem(stores, bus, persist.NewSnapshotRepo(db), cfg.Persist.SnapshotInterval, log)
	}

	// 6. Create systems and register with runner
	clock := system.NewClock()
	score := system.NewScoreSystem(ecsWorld, stores, bus, rules, log)
	runner := coresys.NewRunner()
	runner.Register(clock)
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(system.NewThrowSystem(ecsWorld, stores, clock, rules, cfg.Simulation.ThrowCooldown, cfg.Simulation.PieFlightTime, log))
	runner.Register(system.NewPieSystem(ecsWorld, stores, clock, bus, log))
	runner.Register(score)
	runner.Register(system.NewShakeSystem(stores, bus, rules))
	if persistSys != nil {
		runner.Register(persistSys)
	}
	runner.Register(system.NewCleanupSystem(ecsWorld, stores, cfg.Simulation.DebugChecks, log))

	// 7. Start game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Simulation.TickRate)
	defer ticker.Stop()

	printSection("Ready")
	printReady(fmt.Sprintf("%d fighters in the arena", len(fighters)))
	printReady(fmt.Sprintf("Game loop started (tick: %s)", cfg.Simulation.TickRate))
	fmt.Println()

	shutdown := func() {
		if persistSys != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			persistSys.Flush(ctx)
			cancel()
		}
		printScoreboard(stores, score)
		log.Info("arena closed", zap.Uint64("ticks", runner.Ticks()))
	}

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Simulation.TickRate)
			if score.Decided() && stores.Pies.Len() == 0 {
				log.Info("round over")
				// Events from the deciding tick are delivered one tick late.
				runner.Tick(cfg.Simulation.TickRate)
				shutdown()
				return nil
			}
			if cfg.Simulation.MaxTicks > 0 && runner.Ticks() >= uint64(cfg.Simulation.MaxTicks) {
				log.Info("tick limit reached", zap.Int("max_ticks", cfg.Simulation.MaxTicks))
				shutdown()
				return nil
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			shutdown()
			return nil
		}
	}
}

// printScoreboard lists the characters still in the arena, best score first.
func printScoreboard(stores *system.Stores, score *system.ScoreSystem) {
	type line struct {
		name  string
		score int
		hits  int
		state component.VictoryState
	}
	var lines []line
	stores.Characters.Each(func(_ ecs.Entity, c *component.Character) {
		lines = append(lines, line{c.Name, c.Score, c.Stats[component.StatHits], c.Victory})
	})
	sort.Slice(lines, func(i, j int) bool { return lines[i].score > lines[j].score })

	fmt.Println()
	printSection("Scoreboard")
	for _, l := range lines {
		label := l.name
		if l.state == component.ResultWinner {
			label += " (winner)"
		}
		printStat(label, l.score)
	}
	hits, misses := score.Landings()
	printStat("Pies on target", hits)
	printStat("Pies wide", misses)
	if score.Decided() && score.Winner() == "" {
		printReady("Draw: nobody left standing")
	}
	fmt.Println()
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
