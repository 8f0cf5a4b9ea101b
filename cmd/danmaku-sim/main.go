package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/plus3/danmaku/audio"
	"github.com/plus3/danmaku/config"
	"github.com/plus3/danmaku/content"
	"github.com/plus3/danmaku/expr"
	"github.com/plus3/danmaku/sim"
	"go.uber.org/zap"
)

// weaveTicks is how long the autopilot moves one way before turning.
const weaveTicks = 90

func main() {
	configPath := flag.String("config", "", "TOML config file; defaults are used when empty. The file is watched for changes.")
	format := flag.String("format", "text", "Report format: text or yaml.")
	ticks := flag.Int("ticks", -1, "Ticks to simulate as fast as possible; 0 runs in real time until interrupted. Overrides the config.")
	flag.Parse()

	cfg := config.Defaults()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *ticks >= 0 {
		cfg.Simulation.Ticks = *ticks
	}

	log, level, err := newLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, *configPath, *format, level, log); err != nil {
		log.Error("simulation failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, path, format string, level zap.AtomicLevel, log *zap.Logger) error {
	pack := content.Demo()
	legality := pack.CheckLegality(expr.Scope{
		"width":  cfg.PlayArea.Width,
		"height": cfg.PlayArea.Height,
	})
	for _, msg := range legality.Messages {
		log.Warn("content", zap.String("finding", msg))
	}
	if legality.Severity == content.Illegal {
		return fmt.Errorf("content is illegal:\n%s", legality)
	}

	tally := &Tally{log: log.Named("tally")}
	hooks := sim.Hooks{Listener: tally}
	var sounds *audio.Context
	if cfg.Audio.Enabled {
		sounds = newAudio(cfg.Audio, log)
		hooks.Audio = sounds
	}

	world, err := sim.NewWorld(cfg, pack, hooks, log.Named("sim"))
	if err != nil {
		return err
	}
	if err := world.StartLevel(cfg.Simulation.Level); err != nil {
		return err
	}
	start := cp.Vector{X: cfg.Player.StartX, Y: cfg.Player.StartY}
	if err := world.SpawnPlayer(cfg.Player.ID, start); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if path != "" {
		watcher, err := config.Watch(path)
		if err != nil {
			return fmt.Errorf("watch config: %w", err)
		}
		defer watcher.Close()
		go reload(ctx, watcher, world, sounds, level, log)
	}

	report := &Report{
		Level:    cfg.Simulation.Level,
		TickRate: cfg.Simulation.TickRate,
		Legality: legality,
	}
	runtime.ReadMemStats(&report.MemStatsStart)
	startTime := time.Now()

	dt := cfg.Simulation.TickRate.Seconds()
	if n := cfg.Simulation.Ticks; n > 0 {
		log.Info("simulating", zap.Int("ticks", n), zap.String("level", cfg.Simulation.Level))
		for i := range n {
			if ctx.Err() != nil {
				break
			}
			world.SetInput(autopilot(cfg.Player, i))

			tickStart := time.Now()
			world.Tick(dt)
			report.TickTime.Samples = append(report.TickTime.Samples, time.Since(tickStart))

			if sounds != nil {
				sounds.Drain(cfg.Simulation.TickRate)
			}
			if world.Level().Completed {
				break
			}
		}
	} else {
		log.Info("running in real time, interrupt to stop", zap.String("level", cfg.Simulation.Level))
		world.SetInput(sim.PlayerInput{Fire: cfg.Player.AutoFire, Focus: cfg.Player.Focused})
		if sounds != nil {
			go drain(ctx, sounds, cfg.Simulation.TickRate)
		}
		if err := world.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	}

	report.TotalTime = time.Since(startTime)
	report.TickTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)

	report.State = world.Level()
	report.Metrics = world.Metrics()
	report.TotalTicks = int64(report.Metrics.Ticks)
	report.Simulated = time.Duration(report.State.Clock * float64(time.Second))
	report.Storage = world.StorageStats()
	report.Systems = world.SchedulerStats().Systems
	report.Tally = *tally
	if sounds != nil {
		report.Audio = AudioStats{Enabled: true, Played: sounds.Played(), Missing: sounds.Missing()}
	}

	log.Info("simulation finished",
		zap.Bool("completed", report.State.Completed),
		zap.Int("killed", report.State.Killed),
		zap.Float64("points", report.State.Points),
	)
	return report.Generate(os.Stdout, format)
}

// autopilot keeps the player weaving across the screen, firing when the
// config asks for it.
func autopilot(cfg config.PlayerConfig, tick int) sim.PlayerInput {
	speed := 60.0
	if (tick/weaveTicks)%2 == 1 {
		speed = -speed
	}
	return sim.PlayerInput{
		Fire:     cfg.AutoFire,
		Focus:    cfg.Focused,
		Velocity: cp.Vector{X: speed},
	}
}

// reload applies config changes until ctx is done. Log level and volumes
// change immediately; the world decides which simulation settings it accepts.
func reload(ctx context.Context, w *config.Watcher, world *sim.World, sounds *audio.Context, level zap.AtomicLevel, log *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-w.Configs:
			if !ok {
				return
			}
			level.SetLevel(parseLevel(cfg.Logging.Level))
			world.SetConfig(cfg)
			if sounds != nil {
				applyVolume(sounds, cfg.Audio)
			}
			log.Info("config reloaded")
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Warn("config reload failed", zap.Error(err))
		}
	}
}

func drain(ctx context.Context, sounds *audio.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sounds.Drain(every)
		}
	}
}
