// Package config loads the simulation runner's TOML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Simulation SimulationConfig `toml:"simulation"`
	Collision  CollisionConfig  `toml:"collision"`
	PlayArea   PlayAreaConfig   `toml:"play_area"`
	Player     PlayerConfig     `toml:"player"`
	Audio      AudioConfig      `toml:"audio"`
	Logging    LoggingConfig    `toml:"logging"`
}

type SimulationConfig struct {
	TickRate              time.Duration `toml:"tick_rate"`
	Ticks                 int           `toml:"ticks"` // zero runs until interrupted
	MaxTransitionsPerTick int           `toml:"max_transitions_per_tick"`
	ReserveIncrement      int           `toml:"reserve_increment"`
	Level                 string        `toml:"level"`
}

type CollisionConfig struct {
	// ReferenceRadius sizes the normal table's cells; objects with a larger
	// hitbox go to the oversized table.
	ReferenceRadius float64 `toml:"reference_radius"`
	// CellScale multiplies a radius into a cell size.
	CellScale float64 `toml:"cell_scale"`
}

type PlayAreaConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
	// Margin is how far outside the area bullets may travel before despawning.
	Margin float64 `toml:"margin"`
}

type PlayerConfig struct {
	ID     string  `toml:"id"`
	StartX float64 `toml:"start_x"`
	StartY float64 `toml:"start_y"`
	// AutoFire keeps the player firing in headless runs.
	AutoFire bool `toml:"auto_fire"`
	Focused  bool `toml:"focused"`
}

type AudioConfig struct {
	Enabled       bool    `toml:"enabled"`
	SampleRate    int     `toml:"sample_rate"`
	EffectsVolume float64 `toml:"effects_volume"`
	MusicVolume   float64 `toml:"music_volume"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the simulation can not run with.
func (c *Config) Validate() error {
	switch {
	case c.Simulation.TickRate <= 0:
		return fmt.Errorf("simulation.tick_rate must be positive, got %s", c.Simulation.TickRate)
	case c.Simulation.MaxTransitionsPerTick <= 0:
		return fmt.Errorf("simulation.max_transitions_per_tick must be positive")
	case c.Simulation.ReserveIncrement <= 0:
		return fmt.Errorf("simulation.reserve_increment must be positive")
	case c.Collision.ReferenceRadius <= 0 || c.Collision.CellScale <= 0:
		return fmt.Errorf("collision.reference_radius and collision.cell_scale must be positive")
	case c.PlayArea.Width <= 0 || c.PlayArea.Height <= 0:
		return fmt.Errorf("play_area must have a positive size")
	}
	return nil
}

// Defaults returns the configuration used when no file is given.
func Defaults() *Config {
	return &Config{
		Simulation: SimulationConfig{
			TickRate:              time.Second / 60,
			Ticks:                 60 * 30,
			MaxTransitionsPerTick: 1024,
			ReserveIncrement:      256,
			Level:                 "stage1",
		},
		Collision: CollisionConfig{
			ReferenceRadius: 8,
			CellScale:       2,
		},
		PlayArea: PlayAreaConfig{
			Width:  480,
			Height: 640,
			Margin: 64,
		},
		Player: PlayerConfig{
			ID:       "pilot",
			StartX:   240,
			StartY:   560,
			AutoFire: true,
		},
		Audio: AudioConfig{
			Enabled:       true,
			SampleRate:    44100,
			EffectsVolume: 0.8,
			MusicVolume:   0.6,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
