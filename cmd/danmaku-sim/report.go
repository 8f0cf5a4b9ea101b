package main

import (
	"fmt"
	"io"
	"runtime"
	"text/template"
	"time"

	"github.com/plus3/danmaku/content"
	"github.com/plus3/danmaku/ecs"
	"github.com/plus3/danmaku/sim"
	"gopkg.in/yaml.v3"
)

type Report struct {
	// Configuration
	Level    string        `yaml:"level"`
	TickRate time.Duration `yaml:"tick_rate"`
	Legality content.Report `yaml:"legality"`

	// Results
	TotalTicks int64         `yaml:"total_ticks"`
	Simulated  time.Duration `yaml:"simulated"`
	TotalTime  time.Duration `yaml:"total_time"`
	TickTime   Stats         `yaml:"tick_time"`

	State   sim.LevelState        `yaml:"state"`
	Metrics sim.SimulationMetrics `yaml:"metrics"`
	Storage ecs.StorageStats      `yaml:"storage"`
	Systems []ecs.SystemStats     `yaml:"systems"`
	Tally   Tally                 `yaml:"tally"`
	Audio   AudioStats            `yaml:"audio"`

	MemStatsStart runtime.MemStats `yaml:"-"`
	MemStatsEnd   runtime.MemStats `yaml:"-"`
}

type AudioStats struct {
	Enabled bool     `yaml:"enabled"`
	Played  int      `yaml:"played"`
	Missing []string `yaml:"missing,omitempty"`
}

type Stats struct {
	Min     time.Duration   `yaml:"min"`
	Max     time.Duration   `yaml:"max"`
	Avg     time.Duration   `yaml:"avg"`
	Samples []time.Duration `yaml:"-"`
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]

	for _, sample := range s.Samples {
		if sample < s.Min {
			s.Min = sample
		}
		if sample > s.Max {
			s.Max = sample
		}
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

// Generate writes the report as yaml when format is "yaml", as text otherwise.
func (r *Report) Generate(w io.Writer, format string) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		return enc.Close()
	}

	const reportTemplate = `
# Simulation Report

## Run
- **Level:** {{.Level}}
- **Tick Rate:** {{.TickRate}}
- **Content:** {{.Legality.Severity}}{{range .Legality.Messages}}
  - {{.}}{{end}}

## Level
- **Simulated:** {{.Simulated}} over {{.TotalTicks}} ticks
- **Completed:** {{.State.Completed}}
- **Enemies:** {{.State.Spawned}} spawned, {{.State.Killed}} killed, {{.State.EnemiesAlive}} alive
- **Points:** {{printf "%.0f" .State.Points}}
- **Player Deaths:** {{.Tally.Deaths}}
- **Music:** {{.State.Music}}

## Entities (last tick)
- **Total:** {{.Metrics.Entities}} (peak {{.Metrics.PeakEntities}})
- **Bullets:** {{.Metrics.Bullets}} ({{.Metrics.PlayerBullets}} player, peak {{.Metrics.PeakBullets}})
- **Enemies:** {{.Metrics.Enemies}}
- **Items:** {{.Metrics.Items}}
- **Anchors:** {{.Metrics.Anchors}}
- **Registry:** {{.Storage.EntityCount}} entities in {{.Storage.ArchetypeCount}} archetypes, capacity {{.Storage.Capacity}}

## Performance
- **Total Time:** {{.TotalTime}}
- **Tick Time:**
  - **Avg:** {{.TickTime.Avg}}
  - **Min:** {{.TickTime.Min}}
  - **Max:** {{.TickTime.Max}}
{{range .Systems}}- {{printf "%-22s" .Name}} avg {{.AvgDuration}}, max {{.MaxDuration}}
{{end}}
## Audio
{{if .Audio.Enabled}}- **Effects Played:** {{.Audio.Played}}
{{range .Audio.Missing}}- missing: {{.}}
{{end}}{{else}}- disabled
{{end}}
## Memory Usage (Raw Bytes)
- Heap Alloc:     {{.MemStatsStart.HeapAlloc}} (start) -> {{.MemStatsEnd.HeapAlloc}} (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc}}
- Total Alloc:    {{.MemStatsStart.TotalAlloc}} (start) -> {{.MemStatsEnd.TotalAlloc}} (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc}}
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
- GC Pause:       {{ns .MemStatsEnd.PauseTotalNs}}
`

	fm := template.FuncMap{
		"bsub": func(a, b uint64) int64 {
			return int64(a) - int64(b)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
		"ns": func(ns uint64) string {
			return time.Duration(ns).String()
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}
