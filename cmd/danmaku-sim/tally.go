package main

import (
	"github.com/plus3/danmaku/ecs"
	"go.uber.org/zap"
)

// Tally is the runner's level listener. It only counts and logs; the level
// state already keeps the score.
type Tally struct {
	Deaths    int  `yaml:"deaths"`
	Despawned int  `yaml:"despawned"`
	Escaped   int  `yaml:"escaped"`
	Completed bool `yaml:"completed"`

	log *zap.Logger
}

func (t *Tally) PointsAdded(points, total float64) {}

func (t *Tally) EnemyDespawned(id ecs.EntityId, killed bool) {
	t.Despawned++
	if !killed {
		t.Escaped++
	}
}

func (t *Tally) PlayerDied(id ecs.EntityId) {
	t.Deaths++
}

func (t *Tally) MusicChanged(track string) {
	t.log.Debug("music changed", zap.String("track", track))
}

func (t *Tally) LevelCompleted(level string) {
	t.Completed = true
}
