package sim

import (
	"image/color"

	"github.com/plus3/danmaku/ecs"
	"golang.org/x/image/colornames"
)

// Audio plays named sounds. audio.Context satisfies it.
type Audio interface {
	Play(name string)
	PlayMusic(name string)
}

// Visuals receives one-way presentation requests for entities.
type Visuals interface {
	Flash(id ecs.EntityId, c color.RGBA)
	SetAnimatables(id ecs.EntityId, names []string)
	PlayAnimation(id ecs.EntityId, name string)
	Hide(id ecs.EntityId)
}

// Listener receives scoring and level notifications.
type Listener interface {
	PointsAdded(points, total float64)
	EnemyDespawned(id ecs.EntityId, killed bool)
	PlayerDied(id ecs.EntityId)
	MusicChanged(track string)
	LevelCompleted(level string)
}

// Hooks are the collaborators the simulation notifies. Nil members are
// replaced with no-ops.
type Hooks struct {
	Audio    Audio
	Visuals  Visuals
	Listener Listener
}

func (h Hooks) withDefaults() Hooks {
	if h.Audio == nil {
		h.Audio = NopAudio{}
	}
	if h.Visuals == nil {
		h.Visuals = NopVisuals{}
	}
	if h.Listener == nil {
		h.Listener = NopListener{}
	}
	return h
}

var (
	hurtFlash   = colornames.Red
	pierceFlash = colornames.Orange
	hitFlash    = colornames.White
)

type NopAudio struct{}

func (NopAudio) Play(string)      {}
func (NopAudio) PlayMusic(string) {}

type NopVisuals struct{}

func (NopVisuals) Flash(ecs.EntityId, color.RGBA)        {}
func (NopVisuals) SetAnimatables(ecs.EntityId, []string) {}
func (NopVisuals) PlayAnimation(ecs.EntityId, string)    {}
func (NopVisuals) Hide(ecs.EntityId)                     {}

type NopListener struct{}

func (NopListener) PointsAdded(float64, float64)      {}
func (NopListener) EnemyDespawned(ecs.EntityId, bool) {}
func (NopListener) PlayerDied(ecs.EntityId)           {}
func (NopListener) MusicChanged(string)               {}
func (NopListener) LevelCompleted(string)             {}
