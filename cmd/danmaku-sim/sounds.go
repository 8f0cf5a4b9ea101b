package main

import (
	"time"

	"github.com/plus3/danmaku/audio"
	"github.com/plus3/danmaku/config"
	"go.uber.org/zap"
)

// demoSounds stands in for authored assets: every sound the demo content
// names gets a short tone.
var demoSounds = map[string]float64{
	"shot": 880,
	"bomb": 110,
	"pop":  660,
	"hit":  440,
	"boom": 82.4,
	"hurt": 330,
	"dead": 55,
}

var demoTracks = map[string]float64{
	"stage": 261.6,
	"boss":  196,
}

func newAudio(cfg config.AudioConfig, log *zap.Logger) *audio.Context {
	ctx := audio.NewContext(cfg.SampleRate, log.Named("audio"))
	rate := ctx.SampleRate()
	for name, freq := range demoSounds {
		ctx.Register(name, audio.Tone(freq, 80*time.Millisecond, rate))
	}
	for name, freq := range demoTracks {
		ctx.Register(name, audio.Tone(freq, 2*time.Second, rate))
	}
	applyVolume(ctx, cfg)
	return ctx
}

func applyVolume(ctx *audio.Context, cfg config.AudioConfig) {
	ctx.SetVolume(audio.Effects, cfg.EffectsVolume)
	ctx.SetVolume(audio.Music, cfg.MusicVolume)
}
