// Package audio is the explicit audio context the simulation plays sounds
// through. It owns a beep mixer with one volume-controlled channel per
// category; the application decides whether the mixer feeds a speaker or is
// drained headless.
package audio

import (
	"math"
	"slices"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"go.uber.org/zap"
)

// Category selects the channel a sound plays on.
type Category uint8

const (
	Effects Category = iota
	Music
	numCategories
)

func (c Category) String() string {
	if c == Music {
		return "music"
	}
	return "effects"
}

// placeholderLength is how long the silent stand-in for a missing sound runs.
const placeholderLength = 50 * time.Millisecond

type channel struct {
	mixer  *beep.Mixer
	volume *effects.Volume
}

// Context is safe for concurrent use: the simulation plays sounds from the
// tick goroutine while a speaker streams from its own.
type Context struct {
	mu     sync.Mutex
	log    *zap.Logger
	format beep.Format

	master   *beep.Mixer
	channels [numCategories]channel
	track    string

	sounds  map[string]*beep.Buffer
	missing map[string]bool
	played  int
}

// NewContext creates a context mixing at sampleRate.
func NewContext(sampleRate int, log *zap.Logger) *Context {
	c := &Context{
		log:     log,
		format:  beep.Format{SampleRate: beep.SampleRate(sampleRate), NumChannels: 2, Precision: 2},
		master:  &beep.Mixer{},
		sounds:  make(map[string]*beep.Buffer),
		missing: make(map[string]bool),
	}
	for i := range c.channels {
		mixer := &beep.Mixer{}
		vol := &effects.Volume{Streamer: mixer, Base: 2}
		c.channels[i] = channel{mixer: mixer, volume: vol}
		c.master.Add(vol)
	}
	return c
}

// SampleRate returns the rate the context mixes at.
func (c *Context) SampleRate() beep.SampleRate {
	return c.format.SampleRate
}

// Register buffers s under name, replacing any previous sound. s must be
// finite. A sound with no samples is not kept, so name plays the silent
// placeholder instead.
func (c *Context) Register(name string, s beep.Streamer) {
	buf := beep.NewBuffer(c.format)
	buf.Append(s)

	c.mu.Lock()
	defer c.mu.Unlock()
	if buf.Len() == 0 {
		c.log.Warn("empty sound, using silent placeholder", zap.String("sound", name))
		delete(c.sounds, name)
		return
	}
	c.sounds[name] = buf
	delete(c.missing, name)
}

// SetVolume sets a channel's linear volume; zero or less mutes it.
func (c *Context) SetVolume(cat Category, v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	vol := c.channels[cat].volume
	if v <= 0 {
		vol.Silent = true
		vol.Volume = 0
		return
	}
	vol.Silent = false
	vol.Volume = math.Log2(v)
}

// lookup returns a fresh streamer for name, or a silent placeholder. Missing
// names are logged once.
func (c *Context) lookup(name string) beep.Streamer {
	if buf, ok := c.sounds[name]; ok {
		return buf.Streamer(0, buf.Len())
	}
	if !c.missing[name] {
		c.missing[name] = true
		c.log.Warn("missing sound, using silent placeholder", zap.String("sound", name))
	}
	return beep.Silence(c.format.SampleRate.N(placeholderLength))
}

// Play starts a one-shot effect. An empty name plays nothing.
func (c *Context) Play(name string) {
	if name == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.channels[Effects].mixer.Add(c.lookup(name))
	c.played++
}

// PlayMusic loops name on the music channel, replacing the current track.
// Asking for the track already playing does nothing.
func (c *Context) PlayMusic(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if name == c.track {
		return
	}
	c.track = name
	c.channels[Music].mixer.Clear()
	if name == "" {
		return
	}

	// Iterate calls back while the mixer streams, with c.mu already held.
	c.channels[Music].mixer.Add(beep.Iterate(func() beep.Streamer {
		return c.lookup(name)
	}))
}

// Track returns the music currently playing.
func (c *Context) Track() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.track
}

// Stream implements beep.Streamer so the context can be handed to a speaker.
func (c *Context) Stream(samples [][2]float64) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.master.Stream(samples)
}

func (c *Context) Err() error {
	return nil
}

// Drain pulls d worth of audio through the mixer and discards it, advancing
// playback when no speaker is attached.
func (c *Context) Drain(d time.Duration) {
	var buf [512][2]float64
	for n := c.format.SampleRate.N(d); n > 0; {
		chunk := min(n, len(buf))
		c.Stream(buf[:chunk])
		n -= chunk
	}
}

// Active returns the number of effects still playing.
func (c *Context) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channels[Effects].mixer.Len()
}

// Played returns how many effects have been started.
func (c *Context) Played() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.played
}

// Missing returns the sorted names that were played without being registered.
func (c *Context) Missing() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.missing))
	for name := range c.missing {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
