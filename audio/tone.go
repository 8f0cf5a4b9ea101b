package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

// tone is a sine wave with a linear fade out, enough to stand in for
// authored sound effects in headless runs.
type tone struct {
	freq     float64
	phase    float64
	rate     beep.SampleRate
	position int
	length   int
}

// Tone returns a finite sine streamer at freq Hz.
func Tone(freq float64, d time.Duration, rate beep.SampleRate) beep.Streamer {
	return &tone{freq: freq, rate: rate, length: rate.N(d)}
}

func (t *tone) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		if t.position >= t.length {
			return i, i > 0
		}
		fade := 1 - float64(t.position)/float64(t.length)
		v := 0.25 * fade * math.Sin(2*math.Pi*t.phase)
		samples[i][0] = v
		samples[i][1] = v

		t.phase += t.freq / float64(t.rate)
		t.phase -= math.Floor(t.phase)
		t.position++
	}
	return len(samples), true
}

func (t *tone) Err() error { return nil }
