package audio

import (
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const testRate = 8000

func TestToneLengthAndRange(t *testing.T) {
	s := Tone(440, 100*time.Millisecond, testRate)

	total := 0
	buf := make([][2]float64, 64)
	for {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			assert.LessOrEqual(t, buf[i][0], 1.0)
			assert.GreaterOrEqual(t, buf[i][0], -1.0)
		}
		total += n
		if !ok {
			break
		}
	}
	assert.Equal(t, beep.SampleRate(testRate).N(100*time.Millisecond), total)
	assert.NoError(t, s.Err())
}

func TestPlayRegisteredSound(t *testing.T) {
	ctx := NewContext(testRate, zap.NewNop())
	ctx.Register("shot", Tone(880, 20*time.Millisecond, testRate))

	ctx.Play("shot")
	ctx.Play("shot")
	assert.Equal(t, 2, ctx.Active())
	assert.Equal(t, 2, ctx.Played())

	ctx.Drain(100 * time.Millisecond)
	assert.Equal(t, 0, ctx.Active())
	assert.Empty(t, ctx.Missing())
}

func TestEmptyNamePlaysNothing(t *testing.T) {
	ctx := NewContext(testRate, zap.NewNop())
	ctx.Play("")
	assert.Equal(t, 0, ctx.Played())
	assert.Equal(t, 0, ctx.Active())
}

func TestMissingSoundWarnsOnce(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	ctx := NewContext(testRate, zap.New(core))

	ctx.Play("nope")
	ctx.Play("nope")
	ctx.Play("other")

	assert.Equal(t, 3, ctx.Active())
	assert.Equal(t, []string{"nope", "other"}, ctx.Missing())
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "nope", logs.All()[0].ContextMap()["sound"])

	// the placeholder is silent and finite
	buf := make([][2]float64, 16)
	n, ok := ctx.Stream(buf)
	assert.Equal(t, 16, n)
	assert.True(t, ok)
	assert.Equal(t, [2]float64{}, buf[0])

	ctx.Drain(placeholderLength * 2)
	assert.Equal(t, 0, ctx.Active())
}

func TestRegisterClearsMissing(t *testing.T) {
	ctx := NewContext(testRate, zap.NewNop())
	ctx.Play("late")
	ctx.Register("late", Tone(220, 10*time.Millisecond, testRate))
	assert.Empty(t, ctx.Missing())
}

func TestMutedChannelIsSilent(t *testing.T) {
	ctx := NewContext(testRate, zap.NewNop())
	ctx.Register("beep", Tone(440, 50*time.Millisecond, testRate))
	ctx.SetVolume(Effects, 0)
	ctx.Play("beep")

	buf := make([][2]float64, 128)
	ctx.Stream(buf)
	for _, s := range buf {
		assert.Equal(t, [2]float64{}, s)
	}

	ctx.SetVolume(Effects, 1)
	ctx.Stream(buf)
	nonZero := false
	for _, s := range buf {
		if s[0] != 0 {
			nonZero = true
		}
	}
	assert.True(t, nonZero)
}

func TestMusicLoopsAndSwitches(t *testing.T) {
	ctx := NewContext(testRate, zap.NewNop())
	ctx.Register("stage", Tone(110, 10*time.Millisecond, testRate))
	ctx.Register("boss", Tone(220, 10*time.Millisecond, testRate))

	ctx.PlayMusic("stage")
	assert.Equal(t, "stage", ctx.Track())

	// far longer than the track; it keeps looping
	ctx.Drain(200 * time.Millisecond)
	buf := make([][2]float64, 32)
	ctx.Stream(buf)
	nonZero := false
	for _, s := range buf[1:] {
		if s[0] != 0 {
			nonZero = true
		}
	}
	assert.True(t, nonZero)

	ctx.PlayMusic("boss")
	assert.Equal(t, "boss", ctx.Track())
	ctx.PlayMusic("")
	assert.Equal(t, "", ctx.Track())
	assert.Equal(t, 0, ctx.Active())
}

func TestEmptySoundLoopsAsPlaceholder(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	ctx := NewContext(testRate, zap.New(core))
	ctx.Register("stage", Tone(110, 10*time.Millisecond, testRate))
	ctx.Register("stage", Tone(110, 0, testRate))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "stage", logs.All()[0].ContextMap()["sound"])

	ctx.PlayMusic("stage")
	ctx.Drain(200 * time.Millisecond)

	buf := make([][2]float64, 32)
	n, ok := ctx.Stream(buf)
	assert.Equal(t, 32, n)
	assert.True(t, ok)
	assert.Equal(t, [2]float64{}, buf[0])
	assert.Equal(t, []string{"stage"}, ctx.Missing())
}
