package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/example/rover/internal/audio"
)

// fixedSource emits constant frequencies so the baseline mean is
// exact.
type fixedSource struct {
	freqs map[string]float64
}

func (s *fixedSource) Frames(now time.Time) []audio.Frame {
	frames := make([]audio.Frame, 0, len(s.freqs))
	for channel, freq := range s.freqs {
		frames = append(frames, audio.Frame{Channel: channel, DominantFreq: freq, Amplitude: 0.5, Timestamp: now})
	}
	return frames
}

func TestCalibrateStoresBaselines(t *testing.T) {
	cfg := testConfig()
	source := &fixedSource{freqs: map[string]float64{"drive_motor": 440, "arm_motor": 600}}
	store := &memBaselines{}
	svc := NewCalibrationService(cfg, zaptest.NewLogger(t), source, store)

	results, err := svc.Calibrate(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)

	byChannel := map[string]float64{}
	for _, r := range results {
		byChannel[r.Channel] = r.DominantFreq
		assert.Equal(t, cfg.Audio.CalibrationSamples, r.Samples)
	}
	assert.InDelta(t, 440, byChannel["drive_motor"], 1e-9)
	assert.InDelta(t, 600, byChannel["arm_motor"], 1e-9)

	stored, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestCalibrateReplacesExisting(t *testing.T) {
	cfg := testConfig()
	store := &memBaselines{}
	seedBaselines(store, cfg.Audio.Channels)

	source := &fixedSource{freqs: map[string]float64{"drive_motor": 500, "arm_motor": 500}}
	svc := NewCalibrationService(cfg, zaptest.NewLogger(t), source, store)

	_, err := svc.Calibrate(context.Background())
	require.NoError(t, err)

	stored, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	for _, b := range stored {
		assert.InDelta(t, 500, b.DominantFreq, 1e-9)
	}
}

func TestCalibrateSilentChannelFails(t *testing.T) {
	cfg := testConfig()
	// arm_motor never produces frames.
	source := &fixedSource{freqs: map[string]float64{"drive_motor": 440}}
	svc := NewCalibrationService(cfg, zaptest.NewLogger(t), source, &memBaselines{})

	_, err := svc.Calibrate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "arm_motor")
}

func TestCalibrateHonorsCancel(t *testing.T) {
	cfg := testConfig()
	cfg.Audio.SampleCadenceMS = 50
	cfg.Audio.CalibrationSamples = 100
	source := &fixedSource{freqs: map[string]float64{"drive_motor": 440, "arm_motor": 600}}
	svc := NewCalibrationService(cfg, zaptest.NewLogger(t), source, &memBaselines{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := svc.Calibrate(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
