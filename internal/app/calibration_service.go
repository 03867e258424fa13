package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/rover/internal/audio"
	"github.com/example/rover/internal/config"
	"github.com/example/rover/internal/core/stall"
	"github.com/example/rover/internal/ports/primary"
	"github.com/example/rover/internal/ports/secondary"
)

// CalibrationServiceImpl implements the CalibrationService interface.
// Calibration samples the motors under no-load conditions and stores
// the healthy frequency baseline per channel.
type CalibrationServiceImpl struct {
	cfg       config.Config
	logger    *zap.Logger
	source    audio.Source
	baselines secondary.BaselineStore
}

// NewCalibrationService creates a calibration service.
func NewCalibrationService(cfg config.Config, logger *zap.Logger, source audio.Source, baselines secondary.BaselineStore) *CalibrationServiceImpl {
	return &CalibrationServiceImpl{cfg: cfg, logger: logger, source: source, baselines: baselines}
}

// Calibrate collects the configured number of samples per channel and
// persists the resulting baselines. Existing baselines are replaced.
func (s *CalibrationServiceImpl) Calibrate(ctx context.Context) ([]primary.ChannelBaseline, error) {
	samples := s.cfg.Audio.CalibrationSamples
	freqs := make(map[string][]float64, len(s.cfg.Audio.Channels))
	amps := make(map[string][]float64, len(s.cfg.Audio.Channels))

	s.logger.Info("calibrating audio baselines",
		zap.Strings("channels", s.cfg.Audio.Channels),
		zap.Int("samples", samples))

	ticker := time.NewTicker(s.cfg.SampleCadence())
	defer ticker.Stop()

	for i := 0; i < samples; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case now := <-ticker.C:
			for _, frame := range s.source.Frames(now) {
				freqs[frame.Channel] = append(freqs[frame.Channel], frame.DominantFreq)
				amps[frame.Channel] = append(amps[frame.Channel], frame.Amplitude)
			}
		}
	}

	now := time.Now()
	results := make([]primary.ChannelBaseline, 0, len(s.cfg.Audio.Channels))
	for _, channel := range s.cfg.Audio.Channels {
		baseline, err := stall.BaselineFrom(channel, freqs[channel], amps[channel], now)
		if err != nil {
			return nil, fmt.Errorf("calibration failed for %s: %w", channel, err)
		}

		if err := s.baselines.Save(ctx, secondary.BaselineRecord{
			Channel:      baseline.Channel,
			DominantFreq: baseline.DominantFreq,
			Amplitude:    baseline.Amplitude,
			CalibratedAt: baseline.CalibratedAt,
		}); err != nil {
			return nil, fmt.Errorf("failed to save baseline for %s: %w", channel, err)
		}

		s.logger.Info("channel calibrated",
			zap.String("channel", channel),
			zap.Float64("dominant_hz", baseline.DominantFreq))
		results = append(results, primary.ChannelBaseline{
			Channel:      baseline.Channel,
			DominantFreq: baseline.DominantFreq,
			Amplitude:    baseline.Amplitude,
			Samples:      len(freqs[channel]),
		})
	}

	return results, nil
}

// Ensure CalibrationServiceImpl implements the interface
var _ primary.CalibrationService = (*CalibrationServiceImpl)(nil)
