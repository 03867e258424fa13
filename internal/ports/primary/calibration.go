package primary

import "context"

// CalibrationService defines the primary port for audio baseline
// calibration.
type CalibrationService interface {
	// Calibrate samples every configured motor channel under no-load
	// conditions, computes per-channel baselines and persists them.
	Calibrate(ctx context.Context) ([]ChannelBaseline, error)
}

// ChannelBaseline is a calibration result at the port boundary.
type ChannelBaseline struct {
	Channel      string
	DominantFreq float64
	Amplitude    float64
	Samples      int
}
