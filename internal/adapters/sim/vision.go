package sim

import (
	"context"
	"math"

	"github.com/example/rover/internal/ports/secondary"
)

// detectionRange is how far the simulated camera can see, in meters.
const detectionRange = 3.0

// Vision implements secondary.VisionSource against a simulated World.
type Vision struct {
	world *World
}

// NewVision creates a simulated vision source.
func NewVision(world *World) *Vision {
	return &Vision{world: world}
}

// DetectTargets returns uncollected targets within detection range,
// with confidence falling off over distance.
func (v *Vision) DetectTargets(ctx context.Context) ([]secondary.Detection, error) {
	v.world.mu.Lock()
	defer v.world.mu.Unlock()

	var detections []secondary.Detection
	for _, t := range v.world.targets {
		if t.Collected {
			continue
		}
		d := math.Hypot(t.X-v.world.x, t.Y-v.world.y)
		if d > detectionRange {
			continue
		}
		detections = append(detections, secondary.Detection{
			X:          t.X,
			Y:          t.Y,
			Confidence: 1.0 - d/(2*detectionRange),
		})
	}
	return detections, nil
}

// DetectDisposalMarker returns the disposal marker when in range, or
// nil otherwise.
func (v *Vision) DetectDisposalMarker(ctx context.Context) (*secondary.MarkerSighting, error) {
	v.world.mu.Lock()
	defer v.world.mu.Unlock()

	d := math.Hypot(v.world.disposal.x-v.world.x, v.world.disposal.y-v.world.y)
	if d > 2*detectionRange {
		return nil, nil
	}
	return &secondary.MarkerSighting{
		X:        v.world.disposal.x,
		Y:        v.world.disposal.y,
		Distance: d,
	}, nil
}

// Ensure Vision implements the interface
var _ secondary.VisionSource = (*Vision)(nil)
