// Package render defines the narrow surface of the optical rendering
// engine consumed by spectroscopic observers. Real tracing lives behind
// the Engine interface; this package only carries the per-observation
// task description and ships a flat-field engine for benches and tests.
package render

import (
	"context"
	"fmt"

	"github.com/torus-diagnostics/spectroscope/geometry"
	"github.com/torus-diagnostics/spectroscope/spectrum"
)

// Settings holds the per-observer sampling and ray-tracing tunables passed
// through to the engine. The ray tunables are opaque to this module.
type Settings struct {
	MinWavelength          float64
	MaxWavelength          float64
	SpectralBins           int
	PixelSamples           int
	SamplesPerTask         int
	RayExtinctionProb      float64
	RayExtinctionMinDepth  int
	RayMaxDepth            int
	RayImportantPathWeight float64
}

// DefaultSettings returns the settings applied to a freshly constructed
// observer.
func DefaultSettings() Settings {
	return Settings{
		MinWavelength:          375,
		MaxWavelength:          740,
		SpectralBins:           100,
		PixelSamples:           100,
		SamplesPerTask:         250,
		RayExtinctionProb:      0.1,
		RayExtinctionMinDepth:  3,
		RayMaxDepth:            500,
		RayImportantPathWeight: 0.25,
	}
}

// Validate checks the settings an engine depends on.
func (s Settings) Validate() error {
	if s.SpectralBins < 1 {
		return fmt.Errorf("spectral bins must be at least 1, got %d", s.SpectralBins)
	}
	if s.MinWavelength <= 0 || s.MinWavelength >= s.MaxWavelength {
		return fmt.Errorf("invalid wavelength range [%v, %v]", s.MinWavelength, s.MaxWavelength)
	}
	if s.PixelSamples < 1 {
		return fmt.Errorf("pixel samples must be at least 1, got %d", s.PixelSamples)
	}
	return nil
}

// Task describes one observation for the engine: where the observer sits,
// which way it looks, the sampling geometry of its tip and the spectral
// and ray settings to trace with. AcceptanceAngle and Radius are zero for
// plain sight-lines.
type Task struct {
	Origin          geometry.Point3
	Direction       geometry.Vec3
	Transform       geometry.Transform
	AcceptanceAngle float64 // degrees, half-angle of the sampling cone
	Radius          float64 // metres, sampling disc at the tip
	Settings        Settings
}

// Engine traces spectral samples for an observation task, returning one
// sampled spectrum per sample taken. Implementations own all parallelism
// and must honour context cancellation.
type Engine interface {
	Trace(ctx context.Context, task Task) ([]*spectrum.Spectrum, error)
}
