package render

import (
	"context"
	"math/rand"
	"sync"

	"github.com/torus-diagnostics/spectroscope/spectrum"
)

// UniformEngine is a flat-field reference engine: every traced sample sees
// the same spectral radiance at every wavelength, optionally perturbed by
// seeded multiplicative noise. It stands in for a full Monte Carlo tracer
// on benches and in tests, where deterministic output matters more than
// physics.
type UniformEngine struct {
	mu       sync.Mutex
	rng      *rand.Rand
	radiance float64
	noise    float64 // fractional 1-sigma perturbation per sample
}

// NewUniformEngine creates a flat-field engine emitting the given spectral
// radiance. noise is the fractional standard deviation applied per sample;
// zero yields identical samples. The seed fixes the perturbation sequence.
func NewUniformEngine(radiance, noise float64, seed int64) *UniformEngine {
	return &UniformEngine{
		rng:      rand.New(rand.NewSource(seed)),
		radiance: radiance,
		noise:    noise,
	}
}

// Trace returns task.Settings.PixelSamples flat spectra. Fibre geometry
// (acceptance angle, tip radius) does not change a uniform field, so it is
// accepted and ignored.
func (e *UniformEngine) Trace(ctx context.Context, task Task) ([]*spectrum.Spectrum, error) {
	if err := task.Settings.Validate(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	samples := make([]*spectrum.Spectrum, 0, task.Settings.PixelSamples)
	for i := 0; i < task.Settings.PixelSamples; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		s, err := spectrum.New(task.Settings.MinWavelength, task.Settings.MaxWavelength, task.Settings.SpectralBins)
		if err != nil {
			return nil, err
		}

		level := e.radiance
		if e.noise > 0 {
			level *= 1 + e.noise*e.rng.NormFloat64()
			if level < 0 {
				level = 0
			}
		}
		for j := range s.Samples {
			s.Samples[j] = level
		}
		samples = append(samples, s)
	}
	return samples, nil
}
