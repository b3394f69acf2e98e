package pipeline

import (
	"fmt"
	"log"

	"github.com/torus-diagnostics/spectroscope/spectrum"
)

// Filter is a spectral response applied by the broadband kinds before
// wavelength integration. It returns the dimensionless transmission at the
// given wavelength in nanometres. A nil filter passes everything.
type Filter func(wavelengthNM float64) float64

// Property describes one pipeline to construct: its kind, an optional name
// and, for the broadband kinds, an optional filter. Filters supplied for
// spectrally resolved kinds are ignored.
type Property struct {
	Kind   Kind
	Name   string
	Filter Filter
}

// Pipeline accumulates observation results for one observer. Spectral kinds
// keep per-bin running means over the spectral range recorded at observation
// time; broadband kinds keep a single running mean of the filtered,
// wavelength-integrated value.
type Pipeline struct {
	kind            Kind
	name            string
	accumulate      bool
	displayProgress bool
	filter          Filter

	// broadband accumulation state
	valueMean  float64
	valueCount int

	// spectral accumulation state
	minWavelength float64
	maxWavelength float64
	sampleMeans   []float64
	sampleCount   int
}

// New constructs a pipeline from a property triple. Pipelines are
// non-accumulating by construction. Unsupported kinds are rejected.
func New(prop Property) (*Pipeline, error) {
	if !prop.Kind.Valid() {
		return nil, fmt.Errorf("unsupported pipeline kind %q: supported kinds are "+
			"SpectralRadiance, SpectralPower, Radiance and Power", prop.Kind)
	}

	p := &Pipeline{
		kind: prop.Kind,
		name: prop.Name,
	}
	if prop.Kind.AcceptsFilter() {
		p.filter = prop.Filter
	}
	return p, nil
}

// Kind returns the pipeline kind.
func (p *Pipeline) Kind() Kind {
	return p.kind
}

// Name returns the pipeline name.
func (p *Pipeline) Name() string {
	return p.name
}

// SetName sets the pipeline name.
func (p *Pipeline) SetName(name string) {
	p.name = name
}

// Accumulate reports whether repeated observations fold into the existing
// statistics instead of resetting them.
func (p *Pipeline) Accumulate() bool {
	return p.accumulate
}

// SetAccumulate toggles accumulation across observations.
func (p *Pipeline) SetAccumulate(accumulate bool) {
	p.accumulate = accumulate
}

// DisplayProgress reports whether live progress logging is enabled. Always
// false for kinds that do not support it.
func (p *Pipeline) DisplayProgress() bool {
	return p.kind.SupportsDisplayProgress() && p.displayProgress
}

// SetDisplayProgress toggles live progress logging. Ignored by kinds that
// do not support it.
func (p *Pipeline) SetDisplayProgress(display bool) {
	if p.kind.SupportsDisplayProgress() {
		p.displayProgress = display
	}
}

// Begin prepares the pipeline for an observation over the given spectral
// range. State resets unless the pipeline accumulates; accumulating spectral
// pipelines also reset when the spectral configuration has changed, since
// bin statistics would otherwise mix incompatible ranges.
func (p *Pipeline) Begin(minWavelength, maxWavelength float64, bins int) {
	if p.kind.Spectral() {
		changed := p.minWavelength != minWavelength ||
			p.maxWavelength != maxWavelength ||
			len(p.sampleMeans) != bins
		if !p.accumulate || changed {
			p.sampleMeans = make([]float64, bins)
			p.sampleCount = 0
		}
		p.minWavelength = minWavelength
		p.maxWavelength = maxWavelength
		return
	}

	if !p.accumulate {
		p.valueMean = 0
		p.valueCount = 0
	}
	p.minWavelength = minWavelength
	p.maxWavelength = maxWavelength
}

// Record folds one sampled spectrum into the pipeline statistics.
func (p *Pipeline) Record(s *spectrum.Spectrum) error {
	if p.kind.Spectral() {
		if s.Bins() != len(p.sampleMeans) {
			return fmt.Errorf("sample has %d bins, pipeline expects %d", s.Bins(), len(p.sampleMeans))
		}
		p.sampleCount++
		n := float64(p.sampleCount)
		for i, v := range s.Samples {
			p.sampleMeans[i] += (v - p.sampleMeans[i]) / n
		}
		return nil
	}

	// Broadband: apply the filter, integrate over wavelength, then fold
	// the scalar into the running mean.
	value := 0.0
	delta := s.Delta()
	for i, wavelength := range s.Wavelengths() {
		weight := 1.0
		if p.filter != nil {
			weight = p.filter(wavelength)
		}
		value += s.Samples[i] * weight * delta
	}
	p.valueCount++
	p.valueMean += (value - p.valueMean) / float64(p.valueCount)
	return nil
}

// Finalise completes an observation, logging progress when enabled.
func (p *Pipeline) Finalise() {
	if !p.DisplayProgress() {
		return
	}
	log.Printf("[Pipeline] %s (%s): %d samples over [%g, %g] nm",
		p.name, p.kind, p.sampleCount, p.minWavelength, p.maxWavelength)
}

// ValueMean returns the running mean of the broadband kinds. Zero until the
// first sample is recorded.
func (p *Pipeline) ValueMean() float64 {
	return p.valueMean
}

// SampleMeans returns a copy of the per-bin running means of the spectrally
// resolved kinds. Nil for broadband kinds.
func (p *Pipeline) SampleMeans() []float64 {
	if p.sampleMeans == nil {
		return nil
	}
	means := make([]float64, len(p.sampleMeans))
	copy(means, p.sampleMeans)
	return means
}

// SampleCount returns the number of samples folded in since the last reset.
func (p *Pipeline) SampleCount() int {
	if p.kind.Spectral() {
		return p.sampleCount
	}
	return p.valueCount
}

// MinWavelength returns the lower bound of the recorded spectral range.
func (p *Pipeline) MinWavelength() float64 {
	return p.minWavelength
}

// MaxWavelength returns the upper bound of the recorded spectral range.
func (p *Pipeline) MaxWavelength() float64 {
	return p.maxWavelength
}

// Bins returns the recorded bin count of the spectrally resolved kinds.
func (p *Pipeline) Bins() int {
	return len(p.sampleMeans)
}
