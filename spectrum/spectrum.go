// Package spectrum provides the sampled-spectrum value object exchanged
// between observers, pipelines and plots. Sample units are J/s-based;
// ToPhotons converts to photon rates.
package spectrum

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Physical constants for photon-energy conversion.
const (
	planckConstant = 6.62607015e-34 // J s
	speedOfLight   = 2.99792458e8   // m/s
)

// Spectrum holds regularly binned samples over a wavelength range in
// nanometres. Samples has one entry per bin.
type Spectrum struct {
	MinWavelength float64
	MaxWavelength float64
	Samples       []float64
}

// New creates an empty spectrum covering [min, max] nanometres with the
// given number of bins.
func New(minWavelength, maxWavelength float64, bins int) (*Spectrum, error) {
	if bins < 1 {
		return nil, fmt.Errorf("spectrum must have at least 1 bin, got %d", bins)
	}
	if minWavelength <= 0 || maxWavelength <= 0 {
		return nil, fmt.Errorf("wavelength bounds must be positive, got [%v, %v]", minWavelength, maxWavelength)
	}
	if minWavelength >= maxWavelength {
		return nil, fmt.Errorf("min wavelength (%v) must be below max wavelength (%v)", minWavelength, maxWavelength)
	}
	return &Spectrum{
		MinWavelength: minWavelength,
		MaxWavelength: maxWavelength,
		Samples:       make([]float64, bins),
	}, nil
}

// Bins returns the number of spectral bins.
func (s *Spectrum) Bins() int {
	return len(s.Samples)
}

// Delta returns the wavelength width of one bin in nanometres.
func (s *Spectrum) Delta() float64 {
	return (s.MaxWavelength - s.MinWavelength) / float64(len(s.Samples))
}

// Wavelengths returns the bin-centre wavelengths in nanometres.
func (s *Spectrum) Wavelengths() []float64 {
	delta := s.Delta()
	wavelengths := make([]float64, len(s.Samples))
	for i := range wavelengths {
		wavelengths[i] = s.MinWavelength + (float64(i)+0.5)*delta
	}
	return wavelengths
}

// Total integrates the samples over the wavelength range.
func (s *Spectrum) Total() float64 {
	return floats.Sum(s.Samples) * s.Delta()
}

// ToPhotons converts the per-bin samples from J/s-based units to photon
// rates, dividing each bin by the photon energy at its centre wavelength.
func (s *Spectrum) ToPhotons() []float64 {
	photons := make([]float64, len(s.Samples))
	for i, wavelength := range s.Wavelengths() {
		// wavelength is in nm; photon energy E = h*c/lambda
		energy := planckConstant * speedOfLight / (wavelength * 1e-9)
		photons[i] = s.Samples[i] / energy
	}
	return photons
}

// Blank returns a zero-sample spectrum with the same range and binning.
func (s *Spectrum) Blank() *Spectrum {
	return &Spectrum{
		MinWavelength: s.MinWavelength,
		MaxWavelength: s.MaxWavelength,
		Samples:       make([]float64, len(s.Samples)),
	}
}
