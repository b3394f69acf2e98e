// Package config loads instrument descriptions: the sight-line layout,
// spectral range and sampling parameters of an observer group. The schema
// is plain JSON so the same file can seed a bench run or be produced by
// other tooling.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/torus-diagnostics/spectroscope/geometry"
	"github.com/torus-diagnostics/spectroscope/pipeline"
	"github.com/torus-diagnostics/spectroscope/render"
	"github.com/torus-diagnostics/spectroscope/spectroscopy"
)

// PipelineConfig describes one pipeline to connect to every sight-line.
type PipelineConfig struct {
	Kind string `json:"kind"`
	Name string `json:"name,omitempty"`
}

// InstrumentConfig describes an observer group. Names, Origins and
// Directions must have equal lengths; one sight-line is built per entry.
// Optional fields are pointers so absent values fall back to defaults.
type InstrumentConfig struct {
	Name       string       `json:"name"`
	Names      []string     `json:"names"`
	Origins    [][3]float64 `json:"origins"`
	Directions [][3]float64 `json:"directions"`

	MinWavelength  *float64 `json:"min_wavelength,omitempty"`
	MaxWavelength  *float64 `json:"max_wavelength,omitempty"`
	SpectralBins   *int     `json:"spectral_bins,omitempty"`
	PixelSamples   *int     `json:"pixel_samples,omitempty"`
	SamplesPerTask *int     `json:"samples_per_task,omitempty"`

	// Fibre-optic geometry; ignored for plain sight-line instruments.
	AcceptanceAngle *float64 `json:"acceptance_angle,omitempty"`
	Radius          *float64 `json:"radius,omitempty"`

	Pipelines []PipelineConfig `json:"pipelines,omitempty"`
}

// LoadInstrumentConfig reads and validates an instrument description.
func LoadInstrumentConfig(path string) (*InstrumentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read instrument config: %w", err)
	}

	var cfg InstrumentConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse instrument config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks internal consistency of the description.
func (c *InstrumentConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("instrument name must be set")
	}
	if len(c.Names) == 0 {
		return fmt.Errorf("instrument %q has no sight-lines", c.Name)
	}
	if len(c.Origins) != len(c.Names) || len(c.Directions) != len(c.Names) {
		return fmt.Errorf("instrument %q: names (%d), origins (%d) and directions (%d) must have equal lengths",
			c.Name, len(c.Names), len(c.Origins), len(c.Directions))
	}
	for i, d := range c.Directions {
		if d[0] == 0 && d[1] == 0 && d[2] == 0 {
			return fmt.Errorf("instrument %q: direction %d must be non-zero", c.Name, i)
		}
	}
	for _, p := range c.Pipelines {
		if _, err := pipeline.ParseKind(p.Kind); err != nil {
			return fmt.Errorf("instrument %q: %w", c.Name, err)
		}
	}
	return nil
}

// pipelineProperties converts the configured pipelines, defaulting to a
// single unnamed spectral-radiance pipeline.
func (c *InstrumentConfig) pipelineProperties() ([]pipeline.Property, error) {
	if len(c.Pipelines) == 0 {
		return []pipeline.Property{{Kind: pipeline.SpectralRadiance}}, nil
	}
	props := make([]pipeline.Property, 0, len(c.Pipelines))
	for _, p := range c.Pipelines {
		kind, err := pipeline.ParseKind(p.Kind)
		if err != nil {
			return nil, err
		}
		props = append(props, pipeline.Property{Kind: kind, Name: p.Name})
	}
	return props, nil
}

// samplingGroup is the slice of the group surface the sampling fields
// broadcast through.
type samplingGroup interface {
	SetMinWavelength(float64)
	SetMaxWavelength(float64)
	SetSpectralBins(int)
	SetPixelSamples(int)
	SetSamplesPerTask(int)
}

// applySampling pushes the optional sampling fields onto the group through
// its broadcast setters.
func (c *InstrumentConfig) applySampling(g samplingGroup) {
	if c.MinWavelength != nil {
		g.SetMinWavelength(*c.MinWavelength)
	}
	if c.MaxWavelength != nil {
		g.SetMaxWavelength(*c.MaxWavelength)
	}
	if c.SpectralBins != nil {
		g.SetSpectralBins(*c.SpectralBins)
	}
	if c.PixelSamples != nil {
		g.SetPixelSamples(*c.PixelSamples)
	}
	if c.SamplesPerTask != nil {
		g.SetSamplesPerTask(*c.SamplesPerTask)
	}
}

// BuildLineOfSightGroup constructs a sight-line group from the description,
// attaching the given engine to every member.
func (c *InstrumentConfig) BuildLineOfSightGroup(engine render.Engine) (*spectroscopy.LineOfSightGroup, error) {
	group := spectroscopy.NewLineOfSightGroup(c.Name)
	for i, name := range c.Names {
		origin := geometry.NewPoint3(c.Origins[i][0], c.Origins[i][1], c.Origins[i][2])
		direction := geometry.NewVec3(c.Directions[i][0], c.Directions[i][1], c.Directions[i][2])
		sl, err := spectroscopy.NewSightLine(name, origin, direction, engine)
		if err != nil {
			return nil, fmt.Errorf("instrument %q: sight-line %q: %w", c.Name, name, err)
		}
		group.AddSightLine(sl)
	}

	props, err := c.pipelineProperties()
	if err != nil {
		return nil, err
	}
	if err := group.ConnectPipelines(props); err != nil {
		return nil, err
	}
	c.applySampling(group)
	return group, nil
}

// BuildFibreOpticGroup constructs a fibre-optic group from the description,
// attaching the given engine to every member.
func (c *InstrumentConfig) BuildFibreOpticGroup(engine render.Engine) (*spectroscopy.FibreOpticGroup, error) {
	angle := 0.0
	if c.AcceptanceAngle != nil {
		angle = *c.AcceptanceAngle
	}
	radius := 0.0
	if c.Radius != nil {
		radius = *c.Radius
	}

	group := spectroscopy.NewFibreOpticGroup(c.Name)
	for i, name := range c.Names {
		origin := geometry.NewPoint3(c.Origins[i][0], c.Origins[i][1], c.Origins[i][2])
		direction := geometry.NewVec3(c.Directions[i][0], c.Directions[i][1], c.Directions[i][2])
		fibre, err := spectroscopy.NewFibreOptic(name, origin, direction, engine, angle, radius)
		if err != nil {
			return nil, fmt.Errorf("instrument %q: fibre %q: %w", c.Name, name, err)
		}
		group.AddSightLine(fibre)
	}

	props, err := c.pipelineProperties()
	if err != nil {
		return nil, err
	}
	if err := group.ConnectPipelines(props); err != nil {
		return nil, err
	}
	c.applySampling(group)
	return group, nil
}
