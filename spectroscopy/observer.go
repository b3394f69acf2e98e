package spectroscopy

import (
	"context"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"

	"github.com/torus-diagnostics/spectroscope/geometry"
	"github.com/torus-diagnostics/spectroscope/pipeline"
	"github.com/torus-diagnostics/spectroscope/render"
	"github.com/torus-diagnostics/spectroscope/spectrum"
)

// Observer is the surface shared by sight-lines and fibre optics. Groups
// operate on members exclusively through it.
type Observer interface {
	Name() string
	SetName(name string)
	SetParent(parent *Node)
	Transform() geometry.Transform

	Origin() geometry.Point3
	SetOrigin(origin geometry.Point3)
	Direction() geometry.Vec3
	SetDirection(direction geometry.Vec3) error

	Pipelines() []*pipeline.Pipeline
	SetPipelines(pipelines []*pipeline.Pipeline)
	GetPipeline(ref PipelineRef) (*pipeline.Pipeline, error)

	DisplayProgress() []*bool
	SetDisplayProgress(display bool)
	AccumulateFlags() []bool
	SetAccumulate(accumulate bool)

	MinWavelength() float64
	SetMinWavelength(v float64)
	MaxWavelength() float64
	SetMaxWavelength(v float64)
	SpectralBins() int
	SetSpectralBins(v int)
	RayExtinctionProb() float64
	SetRayExtinctionProb(v float64)
	RayExtinctionMinDepth() int
	SetRayExtinctionMinDepth(v int)
	RayMaxDepth() int
	SetRayMaxDepth(v int)
	RayImportantPathWeight() float64
	SetRayImportantPathWeight(v float64)
	PixelSamples() int
	SetPixelSamples(v int)
	SamplesPerTask() int
	SetSamplesPerTask(v int)

	Observe(ctx context.Context) error
	ObservedSpectrum(ref PipelineRef) (*spectrum.Spectrum, error)

	PlotSpectrum(p *plot.Plot, ref PipelineRef, unit string, ymax float64, extras bool) error
	plotSpectrumStyled(p *plot.Plot, ref PipelineRef, unit string, c color.Color) error
}

// observer0D carries the state and behaviour shared by both observer
// variants. Acceptance angle and tip radius stay zero for plain
// sight-lines, which sample a single ray.
type observer0D struct {
	Node

	origin    geometry.Point3
	direction geometry.Vec3

	pipelines []*pipeline.Pipeline
	settings  render.Settings
	engine    render.Engine

	acceptanceAngle float64
	radius          float64
}

func newObserver0D(name string, engine render.Engine, pipelines []*pipeline.Pipeline) observer0D {
	if len(pipelines) == 0 {
		p, _ := pipeline.New(pipeline.Property{Kind: pipeline.SpectralRadiance})
		pipelines = []*pipeline.Pipeline{p}
	}
	o := observer0D{
		Node:      NewNode(name),
		origin:    geometry.NewPoint3(0, 0, 0),
		direction: geometry.NewVec3(1, 0, 0),
		pipelines: pipelines,
		settings:  render.DefaultSettings(),
		engine:    engine,
	}
	o.reposition()
	return o
}

// reposition recomputes the placement transform from the currently stored
// origin and direction pair and pushes it onto the scene node. The stored
// direction is always non-zero, so the derivation cannot fail.
func (o *observer0D) reposition() {
	t, err := geometry.ObserverTransform(o.origin, o.direction)
	if err != nil {
		// Unreachable while the direction invariant holds.
		t = geometry.Identity()
	}
	o.SetTransform(t)
}

// Origin returns the origin point of the observer in the parent frame.
func (o *observer0D) Origin() geometry.Point3 {
	return o.origin
}

// SetOrigin moves the observer and recomputes its full placement transform
// from the stored origin/direction pair.
func (o *observer0D) SetOrigin(origin geometry.Point3) {
	o.origin = origin
	o.reposition()
}

// Direction returns the observation direction. Magnitude carries no
// meaning; only the direction is used.
func (o *observer0D) Direction() geometry.Vec3 {
	return o.direction
}

// SetDirection reorients the observer and recomputes its full placement
// transform. The zero vector is rejected.
func (o *observer0D) SetDirection(direction geometry.Vec3) error {
	if direction.IsZero() {
		return fmt.Errorf("observer direction must be non-zero")
	}
	o.direction = direction
	o.reposition()
	return nil
}

// Pipelines returns the attached pipelines in order.
func (o *observer0D) Pipelines() []*pipeline.Pipeline {
	out := make([]*pipeline.Pipeline, len(o.pipelines))
	copy(out, o.pipelines)
	return out
}

// SetPipelines replaces the attached pipelines.
func (o *observer0D) SetPipelines(pipelines []*pipeline.Pipeline) {
	o.pipelines = make([]*pipeline.Pipeline, len(pipelines))
	copy(o.pipelines, pipelines)
}

// SetEngine attaches the render engine observations are delegated to.
func (o *observer0D) SetEngine(engine render.Engine) {
	o.engine = engine
}

// GetPipeline resolves a pipeline by index or name. Index lookups report
// the available count when out of range; name lookups fail when the name
// matches no pipeline or more than one.
func (o *observer0D) GetPipeline(ref PipelineRef) (*pipeline.Pipeline, error) {
	if !ref.named {
		if ref.index < 0 || ref.index >= len(o.pipelines) {
			return nil, fmt.Errorf("pipeline %d not available in observer %q with only %d pipelines",
				ref.index, o.Name(), len(o.pipelines))
		}
		return o.pipelines[ref.index], nil
	}

	var matches []*pipeline.Pipeline
	for _, p := range o.pipelines {
		if p.Name() == ref.name {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return nil, fmt.Errorf("pipeline %q was not found in observer %q", ref.name, o.Name())
	default:
		return nil, fmt.Errorf("found %d pipelines with name %q in observer %q", len(matches), ref.name, o.Name())
	}
}

// DisplayProgress reads the live-progress toggle of each pipeline in order.
// Entries are nil for kinds that do not support the attribute.
func (o *observer0D) DisplayProgress() []*bool {
	flags := make([]*bool, len(o.pipelines))
	for i, p := range o.pipelines {
		if p.Kind().SupportsDisplayProgress() {
			v := p.DisplayProgress()
			flags[i] = &v
		}
	}
	return flags
}

// SetDisplayProgress toggles live-progress on every pipeline whose kind
// supports it; the rest are skipped silently.
func (o *observer0D) SetDisplayProgress(display bool) {
	for _, p := range o.pipelines {
		p.SetDisplayProgress(display)
	}
}

// AccumulateFlags reads the accumulation toggle of each pipeline in order.
func (o *observer0D) AccumulateFlags() []bool {
	flags := make([]bool, len(o.pipelines))
	for i, p := range o.pipelines {
		flags[i] = p.Accumulate()
	}
	return flags
}

// SetAccumulate toggles accumulation on every pipeline.
func (o *observer0D) SetAccumulate(accumulate bool) {
	for _, p := range o.pipelines {
		p.SetAccumulate(accumulate)
	}
}

// Spectral and ray-tracing tunables forward straight into the render
// settings passed to the engine on the next observation.

func (o *observer0D) MinWavelength() float64     { return o.settings.MinWavelength }
func (o *observer0D) SetMinWavelength(v float64) { o.settings.MinWavelength = v }
func (o *observer0D) MaxWavelength() float64     { return o.settings.MaxWavelength }
func (o *observer0D) SetMaxWavelength(v float64) { o.settings.MaxWavelength = v }
func (o *observer0D) SpectralBins() int          { return o.settings.SpectralBins }
func (o *observer0D) SetSpectralBins(v int)      { o.settings.SpectralBins = v }
func (o *observer0D) RayExtinctionProb() float64 { return o.settings.RayExtinctionProb }
func (o *observer0D) SetRayExtinctionProb(v float64) {
	o.settings.RayExtinctionProb = v
}
func (o *observer0D) RayExtinctionMinDepth() int { return o.settings.RayExtinctionMinDepth }
func (o *observer0D) SetRayExtinctionMinDepth(v int) {
	o.settings.RayExtinctionMinDepth = v
}
func (o *observer0D) RayMaxDepth() int     { return o.settings.RayMaxDepth }
func (o *observer0D) SetRayMaxDepth(v int) { o.settings.RayMaxDepth = v }
func (o *observer0D) RayImportantPathWeight() float64 {
	return o.settings.RayImportantPathWeight
}
func (o *observer0D) SetRayImportantPathWeight(v float64) {
	o.settings.RayImportantPathWeight = v
}
func (o *observer0D) PixelSamples() int       { return o.settings.PixelSamples }
func (o *observer0D) SetPixelSamples(v int)   { o.settings.PixelSamples = v }
func (o *observer0D) SamplesPerTask() int     { return o.settings.SamplesPerTask }
func (o *observer0D) SetSamplesPerTask(v int) { o.settings.SamplesPerTask = v }

// Observe delegates one observation to the render engine and folds every
// returned sample into every attached pipeline.
func (o *observer0D) Observe(ctx context.Context) error {
	if o.engine == nil {
		return fmt.Errorf("observer %q has no render engine attached", o.Name())
	}

	for _, p := range o.pipelines {
		p.Begin(o.settings.MinWavelength, o.settings.MaxWavelength, o.settings.SpectralBins)
	}

	task := render.Task{
		Origin:          o.origin,
		Direction:       o.direction,
		Transform:       o.Transform(),
		AcceptanceAngle: o.acceptanceAngle,
		Radius:          o.radius,
		Settings:        o.settings,
	}
	samples, err := o.engine.Trace(ctx, task)
	if err != nil {
		return fmt.Errorf("observe %q: %w", o.Name(), err)
	}

	for _, s := range samples {
		for _, p := range o.pipelines {
			if err := p.Record(s); err != nil {
				return fmt.Errorf("observe %q: %w", o.Name(), err)
			}
		}
	}
	for _, p := range o.pipelines {
		p.Finalise()
	}
	return nil
}

// ObservedSpectrum materialises the spectrum accumulated by one pipeline.
// Broadband kinds yield a one-bin spectrum over the observer's wavelength
// range holding the mean power density; spectral kinds yield the
// pipeline's own recorded range and per-bin means.
func (o *observer0D) ObservedSpectrum(ref PipelineRef) (*spectrum.Spectrum, error) {
	p, err := o.GetPipeline(ref)
	if err != nil {
		return nil, err
	}

	switch p.Kind() {
	case pipeline.Radiance, pipeline.Power:
		s, err := spectrum.New(o.settings.MinWavelength, o.settings.MaxWavelength, 1)
		if err != nil {
			return nil, err
		}
		s.Samples[0] = p.ValueMean() / (o.settings.MaxWavelength - o.settings.MinWavelength)
		return s, nil

	case pipeline.SpectralRadiance, pipeline.SpectralPower:
		if p.SampleCount() == 0 {
			return nil, fmt.Errorf("no spectrum has been observed by pipeline %s of observer %q", ref, o.Name())
		}
		s, err := spectrum.New(p.MinWavelength(), p.MaxWavelength(), p.Bins())
		if err != nil {
			return nil, err
		}
		copy(s.Samples, p.SampleMeans())
		return s, nil

	default:
		return nil, fmt.Errorf("observed spectrum is not supported for pipeline kind %q", p.Kind())
	}
}
