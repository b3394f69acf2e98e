package spectroscopy

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/plot"

	"github.com/torus-diagnostics/spectroscope/geometry"
	"github.com/torus-diagnostics/spectroscope/pipeline"
	"github.com/torus-diagnostics/spectroscope/render"
	"github.com/torus-diagnostics/spectroscope/spectrum"
)

// fakeEngine returns flat spectra at a fixed level and records the tasks
// it traced, in order.
type fakeEngine struct {
	level float64
	tasks []render.Task
	err   error
}

func (e *fakeEngine) Trace(ctx context.Context, task render.Task) ([]*spectrum.Spectrum, error) {
	if e.err != nil {
		return nil, e.err
	}
	e.tasks = append(e.tasks, task)

	samples := make([]*spectrum.Spectrum, task.Settings.PixelSamples)
	for i := range samples {
		s, err := spectrum.New(task.Settings.MinWavelength, task.Settings.MaxWavelength, task.Settings.SpectralBins)
		if err != nil {
			return nil, err
		}
		for j := range s.Samples {
			s.Samples[j] = e.level
		}
		samples[i] = s
	}
	return samples, nil
}

func mustSightLine(t *testing.T, name string, engine render.Engine, pipelines ...*pipeline.Pipeline) *SightLine {
	t.Helper()
	s, err := NewSightLine(name, geometry.NewPoint3(0, 0, 0), geometry.NewVec3(1, 0, 0), engine, pipelines...)
	if err != nil {
		t.Fatalf("NewSightLine: %v", err)
	}
	return s
}

func mustPipeline(t *testing.T, kind pipeline.Kind, name string) *pipeline.Pipeline {
	t.Helper()
	p, err := pipeline.New(pipeline.Property{Kind: kind, Name: name})
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}
	return p
}

func TestNewSightLine_Defaults(t *testing.T) {
	s := mustSightLine(t, "los-1", nil)

	pipelines := s.Pipelines()
	if len(pipelines) != 1 {
		t.Fatalf("len(Pipelines()) = %d, want 1 default pipeline", len(pipelines))
	}
	if pipelines[0].Kind() != pipeline.SpectralRadiance {
		t.Errorf("default pipeline kind = %v, want SpectralRadiance", pipelines[0].Kind())
	}
	if pipelines[0].Accumulate() {
		t.Error("default pipeline must be non-accumulating")
	}

	defaults := render.DefaultSettings()
	if s.MinWavelength() != defaults.MinWavelength || s.MaxWavelength() != defaults.MaxWavelength {
		t.Errorf("wavelength range = [%v, %v], want defaults [%v, %v]",
			s.MinWavelength(), s.MaxWavelength(), defaults.MinWavelength, defaults.MaxWavelength)
	}
}

func TestSightLine_RepositionKeepsPairConsistent(t *testing.T) {
	s := mustSightLine(t, "los-1", nil)

	origin := geometry.NewPoint3(1, 2, 3)
	direction := geometry.NewVec3(0, 1, 0)

	s.SetOrigin(origin)
	if err := s.SetDirection(direction); err != nil {
		t.Fatalf("SetDirection: %v", err)
	}

	if s.Origin() != origin {
		t.Errorf("Origin() = %+v, want %+v", s.Origin(), origin)
	}
	if s.Direction() != direction {
		t.Errorf("Direction() = %+v, want %+v", s.Direction(), direction)
	}

	x, y, z := s.Transform().Translation()
	if x != 1 || y != 2 || z != 3 {
		t.Errorf("transform translation = (%v,%v,%v), want (1,2,3)", x, y, z)
	}
	forward := s.Transform().ApplyVector(geometry.NewVec3(0, 0, 1))
	if math.Abs(forward.X) > 1e-9 || math.Abs(forward.Y-1) > 1e-9 || math.Abs(forward.Z) > 1e-9 {
		t.Errorf("forward axis maps to %+v, want (0,1,0)", forward)
	}

	// Setting origin after direction must still fold in the stored direction.
	s.SetOrigin(geometry.NewPoint3(5, 0, 0))
	forward = s.Transform().ApplyVector(geometry.NewVec3(0, 0, 1))
	if math.Abs(forward.Y-1) > 1e-9 {
		t.Errorf("forward axis after origin change = %+v, want (0,1,0)", forward)
	}
}

func TestSightLine_ZAxisDirection(t *testing.T) {
	s := mustSightLine(t, "los-1", nil)
	if err := s.SetDirection(geometry.NewVec3(0, 0, 1)); err != nil {
		t.Fatalf("SetDirection(+z): %v", err)
	}
	forward := s.Transform().ApplyVector(geometry.NewVec3(0, 0, 1))
	if math.Abs(forward.Z-1) > 1e-9 {
		t.Errorf("forward axis maps to %+v, want (0,0,1)", forward)
	}
}

func TestSightLine_ZeroDirectionRejected(t *testing.T) {
	s := mustSightLine(t, "los-1", nil)
	if err := s.SetDirection(geometry.Vec3{}); err == nil {
		t.Error("expected error for zero direction")
	}
	if _, err := NewSightLine("bad", geometry.NewPoint3(0, 0, 0), geometry.Vec3{}, nil); err == nil {
		t.Error("expected constructor error for zero direction")
	}
}

func TestGetPipeline_Lookup(t *testing.T) {
	s := mustSightLine(t, "los-1", nil,
		mustPipeline(t, pipeline.SpectralRadiance, "spec"),
		mustPipeline(t, pipeline.Power, "total"),
		mustPipeline(t, pipeline.Power, "total"),
	)

	if _, err := s.GetPipeline(PipelineIndex(0)); err != nil {
		t.Errorf("GetPipeline(0): %v", err)
	}

	_, err := s.GetPipeline(PipelineIndex(7))
	if err == nil || !strings.Contains(err.Error(), "only 3 pipelines") {
		t.Errorf("GetPipeline(7) error = %v, want it to report the available count", err)
	}

	p, err := s.GetPipeline(PipelineName("spec"))
	if err != nil || p.Name() != "spec" {
		t.Errorf("GetPipeline(spec) = %v, %v", p, err)
	}

	if _, err := s.GetPipeline(PipelineName("missing")); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("GetPipeline(missing) error = %v, want not-found", err)
	}

	if _, err := s.GetPipeline(PipelineName("total")); err == nil || !strings.Contains(err.Error(), "found 2 pipelines") {
		t.Errorf("GetPipeline(total) error = %v, want ambiguity with match count", err)
	}
}

func TestDisplayProgress_SkipsUnsupportedKinds(t *testing.T) {
	s := mustSightLine(t, "los-1", nil,
		mustPipeline(t, pipeline.SpectralRadiance, "spec"),
		mustPipeline(t, pipeline.Radiance, "broad"),
	)

	s.SetDisplayProgress(true)

	flags := s.DisplayProgress()
	if len(flags) != 2 {
		t.Fatalf("len(DisplayProgress()) = %d, want 2", len(flags))
	}
	if flags[0] == nil || !*flags[0] {
		t.Errorf("spectral pipeline flag = %v, want true", flags[0])
	}
	if flags[1] != nil {
		t.Errorf("broadband pipeline flag = %v, want nil (unsupported)", *flags[1])
	}
}

func TestObserve_FeedsPipelines(t *testing.T) {
	engine := &fakeEngine{level: 2.0}
	s := mustSightLine(t, "los-1", engine,
		mustPipeline(t, pipeline.SpectralRadiance, "spec"),
		mustPipeline(t, pipeline.Radiance, "broad"),
	)
	s.SetMinWavelength(400)
	s.SetMaxWavelength(500)
	s.SetSpectralBins(10)
	s.SetPixelSamples(5)

	if err := s.Observe(context.Background()); err != nil {
		t.Fatalf("Observe: %v", err)
	}

	spec, err := s.ObservedSpectrum(PipelineName("spec"))
	if err != nil {
		t.Fatalf("ObservedSpectrum(spec): %v", err)
	}
	if spec.Bins() != 10 {
		t.Errorf("spectral bins = %d, want 10", spec.Bins())
	}
	for i, v := range spec.Samples {
		if v != 2.0 {
			t.Errorf("spec.Samples[%d] = %v, want 2.0", i, v)
		}
	}

	// Flat 2.0 over 100 nm integrates to 200; the broadband spectrum is a
	// single bin holding mean power / range.
	broad, err := s.ObservedSpectrum(PipelineName("broad"))
	if err != nil {
		t.Fatalf("ObservedSpectrum(broad): %v", err)
	}
	if broad.Bins() != 1 {
		t.Fatalf("broadband bins = %d, want 1", broad.Bins())
	}
	if math.Abs(broad.Samples[0]-2.0) > 1e-9 {
		t.Errorf("broadband density = %v, want 2.0 (200 over 100 nm)", broad.Samples[0])
	}
	if math.Abs(broad.Total()-200) > 1e-9 {
		t.Errorf("broadband total = %v, want 200", broad.Total())
	}
}

func TestObserve_NoEngine(t *testing.T) {
	s := mustSightLine(t, "los-1", nil)
	if err := s.Observe(context.Background()); err == nil {
		t.Error("expected error when no engine is attached")
	}
}

func TestObserve_EngineErrorPropagates(t *testing.T) {
	boom := errors.New("trace failed")
	s := mustSightLine(t, "los-1", &fakeEngine{err: boom})
	if err := s.Observe(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Observe error = %v, want wrapped %v", err, boom)
	}
}

func TestObservedSpectrum_ScalarMeanPowerDensity(t *testing.T) {
	engine := &fakeEngine{level: 3.0}
	s := mustSightLine(t, "los-1", engine, mustPipeline(t, pipeline.Power, "pwr"))
	s.SetMinWavelength(400)
	s.SetMaxWavelength(600)
	s.SetSpectralBins(4)
	s.SetPixelSamples(2)

	if err := s.Observe(context.Background()); err != nil {
		t.Fatalf("Observe: %v", err)
	}

	// Mean power P = 3.0 * 200 nm = 600; density = P / (600-400) = 3.0.
	spec, err := s.ObservedSpectrum(PipelineIndex(0))
	if err != nil {
		t.Fatalf("ObservedSpectrum: %v", err)
	}
	if math.Abs(spec.Samples[0]-3.0) > 1e-9 {
		t.Errorf("density = %v, want 3.0", spec.Samples[0])
	}
}

func TestObservedSpectrum_SpectralRequiresSamples(t *testing.T) {
	s := mustSightLine(t, "los-1", nil, mustPipeline(t, pipeline.SpectralPower, "spec"))
	_, err := s.ObservedSpectrum(PipelineIndex(0))
	if err == nil || !strings.Contains(err.Error(), "no spectrum has been observed") {
		t.Errorf("ObservedSpectrum error = %v, want state-precondition failure", err)
	}
}

func TestPlotSpectrum_Units(t *testing.T) {
	engine := &fakeEngine{level: 1.0}
	s := mustSightLine(t, "los-1", engine)
	s.SetPixelSamples(1)
	if err := s.Observe(context.Background()); err != nil {
		t.Fatalf("Observe: %v", err)
	}

	for _, unit := range []string{"J", "ph"} {
		fig := plot.New()
		if err := s.PlotSpectrum(fig, PipelineIndex(0), unit, 0, true); err != nil {
			t.Errorf("PlotSpectrum(%s): %v", unit, err)
		}
	}

	fig := plot.New()
	err := s.PlotSpectrum(fig, PipelineIndex(0), "eV", 0, true)
	if err == nil || !strings.Contains(err.Error(), `"eV"`) {
		t.Errorf("PlotSpectrum(eV) error = %v, want it to name the bad unit", err)
	}
}

func TestPlotSpectrum_SingleBinScalar(t *testing.T) {
	engine := &fakeEngine{level: 1.0}
	s := mustSightLine(t, "los-1", engine, mustPipeline(t, pipeline.Radiance, "broad"))
	s.SetPixelSamples(1)
	if err := s.Observe(context.Background()); err != nil {
		t.Fatalf("Observe: %v", err)
	}

	fig := plot.New()
	if err := s.PlotSpectrum(fig, PipelineIndex(0), "J", 10, true); err != nil {
		t.Errorf("PlotSpectrum single-bin: %v", err)
	}
	if fig.Y.Max != 10 {
		t.Errorf("Y.Max = %v, want 10", fig.Y.Max)
	}
}

func TestFibreOptic_GeometryValidation(t *testing.T) {
	f, err := NewFibreOptic("fib-1", geometry.NewPoint3(0, 0, 0), geometry.NewVec3(1, 0, 0), nil, 0, 0)
	if err != nil {
		t.Fatalf("NewFibreOptic: %v", err)
	}
	if f.AcceptanceAngle() != DefaultAcceptanceAngle {
		t.Errorf("AcceptanceAngle() = %v, want default %v", f.AcceptanceAngle(), DefaultAcceptanceAngle)
	}
	if f.Radius() != DefaultFibreRadius {
		t.Errorf("Radius() = %v, want default %v", f.Radius(), DefaultFibreRadius)
	}

	if err := f.SetAcceptanceAngle(91); err == nil {
		t.Error("expected error for acceptance angle above 90 degrees")
	}
	if err := f.SetRadius(-1); err == nil {
		t.Error("expected error for negative radius")
	}
}

func TestFibreOptic_TaskCarriesGeometry(t *testing.T) {
	engine := &fakeEngine{level: 1.0}
	f, err := NewFibreOptic("fib-1", geometry.NewPoint3(0, 0, 0), geometry.NewVec3(1, 0, 0), engine, 10, 0.002)
	if err != nil {
		t.Fatalf("NewFibreOptic: %v", err)
	}
	f.SetPixelSamples(1)

	if err := f.Observe(context.Background()); err != nil {
		t.Fatalf("Observe: %v", err)
	}
	if len(engine.tasks) != 1 {
		t.Fatalf("engine traced %d tasks, want 1", len(engine.tasks))
	}
	task := engine.tasks[0]
	if task.AcceptanceAngle != 10 || task.Radius != 0.002 {
		t.Errorf("task geometry = (%v, %v), want (10, 0.002)", task.AcceptanceAngle, task.Radius)
	}
}

func ExampleSightLine_ObservedSpectrum() {
	engine := render.NewUniformEngine(1.0, 0, 1)
	s, _ := NewSightLine("example", geometry.NewPoint3(0, 0, 0), geometry.NewVec3(1, 0, 0), engine)
	s.SetMinWavelength(400)
	s.SetMaxWavelength(500)
	s.SetSpectralBins(2)
	s.SetPixelSamples(3)

	_ = s.Observe(context.Background())
	spec, _ := s.ObservedSpectrum(PipelineIndex(0))
	fmt.Println(spec.Samples)
	// Output: [1 1]
}
