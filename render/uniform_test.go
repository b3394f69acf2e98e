package render

import (
	"context"
	"testing"

	"gonum.org/v1/gonum/stat"

	"github.com/torus-diagnostics/spectroscope/geometry"
)

func testTask(settings Settings) Task {
	return Task{
		Origin:    geometry.NewPoint3(0, 0, 0),
		Direction: geometry.NewVec3(1, 0, 0),
		Transform: geometry.Identity(),
		Settings:  settings,
	}
}

func TestUniformEngine_SampleCountAndLevel(t *testing.T) {
	settings := DefaultSettings()
	settings.PixelSamples = 10
	settings.SpectralBins = 4

	engine := NewUniformEngine(2.5, 0, 1)
	samples, err := engine.Trace(context.Background(), testTask(settings))
	if err != nil {
		t.Fatalf("Trace: %v", err)
	}

	if len(samples) != 10 {
		t.Fatalf("len(samples) = %d, want 10", len(samples))
	}
	for i, s := range samples {
		if s.Bins() != 4 {
			t.Errorf("samples[%d].Bins() = %d, want 4", i, s.Bins())
		}
		for j, v := range s.Samples {
			if v != 2.5 {
				t.Errorf("samples[%d].Samples[%d] = %v, want 2.5", i, j, v)
			}
		}
	}
}

func TestUniformEngine_NoiseIsSeededAndCentred(t *testing.T) {
	settings := DefaultSettings()
	settings.PixelSamples = 2000
	settings.SpectralBins = 1

	engine := NewUniformEngine(1.0, 0.05, 42)
	samples, err := engine.Trace(context.Background(), testTask(settings))
	if err != nil {
		t.Fatalf("Trace: %v", err)
	}

	levels := make([]float64, len(samples))
	for i, s := range samples {
		levels[i] = s.Samples[0]
	}
	mean := stat.Mean(levels, nil)
	if mean < 0.99 || mean > 1.01 {
		t.Errorf("mean sample level = %v, want ~1.0", mean)
	}

	// Same seed reproduces the same sequence
	again, err := NewUniformEngine(1.0, 0.05, 42).Trace(context.Background(), testTask(settings))
	if err != nil {
		t.Fatalf("Trace: %v", err)
	}
	for i := range samples {
		if samples[i].Samples[0] != again[i].Samples[0] {
			t.Fatalf("sample %d differs between identically seeded engines", i)
		}
	}
}

func TestUniformEngine_InvalidSettings(t *testing.T) {
	settings := DefaultSettings()
	settings.SpectralBins = 0

	if _, err := NewUniformEngine(1, 0, 1).Trace(context.Background(), testTask(settings)); err == nil {
		t.Error("expected error for invalid settings")
	}
}

func TestUniformEngine_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewUniformEngine(1, 0, 1).Trace(ctx, testTask(DefaultSettings())); err == nil {
		t.Error("expected error for cancelled context")
	}
}
