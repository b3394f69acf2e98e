package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/torus-diagnostics/spectroscope/spectrum"
)

func makeSpectrum(t *testing.T, min, max float64, bins int, level float64) *spectrum.Spectrum {
	t.Helper()
	s, err := spectrum.New(min, max, bins)
	if err != nil {
		t.Fatalf("spectrum.New: %v", err)
	}
	for i := range s.Samples {
		s.Samples[i] = level
	}
	return s
}

func TestRenderSpectra(t *testing.T) {
	series := []Series{
		{Name: "ch1", Spectrum: makeSpectrum(t, 400, 700, 10, 1)},
		{Name: "ch2", Spectrum: makeSpectrum(t, 400, 700, 10, 2)},
	}

	var buf bytes.Buffer
	if err := RenderSpectra(&buf, "poloidal-array: halpha", "unit/s/m^2/str/nm", series); err != nil {
		t.Fatalf("RenderSpectra: %v", err)
	}

	html := buf.String()
	for _, want := range []string{"ch1", "ch2", "poloidal-array: halpha", "wavelength (nm)"} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered HTML missing %q", want)
		}
	}
}

func TestRenderSpectra_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSpectra(&buf, "empty", "unit/s", nil); err == nil {
		t.Error("expected error for empty series")
	}
}

func TestRenderSpectra_MismatchedAxis(t *testing.T) {
	series := []Series{
		{Name: "ch1", Spectrum: makeSpectrum(t, 400, 700, 10, 1)},
		{Name: "ch2", Spectrum: makeSpectrum(t, 400, 700, 20, 1)},
	}

	var buf bytes.Buffer
	err := RenderSpectra(&buf, "mixed", "unit/s", series)
	if err == nil {
		t.Fatal("expected error for mismatched axes")
	}
	if !strings.Contains(err.Error(), "ch2") {
		t.Errorf("error %q should name the offending series", err)
	}
}
