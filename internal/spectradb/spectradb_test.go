package spectradb

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/torus-diagnostics/spectroscope/spectrum"
)

func openTestDB(t *testing.T) *SpectraDB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "spectra.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBeginRunAndList(t *testing.T) {
	db := openTestDB(t)

	id1, err := db.BeginRun("poloidal-array", "baseline")
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	id2, err := db.BeginRun("poloidal-array", "")
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if id1 == id2 {
		t.Fatal("run IDs should be unique")
	}

	runs, err := db.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len(runs) = %d, want 2", len(runs))
	}
	for _, r := range runs {
		if r.Instrument != "poloidal-array" {
			t.Errorf("Instrument = %q, want poloidal-array", r.Instrument)
		}
	}
}

func TestRecordAndLoadSpectra(t *testing.T) {
	db := openTestDB(t)

	runID, err := db.BeginRun("fibre-bundle", "")
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	s, err := spectrum.New(400, 700, 3)
	if err != nil {
		t.Fatalf("spectrum.New: %v", err)
	}
	s.Samples[0], s.Samples[1], s.Samples[2] = 1.5, 2.5, 3.5

	if err := db.RecordSpectrum(runID, "ch1", "halpha", "SpectralRadiance", s); err != nil {
		t.Fatalf("RecordSpectrum: %v", err)
	}

	spectra, err := db.LoadSpectra(runID)
	if err != nil {
		t.Fatalf("LoadSpectra: %v", err)
	}
	if len(spectra) != 1 {
		t.Fatalf("len(spectra) = %d, want 1", len(spectra))
	}

	got := spectra[0]
	if got.Observer != "ch1" || got.Pipeline != "halpha" || got.Kind != "SpectralRadiance" {
		t.Errorf("metadata = %q/%q/%q", got.Observer, got.Pipeline, got.Kind)
	}

	restored, err := got.Spectrum()
	if err != nil {
		t.Fatalf("Spectrum: %v", err)
	}
	if restored.MinWavelength != 400 || restored.MaxWavelength != 700 || restored.Bins() != 3 {
		t.Errorf("range = [%v, %v] with %d bins", restored.MinWavelength, restored.MaxWavelength, restored.Bins())
	}
	for i, want := range s.Samples {
		if math.Abs(restored.Samples[i]-want) > 1e-12 {
			t.Errorf("Samples[%d] = %v, want %v", i, restored.Samples[i], want)
		}
	}
}

func TestLoadSpectraUnknownRun(t *testing.T) {
	db := openTestDB(t)

	spectra, err := db.LoadSpectra("no-such-run")
	if err != nil {
		t.Fatalf("LoadSpectra: %v", err)
	}
	if len(spectra) != 0 {
		t.Errorf("len(spectra) = %d, want 0", len(spectra))
	}
}
