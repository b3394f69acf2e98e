// Package spectradb archives observed spectra in a sqlite database so
// bench runs can be compared after the fact.
package spectradb

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/torus-diagnostics/spectroscope/spectrum"
)

type SpectraDB struct {
	*sql.DB
}

//go:embed schema.sql
var schemaSQL string

// Open opens (creating if necessary) the spectra archive at path and
// applies the schema.
func Open(path string) (*SpectraDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, err
	}

	log.Println("initialized spectra database schema")

	return &SpectraDB{db}, nil
}

// Run groups the spectra captured by one observation pass.
type Run struct {
	RunID      string  `json:"run_id"`
	Instrument string  `json:"instrument"`
	Notes      string  `json:"notes"`
	CreatedAt  float64 `json:"created_at"`
}

// StoredSpectrum is one archived pipeline result.
type StoredSpectrum struct {
	ID            int64   `json:"id"`
	RunID         string  `json:"run_id"`
	Observer      string  `json:"observer"`
	Pipeline      string  `json:"pipeline"`
	Kind          string  `json:"kind"`
	MinWavelength float64 `json:"min_wavelength"`
	MaxWavelength float64 `json:"max_wavelength"`
	Bins          int     `json:"bins"`
	CreatedAt     float64 `json:"created_at"`

	samples []float64
}

// Spectrum rebuilds the archived samples as a spectrum value.
func (s *StoredSpectrum) Spectrum() (*spectrum.Spectrum, error) {
	out, err := spectrum.New(s.MinWavelength, s.MaxWavelength, s.Bins)
	if err != nil {
		return nil, err
	}
	copy(out.Samples, s.samples)
	return out, nil
}

// BeginRun creates a new run record and returns its generated ID.
func (sdb *SpectraDB) BeginRun(instrument, notes string) (string, error) {
	runID := uuid.New().String()

	_, err := sdb.Exec(`INSERT INTO runs (run_id, instrument, notes) VALUES (?, ?, ?)`,
		runID, instrument, notes)
	if err != nil {
		return "", fmt.Errorf("failed to begin run: %v", err)
	}

	return runID, nil
}

// RecordSpectrum archives one pipeline result under a run.
func (sdb *SpectraDB) RecordSpectrum(runID, observer, pipelineName, kind string, s *spectrum.Spectrum) error {
	samples, err := json.Marshal(s.Samples)
	if err != nil {
		return fmt.Errorf("failed to encode samples: %v", err)
	}

	_, err = sdb.Exec(`
		INSERT INTO spectra (run_id, observer, pipeline, kind, min_wavelength, max_wavelength, bins, samples)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, observer, pipelineName, kind, s.MinWavelength, s.MaxWavelength, s.Bins(), string(samples))
	if err != nil {
		return fmt.Errorf("failed to insert spectrum: %v", err)
	}

	return nil
}

// ListRuns returns all runs, most recent first.
func (sdb *SpectraDB) ListRuns() ([]Run, error) {
	rows, err := sdb.Query(`
		SELECT run_id, instrument, notes, created_at
		FROM runs
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %v", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.Instrument, &r.Notes, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %v", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LoadSpectra returns every spectrum archived under a run, in insertion
// order.
func (sdb *SpectraDB) LoadSpectra(runID string) ([]*StoredSpectrum, error) {
	rows, err := sdb.Query(`
		SELECT id, run_id, observer, pipeline, kind, min_wavelength, max_wavelength, bins, samples, created_at
		FROM spectra
		WHERE run_id = ?
		ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query spectra: %v", err)
	}
	defer rows.Close()

	var spectra []*StoredSpectrum
	for rows.Next() {
		var s StoredSpectrum
		var samplesJSON string
		err := rows.Scan(&s.ID, &s.RunID, &s.Observer, &s.Pipeline, &s.Kind,
			&s.MinWavelength, &s.MaxWavelength, &s.Bins, &samplesJSON, &s.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan spectrum row: %v", err)
		}
		if err := json.Unmarshal([]byte(samplesJSON), &s.samples); err != nil {
			return nil, fmt.Errorf("failed to decode samples: %v", err)
		}
		spectra = append(spectra, &s)
	}
	return spectra, rows.Err()
}
