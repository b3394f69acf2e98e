// Command spectra runs a bench observation over an instrument described
// by a JSON config, using the uniform test engine, and writes the results
// as a PNG figure, an HTML report and rows in the spectra archive.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"github.com/torus-diagnostics/spectroscope/internal/config"
	"github.com/torus-diagnostics/spectroscope/internal/report"
	"github.com/torus-diagnostics/spectroscope/internal/spectradb"
	"github.com/torus-diagnostics/spectroscope/render"
	"github.com/torus-diagnostics/spectroscope/spectroscopy"
)

var (
	configPath = flag.String("config", "", "Instrument config file (JSON)")
	fibre      = flag.Bool("fibre", false, "Build a fibre-optic group instead of plain sight-lines")
	radiance   = flag.Float64("radiance", 1.0, "Spectral radiance level of the uniform test engine")
	noise      = flag.Float64("noise", 0.0, "Gaussian noise level of the uniform test engine")
	seed       = flag.Int64("seed", 1, "Random seed for the uniform test engine")
	pipelineID = flag.String("pipeline", "0", "Pipeline to plot, by index or name")
	unit       = flag.String("unit", "J", "Spectral power unit: J or ph")
	ymax       = flag.Float64("ymax", 0, "Upper Y-axis limit of the figure (0 = auto)")
	pngPath    = flag.String("png", "", "Write the spectra figure to this PNG file")
	htmlPath   = flag.String("html", "", "Write an HTML report to this file")
	dbPath     = flag.String("db", "", "Archive observed spectra in this sqlite database")
	notes      = flag.String("notes", "", "Free-form notes stored with the archive run")
)

// benchGroup is the slice of the group surface the bench run drives,
// common to both group variants.
type benchGroup interface {
	Name() string
	Names() []string
	Observe(ctx context.Context) error
	PlotSpectra(ref spectroscopy.PipelineRef, unit string, ymax float64) (*plot.Plot, error)
}

func buildGroup(cfg *config.InstrumentConfig, engine render.Engine) (benchGroup, []spectroscopy.Observer, error) {
	if *fibre {
		g, err := cfg.BuildFibreOpticGroup(engine)
		if err != nil {
			return nil, nil, err
		}
		members := make([]spectroscopy.Observer, g.Len())
		for i, sl := range g.SightLines() {
			members[i] = sl
		}
		return g, members, nil
	}

	g, err := cfg.BuildLineOfSightGroup(engine)
	if err != nil {
		return nil, nil, err
	}
	members := make([]spectroscopy.Observer, g.Len())
	for i, sl := range g.SightLines() {
		members[i] = sl
	}
	return g, members, nil
}

func parsePipelineRef(s string) spectroscopy.PipelineRef {
	if i, err := strconv.Atoi(s); err == nil {
		return spectroscopy.PipelineIndex(i)
	}
	return spectroscopy.PipelineName(s)
}

func archive(members []spectroscopy.Observer, ref spectroscopy.PipelineRef, instrument string) error {
	db, err := spectradb.Open(*dbPath)
	if err != nil {
		return fmt.Errorf("failed to open spectra archive: %v", err)
	}
	defer db.Close()

	runID, err := db.BeginRun(instrument, *notes)
	if err != nil {
		return err
	}

	for _, m := range members {
		p, err := m.GetPipeline(ref)
		if err != nil {
			return err
		}
		s, err := m.ObservedSpectrum(ref)
		if err != nil {
			return err
		}
		if err := db.RecordSpectrum(runID, m.Name(), p.Name(), p.Kind().String(), s); err != nil {
			return err
		}
	}

	log.Printf("[Bench] archived %d spectra under run %s", len(members), runID)
	return nil
}

func writeReport(members []spectroscopy.Observer, ref spectroscopy.PipelineRef, instrument string) error {
	series := make([]report.Series, 0, len(members))
	var unitLabel, title string
	for _, m := range members {
		p, err := m.GetPipeline(ref)
		if err != nil {
			return err
		}
		s, err := m.ObservedSpectrum(ref)
		if err != nil {
			return err
		}
		series = append(series, report.Series{Name: m.Name(), Spectrum: s})
		unitLabel = p.Kind().UnitsLabel(*unit)
		title = fmt.Sprintf("%s: %s", instrument, p.Name())
	}

	f, err := os.Create(*htmlPath)
	if err != nil {
		return fmt.Errorf("failed to create report file: %v", err)
	}
	defer f.Close()

	return report.RenderSpectra(f, title, unitLabel, series)
}

func main() {
	flag.Parse()

	if *configPath == "" {
		log.Fatal("-config is required")
	}

	cfg, err := config.LoadInstrumentConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load instrument config: %v", err)
	}

	engine := render.NewUniformEngine(*radiance, *noise, *seed)
	group, members, err := buildGroup(cfg, engine)
	if err != nil {
		log.Fatalf("failed to build observer group: %v", err)
	}

	log.Printf("[Bench] observing %d sight-lines of instrument %q", len(members), group.Name())
	if err := group.Observe(context.Background()); err != nil {
		log.Fatalf("observation failed: %v", err)
	}

	ref := parsePipelineRef(*pipelineID)

	if *pngPath != "" {
		fig, err := group.PlotSpectra(ref, *unit, *ymax)
		if err != nil {
			log.Fatalf("failed to plot spectra: %v", err)
		}
		if err := fig.Save(14*vg.Inch, 6*vg.Inch, *pngPath); err != nil {
			log.Fatalf("failed to save figure: %v", err)
		}
		log.Printf("[Bench] wrote figure to %s", *pngPath)
	}

	if *htmlPath != "" {
		if err := writeReport(members, ref, group.Name()); err != nil {
			log.Fatalf("failed to write HTML report: %v", err)
		}
		log.Printf("[Bench] wrote report to %s", *htmlPath)
	}

	if *dbPath != "" {
		if err := archive(members, ref, group.Name()); err != nil {
			log.Fatalf("failed to archive spectra: %v", err)
		}
	}
}
