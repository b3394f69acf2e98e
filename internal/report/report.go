// Package report renders observed spectra as standalone HTML charts for
// quick inspection in a browser, without the plotting toolchain.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/torus-diagnostics/spectroscope/spectrum"
)

// Series pairs an observed spectrum with the label it is plotted under.
type Series struct {
	Name     string
	Spectrum *spectrum.Spectrum
}

// RenderSpectra writes an HTML line chart overlaying every series against
// a shared wavelength axis. All series must share the same spectral range
// and bin count.
func RenderSpectra(w io.Writer, title, unitLabel string, series []Series) error {
	if len(series) == 0 {
		return fmt.Errorf("no series to render")
	}

	ref := series[0].Spectrum
	for _, s := range series[1:] {
		if s.Spectrum.MinWavelength != ref.MinWavelength ||
			s.Spectrum.MaxWavelength != ref.MaxWavelength ||
			s.Spectrum.Bins() != ref.Bins() {
			return fmt.Errorf("series %q does not share the spectral axis of %q", s.Name, series[0].Name)
		}
	}

	wavelengths := ref.Wavelengths()
	xAxis := make([]string, len(wavelengths))
	for i, wl := range wavelengths {
		xAxis[i] = strconv.FormatFloat(wl, 'g', 6, 64)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1100px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("%d sight-lines, %d bins", len(series), ref.Bins())}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "wavelength (nm)", NameLocation: "middle", NameGap: 30}),
		charts.WithYAxisOpts(opts.YAxis{Name: unitLabel, NameLocation: "middle", NameGap: 50}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "30px"}),
	)

	line.SetXAxis(xAxis)
	for _, s := range series {
		data := make([]opts.LineData, len(s.Spectrum.Samples))
		for i, v := range s.Spectrum.Samples {
			data[i] = opts.LineData{Value: v}
		}
		line.AddSeries(s.Name, data)
	}

	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %v", err)
	}
	return nil
}
