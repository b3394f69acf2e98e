package spectroscopy

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/torus-diagnostics/spectroscope/spectrum"
)

// PlotSpectrum draws the spectrum accumulated by one pipeline onto p.
// unit selects the energy unit: "J" plots the samples as recorded, "ph"
// converts them to photon rates; anything else fails. Spectra with more
// than one bin are drawn as a line; single-bin spectra are drawn as a
// marker point, with broadband pipelines plotting their integrated total.
// When extras is true the plot title, axis labels and y-limit are set;
// groups pass false to overlay several members on one shared axis.
func (o *observer0D) PlotSpectrum(p *plot.Plot, ref PipelineRef, unit string, ymax float64, extras bool) error {
	if err := o.plotSpectrumStyled(p, ref, unit, nil); err != nil {
		return err
	}

	if extras {
		pipe, err := o.GetPipeline(ref)
		if err != nil {
			return err
		}
		if ymax > 0 {
			p.Y.Max = ymax
		}
		p.Title.Text = fmt.Sprintf("%s: %s", o.Name(), pipe.Name())
		p.X.Label.Text = "wavelength (nm)"
		p.Y.Label.Text = fmt.Sprintf("radiance (%s)", pipe.Kind().UnitsLabel(unit))
	}
	return nil
}

// plotSpectrumStyled draws the observer's spectrum with an optional line
// colour, adding a legend entry under the observer's name.
func (o *observer0D) plotSpectrumStyled(p *plot.Plot, ref PipelineRef, unit string, c color.Color) error {
	observed, err := o.ObservedSpectrum(ref)
	if err != nil {
		return err
	}

	var s *spectrum.Spectrum
	switch unit {
	case "J":
		s = observed
	case "ph":
		s = observed.Blank()
		copy(s.Samples, observed.ToPhotons())
	default:
		return fmt.Errorf(`plot unit must be "J" or "ph", got %q`, unit)
	}

	wavelengths := s.Wavelengths()

	if s.Bins() > 1 {
		pts := make(plotter.XYs, s.Bins())
		for i := range pts {
			pts[i] = plotter.XY{X: wavelengths[i], Y: s.Samples[i]}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		if c != nil {
			line.Color = c
		}
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(o.Name(), line)
		return nil
	}

	// Single bin: draw a marker instead of a line. Broadband pipelines
	// plot the integrated total rather than the raw density sample.
	pipe, err := o.GetPipeline(ref)
	if err != nil {
		return err
	}
	y := s.Samples[0]
	if !pipe.Kind().Spectral() {
		y = s.Total()
	}

	scatter, err := plotter.NewScatter(plotter.XYs{{X: wavelengths[0], Y: y}})
	if err != nil {
		return err
	}
	if c != nil {
		scatter.Color = c
	}
	p.Add(scatter)
	p.Legend.Add(o.Name(), scatter)
	return nil
}

// plotPalette creates a palette of distinct colours for overlaying several
// sight-lines on one figure.
func plotPalette(n int) []color.Color {
	colors := make([]color.Color, n)
	for i := range colors {
		hue := float64(i) / float64(n)
		colors[i] = hsvToRGB(hue, 0.8, 0.9)
	}
	return colors
}

// hsvToRGB converts HSV (all in [0,1]) to an opaque RGBA colour.
func hsvToRGB(h, s, v float64) color.RGBA {
	i := int(h * 6)
	f := h*6 - float64(i)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	var r, g, b float64
	switch i % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	case 5:
		r, g, b = v, p, q
	}
	return color.RGBA{R: uint8(r * 255), G: uint8(g * 255), B: uint8(b * 255), A: 255}
}
