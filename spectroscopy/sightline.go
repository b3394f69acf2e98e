package spectroscopy

import (
	"github.com/torus-diagnostics/spectroscope/geometry"
	"github.com/torus-diagnostics/spectroscope/pipeline"
	"github.com/torus-diagnostics/spectroscope/render"
)

// SightLine is a 0D spectroscopic observer sampling a single ray
// direction: zero acceptance angle, zero tip area.
type SightLine struct {
	observer0D
}

// NewSightLine creates a sight-line at origin looking along direction.
// With no pipelines given, a single non-accumulating spectral-radiance
// pipeline is attached. The engine may be nil until observation time.
func NewSightLine(name string, origin geometry.Point3, direction geometry.Vec3,
	engine render.Engine, pipelines ...*pipeline.Pipeline) (*SightLine, error) {

	s := &SightLine{observer0D: newObserver0D(name, engine, pipelines)}
	s.SetOrigin(origin)
	if err := s.SetDirection(direction); err != nil {
		return nil, err
	}
	return s, nil
}
