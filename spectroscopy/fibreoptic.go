package spectroscopy

import (
	"fmt"

	"github.com/torus-diagnostics/spectroscope/geometry"
	"github.com/torus-diagnostics/spectroscope/pipeline"
	"github.com/torus-diagnostics/spectroscope/render"
)

// Defaults applied when a fibre is constructed with zero-valued geometry.
const (
	DefaultAcceptanceAngle = 5.0   // degrees
	DefaultFibreRadius     = 0.001 // metres
)

// FibreOptic is a 0D spectroscopic observer modelling a physical fibre
// tip: rays are sampled over a disc of the given radius and a cone of
// directions bounded by the acceptance angle.
type FibreOptic struct {
	observer0D
}

// NewFibreOptic creates a fibre-optic observer at origin looking along
// direction. Zero acceptanceAngle or radius select the package defaults.
// With no pipelines given, a single non-accumulating spectral-radiance
// pipeline is attached.
func NewFibreOptic(name string, origin geometry.Point3, direction geometry.Vec3,
	engine render.Engine, acceptanceAngle, radius float64,
	pipelines ...*pipeline.Pipeline) (*FibreOptic, error) {

	f := &FibreOptic{observer0D: newObserver0D(name, engine, pipelines)}
	if acceptanceAngle == 0 {
		acceptanceAngle = DefaultAcceptanceAngle
	}
	if radius == 0 {
		radius = DefaultFibreRadius
	}
	if err := f.SetAcceptanceAngle(acceptanceAngle); err != nil {
		return nil, err
	}
	if err := f.SetRadius(radius); err != nil {
		return nil, err
	}
	f.SetOrigin(origin)
	if err := f.SetDirection(direction); err != nil {
		return nil, err
	}
	return f, nil
}

// AcceptanceAngle returns the half-angle in degrees of the solid-angle
// sampling cone.
func (f *FibreOptic) AcceptanceAngle() float64 {
	return f.acceptanceAngle
}

// SetAcceptanceAngle sets the sampling cone half-angle in degrees.
func (f *FibreOptic) SetAcceptanceAngle(degrees float64) error {
	if degrees <= 0 || degrees > 90 {
		return fmt.Errorf("acceptance angle must be in (0, 90] degrees, got %v", degrees)
	}
	f.acceptanceAngle = degrees
	return nil
}

// Radius returns the sampling disc radius at the fibre tip in metres.
func (f *FibreOptic) Radius() float64 {
	return f.radius
}

// SetRadius sets the sampling disc radius at the fibre tip in metres.
func (f *FibreOptic) SetRadius(metres float64) error {
	if metres <= 0 {
		return fmt.Errorf("fibre radius must be positive, got %v", metres)
	}
	f.radius = metres
	return nil
}
