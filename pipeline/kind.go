// Package pipeline provides the result-accumulation pipelines attached to
// 0D spectroscopic observers. Four kinds exist: spectrally resolved or
// broadband, in radiance or power flavour. Behaviour differences between
// kinds are driven by explicit case tables on Kind rather than type checks.
package pipeline

import "fmt"

// Kind discriminates the four supported pipeline kinds.
type Kind int

const (
	// SpectralRadiance accumulates per-bin mean spectral radiance.
	SpectralRadiance Kind = iota
	// SpectralPower accumulates per-bin mean spectral power.
	SpectralPower
	// Radiance accumulates the mean wavelength-integrated radiance.
	Radiance
	// Power accumulates the mean wavelength-integrated power.
	Power
)

// String returns the kind name used in errors and configuration files.
func (k Kind) String() string {
	switch k {
	case SpectralRadiance:
		return "SpectralRadiance"
	case SpectralPower:
		return "SpectralPower"
	case Radiance:
		return "Radiance"
	case Power:
		return "Power"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Valid reports whether k is one of the four supported kinds.
func (k Kind) Valid() bool {
	switch k {
	case SpectralRadiance, SpectralPower, Radiance, Power:
		return true
	default:
		return false
	}
}

// Spectral reports whether the kind records per-bin samples rather than a
// single wavelength-integrated value.
func (k Kind) Spectral() bool {
	switch k {
	case SpectralRadiance, SpectralPower:
		return true
	default:
		return false
	}
}

// SupportsDisplayProgress reports whether the kind can log live progress
// while samples accumulate. Only the spectrally resolved kinds do.
func (k Kind) SupportsDisplayProgress() bool {
	return k.Spectral()
}

// AcceptsFilter reports whether the kind applies a spectral filter before
// integration. Only the broadband kinds do.
func (k Kind) AcceptsFilter() bool {
	switch k {
	case Radiance, Power:
		return true
	default:
		return false
	}
}

// UnitsLabel returns the y-axis unit label for plots of this kind. unit is
// the energy unit selected by the caller ("J" or "ph").
func (k Kind) UnitsLabel(unit string) string {
	switch k {
	case Radiance:
		return fmt.Sprintf("%s/s/m^2/str", unit)
	case Power:
		return fmt.Sprintf("%s/s", unit)
	case SpectralRadiance:
		return fmt.Sprintf("%s/s/m^2/str/nm", unit)
	case SpectralPower:
		return fmt.Sprintf("%s/s/nm", unit)
	default:
		return ""
	}
}

// ParseKind converts a configuration-file kind name into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "SpectralRadiance":
		return SpectralRadiance, nil
	case "SpectralPower":
		return SpectralPower, nil
	case "Radiance":
		return Radiance, nil
	case "Power":
		return Power, nil
	default:
		return 0, fmt.Errorf("unsupported pipeline kind %q: supported kinds are "+
			"SpectralRadiance, SpectralPower, Radiance and Power", s)
	}
}
