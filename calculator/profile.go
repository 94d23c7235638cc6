package calculator

import "math"

// Profile gives the mean wind speed as a function of height.
type Profile struct {
	Kind            ProfileKind
	ReferenceSpeed  float64 // Uref
	ReferenceHeight float64 // href
	ShearExponent   float64 // α, 幂律
	RoughnessLength float64 // z0, 对数律
}

// NewProfile builds the profile a configuration describes.
func NewProfile(c Config) Profile {
	return Profile{
		Kind:            c.Profile,
		ReferenceSpeed:  c.MeanWindSpeed,
		ReferenceHeight: c.ReferenceHeight(),
		ShearExponent:   c.ShearExponent,
		RoughnessLength: c.RoughnessLength,
	}
}

// MeanSpeed returns U(h). Heights at or below ground give 0 for the shear laws.
func (p Profile) MeanSpeed(h float64) float64 {
	switch p.Kind {
	case PowerLaw:
		if h <= 0 {
			return 0
		}
		return p.ReferenceSpeed * math.Pow(h/p.ReferenceHeight, p.ShearExponent)
	case Logarithmic:
		if h <= p.RoughnessLength {
			return 0
		}
		return p.ReferenceSpeed * math.Log(h/p.RoughnessLength) / math.Log(p.ReferenceHeight/p.RoughnessLength)
	default:
		return p.ReferenceSpeed
	}
}
