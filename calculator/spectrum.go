package calculator

import "math"

const (
	// CoherenceDecrement is the empirical decay constant C of the coherence function.
	CoherenceDecrement = 12.0

	// 长度尺度 l = 20h (h < 30 m)，以上取 600 m
	lengthScaleSlope = 20.0
	lengthScaleCap   = 600.0
)

// Spectrum is the single-point Kaimal-type spectrum and the exponential
// coherence between two points.
type Spectrum struct {
	Profile       Profile
	Intensity     float64 // TI, 小数而非百分比
	HubSpeed      float64 // Uref for coherence
	Normalization Normalization
}

// NewSpectrum builds the spectrum a configuration describes.
func NewSpectrum(c Config) Spectrum {
	p := NewProfile(c)
	return Spectrum{
		Profile:       p,
		Intensity:     c.TurbulenceIntensity / 100,
		HubSpeed:      p.MeanSpeed(c.HubHeight),
		Normalization: c.Normalization,
	}
}

// LengthScale grows linearly with height up to a cap.
func LengthScale(h float64) float64 {
	switch l := lengthScaleSlope * h; {
	case l >= lengthScaleCap:
		return lengthScaleCap
	case l < 0:
		return 0
	default:
		return l
	}
}

// PSD is the one-sided spectral density at frequency f and height h, in (m/s)²/Hz.
// Its integral over f ∈ [0, ∞) is (TI·U(h))².
func (s Spectrum) PSD(f, h float64) float64 {
	u := s.Profile.MeanSpeed(h)
	if u <= 0 {
		return 0
	}
	l := LengthScale(h)
	sigma := s.Intensity * u
	return sigma * sigma * (l / u) / math.Pow(1+1.5*f*l/u, 5.0/3.0)
}

// Coherence between two points distance d apart. d = 0 gives 1.
func (s Spectrum) Coherence(f, d float64) float64 {
	if d == 0 {
		return 1
	}
	return math.Exp(-CoherenceDecrement * f * d / s.HubSpeed)
}

// NormFactor is the factor multiplying PSD on the diagonal of the spectral
// matrix at height h for M bins of width df.
func (s Spectrum) NormFactor(h, df float64, bins int) float64 {
	if s.Normalization != UnitArea {
		return df / 2
	}
	sum := 0.0
	for m := 1; m <= bins; m++ {
		sum += s.PSD(float64(m)*df, h)
	}
	if sum == 0 {
		return df / 2
	}
	sigma := s.Intensity * s.Profile.MeanSpeed(h)
	return sigma * sigma / (2 * sum)
}
