package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

func TestProfileMeanSpeed(t *testing.T) {
	p := Profile{Kind: Uniform, ReferenceSpeed: 10, ReferenceHeight: 50}
	assert.Equal(t, 10.0, p.MeanSpeed(5))
	assert.Equal(t, 10.0, p.MeanSpeed(500))

	p = Profile{Kind: PowerLaw, ReferenceSpeed: 10, ReferenceHeight: 50, ShearExponent: 0.2}
	assert.InDelta(t, 10.0, p.MeanSpeed(50), 1e-12)
	assert.InDelta(t, 10*math.Pow(2, 0.2), p.MeanSpeed(100), 1e-12)
	assert.Equal(t, 0.0, p.MeanSpeed(0))
	assert.Less(t, p.MeanSpeed(40), p.MeanSpeed(60))

	p = Profile{Kind: Logarithmic, ReferenceSpeed: 10, ReferenceHeight: 50, RoughnessLength: 0.01}
	assert.InDelta(t, 10.0, p.MeanSpeed(50), 1e-12)
	assert.InDelta(t, 10*math.Log(1e4)/math.Log(5e3), p.MeanSpeed(100), 1e-12)
	assert.Equal(t, 0.0, p.MeanSpeed(0.01))
}

func TestNewProfileMeasurementHeight(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MeasurementHeight = 10
	p := NewProfile(cfg)
	assert.InDelta(t, 10.0, p.MeanSpeed(10), 1e-12)
	assert.Greater(t, p.MeanSpeed(cfg.HubHeight), cfg.MeanWindSpeed)
}

func TestLengthScale(t *testing.T) {
	assert.Equal(t, 200.0, LengthScale(10))
	assert.Equal(t, 600.0, LengthScale(30))
	assert.Equal(t, 600.0, LengthScale(90))
	assert.Equal(t, 0.0, LengthScale(-1))
}

func TestCoherence(t *testing.T) {
	s := NewSpectrum(DefaultConfig())
	assert.Equal(t, 1.0, s.Coherence(0.5, 0))
	assert.Equal(t, 1.0, s.Coherence(0, 10))
	assert.InDelta(t, math.Exp(-12*0.5*5/s.HubSpeed), s.Coherence(0.5, 5), 1e-15)
	assert.Less(t, s.Coherence(1, 5), s.Coherence(0.5, 5))
	assert.Less(t, s.Coherence(0.5, 10), s.Coherence(0.5, 5))
}

func TestPSDIntegratesToVariance(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Profile = Uniform
	s := NewSpectrum(cfg)
	sigma := s.Intensity * cfg.MeanWindSpeed

	// 积分变量替换 f = x/(1-x) 覆盖 [0, ∞)
	const n = 200001
	x := make([]float64, n)
	y := make([]float64, n)
	floats.Span(x, 0, 1-1e-9)
	for i, xi := range x {
		f := xi / (1 - xi)
		y[i] = s.PSD(f, cfg.HubHeight) / ((1 - xi) * (1 - xi))
	}
	total := integrate.Trapezoidal(x, y)
	assert.InEpsilon(t, sigma*sigma, total, 0.01)
}

func TestPSDDecreasing(t *testing.T) {
	s := NewSpectrum(DefaultConfig())
	prev := s.PSD(0, 50)
	for f := 0.01; f < 10; f *= 1.5 {
		cur := s.PSD(f, 50)
		assert.Less(t, cur, prev)
		prev = cur
	}
	assert.Equal(t, 0.0, s.PSD(1, 0))
}

func TestNormFactor(t *testing.T) {
	cfg := DefaultConfig()
	s := NewSpectrum(cfg)
	df := 1 / cfg.SimulationDuration
	bins := cfg.FrequencyBins()
	assert.Equal(t, df/2, s.NormFactor(50, df, bins))

	s.Normalization = UnitArea
	k := s.NormFactor(50, df, bins)
	sum := 0.0
	for m := 1; m <= bins; m++ {
		sum += 2 * s.PSD(float64(m)*df, 50) * k
	}
	sigma := s.Intensity * s.Profile.MeanSpeed(50)
	assert.InDelta(t, sigma*sigma, sum, 1e-9)
}
