package calculator

import "math"

const (
	quantMin   = math.MinInt16
	quantMax   = math.MaxInt16
	quantRange = quantMax - quantMin // 65535

	// MinRange guards a constant signal against a zero-width range, m/s.
	MinRange = 1e-6
)

// Quantizer maps a bounded float range affinely onto int16:
// stored = round(v·Slope + Intercept), v = (stored − Intercept)/Slope.
type Quantizer struct {
	Slope     float64
	Intercept float64
}

// NewQuantizer covers [min, max]. A range narrower than MinRange is widened
// upward from min.
func NewQuantizer(min, max float64) Quantizer {
	if max-min < MinRange {
		max = min + MinRange
	}
	slope := quantRange / (max - min)
	return Quantizer{
		Slope:     slope,
		Intercept: quantMin - slope*min,
	}
}

// Encode 编码并截断到 int16 范围
func (q Quantizer) Encode(v float64) int16 {
	s := math.Round(v*q.Slope + q.Intercept)
	switch {
	case math.IsNaN(s):
		return 0
	case s < quantMin:
		return quantMin
	case s > quantMax:
		return quantMax
	}
	return int16(s)
}

// Decode 解码
func (q Quantizer) Decode(s int16) float64 {
	return (float64(s) - q.Intercept) / q.Slope
}

// Step is the largest round-trip error for values inside Bounds.
func (q Quantizer) Step() float64 {
	return 1 / q.Slope
}

// Bounds recovers the [min, max] range the quantizer covers.
func (q Quantizer) Bounds() (float64, float64) {
	return q.Decode(quantMin), q.Decode(quantMax)
}

func (q Quantizer) encodeRow(dst []int16, src []float64) {
	for i, v := range src {
		dst[i] = q.Encode(v)
	}
}
