package calculator

import (
	"context"
	"fmt"
	"math"
	"math/rand"
)

// SpectralState holds the per-point amplitude and phase of every frequency bin.
// Entries are indexed j*Bins + (m-1) for point j and bin m = 1..Bins.
type SpectralState struct {
	Points    int
	Bins      int
	Duration  float64
	Amplitude []float64
	Phase     []float64
}

// At returns amplitude and phase of point j, bin m (1-based).
func (s *SpectralState) At(j, m int) (float64, float64) {
	i := j*s.Bins + m - 1
	return s.Amplitude[i], s.Phase[i]
}

// Frequency of bin m.
func (s *SpectralState) Frequency(m int) float64 {
	return float64(m) / s.Duration
}

// Correlate runs the cross-correlated spectral synthesis for a configuration.
func Correlate(ctx context.Context, c Config) (*SpectralState, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	n := c.GridPointsPerSide
	g := NewGrid(n, n, c.FieldDiameter, c.GridBottom())
	return correlate(ctx, newExecutor(c.Workers), NewSpectrum(c), g,
		c.SimulationDuration, c.FrequencyBins(), c.RandomSeed)
}

// randomPhases 按 (m 外层, k 内层) 顺序生成，与并行调度无关
func randomPhases(seed uint64, bins, points int) []float64 {
	rng := rand.New(rand.NewSource(int64(seed)))
	phases := make([]float64, bins*points)
	for i := range phases {
		phases[i] = 2 * math.Pi * rng.Float64()
	}
	return phases
}

// tri 压缩存储的下三角矩阵下标
func tri(j, k int) int {
	return j*(j+1)/2 + k
}

func correlate(ctx context.Context, e *executor, spectrum Spectrum, g Grid, duration float64, bins int, seed uint64) (*SpectralState, error) {
	points := g.Points()
	df := 1 / duration
	phases := randomPhases(seed, bins, points)

	heights := make([]float64, points)
	norms := make([]float64, points)
	for j := range heights {
		_, heights[j] = g.Point(j)
		norms[j] = spectrum.NormFactor(heights[j], df, bins)
	}
	dist := make([]float64, points*(points+1)/2)
	for j := 0; j < points; j++ {
		for k := 0; k <= j; k++ {
			dist[tri(j, k)] = g.Distance(j, k)
		}
	}

	state := &SpectralState{
		Points:    points,
		Bins:      bins,
		Duration:  duration,
		Amplitude: make([]float64, points*bins),
		Phase:     make([]float64, points*bins),
	}

	err := e.run(ctx, bins, func(i int) error {
		m := i + 1
		f := float64(m) * df
		phi := phases[i*points : (i+1)*points]

		// 每个频率独占的临时空间
		sjj := make([]float64, points)
		h := make([]float64, points*(points+1)/2)
		for j := range sjj {
			sjj[j] = spectrum.PSD(f, heights[j]) * norms[j]
		}

		for k := 0; k < points; k++ {
			sum := 0.0
			for l := 0; l < k; l++ {
				sum += h[tri(k, l)] * h[tri(k, l)]
			}
			d := sjj[k] - sum
			if !(d > 0) {
				return fmt.Errorf("%w: bin %d (f=%.4g Hz), point %d, pivot %g",
					ErrNumericalInstability, m, f, k, d)
			}
			hkk := math.Sqrt(d)
			h[tri(k, k)] = hkk
			for j := k + 1; j < points; j++ {
				sjk := spectrum.Coherence(f, dist[tri(j, k)]) * math.Sqrt(sjj[j]*sjj[k])
				for l := 0; l < k; l++ {
					sjk -= h[tri(j, l)] * h[tri(k, l)]
				}
				h[tri(j, k)] = sjk / hkk
			}
		}

		cos := make([]float64, points)
		sin := make([]float64, points)
		for k, p := range phi {
			sin[k], cos[k] = math.Sincos(p)
		}
		for j := 0; j < points; j++ {
			re, im := 0.0, 0.0
			row := h[tri(j, 0) : tri(j, j)+1]
			for k, hjk := range row {
				re += hjk * cos[k]
				im += hjk * sin[k]
			}
			state.Amplitude[j*bins+i] = math.Hypot(re, im)
			state.Phase[j*bins+i] = math.Atan2(im, re)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}
