package calculator

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"

	"windfield/buffer"
)

// extrema 各网格点时间序列的最小值、最大值
type extrema struct {
	min []float64
	max []float64
}

func (e extrema) reduce() (float64, float64) {
	return floats.Min(e.min), floats.Max(e.max)
}

// synthesizeSeries superposes the per-bin sinusoids of every grid point into its
// longitudinal time series. It writes one row per point and returns the range.
func synthesizeSeries(ctx context.Context, e *executor, state *SpectralState, profile Profile,
	g Grid, axis TimeAxis, method SynthesisMethod) (*buffer.Array[float64], float64, float64, error) {
	if state.Points != g.Points() {
		return nil, 0, 0, fmt.Errorf("spectral state has %d points, grid has %d", state.Points, g.Points())
	}
	vx, err := buffer.New[float64](g.Nz, g.Ny, axis.Nt)
	if err != nil {
		return nil, 0, 0, err
	}
	ext := extrema{
		min: make([]float64, g.Points()),
		max: make([]float64, g.Points()),
	}

	point := directPoint
	if method == MethodFFT {
		point = fftPoint
	}
	err = e.run(ctx, g.Points(), func(j int) error {
		_, h := g.Point(j)
		row := vx.RowAt(j)
		point(row, state, j, profile.MeanSpeed(h), axis)
		ext.min[j] = floats.Min(row)
		ext.max[j] = floats.Max(row)
		return nil
	})
	if err != nil {
		return nil, 0, 0, err
	}
	min, max := ext.reduce()
	if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
		return nil, 0, 0, fmt.Errorf("%w: time series range [%g, %g]", ErrNumericalInstability, min, max)
	}
	return vx, min, max, nil
}

// directPoint 逐项求和
func directPoint(row []float64, state *SpectralState, j int, mean float64, axis TimeAxis) {
	amp := state.Amplitude[j*state.Bins : (j+1)*state.Bins]
	phase := state.Phase[j*state.Bins : (j+1)*state.Bins]
	for n, t := range axis.T {
		v := mean
		for i := range amp {
			w := 2 * math.Pi * state.Frequency(i+1)
			v += 2 * amp[i] * math.Cos(w*t-phase[i])
		}
		row[n] = v
	}
}

// fftPoint evaluates the same sum as an inverse DFT of length Nt-1: the bins
// sit on f_m·t_n = m·n/(Nt-1), so the series is exactly one period long and
// its last sample repeats the first.
func fftPoint(row []float64, state *SpectralState, j int, mean float64, axis TimeAxis) {
	l := axis.Nt - 1
	coeff := make([]complex128, l)
	for i := 0; i < state.Bins; i++ {
		a, p := state.At(j, i+1)
		coeff[(i+1)%l] += cmplx.Rect(2*a, -p)
	}
	series := fft.IFFT(coeff)
	for n := 0; n < l; n++ {
		row[n] = mean + float64(l)*real(series[n])
	}
	row[l] = row[0]
}
