package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func assertVecInDelta(t *testing.T, want, got Vec3, delta float64, msgAndArgs ...interface{}) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, delta, msgAndArgs...)
	assert.InDelta(t, want.Y, got.Y, delta, msgAndArgs...)
	assert.InDelta(t, want.Z, got.Z, delta, msgAndArgs...)
}

func TestSampleAtNodes(t *testing.T) {
	w := newField(t, smallConfig())
	g, axis := w.Grid(), w.TimeAxis()
	for z := 0; z < g.Nz; z++ {
		for y := 0; y < g.Ny; y++ {
			for _, n := range []int{0, 1, 17, axis.Nt - 2} {
				pos := Vec3{X: 123, Y: g.Y[y], Z: g.Z[z]}
				got := w.Sample(pos, axis.T[n], false, false, 0)
				assertVecInDelta(t, w.Velocity(z, y, n), got, 1e-9, "node (%d, %d, %d)", z, y, n)
			}
		}
	}
}

func TestSampleInterpolates(t *testing.T) {
	w := newField(t, smallConfig())
	g, axis := w.Grid(), w.TimeAxis()

	tm := (axis.T[4] + axis.T[5]) / 2
	got := w.Sample(Vec3{Y: g.Y[1], Z: g.Z[1]}, tm, false, false, 0)
	want := (w.Velocity(1, 1, 4).X + w.Velocity(1, 1, 5).X) / 2
	assert.InDelta(t, want, got.X, 1e-9)

	ym := (g.Y[0] + g.Y[1]) / 2
	zm := (g.Z[1] + g.Z[2]) / 2
	got = w.Sample(Vec3{Y: ym, Z: zm}, axis.T[4], false, false, 0)
	want = (w.Velocity(1, 0, 4).X + w.Velocity(1, 1, 4).X +
		w.Velocity(2, 0, 4).X + w.Velocity(2, 1, 4).X) / 4
	assert.InDelta(t, want, got.X, 1e-9)
}

func TestSampleTimeWrapAndMirror(t *testing.T) {
	w := newField(t, smallConfig())
	period := w.TimeAxis().Duration
	pos := Vec3{Y: 1.3, Z: w.Grid().Bottom + 7.1}

	for _, tm := range []float64{0.37, 2.5, 9.91} {
		// 无镜像：周期 T
		assertVecInDelta(t, w.Sample(pos, tm, false, false, 0), w.Sample(pos, tm+period, false, false, 0), 1e-9)
		assertVecInDelta(t, w.Sample(pos, tm, false, false, 0), w.Sample(pos, tm+3*period, false, false, 0), 1e-9)
		// 镜像：在 T 处反射，周期 2T
		assertVecInDelta(t, w.Sample(pos, period-tm, true, false, 0), w.Sample(pos, period+tm, true, false, 0), 1e-9)
		assertVecInDelta(t, w.Sample(pos, tm, true, false, 0), w.Sample(pos, tm+2*period, true, false, 0), 1e-9)
	}
	// 镜像在 T 两侧连续
	before := w.Sample(pos, period-1e-9, true, false, 0)
	after := w.Sample(pos, period+1e-9, true, false, 0)
	assertVecInDelta(t, before, after, 1e-6)
}

func TestSampleNegativeTimeClamps(t *testing.T) {
	w := newField(t, smallConfig())
	pos := Vec3{Y: -2, Z: w.Grid().Bottom + 3}
	origin := w.Sample(pos, 0, false, false, 0)
	assertVecInDelta(t, origin, w.Sample(pos, -4, false, false, 0), 0)
	assertVecInDelta(t, origin, w.Sample(pos, 1, true, false, 5), 0)
	assertVecInDelta(t, origin, w.Sample(pos, math.Inf(-1), false, false, 0), 0)
}

func TestSampleShift(t *testing.T) {
	w := newField(t, smallConfig())
	pos := Vec3{Y: 0.5, Z: w.Grid().Bottom + 4}

	assertVecInDelta(t, w.Sample(pos, 3.5, false, false, 0), w.Sample(pos, 5, false, false, 1.5), 1e-12)

	delay := w.Grid().Width / 2 / w.Metadata().MeanWindSpeed
	assertVecInDelta(t, w.Sample(pos, 7-delay, false, false, 0), w.Sample(pos, 7, false, true, 0), 1e-12)
	// autoShift 时忽略 shiftTime
	assertVecInDelta(t, w.Sample(pos, 7, false, true, 0), w.Sample(pos, 7, false, true, 4), 0)
}

func TestSampleSpatialFolding(t *testing.T) {
	w := newField(t, smallConfig())
	g := w.Grid()
	tm := 2.2

	// 高度超出网格时取边界
	bottom := w.Sample(Vec3{Y: 1, Z: g.Bottom}, tm, false, false, 0)
	assertVecInDelta(t, bottom, w.Sample(Vec3{Y: 1, Z: g.Bottom - 30}, tm, false, false, 0), 0)
	top := w.Sample(Vec3{Y: 1, Z: g.Bottom + g.Height}, tm, false, false, 0)
	assertVecInDelta(t, top, w.Sample(Vec3{Y: 1, Z: g.Bottom + g.Height + 30}, tm, false, false, 0), 0)

	// 横向在边界处反射
	z := g.Bottom + 6
	edge := g.Width / 2
	assertVecInDelta(t,
		w.Sample(Vec3{Y: edge - 3, Z: z}, tm, false, false, 0),
		w.Sample(Vec3{Y: edge + 3, Z: z}, tm, false, false, 0), 1e-9)
	assertVecInDelta(t,
		w.Sample(Vec3{Y: -edge + 2, Z: z}, tm, false, false, 0),
		w.Sample(Vec3{Y: -edge - 2, Z: z}, tm, false, false, 0), 1e-9)
	assertVecInDelta(t,
		w.Sample(Vec3{Y: 1.5, Z: z}, tm, false, false, 0),
		w.Sample(Vec3{Y: 1.5 + 2*g.Width, Z: z}, tm, false, false, 0), 1e-9)
}

func TestSampleInvalidField(t *testing.T) {
	w, err := NewWindField(smallConfig())
	assert.NoError(t, err)
	assert.Equal(t, Vec3{}, w.Sample(Vec3{Z: 50}, 1, true, true, 0))
}

func TestFoldLateral(t *testing.T) {
	assert.InDelta(t, 10.0, foldLateral(0, 20), 1e-12)
	assert.InDelta(t, 0.0, foldLateral(-10, 20), 1e-12)
	assert.InDelta(t, 20.0, foldLateral(10, 20), 1e-12)
	assert.InDelta(t, 17.0, foldLateral(13, 20), 1e-12)
	assert.InDelta(t, 3.0, foldLateral(-13, 20), 1e-12)
	assert.InDelta(t, 10.0, foldLateral(math.NaN(), 20), 1e-12)
}

func TestCell(t *testing.T) {
	i, f := cell(7.5, 5, 3)
	assert.Equal(t, 1, i)
	assert.InDelta(t, 0.5, f, 1e-12)

	i, f = cell(10, 5, 3)
	assert.Equal(t, 1, i)
	assert.InDelta(t, 1.0, f, 1e-12)

	i, f = cell(0, 5, 3)
	assert.Equal(t, 0, i)
	assert.Equal(t, 0.0, f)
}
