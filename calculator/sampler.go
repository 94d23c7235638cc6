package calculator

import "math"

// Sample returns the velocity at position pos and time t (seconds).
//
// pos.Z is height above ground and pos.Y the lateral offset from the grid
// centre; pos.X is ignored (frozen turbulence). With autoShift the time is
// delayed by the advection time across half the grid, otherwise by shiftTime.
// Shifted times below zero clamp to zero. Time then folds into [0, T]: with
// mirror the record is played forwards and backwards so it has no seam at T,
// without mirror it wraps modulo T. Heights outside the grid clamp to its
// edge and lateral offsets reflect back into it.
//
// Sample never fails: an invalid field returns the zero vector.
func (w *WindField) Sample(pos Vec3, t float64, mirror, autoShift bool, shiftTime float64) Vec3 {
	if !w.Valid() {
		return Vec3{}
	}
	g := w.grid

	// 1. 网格局部坐标
	z := pos.Z - g.Bottom
	y := pos.Y

	// 2. 时间平移
	if autoShift {
		if u := w.meta.MeanWindSpeed; u > 0 {
			t -= g.Width / 2 / u
		}
	} else {
		t -= shiftTime
	}
	t = w.foldTime(t, mirror)

	// 3. 空间截断与折叠
	z = clamp(z, 0, g.Height)
	y = foldLateral(y, g.Width)

	// 4. 三线性插值
	zi, zf := cell(z, g.Dz, g.Nz)
	yi, yf := cell(y, g.Dy, g.Ny)
	ti, tf := cell(t, w.axis.Dt, w.axis.Nt)

	var v Vec3
	for a, arr := range w.vel {
		q := w.quant[a]
		node := func(dz, dy, dt int) float64 {
			return q.Decode(arr.Get(zi+dz, yi+dy, ti+dt))
		}
		lerpT := func(dz, dy int) float64 {
			return lerp(node(dz, dy, 0), node(dz, dy, 1), tf)
		}
		bottom := lerp(lerpT(0, 0), lerpT(0, 1), yf)
		top := lerp(lerpT(1, 0), lerpT(1, 1), yf)
		v.setAxis(a, lerp(bottom, top, zf))
	}
	return v
}

// foldTime clamps a shifted time at zero and folds it into [0, T].
func (w *WindField) foldTime(t float64, mirror bool) float64 {
	if !(t > 0) || math.IsInf(t, 0) {
		return 0
	}
	period := w.axis.Duration
	if mirror {
		t = math.Mod(math.Abs(t), 2*period)
		if t > period {
			t = 2*period - t
		}
		return t
	}
	return math.Mod(t, period)
}

// foldLateral maps a lateral offset from the centre to a distance from the
// left edge in [0, width], reflecting at both edges.
func foldLateral(y, width float64) float64 {
	if math.IsNaN(y) || math.IsInf(y, 0) || width <= 0 {
		return width / 2
	}
	period := 2 * width
	u := math.Mod(y+width/2, period)
	if u < 0 {
		u += period
	}
	if u > width {
		u = period - u
	}
	return u
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case math.IsNaN(v), v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}

// cell 返回所在单元的下标及单元内的插值权重
func cell(x, step float64, n int) (int, float64) {
	f := x / step
	i := int(math.Floor(f))
	if i > n-2 {
		i = n - 2
	}
	if i < 0 {
		i = 0
	}
	return i, clamp(f-float64(i), 0, 1)
}

func lerp(a, b, frac float64) float64 {
	return a + (b-a)*frac
}
