package calculator

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Grid is the uniform Ny×Nz lattice of the field cross-section.
// y is lateral and centred on 0, z is height above ground.
type Grid struct {
	Ny, Nz int
	Dy, Dz float64
	Width  float64   // 横向宽度 (Ny-1)·Dy
	Height float64   // 竖向高度 (Nz-1)·Dz
	Bottom float64   // 第 0 行的高度
	Y      []float64 // 横向坐标
	Z      []float64 // 高度坐标
}

// NewGrid lays out ny×nz points over a square of edge diameter whose lowest row
// sits at bottom.
func NewGrid(ny, nz int, diameter, bottom float64) Grid {
	return newGridSpacing(ny, nz, diameter/float64(ny-1), diameter/float64(nz-1), bottom)
}

// newGridSpacing builds a grid from point spacings, as file headers store it.
func newGridSpacing(ny, nz int, dy, dz, bottom float64) Grid {
	g := Grid{
		Ny:     ny,
		Nz:     nz,
		Dy:     dy,
		Dz:     dz,
		Width:  dy * float64(ny-1),
		Height: dz * float64(nz-1),
		Bottom: bottom,
		Y:      make([]float64, ny),
		Z:      make([]float64, nz),
	}
	floats.Span(g.Y, -g.Width/2, g.Width/2)
	floats.Span(g.Z, bottom, bottom+g.Height)
	return g
}

// Points is N = Ny·Nz.
func (g Grid) Points() int {
	return g.Ny * g.Nz
}

// Point returns the coordinates of flattened index p = z*Ny + y.
func (g Grid) Point(p int) (y, z float64) {
	return g.Y[p%g.Ny], g.Z[p/g.Ny]
}

// Distance between two flattened points.
func (g Grid) Distance(p, q int) float64 {
	y1, z1 := g.Point(p)
	y2, z2 := g.Point(q)
	return math.Hypot(y1-y2, z1-z2)
}

// nearest 返回坐标轴上最接近 v 的下标
func nearest(axis []float64, v float64) int {
	best := 0
	for i, a := range axis {
		if math.Abs(a-v) < math.Abs(axis[best]-v) {
			best = i
		}
	}
	return best
}

// TimeAxis is Nt instants uniformly spaced over [0, Duration].
type TimeAxis struct {
	Nt       int
	Dt       float64
	Duration float64
	T        []float64
}

// NewTimeAxis spans nt samples over [0, duration].
func NewTimeAxis(nt int, duration float64) TimeAxis {
	a := TimeAxis{
		Nt:       nt,
		Dt:       duration / float64(nt-1),
		Duration: duration,
		T:        make([]float64, nt),
	}
	floats.Span(a.T, 0, duration)
	return a
}
