/**
 *
 * 利用一维连续数组存放 (z, y, t) 三维数据，偏移量为 (z*Ny + y)*Nt + t。
 * 风场合成时每个网格点独占一行（长度 Nt），并行写入互不重叠；
 * 查询时沿时间方向连续读取，局部性更好。
 *
 */

package buffer

import "fmt"

// Number is the element type an Array can hold.
type Number interface {
	~int16 | ~float32 | ~float64
}

// Array is an owning, bounds-checked z/y/t volume backed by one allocation.
type Array[T Number] struct {
	nz, ny, nt int
	data       []T
}

// New allocates a zeroed nz×ny×nt array.
func New[T Number](nz, ny, nt int) (*Array[T], error) {
	if nz <= 0 || ny <= 0 || nt <= 0 {
		return nil, fmt.Errorf("buffer: invalid dimensions %dx%dx%d", nz, ny, nt)
	}
	return &Array[T]{
		nz:   nz,
		ny:   ny,
		nt:   nt,
		data: make([]T, nz*ny*nt),
	}, nil
}

// Dims returns (Nz, Ny, Nt).
func (a *Array[T]) Dims() (int, int, int) {
	return a.nz, a.ny, a.nt
}

// Len 元素总数
func (a *Array[T]) Len() int {
	return len(a.data)
}

func (a *Array[T]) offset(z, y, t int) int {
	if z < 0 || z >= a.nz || y < 0 || y >= a.ny || t < 0 || t >= a.nt {
		panic(fmt.Sprintf("buffer: index (%d,%d,%d) out of range %dx%dx%d", z, y, t, a.nz, a.ny, a.nt))
	}
	return (z*a.ny+y)*a.nt + t
}

// Get 获取对应下标的数值
func (a *Array[T]) Get(z, y, t int) T {
	return a.data[a.offset(z, y, t)]
}

// Set 设定对应下标的数值
func (a *Array[T]) Set(z, y, t int, v T) {
	a.data[a.offset(z, y, t)] = v
}

// Row returns the time series of grid point (z, y). The slice aliases the array.
func (a *Array[T]) Row(z, y int) []T {
	start := a.offset(z, y, 0)
	return a.data[start : start+a.nt : start+a.nt]
}

// RowAt is Row addressed by the flattened point index p = z*Ny + y.
func (a *Array[T]) RowAt(p int) []T {
	return a.Row(p/a.ny, p%a.ny)
}

// Traverse 正向遍历所有网格点，z 在外层，y 在内层
func (a *Array[T]) Traverse(f func(z, y int, row []T)) {
	for z := 0; z < a.nz; z++ {
		for y := 0; y < a.ny; y++ {
			start := (z*a.ny + y) * a.nt
			f(z, y, a.data[start:start+a.nt:start+a.nt])
		}
	}
}

// Data exposes the backing slice for bulk encoders.
func (a *Array[T]) Data() []T {
	return a.data
}
