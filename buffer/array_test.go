package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	for _, tc := range []struct {
		name       string
		nz, ny, nt int
		ok         bool
	}{
		{"ok", 2, 3, 4, true},
		{"zero z", 0, 3, 4, false},
		{"negative t", 2, 3, -1, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			a, err := New[int16](tc.nz, tc.ny, tc.nt)
			if !tc.ok {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.nz*tc.ny*tc.nt, a.Len())
		})
	}
}

func TestArray_Offset(t *testing.T) {
	a, err := New[float64](3, 4, 5)
	require.NoError(t, err)

	a.Set(2, 1, 3, 7.5)
	assert.Equal(t, 7.5, a.Get(2, 1, 3))
	assert.Equal(t, 7.5, a.Data()[(2*4+1)*5+3])
	assert.Equal(t, 7.5, a.Row(2, 1)[3])
	assert.Equal(t, 7.5, a.RowAt(2*4 + 1)[3])
}

func TestArray_RowIsCapped(t *testing.T) {
	a, err := New[int16](2, 2, 3)
	require.NoError(t, err)

	row := a.Row(0, 0)
	assert.Len(t, row, 3)
	assert.Equal(t, 3, cap(row))
	row = append(row, 9)
	assert.Equal(t, int16(0), a.Get(0, 1, 0))
}

func TestArray_OutOfRangePanics(t *testing.T) {
	a, err := New[int16](2, 2, 2)
	require.NoError(t, err)
	assert.Panics(t, func() { a.Get(2, 0, 0) })
	assert.Panics(t, func() { a.Set(0, -1, 0, 1) })
	assert.Panics(t, func() { a.Row(0, 2) })
}

func TestArray_Traverse(t *testing.T) {
	a, err := New[int16](2, 3, 4)
	require.NoError(t, err)

	visited := 0
	a.Traverse(func(z, y int, row []int16) {
		assert.Equal(t, visited, z*3+y)
		for i := range row {
			row[i] = int16(z*100 + y*10 + i)
		}
		visited++
	})
	assert.Equal(t, 6, visited)
	assert.Equal(t, int16(123), a.Get(1, 2, 3))
}
